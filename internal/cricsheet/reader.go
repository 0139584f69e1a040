package cricsheet

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// ParseError reports a document that could not be decoded into the expected
// hierarchical shape. It names the offending file so a batch driver can skip
// it and keep going.
type ParseError struct {
	File string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("cricsheet: parse %s: %v", e.File, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// List returns the YAML document paths in dir, sorted for a deterministic
// processing order.
func List(dir string) ([]string, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return nil, eris.Wrapf(err, "cricsheet: list %s", dir)
	}
	sort.Strings(paths)
	return paths, nil
}

// ParseFile reads and decodes one match document. The returned source name is
// the bare filename, which doubles as the idempotency key downstream.
func ParseFile(path string) (*Document, string, error) {
	name := filepath.Base(path)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, name, &ParseError{File: name, Err: err}
	}

	doc, err := Parse(data)
	if err != nil {
		return nil, name, &ParseError{File: name, Err: err}
	}
	return doc, name, nil
}

// Parse decodes a single match document.
func Parse(data []byte) (*Document, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}

	if len(doc.Info.Teams) == 0 && len(doc.Innings) == 0 {
		return nil, eris.New("empty or non-match document")
	}
	return &doc, nil
}
