// Package cricsheet reads ball-by-ball match documents in the Cricsheet YAML
// format: a match metadata block, then an ordered list of innings, each an
// ordered list of deliveries keyed by over.ball.
package cricsheet

import (
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// Document is one parsed match file.
type Document struct {
	Meta    Meta           `yaml:"meta"`
	Info    Info           `yaml:"info"`
	Innings []InningsEntry `yaml:"innings"`
}

// Meta carries the format bookkeeping block.
type Meta struct {
	DataVersion string `yaml:"data_version"`
	Created     Date   `yaml:"created"`
	Revision    int    `yaml:"revision"`
}

// Info carries match-level metadata.
type Info struct {
	City          string              `yaml:"city"`
	Competition   string              `yaml:"competition"`
	Dates         []Date              `yaml:"dates"`
	Gender        string              `yaml:"gender"`
	MatchType     string              `yaml:"match_type"`
	Outcome       Outcome             `yaml:"outcome"`
	Overs         int                 `yaml:"overs"`
	PlayerOfMatch []string            `yaml:"player_of_match"`
	Players       map[string][]string `yaml:"players"`
	Teams         []string            `yaml:"teams"`
	Toss          Toss                `yaml:"toss"`
	Venue         string              `yaml:"venue"`
}

// Date accepts both YAML timestamp scalars and quoted date strings.
type Date struct {
	time.Time
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Date) UnmarshalYAML(value *yaml.Node) error {
	var t time.Time
	if err := value.Decode(&t); err == nil {
		d.Time = t
		return nil
	}

	var s string
	if err := value.Decode(&s); err != nil {
		return eris.Wrap(err, "cricsheet: decode date")
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return eris.Wrapf(err, "cricsheet: parse date %q", s)
	}
	d.Time = t
	return nil
}

// Outcome describes the match result block. All fields are optional: an
// abandoned match carries neither a winner nor a margin.
type Outcome struct {
	Winner string `yaml:"winner"`
	Result string `yaml:"result"`
	By     WinBy  `yaml:"by"`
}

// WinBy is the winning margin; runs and wickets are mutually exclusive.
type WinBy struct {
	Runs    int `yaml:"runs"`
	Wickets int `yaml:"wickets"`
}

// Toss names the toss winner and their decision.
type Toss struct {
	Winner   string `yaml:"winner"`
	Decision string `yaml:"decision"`
}

// InningsEntry is one innings. In the source each innings is a single-key
// mapping whose key is the innings label (e.g. "1st innings", "super over").
type InningsEntry struct {
	Name       string
	Team       string
	Deliveries []Delivery
}

type inningsBody struct {
	Team       string     `yaml:"team"`
	Deliveries []Delivery `yaml:"deliveries"`
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (e *InningsEntry) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.MappingNode || len(value.Content) < 2 {
		return eris.New("cricsheet: innings entry is not a single-key mapping")
	}

	e.Name = value.Content[0].Value

	var body inningsBody
	if err := value.Content[1].Decode(&body); err != nil {
		return eris.Wrapf(err, "cricsheet: decode innings %q", e.Name)
	}
	e.Team = body.Team
	e.Deliveries = body.Deliveries
	return nil
}

// IsSuperOver reports whether the innings label marks a super-over continuation.
func (e *InningsEntry) IsSuperOver() bool {
	return strings.Contains(strings.ToLower(e.Name), "super")
}

// Delivery is one ball, legal or otherwise. In the source each delivery is a
// single-key mapping keyed by the over.ball scalar (e.g. "0.1", "19.6").
type Delivery struct {
	Over       int
	Ball       int
	Batter     string
	NonStriker string
	Bowler     string
	Runs       Runs
	Extras     Extras
	Wickets    []Wicket
}

type deliveryBody struct {
	Batsman    string   `yaml:"batsman"`
	Batter     string   `yaml:"batter"`
	NonStriker string   `yaml:"non_striker"`
	Bowler     string   `yaml:"bowler"`
	Runs       runsBody `yaml:"runs"`
	Extras     Extras   `yaml:"extras"`
	Wicket     *Wicket  `yaml:"wicket"`
	Wickets    []Wicket `yaml:"wickets"`
}

type runsBody struct {
	Batsman int  `yaml:"batsman"`
	Batter  int  `yaml:"batter"`
	Extras  int  `yaml:"extras"`
	Total   *int `yaml:"total"`
}

// UnmarshalYAML implements yaml.Unmarshaler. The over.ball key is read from
// the raw scalar text: parsing it as a number would collapse "0.10" into
// "0.1".
func (d *Delivery) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.MappingNode || len(value.Content) < 2 {
		return eris.New("cricsheet: delivery entry is not a single-key mapping")
	}

	key := value.Content[0].Value
	over, ball, err := ParseOverBall(key)
	if err != nil {
		return err
	}

	var body deliveryBody
	if err := value.Content[1].Decode(&body); err != nil {
		return eris.Wrapf(err, "cricsheet: decode delivery %s", key)
	}

	d.Over = over
	d.Ball = ball
	d.Batter = firstNonEmpty(body.Batter, body.Batsman)
	d.NonStriker = body.NonStriker
	d.Bowler = body.Bowler
	d.Runs = Runs{
		Batter: maxInt(body.Runs.Batter, body.Runs.Batsman),
		Extras: body.Runs.Extras,
		Total:  body.Runs.Total,
	}
	d.Extras = body.Extras

	// Older documents carry a single wicket mapping, newer ones a list. The
	// rare multi-dismissal ball keeps every entry in source order.
	if body.Wicket != nil {
		d.Wickets = []Wicket{*body.Wicket}
	} else {
		d.Wickets = body.Wickets
	}
	return nil
}

// Runs is the per-delivery run breakdown. Batter accepts both the "batsman"
// and "batter" spellings used across format revisions. Total is nil when the
// source omits it, so an explicit stale zero is still distinguishable.
type Runs struct {
	Batter int
	Extras int
	Total  *int
}

// Extras breaks extras down by kind. Wides and no-balls do not count as
// legal deliveries.
type Extras struct {
	Wides   int `yaml:"wides"`
	NoBalls int `yaml:"noballs"`
	Byes    int `yaml:"byes"`
	LegByes int `yaml:"legbyes"`
	Penalty int `yaml:"penalty"`
}

// Sum returns the total extras conceded on the delivery.
func (e Extras) Sum() int {
	return e.Wides + e.NoBalls + e.Byes + e.LegByes + e.Penalty
}

// Wicket is one dismissal. PlayerOut need not be the striker (run-outs may
// dismiss the non-striker).
type Wicket struct {
	Kind      string    `yaml:"kind"`
	PlayerOut string    `yaml:"player_out"`
	Fielders  []Fielder `yaml:"fielders"`
}

// Fielder is a fielder credited on a dismissal. Written as a bare name in
// older documents and as a mapping in newer ones.
type Fielder struct {
	Name       string `yaml:"name"`
	Substitute bool   `yaml:"substitute"`
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (f *Fielder) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		f.Name = value.Value
		return nil
	}

	type plain Fielder
	var p plain
	if err := value.Decode(&p); err != nil {
		return eris.Wrap(err, "cricsheet: decode fielder")
	}
	*f = Fielder(p)
	return nil
}

// ParseOverBall splits an over.ball key like "16.3" into its components.
// A key with no ball component defaults to ball 1.
func ParseOverBall(key string) (over, ball int, err error) {
	overPart, ballPart, found := strings.Cut(key, ".")

	over, err = strconv.Atoi(overPart)
	if err != nil {
		return 0, 0, eris.Wrapf(err, "cricsheet: bad over in key %q", key)
	}

	if !found || ballPart == "" {
		return over, 1, nil
	}

	ball, err = strconv.Atoi(ballPart)
	if err != nil {
		return 0, 0, eris.Wrapf(err, "cricsheet: bad ball in key %q", key)
	}
	return over, ball, nil
}

func firstNonEmpty(a, b string) string {
	if a != "" {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
