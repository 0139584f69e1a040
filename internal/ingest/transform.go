package ingest

import (
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/text/unicode/norm"

	"github.com/sells-group/cricket-etl/internal/cricsheet"
)

// ValidationError reports a document that parsed but lacks mandatory
// match-level fields or is otherwise internally unusable. The document is
// rejected before any row is written.
type ValidationError struct {
	File   string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("ingest: reject %s: %s", e.File, e.Reason)
}

// Flatten walks one parsed match document and produces the full relational
// row batch for it: the match row, aggregated innings rows, per-delivery fact
// rows, and the deduplicated (player, team) roster observed in the document.
// It mutates nothing outside the returned batch.
func Flatten(doc *cricsheet.Document, sourceFile string) (*MatchBatch, error) {
	if err := validate(doc, sourceFile); err != nil {
		return nil, err
	}

	log := zap.L().With(zap.String("source_file", sourceFile))
	info := doc.Info

	batch := &MatchBatch{Match: matchRow(info, sourceFile)}
	roster := newRosterSet()

	// Seed the roster from the squad lists when present; the delivery scan
	// below picks up anyone who actually touched the ball.
	for team, names := range info.Players {
		for _, name := range names {
			roster.add(name, team)
		}
	}

	for idx, inn := range doc.Innings {
		number := idx + 1
		batting := inn.Team
		bowling := otherTeam(info.Teams, batting)

		var runs, wickets, extras, legalBalls int

		for di := range inn.Deliveries {
			d := &inn.Deliveries[di]
			row := deriveDelivery(d, info.Overs)
			row.InningsNumber = number
			row.BattingTeam = batting
			row.BowlingTeam = bowling
			row.Striker = playerName(d.Batter)
			row.NonStriker = playerName(d.NonStriker)
			row.Bowler = playerName(d.Bowler)

			if d.Runs.Total != nil && *d.Runs.Total != row.RunsTotal {
				log.Warn("inconsistent runs breakdown, recomputed total",
					zap.Int("innings", number),
					zap.String("ball", fmt.Sprintf("%d.%d", d.Over, d.Ball)),
					zap.Int("source_total", *d.Runs.Total),
					zap.Int("recomputed", row.RunsTotal),
				)
			}

			for wi, w := range d.Wickets {
				dis := Dismissal{
					Kind:      w.Kind,
					PlayerOut: playerName(w.PlayerOut),
				}
				if len(w.Fielders) > 0 {
					dis.Fielder = playerName(w.Fielders[0].Name)
				}
				row.Dismissals = append(row.Dismissals, dis)

				if wi == 0 {
					row.IsWicket = true
					row.WicketType = strPtr(dis.Kind)
					row.PlayerDismissed = strPtr(dis.PlayerOut)
					if dis.Fielder != "" {
						row.Fielder = strPtr(dis.Fielder)
					}
				}
				for _, f := range w.Fielders {
					roster.add(f.Name, bowling)
				}
			}
			// One wicket-bearing delivery counts once, however many dismissals
			// ride it; the full list is preserved on the row.
			if row.IsWicket {
				wickets++
			}

			roster.add(d.Batter, batting)
			roster.add(d.NonStriker, batting)
			roster.add(d.Bowler, bowling)

			runs += row.RunsTotal
			extras += row.RunsExtras
			if row.IsLegal {
				legalBalls++
			}

			batch.Deliveries = append(batch.Deliveries, row)
		}

		batch.Innings = append(batch.Innings, InningsRow{
			Number:       number,
			BattingTeam:  batting,
			BowlingTeam:  bowling,
			TotalRuns:    runs,
			TotalWickets: wickets,
			TotalOvers:   OversFromBalls(legalBalls),
			TotalExtras:  extras,
			IsSuperOver:  inn.IsSuperOver(),
		})
	}

	batch.Players = roster.pairs()
	return batch, nil
}

func validate(doc *cricsheet.Document, sourceFile string) error {
	info := doc.Info
	switch {
	case len(info.Teams) != 2:
		return &ValidationError{File: sourceFile, Reason: fmt.Sprintf("expected 2 teams, got %d", len(info.Teams))}
	case info.Venue == "":
		return &ValidationError{File: sourceFile, Reason: "missing venue"}
	case len(info.Dates) == 0:
		return &ValidationError{File: sourceFile, Reason: "missing match date"}
	}
	return nil
}

func matchRow(info cricsheet.Info, sourceFile string) MatchRow {
	row := MatchRow{
		SourceFile:   sourceFile,
		MatchType:    info.MatchType,
		Competition:  info.Competition,
		Venue:        info.Venue,
		Team1:        info.Teams[0],
		Team2:        info.Teams[1],
		WinByRuns:    info.Outcome.By.Runs,
		WinByWickets: info.Outcome.By.Wickets,
	}
	if row.MatchType == "" {
		row.MatchType = "T20"
	}

	date := info.Dates[0].Time
	row.MatchDate = &date
	season := date.Year()
	row.Season = &season

	if info.City != "" {
		row.City = strPtr(info.City)
	}
	if info.Toss.Winner != "" {
		row.TossWinner = strPtr(info.Toss.Winner)
		row.TossDecision = strPtr(info.Toss.Decision)
	}
	if info.Outcome.Winner != "" {
		row.Winner = strPtr(info.Outcome.Winner)
	}
	if len(info.PlayerOfMatch) > 0 {
		row.PlayerOfMatch = strPtr(playerName(info.PlayerOfMatch[0]))
	}

	switch {
	case info.Outcome.Result != "":
		row.ResultType = info.Outcome.Result
	case info.Outcome.Winner == "":
		row.ResultType = "no result"
	default:
		row.ResultType = "normal"
	}
	return row
}

// otherTeam returns the team that is not batting. Order in the source's team
// list is preserved everywhere else.
func otherTeam(teams []string, batting string) string {
	for _, t := range teams {
		if t != batting {
			return t
		}
	}
	return ""
}

// playerName canonicalizes a player reference. Rosters mix accented and
// precomposed spellings across documents, so names are NFC-normalized before
// they become roster keys or row values.
func playerName(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}

// rosterSet deduplicates (player, team) pairs. An explicit map keyed by the
// natural key keeps redundant write attempts off the destination.
type rosterSet struct {
	seen map[PlayerPair]struct{}
}

func newRosterSet() *rosterSet {
	return &rosterSet{seen: make(map[PlayerPair]struct{})}
}

func (r *rosterSet) add(name, team string) {
	name = playerName(name)
	if name == "" || team == "" {
		return
	}
	r.seen[PlayerPair{Name: name, Team: team}] = struct{}{}
}

// pairs returns the deduplicated roster in a stable order.
func (r *rosterSet) pairs() []PlayerPair {
	out := make([]PlayerPair, 0, len(r.seen))
	for p := range r.seen {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Team != out[j].Team {
			return out[i].Team < out[j].Team
		}
		return out[i].Name < out[j].Name
	})
	return out
}

func strPtr(s string) *string {
	return &s
}
