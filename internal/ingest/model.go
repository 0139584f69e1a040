// Package ingest flattens parsed match documents into normalized relational
// rows and loads them into Postgres under a per-match idempotency contract.
package ingest

import "time"

// MatchRow is one row of cricket.matches. Nullable attributes stay nil when
// the source block is absent (abandoned matches carry no toss or outcome).
type MatchRow struct {
	SourceFile    string
	MatchType     string
	Competition   string
	Season        *int
	MatchDate     *time.Time
	Venue         string
	City          *string
	Team1         string
	Team2         string
	TossWinner    *string
	TossDecision  *string
	Winner        *string
	WinByRuns     int
	WinByWickets  int
	ResultType    string
	PlayerOfMatch *string
}

// InningsRow is one row of cricket.innings. Totals are aggregated from the
// innings' deliveries before the row is built, so the stored values are
// consistent with the delivery rows committed in the same transaction.
type InningsRow struct {
	Number       int
	BattingTeam  string
	BowlingTeam  string
	TotalRuns    int
	TotalWickets int
	TotalOvers   float64
	TotalExtras  int
	IsSuperOver  bool
}

// DeliveryRow is one row of cricket.ball_by_ball: the atomic fact of the
// dataset, one per legal or illegal delivery bowled.
type DeliveryRow struct {
	InningsNumber int
	OverNumber    int
	BallNumber    int
	BattingTeam   string
	BowlingTeam   string
	Striker       string
	NonStriker    string
	Bowler        string

	RunsBatter int
	RunsExtras int
	RunsTotal  int

	ExtrasWides   int
	ExtrasNoBalls int
	ExtrasByes    int
	ExtrasLegByes int
	ExtrasPenalty int

	IsWicket        bool
	WicketType      *string
	PlayerDismissed *string
	Fielder         *string
	Dismissals      []Dismissal

	IsBoundary bool
	IsFour     bool
	IsSix      bool
	IsDotBall  bool
	IsLegal    bool
	Phase      *string
}

// Dismissal is one dismissal annotation on a delivery. The scalar wicket
// columns carry the first; the full ordered list rides the row as jsonb so
// the rare multi-wicket ball is never dropped.
type Dismissal struct {
	Kind      string `json:"kind"`
	PlayerOut string `json:"player_out"`
	Fielder   string `json:"fielder,omitempty"`
}

// PlayerPair is one (player, team) roster observation.
type PlayerPair struct {
	Name string
	Team string
}

// MatchBatch holds every row derived from one match document, ready for a
// single atomic load.
type MatchBatch struct {
	Match      MatchRow
	Innings    []InningsRow
	Deliveries []DeliveryRow
	Players    []PlayerPair
}
