package ingest

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/cricket-etl/internal/db"
)

// Status classifies the outcome of loading one match document.
type Status string

const (
	// StatusLoaded means the match committed as a new load.
	StatusLoaded Status = "loaded"
	// StatusSkipped means the source file was already present; nothing was
	// written.
	StatusSkipped Status = "skipped"
)

// LoadResult reports what one LoadMatch call did.
type LoadResult struct {
	Status     Status
	MatchID    int64
	Deliveries int64
	Players    int64
}

// Loader writes one flattened match per transaction. Either every row for the
// match is visible afterward or none of it is.
type Loader struct {
	pool db.Pool
}

// NewLoader creates a Loader on the given pool.
func NewLoader(pool db.Pool) *Loader {
	return &Loader{pool: pool}
}

const insertMatchSQL = `
	INSERT INTO cricket.matches (
		source_file, match_type, competition, season, match_date, venue, city,
		team1, team2, toss_winner, toss_decision, winner,
		win_by_runs, win_by_wickets, result_type, player_of_match
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	ON CONFLICT (source_file) DO NOTHING
	RETURNING match_id`

const insertInningsSQL = `
	INSERT INTO cricket.innings (
		match_id, innings_number, batting_team, bowling_team,
		total_runs, total_wickets, total_overs, total_extras, is_super_over
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

var deliveryColumns = []string{
	"match_id", "innings_number", "over_number", "ball_number",
	"batting_team", "bowling_team", "striker", "non_striker", "bowler",
	"runs_batter", "runs_extras", "runs_total",
	"extras_wides", "extras_noballs", "extras_byes", "extras_legbyes", "extras_penalty",
	"is_wicket", "wicket_type", "player_dismissed", "fielder", "dismissals",
	"is_boundary", "is_four", "is_six", "is_dot_ball", "is_legal_delivery", "phase",
}

// LoadMatch commits one match batch atomically. Duplicate detection is the
// ON CONFLICT insert on matches.source_file itself, inside the transaction,
// so two concurrent workers cannot both load the same file: exactly one sees
// a returned match_id, the other gets StatusSkipped.
func (l *Loader) LoadMatch(ctx context.Context, batch *MatchBatch) (*LoadResult, error) {
	src := batch.Match.SourceFile
	log := zap.L().With(zap.String("source_file", src))

	tx, err := l.pool.Begin(ctx)
	if err != nil {
		return nil, eris.Wrapf(err, "loader: begin tx for %s", src)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	m := batch.Match
	var matchID int64
	err = tx.QueryRow(ctx, insertMatchSQL,
		m.SourceFile, m.MatchType, m.Competition, m.Season, m.MatchDate, m.Venue, m.City,
		m.Team1, m.Team2, m.TossWinner, m.TossDecision, m.Winner,
		m.WinByRuns, m.WinByWickets, m.ResultType, m.PlayerOfMatch,
	).Scan(&matchID)
	if errors.Is(err, pgx.ErrNoRows) {
		log.Info("already ingested, skipping")
		return &LoadResult{Status: StatusSkipped}, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "loader: insert match for %s", src)
	}

	for _, inn := range batch.Innings {
		_, err := tx.Exec(ctx, insertInningsSQL,
			matchID, inn.Number, inn.BattingTeam, inn.BowlingTeam,
			inn.TotalRuns, inn.TotalWickets, inn.TotalOvers, inn.TotalExtras, inn.IsSuperOver,
		)
		if err != nil {
			return nil, eris.Wrapf(err, "loader: insert innings %d for %s", inn.Number, src)
		}
	}

	rows, err := deliveryRows(matchID, batch.Deliveries)
	if err != nil {
		return nil, eris.Wrapf(err, "loader: build delivery rows for %s", src)
	}
	copied, err := db.CopyFrom(ctx, tx, "cricket.ball_by_ball", deliveryColumns, rows)
	if err != nil {
		return nil, eris.Wrapf(err, "loader: COPY deliveries for %s", src)
	}

	newPlayers, err := db.BulkUpsert(ctx, tx, db.UpsertConfig{
		Table:        "cricket.players",
		Columns:      []string{"player_name", "team"},
		ConflictKeys: []string{"player_name", "team"},
		DoNothing:    true,
	}, playerRows(batch.Players))
	if err != nil {
		return nil, eris.Wrapf(err, "loader: upsert players for %s", src)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, eris.Wrapf(err, "loader: commit %s", src)
	}

	log.Info("match loaded",
		zap.Int64("match_id", matchID),
		zap.Int("innings", len(batch.Innings)),
		zap.Int64("deliveries", copied),
		zap.Int64("new_players", newPlayers),
	)

	return &LoadResult{
		Status:     StatusLoaded,
		MatchID:    matchID,
		Deliveries: copied,
		Players:    newPlayers,
	}, nil
}

func playerRows(players []PlayerPair) [][]any {
	rows := make([][]any, 0, len(players))
	for _, p := range players {
		rows = append(rows, []any{p.Name, p.Team})
	}
	return rows
}

func deliveryRows(matchID int64, deliveries []DeliveryRow) ([][]any, error) {
	rows := make([][]any, 0, len(deliveries))
	for i := range deliveries {
		d := &deliveries[i]

		var dismissals []byte
		if len(d.Dismissals) > 0 {
			var err error
			dismissals, err = json.Marshal(d.Dismissals)
			if err != nil {
				return nil, eris.Wrapf(err, "marshal dismissals for ball %d.%d", d.OverNumber, d.BallNumber)
			}
		}

		rows = append(rows, []any{
			matchID, d.InningsNumber, d.OverNumber, d.BallNumber,
			d.BattingTeam, d.BowlingTeam, d.Striker, d.NonStriker, d.Bowler,
			d.RunsBatter, d.RunsExtras, d.RunsTotal,
			d.ExtrasWides, d.ExtrasNoBalls, d.ExtrasByes, d.ExtrasLegByes, d.ExtrasPenalty,
			d.IsWicket, d.WicketType, d.PlayerDismissed, d.Fielder, dismissals,
			d.IsBoundary, d.IsFour, d.IsSix, d.IsDotBall, d.IsLegal, d.Phase,
		})
	}
	return rows, nil
}
