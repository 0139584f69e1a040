package ingest

// Check is one SQL consistency property. Each query returns a single count of
// violating rows; zero means the property holds.
type Check struct {
	Name string
	SQL  string
}

// ConsistencyChecks returns the correctness properties of the loaded dataset,
// expressed as violation counts. They are derived entirely from the four
// tables and safe to run at any time.
func ConsistencyChecks() []Check {
	return []Check{
		{
			Name: "innings_runs_consistency",
			SQL: `SELECT COUNT(*) FROM cricket.innings i
			      WHERE i.total_runs <> COALESCE((
			          SELECT SUM(b.runs_total) FROM cricket.ball_by_ball b
			          WHERE b.match_id = i.match_id AND b.innings_number = i.innings_number
			      ), 0)`,
		},
		{
			Name: "innings_extras_consistency",
			SQL: `SELECT COUNT(*) FROM cricket.innings i
			      WHERE i.total_extras <> COALESCE((
			          SELECT SUM(b.runs_extras) FROM cricket.ball_by_ball b
			          WHERE b.match_id = i.match_id AND b.innings_number = i.innings_number
			      ), 0)`,
		},
		{
			Name: "innings_wickets_consistency",
			SQL: `SELECT COUNT(*) FROM cricket.innings i
			      WHERE i.total_wickets <> COALESCE((
			          SELECT COUNT(*) FROM cricket.ball_by_ball b
			          WHERE b.match_id = i.match_id AND b.innings_number = i.innings_number
			            AND b.is_wicket
			      ), 0)`,
		},
		{
			Name: "runs_total_identity",
			SQL: `SELECT COUNT(*) FROM cricket.ball_by_ball
			      WHERE runs_total <> runs_batter + runs_extras`,
		},
		{
			Name: "legal_delivery_identity",
			SQL: `SELECT COUNT(*) FROM cricket.ball_by_ball
			      WHERE is_legal_delivery <> (extras_wides = 0 AND extras_noballs = 0)`,
		},
		{
			Name: "dot_ball_identity",
			SQL: `SELECT COUNT(*) FROM cricket.ball_by_ball
			      WHERE is_dot_ball <> (runs_total = 0)`,
		},
		{
			Name: "boundary_identity",
			SQL: `SELECT COUNT(*) FROM cricket.ball_by_ball
			      WHERE is_boundary <> (is_four OR is_six)`,
		},
		{
			// Phase is set only for 20-over matches, and the matches table does
			// not carry the scheduled overs, so this validates bucketing
			// wherever a phase was assigned.
			Name: "phase_partition",
			SQL: `SELECT COUNT(*) FROM cricket.ball_by_ball b
			      WHERE b.phase IS NOT NULL AND (
			          (b.over_number BETWEEN 0 AND 5 AND b.phase <> 'powerplay')
			          OR (b.over_number BETWEEN 6 AND 14 AND b.phase <> 'middle')
			          OR (b.over_number >= 15 AND b.phase <> 'death')
			      )`,
		},
		{
			Name: "roster_striker_complete",
			SQL: `SELECT COUNT(DISTINCT (b.striker, b.batting_team)) FROM cricket.ball_by_ball b
			      WHERE NOT EXISTS (
			          SELECT 1 FROM cricket.players p
			          WHERE p.player_name = b.striker AND p.team = b.batting_team
			      )`,
		},
		{
			Name: "roster_non_striker_complete",
			SQL: `SELECT COUNT(DISTINCT (b.non_striker, b.batting_team)) FROM cricket.ball_by_ball b
			      WHERE NOT EXISTS (
			          SELECT 1 FROM cricket.players p
			          WHERE p.player_name = b.non_striker AND p.team = b.batting_team
			      )`,
		},
		{
			Name: "roster_bowler_complete",
			SQL: `SELECT COUNT(DISTINCT (b.bowler, b.bowling_team)) FROM cricket.ball_by_ball b
			      WHERE NOT EXISTS (
			          SELECT 1 FROM cricket.players p
			          WHERE p.player_name = b.bowler AND p.team = b.bowling_team
			      )`,
		},
	}
}
