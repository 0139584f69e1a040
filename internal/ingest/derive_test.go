package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/cricket-etl/internal/cricsheet"
)

func TestPhase_PartitionsTwentyOvers(t *testing.T) {
	// The three phases must partition overs 0-19 with no gap or overlap.
	for over := 0; over <= 19; over++ {
		p := Phase(over, 20)
		require.NotNil(t, p, "over %d must have a phase", over)

		var want string
		switch {
		case over <= 5:
			want = PhasePowerplay
		case over <= 14:
			want = PhaseMiddle
		default:
			want = PhaseDeath
		}
		assert.Equal(t, want, *p, "over %d", over)
	}
}

func TestPhase_BucketBoundaries(t *testing.T) {
	tests := []struct {
		over int
		want string
	}{
		{0, PhasePowerplay},
		{5, PhasePowerplay},
		{6, PhaseMiddle},
		{14, PhaseMiddle},
		{15, PhaseDeath},
		{19, PhaseDeath},
	}
	for _, tt := range tests {
		p := Phase(tt.over, 20)
		require.NotNil(t, p)
		assert.Equal(t, tt.want, *p, "over %d", tt.over)
	}
}

func TestPhase_NonT20FormatsGetNoPhase(t *testing.T) {
	assert.Nil(t, Phase(3, 50))
	assert.Nil(t, Phase(3, 0))
	assert.Nil(t, Phase(3, 10))
}

func TestIsLegal(t *testing.T) {
	assert.True(t, IsLegal(cricsheet.Extras{}))
	assert.True(t, IsLegal(cricsheet.Extras{Byes: 4}))
	assert.True(t, IsLegal(cricsheet.Extras{LegByes: 1, Penalty: 5}))
	assert.False(t, IsLegal(cricsheet.Extras{Wides: 1}))
	assert.False(t, IsLegal(cricsheet.Extras{NoBalls: 1}))
}

func TestOversFromBalls(t *testing.T) {
	tests := []struct {
		balls int
		want  float64
	}{
		{0, 0},
		{6, 1.0},
		{117, 19.3},
		{120, 20.0},
		{7, 1.1},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, OversFromBalls(tt.balls), 0.001, "%d balls", tt.balls)
	}
}

func TestDeriveDelivery_RecomputesTotal(t *testing.T) {
	stale := 99
	d := &cricsheet.Delivery{
		Over: 2, Ball: 3,
		Runs:   cricsheet.Runs{Batter: 1, Extras: 9, Total: &stale}, // stale source total
		Extras: cricsheet.Extras{NoBalls: 1, Byes: 2},
	}
	row := deriveDelivery(d, 20)

	assert.Equal(t, 1, row.RunsBatter)
	assert.Equal(t, 3, row.RunsExtras)
	assert.Equal(t, 4, row.RunsTotal)
	assert.False(t, row.IsLegal)
	assert.False(t, row.IsDotBall)
}

func TestDeriveDelivery_Flags(t *testing.T) {
	tests := []struct {
		name     string
		runs     cricsheet.Runs
		extras   cricsheet.Extras
		four     bool
		six      bool
		boundary bool
		dot      bool
		legal    bool
	}{
		{
			name: "dot ball",
			dot:  true, legal: true,
		},
		{
			name: "four off the bat",
			runs: cricsheet.Runs{Batter: 4},
			four: true, boundary: true, legal: true,
		},
		{
			name: "six off the bat",
			runs: cricsheet.Runs{Batter: 6},
			six:  true, boundary: true, legal: true,
		},
		{
			name:   "four byes are not a boundary",
			extras: cricsheet.Extras{Byes: 4},
			legal:  true,
		},
		{
			name:   "four off the bat plus a no-ball is not a four",
			runs:   cricsheet.Runs{Batter: 4},
			extras: cricsheet.Extras{NoBalls: 1},
		},
		{
			name:   "wide is illegal but not a dot when it scores",
			extras: cricsheet.Extras{Wides: 1},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := &cricsheet.Delivery{Runs: tt.runs, Extras: tt.extras}
			row := deriveDelivery(d, 20)

			assert.Equal(t, tt.four, row.IsFour)
			assert.Equal(t, tt.six, row.IsSix)
			assert.Equal(t, tt.boundary, row.IsBoundary)
			assert.Equal(t, tt.dot, row.IsDotBall)
			assert.Equal(t, tt.legal, row.IsLegal)
			assert.Equal(t, row.IsBoundary, row.IsFour || row.IsSix)
			assert.Equal(t, row.IsLegal, !(row.ExtrasWides > 0 || row.ExtrasNoBalls > 0))
			assert.Equal(t, row.IsDotBall, row.RunsTotal == 0)
		})
	}
}
