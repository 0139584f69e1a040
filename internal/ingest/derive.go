package ingest

import "github.com/sells-group/cricket-etl/internal/cricsheet"

// Innings phase labels. The partition is defined for 20-over cricket only:
// overs 0-5 powerplay, 6-14 middle, 15-19 death (0-indexed).
const (
	PhasePowerplay = "powerplay"
	PhaseMiddle    = "middle"
	PhaseDeath     = "death"

	standardOvers = 20
)

// Phase buckets an over number into an innings phase. Matches scheduled for
// anything other than 20 overs get no phase: the partition is T20-specific
// and guessing another one would mis-bucket every delivery.
func Phase(overNumber, scheduledOvers int) *string {
	if scheduledOvers != standardOvers {
		return nil
	}

	var p string
	switch {
	case overNumber <= 5:
		p = PhasePowerplay
	case overNumber <= 14:
		p = PhaseMiddle
	default:
		p = PhaseDeath
	}
	return &p
}

// IsLegal reports whether a delivery counts toward the 6-ball over: wides and
// no-balls do not.
func IsLegal(e cricsheet.Extras) bool {
	return e.Wides == 0 && e.NoBalls == 0
}

// OversFromBalls converts a legal-ball count into the overs-and-balls display
// value, e.g. 117 balls -> 19.3.
func OversFromBalls(legalBalls int) float64 {
	return float64(legalBalls/6) + float64(legalBalls%6)/10
}

// deriveDelivery computes the analytical attributes for one parsed delivery.
// runs_total is always recomputed from the batter runs and the extras
// breakdown; the source's own total field is not trusted (inconsistent
// records are recomputed, and the caller logs the discrepancy).
func deriveDelivery(d *cricsheet.Delivery, scheduledOvers int) (row DeliveryRow) {
	row.OverNumber = d.Over
	row.BallNumber = d.Ball

	row.RunsBatter = d.Runs.Batter
	row.RunsExtras = d.Extras.Sum()
	row.RunsTotal = row.RunsBatter + row.RunsExtras

	row.ExtrasWides = d.Extras.Wides
	row.ExtrasNoBalls = d.Extras.NoBalls
	row.ExtrasByes = d.Extras.Byes
	row.ExtrasLegByes = d.Extras.LegByes
	row.ExtrasPenalty = d.Extras.Penalty

	row.IsLegal = IsLegal(d.Extras)
	row.IsDotBall = row.RunsTotal == 0

	// Boundaries credit runs off the bat only: a delivery whose extras happen
	// to total 4 or 6 is not a boundary.
	row.IsFour = row.RunsBatter == 4 && row.RunsExtras == 0
	row.IsSix = row.RunsBatter == 6 && row.RunsExtras == 0
	row.IsBoundary = row.IsFour || row.IsSix

	row.Phase = Phase(d.Over, scheduledOvers)
	return row
}
