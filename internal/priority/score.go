package priority

import (
	"math"
	"time"
)

// DefaultEffortMinutes is assumed when a task carries no effort estimate.
const DefaultEffortMinutes = 30

// LocalReason is the fixed rationale attached to locally computed scores.
const LocalReason = "Estimated from deadline proximity, importance, and expected effort."

// ScoreWeights holds the tunables of the local scoring formula.
type ScoreWeights struct {
	UrgencyPerHour float64 // urgency lost per hour of remaining time
	WeightFactor   float64 // points per unit of importance weight
	WeightCap      float64 // maximum importance contribution
	EffortDivisor  float64 // minutes of effort per point
	EffortCap      float64 // maximum effort contribution
}

// DefaultScoreWeights returns the default scoring weights.
func DefaultScoreWeights() ScoreWeights {
	return ScoreWeights{
		UrgencyPerHour: 2,
		WeightFactor:   3,
		WeightCap:      30,
		EffortDivisor:  10,
		EffortCap:      20,
	}
}

// Urgency maps time remaining until deadline onto 0-100. Anything due within
// the hour (or already overdue) is 100; urgency decays linearly after that.
// A zero deadline means the task has no deadline and carries no urgency.
func Urgency(deadline, now time.Time, w ScoreWeights) float64 {
	if deadline.IsZero() {
		return 0
	}
	hoursLeft := math.Max(1, deadline.Sub(now).Hours())
	return clamp(100-math.Min(100, hoursLeft*w.UrgencyPerHour), 0, 100)
}

// ScoreInput is the subset of a task the local scorer looks at.
// Zero EffortMinutes means "no estimate".
type ScoreInput struct {
	Deadline         time.Time
	ImportanceWeight float64
	EffortMinutes    int
}

// Score is the output of the local scorer.
type Score struct {
	Value  int
	Level  Level
	Reason []string
}

// LocalScore computes the explainable local priority score. It never fails:
// missing or negative inputs fall back to defaults and the result is always
// within [0, 100].
func LocalScore(in ScoreInput, now time.Time, w ScoreWeights) Score {
	effort := in.EffortMinutes
	if effort <= 0 {
		effort = DefaultEffortMinutes
	}
	weight := math.Max(0, in.ImportanceWeight)

	urgency := Urgency(in.Deadline, now, w)
	weightScore := math.Min(w.WeightCap, weight*w.WeightFactor)
	effortScore := 0.0
	if w.EffortDivisor > 0 {
		effortScore = math.Min(w.EffortCap, math.Round(float64(effort)/w.EffortDivisor))
	}

	value := int(clamp(math.Round(urgency+weightScore+effortScore), 0, 100))
	return Score{
		Value:  value,
		Level:  LevelFromScore(value),
		Reason: []string{LocalReason},
	}
}

// NormalizeGradeWeight maps a grade weight percentage (0-100) onto the
// importance scale used by LocalScore.
func NormalizeGradeWeight(percent float64) float64 {
	return clamp(percent/10, 0, 10)
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return math.Max(lo, math.Min(hi, v))
}
