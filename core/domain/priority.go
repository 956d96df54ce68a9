package domain

// PriorityLevel buckets a numeric priority score.
type PriorityLevel string

const (
	PriorityCritical PriorityLevel = "critical"
	PriorityHigh     PriorityLevel = "high"
	PriorityMedium   PriorityLevel = "medium"
	PriorityLow      PriorityLevel = "low"
)

// Score thresholds for priority levels.
const (
	ScoreCriticalThreshold = 80
	ScoreHighThreshold     = 65
	ScoreMediumThreshold   = 40
)

// LevelForScore maps a clamped score to its priority level.
func LevelForScore(score int) PriorityLevel {
	switch {
	case score >= ScoreCriticalThreshold:
		return PriorityCritical
	case score >= ScoreHighThreshold:
		return PriorityHigh
	case score >= ScoreMediumThreshold:
		return PriorityMedium
	default:
		return PriorityLow
	}
}

// MinScoreForLevel returns the lowest score still inside the level, and
// whether the level is known.
func MinScoreForLevel(level PriorityLevel) (int, bool) {
	switch level {
	case PriorityCritical:
		return ScoreCriticalThreshold, true
	case PriorityHigh:
		return ScoreHighThreshold, true
	case PriorityMedium:
		return ScoreMediumThreshold, true
	case PriorityLow:
		return 0, true
	}
	return 0, false
}

// PriorityResult is the outcome of scoring a single email.
type PriorityResult struct {
	Score   int           `json:"score"`
	Level   PriorityLevel `json:"level"`
	Reasons []string      `json:"reasons"`
}
