package classification

import (
	"fmt"

	"inboxcore/core/domain"
)

// ScoreWeights holds the additive weights of the priority formula.
// Exposed as a struct so deployments can tune them via configuration.
type ScoreWeights struct {
	Base                   int
	ServiceRequest         int
	ExternalPaymentRequest int
	UrgencyHigh            int
	UrgencyLow             int
	NeedsResponse          int
	ImportantLabel         int
	StarredLabel           int
	UnreadLabel            int
	LowValuePenalty        int
}

// DefaultScoreWeights returns the standard weight set.
func DefaultScoreWeights() ScoreWeights {
	return ScoreWeights{
		Base:                   50,
		ServiceRequest:         30,
		ExternalPaymentRequest: 20,
		UrgencyHigh:            25,
		UrgencyLow:             -10,
		NeedsResponse:          15,
		ImportantLabel:         10,
		StarredLabel:           10,
		UnreadLabel:            5,
		LowValuePenalty:        -40,
	}
}

// Scorer computes a priority score from an email and its category result.
type Scorer struct {
	weights ScoreWeights
}

// NewScorer creates a scorer with the given weights.
func NewScorer(weights ScoreWeights) *Scorer {
	return &Scorer{weights: weights}
}

// Score is a pure function of the email and category result. The score
// is clamped to [0,100] and the reasons list the applied adjustments in
// a fixed order.
func (s *Scorer) Score(email *domain.EmailDocument, cat *domain.CategoryResult) *domain.PriorityResult {
	w := s.weights
	score := w.Base
	var reasons []string

	if cat.Category == domain.CategoryServiceRequest {
		score += w.ServiceRequest
		reasons = append(reasons, fmt.Sprintf("service request (%+d)", w.ServiceRequest))
	}

	if cat.IsPaymentRequest && !cat.IsFromOwnOrg {
		score += w.ExternalPaymentRequest
		reasons = append(reasons, fmt.Sprintf("external payment request (%+d)", w.ExternalPaymentRequest))
	}

	switch cat.Urgency {
	case domain.UrgencyHigh:
		score += w.UrgencyHigh
		reasons = append(reasons, fmt.Sprintf("high urgency (%+d)", w.UrgencyHigh))
	case domain.UrgencyLow:
		score += w.UrgencyLow
		reasons = append(reasons, fmt.Sprintf("low urgency (%+d)", w.UrgencyLow))
	}

	if cat.NeedsResponse {
		score += w.NeedsResponse
		reasons = append(reasons, fmt.Sprintf("needs response (%+d)", w.NeedsResponse))
	}

	if email.IsImportant || email.HasLabel(domain.LabelImportant) {
		score += w.ImportantLabel
		reasons = append(reasons, fmt.Sprintf("marked important (%+d)", w.ImportantLabel))
	}

	if email.IsStarred || email.HasLabel(domain.LabelStarred) {
		score += w.StarredLabel
		reasons = append(reasons, fmt.Sprintf("starred (%+d)", w.StarredLabel))
	}

	if !email.IsRead || email.HasLabel(domain.LabelUnread) {
		score += w.UnreadLabel
		reasons = append(reasons, fmt.Sprintf("unread (%+d)", w.UnreadLabel))
	}

	if cat.Category.IsLowValue() {
		score += w.LowValuePenalty
		reasons = append(reasons, fmt.Sprintf("%s (%+d)", cat.Category, w.LowValuePenalty))
	}

	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}

	return &domain.PriorityResult{
		Score:   score,
		Level:   domain.LevelForScore(score),
		Reasons: reasons,
	}
}
