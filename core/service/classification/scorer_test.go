package classification

import (
	"strings"
	"testing"

	"inboxcore/core/domain"
)

func TestScoreBaseline(t *testing.T) {
	s := NewScorer(DefaultScoreWeights())

	email := &domain.EmailDocument{IsRead: true}
	cat := &domain.CategoryResult{
		Category: domain.CategoryGeneralCorrespondence,
		Urgency:  domain.UrgencyMedium,
	}

	result := s.Score(email, cat)
	if result.Score != 50 {
		t.Errorf("baseline score = %d, want 50", result.Score)
	}
	if result.Level != domain.PriorityMedium {
		t.Errorf("level = %s, want medium", result.Level)
	}
	if len(result.Reasons) != 0 {
		t.Errorf("baseline should have no adjustment reasons, got %v", result.Reasons)
	}
}

func TestScoreClampUpper(t *testing.T) {
	s := NewScorer(DefaultScoreWeights())

	// 50 + 30 + 25 + 10 + 5 = 120, clamped to 100.
	email := &domain.EmailDocument{IsRead: false, IsStarred: true}
	cat := &domain.CategoryResult{
		Category: domain.CategoryServiceRequest,
		Urgency:  domain.UrgencyHigh,
	}

	result := s.Score(email, cat)
	if result.Score != 100 {
		t.Errorf("score = %d, want 100 (clamped)", result.Score)
	}
	if result.Level != domain.PriorityCritical {
		t.Errorf("level = %s, want critical", result.Level)
	}
}

func TestScoreLowValuePenalty(t *testing.T) {
	s := NewScorer(DefaultScoreWeights())

	// 50 - 40 = 10, read so no unread bonus.
	email := &domain.EmailDocument{IsRead: true}
	cat := &domain.CategoryResult{
		Category: domain.CategoryPromotional,
		Urgency:  domain.UrgencyMedium,
	}

	result := s.Score(email, cat)
	if result.Score != 10 {
		t.Errorf("promotional score = %d, want 10", result.Score)
	}
	if result.Level != domain.PriorityLow {
		t.Errorf("level = %s, want low", result.Level)
	}
}

func TestScoreClampLower(t *testing.T) {
	s := NewScorer(DefaultScoreWeights())

	// 50 - 40 - 10 = 0; add a bigger penalty via custom weights to force
	// clamping from below.
	w := DefaultScoreWeights()
	w.LowValuePenalty = -80
	s = NewScorer(w)

	email := &domain.EmailDocument{IsRead: true}
	cat := &domain.CategoryResult{
		Category: domain.CategorySpam,
		Urgency:  domain.UrgencyLow,
	}

	result := s.Score(email, cat)
	if result.Score != 0 {
		t.Errorf("score = %d, want 0 (clamped)", result.Score)
	}
}

func TestScoreExternalPaymentRequest(t *testing.T) {
	s := NewScorer(DefaultScoreWeights())

	email := &domain.EmailDocument{IsRead: true}

	external := &domain.CategoryResult{
		Category:         domain.CategoryPaymentRequestExternal,
		IsPaymentRequest: true,
		IsFromOwnOrg:     false,
		Urgency:          domain.UrgencyMedium,
	}
	internal := &domain.CategoryResult{
		Category:         domain.CategoryPaymentRequestInternal,
		IsPaymentRequest: true,
		IsFromOwnOrg:     true,
		Urgency:          domain.UrgencyMedium,
	}

	if got := s.Score(email, external).Score; got != 70 {
		t.Errorf("external payment score = %d, want 70", got)
	}
	if got := s.Score(email, internal).Score; got != 50 {
		t.Errorf("internal payment score = %d, want 50 (no bonus)", got)
	}
}

func TestScoreLabelsAndFlags(t *testing.T) {
	s := NewScorer(DefaultScoreWeights())

	cat := &domain.CategoryResult{
		Category: domain.CategoryGeneralCorrespondence,
		Urgency:  domain.UrgencyMedium,
	}

	// Label and boolean flag are equivalent signals; both together still
	// count once.
	byFlag := &domain.EmailDocument{IsRead: true, IsImportant: true}
	byLabel := &domain.EmailDocument{IsRead: true, Labels: []string{domain.LabelImportant}}
	byBoth := &domain.EmailDocument{IsRead: true, IsImportant: true, Labels: []string{domain.LabelImportant}}

	want := 60
	for name, e := range map[string]*domain.EmailDocument{"flag": byFlag, "label": byLabel, "both": byBoth} {
		if got := s.Score(e, cat).Score; got != want {
			t.Errorf("%s: score = %d, want %d", name, got, want)
		}
	}
}

func TestScoreReasonsOrderAndFormat(t *testing.T) {
	s := NewScorer(DefaultScoreWeights())

	email := &domain.EmailDocument{IsRead: false}
	cat := &domain.CategoryResult{
		Category:      domain.CategoryServiceRequest,
		Urgency:       domain.UrgencyHigh,
		NeedsResponse: true,
	}

	result := s.Score(email, cat)

	want := []string{"service request", "high urgency", "needs response", "unread"}
	if len(result.Reasons) != len(want) {
		t.Fatalf("got %d reasons %v, want %d", len(result.Reasons), result.Reasons, len(want))
	}
	for i, prefix := range want {
		if !strings.HasPrefix(result.Reasons[i], prefix) {
			t.Errorf("reason %d = %q, want prefix %q", i, result.Reasons[i], prefix)
		}
	}
	if !strings.Contains(result.Reasons[0], "(+30)") {
		t.Errorf("reason %q should carry the signed weight", result.Reasons[0])
	}
}

func TestLevelThresholds(t *testing.T) {
	tests := []struct {
		score int
		want  domain.PriorityLevel
	}{
		{100, domain.PriorityCritical},
		{80, domain.PriorityCritical},
		{79, domain.PriorityHigh},
		{65, domain.PriorityHigh},
		{64, domain.PriorityMedium},
		{40, domain.PriorityMedium},
		{39, domain.PriorityLow},
		{0, domain.PriorityLow},
	}

	for _, tt := range tests {
		if got := domain.LevelForScore(tt.score); got != tt.want {
			t.Errorf("LevelForScore(%d) = %s, want %s", tt.score, got, tt.want)
		}
	}
}

func TestMinScoreForLevel(t *testing.T) {
	tests := []struct {
		level domain.PriorityLevel
		want  int
		ok    bool
	}{
		{domain.PriorityCritical, domain.ScoreCriticalThreshold, true},
		{domain.PriorityHigh, domain.ScoreHighThreshold, true},
		{domain.PriorityMedium, domain.ScoreMediumThreshold, true},
		{domain.PriorityLow, 0, true},
		{"urgent", 0, false},
	}
	for _, tt := range tests {
		got, ok := domain.MinScoreForLevel(tt.level)
		if got != tt.want || ok != tt.ok {
			t.Errorf("MinScoreForLevel(%s) = (%d, %v), want (%d, %v)", tt.level, got, ok, tt.want, tt.ok)
		}
	}
}
