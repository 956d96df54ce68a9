package out

import "context"

// ClassifyInput is the slice of an email sent to the classifier.
// The body excerpt is already truncated by the caller.
type ClassifyInput struct {
	Sender      string
	SenderName  string
	Subject     string
	Snippet     string
	BodyExcerpt string
}

// ClassifyResult is the raw classifier output. The caller validates it
// against the closed category and urgency sets before trusting it.
type ClassifyResult struct {
	Category         string `json:"category"`
	IsPaymentRequest bool   `json:"is_payment_request"`
	IsFromOwnOrg     bool   `json:"is_from_own_org"`
	Urgency          string `json:"urgency"`
	NeedsResponse    bool   `json:"needs_response"`
	Summary          string `json:"summary"`
}

// EmailClassifier categorizes a single email. Implementations honor the
// context deadline and may fail; callers recover with a fallback result.
type EmailClassifier interface {
	Classify(ctx context.Context, input ClassifyInput) (*ClassifyResult, error)
}
