package domain

// EmailCategory is the closed set of categories an email can be assigned.
type EmailCategory string

const (
	CategoryPaymentRequestExternal EmailCategory = "payment_request_external"
	CategoryPaymentRequestInternal EmailCategory = "payment_request_internal"
	CategoryServiceRequest         EmailCategory = "service_request"
	CategoryGeneralCorrespondence  EmailCategory = "general_correspondence"
	CategoryPromotional            EmailCategory = "promotional"
	CategorySpam                   EmailCategory = "spam"
	CategoryNotification           EmailCategory = "notification"
)

// ValidCategories is the allowlist used to validate classifier output.
var ValidCategories = map[EmailCategory]bool{
	CategoryPaymentRequestExternal: true,
	CategoryPaymentRequestInternal: true,
	CategoryServiceRequest:         true,
	CategoryGeneralCorrespondence:  true,
	CategoryPromotional:            true,
	CategorySpam:                   true,
	CategoryNotification:           true,
}

// ValidateCategory reports whether s is a member of the closed category set.
func ValidateCategory(s string) bool {
	return ValidCategories[EmailCategory(s)]
}

// IsLowValue reports whether the category is excluded from ranked views.
func (c EmailCategory) IsLowValue() bool {
	return c == CategoryPromotional || c == CategorySpam || c == CategoryNotification
}

// Urgency is the classifier's urgency estimate.
type Urgency string

const (
	UrgencyHigh   Urgency = "high"
	UrgencyMedium Urgency = "medium"
	UrgencyLow    Urgency = "low"
)

// ValidUrgencies is the allowlist used to validate classifier output.
var ValidUrgencies = map[Urgency]bool{
	UrgencyHigh:   true,
	UrgencyMedium: true,
	UrgencyLow:    true,
}

// ClassificationSource records which path produced a category result.
type ClassificationSource string

const (
	SourceLLM      ClassificationSource = "llm"
	SourceKeyword  ClassificationSource = "keyword"
	SourceFallback ClassificationSource = "fallback"
)

// CategoryResult is the outcome of categorizing a single email.
// It is always well-formed: callers never see a partial or invalid result.
type CategoryResult struct {
	Category         EmailCategory        `json:"category"`
	IsPaymentRequest bool                 `json:"is_payment_request"`
	IsFromOwnOrg     bool                 `json:"is_from_own_org"`
	Urgency          Urgency              `json:"urgency"`
	NeedsResponse    bool                 `json:"needs_response"`
	Summary          string               `json:"summary,omitempty"`
	Source           ClassificationSource `json:"source"`
	FallbackReason   string               `json:"fallback_reason,omitempty"`
}
