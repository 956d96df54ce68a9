// Package classification categorizes and prioritizes email records.
package classification

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"inboxcore/core/domain"
	"inboxcore/core/port/out"
)

// bodyExcerptLimit caps the plain-body slice sent to the classifier.
const bodyExcerptLimit = 1500

// categoryCacheKeyPrefix namespaces category results in the shared cache.
const categoryCacheKeyPrefix = "category:"

// Payment-related keywords for the legacy keyword path. Lower precision
// than the classifier; kept for offline and degraded operation.
var paymentKeywords = []string{
	"invoice", "payment", "remittance", "wire transfer",
	"bank details", "amount due", "balance due", "past due",
	"purchase order", "billing",
}

// Categorizer assigns a category to an email, with a deterministic
// fallback when the classifier fails or returns an invalid payload.
type Categorizer struct {
	classifier  out.EmailClassifier
	cache       out.Cache // optional
	cacheTTL    time.Duration
	ownOrgToken string
	log         zerolog.Logger
}

// NewCategorizer creates a categorizer. cache may be nil.
func NewCategorizer(classifier out.EmailClassifier, cache out.Cache, cacheTTL time.Duration, ownOrgToken string, log zerolog.Logger) *Categorizer {
	return &Categorizer{
		classifier:  classifier,
		cache:       cache,
		cacheTTL:    cacheTTL,
		ownOrgToken: strings.ToLower(ownOrgToken),
		log:         log.With().Str("component", "categorizer").Logger(),
	}
}

// Categorize returns a category result for the email. It never fails:
// classifier errors, timeouts, and invalid payloads all degrade to the
// fallback result with the reason recorded.
func (c *Categorizer) Categorize(ctx context.Context, email *domain.EmailDocument) *domain.CategoryResult {
	if c.cache != nil {
		var cached domain.CategoryResult
		found, err := c.cache.GetJSON(ctx, categoryCacheKeyPrefix+email.ID, &cached)
		if err != nil {
			c.log.Warn().Err(err).Str("email_id", email.ID).Msg("category cache read failed")
		} else if found {
			return &cached
		}
	}

	input := out.ClassifyInput{
		Sender:      email.Sender.Email,
		SenderName:  email.Sender.Name,
		Subject:     email.Subject,
		Snippet:     email.Snippet,
		BodyExcerpt: email.BodyExcerpt(bodyExcerptLimit),
	}

	raw, err := c.classifier.Classify(ctx, input)
	if err != nil {
		c.log.Warn().Err(err).Str("email_id", email.ID).Msg("classification failed, using fallback")
		return c.fallback(email, "classifier error: "+err.Error())
	}

	result, reason := c.validate(raw, email)
	if reason != "" {
		c.log.Warn().
			Str("email_id", email.ID).
			Str("reason", reason).
			Msg("invalid classification payload, using fallback")
		return c.fallback(email, reason)
	}

	if c.cache != nil {
		if err := c.cache.SetJSON(ctx, categoryCacheKeyPrefix+email.ID, result, c.cacheTTL); err != nil {
			c.log.Warn().Err(err).Str("email_id", email.ID).Msg("category cache write failed")
		}
	}

	return result
}

// validate converts a raw classifier payload into a trusted result, or
// returns a non-empty reason when the payload fails validation.
func (c *Categorizer) validate(raw *out.ClassifyResult, email *domain.EmailDocument) (*domain.CategoryResult, string) {
	if raw == nil {
		return nil, "empty classifier response"
	}
	if !domain.ValidateCategory(raw.Category) {
		return nil, "unknown category: " + raw.Category
	}
	if !domain.ValidUrgencies[domain.Urgency(raw.Urgency)] {
		return nil, "unknown urgency: " + raw.Urgency
	}

	return &domain.CategoryResult{
		Category:         domain.EmailCategory(raw.Category),
		IsPaymentRequest: raw.IsPaymentRequest,
		IsFromOwnOrg:     raw.IsFromOwnOrg,
		Urgency:          domain.Urgency(raw.Urgency),
		NeedsResponse:    raw.NeedsResponse,
		Summary:          raw.Summary,
		Source:           domain.SourceLLM,
	}, ""
}

// fallback is the deterministic degraded result. Own-org detection still
// works because it only needs the sender address.
func (c *Categorizer) fallback(email *domain.EmailDocument, reason string) *domain.CategoryResult {
	return &domain.CategoryResult{
		Category:         domain.CategoryGeneralCorrespondence,
		IsPaymentRequest: false,
		IsFromOwnOrg:     c.isFromOwnOrg(email),
		Urgency:          domain.UrgencyMedium,
		NeedsResponse:    false,
		Source:           domain.SourceFallback,
		FallbackReason:   reason,
	}
}

func (c *Categorizer) isFromOwnOrg(email *domain.EmailDocument) bool {
	if c.ownOrgToken == "" {
		return false
	}
	sender := strings.ToLower(email.Sender.Email + " " + email.Sender.Name)
	return strings.Contains(sender, c.ownOrgToken)
}

// ContainsPaymentKeywords reports whether the text mentions payments.
func ContainsPaymentKeywords(text string) bool {
	lower := strings.ToLower(text)
	for _, kw := range paymentKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// CategorizeKeyword is the legacy keyword-only path. It distinguishes
// payment requests by keyword membership and origin, nothing more.
func (c *Categorizer) CategorizeKeyword(email *domain.EmailDocument) *domain.CategoryResult {
	isPayment := ContainsPaymentKeywords(email.Subject + " " + email.Snippet)
	fromOwnOrg := c.isFromOwnOrg(email)

	category := domain.CategoryGeneralCorrespondence
	if isPayment {
		if fromOwnOrg {
			category = domain.CategoryPaymentRequestInternal
		} else {
			category = domain.CategoryPaymentRequestExternal
		}
	}

	return &domain.CategoryResult{
		Category:         category,
		IsPaymentRequest: isPayment,
		IsFromOwnOrg:     fromOwnOrg,
		Urgency:          domain.UrgencyMedium,
		NeedsResponse:    isPayment,
		Source:           domain.SourceKeyword,
	}
}
