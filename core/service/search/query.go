package search

import (
	"time"

	"inboxcore/core/port/out"
)

// DefaultMaxResults is the page size applied when the request sets none.
const DefaultMaxResults = 10

// Field weights for free-text matching. Subject matches count most,
// body matches more than snippet matches.
var textSearchFields = []out.WeightedField{
	{Field: out.FieldSubject, Weight: 3},
	{Field: out.FieldBodyPlain, Weight: 2},
	{Field: out.FieldSnippet, Weight: 1},
}

// Request is a user-level search request. All filters are optional and
// AND-combined; an empty request matches everything.
type Request struct {
	SearchText     string   `json:"search_text"`
	Sender         string   `json:"sender"`
	Recipient      string   `json:"recipient"`
	Category       string   `json:"category"`
	DateFrom       string   `json:"date_from"`
	DateTo         string   `json:"date_to"`
	HasAttachments *bool    `json:"has_attachments"`
	Labels         []string `json:"labels"`
	IsRead         *bool    `json:"is_read"`
	MaxResults     int      `json:"max_results"`
}

// BuildQuery translates a request into a store query. Relative dates are
// normalized against now; date values that still fail to parse after
// normalization are skipped rather than rejected. Output is deterministic
// for a fixed request and reference time.
func BuildQuery(req Request, now time.Time) *out.Query {
	var must []*out.Predicate

	if req.SearchText != "" {
		must = append(must, out.MultiMatch(req.SearchText, textSearchFields, true))
	}

	if req.Sender != "" {
		// Match either the address (substring) or the display name.
		sender := out.Bool().
			WithShould(
				out.Wildcard(out.FieldSenderEmail, "*"+req.Sender+"*"),
				out.Term(out.FieldSenderName, req.Sender),
			).
			WithMinimumShouldMatch(1)
		must = append(must, sender)
	}

	if req.Recipient != "" {
		must = append(must, out.Wildcard(out.FieldRecipients, "*"+req.Recipient+"*"))
	}

	if req.Category != "" {
		must = append(must, out.Term(out.FieldCategory, req.Category))
	}

	for _, label := range req.Labels {
		must = append(must, out.Term(out.FieldLabels, label))
	}

	if req.HasAttachments != nil {
		must = append(must, out.Term(out.FieldHasAttachments, *req.HasAttachments))
	}

	if req.IsRead != nil {
		must = append(must, out.Term(out.FieldIsRead, *req.IsRead))
	}

	if r := buildDateRange(req.DateFrom, req.DateTo, now); r != nil {
		must = append(must, r)
	}

	size := req.MaxResults
	if size <= 0 {
		size = DefaultMaxResults
	}

	q := &out.Query{
		Size:      size,
		SortField: out.FieldDate,
		SortOrder: out.SortDesc,
	}

	switch len(must) {
	case 0:
		// match-all
	case 1:
		q.Root = must[0]
	default:
		q.Root = out.Bool().WithMust(must...)
	}

	return q
}

// buildDateRange normalizes both bounds and builds an inclusive range.
// A bound that cannot be parsed even after normalization is dropped.
func buildDateRange(from, to string, now time.Time) *out.Predicate {
	var gte, lte any

	if from != "" {
		if t, err := time.Parse(dateLayout, NormalizeDate(from, now)); err == nil {
			gte = t
		}
	}
	if to != "" {
		if t, err := time.Parse(dateLayout, NormalizeDate(to, now)); err == nil {
			// Inclusive upper bound covers the whole day.
			lte = t.Add(24*time.Hour - time.Nanosecond)
		}
	}

	if gte == nil && lte == nil {
		return nil
	}
	return out.Range(out.FieldDate, gte, lte)
}
