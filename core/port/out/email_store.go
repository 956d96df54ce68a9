// Package out defines outbound ports for external collaborators.
package out

import (
	"context"

	"inboxcore/core/domain"
)

// Indexed field names understood by the email store.
const (
	FieldSubject           = "subject"
	FieldBodyPlain         = "body_plain"
	FieldSnippet           = "snippet"
	FieldSenderEmail       = "sender.email"
	FieldSenderName        = "sender.name"
	FieldRecipients        = "recipients"
	FieldCc                = "cc"
	FieldBcc               = "bcc"
	FieldDate              = "date"
	FieldLabels            = "labels"
	FieldIsRead            = "is_read"
	FieldHasAttachments    = "has_attachments"
	FieldCategory          = "category"
	FieldThreadID          = "thread_id"
	FieldAttachmentName    = "attachments.filename"
	FieldAttachmentContent = "attachments.parsed_content"
)

// Sort orders.
const (
	SortAsc  = "asc"
	SortDesc = "desc"
)

// PredicateKind discriminates predicate tree nodes.
type PredicateKind int

const (
	KindMultiMatch PredicateKind = iota
	KindTerm
	KindWildcard
	KindRange
	KindExists
	KindBool
)

// WeightedField is a searchable field with a relative relevance weight.
type WeightedField struct {
	Field  string
	Weight int
}

// Predicate is one node of the store-agnostic query tree. Exactly the
// fields for its Kind are populated.
type Predicate struct {
	Kind PredicateKind

	// MultiMatch
	Text   string
	Fields []WeightedField
	Fuzzy  bool

	// Term / Wildcard / Range / Exists
	Field   string
	Value   any
	Pattern string // wildcard pattern, `*` matches any run of characters
	GTE     any
	LTE     any

	// Bool
	Must               []*Predicate
	Should             []*Predicate
	MustNot            []*Predicate
	MinimumShouldMatch int
}

// MultiMatch matches free text across several weighted fields.
func MultiMatch(text string, fields []WeightedField, fuzzy bool) *Predicate {
	return &Predicate{Kind: KindMultiMatch, Text: text, Fields: fields, Fuzzy: fuzzy}
}

// Term matches a field exactly.
func Term(field string, value any) *Predicate {
	return &Predicate{Kind: KindTerm, Field: field, Value: value}
}

// Wildcard matches a field against a pattern where `*` is a wildcard.
func Wildcard(field, pattern string) *Predicate {
	return &Predicate{Kind: KindWildcard, Field: field, Pattern: pattern}
}

// Range matches a field within inclusive bounds. Either bound may be nil.
func Range(field string, gte, lte any) *Predicate {
	return &Predicate{Kind: KindRange, Field: field, GTE: gte, LTE: lte}
}

// Exists matches records where the field is present.
func Exists(field string) *Predicate {
	return &Predicate{Kind: KindExists, Field: field}
}

// Bool combines sub-predicates.
func Bool() *Predicate {
	return &Predicate{Kind: KindBool}
}

// WithMust appends required sub-predicates.
func (p *Predicate) WithMust(preds ...*Predicate) *Predicate {
	p.Must = append(p.Must, preds...)
	return p
}

// WithShould appends optional sub-predicates.
func (p *Predicate) WithShould(preds ...*Predicate) *Predicate {
	p.Should = append(p.Should, preds...)
	return p
}

// WithMustNot appends excluding sub-predicates.
func (p *Predicate) WithMustNot(preds ...*Predicate) *Predicate {
	p.MustNot = append(p.MustNot, preds...)
	return p
}

// WithMinimumShouldMatch sets how many should-clauses must match.
func (p *Predicate) WithMinimumShouldMatch(n int) *Predicate {
	p.MinimumShouldMatch = n
	return p
}

// Query is a complete store request: predicate tree plus paging and sort.
// A nil Root means match-all.
type Query struct {
	Root      *Predicate
	Size      int
	SortField string
	SortOrder string
}

// EmailStore is the document store contract. Implementations surface
// infrastructure failures as-is; callers wrap them at the boundary.
type EmailStore interface {
	// Search executes the query and returns matching records in sort order.
	Search(ctx context.Context, q *Query) ([]*domain.EmailDocument, error)

	// Update applies a partial field update to one record by ID.
	Update(ctx context.Context, id string, fields map[string]any) error

	// BulkIndex upserts a batch of records keyed by their IDs.
	BulkIndex(ctx context.Context, emails []*domain.EmailDocument) error
}
