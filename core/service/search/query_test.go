package search

import (
	"testing"
	"time"

	"inboxcore/core/port/out"
)

func TestBuildQueryEmptyRequest(t *testing.T) {
	now := time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC)

	q := BuildQuery(Request{}, now)

	if q.Root != nil {
		t.Errorf("empty request should build a match-all query, got root %+v", q.Root)
	}
	if q.Size != DefaultMaxResults {
		t.Errorf("Size = %d, want default %d", q.Size, DefaultMaxResults)
	}
	if q.SortField != out.FieldDate || q.SortOrder != out.SortDesc {
		t.Errorf("sort = %s %s, want date desc", q.SortField, q.SortOrder)
	}
}

func TestBuildQueryFreeText(t *testing.T) {
	now := time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC)

	q := BuildQuery(Request{SearchText: "quarterly invoice"}, now)

	root := q.Root
	if root == nil || root.Kind != out.KindMultiMatch {
		t.Fatalf("single filter should be the root predicate, got %+v", root)
	}
	if root.Text != "quarterly invoice" || !root.Fuzzy {
		t.Errorf("multi-match = %q fuzzy=%v, want text with fuzzy on", root.Text, root.Fuzzy)
	}

	wantWeights := map[string]int{
		out.FieldSubject:   3,
		out.FieldBodyPlain: 2,
		out.FieldSnippet:   1,
	}
	if len(root.Fields) != len(wantWeights) {
		t.Fatalf("got %d weighted fields, want %d", len(root.Fields), len(wantWeights))
	}
	for _, f := range root.Fields {
		if wantWeights[f.Field] != f.Weight {
			t.Errorf("field %s weight = %d, want %d", f.Field, f.Weight, wantWeights[f.Field])
		}
	}
}

func TestBuildQuerySenderOnly(t *testing.T) {
	now := time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC)

	q := BuildQuery(Request{Sender: "alice@example.com"}, now)

	root := q.Root
	if root == nil || root.Kind != out.KindBool {
		t.Fatalf("sender filter should be a bool predicate, got %+v", root)
	}
	if len(root.Should) != 2 || root.MinimumShouldMatch != 1 {
		t.Fatalf("sender bool = %d should clauses min %d, want 2 and 1", len(root.Should), root.MinimumShouldMatch)
	}

	wc := root.Should[0]
	if wc.Kind != out.KindWildcard || wc.Field != out.FieldSenderEmail || wc.Pattern != "*alice@example.com*" {
		t.Errorf("first should clause = %+v, want substring wildcard on sender.email", wc)
	}
	name := root.Should[1]
	if name.Kind != out.KindTerm || name.Field != out.FieldSenderName {
		t.Errorf("second should clause = %+v, want term on sender.name", name)
	}
}

func TestBuildQueryCombinedFilters(t *testing.T) {
	now := time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC)
	hasAtt := true
	isRead := false

	q := BuildQuery(Request{
		SearchText:     "contract",
		Category:       "service_request",
		HasAttachments: &hasAtt,
		IsRead:         &isRead,
		Labels:         []string{"IMPORTANT"},
		DateFrom:       "2025-03-01",
		DateTo:         "2025-03-10",
		MaxResults:     25,
	}, now)

	root := q.Root
	if root == nil || root.Kind != out.KindBool {
		t.Fatalf("combined filters should AND under a bool, got %+v", root)
	}
	// multi-match + category + label + has_attachments + is_read + date range
	if len(root.Must) != 6 {
		t.Fatalf("got %d must clauses, want 6", len(root.Must))
	}
	if root.Must[0].Kind != out.KindMultiMatch {
		t.Errorf("first must clause should be the multi-match, got %+v", root.Must[0])
	}
	if q.Size != 25 {
		t.Errorf("Size = %d, want 25", q.Size)
	}

	var rng *out.Predicate
	for _, m := range root.Must {
		if m.Kind == out.KindRange {
			rng = m
		}
	}
	if rng == nil {
		t.Fatal("no range predicate built for the date filters")
	}
	gte, ok := rng.GTE.(time.Time)
	if !ok || !gte.Equal(time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("range gte = %v, want 2025-03-01 midnight", rng.GTE)
	}
	lte, ok := rng.LTE.(time.Time)
	if !ok || lte.Before(time.Date(2025, 3, 10, 23, 59, 59, 0, time.UTC)) {
		t.Errorf("range lte = %v, want end of 2025-03-10", rng.LTE)
	}
}

func TestBuildQueryRelativeDates(t *testing.T) {
	now := time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)

	q := BuildQuery(Request{DateFrom: "last 7 days"}, now)

	root := q.Root
	if root == nil || root.Kind != out.KindRange {
		t.Fatalf("relative date should normalize into a range, got %+v", root)
	}
	gte, ok := root.GTE.(time.Time)
	if !ok || !gte.Equal(time.Date(2025, 3, 8, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("range gte = %v, want 2025-03-08", root.GTE)
	}
	if root.LTE != nil {
		t.Errorf("range lte = %v, want open upper bound", root.LTE)
	}
}

func TestBuildQueryUnparseableDateSkipped(t *testing.T) {
	now := time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC)

	q := BuildQuery(Request{DateFrom: "whenever"}, now)

	if q.Root != nil {
		t.Errorf("unparseable date should be dropped, got root %+v", q.Root)
	}
}

func TestBuildQueryDeterministic(t *testing.T) {
	now := time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC)
	req := Request{SearchText: "hello", Sender: "bob", Category: "spam"}

	a := BuildQuery(req, now)
	b := BuildQuery(req, now)

	if len(a.Root.Must) != len(b.Root.Must) {
		t.Fatalf("clause counts differ: %d vs %d", len(a.Root.Must), len(b.Root.Must))
	}
	for i := range a.Root.Must {
		if a.Root.Must[i].Kind != b.Root.Must[i].Kind {
			t.Errorf("clause %d kind differs between identical builds", i)
		}
	}
}
