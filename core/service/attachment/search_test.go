package attachment

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"inboxcore/core/domain"
	"inboxcore/core/port/out"
	"inboxcore/pkg/apperr"
)

// fakeStore returns canned results and records the last query.
type fakeStore struct {
	results   []*domain.EmailDocument
	lastQuery *out.Query
	err       error
}

func (f *fakeStore) Search(_ context.Context, q *out.Query) ([]*domain.EmailDocument, error) {
	f.lastQuery = q
	return f.results, f.err
}

func (f *fakeStore) Update(context.Context, string, map[string]any) error { return nil }

func (f *fakeStore) BulkIndex(context.Context, []*domain.EmailDocument) error { return nil }

func TestSearchContentMatch(t *testing.T) {
	store := &fakeStore{
		results: []*domain.EmailDocument{
			{
				ID:             "e1",
				Subject:        "Vendor agreement",
				Date:           time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
				HasAttachments: true,
				Attachments: []domain.Attachment{
					{Filename: "logo.png", MimeType: "image/png"},
					{
						Filename:      "contract.pdf",
						MimeType:      "application/pdf",
						Size:          2048,
						ParsedContent: "Payment terms are net 30 from date of invoice receipt.",
					},
				},
			},
		},
	}
	s := NewSearcher(store, zerolog.Nop())

	results, err := s.Search(context.Background(), Request{SearchText: "net 30"})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("got %d results, want 1", len(results))
	}

	r := results[0]
	if r.MatchReason != MatchContent {
		t.Errorf("MatchReason = %s, want content", r.MatchReason)
	}
	if len(r.Matches) != 1 {
		t.Fatalf("got %d matches, want 1 (logo.png must be filtered out)", len(r.Matches))
	}
	if r.Matches[0].Filename != "contract.pdf" {
		t.Errorf("matched %s, want contract.pdf", r.Matches[0].Filename)
	}
	if !strings.Contains(r.Matches[0].Context, "net 30") {
		t.Errorf("context %q does not contain the search text", r.Matches[0].Context)
	}
}

func TestSearchFilenameMatch(t *testing.T) {
	store := &fakeStore{
		results: []*domain.EmailDocument{
			{
				ID:             "e1",
				HasAttachments: true,
				Attachments: []domain.Attachment{
					{Filename: "invoice_march.pdf", MimeType: "application/pdf"},
				},
			},
		},
	}
	s := NewSearcher(store, zerolog.Nop())

	results, err := s.Search(context.Background(), Request{SearchText: "invoice"})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(results) != 1 || results[0].MatchReason != MatchFilename {
		t.Fatalf("want one filename match, got %+v", results)
	}
	if results[0].Matches[0].Context != "" {
		t.Errorf("filename match should have no context window, got %q", results[0].Matches[0].Context)
	}
}

func TestSearchContentBeatsFilename(t *testing.T) {
	store := &fakeStore{
		results: []*domain.EmailDocument{
			{
				ID:             "e1",
				HasAttachments: true,
				Attachments: []domain.Attachment{
					{Filename: "invoice.pdf", MimeType: "application/pdf"},
					{Filename: "notes.txt", MimeType: "text/plain", ParsedContent: "attached invoice for review"},
				},
			},
		},
	}
	s := NewSearcher(store, zerolog.Nop())

	results, err := s.Search(context.Background(), Request{SearchText: "invoice"})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if results[0].MatchReason != MatchContent {
		t.Errorf("MatchReason = %s, want content to win over filename", results[0].MatchReason)
	}
	if len(results[0].Matches) != 2 {
		t.Errorf("got %d matches, want both attachments", len(results[0].Matches))
	}
}

func TestSearchDropsEmailWithoutRelevantAttachments(t *testing.T) {
	store := &fakeStore{
		results: []*domain.EmailDocument{
			{
				ID:             "decorative-only",
				Subject:        "invoice mentioned in subject",
				HasAttachments: true,
				Attachments: []domain.Attachment{
					{Filename: "logo.png", MimeType: "image/png"},
				},
			},
		},
	}
	s := NewSearcher(store, zerolog.Nop())

	results, err := s.Search(context.Background(), Request{SearchText: "invoice"})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(results) != 0 {
		t.Errorf("email with only decorative attachments should be dropped, got %d results", len(results))
	}
}

func TestSearchTextOnlyMatchReportsNone(t *testing.T) {
	store := &fakeStore{
		results: []*domain.EmailDocument{
			{
				ID:             "e1",
				Subject:        "quarterly budget discussion",
				HasAttachments: true,
				Attachments: []domain.Attachment{
					{Filename: "minutes.pdf", MimeType: "application/pdf"},
				},
			},
		},
	}
	s := NewSearcher(store, zerolog.Nop())

	results, err := s.Search(context.Background(), Request{SearchText: "budget"})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("got %d results, want 1", len(results))
	}
	if results[0].MatchReason != MatchNone {
		t.Errorf("MatchReason = %s, want none for a subject-only match", results[0].MatchReason)
	}
	if len(results[0].Matches) != 0 {
		t.Errorf("subject-only match should list no attachment matches")
	}
}

func TestSearchOverFetch(t *testing.T) {
	store := &fakeStore{}
	s := NewSearcher(store, zerolog.Nop())

	if _, err := s.Search(context.Background(), Request{SearchText: "x", MaxResults: 7}); err != nil {
		t.Fatalf("Search() error = %v", err)
	}

	if store.lastQuery.Size != 7*overFetchFactor {
		t.Errorf("store query size = %d, want %d", store.lastQuery.Size, 7*overFetchFactor)
	}
	if store.lastQuery.Root.Must[0].Field != out.FieldHasAttachments {
		t.Errorf("first must clause should restrict to has_attachments")
	}
}

func TestSearchMissingText(t *testing.T) {
	s := NewSearcher(&fakeStore{}, zerolog.Nop())
	if _, err := s.Search(context.Background(), Request{}); err == nil {
		t.Error("expected error for missing search_text")
	}
}

func TestContextAroundWindow(t *testing.T) {
	long := strings.Repeat("a", 300) + "NEEDLE" + strings.Repeat("b", 300)

	window, ok := contextAround(long, "needle")
	if !ok {
		t.Fatal("expected a match")
	}
	if len(window) != contextWindow+len("needle")+contextWindow {
		t.Errorf("window length = %d, want %d", len(window), 2*contextWindow+len("needle"))
	}
	if !strings.Contains(window, "NEEDLE") {
		t.Errorf("window %q does not contain the original-case match", window)
	}
}

func TestContextAroundMultibyte(t *testing.T) {
	// 3-byte runes put the naive window edges mid-rune.
	content := strings.Repeat("€", 50) + "NEEDLE" + strings.Repeat("€", 50)

	window, ok := contextAround(content, "needle")
	if !ok {
		t.Fatal("expected a match")
	}
	if !utf8.ValidString(window) {
		t.Errorf("window is not valid UTF-8: %q", window)
	}
	if !strings.Contains(window, "NEEDLE") {
		t.Errorf("window %q does not contain the match", window)
	}
}

func TestContextAroundFoldChangesLength(t *testing.T) {
	// Lowering U+0130 changes the byte length, so offsets computed on the
	// lowered text would misalign against the original.
	content := strings.Repeat("İ", 60) + " NEEDLE here"

	window, ok := contextAround(content, "needle")
	if !ok {
		t.Fatal("expected a match")
	}
	if !utf8.ValidString(window) {
		t.Errorf("window is not valid UTF-8: %q", window)
	}
	if !strings.Contains(strings.ToLower(window), "needle") {
		t.Errorf("window %q does not contain the match", window)
	}
}

func TestSearchStoreFailure(t *testing.T) {
	store := &fakeStore{err: errors.New("connection refused")}
	s := NewSearcher(store, zerolog.Nop())

	_, err := s.Search(context.Background(), Request{SearchText: "invoice"})
	if err == nil {
		t.Fatal("expected error when the store is down")
	}
	if code := apperr.AsAppError(err).Code; code != apperr.CodeStoreUnavailable {
		t.Errorf("error code = %s, want %s", code, apperr.CodeStoreUnavailable)
	}
}
