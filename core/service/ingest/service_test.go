package ingest

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"inboxcore/core/domain"
	"inboxcore/core/port/out"
	"inboxcore/pkg/apperr"
)

type fakeProvider struct {
	emails    []*domain.EmailDocument
	err       error
	lastQuery string
	lastMax   int64
}

func (f *fakeProvider) FetchMessages(_ context.Context, query string, max int64) ([]*domain.EmailDocument, error) {
	f.lastQuery = query
	f.lastMax = max
	return f.emails, f.err
}

type fakeStore struct {
	indexed []*domain.EmailDocument
	called  bool
	err     error
}

func (f *fakeStore) Search(context.Context, *out.Query) ([]*domain.EmailDocument, error) {
	return nil, nil
}

func (f *fakeStore) Update(context.Context, string, map[string]any) error { return nil }

func (f *fakeStore) BulkIndex(_ context.Context, emails []*domain.EmailDocument) error {
	f.called = true
	f.indexed = emails
	return f.err
}

func TestSyncFetchesAndIndexes(t *testing.T) {
	provider := &fakeProvider{
		emails: []*domain.EmailDocument{
			{ID: "m1", Subject: "hello"},
			{ID: "m2", Subject: "world"},
		},
	}
	store := &fakeStore{}
	s := NewService(provider, store, zerolog.Nop())

	result, err := s.Sync(context.Background(), Request{Query: "newer_than:7d"})
	if err != nil {
		t.Fatalf("Sync() error = %v", err)
	}

	if result.Fetched != 2 || result.Indexed != 2 {
		t.Errorf("result = %+v, want 2 fetched and indexed", result)
	}
	if len(store.indexed) != 2 || store.indexed[0].ID != "m1" {
		t.Errorf("store received %+v, want the fetched batch", store.indexed)
	}
	if provider.lastQuery != "newer_than:7d" {
		t.Errorf("provider query = %q, want passthrough", provider.lastQuery)
	}
	if provider.lastMax != DefaultMaxResults {
		t.Errorf("provider max = %d, want default %d", provider.lastMax, DefaultMaxResults)
	}
}

func TestSyncEmptyBatchSkipsStore(t *testing.T) {
	store := &fakeStore{}
	s := NewService(&fakeProvider{}, store, zerolog.Nop())

	result, err := s.Sync(context.Background(), Request{})
	if err != nil {
		t.Fatalf("Sync() error = %v", err)
	}
	if result.Fetched != 0 || result.Indexed != 0 {
		t.Errorf("result = %+v, want zeros", result)
	}
	if store.called {
		t.Error("BulkIndex must not be called for an empty batch")
	}
}

func TestSyncProviderFailure(t *testing.T) {
	provider := &fakeProvider{err: errors.New("quota exceeded")}
	s := NewService(provider, &fakeStore{}, zerolog.Nop())

	_, err := s.Sync(context.Background(), Request{})
	if err == nil {
		t.Fatal("expected error when the provider fails")
	}
	if code := apperr.AsAppError(err).Code; code != apperr.CodeExternalError {
		t.Errorf("error code = %s, want %s", code, apperr.CodeExternalError)
	}
}

func TestSyncStoreFailure(t *testing.T) {
	provider := &fakeProvider{emails: []*domain.EmailDocument{{ID: "m1"}}}
	store := &fakeStore{err: errors.New("connection refused")}
	s := NewService(provider, store, zerolog.Nop())

	_, err := s.Sync(context.Background(), Request{})
	if err == nil {
		t.Fatal("expected error when the store is down")
	}
	if code := apperr.AsAppError(err).Code; code != apperr.CodeStoreUnavailable {
		t.Errorf("error code = %s, want %s", code, apperr.CodeStoreUnavailable)
	}
}

func TestSyncUnconfiguredProvider(t *testing.T) {
	store := &fakeStore{}
	s := NewService(nil, store, zerolog.Nop())

	_, err := s.Sync(context.Background(), Request{})
	if err == nil {
		t.Fatal("expected error when no provider is configured")
	}
	if code := apperr.AsAppError(err).Code; code != apperr.CodeConfigError {
		t.Errorf("error code = %s, want %s", code, apperr.CodeConfigError)
	}
	if store.called {
		t.Error("store must not be touched without a provider")
	}
}
