package classification

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/go-pkgz/pool"
	"github.com/rs/zerolog"

	"inboxcore/core/domain"
	"inboxcore/core/port/out"
	"inboxcore/core/service/search"
	"inboxcore/pkg/apperr"
)

// Default page sizes for the batch operations.
const (
	DefaultInboxResults      = 20
	DefaultCategorizeResults = 50

	// fetchFactor over-fetches candidates so the ranked view survives
	// dropping low-value categories.
	fetchFactor = 2
)

// RankedEmail is an email with its category and priority attached.
type RankedEmail struct {
	Email    *domain.EmailDocument  `json:"email"`
	Category *domain.CategoryResult `json:"category"`
	Priority *domain.PriorityResult `json:"priority"`
}

// InboxRequest asks for the ranked priority inbox. MinPriority is a
// level name (critical/high/medium/low); emails scoring below that
// level's threshold are dropped.
type InboxRequest struct {
	DateFrom    string `json:"date_from"`
	UnreadOnly  bool   `json:"unread_only"`
	MinPriority string `json:"min_priority"`
	MaxResults  int    `json:"max_results"`
}

// CategorizeRequest asks for a batch categorization over a date range.
type CategorizeRequest struct {
	DateFrom       string `json:"date_from"`
	DateTo         string `json:"date_to"`
	CategoryFilter string `json:"category_filter"`
	MaxResults     int    `json:"max_results"`
}

// Pipeline fetches a page of records and categorizes and scores them
// with bounded parallelism.
type Pipeline struct {
	store       out.EmailStore
	categorizer *Categorizer
	scorer      *Scorer
	maxParallel int
	log         zerolog.Logger
}

// NewPipeline creates a classification pipeline.
func NewPipeline(store out.EmailStore, categorizer *Categorizer, scorer *Scorer, maxParallel int, log zerolog.Logger) *Pipeline {
	if maxParallel <= 0 {
		maxParallel = 5
	}
	return &Pipeline{
		store:       store,
		categorizer: categorizer,
		scorer:      scorer,
		maxParallel: maxParallel,
		log:         log.With().Str("component", "classification_pipeline").Logger(),
	}
}

// classifyJob carries one email and its slot in the result slice, so
// completion order cannot affect output order.
type classifyJob struct {
	idx   int
	email *domain.EmailDocument
}

// classifyWorker implements pool.Worker for classification jobs.
type classifyWorker struct {
	p       *Pipeline
	results []*RankedEmail
}

// Do categorizes and scores one email into its reserved slot.
func (w *classifyWorker) Do(ctx context.Context, job *classifyJob) error {
	cat := w.p.categorizer.Categorize(ctx, job.email)
	prio := w.p.scorer.Score(job.email, cat)
	w.results[job.idx] = &RankedEmail{Email: job.email, Category: cat, Priority: prio}
	return nil
}

// classifyAll runs the categorize+score step over all emails with
// bounded parallelism. Results keep the input order.
func (p *Pipeline) classifyAll(ctx context.Context, emails []*domain.EmailDocument) ([]*RankedEmail, error) {
	if len(emails) == 0 {
		return nil, nil
	}

	worker := &classifyWorker{p: p, results: make([]*RankedEmail, len(emails))}

	wp := pool.New[*classifyJob](p.maxParallel, worker).WithContinueOnError()
	if err := wp.Go(ctx); err != nil {
		return nil, err
	}

	for i, e := range emails {
		wp.Submit(&classifyJob{idx: i, email: e})
	}

	if err := wp.Close(ctx); err != nil {
		return nil, err
	}

	return worker.results, nil
}

// PriorityInbox returns the ranked inbox view: low-value categories are
// excluded, the rest sorted by score descending with newest-first
// tie-breaking.
func (p *Pipeline) PriorityInbox(ctx context.Context, req InboxRequest) ([]*RankedEmail, error) {
	size := req.MaxResults
	if size <= 0 {
		size = DefaultInboxResults
	}

	minScore := 0
	if req.MinPriority != "" {
		score, ok := domain.MinScoreForLevel(domain.PriorityLevel(strings.ToLower(req.MinPriority)))
		if !ok {
			return nil, apperr.InvalidInput("min_priority", "must be one of critical, high, medium, low")
		}
		minScore = score
	}

	searchReq := search.Request{
		DateFrom:   req.DateFrom,
		MaxResults: size * fetchFactor,
	}
	if req.UnreadOnly {
		isRead := false
		searchReq.IsRead = &isRead
	}

	emails, err := p.fetch(ctx, searchReq, "priority_inbox")
	if err != nil {
		return nil, err
	}

	ranked, err := p.classifyAll(ctx, emails)
	if err != nil {
		return nil, apperr.InternalWithError(err)
	}

	filtered := make([]*RankedEmail, 0, len(ranked))
	for _, r := range ranked {
		if r == nil || r.Category.Category.IsLowValue() {
			continue
		}
		if r.Priority.Score < minScore {
			continue
		}
		filtered = append(filtered, r)
	}

	sort.SliceStable(filtered, func(i, j int) bool {
		if filtered[i].Priority.Score != filtered[j].Priority.Score {
			return filtered[i].Priority.Score > filtered[j].Priority.Score
		}
		return filtered[i].Email.Date.After(filtered[j].Email.Date)
	})

	if len(filtered) > size {
		filtered = filtered[:size]
	}
	return filtered, nil
}

// CategorizeEmails categorizes a date-bounded page of records, optionally
// keeping only one category.
func (p *Pipeline) CategorizeEmails(ctx context.Context, req CategorizeRequest) ([]*RankedEmail, error) {
	size := req.MaxResults
	if size <= 0 {
		size = DefaultCategorizeResults
	}

	searchReq := search.Request{
		DateFrom:   req.DateFrom,
		DateTo:     req.DateTo,
		MaxResults: size,
	}

	emails, err := p.fetch(ctx, searchReq, "categorize_emails")
	if err != nil {
		return nil, err
	}

	ranked, err := p.classifyAll(ctx, emails)
	if err != nil {
		return nil, apperr.InternalWithError(err)
	}

	results := make([]*RankedEmail, 0, len(ranked))
	for _, r := range ranked {
		if r == nil {
			continue
		}
		if req.CategoryFilter != "" && string(r.Category.Category) != req.CategoryFilter {
			continue
		}
		results = append(results, r)
	}
	return results, nil
}

func (p *Pipeline) fetch(ctx context.Context, req search.Request, op string) ([]*domain.EmailDocument, error) {
	q := search.BuildQuery(req, time.Now())

	emails, err := p.store.Search(ctx, q)
	if err != nil {
		p.log.Error().Err(err).Str("operation", op).Msg("store search failed")
		return nil, apperr.StoreUnavailable(op, err)
	}
	return emails, nil
}
