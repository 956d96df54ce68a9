// Package http exposes the engine operations over HTTP.
package http

import (
	"context"
	"time"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"inboxcore/core/port/out"
	"inboxcore/core/service/attachment"
	"inboxcore/core/service/classification"
	"inboxcore/core/service/ingest"
	"inboxcore/core/service/search"
	"inboxcore/core/service/thread"
	"inboxcore/pkg/apperr"
	"inboxcore/pkg/response"
)

// EngineHandler wires the engine services to HTTP routes.
type EngineHandler struct {
	search      *search.Service
	threads     *thread.Service
	attachments *attachment.Searcher
	pipeline    *classification.Pipeline
	ingest      *ingest.Service
	invocations out.InvocationLog
	log         zerolog.Logger
}

// NewEngineHandler creates the engine HTTP handler.
func NewEngineHandler(
	searchSvc *search.Service,
	threadSvc *thread.Service,
	attachmentSvc *attachment.Searcher,
	pipeline *classification.Pipeline,
	ingestSvc *ingest.Service,
	invocations out.InvocationLog,
	log zerolog.Logger,
) *EngineHandler {
	return &EngineHandler{
		search:      searchSvc,
		threads:     threadSvc,
		attachments: attachmentSvc,
		pipeline:    pipeline,
		ingest:      ingestSvc,
		invocations: invocations,
		log:         log.With().Str("component", "engine_handler").Logger(),
	}
}

// Register mounts the engine routes on the router group.
func (h *EngineHandler) Register(router fiber.Router) {
	router.Post("/emails/search", h.SearchEmails)
	router.Patch("/emails/:id", h.UpdateEmail)
	router.Post("/emails/categorize", h.CategorizeEmails)
	router.Post("/emails/ingest", h.IngestEmails)
	router.Get("/conversations/:contact", h.ConversationHistory)
	router.Post("/inbox/priority", h.PriorityInbox)
	router.Post("/attachments/search", h.SearchAttachments)
}

// SearchEmails runs a filtered search over the email store.
func (h *EngineHandler) SearchEmails(c *fiber.Ctx) error {
	var req search.Request
	if err := c.BodyParser(&req); err != nil {
		return apperr.BadRequest("invalid request body")
	}

	start := time.Now()
	results, err := h.search.Search(c.Context(), req)
	h.recordInvocation(c.Context(), "search_emails", req, len(results), start, err)
	if err != nil {
		return err
	}

	return response.OKWithMeta(c, results, &response.Meta{Total: len(results)})
}

// UpdateEmail applies a partial field update to one record.
func (h *EngineHandler) UpdateEmail(c *fiber.Ctx) error {
	id := c.Params("id")

	var fields map[string]any
	if err := c.BodyParser(&fields); err != nil {
		return apperr.BadRequest("invalid request body")
	}

	start := time.Now()
	err := h.search.UpdateEmail(c.Context(), id, fields)
	h.recordInvocation(c.Context(), "update_email", fiber.Map{"id": id}, 1, start, err)
	if err != nil {
		return err
	}

	return response.OK(c, fiber.Map{"id": id, "updated": true})
}

// ConversationHistory returns the thread-grouped exchanges with a contact.
func (h *EngineHandler) ConversationHistory(c *fiber.Ctx) error {
	req := thread.Request{
		ContactEmail: c.Params("contact"),
		ThreadID:     c.Query("thread_id"),
		MaxResults:   c.QueryInt("max_results"),
	}

	start := time.Now()
	history, err := h.threads.History(c.Context(), req)
	count := 0
	if history != nil {
		count = history.TotalEmails
	}
	h.recordInvocation(c.Context(), "conversation_history", req, count, start, err)
	if err != nil {
		return err
	}

	return response.OK(c, history)
}

// CategorizeEmails batch-categorizes a date-bounded page of records.
func (h *EngineHandler) CategorizeEmails(c *fiber.Ctx) error {
	var req classification.CategorizeRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.BadRequest("invalid request body")
	}

	start := time.Now()
	results, err := h.pipeline.CategorizeEmails(c.Context(), req)
	h.recordInvocation(c.Context(), "categorize_emails", req, len(results), start, err)
	if err != nil {
		return err
	}

	return response.OKWithMeta(c, results, &response.Meta{Total: len(results)})
}

// PriorityInbox returns the ranked priority inbox view.
func (h *EngineHandler) PriorityInbox(c *fiber.Ctx) error {
	var req classification.InboxRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.BadRequest("invalid request body")
	}

	start := time.Now()
	results, err := h.pipeline.PriorityInbox(c.Context(), req)
	h.recordInvocation(c.Context(), "priority_inbox", req, len(results), start, err)
	if err != nil {
		return err
	}

	return response.OKWithMeta(c, results, &response.Meta{Total: len(results)})
}

// IngestEmails fetches a batch of provider messages into the store.
func (h *EngineHandler) IngestEmails(c *fiber.Ctx) error {
	var req ingest.Request
	if err := c.BodyParser(&req); err != nil {
		return apperr.BadRequest("invalid request body")
	}

	start := time.Now()
	result, err := h.ingest.Sync(c.Context(), req)
	count := 0
	if result != nil {
		count = result.Indexed
	}
	h.recordInvocation(c.Context(), "ingest_emails", req, count, start, err)
	if err != nil {
		return err
	}

	return response.OK(c, result)
}

// SearchAttachments runs a content search over relevant attachments.
func (h *EngineHandler) SearchAttachments(c *fiber.Ctx) error {
	var req attachment.Request
	if err := c.BodyParser(&req); err != nil {
		return apperr.BadRequest("invalid request body")
	}

	start := time.Now()
	results, err := h.attachments.Search(c.Context(), req)
	h.recordInvocation(c.Context(), "attachment_search", req, len(results), start, err)
	if err != nil {
		return err
	}

	return response.OKWithMeta(c, results, &response.Meta{Total: len(results)})
}

// recordInvocation persists a monitoring record. Failures are logged and
// never surfaced to the caller.
func (h *EngineHandler) recordInvocation(ctx context.Context, operation string, args any, count int, start time.Time, opErr error) {
	argsJSON, err := json.Marshal(args)
	if err != nil {
		argsJSON = []byte("{}")
	}

	rec := out.InvocationRecord{
		Operation:   operation,
		Arguments:   string(argsJSON),
		ResultCount: count,
		DurationMS:  float64(time.Since(start).Microseconds()) / 1000.0,
		At:          time.Now().UTC(),
	}
	if opErr != nil {
		rec.Error = opErr.Error()
	}

	if err := h.invocations.Record(ctx, rec); err != nil {
		h.log.Warn().Err(err).Str("operation", operation).Msg("failed to record invocation")
	}
}
