package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"inboxcore/core/domain"
	"inboxcore/core/port/out"
	"inboxcore/pkg/apperr"
)

// =============================================================================
// MongoDB Email Store Adapter
// =============================================================================

const collectionEmails = "emails"

// EmailStoreAdapter implements out.EmailStore using MongoDB.
type EmailStoreAdapter struct {
	db         *mongo.Database
	collection *mongo.Collection
}

// NewEmailStoreAdapter creates a new MongoDB email store adapter.
func NewEmailStoreAdapter(db *mongo.Database) *EmailStoreAdapter {
	return &EmailStoreAdapter{
		db:         db,
		collection: db.Collection(collectionEmails),
	}
}

// EnsureIndexes creates necessary indexes for the collection. The text
// index carries the free-text field weights used by multi-match queries.
func (a *EmailStoreAdapter) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "subject", Value: "text"},
				{Key: "body_plain", Value: "text"},
				{Key: "snippet", Value: "text"},
				{Key: "attachments.filename", Value: "text"},
				{Key: "attachments.parsed_content", Value: "text"},
			},
			Options: options.Index().SetWeights(bson.D{
				{Key: "subject", Value: 3},
				{Key: "body_plain", Value: 2},
				{Key: "snippet", Value: 1},
				{Key: "attachments.filename", Value: 2},
				{Key: "attachments.parsed_content", Value: 1},
			}),
		},
		{
			Keys:    bson.D{{Key: "email_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "date", Value: -1}},
		},
		{
			Keys: bson.D{{Key: "thread_id", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "sender.email", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "labels", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "category", Value: 1}},
		},
	}

	_, err := a.collection.Indexes().CreateMany(ctx, indexes)
	return err
}

// =============================================================================
// Document Model
// =============================================================================

// emailDocument represents the MongoDB document structure.
type emailDocument struct {
	EmailID        string               `bson:"email_id"`
	ThreadID       string               `bson:"thread_id"`
	Sender         addressDocument      `bson:"sender"`
	Recipients     []string             `bson:"recipients"`
	Cc             []string             `bson:"cc,omitempty"`
	Bcc            []string             `bson:"bcc,omitempty"`
	Subject        string               `bson:"subject"`
	BodyPlain      string               `bson:"body_plain"`
	BodyHTML       string               `bson:"body_html,omitempty"`
	Snippet        string               `bson:"snippet"`
	Date           time.Time            `bson:"date"`
	Labels         []string             `bson:"labels,omitempty"`
	IsRead         bool                 `bson:"is_read"`
	IsStarred      bool                 `bson:"is_starred"`
	IsImportant    bool                 `bson:"is_important"`
	HasAttachments bool                 `bson:"has_attachments"`
	Attachments    []attachmentDocument `bson:"attachments,omitempty"`
	Category       *string              `bson:"category,omitempty"`
	Priority       *int                 `bson:"priority,omitempty"`
}

type addressDocument struct {
	Name  string `bson:"name,omitempty"`
	Email string `bson:"email"`
}

type attachmentDocument struct {
	Filename      string `bson:"filename"`
	MimeType      string `bson:"mime_type"`
	Size          int64  `bson:"size"`
	ParsedContent string `bson:"parsed_content,omitempty"`
}

// =============================================================================
// Store Operations
// =============================================================================

// Search executes the query and returns matching records in sort order.
func (a *EmailStoreAdapter) Search(ctx context.Context, q *out.Query) ([]*domain.EmailDocument, error) {
	filter := translateQuery(q.Root)

	sortOrder := -1
	if q.SortOrder == out.SortAsc {
		sortOrder = 1
	}
	sortField := q.SortField
	if sortField == "" {
		sortField = "date"
	}

	findOpts := options.Find().
		SetSort(bson.D{{Key: sortField, Value: sortOrder}}).
		SetLimit(int64(q.Size))

	cursor, err := a.collection.Find(ctx, filter, findOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to search emails: %w", err)
	}
	defer cursor.Close(ctx)

	var results []*domain.EmailDocument
	for cursor.Next(ctx) {
		var doc emailDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode email: %w", err)
		}
		results = append(results, toEntity(&doc))
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate emails: %w", err)
	}

	return results, nil
}

// Update applies a partial field update to one record by ID.
func (a *EmailStoreAdapter) Update(ctx context.Context, id string, fields map[string]any) error {
	set := bson.M{}
	for k, v := range fields {
		set[k] = v
	}

	result, err := a.collection.UpdateOne(ctx, bson.M{"email_id": id}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("failed to update email %s: %w", id, err)
	}
	if result.MatchedCount == 0 {
		return apperr.NotFound("email")
	}
	return nil
}

// BulkIndex upserts a batch of records keyed by their IDs.
func (a *EmailStoreAdapter) BulkIndex(ctx context.Context, emails []*domain.EmailDocument) error {
	if len(emails) == 0 {
		return nil
	}

	models := make([]mongo.WriteModel, 0, len(emails))
	for _, e := range emails {
		doc := toDocument(e)
		model := mongo.NewReplaceOneModel().
			SetFilter(bson.M{"email_id": e.ID}).
			SetReplacement(doc).
			SetUpsert(true)
		models = append(models, model)
	}

	opts := options.BulkWrite().SetOrdered(false)
	if _, err := a.collection.BulkWrite(ctx, models, opts); err != nil {
		return fmt.Errorf("failed to bulk index emails: %w", err)
	}
	return nil
}

// =============================================================================
// Conversion Helpers
// =============================================================================

func toDocument(e *domain.EmailDocument) *emailDocument {
	attachments := make([]attachmentDocument, len(e.Attachments))
	for i, att := range e.Attachments {
		attachments[i] = attachmentDocument{
			Filename:      att.Filename,
			MimeType:      att.MimeType,
			Size:          att.Size,
			ParsedContent: att.ParsedContent,
		}
	}

	return &emailDocument{
		EmailID:        e.ID,
		ThreadID:       e.ThreadID,
		Sender:         addressDocument{Name: e.Sender.Name, Email: e.Sender.Email},
		Recipients:     e.Recipients,
		Cc:             e.Cc,
		Bcc:            e.Bcc,
		Subject:        e.Subject,
		BodyPlain:      e.BodyPlain,
		BodyHTML:       e.BodyHTML,
		Snippet:        e.Snippet,
		Date:           e.Date,
		Labels:         e.Labels,
		IsRead:         e.IsRead,
		IsStarred:      e.IsStarred,
		IsImportant:    e.IsImportant,
		HasAttachments: e.HasAttachments,
		Attachments:    attachments,
		Category:       e.Category,
		Priority:       e.Priority,
	}
}

func toEntity(doc *emailDocument) *domain.EmailDocument {
	attachments := make([]domain.Attachment, len(doc.Attachments))
	for i, att := range doc.Attachments {
		attachments[i] = domain.Attachment{
			Filename:      att.Filename,
			MimeType:      att.MimeType,
			Size:          att.Size,
			ParsedContent: att.ParsedContent,
		}
	}

	return &domain.EmailDocument{
		ID:             doc.EmailID,
		ThreadID:       doc.ThreadID,
		Sender:         domain.Address{Name: doc.Sender.Name, Email: doc.Sender.Email},
		Recipients:     doc.Recipients,
		Cc:             doc.Cc,
		Bcc:            doc.Bcc,
		Subject:        doc.Subject,
		BodyPlain:      doc.BodyPlain,
		BodyHTML:       doc.BodyHTML,
		Snippet:        doc.Snippet,
		Date:           doc.Date,
		Labels:         doc.Labels,
		IsRead:         doc.IsRead,
		IsStarred:      doc.IsStarred,
		IsImportant:    doc.IsImportant,
		HasAttachments: doc.HasAttachments,
		Attachments:    attachments,
		Category:       doc.Category,
		Priority:       doc.Priority,
	}
}

// =============================================================================
// Interface Compliance
// =============================================================================

var _ out.EmailStore = (*EmailStoreAdapter)(nil)
