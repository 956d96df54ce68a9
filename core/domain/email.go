// Package domain contains the core entities of the retrieval engine.
package domain

import "time"

// Address is a parsed mailbox address.
type Address struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email"`
}

// Attachment is attachment metadata plus optionally extracted text.
// Relevance is always recomputed from filename and MIME type, never stored.
type Attachment struct {
	Filename      string `json:"filename"`
	MimeType      string `json:"mime_type"`
	Size          int64  `json:"size"`
	ParsedContent string `json:"parsed_content,omitempty"`
}

// Well-known provider labels.
const (
	LabelImportant = "IMPORTANT"
	LabelStarred   = "STARRED"
	LabelUnread    = "UNREAD"
)

// EmailDocument is a single indexed email record.
// ID is immutable and unique; ThreadID groups records into a conversation
// and never changes after indexing. BodyHTML is stored but never searched.
type EmailDocument struct {
	ID             string       `json:"id"`
	ThreadID       string       `json:"thread_id"`
	Sender         Address      `json:"sender"`
	Recipients     []string     `json:"recipients"`
	Cc             []string     `json:"cc,omitempty"`
	Bcc            []string     `json:"bcc,omitempty"`
	Subject        string       `json:"subject"`
	BodyPlain      string       `json:"body_plain"`
	BodyHTML       string       `json:"body_html,omitempty"`
	Snippet        string       `json:"snippet"`
	Date           time.Time    `json:"date"`
	Labels         []string     `json:"labels,omitempty"`
	IsRead         bool         `json:"is_read"`
	IsStarred      bool         `json:"is_starred"`
	IsImportant    bool         `json:"is_important"`
	HasAttachments bool         `json:"has_attachments"`
	Attachments    []Attachment `json:"attachments,omitempty"`

	// Derived fields, persisted for convenience and always recomputable.
	Category *string `json:"category,omitempty"`
	Priority *int    `json:"priority,omitempty"`
}

// HasLabel reports whether the record carries the given provider label.
func (e *EmailDocument) HasLabel(label string) bool {
	for _, l := range e.Labels {
		if l == label {
			return true
		}
	}
	return false
}

// BodyExcerpt returns the first n characters of the plain body.
func (e *EmailDocument) BodyExcerpt(n int) string {
	if len(e.BodyPlain) <= n {
		return e.BodyPlain
	}
	return e.BodyPlain[:n]
}
