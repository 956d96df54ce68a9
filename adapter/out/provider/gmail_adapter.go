// Package provider implements mail provider ingestion adapters.
package provider

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"

	"golang.org/x/oauth2"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"inboxcore/core/domain"
	"inboxcore/core/port/out"
)

// GmailAdapter fetches messages from the Gmail API and converts them
// into store records.
type GmailAdapter struct {
	service *gmail.Service
}

var _ out.EmailProvider = (*GmailAdapter)(nil)

// NewGmailAdapter creates a Gmail ingestion adapter from an OAuth token.
func NewGmailAdapter(ctx context.Context, token *oauth2.Token, config *oauth2.Config) (*GmailAdapter, error) {
	client := config.Client(ctx, token)
	service, err := gmail.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("failed to create gmail service: %w", err)
	}
	return &GmailAdapter{service: service}, nil
}

// FetchMessages lists messages matching the Gmail query and fetches each
// in full. Used to populate the email store via BulkIndex.
func (a *GmailAdapter) FetchMessages(ctx context.Context, query string, max int64) ([]*domain.EmailDocument, error) {
	req := a.service.Users.Messages.List("me")
	if query != "" {
		req = req.Q(query)
	}
	if max > 0 {
		req = req.MaxResults(max)
	}

	resp, err := req.Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}

	emails := make([]*domain.EmailDocument, 0, len(resp.Messages))
	for _, m := range resp.Messages {
		msg, err := a.service.Users.Messages.Get("me", m.Id).
			Format("full").
			Context(ctx).
			Do()
		if err != nil {
			return nil, fmt.Errorf("failed to get message %s: %w", m.Id, err)
		}
		emails = append(emails, parseMessage(msg))
	}

	return emails, nil
}

// parseMessage converts one Gmail message into a store record.
func parseMessage(msg *gmail.Message) *domain.EmailDocument {
	headers := make(map[string]string)
	if msg.Payload != nil {
		for _, h := range msg.Payload.Headers {
			headers[strings.ToLower(h.Name)] = h.Value
		}
	}

	id := msg.Id
	if id == "" {
		id = uuid.New().String()
	}
	threadID := msg.ThreadId
	if threadID == "" {
		threadID = id
	}

	bodyPlain, bodyHTML := extractBodies(msg.Payload)
	attachments := extractAttachments(msg.Payload)

	doc := &domain.EmailDocument{
		ID:             id,
		ThreadID:       threadID,
		Sender:         parseAddress(headers["from"]),
		Recipients:     parseAddressList(headers["to"]),
		Cc:             parseAddressList(headers["cc"]),
		Bcc:            parseAddressList(headers["bcc"]),
		Subject:        headers["subject"],
		BodyPlain:      bodyPlain,
		BodyHTML:       bodyHTML,
		Snippet:        msg.Snippet,
		Date:           time.UnixMilli(msg.InternalDate).UTC(),
		Labels:         msg.LabelIds,
		Attachments:    attachments,
		HasAttachments: len(attachments) > 0,
	}

	doc.IsRead = !hasLabel(msg.LabelIds, domain.LabelUnread)
	doc.IsStarred = hasLabel(msg.LabelIds, domain.LabelStarred)
	doc.IsImportant = hasLabel(msg.LabelIds, domain.LabelImportant)

	return doc
}

func hasLabel(labels []string, label string) bool {
	for _, l := range labels {
		if l == label {
			return true
		}
	}
	return false
}

func parseAddress(raw string) domain.Address {
	if raw == "" {
		return domain.Address{}
	}
	addr, err := mail.ParseAddress(raw)
	if err != nil {
		return domain.Address{Email: strings.TrimSpace(raw)}
	}
	return domain.Address{Name: addr.Name, Email: addr.Address}
}

func parseAddressList(raw string) []string {
	if raw == "" {
		return nil
	}
	addrs, err := mail.ParseAddressList(raw)
	if err != nil {
		// Fall back to comma splitting on malformed headers.
		parts := strings.Split(raw, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		return result
	}

	result := make([]string, len(addrs))
	for i, a := range addrs {
		result[i] = a.Address
	}
	return result
}

// extractBodies walks the MIME tree collecting the first plain and HTML parts.
func extractBodies(payload *gmail.MessagePart) (plain, html string) {
	if payload == nil {
		return "", ""
	}

	var walk func(part *gmail.MessagePart)
	walk = func(part *gmail.MessagePart) {
		if part == nil {
			return
		}
		if part.Body != nil && part.Body.Data != "" {
			data, err := base64.URLEncoding.DecodeString(part.Body.Data)
			if err == nil {
				switch part.MimeType {
				case "text/plain":
					if plain == "" {
						plain = string(data)
					}
				case "text/html":
					if html == "" {
						html = string(data)
					}
				}
			}
		}
		for _, child := range part.Parts {
			walk(child)
		}
	}
	walk(payload)

	return plain, html
}

func extractAttachments(payload *gmail.MessagePart) []domain.Attachment {
	if payload == nil {
		return nil
	}

	var attachments []domain.Attachment
	var walk func(part *gmail.MessagePart)
	walk = func(part *gmail.MessagePart) {
		if part == nil {
			return
		}
		if part.Filename != "" && part.Body != nil {
			attachments = append(attachments, domain.Attachment{
				Filename: part.Filename,
				MimeType: part.MimeType,
				Size:     part.Body.Size,
			})
		}
		for _, child := range part.Parts {
			walk(child)
		}
	}
	walk(payload)

	return attachments
}
