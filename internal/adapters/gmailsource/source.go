// Package gmailsource adapts the Gmail API to the core MessageSource port.
package gmailsource

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"go.uber.org/zap"
	gm "google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"github.com/mikey/inbox-triage/internal/core"
)

// Source lists and fetches mail threads through the Gmail API. The service
// must be authorized for every user it is asked about (domain-wide
// delegation or a single-account token with userID "me").
type Source struct {
	svc    *gm.Service
	logger *zap.Logger
}

// New creates a Gmail message source from a credentials file. An empty
// path falls back to application default credentials.
func New(ctx context.Context, credentialsFile string, logger *zap.Logger) (*Source, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	svc, err := gm.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gmail service: %w", err)
	}

	return &Source{
		svc:    svc,
		logger: logger,
	}, nil
}

// ListUnclassified returns thread metadata for messages matching the query.
// Individual message failures are skipped, never fatal for the page.
func (s *Source) ListUnclassified(ctx context.Context, userID, query string, maxResults int64) ([]*core.Email, error) {
	resp, err := s.svc.Users.Messages.List(userID).
		Q(query).
		MaxResults(maxResults).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}

	if len(resp.Messages) == 0 {
		return nil, nil
	}

	emails := make([]*core.Email, 0, len(resp.Messages))
	seen := make(map[string]struct{}, len(resp.Messages))
	for _, msg := range resp.Messages {
		detail, err := s.svc.Users.Messages.Get(userID, msg.Id).
			Format("metadata").
			MetadataHeaders("From", "Subject").
			Context(ctx).
			Do()
		if err != nil {
			s.logger.Debug("Skipping message, metadata fetch failed",
				zap.String("message_id", msg.Id),
				zap.Error(err))
			continue
		}

		// One entry per thread; the list endpoint returns messages.
		if _, ok := seen[detail.ThreadId]; ok {
			continue
		}
		seen[detail.ThreadId] = struct{}{}

		headers := headerMap(detail.Payload.Headers)
		emails = append(emails, &core.Email{
			ThreadID: detail.ThreadId,
			Sender:   headers["From"],
			Subject:  defaultStr(headers["Subject"], "(no subject)"),
			Preview:  detail.Snippet,
		})
	}

	return emails, nil
}

// FetchBody returns the plain-text body of the latest message in a thread.
func (s *Source) FetchBody(ctx context.Context, userID, threadID string) (string, error) {
	thread, err := s.svc.Users.Threads.Get(userID, threadID).
		Format("full").
		Context(ctx).
		Do()
	if err != nil {
		return "", fmt.Errorf("get thread %s: %w", threadID, err)
	}

	if len(thread.Messages) == 0 {
		return "", fmt.Errorf("thread %s has no messages", threadID)
	}

	latest := thread.Messages[len(thread.Messages)-1]
	return extractBody(latest.Payload), nil
}

// extractBody gets the plain text body from a message payload, handling
// multipart messages recursively and preferring text/plain over text/html.
func extractBody(payload *gm.MessagePart) string {
	if payload == nil {
		return ""
	}

	if payload.Body != nil && payload.Body.Data != "" {
		if decoded, err := decodeBase64URL(payload.Body.Data); err == nil {
			return decoded
		}
	}

	for _, part := range payload.Parts {
		if part.MimeType == "text/plain" && part.Body != nil && part.Body.Data != "" {
			if decoded, err := decodeBase64URL(part.Body.Data); err == nil {
				return decoded
			}
		}
		if len(part.Parts) > 0 {
			if body := extractBody(part); body != "" {
				return body
			}
		}
	}

	// Fall back to HTML.
	for _, part := range payload.Parts {
		if part.MimeType == "text/html" && part.Body != nil && part.Body.Data != "" {
			if decoded, err := decodeBase64URL(part.Body.Data); err == nil {
				return decoded
			}
		}
	}

	return ""
}

// headerMap converts Gmail API headers into a simple key-value map.
func headerMap(headers []*gm.MessagePartHeader) map[string]string {
	m := make(map[string]string, len(headers))
	for _, h := range headers {
		m[h.Name] = h.Value
	}
	return m
}

// decodeBase64URL decodes Gmail's base64url-encoded content.
func decodeBase64URL(data string) (string, error) {
	decoded, err := base64.URLEncoding.WithPadding(base64.NoPadding).
		DecodeString(strings.TrimRight(data, "="))
	if err != nil {
		return "", err
	}
	return string(decoded), nil
}

func defaultStr(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
