// internal/mailer/mailer.go
//
// Outbound mail client.
//
// Context
// -------
// The provider exposes a SendGrid-compatible v3 JSON endpoint: one POST
// per message, bearer-token auth, base64 attachments, and one
// personalization per recipient so broadcast recipients never see each
// other.  The client is deliberately thin; retry policy belongs to the
// callers, which either surface the error (contact relay, confirmation
// mail) or swallow it (program broadcast).
//
// A Sender interface is defined here so services can take a fake in
// tests.
package mailer

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Address is a recipient or sender.
type Address struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

// Attachment is carried base64-encoded on the wire.  ContentID set and
// Disposition "inline" makes the part addressable as cid:<ContentID> in
// the HTML body.
type Attachment struct {
	Content     []byte
	Filename    string
	Type        string
	Disposition string
	ContentID   string
}

// Message is one outbound mail.  Each To entry becomes its own
// personalization.
type Message struct {
	To          []Address
	From        Address
	ReplyTo     *Address
	Subject     string
	Text        string
	HTML        string
	Attachments []Attachment
}

// Sender is the capability consumed by the services.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// Client talks to the JSON mail API.  Zero value is invalid; use New.
type Client struct {
	endpoint string
	apiKey   string
	client   *http.Client
}

// New returns a Client for the given endpoint and key.
func New(endpoint, apiKey string) *Client {
	return &Client{
		endpoint: endpoint,
		apiKey:   apiKey,
		client:   &http.Client{Timeout: 15 * time.Second},
	}
}

/*──────────────────────────── wire format ─────────────────────────────────*/

type wirePersonalization struct {
	To []Address `json:"to"`
}

type wireContent struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

type wireAttachment struct {
	Content     string `json:"content"`
	Filename    string `json:"filename"`
	Type        string `json:"type,omitempty"`
	Disposition string `json:"disposition,omitempty"`
	ContentID   string `json:"content_id,omitempty"`
}

type wireMessage struct {
	Personalizations []wirePersonalization `json:"personalizations"`
	From             Address               `json:"from"`
	ReplyTo          *Address              `json:"reply_to,omitempty"`
	Subject          string                `json:"subject"`
	Content          []wireContent         `json:"content"`
	Attachments      []wireAttachment      `json:"attachments,omitempty"`
}

// Send posts msg to the provider.  A non-2xx status is an error carrying
// the status code; the response body is included only in the log-friendly
// message, never parsed.
func (c *Client) Send(ctx context.Context, msg Message) error {
	if len(msg.To) == 0 {
		return fmt.Errorf("mailer: message has no recipients")
	}

	wire := wireMessage{
		From:    msg.From,
		ReplyTo: msg.ReplyTo,
		Subject: msg.Subject,
	}
	for _, to := range msg.To {
		wire.Personalizations = append(wire.Personalizations, wirePersonalization{To: []Address{to}})
	}
	// The provider requires text/plain before text/html.
	if msg.Text != "" {
		wire.Content = append(wire.Content, wireContent{Type: "text/plain", Value: msg.Text})
	}
	if msg.HTML != "" {
		wire.Content = append(wire.Content, wireContent{Type: "text/html", Value: msg.HTML})
	}
	for _, a := range msg.Attachments {
		wire.Attachments = append(wire.Attachments, wireAttachment{
			Content:     base64.StdEncoding.EncodeToString(a.Content),
			Filename:    a.Filename,
			Type:        a.Type,
			Disposition: a.Disposition,
			ContentID:   a.ContentID,
		})
	}

	body, err := json.Marshal(wire)
	if err != nil {
		return fmt.Errorf("mailer: encode: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("mailer: request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("mailer: send: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("mailer: provider status %d: %s", resp.StatusCode, detail)
	}
	return nil
}
