// Package postmark wraps the transactional-email provider API used to
// deliver confirmation emails.
package postmark

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"

	"github.com/ignite/newsletter/internal/config"
	"github.com/ignite/newsletter/internal/domain"
)

// HTTPDoer is the interface for executing HTTP requests.
// *http.Client satisfies it; tests substitute their own.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// SendErrorKind classifies a failed send.
type SendErrorKind int

const (
	// SendTimeout: no response arrived within the configured timeout.
	SendTimeout SendErrorKind = iota
	// SendProviderRejected: the provider answered with a non-2xx status.
	SendProviderRejected
	// SendTransport: DNS, connection, or other transport-level failure.
	SendTransport
)

func (k SendErrorKind) String() string {
	switch k {
	case SendTimeout:
		return "timeout"
	case SendProviderRejected:
		return "provider_rejected"
	case SendTransport:
		return "transport"
	default:
		return "unknown"
	}
}

// SendError reports why a confirmation email could not be delivered.
// Status is set only for SendProviderRejected. The message never carries
// the authorization token.
type SendError struct {
	Kind   SendErrorKind
	Status int
	cause  error
}

func (e *SendError) Error() string {
	if e.Kind == SendProviderRejected {
		return fmt.Sprintf("email provider error (%s, status %d)", e.Kind, e.Status)
	}
	return fmt.Sprintf("email provider error (%s): %v", e.Kind, e.cause)
}

func (e *SendError) Unwrap() error { return e.cause }

// Client is a Postmark API client. It performs exactly one request per
// send; retry policy, if any, belongs to the caller.
type Client struct {
	baseURL    string
	sender     domain.SubscriberEmail
	authToken  config.Secret
	httpClient HTTPDoer
}

// NewClient creates a Postmark client from configuration. The configured
// sender address is validated here so an invalid sender fails at startup,
// not on the first send.
func NewClient(cfg config.EmailClientSettings) (*Client, error) {
	sender, err := domain.ParseSubscriberEmail(cfg.SenderEmail)
	if err != nil {
		return nil, fmt.Errorf("invalid sender email in configuration: %w", err)
	}
	return &Client{
		baseURL:   cfg.BaseURL,
		sender:    sender,
		authToken: cfg.AuthorizationToken,
		httpClient: &http.Client{
			Timeout: cfg.Timeout(),
		},
	}, nil
}

// Sender returns the configured sender address.
func (c *Client) Sender() domain.SubscriberEmail { return c.sender }

// sendEmailRequest is the provider's wire format. Field names are
// capitalized on the wire.
type sendEmailRequest struct {
	From     string `json:"From"`
	To       string `json:"To"`
	Subject  string `json:"Subject"`
	HTMLBody string `json:"HtmlBody"`
	TextBody string `json:"TextBody"`
}

// SendConfirmation posts a single email to the provider. Any failure is
// reported as a *SendError; the response body of a rejection is logged by
// the caller's layer, never returned to end users.
func (c *Client) SendConfirmation(ctx context.Context, recipient domain.SubscriberEmail, subject, htmlBody, textBody string) error {
	payload := sendEmailRequest{
		From:     c.sender.String(),
		To:       recipient.String(),
		Subject:  subject,
		HTMLBody: htmlBody,
		TextBody: textBody,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return &SendError{Kind: SendTransport, cause: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/email", bytes.NewReader(body))
	if err != nil {
		return &SendError{Kind: SendTransport, cause: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Postmark-Server-Token", c.authToken.Reveal())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return classifySendFailure(err)
	}
	defer resp.Body.Close()

	// Drain for connection reuse; the success body is not interesting.
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &SendError{Kind: SendProviderRejected, Status: resp.StatusCode}
	}
	return nil
}

// classifySendFailure maps a transport error to the SendError taxonomy.
// The original error is kept as the cause; url.Error strings do not
// include headers, so the token cannot leak through it.
func classifySendFailure(err error) *SendError {
	if errors.Is(err, context.DeadlineExceeded) {
		return &SendError{Kind: SendTimeout, cause: err}
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &SendError{Kind: SendTimeout, cause: err}
	}
	return &SendError{Kind: SendTransport, cause: err}
}
