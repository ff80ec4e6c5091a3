package email

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"io"
	"net/http"
	"time"

	"github.com/jonesrussell/godigest/internal/logger"
	"github.com/jonesrussell/godigest/internal/retry"
)

// DefaultResendBaseURL is the production Resend API endpoint.
const DefaultResendBaseURL = "https://api.resend.com"

// ResendClientConfig configures a ResendClient.
type ResendClientConfig struct {
	APIKey string
	// BaseURL overrides the API endpoint; empty means production.
	BaseURL string
	Timeout time.Duration
}

// ResendClient is a minimal bearer-auth JSON client for the Resend API
// surface this program uses: broadcasts and audience contacts.
type ResendClient struct {
	apiKey  string
	baseURL string
	httpc   *http.Client
	policy  retry.Policy
	log     logger.Logger
}

// NewResendClient creates a ResendClient.
func NewResendClient(cfg ResendClientConfig, log logger.Logger) *ResendClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultResendBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &ResendClient{
		apiKey:  cfg.APIKey,
		baseURL: cfg.BaseURL,
		httpc:   &http.Client{Timeout: cfg.Timeout},
		policy: retry.Policy{
			InitialDelay: time.Second,
			IsRetryable:  isRateLimited,
		},
		log: log,
	}
}

// apiError is a non-2xx Resend response.
type apiError struct {
	StatusCode int
	Body       string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("resend API error %d: %s", e.StatusCode, e.Body)
}

// isRateLimited retries only 429 responses. Other API errors indicate a
// request that will fail the same way again.
func isRateLimited(err error) bool {
	var apiErr *apiError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusTooManyRequests
}

// CreateBroadcast creates a broadcast for an audience and returns its id.
func (c *ResendClient) CreateBroadcast(ctx context.Context, audienceID, from, subject, html string) (string, error) {
	payload := map[string]string{
		"audience_id": audienceID,
		"from":        from,
		"subject":     subject,
		"html":        html,
	}
	var created struct {
		ID string `json:"id"`
	}
	if err := c.do(ctx, http.MethodPost, "/broadcasts", payload, &created); err != nil {
		return "", fmt.Errorf("create broadcast: %w", err)
	}
	if created.ID == "" {
		return "", fmt.Errorf("create broadcast: response missing id")
	}
	return created.ID, nil
}

// SendBroadcast triggers delivery of a created broadcast.
func (c *ResendClient) SendBroadcast(ctx context.Context, broadcastID string) error {
	if err := c.do(ctx, http.MethodPost, "/broadcasts/"+broadcastID+"/send", map[string]string{}, nil); err != nil {
		return fmt.Errorf("send broadcast %s: %w", broadcastID, err)
	}
	return nil
}

// ContactCount returns the number of contacts in an audience.
func (c *ResendClient) ContactCount(ctx context.Context, audienceID string) (int, error) {
	var listing struct {
		Data []struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	if err := c.do(ctx, http.MethodGet, "/audiences/"+audienceID+"/contacts", nil, &listing); err != nil {
		return 0, fmt.Errorf("list contacts: %w", err)
	}
	return len(listing.Data), nil
}

// AddContact subscribes an address to an audience.
func (c *ResendClient) AddContact(ctx context.Context, audienceID, address string) error {
	payload := map[string]string{"email": address}
	if err := c.do(ctx, http.MethodPost, "/audiences/"+audienceID+"/contacts", payload, nil); err != nil {
		return fmt.Errorf("add contact: %w", err)
	}
	return nil
}

// do performs one JSON request with bearer auth, retrying rate limits.
func (c *ResendClient) do(ctx context.Context, method, path string, payload, out any) error {
	var body []byte
	if payload != nil {
		var err error
		body, err = json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
	}

	return retry.Do(ctx, c.policy, func() error {
		var reader io.Reader = http.NoBody
		if body != nil {
			reader = bytes.NewReader(body)
		}
		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
		if err != nil {
			return err
		}
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.httpc.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		if err != nil {
			return err
		}

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return &apiError{StatusCode: resp.StatusCode, Body: string(respBody)}
		}
		if out != nil && len(respBody) > 0 {
			if err := json.Unmarshal(respBody, out); err != nil {
				return fmt.Errorf("decode response: %w", err)
			}
		}
		return nil
	})
}

// ResendSender delivers the digest as a Resend broadcast to an audience.
type ResendSender struct {
	client     *ResendClient
	audienceID string
	name       string
	from       string
	log        logger.Logger
}

// NewResendSender creates a ResendSender. from is the verified sending
// address for the Resend domain.
func NewResendSender(client *ResendClient, audienceID, name, from string, log logger.Logger) *ResendSender {
	return &ResendSender{
		client:     client,
		audienceID: audienceID,
		name:       name,
		from:       from,
		log:        log,
	}
}

// Send creates and sends a broadcast, returning the audience contact
// count as the recipient count.
func (s *ResendSender) Send(ctx context.Context, msg Message) (int, error) {
	body := msg.HTML
	if body == "" {
		body = "<pre>" + html.EscapeString(msg.Text) + "</pre>"
	}

	from := fmt.Sprintf("%s <%s>", s.name, s.from)
	broadcastID, err := s.client.CreateBroadcast(ctx, s.audienceID, from, msg.Subject, body)
	if err != nil {
		return 0, err
	}
	if err := s.client.SendBroadcast(ctx, broadcastID); err != nil {
		return 0, err
	}

	count, err := s.client.ContactCount(ctx, s.audienceID)
	if err != nil {
		// The broadcast went out; a failed count is not a delivery failure.
		s.log.Warn("broadcast sent but contact count unavailable", logger.Error(err))
		count = 0
	}

	s.log.Info("digest sent via resend broadcast",
		logger.String("broadcast_id", broadcastID),
		logger.Int("recipients", count))
	return count, nil
}
