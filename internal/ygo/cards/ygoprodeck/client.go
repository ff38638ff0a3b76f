// Package ygoprodeck is a rate limited client for the YGOPRODeck card
// database API.
package ygoprodeck

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/ramonehamilton/genesys-companion/internal/ygo/cards"
	"github.com/ramonehamilton/genesys-companion/internal/ygo/deck"
)

const (
	DefaultBaseURL    = "https://db.ygoprodeck.com/api/v7"
	defaultRPS        = 10 // documented limit is 20 req/sec
	requestTimeout    = 30 * time.Second
	maxRetries        = 3
	initialBackoff    = 1 * time.Second
	maxBackoff        = 16 * time.Second
	maxIDsPerRequest  = 100
	maxResponseLength = 32 << 20
)

// Config configures a Client. Zero values fall back to defaults.
type Config struct {
	BaseURL           string
	RequestsPerSecond float64
	Timeout           time.Duration
	UserAgent         string
}

// Client represents a YGOPRODeck API client with rate limiting.
type Client struct {
	baseURL     string
	httpClient  *http.Client
	rateLimiter *rate.Limiter
	userAgent   string
	backoff     time.Duration
}

// NewClient creates a client with the default configuration.
func NewClient() *Client {
	return NewClientWithConfig(Config{})
}

// NewClientWithConfig creates a client from cfg.
func NewClientWithConfig(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = defaultRPS
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = requestTimeout
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "Genesys-Companion/1.0"
	}
	return &Client{
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		httpClient:  &http.Client{Timeout: cfg.Timeout},
		rateLimiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1),
		userAgent:   cfg.UserAgent,
		backoff:     initialBackoff,
	}
}

// GetCards fetches metadata for ids in as few requests as possible. IDs the
// database does not know are simply absent from the result; placeholder IDs
// are never sent.
func (c *Client) GetCards(ctx context.Context, ids []deck.CardID) ([]*cards.Metadata, error) {
	wanted := cards.Table{}.Missing(ids)
	if len(wanted) == 0 {
		return nil, nil
	}

	var out []*cards.Metadata
	for start := 0; start < len(wanted); start += maxIDsPerRequest {
		batch := wanted[start:min(start+maxIDsPerRequest, len(wanted))]

		parts := make([]string, len(batch))
		for i, id := range batch {
			parts[i] = strconv.FormatUint(uint64(id), 10)
		}
		query := url.Values{"id": {strings.Join(parts, ",")}, "misc": {"yes"}}

		found, err := c.cardInfo(ctx, query)
		if err != nil {
			return out, fmt.Errorf("failed to get cards %v: %w", batch, err)
		}
		out = append(out, metadataFor(found, batch)...)
	}
	return out, nil
}

// SearchByName returns every card whose name contains name.
func (c *Client) SearchByName(ctx context.Context, name string) ([]*cards.Metadata, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, nil
	}

	found, err := c.cardInfo(ctx, url.Values{"fname": {name}})
	if err != nil {
		return nil, fmt.Errorf("failed to search cards with name '%s': %w", name, err)
	}

	out := make([]*cards.Metadata, 0, len(found))
	for i := range found {
		out = append(out, found[i].ToMetadata())
	}
	return out, nil
}

// GetByName returns the card with exactly this name.
func (c *Client) GetByName(ctx context.Context, name string) (*cards.Metadata, error) {
	found, err := c.cardInfo(ctx, url.Values{"name": {name}})
	if err != nil {
		return nil, fmt.Errorf("failed to get card '%s': %w", name, err)
	}
	if len(found) == 0 {
		return nil, &NotFoundError{URL: name}
	}
	return found[0].ToMetadata(), nil
}

// cardInfo queries the card info endpoint. A query matching nothing returns
// an empty slice.
func (c *Client) cardInfo(ctx context.Context, query url.Values) ([]Card, error) {
	u := fmt.Sprintf("%s/cardinfo.php?%s", c.baseURL, query.Encode())

	var resp CardInfoResponse
	if err := c.doRequest(ctx, u, &resp); err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return resp.Data, nil
}

// metadataFor maps API cards onto the requested IDs. A request for an
// alternate artwork passcode returns the base card, so the metadata is
// re-keyed to the ID that was asked for.
func metadataFor(found []Card, requested []deck.CardID) []*cards.Metadata {
	want := make(map[deck.CardID]bool, len(requested))
	for _, id := range requested {
		want[id] = true
	}

	var out []*cards.Metadata
	for i := range found {
		for _, id := range found[i].Passcodes() {
			if !want[id] {
				continue
			}
			m := found[i].ToMetadata()
			m.ID = id
			out = append(out, m)
			delete(want, id)
		}
	}
	return out
}

// doRequest performs an HTTP request with rate limiting and retry logic.
func (c *Client) doRequest(ctx context.Context, url string, result interface{}) error {
	var lastErr error
	backoff := c.backoff

	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			if err := sleep(ctx, backoff); err != nil {
				return err
			}
			backoff = min(backoff*2, maxBackoff)
		}

		if err := c.rateLimiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter error: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("User-Agent", c.userAgent)
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			lastErr = fmt.Errorf("HTTP request failed: %w", err)
			continue
		}

		body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseLength))
		_ = resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("failed to read response body: %w", err)
			continue
		}

		switch {
		case resp.StatusCode == http.StatusOK:
			if err := json.Unmarshal(body, result); err != nil {
				return fmt.Errorf("failed to parse JSON response: %w", err)
			}
			return nil

		case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError:
			lastErr = fmt.Errorf("API request failed with status %d", resp.StatusCode)
			if retryAfter := resp.Header.Get("Retry-After"); retryAfter != "" {
				if secs, err := strconv.Atoi(retryAfter); err == nil && secs > 0 {
					backoff = min(time.Duration(secs)*time.Second, maxBackoff)
				}
			}
			continue

		case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusBadRequest:
			// "No card matching your query was found in the database."
			return &NotFoundError{URL: url}

		default:
			apiErr := &APIError{Status: resp.StatusCode}
			if err := json.Unmarshal(body, apiErr); err == nil && apiErr.Message != "" {
				return apiErr
			}
			return fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, string(body))
		}
	}

	return fmt.Errorf("max retries exceeded: %w", lastErr)
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
