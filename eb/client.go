package eb

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"evfeed/models"

	"github.com/tidwall/gjson"
)

// TransportError covers network failures, timeouts and non-2xx statuses. A
// fetch that hits one returns nothing: no partial pages.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string { return "transport: " + e.Err.Error() }
func (e *TransportError) Unwrap() error { return e.Err }

// DecodeError covers malformed JSON and responses whose pagination block
// cannot be followed.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string { return "decode: " + e.Err.Error() }
func (e *DecodeError) Unwrap() error { return e.Err }

// Client talks to the listing API with bearer-token auth and follows
// continuation tokens until the final page.
type Client struct {
	BaseURL string
	Version string
	Token   string
	HTTP    *http.Client
}

func NewClient(baseURL, version, token string, timeout time.Duration) *Client {
	return &Client{
		BaseURL: baseURL,
		Version: version,
		Token:   token,
		HTTP:    &http.Client{Timeout: timeout},
	}
}

// WithToken returns a copy of the client using a caller-supplied token.
func (c *Client) WithToken(token string) *Client {
	clone := *c
	clone.Token = token
	return &clone
}

// getPage runs one GET against the listing endpoint and returns the raw body.
func (c *Client) getPage(ctx context.Context, endpoint, query, continuation string) ([]byte, error) {
	url := fmt.Sprintf("%s/%s/%s/?%s", c.BaseURL, c.Version, endpoint, query)
	if continuation != "" {
		url += "&continuation=" + continuation
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	req.Header.Set("Accept", "*/*")
	req.Header.Set("Authorization", "Bearer "+c.Token)
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &TransportError{Err: fmt.Errorf("%s: status %d", endpoint, resp.StatusCode)}
	}
	return body, nil
}

// mergePage folds one decoded page into the accumulator. Keys present in the
// new page win; when facet names a key, that key's sequences are concatenated
// instead, accumulated values first.
func mergePage(acc, page map[string]any, facet string) map[string]any {
	if acc == nil {
		return page
	}
	merged := make(map[string]any, len(acc)+len(page))
	for k, v := range acc {
		merged[k] = v
	}
	for k, v := range page {
		merged[k] = v
	}
	if facet != "" {
		prev, _ := acc[facet].([]any)
		next, _ := page[facet].([]any)
		joined := make([]any, 0, len(prev)+len(next))
		joined = append(joined, prev...)
		joined = append(joined, next...)
		merged[facet] = joined
	}
	return merged
}

// Fetch retrieves every page of a paginated listing and returns the merged
// object, or just the facet's value when facet is non-empty. A response with
// no pagination block counts as a complete single page.
func (c *Client) Fetch(ctx context.Context, endpoint, query, facet string) (json.RawMessage, error) {
	var acc map[string]any
	continuation := ""

	for {
		body, err := c.getPage(ctx, endpoint, query, continuation)
		if err != nil {
			return nil, err
		}

		var page map[string]any
		if err := json.Unmarshal(body, &page); err != nil {
			return nil, &DecodeError{Err: err}
		}
		acc = mergePage(acc, page, facet)

		pg := gjson.GetBytes(body, "pagination")
		if !pg.Exists() || pg.Get("page_number").Int() >= pg.Get("page_count").Int() {
			break
		}
		continuation = pg.Get("continuation").String()
		if continuation == "" {
			return nil, &DecodeError{Err: fmt.Errorf("%s: pagination promises more pages but has no continuation token", endpoint)}
		}
	}

	var out any = acc
	if facet != "" {
		out = acc[facet]
	}
	raw, err := json.Marshal(out)
	if err != nil {
		return nil, &DecodeError{Err: err}
	}
	return raw, nil
}

// FetchEvents pulls the full live-event collection for one organization, with
// venue, organizer and ticket classes expanded. An organization with nothing
// scheduled yields an empty slice, not an error.
func (c *Client) FetchEvents(ctx context.Context, organization string) ([]models.Event, error) {
	endpoint := "organizations/" + organization + "/events"
	query := "status=live,started" +
		"&order_by=start_asc" +
		"&time_filter=current_future" +
		"&expand=venue,organizer,ticket_classes"

	raw, err := c.Fetch(ctx, endpoint, query, "events")
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 || string(raw) == "null" {
		return []models.Event{}, nil
	}

	var events []models.Event
	if err := json.Unmarshal(raw, &events); err != nil {
		return nil, &DecodeError{Err: err}
	}
	return events, nil
}
