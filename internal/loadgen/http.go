package loadgen

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/okian/repute/internal/domain/leaderboard"
)

// client wraps http.Client with the service base URL.
type client struct {
	http    *http.Client
	baseURL string
}

type eventAck struct {
	Status    string `json:"status"`
	Duplicate bool   `json:"duplicate"`
}

func (c *client) do(ctx context.Context, method, path string, body any, out any) (int, error) {
	var rd io.Reader = http.NoBody
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return 0, fmt.Errorf("marshal request body: %w", err)
		}
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rd)
	if err != nil {
		return 0, fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return 0, err
	}
	defer func() { _ = resp.Body.Close() }()

	if out != nil && resp.StatusCode < http.StatusBadRequest {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp.StatusCode, fmt.Errorf("decode %s %s: %w", method, path, err)
		}
	}
	return resp.StatusCode, nil
}

func (c *client) health(ctx context.Context) error {
	code, err := c.do(ctx, http.MethodGet, "/healthz", nil, nil)
	if err != nil {
		return err
	}
	if code != http.StatusOK {
		return fmt.Errorf("%w: healthz answered %d", ErrUnexpectedStatus, code)
	}
	return nil
}

// initialize creates the profile; an existing one is fine.
func (c *client) initialize(ctx context.Context, id string) error {
	code, err := c.do(ctx, http.MethodPost, "/profiles/"+url.PathEscape(id), nil, nil)
	if err != nil {
		return err
	}
	if code != http.StatusCreated && code != http.StatusConflict {
		return fmt.Errorf("%w: initialize %s answered %d", ErrUnexpectedStatus, id, code)
	}
	return nil
}

func (c *client) postEvent(ctx context.Context, e Event) (eventAck, error) {
	var ack eventAck
	code, err := c.do(ctx, http.MethodPost, "/profiles/"+url.PathEscape(e.ContributorID)+"/events", e, &ack)
	if err != nil {
		return ack, err
	}
	if code != http.StatusOK {
		return ack, fmt.Errorf("%w: event %s answered %d", ErrUnexpectedStatus, e.EventID, code)
	}
	return ack, nil
}

func (c *client) join(ctx context.Context, group, id string) error {
	path := "/groups/" + url.PathEscape(group) + "/members/" + url.PathEscape(id)
	code, err := c.do(ctx, http.MethodPost, path, nil, nil)
	if err != nil {
		return err
	}
	if code != http.StatusOK {
		return fmt.Errorf("%w: join %s answered %d", ErrUnexpectedStatus, id, code)
	}
	return nil
}

func (c *client) leaderboard(ctx context.Context, group string, limit int) ([]leaderboard.Entry, error) {
	var entries []leaderboard.Entry
	path := fmt.Sprintf("/groups/%s/leaderboard?limit=%d", url.PathEscape(group), limit)
	code, err := c.do(ctx, http.MethodGet, path, nil, &entries)
	if err != nil {
		return nil, err
	}
	if code != http.StatusOK {
		return nil, fmt.Errorf("%w: leaderboard answered %d", ErrUnexpectedStatus, code)
	}
	return entries, nil
}
