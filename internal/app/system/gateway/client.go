package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/dalemusser/quickclass/internal/app/system/classstore"
	"github.com/dalemusser/quickclass/internal/domain/models"
)

// maxResponseBytes bounds how much of an answer the client will read.
const maxResponseBytes = 4 << 20

// Client is the HTTP gateway used by the command-line tool.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// NewClient creates a Client for the server at baseURL. token is sent as a
// bearer token when non-empty. A nil hc uses http.DefaultClient.
func NewClient(baseURL, token string, hc *http.Client) *Client {
	if hc == nil {
		hc = http.DefaultClient
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    hc,
	}
}

// LoadInitial fetches the stored list.
func (c *Client) LoadInitial(ctx context.Context) ([]models.ClassEntry, error) {
	var out ClassesPayload
	if err := c.do(ctx, http.MethodGet, "/api/classes", nil, &out); err != nil {
		return nil, err
	}
	return nonNil(out.Classes), nil
}

// Save sends candidate and returns the server's canonical list.
func (c *Client) Save(ctx context.Context, candidate []models.ClassEntry) ([]models.ClassEntry, error) {
	var out ClassesPayload
	in := ClassesPayload{Classes: models.CloneEntries(candidate)}
	if err := c.do(ctx, http.MethodPost, "/api/classes", in, &out); err != nil {
		return nil, err
	}
	return nonNil(out.Classes), nil
}

// BatchImport sends raw import text.
func (c *Client) BatchImport(ctx context.Context, raw string, mode classstore.ImportMode) (classstore.ImportResult, error) {
	var out classstore.ImportResult
	in := ImportRequest{Text: raw, Mode: string(mode)}
	if err := c.do(ctx, http.MethodPost, "/api/classes/import", in, &out); err != nil {
		return classstore.ImportResult{}, err
	}
	out.Classes = nonNil(out.Classes)
	return out, nil
}

type rawEnvelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrTransport, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return fmt.Errorf("%w: %s", ErrUnauthorized, resp.Status)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("%w: read body: %v", ErrTransport, err)
	}

	var env rawEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return fmt.Errorf("%w: %s: not a class API answer", ErrTransport, resp.Status)
	}
	if !env.Success {
		var msg string
		if json.Unmarshal(env.Data, &msg) != nil || msg == "" {
			msg = resp.Status
		}
		return reject(msg)
	}
	if resp.StatusCode/100 != 2 {
		return fmt.Errorf("%w: %s", ErrTransport, resp.Status)
	}
	if out != nil {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("%w: decode data: %v", ErrTransport, err)
		}
	}
	return nil
}

func nonNil(entries []models.ClassEntry) []models.ClassEntry {
	if entries == nil {
		return []models.ClassEntry{}
	}
	return entries
}
