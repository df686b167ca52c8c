package emailoctopus

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gr8terthings/signup-proxy/internal/entity"
)

const DefaultBaseURL = "https://emailoctopus.com/api/1.6"

type Client struct {
	baseURL string
	apiKey  string
	listID  string
	http    *http.Client
}

func NewClient(apiKey, listID, baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		listID:  listID,
		http:    &http.Client{Timeout: timeout},
	}
}

type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("emailoctopus: status %d: %s", e.StatusCode, e.Body)
}

// MemberID is the id the API accepts in place of a contact id: the MD5 hex of
// the lowercased address.
func MemberID(email string) string {
	sum := md5.Sum([]byte(entity.NormalizeEmail(email)))
	return hex.EncodeToString(sum[:])
}

// FindContact returns nil, nil when the list has no such contact.
func (c *Client) FindContact(ctx context.Context, email string) (*entity.ListContact, error) {
	var res contactResponse
	status, err := c.do(ctx, http.MethodGet, c.contactsURL(MemberID(email)), nil, &res)
	if status == http.StatusNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("emailoctopus lookup: %w", err)
	}

	fields := make(map[string]string, len(res.Fields))
	for k, v := range res.Fields {
		if s, ok := v.(string); ok {
			fields[k] = s
		}
	}
	return &entity.ListContact{
		ID:     res.ID,
		Email:  res.EmailAddress,
		Status: res.Status,
		Fields: fields,
	}, nil
}

func (c *Client) CreateContact(ctx context.Context, email string, fields map[string]string) error {
	payload := createContactRequest{EmailAddress: strings.TrimSpace(email), Fields: fields}
	if _, err := c.do(ctx, http.MethodPost, c.contactsURL(""), payload, nil); err != nil {
		return fmt.Errorf("emailoctopus create: %w", err)
	}
	return nil
}

func (c *Client) UpdateContact(ctx context.Context, id string, fields map[string]string) error {
	if fields == nil {
		fields = map[string]string{}
	}
	if _, err := c.do(ctx, http.MethodPatch, c.contactsURL(id), updateContactRequest{Fields: fields}, nil); err != nil {
		return fmt.Errorf("emailoctopus update %s: %w", id, err)
	}
	return nil
}

func (c *Client) Configured() bool {
	return c.apiKey != "" && c.listID != ""
}

func (c *Client) contactsURL(id string) string {
	u := fmt.Sprintf("%s/lists/%s/contacts", c.baseURL, url.PathEscape(c.listID))
	if id != "" {
		u += "/" + url.PathEscape(id)
	}
	return u + "?" + url.Values{"api_key": {c.apiKey}}.Encode()
}

func (c *Client) do(ctx context.Context, method, endpoint string, in, out any) (int, error) {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return 0, fmt.Errorf("marshal: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return resp.StatusCode, &APIError{StatusCode: resp.StatusCode, Body: string(raw)}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp.StatusCode, fmt.Errorf("decode: %w", err)
		}
	}
	return resp.StatusCode, nil
}
