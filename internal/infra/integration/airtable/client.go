package airtable

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gr8terthings/signup-proxy/internal/entity"
)

const DefaultBaseURL = "https://api.airtable.com/v0"

type Client struct {
	baseURL string
	token   string
	baseID  string
	tableID string
	http    *http.Client
}

func NewClient(token, baseID, tableID, baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		baseID:  baseID,
		tableID: tableID,
		http:    &http.Client{Timeout: timeout},
	}
}

// APIError is returned for any non-2xx answer.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("airtable: status %d: %s", e.StatusCode, e.Body)
}

var formulaEscaper = strings.NewReplacer(`\`, `\\`, `'`, `\'`)

// EmailFormula matches the Email column ignoring case and surrounding whitespace.
func EmailFormula(email string) string {
	return fmt.Sprintf("LOWER(TRIM({Email}))='%s'", formulaEscaper.Replace(entity.NormalizeEmail(email)))
}

func (c *Client) FindByEmail(ctx context.Context, email string) (*entity.Subscriber, error) {
	q := url.Values{}
	q.Set("filterByFormula", EmailFormula(email))
	q.Set("maxRecords", "1")

	var res listResponse
	if err := c.do(ctx, http.MethodGet, c.tableURL()+"?"+q.Encode(), nil, &res); err != nil {
		return nil, fmt.Errorf("airtable lookup: %w", err)
	}
	if len(res.Records) == 0 {
		return nil, nil
	}
	return toSubscriber(res.Records[0]), nil
}

func (c *Client) Create(ctx context.Context, s *entity.Subscriber) (*entity.Subscriber, error) {
	var res record
	if err := c.do(ctx, http.MethodPost, c.tableURL(), writeRequest{Fields: toFields(s)}, &res); err != nil {
		return nil, fmt.Errorf("airtable create: %w", err)
	}
	return toSubscriber(res), nil
}

// Update is a PATCH, so Airtable leaves every column absent from the body untouched.
func (c *Client) Update(ctx context.Context, id string, patch *entity.Subscriber) (*entity.Subscriber, error) {
	var res record
	endpoint := c.tableURL() + "/" + url.PathEscape(id)
	if err := c.do(ctx, http.MethodPatch, endpoint, writeRequest{Fields: toFields(patch)}, &res); err != nil {
		return nil, fmt.Errorf("airtable update %s: %w", id, err)
	}
	return toSubscriber(res), nil
}

func (c *Client) Configured() bool {
	return c.token != "" && c.baseID != "" && c.tableID != ""
}

func (c *Client) tableURL() string {
	return fmt.Sprintf("%s/%s/%s", c.baseURL, url.PathEscape(c.baseID), url.PathEscape(c.tableID))
}

func (c *Client) do(ctx context.Context, method, endpoint string, in, out any) error {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return err
	}
	c.setHeaders(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &APIError{StatusCode: resp.StatusCode, Body: string(raw)}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	return nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
}

// toFields only emits non-empty values, which gives PATCH merge semantics.
func toFields(s *entity.Subscriber) recordFields {
	f := recordFields{}
	f.setString(FieldFirstName, s.FirstName)
	f.setString(FieldLastName, s.LastName)
	f.setString(FieldEmail, s.Email)
	f.setString(FieldPhone, s.Phone)
	f.setString(FieldDeliveryPreference, string(s.DeliveryPreference))
	if len(s.CampaignInterest) > 0 {
		f[FieldCampaignInterest] = s.CampaignInterest
	}
	f.setString(FieldSubscribedDate, s.SubscribedDate)
	f.setString(FieldSource, s.Source)
	f.setString(FieldStatus, s.Status)
	f.setString(FieldWhySubscribe, s.WhySubscribe)
	return f
}

func toSubscriber(r record) *entity.Subscriber {
	f := r.Fields
	return &entity.Subscriber{
		ID:                 r.ID,
		FirstName:          f.str(FieldFirstName),
		LastName:           f.str(FieldLastName),
		Email:              f.str(FieldEmail),
		Phone:              f.str(FieldPhone),
		DeliveryPreference: entity.DeliveryPreference(f.str(FieldDeliveryPreference)),
		CampaignInterest:   f.strs(FieldCampaignInterest),
		SubscribedDate:     f.str(FieldSubscribedDate),
		Source:             f.str(FieldSource),
		Status:             f.str(FieldStatus),
		WhySubscribe:       f.str(FieldWhySubscribe),
	}
}
