package crm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/xavierca1/visa-leads/internal/entity"
)

// Client syncs new leads into a Kommo-compatible CRM (API v4).
type Client struct {
	apiToken   string
	baseURL    string
	httpClient *http.Client
	log        zerolog.Logger
}

func NewClient(baseURL, apiToken string, log zerolog.Logger) *Client {
	return &Client{
		apiToken:   apiToken,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 15 * time.Second},
		log:        log.With().Str("component", "crm").Logger(),
	}
}

// Enabled reports whether the client has what it needs to call the CRM.
func (c *Client) Enabled() bool {
	return c.apiToken != "" && c.baseURL != ""
}

// CreateLead files the submitted lead under its contact, creating the contact
// when no one with the same e-mail exists yet.
func (c *Client) CreateLead(ctx context.Context, event entity.LeadEvent) error {
	if !c.Enabled() {
		return errors.New("crm not configured")
	}

	contactID, err := c.findOrCreateContact(ctx, event)
	if err != nil {
		return fmt.Errorf("find or create contact: %w", err)
	}

	tags := []tag{{Name: "visa_intake"}}
	for _, v := range event.VisasOfInterest {
		tags = append(tags, tag{Name: string(v)})
	}

	payload := []leadPayload{{
		Name: leadName(event),
		Embedded: leadEmbedded{
			Tags:     tags,
			Contacts: []entityRef{{ID: contactID}},
		},
	}}

	var result embeddedIDs
	if err := c.do(ctx, http.MethodPost, "/leads", payload, &result); err != nil {
		return fmt.Errorf("create lead: %w", err)
	}
	if len(result.Embedded.Leads) == 0 {
		return errors.New("create lead: empty response")
	}

	c.log.Info().
		Int("crm_lead_id", result.Embedded.Leads[0].ID).
		Str("lead_id", event.LeadID).
		Msg("lead synced to crm")
	return nil
}

func (c *Client) findOrCreateContact(ctx context.Context, event entity.LeadEvent) (int, error) {
	id, err := c.findContactByEmail(ctx, event.Email)
	if err != nil {
		return 0, err
	}
	if id > 0 {
		return id, nil
	}
	return c.createContact(ctx, event)
}

func (c *Client) findContactByEmail(ctx context.Context, email string) (int, error) {
	var result embeddedIDs
	err := c.do(ctx, http.MethodGet, "/contacts?query="+url.QueryEscape(email), nil, &result)
	if err != nil {
		return 0, err
	}
	if len(result.Embedded.Contacts) == 0 {
		return 0, nil
	}
	return result.Embedded.Contacts[0].ID, nil
}

func (c *Client) createContact(ctx context.Context, event entity.LeadEvent) (int, error) {
	payload := []contactPayload{{
		Name:      strings.TrimSpace(event.FirstName + " " + event.LastName),
		FirstName: event.FirstName,
		LastName:  event.LastName,
		CustomFieldsValues: []customField{{
			FieldCode: "EMAIL",
			Values:    []customFieldValue{{Value: event.Email, EnumCode: "WORK"}},
		}},
	}}

	var result embeddedIDs
	if err := c.do(ctx, http.MethodPost, "/contacts", payload, &result); err != nil {
		return 0, err
	}
	if len(result.Embedded.Contacts) == 0 {
		return 0, errors.New("create contact: empty response")
	}
	return result.Embedded.Contacts[0].ID, nil
}

// do sends a JSON request and decodes a JSON response into out. 204 means
// an empty result.
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
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiToken)
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNoContent {
		return nil
	}
	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%s %s: status %d: %s", method, path, resp.StatusCode, strings.TrimSpace(string(respBody)))
	}
	if out == nil || len(respBody) == 0 {
		return nil
	}
	return json.Unmarshal(respBody, out)
}

func leadName(event entity.LeadEvent) string {
	name := strings.TrimSpace(event.FirstName + " " + event.LastName)
	if len(event.VisasOfInterest) == 0 {
		return name
	}
	visas := make([]string, 0, len(event.VisasOfInterest))
	for _, v := range event.VisasOfInterest {
		visas = append(visas, string(v))
	}
	return name + " - " + strings.Join(visas, "/")
}
