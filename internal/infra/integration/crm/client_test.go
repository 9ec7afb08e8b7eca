package crm_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xavierca1/visa-leads/internal/entity"
	"github.com/xavierca1/visa-leads/internal/infra/integration/crm"
)

func leadEvent() entity.LeadEvent {
	return entity.NewLeadEvent(entity.LeadSubmitted, entity.Lead{
		ID:              "lead-1",
		FirstName:       "Ana",
		LastName:        "Lee",
		Email:           "ana+visa@x.com",
		VisasOfInterest: []entity.VisaType{entity.VisaO1, entity.VisaEB1A},
		Status:          entity.StatusPending,
	}, time.Now())
}

type fakeKommo struct {
	existingContact int
	leadBody        []map[string]any
	contactCreated  bool
	query           string
	auth            string
}

func (f *fakeKommo) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /contacts", func(w http.ResponseWriter, r *http.Request) {
		f.query = r.URL.Query().Get("query")
		f.auth = r.Header.Get("Authorization")
		if f.existingContact == 0 {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		_, _ = io.WriteString(w, `{"_embedded":{"contacts":[{"id":`+jsonInt(f.existingContact)+`}]}}`)
	})
	mux.HandleFunc("POST /contacts", func(w http.ResponseWriter, r *http.Request) {
		f.contactCreated = true
		_, _ = io.WriteString(w, `{"_embedded":{"contacts":[{"id":77}]}}`)
	})
	mux.HandleFunc("POST /leads", func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&f.leadBody))
		_, _ = io.WriteString(w, `{"_embedded":{"leads":[{"id":501}]}}`)
	})
	return mux
}

func jsonInt(n int) string {
	b, _ := json.Marshal(n)
	return string(b)
}

func TestCreateLeadCreatesContactWhenMissing(t *testing.T) {
	fake := &fakeKommo{}
	srv := httptest.NewServer(fake.handler(t))
	defer srv.Close()

	client := crm.NewClient(srv.URL, "token-123", zerolog.Nop())
	require.NoError(t, client.CreateLead(context.Background(), leadEvent()))

	assert.Equal(t, "ana+visa@x.com", fake.query)
	assert.Equal(t, "Bearer token-123", fake.auth)
	assert.True(t, fake.contactCreated)
	require.Len(t, fake.leadBody, 1)
	assert.Equal(t, "Ana Lee - O-1/EB-1A", fake.leadBody[0]["name"])

	embedded := fake.leadBody[0]["_embedded"].(map[string]any)
	contacts := embedded["contacts"].([]any)
	assert.Equal(t, float64(77), contacts[0].(map[string]any)["id"])
	assert.Len(t, embedded["tags"], 3)
}

func TestCreateLeadReusesExistingContact(t *testing.T) {
	fake := &fakeKommo{existingContact: 42}
	srv := httptest.NewServer(fake.handler(t))
	defer srv.Close()

	require.NoError(t, crm.NewClient(srv.URL, "t", zerolog.Nop()).CreateLead(context.Background(), leadEvent()))

	assert.False(t, fake.contactCreated)
	contacts := fake.leadBody[0]["_embedded"].(map[string]any)["contacts"].([]any)
	assert.Equal(t, float64(42), contacts[0].(map[string]any)["id"])
}

func TestCreateLeadReportsHTTPErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	}))
	defer srv.Close()

	err := crm.NewClient(srv.URL, "bad", zerolog.Nop()).CreateLead(context.Background(), leadEvent())
	assert.ErrorContains(t, err, "status 401")
}

func TestCreateLeadRequiresConfiguration(t *testing.T) {
	client := crm.NewClient("https://crm.example.com", "", zerolog.Nop())
	assert.False(t, client.Enabled())
	assert.Error(t, client.CreateLead(context.Background(), leadEvent()))
}
