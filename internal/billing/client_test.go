package billing_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vatwatch/internal/billing"
	"vatwatch/internal/reconcile/models"
	dErrors "vatwatch/pkg/domain-errors"
)

func newTestClient(t *testing.T, handler http.Handler) *billing.Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := billing.NewClient(billing.Config{
		APIKey:  "test-key",
		BaseURL: server.URL,
	})
	require.NoError(t, err)
	return client
}

func TestFetchSubjectClient(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/clients/42", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("X-BillomatApiKey"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"client":{"id":42,"name":"Example Gmbh","street":"Hauptplatz 1","zip":"8010","city":"Graz","country_code":"AT","vat_number":"ATU12345678"}}`))
	}))

	subject, err := client.FetchSubject(context.Background(), models.SubjectRef{ClientID: "42"})

	require.NoError(t, err)
	assert.Equal(t, "42", subject.ID)
	assert.Equal(t, "Example Gmbh", subject.Name)
	assert.Equal(t, "Hauptplatz 1 AT-8010 Graz", subject.Address())
	assert.Equal(t, "U12345678", subject.VATNumberBody())
}

func TestFetchSubjectMergesContactIdentityOverClient(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/clients/42":
			w.Write([]byte(`{"client":{"id":42,"name":"Example Gmbh","street":"Hauptplatz 1","zip":"8010","city":"Graz","country_code":"AT","vat_number":"ATU12345678"}}`))
		case "/api/contacts/7":
			w.Write([]byte(`{"contact":{"id":7,"name":"Branch Office","street":"Nebengasse 2","zip":"1010","city":"Wien","country_code":"AT"}}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))

	subject, err := client.FetchSubject(context.Background(), models.SubjectRef{ClientID: "42", ContactID: "7"})

	require.NoError(t, err)
	// Identity fields come from the contact record.
	assert.Equal(t, "7", subject.ID)
	assert.Equal(t, "Branch Office", subject.Name)
	assert.Equal(t, "Nebengasse 2 AT-1010 Wien", subject.Address())
	// The VAT number always comes from the client record; the contact
	// resource does not carry one.
	assert.Equal(t, "ATU12345678", subject.VATNumber)
	assert.Equal(t, "U12345678", subject.VATNumberBody())
}

func TestFetchSubjectContactVATNumberNeverWins(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/clients/42":
			w.Write([]byte(`{"client":{"id":42,"name":"Example Gmbh","vat_number":"ATU12345678"}}`))
		case "/api/contacts/7":
			w.Write([]byte(`{"contact":{"id":7,"name":"Branch Office","vat_number":"ATU99999999"}}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))

	subject, err := client.FetchSubject(context.Background(), models.SubjectRef{ClientID: "42", ContactID: "7"})

	require.NoError(t, err)
	assert.Equal(t, "ATU12345678", subject.VATNumber)
}

func TestFetchSubjectContactNotFound(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/clients/42":
			w.Write([]byte(`{"client":{"id":42,"vat_number":"ATU12345678"}}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))

	_, err := client.FetchSubject(context.Background(), models.SubjectRef{ClientID: "42", ContactID: "7"})

	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
}

func TestFetchSubjectNotFound(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	_, err := client.FetchSubject(context.Background(), models.SubjectRef{ClientID: "42"})

	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
}

func TestFetchSubjectServerError(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))

	_, err := client.FetchSubject(context.Background(), models.SubjectRef{ClientID: "42"})

	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnavailable))
}

func TestNewClientRequiresAccount(t *testing.T) {
	_, err := billing.NewClient(billing.Config{APIKey: "k"})
	require.Error(t, err)
}
