package servicem8

import (
	"context"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBasicAuthHeader(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	client := NewClient("my-api-key", WithBaseURL(server.URL))
	_, err := client.Jobs(context.Background())
	require.NoError(t, err)

	// ServiceM8 expects basic auth with an empty username and the API
	// key as the password.
	expected := "Basic " + base64.StdEncoding.EncodeToString([]byte(":my-api-key"))
	assert.Equal(t, expected, gotAuth)
}

func TestJobsDecodes(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/job.json", r.URL.Path)
		w.Write([]byte(`[{"uuid":"abc-123","generated_job_id":"42","status":"Work Order","job_address":"1 Main St"}]`))
	}))
	defer server.Close()

	client := NewClient("key", WithBaseURL(server.URL))
	jobs, err := client.Jobs(context.Background())
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, "abc-123", jobs[0].UUID)
	assert.Equal(t, "42", jobs[0].GeneratedJobID)
	assert.Equal(t, "1 Main St", jobs[0].JobAddress)
}

func TestJobAttachmentsFilter(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "related_object_uuid eq 'job-1'", r.URL.Query().Get("$filter"))
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	client := NewClient("key", WithBaseURL(server.URL))
	_, err := client.JobAttachments(context.Background(), "job-1")
	require.NoError(t, err)
}

func TestNon2xxReturnsAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"errors":"bad key"}`))
	}))
	defer server.Close()

	client := NewClient("bad-key", WithBaseURL(server.URL))
	_, err := client.Jobs(context.Background())
	require.Error(t, err)

	apiErr, ok := err.(*APIError)
	require.True(t, ok)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Contains(t, apiErr.Body, "bad key")
}

func TestTimeoutBoundsSlowUpstream(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	client := NewClient("key", WithBaseURL(server.URL), WithTimeout(50*time.Millisecond))
	_, err := client.Jobs(context.Background())
	assert.Error(t, err)
}

func TestUnconfiguredClientFailsFast(t *testing.T) {
	client := NewClient("")
	assert.False(t, client.Configured())

	_, err := client.Jobs(context.Background())
	assert.Error(t, err)
}

func TestCreateJobNote(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/jobnote.json", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewClient("key", WithBaseURL(server.URL))
	assert.NoError(t, client.CreateJobNote(context.Background(), "job-1", "done"))
}
