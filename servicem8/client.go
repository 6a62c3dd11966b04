package servicem8

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const defaultBaseURL = "https://api.servicem8.com/api_1.0"

// Client talks to the ServiceM8 field-service API. ServiceM8 uses HTTP
// basic auth with an empty username and the API key as the password.
//
// All calls are advisory in this system: the portal serves locally stored
// bookings whether or not ServiceM8 is reachable.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// Job is a ServiceM8 job record.
type Job struct {
	UUID            string `json:"uuid"`
	GeneratedJobID  string `json:"generated_job_id"`
	Status          string `json:"status"`
	JobAddress      string `json:"job_address"`
	JobDescription  string `json:"job_description"`
	TotalInvoiceAmt string `json:"total_invoice_amount"`
	CompanyUUID     string `json:"company_uuid"`
	DateCreated     string `json:"date"`
	WorkDoneDesc    string `json:"work_done_description"`
	Active          int    `json:"active"`
}

// Company is the ServiceM8 account company record.
type Company struct {
	UUID  string `json:"uuid"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// Staff is a ServiceM8 staff member.
type Staff struct {
	UUID      string `json:"uuid"`
	FirstName string `json:"first"`
	LastName  string `json:"last"`
	Email     string `json:"email"`
	Mobile    string `json:"mobile"`
}

// JobAttachment is a file attached to a ServiceM8 job.
type JobAttachment struct {
	UUID              string `json:"uuid"`
	FileName          string `json:"attachment_name"`
	FileType          string `json:"file_type"`
	RelatedObjectUUID string `json:"related_object_uuid"`
}

// APIError carries the status and body of a non-2xx ServiceM8 response.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("servicem8: API error (%d): %s", e.StatusCode, e.Body)
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API base URL (used in tests).
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithTimeout bounds every request so slow-downstream latency never leaks
// into the primary request path.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// NewClient creates a ServiceM8 client. An empty API key yields an
// unconfigured client; calls on it fail fast without hitting the network.
func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		baseURL: defaultBaseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 5 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Configured reports whether an API key is set.
func (c *Client) Configured() bool {
	return c != nil && c.apiKey != ""
}

// Jobs fetches all jobs.
func (c *Client) Jobs(ctx context.Context) ([]Job, error) {
	var jobs []Job
	if err := c.get(ctx, "job.json", &jobs); err != nil {
		return nil, err
	}
	return jobs, nil
}

// Job fetches a single job by UUID.
func (c *Client) Job(ctx context.Context, uuid string) (*Job, error) {
	var job Job
	if err := c.get(ctx, fmt.Sprintf("job/%s.json", uuid), &job); err != nil {
		return nil, err
	}
	return &job, nil
}

// CompanyInfo fetches the account company records.
func (c *Client) CompanyInfo(ctx context.Context) ([]Company, error) {
	var companies []Company
	if err := c.get(ctx, "company.json", &companies); err != nil {
		return nil, err
	}
	return companies, nil
}

// StaffMembers fetches all staff records.
func (c *Client) StaffMembers(ctx context.Context) ([]Staff, error) {
	var staff []Staff
	if err := c.get(ctx, "staff.json", &staff); err != nil {
		return nil, err
	}
	return staff, nil
}

// JobAttachments fetches attachments related to a job.
func (c *Client) JobAttachments(ctx context.Context, jobUUID string) ([]JobAttachment, error) {
	filter := url.QueryEscape(fmt.Sprintf("related_object_uuid eq '%s'", jobUUID))
	var attachments []JobAttachment
	if err := c.get(ctx, "attachment.json?$filter="+filter, &attachments); err != nil {
		return nil, err
	}
	return attachments, nil
}

// CreateJobNote posts a note on a job.
func (c *Client) CreateJobNote(ctx context.Context, jobUUID, note string) error {
	payload := map[string]string{
		"job_uuid":  jobUUID,
		"note":      note,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}
	return c.post(ctx, "jobnote.json", payload)
}

func (c *Client) get(ctx context.Context, endpoint string, out interface{}) error {
	return c.do(ctx, http.MethodGet, endpoint, nil, out)
}

func (c *Client) post(ctx context.Context, endpoint string, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return c.do(ctx, http.MethodPost, endpoint, bytes.NewReader(body), nil)
}

func (c *Client) do(ctx context.Context, method, endpoint string, body io.Reader, out interface{}) error {
	if !c.Configured() {
		return fmt.Errorf("servicem8: API key not configured")
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+"/"+endpoint, body)
	if err != nil {
		return err
	}
	req.SetBasicAuth("", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("servicem8: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &APIError{StatusCode: resp.StatusCode, Body: string(data)}
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
