package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"eigenphase/internal/circuit"
)

const (
	jobStatusQueued    = "queued"
	jobStatusRunning   = "running"
	jobStatusCompleted = "completed"
	jobStatusFailed    = "failed"
	jobStatusCancelled = "cancelled"
)

// RemoteConfig configures an HTTP execution service.
type RemoteConfig struct {
	Name         string
	BaseURL      string
	APIKey       string
	MaxQubits    int
	PollInterval time.Duration
	HTTPClient   *http.Client
}

// Remote submits circuits to an execution service over HTTP and polls for
// the count histogram: POST /jobs to submit, GET /jobs/{id} for status,
// GET /jobs/{id}/counts for results.
type Remote struct {
	name         string
	baseURL      string
	apiKey       string
	maxQubits    int
	pollInterval time.Duration
	client       *http.Client
}

func NewRemote(cfg RemoteConfig) *Remote {
	name := cfg.Name
	if name == "" {
		name = "remote"
	}
	pollInterval := cfg.PollInterval
	if pollInterval <= 0 {
		pollInterval = 250 * time.Millisecond
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &Remote{
		name:         name,
		baseURL:      cfg.BaseURL,
		apiKey:       cfg.APIKey,
		maxQubits:    cfg.MaxQubits,
		pollInterval: pollInterval,
		client:       client,
	}
}

func (r *Remote) Name() string {
	return r.name
}

// Close releases idle connections held by the underlying HTTP client.
func (r *Remote) Close() {
	r.client.CloseIdleConnections()
}

func (r *Remote) Capabilities() Capabilities {
	return Capabilities{MaxQubits: r.maxQubits, Measurement: true}
}

type submitRequest struct {
	Circuit *circuit.Circuit `json:"circuit"`
	Shots   int              `json:"shots"`
}

type jobEnvelope struct {
	ID     string         `json:"id"`
	Status string         `json:"status"`
	Error  string         `json:"error,omitempty"`
	Counts map[string]int `json:"counts,omitempty"`
}

func (r *Remote) Execute(ctx context.Context, c *circuit.Circuit, shots int) (map[string]int, error) {
	if err := CheckFit(r, c); err != nil {
		return nil, err
	}

	jobID, err := r.submit(ctx, c, shots)
	if err != nil {
		return nil, err
	}

	ticker := time.NewTicker(r.pollInterval)
	defer ticker.Stop()
	for {
		status, err := r.status(ctx, jobID)
		if err != nil {
			return nil, err
		}
		switch status.Status {
		case jobStatusCompleted:
			return r.counts(ctx, jobID)
		case jobStatusFailed, jobStatusCancelled:
			return nil, fmt.Errorf("job %s %s: %s", jobID, status.Status, status.Error)
		case jobStatusQueued, jobStatusRunning:
		default:
			return nil, fmt.Errorf("job %s reported unknown status %q", jobID, status.Status)
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

func (r *Remote) submit(ctx context.Context, c *circuit.Circuit, shots int) (string, error) {
	body, err := json.Marshal(submitRequest{Circuit: c, Shots: shots})
	if err != nil {
		return "", err
	}
	var env jobEnvelope
	if err := r.do(ctx, http.MethodPost, r.baseURL+"/jobs", bytes.NewReader(body), &env); err != nil {
		return "", fmt.Errorf("submit to %s: %w", r.name, err)
	}
	if env.ID == "" {
		return "", fmt.Errorf("submit to %s: no job id in response", r.name)
	}
	return env.ID, nil
}

func (r *Remote) status(ctx context.Context, jobID string) (jobEnvelope, error) {
	var env jobEnvelope
	if err := r.do(ctx, http.MethodGet, r.baseURL+"/jobs/"+jobID, nil, &env); err != nil {
		return jobEnvelope{}, fmt.Errorf("status of job %s: %w", jobID, err)
	}
	return env, nil
}

func (r *Remote) counts(ctx context.Context, jobID string) (map[string]int, error) {
	var env jobEnvelope
	if err := r.do(ctx, http.MethodGet, r.baseURL+"/jobs/"+jobID+"/counts", nil, &env); err != nil {
		return nil, fmt.Errorf("counts of job %s: %w", jobID, err)
	}
	if env.Counts == nil {
		return nil, fmt.Errorf("job %s returned no counts", jobID)
	}
	return env.Counts, nil
}

func (r *Remote) do(ctx context.Context, method, url string, body io.Reader, out *jobEnvelope) error {
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if r.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+r.apiKey)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("unexpected status %s", resp.Status)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
