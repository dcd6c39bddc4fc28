package backend

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"eigenphase/internal/circuit"
)

type fakeService struct {
	mux       *http.ServeMux
	polls     atomic.Int32
	pollDelay int32 // polls to report "running" before completing
	counts    map[string]int
	fail      bool
}

func newFakeService(counts map[string]int, pollDelay int32, fail bool) *fakeService {
	s := &fakeService{counts: counts, pollDelay: pollDelay, fail: fail}
	s.mux = http.NewServeMux()
	s.mux.HandleFunc("POST /jobs", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Circuit *circuit.Circuit `json:"circuit"`
			Shots   int              `json:"shots"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Circuit == nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"id": "job-1", "status": "queued"})
	})
	s.mux.HandleFunc("GET /jobs/job-1", func(w http.ResponseWriter, r *http.Request) {
		status := "completed"
		errMsg := ""
		if s.polls.Add(1) <= s.pollDelay {
			status = "running"
		} else if s.fail {
			status = "failed"
			errMsg = "calibration drift"
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"id": "job-1", "status": status, "error": errMsg})
	})
	s.mux.HandleFunc("GET /jobs/job-1/counts", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"id": "job-1", "counts": s.counts})
	})
	return s
}

func testCircuit() *circuit.Circuit {
	c := circuit.New(1, 2)
	c.Append(circuit.H(c.Ancilla().Qubit(0)))
	return c
}

func TestRemoteExecuteReturnsCounts(t *testing.T) {
	svc := newFakeService(map[string]int{"01": 3, "10": 5}, 2, false)
	server := httptest.NewServer(svc.mux)
	defer server.Close()

	remote := NewRemote(RemoteConfig{
		BaseURL:      server.URL,
		PollInterval: time.Millisecond,
	})
	defer remote.Close()
	counts, err := remote.Execute(context.Background(), testCircuit(), 8)
	require.NoError(t, err)
	require.Equal(t, map[string]int{"01": 3, "10": 5}, counts)
	require.GreaterOrEqual(t, svc.polls.Load(), int32(3))
}

func TestRemoteExecuteSurfacesJobFailure(t *testing.T) {
	svc := newFakeService(nil, 0, true)
	server := httptest.NewServer(svc.mux)
	defer server.Close()

	remote := NewRemote(RemoteConfig{BaseURL: server.URL, PollInterval: time.Millisecond})
	defer remote.Close()
	_, err := remote.Execute(context.Background(), testCircuit(), 8)
	require.Error(t, err)
	require.Contains(t, err.Error(), "calibration drift")
}

func TestRemoteExecuteHonorsContext(t *testing.T) {
	svc := newFakeService(map[string]int{"0": 8}, 1<<30, false)
	server := httptest.NewServer(svc.mux)
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	remote := NewRemote(RemoteConfig{BaseURL: server.URL, PollInterval: 5 * time.Millisecond})
	defer remote.Close()
	_, err := remote.Execute(ctx, testCircuit(), 8)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestRemoteRejectsOversizedCircuit(t *testing.T) {
	remote := NewRemote(RemoteConfig{BaseURL: "http://unused", MaxQubits: 2})
	_, err := remote.Execute(context.Background(), testCircuit(), 8)
	require.Error(t, err)
}

func TestCheckMeasurement(t *testing.T) {
	remote := NewRemote(RemoteConfig{BaseURL: "http://unused"})
	require.NoError(t, CheckMeasurement(remote))
}
