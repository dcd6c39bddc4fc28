// Package eigenphase is the embedding API: it wires the estimator, an
// execution backend, and a run store behind a single client so applications
// and the CLI share one code path.
package eigenphase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"eigenphase/internal/backend"
	"eigenphase/internal/circuit"
	"eigenphase/internal/model"
	"eigenphase/internal/pauli"
	"eigenphase/internal/qpe"
	"eigenphase/internal/simulator"
	"eigenphase/internal/storage"
)

const defaultDBPath = "eigenphase.db"

var ErrRunNotFound = errors.New("run not found")

// Options configures a Client. The zero value selects the default store
// kind, a local statevector backend, and a no-op logger.
type Options struct {
	StoreKind string
	DBPath    string
	Backend   backend.Backend
	Logger    *zap.Logger
}

type Client struct {
	store   storage.Store
	backend backend.Backend
	logger  *zap.Logger
}

// HamiltonianTerm is one Pauli-sum term in wire form. The label places the
// first character on qubit 0.
type HamiltonianTerm struct {
	Coefficient float64 `json:"coefficient" yaml:"coefficient"`
	Label       string  `json:"label" yaml:"label"`
}

// RunRequest describes one estimation. NumTimeSlices is a pointer so that an
// explicit zero (phase correction only, no evolution blocks) stays
// distinguishable from an omitted field, which selects the default of 1.
type RunRequest struct {
	Hamiltonian    []HamiltonianTerm `json:"hamiltonian" yaml:"hamiltonian"`
	NumTimeSlices  *int              `json:"num_time_slices,omitempty" yaml:"num_time_slices,omitempty"`
	PaulisGrouping string            `json:"paulis_grouping,omitempty" yaml:"paulis_grouping,omitempty"`
	ExpansionMode  string            `json:"expansion_mode,omitempty" yaml:"expansion_mode,omitempty"`
	ExpansionOrder int               `json:"expansion_order,omitempty" yaml:"expansion_order,omitempty"`
	NumAncillae    int               `json:"num_ancillae,omitempty" yaml:"num_ancillae,omitempty"`
	Shots          int               `json:"shots,omitempty" yaml:"shots,omitempty"`
	Seed           int64             `json:"seed,omitempty" yaml:"seed,omitempty"`
	DataState      uint64            `json:"data_state,omitempty" yaml:"data_state,omitempty"`
}

type RunSummary struct {
	RunID      string
	Backend    string
	Energy     float64
	TopLabel   string
	TopDecimal float64
}

type RunItem struct {
	RunID        string
	CreatedAtUTC string
	Backend      string
	NumAncillae  int
	Shots        int
	Energy       float64
}

// ResultRequest selects a stored run either by ID or, with Latest, the most
// recently created one.
type ResultRequest struct {
	RunID  string
	Latest bool
}

func New(opts Options) (*Client, error) {
	storeKind := opts.StoreKind
	if storeKind == "" {
		storeKind = storage.DefaultStoreKind()
	}
	dbPath := opts.DBPath
	if dbPath == "" {
		dbPath = defaultDBPath
	}
	store, err := storage.NewStore(storeKind, dbPath)
	if err != nil {
		return nil, err
	}

	exec := opts.Backend
	if exec == nil {
		exec = simulator.New(simulator.Config{})
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{store: store, backend: exec, logger: logger}, nil
}

func (c *Client) Close() error {
	return storage.CloseIfSupported(c.store)
}

func (c *Client) Init(ctx context.Context) error {
	return c.store.Init(ctx)
}

// Run estimates the smallest eigenvalue of the requested Hamiltonian,
// persists the run, and returns its summary.
func (c *Client) Run(ctx context.Context, req RunRequest) (RunSummary, error) {
	op, err := parseHamiltonian(req.Hamiltonian)
	if err != nil {
		return RunSummary{}, err
	}

	numTimeSlices := qpe.DefaultNumTimeSlices
	if req.NumTimeSlices != nil {
		numTimeSlices = *req.NumTimeSlices
	}
	cfg := qpe.Config{
		NumTimeSlices:  numTimeSlices,
		PaulisGrouping: req.PaulisGrouping,
		ExpansionMode:  req.ExpansionMode,
		ExpansionOrder: req.ExpansionOrder,
		NumAncillae:    req.NumAncillae,
		Shots:          req.Shots,
		Seed:           req.Seed,
		Logger:         c.logger,
	}
	if req.DataState != 0 {
		cfg.Preparer = circuit.BasisState{State: req.DataState}
	}

	est, err := qpe.New(op, cfg)
	if err != nil {
		return RunSummary{}, err
	}
	result, err := est.Run(ctx, c.backend)
	if err != nil {
		return RunSummary{}, err
	}

	runConfig := est.Config().RunConfig()
	runConfig.Backend = c.backend.Name()
	record := model.RunRecord{
		VersionedRecord: storage.Stamp(),
		RunID:           uuid.NewString(),
		CreatedAtUTC:    time.Now().UTC().Format(time.RFC3339),
		Config:          runConfig,
		Result:          result,
	}
	if err := c.store.SaveRun(ctx, record); err != nil {
		return RunSummary{}, fmt.Errorf("persist run %s: %w", record.RunID, err)
	}
	c.logger.Info("run persisted",
		zap.String("run_id", record.RunID),
		zap.Float64("energy", result.Energy),
	)

	return RunSummary{
		RunID:      record.RunID,
		Backend:    record.Config.Backend,
		Energy:     result.Energy,
		TopLabel:   result.TopLabel,
		TopDecimal: result.TopDecimal,
	}, nil
}

// Runs lists stored runs newest first. A positive limit caps the result;
// zero or negative returns everything.
func (c *Client) Runs(ctx context.Context, limit int) ([]RunItem, error) {
	records, err := c.store.ListRuns(ctx)
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(records)-1; i < j; i, j = i+1, j-1 {
		records[i], records[j] = records[j], records[i]
	}
	if limit > 0 && limit < len(records) {
		records = records[:limit]
	}
	items := make([]RunItem, 0, len(records))
	for _, record := range records {
		items = append(items, RunItem{
			RunID:        record.RunID,
			CreatedAtUTC: record.CreatedAtUTC,
			Backend:      record.Config.Backend,
			NumAncillae:  record.Config.NumAncillae,
			Shots:        record.Config.Shots,
			Energy:       record.Result.Energy,
		})
	}
	return items, nil
}

// Result returns the full stored record for one run.
func (c *Client) Result(ctx context.Context, req ResultRequest) (model.RunRecord, error) {
	if req.Latest {
		records, err := c.store.ListRuns(ctx)
		if err != nil {
			return model.RunRecord{}, err
		}
		if len(records) == 0 {
			return model.RunRecord{}, ErrRunNotFound
		}
		return records[len(records)-1], nil
	}
	if req.RunID == "" {
		return model.RunRecord{}, errors.New("run id is required unless latest is set")
	}
	record, ok, err := c.store.GetRun(ctx, req.RunID)
	if err != nil {
		return model.RunRecord{}, err
	}
	if !ok {
		return model.RunRecord{}, fmt.Errorf("%w: %s", ErrRunNotFound, req.RunID)
	}
	return record, nil
}

// DeleteRun removes a stored run; deleting an absent run is not an error.
func (c *Client) DeleteRun(ctx context.Context, runID string) error {
	return c.store.DeleteRun(ctx, runID)
}

func parseHamiltonian(terms []HamiltonianTerm) (*pauli.Operator, error) {
	if len(terms) == 0 {
		return nil, errors.New("hamiltonian must have at least one term")
	}
	parsed := make([]pauli.Term, 0, len(terms))
	for i, t := range terms {
		p, err := pauli.ParseLabel(t.Label)
		if err != nil {
			return nil, fmt.Errorf("hamiltonian term %d: %w", i, err)
		}
		parsed = append(parsed, pauli.Term{Coeff: complex(t.Coefficient, 0), Pauli: p})
	}
	return pauli.NewOperator(parsed...)
}
