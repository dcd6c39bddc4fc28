package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"eigenphase/internal/backend"
	"eigenphase/internal/simulator"
	"eigenphase/internal/storage"
	api "eigenphase/pkg/eigenphase"
)

func main() {
	if err := run(context.Background(), os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usageError("missing command")
	}

	switch args[0] {
	case "init":
		return runInit(ctx, args[1:])
	case "run":
		return runRun(ctx, args[1:])
	case "runs":
		return runRuns(ctx, args[1:])
	case "result":
		return runResult(ctx, args[1:])
	case "delete":
		return runDelete(ctx, args[1:])
	default:
		return usageError(fmt.Sprintf("unknown command: %s", args[0]))
	}
}

type commonFlags struct {
	storeKind *string
	dbPath    *string
	verbose   *bool
}

func addCommonFlags(fs *flag.FlagSet) commonFlags {
	return commonFlags{
		storeKind: fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite"),
		dbPath:    fs.String("db-path", "eigenphase.db", "sqlite database path"),
		verbose:   fs.Bool("verbose", false, "enable debug logging"),
	}
}

func newLogger(verbose bool) (*zap.Logger, error) {
	config := zap.NewProductionConfig()
	if verbose {
		config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	return config.Build()
}

func newClient(ctx context.Context, flags commonFlags, exec backend.Backend) (*api.Client, *zap.Logger, error) {
	logger, err := newLogger(*flags.verbose)
	if err != nil {
		return nil, nil, fmt.Errorf("initialize logger: %w", err)
	}
	client, err := api.New(api.Options{
		StoreKind: *flags.storeKind,
		DBPath:    *flags.dbPath,
		Backend:   exec,
		Logger:    logger,
	})
	if err != nil {
		return nil, nil, err
	}
	if err := client.Init(ctx); err != nil {
		return nil, nil, err
	}
	return client, logger, nil
}

func runInit(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("init", flag.ContinueOnError)
	flags := addCommonFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, logger, err := newClient(ctx, flags, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
		_ = logger.Sync()
	}()

	fmt.Printf("initialized store=%s\n", *flags.storeKind)
	return nil
}

func runRun(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	flags := addCommonFlags(fs)
	configPath := fs.String("config", "", "run request file (json or yaml)")
	hamiltonian := fs.String("hamiltonian", "", `inline hamiltonian, e.g. [{"coefficient":1,"label":"IZ"}]`)
	timeSlices := fs.Int("slices", -1, "evolution time slices per power (0 disables evolution blocks)")
	grouping := fs.String("grouping", "", "pauli term grouping: random|default")
	mode := fs.String("mode", "", "expansion mode: suzuki|trotter")
	order := fs.Int("order", 0, "expansion order (1 or even)")
	ancillae := fs.Int("ancillae", 0, "number of ancilla qubits")
	shots := fs.Int("shots", 0, "measurement shots")
	seed := fs.Int64("seed", 0, "random seed for term grouping")
	dataState := fs.Uint64("data-state", 0, "computational basis state to prepare")
	backendKind := fs.String("backend", "local", "execution backend: local|remote")
	remoteURL := fs.String("remote-url", "", "remote backend base URL")
	remoteAPIKey := fs.String("remote-api-key", "", "remote backend API key")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var req api.RunRequest
	if *configPath != "" {
		loaded, err := loadRunRequest(*configPath)
		if err != nil {
			return err
		}
		req = loaded
	}
	if *hamiltonian != "" {
		if err := json.Unmarshal([]byte(*hamiltonian), &req.Hamiltonian); err != nil {
			return fmt.Errorf("parse hamiltonian flag: %w", err)
		}
	}
	if *timeSlices >= 0 {
		req.NumTimeSlices = timeSlices
	}
	if *grouping != "" {
		req.PaulisGrouping = *grouping
	}
	if *mode != "" {
		req.ExpansionMode = *mode
	}
	if *order != 0 {
		req.ExpansionOrder = *order
	}
	if *ancillae != 0 {
		req.NumAncillae = *ancillae
	}
	if *shots != 0 {
		req.Shots = *shots
	}
	if *seed != 0 {
		req.Seed = *seed
	}
	if *dataState != 0 {
		req.DataState = *dataState
	}

	exec, err := selectBackend(*backendKind, *remoteURL, *remoteAPIKey)
	if err != nil {
		return err
	}

	client, logger, err := newClient(ctx, flags, exec)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
		_ = logger.Sync()
	}()

	summary, err := client.Run(ctx, req)
	if err != nil {
		return err
	}
	fmt.Printf("run=%s backend=%s top=%s decimal=%g energy=%g\n",
		summary.RunID, summary.Backend, summary.TopLabel, summary.TopDecimal, summary.Energy)
	return nil
}

func selectBackend(kind, remoteURL, apiKey string) (backend.Backend, error) {
	switch kind {
	case "", "local":
		return simulator.New(simulator.Config{}), nil
	case "remote":
		if remoteURL == "" {
			return nil, usageError("remote backend requires -remote-url")
		}
		return backend.NewRemote(backend.RemoteConfig{BaseURL: remoteURL, APIKey: apiKey}), nil
	default:
		return nil, usageError(fmt.Sprintf("unknown backend: %s", kind))
	}
}

func runRuns(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("runs", flag.ContinueOnError)
	flags := addCommonFlags(fs)
	limit := fs.Int("limit", 0, "show at most this many runs (0 = all)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, logger, err := newClient(ctx, flags, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
		_ = logger.Sync()
	}()

	runs, err := client.Runs(ctx, *limit)
	if err != nil {
		return err
	}
	for _, item := range runs {
		fmt.Printf("%s  %s  backend=%s ancillae=%d shots=%d energy=%g\n",
			item.RunID, item.CreatedAtUTC, item.Backend, item.NumAncillae, item.Shots, item.Energy)
	}
	return nil
}

func runResult(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("result", flag.ContinueOnError)
	flags := addCommonFlags(fs)
	runID := fs.String("id", "", "run id")
	latest := fs.Bool("latest", false, "show the most recent run")
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, logger, err := newClient(ctx, flags, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
		_ = logger.Sync()
	}()

	record, err := client.Result(ctx, api.ResultRequest{RunID: *runID, Latest: *latest})
	if err != nil {
		return err
	}
	payload, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(payload))
	return nil
}

func runDelete(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("delete", flag.ContinueOnError)
	flags := addCommonFlags(fs)
	runID := fs.String("id", "", "run id")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *runID == "" {
		return usageError("delete requires -id")
	}

	client, logger, err := newClient(ctx, flags, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
		_ = logger.Sync()
	}()

	if err := client.DeleteRun(ctx, *runID); err != nil {
		return err
	}
	fmt.Printf("deleted run=%s\n", *runID)
	return nil
}

func usageError(msg string) error {
	return fmt.Errorf("%s\nusage: eigenphasectl <init|run|runs|result|delete> [flags]", msg)
}
