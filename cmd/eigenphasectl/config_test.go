package main

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadRunRequestJSON(t *testing.T) {
	path := writeConfig(t, "run.json", `{
		"hamiltonian": [
			{"coefficient": 1, "label": "I"},
			{"coefficient": 1, "label": "Z"}
		],
		"num_time_slices": 0,
		"expansion_mode": "trotter",
		"expansion_order": 1,
		"num_ancillae": 2,
		"shots": 64,
		"data_state": 1
	}`)

	req, err := loadRunRequest(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(req.Hamiltonian) != 2 || req.Hamiltonian[1].Label != "Z" {
		t.Fatalf("unexpected hamiltonian: %+v", req.Hamiltonian)
	}
	if req.NumTimeSlices == nil || *req.NumTimeSlices != 0 {
		t.Fatalf("expected explicit zero time slices, got %v", req.NumTimeSlices)
	}
	if req.ExpansionMode != "trotter" || req.NumAncillae != 2 || req.Shots != 64 {
		t.Fatalf("unexpected request: %+v", req)
	}
	if req.DataState != 1 {
		t.Fatalf("data state = %d, want 1", req.DataState)
	}
}

func TestLoadRunRequestYAML(t *testing.T) {
	path := writeConfig(t, "run.yaml", `
hamiltonian:
  - coefficient: 1
    label: I
  - coefficient: 3
    label: Z
num_ancillae: 2
shots: 64
seed: 7
`)

	req, err := loadRunRequest(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(req.Hamiltonian) != 2 || req.Hamiltonian[1].Coefficient != 3 {
		t.Fatalf("unexpected hamiltonian: %+v", req.Hamiltonian)
	}
	if req.NumTimeSlices != nil {
		t.Fatalf("expected omitted time slices, got %v", *req.NumTimeSlices)
	}
	if req.Seed != 7 {
		t.Fatalf("seed = %d, want 7", req.Seed)
	}
}

func TestLoadRunRequestRejectsUnknownFields(t *testing.T) {
	jsonPath := writeConfig(t, "run.json", `{"shotz": 64}`)
	if _, err := loadRunRequest(jsonPath); err == nil {
		t.Fatal("expected error for unknown json field")
	}

	yamlPath := writeConfig(t, "run.yaml", "shotz: 64\n")
	if _, err := loadRunRequest(yamlPath); err == nil {
		t.Fatal("expected error for unknown yaml field")
	}
}

func TestLoadRunRequestMissingFile(t *testing.T) {
	if _, err := loadRunRequest(filepath.Join(t.TempDir(), "absent.json")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
