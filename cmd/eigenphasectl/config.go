package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	api "eigenphase/pkg/eigenphase"
)

// loadRunRequest reads a run request from a JSON or YAML file; the format is
// chosen by extension. Unknown fields are rejected so typos in option names
// fail loudly instead of silently running with defaults.
func loadRunRequest(path string) (api.RunRequest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return api.RunRequest{}, err
	}

	var req api.RunRequest
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		decoder := yaml.NewDecoder(bytes.NewReader(data))
		decoder.KnownFields(true)
		if err := decoder.Decode(&req); err != nil {
			return api.RunRequest{}, fmt.Errorf("parse %s: %w", path, err)
		}
	default:
		decoder := json.NewDecoder(bytes.NewReader(data))
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&req); err != nil {
			return api.RunRequest{}, fmt.Errorf("parse %s: %w", path, err)
		}
	}
	return req, nil
}
