package model

// VersionedRecord captures schema and codec evolution for persistent data.
type VersionedRecord struct {
	SchemaVersion int `json:"schema_version"`
	CodecVersion  int `json:"codec_version"`
}

// Measurement is one histogram entry: how many shots produced a given
// ancilla bitstring (ancilla qubit 0 at string index 0).
type Measurement struct {
	Count     int    `json:"count"`
	Bitstring string `json:"bitstring"`
}

// Result is the decoded outcome of one estimation run. Translation and
// Stretch echo the operator normalization so the energy mapping can be
// audited; TopLabel is the winning bitstring after read-out reversal and
// TopDecimal its binary-fraction value.
type Result struct {
	Translation  float64       `json:"translation"`
	Stretch      float64       `json:"stretch"`
	Measurements []Measurement `json:"measurements"`
	TopLabel     string        `json:"top_measurement_label"`
	TopDecimal   float64       `json:"top_measurement_decimal"`
	Energy       float64       `json:"energy"`
}

// RunConfig is the configuration snapshot stored alongside each run.
type RunConfig struct {
	NumTimeSlices  int    `json:"num_time_slices"`
	PaulisGrouping string `json:"paulis_grouping"`
	ExpansionMode  string `json:"expansion_mode"`
	ExpansionOrder int    `json:"expansion_order"`
	NumAncillae    int    `json:"num_ancillae"`
	Shots          int    `json:"shots"`
	Seed           int64  `json:"seed"`
	Backend        string `json:"backend"`
}

// RunRecord is the persistent form of a completed estimation run.
type RunRecord struct {
	VersionedRecord
	RunID        string    `json:"run_id"`
	CreatedAtUTC string    `json:"created_at_utc"`
	Config       RunConfig `json:"config"`
	Result       Result    `json:"result"`
}
