package models

import "time"

// ActuatorCommand is the angle issued to the servo and the duty it produced.
type ActuatorCommand struct {
	Angle float64 `json:"angle"`
	Duty  uint16  `json:"duty"`
}

// CycleResult is the outcome of one fetch-and-actuate cycle.
type CycleResult struct {
	Reading *Reading
	// Value is the resolved percentage fed to the mapper.
	Value         float64
	Probabilities map[string]float64
	Command       *ActuatorCommand
	Kind          ErrorKind
	Err           error
	StartedAt     time.Time
	Duration      time.Duration
}

// OK reports whether the cycle moved the dial.
func (r CycleResult) OK() bool { return r.Err == nil && r.Command != nil }

// DialState is the latest known dial position, served by the status API.
type DialState struct {
	Source        string             `json:"source"`
	Value         float64            `json:"value"`
	Angle         float64            `json:"angle"`
	Duty          uint16             `json:"duty"`
	Probabilities map[string]float64 `json:"probabilities,omitempty"`
	Cached        bool               `json:"cached"`
	UpdatedAt     time.Time          `json:"updated_at"`
	LastError     string             `json:"last_error,omitempty"`
	LastErrorKind ErrorKind          `json:"last_error_kind,omitempty"`
	LastErrorAt   *time.Time         `json:"last_error_at,omitempty"`
	Cycles        int64              `json:"cycles"`
	Failures      int64              `json:"failures"`
}

// DialEvent is published once per completed cycle.
type DialEvent struct {
	Source    string    `json:"source"`
	Outcome   ErrorKind `json:"outcome"`
	Value     float64   `json:"value,omitempty"`
	Angle     float64   `json:"angle,omitempty"`
	Duty      uint16    `json:"duty,omitempty"`
	Error     string    `json:"error,omitempty"`
	Timestamp int64     `json:"t"`
}
