package model

import "time"

// RunStatus represents the current state of a fill run.
type RunStatus string

const (
	RunStatusRunning  RunStatus = "running"
	RunStatusComplete RunStatus = "complete"
	RunStatusFailed   RunStatus = "failed"
)

// Run records one extraction run for the run history. MapSource and
// OptionsSource name the configuration layer each input came from (an
// explicit path, "user store", or "packaged defaults").
type Run struct {
	ID            string    `json:"id"`
	Source        string    `json:"source"`
	Input         string    `json:"input"`
	MapSource     string    `json:"map_source,omitempty"`
	OptionsSource string    `json:"options_source,omitempty"`
	Status        RunStatus `json:"status"`
	Documents     int       `json:"documents"`
	Prompts       int       `json:"prompts"`
	Misses        int       `json:"misses"`
	OutputPath    string    `json:"output_path,omitempty"`
	Error         string    `json:"error,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Run sources recorded in the history, by entry point.
const (
	RunSourceCLI = "cli"
	RunSourceAPI = "api"
)
