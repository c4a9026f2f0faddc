package motion

import "motiongen/internal/statistics"

// MotionRequest is the inbound request as decoded at the boundary.
// Statistics identifiers are validated against the catalog during the
// Validating step. Year 0 means "latest available"; Municipality ""
// means the configured default.
type MotionRequest struct {
	Topic        string   `json:"topic"`
	Statistics   []string `json:"statistics,omitempty"`
	Year         int      `json:"year,omitempty"`
	Municipality string   `json:"municipality,omitempty"`
}

// MotionResult is the successful outcome of one pipeline run.
// FormattedText is derived deterministically from RawText.
type MotionResult struct {
	RawText       string
	FormattedText string
	Model         string
	Municipality  string
	Statistics    map[statistics.Key]statistics.Series
}
