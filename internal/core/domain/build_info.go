package domain

import "time"

// StepResult records the fingerprint of a completed step for one profile.
// A matching fingerprint on a later run means the step can be skipped
// without re-invoking the toolchain.
type StepResult struct {
	StepID      string    `json:"step_id"`
	Profile     Profile   `json:"profile"`
	Fingerprint string    `json:"fingerprint"`
	Timestamp   time.Time `json:"timestamp"`
}

// Key returns the store key for this result.
func (r StepResult) Key() string {
	return r.StepID + "@" + string(r.Profile)
}
