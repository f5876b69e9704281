package check

import (
	"fmt"
	"time"
)

// Status is the outcome of one check on one device.
type Status string

const (
	StatusUnset   Status = "unset"
	StatusSuccess Status = "success"
	StatusSkipped Status = "skipped"
	StatusFailure Status = "failure"
	StatusError   Status = "error"
)

// AllStatuses lists the terminal statuses in rank order.
var AllStatuses = []Status{StatusSuccess, StatusSkipped, StatusFailure, StatusError}

// Rank orders statuses so that a recorded status is only ever replaced by a
// higher one: unset < success < skipped < failure < error.
func (s Status) Rank() int {
	switch s {
	case StatusSuccess:
		return 1
	case StatusSkipped:
		return 2
	case StatusFailure:
		return 3
	case StatusError:
		return 4
	default:
		return 0
	}
}

// Terminal reports whether s is one of the four final outcomes.
func (s Status) Terminal() bool {
	return s.Rank() > 0
}

// ParseStatus converts a status name.
func ParseStatus(s string) (Status, error) {
	for _, st := range AllStatuses {
		if string(st) == s {
			return st, nil
		}
	}
	return "", fmt.Errorf("unknown status %q", s)
}

// Result is the outcome of one unit. It is created unset when the unit is
// built, written only by that unit's Run, and read-only afterwards.
type Result struct {
	Test        string        `json:"test"`
	Device      string        `json:"device"`
	Description string        `json:"description,omitempty"`
	Categories  []string      `json:"categories,omitempty"`
	Status      Status        `json:"status"`
	Messages    []string      `json:"messages,omitempty"`
	Duration    time.Duration `json:"duration"`
}

// NewResult creates an unset result.
func NewResult(test, device string) *Result {
	return &Result{Test: test, Device: device, Status: StatusUnset}
}

func (r *Result) record(s Status, msgs ...string) {
	if s.Rank() > r.Status.Rank() {
		r.Status = s
	}
	for _, m := range msgs {
		if m != "" {
			r.Messages = append(r.Messages, m)
		}
	}
}

// Success marks the result successful unless something worse was recorded.
func (r *Result) Success() {
	r.record(StatusSuccess)
}

// Skipped records a skip with its reason.
func (r *Result) Skipped(msg string) {
	r.record(StatusSkipped, msg)
}

// Failure records one or more independent failure reasons.
func (r *Result) Failure(msgs ...string) {
	r.record(StatusFailure, msgs...)
}

// Error records an error that prevented the check from evaluating.
func (r *Result) Error(msg string) {
	r.record(StatusError, msg)
}

// Terminal reports whether a final status was recorded.
func (r *Result) Terminal() bool {
	return r.Status.Terminal()
}

// Message joins all messages for one-line display.
func (r *Result) Message() string {
	switch len(r.Messages) {
	case 0:
		return ""
	case 1:
		return r.Messages[0]
	}
	out := r.Messages[0]
	for _, m := range r.Messages[1:] {
		out += "; " + m
	}
	return out
}
