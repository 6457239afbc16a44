package social

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Operation names a batch operation.
type Operation string

const (
	OpCreateUsers       Operation = "create_users"
	OpCreateFriendships Operation = "create_friendships"
	OpListFriends       Operation = "list_friends"
	OpRemoveFriendships Operation = "remove_friendships"
)

func (o Operation) String() string {
	return string(o)
}

// Outcome is the result class of a single batch item.
type Outcome string

const (
	// OutcomeOK means the query ran and returned what was asked for.
	OutcomeOK Outcome = "ok"
	// OutcomeNotFound means the query ran but its MATCH found nothing,
	// e.g. linking an unknown user or removing an absent edge.
	OutcomeNotFound Outcome = "not_found"
	// OutcomeFailed means the item never produced a result: invalid input,
	// a driver or server error, or a cancelled context.
	OutcomeFailed Outcome = "failed"
)

func (o Outcome) String() string {
	return string(o)
}

// Friendship is an ordered pair: an edge From -> To.
type Friendship struct {
	From string `yaml:"from" json:"from"`
	To   string `yaml:"to" json:"to"`
}

func (f Friendship) String() string {
	return fmt.Sprintf("%s->%s", f.From, f.To)
}

// ItemResult is the outcome of one batch item.
type ItemResult struct {
	Input    string
	Outcome  Outcome
	Values   []string
	Err      error
	Duration time.Duration
}

// MarshalJSON renders Err as a string.
func (r ItemResult) MarshalJSON() ([]byte, error) {
	out := struct {
		Input      string   `json:"input"`
		Outcome    Outcome  `json:"outcome"`
		Values     []string `json:"values,omitempty"`
		Error      string   `json:"error,omitempty"`
		DurationMs float64  `json:"duration_ms"`
	}{
		Input:      r.Input,
		Outcome:    r.Outcome,
		Values:     r.Values,
		DurationMs: float64(r.Duration.Microseconds()) / 1000,
	}
	if r.Err != nil {
		out.Error = r.Err.Error()
	}
	return json.Marshal(out)
}

// BatchReport collects one ItemResult per input, in input order.
type BatchReport struct {
	Operation Operation    `json:"operation"`
	Items     []ItemResult `json:"items"`
}

func (b BatchReport) count(o Outcome) int {
	n := 0
	for _, it := range b.Items {
		if it.Outcome == o {
			n++
		}
	}
	return n
}

// Succeeded returns the number of items with OutcomeOK.
func (b BatchReport) Succeeded() int { return b.count(OutcomeOK) }

// NotFound returns the number of items with OutcomeNotFound.
func (b BatchReport) NotFound() int { return b.count(OutcomeNotFound) }

// Failed returns the number of items with OutcomeFailed.
func (b BatchReport) Failed() int { return b.count(OutcomeFailed) }

// OK reports whether every item succeeded.
func (b BatchReport) OK() bool {
	return b.Succeeded() == len(b.Items)
}

// Err joins the errors of all unsuccessful items, or returns nil.
func (b BatchReport) Err() error {
	var errs []error
	for _, it := range b.Items {
		if it.Err != nil {
			errs = append(errs, fmt.Errorf("%s %s: %w", b.Operation, it.Input, it.Err))
		}
	}
	return errors.Join(errs...)
}
