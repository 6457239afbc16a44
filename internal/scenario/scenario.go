// Package scenario describes a sequence of social graph batches as YAML and
// runs it against a social client.
package scenario

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/zero-day-ai/socialgraph/internal/social"
	"github.com/zero-day-ai/socialgraph/internal/types"
	"gopkg.in/yaml.v3"
)

// Scenario is an ordered list of batch steps.
type Scenario struct {
	Name  string `yaml:"name,omitempty"`
	Steps []Step `yaml:"steps"`
}

// Step holds exactly one batch action. Pairs are written as two-element lists.
type Step struct {
	CreateUsers       []string   `yaml:"create_users,omitempty"`
	CreateFriendships [][]string `yaml:"create_friendships,omitempty"`
	ListFriends       []string   `yaml:"list_friends,omitempty"`
	RemoveFriendships [][]string `yaml:"remove_friendships,omitempty"`
}

// Operation returns the batch operation this step performs.
func (s Step) Operation() (social.Operation, error) {
	var ops []social.Operation
	if s.CreateUsers != nil {
		ops = append(ops, social.OpCreateUsers)
	}
	if s.CreateFriendships != nil {
		ops = append(ops, social.OpCreateFriendships)
	}
	if s.ListFriends != nil {
		ops = append(ops, social.OpListFriends)
	}
	if s.RemoveFriendships != nil {
		ops = append(ops, social.OpRemoveFriendships)
	}
	if len(ops) != 1 {
		return "", fmt.Errorf("step must have exactly one action, got %d", len(ops))
	}
	return ops[0], nil
}

func toFriendships(pairs [][]string) ([]social.Friendship, error) {
	out := make([]social.Friendship, 0, len(pairs))
	for i, p := range pairs {
		if len(p) != 2 {
			return nil, fmt.Errorf("pair %d must name exactly two users, got %d", i, len(p))
		}
		out = append(out, social.Friendship{From: p[0], To: p[1]})
	}
	return out, nil
}

// Validate checks that every step has one action and every pair two names.
func (s Scenario) Validate() error {
	if len(s.Steps) == 0 {
		return types.NewError(types.INVALID_INPUT, "scenario has no steps")
	}

	var errs []error
	for i, step := range s.Steps {
		if _, err := step.Operation(); err != nil {
			errs = append(errs, fmt.Errorf("step %d: %w", i+1, err))
			continue
		}
		if _, err := toFriendships(step.CreateFriendships); err != nil {
			errs = append(errs, fmt.Errorf("step %d: %w", i+1, err))
		}
		if _, err := toFriendships(step.RemoveFriendships); err != nil {
			errs = append(errs, fmt.Errorf("step %d: %w", i+1, err))
		}
	}
	if len(errs) > 0 {
		return types.WrapError(types.INVALID_INPUT, "invalid scenario", errors.Join(errs...))
	}
	return nil
}

// Parse decodes and validates a YAML scenario. Unknown keys are rejected.
func Parse(data []byte) (Scenario, error) {
	var s Scenario
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil && !errors.Is(err, io.EOF) {
		return Scenario{}, types.WrapError(types.CONFIG_PARSE_FAILED, "failed to parse scenario", err)
	}
	if err := s.Validate(); err != nil {
		return Scenario{}, err
	}
	return s, nil
}

// Load reads and parses the scenario file at path.
func Load(path string) (Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Scenario{}, types.WrapError(types.CONFIG_NOT_FOUND, "scenario file not found", err)
		}
		return Scenario{}, types.WrapError(types.CONFIG_LOAD_FAILED, "failed to read scenario", err)
	}
	s, err := Parse(data)
	if err != nil {
		return Scenario{}, err
	}
	if s.Name == "" {
		s.Name = path
	}
	return s, nil
}

// Default is the demonstration sequence: five users, four friendships, a
// listing, two removals and a second listing.
func Default() Scenario {
	listed := []string{"Alice", "Bob", "Charlie"}
	return Scenario{
		Name: "default",
		Steps: []Step{
			{CreateUsers: []string{"Alice", "Bob", "Charlie", "David", "Eve"}},
			{CreateFriendships: [][]string{
				{"Alice", "Bob"},
				{"Alice", "Charlie"},
				{"Bob", "David"},
				{"Charlie", "Eve"},
			}},
			{ListFriends: listed},
			{RemoveFriendships: [][]string{
				{"Alice", "Charlie"},
				{"Bob", "David"},
			}},
			{ListFriends: listed},
		},
	}
}

// Executor is the set of batch operations a scenario drives.
type Executor interface {
	CreateUsers(ctx context.Context, usernames []string) social.BatchReport
	CreateFriendships(ctx context.Context, pairs []social.Friendship) social.BatchReport
	ListFriends(ctx context.Context, usernames []string) social.BatchReport
	RemoveFriendships(ctx context.Context, pairs []social.Friendship) social.BatchReport
}

// Run executes the steps in order and returns one report per step. A step
// with unsuccessful items does not stop later steps. Run stops between steps
// only when ctx is done, returning the reports gathered so far and ctx.Err().
func Run(ctx context.Context, exec Executor, s Scenario) ([]social.BatchReport, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}

	reports := make([]social.BatchReport, 0, len(s.Steps))
	for _, step := range s.Steps {
		if err := ctx.Err(); err != nil {
			return reports, err
		}

		op, _ := step.Operation()
		var report social.BatchReport
		switch op {
		case social.OpCreateUsers:
			report = exec.CreateUsers(ctx, step.CreateUsers)
		case social.OpCreateFriendships:
			pairs, _ := toFriendships(step.CreateFriendships)
			report = exec.CreateFriendships(ctx, pairs)
		case social.OpListFriends:
			report = exec.ListFriends(ctx, step.ListFriends)
		case social.OpRemoveFriendships:
			pairs, _ := toFriendships(step.RemoveFriendships)
			report = exec.RemoveFriendships(ctx, pairs)
		}
		reports = append(reports, report)
	}
	return reports, nil
}
