package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zero-day-ai/socialgraph/cmd/socialgraph/internal"
	"github.com/zero-day-ai/socialgraph/internal/graph"
	"github.com/zero-day-ai/socialgraph/internal/types"
)

const testConfig = `
graph:
  uri: bolt://localhost:7687
  username: neo4j
  password: ${SOCIALGRAPH_TEST_PASSWORD}
logging:
  level: info
  format: json
`

type cliResult struct {
	stdout string
	stderr string
	err    error
	code   int
}

// runCLI executes the root command against mock with a temporary config file.
func runCLI(t *testing.T, mock *graph.MockGraphClient, args ...string) cliResult {
	t.Helper()
	return runCLIWithFactory(t, func(graph.GraphClientConfig) (graph.GraphClient, error) {
		return mock, nil
	}, args...)
}

func runCLIWithFactory(t *testing.T, factory func(graph.GraphClientConfig) (graph.GraphClient, error), args ...string) cliResult {
	t.Helper()
	setCLIEnv(t, "test-password")
	return executeCLI(t, factory, args...)
}

// setCLIEnv clears connection overrides and sets the password the test
// config references.
func setCLIEnv(t *testing.T, password string) {
	t.Helper()
	for _, name := range []string{
		"NEO4J_URI", "NEO4J_USERNAME", "NEO4J_PASSWORD", "NEO4J_DATABASE",
		"SOCIALGRAPH_GRAPH_URI", "SOCIALGRAPH_GRAPH_USERNAME", "SOCIALGRAPH_GRAPH_PASSWORD",
	} {
		t.Setenv(name, "")
	}
	t.Setenv("SOCIALGRAPH_TEST_PASSWORD", password)
}

func executeCLI(t *testing.T, factory func(graph.GraphClientConfig) (graph.GraphClient, error), args ...string) cliResult {
	t.Helper()

	configPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte(testConfig), 0o600))

	orig := newGraphClient
	newGraphClient = factory
	t.Cleanup(func() { newGraphClient = orig })

	var stdout, stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs(append([]string{"--config", configPath}, args...))
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)

	err := Execute(context.Background(), cmd)
	code := internal.HandleError(cmd, err)
	return cliResult{stdout: stdout.String(), stderr: stderr.String(), err: err, code: code}
}

func TestUsersCreate(t *testing.T) {
	mock := graph.NewMockGraphClient()
	mock.AddRecords(map[string]any{"username": "Alice"})
	mock.AddRecords(map[string]any{"username": "Bob"})

	res := runCLI(t, mock, "users", "create", "Alice", "Bob")
	require.NoError(t, res.err)
	assert.Equal(t, internal.ExitSuccess, res.code)

	assert.Contains(t, res.stdout, "OPERATION")
	assert.Contains(t, res.stdout, "create_users")
	assert.Contains(t, res.stdout, "Alice")

	writes := mock.GetCallsByMethod("Write")
	require.Len(t, writes, 2)
	assert.Contains(t, writes[0].Cypher, "MERGE (u:User")
	assert.Equal(t, map[string]any{"username": "Alice"}, writes[0].Params)
	assert.Equal(t, map[string]any{"username": "Bob"}, writes[1].Params)

	assert.Equal(t, 1, mock.CloseCount(), "client must be closed exactly once")
	assert.Contains(t, res.stderr, `"msg":"created user"`)
	assert.Contains(t, res.stderr, `"run_id"`)
	assert.NotContains(t, res.stderr, "test-password")
}

func TestUsersCreate_PartialFailure(t *testing.T) {
	mock := graph.NewMockGraphClient()
	mock.AddRecords(map[string]any{"username": "Alice"})
	mock.AddError(types.NewError(graph.ErrCodeGraphQueryFailed, "boom"))
	mock.AddRecords(map[string]any{"username": "Carol"})

	res := runCLI(t, mock, "users", "create", "Alice", "Bob", "Carol")
	require.Error(t, res.err)
	assert.Equal(t, internal.ExitPartialFailure, res.code)
	assert.Contains(t, res.stderr, "1 of 3 items unsuccessful")
	assert.Len(t, mock.GetCallsByMethod("Write"), 3, "a failing item does not stop the batch")
	assert.Equal(t, 1, mock.CloseCount())
}

func TestFriendsAdd_NotFound(t *testing.T) {
	mock := graph.NewMockGraphClient()
	mock.AddRecords(map[string]any{"user1": "Alice", "user2": "Bob"})
	mock.AddRecords()

	res := runCLI(t, mock, "friends", "add", "Alice", "Bob", "Alice", "Ghost")
	assert.Equal(t, internal.ExitPartialFailure, res.code)
	assert.Contains(t, res.stdout, "not_found")
	assert.Contains(t, res.stdout, "Alice->Ghost")

	writes := mock.GetCallsByMethod("Write")
	require.Len(t, writes, 2)
	assert.Equal(t, map[string]any{"user1": "Alice", "user2": "Ghost"}, writes[1].Params)
}

func TestFriendsAdd_OddArgs(t *testing.T) {
	mock := graph.NewMockGraphClient()

	res := runCLI(t, mock, "friends", "add", "Alice", "Bob", "Carol")
	require.Error(t, res.err)
	assert.Equal(t, internal.ExitError, res.code)
	assert.Contains(t, res.stderr, "requires pairs of usernames")
	assert.Empty(t, mock.GetCalls(), "nothing is sent for invalid arguments")
}

func TestFriendsRemove(t *testing.T) {
	mock := graph.NewMockGraphClient()
	mock.AddRecords(map[string]any{"user1": "Alice", "user2": "Charlie"})

	res := runCLI(t, mock, "friends", "remove", "Alice", "Charlie")
	require.NoError(t, res.err)

	writes := mock.GetCallsByMethod("Write")
	require.Len(t, writes, 1)
	assert.Contains(t, writes[0].Cypher, "DELETE r")
	assert.Equal(t, map[string]any{"user1": "Alice", "user2": "Charlie"}, writes[0].Params)
}

func TestFriendsList_JSON(t *testing.T) {
	mock := graph.NewMockGraphClient()
	mock.AddRecords(map[string]any{"friend": "Bob"}, map[string]any{"friend": "Charlie"})
	mock.AddRecords()

	res := runCLI(t, mock, "-o", "json", "friends", "list", "Alice", "Bob")
	require.NoError(t, res.err)

	var reports []struct {
		Operation string `json:"operation"`
		Items     []struct {
			Input   string   `json:"input"`
			Outcome string   `json:"outcome"`
			Values  []string `json:"values"`
		} `json:"items"`
	}
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &reports))
	require.Len(t, reports, 1)
	assert.Equal(t, "list_friends", reports[0].Operation)
	require.Len(t, reports[0].Items, 2)
	assert.Equal(t, []string{"Bob", "Charlie"}, reports[0].Items[0].Values)
	assert.Equal(t, "ok", reports[0].Items[1].Outcome)
	assert.Empty(t, reports[0].Items[1].Values)

	reads := mock.GetCallsByMethod("Read")
	require.Len(t, reads, 2)
	assert.Contains(t, reads[0].Cypher, "ORDER BY friend.username ASC")
}

func TestConnectFailure(t *testing.T) {
	mock := graph.NewMockGraphClient()
	mock.SetConnectError(types.NewError(graph.ErrCodeGraphConnectionFailed, "connection refused"))

	res := runCLI(t, mock, "users", "create", "Alice")
	require.Error(t, res.err)
	assert.Equal(t, internal.ExitDatabaseError, res.code)
	assert.Contains(t, res.stderr, "failed to connect to bolt://localhost:7687")
	assert.Empty(t, mock.GetCallsByMethod("Write"))
}

func TestMissingPasswordReference(t *testing.T) {
	mock := graph.NewMockGraphClient()
	setCLIEnv(t, "")

	res := executeCLI(t, func(graph.GraphClientConfig) (graph.GraphClient, error) {
		return mock, nil
	}, "users", "create", "Alice")
	require.Error(t, res.err)
	assert.Equal(t, internal.ExitConfigError, res.code)
	assert.Contains(t, res.stderr, "SOCIALGRAPH_TEST_PASSWORD")
	assert.Empty(t, mock.GetCalls())
}

func TestCloseFailure(t *testing.T) {
	mock := graph.NewMockGraphClient()
	mock.AddRecords(map[string]any{"username": "Alice"})
	mock.SetCloseError(errors.New("socket already closed"))

	res := runCLI(t, mock, "users", "create", "Alice")
	require.Error(t, res.err)
	assert.Equal(t, internal.ExitDatabaseError, res.code)
	assert.Contains(t, res.stderr, "failed to close graph client")
	assert.Equal(t, 1, mock.CloseCount())
}

func TestHealth(t *testing.T) {
	t.Run("healthy", func(t *testing.T) {
		mock := graph.NewMockGraphClient()
		mock.SetHealthStatus(types.Healthy("connected to bolt://localhost:7687", 0))

		res := runCLI(t, mock, "health")
		require.NoError(t, res.err)
		assert.Contains(t, res.stdout, "✓ connected to bolt://localhost:7687")
		assert.Equal(t, 1, mock.CloseCount())
	})

	t.Run("unhealthy", func(t *testing.T) {
		mock := graph.NewMockGraphClient()
		mock.SetHealthStatus(types.Unhealthy("connectivity check failed"))

		res := runCLI(t, mock, "-o", "json", "health")
		assert.Equal(t, internal.ExitDatabaseError, res.code)

		var status types.HealthStatus
		require.NoError(t, json.Unmarshal([]byte(res.stdout), &status))
		assert.Equal(t, types.HealthStateUnhealthy, status.State)
	})
}

func TestDemo_ScenarioFile(t *testing.T) {
	scenarioPath := filepath.Join(t.TempDir(), "scenario.yaml")
	require.NoError(t, os.WriteFile(scenarioPath, []byte(`
name: two users
steps:
  - create_users: [Alice, Bob]
  - create_friendships: [[Alice, Bob]]
  - list_friends: [Alice]
`), 0o600))

	mock := graph.NewMockGraphClient()
	mock.AddRecords(map[string]any{"username": "Alice"})
	mock.AddRecords(map[string]any{"username": "Bob"})
	mock.AddRecords(map[string]any{"user1": "Alice", "user2": "Bob"})
	mock.AddRecords(map[string]any{"friend": "Bob"})

	res := runCLI(t, mock, "demo", "--scenario", scenarioPath)
	require.NoError(t, res.err)
	assert.Equal(t, 3, strings.Count(res.stderr, `"msg":"batch complete"`))
	assert.Contains(t, res.stdout, "list_friends")
	assert.Equal(t, 1, mock.CloseCount())
}

func TestDemo_InvalidScenario(t *testing.T) {
	scenarioPath := filepath.Join(t.TempDir(), "scenario.yaml")
	require.NoError(t, os.WriteFile(scenarioPath, []byte("steps:\n  - create_friendships: [[Alice]]\n"), 0o600))

	mock := graph.NewMockGraphClient()
	res := runCLI(t, mock, "demo", "--scenario", scenarioPath)
	assert.Equal(t, internal.ExitConfigError, res.code)
	assert.Empty(t, mock.GetCalls(), "invalid scenarios never connect")
}

func TestDemo_Default(t *testing.T) {
	mock := graph.NewMockGraphClient()
	for _, u := range []string{"Alice", "Bob", "Charlie", "David", "Eve"} {
		mock.AddRecords(map[string]any{"username": u})
	}
	for _, p := range [][2]string{{"Alice", "Bob"}, {"Alice", "Charlie"}, {"Bob", "David"}, {"Charlie", "Eve"}} {
		mock.AddRecords(map[string]any{"user1": p[0], "user2": p[1]})
	}
	mock.AddRecords(map[string]any{"friend": "Bob"}, map[string]any{"friend": "Charlie"})
	mock.AddRecords(map[string]any{"friend": "David"})
	mock.AddRecords(map[string]any{"friend": "Eve"})
	mock.AddRecords(map[string]any{"user1": "Alice", "user2": "Charlie"})
	mock.AddRecords(map[string]any{"user1": "Bob", "user2": "David"})
	mock.AddRecords(map[string]any{"friend": "Bob"})
	mock.AddRecords()
	mock.AddRecords(map[string]any{"friend": "Eve"})

	res := runCLI(t, mock, "-o", "json", "demo")
	require.NoError(t, res.err)

	var reports []map[string]any
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &reports))
	assert.Len(t, reports, 5)
	assert.Len(t, mock.GetCallsByMethod("Write"), 11)
	assert.Len(t, mock.GetCallsByMethod("Read"), 6)
}

func TestVersion(t *testing.T) {
	res := runCLI(t, graph.NewMockGraphClient(), "version")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "socialgraph")
}

func TestGlobalFlagErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		code int
		want string
	}{
		{"verbose and quiet", []string{"-v", "-q", "users", "create", "Alice"}, internal.ExitError, "--verbose and --quiet"},
		{"bad output", []string{"-o", "yaml", "users", "create", "Alice"}, internal.ExitError, "invalid --output"},
		{"bad log format", []string{"--log-format", "xml", "users", "create", "Alice"}, internal.ExitError, "invalid --log-format"},
		{"bad uri override", []string{"--uri", "http://localhost:7474", "users", "create", "Alice"}, internal.ExitConfigError, "invalid graph configuration"},
		{"missing config file", []string{"--config", "/nonexistent/socialgraph.yaml", "users", "create", "Alice"}, internal.ExitConfigError, "CONFIG_NOT_FOUND"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := graph.NewMockGraphClient()
			res := runCLI(t, mock, tt.args...)
			assert.Equal(t, tt.code, res.code)
			assert.Contains(t, res.stderr, tt.want)
			assert.Empty(t, mock.GetCalls())
		})
	}
}

func TestFlagOverrides(t *testing.T) {
	var captured graph.GraphClientConfig
	mock := graph.NewMockGraphClient()
	mock.AddRecords(map[string]any{"username": "Alice"})

	res := runCLIWithFactory(t, func(cfg graph.GraphClientConfig) (graph.GraphClient, error) {
		captured = cfg
		return mock, nil
	}, "--uri", "neo4j://cluster:7687", "--database", "social", "users", "create", "Alice")
	require.NoError(t, res.err)

	assert.Equal(t, "neo4j://cluster:7687", captured.URI)
	assert.Equal(t, "social", captured.Database)
	assert.Equal(t, "test-password", captured.Password)
}
