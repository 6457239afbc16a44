//go:build integration
// +build integration

package social

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/zero-day-ai/socialgraph/internal/graph"
)

// setupNeo4j starts a neo4j:5 container with auth disabled and returns a
// connected client plus a cleanup function.
func setupNeo4j(t *testing.T, ctx context.Context) (*Client, graph.GraphClient, func()) {
	t.Helper()

	provider, err := testcontainers.ProviderDocker.GetProvider()
	if err != nil {
		t.Skip("Docker not available, skipping integration test")
	}
	if err := provider.Health(ctx); err != nil {
		t.Skip("Docker not running, skipping integration test")
	}

	req := testcontainers.ContainerRequest{
		Image:        "neo4j:5",
		ExposedPorts: []string{"7687/tcp"},
		Env: map[string]string{
			"NEO4J_AUTH": "none",
		},
		WaitingFor: wait.ForAll(
			wait.ForListeningPort("7687/tcp"),
			wait.ForLog("Started."),
		).WithDeadline(120 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err, "failed to start Neo4j container")

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "7687")
	require.NoError(t, err)

	cfg := graph.DefaultConfig()
	cfg.URI = fmt.Sprintf("bolt://%s:%s", host, port.Port())
	cfg.Username, cfg.Password = "", ""
	cfg.ConnectAttempts = 5

	gc, err := graph.NewNeo4jClient(cfg)
	require.NoError(t, err)
	require.NoError(t, gc.Connect(ctx))

	client := NewClient(gc)
	cleanup := func() {
		_ = client.Close(ctx)
		_ = container.Terminate(ctx)
	}
	return client, gc, cleanup
}

func resetGraph(t *testing.T, ctx context.Context, gc graph.GraphClient) {
	t.Helper()
	_, err := gc.Write(ctx, "MATCH (n) DETACH DELETE n", nil)
	require.NoError(t, err)
}

func count(t *testing.T, ctx context.Context, gc graph.GraphClient, cypher string) int64 {
	t.Helper()
	res, err := gc.Read(ctx, cypher, nil)
	require.NoError(t, err)
	require.Len(t, res.Records, 1)
	return res.Records[0]["n"].(int64)
}

func TestIntegration_SocialGraph(t *testing.T) {
	ctx := context.Background()
	client, gc, cleanup := setupNeo4j(t, ctx)
	defer cleanup()

	t.Run("user creation is idempotent", func(t *testing.T) {
		resetGraph(t, ctx, gc)
		require.True(t, client.CreateUsers(ctx, []string{"Alice", "Alice"}).OK())
		assert.Equal(t, int64(1), count(t, ctx, gc, "MATCH (u:User {username: 'Alice'}) RETURN count(u) AS n"))
	})

	t.Run("friendship creation is idempotent", func(t *testing.T) {
		resetGraph(t, ctx, gc)
		client.CreateUsers(ctx, []string{"Alice", "Bob"})
		require.True(t, client.CreateFriendships(ctx, []Friendship{{"Alice", "Bob"}, {"Alice", "Bob"}}).OK())
		assert.Equal(t, int64(1), count(t, ctx, gc, "MATCH ()-[r:FRIENDS_WITH]->() RETURN count(r) AS n"))
	})

	t.Run("missing user is not found", func(t *testing.T) {
		resetGraph(t, ctx, gc)
		client.CreateUsers(ctx, []string{"Alice"})
		report := client.CreateFriendships(ctx, []Friendship{{"Alice", "Ghost"}})
		assert.Equal(t, OutcomeNotFound, report.Items[0].Outcome)
		assert.Equal(t, int64(0), count(t, ctx, gc, "MATCH ()-[r:FRIENDS_WITH]->() RETURN count(r) AS n"))
	})

	t.Run("direction and ordering", func(t *testing.T) {
		resetGraph(t, ctx, gc)
		client.CreateUsers(ctx, []string{"Sam", "Zoe", "Amy", "Mia"})
		client.CreateFriendships(ctx, []Friendship{{"Sam", "Zoe"}, {"Sam", "Amy"}, {"Sam", "Mia"}})

		friends, err := client.Friends(ctx, "Sam")
		require.NoError(t, err)
		assert.Equal(t, []string{"Amy", "Mia", "Zoe"}, friends)

		friends, err = client.Friends(ctx, "Zoe")
		require.NoError(t, err)
		assert.Empty(t, friends)

		reverse := client.RemoveFriendships(ctx, []Friendship{{"Zoe", "Sam"}})
		assert.Equal(t, OutcomeNotFound, reverse.Items[0].Outcome)
		assert.Equal(t, int64(3), count(t, ctx, gc, "MATCH ()-[r:FRIENDS_WITH]->() RETURN count(r) AS n"))
	})

	t.Run("end to end", func(t *testing.T) {
		resetGraph(t, ctx, gc)
		client.CreateUsers(ctx, []string{"Alice", "Bob", "Charlie", "David", "Eve"})
		client.CreateFriendships(ctx, []Friendship{
			{"Alice", "Bob"}, {"Alice", "Charlie"}, {"Bob", "David"}, {"Charlie", "Eve"},
		})

		before := client.ListFriends(ctx, []string{"Alice"})
		assert.Equal(t, []string{"Bob", "Charlie"}, before.Items[0].Values)

		require.True(t, client.RemoveFriendships(ctx, []Friendship{{"Alice", "Charlie"}, {"Bob", "David"}}).OK())

		after := client.ListFriends(ctx, []string{"Alice", "Bob"})
		assert.Equal(t, []string{"Bob"}, after.Items[0].Values)
		assert.Equal(t, []string{}, after.Items[1].Values)
	})
}
