package graph

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/zero-day-ai/socialgraph/internal/types"
)

// Neo4jClient implements GraphClient for Neo4j graph databases.
// Pooling, routing and transaction retries are left to the driver.
type Neo4jClient struct {
	config GraphClientConfig
	driver neo4j.DriverWithContext
}

// NewNeo4jClient creates a new Neo4j client with the given configuration.
// The client must be connected via Connect() before use.
func NewNeo4jClient(config GraphClientConfig) (*Neo4jClient, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &Neo4jClient{
		config: config,
	}, nil
}

// authToken picks basic auth when credentials are configured and no auth otherwise.
func (c *Neo4jClient) authToken() neo4j.AuthToken {
	if c.config.Username == "" && c.config.Password == "" {
		return neo4j.NoAuth()
	}
	return neo4j.BasicAuth(c.config.Username, c.config.Password, "")
}

// Connect creates the driver and verifies connectivity, backing off
// exponentially between attempts.
func (c *Neo4jClient) Connect(ctx context.Context) error {
	if c.driver != nil {
		return nil
	}

	driverConfig := func(config *neo4j.Config) {
		if c.config.MaxConnectionPoolSize > 0 {
			config.MaxConnectionPoolSize = c.config.MaxConnectionPoolSize
		}
		config.ConnectionAcquisitionTimeout = c.config.ConnectionTimeout
		config.MaxTransactionRetryTime = c.config.MaxTransactionRetryTime
	}

	attempts := c.config.ConnectAttempts
	if attempts <= 0 {
		attempts = 1
	}
	baseDelay := 100 * time.Millisecond

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		driver, err := neo4j.NewDriverWithContext(c.config.URI, c.authToken(), driverConfig)
		if err != nil {
			// A malformed URI or option will not get better on retry.
			return types.WrapError(ErrCodeGraphConnectionFailed, "failed to create driver", err)
		}

		err = driver.VerifyConnectivity(ctx)
		if err == nil {
			c.driver = driver
			return nil
		}
		_ = driver.Close(ctx)
		lastErr = err

		if attempt == attempts-1 {
			break
		}

		// baseDelay * 2^attempt, capped at the connection timeout
		delay := baseDelay * time.Duration(math.Pow(2, float64(attempt)))
		if delay > c.config.ConnectionTimeout {
			delay = c.config.ConnectionTimeout
		}

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return types.WrapError(ErrCodeGraphConnectionFailed,
				"connection attempt cancelled", ctx.Err())
		}
	}

	return types.WrapError(ErrCodeGraphConnectionFailed,
		fmt.Sprintf("failed to connect to %s after %d attempts", c.config.Endpoint(), attempts), lastErr)
}

// Close releases the driver and all pooled connections.
func (c *Neo4jClient) Close(ctx context.Context) error {
	if c.driver == nil {
		return nil
	}

	driver := c.driver
	c.driver = nil
	if err := driver.Close(ctx); err != nil {
		return types.WrapError(ErrCodeGraphConnectionClosed,
			"failed to close driver", err)
	}
	return nil
}

// Health returns the current health status of the Neo4j connection.
func (c *Neo4jClient) Health(ctx context.Context) types.HealthStatus {
	if c.driver == nil {
		return types.Unhealthy("driver not initialized")
	}

	healthCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	start := time.Now()
	if err := c.driver.VerifyConnectivity(healthCtx); err != nil {
		return types.Unhealthy(fmt.Sprintf("connectivity check failed: %v", err))
	}
	return types.Healthy(fmt.Sprintf("connected to %s", c.config.Endpoint()), time.Since(start))
}

// Read executes cypher in a managed read transaction.
func (c *Neo4jClient) Read(ctx context.Context, cypher string, params map[string]any) (QueryResult, error) {
	return c.execute(ctx, neo4j.AccessModeRead, cypher, params)
}

// Write executes cypher in a managed write transaction.
func (c *Neo4jClient) Write(ctx context.Context, cypher string, params map[string]any) (QueryResult, error) {
	return c.execute(ctx, neo4j.AccessModeWrite, cypher, params)
}

func (c *Neo4jClient) execute(ctx context.Context, mode neo4j.AccessMode, cypher string, params map[string]any) (QueryResult, error) {
	if c.driver == nil {
		return QueryResult{}, types.NewError(ErrCodeGraphConnectionClosed,
			"driver not connected")
	}

	startTime := time.Now()

	session := c.driver.NewSession(ctx, neo4j.SessionConfig{
		DatabaseName: c.config.Database,
		AccessMode:   mode,
	})
	defer session.Close(ctx)

	work := func(tx neo4j.ManagedTransaction) (any, error) {
		neoResult, err := tx.Run(ctx, cypher, params)
		if err != nil {
			return nil, err
		}

		records, err := neoResult.Collect(ctx)
		if err != nil {
			return nil, err
		}

		summary, err := neoResult.Consume(ctx)
		if err != nil {
			return nil, err
		}

		return convertNeo4jResult(records, summary), nil
	}

	var (
		result any
		err    error
	)
	if mode == neo4j.AccessModeRead {
		result, err = session.ExecuteRead(ctx, work)
	} else {
		result, err = session.ExecuteWrite(ctx, work)
	}
	if err != nil {
		return QueryResult{}, wrapDriverError(err)
	}

	queryResult := result.(QueryResult)
	queryResult.Summary.ExecutionTime = time.Since(startTime)
	return queryResult, nil
}

// wrapDriverError classifies a driver error, keeping the driver's own
// retryability verdict on the wrapped error.
func wrapDriverError(err error) error {
	code := ErrCodeGraphQueryFailed
	msg := "query execution failed"
	if neo4j.IsConnectivityError(err) {
		code = ErrCodeGraphConnectionLost
		msg = "connection lost during query"
	}

	wrapped := types.WrapError(code, msg, err)
	wrapped.Retryable = neo4j.IsRetryable(err)
	return wrapped
}

// convertNeo4jResult converts Neo4j records and summary to our QueryResult format.
func convertNeo4jResult(records []*neo4j.Record, summary neo4j.ResultSummary) QueryResult {
	result := QueryResult{
		Records: make([]map[string]any, 0, len(records)),
		Columns: []string{},
	}

	if len(records) > 0 {
		result.Columns = records[0].Keys
	}

	for _, record := range records {
		recordMap := make(map[string]any, len(record.Keys))
		for i, key := range record.Keys {
			recordMap[key] = record.Values[i]
		}
		result.Records = append(result.Records, recordMap)
	}

	if summary != nil && summary.Counters() != nil {
		counters := summary.Counters()
		result.Summary = QuerySummary{
			NodesCreated:         counters.NodesCreated(),
			RelationshipsCreated: counters.RelationshipsCreated(),
			RelationshipsDeleted: counters.RelationshipsDeleted(),
			PropertiesSet:        counters.PropertiesSet(),
		}
	}

	return result
}
