// Package graph is the thin layer between socialgraph and a Neo4j server.
//
// GraphClient exposes exactly what the social client needs: connect, close,
// a health probe, and parameterized Read/Write calls that each run in their
// own managed transaction. Pooling, routing and transaction retries are the
// driver's business; this package only forwards the driver's knobs from
// GraphClientConfig.
//
// # Usage
//
//	cfg := graph.DefaultConfig()
//	cfg.URI = "neo4j+s://example.databases.neo4j.io"
//	cfg.Password = os.Getenv("NEO4J_PASSWORD")
//
//	client, err := graph.NewNeo4jClient(cfg)
//	if err != nil {
//	    return err
//	}
//	if err := client.Connect(ctx); err != nil {
//	    return err
//	}
//	defer client.Close(ctx)
//
//	res, err := client.Read(ctx,
//	    "MATCH (u:User {username: $username}) RETURN u.username AS username",
//	    map[string]any{"username": "Alice"},
//	)
//
// # TLS/Encryption
//
// Encryption is controlled via the URI scheme:
//
//   - bolt://     - Unencrypted connection
//   - bolt+s://   - TLS encrypted with system CA verification
//   - bolt+ssc:// - TLS encrypted, self-signed certificates accepted
//   - neo4j://    - Routing with unencrypted connections
//   - neo4j+s://  - Routing with TLS encryption
//
// # Error Handling
//
// Errors are *types.Error values:
//
//   - ErrCodeGraphConnectionFailed: Connect gave up
//   - ErrCodeGraphConnectionClosed: operation on a client that is not connected
//   - ErrCodeGraphConnectionLost: connectivity failure while a query ran
//   - ErrCodeGraphQueryFailed: the server rejected or failed the query
//   - ErrCodeGraphResultParsing: a record did not have the expected shape
//
// Retryable is copied from the driver's own classification.
//
// # Testing
//
// MockGraphClient replays queued results in FIFO order and records every call:
//
//	mock := graph.NewMockGraphClient()
//	_ = mock.Connect(ctx)
//	mock.AddRecords(map[string]any{"username": "Alice"})
//
//	calls := mock.GetCallsByMethod("Write")
package graph
