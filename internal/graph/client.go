package graph

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/zero-day-ai/socialgraph/internal/types"
)

// GraphClient runs parameterized Cypher against a graph database.
// Each Read or Write call is executed in its own managed transaction.
type GraphClient interface {
	// Connect establishes the driver and verifies connectivity.
	Connect(ctx context.Context) error

	// Close releases the driver. Calling Close more than once is a no-op.
	Close(ctx context.Context) error

	// Health probes connectivity to the database.
	Health(ctx context.Context) types.HealthStatus

	// Read executes cypher in a read transaction.
	Read(ctx context.Context, cypher string, params map[string]any) (QueryResult, error)

	// Write executes cypher in a write transaction.
	Write(ctx context.Context, cypher string, params map[string]any) (QueryResult, error)
}

// QueryResult is the fully collected result of a Cypher query.
type QueryResult struct {
	// Records contains the result rows as maps of column name to value.
	Records []map[string]any

	// Columns contains the names of the columns in the result set.
	Columns []string

	Summary QuerySummary
}

// QuerySummary carries the update counters reported by the server.
type QuerySummary struct {
	ExecutionTime        time.Duration
	NodesCreated         int
	RelationshipsCreated int
	RelationshipsDeleted int
	PropertiesSet        int
}

// Strings returns the string values of column across all records.
// Records where the column is missing or not a string yield an error.
func (r QueryResult) Strings(column string) ([]string, error) {
	out := make([]string, 0, len(r.Records))
	for i, rec := range r.Records {
		s, err := stringValue(rec, column)
		if err != nil {
			return nil, types.WrapError(ErrCodeGraphResultParsing,
				fmt.Sprintf("record %d", i), err)
		}
		out = append(out, s)
	}
	return out, nil
}

// First returns the first record of the result. ok is false when the
// result is empty.
func (r QueryResult) First() (record map[string]any, ok bool) {
	if len(r.Records) == 0 {
		return nil, false
	}
	return r.Records[0], true
}

// StringField reads a string column from a single record.
func StringField(record map[string]any, column string) (string, error) {
	s, err := stringValue(record, column)
	if err != nil {
		return "", types.WrapError(ErrCodeGraphResultParsing, "invalid record", err)
	}
	return s, nil
}

func stringValue(record map[string]any, column string) (string, error) {
	v, ok := record[column]
	if !ok {
		return "", fmt.Errorf("column %q not found", column)
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("column %q is %T, not string", column, v)
	}
	return s, nil
}

// GraphClientConfig contains configuration options for graph database clients.
type GraphClientConfig struct {
	// URI is the connection URI for the graph database.
	//   - "bolt://host:port" for unencrypted direct connections
	//   - "bolt+s://" / "bolt+ssc://" for TLS (verified / self-signed)
	//   - "neo4j://", "neo4j+s://", "neo4j+ssc://" for routing (Aura uses neo4j+s)
	URI string `mapstructure:"uri" yaml:"uri" validate:"required"`

	// Username and Password are both empty for unauthenticated servers.
	Username string `mapstructure:"username" yaml:"username"`
	Password string `mapstructure:"password" yaml:"password"`

	// Database is the target database. Empty uses the server default.
	Database string `mapstructure:"database" yaml:"database"`

	// MaxConnectionPoolSize limits the driver pool. Zero uses the driver default.
	MaxConnectionPoolSize int `mapstructure:"max_connection_pool_size" yaml:"max_connection_pool_size" validate:"min=0"`

	// ConnectionTimeout bounds connection acquisition and the connect backoff.
	ConnectionTimeout time.Duration `mapstructure:"connection_timeout" yaml:"connection_timeout"`

	// MaxTransactionRetryTime is handed to the driver's managed transactions.
	MaxTransactionRetryTime time.Duration `mapstructure:"max_transaction_retry_time" yaml:"max_transaction_retry_time"`

	// ConnectAttempts is how many times Connect tries before giving up.
	ConnectAttempts int `mapstructure:"connect_attempts" yaml:"connect_attempts" validate:"min=0"`
}

// DefaultConfig returns a GraphClientConfig pointing at a local server.
func DefaultConfig() GraphClientConfig {
	return GraphClientConfig{
		URI:                     "bolt://localhost:7687",
		Username:                "neo4j",
		MaxConnectionPoolSize:   50,
		ConnectionTimeout:       30 * time.Second,
		MaxTransactionRetryTime: 30 * time.Second,
		ConnectAttempts:         3,
	}
}

var validSchemes = map[string]bool{
	"bolt":      true,
	"bolt+s":    true,
	"bolt+ssc":  true,
	"neo4j":     true,
	"neo4j+s":   true,
	"neo4j+ssc": true,
}

// Validate checks if the configuration is valid.
func (c GraphClientConfig) Validate() error {
	if c.URI == "" {
		return types.NewError(ErrCodeGraphInvalidConfig, "URI cannot be empty")
	}
	u, err := url.Parse(c.URI)
	if err != nil {
		return types.WrapError(ErrCodeGraphInvalidConfig, "URI is malformed", err)
	}
	if !validSchemes[strings.ToLower(u.Scheme)] {
		return types.NewError(ErrCodeGraphInvalidConfig,
			fmt.Sprintf("unsupported URI scheme %q", u.Scheme))
	}
	if u.Host == "" {
		return types.NewError(ErrCodeGraphInvalidConfig, "URI must include a host")
	}
	if (c.Username == "") != (c.Password == "") {
		return types.NewError(ErrCodeGraphInvalidConfig,
			"username and password must be set together")
	}
	if c.ConnectionTimeout <= 0 {
		return types.NewError(ErrCodeGraphInvalidConfig, "ConnectionTimeout must be positive")
	}
	if c.MaxTransactionRetryTime <= 0 {
		return types.NewError(ErrCodeGraphInvalidConfig, "MaxTransactionRetryTime must be positive")
	}
	return nil
}

// Endpoint returns the URI without any user info, safe for logging.
func (c GraphClientConfig) Endpoint() string {
	u, err := url.Parse(c.URI)
	if err != nil {
		return ""
	}
	u.User = nil
	return u.String()
}
