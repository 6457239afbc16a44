package graph

import (
	"context"
	"sync"
	"time"

	"github.com/zero-day-ai/socialgraph/internal/types"
)

// MockCall represents a recorded method call on the mock graph client.
type MockCall struct {
	Method    string
	Cypher    string
	Params    map[string]any
	Timestamp time.Time
}

type mockResponse struct {
	result QueryResult
	err    error
}

// MockGraphClient is a GraphClient for tests. Read and Write pop responses
// from a shared FIFO queue; an empty queue yields an empty result.
type MockGraphClient struct {
	mu sync.RWMutex

	connected    bool
	closeCount   int
	healthStatus types.HealthStatus
	calls        []MockCall
	responses    []mockResponse

	connectError error
	closeError   error
}

// NewMockGraphClient creates a new mock graph client for testing.
func NewMockGraphClient() *MockGraphClient {
	return &MockGraphClient{
		healthStatus: types.Healthy("mock graph client", 0),
	}
}

func (m *MockGraphClient) record(method, cypher string, params map[string]any) {
	m.calls = append(m.calls, MockCall{
		Method:    method,
		Cypher:    cypher,
		Params:    params,
		Timestamp: time.Now(),
	})
}

// Connect records the call and simulates connection.
func (m *MockGraphClient) Connect(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.record("Connect", "", nil)
	if m.connectError != nil {
		return m.connectError
	}
	m.connected = true
	return nil
}

// Close records the call and simulates disconnection.
func (m *MockGraphClient) Close(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.record("Close", "", nil)
	m.closeCount++
	if m.closeError != nil {
		return m.closeError
	}
	m.connected = false
	return nil
}

// Health records the call and returns the configured health status.
func (m *MockGraphClient) Health(ctx context.Context) types.HealthStatus {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.record("Health", "", nil)
	if !m.connected {
		return types.Unhealthy("not connected")
	}
	return m.healthStatus
}

// Read records the call and returns the next queued response.
func (m *MockGraphClient) Read(ctx context.Context, cypher string, params map[string]any) (QueryResult, error) {
	return m.query("Read", cypher, params)
}

// Write records the call and returns the next queued response.
func (m *MockGraphClient) Write(ctx context.Context, cypher string, params map[string]any) (QueryResult, error) {
	return m.query("Write", cypher, params)
}

func (m *MockGraphClient) query(method, cypher string, params map[string]any) (QueryResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.record(method, cypher, params)
	if !m.connected {
		return QueryResult{}, types.NewError(ErrCodeGraphConnectionClosed, "not connected")
	}

	if len(m.responses) == 0 {
		return QueryResult{Records: []map[string]any{}, Columns: []string{}}, nil
	}
	resp := m.responses[0]
	m.responses = m.responses[1:]
	return resp.result, resp.err
}

// AddResult queues a successful response.
func (m *MockGraphClient) AddResult(result QueryResult) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses = append(m.responses, mockResponse{result: result})
}

// AddRecords queues a successful response built from records.
func (m *MockGraphClient) AddRecords(records ...map[string]any) {
	var columns []string
	if len(records) > 0 {
		for k := range records[0] {
			columns = append(columns, k)
		}
	}
	if records == nil {
		records = []map[string]any{}
	}
	m.AddResult(QueryResult{Records: records, Columns: columns})
}

// AddError queues a failed response.
func (m *MockGraphClient) AddError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses = append(m.responses, mockResponse{err: err})
}

// SetHealthStatus configures what Health() returns while connected.
func (m *MockGraphClient) SetHealthStatus(status types.HealthStatus) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.healthStatus = status
}

// SetConnectError configures Connect() to return an error.
func (m *MockGraphClient) SetConnectError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.connectError = err
}

// SetCloseError configures Close() to return an error.
func (m *MockGraphClient) SetCloseError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closeError = err
}

// GetCalls returns a copy of all recorded calls.
func (m *MockGraphClient) GetCalls() []MockCall {
	m.mu.RLock()
	defer m.mu.RUnlock()

	calls := make([]MockCall, len(m.calls))
	copy(calls, m.calls)
	return calls
}

// GetCallsByMethod returns all calls to a specific method.
func (m *MockGraphClient) GetCallsByMethod(method string) []MockCall {
	m.mu.RLock()
	defer m.mu.RUnlock()

	calls := make([]MockCall, 0)
	for _, call := range m.calls {
		if call.Method == method {
			calls = append(calls, call)
		}
	}
	return calls
}

// CloseCount returns how many times Close was called.
func (m *MockGraphClient) CloseCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.closeCount
}

// IsConnected returns whether the mock is in connected state.
func (m *MockGraphClient) IsConnected() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.connected
}
