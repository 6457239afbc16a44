package graph

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zero-day-ai/socialgraph/internal/types"
)

func TestMockGraphClient_Connect(t *testing.T) {
	t.Run("successful connect", func(t *testing.T) {
		mock := NewMockGraphClient()

		require.NoError(t, mock.Connect(context.Background()))
		assert.True(t, mock.IsConnected())
		assert.Len(t, mock.GetCallsByMethod("Connect"), 1)
	})

	t.Run("connect error", func(t *testing.T) {
		mock := NewMockGraphClient()
		mock.SetConnectError(errors.New("refused"))

		require.Error(t, mock.Connect(context.Background()))
		assert.False(t, mock.IsConnected())
	})
}

func TestMockGraphClient_QueuedResponses(t *testing.T) {
	ctx := context.Background()
	mock := NewMockGraphClient()
	require.NoError(t, mock.Connect(ctx))

	mock.AddRecords(map[string]any{"username": "Alice"})
	mock.AddError(errors.New("boom"))

	res, err := mock.Write(ctx, "MERGE", map[string]any{"username": "Alice"})
	require.NoError(t, err)
	assert.Equal(t, []string{"username"}, res.Columns)

	_, err = mock.Read(ctx, "MATCH", nil)
	require.EqualError(t, err, "boom")

	// Queue drained: empty result.
	res, err = mock.Read(ctx, "MATCH", nil)
	require.NoError(t, err)
	assert.Empty(t, res.Records)

	calls := mock.GetCalls()
	require.Len(t, calls, 4)
	assert.Equal(t, "Write", calls[1].Method)
	assert.Equal(t, "Alice", calls[1].Params["username"])
}

func TestMockGraphClient_NotConnected(t *testing.T) {
	mock := NewMockGraphClient()

	_, err := mock.Read(context.Background(), "MATCH", nil)
	require.Error(t, err)
	assert.Equal(t, ErrCodeGraphConnectionClosed, types.CodeOf(err))
	assert.False(t, mock.Health(context.Background()).IsHealthy())
}

func TestMockGraphClient_Close(t *testing.T) {
	ctx := context.Background()
	mock := NewMockGraphClient()
	require.NoError(t, mock.Connect(ctx))
	assert.True(t, mock.Health(ctx).IsHealthy())

	require.NoError(t, mock.Close(ctx))
	assert.False(t, mock.IsConnected())
	assert.Equal(t, 1, mock.CloseCount())

	mock.SetCloseError(errors.New("close failed"))
	require.Error(t, mock.Close(ctx))
	assert.Equal(t, 2, mock.CloseCount())
}
