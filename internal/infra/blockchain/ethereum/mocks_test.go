package ethereum

import (
	"context"
	"encoding/json"

	"github.com/stretchr/testify/mock"
)

// mockConn is a jsonrpc.Client whose answers are set per method.
type mockConn struct {
	mock.Mock
}

func (m *mockConn) Fetch(ctx context.Context, method string, params ...any) (json.RawMessage, error) {
	args := m.Called(ctx, method, params)

	raw, _ := args.Get(0).(json.RawMessage)
	return raw, args.Error(1)
}

func raw(s string) json.RawMessage { return json.RawMessage(s) }
