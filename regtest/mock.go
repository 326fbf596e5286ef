package regtest

import "context"

// MockCaller is a test double for Caller.
// CallFn must be set before Call is invoked.
type MockCaller struct {
	CallFn func(ctx context.Context, method string, params []interface{}, result interface{}) error
}

func (m *MockCaller) Call(ctx context.Context, method string, params []interface{}, result interface{}) error {
	return m.CallFn(ctx, method, params, result)
}

// MockRunner is a test double for Runner.
// RunFn must be set before Run is invoked.
type MockRunner struct {
	RunFn func(ctx context.Context, name string, args ...string) error
}

func (m *MockRunner) Run(ctx context.Context, name string, args ...string) error {
	return m.RunFn(ctx, name, args...)
}
