package regtest

import (
	"errors"
	"fmt"
)

var (
	// ErrConnectionFailed indicates the client could not reach the node.
	ErrConnectionFailed = errors.New("regtest: connection failed")

	// ErrAuthFailed indicates the RPC credentials were rejected.
	ErrAuthFailed = errors.New("regtest: authentication failed")

	// ErrInvalidResponse indicates the node returned a malformed or unexpected response.
	ErrInvalidResponse = errors.New("regtest: invalid response")

	// ErrNodeNotReady indicates the node did not answer within the allowed start attempts.
	ErrNodeNotReady = errors.New("regtest: node not ready")

	// ErrProcessFailed indicates the node process could not be launched.
	ErrProcessFailed = errors.New("regtest: process failed")

	// ErrInvalidConfig indicates missing or inconsistent RPC settings.
	ErrInvalidConfig = errors.New("regtest: invalid config")
)

// RPCError is an error object returned by the node itself.
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("regtest: rpc error %d: %s", e.Code, e.Message)
}

// Node error codes used by the wallet flow.
const (
	CodeWalletNotFound      = -18
	CodeWalletAlreadyLoaded = -35
)

// IsRPCCode reports whether err carries an RPCError with the given code.
func IsRPCCode(err error, code int) bool {
	var rpcErr *RPCError
	return errors.As(err, &rpcErr) && rpcErr.Code == code
}
