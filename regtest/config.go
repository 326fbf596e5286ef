package regtest

import (
	"fmt"
	"time"
)

// RPCConfig holds the connection parameters for a node's JSON-RPC interface.
type RPCConfig struct {
	URL      string        `json:"url" mapstructure:"url"`
	User     string        `json:"user" mapstructure:"user"`
	Password string        `json:"password" mapstructure:"password"`
	Network  string        `json:"network" mapstructure:"network"`
	Timeout  time.Duration `json:"timeout" mapstructure:"timeout"`
}

// NetworkPresets contains default RPC configurations for known networks.
// Mainnet is intentionally omitted to require explicit configuration.
var NetworkPresets = map[string]RPCConfig{
	"regtest": {URL: "http://127.0.0.1:18443", User: "misfit", Password: "misfit"},
	"testnet": {URL: "http://127.0.0.1:18332", User: "misfit", Password: "misfit"},
}

// Environment variable names consulted by ResolveConfig.
const (
	EnvRPCURL  = "MISFIT_RPC_URL"
	EnvRPCUser = "MISFIT_RPC_USER"
	EnvRPCPass = "MISFIT_RPC_PASS"
)

// ResolveConfig merges RPC configuration from three sources with decreasing priority:
//  1. CLI flags or the config file (highest priority)
//  2. Environment variables (MISFIT_RPC_URL, MISFIT_RPC_USER, MISFIT_RPC_PASS)
//  3. Network presets (lowest priority, regtest/testnet only)
//
// For mainnet, explicit configuration is required.
func ResolveConfig(flags *RPCConfig, env map[string]string, network string) (*RPCConfig, error) {
	result := RPCConfig{Network: network}

	if preset, ok := NetworkPresets[network]; ok {
		result = preset
		result.Network = network
	}

	if env != nil {
		if v, ok := env[EnvRPCURL]; ok && v != "" {
			result.URL = v
		}
		if v, ok := env[EnvRPCUser]; ok && v != "" {
			result.User = v
		}
		if v, ok := env[EnvRPCPass]; ok && v != "" {
			result.Password = v
		}
	}

	if flags != nil {
		if flags.URL != "" {
			result.URL = flags.URL
		}
		if flags.User != "" {
			result.User = flags.User
		}
		if flags.Password != "" {
			result.Password = flags.Password
		}
		if flags.Timeout > 0 {
			result.Timeout = flags.Timeout
		}
	}

	if result.URL == "" {
		return nil, fmt.Errorf("%w: %s requires explicit RPC configuration (set --rpc-url, %s, or config file)",
			ErrInvalidConfig, network, EnvRPCURL)
	}

	return &result, nil
}
