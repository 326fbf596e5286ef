package regtest

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/schollz/progressbar/v3"
)

// Node defaults.
const (
	DefaultBinary        = "bitcoind"
	DefaultWallet        = "bitcoinhos"
	DefaultStartAttempts = 15
	DefaultPollInterval  = time.Second
)

// NodeConfig controls how a regtest node is launched and prepared.
type NodeConfig struct {
	Binary        string
	Wallet        string
	StartAttempts int
	PollInterval  time.Duration
	ExtraArgs     []string
	Progress      io.Writer // spinner output; nil disables the spinner
}

func (c NodeConfig) withDefaults() NodeConfig {
	if c.Binary == "" {
		c.Binary = DefaultBinary
	}
	if c.Wallet == "" {
		c.Wallet = DefaultWallet
	}
	if c.StartAttempts <= 0 {
		c.StartAttempts = DefaultStartAttempts
	}
	if c.PollInterval <= 0 {
		c.PollInterval = DefaultPollInterval
	}
	return c
}

// Node drives a local regtest node over RPC.
type Node struct {
	rpc    Caller
	runner Runner
	cfg    NodeConfig
	auth   RPCConfig
}

// NewNode returns a Node. auth supplies the credentials passed to the node
// process on start.
func NewNode(rpc Caller, runner Runner, auth RPCConfig, cfg NodeConfig) *Node {
	return &Node{rpc: rpc, runner: runner, cfg: cfg.withDefaults(), auth: auth}
}

// blockchainInfo is the subset of getblockchaininfo the node flow reads.
type blockchainInfo struct {
	Chain  string `json:"chain"`
	Blocks int64  `json:"blocks"`
}

// Start launches the node daemon, waits until it answers RPC, and loads the
// wallet, creating it when it does not exist.
func (n *Node) Start(ctx context.Context) error {
	args := []string{"-regtest", "-daemon"}
	if n.auth.User != "" {
		args = append(args, "-rpcuser="+n.auth.User, "-rpcpassword="+n.auth.Password)
	}
	args = append(args, n.cfg.ExtraArgs...)

	slog.Info("starting regtest node", "binary", n.cfg.Binary)
	if err := n.runner.Run(ctx, n.cfg.Binary, args...); err != nil {
		return fmt.Errorf("%w: %w", ErrProcessFailed, err)
	}

	info, err := n.waitReady(ctx)
	if err != nil {
		return err
	}
	slog.Info("regtest node ready", "chain", info.Chain, "blocks", info.Blocks)

	return n.loadWallet(ctx)
}

// waitReady polls getblockchaininfo at a fixed interval.
func (n *Node) waitReady(ctx context.Context) (*blockchainInfo, error) {
	bar := progressbar.NewOptions64(
		-1,
		progressbar.OptionSetDescription("waiting for node"),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionSetWriter(progressWriter(n.cfg.Progress)),
		progressbar.OptionSetVisibility(n.cfg.Progress != nil),
		progressbar.OptionClearOnFinish(),
	)
	defer func() { _ = bar.Finish() }()

	var lastErr error
	for attempt := 1; attempt <= n.cfg.StartAttempts; attempt++ {
		var info blockchainInfo
		lastErr = n.rpc.Call(ctx, "getblockchaininfo", nil, &info)
		if lastErr == nil {
			return &info, nil
		}
		slog.Debug("node not ready", "attempt", attempt, "of", n.cfg.StartAttempts, "error", lastErr)
		_ = bar.Add(1)

		if attempt == n.cfg.StartAttempts {
			break
		}
		timer := time.NewTimer(n.cfg.PollInterval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, fmt.Errorf("%w: %w", ErrNodeNotReady, ctx.Err())
		case <-timer.C:
		}
	}
	return nil, fmt.Errorf("%w: no answer after %d attempts: %w", ErrNodeNotReady, n.cfg.StartAttempts, lastErr)
}

func progressWriter(w io.Writer) io.Writer {
	if w == nil {
		return os.Stderr
	}
	return w
}

// loadWallet loads the configured wallet, creating it if the node does not
// know it. A wallet that is already loaded is fine.
func (n *Node) loadWallet(ctx context.Context) error {
	err := n.rpc.Call(ctx, "loadwallet", []interface{}{n.cfg.Wallet}, nil)
	switch {
	case err == nil:
		slog.Info("wallet loaded", "wallet", n.cfg.Wallet)
		return nil
	case IsRPCCode(err, CodeWalletAlreadyLoaded):
		slog.Debug("wallet already loaded", "wallet", n.cfg.Wallet)
		return nil
	}

	slog.Warn("loading wallet failed, creating it", "wallet", n.cfg.Wallet, "error", err)
	if err := n.rpc.Call(ctx, "createwallet", []interface{}{n.cfg.Wallet}, nil); err != nil {
		return fmt.Errorf("regtest: create wallet %q: %w", n.cfg.Wallet, err)
	}
	slog.Info("wallet created", "wallet", n.cfg.Wallet)
	return nil
}

// Stop asks the node to shut down.
func (n *Node) Stop(ctx context.Context) error {
	if err := n.rpc.Call(ctx, "stop", nil, nil); err != nil {
		return fmt.Errorf("regtest: stop: %w", err)
	}
	slog.Info("regtest node stopping")
	return nil
}

// Height returns the current block count.
func (n *Node) Height(ctx context.Context) (int64, error) {
	var height int64
	if err := n.rpc.Call(ctx, "getblockcount", nil, &height); err != nil {
		return 0, fmt.Errorf("regtest: getblockcount: %w", err)
	}
	return height, nil
}

// MineToHeight mines blocks to a fresh wallet address until the chain
// reaches height. It does nothing when the node is already there and
// returns the resulting height.
func (n *Node) MineToHeight(ctx context.Context, height int64) (int64, error) {
	current, err := n.Height(ctx)
	if err != nil {
		return 0, err
	}
	if current >= height {
		return current, nil
	}

	var addr string
	if err := n.rpc.Call(ctx, "getnewaddress", nil, &addr); err != nil {
		return 0, fmt.Errorf("regtest: getnewaddress: %w", err)
	}
	if addr == "" {
		return 0, fmt.Errorf("%w: empty address", ErrInvalidResponse)
	}

	count := height - current
	slog.Info("mining blocks", "count", count, "from", current, "to", height)
	var hashes []string
	if err := n.rpc.Call(ctx, "generatetoaddress", []interface{}{count, addr}, &hashes); err != nil {
		return 0, fmt.Errorf("regtest: generatetoaddress: %w", err)
	}
	if int64(len(hashes)) != count {
		return 0, fmt.Errorf("%w: mined %d blocks, want %d", ErrInvalidResponse, len(hashes), count)
	}
	return height, nil
}

// BlockAtHeight returns the raw hex serialization of the block at height.
func (n *Node) BlockAtHeight(ctx context.Context, height int64) (string, error) {
	var hash string
	if err := n.rpc.Call(ctx, "getblockhash", []interface{}{height}, &hash); err != nil {
		return "", fmt.Errorf("regtest: getblockhash %d: %w", height, err)
	}

	var raw string
	if err := n.rpc.Call(ctx, "getblock", []interface{}{hash, 0}, &raw); err != nil {
		return "", fmt.Errorf("regtest: getblock %s: %w", hash, err)
	}
	if raw == "" {
		return "", fmt.Errorf("%w: empty block %s", ErrInvalidResponse, hash)
	}
	return raw, nil
}
