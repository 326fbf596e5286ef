package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bitfsorg/misfit-go/codec"
	"github.com/bitfsorg/misfit-go/regtest"
)

func newRegtestCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "regtest",
		Short: "Drive a local regtest node",
	}

	pf := cmd.PersistentFlags()
	pf.String("rpc-url", "", "node RPC URL (default from network preset)")
	pf.String("rpc-user", "", "node RPC user")
	pf.String("rpc-pass", "", "node RPC password")
	for key, flag := range map[string]string{
		"rpc.url":      "rpc-url",
		"rpc.user":     "rpc-user",
		"rpc.password": "rpc-pass",
	} {
		if err := a.v.BindPFlag(key, pf.Lookup(flag)); err != nil {
			panic(fmt.Sprintf("bind flag %s: %v", flag, err))
		}
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "start",
			Short: "Start the node and load its wallet",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				node, err := a.node(cmd)
				if err != nil {
					return err
				}
				if err := node.Start(cmd.Context()); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "node ready")
				return nil
			},
		},
		&cobra.Command{
			Use:   "stop",
			Short: "Stop the node",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				node, err := a.node(cmd)
				if err != nil {
					return err
				}
				if err := node.Stop(cmd.Context()); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "node stopping")
				return nil
			},
		},
		newRegtestBlockCmd(a),
	)
	return cmd
}

func newRegtestBlockCmd(a *app) *cobra.Command {
	var mine bool
	cmd := &cobra.Command{
		Use:   "block <height>",
		Short: "Fetch the raw block at a height",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			height, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil || height < 0 {
				return fmt.Errorf("invalid height %q", args[0])
			}
			node, err := a.node(cmd)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			if mine {
				if _, err := node.MineToHeight(ctx, height); err != nil {
					return err
				}
			}
			raw, err := node.BlockAtHeight(ctx, height)
			if err != nil {
				return err
			}
			blk, err := codec.DecodeBlock(raw)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s\n", raw)
			fmt.Fprintf(out, "hash: %s\n", blk.BlockHash())
			fmt.Fprintf(out, "txs: %d\n", len(blk.Transactions))
			return a.persist(blockRecord(blk, raw, false, nil, ""))
		},
	}
	cmd.Flags().BoolVar(&mine, "mine", false, "mine up to the height first")
	return cmd
}

// node builds a regtest node handle from the resolved RPC configuration.
func (a *app) node(cmd *cobra.Command) (*regtest.Node, error) {
	flags := &regtest.RPCConfig{
		URL:      a.cfg.RPC.URL,
		User:     a.cfg.RPC.User,
		Password: a.cfg.RPC.Password,
	}
	rcfg, err := regtest.ResolveConfig(flags, environ(), a.cfg.Network)
	if err != nil {
		return nil, err
	}
	client := regtest.NewRPCClient(*rcfg, a.metrics)
	return regtest.NewNode(client, regtest.ExecRunner{}, *rcfg, regtest.NodeConfig{
		Binary:        a.cfg.NodeBinary,
		Wallet:        a.cfg.WalletName,
		StartAttempts: a.cfg.StartAttempts,
		Progress:      cmd.ErrOrStderr(),
	}), nil
}

func environ() map[string]string {
	env := make(map[string]string)
	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok {
			env[k] = v
		}
	}
	return env
}
