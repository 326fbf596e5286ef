package main

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/btcsuite/btcd/wire"
	"github.com/spf13/cobra"

	"github.com/bitfsorg/misfit-go/block"
	"github.com/bitfsorg/misfit-go/breaker"
	"github.com/bitfsorg/misfit-go/codec"
	"github.com/bitfsorg/misfit-go/fixture"
	"github.com/bitfsorg/misfit-go/tx"
)

func newBlockCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "block",
		Short: "Generate or break blocks",
	}
	cmd.AddCommand(newBlockGenerateCmd(a), newBlockBreakCmd(a))
	return cmd
}

func newBlockGenerateCmd(a *app) *cobra.Command {
	var (
		txCount int
		height  int64
	)
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Assemble a block with a coinbase and signed transactions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			builder := tx.NewBuilder(a.src)

			var params block.Params
			if txCount < 0 {
				return fmt.Errorf("transaction count must not be negative, got %d", txCount)
			}
			if height > math.MaxInt32 {
				return fmt.Errorf("height %d exceeds %d", height, math.MaxInt32)
			}
			if height >= 0 {
				h := uint32(height)
				params.Height = &h
			}
			if txCount > 0 {
				generated, err := builder.BuildN(txCount)
				if err != nil {
					return err
				}
				params.Txs = make([]*wire.MsgTx, len(generated))
				for i, g := range generated {
					params.Txs[i] = g.Tx
				}
			}

			blk, err := block.NewAssembler(a.src, builder).Assemble(params)
			if err != nil {
				return err
			}
			a.metrics.Generated(string(fixture.KindBlock), 1)

			raw, err := codec.EncodeBlock(blk)
			if err != nil {
				return err
			}
			if err := printBlock(cmd.OutOrStdout(), blk); err != nil {
				return err
			}
			return a.persist(blockRecord(blk, raw, false, nil, ""))
		},
	}
	cmd.Flags().IntVarP(&txCount, "count", "n", 0, "non-coinbase transactions (0 picks 1-9 at random)")
	cmd.Flags().Int64Var(&height, "height", -1, "coinbase height (negative picks one at random)")
	return cmd
}

func printBlock(w io.Writer, blk *wire.MsgBlock) error {
	header, err := codec.EncodeHeader(&blk.Header)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "header: %s\n", header)
	fmt.Fprintf(w, "hash: %s\n", blk.BlockHash())
	for i, t := range blk.Transactions {
		raw, err := codec.EncodeTx(t)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "tx %d: %s\n", i, raw)
		fmt.Fprintf(w, "txid %d: %s\n", i, t.TxHash())
	}
	return nil
}

func newBlockBreakCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "break <header-or-block-hex> [--version --prev-hash --merkle-root --timestamp --bits --nonce --all] [--version-override=N --timestamp-offset=S --zero-hashes]",
		Short: "Invalidate selected fields of a block header",
		// Invalidation flags are parsed by the breaker, not cobra.
		DisableFlagParsing: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			rest, err := a.initRaw(cmd, args)
			if err != nil {
				return err
			}
			if len(rest) == 0 {
				return errors.New("missing header or block hex")
			}

			out := cmd.OutOrStdout()
			cfg, _, err := breaker.ParseHeaderArgs(rest[1:])
			if errors.Is(err, breaker.ErrNoFlags) {
				fmt.Fprintln(out, err)
				return nil
			}
			inv, err := breaker.NewHeaderInvalidator(a.src, time.Now)
			if err != nil {
				return err
			}

			input := strings.TrimSpace(rest[0])
			if len(input) == codec.HeaderSize*2 {
				return breakHeader(a, out, inv, input, cfg)
			}
			return breakBlock(a, out, inv, input, cfg)
		},
	}
}

func breakHeader(a *app, out io.Writer, inv *breaker.HeaderInvalidator, input string, cfg breaker.ProcessingConfig) error {
	orig, err := codec.DecodeHeader(input)
	if err != nil {
		return err
	}
	broken := inv.Invalidate(*orig, cfg)
	raw, err := codec.EncodeHeader(&broken)
	if err != nil {
		return err
	}
	a.metrics.Broken(string(fixture.KindHeader))

	fmt.Fprintf(out, "fields: %s\n", cfg.Fields)
	fmt.Fprintf(out, "%s\n", raw)
	fmt.Fprintf(out, "hash: %s\n", broken.BlockHash())

	return a.persist(&fixture.Record{
		ID:        broken.BlockHash().String(),
		Kind:      fixture.KindHeader,
		Hex:       raw,
		Broken:    true,
		Flags:     cfg.Fields.Names(),
		Parent:    orig.BlockHash().String(),
		CreatedAt: time.Now().UTC(),
	})
}

func breakBlock(a *app, out io.Writer, inv *breaker.HeaderInvalidator, input string, cfg breaker.ProcessingConfig) error {
	orig, err := codec.DecodeBlock(input)
	if err != nil {
		return err
	}
	broken, err := inv.InvalidateBlock(orig, cfg)
	if err != nil {
		return err
	}
	raw, err := codec.EncodeBlock(broken)
	if err != nil {
		return err
	}
	a.metrics.Broken(string(fixture.KindBlock))

	fmt.Fprintf(out, "fields: %s\n", cfg.Fields)
	fmt.Fprintf(out, "%s\n", raw)
	fmt.Fprintf(out, "hash: %s\n", broken.BlockHash())

	return a.persist(blockRecord(broken, raw, true, cfg.Fields.Names(), orig.BlockHash().String()))
}

func blockRecord(blk *wire.MsgBlock, raw string, broken bool, flags []string, parent string) *fixture.Record {
	return &fixture.Record{
		ID:        blk.BlockHash().String(),
		Kind:      fixture.KindBlock,
		Hex:       raw,
		Broken:    broken,
		Flags:     flags,
		Parent:    parent,
		CreatedAt: time.Now().UTC(),
	}
}
