package main

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/btcsuite/btcd/wire"
	"github.com/spf13/cobra"

	"github.com/bitfsorg/misfit-go/breaker"
	"github.com/bitfsorg/misfit-go/codec"
	"github.com/bitfsorg/misfit-go/fixture"
	"github.com/bitfsorg/misfit-go/tx"
)

func newTxCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tx",
		Short: "Generate or break transactions",
	}
	cmd.AddCommand(newTxGenerateCmd(a), newTxBreakCmd(a))
	return cmd
}

func newTxGenerateCmd(a *app) *cobra.Command {
	var (
		count  int
		kind   string
		strict bool
	)
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Synthesize signed transactions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if count < 1 {
				return fmt.Errorf("count must be positive, got %d", count)
			}
			var opts []tx.BuilderOption
			if strict {
				opts = append(opts, tx.WithStrictOutpoints())
			}

			var (
				generated []*tx.Generated
				err       error
			)
			switch {
			case kind != "":
				generated, err = buildWithKind(a, kind, count, opts)
			case a.cfg.Workers > 1:
				generated, err = tx.BuildParallel(cmd.Context(), a.seed, count, a.cfg.Workers, opts...)
			default:
				generated, err = tx.NewBuilder(a.src, opts...).BuildN(count)
			}
			if err != nil {
				return err
			}
			a.metrics.Generated(string(fixture.KindTx), len(generated))

			out := cmd.OutOrStdout()
			records := make([]*fixture.Record, 0, len(generated))
			for _, g := range generated {
				raw, err := codec.EncodeTx(g.Tx)
				if err != nil {
					return err
				}
				printGenerated(out, g, raw)
				records = append(records, txRecord(g.Tx, raw, false, nil, ""))
			}
			return a.persist(records...)
		},
	}
	cmd.Flags().IntVarP(&count, "count", "n", 1, "number of transactions")
	cmd.Flags().StringVar(&kind, "kind", "", "output script kind: p2pk, p2pkh, p2sh, p2wpkh, p2wsh, p2tr, p2tr-tweaked")
	cmd.Flags().BoolVar(&strict, "strict", false, "reference an existing funding output index")
	return cmd
}

func buildWithKind(a *app, name string, count int, opts []tx.BuilderOption) ([]*tx.Generated, error) {
	k, err := tx.ParseKind(name)
	if err != nil {
		return nil, err
	}
	b := tx.NewBuilder(a.src, opts...)
	out := make([]*tx.Generated, 0, count)
	for i := 0; i < count; i++ {
		g, err := b.Build(tx.TxParams{Output: &tx.OutputParams{Kind: &k}})
		if err != nil {
			return nil, fmt.Errorf("transaction %d: %w", i, err)
		}
		out = append(out, g)
	}
	return out, nil
}

func printGenerated(w io.Writer, g *tx.Generated, raw string) {
	fmt.Fprintf(w, "%s\n", raw)
	fmt.Fprintf(w, "txid: %s\n", g.TxID())
	fmt.Fprintf(w, "spends: %s (%s), pays: %s\n", g.Spent.Script.Kind, g.Proof.Status, g.Output.Kind)
}

func newTxBreakCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "break <hex> [--version --txid --vout --script-sig --sequence --amount --script-pubkey --witness --locktime --all]",
		Short: "Invalidate selected fields of a transaction",
		// Invalidation flags are parsed by the breaker, not cobra.
		DisableFlagParsing: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			rest, err := a.initRaw(cmd, args)
			if err != nil {
				return err
			}
			if len(rest) == 0 {
				return errors.New("missing transaction hex")
			}

			orig, err := codec.DecodeTx(rest[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			flags, _, err := breaker.ParseTxFlags(rest[1:])
			if errors.Is(err, breaker.ErrNoFlags) {
				fmt.Fprintln(out, err)
				return nil
			}

			broken, err := breaker.InvalidateTx(orig, flags)
			if err != nil {
				return err
			}
			raw, err := codec.EncodeTx(broken)
			if err != nil {
				return err
			}
			a.metrics.Broken(string(fixture.KindTx))

			fmt.Fprintf(out, "flags: %s\n", flags)
			fmt.Fprintf(out, "changed: %s\n", breaker.Touched(orig, broken))
			fmt.Fprintf(out, "%s\n", raw)
			fmt.Fprintf(out, "txid: %s\n", broken.TxHash())

			return a.persist(txRecord(broken, raw, true, flags.Names(), orig.WitnessHash().String()))
		},
	}
}

func txRecord(msgTx *wire.MsgTx, raw string, broken bool, flags []string, parent string) *fixture.Record {
	return &fixture.Record{
		ID:        msgTx.WitnessHash().String(),
		Kind:      fixture.KindTx,
		Hex:       raw,
		Broken:    broken,
		Flags:     flags,
		Parent:    parent,
		CreatedAt: time.Now().UTC(),
	}
}
