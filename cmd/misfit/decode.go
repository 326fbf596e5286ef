package main

import (
	"encoding/hex"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
	"github.com/spf13/cobra"

	"github.com/bitfsorg/misfit-go/codec"
	"github.com/bitfsorg/misfit-go/pow"
	"github.com/bitfsorg/misfit-go/tx"
)

func newDecodeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "decode",
		Short: "Print the fields of a serialized transaction or header",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "tx <hex>",
			Short: "Decode a transaction",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				msgTx, err := codec.DecodeTx(strings.TrimSpace(args[0]))
				if err != nil {
					return err
				}
				printTx(cmd.OutOrStdout(), msgTx)
				return nil
			},
		},
		&cobra.Command{
			Use:   "header <hex>",
			Short: "Decode a block header",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				h, err := codec.DecodeHeader(strings.TrimSpace(args[0]))
				if err != nil {
					return err
				}
				printHeader(cmd.OutOrStdout(), h)
				return nil
			},
		},
	)
	return cmd
}

func printTx(w io.Writer, msgTx *wire.MsgTx) {
	fmt.Fprintf(w, "txid: %s\n", msgTx.TxHash())
	fmt.Fprintf(w, "wtxid: %s\n", msgTx.WitnessHash())
	fmt.Fprintf(w, "version: %d\n", msgTx.Version)

	form := "time"
	if tx.IsHeightLockTime(msgTx.LockTime) {
		form = "height"
	}
	fmt.Fprintf(w, "locktime: %d (%s)\n", msgTx.LockTime, form)

	for i, in := range msgTx.TxIn {
		fmt.Fprintf(w, "input %d: %s sequence=0x%08x\n", i, in.PreviousOutPoint, in.Sequence)
		if len(in.SignatureScript) > 0 {
			fmt.Fprintf(w, "  script_sig: %s\n", hex.EncodeToString(in.SignatureScript))
		}
		for j, item := range in.Witness {
			fmt.Fprintf(w, "  witness %d: %s\n", j, hex.EncodeToString(item))
		}
	}
	for i, out := range msgTx.TxOut {
		class := txscript.GetScriptClass(out.PkScript)
		fmt.Fprintf(w, "output %d: %d sat %s %s\n", i, uint64(out.Value), class, hex.EncodeToString(out.PkScript))
	}
}

func printHeader(w io.Writer, h *wire.BlockHeader) {
	fmt.Fprintf(w, "hash: %s\n", h.BlockHash())
	fmt.Fprintf(w, "version: %d\n", h.Version)
	fmt.Fprintf(w, "prev_block: %s\n", h.PrevBlock)
	fmt.Fprintf(w, "merkle_root: %s\n", h.MerkleRoot)
	fmt.Fprintf(w, "timestamp: %d (%s)\n", h.Timestamp.Unix(), h.Timestamp.UTC().Format(time.RFC3339))
	fmt.Fprintf(w, "bits: 0x%08x valid=%t\n", h.Bits, pow.IsValidBits(h.Bits))
	fmt.Fprintf(w, "target: %064x\n", pow.BigTarget(h.Bits))
	fmt.Fprintf(w, "work: %s\n", pow.Work(h.Bits))
	fmt.Fprintf(w, "nonce: %d\n", h.Nonce)
}
