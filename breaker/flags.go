package breaker

import (
	"log/slog"
	"math/bits"
	"strings"
)

// TxFlags is a resolved set of transaction fields to invalidate. The "all"
// sentinel never appears here; it is expanded while parsing.
type TxFlags uint16

const (
	FlagVersion TxFlags = 1 << iota
	FlagInputTxid
	FlagInputVout
	FlagInputScriptSig
	FlagInputSequence
	FlagOutputAmount
	FlagOutputScriptPubKey
	FlagWitnessData
	FlagLocktime

	// AllTxFlags is the expansion of "all".
	AllTxFlags = FlagVersion | FlagInputTxid | FlagInputVout | FlagInputScriptSig |
		FlagInputSequence | FlagOutputAmount | FlagOutputScriptPubKey | FlagWitnessData | FlagLocktime
)

var txFlagNames = []struct {
	flag TxFlags
	name string
}{
	{FlagVersion, "version"},
	{FlagInputTxid, "input-txid"},
	{FlagInputVout, "input-vout"},
	{FlagInputScriptSig, "input-script"},
	{FlagInputSequence, "input-sequence"},
	{FlagOutputAmount, "output-amount"},
	{FlagOutputScriptPubKey, "output-script"},
	{FlagWitnessData, "witness-data"},
	{FlagLocktime, "locktime"},
}

// txFlagAliases maps every accepted spelling, without the leading dashes.
var txFlagAliases = map[string]TxFlags{
	"version":        FlagVersion,
	"txid":           FlagInputTxid,
	"input-txid":     FlagInputTxid,
	"vout":           FlagInputVout,
	"input-vout":     FlagInputVout,
	"script-sig":     FlagInputScriptSig,
	"input-script":   FlagInputScriptSig,
	"sequence":       FlagInputSequence,
	"input-sequence": FlagInputSequence,
	"amount":         FlagOutputAmount,
	"output-amount":  FlagOutputAmount,
	"script-pubkey":  FlagOutputScriptPubKey,
	"output-script":  FlagOutputScriptPubKey,
	"witness":        FlagWitnessData,
	"witness-data":   FlagWitnessData,
	"locktime":       FlagLocktime,
	"all":            AllTxFlags,
}

// Has reports whether every flag in o is set in f.
func (f TxFlags) Has(o TxFlags) bool { return f&o == o && o != 0 }

// Empty reports whether no flag is set.
func (f TxFlags) Empty() bool { return f == 0 }

// Len returns the number of flags set.
func (f TxFlags) Len() int { return bits.OnesCount16(uint16(f)) }

// Names returns the canonical names of the set flags in application order.
func (f TxFlags) Names() []string {
	var names []string
	for _, n := range txFlagNames {
		if f.Has(n.flag) {
			names = append(names, n.name)
		}
	}
	return names
}

func (f TxFlags) String() string {
	if f.Empty() {
		return "none"
	}
	return strings.Join(f.Names(), ",")
}

// ParseTxFlags resolves command-line style flags into a TxFlags set.
// Unrecognized arguments are logged and returned; they are never fatal.
// An empty result yields ErrNoFlags.
func ParseTxFlags(args []string) (TxFlags, []string, error) {
	var (
		flags   TxFlags
		unknown []string
	)
	for _, arg := range args {
		f, ok := txFlagAliases[flagName(arg)]
		if !ok {
			slog.Warn("ignoring unknown transaction flag", "flag", arg)
			unknown = append(unknown, arg)
			continue
		}
		flags |= f
	}
	if flags.Empty() {
		return 0, unknown, ErrNoFlags
	}
	return flags, unknown, nil
}

// flagName lowercases a "--name" argument and strips the dashes. Arguments
// without the "--" prefix yield "".
func flagName(arg string) string {
	if !strings.HasPrefix(arg, "--") {
		return ""
	}
	return strings.ToLower(strings.TrimPrefix(arg, "--"))
}
