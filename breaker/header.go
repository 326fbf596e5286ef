package breaker

import (
	"fmt"
	"log/slog"
	"math"
	"math/bits"
	"strconv"
	"strings"
	"time"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"

	"github.com/bitfsorg/misfit-go/rng"
)

const (
	// VersionSentinel replaces the header version when no override is set.
	VersionSentinel int32 = 0x3fffffff

	// BitsMask is XORed into the compact target, flipping the mantissa.
	BitsMask uint32 = 0x00ffffff

	// FutureOffset is added to the clock when no timestamp offset is set.
	FutureOffset = 365 * 24 * time.Hour
)

// HeaderFields is a resolved set of header fields to invalidate.
type HeaderFields uint8

const (
	FieldVersion HeaderFields = 1 << iota
	FieldPrevBlock
	FieldMerkleRoot
	FieldTimestamp
	FieldBits
	FieldNonce

	AllHeaderFields = FieldVersion | FieldPrevBlock | FieldMerkleRoot | FieldTimestamp | FieldBits | FieldNonce
)

var headerFieldNames = []struct {
	field HeaderFields
	name  string
}{
	{FieldVersion, "version"},
	{FieldPrevBlock, "prev-hash"},
	{FieldMerkleRoot, "merkle-root"},
	{FieldTimestamp, "timestamp"},
	{FieldBits, "bits"},
	{FieldNonce, "nonce"},
}

// Has reports whether every field in o is set in f.
func (f HeaderFields) Has(o HeaderFields) bool { return f&o == o && o != 0 }

// Empty reports whether no field is set.
func (f HeaderFields) Empty() bool { return f == 0 }

// Len returns the number of fields set.
func (f HeaderFields) Len() int { return bits.OnesCount8(uint8(f)) }

// Names returns the canonical names of the set fields.
func (f HeaderFields) Names() []string {
	var names []string
	for _, n := range headerFieldNames {
		if f.Has(n.field) {
			names = append(names, n.name)
		}
	}
	return names
}

func (f HeaderFields) String() string {
	if f.Empty() {
		return "none"
	}
	return strings.Join(f.Names(), ",")
}

// ProcessingConfig selects and tunes header invalidation.
type ProcessingConfig struct {
	Fields          HeaderFields
	VersionOverride *int32
	TimestampOffset *int64
	RandomizeHashes bool
}

// DefaultProcessingConfig returns a config with no fields selected and
// random replacement hashes.
func DefaultProcessingConfig() ProcessingConfig {
	return ProcessingConfig{RandomizeHashes: true}
}

// ParseHeaderArgs resolves command-line style header flags and config
// values. Unknown arguments and malformed values are logged and returned in
// unknown. An empty field set yields ErrNoFlags.
func ParseHeaderArgs(args []string) (ProcessingConfig, []string, error) {
	cfg := DefaultProcessingConfig()
	var unknown []string

	for _, arg := range args {
		name := flagName(arg)
		key, value, hasValue := strings.Cut(name, "=")

		switch {
		case key == "all" && !hasValue:
			cfg.Fields |= AllHeaderFields
		case key == "zero-hashes" && !hasValue:
			cfg.RandomizeHashes = false
		case key == "version-override" && hasValue:
			v, err := strconv.ParseInt(value, 0, 32)
			if err != nil {
				slog.Warn("ignoring malformed version override", "value", value, "error", err)
				unknown = append(unknown, arg)
				continue
			}
			v32 := int32(v)
			cfg.VersionOverride = &v32
		case key == "timestamp-offset" && hasValue:
			v, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				slog.Warn("ignoring malformed timestamp offset", "value", value, "error", err)
				unknown = append(unknown, arg)
				continue
			}
			cfg.TimestampOffset = &v
		default:
			field, ok := headerFieldByName(name)
			if !ok {
				slog.Warn("ignoring unknown header flag", "flag", arg)
				unknown = append(unknown, arg)
				continue
			}
			cfg.Fields |= field
		}
	}

	if cfg.Fields.Empty() {
		return cfg, unknown, ErrNoFlags
	}
	return cfg, unknown, nil
}

func headerFieldByName(name string) (HeaderFields, bool) {
	for _, n := range headerFieldNames {
		if n.name == name {
			return n.field, true
		}
	}
	return 0, false
}

// HeaderInvalidator corrupts block header fields. Replacement hashes are
// drawn from src and the default future timestamp is taken from clock.
type HeaderInvalidator struct {
	src   rng.Source
	clock func() time.Time
}

// NewHeaderInvalidator returns a HeaderInvalidator. A nil clock uses
// time.Now.
func NewHeaderInvalidator(src rng.Source, clock func() time.Time) (*HeaderInvalidator, error) {
	if src == nil {
		return nil, fmt.Errorf("%w: randomness source", ErrNilParam)
	}
	if clock == nil {
		clock = time.Now
	}
	return &HeaderInvalidator{src: src, clock: clock}, nil
}

// Invalidate returns h with the fields selected by cfg corrupted. Fields are
// applied independently. The merkle root is not reconciled with any block
// body.
func (v *HeaderInvalidator) Invalidate(h wire.BlockHeader, cfg ProcessingConfig) wire.BlockHeader {
	out := h

	if cfg.Fields.Has(FieldVersion) {
		out.Version = VersionSentinel
		if cfg.VersionOverride != nil {
			out.Version = *cfg.VersionOverride
		}
	}
	if cfg.Fields.Has(FieldPrevBlock) {
		out.PrevBlock = v.replacementHash(cfg)
	}
	if cfg.Fields.Has(FieldMerkleRoot) {
		out.MerkleRoot = v.replacementHash(cfg)
	}
	if cfg.Fields.Has(FieldTimestamp) {
		out.Timestamp = time.Unix(int64(v.timestamp(h, cfg)), 0)
	}
	if cfg.Fields.Has(FieldBits) {
		out.Bits ^= BitsMask
	}
	if cfg.Fields.Has(FieldNonce) {
		out.Nonce = ^out.Nonce
	}

	return out
}

// InvalidateBlock returns a copy of blk with an invalidated header. The
// transactions are deep copies of the originals.
func (v *HeaderInvalidator) InvalidateBlock(blk *wire.MsgBlock, cfg ProcessingConfig) (*wire.MsgBlock, error) {
	if blk == nil {
		return nil, fmt.Errorf("%w: block", ErrNilParam)
	}
	out := wire.NewMsgBlock(&blk.Header)
	out.Header = v.Invalidate(blk.Header, cfg)
	out.Transactions = make([]*wire.MsgTx, len(blk.Transactions))
	for i, t := range blk.Transactions {
		out.Transactions[i] = t.Copy()
	}
	return out, nil
}

func (v *HeaderInvalidator) replacementHash(cfg ProcessingConfig) chainhash.Hash {
	if cfg.RandomizeHashes {
		return rng.Hash(v.src)
	}
	return chainhash.Hash{}
}

// timestamp returns the new header time as a 32-bit value.
func (v *HeaderInvalidator) timestamp(h wire.BlockHeader, cfg ProcessingConfig) uint32 {
	if cfg.TimestampOffset != nil {
		old, off := h.Timestamp.Unix(), *cfg.TimestampOffset
		if off > 0 && old > math.MaxInt64-off {
			return math.MaxUint32
		}
		return clampUint32(old + off)
	}
	return clampUint32(v.clock().Add(FutureOffset).Unix())
}

func clampUint32(v int64) uint32 {
	switch {
	case v < 0:
		return 0
	case v > math.MaxUint32:
		return math.MaxUint32
	}
	return uint32(v)
}
