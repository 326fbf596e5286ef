// Package codec converts transactions, block headers and blocks to and from
// their consensus hex encoding. Every function is a pure, fallible
// transform; nothing here retries.
package codec

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/btcsuite/btcd/wire"
)

// HeaderSize is the serialized size of a block header in bytes.
const HeaderSize = wire.MaxBlockHeaderPayload

// decodeHex normalizes s (whitespace trimmed, spaces removed, any case) and
// hex-decodes it.
func decodeHex(s string) ([]byte, error) {
	clean := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(s), " ", ""))
	b, err := hex.DecodeString(clean)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidHex, err)
	}
	return b, nil
}

// DecodeTxBytes deserializes a transaction and rejects trailing bytes.
func DecodeTxBytes(b []byte) (*wire.MsgTx, error) {
	r := bytes.NewReader(b)
	tx := new(wire.MsgTx)
	if err := tx.Deserialize(r); err != nil {
		return nil, fmt.Errorf("%w: transaction: %w", ErrMalformed, err)
	}
	if r.Len() != 0 {
		return nil, fmt.Errorf("%w: transaction: %d trailing bytes", ErrMalformed, r.Len())
	}
	return tx, nil
}

// DecodeTx decodes a hex-encoded transaction.
func DecodeTx(s string) (*wire.MsgTx, error) {
	b, err := decodeHex(s)
	if err != nil {
		return nil, err
	}
	return DecodeTxBytes(b)
}

// EncodeTxBytes serializes tx, using the witness encoding when any input
// carries witness data.
func EncodeTxBytes(tx *wire.MsgTx) ([]byte, error) {
	if tx == nil {
		return nil, fmt.Errorf("%w: transaction", ErrNilParam)
	}
	var buf bytes.Buffer
	buf.Grow(tx.SerializeSize())
	if err := tx.Serialize(&buf); err != nil {
		return nil, fmt.Errorf("%w: transaction: %w", ErrEncode, err)
	}
	return buf.Bytes(), nil
}

// EncodeTx returns the lowercase hex encoding of tx.
func EncodeTx(tx *wire.MsgTx) (string, error) {
	b, err := EncodeTxBytes(tx)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// DecodeHeaderBytes deserializes exactly HeaderSize bytes into a header.
//
// Layout: version(4 LE) | prevBlock(32) | merkleRoot(32) | time(4 LE) | bits(4 LE) | nonce(4 LE)
func DecodeHeaderBytes(b []byte) (*wire.BlockHeader, error) {
	if len(b) != HeaderSize {
		return nil, fmt.Errorf("%w: expected %d bytes, got %d", ErrInvalidLength, HeaderSize, len(b))
	}
	h := new(wire.BlockHeader)
	if err := h.Deserialize(bytes.NewReader(b)); err != nil {
		return nil, fmt.Errorf("%w: header: %w", ErrMalformed, err)
	}
	return h, nil
}

// DecodeHeader decodes a hex-encoded 80-byte header.
func DecodeHeader(s string) (*wire.BlockHeader, error) {
	b, err := decodeHex(s)
	if err != nil {
		return nil, err
	}
	return DecodeHeaderBytes(b)
}

// EncodeHeaderBytes serializes h to its 80-byte wire form.
func EncodeHeaderBytes(h *wire.BlockHeader) ([]byte, error) {
	if h == nil {
		return nil, fmt.Errorf("%w: header", ErrNilParam)
	}
	var buf bytes.Buffer
	buf.Grow(HeaderSize)
	if err := h.Serialize(&buf); err != nil {
		return nil, fmt.Errorf("%w: header: %w", ErrEncode, err)
	}
	return buf.Bytes(), nil
}

// EncodeHeader returns the lowercase hex encoding of h.
func EncodeHeader(h *wire.BlockHeader) (string, error) {
	b, err := EncodeHeaderBytes(h)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// DecodeBlock decodes a hex-encoded block and rejects trailing bytes.
func DecodeBlock(s string) (*wire.MsgBlock, error) {
	b, err := decodeHex(s)
	if err != nil {
		return nil, err
	}
	r := bytes.NewReader(b)
	blk := new(wire.MsgBlock)
	if err := blk.Deserialize(r); err != nil {
		return nil, fmt.Errorf("%w: block: %w", ErrMalformed, err)
	}
	if r.Len() != 0 {
		return nil, fmt.Errorf("%w: block: %d trailing bytes", ErrMalformed, r.Len())
	}
	return blk, nil
}

// EncodeBlock returns the lowercase hex encoding of blk.
func EncodeBlock(blk *wire.MsgBlock) (string, error) {
	if blk == nil {
		return "", fmt.Errorf("%w: block", ErrNilParam)
	}
	var buf bytes.Buffer
	buf.Grow(blk.SerializeSize())
	if err := blk.Serialize(&buf); err != nil {
		return "", fmt.Errorf("%w: block: %w", ErrEncode, err)
	}
	return hex.EncodeToString(buf.Bytes()), nil
}
