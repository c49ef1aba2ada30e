// Package digest provides the fixed size hash value used to identify blocks
// and the string encodings used to test for difficulty and display them.
package digest

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
)

// Size is the number of bytes in a digest.
const Size = sha256.Size

// ErrLength is returned when decoded bytes can't form a digest.
var ErrLength = errors.New("digest must be 32 bytes")

// Digest represents the sha256 output that identifies a block. Digests are
// compared by their bytes, never by any of their string encodings.
type Digest [Size]byte

// Sum returns the sha256 digest of the data.
func Sum(data []byte) Digest {
	return sha256.Sum256(data)
}

// FromHex decodes a 0x prefixed, zero padded hex string as produced by
// the String method.
func FromHex(s string) (Digest, error) {
	b, err := hexutil.Decode(s)
	if err != nil {
		return Digest{}, fmt.Errorf("decoding digest %q: %w", s, err)
	}

	if len(b) != Size {
		return Digest{}, fmt.Errorf("decoding digest, got %d bytes: %w", len(b), ErrLength)
	}

	var d Digest
	copy(d[:], b)

	return d, nil
}

// String returns the 0x prefixed, zero padded hex form of the digest.
func (d Digest) String() string {
	return hexutil.Encode(d[:])
}

// Hex returns the unpadded hex encoding of the digest.
func (d Digest) Hex() string {
	return Hex(d[:])
}

// Bin returns the unpadded binary encoding of the digest.
func (d Digest) Bin() string {
	return Bin(d[:])
}

// HasHexPrefix reports whether the unpadded hex encoding starts with prefix.
func (d Digest) HasHexPrefix(prefix string) bool {
	return strings.HasPrefix(d.Hex(), prefix)
}

// HasBinPrefix reports whether the unpadded binary encoding starts with prefix.
func (d Digest) HasBinPrefix(prefix string) bool {
	return strings.HasPrefix(d.Bin(), prefix)
}

// =============================================================================

// Hex formats every byte in base 16 without padding and concatenates the
// results. A byte under 0x10 contributes a single character, so the length
// of the result varies between inputs.
func Hex(b []byte) string {
	var sb strings.Builder
	sb.Grow(len(b) * 2)

	for _, c := range b {
		sb.WriteString(strconv.FormatUint(uint64(c), 16))
	}

	return sb.String()
}

// Bin formats every byte in base 2 without padding and concatenates the
// results. A byte under 0x80 contributes fewer than 8 characters.
func Bin(b []byte) string {
	var sb strings.Builder
	sb.Grow(len(b) * 8)

	for _, c := range b {
		sb.WriteString(strconv.FormatUint(uint64(c), 2))
	}

	return sb.String()
}
