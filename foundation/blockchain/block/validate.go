package block

import (
	"errors"
	"fmt"
	"unicode/utf8"
)

// Set of rules a block is checked against before it can follow another.
var (
	ErrPrevDigest = errors.New("wrong previous hash")
	ErrID         = errors.New("not the next block after the latest")
	ErrDifficulty = errors.New("invalid difficulty")
	ErrDigest     = errors.New("invalid hash")

	// The canonical encoding replaces invalid utf-8, so such data can't be
	// told apart by its digest. Mine refuses it too.
	ErrData = errors.New("invalid data, not utf-8")
)

// ValidationError identifies the block that failed validation and the
// rule it broke.
type ValidationError struct {
	ID     uint64
	PrevID uint64
	Rule   error
}

// Error implements the error interface.
func (ve *ValidationError) Error() string {
	if errors.Is(ve.Rule, ErrID) {
		return fmt.Sprintf("block with id `%d` is %s: `%d`", ve.ID, ve.Rule, ve.PrevID)
	}
	return fmt.Sprintf("block with id `%d` has %s", ve.ID, ve.Rule)
}

// Unwrap provides access to the rule for errors.Is.
func (ve *ValidationError) Unwrap() error {
	return ve.Rule
}

// IsValidationError checks if an error of type ValidationError exists.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// =============================================================================

// Validate checks the block can follow the previous block. The first rule
// that fails is returned as a ValidationError.
//
// Difficulty is checked against the hex encoding of the digest while Mine
// checks the binary encoding. With unpadded encodings and a "00" prefix both
// come down to the first two digest bytes being zero.
func (b Block) Validate(prev Block) error {
	fail := func(rule error) error {
		return &ValidationError{ID: b.Payload.ID, PrevID: prev.Payload.ID, Rule: rule}
	}

	if b.Payload.PrevDigest != prev.Digest {
		return fail(ErrPrevDigest)
	}

	if b.Payload.ID != prev.Payload.ID+1 {
		return fail(ErrID)
	}

	if !b.Digest.HasHexPrefix(DifficultyPrefix) {
		return fail(ErrDifficulty)
	}

	if !utf8.ValidString(b.Payload.Data) {
		return fail(ErrData)
	}

	if Hash(b.Payload, b.Nonce) != b.Digest {
		return fail(ErrDigest)
	}

	return nil
}

// IsValid is the boolean form of Validate.
func (b Block) IsValid(prev Block) bool {
	return b.Validate(prev) == nil
}
