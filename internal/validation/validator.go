package validation

import (
	"fmt"

	"github.com/ordinate-io/sequencer/internal/errors"
	"github.com/ordinate-io/sequencer/internal/model"
)

const (
	// MaxStreamsPerRequest bounds how many stream ids a single request may
	// touch, keeping one request's critical-section work bounded.
	MaxStreamsPerRequest = 10_000

	// MaxConflictKeySize bounds the length of a single conflict key before
	// it is reduced by the conflict cache's checksum.
	MaxConflictKeySize = 4096

	// MaxNumTokens bounds how large a single contiguous reservation may be.
	MaxNumTokens = 1_000_000
)

// Validator checks a decoded TokenRequest for shape and size before it
// reaches the allocator.
type Validator struct {
	maxStreamsPerRequest int
	maxConflictKeySize   int
	maxNumTokens          uint32
}

// NewValidator creates a validator with default limits.
func NewValidator() *Validator {
	return &Validator{
		maxStreamsPerRequest: MaxStreamsPerRequest,
		maxConflictKeySize:   MaxConflictKeySize,
		maxNumTokens:          MaxNumTokens,
	}
}

// NewValidatorWithLimits creates a validator with custom limits.
func NewValidatorWithLimits(maxStreamsPerRequest, maxConflictKeySize int, maxNumTokens uint32) *Validator {
	return &Validator{
		maxStreamsPerRequest: maxStreamsPerRequest,
		maxConflictKeySize:   maxConflictKeySize,
		maxNumTokens:          maxNumTokens,
	}
}

// ValidateTokenRequest checks a decoded TokenRequest before it is handed to
// the allocator. The overwrite/replexOverwrite conflict is intentionally
// not checked here — the allocator asserts it directly, per the protocol's
// own statement that the combination is impossible rather than merely
// undesirable.
func (v *Validator) ValidateTokenRequest(req *model.TokenRequest) *errors.SequencerError {
	if req.NumTokens > v.maxNumTokens {
		return errors.MalformedRequest(
			fmt.Sprintf("numTokens %d exceeds maximum of %d", req.NumTokens, v.maxNumTokens))
	}

	if len(req.Streams) > v.maxStreamsPerRequest {
		return errors.MalformedRequest(
			fmt.Sprintf("request touches %d streams, exceeds maximum of %d", len(req.Streams), v.maxStreamsPerRequest))
	}

	if len(req.ReadSet) > v.maxStreamsPerRequest {
		return errors.MalformedRequest(
			fmt.Sprintf("read set has %d streams, exceeds maximum of %d", len(req.ReadSet), v.maxStreamsPerRequest))
	}

	if req.TxnResolution && req.ReadTimestamp < 0 {
		return errors.MalformedRequest("readTimestamp must be non-negative for a transaction resolution request")
	}

	for i, key := range req.ConflictKeys {
		if len(key) > v.maxConflictKeySize {
			return errors.MalformedRequest(
				fmt.Sprintf("conflict key %d exceeds maximum size of %d bytes", i, v.maxConflictKeySize))
		}
	}

	return nil
}
