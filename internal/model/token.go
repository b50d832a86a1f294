package model

import "github.com/google/uuid"

// StreamID identifies a stream. Streams are 128-bit identifiers; uuid.UUID is
// a plain [16]byte under the hood, so it is comparable and usable directly as
// a Go map key without any wrapping.
type StreamID = uuid.UUID

// NoToken is the sentinel returned in place of a token when a transaction
// aborts. It is also used as the "absent" value in stream-tail and
// back-pointer responses.
const NoToken int64 = -1

// TokenRequest is the internal representation of a TOKEN_REQ. Streams == nil
// and Streams == (non-nil, empty) are deliberately distinct: with NumTokens > 0,
// nil selects the non-stream path and a non-nil slice, even an empty one,
// selects the stream grant path. NumTokens == 0 selects the query path either
// way; with no streams it answers T-1.
type TokenRequest struct {
	NumTokens       uint32
	Streams         []StreamID // nil means "no streams field at all"
	Overwrite       bool
	ReplexOverwrite bool
	TxnResolution   bool
	ReadTimestamp   int64
	ReadSet         []StreamID
	ConflictKeys    [][]byte
}

// IsQuery reports whether this is the n=0 read-only path.
func (r *TokenRequest) IsQuery() bool {
	return r.NumTokens == 0
}

// HasStreams reports whether the streams field was present at all (possibly
// empty), as opposed to nil/absent.
func (r *TokenRequest) HasStreams() bool {
	return r.Streams != nil
}

// TokenResponse is the internal representation of a TOKEN_RES.
type TokenResponse struct {
	Token          int64
	BackpointerMap map[StreamID]int64
	StreamTokens   map[StreamID]int64
}

// Aborted reports whether this response signals a transaction abort.
func (r *TokenResponse) Aborted() bool {
	return r.Token == NoToken
}
