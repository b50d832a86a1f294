// Package sequencerpb holds the wire messages and gRPC service definition
// for the sequencer protocol. The message types are written by hand in the
// style protoc-gen-go emitted before the APIv2 rewrite: plain structs with
// field tags plus the Reset/String/ProtoMessage trio, rather than the
// descriptor-driven code newer generators produce. google.golang.org/grpc's
// default codec marshals these through protobuf's legacy v1 compatibility
// shim, so no .proto toolchain step is needed to keep them on the wire.
package sequencerpb

import (
	proto "github.com/golang/protobuf/proto"
)

// TokenRequest is the wire form of a token request.
type TokenRequest struct {
	NumTokens uint32 `protobuf:"varint,1,opt,name=num_tokens,json=numTokens,proto3" json:"num_tokens,omitempty"`

	// StreamsSet distinguishes "streams absent" (nil Streams, non-stream
	// path) from "streams present but empty" (non-nil empty Streams, stream
	// grant path with no streams to update). Wire encodings that lack a native optional-repeated marker
	// carry this alongside the Streams field.
	StreamsSet bool `protobuf:"varint,2,opt,name=streams_set,json=streamsSet,proto3" json:"streams_set,omitempty"`
	Streams    [][]byte `protobuf:"bytes,3,rep,name=streams,proto3" json:"streams,omitempty"`

	Overwrite       bool  `protobuf:"varint,4,opt,name=overwrite,proto3" json:"overwrite,omitempty"`
	ReplexOverwrite bool  `protobuf:"varint,5,opt,name=replex_overwrite,json=replexOverwrite,proto3" json:"replex_overwrite,omitempty"`
	TxnResolution   bool  `protobuf:"varint,6,opt,name=txn_resolution,json=txnResolution,proto3" json:"txn_resolution,omitempty"`
	ReadTimestamp   int64 `protobuf:"varint,7,opt,name=read_timestamp,json=readTimestamp,proto3" json:"read_timestamp,omitempty"`

	ReadSet      [][]byte `protobuf:"bytes,8,rep,name=read_set,json=readSet,proto3" json:"read_set,omitempty"`
	ConflictKeys [][]byte `protobuf:"bytes,9,rep,name=conflict_keys,json=conflictKeys,proto3" json:"conflict_keys,omitempty"`
}

func (m *TokenRequest) Reset()         { *m = TokenRequest{} }
func (m *TokenRequest) String() string { return proto.CompactTextString(m) }
func (*TokenRequest) ProtoMessage()    {}

// TokenResponse is the wire form of a token response.
type TokenResponse struct {
	Token int64 `protobuf:"varint,1,opt,name=token,proto3" json:"token,omitempty"`

	// The back-pointer map and the stream-token map each travel as their own
	// pair of parallel arrays (stream ids and values, matched by index)
	// rather than a native protobuf map. The two pairs are independent: the
	// stream-token pair omits streams whose local tail did not advance.
	BackpointerStreams [][]byte `protobuf:"bytes,2,rep,name=backpointer_streams,json=backpointerStreams,proto3" json:"backpointer_streams,omitempty"`
	BackpointerValues  []int64  `protobuf:"varint,3,rep,packed,name=backpointer_values,json=backpointerValues,proto3" json:"backpointer_values,omitempty"`

	StreamTokenStreams [][]byte `protobuf:"bytes,4,rep,name=stream_token_streams,json=streamTokenStreams,proto3" json:"stream_token_streams,omitempty"`
	StreamTokenValues  []int64  `protobuf:"varint,5,rep,packed,name=stream_token_values,json=streamTokenValues,proto3" json:"stream_token_values,omitempty"`
}

func (m *TokenResponse) Reset()         { *m = TokenResponse{} }
func (m *TokenResponse) String() string { return proto.CompactTextString(m) }
func (*TokenResponse) ProtoMessage()    {}

// PingRequest is an empty liveness probe.
type PingRequest struct{}

func (m *PingRequest) Reset()         { *m = PingRequest{} }
func (m *PingRequest) String() string { return proto.CompactTextString(m) }
func (*PingRequest) ProtoMessage()    {}

// PingResponse reports the responding node's current global tail.
type PingResponse struct {
	GlobalTail int64 `protobuf:"varint,1,opt,name=global_tail,json=globalTail,proto3" json:"global_tail,omitempty"`
}

func (m *PingResponse) Reset()         { *m = PingResponse{} }
func (m *PingResponse) String() string { return proto.CompactTextString(m) }
func (*PingResponse) ProtoMessage()    {}
