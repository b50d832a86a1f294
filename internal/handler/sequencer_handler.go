// Package handler adapts the gRPC transport to the allocator: decode wire
// messages into internal request types, call the allocator, encode the
// response, and map internal errors onto gRPC status codes.
package handler

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ordinate-io/sequencer/internal/allocator"
	sequencererrors "github.com/ordinate-io/sequencer/internal/errors"
	"github.com/ordinate-io/sequencer/internal/model"
	"github.com/ordinate-io/sequencer/internal/validation"
	pb "github.com/ordinate-io/sequencer/pkg/sequencerpb"
)

// SequencerHandler implements the gRPC SequencerService by delegating to an
// Allocator.
type SequencerHandler struct {
	allocator *allocator.Allocator
	validator *validation.Validator
	logger    *zap.Logger
	pb.UnimplementedSequencerServiceServer
}

// NewSequencerHandler constructs a handler wrapping alloc.
func NewSequencerHandler(alloc *allocator.Allocator, validator *validation.Validator, logger *zap.Logger) *SequencerHandler {
	return &SequencerHandler{
		allocator: alloc,
		validator: validator,
		logger:    logger,
	}
}

// RequestToken handles a single token request over the wire.
func (h *SequencerHandler) RequestToken(ctx context.Context, req *pb.TokenRequest) (*pb.TokenResponse, error) {
	internalReq, err := decodeTokenRequest(req)
	if err != nil {
		return nil, sequencererrors.MalformedRequest(err.Error()).ToGRPCStatus().Err()
	}

	if err := h.validator.ValidateTokenRequest(internalReq); err != nil {
		return nil, err.ToGRPCStatus().Err()
	}

	resp, err := h.allocator.Handle(ctx, internalReq)
	if err != nil {
		h.logger.Debug("token request failed", zap.Error(err))
		if se, ok := err.(*sequencererrors.SequencerError); ok {
			return nil, se.ToGRPCStatus().Err()
		}
		return nil, sequencererrors.InternalError("unexpected allocator error", err).ToGRPCStatus().Err()
	}

	return encodeTokenResponse(resp), nil
}

// Ping reports the current global tail, for liveness probing by peers.
func (h *SequencerHandler) Ping(ctx context.Context, req *pb.PingRequest) (*pb.PingResponse, error) {
	return &pb.PingResponse{GlobalTail: h.allocator.GlobalTail()}, nil
}

func decodeTokenRequest(req *pb.TokenRequest) (*model.TokenRequest, error) {
	var streams []model.StreamID
	if req.StreamsSet {
		streams = make([]model.StreamID, 0, len(req.Streams))
		for _, raw := range req.Streams {
			id, err := decodeStreamID(raw)
			if err != nil {
				return nil, err
			}
			streams = append(streams, id)
		}
	}

	readSet := make([]model.StreamID, 0, len(req.ReadSet))
	for _, raw := range req.ReadSet {
		id, err := decodeStreamID(raw)
		if err != nil {
			return nil, err
		}
		readSet = append(readSet, id)
	}

	return &model.TokenRequest{
		NumTokens:       req.NumTokens,
		Streams:         streams,
		Overwrite:       req.Overwrite,
		ReplexOverwrite: req.ReplexOverwrite,
		TxnResolution:   req.TxnResolution,
		ReadTimestamp:   req.ReadTimestamp,
		ReadSet:         readSet,
		ConflictKeys:    req.ConflictKeys,
	}, nil
}

func decodeStreamID(raw []byte) (model.StreamID, error) {
	id, err := uuid.FromBytes(raw)
	if err != nil {
		return model.StreamID{}, fmt.Errorf("invalid stream id: %w", err)
	}
	return id, nil
}

func encodeTokenResponse(resp *model.TokenResponse) *pb.TokenResponse {
	out := &pb.TokenResponse{Token: resp.Token}

	for id, v := range resp.BackpointerMap {
		b := id
		out.BackpointerStreams = append(out.BackpointerStreams, b[:])
		out.BackpointerValues = append(out.BackpointerValues, v)
	}

	for id, v := range resp.StreamTokens {
		b := id
		out.StreamTokenStreams = append(out.StreamTokenStreams, b[:])
		out.StreamTokenValues = append(out.StreamTokenValues, v)
	}

	return out
}
