package validation_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/ordinate-io/sequencer/internal/model"
	"github.com/ordinate-io/sequencer/internal/validation"
)

func TestValidateTokenRequest_Valid(t *testing.T) {
	v := validation.NewValidator()

	err := v.ValidateTokenRequest(&model.TokenRequest{
		NumTokens: 1,
		Streams:   []model.StreamID{uuid.New()},
	})
	assert.Nil(t, err)
}

func TestValidateTokenRequest_TooManyStreams(t *testing.T) {
	v := validation.NewValidatorWithLimits(2, 4096, 1_000_000)

	err := v.ValidateTokenRequest(&model.TokenRequest{
		NumTokens: 1,
		Streams:   []model.StreamID{uuid.New(), uuid.New(), uuid.New()},
	})
	assert.NotNil(t, err)
}

func TestValidateTokenRequest_NumTokensTooLarge(t *testing.T) {
	v := validation.NewValidatorWithLimits(10, 4096, 100)

	err := v.ValidateTokenRequest(&model.TokenRequest{NumTokens: 101})
	assert.NotNil(t, err)
}

func TestValidateTokenRequest_NegativeReadTimestampOnTxn(t *testing.T) {
	v := validation.NewValidator()

	err := v.ValidateTokenRequest(&model.TokenRequest{
		NumTokens:     1,
		TxnResolution: true,
		ReadTimestamp: -1,
	})
	assert.NotNil(t, err)
}

func TestValidateTokenRequest_ConflictKeyTooLarge(t *testing.T) {
	v := validation.NewValidatorWithLimits(10, 4, 1_000_000)

	err := v.ValidateTokenRequest(&model.TokenRequest{
		NumTokens:    1,
		ConflictKeys: [][]byte{[]byte("way-too-long")},
	})
	assert.NotNil(t, err)
}
