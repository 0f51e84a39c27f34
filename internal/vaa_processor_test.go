package internal

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	vaaLib "github.com/wormhole-foundation/wormhole/sdk/vaa"
	"go.uber.org/zap"

	"github.com/wormhole-demo/token-bridge-relayer/internal/attestation"
	"github.com/wormhole-demo/token-bridge-relayer/internal/submitter"
	"github.com/wormhole-demo/token-bridge-relayer/internal/testutil"
)

type recordingSubmitter struct {
	calls [][]byte
	err   error
}

func (s *recordingSubmitter) SubmitVAA(_ context.Context, vaaBytes []byte) (string, error) {
	s.calls = append(s.calls, vaaBytes)
	if s.err != nil {
		return "", s.err
	}
	return "sig", nil
}

func vaaDataFor(t *testing.T, raw []byte) VAAData {
	v, err := attestation.ParseVAAPermissive(raw)
	require.NoError(t, err)
	return VAAData{
		VAA:        v,
		RawBytes:   raw,
		ChainID:    uint16(v.EmitterChain),
		EmitterHex: fmt.Sprintf("%064x", v.EmitterAddress[:]),
		Sequence:   v.Sequence,
	}
}

func Test_AttestationProcessor(t *testing.T) {
	sample := testutil.SampleAttestMeta()
	emitterHex := "0x" + sample.EmitterAddress.String()
	config := VAAProcessorConfig{
		Emitters:           map[uint16]string{uint16(sample.EmitterChain): emitterHex},
		DestinationChainID: uint16(vaaLib.ChainIDSolana),
	}

	t.Run("Should submit attestations from the token bridge", func(t *testing.T) {
		sub := &recordingSubmitter{}
		p := NewAttestationProcessor(zap.NewNop(), config, sub)

		sig, err := p.ProcessVAA(context.Background(), vaaDataFor(t, sample.Encode()))
		require.NoError(t, err)
		assert.Equal(t, "sig", sig)
		assert.Len(t, sub.calls, 1)
	})

	skipped := map[string]testutil.AttestMetaVAA{}

	otherChain := sample
	otherChain.EmitterChain = vaaLib.ChainIDBSC
	skipped["unconfigured chain"] = otherChain

	otherEmitter := sample
	otherEmitter.EmitterAddress[0] = 0x01
	skipped["unknown emitter"] = otherEmitter

	for name, v := range skipped {
		t.Run("Should skip "+name, func(t *testing.T) {
			sub := &recordingSubmitter{}
			sig, err := NewAttestationProcessor(zap.NewNop(), config, sub).ProcessVAA(context.Background(), vaaDataFor(t, v.Encode()))
			require.NoError(t, err)
			assert.Empty(t, sig)
			assert.Empty(t, sub.calls)
		})
	}

	t.Run("Should skip transfers", func(t *testing.T) {
		transfer := sample.Payload()
		transfer[0] = 1

		sub := &recordingSubmitter{}
		sig, err := NewAttestationProcessor(zap.NewNop(), config, sub).ProcessVAA(context.Background(), vaaDataFor(t, sample.EncodeWithPayload(transfer)))
		require.NoError(t, err)
		assert.Empty(t, sig)
		assert.Empty(t, sub.calls)
	})

	t.Run("Should reject truncated attestations", func(t *testing.T) {
		payload := sample.Payload()[:50]

		sub := &recordingSubmitter{}
		_, err := NewAttestationProcessor(zap.NewNop(), config, sub).ProcessVAA(context.Background(), vaaDataFor(t, sample.EncodeWithPayload(payload)))
		assert.ErrorIs(t, err, attestation.ErrMalformedAttestation)
		assert.Empty(t, sub.calls)
	})

	t.Run("Should treat redeemed attestations as done", func(t *testing.T) {
		sub := &recordingSubmitter{err: fmt.Errorf("claim: %w", submitter.ErrAlreadyRedeemed)}
		sig, err := NewAttestationProcessor(zap.NewNop(), config, sub).ProcessVAA(context.Background(), vaaDataFor(t, sample.Encode()))
		require.NoError(t, err)
		assert.Empty(t, sig)
	})

	t.Run("Should surface submission failures", func(t *testing.T) {
		sub := &recordingSubmitter{err: errors.New("rpc down")}
		_, err := NewAttestationProcessor(zap.NewNop(), config, sub).ProcessVAA(context.Background(), vaaDataFor(t, sample.Encode()))
		assert.ErrorContains(t, err, "rpc down")
	})

	t.Run("Should accept broadcast attestations under the strict policy", func(t *testing.T) {
		strict := config
		strict.StrictTarget = true

		sub := &recordingSubmitter{}
		sig, err := NewAttestationProcessor(zap.NewNop(), strict, sub).ProcessVAA(context.Background(), vaaDataFor(t, sample.Encode()))
		require.NoError(t, err)
		assert.Equal(t, "sig", sig)
	})
}

func Test_NormalizeEmitter(t *testing.T) {
	assert.Equal(t, "00000000000000000000000000000000000000000000000000000000000000ab", normalizeEmitter("0xAB"))
	assert.Len(t, normalizeEmitter(""), 64)
}
