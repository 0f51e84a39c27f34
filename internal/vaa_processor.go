package internal

import (
	"context"
	"errors"
	"fmt"
	"time"

	vaaLib "github.com/wormhole-foundation/wormhole/sdk/vaa"
	"go.uber.org/zap"

	"github.com/wormhole-demo/token-bridge-relayer/internal/attestation"
	"github.com/wormhole-demo/token-bridge-relayer/internal/submitter"
)

type VAAProcessor interface {
	// ProcessVAA processes the given VAA and returns the transaction signature, or "" when skipped
	ProcessVAA(ctx context.Context, vaaData VAAData) (string, error)
}

type VAAProcessorConfig struct {
	// Token bridge emitters per source chain, hex encoded. Chains not listed are skipped.
	Emitters map[uint16]string
	// Local chain id; attestations targeted elsewhere are skipped.
	DestinationChainID uint16
	// Skip attestations with a target chain other than zero or the destination.
	StrictTarget bool
}

// AttestationProcessor redeems token attestations from known token bridge emitters
type AttestationProcessor struct {
	config    VAAProcessorConfig
	logger    *zap.Logger
	submitter submitter.VAASubmitter
}

func NewAttestationProcessor(logger *zap.Logger, config VAAProcessorConfig, submitter submitter.VAASubmitter) *AttestationProcessor {
	emitters := make(map[uint16]string, len(config.Emitters))
	for chain, addr := range config.Emitters {
		emitters[chain] = normalizeEmitter(addr)
	}
	config.Emitters = emitters

	return &AttestationProcessor{
		config:    config,
		logger:    logger.With(zap.String("component", "AttestationProcessor")),
		submitter: submitter,
	}
}

func (p *AttestationProcessor) ProcessVAA(ctx context.Context, vaaData VAAData) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	p.logger.Debug("VAA Details",
		zap.Uint16("emitterChain", vaaData.ChainID),
		zap.String("chain", chainName(vaaData.ChainID)),
		zap.String("emitterAddress", vaaData.EmitterHex),
		zap.Uint64("sequence", vaaData.Sequence),
		zap.Int("payloadLength", len(vaaData.VAA.Payload)))

	expected, ok := p.config.Emitters[vaaData.ChainID]
	if !ok {
		p.logger.Debug("Skipping VAA (no token bridge configured for chain)",
			zap.Uint64("sequence", vaaData.Sequence),
			zap.Uint16("chain", vaaData.ChainID))
		return "", nil
	}
	if vaaData.EmitterHex != expected {
		p.logger.Debug("Skipping VAA (not from the token bridge emitter)",
			zap.Uint64("sequence", vaaData.Sequence),
			zap.String("emitter", vaaData.EmitterHex),
			zap.String("expectedEmitter", expected))
		return "", nil
	}

	if !isAttestation(vaaData.VAA.Payload) {
		p.logger.Debug("Skipping VAA (not a token attestation)",
			zap.Uint64("sequence", vaaData.Sequence))
		return "", nil
	}

	meta, err := attestation.FromSigned(vaaData.RawBytes)
	if err != nil {
		return "", fmt.Errorf("invalid attestation: %w", err)
	}

	// Zero targets every chain. Only the strict policy rejects the rest.
	if p.config.StrictTarget && !meta.IsForChain(vaaLib.ChainID(p.config.DestinationChainID)) {
		p.logger.Info("Skipping attestation targeted at another chain",
			zap.Uint64("sequence", meta.Sequence),
			zap.Uint16("targetChain", uint16(meta.TargetChain)))
		return "", nil
	}

	p.logger.Info("Received token attestation",
		zap.String("chain", chainName(vaaData.ChainID)),
		zap.Uint64("sequence", meta.Sequence),
		zap.Uint16("tokenChain", uint16(meta.TokenChain)),
		zap.String("symbol", meta.Symbol),
		zap.String("name", meta.Name))

	sig, err := p.submitter.SubmitVAA(ctx, vaaData.RawBytes)
	if errors.Is(err, submitter.ErrAlreadyRedeemed) {
		p.logger.Info("Attestation already redeemed", zap.Uint64("sequence", meta.Sequence))
		return "", nil
	}
	if err != nil {
		if ctx.Err() != nil {
			p.logger.Warn("Transaction sending cancelled or timed out", zap.Error(ctx.Err()))
			return "", fmt.Errorf("transaction interrupted: %v", ctx.Err())
		}

		p.logger.Error("Failed to create wrapped asset",
			zap.Uint64("sequence", meta.Sequence),
			zap.Error(err))
		return "", fmt.Errorf("transaction failed: %w", err)
	}

	p.logger.Info("Attestation redeemed",
		zap.Uint64("sequence", meta.Sequence),
		zap.String("signature", sig))

	return sig, nil
}
