package submitter

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"github.com/wormhole-demo/token-bridge-relayer/internal/attestation"
	"github.com/wormhole-demo/token-bridge-relayer/internal/tokenbridge"
)

// ErrAlreadyRedeemed is returned when the claim account of a VAA already exists.
var ErrAlreadyRedeemed = errors.New("attestation already redeemed")

// Chain is the subset of the Solana client the submitter needs.
type Chain interface {
	GetPayerAddress() solana.PublicKey
	Bridge() tokenbridge.Config
	AccountExists(ctx context.Context, account solana.PublicKey) (bool, error)
	PostVAA(ctx context.Context, vaaBytes []byte, hash [32]byte) (solana.PublicKey, error)
	SendInstruction(ctx context.Context, ix solana.Instruction) (string, error)
}

// SolanaSubmitter redeems token attestations on Solana with create_wrapped
type SolanaSubmitter struct {
	chain      Chain
	maxRetries int
	retryDelay time.Duration
	logger     *zap.Logger
}

// NewSolanaSubmitter creates a new Solana submitter instance
func NewSolanaSubmitter(logger *zap.Logger, chain Chain) *SolanaSubmitter {
	return &SolanaSubmitter{
		chain:      chain,
		maxRetries: 10,
		retryDelay: 3 * time.Second,
		logger:     logger.With(zap.String("component", "SolanaSubmitter")),
	}
}

// SubmitVAA posts the attestation VAA to the core bridge if needed and sends create_wrapped
func (s *SolanaSubmitter) SubmitVAA(ctx context.Context, vaaBytes []byte) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 180*time.Second)
	defer cancel()

	meta, err := attestation.FromSigned(vaaBytes)
	if err != nil {
		return "", fmt.Errorf("failed to parse attestation: %w", err)
	}
	attestation.LogAttestMeta(s.logger, meta)

	payer := s.chain.GetPayerAddress()
	accounts, err := tokenbridge.GetCreateWrappedAccounts(s.chain.Bridge(), payer, meta)
	if err != nil {
		return "", fmt.Errorf("failed to derive create_wrapped accounts: %w", err)
	}
	LogAccounts(s.logger, accounts)

	claimed, err := s.chain.AccountExists(ctx, accounts.Claim)
	if err != nil {
		s.logger.Warn("Could not check claim account", zap.Error(err))
	}
	if claimed {
		return "", fmt.Errorf("claim %s: %w", accounts.Claim, ErrAlreadyRedeemed)
	}

	s.logger.Info("Submitting attestation to Solana",
		zap.Uint16("tokenChain", uint16(meta.TokenChain)),
		zap.String("symbol", meta.Symbol),
		zap.String("mint", accounts.Mint.String()),
		zap.String("payer", payer.String()))

	if err := s.waitForPostedVAA(ctx, vaaBytes, meta.Hash); err != nil {
		s.logger.Warn("VAA may not be fully posted, attempting create_wrapped anyway", zap.Error(err))
	}

	call, err := accounts.Call(s.chain.Bridge())
	if err != nil {
		return "", fmt.Errorf("failed to build create_wrapped call: %w", err)
	}

	sig, err := s.chain.SendInstruction(ctx, call.Instruction())
	if err != nil {
		return "", fmt.Errorf("failed to submit create_wrapped: %w", err)
	}

	s.logger.Info("Wrapped asset created",
		zap.String("signature", sig),
		zap.String("mint", accounts.Mint.String()),
		zap.Uint16("emitterChain", uint16(meta.EmitterChain)),
		zap.Uint64("sequence", meta.Sequence))

	return sig, nil
}

// waitForPostedVAA retries posting until the core bridge holds the VAA
func (s *SolanaSubmitter) waitForPostedVAA(ctx context.Context, vaaBytes []byte, hash [32]byte) error {
	retryDelay := s.retryDelay
	var lastErr error

	for attempt := 1; attempt <= s.maxRetries; attempt++ {
		_, lastErr = s.chain.PostVAA(ctx, vaaBytes, hash)
		if lastErr == nil {
			return nil
		}
		if attempt == s.maxRetries {
			break
		}

		s.logger.Info("Waiting for VAA to be posted to Wormhole",
			zap.Int("attempt", attempt),
			zap.Int("maxRetries", s.maxRetries),
			zap.Duration("nextRetry", retryDelay))
		select {
		case <-ctx.Done():
			return fmt.Errorf("context cancelled while waiting for VAA: %w", ctx.Err())
		case <-time.After(retryDelay):
			retryDelay = retryDelay * 3 / 2
			if retryDelay > 15*time.Second {
				retryDelay = 15 * time.Second
			}
		}
	}
	return lastErr
}

// LogAccounts logs the derived create_wrapped accounts at debug level
func LogAccounts(logger *zap.Logger, accounts *tokenbridge.CreateWrappedAccounts) {
	logger.Debug("Derived create_wrapped accounts",
		zap.String("config", accounts.Config.String()),
		zap.String("endpoint", accounts.Endpoint.String()),
		zap.String("vaa", accounts.VAA.String()),
		zap.String("claim", accounts.Claim.String()),
		zap.String("mint", accounts.Mint.String()),
		zap.String("wrappedMeta", accounts.WrappedMeta.String()),
		zap.String("splMetadata", accounts.SplMetadata.String()),
		zap.String("mintAuthority", accounts.MintAuthority.String()))
}
