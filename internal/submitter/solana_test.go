package submitter

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/wormhole-demo/token-bridge-relayer/internal/attestation"
	"github.com/wormhole-demo/token-bridge-relayer/internal/clients"
	"github.com/wormhole-demo/token-bridge-relayer/internal/testutil"
	"github.com/wormhole-demo/token-bridge-relayer/internal/tokenbridge"
)

var _ Chain = (*clients.SolanaClient)(nil)
var _ VAASubmitter = (*SolanaSubmitter)(nil)

type fakeChain struct {
	mu       sync.Mutex
	payer    solana.PublicKey
	existing map[solana.PublicKey]bool
	postErrs []error
	posted   [][32]byte
	sent     []solana.Instruction
}

func (f *fakeChain) GetPayerAddress() solana.PublicKey { return f.payer }

func (f *fakeChain) Bridge() tokenbridge.Config { return tokenbridge.DefaultConfig() }

func (f *fakeChain) AccountExists(_ context.Context, account solana.PublicKey) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.existing[account], nil
}

func (f *fakeChain) PostVAA(_ context.Context, _ []byte, hash [32]byte) (solana.PublicKey, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.posted = append(f.posted, hash)
	if len(f.postErrs) > 0 {
		err := f.postErrs[0]
		f.postErrs = f.postErrs[1:]
		return solana.PublicKey{}, err
	}
	return solana.PublicKey{}, nil
}

func (f *fakeChain) SendInstruction(_ context.Context, ix solana.Instruction) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, ix)
	return "sig", nil
}

func newFakeChain() *fakeChain {
	return &fakeChain{
		payer:    solana.MustPublicKeyFromBase58("9WzDXwBbmkg8ZTbNMqUxvQRAyrZzDsGYdLVL9zYtAWWM"),
		existing: map[solana.PublicKey]bool{},
	}
}

func Test_SolanaSubmitter(t *testing.T) {
	vaaBytes := testutil.SampleAttestMeta().Encode()
	meta, err := attestation.FromSigned(vaaBytes)
	require.NoError(t, err)

	t.Run("Should post the VAA and send create_wrapped", func(t *testing.T) {
		chain := newFakeChain()
		s := NewSolanaSubmitter(zap.NewNop(), chain)
		s.retryDelay = 0

		sig, err := s.SubmitVAA(context.Background(), vaaBytes)
		require.NoError(t, err)
		assert.Equal(t, "sig", sig)

		require.Len(t, chain.posted, 1)
		assert.Equal(t, [32]byte(meta.Hash), chain.posted[0])

		require.Len(t, chain.sent, 1)
		data, err := chain.sent[0].Data()
		require.NoError(t, err)
		assert.Equal(t, []byte{byte(tokenbridge.EntryPointCreateWrapped)}, data)
		assert.Equal(t, tokenbridge.DefaultTokenBridgeProgramID, chain.sent[0].ProgramID())
	})

	t.Run("Should retry posting", func(t *testing.T) {
		chain := newFakeChain()
		chain.postErrs = []error{errors.New("not yet"), errors.New("not yet")}
		s := NewSolanaSubmitter(zap.NewNop(), chain)
		s.retryDelay = 0

		_, err := s.SubmitVAA(context.Background(), vaaBytes)
		require.NoError(t, err)
		assert.Len(t, chain.posted, 3)
	})

	t.Run("Should skip claimed attestations", func(t *testing.T) {
		chain := newFakeChain()
		accounts, err := tokenbridge.GetCreateWrappedAccounts(chain.Bridge(), chain.payer, meta)
		require.NoError(t, err)
		chain.existing[accounts.Claim] = true

		_, err = NewSolanaSubmitter(zap.NewNop(), chain).SubmitVAA(context.Background(), vaaBytes)
		assert.ErrorIs(t, err, ErrAlreadyRedeemed)
		assert.Empty(t, chain.sent)
	})

	t.Run("Should reject malformed VAAs", func(t *testing.T) {
		chain := newFakeChain()
		_, err := NewSolanaSubmitter(zap.NewNop(), chain).SubmitVAA(context.Background(), []byte{1, 2})
		assert.ErrorIs(t, err, attestation.ErrMalformedAttestation)
		assert.Empty(t, chain.posted)
	})
}
