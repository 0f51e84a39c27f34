package pda

import (
	"encoding/binary"
	"testing"

	"filippo.io/edwards25519"
	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	vaaLib "github.com/wormhole-foundation/wormhole/sdk/vaa"

	"github.com/wormhole-demo/token-bridge-relayer/internal/attestation"
	"github.com/wormhole-demo/token-bridge-relayer/internal/testutil"
)

var (
	tokenBridge = solana.MustPublicKeyFromBase58("DZnkkTmCiFWfYTfT41X3Rd1kDgozqzxWaHqsw6W4x2oe")
	coreBridge  = solana.MustPublicKeyFromBase58("3u8hJUVTA4jH1wYAyUur7FFZVQ8H635K3tSHHF4ssjQ5")
)

func sampleMeta(t *testing.T) *attestation.AttestMeta {
	meta, err := attestation.FromSigned(testutil.SampleAttestMeta().Encode())
	require.NoError(t, err)
	return meta
}

func samplePrograms() Programs {
	return Programs{
		TokenBridge:   tokenBridge.Bytes(),
		CoreBridge:    coreBridge.Bytes(),
		TokenMetadata: solana.TokenMetadataProgramID.Bytes(),
	}
}

func Test_DeriveCreateWrappedIsDeterministic(t *testing.T) {
	meta := sampleMeta(t)

	first, err := DeriveCreateWrapped(samplePrograms(), meta)
	require.NoError(t, err)
	second, err := DeriveCreateWrapped(samplePrograms(), sampleMeta(t))
	require.NoError(t, err)

	assert.Len(t, first, 8)
	assert.Equal(t, first, second)

	for role, addr := range first {
		assert.False(t, addr.IsZero(), "role %s", role)
		_, err := new(edwards25519.Point).SetBytes(addr.Bytes())
		assert.Error(t, err, "role %s must not be a valid ed25519 key", role)
	}
}

func Test_SeedLayout(t *testing.T) {
	t.Run("Should seed the claim with emitter, chain and sequence only", func(t *testing.T) {
		var emitter vaaLib.Address
		emitter[0] = 0xAB
		seq := make([]byte, 8)
		binary.BigEndian.PutUint64(seq, 42)

		want, _, err := solana.FindProgramAddress([][]byte{emitter[:], {0x00, 0x01}, seq}, tokenBridge)
		require.NoError(t, err)

		got, err := ClaimKey(tokenBridge.Bytes(), emitter, vaaLib.ChainIDSolana, 42)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	})

	t.Run("Should seed the wrapped mint with chain then address", func(t *testing.T) {
		var token vaaLib.Address
		token[31] = 0x01

		want, _, err := solana.FindProgramAddress([][]byte{[]byte("wrapped"), {0x00, 0x02}, token[:]}, tokenBridge)
		require.NoError(t, err)

		got, err := WrappedMintKey(tokenBridge.Bytes(), vaaLib.ChainIDEthereum, token)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	})

	t.Run("Should derive the posted VAA under the core bridge", func(t *testing.T) {
		var hash [32]byte
		hash[5] = 9

		want, _, err := solana.FindProgramAddress([][]byte{[]byte("PostedVAA"), hash[:]}, coreBridge)
		require.NoError(t, err)

		got, err := PostedVAAKey(coreBridge.Bytes(), hash)
		require.NoError(t, err)
		assert.Equal(t, want, got)

		underTokenBridge, err := PostedVAAKey(tokenBridge.Bytes(), hash)
		require.NoError(t, err)
		assert.NotEqual(t, got, underTokenBridge)
	})

	t.Run("Should derive token metadata under the metadata program", func(t *testing.T) {
		mint := solana.MustPublicKeyFromBase58("So11111111111111111111111111111111111111112")
		metadataProgram := solana.TokenMetadataProgramID

		want, _, err := solana.FindProgramAddress([][]byte{[]byte("metadata"), metadataProgram.Bytes(), mint.Bytes()}, metadataProgram)
		require.NoError(t, err)

		got, err := TokenMetadataKey(metadataProgram.Bytes(), mint)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	})

	t.Run("Should seed the endpoint with its literal prefix", func(t *testing.T) {
		var emitter vaaLib.Address
		emitter[31] = 0x04

		want, _, err := solana.FindProgramAddress([][]byte{[]byte("Endpoint"), {0x00, 0x02}, emitter[:]}, tokenBridge)
		require.NoError(t, err)

		got, err := EndpointKey(tokenBridge.Bytes(), vaaLib.ChainIDEthereum, emitter)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	})
}

func Test_WrappedMintPadding(t *testing.T) {
	native := []byte{0xC0, 0x2a, 0xaa, 0x39, 0xb2, 0x23, 0xFE, 0x8D, 0x0A, 0x0e, 0x5C, 0x4F, 0x27, 0xeA, 0xD9, 0x08, 0x3C, 0x75, 0x6C, 0xc2}

	var leftPadded vaaLib.Address
	copy(leftPadded[32-len(native):], native)
	var rightPadded vaaLib.Address
	copy(rightPadded[:], native)

	got, err := WrappedMintKeyNative(tokenBridge.Bytes(), vaaLib.ChainIDEthereum, native)
	require.NoError(t, err)

	want, err := WrappedMintKey(tokenBridge.Bytes(), vaaLib.ChainIDEthereum, leftPadded)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	wrong, err := WrappedMintKey(tokenBridge.Bytes(), vaaLib.ChainIDEthereum, rightPadded)
	require.NoError(t, err)
	assert.NotEqual(t, wrong, got)

	unpadded, _, err := solana.FindProgramAddress([][]byte{SeedWrapped, {0x00, 0x02}, native}, tokenBridge)
	require.NoError(t, err)
	assert.NotEqual(t, unpadded, got)

	_, err = WrappedMintKeyNative(tokenBridge.Bytes(), vaaLib.ChainIDEthereum, make([]byte, 40))
	assert.ErrorIs(t, err, attestation.ErrMalformedAttestation)
}

func Test_WrappedMintDependsOnTokenChain(t *testing.T) {
	var token vaaLib.Address
	token[31] = 0x01

	eth, err := WrappedMintKey(tokenBridge.Bytes(), vaaLib.ChainIDEthereum, token)
	require.NoError(t, err)
	bsc, err := WrappedMintKey(tokenBridge.Bytes(), vaaLib.ChainIDBSC, token)
	require.NoError(t, err)

	assert.NotEqual(t, eth, bsc)
}

func Test_ClaimUniqueness(t *testing.T) {
	sample := testutil.SampleAttestMeta()

	other := sample
	other.TokenChain = vaaLib.ChainIDBSC
	other.Symbol = "OTHER"
	other.Nonce = 99

	next := sample
	next.Sequence = sample.Sequence + 1

	claim := func(v testutil.AttestMetaVAA) solana.PublicKey {
		meta, err := attestation.FromSigned(v.Encode())
		require.NoError(t, err)
		set, err := DeriveCreateWrapped(samplePrograms(), meta)
		require.NoError(t, err)
		return set[RoleClaim]
	}

	assert.Equal(t, claim(sample), claim(other))
	assert.NotEqual(t, claim(sample), claim(next))
}

func Test_InvalidProgramID(t *testing.T) {
	var emitter vaaLib.Address

	for _, id := range [][]byte{nil, make([]byte, 31), make([]byte, 33)} {
		_, err := ConfigKey(id)
		assert.ErrorIs(t, err, ErrInvalidProgramID)

		_, err = ClaimKey(id, emitter, vaaLib.ChainIDSolana, 1)
		assert.ErrorIs(t, err, ErrInvalidProgramID)

		_, err = PostedVAAKey(id, [32]byte{})
		assert.ErrorIs(t, err, ErrInvalidProgramID)

		_, err = TokenMetadataKey(id, solana.PublicKey{})
		assert.ErrorIs(t, err, ErrInvalidProgramID)
	}

	programs := samplePrograms()
	programs.CoreBridge = []byte{1, 2, 3}
	set, err := DeriveCreateWrapped(programs, sampleMeta(t))
	assert.ErrorIs(t, err, ErrInvalidProgramID)
	assert.Nil(t, set)
}
