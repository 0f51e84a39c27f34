// Package pda derives the program derived addresses the Solana token bridge
// and core bridge compute for a token attestation redemption.
//
// Every function takes the owning program id as raw bytes and fails with
// ErrInvalidProgramID before hashing if it is not 32 bytes long. Integers are
// encoded big-endian; universal addresses are always 32 bytes, left padded.
package pda

import (
	"encoding/binary"

	"github.com/gagliardetto/solana-go"
	"github.com/pkg/errors"
	vaaLib "github.com/wormhole-foundation/wormhole/sdk/vaa"

	"github.com/wormhole-demo/token-bridge-relayer/internal/attestation"
)

var ErrInvalidProgramID = errors.New("invalid program id")

// Token bridge seeds
var (
	SeedConfig      = []byte("config")
	SeedEndpoint    = []byte("Endpoint")
	SeedWrapped     = []byte("wrapped")
	SeedWrappedMeta = []byte("meta")
	SeedMintSigner  = []byte("mint_signer")
)

// Core bridge seeds
var (
	SeedPostedVAA = []byte("PostedVAA")
)

// Token metadata program seeds
var (
	SeedMetadata = []byte("metadata")
)

// ProgramID validates raw program id bytes.
func ProgramID(b []byte) (solana.PublicKey, error) {
	if len(b) != solana.PublicKeyLength {
		return solana.PublicKey{}, errors.Wrapf(ErrInvalidProgramID, "expected %d bytes, got %d", solana.PublicKeyLength, len(b))
	}
	return solana.PublicKeyFromBytes(b), nil
}

func derive(role Role, programID []byte, seeds ...[]byte) (solana.PublicKey, error) {
	program, err := ProgramID(programID)
	if err != nil {
		return solana.PublicKey{}, errors.Wrapf(err, "%s", role)
	}
	addr, _, err := solana.FindProgramAddress(seeds, program)
	if err != nil {
		return solana.PublicKey{}, errors.Wrapf(err, "failed to derive %s PDA", role)
	}
	return addr, nil
}

func chainBytes(chain vaaLib.ChainID) []byte {
	b := make([]byte, 2)
	binary.BigEndian.PutUint16(b, uint16(chain))
	return b
}

// ConfigKey derives the token bridge config account.
func ConfigKey(tokenBridgeProgramID []byte) (solana.PublicKey, error) {
	return derive(RoleConfig, tokenBridgeProgramID, SeedConfig)
}

// EndpointKey derives the registered foreign emitter account for a chain.
func EndpointKey(tokenBridgeProgramID []byte, emitterChain vaaLib.ChainID, emitterAddress vaaLib.Address) (solana.PublicKey, error) {
	return derive(RoleEndpoint, tokenBridgeProgramID, SeedEndpoint, chainBytes(emitterChain), emitterAddress[:])
}

// ClaimKey derives the replay protection account for a message. Only the
// message origin and sequence go into the seeds.
func ClaimKey(tokenBridgeProgramID []byte, emitterAddress vaaLib.Address, emitterChain vaaLib.ChainID, sequence uint64) (solana.PublicKey, error) {
	seq := make([]byte, 8)
	binary.BigEndian.PutUint64(seq, sequence)
	return derive(RoleClaim, tokenBridgeProgramID, emitterAddress[:], chainBytes(emitterChain), seq)
}

// WrappedMintKey derives the mint of the wrapped representation of a foreign token.
func WrappedMintKey(tokenBridgeProgramID []byte, tokenChain vaaLib.ChainID, tokenAddress vaaLib.Address) (solana.PublicKey, error) {
	return derive(RoleMint, tokenBridgeProgramID, SeedWrapped, chainBytes(tokenChain), tokenAddress[:])
}

// WrappedMintKeyNative is WrappedMintKey for a token address in its native,
// possibly shorter, width.
func WrappedMintKeyNative(tokenBridgeProgramID []byte, tokenChain vaaLib.ChainID, nativeAddress []byte) (solana.PublicKey, error) {
	tokenAddress, err := attestation.PadAddress(nativeAddress)
	if err != nil {
		return solana.PublicKey{}, err
	}
	return WrappedMintKey(tokenBridgeProgramID, tokenChain, tokenAddress)
}

// WrappedMetaKey derives the token bridge's record of the wrapped mint origin.
func WrappedMetaKey(tokenBridgeProgramID []byte, mint solana.PublicKey) (solana.PublicKey, error) {
	return derive(RoleWrappedMeta, tokenBridgeProgramID, SeedWrappedMeta, mint.Bytes())
}

// MintAuthorityKey derives the token bridge mint authority.
func MintAuthorityKey(tokenBridgeProgramID []byte) (solana.PublicKey, error) {
	return derive(RoleMintAuthority, tokenBridgeProgramID, SeedMintSigner)
}

// PostedVAAKey derives the core bridge account holding a verified message.
func PostedVAAKey(coreBridgeProgramID []byte, hash [32]byte) (solana.PublicKey, error) {
	return derive(RolePostedVAA, coreBridgeProgramID, SeedPostedVAA, hash[:])
}

// TokenMetadataKey derives the token metadata account for a mint.
func TokenMetadataKey(metadataProgramID []byte, mint solana.PublicKey) (solana.PublicKey, error) {
	return derive(RoleTokenMetadata, metadataProgramID, SeedMetadata, metadataProgramID, mint.Bytes())
}
