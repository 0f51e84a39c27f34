package pda

import (
	"github.com/gagliardetto/solana-go"
	"github.com/pkg/errors"

	"github.com/wormhole-demo/token-bridge-relayer/internal/attestation"
)

// Role names a derived account.
type Role string

const (
	RoleConfig        Role = "config"
	RoleEndpoint      Role = "endpoint"
	RolePostedVAA     Role = "vaa"
	RoleClaim         Role = "claim"
	RoleMint          Role = "mint"
	RoleWrappedMeta   Role = "wrapped-meta"
	RoleTokenMetadata Role = "token-metadata"
	RoleMintAuthority Role = "mint-authority"
)

// Set maps roles to derived addresses.
type Set map[Role]solana.PublicKey

// Programs holds the raw ids of the programs that own the derived accounts.
type Programs struct {
	TokenBridge   []byte
	CoreBridge    []byte
	TokenMetadata []byte
}

// DeriveCreateWrapped derives every account create_wrapped needs for meta.
func DeriveCreateWrapped(programs Programs, meta *attestation.AttestMeta) (Set, error) {
	if meta == nil {
		return nil, errors.Wrap(attestation.ErrMalformedAttestation, "nil attestation")
	}

	mint, err := WrappedMintKey(programs.TokenBridge, meta.TokenChain, meta.TokenAddress)
	if err != nil {
		return nil, err
	}

	set := Set{RoleMint: mint}
	derivations := []struct {
		role   Role
		derive func() (solana.PublicKey, error)
	}{
		{RoleConfig, func() (solana.PublicKey, error) { return ConfigKey(programs.TokenBridge) }},
		{RoleEndpoint, func() (solana.PublicKey, error) {
			return EndpointKey(programs.TokenBridge, meta.EmitterChain, meta.EmitterAddress)
		}},
		{RolePostedVAA, func() (solana.PublicKey, error) { return PostedVAAKey(programs.CoreBridge, meta.Hash) }},
		{RoleClaim, func() (solana.PublicKey, error) {
			return ClaimKey(programs.TokenBridge, meta.EmitterAddress, meta.EmitterChain, meta.Sequence)
		}},
		{RoleWrappedMeta, func() (solana.PublicKey, error) { return WrappedMetaKey(programs.TokenBridge, mint) }},
		{RoleTokenMetadata, func() (solana.PublicKey, error) { return TokenMetadataKey(programs.TokenMetadata, mint) }},
		{RoleMintAuthority, func() (solana.PublicKey, error) { return MintAuthorityKey(programs.TokenBridge) }},
	}

	for _, d := range derivations {
		addr, err := d.derive()
		if err != nil {
			return nil, err
		}
		set[d.role] = addr
	}
	return set, nil
}
