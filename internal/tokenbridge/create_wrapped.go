package tokenbridge

import (
	"github.com/gagliardetto/solana-go"
	"github.com/pkg/errors"

	"github.com/wormhole-demo/token-bridge-relayer/internal/attestation"
	"github.com/wormhole-demo/token-bridge-relayer/internal/pda"
)

var ErrMissingAccount = errors.New("missing account")

// EntryPoint is a token bridge instruction index.
type EntryPoint uint8

const EntryPointCreateWrapped EntryPoint = 7

// CreateWrappedAccounts lists the accounts of the create_wrapped instruction.
type CreateWrappedAccounts struct {
	Payer              solana.PublicKey
	Config             solana.PublicKey
	Endpoint           solana.PublicKey
	VAA                solana.PublicKey
	Claim              solana.PublicKey
	Mint               solana.PublicKey
	WrappedMeta        solana.PublicKey
	SplMetadata        solana.PublicKey
	MintAuthority      solana.PublicKey
	Rent               solana.PublicKey
	SystemProgram      solana.PublicKey
	TokenProgram       solana.PublicKey
	SplMetadataProgram solana.PublicKey
	WormholeProgram    solana.PublicKey
}

// GetCreateWrappedAccounts derives the create_wrapped accounts for a parsed attestation.
func GetCreateWrappedAccounts(cfg Config, payer solana.PublicKey, meta *attestation.AttestMeta) (*CreateWrappedAccounts, error) {
	set, err := pda.DeriveCreateWrapped(cfg.programs(), meta)
	if err != nil {
		return nil, err
	}
	return NewCreateWrappedAccounts(cfg, payer, set)
}

// GetCreateWrappedAccountsFromSigned is GetCreateWrappedAccounts for a signed VAA.
func GetCreateWrappedAccountsFromSigned(cfg Config, payer solana.PublicKey, vaaBytes []byte) (*CreateWrappedAccounts, error) {
	meta, err := attestation.FromSigned(vaaBytes)
	if err != nil {
		return nil, err
	}
	return GetCreateWrappedAccounts(cfg, payer, meta)
}

// NewCreateWrappedAccounts places a derived address set and the program ids
// into the create_wrapped account layout. Nothing is defaulted: an absent
// address or program id fails with ErrMissingAccount.
func NewCreateWrappedAccounts(cfg Config, payer solana.PublicKey, set pda.Set) (*CreateWrappedAccounts, error) {
	if payer.IsZero() {
		return nil, errors.Wrap(ErrMissingAccount, "payer")
	}

	accounts := &CreateWrappedAccounts{Payer: payer}

	derived := []struct {
		role pda.Role
		dst  *solana.PublicKey
	}{
		{pda.RoleConfig, &accounts.Config},
		{pda.RoleEndpoint, &accounts.Endpoint},
		{pda.RolePostedVAA, &accounts.VAA},
		{pda.RoleClaim, &accounts.Claim},
		{pda.RoleMint, &accounts.Mint},
		{pda.RoleWrappedMeta, &accounts.WrappedMeta},
		{pda.RoleTokenMetadata, &accounts.SplMetadata},
		{pda.RoleMintAuthority, &accounts.MintAuthority},
	}
	for _, d := range derived {
		addr, ok := set[d.role]
		if !ok || addr.IsZero() {
			return nil, errors.Wrapf(ErrMissingAccount, "%s", d.role)
		}
		*d.dst = addr
	}

	programs := []struct {
		name string
		id   []byte
		dst  *solana.PublicKey
	}{
		{"rent", cfg.RentSysvarID, &accounts.Rent},
		{"system program", cfg.SystemProgramID, &accounts.SystemProgram},
		{"token program", cfg.TokenProgramID, &accounts.TokenProgram},
		{"token metadata program", cfg.TokenMetadataProgramID, &accounts.SplMetadataProgram},
		{"core bridge program", cfg.CoreBridgeProgramID, &accounts.WormholeProgram},
	}
	for _, p := range programs {
		if len(p.id) == 0 {
			return nil, errors.Wrapf(ErrMissingAccount, "%s", p.name)
		}
		id, err := pda.ProgramID(p.id)
		if err != nil {
			return nil, errors.Wrapf(err, "%s", p.name)
		}
		*p.dst = id
	}

	return accounts, nil
}

// AccountMetas returns the accounts in the order the token bridge resolves them.
func (a *CreateWrappedAccounts) AccountMetas() solana.AccountMetaSlice {
	return solana.AccountMetaSlice{
		{PublicKey: a.Payer, IsSigner: true, IsWritable: true},                // payer
		{PublicKey: a.Config, IsSigner: false, IsWritable: false},             // config
		{PublicKey: a.Endpoint, IsSigner: false, IsWritable: false},           // endpoint
		{PublicKey: a.VAA, IsSigner: false, IsWritable: false},                // vaa
		{PublicKey: a.Claim, IsSigner: false, IsWritable: true},               // claim
		{PublicKey: a.Mint, IsSigner: false, IsWritable: true},                // mint
		{PublicKey: a.WrappedMeta, IsSigner: false, IsWritable: true},         // wrapped_meta
		{PublicKey: a.SplMetadata, IsSigner: false, IsWritable: true},         // spl_metadata
		{PublicKey: a.MintAuthority, IsSigner: false, IsWritable: false},      // mint_authority
		{PublicKey: a.Rent, IsSigner: false, IsWritable: false},               // rent
		{PublicKey: a.SystemProgram, IsSigner: false, IsWritable: false},      // system_program
		{PublicKey: a.TokenProgram, IsSigner: false, IsWritable: false},       // token_program
		{PublicKey: a.SplMetadataProgram, IsSigner: false, IsWritable: false}, // spl_metadata_program
		{PublicKey: a.WormholeProgram, IsSigner: false, IsWritable: false},    // wormhole_program
	}
}
