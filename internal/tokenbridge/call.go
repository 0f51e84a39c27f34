package tokenbridge

import (
	"github.com/gagliardetto/solana-go"
	"github.com/pkg/errors"

	"github.com/wormhole-demo/token-bridge-relayer/internal/attestation"
	"github.com/wormhole-demo/token-bridge-relayer/internal/pda"
)

// CallDescriptor is a token bridge invocation ready to be handed to a
// transport. It carries no extra signers and no surrounding instructions.
type CallDescriptor struct {
	ProgramID  solana.PublicKey
	EntryPoint EntryPoint
	Accounts   solana.AccountMetaSlice
}

// Instruction encodes the call. create_wrapped takes no arguments, so the
// data is the entry point index alone.
func (c *CallDescriptor) Instruction() *solana.GenericInstruction {
	return solana.NewInstruction(c.ProgramID, c.Accounts, []byte{byte(c.EntryPoint)})
}

// NewCreateWrappedCall builds the create_wrapped call for an attestation.
func NewCreateWrappedCall(cfg Config, payer solana.PublicKey, meta *attestation.AttestMeta) (*CallDescriptor, error) {
	accounts, err := GetCreateWrappedAccounts(cfg, payer, meta)
	if err != nil {
		return nil, err
	}
	return accounts.Call(cfg)
}

// NewCreateWrappedCallFromSigned is NewCreateWrappedCall for a signed VAA.
func NewCreateWrappedCallFromSigned(cfg Config, payer solana.PublicKey, vaaBytes []byte) (*CallDescriptor, error) {
	meta, err := attestation.FromSigned(vaaBytes)
	if err != nil {
		return nil, err
	}
	return NewCreateWrappedCall(cfg, payer, meta)
}

// Call packages the accounts into a create_wrapped call on the token bridge.
func (a *CreateWrappedAccounts) Call(cfg Config) (*CallDescriptor, error) {
	if len(cfg.TokenBridgeProgramID) == 0 {
		return nil, errors.Wrap(ErrMissingAccount, "token bridge program")
	}
	program, err := pda.ProgramID(cfg.TokenBridgeProgramID)
	if err != nil {
		return nil, err
	}
	return &CallDescriptor{
		ProgramID:  program,
		EntryPoint: EntryPointCreateWrapped,
		Accounts:   a.AccountMetas(),
	}, nil
}
