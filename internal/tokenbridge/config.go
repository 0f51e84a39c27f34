package tokenbridge

import (
	"github.com/gagliardetto/solana-go"

	"github.com/wormhole-demo/token-bridge-relayer/internal/pda"
)

// Devnet deployments
var (
	DefaultTokenBridgeProgramID = solana.MustPublicKeyFromBase58("DZnkkTmCiFWfYTfT41X3Rd1kDgozqzxWaHqsw6W4x2oe")
	DefaultCoreBridgeProgramID  = solana.MustPublicKeyFromBase58("3u8hJUVTA4jH1wYAyUur7FFZVQ8H635K3tSHHF4ssjQ5")
)

// Config holds the raw ids of every program the create_wrapped call touches.
type Config struct {
	TokenBridgeProgramID   []byte
	CoreBridgeProgramID    []byte
	TokenMetadataProgramID []byte
	TokenProgramID         []byte
	SystemProgramID        []byte
	RentSysvarID           []byte
}

// NewConfig returns a Config for the given bridge deployments using the
// well-known ids for the remaining programs.
func NewConfig(tokenBridge, coreBridge solana.PublicKey) Config {
	return Config{
		TokenBridgeProgramID:   tokenBridge.Bytes(),
		CoreBridgeProgramID:    coreBridge.Bytes(),
		TokenMetadataProgramID: solana.TokenMetadataProgramID.Bytes(),
		TokenProgramID:         solana.TokenProgramID.Bytes(),
		SystemProgramID:        solana.SystemProgramID.Bytes(),
		RentSysvarID:           solana.SysVarRentPubkey.Bytes(),
	}
}

// DefaultConfig returns the devnet Config.
func DefaultConfig() Config {
	return NewConfig(DefaultTokenBridgeProgramID, DefaultCoreBridgeProgramID)
}

func (c Config) programs() pda.Programs {
	return pda.Programs{
		TokenBridge:   c.TokenBridgeProgramID,
		CoreBridge:    c.CoreBridgeProgramID,
		TokenMetadata: c.TokenMetadataProgramID,
	}
}
