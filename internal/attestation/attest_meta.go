package attestation

import (
	"bytes"
	"encoding/binary"
	"encoding/hex"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"
	vaaLib "github.com/wormhole-foundation/wormhole/sdk/vaa"
	"go.uber.org/zap"
)

var ErrMalformedAttestation = errors.New("malformed attestation")

// PayloadIDAttestMeta is the token bridge payload discriminant for a token attestation.
const PayloadIDAttestMeta uint8 = 2

// payload id (1) + token address (32) + token chain (2) + decimals (1) + symbol (32) + name (32)
const attestMetaLength = 100

// AttestMeta is a token attestation together with the VAA fields needed to
// redeem it. Values are never mutated after parsing.
type AttestMeta struct {
	EmitterChain   vaaLib.ChainID
	EmitterAddress vaaLib.Address
	Sequence       uint64
	// Keccak256 of the VAA body; seeds the core bridge PostedVAA account.
	Hash common.Hash

	TokenChain   vaaLib.ChainID
	TokenAddress vaaLib.Address
	Decimals     uint8
	Symbol       string
	Name         string

	// Zero means the attestation is valid on every chain. The token bridge
	// attestation payload does not carry a target, so parsed records are
	// always zero here.
	TargetChain vaaLib.ChainID
}

// IsForChain reports whether the attestation may be redeemed on chain.
func (a *AttestMeta) IsForChain(chain vaaLib.ChainID) bool {
	return a.TargetChain == 0 || a.TargetChain == chain
}

// FromSigned decodes a signed VAA carrying a token attestation.
func FromSigned(data []byte) (*AttestMeta, error) {
	v, body, err := parseSigned(data)
	if err != nil {
		return nil, err
	}

	meta, err := ParseAttestMetaPayload(v.Payload)
	if err != nil {
		return nil, err
	}

	meta.EmitterChain = v.EmitterChain
	meta.EmitterAddress = v.EmitterAddress
	meta.Sequence = v.Sequence
	meta.Hash = crypto.Keccak256Hash(body)
	return meta, nil
}

// ParseAttestMetaPayload decodes the token bridge attestation payload.
// Only the token fields are populated.
//
// Layout:
//
//	0:      payload id (2)
//	1-32:   token address
//	33-34:  token chain (big-endian)
//	35:     decimals
//	36-67:  symbol, zero padded
//	68-99:  name, zero padded
func ParseAttestMetaPayload(payload []byte) (*AttestMeta, error) {
	if len(payload) == 0 {
		return nil, errors.Wrap(ErrMalformedAttestation, "empty payload")
	}
	if payload[0] != PayloadIDAttestMeta {
		return nil, errors.Wrapf(ErrMalformedAttestation, "unexpected payload id %d, want %d", payload[0], PayloadIDAttestMeta)
	}
	if len(payload) < attestMetaLength {
		return nil, errors.Wrapf(ErrMalformedAttestation, "attestation payload too short: %d bytes", len(payload))
	}

	meta := &AttestMeta{
		TokenChain: vaaLib.ChainID(binary.BigEndian.Uint16(payload[33:35])),
		Decimals:   payload[35],
		Symbol:     fixedString(payload[36:68]),
		Name:       fixedString(payload[68:100]),
	}
	copy(meta.TokenAddress[:], payload[1:33])
	return meta, nil
}

// PadAddress left-pads a native address to the 32 byte universal form.
func PadAddress(native []byte) (vaaLib.Address, error) {
	addr, err := vaaLib.BytesToAddress(native)
	if err != nil {
		return vaaLib.Address{}, errors.Wrapf(ErrMalformedAttestation, "address of %d bytes: %v", len(native), err)
	}
	return addr, nil
}

func fixedString(b []byte) string {
	return string(bytes.TrimRight(b, "\x00"))
}

// LogAttestMeta logs all fields of a token attestation at debug level
func LogAttestMeta(logger *zap.Logger, meta *AttestMeta) {
	logger.Debug("Token attestation",
		zap.Uint16("emitterChain", uint16(meta.EmitterChain)),
		zap.String("emitterAddress", hex.EncodeToString(meta.EmitterAddress[:])),
		zap.Uint64("sequence", meta.Sequence),
		zap.String("hash", meta.Hash.Hex()),
		zap.Uint16("tokenChain", uint16(meta.TokenChain)),
		zap.String("tokenAddress", hex.EncodeToString(meta.TokenAddress[:])),
		zap.Uint8("decimals", meta.Decimals),
		zap.String("symbol", meta.Symbol),
		zap.String("name", meta.Name),
		zap.Uint16("targetChain", uint16(meta.TargetChain)))
}
