package attestation

import (
	"encoding/binary"
	"encoding/hex"
	"time"

	"github.com/pkg/errors"
	vaaLib "github.com/wormhole-foundation/wormhole/sdk/vaa"
	"go.uber.org/zap"
)

const (
	// version (1) + guardian set index (4) + signature count (1)
	headerLength = 6
	// guardian index (1) + r, s, v (65)
	signatureSize = 66
	// timestamp (4) + nonce (4) + emitter chain (2) + emitter address (32) + sequence (8) + consistency (1)
	bodyHeaderLength = 51
)

// ParseVAAPermissive parses a signed VAA without being strict about version.
// Both v1 and v2 VAAs share the header layout this relayer cares about; the
// guardian signatures are not checked here, the core bridge does that on chain.
func ParseVAAPermissive(data []byte) (*vaaLib.VAA, error) {
	v, _, err := parseSigned(data)
	return v, err
}

// parseSigned decodes the VAA header and returns it together with the raw
// body (timestamp through the end of the payload).
func parseSigned(data []byte) (*vaaLib.VAA, []byte, error) {
	if len(data) < headerLength {
		return nil, nil, errors.Wrapf(ErrMalformedAttestation, "VAA too short: %d bytes", len(data))
	}

	version := data[0]
	if version != 1 && version != 2 {
		return nil, nil, errors.Wrapf(ErrMalformedAttestation, "unsupported VAA version: %d", version)
	}

	guardianSetIndex := binary.BigEndian.Uint32(data[1:5])
	signatureCount := int(data[5])
	signaturesEnd := headerLength + signatureCount*signatureSize

	if len(data) < signaturesEnd {
		return nil, nil, errors.Wrapf(ErrMalformedAttestation, "VAA too short for %d signatures", signatureCount)
	}

	body := data[signaturesEnd:]
	if len(body) < bodyHeaderLength {
		return nil, nil, errors.Wrapf(ErrMalformedAttestation, "VAA body too short: %d bytes", len(body))
	}

	signatures := make([]*vaaLib.Signature, signatureCount)
	for i := 0; i < signatureCount; i++ {
		sigStart := headerLength + i*signatureSize
		var sig [65]byte
		copy(sig[:], data[sigStart+1:sigStart+signatureSize])
		signatures[i] = &vaaLib.Signature{
			Index:     data[sigStart],
			Signature: sig,
		}
	}

	var emitterAddress vaaLib.Address
	copy(emitterAddress[:], body[10:42])

	return &vaaLib.VAA{
		Version:          version,
		GuardianSetIndex: guardianSetIndex,
		Signatures:       signatures,
		Timestamp:        time.Unix(int64(binary.BigEndian.Uint32(body[0:4])), 0),
		Nonce:            binary.BigEndian.Uint32(body[4:8]),
		EmitterChain:     vaaLib.ChainID(binary.BigEndian.Uint16(body[8:10])),
		EmitterAddress:   emitterAddress,
		Sequence:         binary.BigEndian.Uint64(body[42:50]),
		ConsistencyLevel: body[50],
		Payload:          body[bodyHeaderLength:],
	}, body, nil
}

// LogVAA logs the header fields of a VAA for debugging
func LogVAA(logger *zap.Logger, v *vaaLib.VAA) {
	logger.Debug("VAA header",
		zap.Uint8("version", v.Version),
		zap.Uint32("guardianSetIndex", v.GuardianSetIndex),
		zap.Int("signatureCount", len(v.Signatures)),
		zap.Time("timestamp", v.Timestamp),
		zap.Uint32("nonce", v.Nonce),
		zap.Uint64("sequence", v.Sequence),
		zap.Uint8("consistencyLevel", v.ConsistencyLevel),
		zap.Uint16("emitterChain", uint16(v.EmitterChain)),
		zap.String("emitterAddress", hex.EncodeToString(v.EmitterAddress[:])),
		zap.Int("payloadLength", len(v.Payload)),
	)
}
