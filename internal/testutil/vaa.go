package testutil

import (
	"encoding/binary"

	vaaLib "github.com/wormhole-foundation/wormhole/sdk/vaa"
)

// AttestMetaVAA describes a signed token attestation to encode for tests.
type AttestMetaVAA struct {
	Signatures     int
	Timestamp      uint32
	Nonce          uint32
	EmitterChain   vaaLib.ChainID
	EmitterAddress vaaLib.Address
	Sequence       uint64
	TokenChain     vaaLib.ChainID
	TokenAddress   vaaLib.Address
	Decimals       uint8
	Symbol         string
	Name           string
}

// SampleAttestMeta returns the attestation used across package tests:
// token chain 2, token address 0x00..01, emitter chain 1, sequence 42.
func SampleAttestMeta() AttestMetaVAA {
	var tokenAddress vaaLib.Address
	tokenAddress[31] = 0x01

	var emitter vaaLib.Address
	for i := range emitter {
		emitter[i] = 0xEC
	}

	return AttestMetaVAA{
		Signatures:     1,
		Timestamp:      1700000000,
		Nonce:          7,
		EmitterChain:   vaaLib.ChainIDSolana,
		EmitterAddress: emitter,
		Sequence:       42,
		TokenChain:     vaaLib.ChainIDEthereum,
		TokenAddress:   tokenAddress,
		Decimals:       8,
		Symbol:         "WETH",
		Name:           "Wrapped Ether",
	}
}

// Payload encodes the token bridge attestation payload.
func (a AttestMetaVAA) Payload() []byte {
	payload := make([]byte, 100)
	payload[0] = 2
	copy(payload[1:33], a.TokenAddress[:])
	binary.BigEndian.PutUint16(payload[33:35], uint16(a.TokenChain))
	payload[35] = a.Decimals
	copy(payload[36:68], a.Symbol)
	copy(payload[68:100], a.Name)
	return payload
}

// Body encodes the VAA body around payload.
func (a AttestMetaVAA) Body(payload []byte) []byte {
	body := make([]byte, 51, 51+len(payload))
	binary.BigEndian.PutUint32(body[0:4], a.Timestamp)
	binary.BigEndian.PutUint32(body[4:8], a.Nonce)
	binary.BigEndian.PutUint16(body[8:10], uint16(a.EmitterChain))
	copy(body[10:42], a.EmitterAddress[:])
	binary.BigEndian.PutUint64(body[42:50], a.Sequence)
	body[50] = 1
	return append(body, payload...)
}

// Encode returns the signed VAA bytes with dummy guardian signatures.
func (a AttestMetaVAA) Encode() []byte {
	return a.EncodeWithPayload(a.Payload())
}

// EncodeWithPayload is Encode with an arbitrary payload.
func (a AttestMetaVAA) EncodeWithPayload(payload []byte) []byte {
	out := []byte{1, 0, 0, 0, 0, byte(a.Signatures)}
	for i := 0; i < a.Signatures; i++ {
		sig := make([]byte, 66)
		sig[0] = byte(i)
		for j := 1; j < len(sig); j++ {
			sig[j] = byte(i + j)
		}
		out = append(out, sig...)
	}
	return append(out, a.Body(payload)...)
}
