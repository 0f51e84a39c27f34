package internal

import (
	vaaLib "github.com/wormhole-foundation/wormhole/sdk/vaa"
)

type VAAData struct {
	VAA        *vaaLib.VAA // The parsed VAA header
	RawBytes   []byte      // Raw VAA bytes
	ChainID    uint16      // Source chain ID
	EmitterHex string      // Hex-encoded emitter address
	Sequence   uint64      // VAA sequence number
}
