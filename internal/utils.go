package internal

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	vaaLib "github.com/wormhole-foundation/wormhole/sdk/vaa"
)

// computeVAAKey computes a unique key for a VAA based on its bytes
func computeVAAKey(vaaBytes []byte) string {
	hash := sha256.Sum256(vaaBytes)
	return hex.EncodeToString(hash[:])
}

// normalizeEmitter lowercases a hex emitter address, drops any 0x prefix and
// left-pads it to 32 bytes.
func normalizeEmitter(addr string) string {
	addr = strings.ToLower(strings.TrimPrefix(addr, "0x"))
	if len(addr) < 64 {
		addr = strings.Repeat("0", 64-len(addr)) + addr
	}
	return addr
}

// isAttestation reports whether a VAA payload carries a token attestation
func isAttestation(payload []byte) bool {
	return len(payload) > 0 && payload[0] == 2
}

func chainName(chain uint16) string {
	return vaaLib.ChainID(chain).String()
}
