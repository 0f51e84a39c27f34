package cmd

import (
	"bytes"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wormhole-demo/token-bridge-relayer/internal/testutil"
	"github.com/wormhole-demo/token-bridge-relayer/internal/tokenbridge"
)

func Test_DecodeVAA(t *testing.T) {
	raw := testutil.SampleAttestMeta().Encode()

	for name, encoded := range map[string]string{
		"hex":        hex.EncodeToString(raw),
		"prefixed":   "0x" + hex.EncodeToString(raw),
		"base64":     base64.StdEncoding.EncodeToString(raw),
		"whitespace": "  " + hex.EncodeToString(raw) + "\n",
	} {
		t.Run(name, func(t *testing.T) {
			got, err := decodeVAA(encoded)
			require.NoError(t, err)
			assert.Equal(t, raw, got)
		})
	}

	_, err := decodeVAA("not a vaa!")
	assert.Error(t, err)
}

func Test_ResolvePayer(t *testing.T) {
	key, err := solana.NewRandomPrivateKey()
	require.NoError(t, err)

	payer, err := resolvePayer("", key.String())
	require.NoError(t, err)
	assert.Equal(t, key.PublicKey(), payer)

	explicit := solana.SysVarRentPubkey
	payer, err = resolvePayer(explicit.String(), key.String())
	require.NoError(t, err)
	assert.Equal(t, explicit, payer)

	_, err = resolvePayer("", "")
	assert.Error(t, err)
}

func Test_ParseEmitters(t *testing.T) {
	emitters, filters, err := parseEmitters(map[string]string{
		"2": "0x3ee18B2214AFF97000D974cf647E7C347E8fa585",
	})
	require.NoError(t, err)

	assert.Equal(t, "0000000000000000000000003ee18b2214aff97000d974cf647e7c347e8fa585", emitters[2])
	require.Len(t, filters, 1)
	assert.Equal(t, emitters[2], filters[0].Address.String())

	_, _, err = parseEmitters(nil)
	assert.Error(t, err)

	_, _, err = parseEmitters(map[string]string{"70000": "0x01"})
	assert.Error(t, err)
}

func Test_CreateWrappedCommand(t *testing.T) {
	raw := testutil.SampleAttestMeta().Encode()
	payer := solana.MustPublicKeyFromBase58("9WzDXwBbmkg8ZTbNMqUxvQRAyrZzDsGYdLVL9zYtAWWM")

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"create-wrapped", "--vaa", hex.EncodeToString(raw), "--payer", payer.String()})
	require.NoError(t, rootCmd.Execute())

	var got createWrappedOutput
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))

	assert.Equal(t, tokenbridge.DefaultTokenBridgeProgramID.String(), got.ProgramID)
	assert.Equal(t, uint8(7), got.EntryPoint)
	assert.Equal(t, "WETH", got.Symbol)
	require.Len(t, got.Accounts, 14)
	assert.Equal(t, accountOutput{Name: "payer", Address: payer.String(), IsSigner: true, IsWritable: true}, got.Accounts[0])
	assert.Equal(t, "mint", got.Accounts[5].Name)
	assert.False(t, got.Accounts[5].IsSigner)
	assert.True(t, got.Accounts[5].IsWritable)
	assert.Equal(t, "wormhole_program", got.Accounts[13].Name)
}
