package cmd

import (
	"context"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/gagliardetto/solana-go"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/wormhole-demo/token-bridge-relayer/internal/attestation"
	"github.com/wormhole-demo/token-bridge-relayer/internal/clients"
	"github.com/wormhole-demo/token-bridge-relayer/internal/submitter"
	"github.com/wormhole-demo/token-bridge-relayer/internal/tokenbridge"
)

var createWrappedCmd = &cobra.Command{
	Use:   "create-wrapped",
	Short: "Build (and optionally submit) create_wrapped for a token attestation VAA",
	Long: `Derives every account the Solana Token Bridge needs to register the wrapped
asset described by a signed token attestation VAA and prints the instruction.

With --submit the VAA is posted to the Core Bridge if needed and the instruction
is sent with the configured payer.`,
	RunE: runCreateWrapped,
}

func init() {
	rootCmd.AddCommand(createWrappedCmd)

	createWrappedCmd.Flags().String(
		"vaa",
		"",
		"Signed attestation VAA, hex or base64 encoded (required)")

	createWrappedCmd.Flags().String(
		"payer",
		"",
		"Payer public key (defaults to the key of --solana-private-key)")

	createWrappedCmd.Flags().Bool(
		"submit",
		false,
		"Post the VAA and send the transaction")

	createWrappedCmd.MarkFlagRequired("vaa")
}

type accountOutput struct {
	Name       string `json:"name"`
	Address    string `json:"address"`
	IsSigner   bool   `json:"isSigner"`
	IsWritable bool   `json:"isWritable"`
}

type createWrappedOutput struct {
	ProgramID  string          `json:"programId"`
	EntryPoint uint8           `json:"entryPoint"`
	Data       string          `json:"data"`
	TokenChain uint16          `json:"tokenChain"`
	Symbol     string          `json:"symbol"`
	Name       string          `json:"name"`
	Accounts   []accountOutput `json:"accounts"`
	Signature  string          `json:"signature,omitempty"`
}

var accountNames = []string{
	"payer", "config", "endpoint", "vaa", "claim", "mint", "wrapped_meta", "spl_metadata",
	"mint_authority", "rent", "system_program", "token_program", "spl_metadata_program", "wormhole_program",
}

func runCreateWrapped(cmd *cobra.Command, args []string) error {
	logger := configureLogging(cmd, args)

	vaaFlag, _ := cmd.Flags().GetString("vaa")
	payerFlag, _ := cmd.Flags().GetString("payer")
	submit, _ := cmd.Flags().GetBool("submit")

	vaaBytes, err := decodeVAA(vaaFlag)
	if err != nil {
		return err
	}

	meta, err := attestation.FromSigned(vaaBytes)
	if err != nil {
		return err
	}
	attestation.LogAttestMeta(logger, meta)

	bridge, err := bridgeConfig()
	if err != nil {
		return err
	}

	payer, err := resolvePayer(payerFlag, viper.GetString("solana_private_key"))
	if err != nil {
		return err
	}

	accounts, err := tokenbridge.GetCreateWrappedAccounts(bridge, payer, meta)
	if err != nil {
		return err
	}
	submitter.LogAccounts(logger, accounts)

	call, err := accounts.Call(bridge)
	if err != nil {
		return err
	}

	out := createWrappedOutput{
		ProgramID:  call.ProgramID.String(),
		EntryPoint: uint8(call.EntryPoint),
		Data:       hex.EncodeToString([]byte{byte(call.EntryPoint)}),
		TokenChain: uint16(meta.TokenChain),
		Symbol:     meta.Symbol,
		Name:       meta.Name,
	}
	for i, account := range call.Accounts {
		out.Accounts = append(out.Accounts, accountOutput{
			Name:       accountNames[i],
			Address:    account.PublicKey.String(),
			IsSigner:   account.IsSigner,
			IsWritable: account.IsWritable,
		})
	}

	if submit {
		sig, err := submitCreateWrapped(logger, bridge, vaaBytes)
		if err != nil {
			return err
		}
		out.Signature = sig
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func submitCreateWrapped(logger *zap.Logger, bridge tokenbridge.Config, vaaBytes []byte) (string, error) {
	privateKey := viper.GetString("solana_private_key")
	if privateKey == "" {
		return "", fmt.Errorf("Solana private key is required to submit")
	}

	solanaClient, err := clients.NewSolanaClient(
		logger,
		viper.GetString("solana_rpc_url"),
		privateKey,
		bridge,
		viper.GetString("vaa_service_url"),
	)
	if err != nil {
		return "", fmt.Errorf("failed to create Solana client: %v", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	return submitter.NewSolanaSubmitter(logger, solanaClient).SubmitVAA(ctx, vaaBytes)
}

// resolvePayer returns the explicit payer or the public key of privateKey
func resolvePayer(payer, privateKey string) (solana.PublicKey, error) {
	if payer != "" {
		pk, err := solana.PublicKeyFromBase58(payer)
		if err != nil {
			return solana.PublicKey{}, fmt.Errorf("invalid payer: %v", err)
		}
		return pk, nil
	}
	if privateKey == "" {
		return solana.PublicKey{}, fmt.Errorf("either --payer or --solana-private-key is required")
	}
	key, err := solana.PrivateKeyFromBase58(privateKey)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("invalid private key: %v", err)
	}
	return key.PublicKey(), nil
}

// decodeVAA accepts hex (with or without 0x) or standard base64
func decodeVAA(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if raw, err := hex.DecodeString(strings.TrimPrefix(s, "0x")); err == nil {
		return raw, nil
	}
	raw, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("VAA is neither hex nor base64")
	}
	return raw, nil
}
