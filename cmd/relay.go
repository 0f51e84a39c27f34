package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	vaaLib "github.com/wormhole-foundation/wormhole/sdk/vaa"
	"go.uber.org/zap"

	"github.com/wormhole-demo/token-bridge-relayer/internal"
	"github.com/wormhole-demo/token-bridge-relayer/internal/clients"
	"github.com/wormhole-demo/token-bridge-relayer/internal/submitter"
)

// Wormhole chain ID for Solana
const SolanaDestinationChainID uint16 = 1

// relayCmd represents the command to redeem token attestations on Solana
var relayCmd = &cobra.Command{
	Use:   "relay",
	Short: "Redeem Wormhole token attestations on Solana",
	Long: `Listens for signed VAAs from the configured Token Bridge emitters and
registers every attested token as a wrapped asset on Solana.`,
	RunE: runRelay,
}

func init() {
	rootCmd.AddCommand(relayCmd)

	relayCmd.Flags().String(
		"spy-rpc-host",
		"localhost:7073",
		"Wormhole spy service endpoint")

	relayCmd.Flags().StringToString(
		"emitters",
		nil,
		"Token Bridge emitter per source chain, e.g. 2=0x0000...3ee18b2214aff97000d974cf647e7c347e8fa585 (required)")

	relayCmd.Flags().Bool(
		"strict-target",
		false,
		"Skip attestations whose target chain is neither zero nor Solana")

	viper.BindPFlag("spy_rpc_host", relayCmd.Flags().Lookup("spy-rpc-host"))
	viper.BindPFlag("strict_target", relayCmd.Flags().Lookup("strict-target"))
}

type RelayConfig struct {
	SpyRPCHost       string            // Wormhole spy service endpoint
	Emitters         map[uint16]string // Token Bridge emitter per source chain
	StrictTarget     bool              // Reject attestations targeted at other chains
	SolanaRPCURL     string            // RPC URL for Solana
	SolanaPrivateKey string            // Private key for Solana transactions (base58)
	VAAServiceURL    string            // URL for the VAA posting service
}

func runRelay(cmd *cobra.Command, args []string) error {
	logger := configureLogging(cmd, args)
	logger.Info("Starting token bridge relayer")

	// Read directly from the command, viper does not bind maps from flags
	rawEmitters, _ := cmd.Flags().GetStringToString("emitters")
	emitters, spyFilters, err := parseEmitters(rawEmitters)
	if err != nil {
		return err
	}

	config := RelayConfig{
		SpyRPCHost:       viper.GetString("spy_rpc_host"),
		Emitters:         emitters,
		StrictTarget:     viper.GetBool("strict_target"),
		SolanaRPCURL:     viper.GetString("solana_rpc_url"),
		SolanaPrivateKey: viper.GetString("solana_private_key"),
		VAAServiceURL:    viper.GetString("vaa_service_url"),
	}

	if config.SolanaPrivateKey == "" {
		return fmt.Errorf("Solana private key is required")
	}

	bridge, err := bridgeConfig()
	if err != nil {
		return err
	}

	logger.Info("Configuration",
		zap.String("spyRPC", config.SpyRPCHost),
		zap.Any("emitters", config.Emitters),
		zap.Bool("strictTarget", config.StrictTarget),
		zap.String("solanaRPC", config.SolanaRPCURL),
		zap.String("vaaServiceURL", config.VAAServiceURL))

	spyClient, err := clients.NewSpyClient(logger, config.SpyRPCHost, spyFilters)
	if err != nil {
		return fmt.Errorf("failed to create spy client: %v", err)
	}

	solanaClient, err := clients.NewSolanaClient(
		logger,
		config.SolanaRPCURL,
		config.SolanaPrivateKey,
		bridge,
		config.VAAServiceURL,
	)
	if err != nil {
		return fmt.Errorf("failed to create Solana client: %v", err)
	}

	logger.Info("Connected to Solana",
		zap.String("payer", solanaClient.GetPayerAddress().String()))

	solanaSubmitter := submitter.NewSolanaSubmitter(logger, solanaClient)

	processor := internal.NewAttestationProcessor(logger,
		internal.VAAProcessorConfig{
			Emitters:           config.Emitters,
			DestinationChainID: SolanaDestinationChainID,
			StrictTarget:       config.StrictTarget,
		},
		solanaSubmitter)

	relayer, err := internal.NewRelayer(logger, spyClient, processor)
	if err != nil {
		return fmt.Errorf("failed to initialize relayer: %v", err)
	}
	defer relayer.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-c
		logger.Info("Received shutdown signal")
		cancel()
	}()

	if err := relayer.Start(ctx); err != nil {
		return fmt.Errorf("relayer stopped with error: %v", err)
	}

	return nil
}

// parseEmitters converts chain=hex flag values into the processor map and
// spy filters
func parseEmitters(raw map[string]string) (map[uint16]string, []clients.Emitter, error) {
	if len(raw) == 0 {
		return nil, nil, fmt.Errorf("at least one token bridge emitter is required")
	}

	emitters := make(map[uint16]string, len(raw))
	filters := make([]clients.Emitter, 0, len(raw))
	for chainStr, addrHex := range raw {
		chain, err := strconv.ParseUint(chainStr, 10, 16)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid chain ID %q: %v", chainStr, err)
		}
		addr, err := vaaLib.StringToAddress(addrHex)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid emitter for chain %d: %v", chain, err)
		}
		emitters[uint16(chain)] = addr.String()
		filters = append(filters, clients.Emitter{Chain: vaaLib.ChainID(chain), Address: addr})
	}
	return emitters, filters, nil
}
