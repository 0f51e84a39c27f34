package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/gagliardetto/solana-go"
	dotenv "github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/wormhole-demo/token-bridge-relayer/internal/tokenbridge"
)

const (
	DefaultSolanaRPCURL = "https://api.devnet.solana.com"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "token-bridge-relayer",
	Short: "Registers Wormhole token attestations as wrapped assets on Solana",
}

func init() {
	// Tentatively load .env file
	_ = dotenv.Load()

	rootCmd.PersistentFlags().Bool(
		"debug",
		false,
		"Enables debug output.")

	rootCmd.PersistentFlags().Bool(
		"json",
		false,
		"Enables structured logging in JSON format.")

	rootCmd.PersistentFlags().String(
		"token-bridge-program-id",
		tokenbridge.DefaultTokenBridgeProgramID.String(),
		"Wormhole Token Bridge program ID on Solana")

	rootCmd.PersistentFlags().String(
		"core-bridge-program-id",
		tokenbridge.DefaultCoreBridgeProgramID.String(),
		"Wormhole Core Bridge program ID on Solana")

	rootCmd.PersistentFlags().String(
		"solana-rpc-url",
		DefaultSolanaRPCURL,
		"RPC URL for Solana")

	rootCmd.PersistentFlags().String(
		"solana-private-key",
		"",
		"Private key for Solana transactions (base58 encoded)")

	rootCmd.PersistentFlags().String(
		"vaa-service-url",
		"",
		"Service used to post VAAs to the Core Bridge before redemption")

	viper.BindPFlag("token_bridge_program_id", rootCmd.PersistentFlags().Lookup("token-bridge-program-id"))
	viper.BindPFlag("core_bridge_program_id", rootCmd.PersistentFlags().Lookup("core-bridge-program-id"))
	viper.BindPFlag("solana_rpc_url", rootCmd.PersistentFlags().Lookup("solana-rpc-url"))
	viper.BindPFlag("solana_private_key", rootCmd.PersistentFlags().Lookup("solana-private-key"))
	viper.BindPFlag("vaa_service_url", rootCmd.PersistentFlags().Lookup("vaa-service-url"))

	cobra.OnInitialize(initConfig)
}

func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func initConfig() {
	viper.SetEnvPrefix("wormhole-relayer")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	viper.AutomaticEnv() // read in environment variables that match
}

// bridgeConfig builds the program configuration from flags and environment
func bridgeConfig() (tokenbridge.Config, error) {
	tokenBridge, err := solana.PublicKeyFromBase58(viper.GetString("token_bridge_program_id"))
	if err != nil {
		return tokenbridge.Config{}, fmt.Errorf("invalid token bridge program ID: %v", err)
	}
	coreBridge, err := solana.PublicKeyFromBase58(viper.GetString("core_bridge_program_id"))
	if err != nil {
		return tokenbridge.Config{}, fmt.Errorf("invalid core bridge program ID: %v", err)
	}
	return tokenbridge.NewConfig(tokenBridge, coreBridge), nil
}

func configureLogging(cmd *cobra.Command, _ []string) *zap.Logger {
	debug, _ := cmd.Flags().GetBool("debug")
	json, _ := cmd.Flags().GetBool("json")

	var config zap.Config
	if debug {
		config = zap.NewDevelopmentConfig()
		config.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
		config.Development = true
	} else {
		config = zap.NewProductionConfig()
		config.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}

	if json {
		config.Encoding = "json"
	} else {
		config.Encoding = "console"
		config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	// Keep stdout free for command output
	config.OutputPaths = []string{"stderr"}

	logger, err := config.Build()
	if err != nil {
		logger, _ = zap.NewProduction()
	}

	zap.ReplaceGlobals(logger)

	return logger
}
