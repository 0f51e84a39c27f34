package clients

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"go.uber.org/zap"

	"github.com/wormhole-demo/token-bridge-relayer/internal/pda"
	"github.com/wormhole-demo/token-bridge-relayer/internal/tokenbridge"
)

// SolanaClient handles interactions with the Solana token bridge
type SolanaClient struct {
	client        *rpc.Client
	payer         solana.PrivateKey
	bridge        tokenbridge.Config
	vaaServiceURL string // URL of the VAA posting service
	httpClient    *http.Client
	logger        *zap.Logger
}

// NewSolanaClient creates a new Solana client.
// If vaaServiceURL is provided, VAAs that are not yet posted to the core
// bridge are posted via that service before create_wrapped is sent.
func NewSolanaClient(logger *zap.Logger, rpcURL string, privateKeyBase58 string, bridge tokenbridge.Config, vaaServiceURL string) (*SolanaClient, error) {
	client := &SolanaClient{
		logger:        logger.With(zap.String("component", "SolanaClient")),
		bridge:        bridge,
		vaaServiceURL: vaaServiceURL,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}

	client.logger.Info("Connecting to Solana", zap.String("rpcURL", rpcURL))
	client.client = rpc.New(rpcURL)

	privKey, err := solana.PrivateKeyFromBase58(privateKeyBase58)
	if err != nil {
		return nil, fmt.Errorf("invalid private key: %v", err)
	}
	client.payer = privKey

	tokenBridge, err := pda.ProgramID(bridge.TokenBridgeProgramID)
	if err != nil {
		return nil, fmt.Errorf("token bridge program: %w", err)
	}
	coreBridge, err := pda.ProgramID(bridge.CoreBridgeProgramID)
	if err != nil {
		return nil, fmt.Errorf("core bridge program: %w", err)
	}

	client.logger.Info("Solana client initialized",
		zap.String("payer", client.payer.PublicKey().String()),
		zap.String("tokenBridge", tokenBridge.String()),
		zap.String("coreBridge", coreBridge.String()),
		zap.String("vaaServiceURL", client.vaaServiceURL))

	return client, nil
}

// GetPayerAddress returns the payer's public key
func (c *SolanaClient) GetPayerAddress() solana.PublicKey {
	return c.payer.PublicKey()
}

// Bridge returns the program configuration used for derivations
func (c *SolanaClient) Bridge() tokenbridge.Config {
	return c.bridge
}

// AccountExists reports whether an account has been created on chain
func (c *SolanaClient) AccountExists(ctx context.Context, account solana.PublicKey) (bool, error) {
	info, err := c.client.GetAccountInfo(ctx, account)
	if errors.Is(err, rpc.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return info != nil && info.Value != nil, nil
}

// PostVAA makes sure the VAA with the given body hash is posted to the core
// bridge. If it is missing and a VAA service is configured, it is posted via
// that service.
func (c *SolanaClient) PostVAA(ctx context.Context, vaaBytes []byte, hash [32]byte) (solana.PublicKey, error) {
	postedVAA, err := pda.PostedVAAKey(c.bridge.CoreBridgeProgramID, hash)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("failed to derive posted VAA PDA: %w", err)
	}

	posted, err := c.AccountExists(ctx, postedVAA)
	if err != nil {
		c.logger.Warn("Failed to check posted VAA account", zap.Error(err))
	}
	if posted {
		c.logger.Info("VAA already posted to Wormhole", zap.String("postedVAA", postedVAA.String()))
		return postedVAA, nil
	}

	if c.vaaServiceURL == "" {
		return solana.PublicKey{}, fmt.Errorf("VAA not yet posted to Wormhole at %s and no VAA service URL configured", postedVAA.String())
	}

	c.logger.Info("Posting VAA via VAA service",
		zap.String("serviceURL", c.vaaServiceURL),
		zap.Int("vaaLength", len(vaaBytes)))

	if err := c.callVAAService(ctx, vaaBytes); err != nil {
		return solana.PublicKey{}, fmt.Errorf("failed to post VAA via service: %w", err)
	}

	for i := 0; i < 10; i++ {
		select {
		case <-ctx.Done():
			return solana.PublicKey{}, ctx.Err()
		case <-time.After(2 * time.Second):
		}
		if posted, err := c.AccountExists(ctx, postedVAA); err == nil && posted {
			c.logger.Info("VAA successfully posted to Wormhole", zap.String("postedVAA", postedVAA.String()))
			return postedVAA, nil
		}
		c.logger.Debug("Waiting for VAA to be posted...", zap.Int("attempt", i+1))
	}

	return solana.PublicKey{}, fmt.Errorf("VAA was posted but not found on chain after 20 seconds")
}

// SendInstruction signs a transaction carrying ix with the payer and sends it
func (c *SolanaClient) SendInstruction(ctx context.Context, ix solana.Instruction) (string, error) {
	recentBlockhash, err := c.client.GetLatestBlockhash(ctx, rpc.CommitmentFinalized)
	if err != nil {
		return "", fmt.Errorf("failed to get recent blockhash: %v", err)
	}

	tx, err := solana.NewTransaction(
		[]solana.Instruction{ix},
		recentBlockhash.Value.Blockhash,
		solana.TransactionPayer(c.payer.PublicKey()),
	)
	if err != nil {
		return "", fmt.Errorf("failed to create transaction: %v", err)
	}

	_, err = tx.Sign(func(key solana.PublicKey) *solana.PrivateKey {
		if key.Equals(c.payer.PublicKey()) {
			return &c.payer
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to sign transaction: %v", err)
	}

	sig, err := c.client.SendTransaction(ctx, tx)
	if err != nil {
		return "", fmt.Errorf("failed to send transaction: %v", err)
	}

	c.logger.Info("Transaction sent", zap.String("signature", sig.String()))

	return sig.String(), nil
}

// callVAAService posts a VAA to the external VAA posting service
func (c *SolanaClient) callVAAService(ctx context.Context, vaaBytes []byte) error {
	reqJSON, err := json.Marshal(map[string]string{
		"vaa": hex.EncodeToString(vaaBytes),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.vaaServiceURL+"/post-vaa", bytes.NewReader(reqJSON))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	var result struct {
		Success   bool   `json:"success"`
		Signature string `json:"signature"`
		Error     string `json:"error"`
		Message   string `json:"message"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return fmt.Errorf("failed to parse response: %w (body: %s)", err, string(body))
	}

	if !result.Success && result.Error != "" {
		return fmt.Errorf("VAA service error: %s", result.Error)
	}

	c.logger.Info("VAA posted via service",
		zap.String("signature", result.Signature),
		zap.String("message", result.Message))

	return nil
}
