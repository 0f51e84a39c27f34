package clients

import (
	"context"
	"fmt"
	"time"

	publicrpcv1 "github.com/certusone/wormhole/node/pkg/proto/publicrpc/v1"
	spyv1 "github.com/certusone/wormhole/node/pkg/proto/spy/v1"
	vaaLib "github.com/wormhole-foundation/wormhole/sdk/vaa"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// Emitter identifies a message source the spy should forward.
type Emitter struct {
	Chain   vaaLib.ChainID
	Address vaaLib.Address
}

// SpyClient handles connections to the Wormhole spy service
type SpyClient struct {
	conn     *grpc.ClientConn
	endpoint string
	filters  []*spyv1.FilterEntry
	logger   *zap.Logger
}

// NewSpyClient creates a new client for the Wormhole spy service. With no
// emitters the spy forwards every signed VAA it sees.
func NewSpyClient(logger *zap.Logger, endpoint string, emitters []Emitter) (*SpyClient, error) {
	client := &SpyClient{
		endpoint: endpoint,
		filters:  EmitterFilters(emitters),
		logger:   logger.With(zap.String("component", "SpyClient")),
	}

	client.logger.Info("Connecting to spy service",
		zap.String("endpoint", endpoint),
		zap.Int("emitterFilters", len(client.filters)))

	conn, err := grpc.NewClient(endpoint, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to spy: %v", err)
	}
	client.conn = conn
	return client, nil
}

// EmitterFilters converts emitters into spy subscription filters
func EmitterFilters(emitters []Emitter) []*spyv1.FilterEntry {
	filters := make([]*spyv1.FilterEntry, 0, len(emitters))
	for _, e := range emitters {
		filters = append(filters, &spyv1.FilterEntry{
			Filter: &spyv1.FilterEntry_EmitterFilter{
				EmitterFilter: &spyv1.EmitterFilter{
					ChainId:        publicrpcv1.ChainID(e.Chain),
					EmitterAddress: e.Address.String(),
				},
			},
		})
	}
	return filters
}

// Close closes the connection to the spy service
func (c *SpyClient) Close() {
	if c.conn != nil {
		c.conn.Close()
	}
}

// SubscribeSignedVAA subscribes to signed VAAs matching the emitter filters,
// retrying a fixed number of times.
func (c *SpyClient) SubscribeSignedVAA(ctx context.Context) (spyv1.SpyRPCService_SubscribeSignedVAAClient, error) {
	const maxRetries = 5
	const retryDelay = 2 * time.Second

	c.logger.Debug("Subscribing to signed VAAs")

	client := spyv1.NewSpyRPCServiceClient(c.conn)
	req := &spyv1.SubscribeSignedVAARequest{Filters: c.filters}

	var err error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		var stream spyv1.SpyRPCService_SubscribeSignedVAAClient
		stream, err = client.SubscribeSignedVAA(ctx, req)
		if err == nil {
			return stream, nil
		}

		if attempt < maxRetries {
			c.logger.Warn("Subscribe attempt failed",
				zap.Int("attempt", attempt),
				zap.Error(err),
				zap.Duration("retryIn", retryDelay))

			select {
			case <-time.After(retryDelay):
			case <-ctx.Done():
				return nil, fmt.Errorf("context cancelled during retry: %v", ctx.Err())
			}
		}
	}

	return nil, fmt.Errorf("failed to subscribe to %s after %d attempts: %v", c.endpoint, maxRetries, err)
}
