package internal

import (
	"context"
	"fmt"
	"sync"
	"time"

	spyv1 "github.com/certusone/wormhole/node/pkg/proto/spy/v1"
	"go.uber.org/zap"

	"github.com/wormhole-demo/token-bridge-relayer/internal/attestation"
)

// VAASource streams signed VAAs. Implemented by clients.SpyClient.
type VAASource interface {
	SubscribeSignedVAA(ctx context.Context) (spyv1.SpyRPCService_SubscribeSignedVAAClient, error)
	Close()
}

type Relayer struct {
	source       VAASource
	vaaProcessor VAAProcessor
	// keys of VAAs currently being processed; the spy repeats VAAs
	inFlight sync.Map
	logger   *zap.Logger
}

// NewRelayer creates a new relayer instance
func NewRelayer(logger *zap.Logger, source VAASource, processor VAAProcessor) (*Relayer, error) {
	if source == nil {
		return nil, fmt.Errorf("VAA source is required")
	}
	return &Relayer{
		logger:       logger.With(zap.String("component", "Relayer")),
		source:       source,
		vaaProcessor: processor,
	}, nil
}

// Close cleans up resources used by the relayer
func (r *Relayer) Close() {
	r.source.Close()
}

// Start begins listening for VAAs and processing them until ctx is cancelled
func (r *Relayer) Start(ctx context.Context) error {
	var wg sync.WaitGroup

	stream, err := r.source.SubscribeSignedVAA(ctx)
	if err != nil {
		return fmt.Errorf("subscribe to VAA stream: %v", err)
	}

	r.logger.Info("Listening for VAAs")

	processingCtx, cancelProcessing := context.WithCancel(context.Background())
	defer cancelProcessing()

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("Shutting down relayer")
			cancelProcessing()
			r.logger.Info("Waiting for all VAA processing to complete")
			wg.Wait()
			r.logger.Info("Shutdown complete")
			return nil
		default:
			resp, err := stream.Recv()
			if err != nil {
				if ctx.Err() != nil {
					continue
				}
				r.logger.Warn("Stream error, retrying in 5s", zap.Error(err))
				select {
				case <-ctx.Done():
					continue
				case <-time.After(5 * time.Second):
				}
				stream, err = r.source.SubscribeSignedVAA(ctx)
				if err != nil {
					cancelProcessing()
					wg.Wait()
					return fmt.Errorf("subscribe to VAA stream after retry: %v", err)
				}
				continue
			}

			key := computeVAAKey(resp.VaaBytes)
			if _, busy := r.inFlight.LoadOrStore(key, struct{}{}); busy {
				r.logger.Debug("Skipping duplicate VAA", zap.String("key", key))
				continue
			}

			wg.Add(1)
			go func(vaaBytes []byte) {
				defer wg.Done()
				defer r.inFlight.Delete(key)
				r.processVAA(processingCtx, vaaBytes)
			}(resp.VaaBytes)
		}
	}
}

func (r *Relayer) processVAA(ctx context.Context, vaaBytes []byte) {
	select {
	case <-ctx.Done():
		r.logger.Debug("Processing cancelled for VAA")
		return
	default:
	}

	v, err := attestation.ParseVAAPermissive(vaaBytes)
	if err != nil {
		r.logger.Error("Failed to parse VAA", zap.Error(err))
		return
	}
	attestation.LogVAA(r.logger, v)

	vaaData := VAAData{
		VAA:        v,
		RawBytes:   vaaBytes,
		ChainID:    uint16(v.EmitterChain),
		EmitterHex: fmt.Sprintf("%064x", v.EmitterAddress[:]),
		Sequence:   v.Sequence,
	}

	if _, err := r.vaaProcessor.ProcessVAA(ctx, vaaData); err != nil {
		r.logger.Error("Error processing VAA",
			zap.Uint16("chain", vaaData.ChainID),
			zap.Uint64("sequence", vaaData.Sequence),
			zap.Error(err))
	}
}
