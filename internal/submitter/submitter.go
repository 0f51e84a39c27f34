package submitter

import "context"

type VAASubmitter interface {
	// SubmitVAA redeems the given VAA bytes on the destination chain and returns the transaction signature or an error
	SubmitVAA(ctx context.Context, vaaBytes []byte) (string, error)
}
