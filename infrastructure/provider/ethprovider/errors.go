package ethprovider

import (
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/kaspanet/walletsession/domain/walletprovider"
	"github.com/pkg/errors"
)

// codeMethodNotFound is the JSON-RPC code for an unknown method.
const codeMethodNotFound = -32601

// convertRPCError turns an error answered by the wallet into a
// walletprovider.ProviderError. Transport failures are returned as is.
func convertRPCError(err error) error {
	var rpcErr rpc.Error
	if errors.As(err, &rpcErr) {
		return &walletprovider.ProviderError{
			Code:    rpcErr.ErrorCode(),
			Message: rpcErr.Error(),
		}
	}
	return err
}

func isMethodNotFound(err error) bool {
	var rpcErr rpc.Error
	return errors.As(err, &rpcErr) && rpcErr.ErrorCode() == codeMethodNotFound
}
