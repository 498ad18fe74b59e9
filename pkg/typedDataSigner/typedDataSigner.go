package typedDataSigner

import (
	"context"
	"errors"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
)

// ErrNoAccount is returned when a signing operation is invoked on a signer
// that is not bound to a concrete account. Callers must supply a properly
// bound signer; the operation is never retried.
var ErrNoAccount = errors.New("signer is not bound to an account")

// ITypedDataSigner produces EIP-712 signatures bound to a single identity.
// Implementations never expose raw key material to callers.
type ITypedDataSigner interface {
	// SignTypedData signs the EIP-712 digest of typedData and returns a
	// 65-byte [R || S || V] signature with V in Ethereum convention (27/28).
	SignTypedData(ctx context.Context, typedData apitypes.TypedData) ([]byte, error)

	// GetAddress returns the account this signer is bound to, or ErrNoAccount.
	GetAddress() (common.Address, error)
}
