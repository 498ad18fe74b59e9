package typedDataVerifier

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
	"go.uber.org/zap"
)

// ITypedDataVerifier checks EIP-712 signatures against a claimed address.
// The frame-action core never inspects raw signature bytes itself; it only
// composes the boolean results of this capability.
type ITypedDataVerifier interface {
	// VerifyTypedData reports whether signature is a valid EIP-712 signature
	// over typedData by claimedAddress. A signature that recovers to a
	// different address (or fails to recover at all) is a mismatch, not an
	// error; errors are reserved for infrastructure failures such as an
	// unhashable message.
	VerifyTypedData(ctx context.Context, typedData apitypes.TypedData, claimedAddress common.Address, signature []byte) (bool, error)
}

// RecoveringVerifier is the default implementation: recover the signer from
// the digest locally and compare addresses. It is stateless and safe for
// concurrent reuse.
type RecoveringVerifier struct {
	logger *zap.Logger
}

func NewRecoveringVerifier(logger *zap.Logger) *RecoveringVerifier {
	return &RecoveringVerifier{logger: logger}
}

func (v *RecoveringVerifier) VerifyTypedData(ctx context.Context, typedData apitypes.TypedData, claimedAddress common.Address, signature []byte) (bool, error) {
	digest, _, err := apitypes.TypedDataAndHash(typedData)
	if err != nil {
		return false, fmt.Errorf("failed to hash typed data: %w", err)
	}

	if len(signature) != crypto.SignatureLength {
		v.logger.Debug("Rejected signature with unexpected length",
			zap.Int("length", len(signature)),
		)
		return false, nil
	}

	// Accept both the raw 0/1 and the Ethereum 27/28 recovery id forms.
	normalized := make([]byte, crypto.SignatureLength)
	copy(normalized, signature)
	if normalized[64] >= 27 {
		normalized[64] -= 27
	}

	recoveredBytes, err := crypto.Ecrecover(digest, normalized)
	if err != nil {
		// Tampered signature bytes land here; that is the expected invalid
		// outcome, not a collaborator failure.
		v.logger.Debug("Signature recovery failed",
			zap.String("primaryType", typedData.PrimaryType),
			zap.Error(err),
		)
		return false, nil
	}

	recovered, err := crypto.UnmarshalPubkey(recoveredBytes)
	if err != nil {
		v.logger.Debug("Recovered public key is not on curve", zap.Error(err))
		return false, nil
	}

	return crypto.PubkeyToAddress(*recovered) == claimedAddress, nil
}

var _ ITypedDataVerifier = (*RecoveringVerifier)(nil)
