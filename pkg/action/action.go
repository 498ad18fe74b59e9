// Package action signs frame action bodies with a delegated proxy key and
// assembles the full wire payload.
package action

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/open-frames/frame-actions-go/pkg/eip712"
	"github.com/open-frames/frame-actions-go/pkg/typedDataSigner"
	"github.com/open-frames/frame-actions-go/pkg/types"
)

// SignAction canonicalizes body and signs the FrameActionBody schema with
// proxySigner. Fails with ErrNoAccount when proxySigner has no bound address.
func SignAction(ctx context.Context, body types.FrameActionBody, proxySigner typedDataSigner.ITypedDataSigner) ([]byte, error) {
	if _, err := proxySigner.GetAddress(); err != nil {
		return nil, err
	}
	if len(body.State) > types.MaxStateLength {
		return nil, fmt.Errorf("state exceeds %d bytes: %d", types.MaxStateLength, len(body.State))
	}

	signature, err := proxySigner.SignTypedData(ctx, eip712.FrameActionBodyTypedData(body))
	if err != nil {
		return nil, fmt.Errorf("failed to sign frame action body: %w", err)
	}
	return signature, nil
}

// BuildRequest signs body and wraps it into a v1 FrameActionRequest carrying
// the provided wallet attestation. The attestation is embedded as-is; trust
// establishment is entirely the verifier's job, so this component performs
// no validation of it.
func BuildRequest(ctx context.Context, body types.FrameActionBody, proxySigner typedDataSigner.ITypedDataSigner, attestation *types.SignedProxyKeyBundle) (*types.FrameActionRequest, error) {
	signature, err := SignAction(ctx, body, proxySigner)
	if err != nil {
		return nil, err
	}

	return &types.FrameActionRequest{
		ProtocolTag: types.ProtocolTagV1,
		Untrusted: types.UntrustedData{
			FrameActionBody:   body,
			Signature:         signature,
			SignerAttestation: *attestation,
		},
		Trusted: types.TrustedData{
			OpaqueBytes: hexutil.Bytes{},
		},
	}, nil
}
