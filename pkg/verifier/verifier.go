// Package verifier re-validates inbound frame action payloads: the wallet's
// attestation of the proxy key and the proxy key's signature over the action
// body. Both checks must pass; no partial trust is ever granted.
package verifier

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/open-frames/frame-actions-go/pkg/eip712"
	"github.com/open-frames/frame-actions-go/pkg/typedDataVerifier"
	"github.com/open-frames/frame-actions-go/pkg/types"
	"github.com/open-frames/frame-actions-go/pkg/util"
)

// Verifier is independent of the delegation builder and action signer; it
// needs only the payload and a typed-data verification client.
type Verifier struct {
	logger *zap.Logger
	client typedDataVerifier.ITypedDataVerifier
}

// NewVerifier builds a verifier with the default local recovery client.
func NewVerifier(logger *zap.Logger) *Verifier {
	return NewVerifierWithClient(typedDataVerifier.NewRecoveringVerifier(logger), logger)
}

// NewVerifierWithClient accepts an externally supplied verification client,
// for connection reuse or test doubles.
func NewVerifierWithClient(client typedDataVerifier.ITypedDataVerifier, logger *zap.Logger) *Verifier {
	return &Verifier{
		logger: logger,
		client: client,
	}
}

// IsWellFormed is the structural guard between untrusted input and the typed
// core: it checks that payload is a structured object carrying the v1
// protocol tag and non-null untrusted/trusted objects. It makes no trust
// claim and must run before any cryptographic verification of untyped input.
// Accepted shapes: *types.FrameActionRequest, a generic JSON object map, or
// raw JSON bytes.
func IsWellFormed(payload any) bool {
	switch p := payload.(type) {
	case nil:
		return false
	case *types.FrameActionRequest:
		return p != nil && p.ProtocolTag == types.ProtocolTagV1
	case types.FrameActionRequest:
		return p.ProtocolTag == types.ProtocolTagV1
	case json.RawMessage:
		return isWellFormedJSON(p)
	case []byte:
		return isWellFormedJSON(p)
	case map[string]any:
		return isWellFormedMap(p)
	default:
		return false
	}
}

func isWellFormedJSON(raw []byte) bool {
	var decoded map[string]any
	if err := json.Unmarshal(raw, &decoded); err != nil || decoded == nil {
		return false
	}
	return isWellFormedMap(decoded)
}

func isWellFormedMap(payload map[string]any) bool {
	tag, ok := payload["protocolTag"].(string)
	if !ok || tag != types.ProtocolTagV1 {
		return false
	}
	if untrusted, ok := payload["untrusted"].(map[string]any); !ok || untrusted == nil {
		return false
	}
	if trusted, ok := payload["trusted"].(map[string]any); !ok || trusted == nil {
		return false
	}
	return true
}

// VerifyDelegation checks that the attestation's wallet genuinely signed the
// proxy key bundle. The signature arithmetic is delegated to the verification
// client; infrastructure failures propagate unchanged.
func (v *Verifier) VerifyDelegation(ctx context.Context, attestation *types.SignedProxyKeyBundle) (bool, error) {
	return v.client.VerifyTypedData(
		ctx,
		eip712.PublicKeyBundleTypedData(attestation.Bundle),
		attestation.WalletAddress,
		attestation.Signature,
	)
}

// VerifyAction is the end-to-end check: the action signature against the
// attested proxy key, and the delegation attestation against the wallet.
// The two checks have no data dependency and run concurrently; both results
// are awaited before the verdict is computed. A collaborator failure aborts
// the whole operation rather than being masked as invalid.
func (v *Verifier) VerifyAction(ctx context.Context, payload *types.FrameActionRequest) (*types.VerifiedFrameAction, error) {
	attestation := payload.Untrusted.SignerAttestation
	actionTypedData := eip712.FrameActionBodyTypedData(payload.Untrusted.FrameActionBody)

	var actionOK, delegationOK bool
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		ok, err := v.client.VerifyTypedData(gctx, actionTypedData, attestation.Bundle.ProxyPublicKey, payload.Untrusted.Signature)
		actionOK = ok
		return err
	})
	g.Go(func() error {
		ok, err := v.VerifyDelegation(gctx, &attestation)
		delegationOK = ok
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	isValid := actionOK && delegationOK
	if digest, err := util.RequestDigest(payload); err == nil {
		v.logger.Debug("Verified frame action",
			zap.String("requestDigest", digest),
			zap.Bool("actionSignatureValid", actionOK),
			zap.Bool("delegationValid", delegationOK),
			zap.String("wallet", attestation.WalletAddress.Hex()),
		)
	}

	canonical := eip712.CanonicalizeBody(payload.Untrusted.FrameActionBody)
	return &types.VerifiedFrameAction{
		FrameActionBody:        eip712.StripSentinels(canonical),
		IsValid:                isValid,
		RequesterWalletAddress: attestation.WalletAddress,
	}, nil
}
