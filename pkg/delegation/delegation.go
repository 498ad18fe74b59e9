// Package delegation mints proxy signing keys and obtains the wallet
// attestation that authorizes them.
package delegation

import (
	"context"
	"crypto/ecdsa"
	"fmt"

	"github.com/ethereum/go-ethereum/crypto"

	"github.com/open-frames/frame-actions-go/pkg/eip712"
	"github.com/open-frames/frame-actions-go/pkg/typedDataSigner"
	"github.com/open-frames/frame-actions-go/pkg/types"
)

// CreateDelegation generates a fresh proxy key pair, stamps a bundle for it,
// and asks walletSigner to attest the bundle. The returned proxy private key
// is known only to the caller; it is never transmitted or persisted here.
// Fails with ErrNoAccount when walletSigner has no bound address.
func CreateDelegation(ctx context.Context, walletSigner typedDataSigner.ITypedDataSigner) (*types.SignedProxyKeyBundle, *ecdsa.PrivateKey, error) {
	if _, err := walletSigner.GetAddress(); err != nil {
		return nil, nil, err
	}

	proxyKey, err := crypto.GenerateKey()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to generate proxy key: %w", err)
	}

	bundle := types.NewProxyKeyBundle(crypto.PubkeyToAddress(proxyKey.PublicKey))
	signed, err := SignDelegation(ctx, bundle, walletSigner)
	if err != nil {
		return nil, nil, err
	}
	return signed, proxyKey, nil
}

// SignDelegation obtains the wallet attestation for a caller-managed bundle.
func SignDelegation(ctx context.Context, bundle types.ProxyKeyBundle, walletSigner typedDataSigner.ITypedDataSigner) (*types.SignedProxyKeyBundle, error) {
	walletAddress, err := walletSigner.GetAddress()
	if err != nil {
		return nil, err
	}

	signature, err := walletSigner.SignTypedData(ctx, eip712.PublicKeyBundleTypedData(bundle))
	if err != nil {
		return nil, fmt.Errorf("failed to sign proxy key bundle: %w", err)
	}

	return &types.SignedProxyKeyBundle{
		Bundle:        bundle,
		WalletAddress: walletAddress,
		Signature:     signature,
	}, nil
}
