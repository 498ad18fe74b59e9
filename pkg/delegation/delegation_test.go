package delegation

import (
	"context"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/open-frames/frame-actions-go/pkg/eip712"
	"github.com/open-frames/frame-actions-go/pkg/typedDataSigner"
	"github.com/open-frames/frame-actions-go/pkg/typedDataSigner/inMemorySigner"
	"github.com/open-frames/frame-actions-go/pkg/typedDataVerifier"
	"github.com/open-frames/frame-actions-go/pkg/types"
)

func TestCreateDelegation(t *testing.T) {
	logger, _ := zap.NewDevelopment()
	ctx := context.Background()

	t.Run("returns an attested bundle and the proxy private key", func(t *testing.T) {
		walletSigner, _, err := inMemorySigner.GenerateInMemorySigner(logger)
		require.NoError(t, err)
		walletAddr, err := walletSigner.GetAddress()
		require.NoError(t, err)

		before := uint64(time.Now().Unix())
		signed, proxyKey, err := CreateDelegation(ctx, walletSigner)
		require.NoError(t, err)
		after := uint64(time.Now().Unix())

		require.NotNil(t, proxyKey)
		require.Equal(t, walletAddr, signed.WalletAddress)
		require.Equal(t, crypto.PubkeyToAddress(proxyKey.PublicKey), signed.Bundle.ProxyPublicKey)
		require.GreaterOrEqual(t, signed.Bundle.Timestamp, before)
		require.LessOrEqual(t, signed.Bundle.Timestamp, after)
		require.Len(t, signed.Signature, 65)
	})

	t.Run("attestation verifies against the wallet", func(t *testing.T) {
		walletSigner, _, err := inMemorySigner.GenerateInMemorySigner(logger)
		require.NoError(t, err)

		signed, _, err := CreateDelegation(ctx, walletSigner)
		require.NoError(t, err)

		client := typedDataVerifier.NewRecoveringVerifier(logger)
		ok, err := client.VerifyTypedData(
			ctx,
			eip712.PublicKeyBundleTypedData(signed.Bundle),
			signed.WalletAddress,
			signed.Signature,
		)
		require.NoError(t, err)
		require.True(t, ok)
	})

	t.Run("unbound wallet signer fails with ErrNoAccount", func(t *testing.T) {
		unbound := inMemorySigner.NewInMemorySigner(nil, logger)

		_, _, err := CreateDelegation(ctx, unbound)
		require.ErrorIs(t, err, typedDataSigner.ErrNoAccount)

		_, err = SignDelegation(ctx, types.ProxyKeyBundle{}, unbound)
		require.ErrorIs(t, err, typedDataSigner.ErrNoAccount)
	})

	t.Run("SignDelegation attests a caller-managed bundle", func(t *testing.T) {
		walletSigner, _, err := inMemorySigner.GenerateInMemorySigner(logger)
		require.NoError(t, err)

		proxyKey, err := crypto.GenerateKey()
		require.NoError(t, err)
		bundle := types.ProxyKeyBundle{
			Timestamp:      1700000000,
			ProxyPublicKey: crypto.PubkeyToAddress(proxyKey.PublicKey),
		}

		signed, err := SignDelegation(ctx, bundle, walletSigner)
		require.NoError(t, err)
		require.Equal(t, bundle, signed.Bundle)
	})
}
