package session

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/open-frames/frame-actions-go/pkg/typedDataSigner"
	"github.com/open-frames/frame-actions-go/pkg/typedDataSigner/inMemorySigner"
	"github.com/open-frames/frame-actions-go/pkg/types"
	"github.com/open-frames/frame-actions-go/pkg/verifier"
)

func TestStore(t *testing.T) {
	logger, _ := zap.NewDevelopment()
	ctx := context.Background()

	t.Run("create registers a session with a delegation", func(t *testing.T) {
		store := NewStore(logger)
		walletSigner, _, err := inMemorySigner.GenerateInMemorySigner(logger)
		require.NoError(t, err)

		sess, err := store.Create(ctx, walletSigner)
		require.NoError(t, err)
		require.NotEmpty(t, sess.ID)
		require.NotNil(t, sess.Delegation)
		require.Equal(t, 1, store.Count())

		got, ok := store.Get(sess.ID)
		require.True(t, ok)
		require.Same(t, sess, got)
	})

	t.Run("session requests verify end to end", func(t *testing.T) {
		store := NewStore(logger)
		walletSigner, _, err := inMemorySigner.GenerateInMemorySigner(logger)
		require.NoError(t, err)
		walletAddr, err := walletSigner.GetAddress()
		require.NoError(t, err)

		sess, err := store.Create(ctx, walletSigner)
		require.NoError(t, err)

		// One delegation, many actions.
		for buttonIndex := uint32(1); buttonIndex <= 3; buttonIndex++ {
			request, err := sess.BuildRequest(ctx, types.FrameActionBody{
				URL:                 "https://frames.example.org",
				UnixTimestampMillis: 1712000000000,
				ButtonIndex:         buttonIndex,
			})
			require.NoError(t, err)

			verified, err := verifier.NewVerifier(logger).VerifyAction(ctx, request)
			require.NoError(t, err)
			require.True(t, verified.IsValid)
			require.Equal(t, walletAddr, verified.RequesterWalletAddress)
			require.Equal(t, buttonIndex, verified.ButtonIndex)
		}
	})

	t.Run("remove drops the session", func(t *testing.T) {
		store := NewStore(logger)
		walletSigner, _, err := inMemorySigner.GenerateInMemorySigner(logger)
		require.NoError(t, err)

		sess, err := store.Create(ctx, walletSigner)
		require.NoError(t, err)

		store.Remove(sess.ID)
		_, ok := store.Get(sess.ID)
		require.False(t, ok)
		require.Equal(t, 0, store.Count())
	})

	t.Run("create with an unbound wallet fails", func(t *testing.T) {
		store := NewStore(logger)
		unbound := inMemorySigner.NewInMemorySigner(nil, logger)

		_, err := store.Create(ctx, unbound)
		require.ErrorIs(t, err, typedDataSigner.ErrNoAccount)
		require.Equal(t, 0, store.Count())
	})
}
