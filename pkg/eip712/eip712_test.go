package eip712

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
	"github.com/stretchr/testify/require"

	"github.com/open-frames/frame-actions-go/pkg/types"
)

func TestSchemas(t *testing.T) {
	t.Run("PublicKeyBundle field order is fixed", func(t *testing.T) {
		td := PublicKeyBundleTypedData(types.ProxyKeyBundle{
			Timestamp:      1700000000,
			ProxyPublicKey: common.HexToAddress("0x0000000000000000000000000000000000000001"),
		})

		require.Equal(t, PublicKeyBundleType, td.PrimaryType)
		require.Equal(t, []apitypes.Type{
			{Name: "timestamp", Type: "uint64"},
			{Name: "proxyPublicKey", Type: "address"},
		}, td.Types[PublicKeyBundleType])
		require.Equal(t, DomainName, td.Domain.Name)
		require.Equal(t, DomainVersion, td.Domain.Version)
	})

	t.Run("FrameActionBody field order is fixed", func(t *testing.T) {
		td := FrameActionBodyTypedData(types.FrameActionBody{URL: "https://x"})

		require.Equal(t, FrameActionBodyType, td.PrimaryType)
		require.Equal(t, []apitypes.Type{
			{Name: "frame_url", Type: "string"},
			{Name: "button_index", Type: "uint32"},
			{Name: "unix_timestamp", Type: "uint64"},
			{Name: "input_text", Type: "string"},
			{Name: "state", Type: "string"},
			{Name: "transaction_id", Type: "bytes32"},
			{Name: "address", Type: "address"},
		}, td.Types[FrameActionBodyType])
	})

	t.Run("both schemas hash without error", func(t *testing.T) {
		_, err := HashTypedData(PublicKeyBundleTypedData(types.ProxyKeyBundle{Timestamp: 1}))
		require.NoError(t, err)

		_, err = HashTypedData(FrameActionBodyTypedData(types.FrameActionBody{URL: "https://x"}))
		require.NoError(t, err)
	})

	t.Run("hash is deterministic and field-sensitive", func(t *testing.T) {
		body := types.FrameActionBody{
			URL:                 "https://x",
			UnixTimestampMillis: 1000,
			ButtonIndex:         2,
		}

		h1, err := HashTypedData(FrameActionBodyTypedData(body))
		require.NoError(t, err)
		h2, err := HashTypedData(FrameActionBodyTypedData(body))
		require.NoError(t, err)
		require.Equal(t, h1, h2)

		body.ButtonIndex = 3
		h3, err := HashTypedData(FrameActionBodyTypedData(body))
		require.NoError(t, err)
		require.NotEqual(t, h1, h3)
	})

	t.Run("omitted optionals hash like explicit sentinels", func(t *testing.T) {
		omitted := types.FrameActionBody{URL: "https://x", ButtonIndex: 1}
		explicit := types.FrameActionBody{
			URL:           "https://x",
			ButtonIndex:   1,
			TransactionID: &common.Hash{},
			Address:       &common.Address{},
		}

		h1, err := HashTypedData(FrameActionBodyTypedData(omitted))
		require.NoError(t, err)
		h2, err := HashTypedData(FrameActionBodyTypedData(explicit))
		require.NoError(t, err)
		require.Equal(t, h1, h2)
	})
}

func TestCanonicalization(t *testing.T) {
	t.Run("fills sentinels without touching present fields", func(t *testing.T) {
		txId := common.HexToHash("0xdeadbeef00000000000000000000000000000000000000000000000000000001")
		body := types.FrameActionBody{
			URL:           "https://x",
			InputText:     "hello",
			TransactionID: &txId,
		}

		canonical := CanonicalizeBody(body)
		require.Equal(t, &txId, canonical.TransactionID)
		require.NotNil(t, canonical.Address)
		require.Equal(t, common.Address{}, *canonical.Address)
		require.Equal(t, "hello", canonical.InputText)

		// Input body is not mutated.
		require.Nil(t, body.Address)
	})

	t.Run("strip is the inverse of fill for absent fields", func(t *testing.T) {
		body := types.FrameActionBody{URL: "https://x"}
		stripped := StripSentinels(CanonicalizeBody(body))
		require.Nil(t, stripped.TransactionID)
		require.Nil(t, stripped.Address)
	})

	t.Run("strip leaves non-sentinel values alone", func(t *testing.T) {
		txId := common.HexToHash("0x01")
		addr := common.HexToAddress("0x0000000000000000000000000000000000000002")
		stripped := StripSentinels(types.FrameActionBody{TransactionID: &txId, Address: &addr})
		require.NotNil(t, stripped.TransactionID)
		require.NotNil(t, stripped.Address)
	})
}
