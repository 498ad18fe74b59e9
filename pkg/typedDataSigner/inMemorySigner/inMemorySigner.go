package inMemorySigner

import (
	"context"
	"crypto/ecdsa"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
	"go.uber.org/zap"

	"github.com/open-frames/frame-actions-go/pkg/typedDataSigner"
)

// InMemorySigner signs typed data with a secp256k1 private key held in
// process memory. It backs both proxy keys and locally managed wallets.
type InMemorySigner struct {
	logger     *zap.Logger
	privateKey *ecdsa.PrivateKey
	address    common.Address
}

// NewInMemorySigner wraps an existing private key. A nil key yields a signer
// with no bound account, which fails every operation with ErrNoAccount.
func NewInMemorySigner(privateKey *ecdsa.PrivateKey, logger *zap.Logger) *InMemorySigner {
	signer := &InMemorySigner{
		logger:     logger,
		privateKey: privateKey,
	}
	if privateKey != nil {
		signer.address = crypto.PubkeyToAddress(privateKey.PublicKey)
	}
	return signer
}

// NewInMemorySignerFromHex parses a hex private key, with or without the
// "0x" prefix.
func NewInMemorySignerFromHex(privateKeyHex string, logger *zap.Logger) (*InMemorySigner, error) {
	if len(privateKeyHex) >= 2 && privateKeyHex[:2] == "0x" {
		privateKeyHex = privateKeyHex[2:]
	}
	privateKey, err := crypto.HexToECDSA(privateKeyHex)
	if err != nil {
		return nil, fmt.Errorf("failed to parse private key from hex: %w", err)
	}
	return NewInMemorySigner(privateKey, logger), nil
}

// GenerateInMemorySigner mints a fresh random key pair and returns the signer
// together with the private key, for callers that need to hold on to it.
func GenerateInMemorySigner(logger *zap.Logger) (*InMemorySigner, *ecdsa.PrivateKey, error) {
	privateKey, err := crypto.GenerateKey()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to generate ECDSA key: %w", err)
	}

	signer := NewInMemorySigner(privateKey, logger)
	logger.Debug("Generated in-memory signing key",
		zap.String("address", signer.address.Hex()),
	)
	return signer, privateKey, nil
}

func (s *InMemorySigner) GetAddress() (common.Address, error) {
	if s.privateKey == nil {
		return common.Address{}, typedDataSigner.ErrNoAccount
	}
	return s.address, nil
}

func (s *InMemorySigner) SignTypedData(ctx context.Context, typedData apitypes.TypedData) ([]byte, error) {
	if s.privateKey == nil {
		return nil, typedDataSigner.ErrNoAccount
	}

	digest, _, err := apitypes.TypedDataAndHash(typedData)
	if err != nil {
		return nil, fmt.Errorf("failed to hash typed data: %w", err)
	}

	signature, err := crypto.Sign(digest, s.privateKey)
	if err != nil {
		return nil, fmt.Errorf("failed to sign typed data digest: %w", err)
	}

	// crypto.Sign returns V as 0/1; wallets emit the Ethereum 27/28 form.
	signature[64] += 27

	s.logger.Debug("Signed typed data",
		zap.String("primaryType", typedData.PrimaryType),
		zap.String("signer", s.address.Hex()),
	)
	return signature, nil
}

var _ typedDataSigner.ITypedDataSigner = (*InMemorySigner)(nil)
