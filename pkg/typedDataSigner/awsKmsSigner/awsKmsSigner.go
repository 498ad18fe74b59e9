package awsKmsSigner

import (
	"context"
	cryptoEcdsa "crypto/ecdsa"
	"encoding/asn1"
	"fmt"
	"math/big"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/kms"
	kmstypes "github.com/aws/aws-sdk-go-v2/service/kms/types"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/open-frames/frame-actions-go/pkg/typedDataSigner"
)

// AWSKMSSigner is a wallet signer backed by an ECC_SECG_P256K1 key in AWS
// KMS. The private key never leaves KMS; this signer submits EIP-712 digests
// and reassembles the returned DER signatures into the Ethereum 65-byte form.
type AWSKMSSigner struct {
	logger    *zap.Logger
	kmsClient *kms.Client
	keyId     string
	publicKey *cryptoEcdsa.PublicKey
	address   common.Address
}

// NewAWSKMSSigner resolves the key's public half up front so that GetAddress
// and recovery-id selection need no further KMS round trips.
func NewAWSKMSSigner(ctx context.Context, kmsClient *kms.Client, keyId string, logger *zap.Logger) (*AWSKMSSigner, error) {
	if keyId == "" {
		return nil, typedDataSigner.ErrNoAccount
	}

	out, err := kmsClient.GetPublicKey(ctx, &kms.GetPublicKeyInput{
		KeyId: awssdk.String(keyId),
	})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get public key for KMS key %s", keyId)
	}

	publicKey, err := parseECDSAPublicKey(out.PublicKey)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse public key for KMS key %s", keyId)
	}

	address := crypto.PubkeyToAddress(*publicKey)
	logger.Debug("Resolved AWS KMS signing key",
		zap.String("keyId", keyId),
		zap.String("address", address.Hex()),
	)

	return &AWSKMSSigner{
		logger:    logger,
		kmsClient: kmsClient,
		keyId:     keyId,
		publicKey: publicKey,
		address:   address,
	}, nil
}

func (s *AWSKMSSigner) GetAddress() (common.Address, error) {
	return s.address, nil
}

func (s *AWSKMSSigner) SignTypedData(ctx context.Context, typedData apitypes.TypedData) ([]byte, error) {
	digest, _, err := apitypes.TypedDataAndHash(typedData)
	if err != nil {
		return nil, fmt.Errorf("failed to hash typed data: %w", err)
	}

	signOutput, err := s.kmsClient.Sign(ctx, &kms.SignInput{
		KeyId:            awssdk.String(s.keyId),
		Message:          digest,
		SigningAlgorithm: kmstypes.SigningAlgorithmSpecEcdsaSha256,
		MessageType:      kmstypes.MessageTypeDigest,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "KMS sign failed for key %s", s.keyId)
	}

	return s.toEthereumSignature(digest, signOutput.Signature)
}

// ASN.1 layout of the DER structures KMS returns.
type asn1EcSig struct {
	R asn1.RawValue
	S asn1.RawValue
}

type asn1EcPublicKey struct {
	EcPublicKeyInfo asn1EcPublicKeyInfo
	PublicKey       asn1.BitString
}

type asn1EcPublicKeyInfo struct {
	Algorithm  asn1.ObjectIdentifier
	Parameters asn1.ObjectIdentifier
}

func parseECDSAPublicKey(derBytes []byte) (*cryptoEcdsa.PublicKey, error) {
	var asn1pubk asn1EcPublicKey
	if _, err := asn1.Unmarshal(derBytes, &asn1pubk); err != nil {
		return nil, fmt.Errorf("failed to parse ASN.1 public key: %w", err)
	}
	return crypto.UnmarshalPubkey(asn1pubk.PublicKey.Bytes)
}

// secp256k1 curve order, for low-S canonicalization.
var curveOrder, _ = new(big.Int).SetString("FFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFEBAAEDCE6AF48A03BBFD25E8CD0364141", 16)

// toEthereumSignature converts a DER signature into the recoverable 65-byte
// [R || S || V] form. KMS does not report a recovery id, so every candidate
// is tested against the known public key.
func (s *AWSKMSSigner) toEthereumSignature(digest, derSignature []byte) ([]byte, error) {
	var sigAsn1 asn1EcSig
	if _, err := asn1.Unmarshal(derSignature, &sigAsn1); err != nil {
		return nil, fmt.Errorf("failed to parse ASN.1 signature: %w", err)
	}

	r := new(big.Int).SetBytes(sigAsn1.R.Bytes)
	sVal := new(big.Int).SetBytes(sigAsn1.S.Bytes)

	halfOrder := new(big.Int).Rsh(curveOrder, 1)
	if sVal.Cmp(halfOrder) > 0 {
		sVal = new(big.Int).Sub(curveOrder, sVal)
	}

	rBytes := r.FillBytes(make([]byte, 32))
	sBytes := sVal.FillBytes(make([]byte, 32))

	for recoveryId := 0; recoveryId < 4; recoveryId++ {
		signature := make([]byte, 65)
		copy(signature[0:32], rBytes)
		copy(signature[32:64], sBytes)
		signature[64] = byte(recoveryId)

		recoveredBytes, err := crypto.Ecrecover(digest, signature)
		if err != nil {
			s.logger.Debug("Ecrecover failed",
				zap.Int("recoveryId", recoveryId),
				zap.Error(err),
			)
			continue
		}

		recovered, err := crypto.UnmarshalPubkey(recoveredBytes)
		if err != nil {
			continue
		}

		if recovered.X.Cmp(s.publicKey.X) == 0 && recovered.Y.Cmp(s.publicKey.Y) == 0 {
			signature[64] = byte(27 + recoveryId)
			return signature, nil
		}
	}

	return nil, fmt.Errorf("could not determine valid recovery ID for KMS signature")
}

var _ typedDataSigner.ITypedDataSigner = (*AWSKMSSigner)(nil)
