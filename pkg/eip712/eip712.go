// Package eip712 pins the canonical EIP-712 schemas for the frame action
// protocol. Any signature over these structures must use exactly this field
// order, these types, and this domain; changing any of them produces an
// unrelated signature space.
package eip712

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"

	"github.com/open-frames/frame-actions-go/pkg/types"
)

const (
	DomainName    = "Ethereum Frame Action"
	DomainVersion = "1"

	// Primary type names of the two v1 schemas.
	PublicKeyBundleType = "PublicKeyBundle"
	FrameActionBodyType = "FrameActionBody"
)

// Domain returns the shared domain separator both schemas are scoped under.
func Domain() apitypes.TypedDataDomain {
	return apitypes.TypedDataDomain{
		Name:    DomainName,
		Version: DomainVersion,
	}
}

// domainType matches the fields populated by Domain: name and version only.
var domainType = []apitypes.Type{
	{Name: "name", Type: "string"},
	{Name: "version", Type: "string"},
}

var publicKeyBundleType = []apitypes.Type{
	{Name: "timestamp", Type: "uint64"},
	{Name: "proxyPublicKey", Type: "address"},
}

var frameActionBodyType = []apitypes.Type{
	{Name: "frame_url", Type: "string"},
	{Name: "button_index", Type: "uint32"},
	{Name: "unix_timestamp", Type: "uint64"},
	{Name: "input_text", Type: "string"},
	{Name: "state", Type: "string"},
	{Name: "transaction_id", Type: "bytes32"},
	{Name: "address", Type: "address"},
}

// PublicKeyBundleTypedData builds the typed-data message a wallet signs to
// attest a proxy key bundle.
func PublicKeyBundleTypedData(bundle types.ProxyKeyBundle) apitypes.TypedData {
	return apitypes.TypedData{
		Types: apitypes.Types{
			"EIP712Domain":      domainType,
			PublicKeyBundleType: publicKeyBundleType,
		},
		PrimaryType: PublicKeyBundleType,
		Domain:      Domain(),
		Message: apitypes.TypedDataMessage{
			"timestamp":      uintValue(bundle.Timestamp),
			"proxyPublicKey": bundle.ProxyPublicKey.Hex(),
		},
	}
}

// FrameActionBodyTypedData builds the typed-data message a proxy key signs
// for a single action. The body is canonicalized first so that signing and
// verification always operate on identical sentinel-filled values.
func FrameActionBodyTypedData(body types.FrameActionBody) apitypes.TypedData {
	canonical := CanonicalizeBody(body)
	return apitypes.TypedData{
		Types: apitypes.Types{
			"EIP712Domain":      domainType,
			FrameActionBodyType: frameActionBodyType,
		},
		PrimaryType: FrameActionBodyType,
		Domain:      Domain(),
		Message: apitypes.TypedDataMessage{
			"frame_url":      canonical.URL,
			"button_index":   uintValue(uint64(canonical.ButtonIndex)),
			"unix_timestamp": uintValue(canonical.UnixTimestampMillis),
			"input_text":     canonical.InputText,
			"state":          canonical.State,
			"transaction_id": hexutil.Encode(canonical.TransactionID.Bytes()),
			"address":        canonical.Address.Hex(),
		},
	}
}

// CanonicalizeBody fills absent optional fields with their reserved sentinel
// values: empty string for text fields, all-zero hash and address for the
// byte fields. Applied identically on the signing and verification paths.
func CanonicalizeBody(body types.FrameActionBody) types.FrameActionBody {
	canonical := body
	if canonical.TransactionID == nil {
		canonical.TransactionID = &common.Hash{}
	}
	if canonical.Address == nil {
		canonical.Address = &common.Address{}
	}
	return canonical
}

// StripSentinels maps sentinel values back to absence. Only used when
// producing the final verified result; business logic never compares raw
// zero values anywhere else. A legitimately all-zero transaction id or
// address is indistinguishable from an omitted one, which is a known
// protocol limitation.
func StripSentinels(body types.FrameActionBody) types.FrameActionBody {
	stripped := body
	if stripped.TransactionID != nil && *stripped.TransactionID == (common.Hash{}) {
		stripped.TransactionID = nil
	}
	if stripped.Address != nil && *stripped.Address == (common.Address{}) {
		stripped.Address = nil
	}
	return stripped
}

// HashTypedData computes the EIP-712 digest (keccak256 of
// \x19\x01 || domainSeparator || structHash) that is actually signed.
func HashTypedData(typedData apitypes.TypedData) (common.Hash, error) {
	digest, _, err := apitypes.TypedDataAndHash(typedData)
	if err != nil {
		return common.Hash{}, fmt.Errorf("failed to hash typed data: %w", err)
	}
	return common.BytesToHash(digest), nil
}

func uintValue(v uint64) *math.HexOrDecimal256 {
	return (*math.HexOrDecimal256)(new(big.Int).SetUint64(v))
}
