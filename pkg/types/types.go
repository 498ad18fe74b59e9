package types

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// ProtocolTagV1 is the version discriminator carried by every v1 payload.
// Future protocol revisions use a new tag ("eth@v2", ...) and new schemas
// rather than mutating the v1 field order.
const ProtocolTagV1 = "eth@v1"

// MaxStateLength is the largest serialized state a frame action may carry.
const MaxStateLength = 4096

// ProxyKeyBundle describes a delegated signing key: its address-shaped
// public identifier and the unix-seconds creation time. Immutable once built.
type ProxyKeyBundle struct {
	Timestamp      uint64         `json:"timestamp"`
	ProxyPublicKey common.Address `json:"proxyPublicKey"`
}

// NewProxyKeyBundle stamps a bundle for the given proxy key address with the
// current time.
func NewProxyKeyBundle(proxyPublicKey common.Address) ProxyKeyBundle {
	return ProxyKeyBundle{
		Timestamp:      uint64(time.Now().Unix()),
		ProxyPublicKey: proxyPublicKey,
	}
}

// SignedProxyKeyBundle is the wallet's attestation that the bundled proxy key
// is authorized to sign on its behalf from Bundle.Timestamp onward. The
// signature is an EIP-712 signature over the PublicKeyBundle schema and is
// always re-verified by the receiving side, never trusted at face value.
type SignedProxyKeyBundle struct {
	Bundle        ProxyKeyBundle `json:"bundle"`
	WalletAddress common.Address `json:"walletAddress"`
	Signature     hexutil.Bytes  `json:"signature"`
}

// FrameActionBody is the semantic content of a single frame interaction.
// Optional fields are semantically absent when nil/empty; the signing path
// canonicalizes them to reserved sentinel values because EIP-712 has no
// native optional fields.
type FrameActionBody struct {
	URL                 string          `json:"url"`
	UnixTimestampMillis uint64          `json:"unixTimestampMillis"`
	ButtonIndex         uint32          `json:"buttonIndex"`
	InputText           string          `json:"inputText,omitempty"`
	State               string          `json:"state,omitempty"`
	TransactionID       *common.Hash    `json:"transactionId,omitempty"`
	Address             *common.Address `json:"address,omitempty"`
}

// UntrustedData is the client-asserted portion of a request: the action body,
// the proxy key's signature over it, and the wallet attestation for that
// proxy key. Nothing in here is trusted until the verifier has checked both
// signatures.
type UntrustedData struct {
	FrameActionBody
	Signature         hexutil.Bytes        `json:"signature"`
	SignerAttestation SignedProxyKeyBundle `json:"signerAttestation"`
}

// TrustedData is reserved for forward compatibility. In v1 OpaqueBytes is
// always present and always empty ("0x").
type TrustedData struct {
	OpaqueBytes hexutil.Bytes `json:"opaqueBytes"`
}

// FrameActionRequest is the full wire payload assembled by the action signer
// and consumed, never mutated, by the verifier.
type FrameActionRequest struct {
	ProtocolTag string        `json:"protocolTag"`
	Untrusted   UntrustedData `json:"untrusted"`
	Trusted     TrustedData   `json:"trusted"`
}

// VerifiedFrameAction is the verifier's output: the original body with
// sentinel values mapped back to absence, the overall validity verdict, and
// the wallet the action authenticates back to. Ephemeral, never persisted.
type VerifiedFrameAction struct {
	FrameActionBody
	IsValid                bool           `json:"isValid"`
	RequesterWalletAddress common.Address `json:"requesterWalletAddress"`
}
