package util

import (
	"encoding/json"
	"fmt"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"golang.org/x/crypto/sha3"

	"github.com/open-frames/frame-actions-go/pkg/types"
)

// Keccak256 computes the keccak256 hash of data.
func Keccak256(data []byte) []byte {
	h := sha3.NewLegacyKeccak256()
	h.Write(data)
	return h.Sum(nil)
}

// RequestDigest returns a stable 0x-hex identifier for a request, the
// keccak256 of its canonical JSON encoding. Used to correlate log lines
// about the same payload; carries no trust meaning.
func RequestDigest(request *types.FrameActionRequest) (string, error) {
	encoded, err := json.Marshal(request)
	if err != nil {
		return "", fmt.Errorf("failed to encode request: %w", err)
	}
	return hexutil.Encode(Keccak256(encoded)), nil
}
