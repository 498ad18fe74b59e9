package config

import (
	"os"
	"strings"

	"k8s.io/apimachinery/pkg/util/validation/field"
)

// Environment variable names for the frame action tooling
const (
	EnvWalletPrivateKey = "FRAME_WALLET_PRIVATE_KEY"
	EnvKMSKeyId         = "FRAME_KMS_KEY_ID"
	EnvAWSRegion        = "FRAME_AWS_REGION"
	EnvVerbose          = "FRAME_VERBOSE"
)

// WalletConfig selects the wallet signer backend: exactly one of a local hex
// private key or an AWS KMS key id.
type WalletConfig struct {
	PrivateKey string `json:"privateKey" yaml:"privateKey"`
	KMSKeyId   string `json:"kmsKeyId" yaml:"kmsKeyId"`
	AWSRegion  string `json:"awsRegion" yaml:"awsRegion"`
}

func (wc *WalletConfig) Validate() error {
	var allErrors field.ErrorList
	if wc.PrivateKey == "" && wc.KMSKeyId == "" {
		allErrors = append(allErrors, field.Required(field.NewPath("privateKey"), "one of privateKey or kmsKeyId is required"))
	}
	if wc.PrivateKey != "" && wc.KMSKeyId != "" {
		allErrors = append(allErrors, field.Invalid(field.NewPath("kmsKeyId"), wc.KMSKeyId, "privateKey and kmsKeyId are mutually exclusive"))
	}
	if wc.PrivateKey != "" {
		key := strings.TrimPrefix(wc.PrivateKey, "0x")
		if len(key) != 64 {
			allErrors = append(allErrors, field.Invalid(field.NewPath("privateKey"), "<redacted>", "private key must be 32 bytes (64 hex chars)"))
		}
	}
	if len(allErrors) > 0 {
		return allErrors.ToAggregate()
	}
	return nil
}

// UsesKMS reports whether the AWS KMS backend is selected.
func (wc *WalletConfig) UsesKMS() bool {
	return wc.KMSKeyId != ""
}

// ClientConfig is the complete configuration for the frame action CLI.
type ClientConfig struct {
	Wallet WalletConfig `json:"wallet" yaml:"wallet"`
	Debug  bool         `json:"debug" yaml:"debug"`
}

func (cc *ClientConfig) Validate() error {
	return cc.Wallet.Validate()
}

// FromEnv builds a ClientConfig from the FRAME_* environment variables.
// Flag values, when present, take precedence at the CLI layer.
func FromEnv() *ClientConfig {
	return &ClientConfig{
		Wallet: WalletConfig{
			PrivateKey: os.Getenv(EnvWalletPrivateKey),
			KMSKeyId:   os.Getenv(EnvKMSKeyId),
			AWSRegion:  os.Getenv(EnvAWSRegion),
		},
		Debug: os.Getenv(EnvVerbose) != "",
	}
}
