package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/aws/aws-sdk-go-v2/service/kms"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/open-frames/frame-actions-go/internal/aws"
	"github.com/open-frames/frame-actions-go/pkg/action"
	"github.com/open-frames/frame-actions-go/pkg/config"
	"github.com/open-frames/frame-actions-go/pkg/delegation"
	"github.com/open-frames/frame-actions-go/pkg/logger"
	"github.com/open-frames/frame-actions-go/pkg/typedDataSigner"
	"github.com/open-frames/frame-actions-go/pkg/typedDataSigner/awsKmsSigner"
	"github.com/open-frames/frame-actions-go/pkg/typedDataSigner/inMemorySigner"
	"github.com/open-frames/frame-actions-go/pkg/types"
	"github.com/open-frames/frame-actions-go/pkg/util"
	"github.com/open-frames/frame-actions-go/pkg/verifier"
)

// delegationFile is the on-disk pairing of a wallet attestation with the
// proxy private key it authorizes. Keep it local to the machine that minted
// it; the key grants signing authority until the client discards it.
type delegationFile struct {
	Delegation      *types.SignedProxyKeyBundle `json:"delegation"`
	ProxyPrivateKey string                      `json:"proxyPrivateKey"`
}

func main() {
	app := &cli.App{
		Name:  "frame-action",
		Usage: "Create delegations, sign frame actions, and verify payloads",
		Description: `Tooling for the Ethereum Frame Action protocol (eth@v1).

- delegate mints a short-lived proxy key and asks your wallet to attest it
- sign signs an action body with a proxy key and assembles the wire payload
- verify re-validates a payload's delegation and action signatures`,
		Version: "1.0.0",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "verbose",
				Usage:   "Enable debug logging",
				EnvVars: []string{config.EnvVerbose},
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "delegate",
				Usage: "Mint a proxy key and obtain the wallet attestation",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "private-key",
						Usage:   "Wallet private key (hex)",
						EnvVars: []string{config.EnvWalletPrivateKey},
					},
					&cli.StringFlag{
						Name:    "kms-key-id",
						Usage:   "AWS KMS key id backing the wallet",
						EnvVars: []string{config.EnvKMSKeyId},
					},
					&cli.StringFlag{
						Name:    "aws-region",
						Usage:   "AWS region for the KMS key",
						EnvVars: []string{config.EnvAWSRegion},
					},
					&cli.StringFlag{
						Name:  "out",
						Usage: "Output file for the delegation bundle",
						Value: "delegation.json",
					},
				},
				Action: delegateCommand,
			},
			{
				Name:  "sign",
				Usage: "Sign an action body and assemble the wire payload",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "delegation",
						Usage:    "Delegation bundle file written by delegate",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "body",
						Usage:    "JSON file containing the frame action body",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "out",
						Usage: "Output file for the payload (stdout when empty)",
					},
				},
				Action: signCommand,
			},
			{
				Name:  "verify",
				Usage: "Verify a frame action payload end to end",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "payload",
						Usage:    "JSON file containing the FrameActionRequest",
						Required: true,
					},
				},
				Action: verifyCommand,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newLogger(c *cli.Context) (*zap.Logger, error) {
	return logger.NewLogger(&logger.LoggerConfig{Debug: c.Bool("verbose")})
}

// buildWalletSigner selects the wallet backend from flags/env: a local
// private key or an AWS KMS key.
func buildWalletSigner(ctx context.Context, c *cli.Context, l *zap.Logger) (typedDataSigner.ITypedDataSigner, error) {
	cfg := &config.WalletConfig{
		PrivateKey: c.String("private-key"),
		KMSKeyId:   c.String("kms-key-id"),
		AWSRegion:  c.String("aws-region"),
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid wallet configuration: %w", err)
	}

	if cfg.UsesKMS() {
		awsCfg, err := aws.LoadAWSConfig(ctx, cfg.AWSRegion)
		if err != nil {
			return nil, fmt.Errorf("failed to load AWS config: %w", err)
		}
		if identity, err := aws.GetCallerIdentity(ctx, awsCfg); err == nil && identity.Arn != nil {
			l.Debug("Using AWS credentials", zap.String("arn", *identity.Arn))
		}
		return awsKmsSigner.NewAWSKMSSigner(ctx, kms.NewFromConfig(awsCfg), cfg.KMSKeyId, l)
	}

	return inMemorySigner.NewInMemorySignerFromHex(cfg.PrivateKey, l)
}

func delegateCommand(c *cli.Context) error {
	l, err := newLogger(c)
	if err != nil {
		return err
	}
	defer func() { _ = l.Sync() }()

	walletSigner, err := buildWalletSigner(c.Context, c, l)
	if err != nil {
		return err
	}

	signed, proxyKey, err := delegation.CreateDelegation(c.Context, walletSigner)
	if err != nil {
		return fmt.Errorf("failed to create delegation: %w", err)
	}

	out := delegationFile{
		Delegation:      signed,
		ProxyPrivateKey: hexutil.Encode(crypto.FromECDSA(proxyKey)),
	}
	encoded, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(c.String("out"), encoded, 0o600); err != nil {
		return fmt.Errorf("failed to write delegation file: %w", err)
	}

	l.Info("Created delegation",
		zap.String("wallet", signed.WalletAddress.Hex()),
		zap.String("proxyPublicKey", signed.Bundle.ProxyPublicKey.Hex()),
		zap.String("file", c.String("out")),
	)
	return nil
}

func signCommand(c *cli.Context) error {
	l, err := newLogger(c)
	if err != nil {
		return err
	}
	defer func() { _ = l.Sync() }()

	var stored delegationFile
	if err := readJSONFile(c.String("delegation"), &stored); err != nil {
		return err
	}
	if stored.Delegation == nil {
		return fmt.Errorf("delegation file %s has no delegation", c.String("delegation"))
	}

	var body types.FrameActionBody
	if err := readJSONFile(c.String("body"), &body); err != nil {
		return err
	}

	proxySigner, err := inMemorySigner.NewInMemorySignerFromHex(stored.ProxyPrivateKey, l)
	if err != nil {
		return fmt.Errorf("failed to load proxy key: %w", err)
	}

	request, err := action.BuildRequest(c.Context, body, proxySigner, stored.Delegation)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}

	encoded, err := json.MarshalIndent(request, "", "  ")
	if err != nil {
		return err
	}
	if out := c.String("out"); out != "" {
		if err := os.WriteFile(out, encoded, 0o644); err != nil {
			return fmt.Errorf("failed to write payload file: %w", err)
		}
	} else {
		fmt.Println(string(encoded))
	}

	if digest, err := util.RequestDigest(request); err == nil {
		l.Info("Signed frame action", zap.String("requestDigest", digest))
	}
	return nil
}

func verifyCommand(c *cli.Context) error {
	l, err := newLogger(c)
	if err != nil {
		return err
	}
	defer func() { _ = l.Sync() }()

	raw, err := os.ReadFile(c.String("payload"))
	if err != nil {
		return fmt.Errorf("failed to read payload file: %w", err)
	}

	// Structural guard first; only well-formed payloads reach the
	// cryptographic checks.
	if !verifier.IsWellFormed(raw) {
		return fmt.Errorf("payload is not a well-formed %s request", types.ProtocolTagV1)
	}

	var request types.FrameActionRequest
	if err := json.Unmarshal(raw, &request); err != nil {
		return fmt.Errorf("failed to decode payload: %w", err)
	}

	verified, err := verifier.NewVerifier(l).VerifyAction(c.Context, &request)
	if err != nil {
		return fmt.Errorf("verification failed: %w", err)
	}

	encoded, err := json.MarshalIndent(verified, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(encoded))

	if !verified.IsValid {
		return cli.Exit("frame action is not authenticated", 1)
	}
	return nil
}

func readJSONFile(path string, v any) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return nil
}
