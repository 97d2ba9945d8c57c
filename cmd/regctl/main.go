// Command regctl is the operator and client CLI for the verification
// registry: it computes proof commitments, mints development tokens and
// calls a running server.
package main

import (
	"encoding/hex"
	"fmt"
	"log"
	"math"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	jwttoken "verireg/internal/jwt_token"
	id "verireg/pkg/domain"
	platformstrings "verireg/pkg/platform/strings"
)

var flagServerAddr = &cli.StringFlag{
	Name:    "server",
	Value:   "http://127.0.0.1:8080",
	Usage:   "registry server base URL",
	EnvVars: []string{"REGCTL_SERVER"},
}

var flagToken = &cli.StringFlag{
	Name:    "token",
	Usage:   "bearer token identifying the caller",
	EnvVars: []string{"REGCTL_TOKEN"},
}

var flagAccount = &cli.StringFlag{
	Name:     "account",
	Required: true,
	Usage:    "target account",
}

var flagProof = &cli.StringFlag{
	Name:     "proof",
	Required: true,
	Usage:    "proof hash, 64 hex chars with optional 0x prefix",
}

var claimFlags = []cli.Flag{
	&cli.StringFlag{Name: "name", Required: true, Usage: "claimed name"},
	&cli.UintFlag{Name: "age", Required: true, Usage: "claimed age"},
	&cli.StringFlag{Name: "document-id", Required: true, Usage: "claimed document identifier"},
}

func main() {
	app := &cli.App{
		Name:  "regctl",
		Usage: "interact with the identity verification registry",
		Flags: []cli.Flag{flagServerAddr, flagToken},
		Commands: []*cli.Command{
			{
				Name:  "proof",
				Usage: "compute the blake2b commitment of a claim",
				Flags: append(claimFlags, &cli.StringFlag{Name: "salt", Usage: "hex-encoded salt"}),
				Action: func(cCtx *cli.Context) error {
					proof, err := commitmentFromFlags(cCtx)
					if err != nil {
						return err
					}
					fmt.Fprintln(cCtx.App.Writer, proof.String())
					return nil
				},
			},
			{
				Name:  "token",
				Usage: "mint a bearer token for an account with a shared signing key",
				Flags: []cli.Flag{
					flagAccount,
					&cli.DurationFlag{Name: "ttl", Value: time.Hour, Usage: "token lifetime"},
					&cli.StringFlag{Name: "signing-key", Required: true, EnvVars: []string{"JWT_SIGNING_KEY"}, Usage: "HMAC signing key"},
					&cli.StringFlag{Name: "issuer", Value: "verireg", EnvVars: []string{"JWT_ISSUER"}},
					&cli.StringFlag{Name: "audience", Value: "verireg-api", EnvVars: []string{"JWT_AUDIENCE"}},
				},
				Action: func(cCtx *cli.Context) error {
					account, err := id.ParseAccountID(cCtx.String(flagAccount.Name))
					if err != nil {
						return err
					}
					svc := jwttoken.NewJWTService(cCtx.String("signing-key"), cCtx.String("issuer"), cCtx.String("audience"))
					token, err := svc.GenerateAccessToken(account, cCtx.Duration("ttl"))
					if err != nil {
						return err
					}
					fmt.Fprintln(cCtx.App.Writer, token)
					return nil
				},
			},
			{
				Name:  "submit",
				Usage: "submit the caller's identity claims",
				Flags: append(claimFlags, &cli.StringFlag{Name: "proof", Required: true, Usage: "proof hash"}),
				Action: func(cCtx *cli.Context) error {
					age, err := checkedAge(cCtx.Uint("age"))
					if err != nil {
						return err
					}
					return newClient(cCtx).Submit(cCtx.Context, submitPayload{
						Name:       cCtx.String("name"),
						Age:        age,
						DocumentID: cCtx.String("document-id"),
						ProofHash:  cCtx.String("proof"),
					})
				},
			},
			{
				Name:  "verify",
				Usage: "verify an account's identity as a verifier",
				Flags: []cli.Flag{flagAccount, flagProof},
				Action: func(cCtx *cli.Context) error {
					return newClient(cCtx).Verify(cCtx.Context, cCtx.String(flagAccount.Name), cCtx.String(flagProof.Name))
				},
			},
			{
				Name:  "add-verifier",
				Usage: "grant verifier rights (owner only)",
				Flags: []cli.Flag{flagAccount},
				Action: func(cCtx *cli.Context) error {
					return newClient(cCtx).AddVerifier(cCtx.Context, cCtx.String(flagAccount.Name))
				},
			},
			{
				Name:  "remove-verifier",
				Usage: "revoke verifier rights (owner only)",
				Flags: []cli.Flag{flagAccount},
				Action: func(cCtx *cli.Context) error {
					return newClient(cCtx).RemoveVerifier(cCtx.Context, cCtx.String(flagAccount.Name))
				},
			},
			{
				Name:  "identity",
				Usage: "show the stored identity record",
				Flags: []cli.Flag{flagAccount},
				Action: func(cCtx *cli.Context) error {
					return newClient(cCtx).Identity(cCtx.Context, cCtx.String(flagAccount.Name))
				},
			},
			{
				Name:  "audit-tail",
				Usage: "stream audit events relayed to Kafka",
				Flags: []cli.Flag{
					&cli.StringSliceFlag{Name: "brokers", Required: true, EnvVars: []string{"KAFKA_BROKERS"}, Usage: "Kafka seed brokers"},
					&cli.StringFlag{Name: "topic", Value: "registry.audit", EnvVars: []string{"KAFKA_TOPIC"}},
					&cli.StringFlag{Name: "group", Usage: "consumer group; offsets are committed when set"},
					&cli.StringSliceFlag{Name: "category", Usage: "only show these categories (compliance, security, operations)"},
					&cli.BoolFlag{Name: "from-start", Usage: "read the topic from the beginning"},
				},
				Action: func(cCtx *cli.Context) error {
					ctx, stop := signal.NotifyContext(cCtx.Context, os.Interrupt, syscall.SIGTERM)
					defer stop()
					return tailAudit(ctx, cCtx.App.Writer, auditTailConfig{
						Brokers:    platformstrings.DedupeAndTrim(cCtx.StringSlice("brokers")),
						Topic:      cCtx.String("topic"),
						Group:      cCtx.String("group"),
						Categories: cCtx.StringSlice("category"),
						FromStart:  cCtx.Bool("from-start"),
					})
				},
			},
			{
				Name:  "status",
				Usage: "show whether an account is verified and whether it is a verifier",
				Flags: []cli.Flag{flagAccount},
				Action: func(cCtx *cli.Context) error {
					return newClient(cCtx).Status(cCtx.Context, cCtx.String(flagAccount.Name))
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newClient(cCtx *cli.Context) *Client {
	return NewClient(cCtx.String(flagServerAddr.Name), cCtx.String(flagToken.Name), cCtx.App.Writer)
}

func commitmentFromFlags(cCtx *cli.Context) (id.ProofHash, error) {
	salt, err := hex.DecodeString(strings.TrimPrefix(cCtx.String("salt"), "0x"))
	if err != nil {
		return id.ProofHash{}, fmt.Errorf("could not parse salt: %w", err)
	}
	age, err := checkedAge(cCtx.Uint("age"))
	if err != nil {
		return id.ProofHash{}, err
	}
	return id.CommitClaim(cCtx.String("name"), age, cCtx.String("document-id"), salt), nil
}

// checkedAge narrows a flag value to the registry's 32-bit age.
func checkedAge(age uint) (uint32, error) {
	if uint64(age) > math.MaxUint32 {
		return 0, fmt.Errorf("age %d does not fit in 32 bits", age)
	}
	return uint32(age), nil
}
