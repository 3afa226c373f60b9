package main

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/ETAnderson/dealboard/internal/api/auth"
)

func newGenKeysCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "gen-keys [dir]",
		Short: "Write an RS256 key pair for admin tokens",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outDir := "./secrets"
			if len(args) == 1 {
				outDir = args[0]
			}

			privPath, pubPath, err := writeKeyPair(outDir)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\nWrote %s\n", privPath, pubPath)
			return nil
		},
	}
}

func writeKeyPair(outDir string) (privPath string, pubPath string, err error) {
	if err := os.MkdirAll(outDir, 0o700); err != nil {
		return "", "", fmt.Errorf("mkdir failed: %w", err)
	}

	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		return "", "", fmt.Errorf("keygen failed: %w", err)
	}

	// PKCS#1 private, SPKI public
	privPEM := pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(priv),
	})

	pubDER, err := x509.MarshalPKIXPublicKey(&priv.PublicKey)
	if err != nil {
		return "", "", fmt.Errorf("marshal public key failed: %w", err)
	}
	pubPEM := pem.EncodeToMemory(&pem.Block{
		Type:  "PUBLIC KEY",
		Bytes: pubDER,
	})

	privPath = filepath.Join(outDir, "jwt_private.pem")
	pubPath = filepath.Join(outDir, "jwt_public.pem")

	if err := os.WriteFile(privPath, privPEM, 0o600); err != nil {
		return "", "", fmt.Errorf("write private key failed: %w", err)
	}
	if err := os.WriteFile(pubPath, pubPEM, 0o644); err != nil {
		return "", "", fmt.Errorf("write public key failed: %w", err)
	}
	return privPath, pubPath, nil
}

func newMintTokenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mint-token",
		Short: "Sign an admin bearer token with the private key from the environment",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sub, _ := cmd.Flags().GetString("sub")
			role, _ := cmd.Flags().GetString("role")
			ttl, _ := cmd.Flags().GetDuration("ttl")
			envKey, _ := cmd.Flags().GetString("env")

			priv, err := auth.LoadRSAPrivateKeyFromEnv(envKey)
			if err != nil {
				return fmt.Errorf("load private key failed: %w", err)
			}

			tok, err := auth.SignRS256(priv, sub, role, ttl)
			if err != nil {
				return fmt.Errorf("sign token failed: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), tok)
			return nil
		},
	}

	cmd.Flags().String("sub", "dev-admin", "Subject (sub)")
	cmd.Flags().String("role", auth.RoleAdmin, "Role claim")
	cmd.Flags().Duration("ttl", 30*time.Minute, "Token TTL (e.g. 30m, 2h)")
	cmd.Flags().String("env", "JWT_PRIVATE_KEY_PEM", "Env var containing the RSA private key PEM")
	return cmd
}
