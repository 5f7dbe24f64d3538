// Command authtool runs the one-time OAuth consent flow and stores the
// resulting credential in the encrypted keystore the server reads.
package main

import (
	"bufio"
	"context"
	"crypto/rand"
	"encoding/hex"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"golang.org/x/term"

	"github.com/vidwarden/vidwarden/internal/auth"
	"github.com/vidwarden/vidwarden/internal/config"
	"github.com/vidwarden/vidwarden/internal/oauth"
	"github.com/vidwarden/vidwarden/internal/storage/boltdb"
)

func main() {
	deleteCred := flag.Bool("delete", false, "Delete the stored credential instead of authorizing")
	flag.Parse()

	if err := run(*deleteCred); err != nil {
		fmt.Fprintf(os.Stderr, "authtool: %v\n", err)
		os.Exit(1)
	}
}

func run(deleteCred bool) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	boltStorage, err := boltdb.New(ctx, cfg.BoltPath)
	if err != nil {
		return fmt.Errorf("failed to open credential database: %w", err)
	}
	defer func() {
		_ = boltStorage.Close()
	}()

	passphrase := cfg.KeystorePassphrase
	if passphrase == "" {
		passphrase, err = readPassword("Keystore passphrase: ")
		if err != nil {
			return err
		}
	}

	oauthClient := oauth.NewClient(cfg.ClientID, cfg.ClientSecret, cfg.RedirectURI)
	store := auth.NewStore(boltStorage, oauthClient, passphrase, logger)

	if deleteCred {
		if err := store.Delete(ctx); err != nil {
			return fmt.Errorf("failed to delete credential: %w", err)
		}
		fmt.Println("Stored credential deleted.")
		return nil
	}

	state, err := randomState()
	if err != nil {
		return err
	}

	fmt.Println("Open this URL in a browser and authorize the application:")
	fmt.Println()
	fmt.Println("  " + oauthClient.AuthCodeURL(state))
	fmt.Println()
	fmt.Println("After approving, copy the `code` parameter from the redirect URL.")

	code, err := readInput("Authorization code: ")
	if err != nil {
		return err
	}
	if code == "" {
		return fmt.Errorf("authorization code is required")
	}

	cred, err := oauthClient.Exchange(ctx, code)
	if err != nil {
		return fmt.Errorf("failed to exchange authorization code: %w", err)
	}

	if err := store.SetCredential(ctx, *cred); err != nil {
		return fmt.Errorf("failed to store credential: %w", err)
	}

	fmt.Println()
	if cred.Account != "" {
		fmt.Printf("Authorized as %s.\n", cred.Account)
	}
	fmt.Printf("Credential stored, access token valid until %s.\n",
		cred.ExpiresAt.Format(time.RFC3339))
	return nil
}

func readInput(prompt string) (string, error) {
	fmt.Print(prompt)
	reader := bufio.NewReader(os.Stdin)
	input, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(input), nil
}

func readPassword(prompt string) (string, error) {
	fmt.Print(prompt)
	fd := int(os.Stdin.Fd())
	pwBytes, err := term.ReadPassword(fd)
	fmt.Println()
	if err != nil {
		return "", err
	}
	return string(pwBytes), nil
}

func randomState() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate state: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
