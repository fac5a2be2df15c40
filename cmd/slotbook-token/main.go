// Command slotbook-token mints a bearer token for a user id, signed with the
// server's configured secret.
package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/pflag"

	"slotbook/internal/auth"
	"slotbook/internal/config"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "slotbook-token:", err)
		os.Exit(1)
	}
}

func run(args []string, out io.Writer) error {
	fs := pflag.NewFlagSet("slotbook-token", pflag.ContinueOnError)
	userID := fs.StringP("user", "u", "", "user id to put in the uid claim")
	ttl := fs.Duration("ttl", 15*time.Minute, "token lifetime")
	secret := fs.String("secret", "", "signing secret (defaults to SLOTBOOK_AUTH_JWT_SECRET)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if strings.TrimSpace(*userID) == "" {
		return fmt.Errorf("--user is required")
	}
	if *ttl <= 0 {
		return fmt.Errorf("--ttl must be positive")
	}
	if *secret == "" {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		*secret = cfg.JWTSecret
	}

	tok, err := auth.MakeToken(*userID, *secret, *ttl)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, tok)
	return err
}
