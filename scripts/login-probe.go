// Command login-probe walks the full DeLonghi Comfort login handshake
// once and prints the resulting tokens. Useful when the vendor changes
// the identity flow and the daemon starts failing to authenticate.
//
// Run it standalone:
//
//	go run ./scripts/login-probe.go -email you@example.com -password secret
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/delonghi-comfort/comfortd/internal/auth"
)

func main() {
	var (
		email    = flag.String("email", os.Getenv("COMFORTD_EMAIL"), "account email")
		password = flag.String("password", os.Getenv("COMFORTD_PASSWORD"), "account password")
		language = flag.String("language", "en", "account language code")
		timeout  = flag.Int("timeout", 60, "seconds to allow for the whole handshake")
	)
	flag.Parse()

	if *email == "" || *password == "" {
		fmt.Fprintln(os.Stderr, "email and password are required")
		os.Exit(2)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(*timeout)*time.Second)
	defer cancel()

	sequencer := auth.NewSequencer(auth.Credentials{
		Language: *language,
		Email:    *email,
		Password: *password,
	})

	start := time.Now()
	pair, err := sequencer.Login(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "login: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("login ok in %s\n", time.Since(start).Round(time.Millisecond))
	fmt.Printf("access_token:  %s\n", pair.AccessToken)
	fmt.Printf("refresh_token: %s\n", pair.RefreshToken)
	fmt.Printf("expires_at:    %s\n", pair.ExpiresAt.Format(time.RFC3339))
}
