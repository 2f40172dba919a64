package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"manifest-service/internal/infrastructure/config"
	"manifest-service/internal/infrastructure/oauth"
	"manifest-service/pkg/logger"

	"github.com/google/uuid"
)

const callbackAddr = "localhost:8090"

// Prints a Gmail refresh token for GMAIL_REFRESH_TOKEN after a browser consent.
func main() {
	log := logger.NewLogger("info")

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load config", "error", err)
	}
	if cfg.GmailClientID == "" || cfg.GmailClientSecret == "" {
		log.Fatal("GMAIL_CLIENT_ID and GMAIL_CLIENT_SECRET must be set")
	}

	gmailOAuth := oauth.NewGmailOAuth(
		cfg.GmailClientID,
		cfg.GmailClientSecret,
		"",
		"http://"+callbackAddr+"/oauth2callback",
		log,
	)

	state := uuid.NewString()

	// Start an HTTP server to handle the OAuth callback
	http.HandleFunc("/oauth2callback", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("state") != state {
			http.Error(w, "Invalid state parameter", http.StatusBadRequest)
			return
		}

		token, err := gmailOAuth.ExchangeCode(context.Background(), r.URL.Query().Get("code"))
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		fmt.Printf("\nGMAIL_REFRESH_TOKEN=%s\n\n", token.RefreshToken)
		fmt.Fprintf(w, "Authentication successful! You can close this window.")
		os.Exit(0)
	})

	fmt.Printf("Open this URL in your browser:\n%s\n", gmailOAuth.GenerateAuthURL(state))

	if err := http.ListenAndServe(callbackAddr, nil); err != nil {
		log.Fatal("Callback server error", "error", err)
	}
}
