// Command sheets-auth runs the OAuth consent flow once and writes user
// credentials that finweb loads through GOOGLE_SERVICE_ACCOUNT_FILE.
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"finweb/internal/cli"
	"finweb/internal/export"
)

func main() {
	cli.LoadEnvFile()

	// Load client credentials
	clientJSON := os.Getenv("GOOGLE_OAUTH_CLIENT_JSON")
	clientFile := os.Getenv("GOOGLE_OAUTH_CLIENT_FILE")
	var b []byte
	var err error
	switch {
	case clientJSON != "":
		b = []byte(clientJSON)
	case clientFile != "":
		b, err = os.ReadFile(clientFile)
		if err != nil {
			log.Fatalf("read client file: %v", err)
		}
	default:
		log.Fatalf("set GOOGLE_OAUTH_CLIENT_JSON or GOOGLE_OAUTH_CLIENT_FILE")
	}

	// The OAuth client must list http://localhost:<port>/callback as a redirect URI.
	redirectPort := os.Getenv("OAUTH_REDIRECT_PORT")
	if redirectPort == "" {
		redirectPort = "8085"
	}
	cfg, err := export.OAuthConfig(b, "http://localhost:"+redirectPort+"/callback")
	if err != nil {
		log.Fatal(err)
	}

	state := uuid.NewString()
	codeCh := make(chan string, 1)
	mux := http.NewServeMux()
	srv := &http.Server{Addr: ":" + redirectPort, Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	mux.HandleFunc("GET /callback", func(w http.ResponseWriter, r *http.Request) {
		if errStr := r.URL.Query().Get("error"); errStr != "" {
			http.Error(w, "OAuth error: "+errStr, http.StatusBadRequest)
			return
		}
		if r.URL.Query().Get("state") != state {
			http.Error(w, "state mismatch", http.StatusBadRequest)
			return
		}
		fmt.Fprintln(w, "You may close this window and return to the terminal.")
		select {
		case codeCh <- r.URL.Query().Get("code"):
		default:
		}
	})
	go func() { _ = srv.ListenAndServe() }()
	defer srv.Close()

	fmt.Printf("Open this URL to authorize:\n%s\n", cfg.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	select {
	case code := <-codeCh:
		tok, err := cfg.Exchange(ctx, code)
		if err != nil {
			log.Fatalf("token exchange: %v", err)
		}
		creds, err := export.AuthorizedUserJSON(cfg, tok)
		if err != nil {
			log.Fatal(err)
		}
		outFile := os.Getenv("GOOGLE_CREDENTIALS_OUT")
		if outFile == "" {
			outFile = "google-credentials.json"
		}
		if err := os.WriteFile(outFile, creds, 0o600); err != nil {
			log.Fatalf("write credentials: %v", err)
		}
		fmt.Printf("Saved credentials to %s; set GOOGLE_SERVICE_ACCOUNT_FILE=%s\n", outFile, outFile)
	case <-time.After(5 * time.Minute):
		log.Fatalf("authorization timed out")
	case <-ctx.Done():
		log.Fatalf("interrupted")
	}
}
