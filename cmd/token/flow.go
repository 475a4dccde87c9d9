package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/manifoldco/promptui"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

const callbackTimeout = 5 * time.Minute

type authFlow func(ctx context.Context, cfg *oauth2.Config, log *zap.Logger) (*oauth2.Token, error)

type callbackResult struct {
	code string
	err  error
}

// loopbackFlow serves the OAuth redirect on an ephemeral localhost port.
func loopbackFlow(ctx context.Context, cfg *oauth2.Config, log *zap.Logger) (*oauth2.Token, error) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, fmt.Errorf("starting callback listener: %w", err)
	}

	cfg.RedirectURL = fmt.Sprintf("http://%s/", listener.Addr().String())
	state := uuid.NewString()
	results := make(chan callbackResult, 1)
	deliver := func(res callbackResult) {
		select {
		case results <- res:
		default:
		}
	}

	server := &http.Server{
		ReadHeaderTimeout: 10 * time.Second,
		Handler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			query := r.URL.Query()
			switch {
			case query.Get("state") != state:
				http.Error(w, "state mismatch", http.StatusBadRequest)
				return
			case query.Get("error") != "":
				fmt.Fprintln(w, "Authorization was denied. You can close this window.")
				deliver(callbackResult{err: fmt.Errorf("authorization denied: %s", query.Get("error"))})
			default:
				fmt.Fprintln(w, "Authorization complete. You can close this window.")
				deliver(callbackResult{code: query.Get("code")})
			}
		}),
	}

	go func() {
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			deliver(callbackResult{err: err})
		}
	}()
	defer server.Close()

	authURL := cfg.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
	log.Info("open the following URL in a browser to authorize calendar access")
	fmt.Println(authURL)

	ctx, cancel := context.WithTimeout(ctx, callbackTimeout)
	defer cancel()

	select {
	case res := <-results:
		if res.err != nil {
			return nil, res.err
		}
		return exchange(ctx, cfg, res.code)
	case <-ctx.Done():
		return nil, fmt.Errorf("waiting for authorization: %w", ctx.Err())
	}
}

// manualFlow is for hosts without a browser: the code is copied from the
// redirect URL and pasted back.
func manualFlow(ctx context.Context, cfg *oauth2.Config, log *zap.Logger) (*oauth2.Token, error) {
	if cfg.RedirectURL == "" {
		cfg.RedirectURL = "http://localhost/"
	}

	state := uuid.NewString()
	log.Info("open the URL, approve access, then copy the code parameter from the address bar")
	fmt.Println(cfg.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce))

	prompt := promptui.Prompt{
		Label: "Authorization code",
		Validate: func(input string) error {
			if strings.TrimSpace(input) == "" {
				return errors.New("code is required")
			}
			return nil
		},
	}

	code, err := prompt.Run()
	if err != nil {
		return nil, err
	}

	return exchange(ctx, cfg, strings.TrimSpace(code))
}

func exchange(ctx context.Context, cfg *oauth2.Config, code string) (*oauth2.Token, error) {
	if code == "" {
		return nil, errors.New("empty authorization code")
	}

	tok, err := cfg.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("exchanging authorization code: %w", err)
	}
	if tok.RefreshToken == "" {
		return nil, errors.New("google returned no refresh token; revoke the app's access and retry")
	}

	return tok, nil
}
