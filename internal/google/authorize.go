package google

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/exec"
	"runtime"
	"time"

	"golang.org/x/oauth2"
)

// Authorizer obtains a brand new token by asking the user for consent.
type Authorizer interface {
	Authorize(ctx context.Context, conf *oauth2.Config) (*oauth2.Token, error)
}

const callbackPage = `<!DOCTYPE html>
<html><head><title>assistant</title></head>
<body><p>%s</p><p>You may close this window.</p></body></html>`

// LoopbackAuthorizer runs the installed-app flow: it listens on a loopback
// port, sends the user to the consent page and waits for the redirect.
type LoopbackAuthorizer struct {
	// Addr is the listen address. Defaults to 127.0.0.1:0 (any free port).
	Addr string

	// OpenBrowser opens the consent URL. Defaults to the platform opener.
	// Errors are logged; the URL is always printed to Prompt as well.
	OpenBrowser func(url string) error

	// Prompt receives the consent URL. Defaults to stderr.
	Prompt io.Writer

	Logger *slog.Logger
}

type callbackResult struct {
	code string
	err  error
}

// Authorize blocks until the user completes or denies consent, or ctx ends.
func (a *LoopbackAuthorizer) Authorize(ctx context.Context, conf *oauth2.Config) (*oauth2.Token, error) {
	logger := a.Logger
	if logger == nil {
		logger = slog.Default()
	}
	addr := a.Addr
	if addr == "" {
		addr = "127.0.0.1:0"
	}
	prompt := a.Prompt
	if prompt == nil {
		prompt = os.Stderr
	}
	open := a.OpenBrowser
	if open == nil {
		open = openBrowser
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to start callback listener: %w", err)
	}

	state, err := generateState()
	if err != nil {
		_ = ln.Close()
		return nil, err
	}

	flowConf := *conf
	flowConf.RedirectURL = "http://" + ln.Addr().String() + "/"

	results := make(chan callbackResult, 1)
	srv := &http.Server{
		Handler:           callbackHandler(state, results),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Warn("OAuth callback server stopped", "error", err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	authURL := flowConf.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
	fmt.Fprintf(prompt, "Authorize Google access by visiting:\n\n  %s\n\n", authURL)
	if err := open(authURL); err != nil {
		logger.Debug("could not open browser", "error", err)
	}

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("authorization interrupted: %w", ctx.Err())
	case res := <-results:
		if res.err != nil {
			return nil, res.err
		}
		tok, err := flowConf.Exchange(ctx, res.code)
		if err != nil {
			return nil, fmt.Errorf("failed to exchange authorization code: %w", err)
		}
		return tok, nil
	}
}

// callbackHandler accepts exactly one redirect carrying the expected state.
func callbackHandler(state string, results chan<- callbackResult) http.Handler {
	deliver := func(res callbackResult) {
		select {
		case results <- res:
		default:
		}
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		q := r.URL.Query()

		if e := q.Get("error"); e != "" {
			w.WriteHeader(http.StatusForbidden)
			fmt.Fprintf(w, callbackPage, "Authorization was not granted.")
			deliver(callbackResult{err: fmt.Errorf("consent denied: %s", e)})
			return
		}
		if q.Get("state") != state {
			// Unrelated or forged requests do not end the flow.
			http.Error(w, "invalid state parameter", http.StatusBadRequest)
			return
		}
		code := q.Get("code")
		if code == "" {
			http.Error(w, "missing authorization code", http.StatusBadRequest)
			deliver(callbackResult{err: errors.New("callback carried no authorization code")})
			return
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprintf(w, callbackPage, "Authentication complete.")
		deliver(callbackResult{code: code})
	})
}

func generateState() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate state: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

func openBrowser(url string) error {
	switch runtime.GOOS {
	case "linux", "freebsd", "openbsd":
		return exec.Command("xdg-open", url).Start()
	case "windows":
		return exec.Command("rundll32", "url.dll,FileProtocolHandler", url).Start()
	case "darwin":
		return exec.Command("open", url).Start()
	default:
		return fmt.Errorf("unsupported platform %s", runtime.GOOS)
	}
}
