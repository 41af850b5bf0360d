package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

const loginPage = `<!DOCTYPE html>
<html>
<body style="font-family: sans-serif; text-align: center; margin-top: 4em;">
<h2>Authorization complete 🎶</h2>
<p>You can close this tab and return to the terminal.</p>
</body>
</html>`

// Login walks through the authorization-code grant: it prints the consent
// URL, waits for the accounts service to redirect back to the local
// listener and caches the exchanged token.
func (a *Authenticator) Login(ctx context.Context) error {
	state, err := randomState()
	if err != nil {
		return err
	}

	handler := newCallbackHandler(state)
	srv := &http.Server{
		Addr:              fmt.Sprintf("localhost:%d", a.port),
		Handler:           handler,
		ReadHeaderTimeout: 15 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	fmt.Printf("Open this URL in your browser to authorize access:\n\n  %s\n\n", a.conf.AuthCodeURL(state))
	slog.Info("waiting for authorization callback", "port", a.port)

	var code string
	select {
	case res := <-handler.results:
		if res.err != nil {
			return res.err
		}
		code = res.code
	case err := <-serverErr:
		return fmt.Errorf("auth: callback server: %w", err)
	case <-ctx.Done():
		return fmt.Errorf("auth: login aborted: %w", ctx.Err())
	}

	tok, err := a.conf.Exchange(ctx, code)
	if err != nil {
		return fmt.Errorf("auth: exchange code: %w", err)
	}
	if err := saveToken(a.tokenFile, tok); err != nil {
		return err
	}
	slog.Info("token cached", "file", a.tokenFile)
	return nil
}

// callbackResult carries the authorization code, or the provider error,
// from the HTTP handler back to the login flow.
type callbackResult struct {
	code string
	err  error
}

// callbackHandler is the HTTP surface of the login flow: a single route
// that checks the state parameter and hands the code over.
type callbackHandler struct {
	state   string
	results chan callbackResult
	router  *http.ServeMux
}

func newCallbackHandler(state string) *callbackHandler {
	h := &callbackHandler{
		state:   state,
		results: make(chan callbackResult, 1),
		router:  http.NewServeMux(),
	}
	// Go 1.21's ServeMux has no method patterns; this keeps the contract of
	// a "GET /callback" registration: GET and HEAD reach the handler, every
	// other method gets 405 with an Allow header.
	h.router.HandleFunc("/callback", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			w.Header().Set("Allow", "GET, HEAD")
			http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
			return
		}
		h.Callback(w, r)
	})
	return h
}

// ServeHTTP satisfies the http.Handler interface.
func (h *callbackHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.router.ServeHTTP(w, r)
}

func (h *callbackHandler) Callback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if q.Get("state") != h.state {
		http.Error(w, "state mismatch", http.StatusForbidden)
		h.deliver(callbackResult{err: errors.New("auth: state mismatch in callback")})
		return
	}
	if msg := q.Get("error"); msg != "" {
		http.Error(w, "authorization denied", http.StatusForbidden)
		h.deliver(callbackResult{err: fmt.Errorf("auth: authorization denied: %s", msg)})
		return
	}
	code := q.Get("code")
	if code == "" {
		http.Error(w, "missing code", http.StatusBadRequest)
		h.deliver(callbackResult{err: errors.New("auth: callback missing code")})
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprint(w, loginPage)
	h.deliver(callbackResult{code: code})
}

// deliver is non-blocking so a stray second redirect cannot wedge the
// handler once the flow already finished.
func (h *callbackHandler) deliver(res callbackResult) {
	select {
	case h.results <- res:
	default:
	}
}

func randomState() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("auth: generate state: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
