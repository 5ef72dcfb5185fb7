package daemon

import (
	"context"
	"net/http"
	"net/url"
	"time"
)

const notifyTimeout = 500 * time.Millisecond

// HTTPNotifier tells a running daemon to reload. Failures are ignored: with
// no daemon running there is nothing to refresh.
type HTTPNotifier struct {
	addr string
	http *http.Client
}

// NewHTTPNotifier targets the daemon listening on addr.
func NewHTTPNotifier(addr string) *HTTPNotifier {
	if addr == "" {
		addr = DefaultAddr
	}
	return &HTTPNotifier{addr: addr, http: &http.Client{Timeout: notifyTimeout}}
}

// Notify posts a refresh request and returns without reporting errors.
func (n *HTTPNotifier) Notify(reason string) {
	ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
	defer cancel()

	u := "http://" + n.addr + "/v1/refresh?reason=" + url.QueryEscape(reason)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, nil)
	if err != nil {
		return
	}
	resp, err := n.http.Do(req)
	if err != nil {
		return
	}
	_ = resp.Body.Close()
}

// NopNotifier drops refresh signals.
type NopNotifier struct{}

// Notify implements ledger.Notifier.
func (NopNotifier) Notify(string) {}
