package gateway

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/corefellowship/backend/internal/logging"
	"github.com/corefellowship/backend/internal/principal"
	"github.com/corefellowship/backend/internal/web"
)

// RewriteFunc maps an edge path to the path used on the backend service.
type RewriteFunc func(path string) string

// Forwarder relays a request to one backend service. The validated request
// identity travels as X-User-* headers; the client's own Authorization
// header is not forwarded, so backends never see raw credentials.
type Forwarder struct {
	target  *url.URL
	rewrite RewriteFunc
	client  *http.Client
	log     logging.Logger
}

// NewForwarder builds a forwarder for the given backend base URL. rewrite
// may be nil, in which case paths pass through unchanged.
func NewForwarder(baseURL string, rewrite RewriteFunc, timeout time.Duration, log logging.Logger) (*Forwarder, error) {
	target, err := url.Parse(baseURL)
	if err != nil {
		return nil, err
	}
	return &Forwarder{
		target:  target,
		rewrite: rewrite,
		client: &http.Client{
			Timeout: timeout,
			// The gateway relays backend redirects to the client verbatim.
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		log: log,
	}, nil
}

func (f *Forwarder) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path
	if f.rewrite != nil {
		path = f.rewrite(path)
	}

	outURL := *f.target
	outURL.Path = singleJoin(f.target.Path, path)
	outURL.RawQuery = r.URL.RawQuery

	out, err := http.NewRequestWithContext(r.Context(), r.Method, outURL.String(), r.Body)
	if err != nil {
		web.Error(w, http.StatusBadGateway, "Bad gateway")
		return
	}
	if ct := r.Header.Get("Content-Type"); ct != "" {
		out.Header.Set("Content-Type", ct)
	}
	if p, ok := principal.FromContext(r.Context()); ok {
		principal.SetHeaders(out.Header, p)
	}

	resp, err := f.client.Do(out)
	if err != nil {
		status := http.StatusBadGateway
		msg := "Bad gateway"
		if errors.Is(err, context.DeadlineExceeded) || isTimeout(err) {
			status = http.StatusGatewayTimeout
			msg = "Upstream timeout"
		}
		f.log.Error(r.Context(), "proxy failed",
			"method", r.Method, "path", r.URL.Path, "target", outURL.Host, "error", err.Error())
		web.Error(w, status, msg)
		return
	}
	defer resp.Body.Close()

	// Status and body are relayed verbatim. Only the content headers cross
	// the edge; backend-internal headers stay behind the gateway.
	if ct := resp.Header.Get("Content-Type"); ct != "" {
		w.Header().Set("Content-Type", ct)
	}
	if cd := resp.Header.Get("Content-Disposition"); cd != "" {
		w.Header().Set("Content-Disposition", cd)
	}
	w.WriteHeader(resp.StatusCode)
	if _, err := io.Copy(w, resp.Body); err != nil {
		f.log.Warn(r.Context(), "response relay interrupted", "path", r.URL.Path, "error", err.Error())
	}
}

func isTimeout(err error) bool {
	var t interface{ Timeout() bool }
	return errors.As(err, &t) && t.Timeout()
}

func singleJoin(a, b string) string {
	switch {
	case strings.HasSuffix(a, "/") && strings.HasPrefix(b, "/"):
		return a + b[1:]
	case !strings.HasSuffix(a, "/") && !strings.HasPrefix(b, "/"):
		return a + "/" + b
	default:
		return a + b
	}
}
