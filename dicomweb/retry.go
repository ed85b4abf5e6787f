package dicomweb

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"syscall"
	"time"

	"github.com/MDWio/ohif-viewer/interfaces"
	"github.com/cenkalti/backoff/v4"
)

// RetryPolicy bounds retries of transient failures.
type RetryPolicy struct {
	// MaxAttempts is the total number of attempts, including the first one.
	MaxAttempts int

	InitialInterval     time.Duration
	MaxInterval         time.Duration
	Multiplier          float64
	RandomizationFactor float64
}

// DefaultRetryPolicy returns 3 attempts with exponential backoff starting at 500ms.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:         3,
		InitialInterval:     500 * time.Millisecond,
		MaxInterval:         5 * time.Second,
		Multiplier:          2,
		RandomizationFactor: 0.2,
	}
}

// retryableStatusCodes are answered by servers under transient load. 401 and
// 404 are never retried.
var retryableStatusCodes = map[int]bool{
	http.StatusRequestTimeout:      true,
	http.StatusTooManyRequests:     true,
	http.StatusInternalServerError: true,
	http.StatusBadGateway:          true,
	http.StatusServiceUnavailable:  true,
	http.StatusGatewayTimeout:      true,
}

// IsRetryableStatus reports whether a response status is retried.
func IsRetryableStatus(code int) bool {
	return retryableStatusCodes[code]
}

func (p RetryPolicy) newBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.InitialInterval
	b.MaxInterval = p.MaxInterval
	b.Multiplier = p.Multiplier
	b.RandomizationFactor = p.RandomizationFactor
	b.MaxElapsedTime = 0
	b.Reset()

	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	return backoff.WithMaxRetries(b, uint64(attempts-1))
}

// isRetryableError reports whether a transport error is worth another
// attempt. Certificate, scheme and name resolution failures are not.
func isRetryableError(err error) bool {
	if errors.Is(err, context.Canceled) {
		return false
	}

	// TLS verification
	var certErr *tls.CertificateVerificationError
	var authorityErr x509.UnknownAuthorityError
	var hostnameErr x509.HostnameError
	var invalidErr x509.CertificateInvalidError
	if errors.As(err, &certErr) || errors.As(err, &authorityErr) ||
		errors.As(err, &hostnameErr) || errors.As(err, &invalidErr) {
		return false
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return dnsErr.IsTimeout || dnsErr.IsTemporary
	}

	// Network errors
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}

	if errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.EPIPE) ||
		errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.Is(err, io.EOF) ||
		errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	errStr := err.Error()
	return strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "connection reset") ||
		strings.Contains(errStr, "broken pipe") ||
		strings.Contains(errStr, "timeout") ||
		strings.Contains(errStr, "temporary failure")
}

// RetryHook returns a request hook retrying connection errors and transient
// statuses. Any other response, including 401 and 404, is passed through on
// the first attempt, as are permanent transport errors. log may be nil.
func RetryHook(policy RetryPolicy, log *slog.Logger) interfaces.RequestHook {
	return func(next interfaces.Doer) interfaces.Doer {
		return &retryDoer{next: next, policy: policy, log: log}
	}
}

type retryDoer struct {
	next   interfaces.Doer
	policy RetryPolicy
	log    *slog.Logger
}

func (d *retryDoer) Do(req *http.Request) (*http.Response, error) {
	ctx := req.Context()
	var resp *http.Response

	op := func() error {
		r, err := d.next.Do(req.Clone(ctx))
		if err != nil {
			if ctx.Err() != nil || !isRetryableError(err) {
				return backoff.Permanent(err)
			}
			return err
		}
		if IsRetryableStatus(r.StatusCode) {
			httpErr := newHTTPError(req, r)
			drainAndClose(r)
			return httpErr
		}
		resp = r
		return nil
	}

	notify := func(err error, wait time.Duration) {
		if d.log == nil {
			return
		}
		d.log.Debug("Retrying request",
			slog.String("url", req.URL.String()),
			slog.Duration("wait", wait),
			"err", err)
	}

	if err := backoff.RetryNotify(op, backoff.WithContext(d.policy.newBackOff(), ctx), notify); err != nil {
		return nil, err
	}
	return resp, nil
}

func drainAndClose(resp *http.Response) {
	_, _ = io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
}
