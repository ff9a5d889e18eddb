// Package transport builds the HTTP transports used for upstream calls.
package transport

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	utls "github.com/refraction-networking/utls"
	"golang.org/x/net/http2"
)

// New returns the round tripper for Admin API calls. With fingerprint set the
// connection presents Chrome's TLS fingerprint; otherwise a tuned standard
// transport is used.
func New(timeout time.Duration, fingerprint bool) http.RoundTripper {
	if fingerprint {
		return NewChromeTransport(timeout)
	}

	t := http.DefaultTransport.(*http.Transport).Clone()
	t.DialContext = (&net.Dialer{Timeout: timeout, KeepAlive: 30 * time.Second}).DialContext
	t.TLSHandshakeTimeout = timeout
	t.ResponseHeaderTimeout = timeout
	t.MaxIdleConnsPerHost = 16
	return t
}

// =============================================================================
// TLS FINGERPRINT TRANSPORT
// =============================================================================
//
// Go's standard TLS client has a distinctive fingerprint that some CDNs rate
// limit aggressively. This transport uses uTLS with HelloChrome_Auto, lets
// ALPN negotiate h2 or http/1.1, and frames HTTP/2 with x/net/http2.
//
// A host whose ALPN answer is not h2 is remembered and goes straight to
// HTTP/1.1 afterwards. Any other HTTP/2 failure retries that one request over
// HTTP/1.1 without remembering the host.
// =============================================================================

// errNoH2 reports that the server did not select h2 during ALPN.
var errNoH2 = errors.New("server did not negotiate h2")

// NewChromeTransport creates an http.RoundTripper that presents Chrome's TLS
// fingerprint to upstream servers.
func NewChromeTransport(timeout time.Duration) http.RoundTripper {
	dialer := &net.Dialer{Timeout: timeout}

	h2Transport := &http2.Transport{
		DialTLSContext: func(ctx context.Context, network, addr string, _ *tls.Config) (net.Conn, error) {
			conn, err := dialChromeTLS(ctx, dialer, network, addr)
			if err != nil {
				return nil, err
			}
			if proto := negotiatedProtocol(conn); proto != http2.NextProtoTLS {
				conn.Close()
				return nil, fmt.Errorf("%w (got %q)", errNoH2, proto)
			}
			return conn, nil
		},
	}

	h1Transport := &http.Transport{
		DialTLSContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
			return dialChromeTLS(ctx, dialer, network, addr)
		},
		ForceAttemptHTTP2:     false,
		ResponseHeaderTimeout: timeout,
	}

	return &chromeTransport{
		h2: h2Transport,
		h1: h1Transport,
	}
}

// idleCloser is the part of *http.Transport and *http2.Transport used here.
type idleCloser interface {
	http.RoundTripper
	CloseIdleConnections()
}

// chromeTransport wraps HTTP/2 and HTTP/1.1 transports with Chrome TLS fingerprint.
type chromeTransport struct {
	h2     idleCloser
	h1     idleCloser
	h1Only sync.Map // host -> struct{}
}

// RoundTrip implements http.RoundTripper.
func (t *chromeTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if _, ok := t.h1Only.Load(req.URL.Host); ok {
		return t.h1.RoundTrip(req)
	}

	resp, err := t.h2.RoundTrip(req)
	if err == nil {
		return resp, nil
	}
	if req.Context().Err() != nil {
		return nil, err
	}

	if errors.Is(err, errNoH2) {
		t.h1Only.Store(req.URL.Host, struct{}{})
	}
	return t.h1.RoundTrip(req)
}

// CloseIdleConnections closes idle connections on both transports.
func (t *chromeTransport) CloseIdleConnections() {
	t.h2.CloseIdleConnections()
	t.h1.CloseIdleConnections()
}

func negotiatedProtocol(conn net.Conn) string {
	if uc, ok := conn.(*utls.UConn); ok {
		return uc.ConnectionState().NegotiatedProtocol
	}
	return ""
}

// dialChromeTLS establishes a TLS connection with Chrome's fingerprint.
func dialChromeTLS(ctx context.Context, dialer *net.Dialer, network, addr string) (net.Conn, error) {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		host = addr
	}

	conn, err := dialer.DialContext(ctx, network, addr)
	if err != nil {
		return nil, fmt.Errorf("dial: %w", err)
	}

	tlsConn := utls.UClient(conn, &utls.Config{ServerName: host}, utls.HelloChrome_Auto)

	if err := tlsConn.HandshakeContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("tls handshake: %w", err)
	}

	return tlsConn, nil
}
