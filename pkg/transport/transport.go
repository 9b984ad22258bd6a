// Package transport opens HTTP/1.0 streams to the package index, over plain TCP
// or TLS, and hands back the connection positioned at the response body.
package transport

import (
	"bufio"
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/glorpus-work/woezel/internal/logger"
	"github.com/glorpus-work/woezel/pkg/errors"
)

// DefaultUserAgent is sent with every request.
const DefaultUserAgent = "woezel/1.0"

// Resolver looks up the addresses of a host.
type Resolver interface {
	LookupHost(ctx context.Context, host string) ([]string, error)
}

// Target is a parsed request URL.
type Target struct {
	Scheme string
	Host   string // host name without port
	Port   string
	Path   string // request path without the leading slash
}

// TLS reports whether the target must be reached over TLS.
func (t Target) TLS() bool {
	return t.Scheme == "https"
}

// ParseURL splits scheme://host[:port]/path. Only http and https are accepted.
func ParseURL(rawURL string) (Target, error) {
	scheme, rest, ok := strings.Cut(rawURL, "://")
	if !ok {
		return Target{}, errors.Kindf(errors.ErrProtocol, "malformed url %q", rawURL)
	}
	var target Target
	switch scheme {
	case "http":
		target.Port = "80"
	case "https":
		target.Port = "443"
	default:
		return Target{}, errors.Kindf(errors.ErrProtocol, "unsupported scheme %q", scheme)
	}
	target.Scheme = scheme

	hostPort, urlPath, _ := strings.Cut(rest, "/")
	if hostPort == "" {
		return Target{}, errors.Kindf(errors.ErrProtocol, "url %q has no host", rawURL)
	}
	target.Path = urlPath
	target.Host = hostPort

	if host, port, err := net.SplitHostPort(hostPort); err == nil {
		if _, convErr := strconv.Atoi(port); convErr != nil {
			return Target{}, errors.Kindf(errors.ErrProtocol, "invalid port in %q", rawURL)
		}
		target.Host = host
		target.Port = port
	}
	return target, nil
}

// Client opens request streams. The zero value is not usable; use NewClient.
type Client struct {
	resolver  Resolver
	dialer    *net.Dialer
	tlsConfig *tls.Config
	userAgent string
}

// Option configures a Client.
type Option func(*Client)

// WithResolver replaces the DNS resolver.
func WithResolver(r Resolver) Option {
	return func(c *Client) { c.resolver = r }
}

// WithTLSConfig sets the TLS configuration used for https targets. ServerName
// is always set to the target host.
func WithTLSConfig(cfg *tls.Config) Option {
	return func(c *Client) { c.tlsConfig = cfg }
}

// WithUserAgent overrides DefaultUserAgent.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// NewClient creates a Client. A zero dialTimeout means connects may block until
// the context is done.
func NewClient(dialTimeout time.Duration, opts ...Option) *Client {
	c := &Client{
		resolver:  net.DefaultResolver,
		dialer:    &net.Dialer{Timeout: dialTimeout},
		userAgent: DefaultUserAgent,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Open performs a GET request for rawURL and returns the body stream. The
// caller must close it. 404 and 301 map to errors.ErrNotFound, any other
// non-200 status to a *errors.StatusError.
func (c *Client) Open(ctx context.Context, rawURL string) (io.ReadCloser, error) {
	target, err := ParseURL(rawURL)
	if err != nil {
		return nil, err
	}
	logger.Debug("opening url", logger.Fields{"url": rawURL})

	conn, err := c.connect(ctx, target)
	if err != nil {
		return nil, err
	}

	body, err := c.request(ctx, conn, target)
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	return body, nil
}

func (c *Client) connect(ctx context.Context, target Target) (net.Conn, error) {
	addrs, err := c.resolver.LookupHost(ctx, target.Host)
	if err != nil {
		return nil, errors.Join(errors.ErrNetwork, fmt.Errorf("unable to resolve %s (no Internet?): %w", target.Host, err))
	}
	if len(addrs) == 0 {
		return nil, errors.Kindf(errors.ErrNetwork, "unable to resolve %s (no Internet?)", target.Host)
	}

	conn, err := c.dialer.DialContext(ctx, "tcp", net.JoinHostPort(addrs[0], target.Port))
	if err != nil {
		return nil, errors.Join(errors.ErrNetwork, err)
	}
	if !target.TLS() {
		return conn, nil
	}

	cfg := &tls.Config{MinVersion: tls.VersionTLS12}
	if c.tlsConfig != nil {
		cfg = c.tlsConfig.Clone()
	}
	cfg.ServerName = target.Host
	tlsConn := tls.Client(conn, cfg)
	if err := tlsConn.HandshakeContext(ctx); err != nil {
		_ = conn.Close()
		return nil, errors.Join(errors.ErrNetwork, fmt.Errorf("tls handshake with %s: %w", target.Host, err))
	}
	return tlsConn, nil
}

func (c *Client) request(ctx context.Context, conn net.Conn, target Target) (io.ReadCloser, error) {
	// Unblock reads and writes when the context is cancelled mid-request.
	stop := context.AfterFunc(ctx, func() {
		_ = conn.SetDeadline(time.Now())
	})

	fail := func(err error) (io.ReadCloser, error) {
		stop()
		// A cancelled context surfaces as a deadline error on the conn.
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("%w: %w", ctxErr, err)
		}
		return nil, err
	}

	if _, err := io.WriteString(conn, requestLine(target, c.userAgent)); err != nil {
		return fail(errors.Join(errors.ErrNetwork, err))
	}

	br := bufio.NewReader(conn)
	if err := readStatus(br); err != nil {
		return fail(err)
	}
	if err := skipHeaders(br); err != nil {
		return fail(err)
	}
	return &bodyStream{Reader: br, conn: conn, stop: stop}, nil
}

func requestLine(target Target, userAgent string) string {
	host := target.Host
	if (target.TLS() && target.Port != "443") || (!target.TLS() && target.Port != "80") {
		host = net.JoinHostPort(target.Host, target.Port)
	}
	return fmt.Sprintf("GET /%s HTTP/1.0\r\nHost: %s\r\nUser-Agent: %s\r\n\r\n", target.Path, host, userAgent)
}

func readStatus(br *bufio.Reader) error {
	line, err := br.ReadBytes('\n')
	if err != nil && len(line) == 0 {
		return errors.Join(errors.ErrProtocol, fmt.Errorf("reading status line: %w", err))
	}
	fields := bytes.Fields(line)
	if len(fields) < 2 {
		return errors.Kindf(errors.ErrProtocol, "malformed status line %q", bytes.TrimSpace(line))
	}
	status := string(fields[1])
	switch status {
	case "200":
		return nil
	case "404", "301":
		return errors.ErrNotFound
	}
	code, convErr := strconv.Atoi(status)
	if convErr != nil {
		return errors.Kindf(errors.ErrProtocol, "malformed status code %q", status)
	}
	return &errors.StatusError{Code: code}
}

func skipHeaders(br *bufio.Reader) error {
	for {
		line, err := br.ReadBytes('\n')
		if err != nil {
			return errors.Join(errors.ErrProtocol, fmt.Errorf("reading HTTP headers: %w", err))
		}
		if len(bytes.TrimRight(line, "\r\n")) == 0 {
			return nil
		}
	}
}

// bodyStream reads the response body and closes the connection on Close.
type bodyStream struct {
	*bufio.Reader
	conn net.Conn
	stop func() bool
}

func (b *bodyStream) Close() error {
	b.stop()
	return b.conn.Close()
}
