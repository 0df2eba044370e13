// Package connectivity implements the service_connectivity wizard page: it
// probes the external services the deployment depends on and records the
// results.
package connectivity

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
	"time"
)

// DefaultDialTimeout bounds a single reachability probe.
const DefaultDialTimeout = 5 * time.Second

// Checker probes a single network target.
type Checker interface {
	Check(ctx context.Context, target string) error
}

// CheckerFunc adapts a function to the Checker interface.
type CheckerFunc func(ctx context.Context, target string) error

// Check implements Checker.
func (f CheckerFunc) Check(ctx context.Context, target string) error {
	return f(ctx, target)
}

// TCPChecker probes targets with a plain TCP dial.
type TCPChecker struct {
	timeout time.Duration
}

// NewTCPChecker constructs a dial-based checker. A non-positive timeout falls
// back to DefaultDialTimeout.
func NewTCPChecker(timeout time.Duration) *TCPChecker {
	if timeout <= 0 {
		timeout = DefaultDialTimeout
	}
	return &TCPChecker{timeout: timeout}
}

// Check dials the target as host:port and closes the connection immediately.
func (c *TCPChecker) Check(ctx context.Context, target string) error {
	dialer := net.Dialer{Timeout: c.timeout}
	conn, err := dialer.DialContext(ctx, "tcp", target)
	if err != nil {
		return fmt.Errorf("connectivity: dial %s: %w", target, err)
	}
	return conn.Close()
}

// URLTarget reduces an http(s) URL to the host:port a TCP probe needs.
func URLTarget(raw string) (string, error) {
	parsed, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", fmt.Errorf("connectivity: parse url: %w", err)
	}
	if parsed.Host == "" {
		return "", errors.New("connectivity: url has no host")
	}
	host := parsed.Host
	if parsed.Port() == "" {
		switch parsed.Scheme {
		case "https":
			host = net.JoinHostPort(parsed.Hostname(), "443")
		case "http":
			host = net.JoinHostPort(parsed.Hostname(), "80")
		default:
			return "", fmt.Errorf("connectivity: unsupported scheme %q", parsed.Scheme)
		}
	}
	return host, nil
}
