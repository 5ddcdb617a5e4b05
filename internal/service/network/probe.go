package network

import (
	"context"
	"fmt"
	"net"
	"time"
)

// TCPProber treats a successful TCP handshake with addr as "network up".
type TCPProber struct {
	addr    string
	timeout time.Duration
}

func NewTCPProber(addr string, timeout time.Duration) *TCPProber {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &TCPProber{addr: addr, timeout: timeout}
}

func (p *TCPProber) Probe(ctx context.Context) error {
	d := net.Dialer{Timeout: p.timeout}
	conn, err := d.DialContext(ctx, "tcp", p.addr)
	if err != nil {
		return fmt.Errorf("dial %s: %w", p.addr, err)
	}
	return conn.Close()
}

// AlwaysUp skips the wait, for hosts whose network is managed elsewhere.
type AlwaysUp struct{}

func (AlwaysUp) Probe(context.Context) error { return nil }
