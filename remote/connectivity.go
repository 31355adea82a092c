package remote

import (
	"context"
	"net"
	"time"
)

// Connectivity reports whether the network is known to be reachable.
type Connectivity interface {
	Available(ctx context.Context) bool
}

// DefaultProbeAddress is dialed when a DialProbe has no address.
const DefaultProbeAddress = "api.spaceflightnewsapi.net:443"

// DialProbe considers the network available when a TCP connection to
// Address can be opened within Timeout.
type DialProbe struct {
	Address string
	Timeout time.Duration
}

// Available dials the probe address and closes the connection straight away.
func (p DialProbe) Available(ctx context.Context) bool {
	addr := p.Address
	if addr == "" {
		addr = DefaultProbeAddress
	}
	timeout := p.Timeout
	if timeout <= 0 {
		timeout = 2 * time.Second
	}

	d := net.Dialer{Timeout: timeout}
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return false
	}
	_ = conn.Close()
	return true
}

type fixed bool

func (f fixed) Available(context.Context) bool { return bool(f) }

var (
	// Online always reports the network as available.
	Online Connectivity = fixed(true)

	// Offline always reports the network as unavailable.
	Offline Connectivity = fixed(false)
)
