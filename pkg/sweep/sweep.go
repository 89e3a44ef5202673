// Package sweep dials a subnet for reachable hosts.
//
// A host counts as alive when a TCP connection to any configured port
// succeeds or is actively refused; both prove that something answered at
// that address. Only timeouts and unreachable routes mark a host down.
// Probing with TCP avoids the raw-socket privileges ICMP echo needs.
package sweep

import (
	"context"
	"errors"
	"net"
	"net/netip"
	"strconv"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	terrors "github.com/matzehuels/topodraw/pkg/errors"
)

// Defaults for Options.
const (
	DefaultTimeout     = 500 * time.Millisecond
	DefaultConcurrency = 64
	MaxHosts           = 1 << 16
)

// DefaultPorts are tried in order: SSH, HTTPS, iSCSI.
var DefaultPorts = []int{22, 443, 3260}

// Options configures a sweep.
type Options struct {
	Ports       []int
	Timeout     time.Duration
	Concurrency int

	// Dial opens the test connections. Defaults to a net.Dialer.
	Dial func(ctx context.Context, network, address string) (net.Conn, error)
}

func (o *Options) setDefaults() {
	if len(o.Ports) == 0 {
		o.Ports = DefaultPorts
	}
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}
	if o.Concurrency <= 0 {
		o.Concurrency = DefaultConcurrency
	}
	if o.Dial == nil {
		o.Dial = (&net.Dialer{}).DialContext
	}
}

// Result is the outcome of probing one address.
type Result struct {
	Addr    netip.Addr    `json:"addr"`
	Alive   bool          `json:"alive"`
	Port    int           `json:"port,omitempty"`
	Latency time.Duration `json:"latency,omitempty"`
}

// Hosts lists the host addresses of prefix. For IPv4 prefixes shorter than
// /31 the network and broadcast addresses are excluded.
func Hosts(prefix netip.Prefix) ([]netip.Addr, error) {
	if !prefix.IsValid() {
		return nil, terrors.New(terrors.ErrCodeInvalidInput, "invalid prefix")
	}
	prefix = prefix.Masked()
	bits := prefix.Addr().BitLen() - prefix.Bits()
	if bits > 16 {
		return nil, terrors.New(terrors.ErrCodeInvalidInput, "prefix %s has more than %d addresses", prefix, MaxHosts)
	}

	var out []netip.Addr
	for a := prefix.Addr(); a.IsValid() && prefix.Contains(a); a = a.Next() {
		out = append(out, a)
	}
	if prefix.Addr().Is4() && prefix.Bits() < 31 && len(out) > 2 {
		out = out[1 : len(out)-1]
	}
	return out, nil
}

// Run dials every host of prefix and returns one result per address in
// address order. It stops early only when ctx is cancelled.
func Run(ctx context.Context, prefix netip.Prefix, opts Options) ([]Result, error) {
	opts.setDefaults()
	hosts, err := Hosts(prefix)
	if err != nil {
		return nil, err
	}

	results := make([]Result, len(hosts))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Concurrency)
	for i, addr := range hosts {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = check(ctx, addr, opts)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, terrors.Wrap(terrors.ErrCodeTimeout, err, "sweep %s", prefix)
	}
	return results, nil
}

// Alive filters results down to responding hosts.
func Alive(results []Result) []Result {
	var out []Result
	for _, r := range results {
		if r.Alive {
			out = append(out, r)
		}
	}
	return out
}

func check(ctx context.Context, addr netip.Addr, opts Options) Result {
	res := Result{Addr: addr}
	for _, port := range opts.Ports {
		pctx, cancel := context.WithTimeout(ctx, opts.Timeout)
		start := time.Now()
		conn, err := opts.Dial(pctx, "tcp", net.JoinHostPort(addr.String(), strconv.Itoa(port)))
		cancel()
		if err == nil {
			conn.Close()
		}
		if err == nil || errors.Is(err, syscall.ECONNREFUSED) {
			res.Alive = true
			res.Port = port
			res.Latency = time.Since(start)
			return res
		}
	}
	return res
}
