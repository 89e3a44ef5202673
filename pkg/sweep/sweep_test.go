package sweep

import (
	"context"
	"net"
	"net/netip"
	"strings"
	"syscall"
	"testing"
	"time"
)

func TestHosts(t *testing.T) {
	tests := []struct {
		prefix      string
		count       int
		first, last string
	}{
		{"192.168.1.0/30", 2, "192.168.1.1", "192.168.1.2"},
		{"192.168.1.77/24", 254, "192.168.1.1", "192.168.1.254"},
		{"10.0.0.0/31", 2, "10.0.0.0", "10.0.0.1"},
		{"10.0.0.5/32", 1, "10.0.0.5", "10.0.0.5"},
		{"fd00::/126", 4, "fd00::", "fd00::3"},
	}
	for _, tt := range tests {
		t.Run(tt.prefix, func(t *testing.T) {
			hosts, err := Hosts(netip.MustParsePrefix(tt.prefix))
			if err != nil {
				t.Fatal(err)
			}
			if len(hosts) != tt.count {
				t.Fatalf("len = %d, want %d", len(hosts), tt.count)
			}
			if hosts[0].String() != tt.first || hosts[len(hosts)-1].String() != tt.last {
				t.Errorf("range = %s..%s, want %s..%s", hosts[0], hosts[len(hosts)-1], tt.first, tt.last)
			}
		})
	}
}

func TestHostsTooLarge(t *testing.T) {
	if _, err := Hosts(netip.MustParsePrefix("10.0.0.0/8")); err == nil {
		t.Error("Hosts(/8) should fail")
	}
	if _, err := Hosts(netip.Prefix{}); err == nil {
		t.Error("Hosts(invalid) should fail")
	}
}

// fakeDial answers for a fixed set of host:port pairs.
func fakeDial(up map[string]error) func(context.Context, string, string) (net.Conn, error) {
	return func(ctx context.Context, _, address string) (net.Conn, error) {
		if err, ok := up[address]; ok {
			if err != nil {
				return nil, err
			}
			c1, c2 := net.Pipe()
			c2.Close()
			return c1, nil
		}
		<-ctx.Done()
		return nil, ctx.Err()
	}
}

func TestRun(t *testing.T) {
	opts := Options{
		Ports:   []int{22, 3260},
		Timeout: 20 * time.Millisecond,
		Dial: fakeDial(map[string]error{
			"10.1.1.1:3260": nil,
			"10.1.1.2:22":   syscall.ECONNREFUSED,
		}),
	}
	results, err := Run(context.Background(), netip.MustParsePrefix("10.1.1.0/29"), opts)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(results) != 6 {
		t.Fatalf("results = %d, want 6", len(results))
	}
	for i := 1; i < len(results); i++ {
		if !results[i-1].Addr.Less(results[i].Addr) {
			t.Fatal("results not in address order")
		}
	}

	alive := Alive(results)
	if len(alive) != 2 {
		t.Fatalf("alive = %+v, want 2 hosts", alive)
	}
	if alive[0].Addr.String() != "10.1.1.1" || alive[0].Port != 3260 {
		t.Errorf("alive[0] = %+v", alive[0])
	}
	if alive[1].Addr.String() != "10.1.1.2" || alive[1].Port != 22 {
		t.Errorf("alive[1] = %+v", alive[1])
	}
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Run(ctx, netip.MustParsePrefix("10.1.1.0/28"), Options{Dial: fakeDial(nil)})
	if err == nil || !strings.Contains(err.Error(), "sweep") {
		t.Errorf("Run(cancelled) err = %v", err)
	}
}

func TestRunLoopback(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Skipf("listen: %v", err)
	}
	defer ln.Close()
	port := ln.Addr().(*net.TCPAddr).Port

	results, err := Run(context.Background(), netip.MustParsePrefix("127.0.0.1/32"), Options{Ports: []int{port}})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 || !results[0].Alive || results[0].Port != port {
		t.Errorf("results = %+v", results)
	}
}
