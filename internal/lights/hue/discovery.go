package hue

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/grandcat/zeroconf"
	"go.uber.org/zap"
)

// DiscoverAddress is accepted in place of a bridge address to look the
// bridge up over mDNS.
const DiscoverAddress = "discover"

var ErrNoBridge = errors.New("no Hue bridge found on the network")

// Bridge is a Hue bridge announced over mDNS.
type Bridge struct {
	ID   string
	Name string
	IP   net.IP
}

func (b Bridge) String() string {
	return fmt.Sprintf("%s (%s) at %s", b.Name, b.ID, b.IP)
}

// DiscoverBridge returns the first bridge announcing itself before ctx is done.
func DiscoverBridge(ctx context.Context) (Bridge, error) {
	resolver, err := zeroconf.NewResolver(nil)
	if err != nil {
		return Bridge{}, fmt.Errorf("creating mDNS resolver: %w", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	entries := make(chan *zeroconf.ServiceEntry)
	if err := resolver.Browse(ctx, "_hue._tcp", "local.", entries); err != nil {
		return Bridge{}, fmt.Errorf("browsing for Hue bridges: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return Bridge{}, ErrNoBridge
		case entry, ok := <-entries:
			if !ok {
				return Bridge{}, ErrNoBridge
			}
			b := parseBridge(entry)
			if b.IP == nil {
				continue
			}
			logger.With(zap.Stringer("bridge", b)).Info("Discovered Hue bridge")
			return b, nil
		}
	}
}

func parseBridge(entry *zeroconf.ServiceEntry) Bridge {
	b := Bridge{Name: entry.Instance}

	if len(entry.AddrIPv4) > 0 {
		b.IP = entry.AddrIPv4[0]
	} else if len(entry.AddrIPv6) > 0 {
		b.IP = entry.AddrIPv6[0]
	}

	for _, txt := range entry.Text {
		key, value, ok := strings.Cut(txt, "=")
		if ok && key == "bridgeid" {
			b.ID = value
		}
	}

	return b
}

// Host formats the bridge address for URLs.
func (b Bridge) Host() string {
	if b.IP.To4() == nil {
		return "[" + b.IP.String() + "]"
	}
	return b.IP.String()
}
