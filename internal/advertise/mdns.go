package advertise

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/enbility/zeroconf/v3"
)

const (
	MDNSServiceType = "_pressbot._tcp"
	MDNSDomain      = "local."
	defaultMDNSTTL  = 120 * time.Second
)

// MDNSAdvertiser publishes the TCP endpoint through multicast DNS.
type MDNSAdvertiser struct {
	Interface string
	TTL       time.Duration

	mu     sync.Mutex
	server *zeroconf.Server
}

func NewMDNSAdvertiser(iface string) *MDNSAdvertiser {
	return &MDNSAdvertiser{Interface: iface, TTL: defaultMDNSTTL}
}

func (a *MDNSAdvertiser) Name() string { return "mdns" }

func (a *MDNSAdvertiser) Register(ctx context.Context, rec Record) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.server != nil {
		a.server.Shutdown()
		a.server = nil
	}
	if rec.Channel <= 0 {
		return unsupported("mdns register", fmt.Errorf("invalid port %d", rec.Channel))
	}

	ifaces, err := a.interfaces()
	if err != nil {
		return unsupported("mdns register", err)
	}
	var opts []zeroconf.ServerOption
	if a.TTL > 0 {
		opts = append(opts, zeroconf.TTL(uint32(a.TTL.Seconds())))
	}

	server, err := zeroconf.Register(rec.Name, MDNSServiceType, MDNSDomain, rec.Channel, TXTRecords(rec), ifaces, opts...)
	if err != nil {
		return transient("mdns register", err)
	}
	a.server = server
	return nil
}

func (a *MDNSAdvertiser) Unregister(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.server != nil {
		a.server.Shutdown()
		a.server = nil
	}
	return nil
}

// interfaces returns nil to advertise on all interfaces.
func (a *MDNSAdvertiser) interfaces() ([]net.Interface, error) {
	if a.Interface == "" {
		return nil, nil
	}
	iface, err := net.InterfaceByName(a.Interface)
	if err != nil {
		return nil, fmt.Errorf("interface %q: %w", a.Interface, err)
	}
	return []net.Interface{*iface}, nil
}

// TXTRecords encodes the record's identifiers as key=value strings.
func TXTRecords(rec Record) []string {
	txt := []string{"id=" + rec.ServiceID}
	for _, c := range rec.Classes {
		txt = append(txt, "class="+c)
	}
	for _, p := range rec.Profiles {
		txt = append(txt, "profile="+p)
	}
	return txt
}
