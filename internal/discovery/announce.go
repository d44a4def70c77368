package discovery

import (
	"fmt"
	"os"
	"sort"

	"github.com/grandcat/zeroconf"
)

// Announcer holds an active mDNS registration for a board byte stream.
type Announcer struct {
	server *zeroconf.Server
}

// Announce registers an mDNS service entry so scanners can find a board
// reachable on the given TCP port. An empty instance name falls back to
// the machine's hostname. Metadata entries ride along as TXT records in
// "key=value" form, the same shape ScanForBoards parses back out.
func Announce(instance string, port int, metadata map[string]string) (*Announcer, error) {
	if instance == "" {
		host, err := os.Hostname()
		if err != nil || host == "" {
			host = "firmata"
		}
		instance = host
	}

	keys := make([]string, 0, len(metadata))
	for key := range metadata {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	text := make([]string, 0, len(keys))
	for _, key := range keys {
		text = append(text, key+"="+metadata[key])
	}

	server, err := zeroconf.Register(instance, ServiceType, ServiceDomain, port, text, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to register mDNS service: %w", err)
	}
	return &Announcer{server: server}, nil
}

// Close withdraws the registration. Safe to call once.
func (a *Announcer) Close() {
	a.server.Shutdown()
}
