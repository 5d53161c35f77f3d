// ABOUTME: mDNS discovery for the timeline control endpoint
// ABOUTME: The daemon advertises _timeline._tcp and timelinectl looks it up
package discovery

import (
	"context"
	"fmt"
	"log"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/mdns"
)

const (
	// ServiceType is the DNS-SD service type of the control endpoint
	ServiceType = "_timeline._tcp"

	// Path is the WebSocket path advertised in the TXT record
	Path = "/timeline"
)

// Config holds advertisement configuration
type Config struct {
	ServiceName string
	Port        int
	SampleRate  int
	Version     int
}

// Manager owns a running mDNS advertisement
type Manager struct {
	config Config
	ctx    context.Context
	cancel context.CancelFunc
}

// ServerInfo describes a discovered daemon
type ServerInfo struct {
	Name       string
	Host       string
	Port       int
	Path       string
	SampleRate int
}

// Addr returns host:port
func (s ServerInfo) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// NewManager creates a discovery manager
func NewManager(config Config) *Manager {
	ctx, cancel := context.WithCancel(context.Background())

	return &Manager{
		config: config,
		ctx:    ctx,
		cancel: cancel,
	}
}

// Advertise announces the control endpoint until Stop is called
func (m *Manager) Advertise() error {
	ips, err := getLocalIPs()
	if err != nil {
		return fmt.Errorf("failed to get local IPs: %w", err)
	}

	service, err := mdns.NewMDNSService(
		m.config.ServiceName,
		ServiceType,
		"",
		"",
		m.config.Port,
		ips,
		txtRecord(m.config),
	)
	if err != nil {
		return fmt.Errorf("failed to create service: %w", err)
	}

	server, err := mdns.NewServer(&mdns.Config{Zone: service})
	if err != nil {
		return fmt.Errorf("failed to create mdns server: %w", err)
	}

	log.Printf("Advertising mDNS service: %s on port %d (type: %s)", m.config.ServiceName, m.config.Port, ServiceType)

	go func() {
		<-m.ctx.Done()
		server.Shutdown()
	}()

	return nil
}

// Stop withdraws the advertisement
func (m *Manager) Stop() {
	m.cancel()
}

// Lookup queries the local network once for timeline daemons
func Lookup(ctx context.Context, timeout time.Duration) ([]ServerInfo, error) {
	entries := make(chan *mdns.ServiceEntry, 16)
	done := make(chan []ServerInfo, 1)

	go func() {
		var found []ServerInfo
		for entry := range entries {
			if info, ok := fromEntry(entry); ok {
				found = append(found, info)
			}
		}
		done <- found
	}()

	params := mdns.DefaultParams(ServiceType)
	params.Domain = "local"
	params.Timeout = timeout
	params.Entries = entries
	params.DisableIPv6 = true

	errChan := make(chan error, 1)
	go func() {
		errChan <- mdns.Query(params)
		close(entries)
	}()

	select {
	case err := <-errChan:
		found := <-done
		if err != nil {
			return found, fmt.Errorf("mdns query failed: %w", err)
		}
		return found, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func txtRecord(config Config) []string {
	txt := []string{"path=" + Path}
	if config.SampleRate > 0 {
		txt = append(txt, fmt.Sprintf("sample_rate=%d", config.SampleRate))
	}
	if config.Version > 0 {
		txt = append(txt, fmt.Sprintf("version=%d", config.Version))
	}
	return txt
}

func fromEntry(entry *mdns.ServiceEntry) (ServerInfo, bool) {
	if entry == nil || entry.AddrV4 == nil || entry.Port == 0 {
		return ServerInfo{}, false
	}

	info := ServerInfo{
		Name: strings.TrimSuffix(entry.Name, "."+ServiceType+".local."),
		Host: entry.AddrV4.String(),
		Port: entry.Port,
		Path: Path,
	}
	for _, field := range entry.InfoFields {
		key, value, ok := strings.Cut(field, "=")
		if !ok {
			continue
		}
		switch key {
		case "path":
			info.Path = value
		case "sample_rate":
			info.SampleRate, _ = strconv.Atoi(value)
		}
	}
	return info, true
}

// getLocalIPs returns local IPv4 addresses
func getLocalIPs() ([]net.IP, error) {
	var ips []net.IP

	ifaces, err := net.Interfaces()
	if err != nil {
		return nil, err
	}

	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
			continue
		}

		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}

		for _, addr := range addrs {
			if ipnet, ok := addr.(*net.IPNet); ok && !ipnet.IP.IsLoopback() {
				if ipnet.IP.To4() != nil {
					ips = append(ips, ipnet.IP)
				}
			}
		}
	}

	return ips, nil
}
