// ABOUTME: Tests for mDNS discovery
// ABOUTME: Covers TXT record contents and service entry parsing
package discovery

import (
	"net"
	"testing"

	"github.com/hashicorp/mdns"
)

func TestTXTRecord(t *testing.T) {
	txt := txtRecord(Config{ServiceName: "studio", Port: 8931, SampleRate: 48000, Version: 1})
	want := []string{"path=/timeline", "sample_rate=48000", "version=1"}

	if len(txt) != len(want) {
		t.Fatalf("expected %v, got %v", want, txt)
	}
	for i := range want {
		if txt[i] != want[i] {
			t.Errorf("field %d: expected %s, got %s", i, want[i], txt[i])
		}
	}
}

func TestFromEntry(t *testing.T) {
	entry := &mdns.ServiceEntry{
		Name:       "studio._timeline._tcp.local.",
		AddrV4:     net.ParseIP("192.168.1.20"),
		Port:       8931,
		InfoFields: []string{"path=/timeline", "sample_rate=44100", "junk"},
	}

	info, ok := fromEntry(entry)
	if !ok {
		t.Fatal("expected entry to be accepted")
	}
	if info.Name != "studio" {
		t.Errorf("expected name studio, got %s", info.Name)
	}
	if info.Addr() != "192.168.1.20:8931" {
		t.Errorf("expected addr 192.168.1.20:8931, got %s", info.Addr())
	}
	if info.SampleRate != 44100 || info.Path != "/timeline" {
		t.Errorf("unexpected info: %+v", info)
	}
}

func TestFromEntryRejectsIncomplete(t *testing.T) {
	if _, ok := fromEntry(nil); ok {
		t.Error("nil entry accepted")
	}
	if _, ok := fromEntry(&mdns.ServiceEntry{Name: "x", Port: 1}); ok {
		t.Error("entry without address accepted")
	}
}

func TestNewManager(t *testing.T) {
	mgr := NewManager(Config{ServiceName: "Test", Port: 8931})
	if mgr == nil {
		t.Fatal("expected manager to be created")
	}
	mgr.Stop()
}
