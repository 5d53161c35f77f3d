// ABOUTME: Version and product identification
// ABOUTME: Version is overridden at build time with -ldflags "-X .../version.Version=..."
package version

// Version of the daemon and CLI
var Version = "0.1.0"

const (
	Product      = "resonate-timeline"
	Manufacturer = "Resonate Protocol"
)

// String identifies this build in handshakes and logs
func String() string {
	return Product + "/" + Version
}
