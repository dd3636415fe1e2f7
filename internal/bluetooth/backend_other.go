//go:build !linux

package bluetooth

// NewPlatformBackend returns nil on platforms without a wired Bluetooth
// stack; the Enumerator treats a nil backend as an empty adapter.
func NewPlatformBackend() Backend {
	return nil
}
