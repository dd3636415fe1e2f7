// Package registry persists printer identities and operator-assigned names
// across restarts, so a rediscovered printer keeps its ID and label.
package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tillpoint/printbridge/internal/device"
	"github.com/tillpoint/printbridge/internal/logging"
)

// Registry is a JSON-file-backed store keyed by a device identity key.
type Registry struct {
	filePath string
	data     map[string]*Entry
	mu       sync.RWMutex
}

// Entry stores persistent information about one printer.
type Entry struct {
	ID          string           `json:"id"`
	IdentityKey string           `json:"identity_key"`
	Transport   device.Transport `json:"transport"`
	Address     string           `json:"address"`
	DisplayName string           `json:"display_name"`
	Name        string           `json:"name,omitempty"` // custom operator-set name
}

// New creates a Registry backed by filePath. A missing file is fine; it is
// created on first save.
func New(filePath string) (*Registry, error) {
	r := &Registry{
		filePath: filePath,
		data:     make(map[string]*Entry),
	}

	if err := r.load(); err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to load registry: %w", err)
		}
	}

	return r, nil
}

// Assign gets or creates a persistent ID for a discovered device, applying
// any stored custom name. The returned device is a copy.
func (r *Registry) Assign(dev device.Device) device.Device {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := identityKey(dev)

	entry, exists := r.data[key]
	if !exists {
		entry = &Entry{
			ID:          uuid.New().String(),
			IdentityKey: key,
			Transport:   dev.Transport,
			Address:     dev.Address,
			DisplayName: dev.DisplayName,
		}
		r.data[key] = entry
		r.saveLocked()
	}

	dev.ID = entry.ID
	if entry.Name != "" {
		dev.DisplayName = entry.Name
	}
	return dev
}

// SetName stores a custom name for a printer ID. Returns false when the ID
// is unknown.
func (r *Registry) SetName(printerID, name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, entry := range r.data {
		if entry.ID == printerID {
			entry.Name = name
			r.saveLocked()
			return true
		}
	}
	return false
}

// Name returns the custom name for a printer ID, or "".
func (r *Registry) Name(printerID string) string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, entry := range r.data {
		if entry.ID == printerID {
			return entry.Name
		}
	}
	return ""
}

// Lookup returns a copy of the stored entry for a printer ID, or nil.
func (r *Registry) Lookup(printerID string) *Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, entry := range r.data {
		if entry.ID == printerID {
			cp := *entry
			return &cp
		}
	}
	return nil
}

// Remove deletes a printer from the registry.
func (r *Registry) Remove(printerID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	for key, entry := range r.data {
		if entry.ID == printerID {
			delete(r.data, key)
			r.saveLocked()
			return true
		}
	}
	return false
}

func (r *Registry) load() error {
	data, err := os.ReadFile(r.filePath)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, &r.data)
}

// saveLocked persists best-effort: a failed save costs persistence, not
// correctness, so it is logged and absorbed.
func (r *Registry) saveLocked() {
	data, err := json.MarshalIndent(r.data, "", "  ")
	if err != nil {
		logging.Warn("failed to marshal printer registry", zap.Error(err))
		return
	}
	if err := os.WriteFile(r.filePath, data, 0644); err != nil {
		logging.Warn("failed to save printer registry",
			zap.String("path", r.filePath),
			zap.Error(err),
		)
	}
}

// identityKey pins a printer's identity to its transport address.
func identityKey(dev device.Device) string {
	if dev.Transport == device.TransportBluetooth {
		return "bt:" + dev.Address
	}
	return "net:" + dev.Address
}
