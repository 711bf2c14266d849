// Package state saves and restores the normalized values of a parameter registry.
package state

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"

	"github.com/justyntemme/webplug/pkg/framework/param"
)

const magic = "WEBPLG"

// ErrInvalidFormat is returned when loading data that was not written by a Manager.
var ErrInvalidFormat = errors.New("state: invalid format")

// Manager handles plugin state saving and loading
type Manager struct {
	version  uint32
	registry *param.Registry
	save     CustomSaveFunc
	load     CustomLoadFunc
}

// CustomSaveFunc allows plugins to save additional state beyond parameters
type CustomSaveFunc func(w io.Writer) error

// CustomLoadFunc reads back what the matching CustomSaveFunc wrote
type CustomLoadFunc func(r io.Reader) error

// NewManager creates a new state manager
func NewManager(registry *param.Registry) *Manager {
	return &Manager{
		version:  1,
		registry: registry,
	}
}

// SetCustomState sets the functions for saving and loading custom state
func (m *Manager) SetCustomState(save CustomSaveFunc, load CustomLoadFunc) {
	m.save = save
	m.load = load
}

// Save writes the plugin state to a writer
func (m *Manager) Save(w io.Writer) error {
	if _, err := io.WriteString(w, magic); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, m.version); err != nil {
		return err
	}

	params := m.registry.All()
	if err := binary.Write(w, binary.LittleEndian, uint32(len(params))); err != nil {
		return err
	}

	for _, p := range params {
		if len(p.ID) > math.MaxUint16 {
			return fmt.Errorf("state: parameter ID %q too long", p.ID)
		}
		if err := binary.Write(w, binary.LittleEndian, uint16(len(p.ID))); err != nil {
			return err
		}
		if _, err := io.WriteString(w, p.ID); err != nil {
			return err
		}
		if err := binary.Write(w, binary.LittleEndian, p.GetValue()); err != nil {
			return err
		}
	}

	if m.save == nil {
		return binary.Write(w, binary.LittleEndian, uint32(0))
	}

	// Custom data is length-prefixed so readers without a load func can skip it.
	var custom bytes.Buffer
	if err := m.save(&custom); err != nil {
		return fmt.Errorf("state: custom save: %w", err)
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(custom.Len())); err != nil {
		return err
	}
	_, err := w.Write(custom.Bytes())
	return err
}

// Load reads the plugin state from a reader. Unknown parameters are skipped for
// forward compatibility. Nothing is applied unless the whole state, including
// the custom section, reads cleanly.
func (m *Manager) Load(r io.Reader) error {
	header := make([]byte, len(magic))
	if _, err := io.ReadFull(r, header); err != nil {
		return loadErr(err)
	}
	if string(header) != magic {
		return ErrInvalidFormat
	}

	var version uint32
	if err := binary.Read(r, binary.LittleEndian, &version); err != nil {
		return loadErr(err)
	}
	if version > m.version {
		return fmt.Errorf("state version %d is newer than supported version %d", version, m.version)
	}

	var count uint32
	if err := binary.Read(r, binary.LittleEndian, &count); err != nil {
		return loadErr(err)
	}

	type entry struct {
		param *param.Parameter
		value float64
	}
	var staged []entry
	for i := uint32(0); i < count; i++ {
		var idLen uint16
		if err := binary.Read(r, binary.LittleEndian, &idLen); err != nil {
			return loadErr(err)
		}
		id := make([]byte, idLen)
		if _, err := io.ReadFull(r, id); err != nil {
			return loadErr(err)
		}
		var value float64
		if err := binary.Read(r, binary.LittleEndian, &value); err != nil {
			return loadErr(err)
		}
		if p := m.registry.Get(string(id)); p != nil {
			staged = append(staged, entry{param: p, value: value})
		}
	}

	var customLen uint32
	if err := binary.Read(r, binary.LittleEndian, &customLen); err != nil {
		return loadErr(err)
	}
	custom, err := io.ReadAll(io.LimitReader(r, int64(customLen)))
	if err != nil {
		return loadErr(err)
	}
	if len(custom) != int(customLen) {
		return loadErr(io.ErrUnexpectedEOF)
	}
	if m.load != nil && customLen > 0 {
		if err := m.load(bytes.NewReader(custom)); err != nil {
			return fmt.Errorf("state: custom load: %w", err)
		}
	}

	for _, e := range staged {
		e.param.SetValue(e.value)
	}
	return nil
}

// loadErr reports truncated state as ErrInvalidFormat.
func loadErr(err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("%w: truncated: %v", ErrInvalidFormat, err)
	}
	return fmt.Errorf("state: load: %w", err)
}

// SaveFile writes the state to path, replacing it atomically
func (m *Manager) SaveFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".state-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if err := m.Save(tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// LoadFile restores state from path. A missing file is not an error.
func (m *Manager) LoadFile(path string) error {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	defer f.Close()
	return m.Load(f)
}
