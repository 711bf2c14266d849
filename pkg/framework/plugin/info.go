// Package plugin describes the plugin an editor belongs to.
package plugin

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Namespace seeds the name-based UIDs derived from plugin IDs.
var Namespace = uuid.MustParse("6f1c2b7e-3d4a-5e8f-9a0b-1c2d3e4f5a6b")

// Info contains plugin metadata
type Info struct {
	ID       string `json:"id"`       // reverse-DNS identifier, e.g. "com.example.myplugin"
	Name     string `json:"name"`     // display name
	Version  string `json:"version"`  // e.g. "1.0.0"
	Vendor   string `json:"vendor"`   // company or developer name
	Category string `json:"category"` // e.g. "Fx", "Instrument"
}

// UID derives a stable identifier from the plugin ID. The same ID always
// yields the same UID.
func (i Info) UID() uuid.UUID {
	return uuid.NewSHA1(Namespace, []byte(i.ID))
}

// Validate reports missing required fields.
func (i Info) Validate() error {
	if i.ID == "" {
		return errors.New("plugin id is empty")
	}
	if i.Name == "" {
		return errors.New("plugin name is empty")
	}
	return nil
}

// String returns "Name Version (Vendor)", leaving out empty parts.
func (i Info) String() string {
	s := i.Name
	if s == "" {
		s = i.ID
	}
	if i.Version != "" {
		s += " " + i.Version
	}
	if i.Vendor != "" {
		s += fmt.Sprintf(" (%s)", i.Vendor)
	}
	return s
}
