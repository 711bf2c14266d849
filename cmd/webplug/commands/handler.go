package commands

import (
	"github.com/justyntemme/webplug/pkg/bridge"
	"github.com/justyntemme/webplug/pkg/framework/param"
	"github.com/justyntemme/webplug/pkg/framework/state"
	"github.com/justyntemme/webplug/pkg/protocol"
)

type ping struct {
	Ping *float64 `json:"Ping"`
}

type pong struct {
	Pong float64 `json:"Pong"`
}

// demo answers the custom messages of the bundled GUI:
//
//	{"Ping": n}  replies {"Pong": n}
//	"Undo"       reverts the last parameter edit
//	"Reset"      restores every default
//	"Reload"     reloads the saved state file
//
// Reset and Reload bypass the host, so the GUI is resynced with a full snapshot.
type demo struct {
	host      *param.Host
	registry  *param.Registry
	states    *state.Manager
	statePath string
	bridge    *bridge.Bridge
	log       bridge.Logger
}

func (d *demo) handle(payload protocol.Value, send bridge.SendFunc) {
	switch payload {
	case "Undo":
		if edit, ok := d.host.Undo(); ok {
			d.log.Info("undo %s: %.3f -> %.3f", edit.ID, edit.After, edit.Before)
		}
		return
	case "Reset":
		d.registry.ResetAll()
		d.resync()
		return
	case "Reload":
		if d.statePath == "" {
			d.log.Warn("reload requested but no state path is configured")
			return
		}
		if err := d.states.LoadFile(d.statePath); err != nil {
			d.log.Warn("reload state: %v", err)
			return
		}
		d.resync()
		return
	}

	p, err := protocol.DecodePayload[ping](payload)
	if err != nil || p.Ping == nil {
		d.log.Debug("ignoring custom message %v", payload)
		return
	}
	if err := send(pong{Pong: *p.Ping}); err != nil {
		d.log.Warn("reply to ping: %v", err)
	}
}

func (d *demo) resync() {
	if err := d.bridge.ParamValuesChanged(); err != nil {
		d.log.Warn("resync GUI: %v", err)
	}
}

// echoHostChanges forwards value changes made outside a GUI gesture, such as
// undo, to the GUI.
func echoHostChanges(host *param.Host, b *bridge.Bridge, log bridge.Logger) {
	host.OnChange(func(id string, normalized float64) {
		if host.InGesture(id) {
			return
		}
		if err := b.ParamValueChanged(id, normalized); err != nil {
			log.Warn("echo %s to GUI: %v", id, err)
		}
	})
}
