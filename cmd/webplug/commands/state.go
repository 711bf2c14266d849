package commands

import (
	"fmt"
	"io"

	"github.com/google/uuid"

	"github.com/justyntemme/webplug/pkg/framework/plugin"
	"github.com/justyntemme/webplug/pkg/framework/state"
)

// stampState tags saved state with the plugin UID and refuses state saved by
// another plugin. State without a tag loads as before.
func stampState(states *state.Manager, info plugin.Info) {
	uid := info.UID()
	states.SetCustomState(
		func(w io.Writer) error {
			_, err := w.Write(uid[:])
			return err
		},
		func(r io.Reader) error {
			var got uuid.UUID
			if _, err := io.ReadFull(r, got[:]); err != nil {
				return fmt.Errorf("read plugin uid: %w", err)
			}
			if got != uid {
				return fmt.Errorf("state belongs to plugin %s, not %s", got, uid)
			}
			return nil
		},
	)
}
