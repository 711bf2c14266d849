package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/spf13/cobra"

	"github.com/justyntemme/webplug/pkg/editor"
	"github.com/justyntemme/webplug/pkg/protocol"
)

var (
	probeURL     string
	probeSets    []string
	probeTimeout time.Duration
	probeWait    time.Duration
)

var probeCmd = &cobra.Command{
	Use:   "probe",
	Short: "Connect to a running editor as a headless GUI",
	Long: `Connect to a running editor, optionally change parameters, then request
and print the full parameter snapshot.

Examples:
  webplug probe
  webplug probe --set gain=0.5 --set mode=1`,
	Args: cobra.NoArgs,
	RunE: runProbe,
}

func init() {
	probeCmd.Flags().StringVar(&probeURL, "url", "", "editor base URL (default: http://<server.addr>)")
	probeCmd.Flags().StringArrayVar(&probeSets, "set", nil, "parameter change id=value (normalized), repeatable")
	probeCmd.Flags().DurationVar(&probeTimeout, "timeout", 5*time.Second, "overall timeout")
	probeCmd.Flags().DurationVar(&probeWait, "wait", 500*time.Millisecond, "how long to collect replies")
}

// parseSet parses "id=value" with value in [0, 1].
func parseSet(s string) (protocol.GuiMessage, error) {
	id, raw, ok := strings.Cut(s, "=")
	id = strings.TrimSpace(id)
	if !ok || id == "" {
		return protocol.GuiMessage{}, fmt.Errorf("invalid --set %q, want id=value", s)
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return protocol.GuiMessage{}, fmt.Errorf("invalid --set %q: %w", s, err)
	}
	if v < 0 || v > 1 {
		return protocol.GuiMessage{}, fmt.Errorf("invalid --set %q: value must be within 0-1", s)
	}
	return protocol.GuiParamChange(id, v), nil
}

func runProbe(cmd *cobra.Command, args []string) error {
	base := probeURL
	if base == "" {
		base = "http://" + globalConfig.Server.Addr
	}
	base = strings.TrimRight(base, "/")

	var outgoing []protocol.GuiMessage
	for _, s := range probeSets {
		msg, err := parseSet(s)
		if err != nil {
			return err
		}
		outgoing = append(outgoing, msg)
	}
	// Changes are applied before Init, so the snapshot reflects them.
	outgoing = append(outgoing, protocol.Init())

	ctx, cancel := context.WithTimeout(cmd.Context(), probeTimeout)
	defer cancel()

	info, err := fetchInfo(ctx, base)
	if err != nil {
		return err
	}
	if info.Encoding != "json" {
		return fmt.Errorf("editor uses %s frames, probe only speaks json", info.Encoding)
	}

	wsURL := "ws" + strings.TrimPrefix(base, "http") + "/ws"
	conn, _, err := websocket.Dial(ctx, wsURL, nil)
	if err != nil {
		return fmt.Errorf("dial %s: %w", wsURL, err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "done")

	for _, msg := range outgoing {
		v, err := protocol.EncodeGui(msg)
		if err != nil {
			return err
		}
		if err := wsjson.Write(ctx, conn, v); err != nil {
			return fmt.Errorf("send %s: %w", msg.Kind(), err)
		}
	}

	snapshot, err := collect(ctx, conn, probeWait)
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), snapshotTable(snapshot))
	return nil
}

// snapshotEntry is the last value seen for one parameter.
type snapshotEntry struct {
	id    string
	value float64
}

// collect reads plugin messages until wait elapses without a new one.
func collect(ctx context.Context, conn *websocket.Conn, wait time.Duration) ([]snapshotEntry, error) {
	var entries []snapshotEntry
	index := make(map[string]int)

	for {
		readCtx, cancel := context.WithTimeout(ctx, wait)
		var v protocol.Value
		err := wsjson.Read(readCtx, conn, &v)
		cancel()
		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) || errors.Is(readCtx.Err(), context.DeadlineExceeded) {
				return entries, nil
			}
			return entries, fmt.Errorf("read: %w", err)
		}

		msg, err := protocol.DecodePlugin(v)
		if err != nil {
			logger.Warn("unexpected frame: %v", err)
			continue
		}
		if pc, ok := msg.ParamChange(); ok {
			if i, seen := index[pc.ID]; seen {
				entries[i].value = pc.Value
			} else {
				index[pc.ID] = len(entries)
				entries = append(entries, snapshotEntry{id: pc.ID, value: pc.Value})
			}
			continue
		}
		payload, _ := msg.Payload()
		logger.Info("message from plugin: %v", payload)
	}
}

func snapshotTable(entries []snapshotEntry) string {
	if len(entries) == 0 {
		return dimStyle.Render("no parameters received") + "\n"
	}
	rows := make([][]string, len(entries))
	for i, e := range entries {
		rows[i] = []string{e.id, strconv.FormatFloat(e.value, 'f', 4, 64)}
	}
	return renderTable([]string{"ID", "VALUE"}, rows)
}

func fetchInfo(ctx context.Context, base string) (editor.Info, error) {
	var info editor.Info
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+"/editor.json", nil)
	if err != nil {
		return info, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return info, fmt.Errorf("fetch editor info: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return info, fmt.Errorf("fetch editor info: %s", resp.Status)
	}
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return info, fmt.Errorf("decode editor info: %w", err)
	}
	return info, nil
}
