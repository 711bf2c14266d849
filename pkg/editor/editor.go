// Package editor hosts the web GUI of a plugin: it serves the GUI assets,
// accepts websocket connections from GUI pages and drives the bridge tick.
//
// The editor is the bridge's Transport. Construct the editor first, pass it to
// bridge.New, then Attach the bridge:
//
//	ed, _ := editor.New(opts)
//	b, _ := bridge.New(bridge.Config{Transport: ed, ...})
//	ed.Attach(b)
//	err := ed.Run(ctx, addr)
package editor

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/http"
	"net/http/httputil"
	"net/url"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"golang.org/x/sync/errgroup"

	"github.com/justyntemme/webplug/pkg/channel"
	"github.com/justyntemme/webplug/pkg/config"
	"github.com/justyntemme/webplug/pkg/framework/debug"
	"github.com/justyntemme/webplug/pkg/framework/param"
	"github.com/justyntemme/webplug/pkg/framework/plugin"
	"github.com/justyntemme/webplug/pkg/protocol"
)

// DefaultTickRate is the bridge tick frequency in Hz.
const DefaultTickRate = 60

// DefaultClientBuffer is the per-client outbox size in frames.
const DefaultClientBuffer = 256

// ErrNotAttached is returned by Run when no bridge has been attached.
var ErrNotAttached = errors.New("editor: no bridge attached")

//go:embed web
var builtin embed.FS

// Builtin returns the bundled demo GUI.
func Builtin() fs.FS {
	sub, _ := fs.Sub(builtin, "web")
	return sub
}

// Bridge is what the editor needs from the message bridge.
type Bridge interface {
	Deliver(v protocol.Value) error
	Tick() error
	Close()
}

// Logger is the subset of debug.Logger the editor writes to.
type Logger interface {
	Debug(format string, args ...interface{})
	Info(format string, args ...interface{})
	Warn(format string, args ...interface{})
}

// Options configures an Editor.
type Options struct {
	Width         int
	Height        int
	Background    string
	DeveloperMode bool
	// DevURL is proxied instead of serving Assets in developer mode.
	DevURL string
	// Assets holds the GUI files. Nil falls back to AssetsDir, then Builtin.
	Assets fs.FS
	// AssetsDir is served from disk and watched for changes in developer mode.
	AssetsDir string
	Codec     protocol.FrameCodec
	// TickRate is the bridge tick frequency in Hz.
	TickRate int
	// ClientBuffer is the number of frames queued per client.
	ClientBuffer int
	// Plugin is described at /editor.json.
	Plugin plugin.Info
	// Registry, when set, is described at /params.json.
	Registry *param.Registry
	Logger   Logger
}

// OptionsFromConfig converts the editor section of the configuration.
func OptionsFromConfig(c config.EditorConfig) (Options, error) {
	codec, err := protocol.FrameCodecByName(c.Encoding)
	if err != nil {
		return Options{}, err
	}
	return Options{
		Width:         c.Width,
		Height:        c.Height,
		Background:    c.Background,
		DeveloperMode: c.DeveloperMode,
		DevURL:        c.DevURL,
		AssetsDir:     c.AssetsDir,
		Codec:         codec,
		TickRate:      c.TickRate,
		ClientBuffer:  c.ClientBuffer,
	}, nil
}

// Info is the window description served at /editor.json.
type Info struct {
	Width         int         `json:"width"`
	Height        int         `json:"height"`
	Background    string      `json:"background"`
	DeveloperMode bool        `json:"developer_mode"`
	Encoding      string      `json:"encoding"`
	Plugin        *PluginInfo `json:"plugin,omitempty"`
}

// PluginInfo is the plugin metadata with its derived UID.
type PluginInfo struct {
	plugin.Info
	UID string `json:"uid"`
}

// Editor serves one plugin GUI to any number of websocket clients.
type Editor struct {
	opts     Options
	log      Logger
	codec    protocol.FrameCodec
	msgType  int
	upgrader websocket.Upgrader
	assets   *assetCache
	proxy    *httputil.ReverseProxy
	mux      *http.ServeMux

	mu      sync.RWMutex
	bridge  Bridge
	clients map[uuid.UUID]*client
	closed  bool
}

// New creates an editor. It does not listen until Run or Serve is called.
func New(opts Options) (*Editor, error) {
	if opts.TickRate <= 0 {
		opts.TickRate = DefaultTickRate
	}
	if opts.ClientBuffer <= 0 {
		opts.ClientBuffer = DefaultClientBuffer
	}
	if opts.Codec == nil {
		opts.Codec = protocol.JSONFrames{}
	}
	if opts.Assets == nil {
		if opts.AssetsDir != "" {
			opts.Assets = os.DirFS(opts.AssetsDir)
		} else {
			opts.Assets = Builtin()
		}
	}

	log := opts.Logger
	if log == nil {
		log = debug.Default().Child("editor")
	}

	e := &Editor{
		opts:    opts,
		log:     log,
		codec:   opts.Codec,
		msgType: websocket.TextMessage,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		assets:  newAssetCache(opts.Assets),
		clients: make(map[uuid.UUID]*client),
	}
	if e.codec.Binary() {
		e.msgType = websocket.BinaryMessage
	}

	if opts.DeveloperMode && opts.DevURL != "" {
		target, err := url.Parse(opts.DevURL)
		if err != nil {
			return nil, fmt.Errorf("editor: dev url: %w", err)
		}
		e.proxy = httputil.NewSingleHostReverseProxy(target)
	}

	e.mux = http.NewServeMux()
	e.mux.HandleFunc("/ws", e.handleWS)
	e.mux.HandleFunc("/editor.json", e.handleInfo)
	e.mux.HandleFunc("/params.json", e.handleParams)
	if e.proxy != nil {
		e.mux.Handle("/", e.proxy)
	} else {
		e.mux.Handle("/", e.assets)
	}
	return e, nil
}

// Attach connects the bridge that receives GUI values and is ticked by Run.
func (e *Editor) Attach(b Bridge) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.bridge = b
}

// Handler returns the HTTP handler serving assets, /editor.json, /params.json
// and the /ws endpoint.
func (e *Editor) Handler() http.Handler {
	return e.mux
}

// Info returns the window description.
func (e *Editor) Info() Info {
	return Info{
		Width:         e.opts.Width,
		Height:        e.opts.Height,
		Background:    e.opts.Background,
		DeveloperMode: e.opts.DeveloperMode,
		Encoding:      e.codec.Name(),
		Plugin:        pluginInfo(e.opts.Plugin),
	}
}

func pluginInfo(p plugin.Info) *PluginInfo {
	if p.ID == "" {
		return nil
	}
	return &PluginInfo{Info: p, UID: p.UID().String()}
}

// Send encodes v once and offers the frame to every connected client. A
// client whose outbox is full misses the frame. Send never waits on a client.
func (e *Editor) Send(v protocol.Value) error {
	frame, err := e.codec.Marshal(v)
	if err != nil {
		return err
	}

	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.closed {
		return channel.ErrClosed
	}
	for id, c := range e.clients {
		if !c.offer(frame) {
			e.log.Warn("client %s: outbox full, frame dropped", id)
		}
	}
	return nil
}

// Clients returns the number of connected GUIs.
func (e *Editor) Clients() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.clients)
}

// Run listens on addr and serves until ctx is done.
func (e *Editor) Run(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("editor: listen: %w", err)
	}
	return e.Serve(ctx, ln)
}

// Serve serves HTTP on ln and ticks the bridge until ctx is done or the tick
// fails. On return the bridge and every connection are closed.
func (e *Editor) Serve(ctx context.Context, ln net.Listener) error {
	e.mu.RLock()
	attached := e.bridge != nil
	e.mu.RUnlock()
	if !attached {
		ln.Close()
		return ErrNotAttached
	}
	defer e.Close()

	srv := &http.Server{
		Handler:           e.mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	e.log.Info("editor listening on http://%s", ln.Addr())

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("editor: serve: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	g.Go(func() error {
		return e.tickLoop(gctx)
	})
	if e.opts.DeveloperMode && e.opts.AssetsDir != "" && e.proxy == nil {
		g.Go(func() error {
			if err := e.watchAssets(gctx, e.opts.AssetsDir); err != nil {
				e.log.Warn("asset watcher disabled: %v", err)
			}
			return nil
		})
	}
	return g.Wait()
}

// Close disconnects every client and closes the bridge.
func (e *Editor) Close() {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.closed = true
	clients := make([]*client, 0, len(e.clients))
	for _, c := range e.clients {
		clients = append(clients, c)
	}
	clear(e.clients)
	b := e.bridge
	e.mu.Unlock()

	for _, c := range clients {
		c.shutdown()
	}
	if b != nil {
		b.Close()
	}
}

func (e *Editor) tickLoop(ctx context.Context) error {
	ticker := time.NewTicker(time.Second / time.Duration(e.opts.TickRate))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			e.mu.RLock()
			b := e.bridge
			e.mu.RUnlock()
			if err := b.Tick(); err != nil {
				return fmt.Errorf("editor: tick: %w", err)
			}
		}
	}
}

// receive decodes one inbound frame and delivers it to the bridge.
func (e *Editor) receive(c *client, data []byte) error {
	v, err := e.codec.Unmarshal(data)
	if err != nil {
		e.log.Warn("client %s: %v", c.id, err)
		return nil
	}

	e.mu.RLock()
	b := e.bridge
	e.mu.RUnlock()
	if b == nil {
		e.log.Warn("client %s: no bridge attached, frame dropped", c.id)
		return nil
	}

	err = b.Deliver(v)
	switch {
	case errors.Is(err, channel.ErrFull):
		e.log.Warn("client %s: inbound queue full, frame dropped", c.id)
		return nil
	case err != nil:
		return err
	}
	return nil
}

func (e *Editor) drop(c *client) {
	e.mu.Lock()
	_, known := e.clients[c.id]
	delete(e.clients, c.id)
	e.mu.Unlock()

	c.close()
	if known {
		e.log.Info("client %s disconnected", c.id)
	}
}

func (e *Editor) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := e.upgrader.Upgrade(w, r, nil)
	if err != nil {
		e.log.Warn("websocket upgrade: %v", err)
		return
	}

	c := newClient(conn, e.opts.ClientBuffer)

	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		c.shutdown()
		return
	}
	e.clients[c.id] = c
	e.mu.Unlock()

	e.log.Info("client %s connected from %s", c.id, r.RemoteAddr)
	go e.writeLoop(c, e.msgType)
	go e.readLoop(c)
}

func (e *Editor) handleInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, e.Info())
}

// ParamInfo describes one parameter at /params.json.
type ParamInfo struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	Unit    string  `json:"unit,omitempty"`
	Kind    string  `json:"kind"`
	Steps   int32   `json:"steps"`
	Default float64 `json:"default"`
	Value   float64 `json:"value"`
	Display string  `json:"display"`
	Hidden  bool    `json:"hidden,omitempty"`
}

func (e *Editor) handleParams(w http.ResponseWriter, r *http.Request) {
	if e.opts.Registry == nil {
		http.NotFound(w, r)
		return
	}

	var out []ParamInfo
	for p := range e.opts.Registry.Params() {
		v := p.GetValue()
		out = append(out, ParamInfo{
			ID:      p.ID,
			Name:    p.Name,
			Unit:    p.Unit,
			Kind:    p.Kind.String(),
			Steps:   p.StepCount,
			Default: p.DefaultValue,
			Value:   v,
			Display: p.FormatValue(v),
			Hidden:  p.Flags&param.IsHidden != 0,
		})
	}
	writeJSON(w, out)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	json.NewEncoder(w).Encode(v)
}
