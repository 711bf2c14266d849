package editor

import (
	"errors"
	"io/fs"
	"mime"
	"net/http"
	"path"
	"strings"
	"sync"
)

// asset is a file read from the asset filesystem.
type asset struct {
	data        []byte
	contentType string
}

// assetCache serves GUI files from an fs.FS and keeps them in memory until
// invalidated.
type assetCache struct {
	fsys fs.FS

	mu    sync.RWMutex
	files map[string]asset
}

func newAssetCache(fsys fs.FS) *assetCache {
	return &assetCache{fsys: fsys, files: make(map[string]asset)}
}

// get returns the named file, reading it on first use.
func (c *assetCache) get(name string) (asset, error) {
	c.mu.RLock()
	a, ok := c.files[name]
	c.mu.RUnlock()
	if ok {
		return a, nil
	}

	if c.fsys == nil {
		return asset{}, fs.ErrNotExist
	}
	data, err := fs.ReadFile(c.fsys, name)
	if err != nil {
		return asset{}, err
	}

	a = asset{data: data, contentType: contentType(name)}
	c.mu.Lock()
	c.files[name] = a
	c.mu.Unlock()
	return a, nil
}

// invalidate drops every cached file.
func (c *assetCache) invalidate() {
	c.mu.Lock()
	clear(c.files)
	c.mu.Unlock()
}

func (c *assetCache) len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.files)
}

// ServeHTTP maps "/" to index.html and every other path to the file of the
// same name. Missing files get a plain-text 404.
func (c *assetCache) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")

	name := assetName(r.URL.Path)
	a, err := c.get(name)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) && !errors.Is(err, fs.ErrInvalid) {
			w.Header().Set("Content-Type", "text/plain")
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte("500 Internal Server Error"))
			return
		}
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte("404 Not Found"))
		return
	}

	w.Header().Set("Content-Type", a.contentType)
	if r.Method == http.MethodHead {
		return
	}
	w.Write(a.data)
}

func assetName(urlPath string) string {
	p := path.Clean("/" + urlPath)
	if p == "/" {
		return "index.html"
	}
	name := strings.TrimPrefix(p, "/")
	if strings.HasSuffix(urlPath, "/") {
		name = path.Join(name, "index.html")
	}
	return name
}

// contentType guesses the MIME type from the extension, falling back to
// text/plain.
func contentType(name string) string {
	if t := mime.TypeByExtension(path.Ext(name)); t != "" {
		return t
	}
	return "text/plain"
}
