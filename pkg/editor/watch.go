package editor

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// watchAssets invalidates the asset cache whenever a file under dir changes.
// It returns when ctx is done.
func (e *Editor) watchAssets(ctx context.Context, dir string) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fsw.Close()

	// fsnotify is not recursive.
	err = filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return fsw.Add(p)
		}
		return nil
	})
	if err != nil {
		return err
	}
	e.log.Debug("watching assets in %s", dir)

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if ev.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					_ = fsw.Add(ev.Name)
				}
			}
			e.assets.invalidate()
			e.log.Debug("asset %s changed (%s), cache cleared", ev.Name, ev.Op)
		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			e.log.Warn("asset watcher: %v", err)
		}
	}
}
