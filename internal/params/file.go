package params

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"

	fsnotify "github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"

	"dclinabox/internal/system"
)

// FileSource serves values from a YAML mapping file. Opener and parent
// contexts publish their values this way; the file is re-read whenever it
// changes so a value picked in the opener after this instance started is
// seen on the next resolve.
type FileSource struct {
	Path string

	mu   sync.RWMutex
	vals map[string]any
}

// OpenFile loads path. A missing file yields an empty source without error.
func OpenFile(path string) (*FileSource, error) {
	fs := &FileSource{Path: path}
	if err := fs.Reload(); err != nil {
		return nil, err
	}
	return fs, nil
}

// Reload re-reads the file.
func (f *FileSource) Reload() error {
	vals, err := ReadFile(f.Path)
	if err != nil {
		return err
	}
	f.mu.Lock()
	f.vals = vals
	f.mu.Unlock()
	return nil
}

// Lookup implements Source.
func (f *FileSource) Lookup(name string) (any, bool) {
	if f == nil {
		return nil, false
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	v, ok := f.vals[name]
	return v, ok
}

// Watch reloads the file on every change until ctx is done. changed, if
// not nil, is called after each successful reload.
func (f *FileSource) Watch(ctx context.Context, changed func()) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	// watch the directory: editors and WriteFile replace the file
	if err := w.Add(filepath.Dir(f.Path)); err != nil {
		_ = w.Close()
		return err
	}
	name := filepath.Clean(f.Path)
	go func() {
		defer w.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != name {
					continue
				}
				if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Remove) {
					continue
				}
				if err := f.Reload(); err != nil {
					system.Logger.Warn("reload params file", "path", f.Path, "err", err)
					continue
				}
				system.Logger.Debug("params file reloaded", "path", f.Path)
				if changed != nil {
					changed()
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				system.Logger.Warn("params watcher", "err", err)
			}
		}
	}()
	return nil
}

// ReadFile decodes a YAML mapping. Missing file yields an empty map.
func ReadFile(path string) (map[string]any, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return map[string]any{}, nil
		}
		return nil, err
	}
	vals := map[string]any{}
	if err := yaml.Unmarshal(b, &vals); err != nil {
		return nil, err
	}
	if vals == nil {
		vals = map[string]any{}
	}
	return vals, nil
}

// WriteFile encodes vals as YAML to path, creating parent dirs. The write
// goes through a temp file and rename so watchers never see a torn file.
func WriteFile(path string, vals map[string]any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	b, err := yaml.Marshal(vals)
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
