// Package watch feeds the contents of a local file into an editing session
// each time the file is written.
package watch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"
)

type Editor interface {
	Edit(content string)
}

type Watcher struct {
	path   string
	editor Editor
	last   string
}

// New watches path. initial is the content the editor already holds; a write
// that leaves the file equal to it produces no edit.
func New(path string, editor Editor, initial string) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", path, err)
	}
	return &Watcher{path: abs, editor: editor, last: initial}, nil
}

// Run blocks until ctx is done. The parent directory is watched so that
// editors replacing the file by rename are still seen.
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create file watcher: %w", err)
	}
	defer fsw.Close()
	if err := fsw.Add(filepath.Dir(w.path)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(w.path), err)
	}
	logger := logutil.GetLogger(ctx).With(zap.String("file", w.path))
	logger.Info("watching file")
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			w.reload(ctx)
		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			logger.Error("file watcher error", zap.Error(err))
		}
	}
}

func (w *Watcher) reload(ctx context.Context) {
	raw, err := os.ReadFile(w.path)
	if err != nil {
		logutil.GetLogger(ctx).Warn("read watched file failed", zap.String("file", w.path), zap.Error(err))
		return
	}
	content := string(raw)
	if content == w.last {
		return
	}
	w.last = content
	logutil.GetLogger(ctx).Debug("file changed", zap.String("file", w.path), zap.Int("bytes", len(raw)))
	w.editor.Edit(content)
}
