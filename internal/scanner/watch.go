package scanner

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/fyrsmithlabs/primus/internal/ignore"
	"go.uber.org/zap"
)

// ErrWatcherFailed indicates the filesystem watcher could not be started.
var ErrWatcherFailed = errors.New("failed to initialize filesystem watcher")

// watchRoot is one path target of a Watch call. Directory roots carry the
// ignore matcher a scan of that directory would use.
type watchRoot struct {
	path    string
	dir     bool
	matcher *ignore.Matcher
}

// Watch calls onChange once up front and again after files under the path
// targets change, coalescing bursts of events within debounce. Only files a
// directory scan would read trigger a rescan: unrecognised extensions and
// paths excluded by ignore files are dropped. Non-path targets are ignored.
// It blocks until ctx is done.
func (r *Reader) Watch(ctx context.Context, targets []string, debounce time.Duration, onChange func()) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrWatcherFailed, err)
	}
	defer watcher.Close()

	var roots []*watchRoot
	dirs := make(map[string]bool)
	for _, target := range targets {
		if Classify(target) != KindPath {
			continue
		}
		info, err := os.Stat(target)
		if err != nil {
			return fmt.Errorf("watching %s: %w", target, err)
		}
		root := &watchRoot{path: filepath.Clean(target), dir: info.IsDir()}
		if root.dir {
			root.matcher = ignore.NewMatcher(root.path, r.opts.IgnoreFiles)
		}
		if err := r.addRecursive(ctx, watcher, root, root.path, dirs); err != nil {
			return fmt.Errorf("watching %s: %w", target, err)
		}
		roots = append(roots, root)
	}
	if len(roots) == 0 {
		return fmt.Errorf("%w: no local paths to watch", ErrWatcherFailed)
	}
	r.logger.Info(ctx, "watching for changes", zap.Int("dirs", len(dirs)))

	onChange()

	var timer *time.Timer
	var fire <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !r.triggers(ctx, watcher, roots, dirs, event) {
				continue
			}
			r.logger.Trace(ctx, "file changed", zap.String("path", event.Name), zap.Stringer("op", event.Op))
			if timer == nil {
				timer = time.NewTimer(debounce)
			} else {
				timer.Reset(debounce)
			}
			fire = timer.C
		case <-fire:
			fire = nil
			onChange()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			r.logger.Warn(ctx, "watcher error", zap.Error(err))
		}
	}
}

// triggers reports whether event should schedule a rescan. New directories
// that a scan would enter are added to the watcher; edits to ignore files
// rebuild the root's matcher.
func (r *Reader) triggers(ctx context.Context, w *fsnotify.Watcher, roots []*watchRoot, dirs map[string]bool, event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return false
	}
	name := filepath.Clean(event.Name)
	root := rootFor(roots, name)
	if root == nil {
		return false
	}
	if !root.dir {
		return name == root.path
	}
	rel, err := filepath.Rel(root.path, name)
	if err != nil {
		return false
	}

	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(name); err == nil && info.IsDir() {
			if ignore.DefaultSkipDirs[info.Name()] || root.matcher.Ignored(rel, true) {
				return false
			}
			if err := r.addRecursive(ctx, w, root, name, dirs); err != nil {
				r.logger.Warn(ctx, "failed to watch new directory", zap.String("path", name), zap.Error(err))
			}
			return true
		}
	}
	if dirs[name] && (event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename)) {
		delete(dirs, name)
		return true
	}

	if r.isIgnoreFile(filepath.Base(name)) {
		root.matcher = ignore.NewMatcher(root.path, r.opts.IgnoreFiles)
		if err := r.addRecursive(ctx, w, root, root.path, dirs); err != nil {
			r.logger.Warn(ctx, "failed to reload ignore files", zap.String("path", root.path), zap.Error(err))
		}
		return true
	}

	ext := strings.ToLower(filepath.Ext(name))
	if !r.textExts[ext] && !r.docExts[ext] {
		return false
	}
	return !root.matcher.Ignored(rel, false)
}

func (r *Reader) isIgnoreFile(base string) bool {
	for _, name := range r.opts.IgnoreFiles {
		if base == name {
			return true
		}
	}
	return false
}

// rootFor returns the innermost root containing name.
func rootFor(roots []*watchRoot, name string) *watchRoot {
	var best *watchRoot
	for _, root := range roots {
		if name != root.path && !strings.HasPrefix(name, root.path+string(filepath.Separator)) {
			continue
		}
		if best == nil || len(root.path) > len(best.path) {
			best = root
		}
	}
	return best
}

// addRecursive watches start and every subdirectory beneath it that a scan
// of root would descend into, loading ignore files on the way down.
func (r *Reader) addRecursive(ctx context.Context, w *fsnotify.Watcher, root *watchRoot, start string, dirs map[string]bool) error {
	if !root.dir {
		return w.Add(root.path)
	}
	return filepath.WalkDir(start, func(p string, d fs.DirEntry, err error) error {
		if err != nil || !d.IsDir() {
			return nil
		}
		rel, relErr := filepath.Rel(root.path, p)
		if relErr != nil {
			return nil
		}
		if p != root.path && (ignore.DefaultSkipDirs[d.Name()] || root.matcher.Ignored(rel, true)) {
			return filepath.SkipDir
		}
		if err := root.matcher.LoadDir(rel); err != nil {
			r.logger.Warn(ctx, "failed to read ignore file", zap.String("dir", p), zap.Error(err))
		}
		if err := w.Add(p); err != nil {
			return err
		}
		dirs[p] = true
		return nil
	})
}
