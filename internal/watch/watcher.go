// SPDX-License-Identifier: MPL-2.0

// Package watch rebuilds the bundle when source files change.
//
// It monitors the project context directory and invokes a rebuild callback
// after a debounce window closes. Events inside the window are coalesced so
// an editor save (write, rename, chmod) triggers one rebuild, not three.
package watch

import (
	"context"
	"fmt"
	"io"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"
)

// defaultDebounce is the quiet period after the last filesystem event before
// a rebuild fires.
const defaultDebounce = 300 * time.Millisecond

// defaultPatterns select the files whose changes invalidate a build: module
// sources, DLL manifests, and the build configuration itself.
var defaultPatterns = []string{
	"**/*.js",
	"**/*.mjs",
	"**/*.json",
	"**/*.cue",
}

// defaultIgnores are always excluded, on top of any caller-supplied ignores.
// They cover VCS metadata, dependency trees, editor temp files, and OS noise.
var defaultIgnores = []string{
	"**/.git/**",
	"**/node_modules/**",
	"**/*.swp",
	"**/*.swo",
	"**/*~",
	"**/.DS_Store",
}

type (
	// Config holds the parameters for a Watcher.
	Config struct {
		// Context is the project directory to watch. All patterns are
		// resolved relative to it. Empty defaults to the working directory.
		Context string

		// Patterns are doublestar globs selecting which files trigger a
		// rebuild. An empty slice falls back to the default source patterns.
		Patterns []string

		// Ignore are additional doublestar globs for paths that never
		// trigger a rebuild, merged with the built-in defaults. The build
		// output directory must be listed here when it lives inside Context,
		// otherwise every emit re-triggers the watcher.
		Ignore []string

		// Debounce is the quiet period after the last event before
		// OnRebuild fires. Zero or negative falls back to defaultDebounce.
		Debounce time.Duration

		// ClearScreen clears the terminal before each rebuild by writing
		// ANSI escapes to Stdout. No terminal detection is performed.
		ClearScreen bool

		// OnRebuild is called after the debounce window closes with the
		// deduplicated changed paths, relative to Context. A rebuild error
		// is reported and watching continues. A nil callback is a no-op.
		OnRebuild func(ctx context.Context, changed []string) error

		// Stdout and Stderr default to os.Stdout / os.Stderr when nil.
		Stdout io.Writer
		Stderr io.Writer
	}

	// Watcher monitors a project directory and fires debounced rebuilds.
	// Run must be called exactly once.
	Watcher struct {
		cfg      Config
		fsw      *fsnotify.Watcher
		patterns []string
		ignores  []string
		stdout   io.Writer
		stderr   io.Writer
		debounce time.Duration
		root     string
		started  atomic.Bool
	}
)

// New creates a Watcher for cfg.Context. It validates all glob patterns,
// resolves the context to an absolute path, and registers every non-ignored
// directory under it with fsnotify.
func New(cfg Config) (*Watcher, error) {
	root := cfg.Context
	if root == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("watch: determine working directory: %w", err)
		}
		root = wd
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("watch: resolve context directory: %w", err)
	}

	// Invalid globs fail at construction time rather than silently never
	// matching at runtime.
	if err := validatePatterns(cfg.Patterns, "watch"); err != nil {
		return nil, err
	}
	if err := validatePatterns(cfg.Ignore, "ignore"); err != nil {
		return nil, err
	}

	patterns := cfg.Patterns
	if len(patterns) == 0 {
		patterns = defaultPatterns
	}
	ignores := make([]string, 0, len(defaultIgnores)+len(cfg.Ignore))
	ignores = append(ignores, defaultIgnores...)
	ignores = append(ignores, cfg.Ignore...)

	debounce := cfg.Debounce
	if debounce <= 0 {
		debounce = defaultDebounce
	}
	stdout := cfg.Stdout
	if stdout == nil {
		stdout = os.Stdout
	}
	stderr := cfg.Stderr
	if stderr == nil {
		stderr = os.Stderr
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch: create fsnotify watcher: %w", err)
	}

	w := &Watcher{
		cfg:      cfg,
		fsw:      fsw,
		patterns: patterns,
		ignores:  ignores,
		stdout:   stdout,
		stderr:   stderr,
		debounce: debounce,
		root:     absRoot,
	}

	if err := w.registerTree(); err != nil {
		if closeErr := fsw.Close(); closeErr != nil {
			fmt.Fprintf(stderr, "watch: close after init failure: %v\n", closeErr)
		}
		return nil, err
	}
	return w, nil
}

// Run blocks until ctx is cancelled, coalescing filesystem events and firing
// debounced rebuilds. It returns nil on clean cancellation and an error only
// when the underlying watcher is unrecoverably broken. A second call returns
// an error immediately.
func (w *Watcher) Run(ctx context.Context) error {
	if !w.started.CompareAndSwap(false, true) {
		return fmt.Errorf("watch: Run called more than once")
	}

	var (
		mu      sync.Mutex
		pending = make(map[string]struct{})
		timer   *time.Timer
		busy    atomic.Bool
	)

	// rebuild drains the pending set and invokes OnRebuild. The timer may
	// fire after cancellation, so ctx is re-checked here. The busy guard
	// keeps a slow rebuild from overlapping with the next timer fire; the
	// skipped fire re-arms the timer so pending changes are not lost.
	rebuild := func() {
		if ctx.Err() != nil {
			return
		}
		if !busy.CompareAndSwap(false, true) {
			fmt.Fprintf(w.stderr, "watch: rebuild still in progress, deferring\n")
			mu.Lock()
			if timer != nil {
				timer.Reset(w.debounce)
			}
			mu.Unlock()
			return
		}
		defer busy.Store(false)

		mu.Lock()
		if len(pending) == 0 {
			mu.Unlock()
			return
		}
		changed := slices.Collect(maps.Keys(pending))
		clear(pending)
		mu.Unlock()
		slices.Sort(changed)

		if w.cfg.ClearScreen {
			fmt.Fprint(w.stdout, "\033[2J\033[H")
		}
		if w.cfg.OnRebuild != nil {
			if err := w.cfg.OnRebuild(ctx, changed); err != nil {
				fmt.Fprintf(w.stderr, "watch: rebuild failed: %v\n", err)
			}
		}
	}

	defer func() {
		mu.Lock()
		localTimer := timer
		mu.Unlock()
		if localTimer != nil && !localTimer.Stop() {
			select {
			case <-localTimer.C:
			default:
			}
		}
		if closeErr := w.fsw.Close(); closeErr != nil {
			fmt.Fprintf(w.stderr, "watch: close fsnotify: %v\n", closeErr)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case evt, ok := <-w.fsw.Events:
			if !ok {
				return fmt.Errorf("watch: fsnotify event channel closed unexpectedly")
			}

			rel, err := filepath.Rel(w.root, evt.Name)
			if err != nil {
				rel = evt.Name
			}
			if w.ignored(rel) {
				continue
			}

			// Directories created after startup must be registered so
			// recursive watching extends to them.
			if evt.Has(fsnotify.Create) {
				w.registerIfDir(evt.Name)
			}

			if !w.matches(rel) {
				continue
			}

			mu.Lock()
			pending[rel] = struct{}{}
			if timer == nil {
				timer = time.AfterFunc(w.debounce, rebuild)
			} else {
				timer.Reset(w.debounce)
			}
			mu.Unlock()

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return fmt.Errorf("watch: fsnotify error channel closed unexpectedly")
			}
			// Resource exhaustion means the watcher cannot recover; see
			// watcher_fatal_*.go for the platform classification.
			if isFatalFsnotifyError(err) {
				return fmt.Errorf("watch: fatal fsnotify error: %w", err)
			}
			fmt.Fprintf(w.stderr, "watch: fsnotify error: %v\n", err)
		}
	}
}

// registerTree walks the context directory and adds every non-ignored
// directory to the fsnotify watcher. Pattern filtering happens per event,
// not here, so new files in a registered directory are always seen.
func (w *Watcher) registerTree() error {
	walkErr := filepath.WalkDir(w.root, func(path string, d os.DirEntry, walkDirErr error) error {
		if walkDirErr != nil {
			// Inaccessible subtrees are skipped rather than aborting the
			// walk; the user is told which paths are not being watched.
			fmt.Fprintf(w.stderr, "watch: skipping inaccessible path %q: %v\n", path, walkDirErr)
			return nil //nolint:nilerr // intentional skip of inaccessible paths
		}
		if !d.IsDir() {
			return nil
		}
		rel, relErr := filepath.Rel(w.root, path)
		if relErr != nil {
			return nil //nolint:nilerr // skip paths that cannot be made relative
		}
		if w.ignored(rel) || w.ignored(rel+"/") {
			return filepath.SkipDir
		}
		if addErr := w.fsw.Add(path); addErr != nil {
			return fmt.Errorf("watch: add directory %q: %w", path, addErr)
		}
		return nil
	})
	if walkErr != nil {
		return fmt.Errorf("watch: walk context directory: %w", walkErr)
	}
	return nil
}

// registerIfDir adds path to the watcher when it is a non-ignored directory.
func (w *Watcher) registerIfDir(path string) {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return
	}
	rel, err := filepath.Rel(w.root, path)
	if err != nil {
		return
	}
	if w.ignored(rel) || w.ignored(rel+"/") {
		return
	}
	if addErr := w.fsw.Add(path); addErr != nil {
		fmt.Fprintf(w.stderr, "watch: add new directory %q: %v\n", path, addErr)
	}
}

func (w *Watcher) ignored(rel string) bool {
	return matchAny(w.ignores, rel)
}

func (w *Watcher) matches(rel string) bool {
	return matchAny(w.patterns, rel)
}

// matchAny reports whether rel matches at least one doublestar pattern.
// Paths are normalised to forward slashes before matching.
func matchAny(patterns []string, rel string) bool {
	normalized := filepath.ToSlash(rel)
	for _, pat := range patterns {
		if matched, matchErr := doublestar.Match(pat, normalized); matchErr == nil && matched {
			return true
		}
	}
	return false
}

// validatePatterns checks that every pattern is a valid doublestar glob.
// The label ("watch" or "ignore") is used in error messages.
func validatePatterns(patterns []string, label string) error {
	for _, pat := range patterns {
		if _, err := doublestar.Match(pat, ""); err != nil {
			return fmt.Errorf("watch: invalid %s pattern %q: %w", label, pat, err)
		}
	}
	return nil
}
