// Package watch re-runs a declaration lookup whenever its source file
// changes on disk.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/standardbeagle/snip/internal/core"
	"github.com/standardbeagle/snip/internal/debug"
	"github.com/standardbeagle/snip/internal/extractor"
	"github.com/standardbeagle/snip/internal/parser"
	"github.com/standardbeagle/snip/internal/types"
	"github.com/standardbeagle/snip/pkg/pathutil"
)

// ResultFunc receives every lookup result, including the initial one.
// Calls never overlap.
type ResultFunc func(decl *types.Declaration, err error)

// FileWatcher watches one file and reports a fresh lookup after each
// debounced change. Writes that leave the content byte-identical are
// skipped.
type FileWatcher struct {
	svc      *extractor.Service
	req      extractor.Request
	grammar  parser.Grammar
	path     string
	debounce time.Duration
	onResult ResultFunc

	watcher *fsnotify.Watcher
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	last    *core.SourceBuffer

	stats   Stats
	statsMu sync.RWMutex
}

// Stats counts watcher activity
type Stats struct {
	Events      int64 // fsnotify events for the watched file
	Extractions int64 // lookups that ran
	Skipped     int64 // debounced changes with unchanged content
	Errors      int64
	LastEvent   time.Time
}

// NewFileWatcher resolves the grammar up front so an unsupported file fails
// before any watch is registered.
func NewFileWatcher(svc *extractor.Service, req extractor.Request, onResult ResultFunc) (*FileWatcher, error) {
	g, err := svc.Grammar(req)
	if err != nil {
		return nil, err
	}
	return &FileWatcher{
		svc:      svc,
		req:      req,
		grammar:  g,
		path:     pathutil.ToAbsolute(req.Path, ""),
		debounce: time.Duration(svc.Config().Watch.DebounceMs) * time.Millisecond,
		onResult: onResult,
	}, nil
}

// Start reports the initial lookup and begins watching. The parent
// directory is watched so editors that replace the file by rename are
// still followed.
func (fw *FileWatcher) Start(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := watcher.Add(filepath.Dir(fw.path)); err != nil {
		watcher.Close()
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(fw.path), err)
	}
	fw.watcher = watcher

	ctx, fw.cancel = context.WithCancel(ctx)

	debug.LogWatch("watching %s for %q\n", fw.path, fw.req.Target)
	fw.refresh(ctx)

	fw.wg.Add(1)
	go fw.processEvents(ctx)
	return nil
}

// Stop ends the watch and waits for the event goroutine to exit.
func (fw *FileWatcher) Stop() error {
	if fw.cancel != nil {
		fw.cancel()
	}
	var err error
	if fw.watcher != nil {
		err = fw.watcher.Close()
	}
	fw.wg.Wait()
	debug.LogWatch("stopped watching %s\n", fw.path)
	return err
}

// Run starts the watcher and blocks until ctx is done.
func (fw *FileWatcher) Run(ctx context.Context) error {
	if err := fw.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()
	return fw.Stop()
}

// processEvents owns the debounce timer, so every refresh runs on this
// goroutine.
func (fw *FileWatcher) processEvents(ctx context.Context) {
	defer fw.wg.Done()

	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}
			if !fw.relevant(event) {
				continue
			}
			fw.incrementStats(func(s *Stats) {
				s.Events++
				s.LastEvent = time.Now()
			})
			debug.LogWatch("event %v for %s\n", event.Op, event.Name)

			if timer == nil {
				timer = time.NewTimer(fw.debounce)
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(fw.debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			fw.refresh(ctx)

		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			fw.incrementStats(func(s *Stats) { s.Errors++ })
			fw.report(nil, fmt.Errorf("watch error: %w", err))
		}
	}
}

func (fw *FileWatcher) relevant(event fsnotify.Event) bool {
	if filepath.Clean(event.Name) != fw.path {
		return false
	}
	return event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename|fsnotify.Remove) != 0
}

// refresh reloads the file and runs the lookup unless the content is
// unchanged since the last run.
func (fw *FileWatcher) refresh(ctx context.Context) {
	buf, err := fw.svc.Load(fw.req.Path)
	if err != nil {
		// Removed or mid-rename; the next event retries
		fw.last = nil
		fw.incrementStats(func(s *Stats) { s.Errors++ })
		fw.report(nil, err)
		return
	}

	if buf.SameContent(fw.last) {
		fw.incrementStats(func(s *Stats) { s.Skipped++ })
		debug.LogWatch("%s unchanged (hash %x), skipping\n", fw.path, buf.FastHash)
		return
	}
	fw.last = buf

	decl, err := fw.svc.ExtractSource(ctx, fw.grammar, buf, fw.req.Target)
	fw.incrementStats(func(s *Stats) {
		s.Extractions++
		if err != nil {
			s.Errors++
		}
	})
	fw.report(decl, err)
}

func (fw *FileWatcher) report(decl *types.Declaration, err error) {
	if fw.onResult != nil {
		fw.onResult(decl, err)
	}
}

func (fw *FileWatcher) incrementStats(update func(*Stats)) {
	fw.statsMu.Lock()
	defer fw.statsMu.Unlock()
	update(&fw.stats)
}

// GetStats returns current watch statistics
func (fw *FileWatcher) GetStats() Stats {
	fw.statsMu.RLock()
	defer fw.statsMu.RUnlock()
	return fw.stats
}
