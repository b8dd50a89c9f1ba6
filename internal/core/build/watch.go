package build

import (
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	log "github.com/sirupsen/logrus"
)

// StartWatching wires a fsnotify.Watcher into this Orchestrator's
// Created/Deleted/Modified handlers, for the headless (non-LSP) case, such
// as a `repl` session, where there is no editor channel driving
// didChangeWatchedFiles. When the Orchestrator is instead driven by
// an LSP client, internal/lsp calls the same FileCreated/FileDeleted/
// FileModified methods directly, so graph mutation has exactly one code
// path regardless of the event source.
func (o *Orchestrator) StartWatching(root string) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	o.mu.Lock()
	o.watcher = w
	o.mu.Unlock()

	if err := w.Add(root); err != nil {
		w.Close()
		return err
	}

	go o.watchLoop(w)
	return nil
}

// StopWatching tears down the fsnotify watcher, if one was started.
func (o *Orchestrator) StopWatching() error {
	o.mu.Lock()
	w := o.watcher
	o.watcher = nil
	o.mu.Unlock()

	if w == nil {
		return nil
	}
	return w.Close()
}

func (o *Orchestrator) watchLoop(w *fsnotify.Watcher) {
	for {
		select {
		case event, ok := <-w.Events:
			if !ok {
				return
			}
			if filepath.Ext(event.Name) != SourceExtension {
				continue
			}
			o.dispatchEvent(event)
		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			log.WithError(err).Warn("file watcher error")
		}
	}
}

func (o *Orchestrator) dispatchEvent(event fsnotify.Event) {
	switch {
	case event.Has(fsnotify.Create):
		o.FileCreated(event.Name)
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		o.FileDeleted(event.Name)
	case event.Has(fsnotify.Write):
		o.FileModified(event.Name)
	}
}
