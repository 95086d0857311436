package watcher

import (
	"context"
	"log/slog"
	"sync"

	"github.com/fourgetech/payportal/internal/session"
)

// Watcher tracks the browser tab's visibility via beacons and forces a logout when
// the tab was hidden at the moment it was discarded. Unload beacons are not
// guaranteed to arrive, so this is an advisory hygiene measure, not a security
// boundary; credential expiry remains the real backstop.
type Watcher struct {
	mu       sync.Mutex
	hidden   bool
	sessions *session.Store
	logger   *slog.Logger
}

// New builds a watcher over the session store.
func New(sessions *session.Store, logger *slog.Logger) *Watcher {
	return &Watcher{sessions: sessions, logger: logger}
}

// SetHidden records the latest visibility state reported by the tab.
func (w *Watcher) SetHidden(hidden bool) {
	w.mu.Lock()
	w.hidden = hidden
	w.mu.Unlock()
}

// Hidden reports the last known visibility state.
func (w *Watcher) Hidden() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.hidden
}

// Unload handles the tab's final beacon. A tab closed while hidden takes the
// session with it; a foreground navigation does not.
func (w *Watcher) Unload(ctx context.Context) {
	if !w.Hidden() {
		return
	}
	w.logger.Info("tab hidden at unload, forcing logout")
	w.sessions.Logout(ctx)
}
