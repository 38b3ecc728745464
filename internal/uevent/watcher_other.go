//go:build !linux

package uevent

// NullWatcher never fires; used on platforms without netlink kobject
// uevent support, so the scheduler falls back to pure timer polling.
type NullWatcher struct {
	events chan Event
}

// NewNullWatcher returns a Watcher whose Events channel never delivers.
func NewNullWatcher() *NullWatcher {
	return &NullWatcher{events: make(chan Event)}
}

// New opens the platform's uevent watcher; on non-Linux platforms this
// is always a NullWatcher, and eligible is ignored.
func New(eligible map[string]bool) (Watcher, error) {
	return NewNullWatcher(), nil
}

func (w *NullWatcher) Events() <-chan Event { return w.events }
func (w *NullWatcher) Close() error         { return nil }
