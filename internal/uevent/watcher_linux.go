//go:build linux

package uevent

import (
	"strings"
	"sync"

	"golang.org/x/sys/unix"

	"github.com/lakeside-soc/thermald/internal/logger"
)

// NetlinkWatcher reads NETLINK_KOBJECT_UEVENT broadcasts and decodes
// the kernel's kobject envelope (NUL-separated "KEY=VALUE" records) to
// recover thermal zone name-change events.
type NetlinkWatcher struct {
	fd     int
	events chan Event

	closeOnce sync.Once
	done      chan struct{}
}

// NewNetlinkWatcher opens the kobject uevent multicast socket and
// starts reading in the background. eligible restricts delivered
// events to these sensor names (the set that trip-point programming
// succeeded for); an empty set disables filtering.
func NewNetlinkWatcher(eligible map[string]bool) (*NetlinkWatcher, error) {
	fd, err := unix.Socket(unix.AF_NETLINK, unix.SOCK_RAW, unix.NETLINK_KOBJECT_UEVENT)
	if err != nil {
		return nil, err
	}
	addr := &unix.SockaddrNetlink{Family: unix.AF_NETLINK, Groups: 1}
	if err := unix.Bind(fd, addr); err != nil {
		unix.Close(fd)
		return nil, err
	}

	w := &NetlinkWatcher{
		fd:     fd,
		events: make(chan Event, 16),
		done:   make(chan struct{}),
	}
	go w.run(eligible)
	return w, nil
}

func (w *NetlinkWatcher) run(eligible map[string]bool) {
	buf := make([]byte, 4096)
	for {
		n, _, err := unix.Recvfrom(w.fd, buf, 0)
		if err != nil {
			select {
			case <-w.done:
				return
			default:
				logger.Warn("uevent: recvfrom: %v", err)
				continue
			}
		}
		name, subsystem, ok := parseUevent(buf[:n])
		if !ok || subsystem != "thermal" {
			continue
		}
		if len(eligible) > 0 && !eligible[name] {
			continue
		}
		select {
		case w.events <- Event{SensorName: name}:
		default:
			logger.Warn("uevent: event channel full, dropping %s", name)
		}
	}
}

// parseUevent decodes the kernel's kobject envelope: an "ACTION@DEVPATH"
// header followed by NUL-separated KEY=VALUE records, and returns the
// sensor name (from NAME= or the last DEVPATH component) and SUBSYSTEM.
func parseUevent(raw []byte) (name, subsystem string, ok bool) {
	fields := strings.Split(string(raw), "\x00")
	var devpath string
	for _, f := range fields {
		switch {
		case strings.HasPrefix(f, "SUBSYSTEM="):
			subsystem = strings.TrimPrefix(f, "SUBSYSTEM=")
		case strings.HasPrefix(f, "NAME="):
			name = strings.TrimPrefix(f, "NAME=")
		case strings.HasPrefix(f, "DEVPATH="):
			devpath = strings.TrimPrefix(f, "DEVPATH=")
		}
	}
	if name == "" && devpath != "" {
		if i := strings.LastIndexByte(devpath, '/'); i >= 0 {
			name = devpath[i+1:]
		}
	}
	return name, subsystem, name != "" && subsystem != ""
}

// New opens the platform's uevent watcher. On Linux this is a
// NetlinkWatcher; callers on other platforms get NullWatcher instead
// (see watcher_other.go).
func New(eligible map[string]bool) (Watcher, error) {
	return NewNetlinkWatcher(eligible)
}

// Events implements Watcher.
func (w *NetlinkWatcher) Events() <-chan Event { return w.events }

// Close implements Watcher.
func (w *NetlinkWatcher) Close() error {
	w.closeOnce.Do(func() { close(w.done) })
	return unix.Close(w.fd)
}
