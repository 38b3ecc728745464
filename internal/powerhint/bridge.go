// Package powerhint implements the power-hint bridge: a
// thin adapter that tells a peer process which thermal severity a
// sensor has entered, surviving peer disconnects without retrying
// mid-cycle.
package powerhint

import (
	"fmt"
	"sync"

	"github.com/lakeside-soc/thermald/internal/logger"
	"github.com/lakeside-soc/thermald/internal/severity"
)

// Peer is the RPC surface the bridge drives. A production build wires
// this to whatever the platform's real power-hint service is; tests
// use a fake, and Dial below wires the Unix-domain-socket transport.
type Peer interface {
	IsModeSupported(hint string) (bool, error)
	SetMode(hint string, enable bool) error
	Close() error
}

// Dialer opens a fresh Peer connection, used to reconnect after a
// failure.
type Dialer func() (Peer, error)

// Bridge tracks, per sensor, the highest severity the peer actually
// supports at or below each requested severity, and the most recently
// hinted severity, so it only ever sends a hint on change.
type Bridge struct {
	dial        Dialer
	sensorNames []string

	mu        sync.Mutex
	peer      Peer
	alive     bool
	supported map[string][severity.Count]severity.Severity
	lastHint  map[string]severity.Severity
}

// NewBridge dials the peer once and precomputes its supported-severity
// table for every sensor. A dial failure leaves the bridge dead;
// SetSeverity calls will attempt to reconnect on their own.
func NewBridge(dial Dialer, sensorNames []string) *Bridge {
	b := &Bridge{
		dial:        dial,
		sensorNames: sensorNames,
		supported:   make(map[string][severity.Count]severity.Severity, len(sensorNames)),
		lastHint:    make(map[string]severity.Severity, len(sensorNames)),
	}
	b.reconnect(sensorNames)
	return b
}

func encodeHint(sensorName string, sev severity.Severity) string {
	return fmt.Sprintf("THERMAL_%s_%s", sensorName, sev)
}

// reconnect dials a new peer and precomputes the supported table.
// Called with b.mu held, or during construction before any goroutine
// can observe b.
func (b *Bridge) reconnect(sensorNames []string) {
	peer, err := b.dial()
	if err != nil {
		logger.Warn("powerhint: dial failed: %v", err)
		b.alive = false
		return
	}
	if b.peer != nil {
		b.peer.Close()
	}
	b.peer = peer
	b.alive = true

	for _, name := range sensorNames {
		var table [severity.Count]severity.Severity
		lastSupported := severity.None
		for s := severity.Severity(0); s < severity.Count; s++ {
			ok, err := peer.IsModeSupported(encodeHint(name, s))
			if err != nil {
				logger.Warn("powerhint: is_mode_supported(%s, %s): %v", name, s, err)
				b.alive = false
				return
			}
			if ok {
				lastSupported = s
			}
			table[s] = lastSupported
		}
		b.supported[name] = table
	}
}

// SetSeverity notifies the peer of sensorName's new severity, clearing
// the previous hint first if it differs and is non-NONE. It is a
// no-op if the effective (peer-supported) severity hasn't changed.
func (b *Bridge) SetSeverity(sensorName string, newSeverity severity.Severity) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.alive {
		b.reconnect(b.sensorNames)
		if !b.alive {
			return
		}
	}

	table, ok := b.supported[sensorName]
	eff := newSeverity
	if ok {
		eff = table[newSeverity]
	}

	prev := b.lastHint[sensorName]
	if eff == prev {
		return
	}

	if prev != severity.None {
		if err := b.peer.SetMode(encodeHint(sensorName, prev), false); err != nil {
			logger.Warn("powerhint: clear hint %s/%s: %v", sensorName, prev, err)
			b.alive = false
			return
		}
	}
	if eff != severity.None {
		if err := b.peer.SetMode(encodeHint(sensorName, eff), true); err != nil {
			logger.Warn("powerhint: set hint %s/%s: %v", sensorName, eff, err)
			b.alive = false
			return
		}
	}
	b.lastHint[sensorName] = eff
}

// Close releases the underlying peer connection, if any.
func (b *Bridge) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.peer == nil {
		return nil
	}
	return b.peer.Close()
}
