package powerhint

import (
	"errors"
	"testing"

	"github.com/lakeside-soc/thermald/internal/severity"
)

type fakePeer struct {
	supportedHints map[string]bool
	setModeCalls   []string
	failIsSupported bool
	failSetMode     bool
	closed          bool
}

func newFakePeer(supported ...string) *fakePeer {
	m := make(map[string]bool, len(supported))
	for _, h := range supported {
		m[h] = true
	}
	return &fakePeer{supportedHints: m}
}

func (p *fakePeer) IsModeSupported(hint string) (bool, error) {
	if p.failIsSupported {
		return false, errors.New("is_mode_supported failed")
	}
	return p.supportedHints[hint], nil
}

func (p *fakePeer) SetMode(hint string, enable bool) error {
	if p.failSetMode {
		return errors.New("set_mode failed")
	}
	if enable {
		p.setModeCalls = append(p.setModeCalls, "+"+hint)
	} else {
		p.setModeCalls = append(p.setModeCalls, "-"+hint)
	}
	return nil
}

func (p *fakePeer) Close() error {
	p.closed = true
	return nil
}

func TestBridge_SetsHintOnFirstTransitionToSupportedSeverity(t *testing.T) {
	peer := newFakePeer(encodeHint("skin", severity.Moderate))
	b := NewBridge(func() (Peer, error) { return peer, nil }, []string{"skin"})

	b.SetSeverity("skin", severity.Moderate)

	if len(peer.setModeCalls) != 1 || peer.setModeCalls[0] != "+"+encodeHint("skin", severity.Moderate) {
		t.Errorf("got calls %v, want one set for MODERATE", peer.setModeCalls)
	}
}

func TestBridge_ClearsOldHintBeforeSettingNew(t *testing.T) {
	peer := newFakePeer(encodeHint("skin", severity.Moderate), encodeHint("skin", severity.Severe))
	b := NewBridge(func() (Peer, error) { return peer, nil }, []string{"skin"})

	b.SetSeverity("skin", severity.Moderate)
	b.SetSeverity("skin", severity.Severe)

	want := []string{"+" + encodeHint("skin", severity.Moderate), "-" + encodeHint("skin", severity.Moderate), "+" + encodeHint("skin", severity.Severe)}
	if len(peer.setModeCalls) != len(want) {
		t.Fatalf("got %v, want %v", peer.setModeCalls, want)
	}
	for i := range want {
		if peer.setModeCalls[i] != want[i] {
			t.Errorf("call %d: got %q, want %q", i, peer.setModeCalls[i], want[i])
		}
	}
}

func TestBridge_UnsupportedSeverityFallsBackToHighestSupportedBelowIt(t *testing.T) {
	// only MODERATE is supported; SEVERE should fall back to MODERATE's hint.
	peer := newFakePeer(encodeHint("skin", severity.Moderate))
	b := NewBridge(func() (Peer, error) { return peer, nil }, []string{"skin"})

	b.SetSeverity("skin", severity.Severe)

	if len(peer.setModeCalls) != 1 || peer.setModeCalls[0] != "+"+encodeHint("skin", severity.Moderate) {
		t.Errorf("got %v, want fallback hint for MODERATE", peer.setModeCalls)
	}
}

func TestBridge_NoOpWhenEffectiveSeverityUnchanged(t *testing.T) {
	peer := newFakePeer(encodeHint("skin", severity.Moderate))
	b := NewBridge(func() (Peer, error) { return peer, nil }, []string{"skin"})

	b.SetSeverity("skin", severity.Moderate)
	b.SetSeverity("skin", severity.Moderate)

	if len(peer.setModeCalls) != 1 {
		t.Errorf("got %d calls, want 1 (second call is a no-op)", len(peer.setModeCalls))
	}
}

func TestBridge_SetModeFailureMarksPeerDeadAndReconnectsNextCall(t *testing.T) {
	peer := newFakePeer(encodeHint("skin", severity.Moderate))
	dialCount := 0
	b := NewBridge(func() (Peer, error) {
		dialCount++
		return peer, nil
	}, []string{"skin"})
	if dialCount != 1 {
		t.Fatalf("expected one dial at construction, got %d", dialCount)
	}

	peer.failSetMode = true
	b.SetSeverity("skin", severity.Moderate)
	if len(peer.setModeCalls) != 0 {
		t.Fatalf("expected failed set_mode to record no call, got %v", peer.setModeCalls)
	}

	peer.failSetMode = false
	b.SetSeverity("skin", severity.Severe) // triggers reconnect since peer marked dead
	if dialCount != 2 {
		t.Errorf("expected reconnect dial, got dialCount=%d", dialCount)
	}
}

func TestBridge_DialFailureLeavesBridgeDeadWithoutPanicking(t *testing.T) {
	b := NewBridge(func() (Peer, error) { return nil, errors.New("no peer") }, []string{"skin"})
	// must not panic even though no peer was ever established.
	b.SetSeverity("skin", severity.Moderate)
}
