package powerhint

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"net"
)

// request/response is the tiny length-prefixed JSON protocol the
// power-hint peer speaks: a uint32 big-endian byte count followed by
// the JSON payload.
type request struct {
	Op     string `json:"op"`
	Hint   string `json:"hint,omitempty"`
	Enable bool   `json:"enable,omitempty"`
}

type response struct {
	Supported bool   `json:"supported,omitempty"`
	OK        bool   `json:"ok,omitempty"`
	Error     string `json:"error,omitempty"`
}

// socketPeer implements Peer over a Unix-domain stream socket.
type socketPeer struct {
	conn net.Conn
}

// Dial connects to the power-hint peer's Unix-domain socket at path.
func Dial(path string) (Peer, error) {
	conn, err := net.Dial("unix", path)
	if err != nil {
		return nil, err
	}
	return &socketPeer{conn: conn}, nil
}

func (p *socketPeer) roundTrip(req request) (response, error) {
	var resp response

	payload, err := json.Marshal(req)
	if err != nil {
		return resp, err
	}
	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(len(payload)))
	if _, err := p.conn.Write(lenBuf[:]); err != nil {
		return resp, err
	}
	if _, err := p.conn.Write(payload); err != nil {
		return resp, err
	}

	if _, err := io.ReadFull(p.conn, lenBuf[:]); err != nil {
		return resp, err
	}
	n := binary.BigEndian.Uint32(lenBuf[:])
	buf := make([]byte, n)
	if _, err := io.ReadFull(p.conn, buf); err != nil {
		return resp, err
	}
	if err := json.Unmarshal(buf, &resp); err != nil {
		return resp, err
	}
	if resp.Error != "" {
		return resp, fmt.Errorf("powerhint: peer error: %s", resp.Error)
	}
	return resp, nil
}

func (p *socketPeer) IsModeSupported(hint string) (bool, error) {
	resp, err := p.roundTrip(request{Op: "is_mode_supported", Hint: hint})
	if err != nil {
		return false, err
	}
	return resp.Supported, nil
}

func (p *socketPeer) SetMode(hint string, enable bool) error {
	_, err := p.roundTrip(request{Op: "set_mode", Hint: hint, Enable: enable})
	return err
}

func (p *socketPeer) Close() error {
	return p.conn.Close()
}
