package cometd

import (
	"encoding/json"
	"errors"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Maximum message size allowed from peer
	maxMessageSize = 512 * 1024 // 512 KB
)

// Transport owns the WebSocket connection split into a send half and a
// receive half, each guarded by its own mutex so that one reader and one
// writer can operate concurrently. Packet ids are allocated here, from a
// per-transport monotonic counter starting at 0.
//
// Once either half has been taken for shutdown, every subsequent operation
// fails with ErrClientExited.
type Transport struct {
	conn *websocket.Conn

	// sendMu serializes writes; recvMu serializes reads. Shutdown takes
	// both halves by winning the closed flag, which every operation checks
	// under its own mutex.
	sendMu sync.Mutex
	recvMu sync.Mutex
	closed atomic.Bool

	packetID atomic.Uint64
}

// NewTransport wraps an established WebSocket connection.
func NewTransport(conn *websocket.Conn) *Transport {
	conn.SetReadLimit(maxMessageSize)
	return &Transport{conn: conn}
}

// SendPackets assigns a fresh id to each packet in order, serializes the
// batch as a single JSON array and writes it as one text frame.
func (t *Transport) SendPackets(packets []*Packet) error {
	if t.closed.Load() {
		return ErrClientExited
	}

	// Ids are advisory and need not be gap-free: a send that fails after
	// allocation simply burns its ids.
	for _, p := range packets {
		p.ID = strconv.FormatUint(t.nextPacketID(), 10)
	}

	data, err := json.Marshal(packets)
	if err != nil {
		return err
	}

	t.sendMu.Lock()
	defer t.sendMu.Unlock()

	if t.closed.Load() {
		return ErrClientExited
	}

	t.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return t.conn.WriteMessage(websocket.TextMessage, data)
}

// NextPacketBatch blocks until one text frame arrives and parses it as a
// JSON array of packets. Non-text frames are skipped. A close frame tears
// the transport down and yields ErrClientExited.
func (t *Transport) NextPacketBatch() ([]*Packet, error) {
	t.recvMu.Lock()
	defer t.recvMu.Unlock()

	for {
		if t.closed.Load() {
			return nil, ErrClientExited
		}

		msgType, data, err := t.conn.ReadMessage()
		if err != nil {
			var closeErr *websocket.CloseError
			if errors.As(err, &closeErr) {
				t.handleServerShutdown()
				return nil, ErrClientExited
			}
			// A read unblocked by a local shutdown is a normal exit.
			if t.closed.Load() {
				return nil, ErrClientExited
			}
			return nil, err
		}

		if msgType != websocket.TextMessage {
			continue
		}

		var packets []*Packet
		if err := json.Unmarshal(data, &packets); err != nil {
			return nil, &ProtocolError{Err: err}
		}
		return packets, nil
	}
}

// GracefulShutdown takes both halves of the connection, writes a
// client-initiated close frame and closes the socket. Safe to call from
// handler goroutines while the session loop is blocked reading.
func (t *Transport) GracefulShutdown() error {
	if !t.closed.CompareAndSwap(false, true) {
		return ErrClientExited
	}

	t.sendMu.Lock()
	t.conn.SetWriteDeadline(time.Now().Add(writeWait))
	err := t.conn.WriteMessage(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
	)
	t.sendMu.Unlock()

	// Closing the conn unblocks any read in flight.
	if closeErr := t.conn.Close(); err == nil {
		err = closeErr
	}
	return err
}

// handleServerShutdown tears the connection down after the server sent a
// close frame.
func (t *Transport) handleServerShutdown() {
	if !t.closed.CompareAndSwap(false, true) {
		return
	}
	t.conn.Close()
}

func (t *Transport) nextPacketID() uint64 {
	return t.packetID.Add(1) - 1
}
