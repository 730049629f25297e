// Package ipc is the control channel between hark-ctl and the daemon:
// one-shot JSON messages over a unix socket.
package ipc

import (
	"encoding/json"
	"fmt"
	"net"
	"os"
)

// SocketPath is where the daemon listens for control messages.
const SocketPath = "/tmp/hark.sock"

// Command names understood by the daemon.
const (
	CmdTrigger = "trigger" // run one listen/route iteration now
	CmdStop    = "stop"    // shut the daemon down
	CmdSay     = "say"     // speak the message text
)

// ControlMessage is one control request. Text carries the payload for
// commands that take one (say).
type ControlMessage struct {
	Cmd  string `json:"cmd"`
	Text string `json:"text,omitempty"`
}

// StartServer listens on [SocketPath] and invokes handler for every decoded
// message. A stale socket from a previous run is removed first.
func StartServer(handler func(ControlMessage)) error {
	os.Remove(SocketPath)

	ln, err := net.Listen("unix", SocketPath)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}

	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				continue
			}
			go handleConn(conn, handler)
		}
	}()

	return nil
}

func handleConn(conn net.Conn, handler func(ControlMessage)) {
	defer conn.Close()

	var msg ControlMessage
	if err := json.NewDecoder(conn).Decode(&msg); err != nil {
		return
	}
	handler(msg)
}

// Send delivers one control message to a running daemon.
func Send(msg ControlMessage) error {
	conn, err := net.Dial("unix", SocketPath)
	if err != nil {
		return err
	}
	defer conn.Close()

	return json.NewEncoder(conn).Encode(msg)
}
