// Package ipc is the local control surface: a unix socket speaking
// one-shot JSON messages, used by axylo-ctl.
package ipc

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"os"
)

const SocketPath = "/tmp/axylo.sock"

// ControlMessage is one command from the ctl binary. Arg is free-form
// and command-specific: text for dispatch, on/off for toggles.
type ControlMessage struct {
	Cmd string `json:"cmd"`
	Arg string `json:"arg,omitempty"`
}

// Reply reports how the daemon handled a command.
type Reply struct {
	Ok      bool   `json:"ok"`
	Message string `json:"message,omitempty"`
}

// Handler processes one command and returns the reply to send back.
type Handler func(msg ControlMessage) Reply

// Serve listens on the control socket until ctx is cancelled. The stale
// socket file from a previous run is removed first.
func Serve(ctx context.Context, handler Handler) error {
	os.Remove(SocketPath)

	ln, err := net.Listen("unix", SocketPath)
	if err != nil {
		return fmt.Errorf("ipc: listen: %w", err)
	}

	go func() {
		<-ctx.Done()
		ln.Close()
		os.Remove(SocketPath)
	}()

	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				slog.Warn("ipc: accept failed", "err", err)
				continue
			}
			go handleConn(conn, handler)
		}
	}()

	slog.Info("ipc: control socket ready", "path", SocketPath)
	return nil
}

func handleConn(conn net.Conn, handler Handler) {
	defer conn.Close()

	var msg ControlMessage
	if err := json.NewDecoder(conn).Decode(&msg); err != nil {
		slog.Warn("ipc: bad message", "err", err)
		return
	}

	reply := handler(msg)
	if err := json.NewEncoder(conn).Encode(reply); err != nil {
		slog.Warn("ipc: reply failed", "err", err)
	}
}

// Send delivers one command to a running daemon and returns its reply.
func Send(cmd, arg string) (Reply, error) {
	conn, err := net.Dial("unix", SocketPath)
	if err != nil {
		return Reply{}, fmt.Errorf("ipc: is the daemon running? %w", err)
	}
	defer conn.Close()

	if err := json.NewEncoder(conn).Encode(ControlMessage{Cmd: cmd, Arg: arg}); err != nil {
		return Reply{}, err
	}

	var reply Reply
	if err := json.NewDecoder(conn).Decode(&reply); err != nil {
		return Reply{}, err
	}
	return reply, nil
}
