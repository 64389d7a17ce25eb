// Package ipc carries daemon control commands over a unix socket.
package ipc

import "context"

// Request is one client command. Commands are status, stop, cancel, and
// shutdown.
type Request struct {
	Command string `json:"command"`
}

// Response reports the daemon state after handling a command.
type Response struct {
	OK      bool   `json:"ok"`
	State   string `json:"state,omitempty"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Handler processes one command request.
type Handler interface {
	Handle(context.Context, Request) Response
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc func(context.Context, Request) Response

func (f HandlerFunc) Handle(ctx context.Context, req Request) Response {
	return f(ctx, req)
}
