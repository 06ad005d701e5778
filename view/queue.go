// SPDX-License-Identifier: Unlicense OR MIT

package view

import (
	"sync"

	"gioui.org/glsurface/egl"
)

type commandKind uint8

const (
	cmdSurfaceCreated commandKind = iota
	cmdSurfaceChanged
	cmdSurfaceDestroyed
	cmdPause
	cmdResume
	cmdQueueEvent
	cmdRequestRender
	cmdSetRenderMode
	cmdRedraw
	cmdShutdown
)

var commandNames = [...]string{
	cmdSurfaceCreated:   "surface-created",
	cmdSurfaceChanged:   "surface-changed",
	cmdSurfaceDestroyed: "surface-destroyed",
	cmdPause:            "pause",
	cmdResume:           "resume",
	cmdQueueEvent:       "queue-event",
	cmdRequestRender:    "request-render",
	cmdSetRenderMode:    "set-render-mode",
	cmdRedraw:           "redraw",
	cmdShutdown:         "shutdown",
}

func (k commandKind) String() string {
	return commandNames[k]
}

// command is a request to the render thread.
type command struct {
	kind          commandKind
	win           egl.NativeWindowType
	width, height int
	mode          RenderMode
	// fn is the callback of cmdQueueEvent and the completion callback
	// of cmdRedraw.
	fn func()
	// done, if not nil, is closed once the command is processed.
	done chan struct{}
}

// complete acknowledges a command that will never be processed.
func (c command) complete() {
	if c.kind == cmdRedraw && c.fn != nil {
		c.fn()
	}
	if c.done != nil {
		close(c.done)
	}
}

// queue is the FIFO between the caller threads and the render
// thread.
type queue struct {
	// wakeup is signalled after every push.
	wakeup chan struct{}

	mu     sync.Mutex
	cmds   []command
	closed bool
}

func newQueue() *queue {
	return &queue{wakeup: make(chan struct{}, 1)}
}

// push appends c and wakes the render thread. A request-render
// command directly following another is dropped. push reports false
// if the queue is closed.
func (q *queue) push(c command) bool {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return false
	}
	if n := len(q.cmds); c.kind == cmdRequestRender && n > 0 && q.cmds[n-1].kind == cmdRequestRender {
		q.mu.Unlock()
		return true
	}
	q.cmds = append(q.cmds, c)
	q.mu.Unlock()
	select {
	case q.wakeup <- struct{}{}:
	default:
	}
	return true
}

// pop removes the oldest command.
func (q *queue) pop() (command, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.cmds) == 0 {
		return command{}, false
	}
	c := q.cmds[0]
	q.cmds[0] = command{}
	q.cmds = q.cmds[1:]
	return c, true
}

// close rejects further pushes and returns the commands still queued.
func (q *queue) close() []command {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.closed = true
	rest := q.cmds
	q.cmds = nil
	return rest
}

func (q *queue) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.cmds)
}
