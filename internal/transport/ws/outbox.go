package ws

import "sync"

// Outbox buffers encoded frames for a connection's writer.
// Send never blocks; when the buffer is full the oldest frame is dropped.
type Outbox struct {
	frames    chan []byte
	done      chan struct{}
	closeOnce sync.Once
}

// NewOutbox creates an outbox holding up to size frames.
func NewOutbox(size int) *Outbox {
	if size < 1 {
		size = 64
	}
	return &Outbox{
		frames: make(chan []byte, size),
		done:   make(chan struct{}),
	}
}

// Send queues a frame.
func (o *Outbox) Send(frame []byte) {
	select {
	case <-o.done:
		return
	default:
	}

	select {
	case o.frames <- frame:
	default:
		// Full: drop the oldest and retry once.
		select {
		case <-o.frames:
		default:
		}
		select {
		case o.frames <- frame:
		default:
		}
	}
}

// Frames is read by the connection writer.
func (o *Outbox) Frames() <-chan []byte { return o.frames }

// Done is closed by Close.
func (o *Outbox) Done() <-chan struct{} { return o.done }

// Close stops accepting frames. Safe to call multiple times.
func (o *Outbox) Close() {
	o.closeOnce.Do(func() { close(o.done) })
}
