package device

import "sync"

// BufferedLogReader collects device lifecycle lines for attached tooling.
// Writes never block: when no one is draining the stream, the oldest
// unconsumed lines are simply dropped.
type BufferedLogReader struct {
	name string

	mu     sync.Mutex
	lines  chan string
	closed bool
}

// NewBufferedLogReader creates a reader buffering up to 64 lines.
func NewBufferedLogReader(name string) *BufferedLogReader {
	return &BufferedLogReader{
		name:  name,
		lines: make(chan string, 64),
	}
}

func (r *BufferedLogReader) Name() string { return r.name }

// Lines returns the stream of log lines.
func (r *BufferedLogReader) Lines() <-chan string { return r.lines }

// Append records a line, dropping the oldest buffered one when full.
func (r *BufferedLogReader) Append(line string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	for {
		select {
		case r.lines <- line:
			return
		default:
			select {
			case <-r.lines:
			default:
			}
		}
	}
}

// Close ends the stream. Safe to call more than once.
func (r *BufferedLogReader) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	r.closed = true
	close(r.lines)
}
