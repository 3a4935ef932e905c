package castfake

import (
	"sync"

	"github.com/danmuck/castctl/internal/protocol/cast"
)

// Recorder is an in-memory channel.Sender that keeps every envelope.
type Recorder struct {
	mu   sync.Mutex
	sent []cast.Message
	Err  error
}

func (r *Recorder) Send(msg cast.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	r.sent = append(r.sent, msg)
	return nil
}

func (r *Recorder) Sent() []cast.Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]cast.Message, len(r.sent))
	copy(out, r.sent)
	return out
}
