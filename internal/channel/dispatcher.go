package channel

import (
	"fmt"

	"github.com/danmuck/castctl/internal/observability"
	"github.com/danmuck/castctl/internal/protocol/cast"
	"github.com/rs/zerolog/log"
	"github.com/tidwall/gjson"
)

// Dispatcher routes inbound envelopes to registered channels in
// registration order. It is not safe for concurrent Register calls.
type Dispatcher struct {
	channels []Channel
	index    map[string]struct{}
}

func NewDispatcher(channels ...Channel) (*Dispatcher, error) {
	d := &Dispatcher{index: make(map[string]struct{})}
	for _, ch := range channels {
		if err := d.Register(ch); err != nil {
			return nil, err
		}
	}
	return d, nil
}

// Register appends ch. A namespace may be claimed once.
func (d *Dispatcher) Register(ch Channel) error {
	if ch == nil {
		return ErrNilChannel
	}
	ns := ch.Namespace()
	if _, ok := d.index[ns]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicateNamespace, ns)
	}
	d.index[ns] = struct{}{}
	d.channels = append(d.channels, ch)
	return nil
}

// Namespaces lists registered namespaces in registration order.
func (d *Dispatcher) Namespaces() []string {
	out := make([]string, 0, len(d.channels))
	for _, ch := range d.channels {
		out = append(out, ch.Namespace())
	}
	return out
}

// Dispatch parses msg with the first channel that claims it.
func (d *Dispatcher) Dispatch(msg cast.Message) (Channel, Response, error) {
	observability.RecordReceived(msg.Namespace())
	for _, ch := range d.channels {
		if !ch.CanHandle(msg) {
			continue
		}
		resp, err := ch.Parse(msg)
		if err != nil {
			observability.RecordDispatchError(ErrorKind(err))
			return ch, nil, err
		}
		return ch, resp, nil
	}

	observability.RecordDispatchError(ErrorKind(ErrUnroutable))
	evt := log.Debug().
		Str("namespace", msg.Namespace()).
		Str("source", msg.Source()).
		Str("destination", msg.Destination())
	if text, ok := msg.Text(); ok {
		evt = evt.Str("type", gjson.Get(text, "type").String())
	}
	evt.Msg("channel: unroutable envelope")
	return nil, nil, fmt.Errorf("%w: %q", ErrUnroutable, msg.Namespace())
}
