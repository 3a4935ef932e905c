package channel

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/danmuck/castctl/internal/protocol/cast"
)

// Sender is the send half of the message transport. Implementations
// serialize concurrent calls.
type Sender interface {
	Send(msg cast.Message) error
}

// Response is one classified inbound message.
type Response interface {
	ResponseType() string
}

// NotImplemented carries an inbound message whose type is not recognized
// by the channel. Payload is the full decoded JSON value.
type NotImplemented struct {
	Type    string
	Payload any
}

func (n NotImplemented) ResponseType() string { return n.Type }

// Channel is a sub-protocol bound to exactly one namespace.
type Channel interface {
	Namespace() string
	CanHandle(msg cast.Message) bool
	Parse(msg cast.Message) (Response, error)
}

// Base binds a namespace and local sender id to a shared transport.
// Sub-protocol channels embed it.
type Base struct {
	namespace string
	sender    string
	transport Sender
}

func NewBase(namespace, sender string, transport Sender) Base {
	return Base{namespace: namespace, sender: sender, transport: transport}
}

func (b Base) Namespace() string { return b.namespace }

// SenderID is the source id stamped on outgoing envelopes.
func (b Base) SenderID() string { return b.sender }

// CanHandle reports whether msg belongs to this namespace (exact match).
func (b Base) CanHandle(msg cast.Message) bool {
	return msg.Namespace() == b.namespace
}

// Send encodes request as JSON and hands one envelope to the transport.
// Transport errors are returned unchanged.
func (b Base) Send(destination string, request any) error {
	payload, err := json.Marshal(request)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrEncoding, err)
	}
	return b.transport.Send(cast.NewTextMessage(b.namespace, b.sender, destination, string(payload)))
}

// DecodeText decodes a text payload and extracts its top-level string
// "type" field. A missing or non-string type yields "".
func DecodeText(msg cast.Message) (string, any, error) {
	text, ok := msg.Text()
	if !ok {
		return "", nil, fmt.Errorf("%w: namespace=%q", ErrPayloadKind, msg.Namespace())
	}

	dec := json.NewDecoder(strings.NewReader(text))
	dec.UseNumber()
	var payload any
	if err := dec.Decode(&payload); err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrDecoding, err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return "", nil, fmt.Errorf("%w: trailing data after payload", ErrDecoding)
	}

	var typ string
	if obj, ok := payload.(map[string]any); ok {
		typ, _ = obj["type"].(string)
	}
	return typ, payload, nil
}
