package cast

// Well-known endpoint ids.
const (
	PlatformSenderID   = "sender-0"
	PlatformReceiverID = "receiver-0"
)

// PayloadType tags the payload representation; values match the wire enum.
type PayloadType int32

const (
	PayloadString PayloadType = 0
	PayloadBinary PayloadType = 1
)

func (p PayloadType) String() string {
	switch p {
	case PayloadString:
		return "string"
	case PayloadBinary:
		return "binary"
	default:
		return "unknown"
	}
}

// Message is one routed envelope. Fields are fixed at construction.
type Message struct {
	namespace   string
	source      string
	destination string
	payloadType PayloadType
	text        string
	binary      []byte
}

// NewTextMessage builds an envelope carrying an already-encoded text payload.
func NewTextMessage(namespace, source, destination, text string) Message {
	return Message{
		namespace:   namespace,
		source:      source,
		destination: destination,
		payloadType: PayloadString,
		text:        text,
	}
}

// NewBinaryMessage builds an envelope carrying raw bytes.
func NewBinaryMessage(namespace, source, destination string, data []byte) Message {
	buf := make([]byte, len(data))
	copy(buf, data)
	return Message{
		namespace:   namespace,
		source:      source,
		destination: destination,
		payloadType: PayloadBinary,
		binary:      buf,
	}
}

func (m Message) Namespace() string        { return m.namespace }
func (m Message) Source() string           { return m.source }
func (m Message) Destination() string      { return m.destination }
func (m Message) PayloadType() PayloadType { return m.payloadType }

// Text returns the text payload; ok is false for binary envelopes.
func (m Message) Text() (string, bool) {
	if m.payloadType != PayloadString {
		return "", false
	}
	return m.text, true
}

// Binary returns a copy of the binary payload; ok is false for text envelopes.
func (m Message) Binary() ([]byte, bool) {
	if m.payloadType != PayloadBinary {
		return nil, false
	}
	buf := make([]byte, len(m.binary))
	copy(buf, m.binary)
	return buf, true
}
