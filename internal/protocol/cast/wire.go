package cast

import (
	"errors"
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

// ProtocolVersion is the only envelope version receivers speak (CASTV2_1_0).
const ProtocolVersion uint64 = 0

const (
	fieldProtocolVersion protowire.Number = 1
	fieldSourceID        protowire.Number = 2
	fieldDestinationID   protowire.Number = 3
	fieldNamespace       protowire.Number = 4
	fieldPayloadType     protowire.Number = 5
	fieldPayloadUTF8     protowire.Number = 6
	fieldPayloadBinary   protowire.Number = 7
)

var (
	ErrMalformed          = errors.New("cast: malformed envelope")
	ErrUnsupportedVersion = errors.New("cast: unsupported protocol version")
	ErrMissingField       = errors.New("cast: missing required field")
	ErrPayloadType        = errors.New("cast: unknown payload type")
)

// Marshal encodes m as a CastMessage protobuf.
func Marshal(m Message) ([]byte, error) {
	if m.payloadType != PayloadString && m.payloadType != PayloadBinary {
		return nil, fmt.Errorf("%w: %d", ErrPayloadType, m.payloadType)
	}
	b := make([]byte, 0, 32+len(m.namespace)+len(m.source)+len(m.destination)+len(m.text)+len(m.binary))
	b = protowire.AppendTag(b, fieldProtocolVersion, protowire.VarintType)
	b = protowire.AppendVarint(b, ProtocolVersion)
	b = protowire.AppendTag(b, fieldSourceID, protowire.BytesType)
	b = protowire.AppendString(b, m.source)
	b = protowire.AppendTag(b, fieldDestinationID, protowire.BytesType)
	b = protowire.AppendString(b, m.destination)
	b = protowire.AppendTag(b, fieldNamespace, protowire.BytesType)
	b = protowire.AppendString(b, m.namespace)
	b = protowire.AppendTag(b, fieldPayloadType, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(m.payloadType))
	switch m.payloadType {
	case PayloadString:
		b = protowire.AppendTag(b, fieldPayloadUTF8, protowire.BytesType)
		b = protowire.AppendString(b, m.text)
	case PayloadBinary:
		b = protowire.AppendTag(b, fieldPayloadBinary, protowire.BytesType)
		b = protowire.AppendBytes(b, m.binary)
	}
	return b, nil
}

// Unmarshal decodes a CastMessage protobuf. Unknown fields are skipped.
func Unmarshal(b []byte) (Message, error) {
	var (
		m                                         Message
		seenSource, seenDest, seenNS, seenPayload bool
	)
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return Message{}, fmt.Errorf("%w: %v", ErrMalformed, protowire.ParseError(n))
		}
		b = b[n:]

		switch {
		case num == fieldProtocolVersion && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return Message{}, fmt.Errorf("%w: %v", ErrMalformed, protowire.ParseError(n))
			}
			if v != ProtocolVersion {
				return Message{}, fmt.Errorf("%w: %d", ErrUnsupportedVersion, v)
			}
			b = b[n:]
		case num == fieldPayloadType && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return Message{}, fmt.Errorf("%w: %v", ErrMalformed, protowire.ParseError(n))
			}
			pt := PayloadType(v)
			if pt != PayloadString && pt != PayloadBinary {
				return Message{}, fmt.Errorf("%w: %d", ErrPayloadType, v)
			}
			m.payloadType = pt
			seenPayload = true
			b = b[n:]
		case typ == protowire.BytesType && num >= fieldSourceID && num <= fieldPayloadBinary:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return Message{}, fmt.Errorf("%w: %v", ErrMalformed, protowire.ParseError(n))
			}
			switch num {
			case fieldSourceID:
				m.source, seenSource = string(v), true
			case fieldDestinationID:
				m.destination, seenDest = string(v), true
			case fieldNamespace:
				m.namespace, seenNS = string(v), true
			case fieldPayloadUTF8:
				m.text = string(v)
			case fieldPayloadBinary:
				m.binary = append([]byte(nil), v...)
			default:
				// payload_type with the wrong wire type; skip like any unknown field.
			}
			b = b[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return Message{}, fmt.Errorf("%w: %v", ErrMalformed, protowire.ParseError(n))
			}
			b = b[n:]
		}
	}

	switch {
	case !seenSource:
		return Message{}, fmt.Errorf("%w: source_id", ErrMissingField)
	case !seenDest:
		return Message{}, fmt.Errorf("%w: destination_id", ErrMissingField)
	case !seenNS:
		return Message{}, fmt.Errorf("%w: namespace", ErrMissingField)
	case !seenPayload:
		return Message{}, fmt.Errorf("%w: payload_type", ErrMissingField)
	}
	if m.payloadType == PayloadString {
		m.binary = nil
	} else {
		m.text = ""
		if m.binary == nil {
			m.binary = []byte{}
		}
	}
	return m, nil
}
