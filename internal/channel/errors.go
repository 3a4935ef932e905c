package channel

import "errors"

var (
	ErrEncoding           = errors.New("channel: encode request")
	ErrDecoding           = errors.New("channel: decode payload")
	ErrPayloadKind        = errors.New("channel: binary payload not supported")
	ErrTransport          = errors.New("channel: transport failure")
	ErrUnroutable         = errors.New("channel: no channel for namespace")
	ErrDuplicateNamespace = errors.New("channel: namespace already registered")
	ErrNilChannel         = errors.New("channel: channel is nil")
)

// ErrorKind labels err by taxonomy class for logs and metrics.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrUnroutable):
		return "unroutable"
	case errors.Is(err, ErrPayloadKind):
		return "payload_kind"
	case errors.Is(err, ErrDecoding):
		return "decoding"
	case errors.Is(err, ErrEncoding):
		return "encoding"
	case errors.Is(err, ErrTransport):
		return "transport"
	default:
		return "other"
	}
}
