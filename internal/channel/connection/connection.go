// Package connection implements the connection-lifecycle sub-protocol.
// A CONNECT must reach a destination before any other namespace is used
// with it; CLOSE tears the virtual connection down.
package connection

import (
	"strings"

	"github.com/danmuck/castctl/internal/channel"
	"github.com/danmuck/castctl/internal/protocol/cast"
)

const (
	Namespace        = "urn:x-cast:com.google.cast.tp.connection"
	DefaultUserAgent = "RustCast"

	TypeConnect = "CONNECT"
	TypeClose   = "CLOSE"
)

// Request is the outgoing payload for both request kinds.
type Request struct {
	Type      string `json:"type"`
	UserAgent string `json:"user_agent"`
}

// Connect is a CONNECT received from the remote endpoint.
type Connect struct{}

func (Connect) ResponseType() string { return TypeConnect }

// Close is a CLOSE received from the remote endpoint.
type Close struct{}

func (Close) ResponseType() string { return TypeClose }

type Option func(*Channel)

// WithUserAgent overrides the user agent sent with every request.
func WithUserAgent(ua string) Option {
	return func(c *Channel) {
		if ua = strings.TrimSpace(ua); ua != "" {
			c.userAgent = ua
		}
	}
}

type Channel struct {
	channel.Base
	userAgent string
}

var _ channel.Channel = (*Channel)(nil)

func New(sender string, transport channel.Sender, opts ...Option) *Channel {
	c := &Channel{
		Base:      channel.NewBase(Namespace, sender, transport),
		userAgent: DefaultUserAgent,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Channel) UserAgent() string { return c.userAgent }

func (c *Channel) Connect(destination string) error {
	return c.Send(destination, Request{Type: TypeConnect, UserAgent: c.userAgent})
}

func (c *Channel) Disconnect(destination string) error {
	return c.Send(destination, Request{Type: TypeClose, UserAgent: c.userAgent})
}

func (c *Channel) Parse(msg cast.Message) (channel.Response, error) {
	typ, payload, err := channel.DecodeText(msg)
	if err != nil {
		return nil, err
	}
	switch typ {
	case TypeConnect:
		return Connect{}, nil
	case TypeClose:
		return Close{}, nil
	default:
		return channel.NotImplemented{Type: typ, Payload: payload}, nil
	}
}
