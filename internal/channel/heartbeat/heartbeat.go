// Package heartbeat implements the PING/PONG keepalive sub-protocol.
package heartbeat

import (
	"github.com/danmuck/castctl/internal/channel"
	"github.com/danmuck/castctl/internal/protocol/cast"
)

const (
	Namespace = "urn:x-cast:com.google.cast.tp.heartbeat"

	TypePing = "PING"
	TypePong = "PONG"
)

type Request struct {
	Type string `json:"type"`
}

type Ping struct{}

func (Ping) ResponseType() string { return TypePing }

type Pong struct{}

func (Pong) ResponseType() string { return TypePong }

type Channel struct {
	channel.Base
}

var _ channel.Channel = (*Channel)(nil)

func New(sender string, transport channel.Sender) *Channel {
	return &Channel{Base: channel.NewBase(Namespace, sender, transport)}
}

func (c *Channel) Ping(destination string) error {
	return c.Send(destination, Request{Type: TypePing})
}

func (c *Channel) Pong(destination string) error {
	return c.Send(destination, Request{Type: TypePong})
}

func (c *Channel) Parse(msg cast.Message) (channel.Response, error) {
	typ, payload, err := channel.DecodeText(msg)
	if err != nil {
		return nil, err
	}
	switch typ {
	case TypePing:
		return Ping{}, nil
	case TypePong:
		return Pong{}, nil
	default:
		return channel.NotImplemented{Type: typ, Payload: payload}, nil
	}
}
