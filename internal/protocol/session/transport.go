package session

import (
	"bufio"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"os"
	"sync"
	"time"

	"github.com/danmuck/castctl/internal/channel"
	"github.com/danmuck/castctl/internal/observability"
	"github.com/danmuck/castctl/internal/protocol/cast"
	"github.com/danmuck/castctl/internal/protocol/frame"
	"github.com/rs/zerolog/log"
)

var ErrAddressRequired = errors.New("session: receiver address required")

// Handler observes each successfully classified inbound envelope.
type Handler func(ch channel.Channel, msg cast.Message, resp channel.Response)

// Transport carries envelopes over one receiver connection. Send is safe
// for concurrent use; Receive and Serve expect a single reader.
type Transport struct {
	conn   net.Conn
	reader *bufio.Reader
	cfg    Config
	limits frame.Limits

	writeMu sync.Mutex

	readMu      sync.Mutex
	interrupted bool
}

var _ channel.Sender = (*Transport)(nil)

// Dial connects to a receiver and completes the TLS handshake.
func Dial(ctx context.Context, address string, cfg Config) (*Transport, error) {
	if address == "" {
		return nil, ErrAddressRequired
	}
	cfg = cfg.WithDefaults()
	if err := cfg.ValidateClientTransport(); err != nil {
		return nil, err
	}
	tlsCfg, err := clientTLSConfig(cfg, address)
	if err != nil {
		return nil, err
	}

	dialer := net.Dialer{Timeout: cfg.ConnectTimeout}
	rawConn, err := dialer.DialContext(ctx, "tcp", address)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", channel.ErrTransport, err)
	}
	conn := tls.Client(rawConn, tlsCfg)
	handshakeCtx, cancel := context.WithTimeout(ctx, cfg.HandshakeTimeout)
	defer cancel()
	if err := conn.HandshakeContext(handshakeCtx); err != nil {
		_ = rawConn.Close()
		return nil, fmt.Errorf("%w: %w", channel.ErrTransport, err)
	}

	log.Info().
		Str("addr", address).
		Str("security_mode", string(cfg.SecurityMode)).
		Msg("session: connected")
	return NewTransport(conn, cfg), nil
}

// NewTransport wraps an established connection.
func NewTransport(conn net.Conn, cfg Config) *Transport {
	cfg = cfg.WithDefaults()
	return &Transport{
		conn:   conn,
		reader: bufio.NewReader(conn),
		cfg:    cfg,
		limits: frame.Limits{MaxPayloadBytes: cfg.MaxMessageBytes},
	}
}

func (t *Transport) Config() Config { return t.cfg }

// Send writes one envelope. I/O failures wrap channel.ErrTransport.
func (t *Transport) Send(msg cast.Message) error {
	body, err := cast.Marshal(msg)
	if err != nil {
		return fmt.Errorf("%w: %w", channel.ErrEncoding, err)
	}

	t.writeMu.Lock()
	defer t.writeMu.Unlock()
	if err := t.conn.SetWriteDeadline(time.Now().Add(t.cfg.WriteTimeout)); err != nil {
		return fmt.Errorf("%w: %w", channel.ErrTransport, err)
	}
	if err := frame.WriteFrame(t.conn, body, t.limits); err != nil {
		return fmt.Errorf("%w: %w", channel.ErrTransport, err)
	}

	observability.RecordSent(msg.Namespace())
	log.Trace().
		Str("namespace", msg.Namespace()).
		Str("destination", msg.Destination()).
		Msg("session: sent")
	return nil
}

// Receive blocks for the next envelope or the read timeout.
func (t *Transport) Receive() (cast.Message, error) {
	if err := t.armReadDeadline(); err != nil {
		return cast.Message{}, fmt.Errorf("%w: %w", channel.ErrTransport, err)
	}
	body, err := frame.ReadFrame(t.reader, t.limits)
	if err != nil {
		return cast.Message{}, fmt.Errorf("%w: %w", channel.ErrTransport, err)
	}
	msg, err := cast.Unmarshal(body)
	if err != nil {
		return cast.Message{}, fmt.Errorf("%w: %w", channel.ErrDecoding, err)
	}
	return msg, nil
}

// Serve reads envelopes in arrival order and dispatches them one at a time.
// Undecodable and unroutable envelopes are logged and skipped; transport
// failures end the loop. Cancelling ctx interrupts a blocked read.
func (t *Transport) Serve(ctx context.Context, d *channel.Dispatcher, handle Handler) error {
	t.readMu.Lock()
	t.interrupted = false
	t.readMu.Unlock()
	stop := context.AfterFunc(ctx, t.interruptReads)
	defer stop()

	for {
		msg, err := t.Receive()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if errors.Is(err, channel.ErrDecoding) {
				observability.RecordDispatchError(channel.ErrorKind(err))
				log.Warn().Err(err).Msg("session: dropped undecodable envelope")
				continue
			}
			return err
		}

		ch, resp, err := d.Dispatch(msg)
		if err != nil {
			if !errors.Is(err, channel.ErrUnroutable) {
				log.Warn().
					Err(err).
					Str("namespace", msg.Namespace()).
					Str("source", msg.Source()).
					Msg("session: dropped envelope")
			}
			continue
		}
		if handle != nil {
			handle(ch, msg, resp)
		}
	}
}

func (t *Transport) Close() error {
	return t.conn.Close()
}

func (t *Transport) armReadDeadline() error {
	t.readMu.Lock()
	defer t.readMu.Unlock()
	if t.interrupted {
		return os.ErrDeadlineExceeded
	}
	return t.conn.SetReadDeadline(time.Now().Add(t.cfg.ReadTimeout))
}

func (t *Transport) interruptReads() {
	t.readMu.Lock()
	defer t.readMu.Unlock()
	t.interrupted = true
	_ = t.conn.SetReadDeadline(time.Now())
}
