package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/danmuck/castctl/internal/channel"
	"github.com/danmuck/castctl/internal/channel/connection"
	"github.com/danmuck/castctl/internal/channel/heartbeat"
	"github.com/danmuck/castctl/internal/config"
	"github.com/danmuck/castctl/internal/logging"
	"github.com/danmuck/castctl/internal/observability"
	"github.com/danmuck/castctl/internal/protocol/cast"
	"github.com/danmuck/castctl/internal/protocol/session"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// errReceiverClosed ends the run when the receiver closes the virtual connection.
var errReceiverClosed = errors.New("castctl: receiver closed connection")

func main() {
	configPath := flag.String("config", "", "path to castctl TOML config (optional)")
	destination := flag.String("destination", "", "override destination id")
	flag.Parse()

	logging.ConfigureRuntime()
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "castctl: %v\n", err)
		os.Exit(1)
	}
	if d := strings.TrimSpace(*destination); d != "" {
		cfg.Destination = d
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := run(ctx, cfg); err != nil {
		log.Error().Err(err).Msg("castctl: exiting")
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config) error {
	if cfg.MetricsAddr != "" {
		srv := &http.Server{Addr: cfg.MetricsAddr, Handler: metricsMux(), ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Warn().Err(err).Str("addr", cfg.MetricsAddr).Msg("castctl: metrics server stopped")
			}
		}()
		defer srv.Close()
	}

	tr, err := session.Dial(ctx, cfg.Address, cfg.Session)
	if err != nil {
		return err
	}
	defer tr.Close()

	conn := connection.New(cfg.SenderID, tr, connection.WithUserAgent(cfg.UserAgent))
	hb := heartbeat.New(cfg.SenderID, tr)
	d, err := channel.NewDispatcher(conn, hb)
	if err != nil {
		return err
	}

	if err := conn.Connect(cfg.Destination); err != nil {
		return err
	}
	log.Info().
		Str("sender", cfg.SenderID).
		Str("destination", cfg.Destination).
		Strs("namespaces", d.Namespaces()).
		Msg("castctl: connected")

	err = serve(ctx, tr, d, hb)
	if errors.Is(err, errReceiverClosed) {
		return nil
	}
	if ctx.Err() != nil {
		if cerr := conn.Disconnect(cfg.Destination); cerr != nil {
			log.Warn().Err(cerr).Msg("castctl: close failed")
		}
		return nil
	}
	return err
}

func serve(ctx context.Context, tr *session.Transport, d *channel.Dispatcher, hb *heartbeat.Channel) error {
	g, gctx := errgroup.WithContext(ctx)
	loopCtx, cancel := context.WithCancelCause(gctx)
	defer cancel(nil)

	g.Go(func() error {
		err := tr.Serve(loopCtx, d, func(ch channel.Channel, msg cast.Message, resp channel.Response) {
			handleResponse(msg, resp, hb, cancel)
		})
		if cause := context.Cause(loopCtx); errors.Is(cause, errReceiverClosed) {
			return cause
		}
		return err
	})
	g.Go(func() error {
		ticker := time.NewTicker(tr.Config().HeartbeatInterval)
		defer ticker.Stop()
		for {
			select {
			case <-loopCtx.Done():
				return nil
			case <-ticker.C:
				if err := hb.Ping(cast.PlatformReceiverID); err != nil {
					return err
				}
			}
		}
	})
	return g.Wait()
}

func handleResponse(msg cast.Message, resp channel.Response, hb *heartbeat.Channel, cancel context.CancelCauseFunc) {
	evt := log.Debug().
		Str("namespace", msg.Namespace()).
		Str("source", msg.Source()).
		Str("type", resp.ResponseType())

	switch r := resp.(type) {
	case heartbeat.Ping:
		evt.Msg("castctl: ping")
		if err := hb.Pong(msg.Source()); err != nil {
			log.Warn().Err(err).Msg("castctl: pong failed")
		}
	case heartbeat.Pong:
		evt.Msg("castctl: pong")
	case connection.Connect:
		evt.Msg("castctl: receiver connect")
	case connection.Close:
		log.Info().Str("source", msg.Source()).Msg("castctl: receiver closed connection")
		cancel(errReceiverClosed)
	case channel.NotImplemented:
		log.Info().
			Str("namespace", msg.Namespace()).
			Str("type", r.Type).
			Interface("payload", r.Payload).
			Msg("castctl: unhandled message type")
	default:
		evt.Msg("castctl: response")
	}
}

func metricsMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/metrics", observability.Handler())
	return mux
}
