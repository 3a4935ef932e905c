package main

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/danmuck/castctl/internal/channel"
	"github.com/danmuck/castctl/internal/channel/connection"
	"github.com/danmuck/castctl/internal/channel/heartbeat"
	"github.com/danmuck/castctl/internal/protocol/cast"
	"github.com/danmuck/castctl/internal/testutil/castfake"
	"github.com/danmuck/castctl/internal/testutil/testlog"
)

func TestHandleResponseAnswersPing(t *testing.T) {
	testlog.Start(t)
	rec := &castfake.Recorder{}
	hb := heartbeat.New("sender-0", rec)
	ctx, cancel := context.WithCancelCause(context.Background())
	defer cancel(nil)

	msg := cast.NewTextMessage(heartbeat.Namespace, "receiver-0", "sender-0", `{"type":"PING"}`)
	handleResponse(msg, heartbeat.Ping{}, hb, cancel)

	sent := rec.Sent()
	if len(sent) != 1 {
		t.Fatalf("expected one pong, got %d", len(sent))
	}
	text, _ := sent[0].Text()
	if sent[0].Destination() != "receiver-0" || text != `{"type":"PONG"}` {
		t.Fatalf("unexpected pong: dst=%q payload=%s", sent[0].Destination(), text)
	}
	if ctx.Err() != nil {
		t.Fatalf("ping must not cancel the session")
	}
}

func TestHandleResponseCloseCancels(t *testing.T) {
	testlog.Start(t)
	hb := heartbeat.New("sender-0", &castfake.Recorder{})
	ctx, cancel := context.WithCancelCause(context.Background())
	defer cancel(nil)

	msg := cast.NewTextMessage(connection.Namespace, "receiver-0", "sender-0", `{"type":"CLOSE"}`)
	handleResponse(msg, connection.Close{}, hb, cancel)
	if !errors.Is(context.Cause(ctx), errReceiverClosed) {
		t.Fatalf("expected errReceiverClosed cause, got %v", context.Cause(ctx))
	}
}

func TestHandleResponseNotImplementedIsLogged(t *testing.T) {
	testlog.Start(t)
	rec := &castfake.Recorder{}
	hb := heartbeat.New("sender-0", rec)
	ctx, cancel := context.WithCancelCause(context.Background())
	defer cancel(nil)

	msg := cast.NewTextMessage(connection.Namespace, "receiver-0", "sender-0", `{"type":"FOO"}`)
	handleResponse(msg, channel.NotImplemented{Type: "FOO", Payload: map[string]any{"type": "FOO"}}, hb, cancel)
	if len(rec.Sent()) != 0 || ctx.Err() != nil {
		t.Fatalf("unknown types must not send or cancel")
	}
}

func TestMetricsMux(t *testing.T) {
	testlog.Start(t)
	rec := httptest.NewRecorder()
	metricsMux().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status=%d", rec.Code)
	}
}
