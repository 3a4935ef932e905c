package channel

import (
	"errors"
	"reflect"
	"testing"

	"github.com/danmuck/castctl/internal/protocol/cast"
	"github.com/danmuck/castctl/internal/testutil/castfake"
	"github.com/danmuck/castctl/internal/testutil/testlog"
)

type echoResponse struct{ typ string }

func (e echoResponse) ResponseType() string { return e.typ }

type fakeChannel struct {
	Base
	parsed int
}

func newFakeChannel(ns string) *fakeChannel {
	return &fakeChannel{Base: NewBase(ns, "sender-0", &castfake.Recorder{})}
}

func (f *fakeChannel) Parse(msg cast.Message) (Response, error) {
	f.parsed++
	typ, _, err := DecodeText(msg)
	if err != nil {
		return nil, err
	}
	return echoResponse{typ: typ}, nil
}

func TestDispatcherRoutesByNamespace(t *testing.T) {
	testlog.Start(t)
	a := newFakeChannel("urn:x-cast:a")
	b := newFakeChannel("urn:x-cast:b")
	d, err := NewDispatcher(a, b)
	if err != nil {
		t.Fatalf("new dispatcher: %v", err)
	}

	ch, resp, err := d.Dispatch(cast.NewTextMessage("urn:x-cast:b", "receiver-0", "sender-0", `{"type":"HI"}`))
	if err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if ch != Channel(b) || resp.ResponseType() != "HI" {
		t.Fatalf("unexpected route: ch=%v resp=%v", ch, resp)
	}
	if a.parsed != 0 || b.parsed != 1 {
		t.Fatalf("unexpected parse counts a=%d b=%d", a.parsed, b.parsed)
	}
	if got := d.Namespaces(); !reflect.DeepEqual(got, []string{"urn:x-cast:a", "urn:x-cast:b"}) {
		t.Fatalf("unexpected namespaces: %v", got)
	}
}

func TestDispatcherUnroutable(t *testing.T) {
	testlog.Start(t)
	d, err := NewDispatcher(newFakeChannel("urn:x-cast:a"))
	if err != nil {
		t.Fatalf("new dispatcher: %v", err)
	}
	_, _, err = d.Dispatch(cast.NewTextMessage("urn:x-cast:other", "r", "s", `{"type":"X"}`))
	if !errors.Is(err, ErrUnroutable) {
		t.Fatalf("expected ErrUnroutable, got %v", err)
	}
	_, _, err = d.Dispatch(cast.NewBinaryMessage("urn:x-cast:other", "r", "s", []byte{1}))
	if !errors.Is(err, ErrUnroutable) {
		t.Fatalf("expected ErrUnroutable for binary envelope, got %v", err)
	}
}

func TestDispatcherPropagatesParseErrors(t *testing.T) {
	testlog.Start(t)
	d, err := NewDispatcher(newFakeChannel("urn:x-cast:a"))
	if err != nil {
		t.Fatalf("new dispatcher: %v", err)
	}
	_, _, err = d.Dispatch(cast.NewBinaryMessage("urn:x-cast:a", "r", "s", []byte{1}))
	if !errors.Is(err, ErrPayloadKind) {
		t.Fatalf("expected ErrPayloadKind, got %v", err)
	}
}

func TestDispatcherRejectsDuplicateAndNil(t *testing.T) {
	testlog.Start(t)
	d, err := NewDispatcher(newFakeChannel("urn:x-cast:a"))
	if err != nil {
		t.Fatalf("new dispatcher: %v", err)
	}
	if err := d.Register(newFakeChannel("urn:x-cast:a")); !errors.Is(err, ErrDuplicateNamespace) {
		t.Fatalf("expected ErrDuplicateNamespace, got %v", err)
	}
	if err := d.Register(nil); !errors.Is(err, ErrNilChannel) {
		t.Fatalf("expected ErrNilChannel, got %v", err)
	}
	if _, err := NewDispatcher(newFakeChannel("urn:x-cast:x"), newFakeChannel("urn:x-cast:x")); !errors.Is(err, ErrDuplicateNamespace) {
		t.Fatalf("expected constructor to reject duplicates, got %v", err)
	}
	if len(d.Namespaces()) != 1 {
		t.Fatalf("rejected registrations must not be kept: %v", d.Namespaces())
	}
}
