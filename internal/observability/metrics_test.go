package observability

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/danmuck/castctl/internal/testutil/testlog"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRegisterMetricsAndRecordersAreSafe(t *testing.T) {
	testlog.Start(t)
	RegisterMetrics()
	RegisterMetrics()

	ns := "urn:x-cast:test.metrics"
	before := testutil.ToFloat64(messagesSent.WithLabelValues(ns))
	RecordSent(ns)
	RecordSent(ns)
	if got := testutil.ToFloat64(messagesSent.WithLabelValues(ns)); got != before+2 {
		t.Fatalf("sent counter=%v want %v", got, before+2)
	}

	RecordReceived(ns)
	if got := testutil.ToFloat64(messagesReceived.WithLabelValues(ns)); got < 1 {
		t.Fatalf("received counter=%v", got)
	}

	RecordDispatchError("test_kind")
	if got := testutil.ToFloat64(dispatchErrors.WithLabelValues("test_kind")); got < 1 {
		t.Fatalf("dispatch error counter=%v", got)
	}
}

func TestHandlerExposesCounters(t *testing.T) {
	testlog.Start(t)
	RecordSent("urn:x-cast:test.handler")

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status=%d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "castctl_messages_sent_total") {
		t.Fatalf("metrics output missing sent counter")
	}
}
