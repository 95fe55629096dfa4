package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveBeforeInit(t *testing.T) {
	if OperationsTotal != nil {
		t.Skip("metrics already initialised")
	}
	ObserveOperation("create_list", nil)
	ObserveDenied("get_list")
	ObserveAuth("login", "ok")
	ObserveRateLimited("login")
	ObserveMail("ok")
}

func TestObserveAfterInit(t *testing.T) {
	InitMetrics()
	InitMetrics()

	ObserveOperation("delete_task", nil)
	ObserveOperation("delete_task", errors.New("db down"))
	ObserveOperation("delete_task", errors.New("db down"))
	ObserveDenied("update_list")

	if got := testutil.ToFloat64(OperationsTotal.WithLabelValues("delete_task", "ok")); got != 1 {
		t.Fatalf("expected 1 ok, got %v", got)
	}
	if got := testutil.ToFloat64(OperationsTotal.WithLabelValues("delete_task", "error")); got != 2 {
		t.Fatalf("expected 2 errors, got %v", got)
	}
	if got := testutil.ToFloat64(AccessDeniedTotal.WithLabelValues("update_list")); got != 1 {
		t.Fatalf("expected 1 denial, got %v", got)
	}
}
