package zaplogger

import (
	"errors"
	"testing"

	"github.com/HacAtac/Ecom-Order-Microservice/internal/observability"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLogger_WithCarriesFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	base := FromZap(zap.New(core))

	l := base.With(observability.F("service", "order-service"))
	l.Info("use_case_done", observability.F("order_id", int64(7)))

	entries := logs.FilterMessage("use_case_done").All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	ctx := entries[0].ContextMap()
	if ctx["service"] != "order-service" {
		t.Fatalf("service field missing: %v", ctx)
	}
	if ctx["order_id"] != int64(7) {
		t.Fatalf("order_id field = %v", ctx["order_id"])
	}
}

func TestLogger_ErrorValuesUseErrorEncoding(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := FromZap(zap.New(core))

	l.Warn("payment_declined", observability.F("error", errors.New("card expired")))

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if got := entries[0].ContextMap()["error"]; got != "card expired" {
		t.Fatalf("error field = %v", got)
	}
	if entries[0].Level != zapcore.WarnLevel {
		t.Fatalf("level = %v", entries[0].Level)
	}
}

func TestNew_RejectsUnknownLevel(t *testing.T) {
	if _, err := New("loud"); err == nil {
		t.Fatalf("expected error for unknown level")
	}
}
