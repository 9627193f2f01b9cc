package observability

import (
	"context"
	"errors"
	"testing"

	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/sdk/resource"

	"github.com/tbourn/go-contact-backend/internal/config"
)

func TestSetupOTel_DisabledIsNoOp(t *testing.T) {
	shutdown, err := SetupOTel(context.Background(), config.OTELConfig{Enabled: false}, "test")
	if err != nil {
		t.Fatalf("SetupOTel: %v", err)
	}
	if shutdown == nil {
		t.Fatal("shutdown must not be nil")
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("no-op shutdown: %v", err)
	}
}

func TestSetupOTel_ExporterFailure(t *testing.T) {
	orig := newOTLPExporterFn
	defer func() { newOTLPExporterFn = orig }()

	wantErr := errors.New("exporter down")
	newOTLPExporterFn = func(ctx context.Context, client otlptrace.Client) (*otlptrace.Exporter, error) {
		return nil, wantErr
	}

	cfg := config.OTELConfig{Enabled: true, Endpoint: "localhost:4317", Insecure: true, SampleRatio: 1}
	if _, err := SetupOTel(context.Background(), cfg, "test"); !errors.Is(err, wantErr) {
		t.Fatalf("err = %v; want %v", err, wantErr)
	}
}

func TestSetupOTel_ResourceFailure(t *testing.T) {
	origExp := newOTLPExporterFn
	origRes := newServiceResourceFn
	defer func() {
		newOTLPExporterFn = origExp
		newServiceResourceFn = origRes
	}()

	newOTLPExporterFn = func(ctx context.Context, client otlptrace.Client) (*otlptrace.Exporter, error) {
		return &otlptrace.Exporter{}, nil
	}
	wantErr := errors.New("resource failed")
	newServiceResourceFn = func(ctx context.Context, serviceName, version string) (*resource.Resource, error) {
		return nil, wantErr
	}

	cfg := config.OTELConfig{Enabled: true, Endpoint: "localhost:4317", Insecure: true, SampleRatio: 1}
	if _, err := SetupOTel(context.Background(), cfg, "test"); !errors.Is(err, wantErr) {
		t.Fatalf("err = %v; want %v", err, wantErr)
	}
}
