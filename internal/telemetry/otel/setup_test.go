package otel

import (
	"context"
	"testing"
)

func TestNewProvidersEmptyEndpoint(t *testing.T) {
	p, err := NewProviders(context.Background(), "", "task-tracker", false)
	if err != nil {
		t.Fatalf("NewProviders: %v", err)
	}
	if p.TracerProvider == nil || p.MeterProvider == nil || p.LoggerProvider == nil {
		t.Fatal("expected no-op providers, got nil")
	}
	if err := p.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}
}

func TestNewProvidersInvalidEndpoint(t *testing.T) {
	if _, err := NewProviders(context.Background(), "://bad", "task-tracker", false); err == nil {
		t.Fatal("expected error for malformed endpoint")
	}
	if _, err := NewProviders(context.Background(), "http://", "task-tracker", false); err == nil {
		t.Fatal("expected error for missing host")
	}
}
