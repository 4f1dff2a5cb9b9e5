package services_test

import (
	"context"
	"testing"

	"linkflow/internal/services"
)

func TestRunIDRoundTrip(t *testing.T) {
	ctx := services.WithRunID(context.Background(), "run-123")
	id, ok := services.RunIDFromContext(ctx)
	if !ok || id != "run-123" {
		t.Fatalf("expected run-123, got %q ok=%v", id, ok)
	}
}

func TestEmptyValuesAreNotStored(t *testing.T) {
	ctx := services.WithRunID(context.Background(), "")
	if _, ok := services.RunIDFromContext(ctx); ok {
		t.Fatal("empty run id should not be stored")
	}
	ctx = services.WithStep(context.Background(), "")
	if _, ok := services.StepFromContext(ctx); ok {
		t.Fatal("empty step should not be stored")
	}
}

func TestStepRoundTrip(t *testing.T) {
	ctx := services.WithStep(context.Background(), "2.1-get-qr-details")
	step, ok := services.StepFromContext(ctx)
	if !ok || step != "2.1-get-qr-details" {
		t.Fatalf("expected step key, got %q ok=%v", step, ok)
	}
}
