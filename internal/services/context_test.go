package services

import (
	"context"
	"testing"
)

func TestContextHelpers(t *testing.T) {
	ctx := context.Background()

	if _, ok := RequestIDFromContext(ctx); ok {
		t.Error("expected no request id on empty context")
	}

	ctx = WithRequestID(ctx, "req-1")
	ctx = WithAssetID(ctx, "asset-1")
	ctx = WithSessionID(ctx, "sess-1")

	if got, ok := RequestIDFromContext(ctx); !ok || got != "req-1" {
		t.Errorf("request id = %q, %v", got, ok)
	}
	if got, ok := AssetIDFromContext(ctx); !ok || got != "asset-1" {
		t.Errorf("asset id = %q, %v", got, ok)
	}
	if got, ok := SessionIDFromContext(ctx); !ok || got != "sess-1" {
		t.Errorf("session id = %q, %v", got, ok)
	}
}

func TestContextHelpersIgnoreEmptyValues(t *testing.T) {
	ctx := WithRequestID(context.Background(), "")
	if _, ok := RequestIDFromContext(ctx); ok {
		t.Error("empty request id should not be stored")
	}
	if ctx != context.Background() {
		t.Error("empty value should return the original context")
	}
}
