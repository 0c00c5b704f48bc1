package stripe

import (
	"context"
	"testing"

	"github.com/upliftbridge/upliftbridge-backend/pkg/config"
)

func TestNewClientValidation(t *testing.T) {
	ctx := context.Background()

	if _, err := NewClient(ctx, config.StripeConfig{Env: "test"}, nil); err == nil {
		t.Fatal("expected missing api key error")
	}

	if _, err := NewClient(ctx, config.StripeConfig{APIKey: "sk_live_abc", Env: "test"}, nil); err == nil {
		t.Fatal("expected live key in test env to be rejected")
	}

	if _, err := NewClient(ctx, config.StripeConfig{APIKey: "sk_test_abc", Env: "staging"}, nil); err == nil {
		t.Fatal("expected invalid environment to be rejected")
	}

	client, err := NewClient(ctx, config.StripeConfig{APIKey: "sk_test_abc", Env: ""}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if client.Environment() != "test" {
		t.Fatalf("blank env should default to test, got %q", client.Environment())
	}
	if client.API() == nil {
		t.Fatal("expected initialized api client")
	}
}
