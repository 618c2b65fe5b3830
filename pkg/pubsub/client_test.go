package pubsub

import (
	"context"
	"testing"

	"github.com/iump/fruittree-backend/pkg/config"
)

func TestSubscriptionResourceName(t *testing.T) {
	cases := []struct {
		project string
		name    string
		want    string
	}{
		{project: "p1", name: "rewards", want: "projects/p1/subscriptions/rewards"},
		{project: "p1", name: "  rewards ", want: "projects/p1/subscriptions/rewards"},
		{project: "p1", name: "projects/other/subscriptions/rewards", want: "projects/other/subscriptions/rewards"},
		{project: "", name: "rewards", want: ""},
		{project: "p1", name: "", want: ""},
	}
	for _, tc := range cases {
		if got := subscriptionResourceName(tc.project, tc.name); got != tc.want {
			t.Fatalf("subscriptionResourceName(%q, %q) = %q, want %q", tc.project, tc.name, got, tc.want)
		}
	}
}

func TestNewClientRequiresProjectAndSubscription(t *testing.T) {
	ctx := context.Background()
	if _, err := NewClient(ctx, config.GCPConfig{}, config.PubSubConfig{RewardsSubscription: "rewards"}, nil); err != errProjectIDRequired {
		t.Fatalf("expected project id error, got %v", err)
	}
	if _, err := NewClient(ctx, config.GCPConfig{ProjectID: "p1"}, config.PubSubConfig{}, nil); err != errNoSubscription {
		t.Fatalf("expected subscription error, got %v", err)
	}
}

func TestNilClientIsSafe(t *testing.T) {
	var c *Client
	if c.RewardsSubscription() != nil {
		t.Fatal("expected nil subscriber")
	}
	if err := c.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := c.Ping(context.Background()); err == nil {
		t.Fatal("expected ping error")
	}
}
