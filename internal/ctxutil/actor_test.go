package ctxutil

import (
	"context"
	"testing"
)

func TestResolveActor(t *testing.T) {
	tests := []struct {
		name     string
		ctx      context.Context
		explicit string
		want     string
	}{
		{"explicit wins", WithActor(context.Background(), "ctx-user"), "ana", "ana"},
		{"falls back to context", WithActor(context.Background(), "ctx-user"), "", "ctx-user"},
		{"falls back to system", context.Background(), "", SystemActor},
		{"empty context actor", WithActor(context.Background(), ""), "", SystemActor},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ResolveActor(tt.ctx, tt.explicit); got != tt.want {
				t.Errorf("ResolveActor() = %q, want %q", got, tt.want)
			}
		})
	}
}
