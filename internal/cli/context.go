package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/example/elemcat/internal/ctxutil"
)

// ActorFlag is the persistent root flag naming who performs a change.
const ActorFlag = "actor"

// commandContext returns the command's context carrying the --actor value.
func commandContext(cmd *cobra.Command) context.Context {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if f := cmd.Flag(ActorFlag); f != nil && f.Value.String() != "" {
		ctx = ctxutil.WithActor(ctx, f.Value.String())
	}
	return ctx
}
