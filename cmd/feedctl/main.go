package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
)

func main() {
	var remote bool

	rootCmd := &cobra.Command{
		Use:   "feedctl",
		Short: "Drive the campus feed client from the terminal",
		Long: `feedctl runs the feed client's sync core against a feed API.

By default it talks to an in-process demo backend. With --remote it calls
the HTTP API at API_BASE_URL as USER_ID. When REDIS_URL is set the pending
update mailbox and the scratch cache live in Redis, and with
SYNC_STREAM_ENABLED=true changes are shared with other feedctl processes.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().BoolVar(&remote, "remote", false, "Use the HTTP API at API_BASE_URL")

	rootCmd.AddCommand(
		likeCmd(&remote),
		favoriteCmd(&remote),
		voteCmd(&remote),
		editCmd(&remote),
		commentCmd(&remote),
		deleteCmd(&remote),
		treeCmd(&remote),
		demoCmd(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}
