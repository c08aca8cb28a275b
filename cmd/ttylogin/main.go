package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/hnrobert/ttylogin/internal/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGHUP)
	code := submain(ctx)
	stop()
	os.Exit(code)
}

func submain(ctx context.Context) int {
	root := newRootCmd()
	if err := root.ExecuteContext(ctx); err != nil {
		logger.Error("ttylogin: %v", err)
		return 1
	}
	return 0
}

func newRootCmd() *cobra.Command {
	var cfgPath string
	root := &cobra.Command{
		Use:           "ttylogin [config]",
		Short:         "Text console login manager",
		Args:          cobra.MaximumNArgs(1),
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				cfgPath = args[0]
			}
			return runLogin(cmd, cfgPath)
		},
	}
	root.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "path to config file")

	root.AddCommand(newUsersCmd(&cfgPath))
	root.AddCommand(newSessionsCmd(&cfgPath))
	root.AddCommand(newWhoCmd(&cfgPath))

	return root
}
