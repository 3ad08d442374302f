package main

import (
	"context"
	"os"

	"github.com/sandevgo/daobot/internal/config"
	"github.com/sandevgo/daobot/pkg/log"
	"github.com/spf13/cobra"
)

var (
	debug bool
)

var rootCmd = &cobra.Command{
	Use:   "daobot",
	Short: "DAOman — a grounded Telegram voice bot",
	Long:  `DAOman answers questions with live web and crypto data, replying with text and cloned voice.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	// Global flags available to all subcommands
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", config.IsDebug(), "enable debug logging")
}

func setupLogger(ctx context.Context) (context.Context, func()) {
	isDebug := debug || config.IsDebug()
	return log.NewContextWithLogger(ctx, isDebug)
}
