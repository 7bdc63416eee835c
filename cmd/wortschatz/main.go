package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"codeberg.org/snonux/wortschatz/internal/cli"
	"codeberg.org/snonux/wortschatz/internal/models"
	"codeberg.org/snonux/wortschatz/internal/processor"
)

func main() {
	// Create flags instance
	flags := cli.NewFlags()

	// Create root command
	rootCmd := cli.CreateRootCommand(flags)

	// Set up command initialization
	cobra.OnInitialize(func() {
		cli.InitConfig(flags.CfgFile)
	})

	// Set the run function
	rootCmd.RunE = func(cmd *cobra.Command, args []string) error {
		return runCommand(cmd, args, flags)
	}

	// Execute command
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runCommand(cmd *cobra.Command, args []string, flags *cli.Flags) error {
	cli.ApplyConfig(flags)

	logger, closer, err := cli.NewLogger(flags.LogLevel, flags.LogFile)
	if err != nil {
		return err
	}
	defer closer.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Handle --list-models flag
	if flags.ListModels {
		if flags.LLMProvider == "gemini" {
			return fmt.Errorf("--list-models supports OpenAI-compatible endpoints only")
		}
		lister := models.NewLister(flags.LLMURL, cli.GetLLMKey(), flags.LLMTimeout)
		return lister.ListAvailableModels(ctx, os.Stdout, flags.Model)
	}

	proc := processor.NewProcessor(flags, processor.Dependencies{Logger: logger})
	if _, err := proc.Run(ctx, args); err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("interrupted: %w", context.Cause(ctx))
		}
		return err
	}
	return nil
}
