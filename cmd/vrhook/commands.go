package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/loykin/vrhook"
	"github.com/spf13/cobra"
)

// newHook is replaced in tests.
var newHook = func(cfg vrhook.Config) *vrhook.Hook { return vrhook.New(cfg) }

func loadHook(flags *GlobalFlags) (*vrhook.Hook, error) {
	cfg, err := vrhook.LoadConfig(flags.ConfigPath)
	if err != nil {
		return nil, err
	}
	return newHook(cfg), nil
}

// GlobalFlags holds persistent flags shared by every command
type GlobalFlags struct {
	ConfigPath string
}

// buildRoot creates the root command and its subcommands
func buildRoot() *cobra.Command {
	flags := &GlobalFlags{}
	root := createRootCommand(flags)
	root.AddCommand(
		createScriptsCommand(flags),
		createRegisterCommand(flags),
	)
	return root
}

// createRootCommand creates the root command, which runs the full lifecycle
func createRootCommand(flags *GlobalFlags) *cobra.Command {
	root := &cobra.Command{
		Use:   "vrhook",
		Short: "Run scripts around the lifetime of the VR runtime",
		Long: `vrhook waits for the VR runtime, registers itself to start with it,
runs the scripts in ./start, and when ./stop holds scripts waits for the
runtime to quit before running them.

Examples:
  vrhook                         # fixed behavior, no config needed
  vrhook --config vrhook.toml    # override directories, pattern, logging
  vrhook scripts                 # list what would run`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLifecycle(cmd.Context(), flags)
		},
	}
	root.PersistentFlags().StringVar(&flags.ConfigPath, "config", "", "path to TOML config file (optional)")
	return root
}

// createScriptsCommand lists the scripts a run would launch
func createScriptsCommand(flags *GlobalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "scripts",
		Short: "List start and stop scripts without running them",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := loadHook(flags)
			if err != nil {
				return err
			}
			defer func() { _ = h.Close() }()
			start, stop, err := h.Scripts()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if err := printScripts(out, h.Config().StartDir, start); err != nil {
				return err
			}
			return printScripts(out, h.Config().StopDir, stop)
		},
	}
}

// createRegisterCommand connects once and ensures the manifest registration
func createRegisterCommand(flags *GlobalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "register",
		Short: "Register the application manifest with the runtime and exit",
		Long: `Connect to the running VR runtime once, register the application
manifest and enable auto launch if needed, then disconnect.
Unlike the default command this does not retry.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := loadHook(flags)
			if err != nil {
				return err
			}
			defer func() { _ = h.Close() }()
			return h.Register()
		},
	}
}

func runLifecycle(parent context.Context, flags *GlobalFlags) error {
	if parent == nil {
		parent = context.Background()
	}
	h, err := loadHook(flags)
	if err != nil {
		return err
	}
	defer func() { _ = h.Close() }()

	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		// after the first signal, a second one terminates the process even
		// while waiting for the runtime to quit
		<-ctx.Done()
		stop()
	}()

	_, err = h.Run(ctx)
	if errors.Is(err, context.Canceled) {
		h.Logger().Info("stopped by signal")
		return nil
	}
	if err != nil {
		return fmt.Errorf("lifecycle: %w", err)
	}
	return nil
}

func printScripts(w io.Writer, dir string, found []string) error {
	if _, err := fmt.Fprintf(w, "%s (%d):\n", dir, len(found)); err != nil {
		return err
	}
	for _, p := range found {
		if _, err := fmt.Fprintf(w, "  %s\n", p); err != nil {
			return err
		}
	}
	return nil
}
