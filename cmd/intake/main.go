package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"time"

	"intake-go/internal/app"
	"intake-go/internal/config"
	"intake-go/internal/intake"
	"intake-go/internal/tracker"

	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// newApp reads the config and creates an IntakeApp. The caller must defer app.Close().
func newApp() (*app.IntakeApp, error) {
	cfg, _, err := app.LoadConfig()
	if err != nil {
		return nil, err
	}

	a, err := app.NewIntakeApp(cfg)
	if err != nil {
		return nil, fmt.Errorf("initializing app: %w", err)
	}
	return a, nil
}

var rootCmd = &cobra.Command{
	Use:   "intake",
	Short: "Document intake review console",
}

// config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg := config.NewConfig(defaults["base_dir"])
		if err := config.Init(defaults["config_path"], cfg); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}

		fmt.Printf("Configuration initialized at %s\n", defaults["config_path"])
		fmt.Printf("Base Dir: %s\n", defaults["base_dir"])
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "View configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, path, err := app.LoadConfig()
		if err != nil {
			return err
		}

		fmt.Printf("Configuration from %s:\n\n", path)
		m := &config.Manager{}
		return m.Write(os.Stdout, cfg)
	},
}

// check command
var checkCmd = &cobra.Command{
	Use:   "check FILE...",
	Short: "Check whether files would be accepted for intake",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		refused := 0
		for _, path := range args {
			f, err := a.CheckFile(path)
			var verr *intake.ValidationError
			switch {
			case errors.As(err, &verr):
				refused++
				fmt.Printf("refused  %v\n", verr)
			case err != nil:
				refused++
				fmt.Printf("error    %s: %v\n", path, err)
			default:
				fmt.Printf("ok       %s (%s, %d bytes)\n", f.Name, f.ContentType, f.Size)
			}
		}

		if refused > 0 {
			cmd.SilenceUsage = true
			return fmt.Errorf("%d of %d file(s) refused", refused, len(args))
		}
		return nil
	},
}

// status command
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Summarize the document collection",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		counts, err := a.Counts()
		if err != nil {
			return err
		}
		groups, err := a.Groups()
		if err != nil {
			return err
		}

		app.RenderCounts(os.Stdout, counts)
		fmt.Println()
		app.RenderGroups(os.Stdout, groups)
		return nil
	},
}

// review command
var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Start an interactive review session",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		interactive := app.IsTerminal(os.Stdin)
		if interactive {
			fmt.Println("Type 'help' for commands, 'quit' to leave.")
		}
		return app.NewSession(a, os.Stdin, os.Stdout, interactive).Run(ctx)
	},
}

// watch command
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Run the processing simulation and print counts after every tick",
	RunE: func(cmd *cobra.Command, args []string) error {
		duration, _ := cmd.Flags().GetDuration("duration")

		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()
		if duration > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, duration)
			defer cancel()
		}

		unsubscribe := a.Subscribe(func(ev tracker.Event) {
			if ev.Type != tracker.EventTicked {
				return
			}
			counts, err := a.Counts()
			if err != nil {
				return
			}
			fmt.Printf("%s  ", ev.At.Format(time.TimeOnly))
			app.RenderCounts(os.Stdout, counts)
		})
		defer unsubscribe()

		counts, err := a.Counts()
		if err != nil {
			return err
		}
		app.RenderCounts(os.Stdout, counts)

		if err := a.Start(ctx); err != nil {
			return err
		}
		<-ctx.Done()
		return nil
	},
}

func init() {
	// config subcommands
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configListCmd)

	// root commands
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(reviewCmd)
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().DurationP("duration", "d", 0, "Stop after this long (0 runs until interrupted)")
}
