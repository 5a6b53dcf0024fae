package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/on-the-ground/effect_ive_store/effects/log"
	"github.com/on-the-ground/effect_ive_store/internal/sample"
	"github.com/on-the-ground/effect_ive_store/store"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Seed    string
	Delay   time.Duration
	Timeout time.Duration
	Workers int
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the todos demo",
		Long: `Mount the todos and user models, refresh the todo list, log in,
edit the list and print the views after each step.

Example:
  todos run
  todos run --seed ./seed.yaml --delay 1s --verbose`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDemo(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Seed, "seed", "", "path to a seed YAML file")
	cmd.Flags().DurationVar(&opts.Delay, "delay", 200*time.Millisecond, "latency of the refresh and login effects")
	cmd.Flags().DurationVar(&opts.Timeout, "timeout", 10*time.Second, "how long to wait for effects to settle")
	cmd.Flags().IntVar(&opts.Workers, "workers", 1, "dispatcher workers per mount")

	return cmd
}

func newLogger(opts *RunOptions, cmd *cobra.Command) *zap.Logger {
	if opts.RootOptions == nil || !opts.Verbose {
		return zap.NewNop()
	}
	return zap.New(zapcore.NewCore(
		zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
		zapcore.AddSync(cmd.ErrOrStderr()),
		zap.DebugLevel,
	))
}

func runDemo(opts *RunOptions, cmd *cobra.Command) error {
	seed := DefaultSeed()
	if opts.Seed != "" {
		loaded, err := LoadSeed(opts.Seed)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to load seed", err)
		}
		seed = loaded
	}

	s, err := sample.NewStore(seed.backend(opts.Delay), store.WithConfig(store.NewConfig(64, opts.Workers)))
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to create store", err)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, endOfLog := log.WithZapEffectHandler(ctx, 64, newLogger(opts, cmd))
	defer endOfLog()

	ctx, unmount := s.WithProvider(ctx, seed.initialStates())
	defer unmount()

	views := sample.NewViews(s)
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "# mounted\n%s", views.App(ctx))

	if err := s.Batch(ctx, func() {
		s.MustUseModelAction(ctx, sample.TodosNamespace).Must("refresh")()
		s.MustUseModelAction(ctx, sample.UserNamespace).Must("login")()
	}); err != nil {
		return WrapExitError(ExitFailure, "failed to start effects", err)
	}

	waitCtx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()
	if err := s.WaitIdle(waitCtx); err != nil {
		return WrapExitError(ExitFailure, "effects did not settle", err)
	}
	index, err := s.Inspect(ctx)
	if err != nil {
		return WrapExitError(ExitFailure, "failed to inspect effects", err)
	}
	if err := index.Err(); err != nil {
		return WrapExitError(ExitFailure, "effects failed", err)
	}
	fmt.Fprintf(out, "\n# loaded\n%s", views.App(ctx))

	todos := s.MustUseModelAction(ctx, sample.TodosNamespace)
	todos.Must("add")("write docs")
	todos.Must("toggle")(0)
	fmt.Fprintf(out, "\n# edited\n%s", views.TodoApp(ctx))

	return nil
}
