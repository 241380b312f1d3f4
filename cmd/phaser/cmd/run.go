package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/anggasct/phaser"
	"github.com/anggasct/phaser/pkg/intersection"
	"github.com/anggasct/phaser/pkg/observers"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "run an intersection until interrupted or the duration elapses",
	Long: `run starts one light per street, either from a plan file (--config) or
as --lights identical lights built from the flags. Vehicles are spread across
the streets and each waits for its light to turn green. On exit a summary of
toggles, publishes, crossed vehicles and timing violations is printed.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		plan, err := runPlan(cmd)
		if err != nil {
			return err
		}

		level, err := observers.ParseLogLevel(logLevel)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		if runDuration > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, runDuration)
			defer cancel()
		}

		return runIntersection(ctx, cmd.OutOrStdout(), plan, level, vehicles)
	},
}

var planPath string
var lights int
var seed uint64
var runDuration time.Duration
var vehicles int
var logLevel string
var cycleUnit time.Duration
var gateIterations int
var queueOrder string

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&planPath, "config", "c", "",
		"path of an intersection plan (YAML)")
	runCmd.Flags().IntVarP(&lights, "lights", "n", 2,
		"number of lights when no plan is given")
	runCmd.Flags().Uint64Var(&seed, "seed", 0,
		"seed for the cycle draws (random when unset)")
	runCmd.Flags().DurationVarP(&runDuration, "duration", "d", 0,
		"stop after this long (0 runs until interrupted)")
	runCmd.Flags().IntVar(&vehicles, "vehicles", 0,
		"vehicles spread across the streets, each crossing once")
	runCmd.Flags().StringVarP(&logLevel, "log-level", "l", "info",
		"log level (error, warn, info, debug)")
	runCmd.Flags().DurationVar(&cycleUnit, "unit", time.Second,
		"length of one cycle unit when no plan is given")
	runCmd.Flags().IntVar(&gateIterations, "gate", phaser.DefaultConfig().GateIterations,
		"sleeps per toggle when no plan is given")
	runCmd.Flags().StringVar(&queueOrder, "order", "lifo",
		"queue order when no plan is given (lifo, fifo)")
}

// runPlan loads the plan file or builds a uniform plan from the flags
func runPlan(cmd *cobra.Command) (intersection.Plan, error) {
	if planPath != "" {
		return intersection.LoadPlan(planPath)
	}

	cfg := phaser.DefaultConfig()
	cfg.Name = "street"
	cfg.CycleUnit = cycleUnit
	cfg.GateIterations = gateIterations
	if err := cfg.QueueOrder.UnmarshalText([]byte(queueOrder)); err != nil {
		return intersection.Plan{}, err
	}
	if cmd.Flags().Changed("seed") {
		s := seed
		cfg.Seed = &s
	}

	plan := intersection.UniformPlan("intersection", lights, cfg)
	if err := plan.Validate(); err != nil {
		return intersection.Plan{}, err
	}
	return plan, nil
}

// runIntersection runs plan until ctx is done, then prints a summary
func runIntersection(ctx context.Context, out io.Writer, plan intersection.Plan, level observers.LogLevel, vehicles int) error {
	in, err := intersection.New(plan)
	if err != nil {
		return err
	}

	logger := observers.NewLoggingObserver(level, "phaser")
	logger.SetOutput(out)
	metrics := observers.NewMetricsObserver()
	in.AddObserver(logger)
	in.AddObserver(metrics)

	validators := make(map[string]*observers.ValidationObserver, len(plan.Lights))
	for _, cfg := range plan.Lights {
		validator := observers.NewValidationObserver(cfg, 50*time.Millisecond)
		validators[cfg.Name] = validator
		light, _ := in.Light(cfg.Name)
		light.AddObserver(validator)
	}

	if err := in.Start(ctx); err != nil {
		return err
	}

	streets := in.Streets()
	var traffic errgroup.Group
	crossed := make(chan intersection.Vehicle, vehicles)
	for i := 0; i < vehicles; i++ {
		v := intersection.NewVehicle(streets[i%len(streets)])
		traffic.Go(func() error {
			if err := in.Cross(ctx, v); err != nil {
				if gaveUp(err) {
					return nil
				}
				return err
			}
			crossed <- v
			return nil
		})
	}

	faulted := make(chan error, 1)
	go func() { faulted <- in.Wait() }()

	var runErr error
	select {
	case <-ctx.Done():
		runErr = in.Shutdown()
	case runErr = <-faulted:
		_ = in.Shutdown()
	}

	if err := traffic.Wait(); err != nil && runErr == nil {
		runErr = err
	}
	close(crossed)

	printSummary(out, in.Name(), metrics, validators, crossed)
	return runErr
}

// gaveUp reports whether a vehicle stopped waiting because the run ended
func gaveUp(err error) bool {
	return errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, phaser.ErrQueueClosed)
}

func printSummary(out io.Writer, name string, metrics *observers.MetricsObserver,
	validators map[string]*observers.ValidationObserver, crossed <-chan intersection.Vehicle) {
	fmt.Fprintf(out, "summary for %s\n", name)

	counts := metrics.GetTransitionCounts()
	keys := make([]string, 0, len(counts))
	for key := range counts {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		fmt.Fprintf(out, "  toggles %s: %d\n", key, counts[key])
	}
	fmt.Fprintf(out, "  publishes: %d\n", metrics.GetPublishCount())
	fmt.Fprintf(out, "  errors: %d\n", metrics.GetErrorCount())

	n := 0
	for v := range crossed {
		fmt.Fprintf(out, "  vehicle %s crossed %s\n", v.ID, v.Street)
		n++
	}
	fmt.Fprintf(out, "  vehicles crossed: %d\n", n)

	names := make([]string, 0, len(validators))
	for street := range validators {
		names = append(names, street)
	}
	sort.Strings(names)
	for _, street := range names {
		for _, violation := range validators[street].GetViolations() {
			fmt.Fprintf(out, "  violation: %s\n", violation)
		}
	}
}
