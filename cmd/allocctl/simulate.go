package main

import (
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"sort"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/joshuapare/memkit/alloc"
	"github.com/joshuapare/memkit/cmd/allocctl/logger"
)

var (
	simStack     string
	simOps       int
	simMaxSize   string
	simSeed      int64
	simFreeRatio float64
)

// layerTitleStyle renders layer headings; it degrades to plain text when
// stdout is not a terminal.
var layerTitleStyle = lipgloss.NewStyle().Bold(true)

// simAlignments are the alignments drawn by the workload.
var simAlignments = []alloc.Alignment{1, 2, 4, 8, 16, 32, 64}

func init() {
	cmd := newSimulateCmd()
	cmd.Flags().StringVar(&simStack, "stack", "counting>linear>system", "Allocator stack description")
	cmd.Flags().IntVar(&simOps, "ops", 10000, "Number of operations to run")
	cmd.Flags().StringVar(&simMaxSize, "max-size", "1KiB", "Largest request size (KiB/MiB binary, K/M decimal)")
	cmd.Flags().Int64Var(&simSeed, "seed", 1, "Random seed")
	cmd.Flags().Float64Var(&simFreeRatio, "free-ratio", 0.4, "Probability that an operation frees a live block")
	rootCmd.AddCommand(cmd)
}

func newSimulateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "simulate",
		Short: "Run a synthetic workload against an allocator stack",
		Long: `The simulate command builds an allocator stack from a description and runs
a deterministic random mix of allocations and deallocations against it.

Layers are separated by '>' and listed outermost first. The last layer is
the leaf that supplies memory.

  Leaves:    system, null, virtual[:capacity[:page]], vstack[:capacity[:step]]
  Wrappers:  counting, quota:limit, linear[:granularity], stack[:granularity],
             sync, ref, fallback

Example:
  allocctl simulate --stack "counting>quota:1MiB>linear:64KiB>system"
  allocctl simulate --stack "fallback>virtual:1MiB:4KiB" --max-size 4KiB --json
  allocctl simulate --stack "stack:4KiB>vstack:16MiB" --ops 100000 --seed 7`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			maxSize, err := alloc.ParseBytes(simMaxSize)
			if err != nil {
				return fmt.Errorf("--max-size: %w", err)
			}
			res, err := runSimulation(simConfig{
				Stack:     simStack,
				Ops:       simOps,
				MaxSize:   maxSize,
				Seed:      simSeed,
				FreeRatio: simFreeRatio,
			}, logger.L)
			if err != nil {
				return err
			}
			if jsonOut {
				return printJSON(res)
			}
			printResult(res)
			return nil
		},
	}
}

type simConfig struct {
	Stack     string
	Ops       int
	MaxSize   alloc.Bytes
	Seed      int64
	FreeRatio float64
}

type layerReport struct {
	Name  string         `json:"name"`
	Stats map[string]any `json:"stats,omitempty"`
}

type simResult struct {
	Stack          string        `json:"stack"`
	Seed           int64         `json:"seed"`
	Ops            int           `json:"ops"`
	Allocations    int64         `json:"allocations"`
	Failures       int64         `json:"failures"`
	Deallocations  int64         `json:"deallocations"`
	BytesAllocated int64         `json:"bytes_allocated"`
	PeakLiveBytes  int64         `json:"peak_live_bytes"`
	Elapsed        time.Duration `json:"elapsed_ns"`
	Layers         []layerReport `json:"layers"`
}

type liveBlock struct {
	span      alloc.RWByteSpan
	alignment alloc.Alignment
}

// runSimulation builds the stack, runs the workload and tears the stack down.
// Layer statistics are captured before teardown.
func runSimulation(cfg simConfig, log *slog.Logger) (*simResult, error) {
	if cfg.Ops < 0 {
		return nil, fmt.Errorf("ops must be non-negative, got %d", cfg.Ops)
	}
	if cfg.MaxSize <= 0 {
		return nil, fmt.Errorf("max size must be positive, got %v", cfg.MaxSize)
	}
	if cfg.FreeRatio < 0 || cfg.FreeRatio > 1 {
		return nil, fmt.Errorf("free ratio must be within [0, 1], got %g", cfg.FreeRatio)
	}

	stack, err := buildStack(cfg.Stack, log)
	if err != nil {
		return nil, fmt.Errorf("build stack: %w", err)
	}
	defer stack.Close()

	log.Info("simulation starting",
		slog.String("stack", cfg.Stack),
		slog.Int("ops", cfg.Ops),
		slog.Int64("seed", cfg.Seed))

	res := &simResult{Stack: cfg.Stack, Seed: cfg.Seed, Ops: cfg.Ops}
	top := stack.Top()
	rng := rand.New(rand.NewSource(cfg.Seed))
	var live []liveBlock
	var liveBytes int64

	start := time.Now()
	for range cfg.Ops {
		if len(live) > 0 && rng.Float64() < cfg.FreeRatio {
			i := rng.Intn(len(live))
			top.Deallocate(live[i].span, live[i].alignment)
			liveBytes -= int64(len(live[i].span))
			live[i] = live[len(live)-1]
			live = live[:len(live)-1]
			res.Deallocations++
			continue
		}

		size := alloc.Bytes(1 + rng.Int63n(int64(cfg.MaxSize)))
		al := simAlignments[rng.Intn(len(simAlignments))]
		block := top.Allocate(size, al)
		if block.IsEmpty() {
			res.Failures++
			continue
		}
		live = append(live, liveBlock{span: block, alignment: al})
		res.Allocations++
		res.BytesAllocated += int64(size)
		liveBytes += int64(size)
		res.PeakLiveBytes = max(res.PeakLiveBytes, liveBytes)
	}
	res.Elapsed = time.Since(start)
	res.Layers = stack.Stats()

	for _, lb := range live {
		top.Deallocate(lb.span, lb.alignment)
	}
	stack.Release()

	log.Info("simulation finished",
		slog.Int64("allocations", res.Allocations),
		slog.Int64("failures", res.Failures),
		slog.Duration("elapsed", res.Elapsed))
	return res, nil
}

func printResult(res *simResult) {
	if quiet {
		return
	}
	p := message.NewPrinter(language.English)
	p.Fprintf(os.Stdout, "Stack:           %s\n", res.Stack)
	p.Fprintf(os.Stdout, "Operations:      %d (seed %d)\n", res.Ops, res.Seed)
	p.Fprintf(os.Stdout, "Allocations:     %d\n", res.Allocations)
	p.Fprintf(os.Stdout, "Failures:        %d\n", res.Failures)
	p.Fprintf(os.Stdout, "Deallocations:   %d\n", res.Deallocations)
	p.Fprintf(os.Stdout, "Bytes allocated: %d\n", res.BytesAllocated)
	p.Fprintf(os.Stdout, "Peak live bytes: %d\n", res.PeakLiveBytes)
	printVerbose("Elapsed:         %s\n", res.Elapsed)

	for _, l := range res.Layers {
		p.Fprintf(os.Stdout, "\n%s\n", layerTitleStyle.Render("["+l.Name+"]"))
		keys := make([]string, 0, len(l.Stats))
		for k := range l.Stats {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			switch v := l.Stats[k].(type) {
			case float64:
				p.Fprintf(os.Stdout, "  %-16s %.1f%%\n", k+":", v*100)
			default:
				p.Fprintf(os.Stdout, "  %-16s %d\n", k+":", v)
			}
		}
	}
}
