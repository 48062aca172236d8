package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/mawngo/kcluster/internal/dataset"
	"github.com/mawngo/kcluster/internal/kmeans"
	"github.com/mawngo/kcluster/internal/reference"
	"github.com/phsym/console-slog"
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/mat"
)

// referenceDelta is the fraction of moving points below which the reference
// implementation stops.
const referenceDelta = 0.01

func Init() *slog.LevelVar {
	level := &slog.LevelVar{}
	logger := slog.New(
		console.NewHandler(os.Stderr, &console.HandlerOptions{
			Level:      level,
			TimeFormat: time.Kitchen,
		}))
	slog.SetDefault(logger)
	cobra.EnableCommandSorting = false
	return level
}

type CLI struct {
	command *cobra.Command
}

// NewCLI create new CLI instance and set up application config.
func NewCLI() *CLI {
	level := Init()

	f := flags{
		Clusters:    2,
		Round:       100,
		Init:        kmeans.InitFirstK.String(),
		Empty:       kmeans.RetainPrevious.String(),
		Format:      "text",
		Concurrency: max(1, runtime.NumCPU()/2),
	}

	command := cobra.Command{
		Use:           "kcluster [file]",
		Short:         "Partition numeric points into k clusters",
		Long:          "Partition the points of a delimited text file (or stdin) into k clusters with Lloyd's k-means algorithm.",
		Args:          cobra.MaximumNArgs(1),
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			debug, err := cmd.PersistentFlags().GetBool("debug")
			if err != nil {
				return err
			}
			if debug {
				level.Set(slog.LevelDebug)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			now := time.Now()
			path := "-"
			if len(args) > 0 {
				path = args[0]
			}

			options, err := f.options()
			if err != nil {
				return err
			}
			m, err := load(cmd, path, f)
			if err != nil {
				return err
			}
			rows, cols := m.Dims()
			data := kmeans.FromMatrix(m)

			logger := slog.Default().With(slog.String("run", uuid.NewString()))
			logger.Info("Loaded dataset",
				slog.String("path", path),
				slog.Int("rows", rows),
				slog.Int("cols", cols),
			)

			if f.Sweep != "" {
				lo, hi, err := parseSweep(f.Sweep)
				if err != nil {
					return err
				}
				if f.Concurrency < 1 {
					f.Concurrency = 1
				}
				summaries, err := sweep(cmd.Context(), data, lo, hi, f.Concurrency, options, logger)
				if err != nil {
					return err
				}
				logger.Info("Sweep completed",
					slog.Int("from", lo),
					slog.Int("to", hi),
					slog.Duration("took", time.Since(now)))
				return writeSweep(cmd.OutOrStdout(), f.Format, summaries)
			}

			r, err := kmeans.NewTrainer(f.Clusters, append(options, kmeans.WithLogger(logger))...).
				Fit(cmd.Context(), data)
			if err != nil {
				return err
			}

			rep := report{K: f.Clusters, Rows: rows, Cols: cols, Result: r}
			if f.Compare {
				p, err := reference.Muesli(data, f.Clusters, referenceDelta)
				if err != nil {
					return fmt.Errorf("reference run: %w", err)
				}
				ri, err := reference.Agreement(r.Assignment, p.Assignment)
				if err != nil {
					return err
				}
				rep.Reference = &comparison{Backend: "muesli/kmeans", Agreement: ri, Partition: p}
			}

			if err := writeReport(cmd.OutOrStdout(), f.Format, rep); err != nil {
				return err
			}
			if f.Chart != "" {
				if err := writeChart(f.Chart, data, r); err != nil {
					return err
				}
				logger.Info("Chart written", slog.String("out", f.Chart))
			}

			logger.Info("Clustering completed",
				slog.String("state", r.State.String()),
				slog.Int("iter", r.Iterations),
				slog.Duration("took", time.Since(now)))
			return nil
		},
	}

	command.Flags().IntVarP(&f.Clusters, "clusters", "k", f.Clusters, "Number of clusters")
	command.Flags().IntVarP(&f.Round, "round", "i", f.Round, "Maximum number of assign/update rounds")
	command.Flags().Float64VarP(&f.Delta, "delta", "d", f.Delta, "Largest centroid coordinate shift still considered converged")
	command.Flags().StringVar(&f.Init, "init", f.Init, "Initial centroid selection [first,farthest,random]")
	command.Flags().Int64Var(&f.Seed, "seed", f.Seed, "Seed for --init=random")
	command.Flags().StringVar(&f.Empty, "empty", f.Empty, "Empty cluster policy [retain,reseed]")
	command.Flags().StringVar(&f.Delimiter, "delimiter", f.Delimiter, "Value delimiter (default any of ',', ';', tab, space)")
	command.Flags().BoolVar(&f.Header, "header", f.Header, "Skip the first data line")
	command.Flags().StringVarP(&f.Format, "format", "f", f.Format, "Output format [text,json]")
	command.Flags().StringVar(&f.Chart, "chart", f.Chart, "Write an HTML scatter chart of the first two columns")
	command.Flags().BoolVar(&f.Compare, "compare", f.Compare, "Also run muesli/kmeans and report the Rand index against it")
	command.Flags().StringVar(&f.Sweep, "sweep", f.Sweep, "Run every k in the inclusive range from:to and report a summary")
	command.Flags().IntVarP(&f.Concurrency, "concurrency", "t", f.Concurrency, "Maximum number of sweep runs at a time")
	command.PersistentFlags().Bool("debug", false, "Enable debug mode")
	command.Flags().SortFlags = false
	return &CLI{&command}
}

type flags struct {
	Clusters    int
	Round       int
	Delta       float64
	Init        string
	Seed        int64
	Empty       string
	Delimiter   string
	Header      bool
	Format      string
	Chart       string
	Compare     bool
	Sweep       string
	Concurrency int
}

func (f flags) options() ([]kmeans.Option, error) {
	if f.Format != "text" && f.Format != "json" {
		return nil, fmt.Errorf("unknown format %q [text,json]", f.Format)
	}
	ip, err := kmeans.ParseInitPolicy(f.Init)
	if err != nil {
		return nil, err
	}
	empty, err := kmeans.ParseEmptyPolicy(f.Empty)
	if err != nil {
		return nil, err
	}
	return []kmeans.Option{
		kmeans.WithMaxIterations(f.Round),
		kmeans.WithTolerance(f.Delta),
		kmeans.WithInit(ip),
		kmeans.WithSeed(f.Seed),
		kmeans.WithEmptyPolicy(empty),
	}, nil
}

func load(cmd *cobra.Command, path string, f flags) (*mat.Dense, error) {
	opts := dataset.Options{Header: f.Header}
	if f.Delimiter != "" {
		r, size := utf8.DecodeRuneInString(f.Delimiter)
		if size != len(f.Delimiter) {
			return nil, fmt.Errorf("delimiter %q must be a single character", f.Delimiter)
		}
		opts.Delimiter = r
	}

	if path == "-" {
		slog.Debug("Reading stdin")
		return dataset.Read(cmd.InOrStdin(), opts)
	}
	slog.Debug("Reading file", slog.String("path", path))
	return dataset.Load(path, opts)
}

func (cli *CLI) Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := cli.command.ExecuteContext(ctx); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}
