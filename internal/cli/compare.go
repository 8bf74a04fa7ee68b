package cli

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/haskel/molcmp/internal/cli/tui"
	"github.com/haskel/molcmp/internal/compare"
	"github.com/haskel/molcmp/internal/config"
	"github.com/haskel/molcmp/internal/dataset"
	"github.com/haskel/molcmp/internal/logger"
	"github.com/haskel/molcmp/internal/record"
	"github.com/haskel/molcmp/internal/scheduler"
	"github.com/haskel/molcmp/internal/server"
	"github.com/haskel/molcmp/internal/sysinfo"
	"github.com/haskel/molcmp/internal/task"
)

var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Run a pairwise comparison session",
	Long: `Compare two record sources pair by pair and build the aggregate
dataset with one histogram per selected feature.

Records are paired positionally: the i-th record of source A with the
i-th record of source B. Records left over on the longer source are
counted as unpaired and skipped.`,
	Example: `  molcmp compare --a before.smi --b after.smi
  molcmp compare --a before.sdf --format-a sdf --b after.sdf --format-b sdf
  molcmp compare --a a.smi --b b.smi --features tanimoto,atom_count_diff --tui`,
	RunE: runCompare,
}

var (
	comparePathA    string
	comparePathB    string
	compareFormatA  string
	compareFormatB  string
	compareFeatures []string
	compareWorkers  int
	compareBins     int
	compareOut      string
	compareStrip    bool
	compareTUI      bool
	compareServe    bool
)

func init() {
	registerCompareFlags()
	rootCmd.AddCommand(compareCmd)
}

func registerCompareFlags() {
	compareCmd.Flags().StringVar(&comparePathA, "a", "", "first record source path")
	compareCmd.Flags().StringVar(&comparePathB, "b", "", "second record source path")
	compareCmd.Flags().StringVar(&compareFormatA, "format-a", "", "first source format (smiles|sdf)")
	compareCmd.Flags().StringVar(&compareFormatB, "format-b", "", "second source format (smiles|sdf)")
	compareCmd.Flags().StringSliceVar(&compareFeatures, "features", nil, "features to compute")
	compareCmd.Flags().IntVar(&compareWorkers, "workers", 0, "worker pool size (0 = CPU cores)")
	compareCmd.Flags().IntVar(&compareBins, "bins", 0, "default histogram bin count")
	compareCmd.Flags().StringVarP(&compareOut, "out", "o", "", "dataset output path")
	compareCmd.Flags().BoolVar(&compareStrip, "strip-records", false, "drop raw records from the saved dataset")
	compareCmd.Flags().BoolVar(&compareTUI, "tui", false, "show a live progress view")
	compareCmd.Flags().BoolVar(&compareServe, "serve", false, "serve /status and /metrics during the run")
}

func runCompare(cmd *cobra.Command, _ []string) error {
	cfg := config.LoadOrDefault(cfgFile)
	applyCompareFlags(cmd, cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}
	if cfg.Inputs.A.Path == "" || cfg.Inputs.B.Path == "" {
		return fmt.Errorf("both record sources are required (--a and --b)")
	}

	level := cfg.Logging.Level
	if verbose {
		level = "debug"
	}
	log := logger.New(level, cfg.Logging.Format)
	sysinfo.LogResources(log)

	features, err := compare.ParseFeatures(cfg.Features)
	if err != nil {
		return err
	}

	tasks, unpaired, err := produceTasks(cfg, features)
	if err != nil {
		return err
	}
	if unpaired > 0 {
		log.Warn("unpaired records skipped", "count", unpaired)
	}

	workers := cfg.Scheduler.Workers
	if workers < 1 {
		workers = sysinfo.DefaultWorkers()
	}

	sched := scheduler.New(compare.NewDescriptor(), log)

	done := make(chan sessionOutcome, 1)
	var listeners scheduler.Listeners
	listeners = append(listeners, scheduler.Callbacks{
		SessionComplete: func(d *dataset.Dataset) { done <- sessionOutcome{ds: d} },
		SessionFailed:   func(reason string) { done <- sessionOutcome{reason: reason} },
	})

	var events *tui.Forwarder
	if compareTUI {
		events = tui.NewForwarder()
		listeners = append(listeners, events)
	} else {
		listeners = append(listeners, progressLogger{log: log})
	}

	var srv *server.Server
	if cfg.Server.Enabled {
		metrics := server.NewMetrics(sched)
		listeners = append(listeners, metrics)
		srv = server.New(cfg.Server, sched, metrics, log, Version)
		go func() {
			if err := srv.Start(); err != nil && err != http.ErrServerClosed {
				log.Error("status server failed", "error", err)
			}
		}()
		defer srv.Shutdown(context.Background())
	}

	for _, l := range listeners {
		sched.AddListener(l)
	}
	listeners.OnUnpairedInputs(unpaired)

	opts := scheduler.StartOptions{
		Workers:     workers,
		SourceA:     cfg.Inputs.A.Path,
		SourceB:     cfg.Inputs.B.Path,
		DefaultBins: cfg.Histogram.Bins,
	}
	if err := sched.Start(tasks, opts); err != nil {
		return err
	}

	if compareTUI {
		if err := tui.Run(tui.Config{
			Title:    fmt.Sprintf("molcmp %s vs %s", cfg.Inputs.A.Path, cfg.Inputs.B.Path),
			Total:    len(tasks),
			Unpaired: unpaired,
			Events:   events.Events(),
			Cancel:   sched.Cancel,
			Stats:    sched.Stats,
		}); err != nil {
			return err
		}
	} else {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		select {
		case <-ctx.Done():
			sched.Cancel()
			log.Info("comparison cancelled")
			return nil
		case o := <-done:
			if o.ds == nil {
				return fmt.Errorf("session failed: %s", o.reason)
			}
			return saveAndSummarize(cfg, o.ds, unpaired, log)
		}
	}

	// TUI path: the session either finished or was cancelled.
	select {
	case o := <-done:
		if o.ds == nil {
			return fmt.Errorf("session failed: %s", o.reason)
		}
		return saveAndSummarize(cfg, o.ds, unpaired, log)
	default:
		log.Info("comparison cancelled")
		return nil
	}
}

type sessionOutcome struct {
	ds     *dataset.Dataset
	reason string
}

// progressLogger mirrors session events into the log.
type progressLogger struct {
	scheduler.NopListener
	log *slog.Logger
}

func (p progressLogger) OnProgress(fraction float64) {
	p.log.Info("progress", "fraction", fmt.Sprintf("%.2f", fraction))
}

func applyCompareFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("a") {
		cfg.Inputs.A.Path = comparePathA
	}
	if flags.Changed("b") {
		cfg.Inputs.B.Path = comparePathB
	}
	if flags.Changed("format-a") {
		cfg.Inputs.A.Format = compareFormatA
	}
	if flags.Changed("format-b") {
		cfg.Inputs.B.Format = compareFormatB
	}
	if flags.Changed("features") {
		cfg.Features = compareFeatures
	}
	if flags.Changed("workers") {
		cfg.Scheduler.Workers = compareWorkers
	}
	if flags.Changed("bins") {
		cfg.Histogram.Bins = compareBins
	}
	if flags.Changed("out") {
		cfg.Output.Path = compareOut
	}
	if flags.Changed("strip-records") {
		cfg.Output.StripRecords = compareStrip
	}
	if compareServe {
		cfg.Server.Enabled = true
	}
}

// produceTasks opens both sources and pairs them into tasks.
func produceTasks(cfg *config.Config, features compare.FeatureMask) ([]*task.Task, int, error) {
	formatA, err := record.ParseFormat(cfg.Inputs.A.Format)
	if err != nil {
		return nil, 0, err
	}
	formatB, err := record.ParseFormat(cfg.Inputs.B.Format)
	if err != nil {
		return nil, 0, err
	}

	fileA, err := os.Open(cfg.Inputs.A.Path)
	if err != nil {
		return nil, 0, fmt.Errorf("source a: %w", err)
	}
	defer fileA.Close()

	fileB, err := os.Open(cfg.Inputs.B.Path)
	if err != nil {
		return nil, 0, fmt.Errorf("source b: %w", err)
	}
	defer fileB.Close()

	readerA, err := record.NewReader(fileA, formatA)
	if err != nil {
		return nil, 0, err
	}
	readerB, err := record.NewReader(fileB, formatB)
	if err != nil {
		return nil, 0, err
	}

	return record.NewPairProducer(readerA, readerB, features).Produce()
}

func saveAndSummarize(cfg *config.Config, ds *dataset.Dataset, unpaired int, log *slog.Logger) error {
	if cfg.Output.Path != "" {
		if err := dataset.Save(ds, cfg.Output.Path, dataset.SaveOptions{StripRecords: cfg.Output.StripRecords}); err != nil {
			return fmt.Errorf("failed to save dataset: %w", err)
		}
		log.Info("dataset saved", "path", cfg.Output.Path, "results", len(ds.Results))
	}

	fmt.Println(renderSummary(ds, unpaired))
	return nil
}
