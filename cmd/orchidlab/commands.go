package main

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"orchidlab/internal/blob"
	"orchidlab/internal/config"
	"orchidlab/internal/core"
	"orchidlab/internal/reports"
)

// app holds the resources opened for a single invocation.
type app struct {
	configPath string

	cfg      *config.Config
	logger   *zap.Logger
	store    core.PersistentStore
	svc      *core.Service
	registry *prometheus.Registry
}

func (a *app) open() error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	logger, err := core.BuildZapLogger(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return err
	}
	store, err := core.OpenPersistentStore(cfg.StorageOptions(), nil)
	if err != nil {
		return err
	}

	opts := append(cfg.ServiceOptions(),
		core.WithLogger(core.NewZapLogger(logger)),
		core.WithAuditRecorder(core.LogAuditRecorder{Logger: core.NewZapLogger(logger.Named("audit"))}),
	)
	if cfg.Metrics.Enabled {
		a.registry = prometheus.NewRegistry()
		opts = append(opts, core.WithMetricsRecorder(core.NewPrometheusMetricsRecorder(a.registry, cfg.Metrics.Namespace)))
	}

	a.cfg = cfg
	a.logger = logger
	a.store = store
	a.svc = core.NewService(store, opts...)
	logger.Debug("store opened", zap.String("driver", cfg.Storage.Driver))
	return nil
}

// close flushes metrics to w and releases the store.
func (a *app) close(w io.Writer) {
	if a.registry != nil {
		if families, err := a.registry.Gather(); err == nil {
			for _, mf := range families {
				_, _ = expfmt.MetricFamilyToText(w, mf)
			}
		}
	}
	if closer, ok := a.store.(io.Closer); ok {
		if err := closer.Close(); err != nil && a.logger != nil {
			a.logger.Error("close store", zap.Error(err))
		}
	}
	if a.logger != nil {
		_ = a.logger.Sync()
	}
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:          "orchidlab",
		Short:        "Orchid laboratory records, statistics and reports",
		SilenceUsage: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return a.open()
		},
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "config file (default orchidlab.yaml in . or ./config)")

	root.AddCommand(
		newStatsCmd(a),
		newStatusCmd(a),
		newReportCmd(a),
		newConfirmCmd(a),
	)
	return root
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newStatsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print pollination and germination statistics as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ds, err := a.svc.Dataset(cmd.Context())
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), reports.Build(ds, time.Now()))
		},
	}
}

type statusOutput struct {
	Date       string                 `json:"date"`
	Maturation []core.MaturationEntry `json:"maturation"`
	Transplant []core.Recommendation  `json:"transplant"`
}

func newStatusCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Print maturation statuses and transplant recommendations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			maturation, err := a.svc.MaturationStatuses(cmd.Context())
			if err != nil {
				return err
			}
			transplant, err := a.svc.TransplantRecommendations(cmd.Context())
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), statusOutput{
				Date:       a.svc.Today().Format(time.DateOnly),
				Maturation: maturation,
				Transplant: transplant,
			})
		},
	}
}

func newReportCmd(a *app) *cobra.Command {
	var (
		formats     []string
		requestedBy string
	)
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Render a statistics report into blob storage",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := blob.Open(cmd.Context(), a.cfg.BlobOptions())
			if err != nil {
				return err
			}
			worker := reports.NewWorker(a.svc, store, reports.WithLogger(a.logger.Named("reports")))
			req := reports.Request{RequestedBy: requestedBy}
			for _, f := range formats {
				req.Formats = append(req.Formats, reports.Format(f))
			}
			job, err := worker.Run(cmd.Context(), req)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), job)
		},
	}
	cmd.Flags().StringSliceVar(&formats, "format", nil, "artifact formats (json, csv); defaults to both")
	cmd.Flags().StringVar(&requestedBy, "requested-by", "", "user recorded on the report job")
	return cmd
}

func newConfirmCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "confirm",
		Short: "Confirm capsule maturation or seedling transplant",
	}

	var maturationFailed bool
	maturation := &cobra.Command{
		Use:   "maturation POLLINATION_ID",
		Short: "Confirm that a pollination's capsules matured",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			record, res, err := a.svc.ConfirmMaturation(cmd.Context(), args[0], !maturationFailed)
			if err != nil {
				return reportViolations(cmd, res, err)
			}
			return writeJSON(cmd.OutOrStdout(), record)
		},
	}
	maturation.Flags().BoolVar(&maturationFailed, "failed", false, "record the maturation as unsuccessful")

	var (
		transplantFailed bool
		transplantDate   string
	)
	transplant := &cobra.Command{
		Use:   "transplant GERMINATION_ID",
		Short: "Confirm that a germination batch was transplanted",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var date *time.Time
			if transplantDate != "" {
				parsed, err := time.Parse(time.DateOnly, transplantDate)
				if err != nil {
					return fmt.Errorf("parse --date: %w", err)
				}
				date = &parsed
			}
			record, res, err := a.svc.ConfirmTransplant(cmd.Context(), args[0], date, !transplantFailed)
			if err != nil {
				return reportViolations(cmd, res, err)
			}
			return writeJSON(cmd.OutOrStdout(), record)
		},
	}
	transplant.Flags().BoolVar(&transplantFailed, "failed", false, "record the transplant as unsuccessful")
	transplant.Flags().StringVar(&transplantDate, "date", "", "transplant date (YYYY-MM-DD); defaults to today")

	cmd.AddCommand(maturation, transplant)
	return cmd
}

// reportViolations prints every violation before returning err.
func reportViolations(cmd *cobra.Command, res core.Result, err error) error {
	for _, v := range res.Violations {
		fmt.Fprintf(cmd.ErrOrStderr(), "%s [%s] %s\n", v.Severity, v.Rule, v.Message)
	}
	return err
}
