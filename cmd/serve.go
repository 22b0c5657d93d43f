package cmd

import (
	"net/http"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/smartcharts/coursetrack-engine/pkg/config"
	"github.com/smartcharts/coursetrack-engine/pkg/handlers"
	"github.com/smartcharts/coursetrack-engine/pkg/llm"
	"github.com/smartcharts/coursetrack-engine/pkg/middleware"
	"github.com/smartcharts/coursetrack-engine/pkg/services"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API server",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(Version)
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx := cmd.Context()
	st, err := openStores(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer st.close()

	reconciler := services.NewReconciler(st.projects, cfg.Import.SourceHintCutoffYear, logger)
	importer := services.NewImportService(reconciler, st.entries, st.uploads, cfg.Import.EntryBatchSize, logger)

	var insights services.InsightsService
	if cfg.AI.IsAvailable() {
		client, err := llm.NewClient(&cfg.AI, logger)
		if err != nil {
			return err
		}
		insights = services.NewInsightsService(client, st.projects, st.entries, logger)
	} else {
		logger.Info("AI insights not configured; chat endpoint disabled")
	}

	mux := http.NewServeMux()
	handlers.NewHealthHandler(cfg, logger).RegisterRoutes(mux)
	handlers.NewImportHandler(importer, logger).RegisterRoutes(mux)
	handlers.NewDataHandler(st.projects, st.entries, st.uploads, logger).RegisterRoutes(mux)
	handlers.NewInsightsHandler(insights, logger).RegisterRoutes(mux)

	handler := middleware.RequestLogger(logger)(mux)

	addr := cfg.BindAddr + ":" + cfg.Port
	logger.Info("Starting coursetrack-engine",
		zap.String("addr", addr),
		zap.String("version", cfg.Version),
		zap.String("store", cfg.Import.Store))

	return http.ListenAndServe(addr, handler)
}
