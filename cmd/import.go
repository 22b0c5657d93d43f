package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/smartcharts/coursetrack-engine/pkg/apperrors"
	"github.com/smartcharts/coursetrack-engine/pkg/config"
	"github.com/smartcharts/coursetrack-engine/pkg/services"
)

var (
	importLegacy       string
	importModern       string
	importTimeSpent    string
	importHierarchical string
	importStore        string
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import spreadsheet exports from the command line",
	Long: `Import runs the extraction and reconciliation pipeline against local
files and prints the resulting summary as JSON. With --store memory the
import is a dry run against an empty in-memory store.`,
	Args: cobra.NoArgs,
	RunE: runImport,
}

func init() {
	importCmd.Flags().StringVar(&importLegacy, "legacy", "", "Legacy course export workbook")
	importCmd.Flags().StringVar(&importModern, "modern", "", "Modern course export workbook")
	importCmd.Flags().StringVar(&importTimeSpent, "timespent", "", "Time-spent log workbook")
	importCmd.Flags().StringVar(&importHierarchical, "hierarchical", "", "Wrike-style hierarchical export workbook")
	importCmd.Flags().StringVar(&importStore, "store", "", "Store backend override: postgres or memory")
}

func runImport(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(Version)
	if err != nil {
		return err
	}
	if importStore != "" {
		cfg.Import.Store = importStore
	}

	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	paths := []struct {
		kind services.SourceKind
		path string
	}{
		{services.SourceKindLegacy, importLegacy},
		{services.SourceKindModern, importModern},
		{services.SourceKindTimeSpent, importTimeSpent},
		{services.SourceKindHierarchical, importHierarchical},
	}

	var files []services.InputFile
	for _, p := range paths {
		if p.path == "" {
			continue
		}
		f, err := os.Open(p.path)
		if err != nil {
			return fmt.Errorf("open %s: %w", p.path, err)
		}
		defer f.Close()
		files = append(files, services.InputFile{
			Kind:   p.kind,
			Name:   filepath.Base(p.path),
			Reader: f,
		})
	}
	if len(files) == 0 {
		return fmt.Errorf("%w: use --legacy, --modern, --timespent, or --hierarchical", apperrors.ErrNoInput)
	}

	ctx := cmd.Context()
	st, err := openStores(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer st.close()

	reconciler := services.NewReconciler(st.projects, cfg.Import.SourceHintCutoffYear, logger)
	importer := services.NewImportService(reconciler, st.entries, st.uploads, cfg.Import.EntryBatchSize, logger)

	input, fileErrors, guesses := services.BuildImportInput(files, logger)
	summary, err := importer.ImportBatch(ctx, input)
	if err != nil {
		return err
	}
	summary.FileErrors = fileErrors

	if guesses > 0 {
		summary.Warnings = append(summary.Warnings,
			fmt.Sprintf("%d hierarchical rows attributed by position rather than name", guesses))
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(summary)
}
