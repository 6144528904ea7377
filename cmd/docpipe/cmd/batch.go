package cmd

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/MeKo-Tech/docpipe/internal/batch"
	"github.com/MeKo-Tech/docpipe/internal/converter"
	"github.com/MeKo-Tech/docpipe/internal/document"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// batchCmd represents the batch command for converting many documents.
var batchCmd = &cobra.Command{
	Use:   "batch [paths...]",
	Short: "Convert many documents from files and directories",
	Long: `Convert multiple documents in one run. Directory arguments are scanned
for convertible files; each converted document is written to the output
directory under its own base name.

Examples:
  docpipe batch ./inbox --recursive --output-dir ./converted
  docpipe batch a.pdf b.html c.csv --output-dir out --format json
  docpipe batch scans/ --pattern '*.png' --concurrency 4`,
	Args:         cobra.MinimumNArgs(1),
	SilenceUsage: true,
	RunE:         runBatchCommand,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().StringP("output-dir", "d", ".", "directory for converted documents")
	batchCmd.Flags().StringP("format", "f", "markdown", "output format (markdown, text, json)")
	batchCmd.Flags().BoolP("recursive", "r", false, "scan directories recursively")
	batchCmd.Flags().StringSlice("pattern", nil, "include only files matching these glob patterns")
	batchCmd.Flags().StringSlice("exclude", nil, "exclude files matching these glob patterns")
	batchCmd.Flags().Bool("continue-on-error", true, "keep converting after a failed document")
	batchCmd.Flags().Int("batch-size", 0, "documents drawn from the input per batch")
	batchCmd.Flags().Int("concurrency", 0, "parallel conversions per batch")

	_ = viper.BindPFlag("batch.output_dir", batchCmd.Flags().Lookup("output-dir"))
	_ = viper.BindPFlag("batch.recursive", batchCmd.Flags().Lookup("recursive"))
	_ = viper.BindPFlag("batch.continue_on_error", batchCmd.Flags().Lookup("continue-on-error"))
	_ = viper.BindPFlag("output.format", batchCmd.Flags().Lookup("format"))
	_ = viper.BindPFlag("convert.batch_size", batchCmd.Flags().Lookup("batch-size"))
	_ = viper.BindPFlag("convert.batch_concurrency", batchCmd.Flags().Lookup("concurrency"))
}

func runBatchCommand(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()
	include, _ := cmd.Flags().GetStringSlice("pattern")
	exclude, _ := cmd.Flags().GetStringSlice("exclude")

	convCfg, err := cfg.ToConverterConfig()
	if err != nil {
		return err
	}

	files, err := batch.Discover(args, batch.Options{
		Recursive: cfg.Batch.Recursive,
		Include:   include,
		Exclude:   exclude,
		Formats:   convCfg.AllowedFormats,
	})
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no convertible files found")
	}
	slog.Info("batch conversion starting", "files", len(files))

	conv := converter.New(convCfg)
	defer func() { _ = conv.Close() }()

	opts := cfg.ToConvertOptions()
	opts.RaiseOnError = !cfg.Batch.ContinueOnError

	start := time.Now()
	succeeded, failed := 0, 0
	for res, err := range conv.ConvertAll(pathSources(files), opts) {
		if err != nil {
			return err
		}
		if !res.Status.Usable() {
			slog.Warn("document not converted", "file", res.Input.File, "status", string(res.Status))
			failed++
			continue
		}
		rendered, err := renderResult(res, cfg.Output.Format)
		if err != nil {
			slog.Warn("skipping unusable result", "file", res.Input.File, "error", err)
			failed++
			continue
		}
		outPath, err := writeResultFile(cfg.Batch.OutputDir, res.Input.File, rendered, cfg.Output.Format)
		if err != nil {
			return err
		}
		slog.Info("document converted",
			"file", res.Input.File, "output", outPath, "status", string(res.Status))
		succeeded++
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Converted %d/%d documents in %s (%d failed)\n",
		succeeded, len(files), time.Since(start).Round(time.Millisecond), failed)
	if failed > 0 && !cfg.Batch.ContinueOnError {
		return document.NewConversionError("", "%d document(s) failed", failed)
	}
	return nil
}
