package cmd

import (
	"fmt"
	"iter"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/MeKo-Tech/docpipe/internal/backend"
	"github.com/MeKo-Tech/docpipe/internal/config"
	"github.com/MeKo-Tech/docpipe/internal/converter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// convertCmd represents the convert command.
var convertCmd = &cobra.Command{
	Use:   "convert [files...]",
	Short: "Convert documents into a structured representation",
	Long: `Convert one or more documents into a unified structured document and
export it as markdown, plain text or JSON.

Supported formats: PDF, PNG, JPEG, GIF, BMP, TIFF, WebP, HTML, Markdown, CSV

Examples:
  docpipe convert report.pdf
  docpipe convert scan.png --ocr-languages deu,eng
  docpipe convert page.html notes.md --format json --output results.json
  docpipe convert big.pdf --pages 10-25 --lenient`,
	Args:         cobra.MinimumNArgs(1),
	SilenceUsage: true,
	RunE:         runConvertCommand,
}

func init() {
	rootCmd.AddCommand(convertCmd)

	convertCmd.Flags().StringP("format", "f", "markdown", "output format (markdown, text, json)")
	convertCmd.Flags().StringP("output", "o", "", "output file (default stdout)")

	convertCmd.Flags().Bool("ocr", true, "run OCR on pages without programmatic text")
	convertCmd.Flags().StringSlice("ocr-languages", []string{"auto"},
		"OCR languages (ISO codes or tesseract profile names; 'auto' resolves per region)")
	convertCmd.Flags().String("ocr-data-path", "", "tessdata directory override")
	convertCmd.Flags().Bool("full-page-ocr", false, "OCR whole pages even when programmatic text exists")
	convertCmd.Flags().Bool("tables", true, "recover table structure")
	convertCmd.Flags().Bool("page-images", false, "keep rendered page images on the result")
	convertCmd.Flags().Bool("picture-images", false, "crop picture elements into the document")
	convertCmd.Flags().Float64("images-scale", 1.0, "scale factor for materialized images")

	convertCmd.Flags().Bool("enrich-code", false, "detect programming languages of code blocks")
	convertCmd.Flags().Bool("enrich-formula", false, "relabel formula-like text items")
	convertCmd.Flags().Bool("classify-pictures", false, "classify picture items")
	convertCmd.Flags().Bool("describe-pictures", false, "attach descriptions to picture items")

	convertCmd.Flags().Int("max-pages", 0, "maximum pages to process per document (0 = no limit)")
	convertCmd.Flags().Int64("max-file-size-mb", 0, "maximum input size in MB (0 = no limit)")
	convertCmd.Flags().String("pages", "", "inclusive page range to process, e.g. 3-7")
	convertCmd.Flags().Bool("lenient", false, "continue after failed documents instead of aborting")
	convertCmd.Flags().Int("batch-size", 0, "documents drawn from the input per batch")
	convertCmd.Flags().Int("concurrency", 0, "parallel conversions per batch")

	_ = viper.BindPFlag("output.format", convertCmd.Flags().Lookup("format"))
	_ = viper.BindPFlag("output.file", convertCmd.Flags().Lookup("output"))
	_ = viper.BindPFlag("pipeline.ocr.enabled", convertCmd.Flags().Lookup("ocr"))
	_ = viper.BindPFlag("pipeline.ocr.languages", convertCmd.Flags().Lookup("ocr-languages"))
	_ = viper.BindPFlag("pipeline.ocr.data_path", convertCmd.Flags().Lookup("ocr-data-path"))
	_ = viper.BindPFlag("pipeline.ocr.full_page", convertCmd.Flags().Lookup("full-page-ocr"))
	_ = viper.BindPFlag("pipeline.table_structure", convertCmd.Flags().Lookup("tables"))
	_ = viper.BindPFlag("pipeline.page_images", convertCmd.Flags().Lookup("page-images"))
	_ = viper.BindPFlag("pipeline.picture_images", convertCmd.Flags().Lookup("picture-images"))
	_ = viper.BindPFlag("pipeline.images_scale", convertCmd.Flags().Lookup("images-scale"))
	_ = viper.BindPFlag("pipeline.enrich.code", convertCmd.Flags().Lookup("enrich-code"))
	_ = viper.BindPFlag("pipeline.enrich.formula", convertCmd.Flags().Lookup("enrich-formula"))
	_ = viper.BindPFlag("pipeline.enrich.picture_classification", convertCmd.Flags().Lookup("classify-pictures"))
	_ = viper.BindPFlag("pipeline.enrich.picture_description", convertCmd.Flags().Lookup("describe-pictures"))
	_ = viper.BindPFlag("convert.max_pages", convertCmd.Flags().Lookup("max-pages"))
	_ = viper.BindPFlag("convert.max_file_size_mb", convertCmd.Flags().Lookup("max-file-size-mb"))
	_ = viper.BindPFlag("convert.batch_size", convertCmd.Flags().Lookup("batch-size"))
	_ = viper.BindPFlag("convert.batch_concurrency", convertCmd.Flags().Lookup("concurrency"))
}

func runConvertCommand(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()
	if err := applyPageRangeFlag(cmd, cfg); err != nil {
		return err
	}
	if lenient, _ := cmd.Flags().GetBool("lenient"); lenient {
		cfg.Convert.RaiseOnError = false
	}

	convCfg, err := cfg.ToConverterConfig()
	if err != nil {
		return err
	}
	conv := converter.New(convCfg)
	defer func() { _ = conv.Close() }()

	var rendered strings.Builder
	failures := 0
	for res, err := range conv.ConvertAll(pathSources(args), cfg.ToConvertOptions()) {
		if err != nil {
			return err
		}
		out, err := renderResult(res, cfg.Output.Format)
		if err != nil {
			slog.Warn("skipping unusable result", "file", res.Input.File, "error", err)
			failures++
			continue
		}
		rendered.WriteString(out)
	}

	if cfg.Output.File != "" {
		if err := os.WriteFile(cfg.Output.File, []byte(rendered.String()), 0o600); err != nil {
			return fmt.Errorf("write output file: %w", err)
		}
	} else {
		fmt.Fprint(cmd.OutOrStdout(), rendered.String())
	}

	if failures > 0 {
		return fmt.Errorf("%d of %d document(s) produced no output", failures, len(args))
	}
	return nil
}

// applyPageRangeFlag parses the --pages N-M flag into the config.
func applyPageRangeFlag(cmd *cobra.Command, cfg *config.Config) error {
	spec, _ := cmd.Flags().GetString("pages")
	if spec == "" {
		return nil
	}
	start, end, ok := strings.Cut(spec, "-")
	if !ok {
		return fmt.Errorf("invalid page range %q (expected N-M)", spec)
	}
	var err error
	if cfg.Convert.PageStart, err = strconv.Atoi(strings.TrimSpace(start)); err != nil {
		return fmt.Errorf("invalid page range %q: %w", spec, err)
	}
	if cfg.Convert.PageEnd, err = strconv.Atoi(strings.TrimSpace(end)); err != nil {
		return fmt.Errorf("invalid page range %q: %w", spec, err)
	}
	if cfg.Convert.PageStart < 1 || cfg.Convert.PageEnd < cfg.Convert.PageStart {
		return fmt.Errorf("invalid page range %q", spec)
	}
	return nil
}

// pathSources turns file path arguments into a lazy source stream.
func pathSources(paths []string) iter.Seq[backend.Source] {
	return func(yield func(backend.Source) bool) {
		for _, p := range paths {
			if !yield(backend.Source{Name: p, Path: p}) {
				return
			}
		}
	}
}
