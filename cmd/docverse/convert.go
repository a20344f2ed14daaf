// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/docverse/internal/cloud"
	"github.com/pdiddy/docverse/internal/convert"
	"github.com/pdiddy/docverse/internal/engine"
	"github.com/pdiddy/docverse/pkg/types"
)

var convertCmd = &cobra.Command{
	Use:   "convert <operation> <files...>",
	Short: "Run one conversion without the HTTP server",
	Long: `Convert runs an operation on local files and writes the results into the
output directory. Operations:

  office-to-pdf   office document to PDF (--format word|excel|powerpoint)
  pdf-to-office   PDF to an office document (--format word|excel|powerpoint)
  compress        shrink a PDF (--quality low|medium|high, --dpi)
  ocr             make scanned PDFs or images searchable (--language)
  merge           concatenate PDFs in argument order
  unlock          remove a PDF password (--password)

Per-file operations process every argument independently; merge and ocr
combine all arguments into one output. Existing outputs are skipped unless
--force is given.`,
	Args: cobra.MinimumNArgs(2),
	RunE: runConvert,
}

func init() {
	convertCmd.Flags().String("engine", string(engine.ModeAuto), "engine: auto, cloud, or local")
	convertCmd.Flags().String("format", "", "office format family: word, excel, powerpoint")
	convertCmd.Flags().String("language", "", "OCR language code (e.g. en, pt-BR)")
	convertCmd.Flags().String("quality", "", "compression quality: low, medium, high")
	convertCmd.Flags().Int("dpi", 0, "compression image resolution (0 = tier default)")
	convertCmd.Flags().String("password", "", "password for unlock")
	convertCmd.Flags().StringP("output", "o", ".", "output directory")
	convertCmd.Flags().Bool("force", false, "overwrite existing outputs")

	rootCmd.AddCommand(convertCmd)
}

func runConvert(cmd *cobra.Command, args []string) error {
	op, err := parseOperation(args[0])
	if err != nil {
		return err
	}
	engineFlag, _ := cmd.Flags().GetString("engine")
	mode, err := parseMode(engineFlag)
	if err != nil {
		return err
	}
	if mode == engine.ModeCloud && !cfg.Cloud.Ready() {
		return fmt.Errorf("%w: --engine cloud needs cloud.enabled and credentials", cloud.ErrNotConfigured)
	}

	files, err := readInputs(args[1:])
	if err != nil {
		return err
	}

	format, _ := cmd.Flags().GetString("format")
	language, _ := cmd.Flags().GetString("language")
	quality, _ := cmd.Flags().GetString("quality")
	dpi, _ := cmd.Flags().GetInt("dpi")
	password, _ := cmd.Flags().GetString("password")
	outDir, _ := cmd.Flags().GetString("output")
	force, _ := cmd.Flags().GetBool("force")

	req := types.ConversionRequest{
		Operation: op,
		Files:     files,
		Format:    types.OfficeFormat(strings.ToLower(format)),
		Language:  language,
		Quality:   types.QualityTier(strings.ToLower(quality)),
		DPI:       dpi,
		Password:  password,
	}

	svc, _, err := newService()
	if err != nil {
		return err
	}
	svc = svc.WithMode(mode)

	out := cmd.OutOrStdout()
	if convert.PerFile(op) {
		res := svc.RunBatch(cmd.Context(), log, req, outDir, force, out)
		if res.HasFailures() {
			return fmt.Errorf("%d of %d files failed", res.Failed, res.Total())
		}
		return nil
	}

	res, err := svc.Run(cmd.Context(), log, req)
	if err != nil {
		return err
	}
	path, written, err := writeOutput(outDir, res, force)
	if err != nil {
		return err
	}
	if !written {
		fmt.Fprintf(out, "skipped: %s already exists\n", path)
		return nil
	}
	fmt.Fprintf(out, "converted: %d files -> %s (%s)\n", len(files), path, res.Engine)
	return nil
}

func parseOperation(s string) (types.Operation, error) {
	for _, op := range types.Operations {
		if string(op) == s {
			return op, nil
		}
	}
	names := make([]string, len(types.Operations))
	for i, op := range types.Operations {
		names[i] = string(op)
	}
	return "", fmt.Errorf("unknown operation %q (want one of: %s)", s, strings.Join(names, ", "))
}

func parseMode(s string) (engine.Mode, error) {
	switch m := engine.Mode(strings.ToLower(s)); m {
	case engine.ModeAuto, engine.ModeCloud, engine.ModeLocal:
		return m, nil
	}
	return "", fmt.Errorf("unknown engine %q (want auto, cloud, or local)", s)
}

func readInputs(paths []string) ([]types.InputFile, error) {
	files := make([]types.InputFile, 0, len(paths))
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("reading input: %w", err)
		}
		files = append(files, types.InputFile{Name: filepath.Base(p), Data: data})
	}
	return files, nil
}

// writeOutput stores res in outDir under its own filename. It reports
// whether the file was written; an existing file is kept unless force is set.
func writeOutput(outDir string, res types.ConversionResult, force bool) (string, bool, error) {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", false, fmt.Errorf("creating output directory: %w", err)
	}
	path := filepath.Join(outDir, res.Filename)
	if _, err := os.Stat(path); err == nil && !force {
		return path, false, nil
	}
	if err := os.WriteFile(path, res.Data, 0o644); err != nil {
		return "", false, fmt.Errorf("writing output: %w", err)
	}
	return path, true, nil
}
