// Command converter converts bank statements (OFX/QFX or CSV exports) into
// CSV, QBO, QIF or XLSX files. Output goes to the artifact store unless an
// explicit path is given; expired artifacts are purged on every run.
package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/FACorreiaa/statement-converter/internal/domain/convert"
	"github.com/FACorreiaa/statement-converter/pkg/config"
	"github.com/FACorreiaa/statement-converter/pkg/money"
	"github.com/FACorreiaa/statement-converter/pkg/storage"
)

func main() {
	format := flag.String("format", "csv", "output format: csv, qbo, qif or xlsx")
	out := flag.String("o", "", "output path (default: save to the artifact store)")
	verbose := flag.Bool("v", false, "debug logging")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] <statement file>\n", filepath.Base(os.Args[0]))
		flag.PrintDefaults()
		os.Exit(2)
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	if err := run(flag.Arg(0), convert.Format(*format), *out, logger); err != nil {
		logger.Error("conversion failed", "error", err)
		os.Exit(1)
	}
}

func run(inputPath string, format convert.Format, outputPath string, logger *slog.Logger) error {
	cfg := config.Load()
	ctx := context.Background()

	input, err := os.ReadFile(inputPath)
	if err != nil {
		return fmt.Errorf("reading %s: %w", inputPath, err)
	}

	svc := convert.NewService(cfg.Export, logger)
	res, err := svc.Convert(ctx, input, format)
	if err != nil {
		return err
	}

	printSummary(res)

	if outputPath != "" {
		if err := os.WriteFile(outputPath, res.Output, 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", outputPath, err)
		}
		fmt.Println(outputPath)
		return nil
	}

	store, err := storage.NewLocalStore(cfg.Storage.Dir)
	if err != nil {
		return err
	}
	retention := time.Duration(cfg.Storage.RetentionHours) * time.Hour
	if purged, err := store.DeleteExpired(ctx, retention); err != nil {
		logger.Warn("artifact sweep failed", "error", err)
	} else if purged > 0 {
		logger.Debug("purged expired artifacts", "purged", purged)
	}

	art, err := store.Save(ctx, outputName(inputPath, format), string(format), bytes.NewReader(res.Output))
	if err != nil {
		return fmt.Errorf("storing artifact: %w", err)
	}
	fmt.Println(filepath.Join(cfg.Storage.Dir, art.Path))
	return nil
}

func printSummary(res *convert.Result) {
	fmt.Fprintf(os.Stderr, "%d transactions, credits %s, debits %s, net %s\n",
		res.Summary.TransactionCount,
		money.Format(res.Summary.TotalCredits),
		money.Format(res.Summary.TotalDebits),
		money.Format(res.Summary.NetChange))
}

func outputName(inputPath string, format convert.Format) string {
	base := filepath.Base(inputPath)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return stem + "." + string(format)
}
