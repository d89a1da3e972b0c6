package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"text/tabwriter"
	"time"

	"github.com/wadjakorntonsri/tinylink/pkg/app"
	"github.com/wadjakorntonsri/tinylink/pkg/config"
	"github.com/wadjakorntonsri/tinylink/pkg/core/domain"
	"github.com/wadjakorntonsri/tinylink/pkg/core/services"
)

const usage = "expected 'export', 'import', 'list' or 'stats' subcommands"

func main() {
	os.Exit(realMain(os.Args[1:], os.Stdout, os.Stderr))
}

// realMain returns the process exit code so deferred cleanup always runs
func realMain(args []string, stdout, stderr io.Writer) int {
	if len(args) < 1 {
		fmt.Fprintln(stderr, usage)
		return 1
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(stderr, "Failed to load config: %v\n", err)
		return 1
	}
	logger, closeLog := app.NewLogger(cfg, stderr)
	defer closeLog.Close()

	ctx := context.Background()
	store, err := app.OpenStore(ctx, cfg)
	if err != nil {
		logger.Error("failed to open store", slog.String("error", err.Error()))
		return 1
	}
	defer store.Close()

	svc := app.NewLinkService(cfg, store, nil, logger)
	svc.Load(ctx)

	if err := run(ctx, svc, args, stdout); err != nil {
		logger.Error("command failed", slog.String("command", args[0]), slog.String("error", err.Error()))
		return 1
	}
	return 0
}

func run(ctx context.Context, svc *services.LinkService, args []string, out io.Writer) error {
	switch args[0] {
	case "export":
		exportCmd := flag.NewFlagSet("export", flag.ContinueOnError)
		if err := exportCmd.Parse(args[1:]); err != nil {
			return err
		}
		return doExport(ctx, svc, out)
	case "import":
		importCmd := flag.NewFlagSet("import", flag.ContinueOnError)
		importFile := importCmd.String("file", "", "JSON file to import")
		if err := importCmd.Parse(args[1:]); err != nil {
			return err
		}
		if *importFile == "" {
			importCmd.PrintDefaults()
			return fmt.Errorf("import: -file is required")
		}
		return doImport(ctx, svc, *importFile, out)
	case "list":
		return doList(ctx, svc, out)
	case "stats":
		statsCmd := flag.NewFlagSet("stats", flag.ContinueOnError)
		code := statsCmd.String("code", "", "short code to inspect")
		if err := statsCmd.Parse(args[1:]); err != nil {
			return err
		}
		if *code == "" {
			statsCmd.PrintDefaults()
			return fmt.Errorf("stats: -code is required")
		}
		return doStats(ctx, svc, *code, out)
	default:
		return fmt.Errorf("%s", usage)
	}
}

func doExport(ctx context.Context, svc *services.LinkService, out io.Writer) error {
	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(svc.Export(ctx)); err != nil {
		return fmt.Errorf("encode failed: %w", err)
	}
	return nil
}

func doImport(ctx context.Context, svc *services.LinkService, filename string, out io.Writer) error {
	file, err := os.Open(filename)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	var snap domain.Snapshot
	if err := json.NewDecoder(file).Decode(&snap); err != nil {
		return fmt.Errorf("decode failed: %w", err)
	}

	imported, skipped, err := svc.Import(ctx, snap)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Imported %d links, skipped %d\n", imported, skipped)
	return nil
}

func doList(ctx context.Context, svc *services.LinkService, out io.Writer) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "CODE\tSTATUS\tEXPIRES\tURL")
	for _, l := range svc.ListLinks(ctx) {
		status := "active"
		if svc.IsExpired(l) {
			status = "expired"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", l.ShortCode, status, l.ExpiresAt().Format(time.RFC3339), l.OriginalURL)
	}
	return tw.Flush()
}

func doStats(ctx context.Context, svc *services.LinkService, code string, out io.Writer) error {
	clicks, summary := svc.GetLinkStats(ctx, code)
	fmt.Fprintf(out, "%s: %d clicks\n", code, summary.TotalClicks)
	for _, c := range clicks {
		fmt.Fprintf(out, "  %s  %s  %s\n", c.Timestamp.Format(time.RFC3339), c.Source, c.Location)
	}
	return nil
}
