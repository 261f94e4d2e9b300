package main

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/scanbox/internal"
	pkgconfig "github.com/starford/scanbox/pkg/config"
)

func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	cfg := internal.NewDefaultConfig()
	path := cmd.String("config")
	if _, err := os.Stat(path); err == nil {
		if err := pkgconfig.Load(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
		return cfg, nil
	}
	// No config file: run on validated defaults.
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("default config invalid: %w", err)
	}
	return cfg, nil
}

func runScan(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := internal.Run(ctx, internal.WithConfig(cfg)); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}
	return nil
}

// buildApp loads config and wires the service for one-shot subcommands.
func buildApp(cmd *cli.Command) (*internal.App, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	return internal.Build(cfg)
}

func runExport(_ context.Context, cmd *cli.Command) error {
	a, err := buildApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	out := cmd.String("out")
	var buf bytes.Buffer
	switch format := cmd.String("format"); format {
	case "csv":
		err = a.Svc.ExportCSV(&buf)
	case "xlsx":
		err = a.Svc.ExportXLSX(&buf)
	default:
		return fmt.Errorf("unknown format %q (want csv or xlsx)", format)
	}
	if err != nil {
		return err
	}
	// Buffer first so a failed export never leaves a partial file.
	if err := os.WriteFile(out, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", out, err)
	}
	fmt.Printf("exported to %s\n", out)
	return nil
}

func runImport(_ context.Context, cmd *cli.Command) error {
	path := cmd.Args().First()
	if path == "" {
		return fmt.Errorf("usage: import <file.csv>")
	}
	a, err := buildApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	warnings, err := a.Svc.ImportCSV(f, cmd.Bool("merge"))
	if err != nil {
		return err
	}
	for _, w := range warnings {
		fmt.Printf("skipped %s\n", w)
	}
	boxes, items := a.Svc.Summary()
	fmt.Printf("imported: boxes %d, items %d, %d row(s) skipped\n", boxes, items, len(warnings))
	return nil
}

func runHistory(_ context.Context, cmd *cli.Command) error {
	a, err := buildApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	entries, err := a.Svc.History(cmd.String("filter"), int(cmd.Int("limit")))
	if err != nil {
		return err
	}
	for _, e := range entries {
		fmt.Printf("%s - %s: %s\n", e.Timestamp.Format("2006-01-02 15:04:05"), e.Kind, e.Barcode)
	}
	return nil
}

func runSummary(_ context.Context, cmd *cli.Command) error {
	a, err := buildApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	boxes, items := a.Svc.Summary()
	fmt.Printf("boxes: %d | items: %d\n", boxes, items)
	fmt.Println(a.Svc.Status())
	return nil
}

func runReset(_ context.Context, cmd *cli.Command) error {
	if !cmd.Bool("yes") {
		return fmt.Errorf("refusing to clear the session without --yes")
	}
	a, err := buildApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.Svc.Reset(); err != nil {
		return err
	}
	fmt.Println("session cleared")
	return nil
}

func main() {
	cmd := &cli.Command{
		Name:   "scanbox",
		Usage:  "Warehouse packing sessions: scan boxes and items, comment, export and import inventories",
		Action: runScan,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Local:       false,
				Usage:       "Path to config file",
				DefaultText: "config/config.yaml",
				Value:       "config/config.yaml",
				Sources:     cli.EnvVars("APP_CONFIG_FILE"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "scan",
				Usage:  "Interactive scanning session",
				Action: runScan,
			},
			{
				Name:   "export",
				Usage:  "Export the session to CSV or a spreadsheet",
				Action: runExport,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "format", Value: "csv", Usage: "csv or xlsx"},
					&cli.StringFlag{Name: "out", Required: true, Usage: "Output file path"},
				},
			},
			{
				Name:      "import",
				Usage:     "Import a CSV inventory",
				ArgsUsage: "<file.csv>",
				Action:    runImport,
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "merge", Usage: "Merge into the current session instead of replacing it"},
				},
			},
			{
				Name:   "history",
				Usage:  "Show the scan history",
				Action: runHistory,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "filter", Usage: "Case-insensitive match on any field"},
					&cli.IntFlag{Name: "limit", Usage: "Maximum entries to show"},
				},
			},
			{
				Name:   "summary",
				Usage:  "Show box and item counts",
				Action: runSummary,
			},
			{
				Name:   "reset",
				Usage:  "Clear the session",
				Action: runReset,
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "yes", Usage: "Confirm clearing all session data"},
				},
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
