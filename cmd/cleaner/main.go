package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/Zeyna175/data-processor-app/internal/exporter"
	"github.com/Zeyna175/data-processor-app/internal/files"
	"github.com/Zeyna175/data-processor-app/internal/infrastructure"
	"github.com/Zeyna175/data-processor-app/internal/services"
	"github.com/Zeyna175/data-processor-app/pkg/contracts"
	"github.com/Zeyna175/data-processor-app/pkg/contracts/domain"
)

// cliOptions holds the parsed command line
type cliOptions struct {
	in            string
	fileType      string
	analyze       bool
	out           string
	format        string
	missing       string
	outlierMethod string
	outlierAction string
	dedup         string
	normalization string
	logLevel      string
	version       bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintln(os.Stderr, "error:", err)
		}
		os.Exit(1)
	}
}

func parseFlags(args []string, stderr io.Writer) (*cliOptions, error) {
	defaults := domain.DefaultOptions()
	opts := &cliOptions{}

	fs := flag.NewFlagSet("cleaner", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.in, "in", "", "input file (csv, xlsx, xls, json or xml)")
	fs.StringVar(&opts.fileType, "type", "", "declared file type; derived from the extension when empty")
	fs.BoolVar(&opts.analyze, "analyze", false, "print the analysis report instead of cleaning")
	fs.StringVar(&opts.out, "out", "", "output file (defaults to processed_<name> next to the input)")
	fs.StringVar(&opts.format, "format", "", "output format: csv, excel or json (defaults to the -out extension, then csv)")
	fs.StringVar(&opts.missing, "missing", defaults.MissingStrategy, "missing value strategy: mean, median or zero")
	fs.StringVar(&opts.outlierMethod, "outlier-method", defaults.OutlierMethod, "outlier detection: iqr or zscore")
	fs.StringVar(&opts.outlierAction, "outlier-action", defaults.OutlierAction, "outlier treatment: cap or remove")
	fs.StringVar(&opts.dedup, "dedup", "", "comma separated columns that identify duplicates (default: whole row)")
	fs.StringVar(&opts.normalization, "normalization", defaults.Normalization, "normalization: standard, minmax or none")
	fs.StringVar(&opts.logLevel, "log-level", "warn", "log level written to stderr")
	fs.BoolVar(&opts.version, "version", false, "print the version and exit")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if opts.in == "" && !opts.version {
		fs.Usage()
		return nil, errors.New("-in is required")
	}
	return opts, nil
}

// cleaningOptions maps the flags onto pipeline options
func (o *cliOptions) cleaningOptions() domain.Options {
	opts := domain.Options{
		MissingStrategy: o.missing,
		OutlierMethod:   o.outlierMethod,
		OutlierAction:   o.outlierAction,
		Normalization:   o.normalization,
	}
	for _, col := range strings.Split(o.dedup, ",") {
		if col = strings.TrimSpace(col); col != "" {
			opts.DuplicateSubset = append(opts.DuplicateSubset, col)
		}
	}
	return opts
}

// outputTarget resolves the output format and path
func (o *cliOptions) outputTarget() (exporter.Format, string, error) {
	formatName := o.format
	if formatName == "" && o.out != "" {
		formatName = strings.TrimPrefix(filepath.Ext(o.out), ".")
	}
	format, err := exporter.ParseFormat(formatName)
	if err != nil {
		return "", "", err
	}

	out := o.out
	if out == "" {
		out = filepath.Join(filepath.Dir(o.in), files.ProcessedName(o.in, format.Extension()))
	}
	return format, out, nil
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}
	if opts.version {
		_, err := fmt.Fprintln(stdout, contracts.GetFullVersionString())
		return err
	}

	logger := infrastructure.NewLoggerWithWriter(stderr, &slog.HandlerOptions{Level: logLevel(opts.logLevel)})
	ctx = infrastructure.EnsureTraceID(ctx)

	var fileType domain.FileType
	if opts.fileType != "" {
		ft, ok := domain.FileTypeFromExtension(opts.fileType)
		if !ok {
			return fmt.Errorf("unsupported file type %q", opts.fileType)
		}
		fileType = ft
	}

	svc := services.NewCleaningService(services.CleaningServiceOptions{Logger: logger})

	var result interface{}
	if opts.analyze {
		report, err := svc.Analyze(ctx, opts.in, fileType)
		if err != nil {
			return err
		}
		report.Filename = filepath.Base(opts.in)
		result = report
	} else {
		format, out, err := opts.outputTarget()
		if err != nil {
			return err
		}
		res, err := svc.Process(ctx, services.ProcessRequest{
			Path:         opts.in,
			FileType:     fileType,
			Options:      opts.cleaningOptions(),
			OutputFormat: string(format),
			OutputName:   out,
		})
		if err != nil {
			return err
		}
		result = res
	}

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

func logLevel(level string) slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return slog.LevelWarn
	}
	return l
}
