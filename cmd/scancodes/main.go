package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/wudi/barkit/barcode"
	"github.com/wudi/barkit/barcode/zxing"
	"github.com/wudi/barkit/observability/zaplog"
	"github.com/wudi/barkit/pagesource"
	"github.com/wudi/barkit/scan"
)

type options struct {
	configPath string
	pdfPath    string
	formats    string
	outPath    string
	pages      []string
}

func main() {
	opts, err := parseFlags()
	if err != nil {
		fmt.Fprintf(os.Stderr, "scancodes: %v\n", err)
		os.Exit(2)
	}
	if err := run(opts); err != nil {
		fmt.Fprintf(os.Stderr, "scancodes: %v\n", err)
		os.Exit(1)
	}
}

func parseFlags() (options, error) {
	var opts options
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: scancodes [flags] <page-image>...\n")
		flag.PrintDefaults()
	}
	flag.StringVar(&opts.configPath, "config", "", "optional YAML config file")
	flag.StringVar(&opts.pdfPath, "pdf", "", "scan the embedded page images of this PDF instead of image files")
	flag.StringVar(&opts.formats, "formats", "", "required formats, e.g. QR_CODE:1,CODE_128:2")
	flag.StringVar(&opts.outPath, "out", "", "write JSON results to this file instead of stdout")
	flag.Parse()

	opts.pages = flag.Args()
	if opts.pdfPath == "" && len(opts.pages) == 0 {
		return opts, fmt.Errorf("nothing to scan: pass page images or -pdf")
	}
	if opts.pdfPath != "" && len(opts.pages) > 0 {
		return opts, fmt.Errorf("pass either page images or -pdf, not both")
	}
	return opts, nil
}

func run(opts options) error {
	cfg, err := loadConfig(opts.configPath)
	if err != nil {
		return err
	}
	logger, err := zaplog.NewForMode(cfg.Log.Mode)
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer logger.Sync()

	required, err := parseRequirements(opts.formats)
	if err != nil {
		return err
	}

	var source pagesource.Source
	if opts.pdfPath != "" {
		source = pagesource.NewPDFSource(opts.pdfPath)
	} else {
		source = pagesource.NewFileSource(opts.pages...)
	}

	ctx := context.Background()
	pages, err := source.Pages(ctx)
	if err != nil {
		return fmt.Errorf("load pages: %w", err)
	}

	strategy := scan.NewStrategy(zxing.New(),
		scan.WithConfig(cfg.Pipeline.scanConfig()),
		scan.WithLogger(logger),
	)

	results := make([]scan.AggregatedResult, 0, len(pages))
	for _, page := range pages {
		results = append(results, strategy.ProcessPage(ctx, page.Image, page.Number, required))
	}
	return writeResults(opts.outPath, results)
}

// parseRequirements parses "QR_CODE:1,CODE_128:2"; a bare format name counts
// as one.
func parseRequirements(s string) ([]scan.FormatRequirement, error) {
	if s == "" {
		return nil, nil
	}
	var required []scan.FormatRequirement
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name, countStr, hasCount := strings.Cut(part, ":")
		count := 1
		if hasCount {
			n, err := strconv.Atoi(countStr)
			if err != nil || n < 1 {
				return nil, fmt.Errorf("bad format requirement %q", part)
			}
			count = n
		}
		required = append(required, scan.FormatRequirement{
			Format: barcode.Format(strings.ToUpper(name)),
			Count:  count,
		})
	}
	return required, nil
}

func writeResults(path string, results []scan.AggregatedResult) error {
	out := os.Stdout
	if path != "" {
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(results)
}
