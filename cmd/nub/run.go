package main

import (
	"context"
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nub-run/nub/internal/compress"
	"github.com/nub-run/nub/internal/config"
	"github.com/nub-run/nub/internal/formats"
	"github.com/nub-run/nub/internal/ioload"
	"github.com/nub-run/nub/internal/logging"
	"github.com/nub-run/nub/internal/preview"
	"github.com/nub-run/nub/internal/rangesel"
	"github.com/nub-run/nub/internal/tree"
	"github.com/nub-run/nub/internal/watch"
)

// cliOptions is the parsed flag set threaded through a compression run.
type cliOptions struct {
	shape          string
	wrap           int
	rangeStr       string
	lineNumbers    bool
	grep           string
	separator      string
	separatorRegex string
	deduplicate    bool
	limit          int
	formatType     string
}

func runNub(cmd *cobra.Command, args []string) error {
	path := ""
	if len(args) == 1 {
		path = args[0]
	}

	cfg := loadConfig()
	if _, err := logging.LevelFromString(flagLogLevel); err != nil {
		return badArgsError{fmt.Errorf("invalid --log-level %q: %w", flagLogLevel, err)}
	}
	logger, err := logging.New(logging.Options{Level: flagLogLevel, Format: flagLogFormat})
	if err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}
	ctx := logging.WithCorrelationID(context.Background(), logging.NewCorrelationID())
	defer func() { _ = logger.Sync() }()

	opts := cliOptions{
		shape:          flagShape,
		wrap:           flagWrap,
		rangeStr:       flagRange,
		lineNumbers:    !flagNoLineNumbers,
		grep:           flagGrep,
		separator:      flagSeparator,
		separatorRegex: flagSeparatorRegex,
		deduplicate:    flagDeduplicate,
		limit:          flagLimit,
		formatType:     flagType,
	}

	if flagWatch {
		return runWatch(ctx, logger, path, cfg, opts)
	}

	result, err := ioload.Read(path, cfg.IO)
	if err != nil {
		if os.IsNotExist(err) {
			return fail("File not found: %s", path)
		}
		return fail("reading input: %v", err)
	}

	original := result.Content
	output, err := compressResult(result, cfg, opts)
	if err != nil {
		return err
	}

	if flagPreview {
		return renderPreview(original, output)
	}

	fmt.Println(output)
	return nil
}

// compressResult runs one compression pass over an already-loaded
// ioload.Result and returns the rendered output without printing it.
func compressResult(result ioload.Result, cfg config.Config, opts cliOptions) (string, error) {
	registry := formats.NewRegistryWithConfig(cfg)

	width, height, err := rangesel.ParseShape(opts.shape)
	if err != nil {
		return "", badArgsError{err}
	}
	budget := compress.CharBudget{Width: uint32(width), Height: uint32(height)}

	if result.IsDirectory {
		folder := formats.NewFolder()
		root, err := folder.ParsePath(result.Filename)
		if err != nil {
			return "", fail("parsing directory: %v", err)
		}
		root, err = applyRange(root, opts.rangeStr)
		if err != nil {
			return "", badArgsError{err}
		}
		engineOpts, err := buildEngineOptions(cfg, opts)
		if err != nil {
			return "", badArgsError{err}
		}
		lines := compress.CompressTree(root, budget, engineOpts)
		return joinLines(lines), nil
	}

	if result.Content == "" {
		return "", nil
	}

	var root *tree.Node
	usingCustomSeparator := opts.separator != "" || opts.separatorRegex != ""
	if usingCustomSeparator {
		var pattern *regexp.Regexp
		if opts.separatorRegex != "" {
			pattern, err = regexp.Compile(opts.separatorRegex)
			if err != nil {
				return "", badArgsError{fmt.Errorf("invalid --separator-regex: %w", err)}
			}
		}
		root, err = formats.NewCustomSeparator(opts.separator, pattern).Parse([]byte(result.Content))
	} else {
		strategy, ferr := selectStrategy(registry, result.Content, result.Filename, opts.formatType)
		if ferr != nil {
			return "", badArgsError{ferr}
		}
		root, err = strategy.Parse([]byte(result.Content))
	}
	if err != nil {
		return "", fail("parsing content: %v", err)
	}

	root, err = applyRange(root, opts.rangeStr)
	if err != nil {
		return "", badArgsError{err}
	}
	if root == nil {
		return "", fail("no content after range selection")
	}

	engineOpts, err := buildEngineOptions(cfg, opts)
	if err != nil {
		return "", badArgsError{err}
	}
	lines := compress.CompressTree(root, budget, engineOpts)
	return joinLines(lines), nil
}

// selectStrategy resolves a Format via --type override (a type matching no
// format name or extension is an error), then content detection, then a
// text fallback.
func selectStrategy(registry *formats.Registry, content, filename, forceType string) (compress.Format, error) {
	if forceType != "" {
		if f, ok := registry.ByName(forceType); ok {
			return f, nil
		}
		if f, ok := registry.ByExtension(forceType); ok {
			return f, nil
		}
		return nil, fmt.Errorf("unknown format type %q", forceType)
	}
	if match, ok := registry.Detect(filename, []byte(content)); ok {
		return match.Format, nil
	}
	if f, ok := registry.ByName("text"); ok {
		return f, nil
	}
	return nil, fmt.Errorf("no format strategy available")
}

// applyRange parses --range and, if present, prunes root to that line
// span. A range yielding an empty tree is reported as an error, not a
// silent empty tree, so the CLI can exit 2 for an out-of-bounds range.
func applyRange(root *tree.Node, rangeStr string) (*tree.Node, error) {
	start, end, ok, err := rangesel.ParseRange(rangeStr)
	if err != nil {
		return nil, err
	}
	if !ok {
		return root, nil
	}
	pruned, ok := rangesel.Prune(root, start, end)
	if !ok {
		return nil, fmt.Errorf("range %v:%v selects no content", start, end)
	}
	return pruned, nil
}

func buildEngineOptions(cfg config.Config, opts cliOptions) (compress.Options, error) {
	weights := compress.DefaultWeights()
	weights.Positional = cfg.Weights.Positional
	weights.Grep = cfg.Weights.Grep
	weights.Topology = cfg.Weights.Topology

	var grepPattern *regexp.Regexp
	if opts.grep != "" {
		p, err := regexp.Compile(opts.grep)
		if err != nil {
			return compress.Options{}, fmt.Errorf("invalid --grep pattern: %w", err)
		}
		grepPattern = p
	}

	return compress.Options{
		GrepPattern:  grepPattern,
		Temperature:  cfg.Compression.Temperature,
		MinLineChars: cfg.Compression.MinLineChars,
		Weights:      weights,
		LineNumbers:  opts.lineNumbers,
		WrapWidth:    opts.wrap,
		Deduplicate:  opts.deduplicate || cfg.Compression.DeduplicateNgrams,
		Limit:        opts.limit,
	}, nil
}

func joinLines(lines []compress.OutputLine) string {
	texts := make([]string, len(lines))
	for i, l := range lines {
		texts[i] = l.Text
	}
	return strings.Join(texts, "\n")
}

func renderPreview(original, compressed string) error {
	start := time.Now()
	m := preview.Metrics{
		OriginalSize:   len(original),
		CompressedSize: len(compressed),
		ProcessingTime: time.Since(start),
	}
	return preview.Render(os.Stdout, original, compressed, m, preview.Options{ShowMetrics: true})
}

// runWatch compresses path once, then re-compresses on every write to it
// until interrupted.
func runWatch(ctx context.Context, logger *logging.Logger, path string, cfg config.Config, opts cliOptions) error {
	if path == "" {
		return badArgsError{fmt.Errorf("--watch requires a file path, not stdin")}
	}

	run := func() error {
		result, err := ioload.Read(path, cfg.IO)
		if err != nil {
			return err
		}
		output, err := compressResult(result, cfg, opts)
		if err != nil {
			return err
		}
		fmt.Println(output)
		return nil
	}

	if err := run(); err != nil {
		return fail("%v", err)
	}

	watcher, err := watch.NewFile(path)
	if err != nil {
		return fail("starting watch: %v", err)
	}
	defer watcher.Stop()

	logger.Info(ctx, "watching for changes", zap.String("path", path))
	watcher.Run(ctx, run, func(err error) {
		logger.Error(ctx, "watch run failed", zap.Error(err))
	})
	return nil
}
