package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/natefinch/atomic"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/CTAG07/markovtext/pkg/corpus"
	"github.com/CTAG07/markovtext/pkg/markov"
)

var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

const usageMessage = "Usage: markovtext <file-or-directory> [<num_words> = 100] [--d | --debug]"

// cliOptions holds the values of the command line flags.
type cliOptions struct {
	debug      bool
	configPath string
	store      string
	output     string
	logLevel   string
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &cliOptions{}

	rootCmd := &cobra.Command{
		Use:           "markovtext <file-or-directory> [<num_words>]",
		Short:         "Generate random Russian text from a pair-frequency Markov chain",
		Version:       fmt.Sprintf("%s (commit %s, built %s)", Version, Commit, BuildDate),
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts, args)
		},
	}

	// A bad flag, including a negative word count read as a shorthand flag,
	// is an argument error like any other.
	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, _ error) error {
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), usageMessage)
		return nil
	})

	flags := rootCmd.Flags()
	// Flags match regardless of case, so --D and --DEBUG work too.
	flags.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ToLower(name))
	})
	flags.BoolVar(&opts.debug, "debug", false, "print the generation trace and a full dump of the pair model")
	flags.BoolVar(&opts.debug, "d", false, "shorthand for --debug")
	flags.StringVar(&opts.configPath, "config", "", "path to a JSON configuration file")
	flags.StringVar(&opts.store, "store", "", "pair store backend: memory or sqlite (default from config)")
	flags.StringVar(&opts.output, "output", "", "also write the generated text to this file")
	flags.StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn or error (default from config)")

	return rootCmd
}

// run executes one analysis-and-generation pass. Argument problems print the
// usage message and return nil; only configuration, directory listing and
// store failures are returned as errors.
func run(cmd *cobra.Command, opts *cliOptions, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	stdout := cmd.OutOrStdout()

	if len(args) < 1 {
		_, _ = fmt.Fprintln(stdout, usageMessage)
		return nil
	}

	path := args[0]
	info, err := os.Stat(path)
	if err != nil {
		_, _ = fmt.Fprintf(stdout, "File not exists: %s\n%s\n", path, usageMessage)
		return nil
	}

	var numWords int
	if len(args) > 1 {
		n, err := strconv.ParseInt(args[1], 10, 16)
		if err != nil || n < 2 {
			_, _ = fmt.Fprintln(stdout, usageMessage)
			return nil
		}
		numWords = int(n)
	}

	config, err := LoadConfig(opts.configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if cmd.Flags().Changed("store") {
		config.Store.Backend = opts.store
	}
	if cmd.Flags().Changed("log-level") {
		config.LogLevel = opts.logLevel
	}
	if err = config.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if numWords == 0 {
		numWords = config.Generator.DefaultWords
	}

	logLevel := config.logLevel()
	if opts.debug {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: logLevel}))

	files, err := listInputFiles(path, info)
	if err != nil {
		return err
	}
	logger.Debug("Input files resolved", "path", path, "files", len(files))

	_, _ = fmt.Fprintf(stdout, "Start: %s\n", time.Now().Format(startLayout))

	// Read and tokenize every file.
	phase := time.Now()
	loader := corpus.NewLoader(
		corpus.NewResolver(
			corpus.WithSniffSize(config.Reader.SniffBytes),
			corpus.WithLegacyThreshold(config.Reader.LegacyThreshold),
		),
		corpus.NewTokenizer(corpus.WithMaxTokenLen(config.Tokenizer.MaxTokenLength)),
	)
	loader.SetLogger(logger)
	c := loader.Load(files)
	for _, f := range c.Files {
		if f.Err == nil {
			continue
		}
		if st, err := os.Stat(f.Path); err == nil {
			logger.Info("File contributed no words", "path", f.Path, "size", humanize.Bytes(uint64(st.Size())), "reason", f.Err)
		}
	}
	_, _ = fmt.Fprintf(stdout, "file read: %s. Got %s words in %s files\n",
		since(phase), humanize.Comma(int64(c.Len())), humanize.Comma(int64(len(files))))

	// Build the pair-frequency model.
	phase = time.Now()
	store, closeStore, err := openStore(config.Store, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	if err = markov.Build(ctx, store, c.Tokens); err != nil {
		return fmt.Errorf("failed to build pair model: %w", err)
	}
	if opts.debug {
		if err = markov.Dump(ctx, store, stdout); err != nil {
			return fmt.Errorf("failed to dump pair model: %w", err)
		}
	}
	stats, err := store.Stats(ctx)
	if err != nil {
		return fmt.Errorf("failed to read pair model stats: %w", err)
	}
	_, _ = fmt.Fprintf(stdout, "got pair stat: %s. Total %s unique entries\n", since(phase), humanize.Comma(int64(stats.Entries)))
	logger.Debug("Pair model built",
		"store", config.Store.Backend,
		"entries", stats.Entries,
		"links", stats.Links,
		"pairs", stats.TotalFrequency,
	)

	if c.Len() == 0 {
		logger.Warn("No words extracted, skipping generation", "files", len(files))
		return nil
	}

	// Walk the chain.
	phase = time.Now()
	genOpts := []markov.GenerateOption{
		markov.WithHistorySize(config.Generator.HistorySize),
		markov.WithTailSteps(config.Generator.TailSteps),
	}
	if opts.debug {
		genOpts = append(genOpts, markov.WithTrace(stdout))
	}
	g := markov.NewGenerator(store, c.Tokens)
	g.SetLogger(logger)
	res, err := g.Generate(ctx, numWords, genOpts...)
	if err != nil {
		return fmt.Errorf("failed to generate text: %w", err)
	}

	text := res.Text()
	_, _ = fmt.Fprintf(stdout, "\n%s\n", text)

	if opts.output != "" {
		if err = atomic.WriteFile(opts.output, strings.NewReader(text+"\n")); err != nil {
			logger.Error("Failed to write output file", "path", opts.output, "error", err)
		}
	}

	_, _ = fmt.Fprintf(stdout, "\ngenerate and print random text: %s\n", since(phase))
	return nil
}
