package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"

	"github.com/spf13/cobra"

	"github.com/scottidler/ytx"
	"github.com/scottidler/ytx/internal/cache"
	"github.com/scottidler/ytx/internal/config"
	"github.com/scottidler/ytx/internal/httpx"
	"github.com/scottidler/ytx/internal/logging"
	"github.com/scottidler/ytx/internal/output"
	"github.com/scottidler/ytx/internal/pipeline"
	"github.com/scottidler/ytx/internal/summarize"
	"github.com/scottidler/ytx/internal/whisper"
	"github.com/scottidler/ytx/internal/youtube"
)

const (
	defaultLang   = "en"
	defaultFormat = "text"
	defaultModel  = "claude-sonnet-4-6"
)

type rootOptions struct {
	summarize    bool
	format       string
	lang         string
	output       string
	whisperOnly  bool
	noFallback   bool
	noCache      bool
	model        string
	whisperModel string
	verbose      bool
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:           "ytx [url]",
		Short:         "YouTube transcript extractor",
		Long:          "Extracts transcripts from YouTube videos: published captions first,\nWhisper transcription of the audio as the fallback.",
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, args, opts)
		},
	}

	rootCmd.Flags().BoolVarP(&opts.summarize, "summarize", "s", false, "Summarize the transcript via LLM")
	rootCmd.Flags().StringVarP(&opts.format, "format", "f", "", "Output format: text (default), json, srt")
	rootCmd.Flags().StringVarP(&opts.lang, "lang", "l", "", "Preferred caption language")
	rootCmd.Flags().StringVarP(&opts.output, "output", "o", "", "Write output to file instead of stdout")
	rootCmd.Flags().BoolVar(&opts.whisperOnly, "whisper-only", false, "Skip caption extraction, always use Whisper")
	rootCmd.Flags().BoolVar(&opts.noFallback, "no-fallback", false, "Don't fall back to Whisper if captions unavailable")
	rootCmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "Skip the transcript cache when reading")
	rootCmd.Flags().StringVar(&opts.model, "model", "", "LLM model for summarization")
	rootCmd.Flags().StringVar(&opts.whisperModel, "whisper-model", "", "Transcription model for the Whisper fallback")
	rootCmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "Show extraction method and metadata")

	defaultHelp := rootCmd.HelpFunc()
	rootCmd.SetHelpFunc(func(cmd *cobra.Command, args []string) {
		defaultHelp(cmd, args)
		fmt.Fprint(cmd.OutOrStdout(), toolStatus())
	})

	return rootCmd
}

func run(cmd *cobra.Command, args []string, opts *rootOptions) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	lang := resolve(opts.lang, cfg.DefaultLang, defaultLang)
	model := resolve(opts.model, cfg.DefaultModel, defaultModel)

	format, err := output.ParseFormat(resolve(opts.format, cfg.DefaultFormat, defaultFormat))
	if err != nil {
		return err
	}
	whisperModel, err := whisper.ParseModel(resolve(opts.whisperModel, cfg.WhisperModel, ""))
	if err != nil {
		return err
	}

	logger, closeLog := openLogger(cmd.ErrOrStderr(), opts.verbose)
	defer closeLog()

	inputs, err := collectInputs(args, cmd.InOrStdin())
	if err != nil {
		return err
	}

	httpClient := httpx.New(nil)
	defer httpClient.Close()

	env := &runEnv{
		opts:   opts,
		lang:   lang,
		model:  model,
		format: format,
		pipe: pipeline.New(
			youtube.NewClient(httpClient, youtube.WithLogger(logger)),
			whisper.NewClient(httpClient, whisper.WithLogger(logger)),
			pipeline.WithLogger(logger),
		),
		whisperModel: whisperModel,
		store:        openCache(logger),
		summarizer:   summarize.NewClient(httpClient, summarize.WithLogger(logger)),
		logger:       logger,
		stdout:       cmd.OutOrStdout(),
		stderr:       cmd.ErrOrStderr(),
	}

	failed := 0
	for _, input := range inputs {
		if err := env.processInput(cmd.Context(), input); err != nil {
			logger.Error("input failed", "input", input, "error", err)
			fmt.Fprintf(env.stderr, "ytx: %v\n", err)
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d inputs failed", failed, len(inputs))
	}
	return nil
}

type runEnv struct {
	opts         *rootOptions
	lang         string
	model        string
	format       output.Format
	whisperModel whisper.Model
	pipe         *pipeline.Pipeline
	store        *cache.Cache
	summarizer   *summarize.Client
	logger       *slog.Logger
	stdout       io.Writer
	stderr       io.Writer
}

func (e *runEnv) processInput(ctx context.Context, input string) error {
	videoID, ok := ytx.ExtractVideoID(input)
	if !ok {
		return fmt.Errorf("could not extract video ID from: %s", input)
	}

	var transcript *ytx.Transcript
	if e.store != nil && !e.opts.noCache {
		if cached, hit := e.store.Load(videoID, e.lang); hit {
			transcript = cached
		}
	}

	if transcript == nil {
		acquired, err := e.pipe.Run(ctx, videoID, pipeline.Options{
			Lang:        e.lang,
			Model:       e.whisperModel,
			WhisperOnly: e.opts.whisperOnly,
			NoFallback:  e.opts.noFallback,
		})
		if err != nil {
			return err
		}
		transcript = acquired

		if e.store != nil {
			if err := e.store.Save(transcript); err != nil {
				e.logger.Warn("transcript not cached", "video_id", videoID, "error", err)
			}
		}
	}

	if e.opts.verbose {
		fmt.Fprintf(e.stderr, "Video: %s (%s)\nSource: %s\nLanguage: %s\nSegments: %d\n",
			transcript.Title, transcript.VideoID, transcript.Source, transcript.Language, len(transcript.Segments))
	}

	var rendered string
	if e.opts.summarize {
		summary, err := e.summarizer.Summarize(ctx, transcript, e.model)
		if err != nil {
			return err
		}
		rendered = strings.TrimRight(summary, "\n") + "\n"
	} else {
		var err error
		rendered, err = output.Render(transcript, e.format)
		if err != nil {
			return err
		}
	}

	if e.opts.output != "" {
		return os.WriteFile(e.opts.output, []byte(rendered), 0644)
	}
	_, err := fmt.Fprint(e.stdout, rendered)
	return err
}

func loadConfig() (*config.Config, error) {
	path, err := config.Path()
	if err != nil {
		return &config.Config{}, nil
	}
	return config.Load(path)
}

// resolve picks the flag value if set, the config value otherwise, and the
// built-in default last.
func resolve(flag, configured, fallback string) string {
	if flag != "" {
		return flag
	}
	if configured != "" {
		return configured
	}
	return fallback
}

// openLogger never fails the run: when the log file cannot be opened the
// run proceeds with logging discarded.
func openLogger(stderr io.Writer, verbose bool) (*slog.Logger, func()) {
	path, err := logging.DefaultPath()
	if err == nil {
		logger, closeLog, setupErr := logging.Setup(path, verbose)
		if setupErr == nil {
			return logger, func() { closeLog() }
		}
		err = setupErr
	}
	fmt.Fprintf(stderr, "ytx: logging disabled: %v\n", err)
	return logging.Discard(), func() {}
}

func openCache(logger *slog.Logger) *cache.Cache {
	dir, err := cache.DefaultDir()
	if err != nil {
		logger.Warn("transcript cache disabled", "error", err)
		return nil
	}
	return cache.New(dir, cache.WithLogger(logger))
}

func collectInputs(args []string, stdin io.Reader) ([]string, error) {
	if len(args) == 1 {
		return args, nil
	}

	var inputs []string
	scanner := bufio.NewScanner(stdin)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			inputs = append(inputs, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read stdin: %w", err)
	}
	if len(inputs) == 0 {
		return nil, fmt.Errorf("no URL or video ID provided")
	}
	return inputs, nil
}

// toolStatus reports whether the external tools the Whisper fallback needs
// are installed. Shown after the flag help.
func toolStatus() string {
	var b strings.Builder
	b.WriteString("\nRequired tools (Whisper fallback):\n")
	for _, tool := range []string{"yt-dlp", "ffmpeg"} {
		if version, ok := toolVersion(tool); ok {
			fmt.Fprintf(&b, "  [ok] %-8s %s\n", tool, version)
		} else {
			fmt.Fprintf(&b, "  [missing] %s\n", tool)
		}
	}
	if path, err := logging.DefaultPath(); err == nil {
		fmt.Fprintf(&b, "\nLogs are written to: %s\n", path)
	}
	return b.String()
}

func toolVersion(name string) (string, bool) {
	out, err := exec.Command(name, "--version").Output()
	if err != nil {
		return "", false
	}
	version, _, _ := strings.Cut(strings.TrimSpace(string(out)), "\n")
	return version, true
}
