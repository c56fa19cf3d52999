package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/cclone/cclone/internal/config"
	"github.com/cclone/cclone/internal/engine"
	"github.com/cclone/cclone/internal/errs"
	"github.com/cclone/cclone/internal/event"
	"github.com/cclone/cclone/internal/interrupt"
	"github.com/cclone/cclone/internal/progress"
	"github.com/cclone/cclone/internal/stats"
	"github.com/cclone/cclone/internal/ui"
)

var version = "dev"

func main() {
	os.Exit(run())
}

//nolint:gocyclo,revive // cyclomatic,cognitive-complexity: CLI entry point orchestrates flag parsing, config merge, and engine wiring
func run() int {
	var (
		recursive        bool
		followSymlinks   bool
		verify           bool
		resume           bool
		threads          int
		bufferSizeStr    string
		quiet            bool
		noProgress       bool
		preserveMetadata bool
		resumePath       string
		rateLimitStr     string
		journalPath      string
		showVersion      bool
		cliIncludes      []string
		cliExcludes      []string
	)

	rootCmd := &cobra.Command{
		Use:   "cclone [flags] <source>... <destination>",
		Short: "Fast, parallel local file copy",
		Args: func(cmd *cobra.Command, args []string) error {
			if showVersion {
				return nil
			}
			return cobra.MinimumNArgs(2)(cmd, args)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if showVersion {
				fmt.Fprintf(os.Stdout, "cclone %s\n", version)
				return nil
			}

			sources := args[:len(args)-1]
			dst := args[len(args)-1]

			fileCfg, err := config.Load()
			if err != nil {
				slog.Warn("failed to load config", "err", err)
			}
			applyConfigDefaults(cmd, fileCfg, &recursive, &followSymlinks, &verify, &resume,
				&threads, &quiet, &preserveMetadata, &resumePath, &journalPath)
			if !cmd.Flags().Changed("buffer-size") && fileCfg.BufferSize != nil {
				bufferSizeStr = fmt.Sprintf("%d", *fileCfg.BufferSize)
			}
			if !cmd.Flags().Changed("rate-limit") && fileCfg.RateLimitBytesPerSec != nil {
				rateLimitStr = fmt.Sprintf("%d", *fileCfg.RateLimitBytesPerSec)
			}
			logLevel := slog.LevelInfo
			if quiet {
				logLevel = slog.LevelWarn
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})))

			var bufferSize int64
			if bufferSizeStr != "" {
				bufferSize, err = parseSize(bufferSizeStr)
				if err != nil {
					return fmt.Errorf("invalid --buffer-size: %w", err)
				}
			}
			var rateLimit int64
			if rateLimitStr != "" {
				rateLimit, err = parseSize(rateLimitStr)
				if err != nil {
					return fmt.Errorf("invalid --rate-limit: %w", err)
				}
			}

			if threads <= 0 {
				threads = runtime.NumCPU()
			}

			stop := interrupt.Install()
			defer stop()

			collector := stats.New()
			events := make(chan event.Event, 256)

			showProgress := !noProgress && ui.IsTTY(os.Stderr.Fd())
			mon := progress.New(collector, os.Stderr, showProgress, quiet, ui.TermWidth(os.Stderr.Fd()))
			defer mon.Close()

			presenter := ui.NewPresenter(ui.Config{
				Writer:    os.Stdout,
				ErrWriter: os.Stderr,
				Stats:     collector,
				Quiet:     quiet,
			})

			presenterDone := make(chan error, 1)
			go func() {
				presenterDone <- presenter.Run(events)
			}()

			engineCfg := engine.Config{
				Recursive:            recursive,
				FollowSymlinks:       followSymlinks,
				Verify:               verify,
				Resume:               resume,
				Progress:             !noProgress,
				Quiet:                quiet,
				PreserveMetadata:     preserveMetadata,
				Threads:              threads,
				BufferSize:           bufferSize,
				IncludePatterns:      append(fileCfg.IncludePatterns, cliIncludes...),
				ExcludePatterns:      append(fileCfg.ExcludePatterns, cliExcludes...),
				ResumePath:           resumePath,
				RateLimitBytesPerSec: rateLimit,
				JournalPath:          journalPath,
			}

			slog.Debug("starting copy", "sources", sources, "dst", dst, "threads", threads, "recursive", recursive)

			_, runErr := engine.Run(context.Background(), sources, dst, engineCfg, collector, events)
			<-presenterDone

			if !quiet {
				if summary := presenter.Summary(); summary != "" {
					fmt.Fprintln(os.Stderr, summary)
				}
			}

			if runErr != nil {
				if e, ok := errs.As(runErr); ok {
					return &exitError{code: e.ExitCode()}
				}
				return &exitError{code: 1}
			}
			return nil
		},
	}

	rootCmd.Flags().BoolVar(&showVersion, "version", false, "print version and exit")
	rootCmd.Flags().BoolVarP(&recursive, "recursive", "r", false, "copy directories recursively")
	rootCmd.Flags().BoolVar(&followSymlinks, "follow-symlinks", false, "follow symlinks instead of skipping them")
	rootCmd.Flags().BoolVar(&verify, "verify", false, "verify checksums after copy (XXH64)")
	rootCmd.Flags().BoolVar(&resume, "resume", false, "skip destinations that already match source size")
	rootCmd.Flags().IntVarP(&threads, "threads", "n", 0, "number of copy workers (default: NumCPU)")
	rootCmd.Flags().StringVar(&bufferSizeStr, "buffer-size", "", "chunk size for large-file copies (e.g. 64M)")
	rootCmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "suppress all output except errors")
	rootCmd.Flags().BoolVar(&noProgress, "no-progress", false, "disable the single-line progress bar")
	rootCmd.Flags().BoolVar(&preserveMetadata, "preserve-metadata", false, "preserve mtime and permissions")
	rootCmd.Flags().StringVar(&resumePath, "resume-path", "", "path prefix for chunked-copy resume records (a .<job-id> suffix is appended per file)")
	rootCmd.Flags().StringVar(&rateLimitStr, "rate-limit", "", "cap throughput (e.g. 10M)")
	rootCmd.Flags().StringVar(&journalPath, "journal", "", "path to the cross-run transfer journal database")
	rootCmd.Flags().StringArrayVar(&cliExcludes, "exclude", nil, "exclude files matching PATTERN (repeatable)")
	rootCmd.Flags().StringArrayVar(&cliIncludes, "include", nil, "include files matching PATTERN (repeatable)")

	if err := rootCmd.Execute(); err != nil {
		if exitErr, ok := err.(*exitError); ok {
			return exitErr.code
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 2
	}

	return 0
}

func applyConfigDefaults(
	cmd *cobra.Command,
	cfg config.Config,
	recursive, followSymlinks, verify, resume *bool,
	threads *int,
	quiet, preserveMetadata *bool,
	resumePath, journalPath *string,
) {
	if !cmd.Flags().Changed("recursive") && cfg.Recursive != nil {
		*recursive = *cfg.Recursive
	}
	if !cmd.Flags().Changed("follow-symlinks") && cfg.FollowSymlinks != nil {
		*followSymlinks = *cfg.FollowSymlinks
	}
	if !cmd.Flags().Changed("verify") && cfg.Verify != nil {
		*verify = *cfg.Verify
	}
	if !cmd.Flags().Changed("resume") && cfg.Resume != nil {
		*resume = *cfg.Resume
	}
	if !cmd.Flags().Changed("threads") && cfg.Threads != nil {
		*threads = *cfg.Threads
	}
	if !cmd.Flags().Changed("quiet") && cfg.Quiet != nil {
		*quiet = *cfg.Quiet
	}
	if !cmd.Flags().Changed("preserve-metadata") && cfg.PreserveMetadata != nil {
		*preserveMetadata = *cfg.PreserveMetadata
	}
	if !cmd.Flags().Changed("resume-path") && cfg.ResumePath != nil {
		*resumePath = *cfg.ResumePath
	}
	if !cmd.Flags().Changed("journal") && cfg.JournalPath != nil {
		*journalPath = *cfg.JournalPath
	}
}

// parseSize parses a byte-count flag value, accepting a plain integer or
// a K/M/G-suffixed shorthand (binary units, e.g. "64M" == 64*1024*1024).
func parseSize(s string) (int64, error) {
	if s == "" {
		return 0, nil
	}
	mult := int64(1)
	switch s[len(s)-1] {
	case 'k', 'K':
		mult = 1024
		s = s[:len(s)-1]
	case 'm', 'M':
		mult = 1024 * 1024
		s = s[:len(s)-1]
	case 'g', 'G':
		mult = 1024 * 1024 * 1024
		s = s[:len(s)-1]
	}
	var n int64
	if _, err := fmt.Sscanf(s, "%d", &n); err != nil {
		return 0, fmt.Errorf("invalid size %q", s)
	}
	return n * mult, nil
}

type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return fmt.Sprintf("exit code %d", e.code)
}
