// Package main provides the CLI entry point for prepfiles.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/pflag"

	"prepfiles/internal/config"
	"prepfiles/internal/orchestrator"
	"prepfiles/internal/output"
	"prepfiles/internal/prompt"
)

const (
	exitOK      = 0
	exitFailure = 1
	exitUsage   = 2
)

const examples = `
Examples:
  prepfiles --filenames --root ~/Music/import
      Preview renames and confirm before applying.

  prepfiles --metadata --root ~/Music/import
      Write tags derived from Artist/Album (YYYY)/NN Title paths.

  prepfiles --apply --root ~/Music/import
      Rename, then tag, with no prompts.

  prepfiles --filenames --yes --root ~/Music/import
      Rename only, non-interactive.
`

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, output.DefaultConfig()))
}

func run(args []string, stdin io.Reader, outCfg output.Config) int {
	cfg, fs, err := config.ParseFlags(args, outCfg.ErrWriter)
	if err != nil {
		fmt.Fprintf(outCfg.ErrWriter, "Error: %v\n", err)
		usage(outCfg.ErrWriter, fs)
		return exitUsage
	}

	if len(args) == 0 || cfg.Help {
		usage(outCfg.Writer, fs)
		if cfg.Help {
			return exitOK
		}
		return exitUsage
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(outCfg.ErrWriter, "Error: %v\n", err)
		var cerr *config.ConfigError
		if errors.As(err, &cerr) && cerr.Type == config.NoMode {
			usage(outCfg.ErrWriter, fs)
		}
		return exitUsage
	}

	outCfg.Verbose = cfg.Verbose
	outCfg.Color = cfg.Color
	out := output.New(outCfg)

	orch := orchestrator.New(cfg, out,
		orchestrator.WithConfirmer(prompt.NewInteractivePrompter(stdin, outCfg.Writer)),
	)

	summary, err := orch.Run()
	if err != nil {
		out.Error("Error: %v", err)
		return exitFailure
	}

	out.Info("")
	out.Info("%s", summary.PrintSummary())
	out.Verbose("Completed in %s", summary.Duration.Round(time.Millisecond))

	if summary.HasErrors() {
		return exitFailure
	}
	return exitOK
}

func usage(w io.Writer, fs *pflag.FlagSet) {
	fmt.Fprintln(w, "Usage: prepfiles [--filenames] [--metadata] [--apply] --root <path> [--yes]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Prepare music files: normalize folder and file names, then set tags.")
	fmt.Fprintln(w)
	if fs != nil {
		fmt.Fprintln(w, "Options:")
		fmt.Fprint(w, fs.FlagUsages())
	}
	fmt.Fprint(w, examples)
}
