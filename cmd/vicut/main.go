// Package main is the entry point for vicut, a headless Vim-grammar text
// processor for shell pipelines.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/dshills/vicut/internal/cliio"
	"github.com/dshills/vicut/internal/format"
	"github.com/dshills/vicut/internal/pipeline"
	"github.com/dshills/vicut/internal/program"
	"github.com/dshills/vicut/internal/record"
	"github.com/dshills/vicut/internal/script"
	"github.com/dshills/vicut/internal/vibuf"
	"github.com/dshills/vicut/internal/vierr"
	"github.com/dshills/vicut/internal/vilog"
	"github.com/dshills/vicut/internal/vim"
	"github.com/spf13/cobra"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// run mirrors the teacher's run() int shape (cmd/keystorm/main.go) — only
// os.Exit stays in main, everything else returns a code — generalized to
// take the standard streams explicitly so a test can drive it without
// touching the process's real stdio.
func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	progFromCLI, rest, err := buildProgramFromArgs(args)
	if err != nil {
		return reportErr(stderr, err)
	}

	flags := newFlagSet()
	flags.cmd.SetArgs(rest)
	flags.cmd.SetOut(stdout)
	flags.cmd.SetErr(stderr)

	var files []string
	flags.cmd.Run = func(_ *cobra.Command, positional []string) { files = positional }

	if err := flags.cmd.Execute(); err != nil {
		return reportErr(stderr, vierr.Newf(vierr.UsageError, "%v", err))
	}
	if flags.cmd.Flags().Changed("help") {
		return 0
	}

	prog := progFromCLI
	opts := optionsFromFlags(flags)

	if flags.script != "" {
		src, readErr := os.ReadFile(flags.script)
		if readErr != nil {
			return reportErr(stderr, vierr.Atf(vierr.IoError, flags.script, "reading script: %v", readErr))
		}
		scriptProg, scriptOpts, compileErr := script.Compile(string(src))
		if compileErr != nil {
			return reportErr(stderr, compileErr)
		}
		for _, line := range scriptOpts.Echoes {
			fmt.Fprintln(stderr, line)
		}
		prog = scriptProg
		opts = mergeScriptOptions(opts, flags, scriptOpts)
		if len(files) == 0 {
			if len(scriptOpts.Files) > 0 {
				files = scriptOpts.Files
			} else if scriptOpts.HasFile && scriptOpts.File != "" {
				files = []string{scriptOpts.File}
			}
		}
	}

	logger := vilog.Disabled()
	if opts.Trace {
		logger = vilog.New(vilog.Config{Level: vilog.LevelDebug, Output: stderr})
	}
	logger.Debug("resolved program with %d top-level instructions", len(prog.Instructions))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case <-sigCh:
			cancel()
		case <-ctx.Done():
		}
	}()
	defer signal.Stop(sigCh)

	if len(files) == 0 {
		files = []string{""} // "" marks stdin
	}
	if opts.InPlace {
		for _, path := range files {
			if path == "" {
				return reportErr(stderr, vierr.New(vierr.UsageError, "-i/--in-place requires file arguments, not stdin"))
			}
		}
	}

	var out strings.Builder
	for _, path := range files {
		if err := processOne(ctx, path, prog, opts, stdin, &out, logger); err != nil {
			return reportErr(stderr, err)
		}
	}
	if !opts.InPlace {
		fmt.Fprint(stdout, out.String())
	}
	return 0
}

// processOne runs prog against one input (path == "" means stdin),
// either appending formatted output to out or — when opts.InPlace is
// set — writing the mutated buffer back atomically through internal/cliio.
func processOne(ctx context.Context, path string, prog *program.Program, opts resolvedOptions, stdin io.Reader, out *strings.Builder, logger *vilog.Logger) error {
	data, err := readInput(path, stdin)
	if err != nil {
		return err
	}
	logger.WithField("file", displayName(path)).Debug("processing input (%d bytes)", len(data))

	var records []record.Record
	var resultText string

	if opts.Linewise {
		lines := pipeline.SplitLines(string(data))
		results, runErr := pipeline.Run(ctx, lines, prog, pipeline.Options{
			Serial:     opts.Serial,
			Jobs:       opts.Jobs,
			TrimFields: opts.TrimFields,
			KeepMode:   opts.KeepMode,
		})
		if runErr != nil {
			return runErr
		}
		records = pipeline.Records(results)
		resultText = pipeline.Reassemble(results)
	} else {
		buf := vibuf.FromString(string(data))
		ip := vim.NewInterpreter(buf)
		recs, runErr := prog.Run(ip, opts.TrimFields, opts.KeepMode)
		if runErr != nil {
			return runErr
		}
		records = recs
		resultText = buf.Text()
	}

	if opts.InPlace {
		return cliio.WriteInPlace(path, []byte(resultText), cliio.BackupOptions{
			Enabled:   opts.Backup,
			Extension: opts.BackupExt,
		})
	}

	rendered, err := renderOutput(records, opts)
	if err != nil {
		return err
	}
	out.WriteString(rendered)
	out.WriteString("\n")
	return nil
}

func readInput(path string, stdin io.Reader) ([]byte, error) {
	if path == "" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, vierr.Atf(vierr.IoError, "stdin", "reading: %v", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, vierr.Atf(vierr.IoError, path, "reading: %v", err)
	}
	return data, nil
}

func renderOutput(records []record.Record, opts resolvedOptions) (string, error) {
	switch {
	case opts.JSON:
		return format.JSON(records, false)
	case opts.Template != "":
		return format.Template(records, opts.Template)
	default:
		delim := opts.Delimiter
		if delim == "" {
			delim = "\t"
		}
		return format.Delimiter(records, delim), nil
	}
}

func displayName(path string) string {
	if path == "" {
		return "<stdin>"
	}
	return path
}

func reportErr(stderr io.Writer, err error) int {
	var verr *vierr.Error
	if asVicutError(err, &verr) {
		fmt.Fprintln(stderr, verr.Error())
		return verr.Kind.ExitCode()
	}
	fmt.Fprintf(stderr, "vicut: internal error: %v\n", err)
	return vierr.InternalError.ExitCode()
}

func asVicutError(err error, target **vierr.Error) bool {
	for err != nil {
		if v, ok := err.(*vierr.Error); ok {
			*target = v
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}
