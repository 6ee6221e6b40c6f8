package main

import (
	"github.com/dshills/vicut/internal/script"
	"github.com/spf13/cobra"
)

// flagSet holds vicut's plain (non-ordered) options — everything on the
// CLI surface except the program-building flags buildProgramFromArgs
// already consumes. Declared with cobra/pflag the way zjrosen-perles'
// cmd/root.go binds flags straight to package-level option fields.
type flagSet struct {
	cmd *cobra.Command

	script string

	jsonOut   bool
	delimiter string
	template  string

	inPlace      bool
	backup       bool
	backupExt    string
	keepMode     bool
	linewise     bool
	serial       bool
	jobs         int
	trimFields bool
	trace      bool
}

func newFlagSet() *flagSet {
	fs := &flagSet{}
	cmd := &cobra.Command{
		Use:           "vicut [flags] [files...]",
		Short:         "headless Vim-grammar text processor for shell pipelines",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.Flags().StringVarP(&fs.script, "script", "s", "", "run a DSL script file instead of -c/-m/-n/-g/-v flags")
	cmd.Flags().BoolVarP(&fs.jsonOut, "json", "j", false, "emit records as a JSON array")
	cmd.Flags().StringVarP(&fs.delimiter, "delimiter", "d", "", "join field text with this separator (default tab)")
	cmd.Flags().StringVarP(&fs.template, "template", "t", "", "render each record with this {{field}} template")
	cmd.Flags().BoolVarP(&fs.inPlace, "in-place", "i", false, "write the mutated buffer back to each file")
	cmd.Flags().BoolVar(&fs.backup, "backup", false, "keep a backup of each file before an in-place write")
	cmd.Flags().StringVar(&fs.backupExt, "backup-extension", ".bak", "backup file suffix")
	cmd.Flags().BoolVar(&fs.keepMode, "keep-mode", false, "don't force Normal mode after a completed operator")
	cmd.Flags().BoolVar(&fs.linewise, "linewise", false, "run the program once per line, independently")
	cmd.Flags().BoolVar(&fs.serial, "serial", false, "disable worker parallelism in --linewise mode")
	cmd.Flags().IntVar(&fs.jobs, "jobs", 0, "worker count for --linewise (default: number of CPUs)")
	cmd.Flags().BoolVar(&fs.trimFields, "trim-fields", false, "trim leading/trailing whitespace from captured fields")
	cmd.Flags().BoolVar(&fs.trace, "trace", false, "log debug details (program size, each input processed) to stderr")

	fs.cmd = cmd
	return fs
}

// resolvedOptions is the effective option set after CLI flags and (if a
// script ran) its opts{} prelude have been merged.
type resolvedOptions struct {
	JSON       bool
	Delimiter  string
	Template   string
	InPlace    bool
	Backup     bool
	BackupExt  string
	KeepMode   bool
	Linewise   bool
	Serial     bool
	Jobs       int
	TrimFields bool
	Trace      bool
}

func optionsFromFlags(f *flagSet) resolvedOptions {
	return resolvedOptions{
		JSON:       f.jsonOut,
		Delimiter:  f.delimiter,
		Template:   f.template,
		InPlace:    f.inPlace,
		Backup:     f.backup,
		BackupExt:  f.backupExt,
		KeepMode:   f.keepMode,
		Linewise:   f.linewise,
		Serial:     f.serial,
		Jobs:       f.jobs,
		TrimFields: f.trimFields,
		Trace:      f.trace,
	}
}

// mergeScriptOptions layers a script's opts{} prelude under the CLI
// flags: an opts{} key fills in a setting only where the corresponding
// flag was never explicitly passed, so an explicit flag always wins over
// the script's own default.
func mergeScriptOptions(base resolvedOptions, f *flagSet, s script.Options) resolvedOptions {
	changed := f.cmd.Flags().Changed
	out := base

	if s.HasJSON && !changed("json") {
		out.JSON = s.JSON
	}
	if s.HasDelimiter && !changed("delimiter") {
		out.Delimiter = s.Delimiter
	}
	if s.HasTemplate && !changed("template") {
		out.Template = s.Template
	}
	if s.HasEditInplace && !changed("in-place") {
		out.InPlace = s.EditInplace
	}
	if s.HasBackup && !changed("backup") {
		out.Backup = s.Backup
	}
	if s.HasBackupExt && !changed("backup-extension") {
		out.BackupExt = s.BackupExt
	}
	if s.HasKeepMode && !changed("keep-mode") {
		out.KeepMode = s.KeepMode
	}
	if s.HasLinewise && !changed("linewise") {
		out.Linewise = s.Linewise
	}
	if s.HasSerial && !changed("serial") {
		out.Serial = s.Serial
	}
	if s.HasMaxJobs && !changed("jobs") {
		out.Jobs = s.MaxJobs
	}
	if s.HasTrimFields && !changed("trim-fields") {
		out.TrimFields = s.TrimFields
	}
	if s.HasTrace && !changed("trace") {
		out.Trace = s.Trace
	}
	return out
}
