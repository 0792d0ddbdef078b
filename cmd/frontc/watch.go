package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
)

// newWatchCmd builds the `frontc watch` subcommand: reparse files whenever
// they change and report diagnostics, a fast inner loop for working on
// fixture files.
func newWatchCmd(out, errOut io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "watch <files>",
		Short: "Reparse files on change and report diagnostics",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return watchFiles(args, out, errOut)
		},
	}
}

func watchFiles(files []string, out, errOut io.Writer) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	for _, f := range files {
		if err := watcher.Add(f); err != nil {
			return fmt.Errorf("watching %s: %w", f, err)
		}
	}

	// Initial pass so the first report does not wait for a change.
	for _, f := range files {
		reportFile(f, out, errOut)
	}

	for {
		select {
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if !strings.HasSuffix(ev.Name, ".c") && !hasFile(files, ev.Name) {
				continue
			}
			reportFile(ev.Name, out, errOut)
			// Some editors replace the file on save, which drops the
			// watch; re-add quietly.
			watcher.Add(ev.Name)
		case werr, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintf(errOut, "frontc: watch: %v\n", werr)
		}
	}
}

func hasFile(files []string, name string) bool {
	for _, f := range files {
		if f == name {
			return true
		}
	}
	return false
}

func reportFile(filename string, out, errOut io.Writer) {
	if err := checkFile(filename, out); err != nil {
		fmt.Fprintf(errOut, "frontc: %v\n", err)
		return
	}
	fmt.Fprintf(out, "%s: ok\n", filename)
}
