package main

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/mattn/go-isatty"

	"chalk/internal/pipeline"
	"chalk/internal/zipcollect"
)

const (
	ansiReset = "\x1b[0m"
	ansiRed   = "\x1b[31m"
	ansiGreen = "\x1b[32m"
)

// renderRunReport summarizes a pipeline run: one line per processed notebook
// plus a verdict, with failures listed in a table.
func renderRunReport(result *pipeline.Result, colorize bool) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s (run %s): %d notebook(s) processed\n",
		result.Operation, result.Assignment, result.RunID, len(result.Documents))

	failed := result.Failed()
	if len(failed) == 0 {
		b.WriteString(verdict("all notebooks succeeded", ansiGreen, colorize))
		return b.String()
	}

	sort.Slice(failed, func(i, j int) bool {
		if failed[i].StudentID != failed[j].StudentID {
			return failed[i].StudentID < failed[j].StudentID
		}
		return failed[i].NotebookID < failed[j].NotebookID
	})

	rows := make([][]string, 0, len(failed))
	for _, doc := range failed {
		student := doc.StudentID
		if student == "" {
			student = "-"
		}
		rows = append(rows, []string{student, doc.NotebookID, doc.Err.Error()})
	}
	b.WriteString(renderTable(
		[]string{"Student", "Notebook", "Error"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft}))
	b.WriteString("\n")
	b.WriteString(verdict(fmt.Sprintf("%d notebook(s) failed", len(failed)), ansiRed, colorize))
	return b.String()
}

// renderCollectReport summarizes a collection run.
func renderCollectReport(result *zipcollect.Result, colorize bool) string {
	var b strings.Builder
	fmt.Fprintf(&b, "collect %s (run %s): %d archive(s) extracted, %d skipped, %d file(s) scanned\n",
		result.Assignment, result.RunID,
		result.ArchivesExtracted, result.ArchivesSkipped, result.FilesScanned)

	for _, failure := range result.ArchivesFailed {
		fmt.Fprintf(&b, "  failed: %s: %v\n", failure.Archive, failure.Err)
	}
	for _, path := range result.Unrecognized {
		fmt.Fprintf(&b, "  unrecognized: %s\n", path)
	}

	if result.NoOp() && len(result.ArchivesFailed) == 0 {
		b.WriteString(verdict("no changes, submissions already current", ansiGreen, colorize))
		return b.String()
	}

	attempts := append([]zipcollect.Attempt(nil), result.Attempts...)
	sort.Slice(attempts, func(i, j int) bool {
		if attempts[i].StudentID != attempts[j].StudentID {
			return attempts[i].StudentID < attempts[j].StudentID
		}
		return attempts[i].FileID < attempts[j].FileID
	})

	rows := make([][]string, 0, len(attempts))
	for _, attempt := range attempts {
		ts := "-"
		if !attempt.Timestamp.IsZero() {
			ts = attempt.Timestamp.Format("2006-01-02 15:04:05")
		}
		rows = append(rows, []string{
			attempt.StudentID, attempt.FileID, ts, yesNo(attempt.Written),
		})
	}
	b.WriteString(renderTable(
		[]string{"Student", "File", "Timestamp", "Written"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft}))
	b.WriteString("\n")
	b.WriteString(verdict(fmt.Sprintf("%d submission(s) updated", result.Written()), ansiGreen, colorize))
	return b.String()
}

func verdict(message, color string, colorize bool) string {
	if colorize {
		return color + message + ansiReset
	}
	return message
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
