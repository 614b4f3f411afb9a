package main

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/mattn/go-isatty"

	"transplant/internal/evidence"
	"transplant/internal/migration"
)

type statusKind int

const (
	statusInfo statusKind = iota
	statusOK
	statusWarn
)

const (
	ansiReset  = "\x1b[0m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
)

const summaryLabelWidth = 18

func renderRunSummary(out io.Writer, result *migration.Result) {
	colorize := shouldColorize(out)

	mode := "live"
	if result.DryRun {
		mode = "dry run"
	}
	fmt.Fprintf(out, "Migration run %s (%s)\n", result.RunID, mode)

	writeSummaryLine(out, "Total rows", strconv.Itoa(result.TotalRows), statusInfo, colorize)
	writeSummaryLine(out, "Valid rows", strconv.Itoa(result.ValidRows), statusInfo, colorize)
	writeSummaryLine(out, "Skipped rows", strconv.Itoa(result.SkippedRows), warnIfPositive(result.SkippedRows), colorize)
	writeSummaryLine(out, "Processed rows", strconv.Itoa(result.ProcessedRows), statusInfo, colorize)
	writeSummaryLine(out, "Failed rows", strconv.Itoa(result.FailedRows), warnIfPositive(result.FailedRows), colorize)
	writeSummaryLine(out, "Users created", strconv.Itoa(result.UsersCreated), statusOK, colorize)
	writeSummaryLine(out, "Schools created", strconv.Itoa(result.SchoolsCreated), statusOK, colorize)

	if len(result.Errors) > 0 {
		fmt.Fprintln(out)
		rows := make([][]string, 0, len(result.Errors))
		for _, failure := range result.Errors {
			rows = append(rows, []string{strconv.Itoa(failure.Row), failure.Email, failure.Reason})
		}
		fmt.Fprintln(out, renderTable([]string{"Row", "Email", "Reason"}, rows, 1))
	}

	if !result.DryRun && len(result.Credentials) > 0 {
		fmt.Fprintf(out, "\n%d temporary credentials generated; rerun with --show-credentials to print them.\n", len(result.Credentials))
	}
}

func renderCredentials(out io.Writer, credentials []migration.Credential) {
	rows := make([][]string, 0, len(credentials))
	for _, cred := range credentials {
		rows = append(rows, []string{cred.Email, cred.TemporaryPassword, cred.SchoolName})
	}
	fmt.Fprintln(out, renderTable([]string{"Email", "Temporary Password", "School"}, rows))
}

func renderEvidenceSummary(out io.Writer, summary *evidence.Summary) {
	colorize := shouldColorize(out)

	fmt.Fprintln(out, "Evidence placeholders")
	writeSummaryLine(out, "Rows examined", strconv.Itoa(summary.RowsExamined), statusInfo, colorize)
	writeSummaryLine(out, "Schools matched", strconv.Itoa(summary.SchoolsMatched), statusOK, colorize)
	writeSummaryLine(out, "Schools missing", strconv.Itoa(summary.SchoolsMissing), warnIfPositive(summary.SchoolsMissing), colorize)
	writeSummaryLine(out, "Records created", strconv.Itoa(summary.RecordsCreated), statusOK, colorize)
	writeSummaryLine(out, "Stages skipped", strconv.Itoa(summary.StagesSkipped), statusInfo, colorize)
}

func writeSummaryLine(out io.Writer, label, value string, kind statusKind, colorize bool) {
	line := fmt.Sprintf("  %-*s %s", summaryLabelWidth, label+":", value)
	if colorize {
		switch kind {
		case statusOK:
			line = ansiGreen + line + ansiReset
		case statusWarn:
			line = ansiYellow + line + ansiReset
		}
	}
	fmt.Fprintln(out, line)
}

func warnIfPositive(count int) statusKind {
	if count > 0 {
		return statusWarn
	}
	return statusInfo
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
