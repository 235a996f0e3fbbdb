package utils

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/meysamhadeli/codemd/code_collector/contracts"
	"github.com/meysamhadeli/codemd/code_collector/models"
	"github.com/meysamhadeli/codemd/constants/lipgloss"
)

// ConsoleReporter prints collector progress as styled lines
type ConsoleReporter struct {
	out io.Writer
}

// NewConsoleReporter returns a reporter writing to out, or stdout when out is nil
func NewConsoleReporter(out io.Writer) contracts.IReporter {
	if out == nil {
		out = os.Stdout
	}
	return &ConsoleReporter{out: out}
}

func (r *ConsoleReporter) ScanningDirectory(dir string) {
	fmt.Fprintln(r.out, lipgloss.Gray.Render("Scanning directory: "+dir))
}

func (r *ConsoleReporter) ProcessingFile(name string) {
	fmt.Fprintf(r.out, "Processing file: %s\n", name)
}

func (r *ConsoleReporter) Processed(relativePath string) {
	fmt.Fprintln(r.out, lipgloss.Green.Render("Processed: "+relativePath))
}

func (r *ConsoleReporter) Skipped(relativePath string, err error) {
	fmt.Fprintln(r.out, lipgloss.Yellow.Render(fmt.Sprintf("Skipping %s: Could not read file. Error: %v", relativePath, err)))
}

func (r *ConsoleReporter) Summary(fileCount int, outputFile string) {
	fmt.Fprintln(r.out, strings.Repeat("-", 30))
	fmt.Fprintln(r.out, lipgloss.Green.Render(fmt.Sprintf("Done! Successfully compiled %d files into '%s'.", fileCount, outputFile)))
}

// PrintChanges prints the differences against the previous run of the same root
func PrintChanges(out io.Writer, changes *models.SnapshotDiff) {
	if changes.IsEmpty() {
		fmt.Fprintln(out, lipgloss.Gray.Render("No changes since last run."))
		return
	}

	lines := []string{fmt.Sprintf("Changes since last run: %d added, %d modified, %d removed",
		len(changes.Added), len(changes.Modified), len(changes.Removed))}
	for _, path := range changes.Added {
		lines = append(lines, "+ "+path)
	}
	for _, path := range changes.Modified {
		lines = append(lines, "~ "+path)
	}
	for _, path := range changes.Removed {
		lines = append(lines, "- "+path)
	}

	fmt.Fprintln(out, lipgloss.BoxStyle.Render(strings.Join(lines, "\n")))
}

// NopReporter discards all progress events
type NopReporter struct{}

func (NopReporter) ScanningDirectory(string) {}
func (NopReporter) ProcessingFile(string) {}
func (NopReporter) Processed(string) {}
func (NopReporter) Skipped(string, error) {}
func (NopReporter) Summary(int, string) {}
