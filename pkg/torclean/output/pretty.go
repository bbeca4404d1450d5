package output

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// PrettyFormatter formats reports with colors and styling using lipgloss.
// It produces a visually appealing output suitable for terminal display.
type PrettyFormatter struct{}

// Format writes the formatted report to the buffer.
func (f *PrettyFormatter) Format(w *bytes.Buffer, r *Report) error {
	w.WriteString(f.formatHeader(r))
	w.WriteString("\n")

	if r.Reconcile != nil {
		w.WriteString(f.formatReconcile(r.Reconcile))
	}
	if r.Changes != nil {
		w.WriteString(f.formatChanges(r.Changes))
	}
	if r.Execution != nil {
		w.WriteString(f.formatExecution(r.Execution))
	}

	w.WriteString(f.formatFooter(r))

	if len(r.Warnings) > 0 {
		w.WriteString("\n")
		w.WriteString(f.formatWarnings(r.Warnings))
	}

	return nil
}

// formatHeader builds the header box with run metadata.
func (f *PrettyFormatter) formatHeader(r *Report) string {
	var lines []string

	rootLabel := LabelStyle.Render("Root:")
	rootValue := ValueStyle.Render(r.Root)
	lines = append(lines, fmt.Sprintf("%s %s", rootLabel, rootValue))

	if r.Descriptor != "" {
		descLabel := LabelStyle.Render("Descriptor:")
		descValue := ValueStyle.Render(r.Descriptor)
		lines = append(lines, fmt.Sprintf("%s %s", descLabel, descValue))
	}

	scannedLabel := LabelStyle.Render("Scanned:")
	scannedValue := ValueStyle.Render(fmt.Sprintf("%d files, %d dirs in %s",
		r.Stats.FilesScanned, r.Stats.DirsScanned, formatDuration(r.Stats.Duration)))
	lines = append(lines, fmt.Sprintf("%s %s", scannedLabel, scannedValue))

	if r.DryRun {
		lines = append(lines, WarningStyle.Bold(true).Render("Dry run, nothing deleted"))
	}

	return HeaderBox.Render(strings.Join(lines, "\n"))
}

// formatReconcile builds the extraneous, missing and empty-dir listings.
func (f *PrettyFormatter) formatReconcile(s *ReconcileSection) string {
	var sb strings.Builder

	sb.WriteString(TitleStyle.Render("Extraneous files"))
	sb.WriteString("\n")
	if len(s.Extraneous) == 0 {
		sb.WriteString(MutedStyle.Render("  none, directory matches descriptor"))
		sb.WriteString("\n")
	} else {
		width := maxSizeWidth(s.Extraneous)
		for _, e := range s.Extraneous {
			sizeStr := SizeStyle.Render(padLeft(e.SizeHuman, width))
			sb.WriteString(fmt.Sprintf("  %s  %s\n", sizeStr, DangerStyle.Render(e.Path)))
		}
	}

	if len(s.EmptyDirs) > 0 {
		sb.WriteString(TitleStyle.Render("Empty directories"))
		sb.WriteString("\n")
		for _, d := range s.EmptyDirs {
			sb.WriteString(fmt.Sprintf("  %s\n", DangerStyle.Render(d+"/")))
		}
	}

	if len(s.Missing) > 0 {
		sb.WriteString(TitleStyle.Render("Missing files"))
		sb.WriteString("\n")
		for _, m := range s.Missing {
			sb.WriteString(fmt.Sprintf("  %s\n", MutedStyle.Render(m)))
		}
	}

	return sb.String()
}

// formatChanges builds the snapshot difference listing.
func (f *PrettyFormatter) formatChanges(s *ChangesSection) string {
	var sb strings.Builder

	if len(s.Added) == 0 && len(s.Removed) == 0 && len(s.Resized) == 0 &&
		len(s.AddedDirs) == 0 && len(s.RemovedDirs) == 0 {
		sb.WriteString(MutedStyle.Render("  No changes\n"))
		return sb.String()
	}

	for _, e := range s.Added {
		sb.WriteString(fmt.Sprintf("  %s %s %s\n",
			SuccessStyle.Render("+"), PathStyle.Render(e.Path),
			MutedStyle.Render("("+e.SizeHuman+")")))
	}
	for _, e := range s.Removed {
		sb.WriteString(fmt.Sprintf("  %s %s %s\n",
			DangerStyle.Render("-"), PathStyle.Render(e.Path),
			MutedStyle.Render("("+e.SizeHuman+")")))
	}
	for _, e := range s.Resized {
		sb.WriteString(fmt.Sprintf("  %s %s %s\n",
			WarningStyle.Render("~"), PathStyle.Render(e.Path),
			MutedStyle.Render(fmt.Sprintf("(%s -> %s)",
				humanize.IBytes(uint64(e.OldSize)), humanize.IBytes(uint64(e.NewSize))))))
	}
	for _, d := range s.AddedDirs {
		sb.WriteString(fmt.Sprintf("  %s %s\n",
			SuccessStyle.Render("+"), PathStyle.Render(d+"/")))
	}
	for _, d := range s.RemovedDirs {
		sb.WriteString(fmt.Sprintf("  %s %s\n",
			DangerStyle.Render("-"), PathStyle.Render(d+"/")))
	}

	return sb.String()
}

// formatExecution builds the per-operation result listing.
func (f *PrettyFormatter) formatExecution(s *ExecutionSection) string {
	var sb strings.Builder

	sb.WriteString(TitleStyle.Render("Deleted"))
	sb.WriteString("\n")
	for _, res := range s.Results {
		path := res.Path
		if res.Kind == "dir" {
			path += "/"
		}
		if res.Outcome == "deleted" {
			sb.WriteString(fmt.Sprintf("  %s %s\n",
				SuccessStyle.Render("ok"), PathStyle.Render(path)))
			continue
		}
		sb.WriteString(fmt.Sprintf("  %s %s %s\n",
			DangerStyle.Render(res.Outcome), PathStyle.Render(path),
			MutedStyle.Render(res.Error)))
	}

	return sb.String()
}

// formatFooter builds the footer box with summary information.
func (f *PrettyFormatter) formatFooter(r *Report) string {
	var parts []string

	if r.Reconcile != nil {
		countLabel := LabelStyle.Render("Extraneous:")
		countValue := ValueStyle.Render(fmt.Sprintf("%d", len(r.Reconcile.Extraneous)))
		parts = append(parts, fmt.Sprintf("%s %s", countLabel, countValue))

		sizeLabel := LabelStyle.Render("Reclaimable:")
		sizeValue := SizeStyle.Render(humanize.IBytes(uint64(r.ReclaimableSize())))
		parts = append(parts, fmt.Sprintf("%s %s", sizeLabel, sizeValue))
	}

	if r.Changes != nil {
		changesLabel := LabelStyle.Render("Changes:")
		total := len(r.Changes.Added) + len(r.Changes.Removed) + len(r.Changes.Resized) +
			len(r.Changes.AddedDirs) + len(r.Changes.RemovedDirs)
		parts = append(parts, fmt.Sprintf("%s %s", changesLabel,
			ValueStyle.Render(fmt.Sprintf("%d", total))))
	}

	if r.Execution != nil {
		parts = append(parts, fmt.Sprintf("%s %s",
			LabelStyle.Render("Deleted:"),
			SuccessStyle.Render(fmt.Sprintf("%d", r.Execution.Deleted))))
		if r.Execution.Failed > 0 {
			parts = append(parts, fmt.Sprintf("%s %s",
				LabelStyle.Render("Failed:"),
				DangerStyle.Render(fmt.Sprintf("%d", r.Execution.Failed))))
		}
	}

	parts = append(parts, MutedStyle.Render("Use -o plain for unformatted output"))

	return FooterBox.Render(strings.Join(parts, "  "))
}

// formatWarnings builds a warning block.
func (f *PrettyFormatter) formatWarnings(warnings []string) string {
	var sb strings.Builder

	sb.WriteString(WarningStyle.Bold(true).Render("Warnings:"))
	sb.WriteString("\n")

	for _, warning := range warnings {
		sb.WriteString(WarningStyle.Render("  " + warning))
		sb.WriteString("\n")
	}

	return sb.String()
}

// formatDuration formats a walk duration in a human-friendly way.
func formatDuration(d time.Duration) string {
	sec := d.Seconds()
	if sec < 1 {
		return fmt.Sprintf("%.0fms", sec*1000)
	}
	if sec < 60 {
		return fmt.Sprintf("%.1fs", sec)
	}
	minutes := int(sec) / 60
	seconds := int(sec) % 60
	return fmt.Sprintf("%dm %ds", minutes, seconds)
}

// maxSizeWidth returns the widest human size among entries, at least 8.
func maxSizeWidth(entries []PathEntry) int {
	width := 8
	for _, e := range entries {
		if len(e.SizeHuman) > width {
			width = len(e.SizeHuman)
		}
	}
	return width
}

// padLeft pads a string with spaces on the left to achieve the desired width.
func padLeft(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return strings.Repeat(" ", width-len(s)) + s
}

func init() {
	Register("pretty", func() Formatter {
		return &PrettyFormatter{}
	})
}

// Ensure PrettyFormatter implements Formatter.
var _ Formatter = (*PrettyFormatter)(nil)
