package output

import (
	"bytes"
	"text/tabwriter"
)

// PlainFormatter formats reports as simple tab-separated lines.
// It produces plain text output suitable for scripting and piping.
// No colors or styling are applied.
type PlainFormatter struct{}

// Format writes the formatted report to the buffer.
func (f *PlainFormatter) Format(w *bytes.Buffer, r *Report) error {
	// Use tabwriter for aligned columns
	tw := tabwriter.NewWriter(w, 0, 0, 1, ' ', 0)

	if r.Reconcile != nil {
		for _, e := range r.Reconcile.Extraneous {
			if _, err := tw.Write([]byte("extraneous\t" + e.SizeHuman + "\t" + e.Path + "\n")); err != nil {
				return err
			}
		}
		for _, d := range r.Reconcile.EmptyDirs {
			if _, err := tw.Write([]byte("empty-dir\t\t" + d + "/\n")); err != nil {
				return err
			}
		}
		for _, m := range r.Reconcile.Missing {
			if _, err := tw.Write([]byte("missing\t\t" + m + "\n")); err != nil {
				return err
			}
		}
	}

	if r.Changes != nil {
		for _, e := range r.Changes.Added {
			if _, err := tw.Write([]byte("added\t" + e.SizeHuman + "\t" + e.Path + "\n")); err != nil {
				return err
			}
		}
		for _, e := range r.Changes.Removed {
			if _, err := tw.Write([]byte("removed\t" + e.SizeHuman + "\t" + e.Path + "\n")); err != nil {
				return err
			}
		}
		for _, e := range r.Changes.Resized {
			if _, err := tw.Write([]byte("resized\t\t" + e.Path + "\n")); err != nil {
				return err
			}
		}
		for _, d := range r.Changes.AddedDirs {
			if _, err := tw.Write([]byte("added-dir\t\t" + d + "/\n")); err != nil {
				return err
			}
		}
		for _, d := range r.Changes.RemovedDirs {
			if _, err := tw.Write([]byte("removed-dir\t\t" + d + "/\n")); err != nil {
				return err
			}
		}
	}

	if r.Execution != nil {
		for _, res := range r.Execution.Results {
			path := res.Path
			if res.Kind == "dir" {
				path += "/"
			}
			if _, err := tw.Write([]byte(res.Outcome + "\t\t" + path + "\n")); err != nil {
				return err
			}
		}
	}

	return tw.Flush()
}

func init() {
	Register("plain", func() Formatter {
		return &PlainFormatter{}
	})
}

// Ensure PlainFormatter implements Formatter.
var _ Formatter = (*PlainFormatter)(nil)
