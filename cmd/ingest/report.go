package main

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/JaimeStill/actigraphy/internal/ingest"
)

var (
	createdColor = color.New(color.FgGreen)
	skippedColor = color.New(color.FgYellow)
	failedColor  = color.New(color.FgRed)
	dimColor     = color.New(color.FgHiBlack)
)

func printReport(w io.Writer, report *ingest.Report) {
	dimColor.Fprintf(w, "run %s\n", report.RunID)

	for _, name := range report.Created {
		createdColor.Fprintf(w, "  created  %s\n", name)
	}
	for _, name := range report.Skipped {
		skippedColor.Fprintf(w, "  skipped  %s\n", name)
	}
	for _, f := range report.Failed {
		failedColor.Fprintf(w, "  failed   %s", f.Dir)
		dimColor.Fprintf(w, "  %s\n", f.Reason)
	}

	fmt.Fprintf(
		w,
		"%d created, %d skipped, %d failed\n",
		len(report.Created),
		len(report.Skipped),
		len(report.Failed),
	)
}
