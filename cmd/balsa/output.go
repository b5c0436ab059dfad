package main

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"balsa/internal/observ"
)

var (
	errorColor   = color.New(color.FgRed, color.Bold)
	warningColor = color.New(color.FgYellow, color.Bold)
	headingColor = color.New(color.Bold)
)

func printTimings(out io.Writer, reports ...observ.Report) {
	for _, r := range reports {
		if len(r.Phases) == 0 {
			continue
		}
		fmt.Fprint(out, r.Summary())
	}
}
