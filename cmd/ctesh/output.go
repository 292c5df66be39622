package main

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/bawdo/gosbeecte/internal/db"
	"github.com/bawdo/gosbeecte/internal/scenarios"
)

var (
	sqlColor    = color.New(color.FgCyan)
	paramsColor = color.New(color.FgYellow)
	nameColor   = color.New(color.FgGreen, color.Bold)
	errorColor  = color.New(color.FgRed, color.Bold)
	faintColor  = color.New(color.Faint)
)

func printSQL(w io.Writer, sql string, params []any) {
	sqlColor.Fprintln(w, sql)
	if len(params) > 0 {
		paramsColor.Fprintf(w, "-- params: %v\n", params)
	}
}

func printResult(w io.Writer, res *db.Result) {
	fmt.Fprint(w, res.String())
	faintColor.Fprintf(w, "(%d rows)\n", len(res.Rows))
}

func printScenarios(w io.Writer, all []scenarios.Scenario) {
	width := 0
	for _, s := range all {
		width = max(width, len(s.Name))
	}
	for _, s := range all {
		nameColor.Fprintf(w, "  %-*s", width, s.Name)
		fmt.Fprintf(w, "  %s\n", s.Description)
	}
}

func printError(w io.Writer, err error) {
	errorColor.Fprint(w, "Error: ")
	fmt.Fprintln(w, err)
}
