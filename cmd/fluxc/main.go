// Command fluxc type-checks a directory tree of Flux source files and
// reports every diagnostic it finds.
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/mattn/go-isatty"

	"github.com/fluxscript/flux/internal/config"
	"github.com/fluxscript/flux/internal/diagnostics"
	"github.com/fluxscript/flux/internal/types"
	"github.com/fluxscript/flux/pkg/flux"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) < 2 || args[0] != "check" {
		fmt.Fprintln(os.Stderr, "usage: fluxc check <dir> [-json]")
		return 2
	}
	dir := args[1]
	jsonOut := false
	noColor := os.Getenv("NO_COLOR") != ""
	for _, a := range args[2:] {
		switch a {
		case "-json", "--json":
			jsonOut = true
		case "-no-color":
			noColor = true
		}
	}
	if !jsonOut {
		config.ColorDiagnostics = !noColor && isatty.IsTerminal(os.Stdout.Fd())
	}

	results, err := flux.CheckDir(dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "fluxc: %v\n", err)
		return 1
	}

	runID := uuid.New().String()
	failed := false
	for _, r := range results {
		if len(r.Errors) > 0 {
			failed = true
		}
	}

	if jsonOut {
		printJSON(runID, results)
	} else {
		printText(results)
	}

	if failed {
		return 1
	}
	return 0
}

func printText(results map[string]*flux.Result) {
	for path, r := range results {
		if len(r.Errors) == 0 {
			fmt.Printf("ok   %s  %s\n", path, types.CanonicalString(r.Export))
			continue
		}
		for _, d := range r.Errors {
			fmt.Println(render(d))
		}
	}
}

func render(d *diagnostics.Diagnostic) string {
	if !config.ColorDiagnostics {
		return d.Error()
	}
	const (
		red   = "\x1b[31m"
		reset = "\x1b[0m"
	)
	return fmt.Sprintf("%s%s%s", red, d.Error(), reset)
}

type jsonReport struct {
	RunID    string             `json:"run_id"`
	Packages []jsonPackageEntry `json:"packages"`
}

type jsonPackageEntry struct {
	ImportPath string             `json:"import_path"`
	Export     string             `json:"export"`
	Errors     []jsonDiagnostic   `json:"errors"`
}

type jsonDiagnostic struct {
	File    string `json:"file"`
	Line    int    `json:"line"`
	Column  int    `json:"column"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func printJSON(runID string, results map[string]*flux.Result) {
	report := jsonReport{RunID: runID}
	for path, r := range results {
		entry := jsonPackageEntry{ImportPath: path, Export: types.CanonicalString(r.Export)}
		for _, d := range r.Errors {
			entry.Errors = append(entry.Errors, jsonDiagnostic{
				File: d.File, Line: d.Start.Line, Column: d.Start.Column,
				Code: string(d.Code), Message: d.Message,
			})
		}
		report.Packages = append(report.Packages, entry)
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.Encode(report)
}
