package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"balsa/internal/driver"
	"balsa/internal/source"
	"balsa/internal/types"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect [flags] [file.bal|directory]",
	Short: "Dump the symbols, types and constant values of analyzed units",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runInspect,
}

func init() {
	inspectCmd.Flags().String("format", "yaml", "output format (yaml|json)")
	inspectCmd.Flags().Bool("exprs", false, "include the type of every checked expression")
}

type unitDump struct {
	Unit        string         `json:"unit" yaml:"unit"`
	Path        string         `json:"path" yaml:"path"`
	Status      string         `json:"status" yaml:"status"`
	Symbols     []symbolInfo   `json:"symbols,omitempty" yaml:"symbols,omitempty"`
	Exprs       []exprTypeInfo `json:"exprs,omitempty" yaml:"exprs,omitempty"`
	Diagnostics int            `json:"diagnostics" yaml:"diagnostics"`
}

type exprTypeInfo struct {
	At   string `json:"at" yaml:"at"`
	Type string `json:"type" yaml:"type"`
}

func runInspect(cmd *cobra.Command, args []string) error {
	cleanup, err := startSession(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	withExprs, err := cmd.Flags().GetBool("exprs")
	if err != nil {
		return fmt.Errorf("failed to get exprs flag: %w", err)
	}

	t, err := loadTarget(pathArg(args))
	if err != nil {
		return err
	}
	opts, err := analysisOptions(cmd, t.manifest)
	if err != nil {
		return err
	}
	res, err := driver.AnalyzeProject(cmd.Context(), t.project, opts)
	if err != nil {
		return err
	}

	var dumps []unitDump
	for _, u := range res.Units {
		if t.unit != "" && u.Name != t.unit {
			continue
		}
		dumps = append(dumps, dumpUnit(u, res.FileSet, withExprs))
	}
	return writeDump(cmd.OutOrStdout(), format, dumps)
}

func dumpUnit(u *driver.UnitResult, fs *source.FileSet, withExprs bool) unitDump {
	d := unitDump{Unit: u.Name, Diagnostics: len(u.Diagnostics), Status: "ok"}
	if u.File != nil {
		d.Path = u.File.Path
	}
	switch {
	case u.Skipped:
		d.Status = "skipped"
	case u.HasErrors():
		d.Status = "error"
	}
	if u.Model == nil {
		return d
	}
	for _, sym := range u.Model.Symbols() {
		d.Symbols = append(d.Symbols, describeSymbol(sym, fs))
	}
	if withExprs {
		r := u.Model.Result()
		for _, et := range r.ExprTypes {
			start, _ := fs.Resolve(et.Span)
			d.Exprs = append(d.Exprs, exprTypeInfo{
				At:   fmt.Sprintf("%d:%d", start.Line, start.Col),
				Type: types.Label(r.Types, et.Type),
			})
		}
	}
	return d
}

func writeDump(out io.Writer, format string, v any) error {
	switch format {
	case "yaml":
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("failed to encode yaml: %w", err)
		}
		return enc.Close()
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	return fmt.Errorf("unknown format: %s", format)
}
