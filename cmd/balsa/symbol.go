package main

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"balsa/internal/driver"
	"balsa/internal/source"
)

var symbolCmd = &cobra.Command{
	Use:   "symbol [flags] <file.bal> <line> <column>",
	Short: "Show the symbol at a 0-based source position",
	Args:  cobra.ExactArgs(3),
	RunE:  runSymbol,
}

func init() {
	symbolCmd.Flags().String("format", "pretty", "output format (pretty|json)")
}

func runSymbol(cmd *cobra.Command, args []string) error {
	cleanup, err := startSession(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	if format != "pretty" && format != "json" {
		return fmt.Errorf("unknown format: %s", format)
	}
	pos, err := parsePosition(args[1], args[2])
	if err != nil {
		return err
	}

	t, err := loadTarget(args[0])
	if err != nil {
		return err
	}
	if t.unit == "" {
		return fmt.Errorf("%s is not a file", args[0])
	}
	opts, err := analysisOptions(cmd, t.manifest)
	if err != nil {
		return err
	}
	res, err := driver.AnalyzeProject(cmd.Context(), t.project, opts)
	if err != nil {
		return err
	}
	u, ok := res.Unit(t.unit)
	if !ok || u.Model == nil {
		return fmt.Errorf("unit %s could not be analyzed", t.unit)
	}

	sym, ok := u.Model.SymbolAt(pos)
	if !ok {
		return fmt.Errorf("no symbol at %s:%s", args[0], pos)
	}
	info := describeSymbol(sym, res.FileSet)
	if format == "json" {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(info)
	}
	printSymbolPretty(cmd.OutOrStdout(), info)
	return nil
}

func parsePosition(lineArg, colArg string) (source.LinePosition, error) {
	line, err := strconv.ParseUint(lineArg, 10, 32)
	if err != nil {
		return source.LinePosition{}, fmt.Errorf("invalid line %q: %w", lineArg, err)
	}
	col, err := strconv.ParseUint(colArg, 10, 32)
	if err != nil {
		return source.LinePosition{}, fmt.Errorf("invalid column %q: %w", colArg, err)
	}
	return source.LinePosition{Line: uint32(line), Col: uint32(col)}, nil // #nosec G115 -- parsed as 32-bit
}
