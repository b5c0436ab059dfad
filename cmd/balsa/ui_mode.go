package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

type uiMode string

const (
	uiModeAuto uiMode = "auto"
	uiModeOn   uiMode = "on"
	uiModeOff  uiMode = "off"
)

// uiEnv sets the progress view when --ui is not given.
const uiEnv = "BALSA_UI"

func readUIMode(value string) (uiMode, error) {
	switch mode := uiMode(strings.ToLower(strings.TrimSpace(value))); mode {
	case "":
		return uiModeAuto, nil
	case uiModeAuto, uiModeOn, uiModeOff:
		return mode, nil
	}
	return "", fmt.Errorf("invalid ui mode %q (expected auto|on|off)", value)
}

// resolveUIMode reads --ui, falling back to $BALSA_UI.
func resolveUIMode(cmd *cobra.Command) (uiMode, error) {
	value, err := cmd.Flags().GetString("ui")
	if err != nil {
		return "", fmt.Errorf("failed to get ui flag: %w", err)
	}
	if !cmd.Flags().Changed("ui") {
		value = os.Getenv(uiEnv)
	}
	mode, err := readUIMode(value)
	if err != nil && !cmd.Flags().Changed("ui") {
		return "", fmt.Errorf("%s: %w", uiEnv, err)
	}
	return mode, err
}

// shouldUseTUI decides auto mode: the view needs an interactive stdout that
// can redraw.
func shouldUseTUI(mode uiMode) bool {
	switch mode {
	case uiModeOn:
		return true
	case uiModeOff:
		return false
	}
	return isTerminal(os.Stdout) && os.Getenv("TERM") != "dumb"
}
