// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package lifeui

import "github.com/charmbracelet/lipgloss"

// Theme defines the color palette for the board viewer. All colors
// use lipgloss ANSI 256-color codes for broad terminal compatibility.
type Theme struct {
	// Cell colors.
	AliveCell lipgloss.Color
	DeadCell  lipgloss.Color

	// UI chrome.
	HeaderForeground lipgloss.Color
	BorderColor      lipgloss.Color
	HelpText         lipgloss.Color

	// Status badges.
	RunningBackground lipgloss.Color
	PausedBackground  lipgloss.Color
	BadgeForeground   lipgloss.Color
}

// DefaultTheme is the built-in dark-terminal color scheme. The alive
// cell color matches the bright green the banner is printed in on the
// original hardware.
var DefaultTheme = Theme{
	AliveCell:         lipgloss.Color("46"),
	DeadCell:          lipgloss.Color("238"),
	HeaderForeground:  lipgloss.Color("252"),
	BorderColor:       lipgloss.Color("240"),
	HelpText:          lipgloss.Color("245"),
	RunningBackground: lipgloss.Color("28"),
	PausedBackground:  lipgloss.Color("94"),
	BadgeForeground:   lipgloss.Color("231"),
}
