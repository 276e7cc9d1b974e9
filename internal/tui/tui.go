// Package tui is a terminal dropzone built on bubbletea.
package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/imagedrop/service/internal/intake"
)

// Run shows the dropzone until the user quits or ctx is cancelled.
// Bracketed paste is on by default, so dragging files into the terminal
// arrives as a paste.
func Run(ctx context.Context, ctrl *intake.Controller) error {
	return run(ctx, ctrl, intake.NewPointerBus())
}

func run(ctx context.Context, ctrl *intake.Controller, bus *intake.PointerBus, opts ...tea.ProgramOption) error {
	// The pointer subscription is released however the program ends.
	defer ctrl.Unmount()

	model := New(ctx, ctrl, bus)
	opts = append([]tea.ProgramOption{
		tea.WithContext(ctx),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithReportFocus(),
	}, opts...)

	_, err := tea.NewProgram(model, opts...).Run()
	return err
}
