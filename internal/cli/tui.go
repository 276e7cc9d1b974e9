package cli

import (
	"github.com/spf13/cobra"

	"github.com/imagedrop/service/internal/logger"
	"github.com/imagedrop/service/internal/tui"
)

func newTUICmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Open the interactive terminal dropzone",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.resolve(cmd)
			if err != nil {
				return err
			}

			// The alt screen owns the terminal; results are shown in the view.
			log := logger.Nop()

			ctrl, err := newController(cfg, log)
			if err != nil {
				return err
			}
			return tui.Run(cmd.Context(), ctrl)
		},
	}
}
