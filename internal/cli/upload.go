package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/imagedrop/service/internal/intake"
	"github.com/imagedrop/service/internal/logger"
)

func newUploadCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "upload <files...>",
		Short: "Upload files without the interactive dropzone",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUpload(cmd, opts, args)
		},
	}
}

func runUpload(cmd *cobra.Command, opts *rootOptions, args []string) error {
	cfg, err := opts.resolve(cmd)
	if err != nil {
		return err
	}

	log := logger.NewConsoleLogger("dropzone")
	logger.SetLevel(cfg.LogLevel)

	for _, path := range args {
		info, err := os.Stat(path)
		if err != nil {
			return fmt.Errorf("cannot read %s: %w", path, err)
		}
		if info.IsDir() {
			return fmt.Errorf("%s is a directory", path)
		}
	}

	ctrl, err := newController(cfg, log)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	ctrl.OnDrop(intake.LocalFiles(args))

	ev, err := ctrl.WaitBatch(ctx)
	if err != nil {
		return err
	}
	if ev.Err != nil {
		return fmt.Errorf("prepare files: %w", ev.Err)
	}

	out := cmd.OutOrStdout()
	for i, f := range ev.Files {
		kind := "file"
		if f.IsImage() {
			kind = "image"
		}
		_, _ = fmt.Fprintf(out, "%s\t%s\t%s\t%s\n", intake.FieldName(i), f.Name, f.MimeType, kind)
	}

	return ctrl.Submit(ctx)
}
