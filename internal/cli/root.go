// Package cli implements the dropzone command line.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/imagedrop/service/internal/adapter"
	"github.com/imagedrop/service/internal/config"
	"github.com/imagedrop/service/internal/intake"
	"github.com/imagedrop/service/internal/logger"
)

type rootOptions struct {
	configPath string
	server     string
	timeout    string
	session    string
}

// NewRootCmd builds the dropzone command tree.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "dropzone",
		Short:         "Upload images to the imagedrop relay",
		Long:          "Select files from the terminal and send them to the imagedrop relay in a single multipart request.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "Path to a YAML config file")
	cmd.PersistentFlags().StringVar(&opts.server, "server", "", "Relay base URL (default http://localhost:8080)")
	cmd.PersistentFlags().StringVar(&opts.timeout, "timeout", "", "Request timeout, e.g. 30s (0 disables)")
	cmd.PersistentFlags().StringVar(&opts.session, "session", "", "Session token sent as the session cookie")

	cmd.AddCommand(newUploadCmd(opts))
	cmd.AddCommand(newTUICmd(opts))

	return cmd
}

// resolve merges file and environment settings with any flags the user set.
func (o *rootOptions) resolve(cmd *cobra.Command) (*config.Client, error) {
	cfg, err := config.LoadClient(o.configPath)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("server") {
		cfg.Server = o.server
	}
	if flags.Changed("session") {
		cfg.Session = o.session
	}
	if flags.Changed("timeout") {
		d, err := parseTimeout(o.timeout)
		if err != nil {
			return nil, err
		}
		cfg.Timeout = d
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newController wires a Controller to the relay described by cfg.
func newController(cfg *config.Client, log *logger.Logger) (*intake.Controller, error) {
	client, err := adapter.NewRelayClient(adapter.Config{
		BaseURL:    cfg.Server,
		UploadPath: cfg.UploadPath,
		Timeout:    cfg.Timeout,
		Session:    cfg.Session,
	})
	if err != nil {
		return nil, err
	}
	return intake.NewController(client, intake.WithLogger(log)), nil
}
