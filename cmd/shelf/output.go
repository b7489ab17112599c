package shelf

import (
	"os"
	"path/filepath"

	"github.com/arthur-debert/shelf/pkg/commands"
	"github.com/arthur-debert/shelf/pkg/config"
	"github.com/arthur-debert/shelf/pkg/paths"
	"github.com/arthur-debert/shelf/pkg/ui"
	"github.com/spf13/cobra"
)

// baseOptions collects the settings every command shares from the global
// flags. Script output follows the command's writers, except that JSON
// output keeps stdout for the result document.
func baseOptions(cmd *cobra.Command) commands.Options {
	dir, _ := cmd.Flags().GetString(flagDir)
	storeDir, _ := cmd.Flags().GetString(flagStoreDir)
	opts := commands.Options{
		WorkingDir: dir,
		StoreDir:   storeDir,
		Stdout:     cmd.OutOrStdout(),
		Stderr:     cmd.ErrOrStderr(),
	}
	if format, err := outputFormat(cmd); err == nil && format == ui.FormatJSON {
		opts.Stdout = cmd.ErrOrStderr()
	}
	return opts
}

// boolFlag returns a pointer to the flag value when it was given on the
// command line, nil otherwise, so configuration defaults apply.
func boolFlag(cmd *cobra.Command, name string) *bool {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	v, _ := cmd.Flags().GetBool(name)
	return &v
}

// outputFormat picks the format from --format, falling back to
// output.format from configuration.
func outputFormat(cmd *cobra.Command) (ui.Format, error) {
	name, _ := cmd.Flags().GetString(flagFormat)
	if !cmd.Flags().Changed(flagFormat) {
		if cfg, err := loadConfig(cmd); err == nil {
			name = cfg.Output.Format
		}
	}
	return ui.ParseFormat(name)
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	p, err := paths.New()
	if err != nil {
		return nil, err
	}
	dir, _ := cmd.Flags().GetString(flagDir)
	if dir == "" {
		if dir, err = os.Getwd(); err != nil {
			return nil, err
		}
	}
	return config.Load(config.Sources{
		UserFile:    p.ConfigFile(),
		ProjectFile: filepath.Join(dir, paths.ProjectConfigFileName),
	})
}

// render prints result in the selected output format
func render(cmd *cobra.Command, result interface{}) error {
	format, err := outputFormat(cmd)
	if err != nil {
		return err
	}
	renderer, err := ui.NewRenderer(format, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	return renderer.RenderResult(result)
}
