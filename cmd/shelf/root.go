// Package shelf implements the shelf command line.
package shelf

import (
	"embed"
	"io/fs"

	"github.com/arthur-debert/shelf/internal/version"
	"github.com/arthur-debert/shelf/pkg/cobrax/topics"
	"github.com/arthur-debert/shelf/pkg/errors"
	"github.com/arthur-debert/shelf/pkg/logging"
	"github.com/arthur-debert/shelf/pkg/ui"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

//go:embed topics/*.md
var topicsFS embed.FS

// Global flag names
const (
	flagVerbose  = "verbose"
	flagFormat   = "format"
	flagStoreDir = "store-dir"
	flagDir      = "dir"
)

// NewRootCmd creates and returns the root command
func NewRootCmd() *cobra.Command {
	initTemplateFormatting()

	var verbosity int

	rootCmd := &cobra.Command{
		Use:     "shelf",
		Short:   MsgRootShort,
		Long:    MsgRootLong,
		Version: version.Resolved(),
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.SetupLogger(verbosity)
			log.Debug().Str("command", cmd.CommandPath()).Msg("Command started")
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			_ = cmd.Help()
			return errors.New(errors.ErrInvalidInput, MsgErrNoCommand)
		},
		SilenceUsage:      true,
		SilenceErrors:     true,
		DisableAutoGenTag: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.CountVarP(&verbosity, flagVerbose, "v", MsgFlagVerbose)
	flags.String(flagFormat, "auto", MsgFlagFormat)
	flags.String(flagStoreDir, "", MsgFlagStoreDir)
	flags.StringP(flagDir, "C", "", MsgFlagDir)
	_ = rootCmd.RegisterFlagCompletionFunc(flagFormat, func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return ui.Formats(), cobra.ShellCompDirectiveNoFileComp
	})

	rootCmd.SetHelpCommand(&cobra.Command{Hidden: true})

	rootCmd.AddGroup(&cobra.Group{ID: "publish", Title: "PUBLISHING:"})
	rootCmd.AddGroup(&cobra.Group{ID: "install", Title: "INSTALLING:"})
	rootCmd.AddGroup(&cobra.Group{ID: "misc", Title: "MISC:"})

	rootCmd.SetUsageTemplate(MsgUsageTemplate)

	rootCmd.AddCommand(newPublishCmd())
	rootCmd.AddCommand(newPushCmd())
	rootCmd.AddCommand(newAddCmd())
	rootCmd.AddCommand(newLinkCmd())
	rootCmd.AddCommand(newUpdateCmd())
	rootCmd.AddCommand(newRemoveCmd())
	rootCmd.AddCommand(newInstallationsCmd())
	rootCmd.AddCommand(newStoreCmd())
	rootCmd.AddCommand(newGenConfigCmd())
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newTopicsCmd())
	rootCmd.AddCommand(newCompletionCmd())

	sub, err := fs.Sub(topicsFS, "topics")
	if err == nil {
		_, err = topics.Initialize(rootCmd, sub, topics.Options{
			Extensions: []string{".md"},
			Renderer:   topics.NewGlamourRenderer(!stdoutIsTerminal()),
		})
	}
	if err != nil {
		log.Warn().Err(err).Msg("Help topics unavailable")
	}

	return rootCmd
}
