package shelf

import (
	"fmt"

	"github.com/arthur-debert/shelf/internal/version"
	"github.com/arthur-debert/shelf/pkg/commands"
	"github.com/arthur-debert/shelf/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// Command flag names
const (
	flagChanged     = "changed"
	flagPush        = "push"
	flagRecursive   = "recursive"
	flagPrivate     = "private"
	flagSkipScripts = "skip-scripts"
	flagForce       = "force"
	flagDev         = "dev"
	flagLink        = "link"
	flagPure        = "pure"
	flagAll         = "all"
	flagCommented   = "commented"
	flagWrite       = "write"
	flagProject     = "project"
)

// storeNamesCompletion completes package names from the store
func storeNamesCompletion(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	result, err := commands.ListStore(commands.ListOptions{Options: baseOptions(cmd)})
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}

	taken := make(map[string]bool, len(args))
	for _, arg := range args {
		taken[arg] = true
	}
	var names []string
	for _, pkg := range result.Packages {
		if !taken[pkg.Name] {
			names = append(names, pkg.Name)
		}
	}
	return names, cobra.ShellCompDirectiveNoFileComp
}

func publishOptions(cmd *cobra.Command) commands.PublishOptions {
	allowPrivate, _ := cmd.Flags().GetBool(flagPrivate)
	skipScripts, _ := cmd.Flags().GetBool(flagSkipScripts)
	return commands.PublishOptions{
		Options:      baseOptions(cmd),
		Changed:      boolFlag(cmd, flagChanged),
		Recursive:    boolFlag(cmd, flagRecursive),
		AllowPrivate: allowPrivate,
		SkipScripts:  skipScripts,
	}
}

func addPublishFlags(cmd *cobra.Command) {
	cmd.Flags().Bool(flagChanged, false, MsgFlagChanged)
	cmd.Flags().Bool(flagRecursive, false, MsgFlagRecursive)
	cmd.Flags().Bool(flagPrivate, false, MsgFlagPrivate)
	cmd.Flags().Bool(flagSkipScripts, false, MsgFlagSkipScripts)
}

func newPublishCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "publish",
		Short:   MsgPublishShort,
		Long:    MsgPublishLong,
		Example: MsgPublishExample,
		Args:    cobra.NoArgs,
		GroupID: "publish",
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := publishOptions(cmd)
			opts.Push = boolFlag(cmd, flagPush)

			report, err := commands.Publish(cmd.Context(), opts)
			if err != nil {
				return err
			}
			return render(cmd, report)
		},
	}
	addPublishFlags(cmd)
	cmd.Flags().Bool(flagPush, false, MsgFlagPush)
	return cmd
}

func newPushCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "push",
		Short:   MsgPushShort,
		Long:    MsgPushLong,
		Args:    cobra.NoArgs,
		GroupID: "publish",
		RunE: func(cmd *cobra.Command, args []string) error {
			report, err := commands.Push(cmd.Context(), publishOptions(cmd))
			if err != nil {
				return err
			}
			return render(cmd, report)
		},
	}
	addPublishFlags(cmd)
	return cmd
}

func addOptions(cmd *cobra.Command, args []string) commands.AddOptions {
	dev, _ := cmd.Flags().GetBool(flagDev)
	linkDep, _ := cmd.Flags().GetBool(flagLink)
	force, _ := cmd.Flags().GetBool(flagForce)
	skipScripts, _ := cmd.Flags().GetBool(flagSkipScripts)
	return commands.AddOptions{
		Options:     baseOptions(cmd),
		Packages:    args,
		Dev:         dev,
		LinkDep:     linkDep,
		Pure:        boolFlag(cmd, flagPure),
		Force:       force,
		SkipScripts: skipScripts,
	}
}

func addInstallFlags(cmd *cobra.Command) {
	cmd.Flags().Bool(flagPure, false, MsgFlagPure)
	cmd.Flags().Bool(flagForce, false, MsgFlagForceAdd)
	cmd.Flags().Bool(flagSkipScripts, false, MsgFlagSkipScripts)
}

func newAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:               "add <package[@version]>...",
		Short:             MsgAddShort,
		Long:              MsgAddLong,
		Example:           MsgAddExample,
		Args:              cobra.MinimumNArgs(1),
		GroupID:           "install",
		ValidArgsFunction: storeNamesCompletion,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := addOptions(cmd, args)
			log.Info().Strs("packages", args).Bool("linkDep", opts.LinkDep).Msg("Adding packages")

			result, err := commands.Add(cmd.Context(), opts)
			if err != nil {
				return err
			}
			return render(cmd, result)
		},
	}
	addInstallFlags(cmd)
	cmd.Flags().Bool(flagDev, false, MsgFlagDev)
	cmd.Flags().Bool(flagLink, false, MsgFlagLinkDep)
	return cmd
}

func newLinkCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:               "link <package[@version]>...",
		Short:             MsgLinkShort,
		Long:              MsgLinkLong,
		Args:              cobra.MinimumNArgs(1),
		GroupID:           "install",
		ValidArgsFunction: storeNamesCompletion,
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := commands.Link(cmd.Context(), addOptions(cmd, args))
			if err != nil {
				return err
			}
			return render(cmd, result)
		},
	}
	addInstallFlags(cmd)
	return cmd
}

func newUpdateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:               "update [packages...]",
		Short:             MsgUpdateShort,
		Long:              MsgUpdateLong,
		Example:           MsgUpdateExample,
		GroupID:           "install",
		ValidArgsFunction: storeNamesCompletion,
		RunE: func(cmd *cobra.Command, args []string) error {
			force, _ := cmd.Flags().GetBool(flagForce)
			skipScripts, _ := cmd.Flags().GetBool(flagSkipScripts)

			result, err := commands.Update(cmd.Context(), commands.UpdateOptions{
				Options:     baseOptions(cmd),
				Packages:    args,
				Force:       force,
				SkipScripts: skipScripts,
			})
			if err != nil {
				return err
			}
			return render(cmd, result)
		},
	}
	cmd.Flags().Bool(flagForce, false, MsgFlagForceAdd)
	cmd.Flags().Bool(flagSkipScripts, false, MsgFlagSkipScripts)
	return cmd
}

func newRemoveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "remove [packages...]",
		Aliases: []string{"rm"},
		Short:   MsgRemoveShort,
		Long:    MsgRemoveLong,
		Example: MsgRemoveExample,
		GroupID: "install",
		RunE: func(cmd *cobra.Command, args []string) error {
			all, _ := cmd.Flags().GetBool(flagAll)
			if len(args) == 0 && !all {
				return errors.New(errors.ErrInvalidInput, MsgErrRemoveArgs)
			}

			result, err := commands.Remove(cmd.Context(), commands.RemoveOptions{
				Options:  baseOptions(cmd),
				Packages: args,
				All:      all,
			})
			if err != nil {
				return err
			}
			return render(cmd, result)
		},
	}
	cmd.Flags().Bool(flagAll, false, MsgFlagAll)
	return cmd
}

func newInstallationsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "installations",
		Short:   MsgInstallationsShort,
		GroupID: "misc",
	}

	show := &cobra.Command{
		Use:   "show [packages...]",
		Short: MsgInstShowShort,
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := commands.ShowInstallations(commands.InstallationsOptions{
				Options:  baseOptions(cmd),
				Packages: args,
			})
			if err != nil {
				return err
			}
			return render(cmd, result)
		},
	}

	clean := &cobra.Command{
		Use:   "clean [packages...]",
		Short: MsgInstCleanShort,
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := commands.CleanInstallations(commands.InstallationsOptions{
				Options:  baseOptions(cmd),
				Packages: args,
			})
			if err != nil {
				return err
			}
			return render(cmd, result)
		},
	}

	cmd.AddCommand(show, clean)
	return cmd
}

func newStoreCmd() *cobra.Command {
	return &cobra.Command{
		Use:               "store [packages...]",
		Short:             MsgStoreShort,
		GroupID:           "misc",
		ValidArgsFunction: storeNamesCompletion,
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := commands.ListStore(commands.ListOptions{
				Options:  baseOptions(cmd),
				Packages: args,
			})
			if err != nil {
				return err
			}
			return render(cmd, result)
		},
	}
}

func newGenConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "genconfig",
		Short:   MsgGenConfigShort,
		Long:    MsgGenConfigLong,
		Args:    cobra.NoArgs,
		GroupID: "misc",
		RunE: func(cmd *cobra.Command, args []string) error {
			commented, _ := cmd.Flags().GetBool(flagCommented)
			write, _ := cmd.Flags().GetBool(flagWrite)
			project, _ := cmd.Flags().GetBool(flagProject)

			result, err := commands.GenConfig(commands.GenConfigOptions{
				Options:   baseOptions(cmd),
				Commented: commented,
				Write:     write,
				Project:   project,
			})
			if err != nil {
				return err
			}
			return render(cmd, result)
		},
	}
	cmd.Flags().Bool(flagCommented, false, MsgFlagCommented)
	cmd.Flags().Bool(flagWrite, false, MsgFlagWrite)
	cmd.Flags().Bool(flagProject, false, MsgFlagProject)
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "version",
		Short:   MsgVersionShort,
		Args:    cobra.NoArgs,
		GroupID: "misc",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), MsgVersionFormat, version.Resolved(), version.Commit, version.Date)
		},
	}
}

func newTopicsCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "topics",
		Short:   MsgTopicsShort,
		Long:    MsgTopicsLong,
		Args:    cobra.NoArgs,
		GroupID: "misc",
		RunE: func(cmd *cobra.Command, args []string) error {
			helpCmd, _, err := cmd.Root().Find([]string{"help"})
			if err != nil || helpCmd == nil || helpCmd.Run == nil {
				return errors.New(errors.ErrNotFound, "help command not found")
			}
			helpCmd.Run(helpCmd, []string{"topics"})
			return nil
		},
	}
}

func newCompletionCmd() *cobra.Command {
	return &cobra.Command{
		Use:                   "completion [bash|zsh|fish|powershell]",
		Short:                 MsgCompletionShort,
		Long:                  MsgCompletionLong,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		GroupID:               "misc",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletionV2(out, true)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
			return nil
		},
	}
}
