package shelf

// Short messages (one-liners)
const (
	// Command descriptions
	MsgRootShort          = "Share local packages between projects without a registry"
	MsgPublishShort       = "Copy the package in the current directory into the store"
	MsgPushShort          = "Publish and update every project that installed the package"
	MsgAddShort           = "Install packages from the store into this project"
	MsgLinkShort          = "Symlink packages from the store without touching the manifest"
	MsgUpdateShort        = "Refresh installed packages from the store"
	MsgRemoveShort        = "Remove shelf packages and restore the original dependencies"
	MsgInstallationsShort = "Inspect the installation registry"
	MsgInstShowShort      = "List projects that installed packages from the store"
	MsgInstCleanShort     = "Drop registry entries for projects that no longer use a package"
	MsgStoreShort         = "List packages and versions held in the store"
	MsgGenConfigShort     = "Print or write the effective configuration"
	MsgVersionShort       = "Print version information"
	MsgTopicsShort        = "Display available documentation topics"
	MsgTopicsLong         = "Display a list of all available help topics that provide additional documentation beyond command help."
	MsgCompletionShort    = "Generate shell completion script"

	// Flag descriptions
	MsgFlagVerbose     = "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)"
	MsgFlagFormat      = "Output format: auto, term, text or json"
	MsgFlagStoreDir    = "Use this store instead of the configured one"
	MsgFlagDir         = "Run as if shelf was started in this directory"
	MsgFlagChanged     = "Skip the publish when the content signature did not change"
	MsgFlagPush        = "Update every registered installation after publishing"
	MsgFlagRecursive   = "Publish link: dependencies before the package itself"
	MsgFlagPrivate     = "Allow publishing a package marked private"
	MsgFlagSkipScripts = "Do not run lifecycle scripts"
	MsgFlagForceAdd    = "Reinstall even when the installed copy is up to date"
	MsgFlagDev         = "Record the package in devDependencies"
	MsgFlagLinkDep     = "Write link: locators instead of file: locators"
	MsgFlagPure        = "Stage packages without touching the manifest or node_modules"
	MsgFlagAll         = "Remove every package recorded in the lockfile"
	MsgFlagCommented   = "Comment out every value"
	MsgFlagWrite       = "Write the configuration file instead of printing it"
	MsgFlagProject     = "Write ./.shelf.toml instead of the user configuration"

	// Output messages
	MsgVersionFormat = "shelf version %s\n  commit: %s\n  built:  %s\n"

	// Error messages
	MsgErrNoCommand  = "no command specified"
	MsgErrNoPackages = "at least one package name is required"
	MsgErrRemoveArgs = "name the packages to remove or pass --all"
)

// Long messages
const (
	MsgRootLong = `shelf keeps a local store of package snapshots. Publishing copies a package
into the store; adding installs a snapshot into another project through a
staging folder, rewriting the dependency to a file: or link: locator.
Pushing republishes and refreshes every project that installed the package.

Run "shelf help topics" for the store layout, the lockfile and the flags
shared by several commands.`

	MsgPublishLong = `Publish runs the pre-publish scripts, copies the files selected by the
manifest's "files" list and .npmignore rules into the store and records the
content signature. Dependencies already pointing at the staging folder are
rewritten to the versions they resolve to, so the stored snapshot installs
anywhere.

With --recursive, link: dependencies are published first and re-linked
into this project. Private packages are refused unless --private is given.`

	MsgPushLong = `Push is publish followed by an update of every project recorded in the
installation registry for this package. Projects that no longer depend on
the package are pruned from the registry.`

	MsgAddLong = `Add copies each package snapshot into the project's staging folder, points
the manifest at it with a file: locator and installs it into node_modules.
The lockfile records the snapshot signature so repeating the command is a
no-op until the store changes.

A package is given as name or name@version; without a version the newest
published version is used.`

	MsgLinkLong = `Link stages each package like add but symlinks node_modules/<name> to the
staging folder and leaves the manifest untouched.`

	MsgUpdateLong = `Update re-adds every package in the lockfile (or the named ones) with the
mode it was originally installed with. Packages missing from the manifest
are reported as stale and dropped from the installation registry.`

	MsgRemoveLong = `Remove deletes the staged copy and the node_modules entry of each package,
restores the dependency value recorded before shelf replaced it and drops
the lockfile entry.`

	MsgGenConfigLong = `GenConfig prints the configuration shelf would use in the current
directory, merged from the built-in defaults, the user file, ./.shelf.toml
and SHELF_* environment variables. With --write it creates the user file
(or ./.shelf.toml with --project) and never overwrites an existing one.`

	MsgCompletionLong = `To load completions:

Bash:
  $ source <(shelf completion bash)

Zsh:
  $ shelf completion zsh > "${fpath[1]}/_shelf"

Fish:
  $ shelf completion fish | source

PowerShell:
  PS> shelf completion powershell | Out-String | Invoke-Expression`
)

// Examples
const (
	MsgPublishExample = `  # Publish the package in the current directory
  shelf publish

  # Publish linked dependencies first, then push to consumers
  shelf publish --recursive --push`

	MsgAddExample = `  # Install the newest published version
  shelf add left-pad

  # Pin a version and record it as a dev dependency
  shelf add left-pad@1.3.0 --dev`

	MsgUpdateExample = `  # Refresh everything installed from the store
  shelf update

  # Refresh a single package
  shelf update left-pad`

	MsgRemoveExample = `  shelf remove left-pad
  shelf remove --all`
)

// MsgUsageTemplate is the usage template shared by every command
const MsgUsageTemplate = `{{boldUpper "Usage"}}:{{if .Runnable}}
  {{.UseLine}}{{end}}{{if .HasAvailableSubCommands}}
  {{.CommandPath}} [command]{{end}}{{if gt (len .Aliases) 0}}

{{boldUpper "Aliases"}}:
  {{.NameAndAliases}}{{end}}{{if .HasExample}}

{{boldUpper "Examples"}}:
{{.Example}}{{end}}{{if .HasAvailableSubCommands}}{{$cmds := .Commands}}{{if eq (len .Groups) 0}}

{{boldUpper "Commands"}}:{{range $cmds}}{{if (or .IsAvailableCommand (eq .Name "help"))}}
  {{rpad .Name .NamePadding }} {{.Short}}{{end}}{{end}}{{else}}{{range $group := .Groups}}

{{bold .Title}}{{range $cmds}}{{if (and (eq .GroupID $group.ID) (or .IsAvailableCommand (eq .Name "help")))}}
  {{rpad .Name .NamePadding }} {{.Short}}{{end}}{{end}}{{end}}{{if not .AllChildCommandsHaveGroup}}

{{boldUpper "Additional Commands"}}:{{range $cmds}}{{if (and (eq .GroupID "") (or .IsAvailableCommand (eq .Name "help")))}}
  {{rpad .Name .NamePadding }} {{.Short}}{{end}}{{end}}{{end}}{{end}}{{end}}{{if .HasAvailableLocalFlags}}

{{boldUpper "Flags"}}:
{{.LocalFlags.FlagUsages | trimTrailingWhitespaces}}{{end}}{{if .HasAvailableInheritedFlags}}

{{boldUpper "Global Flags"}}:
{{.InheritedFlags.FlagUsages | trimTrailingWhitespaces}}{{end}}{{if .HasHelpSubCommands}}

{{boldUpper "Additional help topics"}}:{{range .Commands}}{{if .IsAdditionalHelpTopicCommand}}
  {{rpad .CommandPath .CommandPathPadding}} {{.Short}}{{end}}{{end}}{{end}}{{if .HasAvailableSubCommands}}

Use "{{.CommandPath}} [command] --help" for more information about a command.{{end}}
`
