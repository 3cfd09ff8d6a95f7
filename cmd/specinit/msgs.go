package specinit

import (
	"embed"
	"strings"
)

// Short messages (one-liners)
const (
	// Command descriptions
	MsgRootShort       = "Initialize a protocol specification project from its template"
	MsgCheckShort      = "List files that still contain placeholder tokens"
	MsgTokensShort     = "Show the placeholder token table"
	MsgVersionShort    = "Print version information"
	MsgCompletionShort = "Generate shell completion script"

	// Status messages
	MsgUsingRoot = "Using project root: %s"

	// Error messages
	MsgErrWorkingDir = "failed to determine working directory: %w"
	MsgErrFormat     = "invalid --format: %w"
	MsgErrTokensLeft = "%d file(s) still contain placeholder tokens"

	// Flag descriptions
	MsgFlagVerbose        = "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)"
	MsgFlagRoot           = "Project root (default: current directory)"
	MsgFlagFormat         = "Output format: auto, term, text or json"
	MsgFlagLegacy         = "Also replace literal values left by cloning the template repository"
	MsgFlagAnswers        = "TOML or YAML file with pre-filled answers"
	MsgFlagNonInteractive = "Never prompt; fail if an answer is missing or invalid"
	MsgFlagYes            = "Skip the confirmation step"
	MsgFlagDryRun         = "Show what would change without writing anything"
	MsgFlagForce          = "Run even if no placeholder tokens are found"
	MsgFlagKeep           = "Keep the initializer files after a successful run"
	MsgFlagProjectName    = "Human readable project name"
	MsgFlagPackageName    = "Importable package name"
	MsgFlagGithubOrg      = "GitHub organization or user owning the repository"
	MsgFlagAuthorName     = "Author name"
	MsgFlagAuthorEmail    = "Author email"
	MsgFlagYear           = "Copyright year"
	MsgFlagDefaults       = "Print the built-in configuration instead"
)

// Long messages from embedded files
var (
	//go:embed msgs/root-long.txt
	msgRootLongRaw string
	MsgRootLong    = strings.TrimSpace(msgRootLongRaw)

	//go:embed msgs/root-example.txt
	msgRootExampleRaw string
	MsgRootExample    = strings.TrimRight(msgRootExampleRaw, "\n")

	//go:embed msgs/check-long.txt
	msgCheckLongRaw string
	MsgCheckLong    = strings.TrimSpace(msgCheckLongRaw)

	//go:embed msgs/tokens-long.txt
	msgTokensLongRaw string
	MsgTokensLong    = strings.TrimSpace(msgTokensLongRaw)

	//go:embed msgs/completion-long.txt
	msgCompletionLongRaw string
	MsgCompletionLong    = strings.TrimSpace(msgCompletionLongRaw)

	//go:embed msgs/usage-template.txt
	msgUsageTemplateRaw string
	MsgUsageTemplate    = strings.TrimSpace(msgUsageTemplateRaw) + "\n"

	//go:embed msgs/next-steps.md
	MsgNextSteps string
)

//go:embed topics/*.md
var topicsFS embed.FS
