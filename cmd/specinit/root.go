// Package specinit implements the specinit command line interface.
package specinit

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"text/template"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/specforge/specinit/internal/version"
	"github.com/specforge/specinit/pkg/cobrax/topics"
	"github.com/specforge/specinit/pkg/config"
	"github.com/specforge/specinit/pkg/errors"
	"github.com/specforge/specinit/pkg/filesystem"
	"github.com/specforge/specinit/pkg/initializer"
	"github.com/specforge/specinit/pkg/logging"
	"github.com/specforge/specinit/pkg/output"
	"github.com/specforge/specinit/pkg/prompt"
	"github.com/specforge/specinit/pkg/tokens"
	"github.com/specforge/specinit/pkg/types"
)

// globalOptions are the persistent flags shared by every command
type globalOptions struct {
	verbosity int
	root      string
	format    string
	legacy    bool
	answers   string
}

// runOptions are the flags of the setup run
type runOptions struct {
	nonInteractive bool
	yes            bool
	dryRun         bool
	force          bool
	keep           bool
	fields         config.Answers
}

// Env is what the commands need from the outside world. Tests replace it.
type Env struct {
	FS          types.FS
	Driver      prompt.Driver
	Interactive bool
	Executable  string
	Getwd       func() (string, error)
}

// DefaultEnv is the process environment: the OS filesystem, survey prompts
// on the terminal and the running executable
func DefaultEnv() Env {
	exe, err := os.Executable()
	if err != nil {
		exe = ""
	}
	return Env{
		FS:          filesystem.NewOS(),
		Driver:      prompt.NewSurveyDriver(os.Stdin, os.Stdout, os.Stderr),
		Interactive: output.IsTerminal(os.Stdin) && output.IsTerminal(os.Stdout),
		Executable:  exe,
		Getwd:       os.Getwd,
	}
}

// NewRootCmd creates the root command using the process environment
func NewRootCmd() *cobra.Command {
	return NewRootCmdWithEnv(DefaultEnv())
}

// NewRootCmdWithEnv creates the root command
func NewRootCmdWithEnv(env Env) *cobra.Command {
	initTemplateFormatting()

	g := &globalOptions{}
	r := &runOptions{}

	rootCmd := &cobra.Command{
		Use:     "specinit",
		Short:   MsgRootShort,
		Long:    MsgRootLong,
		Example: MsgRootExample,
		Version: version.Version,
		Args:    cobra.NoArgs,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.SetupLogger(g.verbosity)
			logging.LogCommand(cmd.CommandPath(), args)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSetup(cmd, env, g, r)
		},
		SilenceUsage:      true,
		SilenceErrors:     true,
		DisableAutoGenTag: true,
	}

	pf := rootCmd.PersistentFlags()
	pf.CountVarP(&g.verbosity, "verbose", "v", MsgFlagVerbose)
	pf.StringVar(&g.root, "root", "", MsgFlagRoot)
	pf.StringVar(&g.format, "format", "auto", MsgFlagFormat)
	pf.BoolVar(&g.legacy, "legacy", false, MsgFlagLegacy)
	pf.StringVar(&g.answers, "answers", "", MsgFlagAnswers)

	f := rootCmd.Flags()
	f.BoolVar(&r.nonInteractive, "non-interactive", false, MsgFlagNonInteractive)
	f.BoolVarP(&r.yes, "yes", "y", false, MsgFlagYes)
	f.BoolVar(&r.dryRun, "dry-run", false, MsgFlagDryRun)
	f.BoolVar(&r.force, "force", false, MsgFlagForce)
	f.BoolVar(&r.keep, "keep", false, MsgFlagKeep)
	f.StringVar(&r.fields.ProjectName, "project-name", "", MsgFlagProjectName)
	f.StringVar(&r.fields.PackageName, "package-name", "", MsgFlagPackageName)
	f.StringVar(&r.fields.GithubOrg, "github-org", "", MsgFlagGithubOrg)
	f.StringVar(&r.fields.AuthorName, "author-name", "", MsgFlagAuthorName)
	f.StringVar(&r.fields.AuthorEmail, "author-email", "", MsgFlagAuthorEmail)
	f.StringVar(&r.fields.Year, "year", "", MsgFlagYear)

	_ = rootCmd.MarkPersistentFlagFilename("answers", "toml", "yaml", "yml")
	_ = rootCmd.MarkPersistentFlagDirname("root")
	_ = rootCmd.RegisterFlagCompletionFunc("format", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return []string{"auto", "term", "text", "json"}, cobra.ShellCompDirectiveNoFileComp
	})

	rootCmd.SetUsageTemplate(MsgUsageTemplate)

	rootCmd.AddCommand(newCheckCmd(env, g))
	rootCmd.AddCommand(newTokensCmd(env, g))
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newCompletionCmd())

	var renderer topics.Renderer = &topics.PlainRenderer{}
	if stdoutIsTerminal() {
		renderer = topics.NewGlamourRenderer()
	}
	if _, err := topics.Initialize(rootCmd, topicsFS, topics.Options{Renderer: renderer}); err != nil {
		log.Warn().Err(err).Msg("Help topics unavailable")
	}

	return rootCmd
}

func runSetup(cmd *cobra.Command, env Env, g *globalOptions, r *runOptions) error {
	logger := logging.GetLogger("cmd.setup")

	root, err := resolveRoot(env, g.root)
	if err != nil {
		return err
	}
	renderer, format, err := newRenderer(cmd, g.format)
	if err != nil {
		return err
	}
	logger.Debug().Msgf(MsgUsingRoot, root)

	overrides := answerOverrides(cmd, r.fields)
	if g.legacy {
		overrides["legacy.enabled"] = true
	}
	cfg, err := config.Load(config.LoadOptions{
		Root:        root,
		AnswersFile: g.answers,
		Overrides:   overrides,
	})
	if err != nil {
		return err
	}

	opts := initializer.Options{
		Root:       root,
		FS:         env.FS,
		Config:     cfg,
		Yes:        r.yes,
		DryRun:     r.dryRun,
		Force:      r.force,
		Keep:       r.keep,
		Legacy:     g.legacy,
		Executable: env.Executable,
	}
	if env.Interactive && !r.nonInteractive && format != output.FormatJSON {
		opts.Driver = env.Driver
	}

	logger.Info().
		Str("root", root).
		Bool("interactive", opts.Driver != nil).
		Bool("dryRun", r.dryRun).
		Bool("force", r.force).
		Msg("Starting setup")

	result, err := initializer.Run(cmd.Context(), opts)
	if err != nil {
		return err
	}

	if err := renderer.RenderResult(result); err != nil {
		return err
	}

	if runErr := result.Err(); runErr != nil {
		return runErr
	}
	if result.Apply != nil && !result.Apply.DryRun && !result.Apply.Interrupted {
		md, err := nextSteps(result.Answers)
		if err != nil {
			return err
		}
		return renderer.RenderMarkdown(md)
	}
	return nil
}

func newCheckCmd(env Env, g *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: MsgCheckShort,
		Long:  MsgCheckLong,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := resolveRoot(env, g.root)
			if err != nil {
				return err
			}
			renderer, _, err := newRenderer(cmd, g.format)
			if err != nil {
				return err
			}
			cfg, err := config.Load(config.LoadOptions{Root: root, AnswersFile: g.answers})
			if err != nil {
				return err
			}

			report, err := initializer.Check(env.FS, root, cfg, g.legacy)
			if err != nil {
				return err
			}
			if err := renderer.RenderResult(report); err != nil {
				return err
			}
			if !report.Clean() {
				return errors.Newf(errors.ErrTokensRemain, MsgErrTokensLeft, len(report.Files)).
					WithDetail("files", report.Files)
			}
			return nil
		},
	}
}

func newTokensCmd(env Env, g *globalOptions) *cobra.Command {
	var defaults bool
	cmd := &cobra.Command{
		Use:   "tokens",
		Short: MsgTokensShort,
		Long:  MsgTokensLong,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if defaults {
				_, err := fmt.Fprint(cmd.OutOrStdout(), config.GetDefaultConfigContent())
				return err
			}
			renderer, _, err := newRenderer(cmd, g.format)
			if err != nil {
				return err
			}
			root, err := resolveRoot(env, g.root)
			if err != nil {
				return err
			}
			cfg, err := config.Load(config.LoadOptions{Root: root, AnswersFile: g.answers})
			if err != nil {
				return err
			}
			legacy := g.legacy || cfg.Legacy.Enabled
			return renderer.RenderResult(output.TokenList{
				Definitions: tokens.Definitions(cfg, legacy),
				Legacy:      legacy,
			})
		},
	}
	cmd.Flags().BoolVar(&defaults, "defaults", false, MsgFlagDefaults)
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: MsgVersionShort,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprint(cmd.OutOrStdout(), version.String())
			return err
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

func resolveRoot(env Env, flag string) (string, error) {
	root := flag
	if root == "" {
		wd, err := env.Getwd()
		if err != nil {
			return "", fmt.Errorf(MsgErrWorkingDir, err)
		}
		root = wd
	}
	return filepath.Abs(root)
}

func newRenderer(cmd *cobra.Command, name string) (output.Renderer, output.Format, error) {
	format, err := output.ParseFormat(name)
	if err != nil {
		return nil, format, errors.Wrap(fmt.Errorf(MsgErrFormat, err), errors.ErrInvalidInput, "bad flag")
	}
	renderer, err := output.NewRenderer(format, cmd.OutOrStdout())
	return renderer, format, err
}

// answerOverrides maps the answer flags that were set to config keys
func answerOverrides(cmd *cobra.Command, fields config.Answers) map[string]interface{} {
	flags := map[string]string{
		"project-name": fields.ProjectName,
		"package-name": fields.PackageName,
		"github-org":   fields.GithubOrg,
		"author-name":  fields.AuthorName,
		"author-email": fields.AuthorEmail,
		"year":         fields.Year,
	}
	keys := map[string]string{
		"project-name": "answers.project_name",
		"package-name": "answers.package_name",
		"github-org":   "answers.github_org",
		"author-name":  "answers.author_name",
		"author-email": "answers.author_email",
		"year":         "answers.year",
	}

	overrides := make(map[string]interface{})
	for name, value := range flags {
		if cmd.Flags().Changed(name) {
			overrides[keys[name]] = value
		}
	}
	return overrides
}

func nextSteps(answers config.Answers) (string, error) {
	tmpl, err := template.New("next-steps").Parse(MsgNextSteps)
	if err != nil {
		return "", errors.Wrap(err, errors.ErrInternal, "invalid next steps template")
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, answers); err != nil {
		return "", errors.Wrap(err, errors.ErrInternal, "failed to render next steps")
	}
	return buf.String(), nil
}
