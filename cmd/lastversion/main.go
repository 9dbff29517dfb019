// Package main implements the lastversion command-line tool: given an
// action and a repo URL, "owner/name" slug, bare project name, or literal
// version string, resolve, compare, download, or format the latest release.
package main

import (
	"log"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/dvershinin/lastversion-sub000/pkg/holder"
)

// Config holds every flag lastversion recognizes. Nearly all of them apply
// across every action, so they're collected on the root command rather than
// split out per-subcommand, following the Config+Validate shape used
// elsewhere in this codebase for commands with a wide flag surface.
type Config struct {
	Pre    bool
	Formal bool
	Sem    string

	// Download triggers the download action (-d/--download with no
	// argument); Output, when non-empty, supplies a custom filename
	// (-o/--output, also implying download). Together they cover the
	// original tool's overloaded "-d|-o|--download [FILENAME]" flag.
	Download bool
	Output   string

	Format string
	Assets bool
	Source bool

	NewerThan string

	Major       string
	Only        string
	Exclude     string
	Filter      string
	HavingAsset string
	Even        bool
	At          string
	ShorterURLs bool

	AssumeYes bool
	NoCache   bool
	Verbose   int
	Input     string
}

// Validate rejects flag combinations that can never resolve to a sensible
// action, mirroring argparse's choices= constraints in the original tool.
func (c *Config) Validate() error {
	switch c.Sem {
	case "", "major", "minor", "patch", "any":
	default:
		return errors.Errorf("invalid --sem %q: want major, minor, patch or any", c.Sem)
	}
	switch c.Format {
	case "", "version", "assets", "source", "json", "tag":
	default:
		return errors.Errorf("invalid --format %q: want version, assets, source, json or tag", c.Format)
	}
	if c.At != "" {
		if _, ok := knownAdapters[c.At]; !ok {
			return errors.Errorf("invalid --at %q", c.At)
		}
	}
	return nil
}

// knownAdapters is the §6 --at choice set, mapped to the factory's adapter
// names (most match directly; a few carry a different public spelling).
var knownAdapters = map[string]string{
	"github":       "github",
	"gitlab":       "gitlab",
	"bitbucket":    "bitbucket",
	"hg":           "mercurial",
	"pip":          "pypi",
	"wp":           "wordpress",
	"sf":           "sourceforge",
	"wiki":         "wikipedia",
	"helm_chart":   "helmchart",
	"alpine":       "alpine",
	"gitea":        "gitea",
	"website-feed": "feed",
	"local":        "local",
	"system":       "system",
}

var cfg = &Config{}

var rootCmd = &cobra.Command{
	Use:   "lastversion [action] <repo-or-url-or-version> [flags]",
	Short: "Find the latest stable release of a project",
	Long: `lastversion resolves the latest stable release of a project hosted on
GitHub, GitLab, Bitbucket, Gitea, PyPI, SourceForge, a Mercurial repo, a
Wikipedia/WordPress release page, a Helm chart, an Alpine package, a system
package manager, a local version file, or a generic web feed.`,
	Args: cobra.RangeArgs(0, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate(); err != nil {
			return err
		}

		action := "get"
		var repoArg string
		switch {
		case cfg.Input != "" && len(args) <= 1:
			if len(args) == 1 {
				action = args[0]
			}
		case len(args) == 0:
			return errors.New("missing <repo URL or string> argument")
		case len(args) == 1:
			repoArg = args[0]
		default:
			action, repoArg = args[0], args[1]
		}
		switch action {
		case "get", "download", "extract", "unzip", "test", "format", "install", "update-spec":
		default:
			return errors.Errorf("unknown action %q", action)
		}
		if cfg.Verbose > 0 {
			holder.Logger = log.New(cmd.ErrOrStderr(), "lastversion: ", 0)
		}

		var code int
		var err error
		if cfg.Input != "" {
			code, err = runBulk(cmd, action)
		} else {
			code, err = run(cmd, action, repoArg)
		}
		if err != nil {
			cmd.PrintErrln(err)
			if code == 0 {
				code = 1
			}
		}
		if code != 0 {
			os.Exit(code)
		}
		return nil
	},
}

func init() {
	rootCmd.SilenceUsage = true
	f := rootCmd.Flags()

	f.BoolVar(&cfg.Pre, "pre", false, "include pre-releases in potential versions")
	f.BoolVar(&cfg.Formal, "formal", false, "include only formally tagged versions")
	f.StringVar(&cfg.Sem, "sem", "", "semantic versioning level to print or compare against (major, minor, patch, any)")
	f.StringVar(&cfg.Format, "format", "", "output format (version, assets, source, json, tag)")
	f.BoolVar(&cfg.Assets, "assets", false, "shortcut for --format assets")
	f.BoolVar(&cfg.Source, "source", false, "shortcut for --format source")
	f.StringVar(&cfg.NewerThan, "newer-than", "", "output only if last version is newer than given version")
	f.StringVar(&cfg.NewerThan, "gt", "", "alias of --newer-than")
	f.StringVarP(&cfg.Major, "major", "b", "", "only consider releases of a specific major version")
	f.StringVar(&cfg.Major, "branch", "", "alias of --major")
	f.StringVar(&cfg.Only, "only", "", "only consider releases containing this text (regex)")
	f.StringVar(&cfg.Exclude, "exclude", "", "only consider releases NOT containing this text (regex)")
	f.StringVar(&cfg.Filter, "filter", "", "filter --assets result by a regular expression")
	f.StringVar(&cfg.HavingAsset, "having-asset", "", "only consider releases with this asset")
	f.Lookup("having-asset").NoOptDefVal = "~.+"
	f.BoolVar(&cfg.Even, "even", false, "only even minor versions are considered stable")
	f.StringVar(&cfg.At, "at", "", "force a specific adapter instead of dispatching by hostname")
	// The original tool's "-su" is a two-character short flag; pflag only
	// supports single-character shorthands, so this is long-form only.
	f.BoolVar(&cfg.ShorterURLs, "shorter-urls", false, "produce a tiny bit shorter download URLs")
	f.BoolVarP(&cfg.AssumeYes, "assumeyes", "y", false, "automatically answer yes for all questions")
	f.BoolVar(&cfg.NoCache, "no-cache", false, "do not use the HTTP or result cache")
	f.StringVarP(&cfg.Input, "input", "i", "", "read one repo per line from FILE instead of the positional argument")

	f.BoolVarP(&cfg.Download, "download", "d", false, "download the release; implies the download action")
	f.StringVarP(&cfg.Output, "output", "o", "", "download with this custom filename; implies the download action")
	f.CountVarP(&cfg.Verbose, "verbose", "v", "log progress to stderr (repeating the flag logs the same)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
