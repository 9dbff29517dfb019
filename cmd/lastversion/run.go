package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	pkgerrors "github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/dvershinin/lastversion-sub000/internal/httpx"
	"github.com/dvershinin/lastversion-sub000/internal/rpmspec"
	"github.com/dvershinin/lastversion-sub000/pkg/factory"
	"github.com/dvershinin/lastversion-sub000/pkg/lastversion"
	"github.com/dvershinin/lastversion-sub000/pkg/version"
)

// Exit codes, per §6 "External Interfaces".
const (
	exitSuccess        = 0
	exitNoRelease      = 1
	exitNotNewer       = 2
	exitEmptyAssets    = 3
	exitCredentialsErr = 4
)

// run dispatches one action/repo pair and returns the process exit code. A
// non-nil error is printed by the caller; run itself never calls os.Exit so
// it stays unit-testable.
func run(cmd *cobra.Command, action, repoArg string) (int, error) {
	repo, major := splitRepoArg(repoArg)
	if major != "" && cfg.Major == "" {
		cfg.Major = major
	}

	if cfg.Assets {
		cfg.Format = "assets"
	}
	if cfg.Source {
		cfg.Format = "source"
	}
	// A bare --having-asset (no value) means "any asset at all"; the filter
	// grammar has no literal wildcard, so "~.+" (regex: any non-empty name)
	// does the same job. The flag's no-value default (main.go) supplies it
	// for a bare flag; an explicitly empty value is mapped here.
	if cmd.Flags().Changed("having-asset") && cfg.HavingAsset == "" {
		cfg.HavingAsset = "~.+"
	}

	if action == "test" || action == "format" {
		return runFormatOrTest(cmd, action, repo)
	}

	if action == "install" {
		cfg.Format = "json"
		if !cmd.Flags().Changed("having-asset") {
			cfg.HavingAsset = `~\.(AppImage|rpm|deb)$`
		}
	}

	if strings.HasSuffix(repo, ".spec") {
		return runUpdateSpec(cmd, repo)
	}

	if cfg.Sem == "" {
		cfg.Sem = "any"
	}

	if cmd.Flags().Changed("download") || cmd.Flags().Changed("output") {
		action = "download"
		if cfg.Format != "assets" {
			cfg.Format = "source"
		}
	}
	if (action == "extract" || action == "unzip") && cfg.Format != "assets" {
		cfg.Format = "source"
	}

	// A literal version string passed where a repo is expected (scenario:
	// `lastversion "v2.41.0.windows.1" -gt "v2.41.0-rc2.windows.1"`) short-
	// circuits resolution entirely: compare the two literals and exit.
	if cfg.NewerThan != "" {
		if base, ok := version.SanitizeVersion(repo, version.Options{PreOk: true}); ok {
			newerThan, ok := version.SanitizeVersion(cfg.NewerThan, version.Options{PreOk: true})
			if !ok {
				return exitNoRelease, fmt.Errorf("failed to parse --newer-than version %q", cfg.NewerThan)
			}
			winner := base
			if base.LessThan(newerThan) {
				winner = newerThan
			}
			cmd.Println(winner.String())
			if !newerThan.LessThan(base) {
				return exitNotNewer, nil
			}
			return exitSuccess, nil
		}
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	opts := lastversion.Options{
		At:          atAdapterName(cfg.At),
		PreOk:       cfg.Pre,
		Major:       cfg.Major,
		Only:        cfg.Only,
		Exclude:     cfg.Exclude,
		HavingAsset: cfg.HavingAsset,
		Even:        cfg.Even,
		Formal:      cfg.Formal,
		ShortURLs:   cfg.ShorterURLs,
		UseCache:    !cfg.NoCache,
		NoCache:     cfg.NoCache,
	}

	res, err := lastversion.Latest(ctx, repo, opts)
	if err != nil {
		var badProject *factory.BadProjectError
		if errors.As(err, &badProject) || errors.Is(err, httpx.ErrCredentials) {
			return exitCredentialsErr, err
		}
		return exitNoRelease, err
	}

	if res == nil || res.Release == nil {
		if cfg.Format == "assets" {
			return exitEmptyAssets, nil
		}
		return exitNoRelease, errors.New("no release was found")
	}
	if res.Stale {
		cmd.PrintErrf("warning: serving stale cached result for %s\n", repo)
	}

	switch action {
	case "download":
		return runDownload(cmd, res.Release)
	case "extract", "unzip":
		cmd.PrintErrln("archive extraction is outside this tool's scope; use the asset/source URL directly")
		return exitNoRelease, nil
	case "install":
		cmd.PrintErrln("package installation is outside this tool's scope; use --format json and install the asset yourself")
		return exitNoRelease, nil
	}

	sem := lastversion.ParseSemLevel(cfg.Sem)
	format := lastversion.Format(cfg.Format)
	if format == "" {
		format = lastversion.FormatVersion
	}
	out, err := lastversion.Render(res.Release, format, cfg.Filter, sem)
	if err != nil {
		return exitNoRelease, pkgerrors.Wrap(err, "rendering result")
	}
	cmd.Println(out)

	if cfg.NewerThan != "" && format == lastversion.FormatVersion {
		newerThan, ok := version.SanitizeVersion(cfg.NewerThan, version.Options{PreOk: true})
		if ok {
			newerThan = newerThan.SemExtractBase(sem)
			base := res.Release.Version.SemExtractBase(sem)
			if !newerThan.LessThan(base) {
				return exitNotNewer, nil
			}
		}
	}
	return exitSuccess, nil
}

// atAdapterName maps the CLI's --at spelling to pkg/factory's adapter name.
func atAdapterName(at string) string {
	if at == "" {
		return ""
	}
	return knownAdapters[at]
}

func runFormatOrTest(cmd *cobra.Command, action, input string) (int, error) {
	v, ok := version.SanitizeVersion(input, version.Options{PreOk: true})
	if !ok {
		return exitNoRelease, errors.New("failed to parse as a valid version")
	}
	v = v.SemExtractBase(lastversion.ParseSemLevel(cfg.Sem))
	if action == "test" {
		cmd.Printf("Parsed as: %s\n", v)
		cmd.Printf("Stable: %v\n", !v.IsPrerelease())
		return exitSuccess, nil
	}
	cmd.Println(v.String())
	return exitSuccess, nil
}

func runUpdateSpec(cmd *cobra.Command, specPath string) (int, error) {
	data, err := rpmspec.ParseFile(specPath)
	if err != nil {
		return exitNoRelease, pkgerrors.Wrap(err, "parsing spec file")
	}
	if data.Repo == "" {
		return exitNoRelease, errors.New("could not determine upstream repo from spec file")
	}

	sem := cfg.Sem
	if sem == "" {
		sem = "minor"
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	opts := lastversion.Options{
		Major:    data.Major,
		Only:     data.Only,
		Formal:   data.Formal,
		UseCache: !cfg.NoCache,
		NoCache:  cfg.NoCache,
	}
	res, err := lastversion.Latest(ctx, data.Repo, opts)
	if err != nil {
		var badProject *factory.BadProjectError
		if errors.As(err, &badProject) || errors.Is(err, httpx.ErrCredentials) {
			return exitCredentialsErr, err
		}
		return exitNoRelease, err
	}
	if res == nil || res.Release == nil {
		return exitNoRelease, errors.New("no release was found")
	}

	semLevel := lastversion.ParseSemLevel(sem)
	latest := res.Release.Version.SemExtractBase(semLevel)
	current, ok := version.SanitizeVersion(data.CurrentVersion, version.Options{PreOk: true})
	if ok {
		current = current.SemExtractBase(semLevel)
		if !current.LessThan(latest) {
			cmd.Println("No change")
			return exitNotNewer, nil
		}
	}
	cmd.Printf("%s %s\n", data.SpecTag, latest.String())
	return exitSuccess, nil
}
