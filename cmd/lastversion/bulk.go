package main

import (
	"bufio"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/dvershinin/lastversion-sub000/pkg/holder"
)

// runBulk implements -i/--input FILE: one repo per line, blank lines and
// lines starting with "#" ignored. Every line is run independently under
// the same action and flags; the process exit code is the last non-zero
// code seen across the batch, matching the original tool's bulk wrapper.
func runBulk(cmd *cobra.Command, action string) (int, error) {
	f, err := os.Open(cfg.Input)
	if err != nil {
		return exitNoRelease, errors.Wrapf(err, "opening input file %s", cfg.Input)
	}
	defer f.Close()

	var repos []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		repos = append(repos, line)
	}
	if err := scanner.Err(); err != nil {
		return exitNoRelease, errors.Wrap(err, "reading input file")
	}
	if len(repos) == 0 {
		return exitNoRelease, errors.New("no repositories found in input file")
	}

	code := exitSuccess
	for _, repo := range repos {
		// Scope this repo's in-memory HTTP cache writes behind their own
		// layer so one line's entries don't bleed into the next, while
		// still sharing the batch-wide base cache underneath (same shape
		// as the teacher's per-rebuild memory layer over a shared batch
		// cache).
		holder.PushScope()
		repoCode, err := run(cmd, action, repo)
		holder.PopScope()
		if err != nil {
			cmd.PrintErrf("%s: %v\n", repo, err)
		}
		if repoCode != 0 {
			code = repoCode
		}
	}
	return code, nil
}
