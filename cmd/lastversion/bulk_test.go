package main

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/spf13/cobra"
)

func TestRunBulk(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "bulk-*.txt")
	if err != nil {
		t.Fatal(err)
	}
	content := "# a comment\n\nv1.0.0\nnot a version!!\nv2.0.0\n"
	if _, err := f.WriteString(content); err != nil {
		t.Fatal(err)
	}
	f.Close()

	withCfg(t, Config{Input: f.Name()}, func(cmd *cobra.Command) {
		code, err := runBulk(cmd, "format")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		// Only a non-zero repoCode overwrites the aggregate, so once the
		// unparsable line sets it to exitNoRelease, the later successful
		// v2.0.0 entry doesn't reset it back to exitSuccess.
		if code != exitNoRelease {
			t.Errorf("code = %d, want %d", code, exitNoRelease)
		}
		out := cmd.OutOrStdout().(*bytes.Buffer).String()
		if !strings.Contains(out, "1.0.0") || !strings.Contains(out, "2.0.0") {
			t.Errorf("output %q missing expected versions", out)
		}
	})
}

func TestRunBulkMissingFile(t *testing.T) {
	withCfg(t, Config{Input: "/nonexistent/path/to/file.txt"}, func(cmd *cobra.Command) {
		code, err := runBulk(cmd, "format")
		if err == nil {
			t.Fatal("expected an error opening a missing input file")
		}
		if code != exitNoRelease {
			t.Errorf("code = %d, want %d", code, exitNoRelease)
		}
	})
}

func TestRunBulkEmptyFile(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "bulk-empty-*.txt")
	if err != nil {
		t.Fatal(err)
	}
	f.Close()

	withCfg(t, Config{Input: f.Name()}, func(cmd *cobra.Command) {
		code, err := runBulk(cmd, "format")
		if err == nil {
			t.Fatal("expected an error for an input file with no repositories")
		}
		if code != exitNoRelease {
			t.Errorf("code = %d, want %d", code, exitNoRelease)
		}
	})
}
