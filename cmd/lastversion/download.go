package main

import (
	"context"
	"io"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/dvershinin/lastversion-sub000/pkg/holder"
	"github.com/dvershinin/lastversion-sub000/pkg/release"
)

// downloadClient mirrors §5's "download streaming has no overall deadline",
// so it carries no request timeout of its own.
var downloadClient = &http.Client{}

// runDownload implements the download action (§6 -d|-o|--download): resolve
// the release's asset or source URLs, fetch each, and honor a custom
// filename only when exactly one URL is being downloaded.
func runDownload(cmd *cobra.Command, r *release.Release) (int, error) {
	format := cfg.Format
	if format == "" {
		format = "source"
	}
	var urls []string
	if format == "assets" {
		urls = holder.GetAssets(r, cfg.Filter, func() string { return r.SourceURL })
	} else {
		urls = []string{r.SourceURL}
	}
	if len(urls) == 0 {
		return exitEmptyAssets, nil
	}

	onlyOneCandidate := len(urls) == 1

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	for _, u := range urls {
		name := ""
		if onlyOneCandidate {
			name = cfg.Output
		}
		if err := downloadFile(ctx, cmd, u, name); err != nil {
			return exitNoRelease, errors.Wrapf(err, "downloading %s", u)
		}
	}
	return exitSuccess, nil
}

// downloadFile streams src to disk, preferring (in order) an explicit
// rename, the server's Content-Disposition filename, then the URL's own
// basename.
func downloadFile(ctx context.Context, cmd *cobra.Command, src string, rename string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
	if err != nil {
		return errors.Wrap(err, "building request")
	}
	resp, err := downloadClient.Do(req)
	if err != nil {
		return errors.Wrap(err, "fetching")
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return errors.Errorf("server returned %s", resp.Status)
	}

	name := rename
	if name == "" {
		name = filenameFromContentDisposition(resp.Header.Get("Content-Disposition"))
	}
	if name == "" {
		name = filenameFromURL(src)
	}

	f, err := os.Create(name)
	if err != nil {
		return errors.Wrapf(err, "creating %s", name)
	}
	defer f.Close()

	cmd.Printf("Downloading %s ...\n", src)
	start := time.Now()
	n, err := io.Copy(f, resp.Body)
	if err != nil {
		return errors.Wrap(err, "writing file")
	}
	cmd.Printf("Saved %s (%s) in %s\n", name, formatBytes(n), time.Since(start).Round(time.Millisecond))
	return nil
}

func filenameFromContentDisposition(header string) string {
	if header == "" {
		return ""
	}
	_, params, err := mime.ParseMediaType(header)
	if err != nil {
		return ""
	}
	return params["filename"]
}

func filenameFromURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return path.Base(raw)
	}
	return path.Base(u.Path)
}

func formatBytes(n int64) string {
	return strconv.FormatInt(n, 10) + " bytes"
}
