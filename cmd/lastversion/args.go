package main

import "strings"

// splitRepoArg implements §6's "repo:MAJOR shorthand splits into repo and
// --major MAJOR (but preserves :// in URLs)": a bare "repo:1.2" becomes
// repo="repo", major="1.2", but "https://host/path" is left alone, since its
// single colon is the URL scheme separator, not a major-version marker. A
// last colon followed by a "/" (a port, as in "https://host:9000/path") is
// not a major-version marker either, so such input is also left whole.
func splitRepoArg(input string) (repo, major string) {
	if !strings.Contains(input, ":") {
		return input, ""
	}
	isURL := strings.HasPrefix(input, "https://") || strings.HasPrefix(input, "http://")
	if isURL && strings.Count(input, ":") == 1 {
		return input, ""
	}
	idx := strings.LastIndex(input, ":")
	if strings.Contains(input[idx+1:], "/") {
		return input, ""
	}
	return input[:idx], input[idx+1:]
}
