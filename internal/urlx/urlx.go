// Package urlx holds small url.URL helpers shared by holder adapters that
// handle provider-specific URL shapes (e.g. SourceForge's download URL,
// GitHub's blob-to-raw rewrite for Chart.yaml fetches).
package urlx

import "net/url"

// MustParse will call url.Parse and panic if there is an error, returning on success.
func MustParse(rawURL string) *url.URL {
	if u, err := url.Parse(rawURL); err != nil {
		panic(err)
	} else {
		return u
	}
}
