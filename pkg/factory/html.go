package factory

import (
	"context"
	"io"
	"strings"

	"golang.org/x/net/html"

	"github.com/dvershinin/lastversion-sub000/pkg/holder"
	"github.com/dvershinin/lastversion-sub000/pkg/holder/feed"
	"github.com/dvershinin/lastversion-sub000/pkg/holder/github"
	"github.com/dvershinin/lastversion-sub000/pkg/release"
)

// homepageFeedFallback implements §4.5 step 5: fetch the project's
// homepage, collect <link rel=alternate type=*xml*> and <a href> feed
// candidates, parse each and keep the first that yields entries. Failing
// that, look for a github.com link on the page and build a GitHub holder
// from it.
func homepageFeedFallback(ctx context.Context, hostname, repo, cacheDir string) (holder.Holder, error) {
	session, err := holder.NewSession(cacheDir, "", "")
	if err != nil {
		return nil, err
	}
	pageURL := "https://" + hostname + "/"
	resp, err := holder.Get(session, pageURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	doc, err := html.Parse(strings.NewReader(string(body)))
	if err != nil {
		return nil, err
	}

	feedLinks, githubLink := collectLinks(doc)

	for _, href := range feedLinks {
		feedURL := resolveLink(pageURL, href)
		fresp, err := holder.Get(session, feedURL)
		if err != nil {
			continue
		}
		fbody, err := io.ReadAll(fresp.Body)
		fresp.Body.Close()
		if err != nil {
			continue
		}
		entries, err := feed.Parse(fbody)
		if err != nil || len(entries) == 0 {
			continue
		}
		return &feed.Holder{
			Base:    holder.Base{Hostname: hostname, Repo: repo},
			FeedURL: feedURL,
			Client:  session,
			Type:    release.TypeFeed,
		}, nil
	}

	if githubLink != "" {
		if ghRepo := githubRepoFromLink(githubLink); ghRepo != "" {
			return github.NewHolder(ghRepo, "", cacheDir)
		}
	}

	return nil, nil
}

// collectLinks walks the parsed homepage for <link rel=alternate
// type=*xml*> hrefs and <a> hrefs containing xml|rss|feed, plus the first
// <a> href pointing at github.com.
func collectLinks(n *html.Node) (feedLinks []string, githubLink string) {
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "link":
				if attr(n, "rel") == "alternate" && strings.Contains(attr(n, "type"), "xml") {
					if href := attr(n, "href"); href != "" {
						feedLinks = append(feedLinks, href)
					}
				}
			case "a":
				href := attr(n, "href")
				lower := strings.ToLower(href)
				if strings.Contains(lower, "xml") || strings.Contains(lower, "rss") || strings.Contains(lower, "feed") {
					feedLinks = append(feedLinks, href)
				}
				if githubLink == "" && strings.Contains(lower, "github.com/") {
					githubLink = href
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return feedLinks, githubLink
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func resolveLink(base, href string) string {
	if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return href
	}
	if strings.HasPrefix(href, "/") {
		if idx := strings.Index(base[len("https://"):], "/"); idx >= 0 {
			return base[:len("https://")+idx] + href
		}
		return strings.TrimSuffix(base, "/") + href
	}
	return strings.TrimSuffix(base, "/") + "/" + href
}

// githubRepoFromLink extracts "owner/name" from a github.com URL.
func githubRepoFromLink(link string) string {
	idx := strings.Index(link, "github.com/")
	if idx < 0 {
		return ""
	}
	rest := link[idx+len("github.com/"):]
	rest = strings.SplitN(rest, "?", 2)[0]
	rest = strings.SplitN(rest, "#", 2)[0]
	parts := strings.Split(strings.Trim(rest, "/"), "/")
	if len(parts) < 2 {
		return ""
	}
	return parts[0] + "/" + parts[1]
}
