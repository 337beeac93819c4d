// pkg/gallery/feed.go - NuGet v2 (OData/Atom) package feed queries.

package gallery

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	version "github.com/hashicorp/go-version"
	"github.com/windowsadmins/modman/pkg/logging"
	"github.com/windowsadmins/modman/pkg/report"
)

// feed is the subset of the Atom document FindPackagesById returns.
type feed struct {
	Links   []feedLink  `xml:"link"`
	Entries []feedEntry `xml:"entry"`
}

type feedLink struct {
	Rel  string `xml:"rel,attr"`
	Href string `xml:"href,attr"`
}

type feedEntry struct {
	Title   string `xml:"title"`
	Content struct {
		Type string `xml:"type,attr"`
		Src  string `xml:"src,attr"`
	} `xml:"content"`
	Properties struct {
		Version              string `xml:"Version"`
		IsPrerelease         bool   `xml:"IsPrerelease"`
		PackageHash          string `xml:"PackageHash"`
		PackageHashAlgorithm string `xml:"PackageHashAlgorithm"`
	} `xml:"properties"`
}

// candidate is one downloadable package version.
type candidate struct {
	Version       *version.Version
	ContentURL    string
	Hash          string
	HashAlgorithm string
}

// findPackage queries repoURL for name and returns the highest version,
// honoring the prerelease filter.
func (c *FeedClient) findPackage(ctx context.Context, repoURL, name string, allowPrerelease bool) (candidate, error) {
	query := fmt.Sprintf("%s/FindPackagesById()?id='%s'",
		strings.TrimRight(repoURL, "/"), url.QueryEscape(name))

	var best candidate
	visited := make(map[string]bool)
	pageURL := query
	for pageURL != "" {
		if visited[pageURL] {
			return candidate{}, &report.OpError{
				Kind: report.FailInvalidOperation,
				Err:  fmt.Errorf("repository feed pagination cycle at %s", pageURL),
			}
		}
		visited[pageURL] = true

		page, err := c.fetchFeedPage(ctx, pageURL)
		if err != nil {
			return candidate{}, err
		}

		for _, entry := range page.Entries {
			v, err := version.NewVersion(entry.Properties.Version)
			if err != nil {
				logging.Debug("Skipping unparsable feed version",
					"module", name, "version", entry.Properties.Version)
				continue
			}
			if !allowPrerelease && (entry.Properties.IsPrerelease || v.Prerelease() != "") {
				continue
			}
			if best.Version == nil || v.GreaterThan(best.Version) {
				best = candidate{
					Version:       v,
					ContentURL:    entry.Content.Src,
					Hash:          entry.Properties.PackageHash,
					HashAlgorithm: entry.Properties.PackageHashAlgorithm,
				}
			}
		}
		pageURL = nextLink(page.Links)
	}

	if best.Version == nil {
		return candidate{}, &report.OpError{
			Kind: report.FailInvalidArgument,
			Err:  fmt.Errorf("no matching version of module %q found in repository feed %s", name, repoURL),
		}
	}
	logging.Debug("Resolved module version",
		"module", name, "version", best.Version.Original(), "source", best.ContentURL)
	return best, nil
}

func (c *FeedClient) fetchFeedPage(ctx context.Context, pageURL string) (*feed, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, &report.OpError{Kind: report.FailInvalidArgument,
			Err: fmt.Errorf("building feed request: %w", err)}
	}
	req.Header.Set("Accept", "application/atom+xml")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &report.OpError{Kind: report.FailConnection,
			Err: fmt.Errorf("querying package feed: %w", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &report.OpError{Kind: report.FailConnection,
			Err: fmt.Errorf("package feed returned HTTP %d for %s", resp.StatusCode, pageURL)}
	}

	var page feed
	if err := xml.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, &report.OpError{Kind: report.FailInvalidOperation,
			Err: fmt.Errorf("decoding package feed: %w", err)}
	}
	return &page, nil
}

func nextLink(links []feedLink) string {
	for _, link := range links {
		if link.Rel == "next" {
			return link.Href
		}
	}
	return ""
}
