package playback

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"marquee/internal/httputil"
)

// ProbeResult describes a fetched player page.
type ProbeResult struct {
	URL        string `json:"url"`
	StatusCode int    `json:"status_code"`
	Title      string `json:"title,omitempty"`
	HasPlayer  bool   `json:"has_player"`
}

// Available reports whether the page loaded and looks like a player.
func (r *ProbeResult) Available() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300 && r.HasPlayer
}

// Probe fetches a player page and checks it for an embedded player.
func Probe(ctx context.Context, client *http.Client, pageURL string) (*ProbeResult, error) {
	resp, err := httputil.Get(ctx, client, pageURL)
	if err != nil {
		return nil, fmt.Errorf("probing %s: %w", pageURL, err)
	}
	defer resp.Body.Close()

	res := &ProbeResult{URL: pageURL, StatusCode: resp.StatusCode}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 64*1024))
		return res, nil
	}

	doc, err := goquery.NewDocumentFromReader(io.LimitReader(resp.Body, 2*1024*1024))
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", pageURL, err)
	}

	res.Title = strings.TrimSpace(doc.Find("title").First().Text())
	res.HasPlayer = doc.Find("iframe[src], video, [data-player], #player").Length() > 0
	return res, nil
}
