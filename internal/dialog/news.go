package dialog

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/http"
	"strings"

	"github.com/dfuchss/deltabot/internal/domain"
)

// maxHeadlines limits how many items are reported per feed.
const maxHeadlines = 5

// rssFeed is the subset of RSS 2.0 the news dialog cares about.
type rssFeed struct {
	Channel struct {
		Title string `xml:"title"`
		Items []struct {
			Title string `xml:"title"`
			Link  string `xml:"link"`
		} `xml:"item"`
	} `xml:"channel"`
}

// News fetches current headlines from the configured RSS feeds.
type News struct {
	deps Deps
}

// NewNews creates the news dialog.
func NewNews(deps Deps) *News {
	return &News{deps: deps}
}

func (d *News) ID() string { return IDNews }

func (d *News) Proceed(ctx context.Context, msg domain.InboundMessage, _ []domain.IntentResult, _ []domain.EntityResult) domain.DialogResult {
	if len(d.deps.Feeds) == 0 {
		_ = d.deps.Sender.Send(ctx, msg, "No news feeds are configured.", true)
		return domain.DialogDone
	}

	var b strings.Builder
	fetched := 0
	for _, url := range d.deps.Feeds {
		feed, err := d.fetch(ctx, url)
		if err != nil {
			d.deps.Log.Warn().Err(err).Str("feed", url).Msg("failed to fetch feed")
			continue
		}
		fetched++

		fmt.Fprintf(&b, "%s:\n", feed.Channel.Title)
		for i, item := range feed.Channel.Items {
			if i >= maxHeadlines {
				break
			}
			fmt.Fprintf(&b, "- %s (%s)\n", item.Title, item.Link)
		}
	}

	if fetched == 0 {
		_ = d.deps.Sender.Send(ctx, msg, "I could not fetch the news right now. Please try again later.", true)
		return domain.DialogDone
	}

	_ = d.deps.Sender.Send(ctx, msg, strings.TrimSpace(b.String()), false)
	return domain.DialogDone
}

func (d *News) fetch(ctx context.Context, url string) (*rssFeed, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("building feed request: %w", err)
	}

	resp, err := d.deps.httpClient().Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching feed: unexpected status %d", resp.StatusCode)
	}

	var feed rssFeed
	if err := xml.NewDecoder(resp.Body).Decode(&feed); err != nil {
		return nil, fmt.Errorf("decoding feed: %w", err)
	}
	return &feed, nil
}
