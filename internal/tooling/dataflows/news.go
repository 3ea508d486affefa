package dataflows

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
)

// NewsScraper scrapes Google News search results, the news analyst's
// fallback tool when a dedicated China news API has no coverage for a
// query.
type NewsScraper struct {
	client *resty.Client
	cache  *Cache
}

// NewNewsScraper returns a scraper with a 2-hour cache, matching the
// teacher's news-freshness window.
func NewNewsScraper(cacheDir string, cacheEnabled bool) *NewsScraper {
	client := resty.New().
		SetTimeout(30 * time.Second).
		SetHeader("User-Agent", "Mozilla/5.0 (compatible; ashare-agents/1.0)")
	return &NewsScraper{client: client, cache: NewCache(cacheDir, 2*time.Hour, cacheEnabled)}
}

// NewsArticle is one scraped or fetched news item.
type NewsArticle struct {
	Title       string    `json:"title"`
	Content     string    `json:"content"`
	URL         string    `json:"url"`
	Source      string    `json:"source"`
	PublishedAt time.Time `json:"published_at"`
}

// Search queries Google News for query, in Chinese by default (the
// A-share news surface), returning up to maxResults articles.
func (n *NewsScraper) Search(ctx context.Context, query string, maxResults int) ([]NewsArticle, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("invalid param: search query cannot be empty")
	}
	if maxResults <= 0 {
		maxResults = 20
	}

	var cached []NewsArticle
	cacheKey := fmt.Sprintf("%s|%d", query, maxResults)
	if n.cache.Get("google_news", "search", cacheKey, &cached) {
		return cached, nil
	}

	searchURL := fmt.Sprintf("https://news.google.com/search?q=%s&hl=zh-CN&gl=CN&ceid=CN:zh-Hans",
		url.QueryEscape(query))

	resp, err := n.client.R().SetContext(ctx).Get(searchURL)
	if err != nil {
		return nil, fmt.Errorf("network: google news fetch failed: %w", err)
	}
	if resp.StatusCode() == 429 {
		return nil, fmt.Errorf("rate limit: google news returned 429")
	}
	if resp.StatusCode() >= 500 {
		return nil, fmt.Errorf("server: google news returned %d", resp.StatusCode())
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(resp.String()))
	if err != nil {
		return nil, fmt.Errorf("server: failed to parse google news html: %w", err)
	}

	articles := parseGoogleNewsHTML(doc)
	if len(articles) > maxResults {
		articles = articles[:maxResults]
	}
	if len(articles) == 0 {
		return nil, fmt.Errorf("not found: no news results for %q", query)
	}

	_ = n.cache.Set("google_news", "search", cacheKey, articles)
	return articles, nil
}

func parseGoogleNewsHTML(doc *goquery.Document) []NewsArticle {
	var articles []NewsArticle
	doc.Find("article").Each(func(_ int, s *goquery.Selection) {
		title := strings.TrimSpace(s.Find("h3").Text())
		if title == "" {
			title = strings.TrimSpace(s.Find("h4").Text())
		}
		if title == "" {
			return
		}

		href, _ := s.Find("a").First().Attr("href")
		source := strings.TrimSpace(s.Find("div[data-n-tid]").Text())
		if source == "" {
			source = "Google News"
		}
		snippet := strings.TrimSpace(s.Find("span").Last().Text())
		published := parseRelativeTime(strings.TrimSpace(s.Find("time").Text()))

		articles = append(articles, NewsArticle{
			Title:       title,
			Content:     snippet,
			URL:         resolveGoogleNewsURL(href),
			Source:      source,
			PublishedAt: published,
		})
	})
	return articles
}

func resolveGoogleNewsURL(href string) string {
	if strings.Contains(href, "url=") {
		if parts := strings.SplitN(href, "url=", 2); len(parts) == 2 {
			if decoded, err := url.QueryUnescape(parts[1]); err == nil {
				return decoded
			}
		}
	}
	switch {
	case strings.HasPrefix(href, "./"):
		return "https://news.google.com" + href[1:]
	case strings.HasPrefix(href, "/"):
		return "https://news.google.com" + href
	default:
		return href
	}
}

var relativeTimePattern = regexp.MustCompile(`(\d+)\s*(分钟|小时|天|minute|hour|day)`)

func parseRelativeTime(text string) time.Time {
	now := time.Now()
	text = strings.ToLower(strings.TrimSpace(text))
	if text == "" {
		return now
	}
	m := relativeTimePattern.FindStringSubmatch(text)
	if m == nil {
		return now
	}
	n, _ := strconv.Atoi(m[1])
	switch m[2] {
	case "分钟", "minute":
		return now.Add(-time.Duration(n) * time.Minute)
	case "小时", "hour":
		return now.Add(-time.Duration(n) * time.Hour)
	case "天", "day":
		return now.Add(-time.Duration(n) * 24 * time.Hour)
	default:
		return now
	}
}
