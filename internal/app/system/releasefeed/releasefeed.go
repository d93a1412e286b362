// Package releasefeed reads the latest published release of the app from
// a GitHub-style releases endpoint and compares it with the running
// version. It never downloads or installs anything.
package releasefeed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/dalemusser/quickclass/internal/app/system/textutil"
	"go.uber.org/zap"
	"golang.org/x/mod/semver"
	"golang.org/x/sync/singleflight"
)

// CacheTTL is how long a fetched release is reused.
const CacheTTL = 6 * time.Hour

const maxBodyBytes = 1 << 20

// fetchTimeout bounds a shared fetch once it no longer follows any caller.
const fetchTimeout = 15 * time.Second

// ErrNoRelease is returned when the feed has no usable release.
var ErrNoRelease = errors.New("releasefeed: no release available")

// Asset is one downloadable file attached to a release.
type Asset struct {
	Name               string `json:"name"`
	ContentType        string `json:"content_type"`
	BrowserDownloadURL string `json:"browser_download_url"`
}

// Release is the subset of the release document the app uses.
type Release struct {
	TagName     string    `json:"tag_name"`
	Name        string    `json:"name"`
	Body        string    `json:"body"`
	ZipballURL  string    `json:"zipball_url"`
	HTMLURL     string    `json:"html_url"`
	PublishedAt time.Time `json:"published_at"`
	Assets      []Asset   `json:"assets"`
}

// Version is the tag without a leading "v".
func (r Release) Version() string {
	return strings.TrimPrefix(strings.TrimPrefix(r.TagName, "v"), "V")
}

// PackageURL prefers a zip asset and falls back to the source zipball.
func (r Release) PackageURL() string {
	for _, a := range r.Assets {
		if a.ContentType == "application/zip" || strings.Contains(a.Name, ".zip") {
			return a.BrowserDownloadURL
		}
	}
	return r.ZipballURL
}

// Changelog renders the release notes as safe HTML.
func (r Release) Changelog() template.HTML {
	return textutil.RenderChangelog(r.Body)
}

// Newer reports whether latest is a higher version than installed.
// Both may carry a "v" prefix. Unparseable versions never compare newer.
func Newer(latest, installed string) bool {
	l, i := canonical(latest), canonical(installed)
	if !semver.IsValid(l) || !semver.IsValid(i) {
		return false
	}
	return semver.Compare(l, i) > 0
}

func canonical(v string) string {
	v = strings.TrimSpace(v)
	v = strings.TrimPrefix(strings.TrimPrefix(v, "v"), "V")
	if v == "" {
		return ""
	}
	return "v" + v
}

// Check is the outcome shown on the updates page.
type Check struct {
	Installed       string
	Latest          string
	UpdateAvailable bool
	PackageURL      string
	ReleaseURL      string
	PublishedAt     time.Time
	Changelog       template.HTML
	CheckedAt       time.Time
}

// Feed fetches and caches the latest release.
type Feed struct {
	url       string
	installed string
	http      *http.Client
	log       *zap.Logger
	now       func() time.Time

	group singleflight.Group

	mu        sync.Mutex
	cached    *Release
	fetchedAt time.Time
}

// New creates a Feed for url. A nil hc uses a client with a 15s timeout.
func New(url, installed string, hc *http.Client, logger *zap.Logger) *Feed {
	if hc == nil {
		hc = &http.Client{Timeout: 15 * time.Second}
	}
	return &Feed{url: url, installed: installed, http: hc, log: logger, now: time.Now}
}

// Enabled reports whether a release URL is configured.
func (f *Feed) Enabled() bool { return f != nil && f.url != "" }

// Installed returns the running version.
func (f *Feed) Installed() string { return f.installed }

// Latest returns the newest release, from cache when it is fresh.
// Concurrent callers share one request. A caller whose ctx ends stops
// waiting, but the shared request runs on for the others.
func (f *Feed) Latest(ctx context.Context) (Release, error) {
	if !f.Enabled() {
		return Release{}, ErrNoRelease
	}

	f.mu.Lock()
	if f.cached != nil && f.now().Sub(f.fetchedAt) < CacheTTL {
		rel := *f.cached
		f.mu.Unlock()
		return rel, nil
	}
	f.mu.Unlock()

	fetchCtx := context.WithoutCancel(ctx)
	ch := f.group.DoChan("latest", func() (any, error) {
		fctx, cancel := context.WithTimeout(fetchCtx, fetchTimeout)
		defer cancel()
		rel, err := f.fetch(fctx)
		if err != nil {
			return Release{}, err
		}
		f.mu.Lock()
		f.cached = &rel
		f.fetchedAt = f.now()
		f.mu.Unlock()
		return rel, nil
	})

	select {
	case <-ctx.Done():
		return Release{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			f.log.Warn("release check failed", zap.String("url", f.url), zap.Error(res.Err))
			return Release{}, res.Err
		}
		return res.Val.(Release), nil
	}
}

// Check compares the latest release with the installed version.
func (f *Feed) Check(ctx context.Context) (Check, error) {
	rel, err := f.Latest(ctx)
	if err != nil {
		return Check{Installed: f.installed}, err
	}
	return Check{
		Installed:       f.installed,
		Latest:          rel.Version(),
		UpdateAvailable: Newer(rel.Version(), f.installed),
		PackageURL:      rel.PackageURL(),
		ReleaseURL:      rel.HTMLURL,
		PublishedAt:     rel.PublishedAt,
		Changelog:       rel.Changelog(),
		CheckedAt:       f.fetchedTime(),
	}, nil
}

// Invalidate drops the cached release.
func (f *Feed) Invalidate() {
	f.mu.Lock()
	f.cached = nil
	f.mu.Unlock()
}

func (f *Feed) fetchedTime() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fetchedAt
}

func (f *Feed) fetch(ctx context.Context) (Release, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url, nil)
	if err != nil {
		return Release{}, err
	}
	req.Header.Set("Accept", "application/vnd.github.v3+json")
	req.Header.Set("User-Agent", "quickclass/"+f.installed)

	resp, err := f.http.Do(req)
	if err != nil {
		return Release{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Release{}, fmt.Errorf("releasefeed: %s", resp.Status)
	}

	var rel Release
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(&rel); err != nil {
		return Release{}, fmt.Errorf("releasefeed: decode: %w", err)
	}
	if rel.TagName == "" {
		return Release{}, ErrNoRelease
	}
	return rel, nil
}
