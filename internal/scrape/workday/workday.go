// Package workday fetches job postings from a Workday career board through
// the CXS JSON API, with detail lookups for postings whose listing row does
// not carry enough text to classify.
package workday

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/microcosm-cc/bluemonday"

	"unhcr-feed-engine/internal/domain"
	"unhcr-feed-engine/internal/scrape/util"
)

type Config struct {
	// BoardURL is the public career board, e.g.
	// https://unhcr.wd3.myworkdayjobs.com/en-GB/External
	BoardURL string
	PageSize int
	MaxPages int
	Timeout  time.Duration
}

type Scraper struct {
	cfg     Config
	limiter *util.RequestLimiter
	strip   *bluemonday.Policy
	board   board
}

type board struct {
	Scheme string
	Host   string
	Tenant string
	Site   string
	Locale string
}

func New(cfg Config, limiter *util.RequestLimiter) (*Scraper, error) {
	b, err := parseBoardURL(cfg.BoardURL)
	if err != nil {
		return nil, fmt.Errorf("workday board url: %w", err)
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = 20
	}
	if cfg.MaxPages <= 0 {
		cfg.MaxPages = 50
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &Scraper{
		cfg:     cfg,
		limiter: limiter,
		strip:   bluemonday.StrictPolicy(),
		board:   b,
	}, nil
}

func (s *Scraper) Name() string { return "workday" }

type wdRequest struct {
	AppliedFacets map[string]any `json:"appliedFacets"`
	Limit         int            `json:"limit"`
	Offset        int            `json:"offset"`
	SearchText    string         `json:"searchText"`
}

type wdResponse struct {
	Total       int         `json:"total"`
	JobPostings []wdPosting `json:"jobPostings"`
}

type wdPosting struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	ExternalPath  string `json:"externalPath"`
	ExternalURL   string `json:"externalUrl"`
	LocationsText string `json:"locationsText"`
	PostedOn      string `json:"postedOn"`
	PostedOnDate  string `json:"postedOnDate"`
	BulletFields  []any  `json:"bulletFields"`
}

type wdDetail struct {
	JobPostingInfo struct {
		JobDescription        string `json:"jobDescription"`
		AdditionalInformation string `json:"additionalInformation"`
		JobReqSubCategory     any    `json:"jobReqSubCategory"`
		WorkerSubType         any    `json:"workerSubType"`
	} `json:"jobPostingInfo"`
}

// Fetch walks the jobs endpoint page by page and returns every posting, in
// board order. Any page-level failure fails the whole fetch: the caller must
// be able to tell a broken fetch from a legitimately empty one.
func (s *Scraper) Fetch(ctx context.Context) ([]domain.Posting, error) {
	hc := newClient(s.cfg.Timeout)

	csrf, err := s.bootstrap(ctx, hc)
	if err != nil {
		// Many tenants serve /jobs without a session; only log.
		log.Printf("[workday] bootstrap: %v", err)
	}

	endpoint := s.board.jobsEndpoint()
	var out []domain.Posting
	offset := 0

	for page := 0; page < s.cfg.MaxPages; page++ {
		if err := s.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		jr, err := s.fetchPage(ctx, hc, endpoint, csrf, offset)
		if err != nil {
			return nil, err
		}
		if len(jr.JobPostings) == 0 {
			break
		}

		for _, p := range jr.JobPostings {
			out = append(out, toPosting(p))
		}

		offset += s.cfg.PageSize
		if jr.Total > 0 && offset >= jr.Total {
			break
		}
	}

	log.Printf("[workday] fetched %d postings from %s", len(out), endpoint)
	return out, nil
}

func (s *Scraper) fetchPage(ctx context.Context, hc *http.Client, endpoint, csrf string, offset int) (wdResponse, error) {
	payload, _ := json.Marshal(wdRequest{
		AppliedFacets: map[string]any{},
		Limit:         s.cfg.PageSize,
		Offset:        offset,
		SearchText:    "",
	})

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return wdResponse{}, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Origin", fmt.Sprintf("%s://%s", s.board.Scheme, s.board.Host))
	req.Header.Set("Referer", strings.TrimRight(s.cfg.BoardURL, "/"))
	if s.board.Locale != "" {
		req.Header.Set("Accept-Language", s.board.Locale)
	}
	if csrf != "" {
		req.Header.Set("x-calypso-csrf-token", csrf)
	}

	res, err := hc.Do(req)
	if err != nil {
		return wdResponse{}, fmt.Errorf("workday post jobs offset=%d: %w", offset, err)
	}
	data, _ := io.ReadAll(res.Body)
	res.Body.Close()

	if res.StatusCode >= 400 {
		return wdResponse{}, fmt.Errorf("workday status %d offset=%d body=%s",
			res.StatusCode, offset, util.Truncate(string(data), 240))
	}

	var jr wdResponse
	if err := json.Unmarshal(data, &jr); err != nil {
		return wdResponse{}, fmt.Errorf("workday decode offset=%d: %w body=%s",
			offset, err, util.Truncate(string(data), 240))
	}
	return jr, nil
}

// DetailText returns the posting's detail text for grade matching: the CXS
// detail JSON first, the public HTML page as a fallback. Best effort; an
// error here never fails the run.
func (s *Scraper) DetailText(ctx context.Context, p domain.Posting) (string, error) {
	hc := newClient(s.cfg.Timeout)

	if strings.TrimSpace(p.ExternalPath) != "" {
		txt, err := s.detailJSON(ctx, hc, p.ExternalPath)
		if err != nil {
			log.Printf("[workday] detail json %s: %v", p.ExternalPath, err)
		} else if txt != "" {
			return txt, nil
		}
	}

	jobURL := strings.TrimSpace(p.ExternalURL)
	if jobURL == "" {
		path := strings.TrimSpace(p.ExternalPath)
		if path == "" {
			return "", nil
		}
		if !strings.HasPrefix(path, "/") {
			path = "/" + path
		}
		jobURL = strings.TrimRight(s.cfg.BoardURL, "/") + path
	}
	return s.detailHTML(ctx, hc, jobURL)
}

func (s *Scraper) detailJSON(ctx context.Context, hc *http.Client, externalPath string) (string, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return "", err
	}
	if !strings.HasPrefix(externalPath, "/") {
		externalPath = "/" + externalPath
	}
	detailURL := s.board.cxsBase() + externalPath

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, detailURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")
	req.Header.Set("Accept", "application/json")

	res, err := hc.Do(req)
	if err != nil {
		return "", err
	}
	defer res.Body.Close()
	if res.StatusCode >= 400 {
		return "", fmt.Errorf("detail status %d", res.StatusCode)
	}

	var d wdDetail
	if err := json.NewDecoder(res.Body).Decode(&d); err != nil {
		return "", fmt.Errorf("detail decode: %w", err)
	}

	parts := []string{
		s.strip.Sanitize(d.JobPostingInfo.JobDescription),
		s.strip.Sanitize(d.JobPostingInfo.AdditionalInformation),
		flatten(d.JobPostingInfo.JobReqSubCategory),
		flatten(d.JobPostingInfo.WorkerSubType),
	}
	return util.CleanText(strings.Join(parts, " ")), nil
}

func (s *Scraper) detailHTML(ctx context.Context, hc *http.Client, jobURL string) (string, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, jobURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")
	req.Header.Set("Accept", "text/html")

	res, err := hc.Do(req)
	if err != nil {
		return "", fmt.Errorf("detail page get: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode >= 400 {
		return "", fmt.Errorf("detail page status %d", res.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(res.Body)
	if err != nil {
		return "", fmt.Errorf("detail page parse: %w", err)
	}
	doc.Find("script, style, noscript").Remove()
	return util.CleanText(doc.Text()), nil
}

// bootstrap visits the board page so the cookie jar picks up a session and,
// on tenants that require it, the CALYPSO_CSRF_TOKEN cookie.
func (s *Scraper) bootstrap(ctx context.Context, hc *http.Client) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.cfg.BoardURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	res, err := hc.Do(req)
	if err != nil {
		return "", err
	}
	io.Copy(io.Discard, res.Body)
	res.Body.Close()
	if res.StatusCode >= 400 {
		return "", fmt.Errorf("board status %d", res.StatusCode)
	}

	u, _ := url.Parse(s.cfg.BoardURL)
	for _, c := range hc.Jar.Cookies(u) {
		if c.Name == "CALYPSO_CSRF_TOKEN" && c.Value != "" {
			return c.Value, nil
		}
	}
	return "", errors.New("missing CALYPSO_CSRF_TOKEN cookie")
}

func toPosting(p wdPosting) domain.Posting {
	var bullets []string
	for _, f := range p.BulletFields {
		if s := util.CleanText(fmt.Sprint(f)); s != "" {
			bullets = append(bullets, s)
		}
	}
	return domain.Posting{
		ID:            strings.TrimSpace(p.ID),
		Title:         p.Title,
		ExternalPath:  p.ExternalPath,
		ExternalURL:   p.ExternalURL,
		LocationsText: p.LocationsText,
		PostedOn:      p.PostedOn,
		PostedOnDate:  p.PostedOnDate,
		BulletFields:  bullets,
	}
}

func flatten(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case map[string]any:
		if d, ok := t["descriptor"].(string); ok {
			return d
		}
		return ""
	default:
		return fmt.Sprint(t)
	}
}

func newClient(timeout time.Duration) *http.Client {
	jar, _ := cookiejar.New(nil)
	return &http.Client{Jar: jar, Timeout: timeout}
}

func parseBoardURL(raw string) (board, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return board{}, errors.New("empty board url")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return board{}, err
	}
	if u.Scheme == "" {
		u.Scheme = "https"
	}
	if u.Host == "" {
		return board{}, fmt.Errorf("missing host in %q", raw)
	}

	parts := strings.Split(u.Host, ".")
	if len(parts) < 3 {
		return board{}, fmt.Errorf("unexpected host %q", u.Host)
	}
	tenant := parts[0]

	segs := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(segs) == 0 || segs[0] == "" {
		return board{}, fmt.Errorf("unexpected path %q", u.Path)
	}

	locale := ""
	if len(segs) >= 2 && looksLikeLocale(segs[0]) {
		locale = normalizeLocale(segs[0])
		segs = segs[1:]
	}

	site := segs[len(segs)-1]
	if site == "" {
		return board{}, fmt.Errorf("could not derive site from path %q", u.Path)
	}

	return board{
		Scheme: u.Scheme,
		Host:   u.Host,
		Tenant: tenant,
		Site:   site,
		Locale: locale,
	}, nil
}

func looksLikeLocale(s string) bool {
	s = strings.TrimSpace(s)
	if len(s) != 5 || s[2] != '-' {
		return false
	}
	return isAlpha(s[0:2]) && isAlpha(s[3:5])
}

func normalizeLocale(s string) string {
	s = strings.TrimSpace(s)
	if len(s) == 5 && s[2] == '-' {
		return strings.ToLower(s[0:2]) + "-" + strings.ToUpper(s[3:5])
	}
	return s
}

func isAlpha(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !((c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')) {
			return false
		}
	}
	return true
}

func (b board) cxsBase() string {
	return fmt.Sprintf("%s://%s/wday/cxs/%s/%s", b.Scheme, b.Host, b.Tenant, b.Site)
}

func (b board) jobsEndpoint() string {
	base := b.cxsBase() + "/jobs"
	if b.Locale == "" {
		return base
	}
	return base + "?locale=" + url.QueryEscape(b.Locale)
}
