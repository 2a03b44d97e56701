package config

import (
	"fmt"
	"net/url"
	"strings"
)

type Validation struct {
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

func (v *Validation) addErr(format string, args ...any) {
	v.Errors = append(v.Errors, fmt.Sprintf(format, args...))
}
func (v *Validation) addWarn(format string, args ...any) {
	v.Warnings = append(v.Warnings, fmt.Sprintf(format, args...))
}
func (v Validation) OK() bool { return len(v.Errors) == 0 }

// NormalizeAndValidate fills defaults and returns a normalized copy plus any
// problems found. Defaults match the public UNHCR Workday board.
func NormalizeAndValidate(cfg Config) (Config, Validation) {
	out := cfg
	var res Validation

	// ---- Defaults ----

	if out.App.Port == 0 {
		out.App.Port = 38512
	}
	if strings.TrimSpace(out.Source.BoardURL) == "" {
		out.Source.BoardURL = "https://unhcr.wd3.myworkdayjobs.com/en-GB/External"
	}
	if out.Source.PageSize == 0 {
		out.Source.PageSize = 20
	}
	if out.Source.MaxPages == 0 {
		out.Source.MaxPages = 50
	}
	if out.Source.MaxNewEntries == 0 {
		out.Source.MaxNewEntries = 50
	}
	if out.Source.RequestsPerSec == 0 {
		out.Source.RequestsPerSec = 3
	}
	if out.Source.TimeoutSeconds == 0 {
		out.Source.TimeoutSeconds = 30
	}
	if strings.TrimSpace(out.Feed.File) == "" {
		out.Feed.File = "unhcr_jobs.xml"
	}
	if strings.TrimSpace(out.Feed.Title) == "" {
		out.Feed.Title = "UNHCR Job Vacancies"
	}
	if strings.TrimSpace(out.Feed.Link) == "" {
		out.Feed.Link = out.Source.BoardURL
	}
	if strings.TrimSpace(out.Feed.Description) == "" {
		out.Feed.Description = "List of vacancies at UNHCR"
	}
	if strings.TrimSpace(out.Feed.Language) == "" {
		out.Feed.Language = "en"
	}
	if out.Feed.MinTitleLen == 0 {
		out.Feed.MinTitleLen = 5
	}
	if strings.TrimSpace(out.Schedule.Cron) == "" {
		out.Schedule.Cron = "0 */6 * * *"
	}

	// ---- Validation rules ----

	if u, err := url.Parse(out.Source.BoardURL); err != nil || u.Scheme == "" || u.Host == "" {
		res.addErr("source.board_url %q is not an absolute URL", out.Source.BoardURL)
	}
	if out.Source.PageSize < 1 || out.Source.PageSize > 100 {
		res.addErr("source.page_size must be between 1 and 100")
	}
	if out.Source.MaxPages < 1 {
		res.addErr("source.max_pages must be > 0")
	}
	if out.Source.MaxNewEntries < 1 {
		res.addErr("source.max_new_entries must be > 0")
	}
	if out.Source.RequestsPerSec > 10 {
		res.addWarn("source.requests_per_sec is high (%.1f) and may trip the portal's rate limits.", out.Source.RequestsPerSec)
	}
	if out.Source.TimeoutSeconds < 5 {
		res.addWarn("source.timeout_seconds is very low (%d); slow pages will be treated as fetch failures.", out.Source.TimeoutSeconds)
	}
	if strings.TrimSpace(out.Feed.SelfURL) == "" {
		res.addWarn("feed.self_url is empty; the atom:link rel=self element will be omitted.")
	}

	return out, res
}
