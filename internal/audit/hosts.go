package audit

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"strings"

	"golang.org/x/net/publicsuffix"

	"github.com/nao1215/harsanitizer/internal/har"
	"github.com/nao1215/harsanitizer/internal/model"
)

// HostAnalyzer lists the sites a capture contacted besides the one it was
// recorded on. The first entry's site counts as the recorded one.
type HostAnalyzer struct{}

// NewHostAnalyzer creates a new HostAnalyzer.
func NewHostAnalyzer() *HostAnalyzer {
	return &HostAnalyzer{}
}

// Name returns the analyzer name.
func (a *HostAnalyzer) Name() string {
	return "third_party_hosts"
}

// Category returns the analyzer category.
func (a *HostAnalyzer) Category() string {
	return CategoryContext
}

// Analyze returns one finding per third-party registrable domain, in order
// of first request.
func (a *HostAnalyzer) Analyze(_ context.Context, data *AnalysisData) ([]model.Finding, error) {
	var (
		primary  string
		findings = make([]model.Finding, 0)
		counts   = make(map[string]int)
		first    = make(map[string]string)
		order    []string
	)

	for _, entry := range har.Entries(data.Document()) {
		rawURL := har.RequestURL(entry)
		site := registrableDomain(rawURL)
		if site == "" {
			continue
		}
		if primary == "" {
			primary = site
		}
		if site == primary {
			continue
		}
		if _, ok := counts[site]; !ok {
			order = append(order, site)
			first[site] = rawURL
		}
		counts[site]++
	}

	for _, site := range order {
		findings = append(findings, model.NewFinding(
			model.FindingThirdPartyHosts,
			"Third-Party Site Contacted",
			fmt.Sprintf("The capture contains %d request(s) to %s.", counts[site], site),
			site,
			first[site],
		))
	}
	return findings, nil
}

// registrableDomain returns the eTLD+1 of the URL's host. Hosts without
// one, such as IP addresses and localhost, are returned as they are.
func registrableDomain(rawURL string) string {
	u, err := url.Parse(stripUserinfo(rawURL))
	if err != nil {
		return ""
	}
	host := strings.ToLower(u.Hostname())
	if host == "" {
		return ""
	}
	if net.ParseIP(host) != nil {
		return host
	}
	site, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		return host
	}
	return site
}

// stripUserinfo removes "user:password@" from an absolute URL. Redaction
// markers in the password are not valid userinfo and would make url.Parse
// reject the whole URL.
func stripUserinfo(rawURL string) string {
	scheme, rest, ok := strings.Cut(rawURL, "://")
	if !ok {
		return rawURL
	}
	end := strings.IndexAny(rest, "/?#")
	if end < 0 {
		end = len(rest)
	}
	if at := strings.LastIndex(rest[:end], "@"); at >= 0 {
		return scheme + "://" + rest[at+1:]
	}
	return rawURL
}

// Ensure HostAnalyzer implements CheckAnalyzer.
var _ CheckAnalyzer = (*HostAnalyzer)(nil)
