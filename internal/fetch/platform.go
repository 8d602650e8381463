package fetch

import (
	"net/url"
	"strings"
)

// Platform is a known applicant tracking system
type Platform string

// Recognized job boards
const (
	PlatformGreenhouse Platform = "greenhouse"
	PlatformLever      Platform = "lever"
	PlatformWorkday    Platform = "workday"
	PlatformAshby      Platform = "ashby"
	PlatformUnknown    Platform = "unknown"
)

type board struct {
	platform Platform
	hosts    []string
	content  []string
	noise    []string
}

var boards = []board{
	{
		platform: PlatformGreenhouse,
		hosts:    []string{"greenhouse.io"},
		content:  []string{".job__description.body", ".job__description", "#content", ".job-post-container"},
		noise:    []string{".application--wrapper", ".voluntary-self-id", "#usa_self_id_section", ".post-apply"},
	},
	{
		platform: PlatformLever,
		hosts:    []string{"lever.co"},
		content:  []string{".posting-page", ".section-wrapper.page-full-width", ".posting-description"},
		noise:    []string{".apply-section", ".lever-application-form", ".posting-apply"},
	},
	{
		platform: PlatformWorkday,
		hosts:    []string{"workday.com", "myworkdayjobs.com"},
		content:  []string{"[data-automation-id='jobPostingDescription']", "[data-automation-id='jobDescription']", ".job-description"},
		noise:    []string{"[data-automation-id='applyButton']", ".application-section"},
	},
	{
		platform: PlatformAshby,
		hosts:    []string{"ashbyhq.com"},
		content:  []string{"._descriptionText_", "[class*='descriptionText']", "main"},
		noise:    []string{"[class*='applicationForm']"},
	},
}

// genericContent matches job descriptions on unrecognized sites
var genericContent = []string{
	".job-description",
	"#job-description",
	".job-content",
	".posting-content",
	".job-details",
	"[data-testid='job-description']",
	"main",
	"article",
	"#content",
	".content",
}

// genericNoise is stripped from every posting: application forms, EEO text and share widgets
var genericNoise = []string{
	"form",
	".application-form",
	".apply-button-container",
	".eeo-statement",
	".voluntary-disclosure",
	".legal-disclosure",
	".social-share",
	".share-buttons",
	".cookie-consent",
}

// DetectPlatform identifies the job board hosting a URL.
func DetectPlatform(rawURL string) Platform {
	if b, ok := boardFor(rawURL); ok {
		return b.platform
	}
	return PlatformUnknown
}

// JobSelectors returns content and noise selectors for a posting URL.
func JobSelectors(rawURL string) (content, noise []string) {
	noise = append([]string(nil), genericNoise...)
	b, ok := boardFor(rawURL)
	if !ok {
		return append([]string(nil), genericContent...), noise
	}
	content = append(append([]string(nil), b.content...), genericContent...)
	return content, append(noise, b.noise...)
}

func boardFor(rawURL string) (board, bool) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return board{}, false
	}
	host := strings.ToLower(parsed.Hostname())
	for _, b := range boards {
		for _, h := range b.hosts {
			if host == h || strings.HasSuffix(host, "."+h) {
				return b, true
			}
		}
	}
	return board{}, false
}
