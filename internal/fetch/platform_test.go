package fetch

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectPlatform(t *testing.T) {
	tests := []struct {
		url  string
		want Platform
	}{
		{"https://boards.greenhouse.io/acme/jobs/123", PlatformGreenhouse},
		{"https://job-boards.greenhouse.io/acme/jobs/123", PlatformGreenhouse},
		{"https://jobs.lever.co/acme/abc", PlatformLever},
		{"https://acme.wd5.myworkdayjobs.com/en-US/careers/job/1", PlatformWorkday},
		{"https://jobs.ashbyhq.com/acme/1", PlatformAshby},
		{"https://acme.com/careers/1", PlatformUnknown},
		{"https://notgreenhouse.io.evil.com/job", PlatformUnknown},
		{"::bad", PlatformUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectPlatform(tt.url))
		})
	}
}

func TestJobSelectors(t *testing.T) {
	content, noise := JobSelectors("https://boards.greenhouse.io/acme/jobs/1")
	assert.Equal(t, ".job__description.body", content[0])
	assert.Contains(t, content, "main")
	assert.Contains(t, noise, "form")
	assert.Contains(t, noise, ".voluntary-self-id")

	content, noise = JobSelectors("https://acme.com/careers")
	assert.Equal(t, ".job-description", content[0])
	assert.NotContains(t, noise, ".voluntary-self-id")
}
