package ingestion

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serve(t *testing.T, contentType, body string, status int) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", contentType)
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestFromURL_HTML(t *testing.T) {
	server := serve(t, "text/html", `<!DOCTYPE html><html><body>
		<nav>Jobs | About</nav>
		<div class="job-description">
			<h1>Senior Backend Engineer</h1>
			<ul><li>5+ years Python</li><li>Led a team</li></ul>
		</div>
		<form class="application-form">Upload resume</form>
	</body></html>`, http.StatusOK)

	doc, err := FromURL(context.Background(), server.URL, URLOptions{})
	require.NoError(t, err)
	assert.Equal(t, "Senior Backend Engineer\n- 5+ years Python\n- Led a team", doc.Text)
	assert.Equal(t, "unknown", doc.Platform)
	assert.Equal(t, server.URL, doc.Source)
}

func TestFromURL_PlainText(t *testing.T) {
	server := serve(t, "text/plain", "Staff SRE\n\n\n\nOn-call experience", http.StatusOK)

	doc, err := FromURL(context.Background(), server.URL, URLOptions{})
	require.NoError(t, err)
	assert.Equal(t, "Staff SRE\n\nOn-call experience", doc.Text)
}

func TestFromURL_HTTPError(t *testing.T) {
	server := serve(t, "text/html", "gone", http.StatusGone)

	_, err := FromURL(context.Background(), server.URL, URLOptions{})
	assert.True(t, errors.Is(err, ErrFetchFailed))
	assert.Contains(t, err.Error(), "410")
}

func TestFromURL_InvalidURL(t *testing.T) {
	_, err := FromURL(context.Background(), "not a url", URLOptions{})
	assert.True(t, errors.Is(err, ErrFetchFailed))
}

func TestFromURL_BrowserFallback(t *testing.T) {
	server := serve(t, "text/html", `<html><body><div id="root">Loading...</div></body></html>`, http.StatusOK)
	long := strings.Repeat("Own the ingestion pipeline end to end. ", 20)

	rendered := false
	doc, err := FromURL(context.Background(), server.URL, URLOptions{
		UseBrowser: true,
		render: func(_ context.Context, _ string) (string, error) {
			rendered = true
			return `<html><body><main><p>` + long + `</p></main></body></html>`, nil
		},
	})
	require.NoError(t, err)
	assert.True(t, rendered)
	assert.Contains(t, doc.Text, "Own the ingestion pipeline")
}

func TestFromURL_BrowserFailureKeepsHTTPText(t *testing.T) {
	server := serve(t, "text/html", `<html><body><main>Short posting</main></body></html>`, http.StatusOK)

	doc, err := FromURL(context.Background(), server.URL, URLOptions{
		UseBrowser: true,
		render: func(_ context.Context, _ string) (string, error) {
			return "", errors.New("chrome not installed")
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "Short posting", doc.Text)
}

func TestFromURL_EmptyPosting(t *testing.T) {
	server := serve(t, "text/html", `<html><body><script>render()</script></body></html>`, http.StatusOK)

	_, err := FromURL(context.Background(), server.URL, URLOptions{})
	assert.True(t, errors.Is(err, ErrEmpty))
}
