package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const storedFeed = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>Riggs Autoposts</title>
    <link>https://4x4trailrunners.com/</link>
    <description>Automated feed from Riggs</description>
    <lastBuildDate>Sun, 01 Jun 2025 12:00:00 +0000</lastBuildDate>
    <item>
      <title>Trail Report</title>
      <link>https://example.com/a</link>
      <description>desc</description>
      <pubDate>Sun, 01 Jun 2025 12:00:00 +0000</pubDate>
      <guid isPermaLink="true">https://example.com/a</guid>
    </item>
  </channel>
</rss>
`

func setup(t *testing.T) (string, func(args ...string) (int, string, string)) {
	t.Helper()
	chdir(t, t.TempDir())
	feedPath := filepath.Join(t.TempDir(), "feed.xml")
	require.NoError(t, os.WriteFile(feedPath, []byte(storedFeed), 0644))

	return feedPath, func(args ...string) (int, string, string) {
		var stdout, stderr bytes.Buffer
		code := run(append([]string{"feedexport"}, args...), &stdout, &stderr, func() (string, error) {
			return feedPath, nil
		})
		return code, stdout.String(), stderr.String()
	}
}

func TestRun_AtomToStdout(t *testing.T) {
	_, exec := setup(t)

	code, stdout, stderr := exec("--format", "atom")

	require.Equal(t, 0, code, stderr)
	assert.Contains(t, stdout, "http://www.w3.org/2005/Atom")
	assert.Contains(t, stdout, "Trail Report")
}

func TestRun_JSONToFile(t *testing.T) {
	_, exec := setup(t)
	out := filepath.Join(t.TempDir(), "feed.json")

	code, stdout, stderr := exec("--format", "json", "--out", out)

	require.Equal(t, 0, code, stderr)
	assert.Empty(t, stdout)
	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), "https://example.com/a")
}

func TestRun_DoesNotModifyFeed(t *testing.T) {
	feedPath, exec := setup(t)

	code, _, stderr := exec("--format", "rss")

	require.Equal(t, 0, code, stderr)
	data, err := os.ReadFile(feedPath)
	require.NoError(t, err)
	assert.Equal(t, storedFeed, string(data))
}

func TestRun_UnknownFormat(t *testing.T) {
	_, exec := setup(t)

	code, stdout, stderr := exec("--format", "opml")

	assert.Equal(t, 1, code)
	assert.Empty(t, stdout)
	assert.Contains(t, stderr, "unsupported export format")
}

// chdir changes the working directory for the duration of the test and
// restores it on cleanup (equivalent of testing.T.Chdir, Go 1.24+).
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(prev); err != nil {
			t.Fatal(err)
		}
	})
}
