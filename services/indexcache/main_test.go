package indexcache

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/cenkalti/backoff"
	"github.com/stretchr/testify/assert"
)

func newTestCacheService(t *testing.T, download Downloader) *CacheService {
	return &CacheService{
		CacheDir:      t.TempDir(),
		CsiQuirkHosts: []string{"dl.dropboxusercontent.com"},
		Download:      download,
	}
}

func countingDownloader(calls *int) Downloader {
	return func(indexUrl string) (io.ReadCloser, error) {
		*calls++
		return io.NopCloser(strings.NewReader("index-bytes")), nil
	}
}

func TestInitCreatesCacheDirectory(t *testing.T) {
	s := &CacheService{
		CacheDir: filepath.Join(t.TempDir(), "fresh", "pp-cache"),
	}

	s.Init()

	info, statErr := os.Stat(s.CacheDir)
	assert.Nil(t, statErr)
	assert.True(t, info.IsDir())
}

func TestResolveDownloadsOnFirstReference(t *testing.T) {
	calls := 0
	s := newTestCacheService(t, countingDownloader(&calls))

	localDir, err := s.Resolve("https://example.org/tracks/cohort.svcnv.gz.tbi")

	assert.Nil(t, err)
	assert.Equal(t, 1, calls)

	content, readErr := os.ReadFile(filepath.Join(localDir, "cohort.svcnv.gz.tbi"))
	assert.Nil(t, readErr)
	assert.Equal(t, "index-bytes", string(content))
}

func TestResolveIsIdempotent(t *testing.T) {
	calls := 0
	s := newTestCacheService(t, countingDownloader(&calls))

	first, err1 := s.Resolve("https://example.org/tracks/cohort.svcnv.gz.tbi")
	second, err2 := s.Resolve("https://example.org/tracks/cohort.svcnv.gz.tbi")

	assert.Nil(t, err1)
	assert.Nil(t, err2)
	assert.Equal(t, first, second)
	// the cached copy serves the second call
	assert.Equal(t, 1, calls)
}

func TestResolveLayoutMirrorsHostAndPath(t *testing.T) {
	calls := 0
	s := newTestCacheService(t, countingDownloader(&calls))

	localDir, err := s.Resolve("https://example.org/a/b/track.gz.tbi")

	assert.Nil(t, err)
	assert.Equal(t, filepath.Join(s.CacheDir, "example.org", "a", "b"), localDir)
}

func TestCsiQuirkHostStoresTbiAsCsi(t *testing.T) {
	calls := 0
	s := newTestCacheService(t, countingDownloader(&calls))

	localDir, err := s.Resolve("https://dl.dropboxusercontent.com/tracks/track.gz.tbi")

	assert.Nil(t, err)
	_, statErr := os.Stat(filepath.Join(localDir, "track.gz.csi"))
	assert.Nil(t, statErr)
	_, tbiStatErr := os.Stat(filepath.Join(localDir, "track.gz.tbi"))
	assert.True(t, os.IsNotExist(tbiStatErr))
}

func TestFailedDownloadLeavesNoFileBehind(t *testing.T) {
	s := newTestCacheService(t, func(indexUrl string) (io.ReadCloser, error) {
		return nil, backoff.Permanent(errors.New("got a 404 status code downloading index"))
	})

	_, err := s.Resolve("https://example.org/tracks/missing.gz.tbi")
	assert.NotNil(t, err)

	// a later request must be able to retry from scratch
	_, statErr := os.Stat(filepath.Join(s.CacheDir, "example.org", "tracks", "missing.gz.tbi"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestResolveRejectsMalformedUrl(t *testing.T) {
	s := newTestCacheService(t, countingDownloader(new(int)))

	_, err := s.Resolve("not-a-url")
	assert.NotNil(t, err)
}

func TestResolveTrackWithLocalFile(t *testing.T) {
	s := newTestCacheService(t, countingDownloader(new(int)))

	path, workingDir, err := s.ResolveTrack("/data/track.gz", "", "")

	assert.Nil(t, err)
	assert.Equal(t, "/data/track.gz", path)
	assert.Equal(t, "", workingDir)
}

func TestResolveTrackDefaultsIndexUrl(t *testing.T) {
	calls := 0
	var requested string
	s := newTestCacheService(t, func(indexUrl string) (io.ReadCloser, error) {
		calls++
		requested = indexUrl
		return io.NopCloser(strings.NewReader("index-bytes")), nil
	})

	path, workingDir, err := s.ResolveTrack("", "https://example.org/tracks/track.gz", "")

	assert.Nil(t, err)
	assert.Equal(t, "https://example.org/tracks/track.gz", path)
	assert.NotEqual(t, "", workingDir)
	assert.Equal(t, "https://example.org/tracks/track.gz.tbi", requested)
	assert.Equal(t, 1, calls)
}

func TestResolveTrackWithNeitherFileNorUrlFails(t *testing.T) {
	s := newTestCacheService(t, countingDownloader(new(int)))

	_, _, err := s.ResolveTrack("", "", "")
	assert.NotNil(t, err)
}

func TestEvictOlderThanRemovesStaleEntries(t *testing.T) {
	calls := 0
	s := newTestCacheService(t, countingDownloader(&calls))

	_, err := s.Resolve("https://example.org/tracks/track.gz.tbi")
	assert.Nil(t, err)

	// nothing is older than a day yet
	evicted, evictErr := s.EvictOlderThan(24 * time.Hour)
	assert.Nil(t, evictErr)
	assert.Equal(t, 0, evicted)

	// everything is older than zero
	evicted, evictErr = s.EvictOlderThan(0)
	assert.Nil(t, evictErr)
	assert.Equal(t, 1, evicted)
}

func TestStatsCountsCachedFiles(t *testing.T) {
	calls := 0
	s := newTestCacheService(t, countingDownloader(&calls))

	_, err := s.Resolve("https://example.org/tracks/track.gz.tbi")
	assert.Nil(t, err)

	entries, totalBytes := s.Stats()
	assert.Equal(t, 1, entries)
	assert.Equal(t, int64(len("index-bytes")), totalBytes)
}
