package indexcache

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"proteinpaint/api/models"
	"proteinpaint/api/models/apperror"

	"github.com/cenkalti/backoff"
	"github.com/go-co-op/gocron"
	"golang.org/x/sync/singleflight"
)

// Downloader fetches a URL body; swapped out in tests.
type Downloader func(indexUrl string) (io.ReadCloser, error)

// CacheService mirrors remote track index files (.tbi/.csi/.bai) onto
// local disk. The cache directory doubles as the working directory for
// tabix subprocesses querying URL-based tracks, which is how tabix
// finds the index without re-downloading it per query.
type CacheService struct {
	Initialized bool
	CacheDir    string

	// hosts whose .tbi indexes must be stored with a .csi extension
	CsiQuirkHosts []string

	JanitorEnabled bool
	JanitorMaxAge  time.Duration

	Download Downloader

	group     singleflight.Group
	scheduler *gocron.Scheduler
}

func NewCacheService(cfg *models.Config) *CacheService {
	s := &CacheService{
		Initialized:    false,
		CacheDir:       cfg.Cache.Dir,
		CsiQuirkHosts:  strings.Split(cfg.Cache.CsiQuirkHostsCommaSep, ","),
		JanitorEnabled: cfg.Cache.JanitorEnabled,
		JanitorMaxAge:  time.Duration(cfg.Cache.JanitorMaxAgeDays) * 24 * time.Hour,
		Download:       httpDownload,
	}

	s.Init()

	return s
}

func (s *CacheService) Init() {
	// safeguard to prevent multiple initilizations
	if !s.Initialized {
		if mkdirErr := os.MkdirAll(s.CacheDir, 0755); mkdirErr != nil {
			fmt.Printf("[%s] - Cannot create cache directory %s: %v\n", time.Now(), s.CacheDir, mkdirErr)
		}

		if s.JanitorEnabled {
			// spin up a periodic janitor evicting cache entries that
			// have not been touched within the configured max age
			s.scheduler = gocron.NewScheduler(time.UTC)
			s.scheduler.Every(1).Day().At("04:00").Do(func() {
				fmt.Printf("[%s] - Running index cache janitor..\n", time.Now())
				if evicted, err := s.EvictOlderThan(s.JanitorMaxAge); err != nil {
					fmt.Printf("[%s] - Index cache janitor error: %v\n", time.Now(), err)
				} else if evicted > 0 {
					fmt.Printf("[%s] - Index cache janitor evicted %d file(s)\n", time.Now(), evicted)
				}
			})
			s.scheduler.StartAsync()
		}

		s.Initialized = true
	}
}

// Resolve maps an index URL to the local directory holding its
// downloaded copy, downloading on first reference. Concurrent calls
// for the same URL share a single in-flight download.
func (s *CacheService) Resolve(indexUrl string) (string, error) {
	localDir, indexFile, pathErr := s.localPath(indexUrl)
	if pathErr != nil {
		return "", pathErr
	}

	fullPath := filepath.Join(localDir, indexFile)
	if _, statErr := os.Stat(fullPath); statErr == nil {
		// already cached, no network access
		return localDir, nil
	}

	// at most one download per URL; latecomers await the first
	_, downloadErr, _ := s.group.Do(indexUrl, func() (interface{}, error) {
		// re-check under the flight lock
		if _, statErr := os.Stat(fullPath); statErr == nil {
			return nil, nil
		}
		return nil, s.download(indexUrl, localDir, indexFile)
	})
	if downloadErr != nil {
		return "", downloadErr
	}

	return localDir, nil
}

// ResolveTrack maps a track reference to the (path, workingDir) pair
// handed to the executor: local files run from the process working
// directory, URL tracks run from their index's cache directory so
// tabix finds the index on disk.
func (s *CacheService) ResolveTrack(file string, trackUrl string, indexUrl string) (string, string, error) {
	if file != "" {
		return file, "", nil
	}
	if trackUrl == "" {
		return "", "", apperror.New(apperror.ConfigError, "track has neither file nor url")
	}
	if indexUrl == "" {
		indexUrl = trackUrl + ".tbi"
	}
	workingDir, resolveErr := s.Resolve(indexUrl)
	if resolveErr != nil {
		return "", "", resolveErr
	}
	return trackUrl, workingDir, nil
}

// localPath derives the deterministic cache location of a URL:
// ${cachedir}/${host}/${path dirs...}/${index file}.
func (s *CacheService) localPath(indexUrl string) (string, string, error) {
	parsed, parseErr := url.Parse(indexUrl)
	if parseErr != nil || parsed.Host == "" || parsed.Path == "" {
		return "", "", apperror.Newf(apperror.CacheError, "invalid index url %s", indexUrl)
	}

	pathDir, indexFile := path.Split(parsed.Path)

	if strings.HasSuffix(indexFile, ".tbi") && s.hostHasCsiQuirk(parsed.Host) {
		// the upstream host serves .tbi content that tabix only
		// accepts under a .csi name
		indexFile = strings.TrimSuffix(indexFile, ".tbi") + ".csi"
	}

	segments := append([]string{s.CacheDir, parsed.Host}, strings.Split(strings.Trim(pathDir, "/"), "/")...)
	return filepath.Join(segments...), indexFile, nil
}

func (s *CacheService) hostHasCsiQuirk(host string) bool {
	for _, quirkHost := range s.CsiQuirkHosts {
		if strings.EqualFold(strings.TrimSpace(quirkHost), host) {
			return true
		}
	}
	return false
}

func (s *CacheService) download(indexUrl string, localDir string, indexFile string) error {
	if mkdirErr := os.MkdirAll(localDir, 0755); mkdirErr != nil {
		return apperror.Wrap(apperror.CacheError, fmt.Sprintf("cannot create cache directory %s", localDir), mkdirErr)
	}

	fullPath := filepath.Join(localDir, indexFile)

	operation := func() error {
		body, downloadErr := s.Download(indexUrl)
		if downloadErr != nil {
			return downloadErr
		}
		defer body.Close()

		// write to a partial file first so a failed download never
		// leaves a truncated index behind
		partialPath := fullPath + ".part"
		out, createErr := os.Create(partialPath)
		if createErr != nil {
			return backoff.Permanent(apperror.Wrap(apperror.CacheError, fmt.Sprintf("cannot write index cache file for %s", indexUrl), createErr))
		}

		if _, copyErr := io.Copy(out, body); copyErr != nil {
			out.Close()
			os.Remove(partialPath)
			return copyErr
		}
		if closeErr := out.Close(); closeErr != nil {
			os.Remove(partialPath)
			return closeErr
		}

		return os.Rename(partialPath, fullPath)
	}

	retryPolicy := backoff.NewExponentialBackOff()
	retryPolicy.MaxElapsedTime = 30 * time.Second

	if retryErr := backoff.Retry(operation, retryPolicy); retryErr != nil {
		// a later request for the same URL must be able to retry
		os.Remove(fullPath)

		var appErr *apperror.Error
		if errors.As(retryErr, &appErr) {
			return appErr
		}
		return apperror.Wrap(apperror.CacheError, fmt.Sprintf("download failed for %s", indexUrl), retryErr)
	}

	fmt.Printf("[%s] - Cached index %s under %s\n", time.Now(), indexUrl, localDir)
	return nil
}

// Stats walks the cache directory for operational visibility.
func (s *CacheService) Stats() (entries int, totalBytes int64) {
	filepath.Walk(s.CacheDir, func(_ string, info os.FileInfo, err error) error {
		if err != nil || info == nil || info.IsDir() {
			return nil
		}
		entries++
		totalBytes += info.Size()
		return nil
	})
	return entries, totalBytes
}

// EvictOlderThan removes cached files whose modification time is
// beyond the given age, pruning directories left empty.
func (s *CacheService) EvictOlderThan(maxAge time.Duration) (int, error) {
	cutoff := time.Now().Add(-maxAge)

	evicted := 0
	walkErr := filepath.Walk(s.CacheDir, func(p string, info os.FileInfo, err error) error {
		if err != nil || info == nil || info.IsDir() {
			return nil
		}
		if info.ModTime().Before(cutoff) {
			if removeErr := os.Remove(p); removeErr == nil {
				evicted++
			}
		}
		return nil
	})
	return evicted, walkErr
}

func httpDownload(indexUrl string) (io.ReadCloser, error) {
	resp, getErr := http.Get(indexUrl)
	if getErr != nil {
		return nil, getErr
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		if resp.StatusCode == http.StatusNotFound {
			// no point retrying a 404
			return nil, backoff.Permanent(fmt.Errorf("got a %d status code downloading index", resp.StatusCode))
		}
		return nil, fmt.Errorf("got a %d status code downloading index", resp.StatusCode)
	}
	return resp.Body, nil
}
