package timetable

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

// requiredFiles must be present in every timetable archive.
var requiredFiles = []string{"lines.csv", "stops.csv", "departures.csv"}

// Archive is a downloaded timetable zip together with the validators the
// server sent for it.
type Archive struct {
	Path         string
	LastModified string
	ETag         string
}

// Remove deletes the downloaded file.
func (a *Archive) Remove() error {
	return os.Remove(a.Path)
}

// Upstream reports whether the remote timetable differs from the stored one.
type Upstream struct {
	Changed      bool
	LastModified string
	ETag         string
}

// Downloader fetches the timetable archive from a URL into a working directory.
type Downloader struct {
	client *http.Client
	url    string
	dir    string
	logger *slog.Logger
}

// NewDownloader creates a Downloader for url that stores archives under dir.
func NewDownloader(url, dir string, logger *slog.Logger) *Downloader {
	return &Downloader{
		client: &http.Client{Timeout: 5 * time.Minute},
		url:    url,
		dir:    dir,
		logger: logger,
	}
}

// Check asks the server whether the archive changed since the stored
// validators, using a conditional HEAD request.
func (d *Downloader) Check(ctx context.Context, lastModified, etag string) (*Upstream, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, d.url, nil)
	if err != nil {
		return nil, fmt.Errorf("timetable check: %w", err)
	}
	if lastModified != "" {
		req.Header.Set("If-Modified-Since", lastModified)
	}
	if etag != "" {
		req.Header.Set("If-None-Match", etag)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("timetable check: %w", err)
	}
	resp.Body.Close()

	up := &Upstream{
		LastModified: resp.Header.Get("Last-Modified"),
		ETag:         resp.Header.Get("ETag"),
	}
	switch {
	case resp.StatusCode == http.StatusNotModified:
	case etag != "" && up.ETag == etag:
		// Some servers ignore If-None-Match on HEAD but still send the tag.
	default:
		up.Changed = true
	}
	d.logger.Info("timetable checked", "status", resp.StatusCode, "changed", up.Changed)
	return up, nil
}

// Download fetches the archive and verifies it holds the required CSV files.
// The caller removes the archive when done.
func (d *Downloader) Download(ctx context.Context) (*Archive, error) {
	if err := os.MkdirAll(d.dir, 0o755); err != nil {
		return nil, fmt.Errorf("timetable dir: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.url, nil)
	if err != nil {
		return nil, fmt.Errorf("timetable download: %w", err)
	}

	d.logger.Info("downloading timetable", "url", d.url)
	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("timetable download: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("timetable download: unexpected status %d", resp.StatusCode)
	}

	f, err := os.CreateTemp(d.dir, "timetable-*.zip")
	if err != nil {
		return nil, fmt.Errorf("timetable temp file: %w", err)
	}
	a := &Archive{
		Path:         f.Name(),
		LastModified: resp.Header.Get("Last-Modified"),
		ETag:         resp.Header.Get("ETag"),
	}

	written, err := io.Copy(f, resp.Body)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err == nil {
		err = verifyArchive(a.Path)
	}
	if err != nil {
		a.Remove()
		return nil, fmt.Errorf("timetable download: %w", err)
	}

	d.logger.Info("timetable downloaded", "file", filepath.Base(a.Path), "size_kb", written/1024)
	return a, nil
}

// verifyArchive checks that path is a zip containing every required file.
func verifyArchive(path string) error {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return fmt.Errorf("open archive: %w", err)
	}
	defer zr.Close()

	have := make(map[string]bool, len(zr.File))
	for _, f := range zr.File {
		have[f.Name] = true
	}
	for _, name := range requiredFiles {
		if !have[name] {
			return fmt.Errorf("archive is missing %s", name)
		}
	}
	return nil
}
