// Package fetch streams remote model artifacts to disk. Transfers land in a
// uniquely named temp file and are renamed into place only on full success,
// so a partial download never appears at the final path. Interrupted
// transfers are parked next to the destination and resumed with a Range
// request when the source supports it.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
)

const (
	copyBufSize = 32 * 1024
	userAgent   = "modelfetch"
)

// Client downloads files with capped exponential backoff on transient
// failures. Safe for concurrent use by multiple workers as long as each
// destination path is owned by one worker at a time.
type Client struct {
	httpClient *http.Client
	policy     RetryPolicy
	log        zerolog.Logger
}

// NewClient builds a Client. Zero policy fields get defaults.
func NewClient(log zerolog.Logger, policy RetryPolicy) *Client {
	return &Client{
		httpClient: &http.Client{},
		policy:     policy.withDefaults(),
		log:        log,
	}
}

// Fetch downloads src into destPath, enforcing expectedSize as a hard
// ceiling on received bytes. It returns the number of bytes actually
// transferred from the network across all attempts, which is zero when an
// existing parked partial already held the full content.
func (c *Client) Fetch(ctx context.Context, src, destPath string, expectedSize int64) (int64, error) {
	if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
		return 0, &PermanentError{URL: src, Err: err}
	}

	inflightDownloads.Inc()
	defer inflightDownloads.Dec()

	var total int64
	for attempt := 1; ; attempt++ {
		n, err := c.attempt(ctx, src, destPath, expectedSize)
		total += n
		if err == nil {
			attemptsTotal.WithLabelValues("ok").Inc()
			return total, nil
		}
		if ctx.Err() != nil {
			return total, err
		}
		if IsPermanent(err) {
			attemptsTotal.WithLabelValues("permanent").Inc()
			return total, err
		}
		attemptsTotal.WithLabelValues("transient").Inc()
		if attempt >= c.policy.MaxAttempts {
			return total, err
		}
		delay := c.policy.delay(attempt + 1)
		c.log.Warn().Str("url", src).Int("attempt", attempt).Dur("backoff", delay).Err(err).
			Msg("fetch attempt failed, retrying")
		retriesTotal.Inc()
		if serr := sleep(ctx, delay); serr != nil {
			return total, serr
		}
	}
}

// attempt performs one transfer. On transient failure the bytes received so
// far are parked at <dest>.partial for the next attempt to adopt.
func (c *Client) attempt(ctx context.Context, src, destPath string, expectedSize int64) (int64, error) {
	dir, base := filepath.Split(destPath)
	tmpf, err := os.CreateTemp(dir, base+".tmp-*")
	if err != nil {
		return 0, &PermanentError{URL: src, Err: err}
	}
	tmpPath := tmpf.Name()
	tmpf.Close()

	// Adopt a parked partial from an earlier attempt or run.
	partial := destPath + ".partial"
	if info, serr := os.Stat(partial); serr == nil && info.Size() > 0 && info.Size() <= expectedSize {
		os.Remove(tmpPath)
		if rerr := os.Rename(partial, tmpPath); rerr != nil {
			return 0, &PermanentError{URL: src, Err: rerr}
		}
	} else if serr == nil {
		// empty or oversized partial is useless
		os.Remove(partial)
	}

	f, err := os.OpenFile(tmpPath, os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return 0, &PermanentError{URL: src, Err: err}
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		os.Remove(tmpPath)
		return 0, &PermanentError{URL: src, Err: err}
	}
	offset := info.Size()

	// A parked partial may already hold the whole file.
	if expectedSize > 0 && offset == expectedSize {
		f.Close()
		if err := os.Rename(tmpPath, destPath); err != nil {
			return 0, &PermanentError{URL: src, Err: err}
		}
		return 0, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
	if err != nil {
		f.Close()
		os.Remove(tmpPath)
		return 0, &PermanentError{URL: src, Err: err}
	}
	req.Header.Set("User-Agent", userAgent)
	if offset > 0 {
		req.Header.Set("Range", fmt.Sprintf("bytes=%d-", offset))
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.park(f, tmpPath, partial)
		return 0, classify(src, err)
	}
	defer resp.Body.Close()

	written := offset
	switch {
	case resp.StatusCode == http.StatusOK:
		// full body; if we asked for a range the server ignored it
		if offset > 0 {
			if terr := f.Truncate(0); terr != nil {
				f.Close()
				os.Remove(tmpPath)
				return 0, &PermanentError{URL: src, Err: terr}
			}
			written = 0
		}
	case resp.StatusCode == http.StatusPartialContent:
		// resuming at offset
	case resp.StatusCode == http.StatusRequestedRangeNotSatisfiable:
		// stale partial; drop it and restart clean
		f.Close()
		os.Remove(tmpPath)
		return 0, &TransientError{URL: src, Err: fmt.Errorf("range at offset %d not satisfiable", offset)}
	case retryableStatus(resp.StatusCode):
		c.park(f, tmpPath, partial)
		return 0, &TransientError{URL: src, Err: fmt.Errorf("HTTP %d", resp.StatusCode)}
	default:
		f.Close()
		os.Remove(tmpPath)
		return 0, &PermanentError{URL: src, Status: resp.StatusCode}
	}

	var fetched int64
	buf := make([]byte, copyBufSize)
	for {
		n, rerr := resp.Body.Read(buf)
		if n > 0 {
			if _, werr := f.Write(buf[:n]); werr != nil {
				f.Close()
				os.Remove(tmpPath)
				return fetched, &PermanentError{URL: src, Err: werr}
			}
			written += int64(n)
			fetched += int64(n)
			downloadBytesTotal.Add(float64(n))
			if written > expectedSize {
				// source is serving more than the manifest declares
				f.Close()
				os.Remove(tmpPath)
				os.Remove(partial)
				return fetched, &PermanentError{URL: src, Err: fmt.Errorf("received %d bytes, manifest declares %d", written, expectedSize)}
			}
		}
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			c.park(f, tmpPath, partial)
			return fetched, classify(src, rerr)
		}
	}

	if written != expectedSize {
		// clean EOF short of the declared length: resumable
		c.park(f, tmpPath, partial)
		return fetched, &TransientError{URL: src, Err: fmt.Errorf("short transfer: got %d of %d bytes", written, expectedSize)}
	}

	if err := f.Close(); err != nil {
		os.Remove(tmpPath)
		return fetched, &PermanentError{URL: src, Err: err}
	}
	if err := os.Rename(tmpPath, destPath); err != nil {
		os.Remove(tmpPath)
		return fetched, &PermanentError{URL: src, Err: err}
	}
	c.log.Debug().Str("url", src).Int64("bytes", fetched).Int64("resumed_at", offset).
		Dur("dur", time.Since(start)).Msg("fetch complete")
	return fetched, nil
}

// park preserves received bytes for the next attempt, or discards an empty
// temp file.
func (c *Client) park(f *os.File, tmpPath, partialPath string) {
	f.Close()
	if info, err := os.Stat(tmpPath); err == nil && info.Size() > 0 {
		if os.Rename(tmpPath, partialPath) == nil {
			return
		}
	}
	os.Remove(tmpPath)
}
