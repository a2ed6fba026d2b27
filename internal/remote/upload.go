// Copyright (c) 2026 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package remote

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// ReleaseUploader stages a payload as an asset on a temporary release.
// The release (and its tag) becomes a remote side effect owned by the run
// until the cleanup coordinator deletes it.
type ReleaseUploader struct {
	Releases ReleaseAPI
	Log      zerolog.Logger
	Observer Observer
}

// Upload creates a tag and release named after the run's payload id and
// attaches the file. On success the tag is returned and must be passed to
// cleanup at run end. On failure the half-created tag and release are rolled
// back and an empty tag is returned.
func (u *ReleaseUploader) Upload(ctx context.Context, run *JobRun, path string) (string, error) {
	tag := "temp-upload-" + run.PayloadID
	u.Observer.Report("upload", "staging release "+tag)
	u.Log.Info().Str("tag", tag).Str("path", path).Msg("uploading via release asset")

	if err := u.Releases.PublishTag(ctx, tag); err != nil {
		u.Releases.RollbackTag(ctx, tag)
		return "", fmt.Errorf("%w: publish tag %s: %v", ErrUploadFailed, tag, err)
	}
	if err := u.Releases.CreateRelease(ctx, tag, "Temp upload "+tag); err != nil {
		u.Releases.RollbackTag(ctx, tag)
		return "", fmt.Errorf("%w: create release %s: %v", ErrUploadFailed, tag, err)
	}
	if err := u.Releases.UploadAsset(ctx, tag, path); err != nil {
		// The release exists at this point; tear both halves down.
		if derr := u.Releases.DeleteRelease(ctx, tag); derr != nil {
			u.Log.Warn().Err(derr).Str("tag", tag).Msg("rollback: release deletion failed")
		}
		u.Releases.RollbackTag(ctx, tag)
		return "", fmt.Errorf("%w: upload asset to %s: %v", ErrUploadFailed, tag, err)
	}

	u.Log.Info().Str("tag", tag).Msg("payload staged")
	return tag, nil
}

// DirectUploader pushes a payload to a generic temporary file host via a
// streaming multipart POST and returns the retrieval URL. It creates no
// remote object besides the uploaded blob, so there is nothing to clean up.
type DirectUploader struct {
	Endpoint string
	Client   *http.Client
	Log      zerolog.Logger
	Observer Observer
}

func (u *DirectUploader) httpClient() *http.Client {
	if u.Client != nil {
		return u.Client
	}
	// No overall timeout: multi-gigabyte uploads take as long as they take.
	return &http.Client{Transport: &http.Transport{
		ResponseHeaderTimeout: 2 * time.Minute,
	}}
}

// Upload streams the file through an io.Pipe so the payload is never
// buffered in memory.
func (u *DirectUploader) Upload(ctx context.Context, path string) (string, error) {
	u.Observer.Report("upload", "direct upload to "+u.Endpoint)
	u.Log.Info().Str("path", path).Str("endpoint", u.Endpoint).Msg("uploading via direct link")

	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("%w: open payload: %v", ErrUploadFailed, err)
	}
	defer f.Close() //nolint:errcheck

	pr, pw := io.Pipe()
	form := multipart.NewWriter(pw)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer pw.Close() //nolint:errcheck
		part, err := form.CreateFormFile("file", filepath.Base(path))
		if err != nil {
			return err
		}
		if _, err := io.Copy(part, f); err != nil {
			return err
		}
		return form.Close()
	})

	var body string
	g.Go(func() error {
		req, err := http.NewRequestWithContext(gctx, http.MethodPost, u.Endpoint, pr)
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", form.FormDataContentType())

		res, err := u.httpClient().Do(req)
		if err != nil {
			// Unblock the writer goroutine.
			_ = pr.CloseWithError(err)
			return err
		}
		defer res.Body.Close() //nolint:errcheck

		data, err := io.ReadAll(io.LimitReader(res.Body, 16<<10))
		if err != nil {
			return err
		}
		if res.StatusCode != http.StatusOK {
			return fmt.Errorf("endpoint returned %s", res.Status)
		}
		body = strings.TrimSpace(string(data))
		return nil
	})

	if err := g.Wait(); err != nil {
		return "", fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}
	if !strings.HasPrefix(body, "http") {
		return "", fmt.Errorf("%w: endpoint did not return a URL (got %q)", ErrUploadFailed, truncate(body, 120))
	}

	u.Log.Info().Str("url", body).Msg("payload uploaded")
	return body, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
