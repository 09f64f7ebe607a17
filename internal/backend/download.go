package backend

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/ulikunitz/xz"
	"go.uber.org/zap"
)

const userAgent = "condasetup/1.0"

// DownloadInstaller fetches downloadURL into dest. When checksum is non-empty
// the SHA-256 of the received bytes must match it. URLs ending in .xz are
// decompressed on the fly so dest always holds the runnable script.
func (a *Adapter) DownloadInstaller(ctx context.Context, downloadURL, dest, checksum string) error {
	if err := a.downloadArtifact(ctx, downloadURL, dest, checksum); err != nil {
		return &Error{Op: "download", Detail: downloadURL, Err: err}
	}
	a.log.Info("installer downloaded", zap.String("url", downloadURL), zap.String("dest", dest))
	return nil
}

func (a *Adapter) downloadArtifact(ctx context.Context, downloadURL, dest, checksum string) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("prepare download destination: %w", err)
	}

	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, downloadURL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := a.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("unexpected status %s", resp.Status)
	}

	tmpFile, err := os.CreateTemp(filepath.Dir(dest), "download-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() { _ = os.Remove(tmpPath) }()

	hasher := sha256.New()
	tee := io.TeeReader(resp.Body, hasher)
	body := tee
	if isXZ(downloadURL) {
		xzReader, err := xz.NewReader(tee)
		if err != nil {
			tmpFile.Close()
			return fmt.Errorf("open xz stream: %w", err)
		}
		body = xzReader
	}

	if _, err := io.Copy(tmpFile, body); err != nil {
		tmpFile.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	// trailing bytes after the xz stream still count toward the checksum
	if _, err := io.Copy(io.Discard, tee); err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if checksum != "" {
		sum := hex.EncodeToString(hasher.Sum(nil))
		if !strings.EqualFold(sum, checksum) {
			return fmt.Errorf("%w: got %s", ErrChecksumMismatch, sum)
		}
	}

	if err := os.Chmod(tmpPath, 0o755); err != nil {
		return fmt.Errorf("mark executable: %w", err)
	}
	if err := os.Rename(tmpPath, dest); err != nil {
		return fmt.Errorf("finalize download: %w", err)
	}
	return nil
}

func isXZ(downloadURL string) bool {
	p := downloadURL
	if parsed, err := url.Parse(downloadURL); err == nil {
		p = parsed.Path
	}
	return strings.HasSuffix(strings.ToLower(p), ".xz")
}
