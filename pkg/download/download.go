// pkg/download/download.go - HTTP file download with retry and verification.

package download

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/windowsadmins/modman/pkg/logging"
	"github.com/windowsadmins/modman/pkg/retry"
)

const DefaultTimeout = 60 * time.Second

// File downloads url to dest, creating the destination directory as
// needed. Transient failures are retried with exponential backoff; a
// 404 is not retried.
func File(ctx context.Context, client *http.Client, url, dest string) error {
	if url == "" {
		return fmt.Errorf("invalid parameters: url cannot be empty")
	}
	if client == nil {
		client = &http.Client{Timeout: DefaultTimeout}
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return fmt.Errorf("failed to create directory structure: %w", err)
	}

	configRetry := retry.RetryConfig{MaxRetries: 3, InitialInterval: time.Second, Multiplier: 2.0}
	return retry.Retry(configRetry, func() error {
		logging.Info("Starting download", "url", url, "destination", dest)

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return retry.MarkNonRetryable(fmt.Errorf("failed to prepare HTTP request: %w", err))
		}

		resp, err := client.Do(req)
		if err != nil {
			return fmt.Errorf("failed to perform HTTP request: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode == http.StatusNotFound {
			return retry.MarkNonRetryable(fmt.Errorf("file not found (404): %s", url))
		}
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("unexpected HTTP status code: %d", resp.StatusCode)
		}

		out, err := os.Create(dest)
		if err != nil {
			return retry.MarkNonRetryable(fmt.Errorf("failed to open destination file: %w", err))
		}
		defer out.Close()

		if _, err = io.Copy(out, resp.Body); err != nil {
			return fmt.Errorf("failed to write downloaded data: %w", err)
		}

		logging.Debug("File saved", "file", dest)
		return nil
	})
}

// Verify checks if the given file matches the expected sha256 hash.
func Verify(file string, expectedHash string) bool {
	actualHash := calculateHash(file)
	return actualHash != "" && strings.EqualFold(actualHash, expectedHash)
}

func calculateHash(path string) string {
	file, err := os.Open(path)
	if err != nil {
		return ""
	}
	defer file.Close()

	hasher := sha256.New()
	if _, err := io.Copy(hasher, file); err != nil {
		return ""
	}
	return hex.EncodeToString(hasher.Sum(nil))
}
