package version

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"time"
)

// DefaultURL points at the version file of the main branch.
const DefaultURL = "https://raw.githubusercontent.com/clef-project/clef/main/internal/version/version.go"

const checkTimeout = 5 * time.Second

var versionPattern = regexp.MustCompile(`VERSION\s*=\s*"v(\d+\.\d+\.\d+)"`)

// CheckVersion fetches the version file at url. It reports whether the
// running binary is current and, if not, the newer version.
func CheckVersion(ctx context.Context, client *http.Client, url string) (bool, string, error) {
	if client == nil {
		client = http.DefaultClient
	}
	ctx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return true, "", err
	}
	res, err := client.Do(req)
	if err != nil {
		return true, "", fmt.Errorf("fetch version: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return true, "", fmt.Errorf("fetch version: %s", res.Status)
	}
	body, err := io.ReadAll(io.LimitReader(res.Body, 64<<10))
	if err != nil {
		return true, "", fmt.Errorf("read version: %w", err)
	}

	newVersion := extractVersion(string(body))
	if newVersion == "" {
		return true, "", fmt.Errorf("no version found at %s", url)
	}
	if VERSION != newVersion {
		return false, newVersion, nil
	}
	return true, "", nil
}

func extractVersion(input string) string {
	matches := versionPattern.FindStringSubmatch(input)
	if len(matches) < 2 {
		return ""
	}
	return "v" + matches[1]
}
