package preflight

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sys/unix"

	"linkflow/internal/config"
)

// CheckCredentials verifies the API token and organization are configured.
func CheckCredentials(cfg *config.Config) Result {
	const name = "API credentials"
	if strings.TrimSpace(cfg.API.Token) == "" {
		return Result{Name: name, Detail: "api token missing (set api.token or UNIQODE_TOKEN)"}
	}
	if cfg.API.Organization <= 0 {
		return Result{Name: name, Detail: "organization id missing (set api.organization or UNIQODE_ORG_ID)"}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("organization %d (%s)", cfg.API.Organization, cfg.API.Environment)}
}

// CheckPDFFile verifies the PDF exists, is a regular file, and is readable.
func CheckPDFFile(path string) Result {
	const name = "PDF file"
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.Mode().IsRegular() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a regular file)", path)}
	}
	if err := unix.Access(path, unix.R_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: not readable: %v)", path, err)}
	}
	if !strings.EqualFold(filepath.Ext(path), ".pdf") {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: not a .pdf file)", path)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (%d bytes)", path, info.Size())}
}

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckAPI verifies that the vendor API is reachable and the token is valid.
// Single attempt, no retries.
func CheckAPI(ctx context.Context, cfg *config.Config) Result {
	const name = "Vendor API"

	base := cfg.APIBaseURL()
	checkCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	endpoint := base + "/linkpage/?" + url.Values{
		"organization": []string{strconv.FormatInt(cfg.API.Organization, 10)},
		"limit":        []string{"1"},
	}.Encode()

	client := &http.Client{Timeout: 10 * time.Second}
	req, err := http.NewRequestWithContext(checkCtx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("probe failed (%v)", err)}
	}
	req.Header.Set("Authorization", "Token "+strings.TrimSpace(cfg.API.Token))

	resp, err := client.Do(req)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("unreachable (%v)", err)}
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s reachable", base)}
	case http.StatusUnauthorized, http.StatusForbidden:
		return Result{Name: name, Detail: "auth failed (invalid token or organization)"}
	default:
		return Result{Name: name, Detail: fmt.Sprintf("probe failed (%d)", resp.StatusCode)}
	}
}
