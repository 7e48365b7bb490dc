// Package adapters implements the ten Source Adapters, one file per site,
// ported in semantics from the original scraping sources.
package adapters

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/ternarybob/fxrates/internal/fxrates"
	"github.com/ternarybob/fxrates/internal/httpclient"
)

// parseRate parses a rate string after stripping thousands separators.
func parseRate(raw string) (float64, error) {
	cleaned := strings.ReplaceAll(strings.TrimSpace(raw), ",", "")
	return strconv.ParseFloat(cleaned, 64)
}

var sharedClient = httpclient.NewDefaultHTTPClient(10 * time.Second)

// uaHeader returns the User-Agent to send with outbound requests. Falls
// back to a static string if the rotator was never initialized (e.g. in a
// unit test exercising Extract without startup wiring).
func uaHeader() string {
	rotator, err := fxrates.GetUserAgentRotator("")
	if err != nil {
		return "Mozilla/5.0 (compatible; fxrates/1.0)"
	}
	return rotator.Random()
}

// doGet performs a GET request with the shared client, classifying failures
// into the Source Adapter error taxonomy.
func doGet(ctx context.Context, url, source string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &fxrates.NetworkError{Source: source, Err: err}
	}

	req.Header.Set("User-Agent", uaHeader())
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("Accept-Encoding", "gzip, deflate")
	req.Header.Set("Connection", "keep-alive")

	resp, err := sharedClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, &fxrates.Timeout{Source: source}
		}
		return nil, &fxrates.NetworkError{Source: source, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &fxrates.HttpError{Source: source, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &fxrates.NetworkError{Source: source, Err: err}
	}

	return body, nil
}
