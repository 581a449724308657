package messaging

import (
	"encoding/json"
	"errors"
	"io"
	"log"

	"github.com/zhouzirui/trade-trigger/internal/metrics"
)

// Reporter prints the outcome of a send to the console.
type Reporter struct {
	logger *log.Logger
}

// NewReporter writes to w using the same flags as the binaries.
func NewReporter(w io.Writer) *Reporter {
	return &Reporter{logger: log.New(w, "[sender] ", log.LstdFlags|log.Lmicroseconds)}
}

// Report describes a send outcome and returns its metrics label.
func (r *Reporter) Report(result *Result, err error) string {
	if err == nil {
		r.logger.Printf("Message created: %d", result.StatusCode)
		r.logger.Print(prettyBody(result))
		return metrics.OutcomeSuccess
	}

	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		r.logger.Printf("HTTP error: %d %s", httpErr.StatusCode, httpErr.Body)
		return metrics.OutcomeHTTPError
	}

	var netErr *NetworkError
	if errors.As(err, &netErr) {
		r.logger.Printf("Network error: %v", netErr.Err)
		return metrics.OutcomeNetworkError
	}

	r.logger.Printf("Unknown error: %v", err)
	return metrics.OutcomeUnknownError
}

func prettyBody(result *Result) string {
	if result.JSON == nil {
		return string(result.Body)
	}
	pretty, err := json.MarshalIndent(result.JSON, "", "  ")
	if err != nil {
		return string(result.Body)
	}
	return string(pretty)
}
