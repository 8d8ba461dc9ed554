package metrics

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
)

const defaultScrapeTimeout = 10 * time.Second

// Scraper fetches and parses one Prometheus text exposition endpoint.
// The HTTP client is built once and reused across scrape calls.
type Scraper struct {
	url    string
	client *http.Client
}

// New creates a Scraper for the given URL. A zero timeout uses the default.
func New(url string, timeout time.Duration) *Scraper {
	if timeout <= 0 {
		timeout = defaultScrapeTimeout
	}
	return &Scraper{
		url:    url,
		client: &http.Client{Timeout: timeout},
	}
}

// Scrape performs an HTTP GET and returns each metric family reduced to the
// sum of its sample values.
func (s *Scraper) Scrape(ctx context.Context) (map[string]float64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("metrics: build request: %w", err)
	}
	req.Header.Set("Accept", string(expfmt.NewFormat(expfmt.TypeTextPlain)))

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("metrics: http get: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("metrics: unexpected status %d", resp.StatusCode)
	}

	mfs, err := parseMetrics(resp.Body)
	if err != nil {
		return nil, err
	}

	out := make(map[string]float64, len(mfs))
	for name, mf := range mfs {
		out[name] = sumFamily(mf)
	}
	return out, nil
}

// parseMetrics decodes a Prometheus text exposition from r into metric
// families. A partial result with a non-fatal parse warning is still
// returned successfully.
func parseMetrics(r io.Reader) (map[string]*dto.MetricFamily, error) {
	var parser expfmt.TextParser
	mfs, err := parser.TextToMetricFamilies(r)
	if err != nil && len(mfs) == 0 {
		return nil, fmt.Errorf("metrics: parse prometheus text: %w", err)
	}
	// Non-empty result with a non-nil err means partial parse (trailing
	// lines, format warnings). Treat as success.
	return mfs, nil
}

// sumFamily adds up all counter, gauge, or untyped values in a MetricFamily.
// Returns 0 if mf is nil.
func sumFamily(mf *dto.MetricFamily) float64 {
	if mf == nil {
		return 0
	}
	var total float64
	for _, m := range mf.GetMetric() {
		switch {
		case m.Counter != nil:
			total += m.Counter.GetValue()
		case m.Gauge != nil:
			total += m.Gauge.GetValue()
		case m.Untyped != nil:
			total += m.Untyped.GetValue()
		}
	}
	return total
}
