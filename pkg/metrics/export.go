package metrics

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

// WriteTextfile writes the current metric values in the text exposition
// format to path, for the node-exporter textfile collector. The file is
// written atomically.
func WriteTextfile(path string) error {
	return writeTextfile(path, customRegistry)
}

func writeTextfile(path string, g prometheus.Gatherer) error {
	if path == "" {
		return fmt.Errorf("%w: empty textfile path", ErrExportFailed)
	}
	if err := prometheus.WriteToTextfile(path, g); err != nil {
		return fmt.Errorf("%w: %w", ErrExportFailed, err)
	}
	return nil
}

// Push sends the current metric values to a Prometheus Pushgateway under job.
// Batch runs have no scrape endpoint, so this is how a scheduled run reports.
func Push(ctx context.Context, url, job string) error {
	return pushTo(ctx, url, job, customRegistry)
}

func pushTo(ctx context.Context, url, job string, g prometheus.Gatherer) error {
	if url == "" || job == "" {
		return fmt.Errorf("%w: pushgateway url and job are required", ErrExportFailed)
	}
	if err := push.New(url, job).Gatherer(g).PushContext(ctx); err != nil {
		return fmt.Errorf("%w: %w", ErrExportFailed, err)
	}
	return nil
}
