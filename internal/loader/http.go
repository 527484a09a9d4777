package loader

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	// maxFormBytes bounds remote form downloads.
	maxFormBytes   = 4 << 20
	requestTimeout = 10 * time.Second
)

type remote struct {
	client  *http.Client
	timeout time.Duration
}

func (r *remote) fetch(ctx context.Context, url string) ([]byte, error) {
	timeout := r.timeout
	if timeout <= 0 {
		timeout = requestTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json, application/yaml;q=0.9, */*;q=0.1")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxFormBytes+1))
	if err != nil {
		return nil, err
	}
	if len(data) > maxFormBytes {
		return nil, fmt.Errorf("document exceeds %d bytes", maxFormBytes)
	}
	return data, nil
}
