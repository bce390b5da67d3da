package nav

import (
	"bufio"
	"bytes"
	"crypto/sha1"
	"fmt"
	"net/http"
	"net/http/httputil"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
)

// diskCache is a RoundTripper storing successful responses on disk. Keys
// include the day, so cached entries expire daily.
type diskCache struct {
	base   http.RoundTripper
	dir    string
	logger *zap.Logger
	today  func() string
}

// Daily returns a client caching responses for the day in dir, or in the
// system temporary directory when dir is empty.
func Daily(dir string, logger *zap.Logger) *http.Client {
	if dir == "" {
		dir = filepath.Join(os.TempDir(), "wealth-nav")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &http.Client{
		Timeout: 30 * time.Second,
		Transport: &diskCache{
			base:   http.DefaultTransport,
			dir:    dir,
			logger: logger,
			today:  func() string { return time.Now().Format(time.DateOnly) },
		},
	}
}

func (c *diskCache) RoundTrip(req *http.Request) (*http.Response, error) {
	key := fmt.Sprintf("%s %s %s", c.today(), req.Method, req.URL.String())
	key = fmt.Sprintf("%x", sha1.Sum([]byte(key)))

	if cached, err := c.get(key, req); err == nil {
		return cached, nil
	}

	resp, err := c.base.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	c.logger.Debug("nav fetched",
		zap.String("method", req.Method),
		zap.String("host", req.URL.Host),
		zap.String("path", req.URL.Path),
		zap.Int("status", resp.StatusCode))
	if resp.StatusCode >= 300 {
		return resp, nil
	}
	if err := c.put(key, resp); err != nil {
		c.logger.Warn("nav cache write failed", zap.Error(err))
	}
	return resp, nil
}

func (c *diskCache) get(key string, req *http.Request) (*http.Response, error) {
	content, err := os.ReadFile(filepath.Join(c.dir, key))
	if err != nil {
		return nil, err
	}
	return http.ReadResponse(bufio.NewReader(bytes.NewReader(content)), req)
}

// put stores resp, whose body stays readable for the caller.
func (c *diskCache) put(key string, resp *http.Response) error {
	content, err := httputil.DumpResponse(resp, true)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(c.dir, key), content, 0o644)
}
