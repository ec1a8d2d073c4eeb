package loader

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"os"
	"sort"
	"strings"
)

// maxBodySize bounds remote payloads
const maxBodySize = 64 << 20

func readFile(location string) ([]byte, error) {
	body, err := os.ReadFile(location)
	if errors.Is(err, fs.ErrNotExist) || errors.Is(err, fs.ErrPermission) {
		return nil, &LoadError{Location: location, Kind: ErrUnreachable, Cause: err}
	}
	if err != nil {
		return nil, &LoadError{Location: location, Kind: ErrMalformedSource, Cause: err}
	}
	return body, nil
}

// requestURL adds the configured query parameters and API key to location
func requestURL(location string, p Params, withKey bool) (string, error) {
	u, err := url.Parse(location)
	if err != nil {
		return "", err
	}
	q := u.Query()
	for k, v := range p.Query {
		q.Set(k, v)
	}
	if withKey && p.APIKey != "" {
		param := p.APIKeyParam
		if param == "" {
			param = "api_key"
		}
		q.Set(param, p.APIKey)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// cacheKey hashes the request without its API key
func cacheKey(location string, p Params) string {
	h := sha256.New()
	u, err := requestURL(location, p, false)
	if err != nil {
		u = location
	}
	h.Write([]byte(u))

	headers := make([]string, 0, len(p.Headers))
	for k, v := range p.Headers {
		headers = append(headers, strings.ToLower(k)+"="+v)
	}
	sort.Strings(headers)
	for _, hv := range headers {
		h.Write([]byte{0})
		h.Write([]byte(hv))
	}
	return hex.EncodeToString(h.Sum(nil))
}

// fetch GETs a remote source, consulting the cache first
func (l *Loader) fetch(ctx context.Context, location string, p Params) ([]byte, error) {
	var key string
	if l.cache != nil {
		key = cacheKey(location, p)
		body, ok, err := l.cache.Get(ctx, key)
		if err != nil {
			l.logger.Warn("Cache read failed", "location", redact(location, p), "error", err)
		} else if ok {
			l.logger.Debug("Cache hit", "location", redact(location, p))
			return body, nil
		}
	}

	target, err := requestURL(location, p, true)
	if err != nil {
		return nil, newLoadError(location, ErrUnreachable, "invalid url: %v", err)
	}

	if p.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.Timeout)
		defer cancel()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, newLoadError(location, ErrUnreachable, "build request: %v", err)
	}
	req.Header.Set("Accept", "application/json, text/csv, */*")
	for k, v := range p.Headers {
		req.Header.Set(k, v)
	}

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, newLoadError(redact(location, p), ErrUnreachable, "%s", redact(err.Error(), p))
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, newLoadError(location, ErrUnreachable, "unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, newLoadError(location, ErrUnreachable, "read body: %v", err)
	}

	if l.cache != nil {
		if err := l.cache.Set(ctx, key, body, l.cacheTTL); err != nil {
			l.logger.Warn("Cache write failed", "location", redact(location, p), "error", err)
		}
	}
	return body, nil
}
