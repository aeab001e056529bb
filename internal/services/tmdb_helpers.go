package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	apperrors "github.com/amaumene/gomovies/internal/errors"
	"github.com/amaumene/gomovies/internal/models"
)

// pageParam clamps page to the first page.
func pageParam(page int) string {
	if page < 1 {
		page = 1
	}
	return strconv.Itoa(page)
}

func (t *TMDB) fetchPage(ctx context.Context, path string, params url.Values) (*models.MoviePage, error) {
	var page models.MoviePage
	if err := t.get(ctx, path, params, &page); err != nil {
		return nil, err
	}
	if page.Results == nil {
		page.Results = []models.MovieSummary{}
	}
	return &page, nil
}

func (t *TMDB) get(ctx context.Context, path string, params url.Values, v interface{}) error {
	return t.do(ctx, http.MethodGet, path, params, nil, v)
}

func (t *TMDB) post(ctx context.Context, path string, params url.Values, body, v interface{}) error {
	return t.do(ctx, http.MethodPost, path, params, body, v)
}

func (t *TMDB) do(ctx context.Context, method, path string, params url.Values, body, v interface{}) error {
	if err := t.rateLimiter.Wait(ctx); err != nil {
		return apperrors.NewRequestError("rate limiter wait cancelled", err)
	}

	req, err := t.newRequest(ctx, method, path, params, body)
	if err != nil {
		t.logger.Errorf("[TMDB] request error: %v", err)
		return apperrors.NewRequestError("failed to build request for "+path, err)
	}

	resp, err := t.httpClient.Do(req)
	if err != nil {
		t.logger.Errorf("[TMDB] request to %s failed: %v", path, err)
		return apperrors.NewRequestError("request to "+path+" failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// drain so the connection can be reused
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		t.logger.Warnf("[TMDB] %s %s returned status %d", method, path, resp.StatusCode)
		return apperrors.NewStatusError(path, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.logger.Errorf("[TMDB] failed to decode %s: %v", path, err)
		return apperrors.NewDecodeError(path, err)
	}
	return nil
}

func (t *TMDB) newRequest(ctx context.Context, method, path string, params url.Values, body interface{}) (*http.Request, error) {
	query := url.Values{}
	for k, vs := range params {
		query[k] = vs
	}
	if query.Get("language") == "" {
		query.Set("language", t.language)
	}
	fullURL := fmt.Sprintf("%s%s?%s", t.baseURL, path, query.Encode())

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, reader)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json;charset=utf-8")
	}
	return req, nil
}
