// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package cloud

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
	"golang.org/x/time/rate"

	"github.com/pdiddy/docverse/internal/httputil"
)

// maxResultBytes bounds a downloaded result asset.
const maxResultBytes = 512 << 20

// Job status values reported by the API.
const (
	statusInProgress = "in progress"
	statusDone       = "done"
	statusFailed     = "failed"
)

// session is one authenticated conversation with the API. It lives for a
// single Run.
type session struct {
	c     *Client
	token *oauth2.Token
}

func (c *Client) authenticate(ctx context.Context) (*session, error) {
	conf := clientcredentials.Config{
		ClientID:     c.cfg.ClientID,
		ClientSecret: c.cfg.ClientSecret,
		TokenURL:     c.baseURL() + "/token",
		AuthStyle:    oauth2.AuthStyleInParams,
	}
	tok, err := conf.Token(context.WithValue(ctx, oauth2.HTTPClient, c.api))
	if err != nil {
		return nil, fmt.Errorf("fetching access token: %w", err)
	}
	return &session{c: c, token: tok}, nil
}

// newRequest builds an authenticated API request with an optional JSON body.
func (s *session) newRequest(ctx context.Context, method, url string, body any) (*http.Request, error) {
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encoding request: %w", err)
		}
		r = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, r)
	if err != nil {
		return nil, err
	}
	s.token.SetAuthHeader(req)
	req.Header.Set("x-api-key", s.c.cfg.ClientID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

type assetResponse struct {
	UploadURI string `json:"uploadUri"`
	AssetID   string `json:"assetID"`
}

// upload registers a new asset and stores the input bytes at the presigned
// URL the API hands back. Presigned storage rejects chunked uploads, so the
// body is sent with an explicit length.
func (s *session) upload(ctx context.Context, in io.Reader, size int64, mediaType string) (string, error) {
	req, err := s.newRequest(ctx, http.MethodPost, s.c.baseURL()+"/assets", map[string]string{"mediaType": mediaType})
	if err != nil {
		return "", err
	}
	resp, err := s.c.api.Do(req)
	if err != nil {
		return "", err
	}
	if err := httputil.CheckStatus(resp); err != nil {
		return "", err
	}
	var asset assetResponse
	err = json.NewDecoder(resp.Body).Decode(&asset)
	httputil.DrainClose(resp)
	if err != nil {
		return "", fmt.Errorf("decoding asset response: %w", err)
	}
	if asset.AssetID == "" || asset.UploadURI == "" {
		return "", errors.New("asset response missing id or upload uri")
	}

	put, err := http.NewRequestWithContext(ctx, http.MethodPut, asset.UploadURI, in)
	if err != nil {
		return "", err
	}
	put.ContentLength = size
	put.Header.Set("Content-Type", mediaType)
	resp, err = s.c.storage.Do(put)
	if err != nil {
		return "", err
	}
	if err := httputil.CheckStatus(resp); err != nil {
		return "", err
	}
	httputil.DrainClose(resp)
	return asset.AssetID, nil
}

// submit starts a job on assetID and returns the status URL from the
// Location header.
func (s *session) submit(ctx context.Context, kind JobKind, assetID string, params map[string]any) (string, error) {
	body := map[string]any{"assetID": assetID}
	for k, v := range params {
		body[k] = v
	}
	req, err := s.newRequest(ctx, http.MethodPost, s.c.baseURL()+"/operation/"+string(kind), body)
	if err != nil {
		return "", err
	}
	resp, err := s.c.api.Do(req)
	if err != nil {
		return "", err
	}
	if err := httputil.CheckStatus(resp); err != nil {
		return "", err
	}
	httputil.DrainClose(resp)

	loc := resp.Header.Get("Location")
	if loc == "" {
		return "", errors.New("job accepted without a status location")
	}
	u, err := resp.Request.URL.Parse(loc)
	if err != nil {
		return "", fmt.Errorf("parsing status location: %w", err)
	}
	return u.String(), nil
}

type statusResponse struct {
	Status string `json:"status"`
	Asset  *struct {
		AssetID     string `json:"assetID"`
		DownloadURI string `json:"downloadUri"`
	} `json:"asset"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// await polls pollURL, paced by limiter, until the job is done or failed.
// It returns the result asset's download URI.
func (s *session) await(ctx context.Context, limiter *rate.Limiter, pollURL string, log logrus.FieldLogger) (string, error) {
	for polls := 1; ; polls++ {
		if err := limiter.Wait(ctx); err != nil {
			return "", err
		}
		st, err := s.status(ctx, pollURL, log)
		if err != nil {
			return "", err
		}
		switch st.Status {
		case statusDone:
			if st.Asset == nil || st.Asset.DownloadURI == "" {
				return "", errors.New("job done without a result asset")
			}
			log.WithField("polls", polls).Debug("cloud job finished")
			return st.Asset.DownloadURI, nil
		case statusFailed:
			if st.Error != nil {
				return "", fmt.Errorf("job failed: %s: %s", st.Error.Code, st.Error.Message)
			}
			return "", errors.New("job failed")
		case statusInProgress, "":
		default:
			return "", fmt.Errorf("unknown job status %q", st.Status)
		}
	}
}

func (s *session) status(ctx context.Context, pollURL string, log logrus.FieldLogger) (*statusResponse, error) {
	req, err := s.newRequest(ctx, http.MethodGet, pollURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := httputil.DoWithRetry(ctx, s.c.api, req, s.c.cfg.MaxRetries, log)
	if err != nil {
		return nil, err
	}
	if err := httputil.CheckStatus(resp); err != nil {
		return nil, err
	}
	defer httputil.DrainClose(resp)

	var st statusResponse
	if err := json.NewDecoder(resp.Body).Decode(&st); err != nil {
		return nil, fmt.Errorf("decoding job status: %w", err)
	}
	return &st, nil
}

func (s *session) download(ctx context.Context, uri string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return nil, err
	}
	resp, err := s.c.storage.Do(req)
	if err != nil {
		return nil, err
	}
	if err := httputil.CheckStatus(resp); err != nil {
		return nil, err
	}
	defer httputil.DrainClose(resp)

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResultBytes+1))
	if err != nil {
		return nil, fmt.Errorf("reading result asset: %w", err)
	}
	if len(data) > maxResultBytes {
		return nil, errors.New("result asset too large")
	}
	return data, nil
}
