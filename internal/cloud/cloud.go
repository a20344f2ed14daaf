// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package cloud runs conversion jobs against the cloud PDF Services REST API.
//
// Every call follows the same sequence: authenticate, upload the input asset,
// submit the job, poll until it finishes, download the result. Any failing
// step aborts the whole call with ErrJobFailed; the step is only logged.
package cloud

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/pdiddy/docverse/pkg/types"
)

var (
	// ErrNotConfigured is returned when the engine is invoked without being
	// enabled or without credentials. It is a configuration error and never
	// the result of a failed job.
	ErrNotConfigured = errors.New("cloud engine not configured")

	// ErrJobFailed is the uniform outcome of any failed step.
	ErrJobFailed = errors.New("cloud job failed")
)

// JobKind names an operation endpoint of the API.
type JobKind string

const (
	JobCreatePDF   JobKind = "createpdf"
	JobExportPDF   JobKind = "exportpdf"
	JobCompressPDF JobKind = "compresspdf"
	JobOCR         JobKind = "ocr"
)

// Job describes one cloud conversion. InputPath must point at a file the
// caller owns for the duration of the call.
type Job struct {
	Kind      JobKind
	InputPath string
	MediaType string
	Params    map[string]any
}

// Runner runs one job to completion and returns the produced bytes.
type Runner interface {
	Run(ctx context.Context, log logrus.FieldLogger, job Job) ([]byte, error)
}

// Client is the production Runner. It holds no per-call state: every Run
// authenticates afresh.
type Client struct {
	cfg types.CloudConfig

	// api carries authenticated calls; storage fetches and stores asset
	// bytes at presigned URLs, which reject an Authorization header.
	api     *http.Client
	storage *http.Client
}

// New returns a Client for cfg. It does not contact the API.
func New(cfg types.CloudConfig) *Client {
	timeout := cfg.HTTPTimeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		cfg:     cfg,
		api:     &http.Client{Timeout: timeout},
		storage: &http.Client{Timeout: timeout},
	}
}

// Ready reports whether the client can run jobs at all.
func (c *Client) Ready() bool { return c.cfg.Ready() }

// Run executes job. A client that is not Ready returns ErrNotConfigured
// without making any request.
func (c *Client) Run(ctx context.Context, log logrus.FieldLogger, job Job) ([]byte, error) {
	if !c.Ready() {
		return nil, ErrNotConfigured
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	log = log.WithField("job", job.Kind)

	fail := func(step string, err error) ([]byte, error) {
		log.WithField("step", step).WithError(err).Warn("cloud job step failed")
		return nil, fmt.Errorf("%w: %s", ErrJobFailed, job.Kind)
	}

	in, err := os.Open(job.InputPath)
	if err != nil {
		return fail("open", err)
	}
	defer in.Close()
	info, err := in.Stat()
	if err != nil {
		return fail("open", err)
	}

	s, err := c.authenticate(ctx)
	if err != nil {
		return fail("authenticate", err)
	}
	assetID, err := s.upload(ctx, in, info.Size(), job.MediaType)
	if err != nil {
		return fail("upload", err)
	}
	pollURL, err := s.submit(ctx, job.Kind, assetID, job.Params)
	if err != nil {
		return fail("submit", err)
	}
	log = log.WithField("asset", assetID)

	limiter := rate.NewLimiter(rate.Every(c.pollInterval()), 1)
	downloadURI, err := s.await(ctx, limiter, pollURL, log)
	if err != nil {
		return fail("poll", err)
	}
	data, err := s.download(ctx, downloadURI)
	if err != nil {
		return fail("download", err)
	}
	if len(data) == 0 {
		return fail("download", errors.New("empty result asset"))
	}
	log.WithField("bytes", len(data)).Debug("cloud job done")
	return data, nil
}

func (c *Client) pollInterval() time.Duration {
	if c.cfg.PollInterval <= 0 {
		return 2 * time.Second
	}
	return c.cfg.PollInterval
}

func (c *Client) baseURL() string {
	return strings.TrimRight(c.cfg.BaseURL, "/")
}
