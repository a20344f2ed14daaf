// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package engine decides which engine runs a conversion capability and
// falls back from the cloud engine to the local one when the cloud fails.
package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/pdiddy/docverse/pkg/types"
)

// ErrConversionFailed is the uniform outcome of any engine failure. The
// underlying cause is wrapped for logging only.
var ErrConversionFailed = errors.New("conversion failed")

// Candidate runs one engine for one request and returns its result. The
// policy stamps the engine choice on the result, so candidates need not.
type Candidate func(ctx context.Context) (types.ConversionResult, error)

// Mode overrides the automatic selection.
type Mode string

const (
	// ModeAuto tries cloud first when preferred and credentialed, then local.
	ModeAuto Mode = "auto"
	// ModeCloud runs only the cloud engine.
	ModeCloud Mode = "cloud"
	// ModeLocal runs only the local engine.
	ModeLocal Mode = "local"
)

// Policy selects between the cloud and local engine candidates.
type Policy struct {
	cloudFirst bool
	mode       Mode
}

// NewPolicy returns a policy that attempts the cloud engine first only when
// cfg prefers it and carries credentials.
func NewPolicy(cfg types.CloudConfig) *Policy {
	return &Policy{cloudFirst: cfg.UseFirst(), mode: ModeAuto}
}

// WithMode returns a copy of p that applies mode instead of ModeAuto.
func (p *Policy) WithMode(mode Mode) *Policy {
	cp := *p
	cp.mode = mode
	return &cp
}

// CloudFirst reports whether the cloud engine is the primary candidate.
func (p *Policy) CloudFirst() bool {
	return p.mode == ModeCloud || (p.mode != ModeLocal && p.cloudFirst)
}

// Run executes capability with at most two engine invocations. When the
// cloud engine is primary and fails for any reason, the failure is logged
// and local runs exactly once; a local failure is final. The cloud engine is
// never used as a fallback for local.
func (p *Policy) Run(ctx context.Context, log logrus.FieldLogger, capability types.Operation, cloud, local Candidate) (types.ConversionResult, error) {
	log = log.WithField("capability", capability)

	switch {
	case p.mode == ModeCloud:
		res, err := attempt(ctx, cloud, types.EngineCloud)
		if err != nil {
			log.WithError(err).Error("cloud engine failed")
			return types.ConversionResult{}, fail(err)
		}
		return res, nil

	case p.CloudFirst() && cloud != nil:
		res, err := attempt(ctx, cloud, types.EngineCloud)
		if err == nil {
			log.WithField("engine", types.EngineCloud).Info("conversion done")
			return res, nil
		}
		log.WithError(err).Warn("cloud engine failed, falling back to local")
	}

	res, err := attempt(ctx, local, types.EngineLocal)
	if err != nil {
		log.WithError(err).Error("local engine failed")
		return types.ConversionResult{}, fail(err)
	}
	log.WithField("engine", types.EngineLocal).Info("conversion done")
	return res, nil
}

// attempt runs c and tags its result. A panic inside a candidate is turned
// into an error so it takes the same fallback path as any other failure.
func attempt(ctx context.Context, c Candidate, choice types.EngineChoice) (res types.ConversionResult, err error) {
	if c == nil {
		return types.ConversionResult{}, fmt.Errorf("no %s engine for this capability", choice)
	}
	defer func() {
		if r := recover(); r != nil {
			res, err = types.ConversionResult{}, fmt.Errorf("%s engine panicked: %v", choice, r)
		}
	}()
	res, err = c(ctx)
	if err != nil {
		return types.ConversionResult{}, err
	}
	res.Engine = choice
	return res, nil
}

// fail wraps cause under ErrConversionFailed, keeping sentinels that callers
// must distinguish (configuration and input errors) visible to errors.Is.
func fail(cause error) error {
	return fmt.Errorf("%w: %w", ErrConversionFailed, cause)
}
