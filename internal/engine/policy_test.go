// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/docverse/pkg/types"
)

// countingCandidate records invocations and returns a canned outcome.
type countingCandidate struct {
	calls int
	data  string
	err   error
	panic bool
}

func (c *countingCandidate) run(context.Context) (types.ConversionResult, error) {
	c.calls++
	if c.panic {
		panic("sdk surface changed")
	}
	if c.err != nil {
		return types.ConversionResult{}, c.err
	}
	return types.ConversionResult{Data: []byte(c.data), Filename: "out.pdf", ContentType: types.ContentTypePDF}, nil
}

var readyCloud = types.CloudConfig{Enabled: true, Prefer: true, ClientID: "id", ClientSecret: "secret"}

func TestPolicy_Selection(t *testing.T) {
	capabilities := []types.Operation{types.OpOfficeToPDF, types.OpPDFToOffice, types.OpCompress, types.OpOCR}

	tests := []struct {
		name       string
		cfg        types.CloudConfig
		cloudErr   error
		localErr   error
		cloudPanic bool
		wantCloud  int
		wantLocal  int
		wantEngine types.EngineChoice
		wantErr    bool
	}{
		{
			name:       "cloud disabled runs local only",
			cfg:        types.CloudConfig{Enabled: false, Prefer: true, ClientID: "id", ClientSecret: "secret"},
			wantLocal:  1,
			wantEngine: types.EngineLocal,
		},
		{
			name:       "cloud not preferred runs local only",
			cfg:        types.CloudConfig{Enabled: true, Prefer: false, ClientID: "id", ClientSecret: "secret"},
			wantLocal:  1,
			wantEngine: types.EngineLocal,
		},
		{
			name:       "missing secret runs local only",
			cfg:        types.CloudConfig{Enabled: true, Prefer: true, ClientID: "id"},
			wantLocal:  1,
			wantEngine: types.EngineLocal,
		},
		{
			name:       "cloud success skips local",
			cfg:        readyCloud,
			wantCloud:  1,
			wantEngine: types.EngineCloud,
		},
		{
			name:       "cloud failure falls back to local once",
			cfg:        readyCloud,
			cloudErr:   errors.New("polling failed after submit"),
			wantCloud:  1,
			wantLocal:  1,
			wantEngine: types.EngineLocal,
		},
		{
			name:       "cloud panic falls back to local",
			cfg:        readyCloud,
			cloudPanic: true,
			wantCloud:  1,
			wantLocal:  1,
			wantEngine: types.EngineLocal,
		},
		{
			name:      "both fail is fatal with no third attempt",
			cfg:       readyCloud,
			cloudErr:  errors.New("upload failed"),
			localErr:  errors.New("soffice exit 1"),
			wantCloud: 1,
			wantLocal: 1,
			wantErr:   true,
		},
		{
			name:      "local failure never falls back to cloud",
			cfg:       types.CloudConfig{Enabled: true, ClientID: "id", ClientSecret: "secret"},
			localErr:  errors.New("gs exit 1"),
			wantLocal: 1,
			wantErr:   true,
		},
	}
	for _, capability := range capabilities {
		for _, tt := range tests {
			t.Run(string(capability)+"/"+tt.name, func(t *testing.T) {
				log, _ := test.NewNullLogger()
				cloud := &countingCandidate{data: "cloud", err: tt.cloudErr, panic: tt.cloudPanic}
				local := &countingCandidate{data: "local", err: tt.localErr}

				res, err := NewPolicy(tt.cfg).Run(context.Background(), log, capability, cloud.run, local.run)

				assert.Equal(t, tt.wantCloud, cloud.calls, "cloud calls")
				assert.Equal(t, tt.wantLocal, local.calls, "local calls")
				if tt.wantErr {
					require.Error(t, err)
					assert.ErrorIs(t, err, ErrConversionFailed)
					assert.Empty(t, res.Data, "no partial result on failure")
					return
				}
				require.NoError(t, err)
				assert.Equal(t, tt.wantEngine, res.Engine)
				assert.Equal(t, string(tt.wantEngine), string(res.Data))
			})
		}
	}
}

func TestPolicy_FallbackIsLogged(t *testing.T) {
	log, hook := test.NewNullLogger()
	cloud := &countingCandidate{err: errors.New("job failed")}
	local := &countingCandidate{data: "local"}

	_, err := NewPolicy(readyCloud).Run(context.Background(), log, types.OpCompress, cloud.run, local.run)
	require.NoError(t, err)

	var warned bool
	for _, e := range hook.AllEntries() {
		if e.Level == logrus.WarnLevel && e.Data["capability"] == types.OpCompress {
			warned = true
		}
	}
	assert.True(t, warned, "fallback should be logged at warn level")
}

func TestPolicy_Modes(t *testing.T) {
	notConfigured := errors.New("cloud engine not configured")

	tests := []struct {
		name       string
		cfg        types.CloudConfig
		mode       Mode
		cloudErr   error
		wantCloud  int
		wantLocal  int
		wantEngine types.EngineChoice
		wantIs     error
	}{
		{
			name:       "local mode ignores ready cloud",
			cfg:        readyCloud,
			mode:       ModeLocal,
			wantLocal:  1,
			wantEngine: types.EngineLocal,
		},
		{
			name:       "cloud mode runs cloud even when not preferred",
			cfg:        types.CloudConfig{Enabled: true, ClientID: "id", ClientSecret: "secret"},
			mode:       ModeCloud,
			wantCloud:  1,
			wantEngine: types.EngineCloud,
		},
		{
			name:      "cloud mode surfaces configuration error without fallback",
			cfg:       types.CloudConfig{},
			mode:      ModeCloud,
			cloudErr:  notConfigured,
			wantCloud: 1,
			wantIs:    notConfigured,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log, _ := test.NewNullLogger()
			cloud := &countingCandidate{data: "cloud", err: tt.cloudErr}
			local := &countingCandidate{data: "local"}

			res, err := NewPolicy(tt.cfg).WithMode(tt.mode).Run(context.Background(), log, types.OpOfficeToPDF, cloud.run, local.run)

			assert.Equal(t, tt.wantCloud, cloud.calls)
			assert.Equal(t, tt.wantLocal, local.calls)
			if tt.wantIs != nil {
				assert.ErrorIs(t, err, tt.wantIs)
				assert.ErrorIs(t, err, ErrConversionFailed)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantEngine, res.Engine)
		})
	}
}

func TestPolicy_NilCloudCandidateRunsLocal(t *testing.T) {
	log, _ := test.NewNullLogger()
	local := &countingCandidate{data: "local"}
	res, err := NewPolicy(readyCloud).Run(context.Background(), log, types.OpOCR, nil, local.run)
	require.NoError(t, err)
	assert.Equal(t, types.EngineLocal, res.Engine)
	assert.Equal(t, 1, local.calls)
}
