// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCloudConfigReadiness(t *testing.T) {
	tests := []struct {
		name      string
		cfg       CloudConfig
		wantReady bool
		wantFirst bool
	}{
		{"disabled", CloudConfig{ClientID: "id", ClientSecret: "s", Prefer: true}, false, false},
		{"missing secret", CloudConfig{Enabled: true, ClientID: "id", Prefer: true}, false, false},
		{"missing id", CloudConfig{Enabled: true, ClientSecret: "s", Prefer: true}, false, false},
		{"ready not preferred", CloudConfig{Enabled: true, ClientID: "id", ClientSecret: "s"}, true, false},
		{"ready and preferred", CloudConfig{Enabled: true, ClientID: "id", ClientSecret: "s", Prefer: true}, true, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantReady, tt.cfg.Ready())
			assert.Equal(t, tt.wantFirst, tt.cfg.UseFirst())
		})
	}
}

func TestOfficeFormat(t *testing.T) {
	assert.True(t, FormatWord.Valid())
	assert.False(t, OfficeFormat("visio").Valid())

	assert.Equal(t, "xlsx", FormatExcel.Extension())
	assert.Contains(t, FormatPowerPoint.ContentType(), "presentationml")

	tests := []struct {
		format OfficeFormat
		name   string
		want   bool
	}{
		{FormatWord, "letter.DOCX", true},
		{FormatWord, "notes.txt", true},
		{FormatWord, "sheet.xlsx", false},
		{FormatExcel, "data.csv", true},
		{FormatExcel, "deck.pptx", false},
		{FormatPowerPoint, "deck.odp", true},
		{FormatPowerPoint, "noext", false},
	}
	for _, tt := range tests {
		t.Run(string(tt.format)+"/"+tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.format.AcceptsInput(tt.name))
		})
	}

	assert.Equal(t, "spreadsheet.xlsx", FormatExcel.DefaultInputName())
	assert.Equal(t, "document.docx", OfficeFormat("").DefaultInputName())
}

func TestInputFileBaseName(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"report.pdf", "report"},
		{"dir/archive.tar.gz", "archive.tar"},
		{".hidden", ".hidden"},
		{"noext", "noext"},
		{"", "fallback"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, InputFile{Name: tt.name}.BaseName("fallback"))
		})
	}
}

func TestQualityTierValid(t *testing.T) {
	for _, q := range []QualityTier{QualityLow, QualityMedium, QualityHigh} {
		assert.True(t, q.Valid(), q)
	}
	assert.False(t, QualityTier("").Valid())
	assert.False(t, QualityTier("max").Valid())
}
