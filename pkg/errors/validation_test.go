package errors

import (
	"strings"
	"testing"
)

func TestValidateExportName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid simple", "report", false},
		{"valid with dash", "survey-2024", false},
		{"valid with underscore", "fach_1", false},
		{"valid umlaut", "Größe", false},
		{"valid with dot", "report.v2", false},

		{"empty", "", true},
		{"too long", strings.Repeat("a", 200), true},
		{"slash", "foo/bar", true},
		{"backslash", "foo\\bar", true},
		{"traversal", "..", true},
		{"hidden", ".report", true},
		{"null byte", "foo\x00bar", true},
		{"newline", "foo\nbar", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateExportName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateExportName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidName) {
				t.Errorf("ValidateExportName(%q) code = %v, want %v", tt.input, GetCode(err), ErrCodeInvalidName)
			}
		})
	}
}

func TestValidateDPI(t *testing.T) {
	tests := []struct {
		dpi     int
		wantErr bool
	}{
		{72, false},
		{150, false},
		{300, false},
		{600, false},
		{71, true},
		{601, true},
		{0, true},
		{-1, true},
	}

	for _, tt := range tests {
		err := ValidateDPI(tt.dpi)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateDPI(%d) error = %v, wantErr %v", tt.dpi, err, tt.wantErr)
		}
	}
}

func TestValidateRetentionDays(t *testing.T) {
	if err := ValidateRetentionDays(0); err != nil {
		t.Errorf("ValidateRetentionDays(0) = %v", err)
	}
	if err := ValidateRetentionDays(7); err != nil {
		t.Errorf("ValidateRetentionDays(7) = %v", err)
	}
	if err := ValidateRetentionDays(-3); err == nil {
		t.Error("ValidateRetentionDays(-3) = nil, want error")
	}
}
