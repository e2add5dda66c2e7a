package errors

import (
	"math"
	"testing"
)

func ptr(f float64) *float64 { return &f }

func TestValidateDistance(t *testing.T) {
	tests := []struct {
		name    string
		input   *float64
		wantErr bool
	}{
		{"zero", ptr(0), false},
		{"positive", ptr(12.5), false},

		{"missing", nil, true},
		{"negative", ptr(-1), true},
		{"nan", ptr(math.NaN()), true},
		{"inf", ptr(math.Inf(1)), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDistance(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateDistance() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidGraph) {
				t.Errorf("ValidateDistance() code = %v, want %v", GetCode(err), ErrCodeInvalidGraph)
			}
		})
	}
}

func TestValidateNonNegative(t *testing.T) {
	tests := []struct {
		name    string
		input   float64
		wantErr bool
	}{
		{"zero", 0, false},
		{"positive", 3, false},
		{"negative", -0.1, true},
		{"nan", math.NaN(), true},
		{"-inf", math.Inf(-1), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateNonNegative("threshold", tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateNonNegative(%v) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidatePositive(t *testing.T) {
	if err := ValidatePositive("link_scale", 500); err != nil {
		t.Errorf("ValidatePositive(500) error = %v", err)
	}
	if err := ValidatePositive("link_scale", 0); err == nil {
		t.Error("ValidatePositive(0) expected error")
	}
	if err := ValidatePositive("link_scale", -5); !Is(err, ErrCodeInvalidConfig) {
		t.Errorf("ValidatePositive(-5) code = %v, want %v", GetCode(err), ErrCodeInvalidConfig)
	}
}

func TestValidateNodeName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"simple", "ST131", false},
		{"with spaces", "E. coli 12", false},
		{"unicode", "Köln-1", false},

		{"empty", "", true},
		{"blank", "   ", true},
		{"too long", string(make([]byte, 300)), true},
		{"newline", "foo\nbar", true},
		{"null byte", "foo\x00bar", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateNodeName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateNodeName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidatePath(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"relative", "data/tree.json", false},
		{"absolute", "/tmp/tree.json", false},

		{"empty", "", true},
		{"null byte", "tree\x00.json", true},
		{"control", "tree\x01.json", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePath(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePath(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}
