package validation

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"
)

func TestSanitizePath(t *testing.T) {
	base := t.TempDir()
	tests := []struct {
		name      string
		userPath  string
		want      string
		wantError error
	}{
		{"simple", "dict.lift", "dict.lift", nil},
		{"nested", "dict/audio/a.wav", filepath.Join("dict", "audio", "a.wav"), nil},
		{"redundant separators", "dict//audio/a.wav", filepath.Join("dict", "audio", "a.wav"), nil},
		{"inner dot dot", "dict/../dict/a.wav", filepath.Join("dict", "a.wav"), nil},
		{"name with dots", "a..b.wav", "a..b.wav", nil},
		{"parent", "../evil.txt", "", ErrPathTraversal},
		{"deep parent", "dict/../../evil.txt", "", ErrPathTraversal},
		{"absolute", "/etc/passwd", "", ErrPathTraversal},
		{"empty", "", "", ErrEmptyPath},
		{"too long", strings.Repeat("a/", MaxPathLength), "", ErrPathTooLong},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SanitizePath(base, tt.userPath)
			if tt.wantError != nil {
				if !errors.Is(err, tt.wantError) {
					t.Errorf("SanitizePath(%q) error = %v, want %v", tt.userPath, err, tt.wantError)
				}
				return
			}
			if err != nil {
				t.Fatalf("SanitizePath(%q): %v", tt.userPath, err)
			}
			if got != tt.want {
				t.Errorf("SanitizePath(%q) = %q, want %q", tt.userPath, got, tt.want)
			}
		})
	}
}

func TestValidateFilename(t *testing.T) {
	tests := []struct {
		name      string
		filename  string
		wantError error
	}{
		{"plain", "dict", nil},
		{"with extension", "dict.lift", nil},
		{"unicode", "kamusi-ya-sena", nil},
		{"empty", "", ErrInvalidFilename},
		{"dot", ".", ErrInvalidFilename},
		{"dot dot", "..", ErrInvalidFilename},
		{"slash", "a/b", ErrInvalidFilename},
		{"backslash", `a\b`, ErrInvalidFilename},
		{"control", "a\x00b", ErrInvalidFilename},
		{"hyphen", "-rf", ErrInvalidFilename},
		{"too long", strings.Repeat("a", MaxFilenameLength+1), ErrFilenameTooLong},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateFilename(tt.filename)
			if tt.wantError == nil && err != nil {
				t.Errorf("ValidateFilename(%q) = %v, want nil", tt.filename, err)
			}
			if tt.wantError != nil && !errors.Is(err, tt.wantError) {
				t.Errorf("ValidateFilename(%q) = %v, want %v", tt.filename, err, tt.wantError)
			}
		})
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"dict", "dict", false},
		{" dict ", "dict", false},
		{"a/b\\c", "a_b_c", false},
		{"--dict", "dict", false},
		{"a\tb", "ab", false},
		{"---", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		got, err := SanitizeFilename(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("SanitizeFilename(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("SanitizeFilename(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
