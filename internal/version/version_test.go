package version

import "testing"

func TestParse(t *testing.T) {
	tests := []struct {
		input       string
		wantDev     bool
		wantBase    string
		wantNumber  int
		wantUnknown bool
	}{
		{"1.4.0-Dev7", true, "1.4.0", 7, false},
		{"1.4.0-dev12", true, "1.4.0", 12, false},
		{"2-DEV001", true, "2", 1, false},
		{"1.4.0", false, "1.4.0", 0, false},
		{"10", false, "10", 0, false},
		{"1.4.0-beta", false, "1.4.0-beta", 0, true},
		{"1.4.0-Dev", false, "1.4.0-Dev", 0, true},
		{"v1.4.0", false, "v1.4.0", 0, true},
		{"UNKNOWN_VERSION", false, "UNKNOWN_VERSION", 0, true},
		{"1..2", false, "1..2", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			info, ok := Parse(tt.input)
			if !ok {
				t.Fatal("Parse returned ok=false")
			}
			if info.IsDev != tt.wantDev {
				t.Errorf("IsDev = %v, want %v", info.IsDev, tt.wantDev)
			}
			if info.Base != tt.wantBase {
				t.Errorf("Base = %q, want %q", info.Base, tt.wantBase)
			}
			if info.DevNumber != tt.wantNumber {
				t.Errorf("DevNumber = %d, want %d", info.DevNumber, tt.wantNumber)
			}
			if info.UnknownFormat != tt.wantUnknown {
				t.Errorf("UnknownFormat = %v, want %v", info.UnknownFormat, tt.wantUnknown)
			}
			if info.Full != tt.input {
				t.Errorf("Full = %q, want %q", info.Full, tt.input)
			}
		})
	}
}

func TestParse_Empty(t *testing.T) {
	if _, ok := Parse(""); ok {
		t.Error("empty input should yield no result")
	}
}

func TestKind(t *testing.T) {
	tests := map[string]string{
		"1.0-Dev1": "dev",
		"1.0":      "release",
		"1.0-rc1":  "unknown format",
	}
	for input, want := range tests {
		info, _ := Parse(input)
		if got := info.Kind(); got != want {
			t.Errorf("Kind(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestDevFolder(t *testing.T) {
	tests := []struct {
		input        string
		want         string
		wantOverflow bool
	}{
		{"1.4.0-Dev7", "007", false},
		{"1.4.0-Dev42", "042", false},
		{"1.4.0-Dev999", "999", false},
		{"1.4.0-Dev1000", "1000", true},
	}
	for _, tt := range tests {
		info, _ := Parse(tt.input)
		if got := info.DevFolder(); got != tt.want {
			t.Errorf("DevFolder(%q) = %q, want %q", tt.input, got, tt.want)
		}
		if info.DevOverflow() != tt.wantOverflow {
			t.Errorf("DevOverflow(%q) = %v, want %v", tt.input, info.DevOverflow(), tt.wantOverflow)
		}
	}
}

func TestFromFilename(t *testing.T) {
	tests := []struct {
		name     string
		expected string
		want     string
		wantOK   bool
	}{
		{"Sound_Controller-1.4.0-Dev7-universal.jar", "1.4.0-Dev7", "1.4.0-Dev7", true},
		{"Sound_Controller-quilt-1.4.0-Dev7.jar", "1.4.0-Dev7", "1.4.0-Dev7", true},
		{"Sound_Controller-2.0.0-puzzle.jar", "1.4.0", "2.0.0", true},
		{"Sound_Controller-1.2.3-universal.jar", "UNKNOWN", "1.2.3", true},
		{"Sound_Controller-1.2.3-Dev4-puzzle.jar", "", "1.2.3-Dev4", true},
		{"1.2.3.jar", "UNKNOWN", "1.2.3", true},
		{"Sound_Controller-universal.jar", "1.0", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := FromFilename(tt.name, tt.expected)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("FromFilename(%q, %q) = %q, %v; want %q, %v", tt.name, tt.expected, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}
