// SPDX-License-Identifier: Unlicense OR MIT

package gles

import "testing"

func TestParseVersion(t *testing.T) {
	tests := []struct {
		str  string
		want Version
	}{
		{"OpenGL ES 2.0 build 1.7@2345", Version{Major: 2, Minor: 0, ES: true}},
		{"OpenGL ES 3.2 V@0502.0", Version{Major: 3, Minor: 2, ES: true}},
		{"WebGL 1.0 (OpenGL ES 2.0 Chromium)", Version{Major: 2, Minor: 0, ES: true}},
		{"4.6.0 NVIDIA 535.54.03", Version{Major: 4, Minor: 6}},
	}
	for _, test := range tests {
		got, err := ParseVersion(test.str)
		if err != nil {
			t.Errorf("ParseVersion(%q): %v", test.str, err)
			continue
		}
		if got != test.want {
			t.Errorf("ParseVersion(%q) = %+v, want %+v", test.str, got, test.want)
		}
	}
	if _, err := ParseVersion("Mesa"); err == nil {
		t.Error("ParseVersion succeeded for a string without version")
	}
}

func TestVersionSupports(t *testing.T) {
	es2 := Version{Major: 2, ES: true}
	es3 := Version{Major: 3, Minor: 1, ES: true}
	gl33 := Version{Major: 3, Minor: 3}
	gl45 := Version{Major: 4, Minor: 5}
	tests := []struct {
		v      Version
		client int
		want   bool
	}{
		{es2, 0, true},
		{es2, 2, true},
		{es2, 3, false},
		{es3, 3, true},
		{gl33, 2, true},
		{gl33, 3, false},
		{gl45, 3, true},
	}
	for _, test := range tests {
		if got := test.v.Supports(test.client); got != test.want {
			t.Errorf("%v.Supports(%d) = %v, want %v", test.v, test.client, got, test.want)
		}
	}
	if !es3.AtLeast(3, 0) || es3.AtLeast(3, 2) {
		t.Errorf("%v.AtLeast gave wrong answers", es3)
	}
	if got, want := es3.String(), "OpenGL ES 3.1"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
