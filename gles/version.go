// SPDX-License-Identifier: Unlicense OR MIT

package gles

import "fmt"

// Version is an OpenGL or OpenGL ES version as reported by
// glGetString(GL_VERSION).
type Version struct {
	Major, Minor int
	// ES reports whether the version string describes OpenGL ES
	// (or WebGL).
	ES bool
}

// ParseVersion parses a GL_VERSION string.
func ParseVersion(glVer string) (Version, error) {
	var v Version
	if _, err := fmt.Sscanf(glVer, "OpenGL ES %d.%d", &v.Major, &v.Minor); err == nil {
		v.ES = true
		return v, nil
	} else if _, err := fmt.Sscanf(glVer, "WebGL %d.%d", &v.Major, &v.Minor); err == nil {
		// WebGL major version v corresponds to OpenGL ES version v + 1
		v.Major++
		v.ES = true
		return v, nil
	} else if _, err := fmt.Sscanf(glVer, "%d.%d", &v.Major, &v.Minor); err == nil {
		return v, nil
	}
	return v, fmt.Errorf("failed to parse OpenGL ES version (%s)", glVer)
}

// AtLeast reports whether v is major.minor or newer.
func (v Version) AtLeast(major, minor int) bool {
	return v.Major > major || v.Major == major && v.Minor >= minor
}

// Supports reports whether a context of v can serve a renderer that
// asked for the given EGL client version. Client version 0 means no
// particular version was requested.
func (v Version) Supports(clientVersion int) bool {
	if clientVersion <= 0 {
		return true
	}
	if !v.ES {
		// Desktop GL 4.3 and later is a superset of ES 3.0.
		return clientVersion <= 2 && v.AtLeast(2, 0) || v.AtLeast(4, 3)
	}
	return v.Major >= clientVersion
}

func (v Version) String() string {
	if v.ES {
		return fmt.Sprintf("OpenGL ES %d.%d", v.Major, v.Minor)
	}
	return fmt.Sprintf("OpenGL %d.%d", v.Major, v.Minor)
}
