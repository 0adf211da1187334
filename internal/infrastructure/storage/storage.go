// Package storage keeps uploaded call audio on local disk and, optionally,
// archives it to MinIO.
package storage

import (
	"context"
	"io"
	"path/filepath"
	"regexp"
	"strings"
)

// AudioStore persists uploaded audio and returns a reference to it
type AudioStore interface {
	Save(ctx context.Context, name string, r io.Reader, size int64, contentType string) (string, error)
	Remove(ctx context.Context, ref string) error
}

var unsafeNameChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// ObjectName builds a storage name for a call's upload that is safe on
// every backend: <callID>_<sanitized original name>
func ObjectName(callID, filename string) string {
	base := filepath.Base(strings.ReplaceAll(filename, "\\", "/"))
	base = unsafeNameChars.ReplaceAllString(base, "_")
	base = strings.Trim(base, "._")
	if base == "" {
		base = "audio"
	}
	return callID + "_" + base
}
