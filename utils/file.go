// utils/file.go
package utils

import (
	"context"
	"os"
	"path/filepath"
)

// DirSink writes objects as files under Root.
type DirSink struct {
	Root string
}

// Put writes data to Root/key through a temporary file and returns the
// final path.
func (d DirSink) Put(_ context.Context, key string, data []byte, _ string) (string, error) {
	dest := filepath.Join(d.Root, filepath.FromSlash(key))
	// ✅ Ensure the directory for the destination file exists
	if err := os.MkdirAll(filepath.Dir(dest), os.ModePerm); err != nil {
		return "", err
	}

	tmp, err := os.CreateTemp(filepath.Dir(dest), ".snapshot-*")
	if err != nil {
		return "", err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return "", err
	}
	if err := tmp.Close(); err != nil {
		return "", err
	}
	if err := os.Rename(tmp.Name(), dest); err != nil {
		return "", err
	}
	return dest, nil
}
