package fsutil

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// CopyChunked copies src to dst through buf, so at most len(buf) bytes of file
// content are held in memory at any time. A nil or empty buf falls back to
// DefaultChunkSize.
func CopyChunked(dst io.Writer, src io.Reader, buf []byte) (int64, error) {
	if len(buf) == 0 {
		buf = make([]byte, DefaultChunkSize)
	}
	var written int64
	for {
		n, readErr := src.Read(buf)
		if n > 0 {
			w, err := dst.Write(buf[:n])
			written += int64(w)
			if err != nil {
				return written, err
			}
			if w != n {
				return written, io.ErrShortWrite
			}
		}
		if errors.Is(readErr, io.EOF) {
			return written, nil
		}
		if readErr != nil {
			return written, readErr
		}
	}
}

// SaveFile creates (or truncates) name and streams src into it in chunks of buf.
func SaveFile(name string, src io.Reader, buf []byte) error {
	out, err := CreateFilePerm(name, FileModeDefault)
	if err != nil {
		return fmt.Errorf("failed to create file %s: %w", name, err)
	}
	if _, err := CopyChunked(out, src, buf); err != nil {
		_ = out.Close()
		return fmt.Errorf("failed to write file %s: %w", name, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("failed to close file %s: %w", name, err)
	}
	return nil
}

// WriteFileAtomic writes data to a temporary sibling of path and renames it into
// place. The temporary file is removed on every failure path.
func WriteFileAtomic(path string, data []byte, perm os.FileMode) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+"-*.tmp")
	if err != nil {
		return fmt.Errorf("could not create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("could not write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("could not close temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, perm); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("could not set permissions: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("could not move %s into place: %w", path, err)
	}
	return nil
}

// CreateFilePerm creates a new file with the specified permissions.
func CreateFilePerm(name string, perm os.FileMode) (*os.File, error) {
	return os.OpenFile(name, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
}
