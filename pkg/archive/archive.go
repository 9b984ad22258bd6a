// Package archive streams a compressed package tarball straight into the
// install tree without staging it on disk.
package archive

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/glorpus-work/woezel/internal/logger"
	"github.com/glorpus-work/woezel/pkg/errors"
	"github.com/glorpus-work/woezel/pkg/fsutil"
	"github.com/klauspost/compress/flate"
	"github.com/mholt/archives"
)

const (
	MinWindowBits     = 9
	MaxWindowBits     = 15
	LowMemWindowBits  = 13
	DefaultWindowBits = MaxWindowBits

	// LowMemoryThreshold is the free-memory figure at or below which the
	// smaller decompression window is used.
	LowMemoryThreshold = 64 * 1024

	dependencyFile = "requires.txt"
)

var gzipMagic = []byte{0x1f, 0x8b}

// WindowBitsFor picks the decompression window for the given amount of memory.
func WindowBitsFor(memoryBytes int64) int {
	if memoryBytes > 0 && memoryBytes <= LowMemoryThreshold {
		return LowMemWindowBits
	}
	return DefaultWindowBits
}

// Result carries what an install captured besides the written files.
type Result struct {
	// Deps is the raw content of the package's requires.txt, nil if absent.
	Deps []byte
	// Files counts the regular files written.
	Files int
}

// Installer extracts package archives under a destination prefix.
//
// WindowBits sizes the read buffer between the inflater and the tar reader.
// It does not bound the inflater's history window, which stays at 32 KiB for
// both gzip and raw deflate, so a smaller value lowers buffering only.
type Installer struct {
	WindowBits int
	ChunkSize  int
}

// NewInstaller returns an Installer with out-of-range settings clamped.
func NewInstaller(windowBits, chunkSize int) *Installer {
	switch {
	case windowBits == 0:
		windowBits = DefaultWindowBits
	case windowBits < MinWindowBits:
		windowBits = MinWindowBits
	case windowBits > MaxWindowBits:
		windowBits = MaxWindowBits
	}
	if chunkSize <= 0 {
		chunkSize = fsutil.DefaultChunkSize
	}
	return &Installer{WindowBits: windowBits, ChunkSize: chunkSize}
}

// InstallArchive decompresses r, walks the tarball inside and writes every
// package file below prefix. Packaging metadata is never written; the
// dependency list is returned in Result.Deps.
func (in *Installer) InstallArchive(ctx context.Context, r io.Reader, prefix string) (Result, error) {
	inflated, err := in.decompress(r)
	if err != nil {
		return Result{}, err
	}
	defer inflated.Close()

	window := bufio.NewReaderSize(inflated, 1<<in.windowBits())
	chunk := make([]byte, in.chunkSize())

	var res Result
	err = archives.Tar{}.Extract(ctx, window, func(ctx context.Context, f archives.FileInfo) error {
		return in.handleEntry(f, prefix, chunk, &res)
	})
	if err != nil {
		if ctx.Err() != nil || errors.KindOf(err) != errors.KindUnknown {
			return res, err
		}
		return res, errors.Join(errors.ErrProtocol, fmt.Errorf("reading archive: %w", err))
	}

	logger.Debug("archive installed", logger.Fields{"prefix": prefix, "files": res.Files, "has_deps": res.Deps != nil})
	return res, nil
}

// decompress detects a gzip member by its magic bytes and otherwise treats
// the stream as raw deflate.
func (in *Installer) decompress(r io.Reader) (io.ReadCloser, error) {
	br := bufio.NewReader(r)
	magic, err := br.Peek(len(gzipMagic))
	if err != nil && len(magic) == 0 {
		return nil, errors.Join(errors.ErrProtocol, fmt.Errorf("empty archive stream: %w", err))
	}

	if bytes.Equal(magic, gzipMagic) {
		rc, err := archives.Gz{}.OpenReader(br)
		if err != nil {
			return nil, errors.Join(errors.ErrProtocol, fmt.Errorf("opening gzip stream: %w", err))
		}
		return rc, nil
	}
	return flate.NewReader(br), nil
}

func (in *Installer) handleEntry(f archives.FileInfo, prefix string, chunk []byte, res *Result) error {
	name := StripRoot(f.NameInArchive)

	if IsDependencyFile(name) {
		if !f.Mode().IsRegular() {
			return nil
		}
		deps, err := readEntry(f)
		if err != nil {
			return errors.Join(errors.ErrProtocol, fmt.Errorf("reading %s: %w", f.NameInArchive, err))
		}
		res.Deps = deps
		return nil
	}
	if name == "" || IsMetadata(name) || !f.Mode().IsRegular() {
		return nil
	}

	target, ok := fsutil.WithinDir(prefix, name)
	if !ok {
		return errors.Kindf(errors.ErrFilesystem, "archive entry %q escapes %s", f.NameInArchive, prefix)
	}
	if _, err := fsutil.MakeParentDirs(target); err != nil {
		return errors.Join(errors.ErrFilesystem, err)
	}

	src, err := f.Open()
	if err != nil {
		return errors.Join(errors.ErrProtocol, err)
	}
	defer src.Close()

	if err := fsutil.SaveFile(target, src, chunk); err != nil {
		return errors.Join(errors.ErrFilesystem, err)
	}
	res.Files++
	return nil
}

func readEntry(f archives.FileInfo) ([]byte, error) {
	src, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer src.Close()

	var buf bytes.Buffer
	if _, err := fsutil.CopyChunked(&buf, src, nil); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// StripRoot removes the leading path component of an archive entry name. A
// name without a slash maps to "".
func StripRoot(name string) string {
	name = strings.TrimPrefix(name, "./")
	_, rest, found := strings.Cut(name, "/")
	if !found {
		return ""
	}
	return rest
}

// IsMetadata reports whether a stripped entry name is packaging metadata that
// must not be installed.
func IsMetadata(name string) bool {
	return strings.HasPrefix(name, "setup.") ||
		strings.HasPrefix(name, "PKG-INFO") ||
		strings.HasPrefix(name, "README") ||
		strings.Contains(name, ".egg-info")
}

// IsDependencyFile reports whether a stripped entry name is the dependency
// list: a top-level requires.txt or one inside skipped packaging metadata.
// A requires.txt anywhere else is an ordinary package file.
func IsDependencyFile(name string) bool {
	if name == dependencyFile {
		return true
	}
	return IsMetadata(name) && strings.HasSuffix(name, "/"+dependencyFile)
}

func (in *Installer) windowBits() int {
	if in.WindowBits < MinWindowBits || in.WindowBits > MaxWindowBits {
		return DefaultWindowBits
	}
	return in.WindowBits
}

func (in *Installer) chunkSize() int {
	if in.ChunkSize <= 0 {
		return fsutil.DefaultChunkSize
	}
	return in.ChunkSize
}
