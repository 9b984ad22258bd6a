package testutil

import (
	"bytes"
	"context"
	"io/fs"
	"path"
	"testing"
	"time"

	"github.com/klauspost/compress/flate"
	"github.com/mholt/archives"
)

// Compression selects how BuildTarball wraps the tar stream.
type Compression int

const (
	Gzip Compression = iota
	RawDeflate
)

// Entry is one member of a generated tarball.
type Entry struct {
	Name       string
	Body       string
	Mode       fs.FileMode // defaults to 0o644 for files
	LinkTarget string
}

// Dir returns a directory entry.
func Dir(name string) Entry {
	return Entry{Name: name, Mode: fs.ModeDir | 0o755}
}

// File returns a regular file entry.
func File(name, body string) Entry {
	return Entry{Name: name, Body: body}
}

// Symlink returns a symbolic link entry.
func Symlink(name, target string) Entry {
	return Entry{Name: name, Mode: fs.ModeSymlink | 0o777, LinkTarget: target}
}

// BuildTarball builds an in-memory tarball with the given entries in order.
// Entry names are written verbatim, including unsafe ones.
func BuildTarball(t testing.TB, compression Compression, entries ...Entry) []byte {
	t.Helper()

	files := make([]archives.FileInfo, 0, len(entries))
	for _, e := range entries {
		info := newMemInfo(e)
		body := []byte(e.Body)
		files = append(files, archives.FileInfo{
			FileInfo:      info,
			NameInArchive: e.Name,
			LinkTarget:    e.LinkTarget,
			Open: func() (fs.File, error) {
				return &memFile{Reader: bytes.NewReader(body), info: info}, nil
			},
		})
	}

	var buf bytes.Buffer
	ctx := context.Background()
	switch compression {
	case Gzip:
		format := archives.CompressedArchive{
			Compression: archives.Gz{},
			Archival:    archives.Tar{},
		}
		if err := format.Archive(ctx, &buf, files); err != nil {
			t.Fatalf("building tar.gz: %v", err)
		}
	case RawDeflate:
		fw, err := flate.NewWriter(&buf, flate.BestCompression)
		if err != nil {
			t.Fatalf("creating deflate writer: %v", err)
		}
		if err := (archives.Tar{}).Archive(ctx, fw, files); err != nil {
			t.Fatalf("building tar: %v", err)
		}
		if err := fw.Close(); err != nil {
			t.Fatalf("closing deflate writer: %v", err)
		}
	default:
		t.Fatalf("unknown compression %d", compression)
	}
	return buf.Bytes()
}

// PackageTarball lays out a tarball the way the index serves packages: a
// <name>-<version>/ root holding the package files, packaging metadata and an
// egg-info directory carrying requires.txt when deps are given.
func PackageTarball(t testing.TB, compression Compression, name, version string, files map[string]string, deps ...string) []byte {
	t.Helper()

	root := name + "-" + version + "/"
	entries := []Entry{
		Dir(root),
		File(root+"setup.py", "from setuptools import setup\nsetup(name='"+name+"')\n"),
		File(root+"PKG-INFO", "Name: "+name+"\nVersion: "+version+"\n"),
		Dir(root + name + ".egg-info/"),
		File(root+name+".egg-info/PKG-INFO", "Name: "+name+"\n"),
	}
	if len(deps) > 0 {
		var reqs bytes.Buffer
		for _, d := range deps {
			reqs.WriteString(d)
			reqs.WriteByte('\n')
		}
		entries = append(entries, File(root+name+".egg-info/requires.txt", reqs.String()))
	}
	for _, rel := range sortedKeys(files) {
		entries = append(entries, File(root+rel, files[rel]))
	}
	return BuildTarball(t, compression, entries...)
}

type memInfo struct {
	name string
	size int64
	mode fs.FileMode
}

func newMemInfo(e Entry) memInfo {
	mode := e.Mode
	if mode == 0 {
		mode = 0o644
	}
	return memInfo{name: path.Base(e.Name), size: int64(len(e.Body)), mode: mode}
}

func (m memInfo) Name() string       { return m.name }
func (m memInfo) Size() int64        { return m.size }
func (m memInfo) Mode() fs.FileMode  { return m.mode }
func (m memInfo) ModTime() time.Time { return time.Unix(1700000000, 0) }
func (m memInfo) IsDir() bool        { return m.mode.IsDir() }
func (m memInfo) Sys() any           { return nil }

type memFile struct {
	*bytes.Reader
	info memInfo
}

func (f *memFile) Stat() (fs.FileInfo, error) { return f.info, nil }
func (f *memFile) Close() error               { return nil }
