package archive

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/glorpus-work/woezel/pkg/errors"
	"github.com/glorpus-work/woezel/test/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readTree(t *testing.T, root string) map[string]string {
	t.Helper()
	files := map[string]string{}
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		files[filepath.ToSlash(rel)] = string(data)
		return nil
	})
	require.NoError(t, err)
	return files
}

func TestInstallArchive_PackageLayout(t *testing.T) {
	for _, compression := range []testutil.Compression{testutil.Gzip, testutil.RawDeflate} {
		name := map[testutil.Compression]string{testutil.Gzip: "gzip", testutil.RawDeflate: "raw deflate"}[compression]
		t.Run(name, func(t *testing.T) {
			tarball := testutil.PackageTarball(t, compression, "snake", "3", map[string]string{
				"__init__.py":     "import display\n",
				"lib/util.py":     "def f(): pass\n",
				"assets/icon.png": "\x89PNG",
			}, "depA", "depB")

			prefix := filepath.Join(t.TempDir(), "snake")
			res, err := NewInstaller(15, 0).InstallArchive(context.Background(), bytes.NewReader(tarball), prefix)
			require.NoError(t, err)

			assert.Equal(t, "depA\ndepB\n", string(res.Deps))
			assert.Equal(t, 3, res.Files)
			assert.Equal(t, map[string]string{
				"__init__.py":     "import display\n",
				"lib/util.py":     "def f(): pass\n",
				"assets/icon.png": "\x89PNG",
			}, readTree(t, prefix))
		})
	}
}

func TestInstallArchive_SkipsPackagingMetadata(t *testing.T) {
	tarball := testutil.BuildTarball(t, testutil.Gzip,
		testutil.Dir("pkgroot/"),
		testutil.File("pkgroot/setup.py", "setup()"),
		testutil.File("pkgroot/setup.cfg", "[metadata]"),
		testutil.File("pkgroot/PKG-INFO", "Name: pkg"),
		testutil.File("pkgroot/README.md", "# pkg"),
		testutil.File("pkgroot/README", "pkg"),
		testutil.File("pkgroot/pkg.egg-info/SOURCES.txt", "a.py"),
		testutil.File("pkgroot/toplevel.txt", "kept"),
		testutil.File("pkgroot/sub/setup.py", "nested setup is package code"),
		testutil.File("rootfile", "no slash maps to empty name"),
		testutil.Symlink("pkgroot/link.py", "toplevel.txt"),
	)

	prefix := t.TempDir()
	res, err := NewInstaller(0, 0).InstallArchive(context.Background(), bytes.NewReader(tarball), prefix)
	require.NoError(t, err)

	assert.Nil(t, res.Deps)
	assert.Equal(t, map[string]string{
		"toplevel.txt": "kept",
		"sub/setup.py": "nested setup is package code",
	}, readTree(t, prefix))
}

func TestInstallArchive_TopLevelRequires(t *testing.T) {
	tarball := testutil.BuildTarball(t, testutil.Gzip,
		testutil.File("pkgroot/requires.txt", "depA\n"),
		testutil.File("pkgroot/main.py", "print(1)"),
	)

	prefix := t.TempDir()
	res, err := NewInstaller(0, 0).InstallArchive(context.Background(), bytes.NewReader(tarball), prefix)
	require.NoError(t, err)

	assert.Equal(t, "depA\n", string(res.Deps))
	_, statErr := os.Stat(filepath.Join(prefix, "requires.txt"))
	assert.True(t, os.IsNotExist(statErr), "requires.txt is never written")
}

func TestInstallArchive_RequiresOutsideMetadataIsPackageFile(t *testing.T) {
	tarball := testutil.BuildTarball(t, testutil.Gzip,
		testutil.File("pkg-1.0/pkg.egg-info/requires.txt", "realdep\n"),
		testutil.File("pkg-1.0/fixtures/requires.txt", "not-a-dep\n"),
	)

	prefix := t.TempDir()
	res, err := NewInstaller(0, 0).InstallArchive(context.Background(), bytes.NewReader(tarball), prefix)
	require.NoError(t, err)

	assert.Equal(t, "realdep\n", string(res.Deps))
	assert.Equal(t, 1, res.Files)
	assert.Equal(t, map[string]string{"fixtures/requires.txt": "not-a-dep\n"}, readTree(t, prefix))
}

func TestInstallArchive_SmallChunksAndWindow(t *testing.T) {
	big := bytes.Repeat([]byte("0123456789abcdef"), 4096)
	tarball := testutil.BuildTarball(t, testutil.RawDeflate,
		testutil.File("pkg/big.bin", string(big)),
	)

	prefix := t.TempDir()
	in := NewInstaller(MinWindowBits, 7)
	_, err := in.InstallArchive(context.Background(), bytes.NewReader(tarball), prefix)
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(prefix, "big.bin"))
	require.NoError(t, err)
	assert.Equal(t, big, data)
}

func TestInstallArchive_RejectsTraversal(t *testing.T) {
	tests := []struct {
		name  string
		entry string
	}{
		{name: "parent escape", entry: "pkgroot/../evil.py"},
		{name: "deep escape", entry: "pkgroot/lib/../../../evil.py"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tarball := testutil.BuildTarball(t, testutil.Gzip, testutil.File(tt.entry, "boom"))
			base := t.TempDir()
			prefix := filepath.Join(base, "pkg")

			_, err := NewInstaller(0, 0).InstallArchive(context.Background(), bytes.NewReader(tarball), prefix)
			require.Error(t, err)
			assert.True(t, errors.Is(err, errors.ErrFilesystem), "got %v", err)

			_, statErr := os.Stat(filepath.Join(base, "evil.py"))
			assert.True(t, os.IsNotExist(statErr))
		})
	}
}

func TestInstallArchive_ParentIsFile(t *testing.T) {
	tarball := testutil.BuildTarball(t, testutil.Gzip, testutil.File("pkgroot/lib/util.py", "x"))
	prefix := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(prefix, "lib"), []byte("file"), 0o644))

	_, err := NewInstaller(0, 0).InstallArchive(context.Background(), bytes.NewReader(tarball), prefix)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrFilesystem), "got %v", err)
}

func TestInstallArchive_CorruptStreams(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{name: "empty", data: nil},
		{name: "broken gzip header", data: []byte{0x1f, 0x8b, 0x00}},
		{name: "not deflate", data: []byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewInstaller(0, 0).InstallArchive(context.Background(), bytes.NewReader(tt.data), t.TempDir())
			require.Error(t, err)
			assert.True(t, errors.Is(err, errors.ErrProtocol), "got %v", err)
		})
	}
}

func TestInstallArchive_ContextCancelled(t *testing.T) {
	tarball := testutil.BuildTarball(t, testutil.Gzip, testutil.File("pkgroot/a.py", "a"))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewInstaller(0, 0).InstallArchive(ctx, bytes.NewReader(tarball), t.TempDir())
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewInstaller_Clamps(t *testing.T) {
	tests := []struct {
		bits, chunk         int
		wantBits, wantChunk int
	}{
		{bits: 0, chunk: 0, wantBits: 15, wantChunk: 512},
		{bits: 4, chunk: 64, wantBits: 9, wantChunk: 64},
		{bits: 20, chunk: -1, wantBits: 15, wantChunk: 512},
		{bits: 13, chunk: 1024, wantBits: 13, wantChunk: 1024},
	}
	for _, tt := range tests {
		in := NewInstaller(tt.bits, tt.chunk)
		assert.Equal(t, tt.wantBits, in.WindowBits)
		assert.Equal(t, tt.wantChunk, in.ChunkSize)
	}
}

func TestWindowBitsFor(t *testing.T) {
	assert.Equal(t, 13, WindowBitsFor(32*1024))
	assert.Equal(t, 13, WindowBitsFor(LowMemoryThreshold))
	assert.Equal(t, 15, WindowBitsFor(LowMemoryThreshold+1))
	assert.Equal(t, 15, WindowBitsFor(0), "unknown memory uses the full window")
}

func TestEntryClassification(t *testing.T) {
	tests := []struct {
		raw      string
		stripped string
		meta     bool
		deps     bool
	}{
		{raw: "pkg-1.0/setup.py", stripped: "setup.py", meta: true},
		{raw: "pkg-1.0/PKG-INFO", stripped: "PKG-INFO", meta: true},
		{raw: "pkg-1.0/README.rst", stripped: "README.rst", meta: true},
		{raw: "pkg-1.0/pkg.egg-info/top_level.txt", stripped: "pkg.egg-info/top_level.txt", meta: true},
		{raw: "pkg-1.0/pkg.egg-info/requires.txt", stripped: "pkg.egg-info/requires.txt", meta: true, deps: true},
		{raw: "pkg-1.0/requires.txt", stripped: "requires.txt", deps: true},
		{raw: "pkg-1.0/fixtures/requires.txt", stripped: "fixtures/requires.txt"},
		{raw: "pkg-1.0/pkg/main.py", stripped: "pkg/main.py"},
		{raw: "./pkg-1.0/main.py", stripped: "main.py"},
		{raw: "toplevel", stripped: ""},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got := StripRoot(tt.raw)
			assert.Equal(t, tt.stripped, got)
			assert.Equal(t, tt.meta, IsMetadata(got))
			assert.Equal(t, tt.deps, IsDependencyFile(got))
		})
	}
}
