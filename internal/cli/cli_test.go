package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/glorpus-work/woezel/internal/logger"
	"github.com/glorpus-work/woezel/pkg/errors"
	"github.com/glorpus-work/woezel/pkg/hooks"
	"github.com/glorpus-work/woezel/pkg/transport"
	"github.com/glorpus-work/woezel/test/testutil"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupCLI points the commands at a fresh hatchery and install root.
func setupCLI(t *testing.T) (*testutil.Hatchery, string, string) {
	t.Helper()
	h := testutil.NewHatchery(t, "gameon")
	root := t.TempDir()
	configPath := h.WriteConfig(t, root)

	var logs bytes.Buffer
	logger.SetTestOutput(&logs)
	ConfigPath = &configPath
	transportOptions = []transport.Option{transport.WithTLSConfig(h.TLSConfig())}
	t.Cleanup(func() {
		ConfigPath = nil
		transportOptions = nil
		logger.UnsetTestOutput()
		logger.InitLogger("info", logger.FormatText)
	})
	return h, root, configPath
}

func execute(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func publishSnake(t *testing.T, h *testutil.Hatchery, version string) {
	h.Publish(t, testutil.Package{
		Name:        "snake",
		Version:     version,
		Description: "Classic snake game",
		Files:       map[string]string{"__init__.py": "import tail\n"},
		Deps:        []string{"tail"},
	})
	h.Publish(t, testutil.Package{
		Name:        "tail",
		Version:     "1",
		Description: "Linked segments",
		Files:       map[string]string{"__init__.py": ""},
	})
}

func TestInstallCommand(t *testing.T) {
	h, root, _ := setupCLI(t)
	publishSnake(t, h, "1")

	out, err := execute(t, NewInstallCmd(), "snake")
	require.NoError(t, err)

	assert.Contains(t, out, "Installing to: "+root)
	assert.Contains(t, out, "Installing snake rev. 1")
	assert.Contains(t, out, "Dependencies of snake: tail")
	assert.Contains(t, out, "Installing tail rev. 1")
	assert.FileExists(t, filepath.Join(root, "snake", "__init__.py"))
	assert.FileExists(t, filepath.Join(root, "tail", "version"))
}

func TestInstallCommand_AlreadyLatestAndForce(t *testing.T) {
	h, _, _ := setupCLI(t)
	publishSnake(t, h, "1")

	_, err := execute(t, NewInstallCmd(), "snake")
	require.NoError(t, err)

	_, err = execute(t, NewInstallCmd(), "snake")
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrAlreadyLatest)
	assert.Contains(t, err.Error(), "failed to install snake")

	_, err = execute(t, NewInstallCmd(), "--force", "snake", "tail")
	require.NoError(t, err)
}

func TestInstallCommand_Upgrade(t *testing.T) {
	h, root, _ := setupCLI(t)
	publishSnake(t, h, "1")
	_, err := execute(t, NewInstallCmd(), "tail")
	require.NoError(t, err)
	h.Publish(t, testutil.Package{Name: "tail", Version: "2", Files: map[string]string{"segments.py": ""}})

	out, err := execute(t, NewInstallCmd(), "tail")
	require.NoError(t, err)
	assert.Contains(t, out, "Removing previous rev. 1")
	assert.NoFileExists(t, filepath.Join(root, "tail", "__init__.py"))
	assert.FileExists(t, filepath.Join(root, "tail", "segments.py"))
}

func TestInstallCommand_ListFileAndPath(t *testing.T) {
	h, _, _ := setupCLI(t)
	publishSnake(t, h, "1")

	listFile := filepath.Join(t.TempDir(), "requirements.txt")
	require.NoError(t, os.WriteFile(listFile, []byte("# games\n\ntail\n"), 0o644))
	other := t.TempDir()

	out, err := execute(t, NewInstallCmd(), "-p", other, "-r", listFile)
	require.NoError(t, err)
	assert.Contains(t, out, "Installing to: "+other)
	assert.FileExists(t, filepath.Join(other, "tail", "version"))
	assert.NoDirExists(t, filepath.Join(other, "snake"))
}

func TestInstallCommand_NoPackagesShowsUsage(t *testing.T) {
	setupCLI(t)

	out, err := execute(t, NewInstallCmd())
	require.NoError(t, err)
	assert.Contains(t, out, "Usage:")
}

func TestInstallCommand_MissingPackage(t *testing.T) {
	setupCLI(t)

	_, err := execute(t, NewInstallCmd(), "ghost")
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrNotFound)
}

func TestInstallCommand_HooksDirectory(t *testing.T) {
	h, root, configPath := setupCLI(t)
	publishSnake(t, h, "1")

	dir := filepath.Join(filepath.Dir(configPath), "hooks")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	script := `
err := ""
if packageName == "tail" {
	err = "tail is not allowed"
}
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "pre-install.tengo"), []byte(script), 0o644))

	_, err := execute(t, NewInstallCmd(), "snake")
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrHookScript)
	assert.FileExists(t, filepath.Join(root, "snake", "version"))
	assert.NoDirExists(t, filepath.Join(root, "tail"))
}

func TestSearchCommand(t *testing.T) {
	h, _, _ := setupCLI(t)
	publishSnake(t, h, "3")

	out, err := execute(t, NewSearchCmd())
	require.NoError(t, err)
	assert.Contains(t, out, "snake\n  Slug:        snake\n  Version:     3\n  Description: Classic snake game\n")
	assert.Contains(t, out, "tail\n")

	out, err = execute(t, NewSearchCmd(), "sna")
	require.NoError(t, err)
	assert.Contains(t, out, "snake")
	assert.NotContains(t, out, "tail")

	out, err = execute(t, NewSearchCmd(), "zzz")
	require.NoError(t, err)
	assert.Contains(t, out, "No packages found matching 'zzz'")
}

func TestListCommand(t *testing.T) {
	h, root, _ := setupCLI(t)

	out, err := execute(t, NewListCmd())
	require.NoError(t, err)
	assert.Contains(t, out, "No packages installed")

	publishSnake(t, h, "1")
	_, err = execute(t, NewInstallCmd(), "snake")
	require.NoError(t, err)
	require.NoError(t, os.MkdirAll(filepath.Join(root, "manual"), 0o755))

	out, err = execute(t, NewListCmd())
	require.NoError(t, err)
	assert.Regexp(t, `manual\s+-`, out)
	assert.Regexp(t, `snake\s+1`, out)
	assert.Regexp(t, `tail\s+1`, out)

	out, err = execute(t, NewListCmd(), "--name", "sna")
	require.NoError(t, err)
	assert.Contains(t, out, "snake")
	assert.NotContains(t, out, "tail")

	publishSnake(t, h, "2")
	out, err = execute(t, NewListCmd(), "--check-updates")
	require.NoError(t, err)
	assert.Regexp(t, `snake\s+1\s+2\s+update available`, out)
	assert.Regexp(t, `tail\s+1\s+1\s+up to date`, out)
	assert.Regexp(t, `manual\s+-\s+-\s+unavailable`, out)
}

func TestConfigCommands(t *testing.T) {
	h, root, configPath := setupCLI(t)

	out, err := execute(t, NewConfigCmd(), "get", "index_host")
	require.NoError(t, err)
	assert.Equal(t, h.Host()+"\n", out)

	_, err = execute(t, NewConfigCmd(), "set", "basket", "troopers")
	require.NoError(t, err)
	out, err = execute(t, NewConfigCmd(), "get", "basket")
	require.NoError(t, err)
	assert.Equal(t, "troopers\n", out)

	_, err = execute(t, NewConfigCmd(), "set", "window_bits", "42")
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrConfigValidation)

	out, err = execute(t, NewConfigCmd(), "show")
	require.NoError(t, err)
	assert.Contains(t, out, "install_path")
	assert.Contains(t, out, root)
	assert.Contains(t, out, filepath.Join(filepath.Dir(configPath), "hooks"))

	_, err = execute(t, NewConfigCmd(), "init")
	require.Error(t, err)
	_, err = execute(t, NewConfigCmd(), "init", "--force")
	require.NoError(t, err)
	out, err = execute(t, NewConfigCmd(), "get", "basket")
	require.NoError(t, err)
	assert.Equal(t, "gameon\n", out)
}

func TestHookNewCommand(t *testing.T) {
	_, _, configPath := setupCLI(t)

	out, err := execute(t, NewHookCmd(), "new", string(hooks.PostInstall))
	require.NoError(t, err)
	path := filepath.Join(filepath.Dir(configPath), "hooks", "post-install.tengo")
	assert.Equal(t, path+"\n", out)
	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "Post-install hook")

	_, err = execute(t, NewHookCmd(), "new", string(hooks.PostInstall))
	assert.Error(t, err)
	_, err = execute(t, NewHookCmd(), "new", "--force", string(hooks.PostInstall))
	assert.NoError(t, err)

	_, err = execute(t, NewHookCmd(), "new", "post-remove")
	assert.ErrorIs(t, err, errors.ErrHookExecution)
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, NewVersionCmd())
	require.NoError(t, err)
	assert.Contains(t, out, "woezel version "+Version)
}

func TestReadPackageList(t *testing.T) {
	path := filepath.Join(t.TempDir(), "list.txt")
	require.NoError(t, os.WriteFile(path, []byte("# comment\nsnake\n\n  tail  \r\n#skipped\n"), 0o644))

	got, err := readPackageList(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"snake", "tail"}, got)

	_, err = readPackageList(filepath.Join(t.TempDir(), "missing.txt"))
	assert.Error(t, err)
}
