package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chdir switches the test process into dir and restores the original
// working directory on cleanup, since every modman command resolves its
// profile relative to os.Getwd().
func chdir(t *testing.T, dir string) {
	t.Helper()
	orig, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() {
		require.NoError(t, os.Chdir(orig))
	})
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func buildModSource(t *testing.T, dir, version string, files map[string]string) string {
	t.Helper()
	writeFile(t, filepath.Join(dir, "README.txt"), "a readme")
	writeFile(t, filepath.Join(dir, "VERSION.txt"), version)
	for p, content := range files {
		writeFile(t, filepath.Join(dir, "ModRoot", p), content)
	}
	return dir
}

func TestInitCmd_CreatesProfileAndBackupStore(t *testing.T) {
	cwd := t.TempDir()
	root := t.TempDir()
	chdir(t, cwd)

	initRoot = root
	require.NoError(t, runInit(initCmd, nil))

	assert.FileExists(t, filepath.Join(cwd, "modman.profile"))
	assert.DirExists(t, filepath.Join(cwd, "modman-backup", "originals"))
	assert.DirExists(t, filepath.Join(cwd, "modman-backup", "temp"))
}

func TestInitCmd_FailsIfProfileExists(t *testing.T) {
	cwd := t.TempDir()
	root := t.TempDir()
	chdir(t, cwd)

	initRoot = root
	require.NoError(t, runInit(initCmd, nil))

	err := runInit(initCmd, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "A profile already exists.")
}

func TestInitCmd_FailsIfBackupDirPresentButProfileMissing(t *testing.T) {
	cwd := t.TempDir()
	root := t.TempDir()
	chdir(t, cwd)

	initRoot = root
	require.NoError(t, runInit(initCmd, nil))
	require.NoError(t, os.Remove(filepath.Join(cwd, "modman.profile")))

	err := runInit(initCmd, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Please move or remove it.")
}

func TestAddCheckRemove_RoundTrip(t *testing.T) {
	cwd := t.TempDir()
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "A.txt"), "original A")
	chdir(t, cwd)

	initRoot = root
	require.NoError(t, runInit(initCmd, nil))

	modDir := buildModSource(t, t.TempDir(), "1.0", map[string]string{
		"A.txt": "modded A",
		"B.txt": "modded B",
	})
	require.NoError(t, runAdd(addCmd, []string{modDir}))

	got, err := os.ReadFile(filepath.Join(root, "A.txt"))
	require.NoError(t, err)
	assert.Equal(t, "modded A", string(got))

	require.NoError(t, runCheck(checkCmd, nil))

	require.NoError(t, runRemove(removeCmd, []string{modDir}))

	got, err = os.ReadFile(filepath.Join(root, "A.txt"))
	require.NoError(t, err)
	assert.Equal(t, "original A", string(got))

	_, err = os.Stat(filepath.Join(root, "B.txt"))
	assert.True(t, os.IsNotExist(err))
}

func TestListCmd_NoActiveMods(t *testing.T) {
	cwd := t.TempDir()
	root := t.TempDir()
	chdir(t, cwd)

	initRoot = root
	require.NoError(t, runInit(initCmd, nil))

	require.NoError(t, runList(listCmd, nil))
}

func TestRepairCmd_NoJournalIsANoop(t *testing.T) {
	cwd := t.TempDir()
	root := t.TempDir()
	chdir(t, cwd)

	initRoot = root
	require.NoError(t, runInit(initCmd, nil))

	require.NoError(t, runRepair(repairCmd, nil))
}
