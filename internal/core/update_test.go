package core

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/mrkline/modman/internal/domain"
	"github.com/mrkline/modman/internal/modsource"
	"github.com/mrkline/modman/internal/storage/profilestore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resolverFor(modDirs map[string]string) SourceResolver {
	return func(sourceID string) (modsource.Source, error) {
		return modsource.New(modDirs[sourceID])
	}
}

func TestUpdateRebasesDriftedFile(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "B.txt"), "original B")
	svc, cwd := newTestService(t, root)

	modDir := buildModSource(t, t.TempDir(), "1.0", map[string]string{"B.txt": "mod B"})
	src, err := modsource.New(modDir)
	require.NoError(t, err)
	require.NoError(t, svc.Add("mod1.zip", src))

	writeFile(t, filepath.Join(root, "B.txt"), "externally updated B")

	require.NoError(t, svc.Update(resolverFor(map[string]string{"mod1.zip": modDir})))

	data, err := os.ReadFile(filepath.Join(root, "B.txt"))
	require.NoError(t, err)
	assert.Equal(t, "mod B", string(data))

	p, err := profilestore.Load(cwd)
	require.NoError(t, err)
	m, _ := p.Get("mod1.zip")
	assert.True(t, m.Files["B.txt"].HasOriginal)

	restoredBackupHash, err := svc.Store.ReadBackupHash("B.txt")
	require.NoError(t, err)
	assert.Equal(t, m.Files["B.txt"].OriginalHash, restoredBackupHash)
}

func TestUpdateNoOpWhenUnchanged(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "A.txt"), "original A")
	svc, cwd := newTestService(t, root)

	modDir := buildModSource(t, t.TempDir(), "1.0", map[string]string{"A.txt": "mod A"})
	src, err := modsource.New(modDir)
	require.NoError(t, err)
	require.NoError(t, svc.Add("mod1.zip", src))

	before, err := profilestore.Load(cwd)
	require.NoError(t, err)

	require.NoError(t, svc.Update(resolverFor(map[string]string{"mod1.zip": modDir})))

	after, err := profilestore.Load(cwd)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestUpdateFailsOnVersionMismatch(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "A.txt"), "original A")
	svc, _ := newTestService(t, root)

	modDir := buildModSource(t, t.TempDir(), "1.0", map[string]string{"A.txt": "mod A"})
	src, err := modsource.New(modDir)
	require.NoError(t, err)
	require.NoError(t, svc.Add("mod1.zip", src))

	writeFile(t, filepath.Join(modDir, "VERSION.txt"), "2.0")

	err = svc.Update(resolverFor(map[string]string{"mod1.zip": modDir}))
	require.Error(t, err)
	var mismatch *domain.VersionMismatchError
	require.ErrorAs(t, err, &mismatch)
}
