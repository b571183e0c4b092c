package profilestore

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/mrkline/modman/internal/digest"
	"github.com/mrkline/modman/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	cwd := t.TempDir()

	p := &domain.Profile{
		RootDirectory: "/games/mygame",
		Mods: []domain.ModManifest{
			{
				SourceID: "mod1.zip",
				Version:  "1.0",
				Readme:   "a readme",
				Files: map[string]domain.FileRecord{
					"A.txt": {ModHash: digest.Digest{1}, OriginalHash: digest.Digest{2}, HasOriginal: true},
					"B.txt": {ModHash: digest.Digest{3}},
				},
			},
		},
	}

	require.NoError(t, Save(cwd, p))
	assert.True(t, Exists(cwd))

	loaded, err := Load(cwd)
	require.NoError(t, err)
	assert.Equal(t, p.RootDirectory, loaded.RootDirectory)
	require.Len(t, loaded.Mods, 1)
	assert.Equal(t, "mod1.zip", loaded.Mods[0].SourceID)
	assert.Equal(t, digest.Digest{1}, loaded.Mods[0].Files["A.txt"].ModHash)
	assert.True(t, loaded.Mods[0].Files["A.txt"].HasOriginal)
	assert.False(t, loaded.Mods[0].Files["B.txt"].HasOriginal)
}

func TestLoadMissingReturnsSentinel(t *testing.T) {
	cwd := t.TempDir()
	_, err := Load(cwd)
	assert.ErrorIs(t, err, domain.ErrProfileMissing)
}

func TestLoadRejectsUnknownFields(t *testing.T) {
	cwd := t.TempDir()
	content := "root_directory: /x\nbogus_field: true\nmods: []\n"
	require.NoError(t, os.WriteFile(Path(cwd), []byte(content), 0o644))

	_, err := Load(cwd)
	require.Error(t, err)
	var parseErr *domain.ProfileParseError
	require.ErrorAs(t, err, &parseErr)
}

func TestLoadRejectsMalformedDigest(t *testing.T) {
	cwd := t.TempDir()
	content := "root_directory: /x\nmods:\n  - source_id: mod1\n    version: \"1.0\"\n    readme: \"\"\n    files:\n      A.txt:\n        mod_hash: not-hex\n"
	require.NoError(t, os.WriteFile(Path(cwd), []byte(content), 0o644))

	_, err := Load(cwd)
	require.Error(t, err)
}

func TestSaveWritesAtomically(t *testing.T) {
	cwd := t.TempDir()
	p := &domain.Profile{RootDirectory: "/x"}
	require.NoError(t, Save(cwd, p))

	_, err := os.Stat(filepath.Join(cwd, fileName+".tmp"))
	assert.True(t, os.IsNotExist(err))
}
