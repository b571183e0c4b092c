package domain

import (
	"testing"

	"github.com/mrkline/modman/internal/digest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfileOwnerDisjoint(t *testing.T) {
	p := &Profile{RootDirectory: "/root"}
	p.Add(ModManifest{
		SourceID: "mod1.zip",
		Files: map[string]FileRecord{
			"A.txt": {ModHash: digest.Digest{1}},
		},
	})

	owner, ok := p.Owner("A.txt")
	require.True(t, ok)
	assert.Equal(t, "mod1.zip", owner)

	_, ok = p.Owner("B.txt")
	assert.False(t, ok)
}

func TestProfileReplacePreservesOrder(t *testing.T) {
	p := &Profile{}
	p.Add(ModManifest{SourceID: "a"})
	p.Add(ModManifest{SourceID: "b"})
	p.Add(ModManifest{SourceID: "c"})

	p.Replace(ModManifest{SourceID: "b", Version: "2.0"})

	require.Len(t, p.Mods, 3)
	assert.Equal(t, "a", p.Mods[0].SourceID)
	assert.Equal(t, "b", p.Mods[1].SourceID)
	assert.Equal(t, "2.0", p.Mods[1].Version)
	assert.Equal(t, "c", p.Mods[2].SourceID)
}

func TestProfileRemove(t *testing.T) {
	p := &Profile{}
	p.Add(ModManifest{SourceID: "a"})
	p.Add(ModManifest{SourceID: "b"})

	p.Remove("a")

	assert.False(t, p.IsActive("a"))
	assert.True(t, p.IsActive("b"))
}

func TestSortedSourceIDs(t *testing.T) {
	p := &Profile{}
	p.Add(ModManifest{SourceID: "zeta.zip"})
	p.Add(ModManifest{SourceID: "alpha.zip"})

	assert.Equal(t, []string{"alpha.zip", "zeta.zip"}, p.SortedSourceIDs())
}
