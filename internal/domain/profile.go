package domain

import (
	"sort"

	"github.com/mrkline/modman/internal/digest"
)

// FileRecord tracks one file an activated mod installed: the digest of what
// it wrote, and the digest of whatever it displaced (if anything existed at
// that path before activation).
type FileRecord struct {
	ModHash      digest.Digest
	OriginalHash digest.Digest
	HasOriginal  bool // false means the file was newly added, not replaced
}

// ModManifest is the activation record for one installed mod.
type ModManifest struct {
	SourceID string // the identifier passed to `add`; the key used by `remove`
	Version  string
	Readme   string
	Files    map[string]FileRecord // mod-root-relative path -> record
}

// SortedPaths returns the manifest's file paths in ascending order, the
// order check/list reports require.
func (m ModManifest) SortedPaths() []string {
	paths := make([]string, 0, len(m.Files))
	for p := range m.Files {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Profile is the persistent record of a target directory's active mods.
// Mods is kept as an ordered slice (insertion order) rather than a map so
// the persisted document's ordering is stable and reproducible.
type Profile struct {
	RootDirectory string
	Mods          []ModManifest
}

// Get returns the manifest for sourceID, if active.
func (p *Profile) Get(sourceID string) (ModManifest, bool) {
	for _, m := range p.Mods {
		if m.SourceID == sourceID {
			return m, true
		}
	}
	return ModManifest{}, false
}

// IsActive reports whether sourceID already has an active manifest.
func (p *Profile) IsActive(sourceID string) bool {
	_, ok := p.Get(sourceID)
	return ok
}

// Owner returns the source identifier of the mod that currently owns path,
// if any mod does.
func (p *Profile) Owner(path string) (string, bool) {
	for _, m := range p.Mods {
		if _, ok := m.Files[path]; ok {
			return m.SourceID, true
		}
	}
	return "", false
}

// Add appends a new manifest. Callers must have already checked IsActive.
func (p *Profile) Add(m ModManifest) {
	p.Mods = append(p.Mods, m)
}

// Replace swaps in m for the manifest with the same source identifier,
// keeping its position; if none is active, m is appended.
func (p *Profile) Replace(m ModManifest) {
	for i, existing := range p.Mods {
		if existing.SourceID == m.SourceID {
			p.Mods[i] = m
			return
		}
	}
	p.Add(m)
}

// Remove drops the manifest for sourceID, used by `remove` once its files
// and backups have been dealt with.
func (p *Profile) Remove(sourceID string) {
	for i, m := range p.Mods {
		if m.SourceID == sourceID {
			p.Mods = append(p.Mods[:i], p.Mods[i+1:]...)
			return
		}
	}
}

// SortedSourceIDs returns the active mods' source identifiers in ascending
// order, the order the check report requires.
func (p *Profile) SortedSourceIDs() []string {
	ids := make([]string, 0, len(p.Mods))
	for _, m := range p.Mods {
		ids = append(ids, m.SourceID)
	}
	sort.Strings(ids)
	return ids
}
