// Package profilestore reads and writes modman.profile: the persistent
// record of a target tree's active mods and the files they installed. The
// decode is strict (yaml.v3's Decoder.KnownFields) since the profile is
// the committed record every engine trusts, and a silently-ignored typo
// in it would be a correctness bug rather than a cosmetic one.
package profilestore

import (
	"bytes"
	"os"
	"path/filepath"

	"github.com/mrkline/modman/internal/digest"
	"github.com/mrkline/modman/internal/domain"
	"gopkg.in/yaml.v3"
)

const fileName = "modman.profile"

type fileRecordYAML struct {
	ModHash      string `yaml:"mod_hash"`
	OriginalHash string `yaml:"original_hash,omitempty"`
}

type modManifestYAML struct {
	SourceID string                    `yaml:"source_id"`
	Version  string                    `yaml:"version"`
	Readme   string                    `yaml:"readme"`
	Files    map[string]fileRecordYAML `yaml:"files"`
}

type profileYAML struct {
	RootDirectory string            `yaml:"root_directory"`
	Mods          []modManifestYAML `yaml:"mods"`
}

// Path returns the absolute path to modman.profile inside cwd.
func Path(cwd string) string {
	return filepath.Join(cwd, fileName)
}

// Exists reports whether modman.profile is present in cwd.
func Exists(cwd string) bool {
	_, err := os.Stat(Path(cwd))
	return err == nil
}

// Load reads and parses modman.profile from cwd. A missing file is
// reported as domain.ErrProfileMissing; a malformed document as
// domain.ProfileParseError.
func Load(cwd string) (*domain.Profile, error) {
	data, err := os.ReadFile(Path(cwd))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, domain.ErrProfileMissing
		}
		return nil, &domain.IOError{Path: Path(cwd), Kind: "read", Err: err}
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var raw profileYAML
	if err := dec.Decode(&raw); err != nil {
		return nil, &domain.ProfileParseError{Err: err}
	}

	profile, err := fromYAML(raw)
	if err != nil {
		return nil, &domain.ProfileParseError{Err: err}
	}
	return profile, nil
}

// Save writes p to modman.profile inside cwd, atomically via
// write-to-temp-then-rename.
func Save(cwd string, p *domain.Profile) error {
	raw := toYAML(p)
	data, err := yaml.Marshal(&raw)
	if err != nil {
		return &domain.ProfileParseError{Err: err}
	}

	dst := Path(cwd)
	tmp := dst + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return &domain.IOError{Path: tmp, Kind: "write", Err: err}
	}
	if err := os.Rename(tmp, dst); err != nil {
		return &domain.IOError{Path: dst, Kind: "rename", Err: err}
	}
	return nil
}

func fromYAML(raw profileYAML) (*domain.Profile, error) {
	p := &domain.Profile{
		RootDirectory: raw.RootDirectory,
		Mods:          make([]domain.ModManifest, 0, len(raw.Mods)),
	}

	for _, m := range raw.Mods {
		manifest := domain.ModManifest{
			SourceID: m.SourceID,
			Version:  m.Version,
			Readme:   m.Readme,
			Files:    make(map[string]domain.FileRecord, len(m.Files)),
		}
		for path, fr := range m.Files {
			record := domain.FileRecord{}
			modHash, err := digest.Parse(fr.ModHash)
			if err != nil {
				return nil, err
			}
			record.ModHash = modHash
			if fr.OriginalHash != "" {
				originalHash, err := digest.Parse(fr.OriginalHash)
				if err != nil {
					return nil, err
				}
				record.OriginalHash = originalHash
				record.HasOriginal = true
			}
			manifest.Files[path] = record
		}
		p.Mods = append(p.Mods, manifest)
	}

	return p, nil
}

func toYAML(p *domain.Profile) profileYAML {
	raw := profileYAML{
		RootDirectory: p.RootDirectory,
		Mods:          make([]modManifestYAML, 0, len(p.Mods)),
	}

	for _, m := range p.Mods {
		entry := modManifestYAML{
			SourceID: m.SourceID,
			Version:  m.Version,
			Readme:   m.Readme,
			Files:    make(map[string]fileRecordYAML, len(m.Files)),
		}
		for path, fr := range m.Files {
			y := fileRecordYAML{ModHash: fr.ModHash.String()}
			if fr.HasOriginal {
				y.OriginalHash = fr.OriginalHash.String()
			}
			entry.Files[path] = y
		}
		raw.Mods = append(raw.Mods, entry)
	}

	return raw
}
