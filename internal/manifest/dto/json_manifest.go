package dto

import (
	"github.com/Starkiller645/modtool/internal/model"
)

// JSONManifest is the manifest document served by the manifest service.
type JSONManifest struct {
	Profiles []JSONProfile `json:"profiles"`
}

// JSONProfile is one profile entry of the manifest document.
type JSONProfile struct {
	Meta JSONProfileMeta `json:"meta"`
	Mods []JSONMod       `json:"mods"`
}

// JSONProfileMeta holds the profile header fields. Loader is nil when the
// field is missing or null.
type JSONProfileMeta struct {
	Name    string            `json:"name"`
	Loader  *model.LoaderKind `json:"loader"`
	Version string            `json:"version"`
	ID      int               `json:"id"`
}

// JSONMod is one mod entry of a profile.
type JSONMod struct {
	Name     string         `json:"name"`
	URL      string         `json:"url"`
	Version  string         `json:"version"`
	Provider model.Provider `json:"provider"`
	Size     int64          `json:"size"`
}

// ToManifest converts the document to a model.Manifest.
func (jm *JSONManifest) ToManifest() *model.Manifest {
	m := &model.Manifest{Profiles: make([]model.Profile, 0, len(jm.Profiles))}
	for _, jp := range jm.Profiles {
		m.Profiles = append(m.Profiles, jp.ToProfile())
	}
	return m
}

// ToProfile converts the entry to a model.Profile.
func (jp *JSONProfile) ToProfile() model.Profile {
	mods := make([]model.ModRef, 0, len(jp.Mods))
	for _, jmod := range jp.Mods {
		mods = append(mods, model.ModRef{
			Name:     jmod.Name,
			URL:      jmod.URL,
			Version:  jmod.Version,
			Provider: jmod.Provider,
			Size:     jmod.Size,
		})
	}

	var loader model.LoaderKind
	if jp.Meta.Loader != nil {
		loader = *jp.Meta.Loader
	}

	return model.Profile{
		ID:          jp.Meta.ID,
		Name:        jp.Meta.Name,
		Loader:      loader,
		GameVersion: jp.Meta.Version,
		Mods:        mods,
	}
}
