package model

import (
	"fmt"
	"strings"
)

// LoaderKind identifies the mod loader a profile runs on.
type LoaderKind int

const (
	// LoaderFabric is the Fabric mod loader.
	LoaderFabric LoaderKind = iota

	// LoaderForge is the Minecraft Forge mod loader.
	LoaderForge
)

// String returns the manifest spelling of the loader ("Fabric" or "Forge").
func (k LoaderKind) String() string {
	switch k {
	case LoaderFabric:
		return "Fabric"
	case LoaderForge:
		return "Forge"
	default:
		return fmt.Sprintf("LoaderKind(%d)", int(k))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (k LoaderKind) MarshalText() ([]byte, error) {
	switch k {
	case LoaderFabric, LoaderForge:
		return []byte(k.String()), nil
	}
	return nil, fmt.Errorf("unknown loader kind %d", int(k))
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *LoaderKind) UnmarshalText(text []byte) error {
	kind, err := ParseLoaderKind(string(text))
	if err != nil {
		return err
	}
	*k = kind
	return nil
}

// ParseLoaderKind parses "Fabric" or "Forge", ignoring case.
func ParseLoaderKind(s string) (LoaderKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "fabric":
		return LoaderFabric, nil
	case "forge":
		return LoaderForge, nil
	}
	return 0, fmt.Errorf("unknown loader %q", s)
}

// Provider is the site a mod is distributed from.
type Provider int

const (
	ProviderUnknown Provider = iota
	ProviderCurseForge
	ProviderModrinth
	ProviderCreator
)

var providerNames = map[Provider]string{
	ProviderUnknown:    "Unknown",
	ProviderCurseForge: "CurseForge",
	ProviderModrinth:   "Modrinth",
	ProviderCreator:    "Creator",
}

// String returns the manifest spelling of the provider.
func (p Provider) String() string {
	if name, ok := providerNames[p]; ok {
		return name
	}
	return providerNames[ProviderUnknown]
}

// Label returns the human readable provider name shown to the operator.
func (p Provider) Label() string {
	if p == ProviderCreator {
		return "Creator's Website"
	}
	return p.String()
}

// MarshalText implements encoding.TextMarshaler.
func (p Provider) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. Unrecognized
// providers decode to ProviderUnknown rather than failing the manifest.
func (p *Provider) UnmarshalText(text []byte) error {
	*p = ProviderUnknown
	for provider, name := range providerNames {
		if strings.EqualFold(name, string(text)) {
			*p = provider
			break
		}
	}
	return nil
}

// ModRef describes a single content item to be fetched.
type ModRef struct {
	// Name is the display name of the mod.
	Name string

	// URL is where the mod jar is downloaded from. The final path
	// segment becomes the file name inside the mods directory.
	URL string

	// Version is the mod's own version string, for display only.
	Version string

	// Provider is the distribution site of the mod.
	Provider Provider

	// Size is the size declared by the manifest in bytes, 0 if not declared.
	Size int64
}

// Profile is a named configuration binding a game version, a mod loader
// and a list of mods to install.
type Profile struct {
	ID          int
	Name        string
	Loader      LoaderKind
	GameVersion string
	Mods        []ModRef
}

// Summary describes the profile's mod list in one line.
//
//	"No mods."
//	"Sodium"
//	"Sodium and 4 other mods"
func (p Profile) Summary() string {
	switch len(p.Mods) {
	case 0:
		return "No mods."
	case 1:
		return p.Mods[0].Name
	case 2:
		return p.Mods[0].Name + " and 1 other mod"
	default:
		return fmt.Sprintf("%s and %d other mods", p.Mods[0].Name, len(p.Mods)-1)
	}
}

// Manifest is the ordered collection of available profiles.
type Manifest struct {
	Profiles []Profile
}

// Lookup returns the profile with the given id and true. If no profile
// matches, the first profile is returned together with false; callers
// must not treat a miss as a failure signal but should report it.
//
// Lookup panics on an empty manifest. A loaded manifest always holds at
// least one profile.
func (m *Manifest) Lookup(id int) (Profile, bool) {
	for _, profile := range m.Profiles {
		if profile.ID == id {
			return profile, true
		}
	}
	return m.Profiles[0], false
}
