package manifest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/Starkiller645/modtool/internal/manifest/dto"
	"github.com/Starkiller645/modtool/internal/model"
)

// ErrInvalidManifest is returned for documents that cannot be used to
// drive an installation.
var ErrInvalidManifest = errors.New("invalid manifest")

// Getter fetches a URL body. *http.Client satisfies it.
type Getter interface {
	Get(ctx context.Context, url string) ([]byte, error)
}

// Load decodes raw manifest bytes. The result always holds at least one
// profile.
func Load(raw []byte) (*model.Manifest, error) {
	var doc dto.JSONManifest
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidManifest, err)
	}

	if len(doc.Profiles) == 0 {
		return nil, fmt.Errorf("%w: no profiles", ErrInvalidManifest)
	}

	seen := make(map[int]bool, len(doc.Profiles))
	for _, p := range doc.Profiles {
		if p.Meta.Loader == nil {
			return nil, fmt.Errorf("%w: profile %d has no loader", ErrInvalidManifest, p.Meta.ID)
		}
		if strings.TrimSpace(p.Meta.Version) == "" {
			return nil, fmt.Errorf("%w: profile %d has no game version", ErrInvalidManifest, p.Meta.ID)
		}
		if seen[p.Meta.ID] {
			return nil, fmt.Errorf("%w: duplicate profile id %d", ErrInvalidManifest, p.Meta.ID)
		}
		seen[p.Meta.ID] = true
	}

	return doc.ToManifest(), nil
}

// Fetch downloads and decodes the manifest at url.
func Fetch(ctx context.Context, client Getter, url string) (*model.Manifest, error) {
	body, err := client.Get(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("fetching manifest: %w", err)
	}
	return Load(body)
}
