package launcher

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Starkiller645/modtool/internal/model"
)

// LastUsedNever is the lastUsed value of a profile that was never launched.
const LastUsedNever = "1970-01-01T00:00:00.000Z"

// timeLayout is the timestamp format the launcher writes.
const timeLayout = "2006-01-02T15:04:05.000Z"

// documentVersion is written into newly created configuration files.
const documentVersion = 3

// Profile is a launcher profile entry as stored in launcher_profiles.json.
type Profile struct {
	Created       string `json:"created"`
	Icon          string `json:"icon,omitempty"`
	JavaArgs      string `json:"javaArgs,omitempty"`
	LastUsed      string `json:"lastUsed"`
	LastVersionID string `json:"lastVersionId"`
	Name          string `json:"name"`
	Type          string `json:"type"`
}

// Entry describes the profile to register.
type Entry struct {
	Loader      model.LoaderKind
	GameVersion string
	ProfileID   int

	// Name is the display name shown in the launcher.
	Name string

	// VersionID is the installed loader version the profile launches.
	VersionID string

	JavaArgs string

	// Icon is a data URI.
	Icon string
}

// Key returns the profiles map key for the entry.
func (e Entry) Key() string {
	return Key(e.Loader, e.GameVersion, e.ProfileID)
}

// Key is the idempotency key of a registration: one launcher profile per
// loader, game version and manifest profile.
func Key(loader model.LoaderKind, gameVersion string, profileID int) string {
	return fmt.Sprintf("modtool-%s-%s-%d", strings.ToLower(loader.String()), gameVersion, profileID)
}

// Writer adds profiles to the launcher's configuration file.
type Writer struct {
	path string
	now  func() time.Time
	log  *slog.Logger
}

// NewWriter creates a Writer for the launcher_profiles.json at path.
func NewWriter(path string, logger *slog.Logger) *Writer {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Writer{path: path, now: time.Now, log: logger}
}

// Register inserts e unless a profile with the same key already exists.
// It reports whether the file was changed. Every other field of the
// document, known or not, is written back untouched.
func (w *Writer) Register(e Entry) (bool, error) {
	doc, err := w.read()
	if err != nil {
		return false, err
	}

	profiles := map[string]json.RawMessage{}
	if raw, ok := doc["profiles"]; ok && string(raw) != "null" {
		if err := json.Unmarshal(raw, &profiles); err != nil {
			return false, fmt.Errorf("parsing profiles in %s: %w", w.path, err)
		}
	}

	key := e.Key()
	if _, ok := profiles[key]; ok {
		w.log.Info("launcher profile already registered", "key", key)
		return false, nil
	}

	entry, err := json.Marshal(Profile{
		Created:       w.now().UTC().Format(timeLayout),
		Icon:          e.Icon,
		JavaArgs:      e.JavaArgs,
		LastUsed:      LastUsedNever,
		LastVersionID: e.VersionID,
		Name:          e.Name,
		Type:          "custom",
	})
	if err != nil {
		return false, err
	}
	profiles[key] = entry

	if doc["profiles"], err = json.Marshal(profiles); err != nil {
		return false, err
	}
	if err := w.write(doc); err != nil {
		return false, err
	}

	w.log.Info("registered launcher profile", "key", key, "version_id", e.VersionID)
	return true, nil
}

// Profiles returns the decoded profiles of the configuration file.
func (w *Writer) Profiles() (map[string]Profile, error) {
	doc, err := w.read()
	if err != nil {
		return nil, err
	}

	profiles := map[string]Profile{}
	if raw, ok := doc["profiles"]; ok {
		if err := json.Unmarshal(raw, &profiles); err != nil {
			return nil, fmt.Errorf("parsing profiles in %s: %w", w.path, err)
		}
	}
	return profiles, nil
}

// read loads the document, or an empty one if the file does not exist.
func (w *Writer) read() (map[string]json.RawMessage, error) {
	data, err := os.ReadFile(w.path)
	if errors.Is(err, os.ErrNotExist) {
		return map[string]json.RawMessage{
			"profiles": json.RawMessage(`{}`),
			"settings": json.RawMessage(`{}`),
			"version":  json.RawMessage(fmt.Sprint(documentVersion)),
		}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", w.path, err)
	}

	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", w.path, err)
	}
	if doc == nil {
		doc = map[string]json.RawMessage{}
	}
	return doc, nil
}

// write replaces the file through a temporary file in the same directory.
func (w *Writer) write(doc map[string]json.RawMessage) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(w.path), 0755); err != nil {
		return err
	}
	tmp := w.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, w.path)
}
