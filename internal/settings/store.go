package settings

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Operating styles.
const (
	StyleTakeaway   = "TAKEAWAY"
	StyleBar        = "BAR"
	StyleRestaurant = "RESTAURANT"
)

// Table is one restaurant table as placed by the layout editor; coordinates
// are pixels within the editor canvas. The id is what orders reference as
// table_id.
type Table struct {
	ID   string  `json:"id"`
	Name string  `json:"name"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	W    float64 `json:"w"`
	H    float64 `json:"h"`
}

// Settings is the persisted operating-mode configuration.
type Settings struct {
	// Legacy single style, kept for backward-compat reads.
	Style string `json:"style,omitempty"`

	EnabledStyles    []string  `json:"enabledStyles"`
	ActiveStyle      string    `json:"activeStyle"`
	RestaurantLayout []Table   `json:"restaurantLayout"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// Update carries partial changes; nil fields are left as they are.
type Update struct {
	Style            *string   `json:"style"`
	EnabledStyles    *[]string `json:"enabledStyles"`
	ActiveStyle      *string   `json:"activeStyle"`
	RestaurantLayout *[]Table  `json:"restaurantLayout"`
}

// Store reads and writes the settings.json file.
type Store struct {
	path string
	mu   sync.Mutex
}

func NewStore(dir string) *Store {
	return &Store{path: filepath.Join(dir, "settings.json")}
}

func defaults() Settings {
	now := time.Now()
	return Settings{
		Style:            StyleTakeaway,
		EnabledStyles:    []string{StyleTakeaway},
		ActiveStyle:      StyleTakeaway,
		RestaurantLayout: []Table{},
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}

// Read loads settings, normalizing legacy files. A missing or unreadable file
// yields the defaults.
func (s *Store) Read() Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read()
}

func (s *Store) read() Settings {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		return defaults()
	}
	var st Settings
	if err := json.Unmarshal(raw, &st); err != nil {
		return defaults()
	}
	normalize(&st)
	return st
}

// Write applies a partial update and persists the result.
func (s *Store) Write(u Update) (Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.read()
	if u.Style != nil && *u.Style != "" {
		// Legacy single-style writes collapse the multi-style fields.
		st.Style = *u.Style
		st.EnabledStyles = []string{*u.Style}
		st.ActiveStyle = *u.Style
	}
	if u.EnabledStyles != nil {
		st.EnabledStyles = dedupe(*u.EnabledStyles)
		if len(st.EnabledStyles) == 0 {
			st.EnabledStyles = []string{StyleTakeaway}
		}
	}
	if u.ActiveStyle != nil && *u.ActiveStyle != "" {
		st.ActiveStyle = *u.ActiveStyle
	}
	if u.RestaurantLayout != nil {
		layout := make([]Table, len(*u.RestaurantLayout))
		for i, t := range *u.RestaurantLayout {
			if t.ID == "" {
				t.ID = uuid.NewString()
			}
			layout[i] = t
		}
		st.RestaurantLayout = layout
	}
	normalize(&st)
	st.UpdatedAt = time.Now()

	raw, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return Settings{}, err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return Settings{}, fmt.Errorf("create settings dir: %w", err)
	}
	if err := os.WriteFile(s.path, raw, 0o644); err != nil {
		return Settings{}, fmt.Errorf("write settings: %w", err)
	}
	return st, nil
}

// normalize derives the multi-style fields from legacy files and keeps the
// active style a member of the enabled set.
func normalize(st *Settings) {
	if len(st.EnabledStyles) == 0 {
		if st.Style != "" {
			st.EnabledStyles = []string{st.Style}
		} else {
			st.EnabledStyles = []string{StyleTakeaway}
		}
	}
	if st.ActiveStyle == "" {
		st.ActiveStyle = st.EnabledStyles[0]
	}
	if !contains(st.EnabledStyles, st.ActiveStyle) {
		st.ActiveStyle = st.EnabledStyles[0]
	}
	if st.RestaurantLayout == nil {
		st.RestaurantLayout = []Table{}
	}
}

func contains(ss []string, v string) bool {
	for _, s := range ss {
		if s == v {
			return true
		}
	}
	return false
}

func dedupe(ss []string) []string {
	seen := make(map[string]bool, len(ss))
	out := make([]string, 0, len(ss))
	for _, s := range ss {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}
