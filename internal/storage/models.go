package storage

import (
	"encoding/json"
	"time"
)

// Timestamps are stored as RFC3339 UTC strings, matching what the registry and
// project stores persist in their TEXT columns.

// NowISO returns the current UTC time in RFC3339.
func NowISO() string {
	return time.Now().UTC().Format(time.RFC3339)
}

// Project is a registry row: one independent campaign workspace.
type Project struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Path      string `json:"path"`
	System    string `json:"system"`
	CreatedAt string `json:"created_at"`
}

// GameSystems is the closed set of game-system tags a project may carry.
var GameSystems = []string{"generic", "dnd5e", "vtm", "cyberpunk", "wh40k_rt"}

// Map is an image-backed canvas node in a per-project parent/child forest.
type Map struct {
	ID          string  `json:"id"`
	ProjectID   string  `json:"project_id"`
	ParentMapID *string `json:"parent_map_id"`
	Title       string  `json:"title"`
	Filename    string  `json:"filename"` // relative to the project root
	Version     int64   `json:"version"`
	CreatedAt   string  `json:"created_at"`
	UpdatedAt   string  `json:"updated_at"`
}

// Marker link types. The empty string means no link.
const (
	LinkNone = ""
	LinkNote = "note"
	LinkMap  = "map"
)

// MarkerTypes is the closed set of marker categories.
var MarkerTypes = []string{"location", "event", "character", "area"}

// Point is a polygon vertex in normalized map coordinates.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Marker is a point or polygon annotation on exactly one map, optionally
// carrying an exclusive link to a note or another map.
type Marker struct {
	ID          string          `json:"id"`
	MapID       string          `json:"map_id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	X           float64         `json:"x"`
	Y           float64         `json:"y"`
	Points      []Point         `json:"points,omitempty"`
	Style       json.RawMessage `json:"style,omitempty"`
	MarkerType  string          `json:"marker_type"`
	Color       string          `json:"color"`
	Icon        string          `json:"icon"`
	LinkType    string          `json:"link_type"`
	LinkNoteID  string          `json:"link_note_id"`
	LinkMapID   string          `json:"link_map_id"`
	Version     int64           `json:"version"`
	CreatedAt   string          `json:"created_at"`
	UpdatedAt   string          `json:"updated_at"`
}

// NoteTypes is the set of note content kinds.
var NoteTypes = []string{"md", "txt"}

// Note is metadata for a body file stored under the project's notes/ subtree.
// The file exists exactly as long as the row does.
type Note struct {
	ID        string `json:"id"`
	ProjectID string `json:"project_id"`
	Title     string `json:"title"`
	Path      string `json:"path"` // relative, e.g. notes/boss-notes-<id>.md
	Type      string `json:"type"`
	Version   int64  `json:"version"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// Character is a cast member of one project.
type Character struct {
	ID        string   `json:"id"`
	ProjectID string   `json:"project_id"`
	Name      string   `json:"name"`
	Summary   string   `json:"summary"`
	Notes     string   `json:"notes"`
	Tags      []string `json:"tags"`
	PhotoPath string   `json:"photo_path"`
	Version   int64    `json:"version"`
	CreatedAt string   `json:"created_at"`
	UpdatedAt string   `json:"updated_at"`
}

// RelationshipTypes is the closed enum of character relationship types.
var RelationshipTypes = []string{
	"friend", "enemy", "parent", "child", "sibling", "spouse", "lover",
	"mentor", "student", "ally", "rival", "colleague", "leader",
	"subordinate", "other",
}

// Relationship is a directed edge between two characters of the same project.
type Relationship struct {
	ID              string `json:"id"`
	ProjectID       string `json:"project_id"`
	FromCharacterID string `json:"from_character_id"`
	ToCharacterID   string `json:"to_character_id"`
	Type            string `json:"type"`
	Note            string `json:"note"`
	CreatedAt       string `json:"created_at"`
	UpdatedAt       string `json:"updated_at"`
}
