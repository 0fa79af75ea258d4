// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package transcript saves a chat session to YAML and loads it back, so a
// conversation can be reviewed or resumed without re-querying the service.
package transcript

import (
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/researchflow/internal/session"
	"github.com/pdiddy/researchflow/pkg/types"
)

// Turn kinds as written to disk.
const (
	KindUser = "user"
	KindAPI  = "api"
)

// File is the on-disk representation of a session.
type File struct {
	SessionID  string              `yaml:"session_id"`
	CreatedAt  time.Time           `yaml:"created_at"`
	SavedAt    time.Time           `yaml:"saved_at"`
	Filters    session.FilterState `yaml:"filters"`
	Pagination session.Pagination  `yaml:"pagination"`
	Turns      []Turn              `yaml:"turns"`
}

// Turn is the flat serialized form of a session.Turn.
type Turn struct {
	Kind      string          `yaml:"kind"`
	Text      string          `yaml:"text,omitempty"`
	Message   string          `yaml:"message,omitempty"`
	Articles  []types.Article `yaml:"articles,omitempty"`
	PageCount int             `yaml:"page_count,omitempty"`
	Failed    bool            `yaml:"failed,omitempty"`
}

// New starts a File for a fresh session with a random session id.
func New(now time.Time) *File {
	return &File{SessionID: uuid.NewString(), CreatedAt: now}
}

// Capture copies st into f.
func (f *File) Capture(st session.State, now time.Time) {
	f.SavedAt = now
	f.Filters = st.Filters
	f.Pagination = st.Pagination
	f.Turns = make([]Turn, 0, len(st.Turns))
	for _, t := range st.Turns {
		f.Turns = append(f.Turns, encodeTurn(t))
	}
}

// State converts f back into a session.State.
func (f *File) State() (session.State, error) {
	st := session.State{
		Filters:    f.Filters,
		Pagination: f.Pagination,
		Turns:      make([]session.Turn, 0, len(f.Turns)),
	}
	for i, t := range f.Turns {
		turn, err := decodeTurn(t)
		if err != nil {
			return session.State{}, fmt.Errorf("turn %d: %w", i+1, err)
		}
		st.Turns = append(st.Turns, turn)
	}
	return st, nil
}

// Write saves f as YAML at path.
func Write(path string, f *File) error {
	data, err := yaml.Marshal(f)
	if err != nil {
		return fmt.Errorf("marshaling transcript: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing transcript %s: %w", path, err)
	}
	return nil
}

// Read loads a transcript from path.
func Read(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading transcript %s: %w", path, err)
	}
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing transcript %s: %w", path, err)
	}
	if _, err := uuid.Parse(f.SessionID); err != nil {
		return nil, fmt.Errorf("transcript %s: invalid session_id %q", path, f.SessionID)
	}
	return &f, nil
}

func encodeTurn(t session.Turn) Turn {
	switch t := t.(type) {
	case session.UserTurn:
		return Turn{Kind: KindUser, Text: t.Text}
	case session.APITurn:
		return Turn{
			Kind:      KindAPI,
			Message:   t.Message,
			Articles:  t.Articles,
			PageCount: t.PageCount,
			Failed:    t.Failed,
		}
	}
	return Turn{}
}

func decodeTurn(t Turn) (session.Turn, error) {
	switch t.Kind {
	case KindUser:
		return session.UserTurn{Text: t.Text}, nil
	case KindAPI:
		articles := t.Articles
		if articles == nil {
			articles = []types.Article{}
		}
		return session.APITurn{
			Message:   t.Message,
			Articles:  articles,
			PageCount: t.PageCount,
			Failed:    t.Failed,
		}, nil
	default:
		return nil, fmt.Errorf("unknown turn kind %q", t.Kind)
	}
}
