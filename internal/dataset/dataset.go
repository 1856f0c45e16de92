// Package dataset loads and validates the bundled project records.
package dataset

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/go-playground/validator/v10"

	"github.com/mohammed-shakir/uk-projects-map/internal/core/model"
	"github.com/mohammed-shakir/uk-projects-map/internal/format"
)

//go:embed projects.json
var bundled []byte

var (
	ErrNotFound       = errors.New("project not found")
	ErrInvalidDataset = errors.New("invalid dataset")
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Store is a read-only, ordered view of the dataset. Safe for concurrent use.
type Store struct {
	projects    []*model.Project
	byID        map[string]*model.Project
	fingerprint string
}

// Bundled loads the dataset compiled into the binary.
func Bundled() (*Store, error) {
	return Load(bytes.NewReader(bundled))
}

// Open loads path, or the bundled dataset when path is empty.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return Bundled()
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()
	return Load(f)
}

func Load(r io.Reader) (*Store, error) {
	var ps []*model.Project
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&ps); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", ErrInvalidDataset, err)
	}
	return New(ps)
}

// New validates ps and builds a Store over them.
func New(ps []*model.Project) (*Store, error) {
	s := &Store{
		projects: make([]*model.Project, 0, len(ps)),
		byID:     make(map[string]*model.Project, len(ps)),
	}
	for i, p := range ps {
		if err := Validate(p); err != nil {
			return nil, fmt.Errorf("%w: record %d: %v", ErrInvalidDataset, i, err)
		}
		if _, dup := s.byID[p.ID]; dup {
			return nil, fmt.Errorf("%w: record %d: duplicate id %q", ErrInvalidDataset, i, p.ID)
		}
		s.byID[p.ID] = p
		s.projects = append(s.projects, p)
	}
	canon, err := json.Marshal(s.projects)
	if err != nil {
		return nil, fmt.Errorf("%w: encode: %v", ErrInvalidDataset, err)
	}
	s.fingerprint = fmt.Sprintf("%016x", xxhash.Sum64(canon))
	return s, nil
}

// Validate checks struct constraints, finite coordinates inside the UK and,
// when present, that displayAmount agrees with amount.
func Validate(p *model.Project) error {
	if p == nil {
		return errors.New("nil project")
	}
	if err := validate.Struct(p); err != nil {
		return formatValidationError(err)
	}
	c := p.Location.Coordinates
	if !c.Finite() {
		return fmt.Errorf("%s: non-finite coordinates", p.ID)
	}
	if !model.UKBounds.Contains(c) {
		return fmt.Errorf("%s: coordinates (%.4f, %.4f) outside UK bounds", p.ID, c.Latitude, c.Longitude)
	}
	return checkDisplayAmount(p)
}

// display amounts are abbreviated, so allow the rounding of one shown digit
const displayTolerance = 0.05

func checkDisplayAmount(p *model.Project) error {
	inv := p.Investment
	if strings.TrimSpace(inv.DisplayAmount) == "" {
		return nil
	}
	shown, err := format.ParseDisplayAmount(inv.DisplayAmount)
	if err != nil {
		return fmt.Errorf("%s: %w", p.ID, err)
	}
	if math.Abs(shown-inv.Amount) > displayTolerance*math.Max(inv.Amount, 1000) {
		return fmt.Errorf("%s: displayAmount %q disagrees with amount %s", p.ID, inv.DisplayAmount, format.Currency(inv.Amount))
	}
	return nil
}

func formatValidationError(err error) error {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return err
	}
	msgs := make([]string, 0, len(ve))
	for _, fe := range ve {
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s is required", fe.Namespace()))
		case "oneof", "eq":
			msgs = append(msgs, fmt.Sprintf("%s must be one of [%s], got %v", fe.Namespace(), fe.Param(), fe.Value()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s failed %s=%s", fe.Namespace(), fe.Tag(), fe.Param()))
		}
	}
	return errors.New(strings.Join(msgs, "; "))
}

// All returns the projects in dataset order. Callers must not modify them.
func (s *Store) All() []*model.Project {
	return s.projects
}

func (s *Store) Get(id string) (*model.Project, error) {
	if p, ok := s.byID[strings.TrimSpace(id)]; ok {
		return p, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrNotFound, id)
}

func (s *Store) Len() int { return len(s.projects) }

// Fingerprint identifies the dataset contents; shared caches namespace
// their keys with it.
func (s *Store) Fingerprint() string { return s.fingerprint }
