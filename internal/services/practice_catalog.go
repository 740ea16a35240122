package services

import (
	_ "embed"
	"errors"
	"fmt"
	"math/rand"

	"github.com/terraincognita07/hridaya/internal/models"
	"gopkg.in/yaml.v3"
)

//go:embed practices.yaml
var embeddedPractices []byte

var ErrPracticeNotFound = errors.New("practice not found")

type PracticeCatalog struct {
	Practices   []models.Practice   `yaml:"practices" json:"practices"`
	Aspirations []models.Invocation `yaml:"aspirations" json:"aspirations"`
	Dedications []models.Invocation `yaml:"dedications" json:"dedications"`

	byID map[string]models.Practice
}

// DefaultPracticeCatalog parses the catalog compiled into the binary.
func DefaultPracticeCatalog() (*PracticeCatalog, error) {
	return ParsePracticeCatalog(embeddedPractices)
}

func ParsePracticeCatalog(raw []byte) (*PracticeCatalog, error) {
	catalog := &PracticeCatalog{}
	if err := yaml.Unmarshal(raw, catalog); err != nil {
		return nil, fmt.Errorf("parse practice catalog: %w", err)
	}

	catalog.byID = make(map[string]models.Practice, len(catalog.Practices))
	for _, practice := range catalog.Practices {
		if practice.ID == "" {
			return nil, errors.New("practice catalog: practice without id")
		}
		if _, exists := catalog.byID[practice.ID]; exists {
			return nil, fmt.Errorf("practice catalog: duplicate id %s", practice.ID)
		}
		if !IsValidNode(NodeID(practice.Category, practice.Object)) {
			return nil, fmt.Errorf("practice catalog: %s has unknown node %s-%s", practice.ID, practice.Category, practice.Object)
		}
		if practice.Kind != models.PracticeFormal && practice.Kind != models.PracticeMicro {
			return nil, fmt.Errorf("practice catalog: %s has unknown type %q", practice.ID, practice.Kind)
		}
		catalog.byID[practice.ID] = practice
	}
	return catalog, nil
}

func (catalog *PracticeCatalog) Find(practiceID string) (models.Practice, error) {
	practice, ok := catalog.byID[practiceID]
	if !ok {
		return models.Practice{}, ErrPracticeNotFound
	}
	return practice, nil
}

// ForNode lists the practices of a node in catalog order. Unknown nodes and
// nodes without content both yield an empty list.
func (catalog *PracticeCatalog) ForNode(node string) []models.Practice {
	category, object, ok := ParseNode(node)
	if !ok {
		return []models.Practice{}
	}

	matched := make([]models.Practice, 0)
	for _, practice := range catalog.Practices {
		if practice.Category == category && practice.Object == object {
			matched = append(matched, practice)
		}
	}
	return matched
}

// Random picks one practice of the node. ok is false when the node has none.
func (catalog *PracticeCatalog) Random(node string) (models.Practice, bool) {
	candidates := catalog.ForNode(node)
	if len(candidates) == 0 {
		return models.Practice{}, false
	}
	return candidates[rand.Intn(len(candidates))], true
}
