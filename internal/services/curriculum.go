package services

import (
	"slices"
	"strings"

	"github.com/terraincognita07/hridaya/internal/models"
)

var categoryNames = map[string]string{
	models.CategoryMetta:   "Metta (Loving-kindness)",
	models.CategoryKaruna:  "Karuna (Compassion)",
	models.CategoryMudita:  "Mudita (Sympathetic Joy)",
	models.CategoryUpekkha: "Upekkha (Equanimity)",
}

var objectNames = map[string]string{
	models.ObjectSelf:       "Self",
	models.ObjectBenefactor: "Benefactor",
	models.ObjectFriend:     "Dear Friend",
	models.ObjectNeutral:    "Neutral Person",
	models.ObjectDifficult:  "Difficult Person",
	models.ObjectAll:        "All Beings",
}

func NodeID(category string, object string) string {
	return category + "-" + object
}

// ParseNode splits a node id into its category and object. ok is false for
// ids outside the curriculum.
func ParseNode(node string) (category string, object string, ok bool) {
	category, object, found := strings.Cut(strings.TrimSpace(node), "-")
	if !found || !slices.Contains(models.Categories, category) || !slices.Contains(models.Objects, object) {
		return "", "", false
	}
	return category, object, true
}

func IsValidNode(node string) bool {
	_, _, ok := ParseNode(node)
	return ok
}

// NextNode moves to the next object of the category, then to self of the next
// category. It reports false at the end of the path.
func NextNode(node string) (string, bool) {
	category, object, ok := ParseNode(node)
	if !ok {
		return "", false
	}

	objectIndex := slices.Index(models.Objects, object)
	if objectIndex < len(models.Objects)-1 {
		return NodeID(category, models.Objects[objectIndex+1]), true
	}

	categoryIndex := slices.Index(models.Categories, category)
	if categoryIndex < len(models.Categories)-1 {
		return NodeID(models.Categories[categoryIndex+1], models.ObjectSelf), true
	}
	return "", false
}

// NextObject is the track-local step used by per-category progress.
func NextObject(object string) (string, bool) {
	index := slices.Index(models.Objects, object)
	if index < 0 || index == len(models.Objects)-1 {
		return "", false
	}
	return models.Objects[index+1], true
}

func FormatNode(node string) string {
	category, object, ok := ParseNode(node)
	if !ok {
		return node
	}
	return categoryNames[category] + " for " + objectNames[object]
}

func AllNodes() []string {
	nodes := make([]string, 0, len(models.Categories)*len(models.Objects))
	for _, category := range models.Categories {
		for _, object := range models.Objects {
			nodes = append(nodes, NodeID(category, object))
		}
	}
	return nodes
}
