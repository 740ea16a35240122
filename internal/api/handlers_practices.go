package api

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/hridaya/internal/models"
	"github.com/terraincognita07/hridaya/internal/services"
)

type nodeView struct {
	ID        string `json:"id"`
	Category  string `json:"category"`
	Object    string `json:"object"`
	Label     string `json:"label"`
	Practices int    `json:"practices"`
}

// Practices lists the practices of ?node=, defaulting to the user's current
// node.
func (handler *Handler) Practices(c *fiber.Ctx) error {
	node, err := handler.requestedNode(c)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{
		"node":       node,
		"node_label": handler.i18n.NodeLabel(currentLanguage(c), node),
		"practices":  handler.catalog.ForNode(node),
	})
}

func (handler *Handler) RandomPractice(c *fiber.Ctx) error {
	node, err := handler.requestedNode(c)
	if err != nil {
		return respondServiceError(c, err)
	}

	practice, ok := handler.catalog.Random(node)
	if !ok {
		return c.JSON(fiber.Map{"practice": nil})
	}
	return c.JSON(fiber.Map{"practice": practice})
}

func (handler *Handler) GetPractice(c *fiber.Ctx) error {
	practice, err := handler.catalog.Find(strings.TrimSpace(c.Params("id")))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{
		"practice":   practice,
		"node_label": handler.i18n.NodeLabel(currentLanguage(c), services.NodeID(practice.Category, practice.Object)),
		"type_label": handler.i18n.Translate(currentLanguage(c), "practice.kind."+practice.Kind),
	})
}

// Catalog returns the invocations and the full node sequence with labels in
// the request language.
func (handler *Handler) Catalog(c *fiber.Ctx) error {
	language := currentLanguage(c)
	nodes := make([]nodeView, 0, len(models.Categories)*len(models.Objects))
	for _, node := range services.AllNodes() {
		category, object, _ := services.ParseNode(node)
		nodes = append(nodes, nodeView{
			ID:        node,
			Category:  category,
			Object:    object,
			Label:     handler.i18n.NodeLabel(language, node),
			Practices: len(handler.catalog.ForNode(node)),
		})
	}

	return c.JSON(fiber.Map{
		"aspirations": handler.catalog.Aspirations,
		"dedications": handler.catalog.Dedications,
		"nodes":       nodes,
	})
}

func (handler *Handler) requestedNode(c *fiber.Ctx) (string, error) {
	node := strings.TrimSpace(c.Query("node"))
	if node == "" {
		user, ok := currentUser(c)
		if !ok || user.CurrentNode == "" {
			return models.DefaultCurrentNode, nil
		}
		return user.CurrentNode, nil
	}
	if !services.IsValidNode(node) {
		return "", services.ErrInvalidNode
	}
	return node, nil
}
