package api

import (
	"bufio"
	"context"
	"errors"
	"io"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/hridaya/internal/llm"
	"github.com/terraincognita07/hridaya/internal/services"
)

const chatFailureMessage = "Failed to process chat request"

type chatInput struct {
	Messages []llm.Message `json:"messages"`
}

// Chat streams the assistant reply as plain text. Failures before the first
// byte answer with a JSON error; a broken upstream stream mid-reply is logged
// and the response ends where it stopped.
func (handler *Handler) Chat(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	input := chatInput{}
	if err := c.BodyParser(&input); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid input")
	}

	// The stream outlives the handler, so it must not be tied to the request
	// context fiber recycles after returning.
	stream, err := handler.chatService.Open(context.Background(), user.ID, input.Messages, handler.today())
	if err != nil {
		if errors.Is(err, services.ErrChatMessagesRequired) || errors.Is(err, services.ErrInvalidChatMessage) {
			return apiError(c, fiber.StatusBadRequest, err.Error())
		}
		log.Printf("api: open chat stream: %v", err)
		return apiError(c, fiber.StatusInternalServerError, chatFailureMessage)
	}

	c.Set(fiber.HeaderContentType, "text/plain; charset=utf-8")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set("X-Content-Type-Options", "nosniff")
	c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		defer stream.Close()
		for {
			chunk, err := stream.Next()
			if errors.Is(err, io.EOF) {
				return
			}
			if err != nil {
				log.Printf("api: chat stream: %v", err)
				return
			}
			if _, err := w.WriteString(chunk); err != nil {
				return
			}
			if err := w.Flush(); err != nil {
				// client went away
				return
			}
		}
	})
	return nil
}
