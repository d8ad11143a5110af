package server

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/leofalp/sqlcopilot/core/history"
	"github.com/leofalp/sqlcopilot/core/messaging"
	"github.com/leofalp/sqlcopilot/providers/ai"
	"github.com/leofalp/sqlcopilot/providers/observability"
)

type generateRequest struct {
	Prompt string `json:"prompt" binding:"required"`
}

type commandRequest struct {
	Command string `json:"command" binding:"required"`
}

// ===== Config =====

func (s *Server) GetConfig(c *gin.Context) {
	config, err := s.manager.GetConfig(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"configured": config != nil, "config": config})
}

// SaveConfig stores the posted configuration and then checks it with a live
// call unless skipValidation=true. A failed check keeps the saved record and
// answers 422 so the form can say what to fix.
func (s *Server) SaveConfig(c *gin.Context) {
	var config ai.Config
	if err := c.ShouldBindJSON(&config); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if config.Provider != "" && config.Provider != ai.ProviderCustom && strings.TrimSpace(config.APIKey) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "apiKey is required for " + string(config.Provider)})
		return
	}

	ctx := c.Request.Context()
	if err := s.manager.SetConfig(ctx, config); err != nil {
		abortWithError(c, err)
		return
	}
	saved, err := s.manager.GetConfig(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	skip, _ := strconv.ParseBool(c.Query("skipValidation"))
	if !skip && !s.manager.ValidateConfig(ctx, *saved) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": msgCheckSettings, "config": saved})
		return
	}

	c.JSON(http.StatusOK, gin.H{"config": saved, "validated": !skip})
}

// ValidateConfig checks the posted configuration without saving it.
func (s *Server) ValidateConfig(c *gin.Context) {
	var config ai.Config
	if err := c.ShouldBindJSON(&config); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if !s.manager.ValidateConfig(c.Request.Context(), config) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"valid": false, "error": msgCheckSettings})
		return
	}
	c.JSON(http.StatusOK, gin.H{"valid": true})
}

// ===== Generation =====

func (s *Server) Generate(c *gin.Context) {
	var req generateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	if _, err := s.history.Append(ctx, history.TypeUser, req.Prompt); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	text, err := s.manager.CallAPI(ctx, req.Prompt)
	if err != nil {
		s.recordFailure(c, err)
		abortWithError(c, err)
		return
	}

	reply, err := s.history.Append(ctx, history.TypeAssistant, text)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"text": text, "id": reply.ID})
}

// GenerateStream answers with server-sent events: one chunk event per text
// piece, then done or error. Failures before the first piece are plain JSON
// errors with the usual status codes, since no event has been sent yet.
func (s *Server) GenerateStream(c *gin.Context) {
	var req generateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	if _, err := s.history.Append(ctx, history.TypeUser, req.Prompt); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	var (
		replyID string
		started bool
		text    strings.Builder
	)
	err := s.manager.CallAPIStream(ctx, req.Prompt, func(chunk string) {
		if !started {
			started = true
			replyID = s.startReply(ctx)
		}
		text.WriteString(chunk)
		if replyID != "" {
			if _, appendErr := s.history.AppendChunk(ctx, replyID, chunk); appendErr != nil {
				slog.WarnContext(ctx, "failed to record chunk",
					slog.String(observability.AttrHistoryID, replyID),
					slog.String(observability.AttrError, appendErr.Error()),
				)
			}
		}

		c.SSEvent("chunk", gin.H{"text": chunk})
		c.Writer.Flush()
	})

	if err != nil {
		s.recordFailure(c, err)
		if !started {
			abortWithError(c, err)
			return
		}
		c.SSEvent("error", errorBody(err))
		c.Writer.Flush()
		return
	}

	// An empty stream still answers the prompt.
	if !started {
		replyID = s.startReply(ctx)
	}

	c.SSEvent("done", gin.H{"id": replyID, "text": text.String()})
	c.Writer.Flush()
}

// startReply creates the assistant message chunks are appended to. It
// returns "" when the history could not be written.
func (s *Server) startReply(ctx context.Context) string {
	reply, err := s.history.Append(ctx, history.TypeAssistant, "")
	if err != nil {
		slog.WarnContext(ctx, "failed to record assistant message", slog.String(observability.AttrError, err.Error()))
		return ""
	}
	return reply.ID
}

// recordFailure stores the failure as an assistant message so the
// conversation shows what went wrong.
func (s *Server) recordFailure(c *gin.Context, err error) {
	ctx := c.Request.Context()
	if _, appendErr := s.history.Append(ctx, history.TypeAssistant, "Error: "+err.Error()); appendErr != nil {
		slog.WarnContext(ctx, "failed to record error message", slog.String(observability.AttrError, appendErr.Error()))
	}
}

// ===== History =====

func (s *Server) ListMessages(c *gin.Context) {
	messages, err := s.history.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if messages == nil {
		messages = []history.Message{}
	}
	c.JSON(http.StatusOK, gin.H{"messages": messages})
}

func (s *Server) ClearMessages(c *gin.Context) {
	if err := s.history.Clear(c.Request.Context()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

// ===== Runtime messaging =====

func (s *Server) DispatchMessage(c *gin.Context) {
	var message messaging.Message
	if err := c.ShouldBindJSON(&message); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	response, err := s.hub.Dispatch(c.Request.Context(), message)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, response)
}

func (s *Server) RunCommand(c *gin.Context) {
	var req commandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	response, err := s.hub.Command(c.Request.Context(), req.Command)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, response)
}

// Events streams runtime messages to one in-page agent until it disconnects.
func (s *Server) Events(c *gin.Context) {
	subscription := s.hub.Subscribe()
	defer subscription.Close()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Status(http.StatusOK)
	c.Writer.Flush()

	ctx := c.Request.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case message, ok := <-subscription.C:
			if !ok {
				return
			}
			c.SSEvent("message", message)
			c.Writer.Flush()
		}
	}
}
