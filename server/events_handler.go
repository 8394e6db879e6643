package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/jrsteele09/go-chat-bridge/bridge"
	"github.com/jrsteele09/go-chat-bridge/slack"
)

// eventPayload is the subset of the chat platform's webhook payload the bridge
// consumes. See the Slack Events API documentation.
type eventPayload struct {
	Type      string `json:"type"`
	Challenge string `json:"challenge,omitempty"`
	TeamID    string `json:"team_id,omitempty"`
	APIAppID  string `json:"api_app_id,omitempty"`
	Event     struct {
		Type    string `json:"type"`
		Text    string `json:"text"`
		User    string `json:"user"`
		Channel string `json:"channel"`
		BotID   string `json:"bot_id,omitempty"`
	} `json:"event,omitempty"`
}

func (s *Server) handleEvent(c *gin.Context) {
	var payload eventPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		log.Err(err).Msg("failed to parse event payload")
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "reason": "bad request"})
		return
	}

	switch payload.Type {
	case "url_verification":
		c.String(http.StatusOK, payload.Challenge)

	case "event_callback":
		s.handleEventCallback(c, payload)

	default:
		c.JSON(http.StatusNotFound, gin.H{"status": "error", "reason": "not found"})
	}
}

func (s *Server) handleEventCallback(c *gin.Context, payload eventPayload) {
	// Messages written by bots (our own replies included) are acknowledged and
	// dropped, or every reply would trigger another event.
	if payload.Event.BotID != "" {
		c.JSON(http.StatusOK, gin.H{"status": "succeeded", "reason": "ignored"})
		return
	}

	appID := payload.APIAppID
	if appID == "" {
		appID = payload.TeamID
	}
	text := slack.StripMentions(payload.Event.Text)

	// The reply is buffered and delivered only after the unit of work commits.
	var replyText string
	ctx := c.Request.Context()
	err := s.runner.ExecuteTransaction(ctx, func(uow bridge.UnitOfWork) error {
		return s.protocol.HandleMessage(ctx, uow, appID, payload.Event.User, text, func(t string) {
			replyText = t
		})
	})
	if err != nil {
		log.Err(err).Str("app_id", appID).Str("app_user_id", payload.Event.User).Msg("message handling failed")
		c.JSON(http.StatusInternalServerError, gin.H{"status": "failed", "reason": "not sent"})
		return
	}

	if replyText != "" {
		if err := s.notifier.PostChannelMessage(ctx, payload.Event.Channel, replyText); err != nil {
			// The session state is already committed; only the acknowledgement
			// channel failed.
			log.Err(err).Str("channel", payload.Event.Channel).Msg("failed to post reply")
			c.JSON(http.StatusInternalServerError, gin.H{"status": "failed", "reason": "not sent"})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{"status": "succeeded", "reason": "sent"})
}
