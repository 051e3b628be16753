package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/nfrund/rollcall/internal/config"
)

const chatbotSystemPrompt = "You are a helpful assistant for a student " +
	"records application. Answer questions about managing students, " +
	"courses and enrolment. Keep answers short."

// ChatbotHandler proxies assistant messages to an OpenAI-compatible gateway.
// The browser never sees the gateway key.
type ChatbotHandler struct {
	cfg    *config.Config
	client *http.Client
	logger *slog.Logger
}

// NewChatbotHandler creates a new ChatbotHandler.
func NewChatbotHandler(cfg *config.Config) *ChatbotHandler {
	return &ChatbotHandler{
		cfg:    cfg,
		client: &http.Client{Timeout: 30 * time.Second},
		logger: slog.Default().With("service", "chatbot_api"),
	}
}

type gatewayRequest struct {
	Model    string           `json:"model"`
	Messages []gatewayMessage `json:"messages"`
}

type gatewayMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type gatewayResponse struct {
	Choices []struct {
		Message gatewayMessage `json:"message"`
	} `json:"choices"`
}

// Message handles POST /api/chat. A server without gateway credentials
// answers 503 with a setup hint instead of a reply.
func (h *ChatbotHandler) Message(c echo.Context) error {
	if h.cfg.AIGatewayURL == "" || h.cfg.AIGatewayKey == "" {
		return c.JSON(http.StatusServiceUnavailable, ErrorResponse{
			Error: "The assistant is not configured",
			Hint:  "Set AI_GATEWAY_URL and AI_GATEWAY_KEY to enable the assistant.",
		})
	}

	var req ChatbotRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "A message is required"})
	}

	reply, err := h.forward(c, req.Message, req.History)
	if err != nil {
		h.logger.Error("Assistant gateway call failed", "error", err)
		return c.JSON(http.StatusBadGateway, ErrorResponse{Error: "The assistant is unavailable right now"})
	}

	return c.JSON(http.StatusOK, ChatbotResponse{Reply: reply})
}

// Configured reports whether gateway credentials are present.
func (h *ChatbotHandler) Configured() bool {
	return h.cfg.AIGatewayURL != "" && h.cfg.AIGatewayKey != ""
}

// Ask forwards one message and returns the assistant's reply. The HTML
// assistant page uses this directly.
func (h *ChatbotHandler) Ask(c echo.Context, message string) (string, error) {
	return h.forward(c, message, nil)
}

func (h *ChatbotHandler) forward(c echo.Context, message string, history []ChatbotTurn) (string, error) {
	messages := make([]gatewayMessage, 0, len(history)+2)
	messages = append(messages, gatewayMessage{Role: "system", Content: chatbotSystemPrompt})
	for _, turn := range history {
		messages = append(messages, gatewayMessage{Role: turn.Role, Content: turn.Content})
	}
	messages = append(messages, gatewayMessage{Role: "user", Content: message})

	body, err := json.Marshal(gatewayRequest{
		Model:    h.cfg.AIGatewayModel,
		Messages: messages,
	})
	if err != nil {
		return "", fmt.Errorf("marshal gateway request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(c.Request().Context(),
		http.MethodPost, h.cfg.AIGatewayURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build gateway request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+h.cfg.AIGatewayKey)

	resp, err := h.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("call gateway: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("gateway returned %d: %s", resp.StatusCode, raw)
	}

	var gwResp gatewayResponse
	if err := json.NewDecoder(resp.Body).Decode(&gwResp); err != nil {
		return "", fmt.Errorf("decode gateway response: %w", err)
	}
	if len(gwResp.Choices) == 0 {
		return "", fmt.Errorf("gateway returned no choices")
	}
	return gwResp.Choices[0].Message.Content, nil
}
