package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/inventra/inventra-api/internal/application/ports"
	"github.com/inventra/inventra-api/pkg/config"
)

// Verificar en tiempo de compilación que Client implementa LLMService.
var _ ports.LLMService = (*Client)(nil)

// Client adaptador que implementa LLMService contra la API /api/chat de un
// servidor Ollama local o remoto. Usa únicamente net/http para no añadir
// dependencias externas.
type Client struct {
	host        string
	visionModel string
	chatModel   string
	httpClient  *http.Client
}

// NewClient construye el adaptador con la configuración de IA.
func NewClient(cfg config.AIConfig) *Client {
	return &Client{
		host:        strings.TrimRight(cfg.OllamaHost, "/"),
		visionModel: cfg.VisionModel,
		chatModel:   cfg.ChatModel,
		httpClient: &http.Client{
			Timeout: 120 * time.Second, // los modelos de visión locales pueden tardar
		},
	}
}

// ── Estructuras de la API de Ollama ───────────────────────────────────────────

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
	Stream   bool          `json:"stream"`
}

type chatMessage struct {
	Role    string   `json:"role"`
	Content string   `json:"content"`
	Images  []string `json:"images,omitempty"` // base64 sin prefijo data:
}

type chatResponse struct {
	Message chatMessage `json:"message"`
	Error   string      `json:"error,omitempty"`
}

// ChatVision envía el prompt más la imagen al modelo multimodal.
// No se usa el parámetro format de Ollama: algunos modelos de visión fallan al
// cargar el vocabulario requerido para salida estructurada, así que el caller
// limpia el JSON de la respuesta.
func (c *Client) ChatVision(ctx context.Context, prompt, imageBase64 string) (string, error) {
	if c.visionModel == "" {
		return "", fmt.Errorf("ollama: OLLAMA_VISION_MODEL no configurado")
	}
	return c.chat(ctx, chatRequest{
		Model: c.visionModel,
		Messages: []chatMessage{
			{Role: "user", Content: prompt, Images: []string{imageBase64}},
		},
	})
}

// Chat envía un prompt de solo texto al modelo de chat.
func (c *Client) Chat(ctx context.Context, prompt string) (string, error) {
	if c.chatModel == "" {
		return "", fmt.Errorf("ollama: OLLAMA_CHAT_MODEL no configurado")
	}
	return c.chat(ctx, chatRequest{
		Model: c.chatModel,
		Messages: []chatMessage{
			{Role: "user", Content: prompt},
		},
	})
}

func (c *Client) chat(ctx context.Context, payload chatRequest) (string, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("ollama: serializar request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.host+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("ollama: crear HTTP request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return "", fmt.Errorf("ollama: timeout o cancelación: %w", ctx.Err())
		}
		return "", fmt.Errorf("ollama: llamada HTTP fallida: %w", err)
	}
	defer resp.Body.Close()

	rawBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("ollama: leer respuesta: %w", err)
	}

	var out chatResponse
	if resp.StatusCode != http.StatusOK {
		if jsonErr := json.Unmarshal(rawBody, &out); jsonErr == nil && out.Error != "" {
			return "", fmt.Errorf("ollama: error %d: %s", resp.StatusCode, out.Error)
		}
		return "", fmt.Errorf("ollama: HTTP %d", resp.StatusCode)
	}
	if err := json.Unmarshal(rawBody, &out); err != nil {
		return "", fmt.Errorf("ollama: deserializar respuesta: %w", err)
	}

	content := strings.TrimSpace(out.Message.Content)
	if content == "" {
		return "", fmt.Errorf("ollama: respuesta vacía del modelo")
	}
	return content, nil
}
