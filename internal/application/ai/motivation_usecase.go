package ai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/inventra/inventra-api/internal/application/ports"
	"github.com/inventra/inventra-api/pkg/logger"
)

const motivationPrompt = `Genera un mensaje de motivación corto y positivo (máximo 150 caracteres).
El mensaje debe ser inspirador, alentador y apropiado para un entorno laboral.
Responde SOLO con el mensaje, sin explicaciones adicionales, sin comillas, sin formato especial.`

// MotivationUseCase genera mensajes motivacionales cortos con el modelo de
// chat, para el broadcast periódico del hub de websockets.
type MotivationUseCase struct {
	llm ports.LLMService
	log *logger.Logger
}

// NewMotivationUseCase construye el caso de uso.
func NewMotivationUseCase(llm ports.LLMService, log *logger.Logger) *MotivationUseCase {
	return &MotivationUseCase{llm: llm, log: log}
}

// Generate devuelve un mensaje limpio de a lo más 150 caracteres, con hasta 3
// intentos contra el modelo.
func (uc *MotivationUseCase) Generate(ctx context.Context) (string, error) {
	var lastErr error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		content, err := uc.llm.Chat(ctx, motivationPrompt)
		if err == nil {
			return cleanMessage(content), nil
		}
		lastErr = err
		uc.log.Warn().Err(err).Int("intento", attempt).Msg("fallo generando mensaje motivacional")

		if attempt < maxRetries {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(retryDelay):
			}
		}
	}
	return "", fmt.Errorf("generar mensaje tras %d intentos: %w", maxRetries, lastErr)
}

// cleanMessage quita comillas envolventes y recorta a 150 caracteres.
func cleanMessage(s string) string {
	s = strings.TrimSpace(s)
	for _, q := range []string{`"`, `'`} {
		if strings.HasPrefix(s, q) && strings.HasSuffix(s, q) && len(s) >= 2 {
			s = strings.TrimSpace(s[1 : len(s)-1])
		}
	}
	if r := []rune(s); len(r) > 150 {
		s = string(r[:147]) + "..."
	}
	return s
}
