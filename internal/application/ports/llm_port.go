package ports

import "context"

// LLMService define el puerto de salida hacia el modelo de lenguaje local.
// Cualquier adaptador (Ollama, OpenAI, mock) debe implementar esta interfaz.
// La aplicación solo conoce este contrato, no la implementación concreta.
type LLMService interface {
	// ChatVision envía un prompt más una imagen en base64 al modelo multimodal
	// y devuelve el contenido crudo de la respuesta. El contexto debe llevar un
	// timeout para evitar bloqueos en llamadas externas.
	ChatVision(ctx context.Context, prompt, imageBase64 string) (string, error)

	// Chat envía un prompt de solo texto al modelo de chat y devuelve el
	// contenido crudo de la respuesta.
	Chat(ctx context.Context, prompt string) (string, error)
}
