// Package ws implementa el hub de websockets: suscripción por tópicos,
// notificación de cambios de producto en tiempo real y un mensaje motivacional
// periódico generado con el modelo de chat.
package ws

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gofiber/contrib/websocket"

	"github.com/inventra/inventra-api/internal/application/dto"
	"github.com/inventra/inventra-api/internal/domain/entity"
	"github.com/inventra/inventra-api/pkg/logger"
)

// Tópicos publicados por el hub.
const (
	TopicProductChanged = "productos:changed"
	TopicMotivation     = "motivacion"
)

// MessageGenerator produce el texto del mensaje motivacional periódico.
type MessageGenerator interface {
	Generate(ctx context.Context) (string, error)
}

// inboundMessage mensaje de control del cliente.
type inboundMessage struct {
	Type    string              `json:"type"`  // subscribe | unsubscribe | ping
	Topic   string              `json:"topic"` // para subscribe/unsubscribe
	Filters *subscriptionFilter `json:"filtros,omitempty"`
}

// subscriptionFilter criterios opcionales de una suscripción al tópico de
// productos: el cliente solo recibe los cambios que los cumplen.
type subscriptionFilter struct {
	Active        *bool  `json:"activo,omitempty"`
	CategoryID    string `json:"categoria_id,omitempty"`
	UnitMeasureID string `json:"unidad_medida_id,omitempty"`
}

func (f subscriptionFilter) matches(p *entity.Product) bool {
	if f.Active != nil && *f.Active != p.Active {
		return false
	}
	if f.CategoryID != "" && f.CategoryID != p.CategoryID {
		return false
	}
	if f.UnitMeasureID != "" && f.UnitMeasureID != p.UnitMeasureID {
		return false
	}
	return true
}

// outboundMessage envelope de todo lo que publica el hub.
type outboundMessage struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

// client conexión registrada con sus suscripciones. El mutex serializa las
// escrituras: websocket no admite escritores concurrentes sobre una conexión.
type client struct {
	conn   *websocket.Conn
	mu     sync.Mutex
	topics map[string]subscriptionFilter
}

func (c *client) send(msg outboundMessage) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteJSON(msg)
}

// Hub registra clientes y hace fan-out de publicaciones por tópico.
type Hub struct {
	mu      sync.RWMutex
	clients map[*client]struct{}
	log     *logger.Logger
}

// NewHub construye el hub.
func NewHub(log *logger.Logger) *Hub {
	return &Hub{
		clients: make(map[*client]struct{}),
		log:     log,
	}
}

// Handle atiende una conexión entrante hasta que se cierre. Se usa como
// callback de websocket.New en el router.
func (h *Hub) Handle(conn *websocket.Conn) {
	c := &client{conn: conn, topics: make(map[string]subscriptionFilter)}

	h.mu.Lock()
	h.clients[c] = struct{}{}
	total := len(h.clients)
	h.mu.Unlock()
	h.log.Info().Int("total", total).Msg("cliente websocket conectado")

	defer func() {
		h.mu.Lock()
		delete(h.clients, c)
		total := len(h.clients)
		h.mu.Unlock()
		_ = conn.Close()
		h.log.Info().Int("total", total).Msg("cliente websocket desconectado")
	}()

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var msg inboundMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			h.log.Warn().Err(err).Msg("mensaje websocket inválido")
			continue
		}
		switch msg.Type {
		case "subscribe":
			if msg.Topic != "" {
				var f subscriptionFilter
				if msg.Filters != nil {
					f = *msg.Filters
				}
				c.mu.Lock()
				c.topics[msg.Topic] = f
				c.mu.Unlock()
			}
		case "unsubscribe":
			c.mu.Lock()
			delete(c.topics, msg.Topic)
			c.mu.Unlock()
		case "ping":
			_ = c.send(outboundMessage{Type: "pong"})
		}
	}
}

// Publish envía payload a todos los clientes suscritos al tópico. Los errores
// de envío se loguean y no interrumpen el fan-out.
func (h *Hub) Publish(topic string, payload any) {
	h.publishWhere(topic, payload, nil)
}

// publishWhere hace fan-out a los suscriptores del tópico cuyo filtro de
// suscripción pasa el selector (nil = todos).
func (h *Hub) publishWhere(topic string, payload any, selector func(subscriptionFilter) bool) {
	msg := outboundMessage{Type: topic, Data: payload}

	h.mu.RLock()
	targets := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		c.mu.Lock()
		f, subscribed := c.topics[topic]
		c.mu.Unlock()
		if subscribed && (selector == nil || selector(f)) {
			targets = append(targets, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range targets {
		if err := c.send(msg); err != nil {
			h.log.Warn().Err(err).Str("topico", topic).Msg("fallo enviando mensaje websocket")
		}
	}
}

// NotifyProductChanged implementa catalog.ProductNotifier: publica el producto
// actualizado a los suscriptores del tópico de productos cuyos filtros lo
// incluyen.
func (h *Hub) NotifyProductChanged(p *entity.Product) {
	h.publishWhere(TopicProductChanged, dto.ToProductResponse(p), func(f subscriptionFilter) bool {
		return f.matches(p)
	})
}

// RunMotivationLoop publica un mensaje motivacional cada interval hasta que el
// contexto se cancele. Pensado para correr en su propia goroutine desde main.
func (h *Hub) RunMotivationLoop(ctx context.Context, gen MessageGenerator, interval time.Duration) {
	if gen == nil || interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			msg, err := gen.Generate(ctx)
			if err != nil {
				h.log.Warn().Err(err).Msg("no se pudo generar el mensaje motivacional")
				continue
			}
			h.Publish(TopicMotivation, map[string]string{"mensaje": msg})
		}
	}
}
