package http

import (
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"

	"github.com/inventra/inventra-api/internal/application/ai"
	"github.com/inventra/inventra-api/internal/application/auth"
	"github.com/inventra/inventra-api/internal/application/catalog"
	"github.com/inventra/inventra-api/internal/application/invoicing"
	"github.com/inventra/inventra-api/internal/domain/entity"
	"github.com/inventra/inventra-api/internal/interfaces/ws"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC         *auth.UseCase
	ProductUC      *catalog.ProductUseCase
	CategoryUC     *catalog.CategoryUseCase
	UnitMeasureUC  *catalog.UnitMeasureUseCase
	MovementTypeUC *catalog.MovementTypeUseCase
	InvoiceUC      *invoicing.InvoiceUseCase
	InvoicePDFUC   *invoicing.InvoicePDFUseCase
	ExtractionUC   *ai.ExtractionUseCase
	Hub            *ws.Hub
	JWTSecret      string
}

// Router registra las rutas de la API. Lecturas para cualquier usuario
// autenticado; escrituras para admin y operador; eliminaciones solo admin.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	writers := RequireRole(entity.RoleAdmin, entity.RoleOperator)
	admins := RequireRole(entity.RoleAdmin)

	// Auth (público)
	authGroup := api.Group("/auth")
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))
	protected.Get("/auth/me", authHandler.Me)

	// Usuarios: cambio de contraseña propio; el resto solo admin
	userHandler := NewUserHandler(deps.AuthUC)
	protected.Patch("/auth/password", userHandler.ChangePassword)
	users := protected.Group("/usuarios", admins)
	users.Get("/", userHandler.List)
	users.Put("/:id", userHandler.Update)
	users.Delete("/:id", userHandler.Delete)

	// Roles: lecturas autenticadas, escrituras solo admin
	roles := protected.Group("/roles")
	roleHandler := NewRoleHandler(deps.AuthUC)
	roles.Get("/stats", roleHandler.Stats)
	roles.Get("/", roleHandler.List)
	roles.Get("/:id", roleHandler.GetByID)
	roles.Post("/", admins, roleHandler.Create)
	roles.Put("/:id", admins, roleHandler.Update)
	roles.Delete("/:id", admins, roleHandler.Delete)

	// Productos
	products := protected.Group("/productos")
	productHandler := NewProductHandler(deps.ProductUC)
	products.Get("/", productHandler.List)
	products.Get("/:id", productHandler.GetByID)
	products.Post("/", writers, productHandler.Create)
	products.Put("/:id", writers, productHandler.Update)
	products.Delete("/:id", admins, productHandler.Delete)

	// Categorías
	categories := protected.Group("/categorias")
	categoryHandler := NewCategoryHandler(deps.CategoryUC)
	categories.Get("/", categoryHandler.List)
	categories.Get("/:id", categoryHandler.GetByID)
	categories.Post("/", writers, categoryHandler.Create)
	categories.Put("/:id", writers, categoryHandler.Update)
	categories.Delete("/:id", admins, categoryHandler.Delete)

	// Unidades de medida
	units := protected.Group("/unidades-medida")
	unitHandler := NewUnitMeasureHandler(deps.UnitMeasureUC)
	units.Get("/", unitHandler.List)
	units.Get("/:id", unitHandler.GetByID)
	units.Post("/", writers, unitHandler.Create)
	units.Put("/:id", writers, unitHandler.Update)
	units.Delete("/:id", admins, unitHandler.Delete)

	// Tipos de movimiento
	movementTypes := protected.Group("/tipos-movimiento")
	movementTypeHandler := NewMovementTypeHandler(deps.MovementTypeUC)
	movementTypes.Get("/", movementTypeHandler.List)
	movementTypes.Get("/:id", movementTypeHandler.GetByID)
	movementTypes.Post("/", writers, movementTypeHandler.Create)
	movementTypes.Put("/:id", writers, movementTypeHandler.Update)
	movementTypes.Delete("/:id", admins, movementTypeHandler.Delete)

	// Facturas internas (motor de conciliación de stock)
	invoices := protected.Group("/facturas-internas")
	invoiceHandler := NewInvoiceHandler(deps.InvoiceUC, deps.InvoicePDFUC)
	invoices.Get("/stats", invoiceHandler.Stats)
	invoices.Get("/", invoiceHandler.List)
	invoices.Get("/:id", invoiceHandler.GetByID)
	invoices.Get("/:id/pdf", invoiceHandler.PDF)
	invoices.Post("/", writers, invoiceHandler.Create)
	invoices.Put("/:id", writers, invoiceHandler.Update)
	invoices.Patch("/:id/estado", writers, invoiceHandler.UpdateState)
	invoices.Delete("/:id", admins, invoiceHandler.Delete)

	// IA: extracción de facturas desde imágenes
	if deps.ExtractionUC != nil {
		aiHandler := NewAIHandler(deps.ExtractionUC)
		protected.Post("/ia/extraer-factura", writers, aiHandler.ExtractInvoice)
	}

	// Websocket: notificaciones de productos y mensaje motivacional
	if deps.Hub != nil {
		app.Use("/ws", func(c *fiber.Ctx) error {
			if websocket.IsWebSocketUpgrade(c) {
				return c.Next()
			}
			return fiber.ErrUpgradeRequired
		})
		app.Get("/ws", websocket.New(deps.Hub.Handle))
	}
}
