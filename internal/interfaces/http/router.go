package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/darbarboots/billing-api/internal/application/auth"
	"github.com/darbarboots/billing-api/internal/application/billing"
	"github.com/darbarboots/billing-api/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	PartyUC   *billing.PartyUseCase
	InvoiceUC *billing.InvoiceUseCase
	PaymentUC *billing.PaymentUseCase
	ReturnUC  *billing.ReturnUseCase
	ChallanUC *billing.ChallanUseCase
	PDFUC     *billing.PDFUseCase
	AuthUC    *auth.AuthUseCase
	JWTSecret string
}

// Router registra las rutas de la API. Lecturas y creaciones requieren token;
// los soft deletes requieren además rol admin.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Auth (público)
	authGroup := api.Group("/auth")
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))
	adminOnly := RequireRole(entity.RoleAdmin)

	// Parties
	parties := protected.Group("/parties")
	partyHandler := NewPartyHandler(deps.PartyUC)
	parties.Post("/", partyHandler.Create)
	parties.Get("/", partyHandler.List)
	parties.Get("/:id", partyHandler.GetByID)
	parties.Get("/:id/statement", partyHandler.Statement)
	parties.Put("/:id", partyHandler.Update)
	parties.Delete("/:id", adminOnly, partyHandler.Delete)

	// Invoices y sus líneas
	invoices := protected.Group("/invoices")
	invoiceHandler := NewInvoiceHandler(deps.InvoiceUC, deps.PDFUC)
	invoices.Post("/", invoiceHandler.Create)
	invoices.Get("/", invoiceHandler.List)
	invoices.Get("/:id", invoiceHandler.GetByID)
	invoices.Get("/:id/pdf", invoiceHandler.DownloadPDF)
	invoices.Post("/:id/items", invoiceHandler.AddItem)
	invoices.Delete("/:id", adminOnly, invoiceHandler.Delete)

	items := protected.Group("/invoice-items")
	items.Put("/:id", invoiceHandler.UpdateItem)
	items.Delete("/:id", adminOnly, invoiceHandler.DeleteItem)

	// Payments
	payments := protected.Group("/payments")
	paymentHandler := NewPaymentHandler(deps.PaymentUC, deps.PDFUC)
	payments.Post("/", paymentHandler.Create)
	payments.Get("/", paymentHandler.List)
	payments.Get("/:id", paymentHandler.GetByID)
	payments.Get("/:id/pdf", paymentHandler.DownloadReceiptPDF)
	payments.Delete("/:id", adminOnly, paymentHandler.Delete)

	// Returns
	returns := protected.Group("/returns")
	returnHandler := NewReturnHandler(deps.ReturnUC)
	returns.Post("/", returnHandler.Create)
	returns.Get("/", returnHandler.List)
	returns.Get("/:id", returnHandler.GetByID)
	returns.Delete("/:id", adminOnly, returnHandler.Delete)

	// Challans
	challans := protected.Group("/challans")
	challanHandler := NewChallanHandler(deps.ChallanUC, deps.PDFUC)
	challans.Post("/", challanHandler.Create)
	challans.Get("/", challanHandler.List)
	challans.Get("/:id", challanHandler.GetByID)
	challans.Get("/:id/pdf", challanHandler.DownloadPDF)
	challans.Delete("/:id", adminOnly, challanHandler.Delete)
}
