package http

import "github.com/labstack/echo/v4"

type Handlers struct {
	Health   *Handler
	Loans    *LoanHandler
	Cards    *CardHandler
	Accounts *AccountHandler
}

// Register mounts every route. guard wraps the /v1 group and only acts on
// mutating methods.
func Register(e *echo.Echo, h Handlers, guard ...echo.MiddlewareFunc) {
	e.GET("/health", h.Health.Health)

	v1 := e.Group("/v1", guard...)

	v1.POST("/loans/evaluate", h.Loans.Evaluate)
	v1.POST("/loans", h.Loans.AssignLoan)
	v1.PUT("/loans/:number/rate", h.Loans.ChangeRate)
	v1.GET("/loans/:number/schedule", h.Loans.Schedule)
	v1.GET("/loans/:number/payments/preview", h.Loans.PreviewPayment)
	v1.POST("/loans/:number/payments", h.Loans.ApplyPayment)

	v1.POST("/cards", h.Cards.Issue)
	v1.PUT("/cards/:number/limit", h.Cards.ChangeLimit)
	v1.DELETE("/cards/:number", h.Cards.Cancel)
	v1.POST("/cards/:number/consumptions", h.Cards.Authorize)
	v1.GET("/cards/:number/consumptions", h.Cards.Consumptions)
	v1.POST("/cards/:number/payments", h.Cards.Pay)

	v1.POST("/accounts", h.Accounts.Open)
	v1.DELETE("/accounts/:number", h.Accounts.Cancel)
	v1.POST("/accounts/:number/deposits", h.Accounts.Deposit)
	v1.POST("/accounts/:number/withdrawals", h.Accounts.Withdraw)
	v1.GET("/accounts/:number/statement", h.Accounts.Statement)
	v1.POST("/transfers", h.Accounts.Transfer)

	v1.GET("/owners/:owner_id/loans", h.Loans.ListByOwner)
	v1.GET("/owners/:owner_id/cards", h.Cards.ListByOwner)
	v1.GET("/owners/:owner_id/accounts", h.Accounts.ListByOwner)
}
