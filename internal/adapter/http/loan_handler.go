package http

import (
	"net/http"

	"retailbank-backoffice/internal/usecase/loan"
	"retailbank-backoffice/internal/usecase/loanpayment"
	"retailbank-backoffice/internal/usecase/underwriting"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

type LoanHandler struct {
	underwriting *underwriting.Usecase
	loans        *loan.Usecase
	payments     *loanpayment.Usecase
}

func NewLoanHandler(uw *underwriting.Usecase, loans *loan.Usecase, payments *loanpayment.Usecase) *LoanHandler {
	return &LoanHandler{underwriting: uw, loans: loans, payments: payments}
}

type loanApplicationReq struct {
	OwnerID    string          `json:"owner_id" validate:"required,hex32"`
	Principal  decimal.Decimal `json:"principal" validate:"required,gt=0,dec2"`
	AnnualRate decimal.Decimal `json:"annual_rate" validate:"gte=0,lte=100,dec2"`
	// term validity is an underwriting rule, checked after the active-loan rule
	TermMonths int  `json:"term_months"`
	Override   bool `json:"override"`
}

func (r loanApplicationReq) input() underwriting.EvaluateInput {
	return underwriting.EvaluateInput{
		OwnerID: r.OwnerID, Principal: r.Principal, AnnualRate: r.AnnualRate, TermMonths: r.TermMonths, Override: r.Override,
	}
}

// Evaluate answers with the decision itself; a rejection is still a 200.
func (h *LoanHandler) Evaluate(c echo.Context) error {
	var req loanApplicationReq
	if ok, err := bind(c, &req); !ok {
		return err
	}
	d, err := h.underwriting.Evaluate(c.Request().Context(), req.input())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, d)
}

func (h *LoanHandler) AssignLoan(c echo.Context) error {
	var req loanApplicationReq
	if ok, err := bind(c, &req); !ok {
		return err
	}
	res, err := h.underwriting.AssignLoan(c.Request().Context(), underwriting.AssignLoanInput{
		EvaluateInput: req.input(), OperatedBy: operator(c),
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, res)
}

type changeRateReq struct {
	LoanNumber string          `param:"number" json:"-" validate:"digits9"`
	NewRate    decimal.Decimal `json:"new_annual_rate" validate:"gte=0,lte=100,dec2"`
}

func (h *LoanHandler) ChangeRate(c echo.Context) error {
	var req changeRateReq
	if ok, err := bind(c, &req); !ok {
		return err
	}
	res, err := h.loans.ChangeRate(c.Request().Context(), loan.ChangeRateInput{
		LoanNumber: req.LoanNumber, NewAnnualRate: req.NewRate, OperatedBy: operator(c),
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

func (h *LoanHandler) Schedule(c echo.Context) error {
	res, err := h.loans.Schedule(c.Request().Context(), c.Param("number"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

func (h *LoanHandler) ListByOwner(c echo.Context) error {
	owner := c.Param("owner_id")
	if !reHex32.MatchString(owner) {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid owner_id"})
	}
	res, err := h.loans.ListByOwner(c.Request().Context(), owner)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

type loanPaymentReq struct {
	LoanNumber    string          `param:"number" json:"-" validate:"digits9"`
	AccountNumber string          `json:"account_number" validate:"required,digits9"`
	Amount        decimal.Decimal `json:"amount" validate:"required,gt=0,dec2"`
}

// PreviewPayment reads account_number and amount from the query string.
func (h *LoanHandler) PreviewPayment(c echo.Context) error {
	amount, err := decimal.NewFromString(c.QueryParam("amount"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid amount"})
	}
	req := loanPaymentReq{LoanNumber: c.Param("number"), AccountNumber: c.QueryParam("account_number"), Amount: amount}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: "validation failed", Details: ToFieldErrors(err)})
	}
	res, err := h.payments.Preview(c.Request().Context(), loanpayment.PaymentInput{
		AccountNumber: req.AccountNumber, LoanNumber: req.LoanNumber, Amount: req.Amount,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

func (h *LoanHandler) ApplyPayment(c echo.Context) error {
	var req loanPaymentReq
	if ok, err := bind(c, &req); !ok {
		return err
	}
	res, err := h.payments.Apply(c.Request().Context(), loanpayment.PaymentInput{
		AccountNumber: req.AccountNumber, LoanNumber: req.LoanNumber, Amount: req.Amount, OperatedBy: operator(c),
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, res)
}
