package http

import (
	"net/http"

	"retailbank-backoffice/internal/usecase/card"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

type CardHandler struct{ uc *card.Usecase }

func NewCardHandler(uc *card.Usecase) *CardHandler { return &CardHandler{uc: uc} }

type issueCardReq struct {
	OwnerID     string          `json:"owner_id" validate:"required,hex32"`
	CreditLimit decimal.Decimal `json:"credit_limit" validate:"required,gt=0,dec2"`
}

func (h *CardHandler) Issue(c echo.Context) error {
	var req issueCardReq
	if ok, err := bind(c, &req); !ok {
		return err
	}
	res, err := h.uc.Issue(c.Request().Context(), card.IssueInput(req))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, res)
}

type changeLimitReq struct {
	CardNumber string          `param:"number" json:"-" validate:"digits16"`
	NewLimit   decimal.Decimal `json:"new_limit" validate:"required,gt=0,dec2"`
}

func (h *CardHandler) ChangeLimit(c echo.Context) error {
	var req changeLimitReq
	if ok, err := bind(c, &req); !ok {
		return err
	}
	res, err := h.uc.ChangeLimit(c.Request().Context(), card.ChangeLimitInput(req))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

func (h *CardHandler) Cancel(c echo.Context) error {
	res, err := h.uc.Cancel(c.Request().Context(), c.Param("number"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

type authorizeReq struct {
	CardNumber    string          `param:"number" json:"-" validate:"digits16"`
	ExpMonth      int             `json:"exp_month" validate:"gte=1,lte=12"`
	ExpYear       int             `json:"exp_year" validate:"gte=0,lte=99"`
	CVC           string          `json:"cvc" validate:"required,len=3,numeric"`
	Amount        decimal.Decimal `json:"amount" validate:"required,gt=0,dec2"`
	MerchantID    string          `json:"merchant_id" validate:"required,hex32"`
	MerchantLabel string          `json:"merchant_label" validate:"max=128"`
	CashAdvance   bool            `json:"cash_advance"`
}

func (h *CardHandler) Authorize(c echo.Context) error {
	var req authorizeReq
	if ok, err := bind(c, &req); !ok {
		return err
	}
	res, err := h.uc.Authorize(c.Request().Context(), card.AuthorizeInput{
		CardNumber: req.CardNumber, ExpMonth: req.ExpMonth, ExpYear: req.ExpYear, CVC: req.CVC, Amount: req.Amount,
		MerchantID: req.MerchantID, MerchantLabel: req.MerchantLabel, CashAdvance: req.CashAdvance, OperatedBy: operator(c),
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, res)
}

type cardPaymentReq struct {
	CardNumber    string          `param:"number" json:"-" validate:"digits16"`
	AccountNumber string          `json:"account_number" validate:"required,digits9"`
	Amount        decimal.Decimal `json:"amount" validate:"required,gt=0,dec2"`
}

func (h *CardHandler) Pay(c echo.Context) error {
	var req cardPaymentReq
	if ok, err := bind(c, &req); !ok {
		return err
	}
	res, err := h.uc.Pay(c.Request().Context(), card.PayInput{
		CardNumber: req.CardNumber, AccountNumber: req.AccountNumber, Amount: req.Amount, OperatedBy: operator(c),
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, res)
}

func (h *CardHandler) Consumptions(c echo.Context) error {
	res, err := h.uc.Consumptions(c.Request().Context(), c.Param("number"), limitParam(c, 50))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

func (h *CardHandler) ListByOwner(c echo.Context) error {
	owner := c.Param("owner_id")
	if !reHex32.MatchString(owner) {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid owner_id"})
	}
	res, err := h.uc.ListByOwner(c.Request().Context(), owner)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}
