package http

import (
	"context"
	"net/http"

	"retailbank-backoffice/internal/usecase/account"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

type AccountHandler struct{ uc *account.Usecase }

func NewAccountHandler(uc *account.Usecase) *AccountHandler { return &AccountHandler{uc: uc} }

type openAccountReq struct {
	OwnerID   string `json:"owner_id" validate:"required,hex32"`
	Principal bool   `json:"principal"`
}

func (h *AccountHandler) Open(c echo.Context) error {
	var req openAccountReq
	if ok, err := bind(c, &req); !ok {
		return err
	}
	in := account.OpenInput{OwnerID: req.OwnerID, OperatedBy: operator(c)}
	open := h.uc.OpenSecondary
	if req.Principal {
		open = h.uc.OpenPrincipal
	}
	res, err := open(c.Request().Context(), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, res)
}

func (h *AccountHandler) Cancel(c echo.Context) error {
	res, err := h.uc.Cancel(c.Request().Context(), account.CancelInput{AccountNumber: c.Param("number"), OperatedBy: operator(c)})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

type movementReq struct {
	AccountNumber string          `param:"number" json:"-" validate:"digits9"`
	Amount        decimal.Decimal `json:"amount" validate:"required,gt=0,dec2"`
	Label         string          `json:"label" validate:"max=128"`
}

func (h *AccountHandler) Deposit(c echo.Context) error { return h.move(c, h.uc.Deposit) }

func (h *AccountHandler) Withdraw(c echo.Context) error { return h.move(c, h.uc.Withdraw) }

func (h *AccountHandler) move(c echo.Context, fn func(context.Context, account.MovementInput) (*account.MovementResult, error)) error {
	var req movementReq
	if ok, err := bind(c, &req); !ok {
		return err
	}
	res, err := fn(c.Request().Context(), account.MovementInput{
		AccountNumber: req.AccountNumber, Amount: req.Amount, Label: req.Label, OperatedBy: operator(c),
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, res)
}

type transferReq struct {
	Kind              string          `json:"kind" validate:"required,oneof=express beneficiary third_party"`
	SourceNumber      string          `json:"source_account_number" validate:"required,digits9"`
	DestinationNumber string          `json:"destination_account_number" validate:"required,digits9,nefield=SourceNumber"`
	Amount            decimal.Decimal `json:"amount" validate:"required,gt=0,dec2"`
	Label             string          `json:"label" validate:"max=128"`
}

func (h *AccountHandler) Transfer(c echo.Context) error {
	var req transferReq
	if ok, err := bind(c, &req); !ok {
		return err
	}
	res, err := h.uc.Transfer(c.Request().Context(), account.TransferInput{
		Kind: account.TransferKind(req.Kind), SourceNumber: req.SourceNumber, DestinationNumber: req.DestinationNumber,
		Amount: req.Amount, Label: req.Label, OperatedBy: operator(c),
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, res)
}

func (h *AccountHandler) Statement(c echo.Context) error {
	res, err := h.uc.Statement(c.Request().Context(), c.Param("number"), limitParam(c, 50))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

func (h *AccountHandler) ListByOwner(c echo.Context) error {
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
