package services

import (
	"errors"
	"fmt"

	"go-optics-pos/internal/models"
	"go-optics-pos/internal/utils"

	"github.com/shopspring/decimal"
)

var (
	ErrNotFound             = errors.New("not found")
	ErrValidation           = errors.New("validation failed")
	ErrDuplicateName        = errors.New("duplicate name")
	ErrConfirmationRequired = errors.New("confirmation required")
	ErrStaleVersion         = errors.New("record was modified by someone else")
)

func validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// checkAmount rejects money and quantities outside the stored column range.
func checkAmount(field string, d decimal.Decimal) error {
	if !utils.ValidAmount(d) {
		return validationf("%s is out of range", field)
	}
	return nil
}

type ReconcileCase string

const (
	CaseNewClient ReconcileCase = "new_client"
	CaseMismatch  ReconcileCase = "mismatch"
)

// ReconciliationRequired is returned by an order update whose customer identity
// disagrees with the client registry and the caller has not chosen how to resolve it.
type ReconciliationRequired struct {
	Case           ReconcileCase  `json:"case"`
	Order          models.Order   `json:"order"`
	ExistingClient *models.Client `json:"existing_client,omitempty"`
}

func (e *ReconciliationRequired) Error() string {
	return fmt.Sprintf("client reconciliation required (%s)", e.Case)
}
