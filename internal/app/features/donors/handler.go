// internal/app/features/donors/handler.go
package donors

import (
	"github.com/dalemusser/donorhub/internal/app/registry"
	uierrors "github.com/dalemusser/donorhub/internal/app/features/errors"
	"go.uber.org/zap"
)

// Handler serves the donor CRUD and search endpoints.
type Handler struct {
	Registry *registry.Service
	ErrLog   *uierrors.ErrorLogger
	Log      *zap.Logger
}

func NewHandler(reg *registry.Service, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{Registry: reg, ErrLog: errLog, Log: logger}
}
