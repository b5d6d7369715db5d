package handler

import (
	"github.com/emzola/bookrating/config"
	"github.com/emzola/bookrating/internal/jsonlog"
	"github.com/emzola/bookrating/service"
)

// Handler defines Handler layer.
type Handler struct {
	config  config.Config
	logger  *jsonlog.Logger
	service service.Service
}

// New creates a new instance of Handler.
func New(cfg config.Config, logger *jsonlog.Logger, service service.Service) *Handler {
	return &Handler{
		config:  cfg,
		logger:  logger,
		service: service,
	}
}
