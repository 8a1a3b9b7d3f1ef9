package handlers

import (
	"net/http"

	"github.com/isaackcz/Edsight-sub000/internal/config"
)

// ConfigHandler handles configuration requests
type ConfigHandler struct {
	config *config.Config
}

// NewConfigHandler creates a new config handler
func NewConfigHandler(cfg *config.Config) *ConfigHandler {
	return &ConfigHandler{
		config: cfg,
	}
}

// GetAppConfig returns the public app configuration for the frontend
func (h *ConfigHandler) GetAppConfig(w http.ResponseWriter, r *http.Request) {
	appConfig := map[string]interface{}{
		"name":    h.config.App.Name,
		"version": h.config.App.Version,
		"env":     h.config.App.Env,
	}

	respondWithJSON(w, http.StatusOK, appConfig)
}
