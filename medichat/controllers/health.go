package controllers

import (
	"medichat/medichat/types"
	httputils "medichat/medichat/utils/http"
	"net/http"
)

type HealthController struct{}

func NewHealthController() *HealthController {
	return &HealthController{}
}

func (h *HealthController) HealthCheck(w http.ResponseWriter, r *http.Request) {
	httputils.WriteJSON(w, http.StatusOK, types.MessageResponse{Message: "API running"})
}
