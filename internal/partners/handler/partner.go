package handler

import (
	"encoding/json"
	"net/http"

	"github.com/julienschmidt/httprouter"

	"rentora/internal/partners/service"
	httputil "rentora/pkg/http"
	"rentora/pkg/logger"
	"rentora/pkg/model"
)

type PartnerHandler struct {
	service service.PartnerService
	log     *logger.Logger
}

func NewPartnerHandler(service service.PartnerService, log *logger.Logger) *PartnerHandler {
	return &PartnerHandler{
		service: service,
		log:     log,
	}
}

func (h *PartnerHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var partner model.Partner
	if err := json.NewDecoder(r.Body).Decode(&partner); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "Create", "error", writeErr)
		}
		return
	}

	if err := h.service.Create(r.Context(), &partner); err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Create", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteCreated(w, partner); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "error", err)
	}
}

func (h *PartnerHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")

	partner, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetByID", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, partner); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "error", err)
	}
}

func (h *PartnerHandler) UpdateLocation(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")

	var update model.LocationUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "UpdateLocation", "error", writeErr)
		}
		return
	}

	if err := h.service.UpdateLocation(r.Context(), id, &update); err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "UpdateLocation", "error", writeErr)
		}
		return
	}

	httputil.WriteNoContent(w)
}

func (h *PartnerHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/partners", h.Create)
	router.GET("/api/v1/partners/id/:id", h.GetByID)
	router.POST("/api/v1/partners/id/:id/location", h.UpdateLocation)
}
