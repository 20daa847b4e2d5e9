package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/julienschmidt/httprouter"

	"carrygo/internal/matcher/service"
	httputil "carrygo/pkg/http"
	"carrygo/pkg/logger"
)

type FlowHandler struct {
	service *service.MatcherService
	log     *logger.Logger
}

func NewFlowHandler(service *service.MatcherService, log *logger.Logger) *FlowHandler {
	return &FlowHandler{
		service: service,
		log:     log,
	}
}

type ExecuteFlowRequest struct {
	Flow  string         `json:"flow"`
	Input map[string]any `json:"input"`
}

type ExecuteFlowResponse struct {
	Success bool           `json:"success"`
	Output  map[string]any `json:"output,omitempty"`
	Error   string         `json:"error,omitempty"`
}

type ListFlowsResponse struct {
	Flows []string `json:"flows"`
}

func (h *FlowHandler) ExecuteFlow(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req ExecuteFlowRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log.Error("failed to decode flow request", "error", err)
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "ExecuteFlow", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	if req.Flow == "" {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Flow name is required",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "ExecuteFlow", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	if req.Input == nil {
		req.Input = make(map[string]any)
	}

	h.log.Info("executing flow", "flow", req.Flow)

	output, err := h.service.ExecuteFlow(req.Flow, req.Input)
	if err != nil {
		h.log.Error("flow execution failed", "flow", req.Flow, "error", err)
		if writeErr := httputil.WriteJSON(w, http.StatusUnprocessableEntity, ExecuteFlowResponse{
			Success: false,
			Error:   err.Error(),
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "ExecuteFlow", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteJSON(w, http.StatusOK, ExecuteFlowResponse{
		Success: true,
		Output:  output,
	}); err != nil {
		h.log.Error("failed to write JSON response", "handler", "ExecuteFlow", "operation", "WriteJSON", "error", err)
	}
}

func (h *FlowHandler) ListFlows(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if err := httputil.WriteJSON(w, http.StatusOK, ListFlowsResponse{
		Flows: h.service.AvailableFlows(),
	}); err != nil {
		h.log.Error("failed to write JSON response", "handler", "ListFlows", "operation", "WriteJSON", "error", err)
	}
}

func (h *FlowHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/matcher/execute", h.ExecuteFlow)
	router.GET("/api/v1/matcher/flows", h.ListFlows)
}
