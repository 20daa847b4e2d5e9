package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/julienschmidt/httprouter"

	"carrygo/internal/transactions/service"
	httputil "carrygo/pkg/http"
	"carrygo/pkg/logger"
)

type TransactionHandler struct {
	service service.TransactionService
	log     *logger.Logger
}

func NewTransactionHandler(service service.TransactionService, log *logger.Logger) *TransactionHandler {
	return &TransactionHandler{
		service: service,
		log:     log,
	}
}

func actorPhone(r *http.Request) string {
	return strings.TrimSpace(r.Header.Get("X-Phone-Number"))
}

func (h *TransactionHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req service.CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "Create", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	result, err := h.service.Create(r.Context(), &req)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Create", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteCreated(w, result); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "operation", "WriteCreated", "error", err)
	}
}

func (h *TransactionHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")

	tx, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetByID", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, tx); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "operation", "WriteSuccess", "error", err)
	}
}

func (h *TransactionHandler) GetAll(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetAll", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	txs, totalCount, err := h.service.GetAll(r.Context(), limit, offset)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetAll", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WritePaginated(w, txs, totalCount, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", "GetAll", "operation", "WritePaginated", "error", err)
	}
}

func (h *TransactionHandler) Search(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Search", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	tripID := strings.TrimSpace(r.URL.Query().Get("trip_id"))

	txs, totalCount, err := h.service.GetByTrip(r.Context(), tripID, limit, offset)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Search", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WritePaginated(w, txs, totalCount, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", "Search", "operation", "WritePaginated", "error", err)
	}
}

func (h *TransactionHandler) Confirm(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	h.transition(w, r, "Confirm", func() (any, error) {
		return h.service.Confirm(r.Context(), ps.ByName("id"), actorPhone(r))
	})
}

func (h *TransactionHandler) Pickup(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	h.transition(w, r, "Pickup", func() (any, error) {
		return h.service.Pickup(r.Context(), ps.ByName("id"), actorPhone(r))
	})
}

func (h *TransactionHandler) Deliver(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var body struct {
		SecurityCode string `json:"security_code"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "Deliver", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	h.transition(w, r, "Deliver", func() (any, error) {
		return h.service.Deliver(r.Context(), ps.ByName("id"), actorPhone(r), body.SecurityCode)
	})
}

func (h *TransactionHandler) Complete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	h.transition(w, r, "Complete", func() (any, error) {
		return h.service.Complete(r.Context(), ps.ByName("id"), actorPhone(r))
	})
}

func (h *TransactionHandler) Dispute(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	h.transition(w, r, "Dispute", func() (any, error) {
		return h.service.Dispute(r.Context(), ps.ByName("id"), actorPhone(r))
	})
}

func (h *TransactionHandler) Cancel(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	h.transition(w, r, "Cancel", func() (any, error) {
		return h.service.Cancel(r.Context(), ps.ByName("id"), actorPhone(r))
	})
}

func (h *TransactionHandler) transition(w http.ResponseWriter, _ *http.Request, name string, fn func() (any, error)) {
	tx, err := fn()
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", name, "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, tx); err != nil {
		h.log.Error("failed to write success response", "handler", name, "operation", "WriteSuccess", "error", err)
	}
}

func (h *TransactionHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/transactions", h.Create)
	router.GET("/api/v1/transactions", h.GetAll)
	router.GET("/api/v1/transactions/search", h.Search)
	router.GET("/api/v1/transactions/id/:id", h.GetByID)
	router.POST("/api/v1/transactions/id/:id/confirm", h.Confirm)
	router.POST("/api/v1/transactions/id/:id/pickup", h.Pickup)
	router.POST("/api/v1/transactions/id/:id/deliver", h.Deliver)
	router.POST("/api/v1/transactions/id/:id/complete", h.Complete)
	router.POST("/api/v1/transactions/id/:id/dispute", h.Dispute)
	router.POST("/api/v1/transactions/id/:id/cancel", h.Cancel)
}
