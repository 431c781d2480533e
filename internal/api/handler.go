package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"

	"github.com/gorilla/mux"
	"github.com/punchamoorthee/momoledger/internal/domain"
	"github.com/punchamoorthee/momoledger/internal/logger"
	"github.com/punchamoorthee/momoledger/internal/store"
)

const maxBodyBytes = 1 << 20

type Handler struct {
	store *store.TransactionStore
}

func NewHandler(s *store.TransactionStore) *Handler {
	return &Handler{store: s}
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{"status": "ok", "transactions": h.store.Len()})
}

func (h *Handler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.store.List())
}

func (h *Handler) GetTransaction(w http.ResponseWriter, r *http.Request) {
	tx, err := h.store.Get(mux.Vars(r)["id"])
	if err != nil {
		h.respondStoreError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, tx)
}

func (h *Handler) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	body, ok := readBody(w, r)
	if !ok {
		return
	}

	tx, err := domain.DecodeTransaction(body)
	if err != nil {
		h.respondStoreError(w, r, err)
		return
	}

	created, err := h.store.Create(tx)
	if err != nil {
		h.respondStoreError(w, r, err)
		return
	}

	log := logger.FromContext(r.Context())
	log.Info().Str("txn_external_id", created.ExternalID).Msg("Transaction created")
	w.Header().Set("Location", "/transactions/"+url.PathEscape(created.ExternalID))
	respondJSON(w, http.StatusCreated, created)
}

func (h *Handler) UpdateTransaction(w http.ResponseWriter, r *http.Request) {
	body, ok := readBody(w, r)
	if !ok {
		return
	}

	id := mux.Vars(r)["id"]
	updated, err := h.store.Update(id, body)
	if err != nil {
		h.respondStoreError(w, r, err)
		return
	}

	log := logger.FromContext(r.Context())
	log.Info().Str("txn_external_id", id).Msg("Transaction updated")
	respondJSON(w, http.StatusOK, updated)
}

func (h *Handler) DeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	removed, err := h.store.Delete(id)
	if err != nil {
		h.respondStoreError(w, r, err)
		return
	}

	log := logger.FromContext(r.Context())
	log.Info().Str("txn_external_id", id).Msg("Transaction deleted")
	respondJSON(w, http.StatusOK, map[string]any{"deleted": removed})
}

func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	respondError(w, http.StatusNotFound, "Unknown endpoint")
}

func (h *Handler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
}

func (h *Handler) respondStoreError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		respondError(w, http.StatusNotFound, "Not found")
	case errors.Is(err, store.ErrDuplicateID):
		respondError(w, http.StatusConflict, "Transaction ID already exists")
	case errors.Is(err, domain.ErrMalformed):
		respondError(w, http.StatusBadRequest, "Invalid JSON")
	case errors.Is(err, domain.ErrInvalid):
		respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, store.ErrPersistence):
		log := logger.FromContext(r.Context())
		log.Error().Err(err).Msg("Transaction file write failed")
		respondError(w, http.StatusInternalServerError, "Transaction could not be saved")
	default:
		log := logger.FromContext(r.Context())
		log.Error().Err(err).Msg("Unexpected store error")
		respondError(w, http.StatusInternalServerError, "Internal Server Error")
	}
}

// readBody writes the error response itself when it returns false.
func readBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondError(w, http.StatusRequestEntityTooLarge, "Request body too large")
			return nil, false
		}
		respondError(w, http.StatusBadRequest, "Stream read error")
		return nil, false
	}
	return body, true
}

func respondError(w http.ResponseWriter, code int, message string) {
	respondJSON(w, code, map[string]string{"error": message})
}

func respondJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if payload != nil {
		enc := json.NewEncoder(w)
		enc.SetEscapeHTML(false)
		enc.Encode(payload)
	}
}
