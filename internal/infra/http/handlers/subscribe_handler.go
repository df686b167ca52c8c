package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/gr8terthings/signup-proxy/internal/infra/http/middleware"
	"github.com/gr8terthings/signup-proxy/internal/usecase"
)

type SubscribeExecutor interface {
	Execute(ctx context.Context, input usecase.SubscribeInput) (*usecase.SubscribeOutput, error)
}

type SubscribeHandler struct {
	UseCase SubscribeExecutor
	Logger  *log.Logger
}

func NewSubscribeHandler(uc SubscribeExecutor, logger *log.Logger) *SubscribeHandler {
	return &SubscribeHandler{UseCase: uc, Logger: logger}
}

func (h *SubscribeHandler) Handle(w http.ResponseWriter, r *http.Request) {
	var input usecase.SubscribeInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		h.Logger.Printf("❌ [SUBSCRIBE] invalid body: %v", err)
		middleware.RecordSubscription("error")
		writeError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	output, err := h.UseCase.Execute(r.Context(), input)
	if err != nil {
		var de *usecase.DomainError
		if errors.As(err, &de) {
			middleware.RecordSubscription("invalid")
			writeError(w, http.StatusBadRequest, de.Message)
			return
		}
		h.Logger.Printf("❌ [SUBSCRIBE] %v", err)
		middleware.RecordSubscription("error")
		writeError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	middleware.RecordSubscription(output.Status)
	writeJSON(w, http.StatusOK, output)
}
