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

type SurveyExecutor interface {
	Execute(ctx context.Context, input usecase.SurveyInput) (*usecase.SurveyOutput, error)
}

type SurveyHandler struct {
	UseCase SurveyExecutor
	Logger  *log.Logger
}

func NewSurveyHandler(uc SurveyExecutor, logger *log.Logger) *SurveyHandler {
	return &SurveyHandler{UseCase: uc, Logger: logger}
}

func (h *SurveyHandler) Handle(w http.ResponseWriter, r *http.Request) {
	var input usecase.SurveyInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		h.Logger.Printf("❌ [SURVEY] invalid body: %v", err)
		middleware.RecordSurvey("error")
		writeError(w, http.StatusInternalServerError, "Server error")
		return
	}

	output, err := h.UseCase.Execute(r.Context(), input)
	if err != nil {
		var de *usecase.DomainError
		if errors.As(err, &de) {
			middleware.RecordSurvey("invalid")
			writeError(w, http.StatusBadRequest, de.Message)
			return
		}
		h.Logger.Printf("❌ [SURVEY] %v", err)
		middleware.RecordSurvey("error")
		writeError(w, http.StatusInternalServerError, "Server error")
		return
	}

	middleware.RecordSurvey(surveyResult(output))
	writeJSON(w, http.StatusOK, output)
}

func surveyResult(out *usecase.SurveyOutput) string {
	switch {
	case out.Status != "":
		return out.Status
	case out.Found != nil && *out.Found:
		return "found"
	default:
		return "not_found"
	}
}
