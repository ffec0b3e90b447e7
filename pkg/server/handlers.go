package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/stonexlabs/portfolio-agent/pkg/domain"
	"github.com/stonexlabs/portfolio-agent/pkg/model"
)

// PredictRequest is the blocking endpoint's request body. CustomInputs is
// an opaque bag echoed back untouched.
type PredictRequest struct {
	Messages     []domain.Message `json:"messages"`
	CustomInputs map[string]any   `json:"custom_inputs,omitempty"`
}

// PredictResponse carries every message the run appended, in append order.
type PredictResponse struct {
	Messages     []domain.Message `json:"messages"`
	CustomInputs map[string]any   `json:"custom_inputs,omitempty"`
}

func (s *Server) handlePredict(w http.ResponseWriter, r *http.Request) {
	var req PredictRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, err)
		return
	}
	if len(req.Messages) == 0 {
		s.errorResponse(w, http.StatusBadRequest, errors.New("messages must not be empty"))
		return
	}

	messages, err := s.agent.Predict(r.Context(), req.Messages)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, model.ErrUnavailable) {
			status = http.StatusBadGateway
		}
		s.errorResponse(w, status, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, PredictResponse{
		Messages:     messages,
		CustomInputs: req.CustomInputs,
	})
}

func (s *Server) handleListModels(w http.ResponseWriter, r *http.Request) {
	models, err := s.provider.List(r.Context())
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, models)
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}
