package http

import (
	"errors"
	"net/http"

	"github.com/shelfwise/shelfwise-core/internal/core/domain"
)

// Recommender endpoints

// handleTrain godoc
// @Summary      Train the recommender
// @Description  Rebuild the TF-IDF and similarity artifacts from the catalog (admin only).
// @Description  An empty or textless catalog returns zero records and writes nothing.
// @Tags         ML
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  domain.TrainingResult
// @Failure      409  {object}  ErrorResponse  "Training already in progress"
// @Failure      500  {object}  ErrorResponse  "Training failed"
// @Router       /ml/training-data [post]
func (s *Server) handleTrain(w http.ResponseWriter, r *http.Request) {
	result, err := s.recommendationService.Train(r.Context())
	if err != nil {
		if errors.Is(err, domain.ErrTrainingInProgress) {
			writeError(w, http.StatusConflict, "training already in progress")
			return
		}
		s.serverError(w, r, "training failed", err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// handlePredict godoc
// @Summary      Recommend books
// @Description  Books whose descriptions are most similar to the given title. The result is recorded in the caller's history.
// @Tags         ML
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      domain.PredictRequest  true  "Title to match"
// @Success      200      {array}   domain.Recommendation
// @Failure      400      {object}  ErrorResponse  "Missing or unknown title"
// @Failure      409      {object}  ErrorResponse  "Artifacts do not match the catalog"
// @Failure      500      {object}  ErrorResponse  "Artifacts not found"
// @Router       /ml/predictions [post]
func (s *Server) handlePredict(w http.ResponseWriter, r *http.Request) {
	var req domain.PredictRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	recs, err := s.recommendationService.Predict(r.Context(), GetAuthContext(r.Context()), req)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidInput):
			writeError(w, http.StatusBadRequest, "title is required")
		case errors.Is(err, domain.ErrTitleNotFound):
			writeError(w, http.StatusBadRequest, domain.ErrTitleNotFound.Error())
		case errors.Is(err, domain.ErrArtifactNotFound):
			writeError(w, http.StatusInternalServerError, domain.ErrArtifactNotFound.Error())
		case errors.Is(err, domain.ErrArtifactMismatch):
			writeError(w, http.StatusConflict, domain.ErrArtifactMismatch.Error())
		default:
			s.serverError(w, r, "prediction failed", err)
		}
		return
	}
	writeJSON(w, http.StatusOK, nonNil(recs))
}

// handleUserPreferences godoc
// @Summary      Recommendation history
// @Description  A user's recorded recommendations joined with the books, highest similarity first.
// @Description  Members may only read their own history.
// @Tags         ML
// @Produce      json
// @Security     BearerAuth
// @Param        user_id  path      string  true  "User ID"
// @Success      200      {array}   domain.PreferenceView
// @Failure      403      {object}  ErrorResponse    "Not your history"
// @Failure      404      {object}  MessageResponse  "No history"
// @Router       /ml/user-preferences/{user_id} [get]
func (s *Server) handleUserPreferences(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("user_id")

	views, err := s.recommendationService.History(r.Context(), GetAuthContext(r.Context()), userID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrUnauthorized):
			writeError(w, http.StatusUnauthorized, "unauthorized")
		case errors.Is(err, domain.ErrForbidden):
			writeError(w, http.StatusForbidden, "cannot read another user's history")
		case errors.Is(err, domain.ErrInvalidInput):
			writeError(w, http.StatusBadRequest, "user id is required")
		case errors.Is(err, domain.ErrNotFound):
			writeMessage(w, http.StatusNotFound, "no prediction history for user "+userID)
		default:
			s.serverError(w, r, "failed to load history", err)
		}
		return
	}
	writeJSON(w, http.StatusOK, views)
}

// handleModelStatus godoc
// @Summary      Recommender status
// @Description  Manifest of the artifact set in use
// @Tags         ML
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  domain.ArtifactManifest
// @Failure      404  {object}  ErrorResponse  "Not trained yet"
// @Router       /ml/status [get]
func (s *Server) handleModelStatus(w http.ResponseWriter, r *http.Request) {
	manifest, err := s.recommendationService.Status(r.Context())
	if err != nil {
		if errors.Is(err, domain.ErrArtifactNotFound) {
			writeError(w, http.StatusNotFound, domain.ErrArtifactNotFound.Error())
			return
		}
		s.serverError(w, r, "failed to read artifact status", err)
		return
	}
	writeJSON(w, http.StatusOK, manifest)
}
