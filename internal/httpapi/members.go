package httpapi

import "net/http"

type credentialsRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

func (a *api) register(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, a.logger, err)
		return
	}

	token, err := a.auth.Register(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, r, a.logger, err)
		return
	}
	respondJSON(w, http.StatusCreated, tokenResponse{Token: token})
}

func (a *api) login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, a.logger, err)
		return
	}

	token, err := a.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, r, a.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, tokenResponse{Token: token})
}
