package handler

import (
	"errors"
	"mime"
	"net/http"

	"github.com/GoArmGo/WorkoutTracker/internal/domain"
)

type registerRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// loginRequest accepts the email under either key; form logins send it as
// username.
type loginRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register creates an account.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	user, err := h.accounts.Register(r.Context(), req.Email, req.Username, req.Password)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	respondWithJSON(w, http.StatusCreated, user, h.logger)
}

// Login exchanges an email and password for a bearer token. Both form and
// JSON bodies are accepted.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "application/x-www-form-urlencoded", "multipart/form-data":
		if err := r.ParseMultipartForm(maxJSONBodyBytes); err != nil && err != http.ErrNotMultipart {
			respondWithError(w, http.StatusBadRequest, "invalid form body", h.logger)
			return
		}
		req.Username = r.PostFormValue("username")
		req.Email = r.PostFormValue("email")
		req.Password = r.PostFormValue("password")
	default:
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, err, h.logger)
			return
		}
	}

	email := req.Email
	if email == "" {
		email = req.Username
	}
	if email == "" || req.Password == "" {
		writeError(w, r, domain.Invalid("username and password are required"), h.logger)
		return
	}

	token, err := h.accounts.Login(r.Context(), email, req.Password)
	if errors.Is(err, domain.ErrUnauthorized) {
		w.Header().Set("WWW-Authenticate", "Bearer")
		respondWithError(w, http.StatusUnauthorized, "incorrect email or password", h.logger)
		return
	}
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	respondWithJSON(w, http.StatusOK, token, h.logger)
}

// Me returns the authenticated user.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, currentUser(r), h.logger)
}

func (h *Handler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	var in domain.UserUpdate
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	user, err := h.accounts.UpdateProfile(r.Context(), currentUser(r), in)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	respondWithJSON(w, http.StatusOK, user, h.logger)
}

// DeleteMe removes the account and everything it owns.
func (h *Handler) DeleteMe(w http.ResponseWriter, r *http.Request) {
	if err := h.accounts.DeleteAccount(r.Context(), currentUser(r).ID); err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
