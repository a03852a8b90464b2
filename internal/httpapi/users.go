package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"github.com/ahinestrog/shoppyglobe/internal/user"
)

const msgMissingCredentials = "Username and password are required"

type credentials struct {
	UserName string `json:"userName"`
	Password string `json:"password"`
}

func (c credentials) missing() bool {
	return strings.TrimSpace(c.UserName) == "" || c.Password == ""
}

type loginResponse struct {
	Message string `json:"message"`
	Token   string `json:"token"`
}

func (a *api) register(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	var req credentials
	if err := decodeBody(w, r, &req); err != nil || req.missing() {
		writeMessage(w, http.StatusBadRequest, msgMissingCredentials)
		return
	}
	err := a.accounts.Register(r.Context(), req.UserName, req.Password)
	switch {
	case errors.Is(err, user.ErrAlreadyExists):
		writeMessage(w, http.StatusBadRequest, "User already exists")
	case errors.Is(err, user.ErrMissingCredentials):
		writeMessage(w, http.StatusBadRequest, msgMissingCredentials)
	case err != nil:
		writeInternal(w, r, err, "Failed to register user")
	default:
		writeMessage(w, http.StatusCreated, "User registered successfully")
	}
}

func (a *api) login(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	var req credentials
	if err := decodeBody(w, r, &req); err != nil || req.missing() {
		writeMessage(w, http.StatusBadRequest, msgMissingCredentials)
		return
	}
	token, err := a.accounts.Login(r.Context(), req.UserName, req.Password)
	switch {
	case errors.Is(err, user.ErrInvalidCredentials):
		writeMessage(w, http.StatusUnauthorized, "Invalid Username or password")
	case errors.Is(err, user.ErrMissingCredentials):
		writeMessage(w, http.StatusBadRequest, msgMissingCredentials)
	case err != nil:
		writeInternal(w, r, err, "Failed to authenticate user")
	default:
		writeJSON(w, http.StatusOK, loginResponse{Message: "Login successful", Token: token})
	}
}
