package server

import (
	"net/http"

	"github.com/pkg/errors"

	"shoppa/internal/identity"
	"shoppa/internal/model"
)

type userResponse struct {
	User *model.Identity `json:"user"`
}

func (s Server) userGet() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.writeJsonResponse(w, userResponse{User: s.Users.Current()}, http.StatusOK)
	}
}

func (s Server) userSignup() http.HandlerFunc {
	type request struct {
		Name  string `json:"name"`
		Email string `json:"email"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		tid := getTraceContext(r.Context()).traceID
		req := request{}
		if !s.decodeJson(w, r, &req, "userSignup") {
			return
		}
		u, err := s.Users.SignUp(r.Context(), req.Name, req.Email)
		if err != nil {
			switch {
			case errors.Is(err, identity.ErrInvalidInput):
				s.Logger.Debugf("userSignup: Invalid input, err: %v, TraceID: %s", err, tid)
				s.writeJsonError(w, "name and a valid email are required", http.StatusBadRequest)
			case errors.Is(err, identity.ErrDuplicateEmail):
				s.Logger.Debugf("userSignup: Duplicate email, err: %v, TraceID: %s", err, tid)
				s.writeJsonError(w, "email already registered", http.StatusConflict)
			default:
				s.Logger.Errorf("userSignup: Error signing up, err: %v, TraceID: %s", err, tid)
				s.writeJsonError(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			}
			return
		}
		s.writeJsonResponse(w, userResponse{User: u}, http.StatusCreated)
	}
}

func (s Server) userLogin() http.HandlerFunc {
	type request struct {
		Email string `json:"email"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		tid := getTraceContext(r.Context()).traceID
		req := request{}
		if !s.decodeJson(w, r, &req, "userLogin") {
			return
		}
		u, err := s.Users.Login(r.Context(), req.Email)
		if err != nil {
			if errors.Is(err, model.ErrNotFound) {
				s.Logger.Debugf("userLogin: Unknown email, TraceID: %s", tid)
				s.writeJsonError(w, "no account with that email", http.StatusNotFound)
				return
			}
			s.Logger.Errorf("userLogin: Error logging in, err: %v, TraceID: %s", err, tid)
			s.writeJsonError(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		s.writeJsonResponse(w, userResponse{User: u}, http.StatusOK)
	}
}

func (s Server) userGuest() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, err := s.Users.ContinueAsGuest(r.Context())
		if err != nil {
			s.Logger.Errorf("userGuest: Error switching to guest, err: %v, TraceID: %s", err, getTraceContext(r.Context()).traceID)
			s.writeJsonError(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		s.writeJsonResponse(w, userResponse{User: u}, http.StatusOK)
	}
}

func (s Server) userLogout() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.Users.Logout(r.Context()); err != nil {
			s.Logger.Errorf("userLogout: Error logging out, err: %v, TraceID: %s", err, getTraceContext(r.Context()).traceID)
			s.writeJsonError(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		s.writeJsonResponse(w, userResponse{}, http.StatusOK)
	}
}
