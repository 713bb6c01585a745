package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"wtfBlog/crud"
	"wtfBlog/domain"
	"wtfBlog/errs"
)

const rememberCookie = "remember_token"

// userKey is the private context key the signed-in user travels under.
type privateKey string

const userKey privateKey = "user"

func (s *Server) registerAuthRoutes(r *mux.Router) {
	r.HandleFunc("/register", s.handleRegister).Methods("POST")
	r.HandleFunc("/login", s.handleLogin).Methods("POST")
	r.HandleFunc("/logout", s.requireAuth(s.handleLogout)).Methods("POST")
}

// credentials is the json body of register and login requests.
type credentials struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// handleRegister handles the route "POST /register".
// It creates a new user account and signs it in right away.
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var creds credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		errs.ReturnError(w, r, errs.Errorf(errs.EINVALID, "Invalid registration data."))
		return
	}
	user := domain.User{
		Username: creds.Username,
		Email:    creds.Email,
		Password: creds.Password,
	}
	if err := s.us.Create(r.Context(), &user); err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	if err := s.signIn(w, r.Context(), &user); err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusCreated, &user)
}

// handleLogin handles the route "POST /login".
// It checks the submitted credentials and starts a session.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var creds credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		errs.ReturnError(w, r, errs.Errorf(errs.EINVALID, "Invalid login data."))
		return
	}
	user, err := s.us.Authenticate(creds.Email, creds.Password)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	if err := s.signIn(w, r.Context(), user); err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, map[string]string{"message": "successfully logged in"})
}

// handleLogout handles the route "POST /logout".
// It expires the session cookie and rotates the remember token, so the
// old cookie value is worthless even if it leaks.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     rememberCookie,
		Value:    "",
		Expires:  time.Now(),
		HttpOnly: true,
	})
	user := s.getUserFromContext(r.Context())
	token, err := crud.MakeRememberToken()
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	user.Remember = token
	if err := s.us.Update(r.Context(), user); err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, map[string]string{"message": "successfully logged out"})
}

// signIn is used to sign the given user in via cookies.
func (s *Server) signIn(w http.ResponseWriter, ctx context.Context, user *domain.User) error {
	http.SetCookie(w, &http.Cookie{
		Name:     rememberCookie,
		Value:    user.Remember,
		HttpOnly: true,
		Secure:   s.isProd,
	})
	return nil
}

// The checkUser middleware tries to identify the requesting user by
// their remember cookie and, on success, stores them in the request
// context. Anonymous requests pass through untouched.
func (s *Server) checkUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(rememberCookie)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}
		user, err := s.us.ByRemember(cookie.Value)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}
		r = r.WithContext(s.setUserInContext(r.Context(), user))
		next.ServeHTTP(w, r)
	})
}

// requireAuth redirects anonymous callers to the login page. It
// assumes the checkUser middleware has already run.
func (s *Server) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := s.getUserFromContext(r.Context())
		if user == nil {
			http.Redirect(w, r, "/login?next="+r.URL.Path, http.StatusFound)
			return
		}
		next.ServeHTTP(w, r)
	}
}

func (s *Server) setUserInContext(ctx context.Context, user *domain.User) context.Context {
	return context.WithValue(ctx, userKey, user)
}

func (s *Server) getUserFromContext(ctx context.Context) *domain.User {
	if temp := ctx.Value(userKey); temp != nil {
		if user, ok := temp.(*domain.User); ok {
			return user
		}
	}
	return nil
}
