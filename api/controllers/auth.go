package controllers

import (
	"net/http"
	"time"

	"github.com/megano/shop-backend/api/middleware"
	"github.com/megano/shop-backend/api/responses"
	"github.com/megano/shop-backend/api/validators"
	authsvc "github.com/megano/shop-backend/internal/auth"
	"github.com/megano/shop-backend/pkg/config"
	pkgerrors "github.com/megano/shop-backend/pkg/errors"
	"github.com/megano/shop-backend/pkg/logger"
)

type sessionResponse struct {
	Token    string `json:"token"`
	Username string `json:"username"`
}

// SignUp registers a new account and signs it in.
func SignUp(svc authsvc.Service, cfg config.JWTConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "auth service unavailable"))
			return
		}

		var payload authsvc.SignUpInput
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		sess, err := svc.SignUp(r.Context(), payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		setSessionCookie(w, cfg, sess.Token)
		responses.WriteSuccessStatus(w, http.StatusCreated, sessionResponse{Token: sess.Token, Username: sess.Username})
	}
}

// SignIn exchanges credentials for a session token.
func SignIn(svc authsvc.Service, cfg config.JWTConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "auth service unavailable"))
			return
		}

		var payload authsvc.SignInInput
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		sess, err := svc.SignIn(r.Context(), payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		setSessionCookie(w, cfg, sess.Token)
		responses.WriteSuccess(w, sessionResponse{Token: sess.Token, Username: sess.Username})
	}
}

// SignOut revokes the current session and clears the cookie.
func SignOut(svc authsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "auth service unavailable"))
			return
		}

		sessionID := middleware.SessionIDFromContext(r.Context())
		if err := svc.SignOut(r.Context(), sessionID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		clearSessionCookie(w)
		responses.WriteSuccess(w, nil)
	}
}

func setSessionCookie(w http.ResponseWriter, cfg config.JWTConfig, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(time.Duration(cfg.ExpirationMinutes) * time.Minute / time.Second),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
