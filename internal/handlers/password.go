package handlers

import (
	"errors"
	"net/http"

	"github.com/aliyevdev/accountd/internal/apperrors"
	"github.com/aliyevdev/accountd/internal/handlers/render"
	"github.com/aliyevdev/accountd/internal/handlers/userctx"
	"github.com/aliyevdev/accountd/internal/logger"
)

func handleForgotPassword(s authService, l logger.Logger) http.Handler {
	type request struct {
		Identity string `json:"identity" validate:"required,identity"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		user, pair, err := s.ForgotPassword(r.Context(), data.Identity)
		if err != nil {
			switch {
			case errors.Is(err, apperrors.ErrUserNotFound):
				render.ServiceError(w, "User not found", http.StatusNotFound)
			default:
				l.Error("forgot password failed", "error", err.Error())
				render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			}
			return
		}

		s.SetTokens(w, pair)
		render.JSON(w, newAuthResponse(user, pair))
	})
}

func handleResetPassword(s authService, l logger.Logger) http.Handler {
	type request struct {
		Password string `json:"password" validate:"required,min=8,max=128"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := userctx.FromContext(r.Context())
		if !ok {
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		data, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		user, pair, err := s.ResetPassword(r.Context(), user.ID, data.Password)
		if err != nil {
			switch {
			case errors.Is(err, apperrors.ErrUserNotFound):
				render.ServiceError(w, "User not found", http.StatusNotFound)
			default:
				l.Error("password reset failed", "user_id", user.ID, "error", err.Error())
				render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			}
			return
		}

		s.SetTokens(w, pair)
		render.JSON(w, newAuthResponse(user, pair))
	})
}
