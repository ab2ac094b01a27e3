package handlers

import (
	"errors"
	"net/http"

	"github.com/aliyevdev/accountd/internal/apperrors"
	"github.com/aliyevdev/accountd/internal/handlers/render"
	"github.com/aliyevdev/accountd/internal/handlers/userctx"
	"github.com/aliyevdev/accountd/internal/logger"
)

func handleVerify(s authService, l logger.Logger) http.Handler {
	type request struct {
		Code string `json:"code" validate:"required,numeric,min=4,max=8"`
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

		user, pair, err := s.Verify(r.Context(), user, data.Code)
		if err != nil {
			switch {
			case errors.Is(err, apperrors.ErrCodeInvalidOrExpired):
				render.ServiceError(w, "Verification code is invalid or expired", http.StatusBadRequest)
			default:
				l.Error("verify failed", "user_id", user.ID, "error", err.Error())
				render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			}
			return
		}

		s.SetTokens(w, pair)
		render.JSON(w, newAuthResponse(user, pair))
	})
}

func handleResendCode(s authService, l logger.Logger) http.Handler {
	type response struct {
		Message string `json:"message"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := userctx.FromContext(r.Context())
		if !ok {
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		if err := s.ResendCode(r.Context(), user); err != nil {
			switch {
			case errors.Is(err, apperrors.ErrCodeStillValid):
				render.ServiceError(w, "Verification code was sent recently, wait until it expires", http.StatusTooManyRequests)
			case errors.Is(err, apperrors.ErrChannelUnsupported):
				render.ServiceError(w, "Verification code resend is not supported for this account", http.StatusBadRequest)
			default:
				l.Error("code resend failed", "user_id", user.ID, "error", err.Error())
				render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			}
			return
		}

		render.JSON(w, response{Message: "Verification code sent"})
	})
}
