package handlers

import (
	"errors"
	"net/http"

	"github.com/aliyevdev/accountd/internal/apperrors"
	"github.com/aliyevdev/accountd/internal/handlers/render"
	"github.com/aliyevdev/accountd/internal/handlers/userctx"
	"github.com/aliyevdev/accountd/internal/logger"
	"github.com/aliyevdev/accountd/internal/service/auth"
)

func handleUserMe() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := userctx.FromContext(r.Context())
		if !ok {
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		render.JSON(w, newUserResponse(user))
	})
}

func handleUpdateProfile(s authService, l logger.Logger) http.Handler {
	type request struct {
		Username  *string `json:"username" validate:"omitempty,min=2,max=50"`
		FirstName *string `json:"first_name" validate:"omitempty,max=100"`
		LastName  *string `json:"last_name" validate:"omitempty,max=100"`
		Password  *string `json:"password" validate:"omitempty,min=8,max=128"`
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

		updated, err := s.UpdateProfile(r.Context(), user.ID, auth.ProfileUpdateParams{
			Username:  data.Username,
			FirstName: data.FirstName,
			LastName:  data.LastName,
			Password:  data.Password,
		})
		if err != nil {
			switch {
			case errors.Is(err, apperrors.ErrUserAlreadyExists):
				render.ServiceError(w, "Username already taken", http.StatusConflict)
			case errors.Is(err, apperrors.ErrUserNotFound):
				render.ServiceError(w, "User not found", http.StatusNotFound)
			default:
				l.Error("profile update failed", "user_id", user.ID, "error", err.Error())
				render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			}
			return
		}

		render.JSON(w, newUserResponse(updated))
	})
}

func handleUpdatePhoto(s authService, l logger.Logger) http.Handler {
	type request struct {
		PhotoURL string `json:"photo_url" validate:"required,url,max=500"`
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

		updated, err := s.UpdatePhoto(r.Context(), user.ID, data.PhotoURL)
		if err != nil {
			switch {
			case errors.Is(err, apperrors.ErrUserNotFound):
				render.ServiceError(w, "User not found", http.StatusNotFound)
			default:
				l.Error("photo update failed", "user_id", user.ID, "error", err.Error())
				render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			}
			return
		}

		render.JSON(w, newUserResponse(updated))
	})
}
