package handlers

import (
	"context"
	"net/http"

	"github.com/camden-git/curriculumbackend/models"
	"github.com/camden-git/curriculumbackend/services"
)

// Authenticator is the part of services.AuthService the auth endpoints use.
type Authenticator interface {
	TokenAuthenticator
	Login(ctx context.Context, in services.LoginInput) (string, *models.User, error)
	Logout(ctx context.Context, userID uint) error
	Setup(ctx context.Context, in services.SetupInput) (*models.User, error)
}

type AuthHandler struct {
	Auth Authenticator
}

func NewAuthHandler(auth Authenticator) *AuthHandler {
	return &AuthHandler{Auth: auth}
}

type LoginResponse struct {
	Message string `json:"message"`
	Token   string `json:"token"`
}

// Login godoc
// @Summary Log in
// @Description Exchange email and password for a bearer token
// @Tags auth
// @Accept json
// @Produce json
// @Param credentials body services.LoginInput true "Credentials"
// @Success 200 {object} LoginResponse
// @Failure 401 {object} APIErrorResponse
// @Failure 422 {object} APIErrorResponse
// @Router /api/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var payload services.LoginInput
	if _, ok := decodeBody(w, r, &payload); !ok {
		return
	}

	token, _, err := h.Auth.Login(r.Context(), payload)
	if err != nil {
		writeServiceError(w, r, err, "log in")
		return
	}
	writeJSON(w, http.StatusOK, LoginResponse{Message: "Login successful.", Token: token})
}

// Logout godoc
// @Summary Log out
// @Description Revoke every token of the authenticated user
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Router /api/logout [post]
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": msgUnauthenticated})
		return
	}
	if err := h.Auth.Logout(r.Context(), user.ID); err != nil {
		writeServiceError(w, r, err, "log out")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Logged out successfully."})
}

// CurrentUser godoc
// @Summary Current user
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} UserResponseDTO
// @Failure 401 {object} map[string]string
// @Router /api/user [get]
func (h *AuthHandler) CurrentUser(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": msgUnauthenticated})
		return
	}
	writeJSON(w, http.StatusOK, toUserResponseDTO(user))
}
