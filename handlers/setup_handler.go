package handlers

import (
	"net/http"

	"github.com/camden-git/curriculumbackend/services"
)

type SetupHandler struct {
	Auth Authenticator
}

func NewSetupHandler(auth Authenticator) *SetupHandler {
	return &SetupHandler{Auth: auth}
}

// CreateFirstUser godoc
// @Summary Create the first user
// @Description Only allowed while no user exists
// @Tags setup
// @Accept json
// @Produce json
// @Param user body services.SetupInput true "First user"
// @Success 201 {object} UserResponseDTO
// @Failure 403 {object} APIErrorResponse
// @Failure 422 {object} APIErrorResponse
// @Router /api/setup [post]
func (h *SetupHandler) CreateFirstUser(w http.ResponseWriter, r *http.Request) {
	var payload services.SetupInput
	if _, ok := decodeBody(w, r, &payload); !ok {
		return
	}

	user, err := h.Auth.Setup(r.Context(), payload)
	if err != nil {
		writeServiceError(w, r, err, "create the first user")
		return
	}
	writeJSON(w, http.StatusCreated, toUserResponseDTO(user))
}
