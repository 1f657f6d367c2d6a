package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/camden-git/curriculumbackend/database"
	"github.com/camden-git/curriculumbackend/models"
	"github.com/camden-git/curriculumbackend/repository"
	"github.com/camden-git/curriculumbackend/validation"
	"gorm.io/gorm"
)

const msgUserEmailTaken = "The email has already been taken."

type UserHandler struct {
	UserRepo repository.UserRepository
	DB       *gorm.DB // uniqueness checks
	Validate *validation.Validator
}

func NewUserHandler(db *gorm.DB, userRepo repository.UserRepository, v *validation.Validator) *UserHandler {
	return &UserHandler{UserRepo: userRepo, DB: db, Validate: v}
}

type UserCreatePayload struct {
	Name     string `json:"name" validate:"required,max=255"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=8"`
}

type UserUpdatePayload struct {
	Name     *string `json:"name" validate:"omitnil,min=1,max=255"`
	Email    *string `json:"email" validate:"omitnil,email,max=255"`
	Password *string `json:"password" validate:"omitnil,min=8"`
}

// UserResponseDTO is a User model for API responses, excluding the password hash.
type UserResponseDTO struct {
	ID        uint      `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toUserResponseDTO(user *models.User) UserResponseDTO {
	return UserResponseDTO{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}

func (h *UserHandler) emailTaken(r *http.Request, email string, excludeID uint) (*validation.Errors, error) {
	taken, err := database.ValueTaken(r.Context(), h.DB, "users", "email", email, excludeID)
	if err != nil || !taken {
		return nil, err
	}
	return validation.Single("email", msgUserEmailTaken), nil
}

// ListUsers godoc
// @Summary List all users
// @Tags users
// @Produce json
// @Success 200 {array} UserResponseDTO
// @Failure 500 {object} APIErrorResponse
// @Router /api/users [get]
// @Security BearerAuth
func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.UserRepo.ListAll(r.Context())
	if err != nil {
		writeServiceError(w, r, err, "retrieve users")
		return
	}
	dtos := make([]UserResponseDTO, len(users))
	for i := range users {
		dtos[i] = toUserResponseDTO(&users[i])
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateUser godoc
// @Summary Create a user
// @Tags users
// @Accept json
// @Produce json
// @Param user body UserCreatePayload true "User"
// @Success 201 {object} UserResponseDTO
// @Failure 422 {object} APIErrorResponse
// @Router /api/users [post]
// @Security BearerAuth
func (h *UserHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var payload UserCreatePayload
	if _, ok := decodeBody(w, r, &payload); !ok {
		return
	}
	extra, err := h.emailTaken(r, payload.Email, 0)
	if err != nil {
		writeServiceError(w, r, err, "create the user")
		return
	}
	if err := h.Validate.Merge(payload, extra); err != nil {
		writeServiceError(w, r, err, "create the user")
		return
	}

	user := &models.User{Name: payload.Name, Email: payload.Email}
	if err := user.SetPassword(payload.Password); err != nil {
		writeServiceError(w, r, err, "create the user")
		return
	}
	if err := h.UserRepo.Create(r.Context(), user); err != nil {
		writeServiceError(w, r, duplicateUserEmail(err), "create the user")
		return
	}
	writeJSON(w, http.StatusCreated, toUserResponseDTO(user))
}

// GetUser godoc
// @Summary Get a user
// @Tags users
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} UserResponseDTO
// @Failure 404 {object} APIErrorResponse
// @Router /api/users/{id} [get]
// @Security BearerAuth
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r, "id")
	if !ok {
		writeBadID(w, "user_id")
		return
	}
	user, err := h.UserRepo.GetByID(r.Context(), id)
	if err != nil {
		writeRepoError(w, r, err, "User", "retrieve the user")
		return
	}
	writeJSON(w, http.StatusOK, toUserResponseDTO(user))
}

// UpdateUser godoc
// @Summary Update a user
// @Description Partial update; a new password is hashed before it is stored
// @Tags users
// @Accept json
// @Produce json
// @Param id path int true "User ID"
// @Param user body UserUpdatePayload true "Fields to change"
// @Success 200 {object} UserResponseDTO
// @Failure 404 {object} APIErrorResponse
// @Failure 422 {object} APIErrorResponse
// @Router /api/users/{id} [put]
// @Security BearerAuth
func (h *UserHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r, "id")
	if !ok {
		writeBadID(w, "user_id")
		return
	}
	user, err := h.UserRepo.GetByID(r.Context(), id)
	if err != nil {
		writeRepoError(w, r, err, "User", "retrieve the user")
		return
	}

	var payload UserUpdatePayload
	nulls, ok := decodeBody(w, r, &payload)
	if !ok {
		return
	}
	extra := &validation.Errors{}
	if payload.Email != nil {
		taken, err := h.emailTaken(r, *payload.Email, id)
		if err != nil {
			writeServiceError(w, r, err, "update the user")
			return
		}
		if taken != nil {
			extra = taken
		}
	}
	nulls.RequireIfPresent(extra, "name", "email", "password")
	if err := h.Validate.Merge(payload, extra); err != nil {
		writeServiceError(w, r, err, "update the user")
		return
	}

	if payload.Name != nil {
		user.Name = *payload.Name
	}
	if payload.Email != nil {
		user.Email = *payload.Email
	}
	if payload.Password != nil {
		if err := user.SetPassword(*payload.Password); err != nil {
			writeServiceError(w, r, err, "update the user")
			return
		}
	}

	if err := h.UserRepo.Save(r.Context(), user); err != nil {
		writeServiceError(w, r, duplicateUserEmail(err), "update the user")
		return
	}
	writeJSON(w, http.StatusOK, toUserResponseDTO(user))
}

// DeleteUser godoc
// @Summary Delete a user
// @Description Deletes the user and revokes every token issued to them
// @Tags users
// @Param id path int true "User ID"
// @Success 204 "No Content"
// @Failure 404 {object} APIErrorResponse
// @Router /api/users/{id} [delete]
// @Security BearerAuth
func (h *UserHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r, "id")
	if !ok {
		writeBadID(w, "user_id")
		return
	}
	if err := h.UserRepo.Delete(r.Context(), id); err != nil {
		writeRepoError(w, r, err, "User", "delete the user")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func duplicateUserEmail(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return validation.Single("email", msgUserEmailTaken)
	}
	return err
}
