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

const msgRoleTaken = "The rol has already been taken."

type RoleHandler struct {
	RoleRepo repository.RoleRepository
	DB       *gorm.DB // uniqueness checks
	Validate *validation.Validator
}

func NewRoleHandler(db *gorm.DB, roleRepo repository.RoleRepository, v *validation.Validator) *RoleHandler {
	return &RoleHandler{RoleRepo: roleRepo, DB: db, Validate: v}
}

type RoleCreatePayload struct {
	Rol string `json:"rol" validate:"required,max=255"`
}

type RoleUpdatePayload struct {
	Rol *string `json:"rol" validate:"omitnil,min=1,max=255"`
}

type RoleResponseDTO struct {
	ID        uint      `json:"id"`
	Rol       string    `json:"rol"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toRoleResponseDTO(role *models.Role) RoleResponseDTO {
	return RoleResponseDTO{ID: role.ID, Rol: role.Rol, CreatedAt: role.CreatedAt, UpdatedAt: role.UpdatedAt}
}

func (h *RoleHandler) rolTaken(r *http.Request, rol string, excludeID uint) (*validation.Errors, error) {
	taken, err := database.ValueTaken(r.Context(), h.DB, "roles", "rol", rol, excludeID)
	if err != nil || !taken {
		return nil, err
	}
	return validation.Single("rol", msgRoleTaken), nil
}

// ListRoles godoc
// @Summary List all roles
// @Tags roles
// @Produce json
// @Success 200 {array} RoleResponseDTO
// @Failure 500 {object} APIErrorResponse
// @Router /api/roles [get]
func (h *RoleHandler) ListRoles(w http.ResponseWriter, r *http.Request) {
	roles, err := h.RoleRepo.ListAll(r.Context())
	if err != nil {
		writeServiceError(w, r, err, "retrieve roles")
		return
	}
	dtos := make([]RoleResponseDTO, len(roles))
	for i := range roles {
		dtos[i] = toRoleResponseDTO(&roles[i])
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateRole godoc
// @Summary Create a role
// @Tags roles
// @Accept json
// @Produce json
// @Param role body RoleCreatePayload true "Role"
// @Success 201 {object} RoleResponseDTO
// @Failure 422 {object} APIErrorResponse
// @Router /api/roles [post]
func (h *RoleHandler) CreateRole(w http.ResponseWriter, r *http.Request) {
	var payload RoleCreatePayload
	if _, ok := decodeBody(w, r, &payload); !ok {
		return
	}
	extra, err := h.rolTaken(r, payload.Rol, 0)
	if err != nil {
		writeServiceError(w, r, err, "create the role")
		return
	}
	if err := h.Validate.Merge(payload, extra); err != nil {
		writeServiceError(w, r, err, "create the role")
		return
	}

	role := &models.Role{Rol: payload.Rol}
	if err := h.RoleRepo.Create(r.Context(), role); err != nil {
		writeServiceError(w, r, duplicateRol(err), "create the role")
		return
	}
	writeJSON(w, http.StatusCreated, toRoleResponseDTO(role))
}

// GetRole godoc
// @Summary Get a role
// @Tags roles
// @Produce json
// @Param id path int true "Role ID"
// @Success 200 {object} RoleResponseDTO
// @Failure 404 {object} APIErrorResponse
// @Router /api/roles/{id} [get]
func (h *RoleHandler) GetRole(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r, "id")
	if !ok {
		writeBadID(w, "role_id")
		return
	}
	role, err := h.RoleRepo.GetByID(r.Context(), id)
	if err != nil {
		writeRepoError(w, r, err, "Role", "retrieve the role")
		return
	}
	writeJSON(w, http.StatusOK, toRoleResponseDTO(role))
}

// UpdateRole godoc
// @Summary Update a role
// @Tags roles
// @Accept json
// @Produce json
// @Param id path int true "Role ID"
// @Param role body RoleUpdatePayload true "Fields to change"
// @Success 200 {object} RoleResponseDTO
// @Failure 404 {object} APIErrorResponse
// @Failure 422 {object} APIErrorResponse
// @Router /api/roles/{id} [put]
func (h *RoleHandler) UpdateRole(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r, "id")
	if !ok {
		writeBadID(w, "role_id")
		return
	}
	role, err := h.RoleRepo.GetByID(r.Context(), id)
	if err != nil {
		writeRepoError(w, r, err, "Role", "retrieve the role")
		return
	}

	var payload RoleUpdatePayload
	nulls, ok := decodeBody(w, r, &payload)
	if !ok {
		return
	}
	extra := &validation.Errors{}
	if payload.Rol != nil {
		taken, err := h.rolTaken(r, *payload.Rol, id)
		if err != nil {
			writeServiceError(w, r, err, "update the role")
			return
		}
		if taken != nil {
			extra = taken
		}
	}
	nulls.RequireIfPresent(extra, "rol")
	if err := h.Validate.Merge(payload, extra); err != nil {
		writeServiceError(w, r, err, "update the role")
		return
	}

	if payload.Rol != nil {
		role.Rol = *payload.Rol
	}
	if err := h.RoleRepo.Save(r.Context(), role); err != nil {
		writeServiceError(w, r, duplicateRol(err), "update the role")
		return
	}
	writeJSON(w, http.StatusOK, toRoleResponseDTO(role))
}

// DeleteRole godoc
// @Summary Delete a role
// @Tags roles
// @Param id path int true "Role ID"
// @Success 204 "No Content"
// @Failure 404 {object} APIErrorResponse
// @Router /api/roles/{id} [delete]
func (h *RoleHandler) DeleteRole(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r, "id")
	if !ok {
		writeBadID(w, "role_id")
		return
	}
	if err := h.RoleRepo.Delete(r.Context(), id); err != nil {
		writeRepoError(w, r, err, "Role", "delete the role")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func duplicateRol(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return validation.Single("rol", msgRoleTaken)
	}
	return err
}
