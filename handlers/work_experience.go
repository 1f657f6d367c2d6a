package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/camden-git/curriculumbackend/models"
	"github.com/camden-git/curriculumbackend/services"
)

type WorkExperienceManager interface {
	List(ctx context.Context, personID uint) ([]models.WorkExperience, error)
	Get(ctx context.Context, personID, id uint) (*models.WorkExperience, error)
	Create(ctx context.Context, personID uint, in services.WorkExperienceInput) (*models.WorkExperience, error)
	Update(ctx context.Context, personID, id uint, patch services.WorkExperiencePatch) (*models.WorkExperience, error)
	Delete(ctx context.Context, personID, id uint) error
}

type WorkExperienceHandler struct {
	Works WorkExperienceManager
}

func NewWorkExperienceHandler(works WorkExperienceManager) *WorkExperienceHandler {
	return &WorkExperienceHandler{Works: works}
}

type WorkExperienceResponseDTO struct {
	ID          uint      `json:"id"`
	PersonID    uint      `json:"person_id"`
	Position    string    `json:"position"`
	Company     string    `json:"company"`
	StartDate   string    `json:"start_date"`
	EndDate     *string   `json:"end_date"`
	Description *string   `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func toWorkExperienceResponseDTO(we *models.WorkExperience) WorkExperienceResponseDTO {
	return WorkExperienceResponseDTO{
		ID:          we.ID,
		PersonID:    we.PersonID,
		Position:    we.Position,
		Company:     we.Company,
		StartDate:   we.StartDate,
		EndDate:     we.EndDate,
		Description: we.Description,
		CreatedAt:   we.CreatedAt,
		UpdatedAt:   we.UpdatedAt,
	}
}

func workExperienceIDs(w http.ResponseWriter, r *http.Request) (uint, uint, bool) {
	personID, ok := parseID(r, "person_id")
	if !ok {
		writeBadID(w, "person_id")
		return 0, 0, false
	}
	id, ok := parseID(r, "id")
	if !ok {
		writeBadID(w, "work_experience_id")
		return 0, 0, false
	}
	return personID, id, true
}

// ListWorkExperiences godoc
// @Summary List the work experiences of a person
// @Tags work-experiences
// @Produce json
// @Param person_id path int true "Person ID"
// @Success 200 {array} WorkExperienceResponseDTO
// @Failure 404 {object} APIErrorResponse
// @Router /api/people/{person_id}/work-experiences [get]
func (h *WorkExperienceHandler) ListWorkExperiences(w http.ResponseWriter, r *http.Request) {
	personID, ok := parseID(r, "person_id")
	if !ok {
		writeBadID(w, "person_id")
		return
	}
	works, err := h.Works.List(r.Context(), personID)
	if err != nil {
		writeServiceError(w, r, err, "retrieve work experiences")
		return
	}
	dtos := make([]WorkExperienceResponseDTO, len(works))
	for i := range works {
		dtos[i] = toWorkExperienceResponseDTO(&works[i])
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateWorkExperience godoc
// @Summary Create a work experience for a person
// @Tags work-experiences
// @Accept json
// @Produce json
// @Param person_id path int true "Person ID"
// @Param work_experience body services.WorkExperienceInput true "Work experience"
// @Success 201 {object} WorkExperienceResponseDTO
// @Failure 404 {object} APIErrorResponse
// @Failure 422 {object} APIErrorResponse
// @Router /api/people/{person_id}/work-experiences [post]
func (h *WorkExperienceHandler) CreateWorkExperience(w http.ResponseWriter, r *http.Request) {
	personID, ok := parseID(r, "person_id")
	if !ok {
		writeBadID(w, "person_id")
		return
	}
	var req services.WorkExperienceInput
	if _, ok := decodeBody(w, r, &req); !ok {
		return
	}
	we, err := h.Works.Create(r.Context(), personID, req)
	if err != nil {
		writeServiceError(w, r, err, "create the work experience")
		return
	}
	writeJSON(w, http.StatusCreated, toWorkExperienceResponseDTO(we))
}

// GetWorkExperience godoc
// @Summary Get a work experience of a person
// @Tags work-experiences
// @Produce json
// @Param person_id path int true "Person ID"
// @Param id path int true "Work experience ID"
// @Success 200 {object} WorkExperienceResponseDTO
// @Failure 404 {object} APIErrorResponse
// @Router /api/people/{person_id}/work-experiences/{id} [get]
func (h *WorkExperienceHandler) GetWorkExperience(w http.ResponseWriter, r *http.Request) {
	personID, id, ok := workExperienceIDs(w, r)
	if !ok {
		return
	}
	we, err := h.Works.Get(r.Context(), personID, id)
	if err != nil {
		writeServiceError(w, r, err, "retrieve the work experience")
		return
	}
	writeJSON(w, http.StatusOK, toWorkExperienceResponseDTO(we))
}

// UpdateWorkExperience godoc
// @Summary Update a work experience of a person
// @Tags work-experiences
// @Accept json
// @Produce json
// @Param person_id path int true "Person ID"
// @Param id path int true "Work experience ID"
// @Param work_experience body services.WorkExperiencePatch true "Fields to change"
// @Success 200 {object} WorkExperienceResponseDTO
// @Failure 404 {object} APIErrorResponse
// @Failure 422 {object} APIErrorResponse
// @Router /api/people/{person_id}/work-experiences/{id} [put]
func (h *WorkExperienceHandler) UpdateWorkExperience(w http.ResponseWriter, r *http.Request) {
	personID, id, ok := workExperienceIDs(w, r)
	if !ok {
		return
	}
	var req services.WorkExperiencePatch
	nulls, ok := decodeBody(w, r, &req)
	if !ok {
		return
	}
	req.Nulls = nulls

	we, err := h.Works.Update(r.Context(), personID, id, req)
	if err != nil {
		writeServiceError(w, r, err, "update the work experience")
		return
	}
	writeJSON(w, http.StatusOK, toWorkExperienceResponseDTO(we))
}

// DeleteWorkExperience godoc
// @Summary Delete a work experience of a person
// @Tags work-experiences
// @Param person_id path int true "Person ID"
// @Param id path int true "Work experience ID"
// @Success 204 "No Content"
// @Failure 404 {object} APIErrorResponse
// @Router /api/people/{person_id}/work-experiences/{id} [delete]
func (h *WorkExperienceHandler) DeleteWorkExperience(w http.ResponseWriter, r *http.Request) {
	personID, id, ok := workExperienceIDs(w, r)
	if !ok {
		return
	}
	if err := h.Works.Delete(r.Context(), personID, id); err != nil {
		writeServiceError(w, r, err, "delete the work experience")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
