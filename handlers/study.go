package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/camden-git/curriculumbackend/models"
	"github.com/camden-git/curriculumbackend/services"
)

// StudyManager is the scoped study service as seen by the HTTP layer.
type StudyManager interface {
	List(ctx context.Context, personID uint) ([]models.Study, error)
	Get(ctx context.Context, personID, studyID uint) (*models.Study, error)
	Create(ctx context.Context, personID uint, in services.StudyInput) (*models.Study, error)
	Update(ctx context.Context, personID, studyID uint, patch services.StudyPatch) (*models.Study, error)
	Delete(ctx context.Context, personID, studyID uint) error
	UploadCertificationFile(ctx context.Context, personID, studyID uint, upload *services.Upload) (string, error)
}

type StudyHandler struct {
	Studies       StudyManager
	MaxUploadSize int64
}

func NewStudyHandler(studies StudyManager, maxUploadSize int64) *StudyHandler {
	return &StudyHandler{Studies: studies, MaxUploadSize: maxUploadSize}
}

type StudyResponseDTO struct {
	ID          uint      `json:"id"`
	PersonID    uint      `json:"person_id"`
	Institution string    `json:"institution"`
	Degree      string    `json:"degree"`
	Level       string    `json:"level"`
	StartDate   *string   `json:"start_date"`
	EndDate     *string   `json:"end_date"`
	Description *string   `json:"description"`
	ImgName     *string   `json:"img_name"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func toStudyResponseDTO(s *models.Study) StudyResponseDTO {
	return StudyResponseDTO{
		ID:          s.ID,
		PersonID:    s.PersonID,
		Institution: s.Institution,
		Degree:      s.Degree,
		Level:       s.Level,
		StartDate:   s.StartDate,
		EndDate:     s.EndDate,
		Description: s.Description,
		ImgName:     s.ImgName,
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
	}
}

type UploadResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Path    string `json:"path"`
}

func studyIDs(w http.ResponseWriter, r *http.Request) (uint, uint, bool) {
	personID, ok := parseID(r, "person_id")
	if !ok {
		writeBadID(w, "person_id")
		return 0, 0, false
	}
	studyID, ok := parseID(r, "study_id")
	if !ok {
		writeBadID(w, "study_id")
		return 0, 0, false
	}
	return personID, studyID, true
}

// ListStudies godoc
// @Summary List the studies of a person
// @Tags studies
// @Produce json
// @Param person_id path int true "Person ID"
// @Success 200 {array} StudyResponseDTO
// @Failure 404 {object} APIErrorResponse
// @Router /api/people/{person_id}/studies [get]
func (h *StudyHandler) ListStudies(w http.ResponseWriter, r *http.Request) {
	personID, ok := parseID(r, "person_id")
	if !ok {
		writeBadID(w, "person_id")
		return
	}
	studies, err := h.Studies.List(r.Context(), personID)
	if err != nil {
		writeServiceError(w, r, err, "retrieve studies")
		return
	}
	dtos := make([]StudyResponseDTO, len(studies))
	for i := range studies {
		dtos[i] = toStudyResponseDTO(&studies[i])
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateStudy godoc
// @Summary Create a study for a person
// @Tags studies
// @Accept json
// @Produce json
// @Param person_id path int true "Person ID"
// @Param study body services.StudyInput true "Study"
// @Success 201 {object} StudyResponseDTO
// @Failure 404 {object} APIErrorResponse
// @Failure 422 {object} APIErrorResponse
// @Router /api/people/{person_id}/studies [post]
func (h *StudyHandler) CreateStudy(w http.ResponseWriter, r *http.Request) {
	personID, ok := parseID(r, "person_id")
	if !ok {
		writeBadID(w, "person_id")
		return
	}
	var req services.StudyInput
	if _, ok := decodeBody(w, r, &req); !ok {
		return
	}
	study, err := h.Studies.Create(r.Context(), personID, req)
	if err != nil {
		writeServiceError(w, r, err, "create the study")
		return
	}
	writeJSON(w, http.StatusCreated, toStudyResponseDTO(study))
}

// GetStudy godoc
// @Summary Get a study of a person
// @Tags studies
// @Produce json
// @Param person_id path int true "Person ID"
// @Param study_id path int true "Study ID"
// @Success 200 {object} StudyResponseDTO
// @Failure 404 {object} APIErrorResponse
// @Router /api/people/{person_id}/studies/{study_id} [get]
func (h *StudyHandler) GetStudy(w http.ResponseWriter, r *http.Request) {
	personID, studyID, ok := studyIDs(w, r)
	if !ok {
		return
	}
	study, err := h.Studies.Get(r.Context(), personID, studyID)
	if err != nil {
		writeServiceError(w, r, err, "retrieve the study")
		return
	}
	writeJSON(w, http.StatusOK, toStudyResponseDTO(study))
}

// UpdateStudy godoc
// @Summary Update a study of a person
// @Tags studies
// @Accept json
// @Produce json
// @Param person_id path int true "Person ID"
// @Param study_id path int true "Study ID"
// @Param study body services.StudyPatch true "Fields to change"
// @Success 200 {object} StatusResponse{data=StudyResponseDTO}
// @Failure 404 {object} APIErrorResponse
// @Failure 422 {object} APIErrorResponse
// @Router /api/people/{person_id}/studies/{study_id} [put]
func (h *StudyHandler) UpdateStudy(w http.ResponseWriter, r *http.Request) {
	personID, studyID, ok := studyIDs(w, r)
	if !ok {
		return
	}
	var req services.StudyPatch
	nulls, ok := decodeBody(w, r, &req)
	if !ok {
		return
	}
	req.Nulls = nulls

	study, err := h.Studies.Update(r.Context(), personID, studyID, req)
	if err != nil {
		writeServiceError(w, r, err, "update the study")
		return
	}
	writeJSON(w, http.StatusOK, StatusResponse{
		Status:  statusSuccess,
		Message: "Study updated successfully.",
		Data:    toStudyResponseDTO(study),
	})
}

// DeleteStudy godoc
// @Summary Delete a study of a person
// @Description Also deletes its certification file when one was uploaded
// @Tags studies
// @Produce json
// @Param person_id path int true "Person ID"
// @Param study_id path int true "Study ID"
// @Success 200 {object} StatusResponse
// @Failure 404 {object} APIErrorResponse
// @Router /api/people/{person_id}/studies/{study_id} [delete]
func (h *StudyHandler) DeleteStudy(w http.ResponseWriter, r *http.Request) {
	personID, studyID, ok := studyIDs(w, r)
	if !ok {
		return
	}
	if err := h.Studies.Delete(r.Context(), personID, studyID); err != nil {
		writeServiceError(w, r, err, "delete the study")
		return
	}
	writeJSON(w, http.StatusOK, StatusResponse{Status: statusSuccess, Message: "Study and associated file deleted successfully."})
}

// UploadFile godoc
// @Summary Upload a certification file
// @Description Stores jpeg, png, jpg, gif, svg or pdf files up to the configured size under CertificationImages
// @Tags studies
// @Accept multipart/form-data
// @Produce json
// @Param person_id path int true "Person ID"
// @Param study_id path int true "Study ID"
// @Param file formData file true "Certification file"
// @Success 200 {object} UploadResponse
// @Failure 404 {object} APIErrorResponse
// @Failure 422 {object} APIErrorResponse
// @Failure 500 {object} APIErrorResponse
// @Router /api/people/{person_id}/studies/{study_id}/upload-file [post]
func (h *StudyHandler) UploadFile(w http.ResponseWriter, r *http.Request) {
	personID, studyID, ok := studyIDs(w, r)
	if !ok {
		return
	}

	// leave room for the multipart framing around the file itself
	r.Body = http.MaxBytesReader(w, r.Body, h.MaxUploadSize+1<<20)
	file, header, err := r.FormFile("file")
	var upload *services.Upload
	switch {
	case err == nil:
		defer file.Close()
		upload = &services.Upload{Filename: header.Filename, Content: file}
	case errors.Is(err, http.ErrMissingFile):
		// the service reports the missing file as a field error
	default:
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			WriteAPIError(w, http.StatusUnprocessableEntity, "Validation failed.", map[string][]string{
				"file": {fmt.Sprintf("The file field must not be greater than %d kilobytes.", h.MaxUploadSize/1024)},
			})
			return
		}
		WriteAPIError(w, http.StatusBadRequest, "Invalid multipart body: "+err.Error(), nil)
		return
	}

	path, err := h.Studies.UploadCertificationFile(r.Context(), personID, studyID, upload)
	if err != nil {
		writeServiceError(w, r, err, "upload the file")
		return
	}
	writeJSON(w, http.StatusOK, UploadResponse{Status: statusSuccess, Message: "File uploaded successfully.", Path: path})
}
