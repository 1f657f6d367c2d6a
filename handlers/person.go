package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/camden-git/curriculumbackend/models"
	"github.com/camden-git/curriculumbackend/services"
)

// PersonManager is the person lifecycle manager as seen by the HTTP layer.
type PersonManager interface {
	List(ctx context.Context) ([]models.Person, error)
	Get(ctx context.Context, id uint) (*models.Person, error)
	Create(ctx context.Context, in services.PersonInput) (*models.Person, error)
	Update(ctx context.Context, id uint, patch services.PersonPatch) (*models.Person, error)
	Delete(ctx context.Context, id uint) error
}

type PersonHandler struct {
	People PersonManager
}

func NewPersonHandler(people PersonManager) *PersonHandler {
	return &PersonHandler{People: people}
}

// PersonResponseDTO is the public shape of a person.
type PersonResponseDTO struct {
	ID          uint      `json:"id"`
	FirstName   string    `json:"first_name"`
	LastName    string    `json:"last_name"`
	DateOfBirth *string   `json:"date_of_birth"`
	IDCard      *string   `json:"id_card"`
	PhoneNumber *string   `json:"phone_number"`
	Address     *string   `json:"address"`
	Email       *string   `json:"email"`
	LinkedinURL *string   `json:"linkedin_url"`
	FacebookURL *string   `json:"facebook_url"`
	IndeedURL   *string   `json:"indeed_url"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func toPersonResponseDTO(p *models.Person) PersonResponseDTO {
	return PersonResponseDTO{
		ID:          p.ID,
		FirstName:   p.FirstName,
		LastName:    p.LastName,
		DateOfBirth: p.DateOfBirth,
		IDCard:      p.IDCard,
		PhoneNumber: p.PhoneNumber,
		Address:     p.Address,
		Email:       p.Email,
		LinkedinURL: p.LinkedinURL,
		FacebookURL: p.FacebookURL,
		IndeedURL:   p.IndeedURL,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

// ListPeople godoc
// @Summary List people
// @Tags people
// @Produce json
// @Success 200 {array} PersonResponseDTO
// @Failure 500 {object} APIErrorResponse
// @Router /api/people [get]
func (ph *PersonHandler) ListPeople(w http.ResponseWriter, r *http.Request) {
	people, err := ph.People.List(r.Context())
	if err != nil {
		writeServiceError(w, r, err, "retrieve people")
		return
	}
	dtos := make([]PersonResponseDTO, len(people))
	for i := range people {
		dtos[i] = toPersonResponseDTO(&people[i])
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreatePerson godoc
// @Summary Create a person
// @Description Creates the person and its ProfilePhotos, CertificationImages and Docs folders
// @Tags people
// @Accept json
// @Produce json
// @Param person body services.PersonInput true "Person"
// @Success 201 {object} StatusResponse{data=PersonResponseDTO}
// @Failure 422 {object} APIErrorResponse
// @Failure 500 {object} APIErrorResponse
// @Router /api/people [post]
func (ph *PersonHandler) CreatePerson(w http.ResponseWriter, r *http.Request) {
	var req services.PersonInput
	if _, ok := decodeBody(w, r, &req); !ok {
		return
	}

	person, err := ph.People.Create(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err, "create the person")
		return
	}
	writeJSON(w, http.StatusCreated, StatusResponse{
		Status:  statusSuccess,
		Message: "Person created and file folders generated successfully.",
		Data:    toPersonResponseDTO(person),
	})
}

// GetPerson godoc
// @Summary Get a person
// @Tags people
// @Produce json
// @Param person_id path int true "Person ID"
// @Success 200 {object} PersonResponseDTO
// @Failure 404 {object} APIErrorResponse
// @Router /api/people/{person_id} [get]
func (ph *PersonHandler) GetPerson(w http.ResponseWriter, r *http.Request) {
	personID, ok := parseID(r, "person_id")
	if !ok {
		writeBadID(w, "person_id")
		return
	}
	person, err := ph.People.Get(r.Context(), personID)
	if err != nil {
		writeServiceError(w, r, err, "retrieve the person")
		return
	}
	writeJSON(w, http.StatusOK, toPersonResponseDTO(person))
}

// UpdatePerson godoc
// @Summary Update a person
// @Description Partial update; renames the person's folder when the name changes
// @Tags people
// @Accept json
// @Produce json
// @Param person_id path int true "Person ID"
// @Param person body services.PersonPatch true "Fields to change"
// @Success 200 {object} StatusResponse{data=PersonResponseDTO}
// @Failure 404 {object} APIErrorResponse
// @Failure 422 {object} APIErrorResponse
// @Failure 500 {object} APIErrorResponse
// @Router /api/people/{person_id} [put]
func (ph *PersonHandler) UpdatePerson(w http.ResponseWriter, r *http.Request) {
	personID, ok := parseID(r, "person_id")
	if !ok {
		writeBadID(w, "person_id")
		return
	}
	var req services.PersonPatch
	nulls, ok := decodeBody(w, r, &req)
	if !ok {
		return
	}
	req.Nulls = nulls

	person, err := ph.People.Update(r.Context(), personID, req)
	if err != nil {
		writeServiceError(w, r, err, "update the person")
		return
	}
	writeJSON(w, http.StatusOK, StatusResponse{
		Status:  statusSuccess,
		Message: "Person updated successfully.",
		Data:    toPersonResponseDTO(person),
	})
}

// DeletePerson godoc
// @Summary Delete a person
// @Description Deletes the person, its studies and work experiences, and its folder tree
// @Tags people
// @Produce json
// @Param person_id path int true "Person ID"
// @Success 200 {object} StatusResponse
// @Failure 404 {object} APIErrorResponse
// @Router /api/people/{person_id} [delete]
func (ph *PersonHandler) DeletePerson(w http.ResponseWriter, r *http.Request) {
	personID, ok := parseID(r, "person_id")
	if !ok {
		writeBadID(w, "person_id")
		return
	}
	if err := ph.People.Delete(r.Context(), personID); err != nil {
		writeServiceError(w, r, err, "delete the person")
		return
	}
	writeJSON(w, http.StatusOK, StatusResponse{Status: statusSuccess, Message: "Person and files deleted successfully."})
}
