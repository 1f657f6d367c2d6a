package handlers

import (
	"net/http"
	"time"

	"github.com/camden-git/curriculumbackend/models"
	"github.com/camden-git/curriculumbackend/repository"
	"github.com/camden-git/curriculumbackend/validation"
)

type ArticleHandler struct {
	ArticleRepo repository.ArticleRepository
	Validate    *validation.Validator
}

func NewArticleHandler(articleRepo repository.ArticleRepository, v *validation.Validator) *ArticleHandler {
	return &ArticleHandler{ArticleRepo: articleRepo, Validate: v}
}

type ArticleCreatePayload struct {
	Name              string   `json:"name" validate:"required,max=255"`
	Type              string   `json:"type" validate:"required,max=255"`
	Description       string   `json:"description" validate:"required"`
	Price             *float64 `json:"price" validate:"required,min=0"`
	AvailableQuantity *int64   `json:"available_quantity" validate:"required,min=0"`
}

type ArticleUpdatePayload struct {
	Name              *string  `json:"name" validate:"omitnil,min=1,max=255"`
	Type              *string  `json:"type" validate:"omitnil,min=1,max=255"`
	Description       *string  `json:"description" validate:"omitnil,min=1"`
	Price             *float64 `json:"price" validate:"omitnil,min=0"`
	AvailableQuantity *int64   `json:"available_quantity" validate:"omitnil,min=0"`
}

type ArticleResponseDTO struct {
	ID                uint      `json:"id"`
	Name              string    `json:"name"`
	Type              string    `json:"type"`
	Description       string    `json:"description"`
	Price             float64   `json:"price"`
	AvailableQuantity int64     `json:"available_quantity"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

func toArticleResponseDTO(a *models.Article) ArticleResponseDTO {
	return ArticleResponseDTO{
		ID:                a.ID,
		Name:              a.Name,
		Type:              a.Type,
		Description:       a.Description,
		Price:             a.Price,
		AvailableQuantity: a.AvailableQuantity,
		CreatedAt:         a.CreatedAt,
		UpdatedAt:         a.UpdatedAt,
	}
}

// ListArticles godoc
// @Summary List all articles
// @Tags articles
// @Produce json
// @Success 200 {array} ArticleResponseDTO
// @Failure 500 {object} APIErrorResponse
// @Router /api/articles [get]
func (h *ArticleHandler) ListArticles(w http.ResponseWriter, r *http.Request) {
	articles, err := h.ArticleRepo.ListAll(r.Context())
	if err != nil {
		writeServiceError(w, r, err, "retrieve articles")
		return
	}
	dtos := make([]ArticleResponseDTO, len(articles))
	for i := range articles {
		dtos[i] = toArticleResponseDTO(&articles[i])
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateArticle godoc
// @Summary Create an article
// @Tags articles
// @Accept json
// @Produce json
// @Param article body ArticleCreatePayload true "Article"
// @Success 201 {object} ArticleResponseDTO
// @Failure 422 {object} APIErrorResponse
// @Router /api/articles [post]
func (h *ArticleHandler) CreateArticle(w http.ResponseWriter, r *http.Request) {
	var payload ArticleCreatePayload
	if _, ok := decodeBody(w, r, &payload); !ok {
		return
	}
	if err := h.Validate.Struct(payload); err != nil {
		writeServiceError(w, r, err, "create the article")
		return
	}

	article := &models.Article{
		Name:              payload.Name,
		Type:              payload.Type,
		Description:       payload.Description,
		Price:             *payload.Price,
		AvailableQuantity: *payload.AvailableQuantity,
	}
	if err := h.ArticleRepo.Create(r.Context(), article); err != nil {
		writeServiceError(w, r, err, "create the article")
		return
	}
	writeJSON(w, http.StatusCreated, toArticleResponseDTO(article))
}

// GetArticle godoc
// @Summary Get an article
// @Tags articles
// @Produce json
// @Param id path int true "Article ID"
// @Success 200 {object} ArticleResponseDTO
// @Failure 404 {object} APIErrorResponse
// @Router /api/articles/{id} [get]
func (h *ArticleHandler) GetArticle(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r, "id")
	if !ok {
		writeBadID(w, "article_id")
		return
	}
	article, err := h.ArticleRepo.GetByID(r.Context(), id)
	if err != nil {
		writeRepoError(w, r, err, "Article", "retrieve the article")
		return
	}
	writeJSON(w, http.StatusOK, toArticleResponseDTO(article))
}

// UpdateArticle godoc
// @Summary Update an article
// @Tags articles
// @Accept json
// @Produce json
// @Param id path int true "Article ID"
// @Param article body ArticleUpdatePayload true "Fields to change"
// @Success 200 {object} ArticleResponseDTO
// @Failure 404 {object} APIErrorResponse
// @Failure 422 {object} APIErrorResponse
// @Router /api/articles/{id} [put]
func (h *ArticleHandler) UpdateArticle(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r, "id")
	if !ok {
		writeBadID(w, "article_id")
		return
	}
	article, err := h.ArticleRepo.GetByID(r.Context(), id)
	if err != nil {
		writeRepoError(w, r, err, "Article", "retrieve the article")
		return
	}

	var payload ArticleUpdatePayload
	nulls, ok := decodeBody(w, r, &payload)
	if !ok {
		return
	}
	extra := &validation.Errors{}
	nulls.RequireIfPresent(extra, "name", "type", "description", "price", "available_quantity")
	if err := h.Validate.Merge(payload, extra); err != nil {
		writeServiceError(w, r, err, "update the article")
		return
	}

	if payload.Name != nil {
		article.Name = *payload.Name
	}
	if payload.Type != nil {
		article.Type = *payload.Type
	}
	if payload.Description != nil {
		article.Description = *payload.Description
	}
	if payload.Price != nil {
		article.Price = *payload.Price
	}
	if payload.AvailableQuantity != nil {
		article.AvailableQuantity = *payload.AvailableQuantity
	}

	if err := h.ArticleRepo.Save(r.Context(), article); err != nil {
		writeServiceError(w, r, err, "update the article")
		return
	}
	writeJSON(w, http.StatusOK, toArticleResponseDTO(article))
}

// DeleteArticle godoc
// @Summary Delete an article
// @Tags articles
// @Param id path int true "Article ID"
// @Success 204 "No Content"
// @Failure 404 {object} APIErrorResponse
// @Router /api/articles/{id} [delete]
func (h *ArticleHandler) DeleteArticle(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r, "id")
	if !ok {
		writeBadID(w, "article_id")
		return
	}
	if err := h.ArticleRepo.Delete(r.Context(), id); err != nil {
		writeRepoError(w, r, err, "Article", "delete the article")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
