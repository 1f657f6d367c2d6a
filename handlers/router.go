package handlers

import (
	"log"
	"net/http"
	"time"

	"github.com/camden-git/curriculumbackend/config"
	"github.com/camden-git/curriculumbackend/repository"
	"github.com/camden-git/curriculumbackend/validation"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
	"gorm.io/gorm"
)

// Dependencies carries everything the HTTP surface is built from.
type Dependencies struct {
	DB       *gorm.DB
	Validate *validation.Validator

	People  PersonManager
	Studies StudyManager
	Works   WorkExperienceManager
	Auth    Authenticator
}

// NewRouter mounts every route under cfg.APIPrefix and the stored files under
// cfg.PublicURLPrefix.
func NewRouter(cfg config.Config, deps Dependencies) http.Handler {
	r := chi.NewRouter()

	corsOptions := cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}
	corsHandler := cors.New(corsOptions)

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(corsHandler.Handler)

	authHandler := NewAuthHandler(deps.Auth)
	setupHandler := NewSetupHandler(deps.Auth)
	personHandler := NewPersonHandler(deps.People)
	studyHandler := NewStudyHandler(deps.Studies, cfg.MaxUploadSize)
	workHandler := NewWorkExperienceHandler(deps.Works)
	articleHandler := NewArticleHandler(repository.NewGormArticleRepository(deps.DB), deps.Validate)
	roleHandler := NewRoleHandler(deps.DB, repository.NewGormRoleRepository(deps.DB), deps.Validate)
	userHandler := NewUserHandler(deps.DB, repository.NewGormUserRepository(deps.DB), deps.Validate)

	requireToken := AuthMiddleware(deps.Auth)

	api := func(r chi.Router) {
		r.Post("/login", authHandler.Login)
		r.Post("/setup", setupHandler.CreateFirstUser)

		r.Group(func(r chi.Router) {
			r.Use(requireToken)
			r.Post("/logout", authHandler.Logout)
			r.Get("/user", authHandler.CurrentUser)
		})

		r.Group(func(r chi.Router) {
			if cfg.ProtectResources {
				r.Use(requireToken)
			}

			r.Route("/articles", func(r chi.Router) {
				r.Get("/", articleHandler.ListArticles)
				r.Post("/", articleHandler.CreateArticle)
				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", articleHandler.GetArticle)
					r.Put("/", articleHandler.UpdateArticle)
					r.Delete("/", articleHandler.DeleteArticle)
				})
			})

			r.Route("/roles", func(r chi.Router) {
				r.Get("/", roleHandler.ListRoles)
				r.Post("/", roleHandler.CreateRole)
				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", roleHandler.GetRole)
					r.Put("/", roleHandler.UpdateRole)
					r.Delete("/", roleHandler.DeleteRole)
				})
			})

			r.Route("/users", func(r chi.Router) {
				r.Get("/", userHandler.ListUsers)
				r.Post("/", userHandler.CreateUser)
				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", userHandler.GetUser)
					r.Put("/", userHandler.UpdateUser)
					r.Delete("/", userHandler.DeleteUser)
				})
			})

			r.Route("/people", func(r chi.Router) {
				r.Get("/", personHandler.ListPeople)
				r.Post("/", personHandler.CreatePerson)
				r.Route("/{person_id}", func(r chi.Router) {
					r.Get("/", personHandler.GetPerson)
					r.Put("/", personHandler.UpdatePerson)
					r.Delete("/", personHandler.DeletePerson)

					r.Route("/studies", func(r chi.Router) {
						r.Get("/", studyHandler.ListStudies)
						r.Post("/", studyHandler.CreateStudy)
						r.Route("/{study_id}", func(r chi.Router) {
							r.Get("/", studyHandler.GetStudy)
							r.Put("/", studyHandler.UpdateStudy)
							r.Delete("/", studyHandler.DeleteStudy)
							r.Post("/upload-file", studyHandler.UploadFile)
						})
					})

					r.Route("/work-experiences", func(r chi.Router) {
						r.Get("/", workHandler.ListWorkExperiences)
						r.Post("/", workHandler.CreateWorkExperience)
						r.Route("/{id}", func(r chi.Router) {
							r.Get("/", workHandler.GetWorkExperience)
							r.Put("/", workHandler.UpdateWorkExperience)
							r.Delete("/", workHandler.DeleteWorkExperience)
						})
					})
				})
			})
		})
	}

	if cfg.APIPrefix == "" {
		api(r)
	} else {
		r.Route(cfg.APIPrefix, api)
	}

	r.Get(cfg.PublicURLPrefix+"/*", AssetServer(cfg.UploadsPath, cfg.PublicURLPrefix))
	log.Printf("Registered stored file server at %s/*", cfg.PublicURLPrefix)

	return r
}
