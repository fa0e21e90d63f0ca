package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/mentorhub/apiserver/config"
	"github.com/mentorhub/apiserver/internal/auth"
	"github.com/mentorhub/apiserver/internal/db"
	"github.com/mentorhub/apiserver/internal/events"
	"github.com/mentorhub/apiserver/internal/handlers"
	"github.com/mentorhub/apiserver/internal/services"
	"github.com/mentorhub/apiserver/internal/storage"
	"github.com/mentorhub/apiserver/internal/store"
)

// Server wraps the HTTP server and router.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	db         *sql.DB
	bus        *events.Bus
}

// New constructs a Server with all dependencies wired.
func New(ctx context.Context, cfg config.Config) (*Server, error) {
	if strings.TrimSpace(cfg.JWT.Secret) == "" {
		return nil, errors.New("JWT_SECRET is required")
	}

	dbConn, err := db.Open(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}

	logger := slog.Default()

	bus, err := newEventBus(ctx, cfg.Events, logger)
	if err != nil {
		_ = dbConn.Close()
		return nil, err
	}

	attachments, err := newAttachmentStore(ctx, cfg.Storage)
	if err != nil {
		_ = dbConn.Close()
		_ = bus.Close()
		return nil, err
	}

	userRepo := store.NewUserRepository(dbConn)
	mentorRepo := store.NewMentorRepository(dbConn)
	schoolRepo := store.NewSchoolRepository(dbConn)
	courseRepo := store.NewCourseRepository(dbConn)
	classRepo := store.NewClassRepository(dbConn)
	competitionRepo := store.NewCompetitionRepository(dbConn)
	topicRepo := store.NewTopicRepository(dbConn)
	mockTestRepo := store.NewMockTestRepository(dbConn)
	notebookRepo := store.NewNotebookRepository(dbConn)
	paymentRepo := store.NewPaymentRepository(dbConn)

	userService := services.NewUserService(userRepo)
	mentorService := services.NewMentorService(mentorRepo)
	schoolService := services.NewSchoolService(schoolRepo, userRepo)
	courseService := services.NewCourseService(courseRepo, paymentRepo, bus, logger)
	classService := services.NewClassService(classRepo, bus, logger)
	competitionService := services.NewCompetitionService(competitionRepo)
	topicService := services.NewTopicService(topicRepo)
	mockTestService := services.NewMockTestService(mockTestRepo)
	notebookService := services.NewNotebookService(notebookRepo, attachments, logger)
	paymentService := services.NewPaymentService(paymentRepo, courseRepo, bus, logger)

	codec := auth.NewCodec(cfg.JWT.Secret, cfg.JWT.TTL)
	directory := services.NewPrincipalDirectory(userService, mentorService, schoolService)
	resolver := auth.NewResolver(directory)
	guard := auth.NewMiddleware(codec, resolver)

	router := chi.NewRouter()
	router.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Recoverer,
		middleware.Logger,
		middleware.Timeout(60*time.Second),
	)
	router.Get("/healthz", handlers.Healthz(dbConn))

	router.Group(func(r chi.Router) {
		r.Use(guard.ResolvePrincipal)

		r.Route("/auth", func(r chi.Router) {
			handlers.AuthRouter(r, userService, mentorService, schoolService, codec, bus)
		})
		r.Route("/mentors", func(r chi.Router) {
			handlers.MentorRouter(r, mentorService)
		})
		r.Route("/courses", func(r chi.Router) {
			handlers.CourseRouter(r, courseService)
		})
		r.Route("/classes", func(r chi.Router) {
			handlers.ClassRouter(r, classService)
		})
		r.Route("/competitions", func(r chi.Router) {
			handlers.CompetitionRouter(r, competitionService)
		})
		r.Route("/topics", func(r chi.Router) {
			handlers.TopicRouter(r, topicService)
		})
		r.Route("/mocktests", func(r chi.Router) {
			handlers.MockTestRouter(r, mockTestService)
		})
		r.Route("/notebooks", func(r chi.Router) {
			handlers.NotebookRouter(r, notebookService)
		})
		r.Route("/schools", func(r chi.Router) {
			handlers.SchoolRouter(r, schoolService)
		})
		r.Route("/payments", func(r chi.Router) {
			handlers.PaymentRouter(r, paymentService)
		})
	})

	port := cfg.ServerPort
	if port == 0 {
		port = 8080
	}

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Server{
		httpServer: httpServer,
		router:     router,
		db:         dbConn,
		bus:        bus,
	}, nil
}

func newEventBus(ctx context.Context, cfg config.EventsConfig, logger *slog.Logger) (*events.Bus, error) {
	switch cfg.Backend {
	case "":
		return events.NewBus(nil, logger), nil
	case "rabbitmq":
		backend, err := events.NewRabbitMQPublisher(cfg.RabbitMQ)
		if err != nil {
			return nil, fmt.Errorf("rabbitmq: %w", err)
		}
		return events.NewBus(backend, logger), nil
	case "pubsub":
		backend, err := events.NewPubSubPublisher(ctx, cfg.PubSub)
		if err != nil {
			return nil, fmt.Errorf("pubsub: %w", err)
		}
		return events.NewBus(backend, logger), nil
	default:
		return nil, fmt.Errorf("unknown events backend %q", cfg.Backend)
	}
}

func newAttachmentStore(ctx context.Context, cfg config.StorageConfig) (*storage.AttachmentStore, error) {
	switch cfg.Backend {
	case "":
		return storage.NewAttachmentStore(nil), nil
	case "minio":
		backend, err := storage.NewMinioClient(cfg.Minio)
		if err != nil {
			return nil, fmt.Errorf("minio: %w", err)
		}
		s := storage.NewAttachmentStore(backend)
		if err := s.EnsureBucket(ctx); err != nil {
			return nil, fmt.Errorf("minio: %w", err)
		}
		return s, nil
	case "gcs":
		backend, err := storage.NewGCSClient(ctx, cfg.GCS)
		if err != nil {
			return nil, fmt.Errorf("gcs: %w", err)
		}
		s := storage.NewAttachmentStore(backend)
		if err := s.EnsureBucket(ctx); err != nil {
			return nil, fmt.Errorf("gcs: %w", err)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}

// Router exposes the chi router for route registration.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Start runs the HTTP server.
func (s *Server) Start() error {
	return s.httpServer.ListenAndServe()
}

// Shutdown attempts a graceful shutdown.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.db != nil {
		_ = s.db.Close()
	}
	if s.bus != nil {
		_ = s.bus.Close()
	}
	return s.httpServer.Shutdown(ctx)
}
