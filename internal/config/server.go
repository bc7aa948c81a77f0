package config

import (
	"fmt"
	"os"

	analysisHandler "FaceRec/internal/api/analysis/handler"
	analysisService "FaceRec/internal/api/analysis/service"
	"FaceRec/internal/middleware"
	"FaceRec/pkg/rekognition"
	"FaceRec/pkg/utils"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type ServerOption func(*Server) error

type Server struct {
	engine            *fiber.App
	log               *logrus.Logger
	middleware        middleware.Middleware
	validator         *validator.Validate
	utils             utils.IUtils
	rekognitionClient rekognition.IRekognition
	staticDir         string
	port              string
	handlers          []handler
}

type handler interface {
	Start(srv fiber.Router)
}

func NewServer(options ...ServerOption) (*Server, error) {
	server := &Server{
		port:  DefaultPort,
		utils: utils.New(),
	}

	for _, option := range options {
		if err := option(server); err != nil {
			return nil, fmt.Errorf("failed to apply option: %w", err)
		}
	}

	if server.engine == nil {
		return nil, fmt.Errorf("fiber app is required")
	}
	if server.log == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if server.rekognitionClient == nil {
		return nil, fmt.Errorf("rekognition client is required")
	}
	if server.middleware == nil {
		server.middleware = middleware.New(server.log, middleware.DefaultConfig())
	}
	if server.validator == nil {
		server.validator = NewValidator()
	}

	return server, nil
}

func NewValidator() *validator.Validate {
	return validator.New()
}

func WithFiber(fiberApp *fiber.App) ServerOption {
	return func(s *Server) error {
		s.engine = fiberApp
		return nil
	}
}

func WithLogger(logger *logrus.Logger) ServerOption {
	return func(s *Server) error {
		s.log = logger
		return nil
	}
}

func WithValidator(validator *validator.Validate) ServerOption {
	return func(s *Server) error {
		s.validator = validator
		return nil
	}
}

func WithMiddleware(cfg middleware.Config) ServerOption {
	return func(s *Server) error {
		if s.log == nil {
			return fmt.Errorf("logger must be initialized before middleware")
		}
		s.middleware = middleware.New(s.log, cfg)
		return nil
	}
}

// WithRekognition builds the AWS client from the environment.
func WithRekognition() ServerOption {
	return func(s *Server) error {
		client, err := rekognition.New()
		if err != nil {
			if s.log != nil {
				s.log.Errorf("Failed to initialize Rekognition client: %v", err)
			}
			return fmt.Errorf("failed to create Rekognition client: %w", err)
		}
		s.rekognitionClient = client
		return nil
	}
}

func WithRekognitionClient(client rekognition.IRekognition) ServerOption {
	return func(s *Server) error {
		s.rekognitionClient = client
		return nil
	}
}

// WithStaticAssets serves dir at "/". A missing directory is logged and
// skipped so the relay still starts.
func WithStaticAssets(dir string) ServerOption {
	return func(s *Server) error {
		if dir == "" {
			return nil
		}
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			if s.log != nil {
				s.log.Warnf("Static asset folder %s not found, UI will not be served", dir)
			}
			return nil
		}
		s.staticDir = dir
		return nil
	}
}

func WithPort(port string) ServerOption {
	return func(s *Server) error {
		if port == "" {
			return fmt.Errorf("port must not be empty")
		}
		s.port = port
		return nil
	}
}

func (s *Server) RegisterHandler() {
	analysisServices := analysisService.NewAnalysisService(s.log, s.rekognitionClient, s.utils)
	analysisHandlers := analysisHandler.New(s.log, s.validator, s.middleware, analysisServices)

	s.engine.Use(s.middleware.NewRequestIDMiddleware())
	s.engine.Use(s.middleware.NewLoggingMiddleware())

	s.handlers = append(s.handlers, analysisHandlers)
	for _, h := range s.handlers {
		h.Start(s.engine)
	}

	s.setupHealthCheck()

	if s.staticDir != "" {
		s.log.Infof("Serving UI from %s", s.staticDir)
		s.engine.Static("/", s.staticDir)
	}
}

func (s *Server) Run() error {
	s.log.Infof("Server started at http://localhost:%s", s.port)
	return s.engine.Listen(fmt.Sprintf(":%s", s.port))
}

func (s *Server) Shutdown() error {
	return s.engine.Shutdown()
}

func (s *Server) setupHealthCheck() {
	s.engine.Get("/health", func(ctx *fiber.Ctx) error {
		return ctx.JSON(fiber.Map{
			"message": "Server is Healthy!",
		})
	})
}
