package bootstrap

import (
	"log"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"

	"claims-backend/internal/auth"
	"claims-backend/internal/claims"
	"claims-backend/internal/docload"
	"claims-backend/internal/extract"
	"claims-backend/internal/llm"
	openai "claims-backend/internal/llm/openai"
	"claims-backend/internal/shared/config"
	"claims-backend/internal/shared/server"
	"claims-backend/internal/shared/storage/object"
	localstore "claims-backend/internal/shared/storage/object/local"
)

// App holds shared dependencies.
type App struct {
	Config        config.Config
	Router        *gin.Engine
	Store         object.Store
	LLM           llm.Client
	Loader        *docload.Loader
	ClaimsService *claims.Service
	AuthService   *auth.OTPService
}

// Build wires the application from configuration, constructing the OpenAI
// client from env-derived credentials.
func Build(cfg config.Config) (*App, error) {
	var client llm.Client
	if cfg.OpenAIAPIKey != "" {
		built, err := openai.NewClient(cfg.OpenAIAPIKey, cfg.LLMModel, cfg.LLMTemperature,
			time.Duration(cfg.LLMTimeoutSecs)*time.Second)
		if err != nil {
			return nil, err
		}
		client = built
	} else {
		log.Printf("OPENAI_API_KEY not set, extraction endpoints will fail")
	}
	return BuildWithClient(cfg, client)
}

// BuildWithClient wires the application around an explicit LLM client; tests
// inject fakes here.
func BuildWithClient(cfg config.Config, client llm.Client) (*App, error) {
	store := localstore.New(cfg.DataDir)

	loader := docload.NewLoader(client, docload.NewExecRunner(), filepath.Join(cfg.DataDir, "images"))
	loader.Pdftoppm = cfg.PdftoppmPath
	loader.DPI = cfg.RasterDPI

	extractors := extract.NewExtractors(extract.NewClient(client), loader, store)
	claimsSvc := claims.NewService(store, loader, extractors)
	authSvc := auth.NewOTPService(cfg.OTPBaseURL, cfg.OTPInsecureTLS, 30*time.Second)

	app := &App{
		Config:        cfg,
		Store:         store,
		LLM:           client,
		Loader:        loader,
		ClaimsService: claimsSvc,
		AuthService:   authSvc,
	}
	app.Router = server.NewRouter(cfg, server.Deps{
		Auth:   authSvc,
		Claims: claims.NewHandler(claimsSvc),
	})
	return app, nil
}
