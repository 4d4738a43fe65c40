package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strings"

	"github.com/gin-gonic/gin"

	"interviewhub-backend/internal/chat"
	"interviewhub-backend/internal/checklist"
	"interviewhub-backend/internal/interview"
	"interviewhub-backend/internal/llm"
	openai "interviewhub-backend/internal/llm/openai"
	"interviewhub-backend/internal/services/health"
	"interviewhub-backend/internal/sessions"
	"interviewhub-backend/internal/shared/config"
	"interviewhub-backend/internal/shared/server"
	"interviewhub-backend/internal/shared/storage/db"
)

// App holds shared dependencies built once at startup.
type App struct {
	Config          config.Config
	Router          *gin.Engine
	DB              *sql.DB
	LLM             llm.Client
	SessionsRepo    sessions.Repo
	ChatService     *chat.Service
	Synthesizer     *checklist.Synthesizer
	Engine          *interview.Engine
	SessionsService *sessions.Service
	SessionsHandler *sessions.Handler
	Health          *health.Service
}

// Build prepares shared dependencies and wires the router.
func Build(cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	ctx := context.Background()

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	app := &App{
		Config: cfg,
		DB:     sqlDB,
	}
	buildServices(app)

	app.Router = server.NewRouter(server.RouterDeps{
		Config:          app.Config,
		SessionsHandler: app.SessionsHandler,
		Health:          app.Health,
	})

	return app, nil
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: DATABASE_URL empty; using in-memory repositories")
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	opts := db.OptionsFromEnv(db.DefaultServerOptions())
	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, opts)
	if err != nil {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: database connect failed; using in-memory repositories: %v", err)
			return nil, nil
		}
		return nil, err
	}

	if err := db.RunMigrations(ctx, sqlDB); err != nil {
		sqlDB.Close()
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: migrations failed; using in-memory repositories: %v", err)
			return nil, nil
		}
		return nil, err
	}

	return sqlDB, nil
}

func buildServices(app *App) {
	var repo sessions.Repo
	if app.DB != nil {
		repo = &sessions.PGRepo{DB: app.DB}
	} else {
		repo = sessions.NewMemoryRepo()
	}

	llmClient := llm.Client(llm.Disabled{})
	if app.Config.LLMProvider == "openai" && strings.TrimSpace(app.Config.OpenAIAPIKey) != "" {
		llmClient = openai.NewClient(app.Config.OpenAIAPIKey, app.Config.LLMModel)
	} else {
		log.Printf("bootstrap: no LLM provider configured; falling back to keyword heuristics")
	}

	chatSvc := chat.NewService(llmClient)
	synth := checklist.NewSynthesizer(llmClient)
	engine := interview.NewEngine(llmClient)

	app.LLM = llmClient
	app.SessionsRepo = repo
	app.ChatService = chatSvc
	app.Synthesizer = synth
	app.Engine = engine
	app.SessionsService = sessions.NewService(repo, chatSvc, synth, engine)
	app.SessionsHandler = sessions.NewHandler(app.SessionsService)
	app.Health = health.NewService()
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local":
		return true
	default:
		return false
	}
}
