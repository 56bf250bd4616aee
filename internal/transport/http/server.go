package http

import (
	"time"

	"github.com/gin-gonic/gin"

	"docuchat/internal/ai"
	appsvc "docuchat/internal/app"
	"docuchat/internal/bootstrap"
	"docuchat/internal/cache"
	"docuchat/internal/pkg/pdfextract"
	"docuchat/internal/platform/rabbitmq"
	"docuchat/internal/repository"
	"docuchat/internal/store"
	"docuchat/internal/transport/http/handler"
	"docuchat/internal/transport/http/middleware"
)

func NewRouter(app *bootstrap.App) *gin.Engine {
	gin.SetMode(app.Config.App.GinMode)
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	healthHandler := handler.NewHealthHandler(app)
	router.StaticFile("/", "web/index.html")
	router.GET("/health", healthHandler.Check)

	documentBlobs := store.NewRedisBlobStore(app.Redis, "doc")
	artifactBlobs := store.NewRedisBlobStore(app.Redis, "index")
	documents := store.NewDocumentStore(documentBlobs)
	indexes := store.NewIndexStore(artifactBlobs)
	statuses := store.NewStatusStore(artifactBlobs)
	indexCache := cache.NewIndexCache()

	llmClient := ai.NewClient(ai.Config{
		BaseURL:         app.Config.LLM.BaseURL,
		APIKey:          app.Config.LLM.APIKey,
		ChatModel:       app.Config.LLM.Model,
		EmbeddingModel:  app.Config.LLM.EmbeddingModel,
		MaxOutputTokens: app.Config.LLM.MaxOutputTokens,
		Timeout:         time.Duration(app.Config.LLM.TimeoutSeconds) * time.Second,
	})

	sessionService := appsvc.NewSessionService(
		statuses, documents, indexes, artifactBlobs, indexCache,
		app.Config.RAG.TokenLimit,
	)
	indexingService := appsvc.NewIndexingService(
		documents, indexes, statuses, indexCache,
		pdfextract.Extractor{}, llmClient,
		appsvc.IndexingConfig{
			ChunkSize:    app.Config.RAG.ChunkSize,
			ChunkOverlap: app.Config.RAG.ChunkOverlap,
		},
	)
	chatLogPublisher := rabbitmq.NewChatLogPublisher(app.MQConn, app.Config.RabbitMQ.ChatLogQueue)
	qaService := appsvc.NewQAService(
		sessionService, indexCache, indexes,
		llmClient, llmClient, chatLogPublisher,
		app.Config.RAG.TopK,
	)
	chatLogRepo := repository.NewChatLogRepository(app.MySQL)

	uploadHandler := handler.NewUploadHandler(indexingService)
	statusHandler := handler.NewStatusHandler(sessionService)
	chatHandler := handler.NewChatHandler(qaService, sessionService, chatLogRepo, app.Config.Session)

	session := router.Group("/", middleware.Session(app.Config.Session))
	session.POST("/upload", uploadHandler.Upload)
	session.GET("/status", statusHandler.Status)
	session.GET("/debug/session", statusHandler.DebugSession)
	session.POST("/chat", chatHandler.Chat)
	session.POST("/reset", chatHandler.Reset)
	session.GET("/history", chatHandler.History)

	return router
}
