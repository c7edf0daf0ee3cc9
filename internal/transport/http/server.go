package http

import (
	"time"

	"github.com/gin-gonic/gin"

	"chemsite/internal/ai"
	appsvc "chemsite/internal/app"
	"chemsite/internal/bootstrap"
	"chemsite/internal/i18n"
	"chemsite/internal/transport/http/handler"
	"chemsite/internal/transport/http/middleware"
)

// NewRouter builds the services on top of app and mounts every route.
func NewRouter(app *bootstrap.App, opts ...ai.ClientOption) *gin.Engine {
	gin.SetMode(app.Config.App.GinMode)
	router := gin.New()
	router.Use(
		middleware.RequestID(),
		middleware.RequestLogger(app.Logger),
		middleware.Recovery(),
	)

	healthHandler := handler.NewHealthHandler(app)
	router.GET("/healthz", healthHandler.Check)

	llmCfg := app.Config.LLM
	retry := ai.DefaultRetryPolicy()
	retry.MaxAttempts = llmCfg.MaxAttempts
	retry.AttemptTimeout = time.Duration(llmCfg.TimeoutSeconds) * time.Second
	llmClient := ai.NewOpenAICompatibleClient(append([]ai.ClientOption{ai.WithRetryPolicy(retry)}, opts...)...)

	contactService := appsvc.NewContactService(app.Store, app.Publisher)
	chatService := appsvc.NewChatService(llmClient, ai.ChatConfig{
		BaseURL:     llmCfg.BaseURL,
		APIKey:      llmCfg.APIKey,
		Model:       llmCfg.Model,
		Temperature: llmCfg.Temperature,
		MaxTokens:   llmCfg.MaxTokens,
	}, llmCfg.MaxContextMessage)
	adminService := appsvc.NewAdminService(
		app.Config.Admin.Username,
		app.Config.Admin.PasswordHash,
		app.Config.Admin.JWTSecret,
		time.Duration(app.Config.Admin.JWTExpireMinute)*time.Minute,
	)
	preferences := i18n.NewPreferences(app.Bundle, app.Preferences)

	contactHandler := handler.NewContactHandler(contactService)
	chatHandler := handler.NewChatHandler(chatService)
	catalogHandler := handler.NewCatalogHandler(app.Catalog)
	i18nHandler := handler.NewI18nHandler(app.Bundle, preferences)
	adminHandler := handler.NewAdminHandler(adminService, contactService)

	api := router.Group("/api")
	api.POST("/contact", contactHandler.Submit)
	api.POST("/chat", chatHandler.Send)
	api.GET("/products", catalogHandler.List)
	api.GET("/products/:id", catalogHandler.Get)

	i18nGroup := api.Group("/i18n")
	i18nGroup.GET("/languages", i18nHandler.Languages)
	i18nGroup.GET("/translations/:lang", i18nHandler.Translations)
	i18nGroup.GET("/translations/:lang/:key", i18nHandler.Translate)
	preferenceGroup := i18nGroup.Group("/preference", middleware.Visitor(app.Config.App.Env == "prod"))
	preferenceGroup.GET("", i18nHandler.GetPreference)
	preferenceGroup.PUT("", i18nHandler.SetPreference)
	preferenceGroup.DELETE("", i18nHandler.ResetPreference)

	adminGroup := api.Group("/admin")
	adminGroup.POST("/login", adminHandler.Login)
	if app.Config.AdminEnabled() {
		contactsGroup := adminGroup.Group("/contacts", middleware.AuthJWT(app.Config.Admin.JWTSecret))
		contactsGroup.GET("", adminHandler.ListContacts)
		contactsGroup.GET("/:id", adminHandler.GetContact)
	}

	return router
}
