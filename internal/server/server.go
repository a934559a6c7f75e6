package server

import (
	"context"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/meilisearch/meilisearch-go"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"miuhub.app/communityserver/internal/config"

	popupHttp "miuhub.app/communityserver/internal/modules/popup/delivery/http"
	popupRepo "miuhub.app/communityserver/internal/modules/popup/repository"
	popupService "miuhub.app/communityserver/internal/modules/popup/service"

	surveyHttp "miuhub.app/communityserver/internal/modules/survey/delivery/http"
	surveyRepo "miuhub.app/communityserver/internal/modules/survey/repository"
	surveyService "miuhub.app/communityserver/internal/modules/survey/service"

	searchService "miuhub.app/communityserver/internal/modules/search/service"
)

type Server struct {
	engine      *gin.Engine
	db          *gorm.DB
	redisClient *redis.Client
}

func NewServer(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) *Server {
	// Search indexing is optional; a nil client turns it into a no-op.
	var meiliClient meilisearch.ServiceManager
	if cfg.MeiliSearchHost != "" {
		host := cfg.MeiliSearchHost
		if !strings.HasPrefix(host, "http") {
			host = "http://" + host + ":7700"
		}
		meiliClient = meilisearch.New(host, meilisearch.WithAPIKey(cfg.MeiliMasterKey))
	}
	searchSvc := searchService.NewMeiliSearchService(meiliClient)

	// Popup Module
	popupRepository := popupRepo.NewPopupRepository(db)
	popupSvc := popupService.NewPopupService(popupRepository, searchSvc)
	popupHandler := popupHttp.NewPopupHandler(popupSvc)

	// Survey Module
	surveyRepository := surveyRepo.NewSurveyResponseRepository(db)
	surveySvc := surveyService.NewSurveyService(surveyRepository, popupRepository)
	surveyHandler := surveyHttp.NewSurveyHandler(surveySvc)

	// Background schedule sweep. Every list read reconciles inline, so this
	// only keeps stored state fresh between reads.
	go popupService.StartScheduleSweeper(context.Background(), popupSvc, redisClient, cfg.SweepInterval)

	router := gin.New()

	setupCORS(router, cfg.AllowedOrigins)

	router.Use(gin.Recovery())
	router.Use(gin.Logger())

	api := router.Group("/api")

	popups := api.Group("/popups")
	{
		popups.GET("", popupHandler.GetAllPopups)
		popups.GET("/:id", popupHandler.GetPopupByID)
		popups.POST("", popupHandler.CreatePopup)
		popups.PUT("/:id", popupHandler.UpdatePopup)
		popups.PUT("/:id/toggle", popupHandler.TogglePopup)
		popups.DELETE("/:id", popupHandler.DeletePopup)

		popups.POST("/:id/survey-responses", surveyHandler.RecordResponse)
		popups.GET("/:id/survey-responses", surveyHandler.GetResponses)
	}

	return &Server{
		engine:      router,
		db:          db,
		redisClient: redisClient,
	}
}

func (s *Server) Run(addr string) error {
	return s.engine.Run(addr)
}

func setupCORS(router *gin.Engine, allowedOrigins string) {
	var origins []string
	if allowedOrigins != "" {
		origins = strings.Split(allowedOrigins, ",")
	} else {
		origins = []string{"http://localhost:3000"}
	}

	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
}
