package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/The-Policy-Posse/Network-Graph-1/config"
	"github.com/The-Policy-Posse/Network-Graph-1/services"
	"github.com/The-Policy-Posse/Network-Graph-1/storage"
)

// NetworkAPI ist der Teil des NetworkService, den der Server benötigt.
type NetworkAPI interface {
	Latest(ctx context.Context) ([]byte, error)
	Rebuild(ctx context.Context, opts config.RunOptions) (*services.RebuildResult, error)
}

// NewRouter baut den gin-Router mit allen Routen auf.
func NewRouter(cfg *config.Config, svc NetworkAPI, log *zap.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestLogger(log.Named("http")))
	router.Use(corsMiddleware(cfg.CORSAllowedOrigin))

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	setupNetworkRoutes(router, cfg, svc, log)
	setupStaticRoutes(router, cfg)
	return router
}

func setupNetworkRoutes(router *gin.Engine, cfg *config.Config, svc NetworkAPI, log *zap.Logger) {
	rg := router.Group("/api")
	rg.Use(rateLimitMiddleware(cfg.RateLimitRPS, cfg.RateLimitBurst))

	rg.GET("/network-data", func(c *gin.Context) {
		data, err := svc.Latest(c.Request.Context())
		if err != nil {
			if errors.Is(err, storage.ErrNoSnapshot) {
				c.JSON(http.StatusNotFound, gin.H{"error": "No data available"})
				return
			}
			log.Error("Snapshot konnte nicht gelesen werden", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}
		c.Data(http.StatusOK, "application/json", data)
	})

	rg.POST("/network-data/rebuild", apiKeyAuthMiddleware(cfg), func(c *gin.Context) {
		type RebuildRequest struct {
			TargetCongress    *int `json:"target_congress"`
			MinCollaborations *int `json:"min_collaborations"`
		}

		var req RebuildRequest
		if c.Request.ContentLength > 0 {
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
				return
			}
		}
		opts := cfg.RunOptions()
		if req.TargetCongress != nil {
			opts.TargetCongress = *req.TargetCongress
		}
		if req.MinCollaborations != nil {
			opts.MinCollaborations = *req.MinCollaborations
		}
		if err := opts.Validate(); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		res, err := svc.Rebuild(c.Request.Context(), opts)
		if err != nil {
			var srcErr *services.SourceError
			switch {
			case errors.Is(err, services.ErrRebuildInProgress):
				c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			case errors.Is(err, services.ErrInsufficientData):
				c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
			case errors.As(err, &srcErr):
				c.JSON(http.StatusBadGateway, gin.H{"error": err.Error(), "source": srcErr.Source})
			default:
				log.Error("Rebuild fehlgeschlagen", zap.Error(err))
				c.JSON(http.StatusInternalServerError, gin.H{"error": "rebuild failed"})
			}
			return
		}

		anomalies := gin.H{}
		for kind, n := range res.Quality.Counts() {
			anomalies[string(kind)] = n
		}
		md := res.Snapshot.Metadata
		c.JSON(http.StatusCreated, gin.H{
			"row_id":         res.Row.ID,
			"run_id":         md.RunID,
			"congress_range": md.CongressRange,
			"bills":          md.TotalBills,
			"collaborations": md.TotalCollaborations,
			"legislators":    md.TotalLegislators,
			"archive_link":   res.ArchiveLink,
			"anomalies":      anomalies,
		})
	})
}

// setupStaticRoutes liefert das Frontend aus STATIC_DIR aus.
func setupStaticRoutes(router *gin.Engine, cfg *config.Config) {
	index := filepath.Join(cfg.StaticDir, cfg.IndexFile)
	router.GET("/", func(c *gin.Context) {
		c.File(index)
	})
	files := http.FileServer(filesOnly{http.Dir(cfg.StaticDir)})
	router.NoRoute(func(c *gin.Context) {
		if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		files.ServeHTTP(c.Writer, c.Request)
	})
}

// filesOnly verhindert Verzeichnislisten: Verzeichnisse gelten als nicht vorhanden.
type filesOnly struct {
	fs http.FileSystem
}

func (f filesOnly) Open(name string) (http.File, error) {
	file, err := f.fs.Open(name)
	if err != nil {
		return nil, err
	}
	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, err
	}
	if info.IsDir() {
		file.Close()
		return nil, os.ErrNotExist
	}
	return file, nil
}
