package api

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/iulianpascalau/web-vitals-monitoring/services/collector/common"
	"github.com/multiversx/mx-chain-core-go/core/check"
	logger "github.com/multiversx/mx-chain-logger-go"
	"github.com/tidwall/gjson"
)

var log = logger.GetOrCreate("api")

type server struct {
	router         *gin.Engine
	httpServer     *http.Server
	storage        Storage
	serviceKey     string
	listenAddr     string
	generalHandler func(http.Handler) http.Handler
	wg             sync.WaitGroup
}

// ArgsWebServer defines the web server arguments
type ArgsWebServer struct {
	ServiceKeyApi  string
	ListenAddress  string
	Storage        Storage
	GeneralHandler func(http.Handler) http.Handler
}

// NewServer initializes the Gin engine and mounts all routes
func NewServer(args ArgsWebServer) (*server, error) {
	if check.IfNil(args.Storage) {
		return nil, errors.New("storage is required")
	}
	if args.GeneralHandler == nil {
		return nil, errors.New("nil http handler")
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	router.Use(gin.Recovery())

	s := &server{
		router:         router,
		storage:        args.Storage,
		serviceKey:     args.ServiceKeyApi,
		listenAddr:     args.ListenAddress,
		generalHandler: args.GeneralHandler,
	}

	s.setupRoutes()
	return s, nil
}

func (s *server) setupRoutes() {
	api := s.router.Group("/api")
	api.Use(s.authAPIKey())
	{
		api.POST("/vitals", s.handleIngest)
		api.GET("/vitals", s.handleGetLatest)
		api.GET("/vitals/history", s.handleGetHistory)
		api.DELETE("/vitals", s.handleDeletePage)
	}
}

// Start listens and serves connections
func (s *server) Start() {
	handler := s.generalHandler(s.router)

	s.httpServer = &http.Server{
		Addr:    s.listenAddr,
		Handler: handler,
	}

	ln, err := net.Listen("tcp", s.listenAddr)
	if err != nil {
		log.Error("failed to listen", "error", err)
		return
	}
	s.listenAddr = ln.Addr().String()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		log.Info("starting HTTP server", "address", s.listenAddr)

		err := s.httpServer.Serve(ln)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server failed", "error", err)
		}
	}()
}

// Address returns the actual listen address
func (s *server) Address() string {
	return s.listenAddr
}

// Close gracefully stops the server
func (s *server) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			return err
		}
	}
	s.wg.Wait()
	return nil
}

// --- Middlewares ---

func (s *server) authAPIKey() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader("X-Api-Key")
		if key != s.serviceKey {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// --- Handlers ---

func (s *server) handleIngest(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	parsed := gjson.ParseBytes(body)
	pageURL := parsed.Get("url").String()
	if pageURL == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing page url"})
		return
	}

	report := common.StoredReport{
		URL:        pageURL,
		UserAgent:  parsed.Get("userAgent").String(),
		FCP:        metricValue(parsed, "fcp"),
		LCP:        metricValue(parsed, "lcp"),
		FID:        metricValue(parsed, "fid"),
		CLS:        metricValue(parsed, "cls"),
		TTFB:       metricValue(parsed, "ttfb"),
		INP:        metricValue(parsed, "inp"),
		RecordedAt: time.Now().Unix(),
	}

	log.Debug("received vitals report", "sender", c.Request.RemoteAddr, "url", pageURL)

	err = s.storage.SaveReport(c.Request.Context(), report)
	if err != nil {
		log.Warn("failed to save vitals report", "url", pageURL, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "storage failure"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// metricValue accepts both beacon shapes: an object with a value field and a bare number
func metricValue(parsed gjson.Result, name string) *float64 {
	field := parsed.Get(name)
	if !field.Exists() {
		return nil
	}

	value := field.Float()
	if field.IsObject() {
		inner := field.Get("value")
		if !inner.Exists() {
			return nil
		}
		value = inner.Float()
	}

	return &value
}

func (s *server) handleGetLatest(c *gin.Context) {
	reports, err := s.storage.GetLatestReports(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"reports": reports})
}

func (s *server) handleGetHistory(c *gin.Context) {
	pageURL := c.Query("url")
	if pageURL == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing url query parameter"})
		return
	}

	history, err := s.storage.GetPageHistory(c.Request.Context(), pageURL)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, history)
}

func (s *server) handleDeletePage(c *gin.Context) {
	pageURL := c.Query("url")
	if pageURL == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing url query parameter"})
		return
	}

	err := s.storage.DeletePage(c.Request.Context(), pageURL)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true})
}
