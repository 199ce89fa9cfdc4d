package webapp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/qjs/madlibgen_gemma/server/agents"
	"github.com/qjs/madlibgen_gemma/server/madlib"
	pdfgenerator "github.com/qjs/madlibgen_gemma/server/pdf_generator"
	"github.com/qjs/madlibgen_gemma/server/store"
)

func statusFor(err error) int {
	if errors.Is(err, store.ErrNotFound) {
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

func codeFor(err error) string {
	if errors.Is(err, store.ErrNotFound) {
		return ErrNotFound
	}
	return ErrInternal
}

// Store is the persistence surface the API needs.
type Store interface {
	Save(ctx context.Context, c madlib.Completed) error
	Get(ctx context.Context, id string) (madlib.Completed, error)
	List(ctx context.Context, limit int) ([]madlib.Completed, error)
}

// Moderator screens topics for the template endpoint.
type Moderator interface {
	Check(ctx context.Context, topic string) error
}

// Generator produces a validated template for an accepted topic.
type Generator interface {
	Generate(ctx context.Context, topic string) (madlib.Template, error)
}

// WebApp wraps a Gin router plus the service dependencies.
type WebApp struct {
	Router    *gin.Engine
	Server    *http.Server
	store     Store
	moderator Moderator
	generator Generator
	pdf       *pdfgenerator.PDFGenerator
	apiKey    string
}

// NewWebApp wires routes and returns an instance. apiKey empty disables auth.
func NewWebApp(store Store, moderator Moderator, generator Generator, pdf *pdfgenerator.PDFGenerator, apiKey string) *WebApp {
	app := &WebApp{
		Router:    gin.Default(),
		store:     store,
		moderator: moderator,
		generator: generator,
		pdf:       pdf,
		apiKey:    apiKey,
	}
	app.setupRoutes()
	return app
}

// Run starts the HTTP server (non-blocking).
func (app *WebApp) Run(addr string) {
	app.Server = &http.Server{
		Addr:              addr,
		Handler:           app.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("madlib API listening", "addr", addr)
		if err := app.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("webapp", "err", err)
		}
	}()
}

// Shutdown gracefully stops the HTTP server.
func (app *WebApp) Shutdown(ctx context.Context) error {
	if app.Server != nil {
		return app.Server.Shutdown(ctx)
	}
	return nil
}

// ----------------------------------------------------------------------
// Routes
// ----------------------------------------------------------------------

func (app *WebApp) setupRoutes() {
	app.Router.GET("/healthz", app.health)

	v1 := app.Router.Group("/v1", app.auth)
	v1.POST("/templates", app.generateTemplate)
	v1.POST("/madlibs", app.saveMadlib)
	v1.GET("/madlibs", app.listMadlibs)
	v1.GET("/madlibs/:id", app.getMadlib)
	v1.GET("/madlibs/:id/pdf", app.madlibPDF)
}

func (app *WebApp) auth(c *gin.Context) {
	if app.apiKey == "" {
		return
	}
	if c.GetHeader("X-Api-Key") != app.apiKey {
		c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorEnvelope(ErrUnauthorized, "missing or wrong API key"))
	}
}

func (app *WebApp) health(c *gin.Context) {
	c.JSON(http.StatusOK, OKEnvelope(gin.H{"status": "ok"}))
}

// POST /v1/templates
func (app *WebApp) generateTemplate(c *gin.Context) {
	var req struct {
		Topic string `json:"topic" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorEnvelope(ErrInvalidRequest, err.Error()))
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 120*time.Second)
	defer cancel()

	if err := app.moderator.Check(ctx, req.Topic); err != nil {
		if errors.Is(err, agents.ErrTopicRejected) {
			c.JSON(http.StatusUnprocessableEntity, ErrorEnvelope(ErrTopicRejected, err.Error()))
			return
		}
		c.JSON(http.StatusBadGateway, ErrorEnvelope(ErrInternal, err.Error()))
		return
	}

	tpl, err := app.generator.Generate(ctx, req.Topic)
	if err != nil {
		if errors.Is(err, agents.ErrGenerationFailed) {
			c.JSON(http.StatusBadGateway, ErrorEnvelope(ErrGenerationFailed, err.Error()))
			return
		}
		c.JSON(http.StatusBadGateway, ErrorEnvelope(ErrInternal, err.Error()))
		return
	}
	c.JSON(http.StatusOK, OKEnvelope(tpl))
}

// POST /v1/madlibs
func (app *WebApp) saveMadlib(c *gin.Context) {
	var body madlib.Completed
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, ErrorEnvelope(ErrInvalidRequest, err.Error()))
		return
	}
	if body.ID == "" {
		body.ID = uuid.NewString()
	}
	if body.CompletedAt.IsZero() {
		body.CompletedAt = time.Now().UTC()
	}
	for _, s := range body.Slots {
		if s.Value == "" {
			c.JSON(http.StatusBadRequest, ErrorEnvelope(ErrInvalidRequest,
				fmt.Sprintf("slot %s has no value", s.Placeholder())))
			return
		}
	}

	if err := app.store.Save(c.Request.Context(), body); err != nil {
		c.JSON(http.StatusInternalServerError, ErrorEnvelope(ErrInternal, err.Error()))
		return
	}
	slog.Info("madlib persisted", "id", body.ID, "topic", body.Topic)
	c.JSON(http.StatusCreated, OKEnvelope(gin.H{"id": body.ID}))
}

// GET /v1/madlibs
func (app *WebApp) listMadlibs(c *gin.Context) {
	all, err := app.store.List(c.Request.Context(), 50)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorEnvelope(ErrInternal, err.Error()))
		return
	}
	c.JSON(http.StatusOK, OKEnvelope(all))
}

// GET /v1/madlibs/:id
func (app *WebApp) getMadlib(c *gin.Context) {
	found, err := app.store.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(statusFor(err), ErrorEnvelope(codeFor(err), err.Error()))
		return
	}
	c.JSON(http.StatusOK, OKEnvelope(found))
}

// GET /v1/madlibs/:id/pdf
func (app *WebApp) madlibPDF(c *gin.Context) {
	found, err := app.store.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(statusFor(err), ErrorEnvelope(codeFor(err), err.Error()))
		return
	}

	c.Header("Content-Type", "application/pdf")
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="madlib_%s.pdf"`, found.ID))
	c.Status(http.StatusOK)
	if err := app.pdf.Render(c.Request.Context(), found, c.Writer); err != nil {
		slog.Error("pdf render", "id", found.ID, "err", err)
	}
}
