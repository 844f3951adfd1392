package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"go-applypilot-automation/internal/gate"
	"go-applypilot-automation/internal/models"
	"go-applypilot-automation/internal/orchestrator"
	"go-applypilot-automation/internal/platform"
)

// Handler exposes the submission pipeline over HTTP.
type Handler struct {
	Orchestrator *orchestrator.Orchestrator
	Gate         *gate.Gate
	Classifier   *platform.Classifier
}

func NewHandler(orch *orchestrator.Orchestrator, g *gate.Gate, classifier *platform.Classifier) *Handler {
	return &Handler{Orchestrator: orch, Gate: g, Classifier: classifier}
}

// Register mounts all routes under /api/v1.
func (h *Handler) Register(r *gin.Engine) {
	r.GET("/", h.Health)

	v1 := r.Group("/api/v1")
	v1.POST("/applications", h.StartApplication)
	v1.GET("/applications/:id/status", h.ApplicationStatus)
	v1.POST("/applications/:id/cancel", h.CancelApplication)
	v1.GET("/applications/:id/suggestions", h.ProjectSuggestions)
	v1.POST("/applications/:id/suggestions", h.ApplyProjectSelection)
	v1.GET("/platforms/classify", h.ClassifyPlatform)
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "ApplyPilot automation API is running!",
		"status":  "healthy",
	})
}

type startRequest struct {
	UserID         string                  `json:"user_id" binding:"required"`
	JobURL         string                  `json:"job_url" binding:"required"`
	JobDescription string                  `json:"job_description"`
	Profile        models.ApplicantProfile `json:"profile"`
	Resume         *models.Resume          `json:"resume,omitempty"`
}

// StartApplication is the POST /applications endpoint. A duplicate start for
// the same (user, job URL) pair joins the in-flight job instead of failing.
func (h *Handler) StartApplication(c *gin.Context) {
	var req startRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON format: " + err.Error()})
		return
	}

	jobID, _, joined, err := h.Orchestrator.Submit(orchestrator.SubmitRequest{
		UserID:         req.UserID,
		JobURL:         req.JobURL,
		JobDescription: req.JobDescription,
		Profile:        req.Profile,
		BaseResume:     req.Resume,
	})
	if err == orchestrator.ErrAlreadyApplied {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	status := http.StatusAccepted
	if joined {
		status = http.StatusOK
	}
	c.JSON(status, gin.H{
		"application_id": jobID,
		"joined":         joined,
	})
}

// ApplicationStatus serves the polled status contract. Unknown ids still get
// a 200 body with status not_found so the poller can count misses.
func (h *Handler) ApplicationStatus(c *gin.Context) {
	c.JSON(http.StatusOK, h.Orchestrator.Status(c.Param("id")))
}

func (h *Handler) CancelApplication(c *gin.Context) {
	if !h.Orchestrator.Cancel(c.Param("id")) {
		c.JSON(http.StatusNotFound, gin.H{"error": "submission job not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"cancelled": true})
}

// ProjectSuggestions returns the saved suggestions for a job suspended at
// suggesting_projects.
func (h *Handler) ProjectSuggestions(c *gin.Context) {
	suggestions, score, err := h.Gate.Suggestions(c.Param("id"))
	if err == orchestrator.ErrJobNotFound {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"match_score": score,
		"suggestions": suggestions,
	})
}

// ApplyProjectSelection resumes a suspended job with the user's decision.
func (h *Handler) ApplyProjectSelection(c *gin.Context) {
	var selection models.ProjectSelection
	if err := c.ShouldBindJSON(&selection); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON format: " + err.Error()})
		return
	}

	err := h.Gate.Apply(c.Param("id"), selection)
	switch err {
	case nil:
		c.JSON(http.StatusOK, gin.H{"resumed": true})
	case orchestrator.ErrJobNotFound:
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case orchestrator.ErrNotSuspended:
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	}
}

// ClassifyPlatform previews which strategy a job URL would get.
func (h *Handler) ClassifyPlatform(c *gin.Context) {
	jobURL := c.Query("url")
	if jobURL == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "url query parameter is required"})
		return
	}
	c.JSON(http.StatusOK, h.Classifier.Classify(jobURL))
}
