package api

import (
	"context"
	"errors"
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"vidqueue/internal/media"
	"vidqueue/internal/queue"
)

// MetadataResolver extracts media metadata without downloading anything.
type MetadataResolver interface {
	ExtractInfo(ctx context.Context, url string) (*media.Info, error)
}

type urlRequest struct {
	URL string `json:"url"`
}

type urlsRequest struct {
	URLs []string `json:"urls"`
}

type queuedResponse struct {
	Queued int      `json:"queued"`
	JobIDs []string `json:"job_ids"`
}

type API struct {
	queue    *queue.Manager
	resolver MetadataResolver
}

func NewAPI(queueManager *queue.Manager, resolver MetadataResolver) *API {
	return &API{queue: queueManager, resolver: resolver}
}

// RegisterRoutes registers API routes on the provided gin engine.
func (a *API) RegisterRoutes(router *gin.Engine) {
	api := router.Group("/api")
	{
		api.POST("/thumbnail", a.Thumbnail)
		api.POST("/preview", a.Preview)
		api.POST("/download", a.Download)
		api.POST("/queue/add", a.QueueAdd)
		api.GET("/queue", a.Queue)
		api.GET("/jobs/:id/file", a.JobFile)
		api.DELETE("/jobs/:id", a.CancelJob)
	}
}

// Thumbnail resolves the best available thumbnail URL for a media page.
func (a *API) Thumbnail(c *gin.Context) {
	var req urlRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		detail(c, http.StatusBadRequest, "invalid request")
		return
	}
	info, err := a.resolver.ExtractInfo(c.Request.Context(), req.URL)
	if err != nil {
		detail(c, http.StatusBadRequest, err.Error())
		return
	}
	thumb := media.BestThumbnail(info)
	if thumb == "" {
		log.Warn().Str("url", req.URL).Msg("no thumbnail in metadata")
		detail(c, http.StatusBadRequest, "No thumbnail found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"thumbnail": thumb})
}

// Preview resolves a direct stream URL suitable for in-browser playback.
func (a *API) Preview(c *gin.Context) {
	var req urlRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		detail(c, http.StatusBadRequest, "invalid request")
		return
	}
	info, err := a.resolver.ExtractInfo(c.Request.Context(), req.URL)
	if err != nil {
		detail(c, http.StatusBadRequest, err.Error())
		return
	}
	stream := media.StreamURL(info)
	if stream == "" {
		log.Warn().Str("url", req.URL).Msg("no stream url in metadata")
		detail(c, http.StatusBadRequest, "No preview URL found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"stream_url": stream})
}

// Download enqueues a single URL.
func (a *API) Download(c *gin.Context) {
	var req urlRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		detail(c, http.StatusBadRequest, "invalid request")
		return
	}
	a.enqueue(c, []string{req.URL})
}

// QueueAdd enqueues a batch of URLs. Blank entries are skipped; an empty
// batch is accepted and reports zero queued jobs.
func (a *API) QueueAdd(c *gin.Context) {
	var req urlsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		detail(c, http.StatusBadRequest, "invalid request")
		return
	}
	if req.URLs == nil {
		req.URLs = []string{}
	}
	a.enqueue(c, req.URLs)
}

func (a *API) enqueue(c *gin.Context, urls []string) {
	jobIDs, err := a.queue.Add(urls)
	if err != nil && !errors.Is(err, queue.ErrNoURLs) {
		log.Warn().Err(err).Msg("enqueue failed")
		detail(c, http.StatusBadRequest, err.Error())
		return
	}
	if jobIDs == nil {
		jobIDs = []string{}
	}
	log.Info().Int("queued", len(jobIDs)).Msg("jobs enqueued")
	c.JSON(http.StatusOK, queuedResponse{Queued: len(jobIDs), JobIDs: jobIDs})
}

// Queue returns the full job list in submission order.
func (a *API) Queue(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"queue": a.queue.Snapshot()})
}

// JobFile serves the downloaded file of a finished job as an attachment.
func (a *API) JobFile(c *gin.Context) {
	id := c.Param("id")
	job, ok := a.queue.Get(id)
	if !ok {
		detail(c, http.StatusNotFound, "job not found")
		return
	}
	if job.Status != queue.StatusDone || job.Filepath == "" {
		log.Warn().Str("job_id", id).Str("status", string(job.Status)).Msg("file not ready to serve")
		detail(c, http.StatusConflict, "file not ready")
		return
	}
	log.Info().Str("job_id", id).Str("path", job.Filepath).Msg("serving downloaded file")
	c.FileAttachment(job.Filepath, filepath.Base(job.Filepath))
}

// CancelJob stops a queued or running job.
func (a *API) CancelJob(c *gin.Context) {
	id := c.Param("id")
	switch err := a.queue.Cancel(id); {
	case errors.Is(err, queue.ErrJobNotFound):
		detail(c, http.StatusNotFound, "job not found")
	case errors.Is(err, queue.ErrJobFinished):
		detail(c, http.StatusConflict, "job already finished")
	case err != nil:
		detail(c, http.StatusBadRequest, err.Error())
	default:
		log.Info().Str("job_id", id).Msg("job cancelled")
		c.JSON(http.StatusOK, gin.H{"cancelled": id})
	}
}

// detail writes the error body convention shared with the client: any
// non-success status carries {detail: string}.
func detail(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{"detail": msg})
}
