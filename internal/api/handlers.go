package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"coursecast/internal/access"
	"coursecast/internal/media"
	"coursecast/internal/resolve"
	"coursecast/internal/store"
)

// Handler holds the dependencies shared by all routes.
type Handler struct {
	store     *store.Store
	resolver  *resolve.Resolver
	evaluator *access.Evaluator
	opts      Options
}

type errorResponse struct {
	Error string `json:"error"`
}

// resolveRequest is the authoring-time payload: whatever the instructor
// pasted.
type resolveRequest struct {
	Input string `json:"input" binding:"required"`
}

// Resolve normalizes a raw instructor input without persisting anything.
// Resolution is total, so this endpoint cannot fail on bad input; worst
// case the response carries an unknown-provider passthrough.
func (h *Handler) Resolve(c *gin.Context) {
	var req resolveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "input is required"})
		return
	}
	c.JSON(http.StatusOK, h.resolver.Normalize(req.Input))
}

// createVideoRequest is the catalog-entry payload.
type createVideoRequest struct {
	Title        string `json:"title" binding:"required"`
	Description  string `json:"description"`
	Category     string `json:"category"`
	Source       string `json:"source" binding:"required"` // raw instructor input
	IsFree       bool   `json:"is_free"`
	UnlockPeriod *int   `json:"unlock_period"`
	PublisherID  string `json:"publisher_id" binding:"required"`
	ThumbnailURL string `json:"thumbnail_url"`
}

// CreateVideo normalizes the submitted source and persists the catalog
// entry. This is the one place a ResolvedSource is computed for a new
// video; it is read-only afterwards until the source is edited.
func (h *Handler) CreateVideo(c *gin.Context) {
	var req createVideoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	v := &media.VideoRecord{
		ID:           uuid.New().String(),
		Title:        req.Title,
		Description:  req.Description,
		Category:     req.Category,
		RawSource:    req.Source,
		Source:       h.resolver.Normalize(req.Source),
		IsFree:       req.IsFree,
		UnlockPeriod: req.UnlockPeriod,
		PublisherID:  req.PublisherID,
		ThumbnailURL: req.ThumbnailURL,
	}

	if err := h.store.CreateVideo(v); err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse{Error: "could not save video"})
		return
	}
	c.JSON(http.StatusCreated, v)
}

// ListVideos returns the catalog, optionally filtered by publisher.
func (h *Handler) ListVideos(c *gin.Context) {
	videos, err := h.store.ListVideos(c.Query("publisher"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse{Error: "could not list videos"})
		return
	}
	if videos == nil {
		videos = []media.VideoRecord{}
	}
	c.JSON(http.StatusOK, videos)
}

// GetVideo returns one catalog entry.
func (h *Handler) GetVideo(c *gin.Context) {
	v, err := h.store.GetVideo(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse{Error: "could not read video"})
		return
	}
	if v == nil {
		c.JSON(http.StatusNotFound, errorResponse{Error: "video not found"})
		return
	}
	c.JSON(http.StatusOK, v)
}

// UpdateVideoSource re-normalizes an edited raw input and stores the new
// resolved source.
func (h *Handler) UpdateVideoSource(c *gin.Context) {
	var req resolveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "input is required"})
		return
	}

	src := h.resolver.Normalize(req.Input)
	if err := h.store.UpdateVideoSource(c.Param("id"), req.Input, src); err != nil {
		c.JSON(http.StatusNotFound, errorResponse{Error: "video not found"})
		return
	}
	c.JSON(http.StatusOK, src)
}

// playbackDescriptor is what a granted viewer needs to mount a player.
type playbackDescriptor struct {
	PlayableURI  string `json:"playable_uri"`
	DeliveryMode string `json:"delivery_mode"`
	ProtocolHint string `json:"protocol_hint,omitempty"`
	MIME         string `json:"mime,omitempty"`
	Watermark    string `json:"watermark,omitempty"`
	AntiDownload bool   `json:"anti_download"`
}

// watchResponse pairs the access decision with the playback descriptor
// (present only when granted).
type watchResponse struct {
	Decision    string              `json:"decision"`
	Remediation string              `json:"remediation,omitempty"`
	Playback    *playbackDescriptor `json:"playback,omitempty"`
}

// decisionStatus maps each denial variant to its HTTP status.
func decisionStatus(d media.AccessDecision) int {
	switch d {
	case media.AccessGranted:
		return http.StatusOK
	case media.AccessLoginRequired:
		return http.StatusUnauthorized
	case media.AccessSubscriptionRequired:
		return http.StatusPaymentRequired
	case media.AccessNotFound:
		return http.StatusNotFound
	default:
		return http.StatusForbidden
	}
}

// Watch evaluates the viewer's entitlement and, when granted, hands out
// the playback descriptor. The viewer identity arrives pre-authenticated
// from the session layer; an empty viewer query means anonymous.
func (h *Handler) Watch(c *gin.Context) {
	v, err := h.store.GetVideo(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse{Error: "could not read video"})
		return
	}

	viewer := c.Query("viewer")
	decision := h.evaluator.Evaluate(v, viewer)

	resp := watchResponse{
		Decision:    decision.String(),
		Remediation: decision.Remediation(),
	}

	if decision.Allowed() {
		watermark := h.opts.Watermark
		if watermark == "" {
			watermark = viewer
		}
		resp.Playback = &playbackDescriptor{
			PlayableURI:  v.Source.PlayableURI,
			DeliveryMode: v.Source.Delivery.String(),
			MIME:         v.Source.MIME(),
			Watermark:    watermark,
			AntiDownload: v.Source.Provider == media.ProviderEdgeStream,
		}
		if v.Source.Delivery == media.DeliveryNativeVideo {
			resp.Playback.ProtocolHint = v.Source.Protocol.String()
		}
	}

	c.JSON(decisionStatus(decision), resp)
}
