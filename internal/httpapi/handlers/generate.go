package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/suPer8Hu/linkedcraft/internal/common"
	"github.com/suPer8Hu/linkedcraft/internal/generate"
	"github.com/suPer8Hu/linkedcraft/internal/httpapi/middleware"
)

type outcomeView struct {
	generate.Outcome
	HTML string `json:"html,omitempty"`
}

// callerPipeline answers like the gate when the caller signed out after the
// gate let the request through.
func (h *Handler) callerPipeline(c *gin.Context, userID string) (*generate.Pipeline, bool) {
	p, ok := h.pipelineFor(userID)
	if !ok {
		c.Redirect(http.StatusFound, h.SignInPath)
		c.Abort()
	}
	return p, ok
}

func (h *Handler) GenerateOptions(c *gin.Context) {
	common.OK(c, generate.Options())
}

// SubmitGenerate starts a generation. With ?wait=1 it answers once the call
// has settled, otherwise it answers 202 with the InFlight outcome.
func (h *Handler) SubmitGenerate(c *gin.Context) {
	id, ok := middleware.IdentityFromContext(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}

	var form generate.Form
	if err := c.ShouldBindJSON(&form); err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "invalid json")
		return
	}
	req, err := form.Parse()
	if err != nil {
		var ve *generate.ValidationError
		if errors.As(err, &ve) {
			common.Fail(c, http.StatusBadRequest, 10002, ve.Error())
			return
		}
		common.Fail(c, http.StatusBadRequest, 10002, "invalid request")
		return
	}

	p, ok := h.callerPipeline(c, id.ID)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	if token := h.Store.AccessToken(); token != "" {
		ctx = generate.WithAccessToken(ctx, token)
	}
	out, err := p.Submit(ctx, req)
	if err != nil {
		if errors.Is(err, generate.ErrInFlight) {
			c.JSON(http.StatusConflict, gin.H{
				"code":    40901,
				"message": "generation in flight",
				"data":    out,
			})
			return
		}
		log.Printf("[generate] submit failed user_id=%s err=%v", id.ID, err)
		common.Fail(c, http.StatusInternalServerError, 50001, "failed to start generation")
		return
	}

	if c.Query("wait") != "1" {
		common.Accepted(c, out)
		return
	}
	out, _ = p.Wait(c.Request.Context())
	common.OK(c, out)
}

// GetGenerate returns the outcome slot. ?wait=1 blocks while InFlight;
// ?format=html adds a rendered preview of succeeded content.
func (h *Handler) GetGenerate(c *gin.Context) {
	id, ok := middleware.IdentityFromContext(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}

	p, ok := h.callerPipeline(c, id.ID)
	if !ok {
		return
	}
	out := p.Outcome()
	if c.Query("wait") == "1" {
		out, _ = p.Wait(c.Request.Context())
	}

	view := outcomeView{Outcome: out}
	if c.Query("format") == "html" && out.State == generate.StateSucceeded {
		html, err := generate.RenderHTML(out.Content)
		if err != nil {
			log.Printf("[generate] render failed request_id=%s err=%v", out.RequestID, err)
		} else {
			view.HTML = html
		}
	}
	common.OK(c, view)
}

func (h *Handler) ClearGenerate(c *gin.Context) {
	id, ok := middleware.IdentityFromContext(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}

	p, ok := h.callerPipeline(c, id.ID)
	if !ok {
		return
	}
	p.Clear()
	common.OK(c, p.Outcome())
}

// GenerateContent is the copy sink: the raw content, or 404 when there is
// nothing to copy.
func (h *Handler) GenerateContent(c *gin.Context) {
	id, ok := middleware.IdentityFromContext(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}

	p, ok := h.callerPipeline(c, id.ID)
	if !ok {
		return
	}
	content, ok := p.Content()
	if !ok {
		common.Fail(c, http.StatusNotFound, 40401, "no generated content")
		return
	}
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(content))
}
