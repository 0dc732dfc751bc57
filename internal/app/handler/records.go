package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mindflow-app/mindflow-BE/internal/app/model"
	"github.com/mindflow-app/mindflow-BE/internal/app/service"
	pkgerr "github.com/mindflow-app/mindflow-BE/internal/pkg/err"
	"github.com/mindflow-app/mindflow-BE/internal/pkg/logger"
	"github.com/mindflow-app/mindflow-BE/internal/pkg/middleware"
)

// RecordHandler 一种记录资源的四个接口：GET / POST / PUT /:id / DELETE /:id
type RecordHandler[T any, P model.Record[T]] struct {
	svc *service.Records[T, P]
	log *logger.Logger
}

func NewRecordHandler[T any, P model.Record[T]](svc *service.Records[T, P], log *logger.Logger) *RecordHandler[T, P] {
	return &RecordHandler[T, P]{svc: svc, log: log.With("resource", svc.Kind().Name)}
}

// Register 挂到 /api/{name} 下
func (h *RecordHandler[T, P]) Register(api *gin.RouterGroup) {
	g := api.Group("/" + h.svc.Kind().Name)
	g.GET("", h.List)
	g.POST("", h.Create)
	g.PUT("/:id", h.Update)
	g.DELETE("/:id", h.Delete)
}

// List GET /api/{name}?userId=
func (h *RecordHandler[T, P]) List(c *gin.Context) {
	userID := middleware.CurrentUser(c)
	h.log.Debug("list", "userId", userID)
	reply, err := h.svc.List(c.Request.Context(), userID)
	h.respond(c, reply, err)
}

// Create POST /api/{name}
func (h *RecordHandler[T, P]) Create(c *gin.Context) {
	body, ok := h.bind(c)
	if !ok {
		return
	}
	h.log.Debug("create", "body", body)
	reply, err := h.svc.Create(c.Request.Context(), body)
	h.respond(c, reply, err)
}

// Update PUT /api/{name}/:id
func (h *RecordHandler[T, P]) Update(c *gin.Context) {
	body, ok := h.bind(c)
	if !ok {
		return
	}
	id := c.Param("id")
	h.log.Debug("update", "id", id, "body", body)
	reply, err := h.svc.Update(c.Request.Context(), id, body)
	h.respond(c, reply, err)
}

// Delete DELETE /api/{name}/:id
func (h *RecordHandler[T, P]) Delete(c *gin.Context) {
	id := c.Param("id")
	h.log.Debug("delete", "id", id)
	reply, err := h.svc.Delete(c.Request.Context(), id)
	h.respond(c, reply, err)
}

func (h *RecordHandler[T, P]) bind(c *gin.Context) (map[string]any, bool) {
	var body map[string]any
	// 空 body 当作空对象，PUT 时相当于不改任何字段
	if err := c.ShouldBindJSON(&body); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "Invalid JSON body"})
		return nil, false
	}
	if body == nil {
		body = map[string]any{}
	}
	return body, true
}

func (h *RecordHandler[T, P]) respond(c *gin.Context, reply service.Reply, err error) {
	if err != nil {
		writeError(c, h.log, h.svc.Kind().Noun, err)
		return
	}
	if reply.Degraded {
		c.Header("X-Mindflow-Degraded", "true")
	}
	c.JSON(http.StatusOK, reply.Body)
}

// writeError 400/404 带具体信息，其余只返回通用错误
func writeError(c *gin.Context, log *logger.Logger, noun string, err error) {
	var ve *pkgerr.ValidationError
	var nf *pkgerr.NotFoundError
	switch {
	case errors.As(err, &ve):
		resp := gin.H{"msg": ve.Msg}
		if len(ve.Fields) > 0 {
			resp["fields"] = ve.Fields
		}
		c.JSON(http.StatusBadRequest, resp)
	case errors.As(err, &nf):
		c.JSON(http.StatusNotFound, gin.H{"msg": noun + " not found"})
	default:
		log.Error("request failed", "error", err, "path", c.Request.URL.Path)
		c.JSON(pkgerr.HTTPStatus(err), gin.H{"error": "Something went wrong!"})
	}
}
