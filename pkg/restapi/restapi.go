// Package restapi 把注册表的记录操作暴露为 HTTP 接口，
// 供非 Go 进程查询与发布服务记录。
package restapi

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/code-sigs/go-disco/pkg/discovery"
	"github.com/code-sigs/go-disco/pkg/errs"
	"github.com/code-sigs/go-disco/pkg/logger"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

type StandardResponse[T any] struct {
	Code    int32  `json:"code"`
	Message string `json:"message"`
	Data    T      `json:"data,omitempty"`
}

// Server 服务发现的 REST 接口
type Server struct {
	disco *discovery.Discovery
}

func New(d *discovery.Discovery) *Server {
	return &Server{disco: d}
}

// Engine 构建 gin 引擎并挂载路由
func (s *Server) Engine(isDebug bool) *gin.Engine {
	if !isDebug {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"}, // 如果 AllowCredentials: true，请指定域名
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS", "HEAD"},
		AllowHeaders:     []string{"*"},
		ExposeHeaders:    []string{"*"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))
	engine.Use(gin.Recovery(), gin.Logger())

	group := engine.Group("/discovery")
	group.GET("/records", s.getRecords)
	group.GET("/records/:registration", s.getRecord)
	group.POST("/records", s.publish)
	group.PUT("/records/:registration", s.update)
	group.DELETE("/records/:registration", s.unpublish)
	return engine
}

// Run 启动服务并实现优雅关闭
func (s *Server) Run(addr string, isDebug bool) error {
	srv := &http.Server{
		Addr:    addr,
		Handler: s.Engine(isDebug),
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			panic("listen: " + err.Error())
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	s.disco.Close()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(ctx)
}

// internalError 业务错误带 code 时透出到响应 envelope
func internalError(c *gin.Context, err error) {
	code := int32(errs.ErrorInternal)
	if wrapErr, ok := errs.AsWrapError(err); ok && wrapErr.Code() != 0 {
		code = int32(wrapErr.Code())
	}
	c.JSON(http.StatusInternalServerError, StandardResponse[any]{Code: code, Message: err.Error()})
}

// getRecords 按 query 参数过滤记录，无参数时返回全部 UP 记录
func (s *Server) getRecords(c *gin.Context) {
	filter := map[string]any{}
	for _, key := range []string{"name", "type", "status"} {
		if value := c.Query(key); value != "" {
			filter[key] = value
		}
	}
	records, err := s.disco.GetRecords(c.Request.Context(), filter)
	if err != nil {
		logger.Errorw(c.Request.Context(), "list records failed", "error", err)
		internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, StandardResponse[[]*discovery.Record]{Code: 0, Message: "ok", Data: records})
}

func (s *Server) getRecord(c *gin.Context) {
	registration := c.Param("registration")
	record, err := s.disco.GetRecordMatching(c.Request.Context(), func(r *discovery.Record) bool {
		return r.Registration == registration
	}, true)
	if err != nil {
		internalError(c, err)
		return
	}
	if record == nil {
		c.JSON(http.StatusNotFound, StandardResponse[any]{Code: 404, Message: "record not found"})
		return
	}
	c.JSON(http.StatusOK, StandardResponse[*discovery.Record]{Code: 0, Message: "ok", Data: record})
}

func (s *Server) publish(c *gin.Context) {
	record := &discovery.Record{}
	if err := c.ShouldBindJSON(record); err != nil {
		c.JSON(http.StatusBadRequest, StandardResponse[any]{Code: 400, Message: "Invalid request: " + err.Error()})
		return
	}
	stored, err := s.disco.Publish(c.Request.Context(), record)
	if err != nil {
		logger.Errorw(c.Request.Context(), "publish record failed", "name", record.Name, "error", err)
		internalError(c, err)
		return
	}
	c.JSON(http.StatusCreated, StandardResponse[*discovery.Record]{Code: 0, Message: "ok", Data: stored})
}

func (s *Server) update(c *gin.Context) {
	record := &discovery.Record{}
	if err := c.ShouldBindJSON(record); err != nil {
		c.JSON(http.StatusBadRequest, StandardResponse[any]{Code: 400, Message: "Invalid request: " + err.Error()})
		return
	}
	if record.Registration != c.Param("registration") {
		c.JSON(http.StatusBadRequest, StandardResponse[any]{Code: 400, Message: "registration in path and body must match"})
		return
	}
	updated, err := s.disco.Update(c.Request.Context(), record)
	if err != nil {
		if errors.Is(err, discovery.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, StandardResponse[any]{Code: 404, Message: "record not found"})
			return
		}
		internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, StandardResponse[*discovery.Record]{Code: 0, Message: "ok", Data: updated})
}

func (s *Server) unpublish(c *gin.Context) {
	if err := s.disco.Unpublish(c.Request.Context(), c.Param("registration")); err != nil {
		if errors.Is(err, discovery.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, StandardResponse[any]{Code: 404, Message: "record not found"})
			return
		}
		internalError(c, err)
		return
	}
	c.JSON(http.StatusNoContent, nil)
}
