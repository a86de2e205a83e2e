package server

import (
	"embed"
	nethttp "net/http"
	"time"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/go-kratos/kratos/v2/middleware/recovery"
	"github.com/go-kratos/kratos/v2/transport/http"

	"github.com/iWorld-y/boardroom/app/console/internal/conf"
	"github.com/iWorld-y/boardroom/app/console/internal/service"
)

//go:embed assets/*
var assets embed.FS

// defaultTimeout 模型调用通常需要数十秒
const defaultTimeout = 120 * time.Second

func NewHTTPServer(c *conf.Server, s *service.PanelService, logger log.Logger) *http.Server {
	var opts = []http.ServerOption{
		http.Middleware(
			recovery.Recovery(),
		),
		http.Timeout(defaultTimeout),
	}
	if c != nil && c.Http != nil {
		if c.Http.Addr != "" {
			opts = append(opts, http.Address(c.Http.Addr))
		}
		if c.Http.Timeout != "" {
			if d, err := time.ParseDuration(c.Http.Timeout); err == nil {
				opts = append(opts, http.Timeout(d))
			}
		}
	}

	srv := http.NewServer(opts...)

	r := srv.Route("/")
	r.GET("/api/state", s.State)
	r.POST("/api/settings", s.UpdateSettings)
	r.POST("/api/data", s.UploadData)
	r.POST("/api/chat", s.Chat)
	r.POST("/api/analysis", s.StartAnalysis)
	r.GET("/api/charts/{target}", s.Chart)
	r.GET("/api/meetings", s.Meetings)
	r.POST("/api/reset", s.Reset)
	r.GET("/report", s.Report)

	srv.HandleFunc("/", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		if r.URL.Path != "/" {
			nethttp.NotFound(w, r)
			return
		}
		content, _ := assets.ReadFile("assets/index.html")
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write(content)
	})

	return srv
}
