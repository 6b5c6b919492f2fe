// Package manual 人工评审题型：答案以 pending 提交进入队列，由管理员批准或驳回
package manual

import (
	"embed"
	"html/template"
	"io/fs"
	"net/http"
	"time"

	"manualctf/challenges"
	"manualctf/middlewares"

	"github.com/gin-gonic/gin"
)

//go:embed assets
var assetsFS embed.FS

//go:embed templates/grade.html
var templatesFS embed.FS

var gradeTemplate = template.Must(template.New("grade.html").Funcs(template.FuncMap{
	"formatTime": func(t time.Time) string { return t.Format("2006-01-02 15:04:05") },
}).ParseFS(templatesFS, "templates/grade.html"))

// Models 插件新增的数据表
func Models() []interface{} {
	return []interface{}{&ManualChallenge{}}
}

// Load 注册题型、静态资源与评审路由
func Load(r *gin.Engine, reg *challenges.Registry) error {
	if err := reg.Register(Challenge{}); err != nil {
		return err
	}

	assets, err := fs.Sub(assetsFS, "assets")
	if err != nil {
		return err
	}
	r.StaticFS(AssetsPath, http.FS(assets))

	group := r.Group("/manual")
	{
		group.GET("/submissions/:id", middlewares.JWTAuthMiddleware(), Submissions)

		judge := group.Group("")
		judge.Use(middlewares.AdminOnly()...)
		judge.GET("/grade", Grade)
		judge.GET("/approve/:id", Approve)
		judge.GET("/reject/:id", Reject)
	}
	return nil
}
