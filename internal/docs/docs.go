// Package docs は OpenAPI ドキュメントと案内用のルートを提供します。
package docs

import (
	_ "embed"
	"fmt"
	"net/http"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"
	"gopkg.in/yaml.v3"
)

//go:embed openapi.yaml
var spec []byte

const swaggerPage = `<!DOCTYPE html>
<html>
<head>
  <title>Task Manager API</title>
  <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css">
</head>
<body>
  <div id="swagger-ui"></div>
  <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
  <script>SwaggerUIBundle({ url: "/api-docs/openapi.yaml", dom_id: "#swagger-ui" });</script>
</body>
</html>`

type document struct {
	Info struct {
		Title   string `yaml:"title"`
		Version string `yaml:"version"`
	} `yaml:"info"`
	Paths map[string]map[string]any `yaml:"paths"`
}

// Load は埋め込まれたドキュメントを読み込みます。
func Load() (*Docs, error) {
	var doc document
	if err := yaml.Unmarshal(spec, &doc); err != nil {
		return nil, fmt.Errorf("invalid openapi document: %w", err)
	}
	return &Docs{doc: doc}, nil
}

// Docs はドキュメント関連のハンドラーです。
type Docs struct {
	doc document
}

// Version は API のバージョンです。
func (d *Docs) Version() string { return d.doc.Info.Version }

// Title は API の名前です。
func (d *Docs) Title() string { return d.doc.Info.Title }

var pathParams = strings.NewReplacer("{", ":", "}", "")

// Operations は記載済みの操作を "GET /api/tasks/:id" のように gin のルート表記で返します。
func (d *Docs) Operations() []string {
	var ops []string
	for path, item := range d.doc.Paths {
		for method := range item {
			if method == "parameters" {
				continue
			}
			ops = append(ops, strings.ToUpper(method)+" "+pathParams.Replace(path))
		}
	}
	slices.Sort(ops)
	return ops
}

func (d *Docs) WelcomeHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message":       "Welcome to " + d.Title(),
		"version":       d.Version(),
		"documentation": "/api-docs",
	})
}

func (d *Docs) UIHandler(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(swaggerPage))
}

func (d *Docs) SpecHandler(c *gin.Context) {
	c.Data(http.StatusOK, "application/yaml", spec)
}
