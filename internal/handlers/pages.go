package handlers

import (
	"html/template"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/study_planner/internal/middleware/auth"
)

// PageHandler serves the HTML shells the browser client mounts into.
type PageHandler struct{}

var shell = template.Must(template.New("shell").Parse(`<!doctype html>
<html lang="en">
<head><meta charset="utf-8"><title>{{.Title}} | Study Planner</title></head>
<body data-page="{{.Page}}"{{if .Authenticated}} data-authenticated="true"{{end}}>
<div id="app"></div>
</body>
</html>
`))

type shellData struct {
	Title         string
	Page          string
	Authenticated bool
}

func (h *PageHandler) render(c echo.Context, page, title string) error {
	_, authed := auth.UserID(c)
	c.Response().Header().Set(echo.HeaderContentType, echo.MIMETextHTMLCharsetUTF8)
	c.Response().WriteHeader(http.StatusOK)
	return shell.Execute(c.Response(), shellData{Title: title, Page: page, Authenticated: authed})
}

func (h *PageHandler) Home(c echo.Context) error     { return h.render(c, "home", "Home") }
func (h *PageHandler) Login(c echo.Context) error    { return h.render(c, "login", "Sign in") }
func (h *PageHandler) Register(c echo.Context) error { return h.render(c, "register", "Create account") }
func (h *PageHandler) Dashboard(c echo.Context) error {
	return h.render(c, "dashboard", "My plans")
}
func (h *PageHandler) NewPlan(c echo.Context) error { return h.render(c, "new_plan", "New plan") }
func (h *PageHandler) Profile(c echo.Context) error { return h.render(c, "profile", "Profile") }
