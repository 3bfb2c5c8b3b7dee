package api

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/raugupatis/raugupatis-log/internal/services"
	"github.com/raugupatis/raugupatis-log/internal/templates"
	"go.uber.org/zap"
)

var pageTemplates = []string{
	"home",
	"login",
	"register",
	"dashboard",
	"profile",
	"fermentations",
	"fermentation_new",
	"fermentation_detail",
	"fermentation_edit",
	"admin_users",
	"admin_profiles",
	"not_found",
}

func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"formatDate": func(value any) string {
			switch typed := value.(type) {
			case time.Time:
				if typed.IsZero() {
					return ""
				}
				return typed.Format("Jan 2, 2006")
			case *time.Time:
				if typed == nil || typed.IsZero() {
					return ""
				}
				return typed.Format("Jan 2, 2006")
			default:
				return ""
			}
		},
		"inputDate": func(value any) string {
			switch typed := value.(type) {
			case time.Time:
				if typed.IsZero() {
					return ""
				}
				return typed.Format(time.DateOnly)
			case *time.Time:
				if typed == nil || typed.IsZero() {
					return ""
				}
				return typed.Format(time.DateOnly)
			default:
				return ""
			}
		},
		"formatTemp": func(fahrenheit float64, unit string) string {
			return fmt.Sprintf("%.1f%s", services.ToDisplayUnit(fahrenheit, unit), services.TempUnitSymbol(unit))
		},
		"deref": func(value *string) string {
			if value == nil {
				return ""
			}
			return *value
		},
		"title": func(value string) string {
			if value == "" {
				return ""
			}
			return strings.ToUpper(value[:1]) + value[1:]
		},
		"join": strings.Join,
		"list": func(values ...string) []string {
			return values
		},
		"isActiveRoute": func(currentPath string, route string) bool {
			if route == "/" {
				return currentPath == "/"
			}
			return currentPath == route || strings.HasPrefix(currentPath, route+"/")
		},
	}
}

func parseTemplates() (map[string]*template.Template, error) {
	funcs := templateFuncs()
	parsed := make(map[string]*template.Template, len(pageTemplates))
	for _, page := range pageTemplates {
		tmpl, err := template.New("base").Funcs(funcs).ParseFS(templates.Files, "base.html", page+".html")
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", page, err)
		}
		parsed[page] = tmpl
	}
	return parsed, nil
}

func (handler *Handler) render(c *fiber.Ctx, name string, data fiber.Map) error {
	tmpl, ok := handler.templates[name]
	if !ok {
		return c.Status(fiber.StatusInternalServerError).SendString("template not found")
	}

	payload := fiber.Map{
		"CurrentPath": c.Path(),
		"CSRFToken":   csrfToken(c),
	}
	if user, ok := currentUser(c); ok {
		payload["CurrentUser"] = user
	}
	for key, value := range data {
		payload[key] = value
	}

	var output bytes.Buffer
	if err := tmpl.ExecuteTemplate(&output, "base", payload); err != nil {
		handler.logger.Error("render template", zap.String("template", name), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).SendString("failed to render template")
	}
	c.Type("html", "utf-8")
	return c.Send(output.Bytes())
}
