// Package web serves the server-rendered admin pages.
package web

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/nextstep/gift/internal/domain"
	"github.com/nextstep/gift/internal/domain/validation"
)

//go:embed templates/*.html
var templateFS embed.FS

const adminPageSize = 10

var pageNames = []string{"products", "product_form", "categories", "members"}

var funcs = template.FuncMap{
	"prev": func(n int) int { return n - 1 },
	"next": func(n int) int { return n + 1 },
}

// Handler renders the admin pages.
type Handler struct {
	logger *slog.Logger
	domain domain.Container
	pages  map[string]*template.Template
}

// New parses the embedded templates.
func New(c domain.Container, logger *slog.Logger) (*Handler, error) {
	if logger == nil {
		logger = slog.Default()
	}

	pages := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		tmpl, err := template.New(name).Funcs(funcs).ParseFS(templateFS, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("parse %s template: %w", name, err)
		}
		pages[name] = tmpl
	}

	return &Handler{logger: logger, domain: c, pages: pages}, nil
}

// Register attaches the admin routes under /admin.
func (h *Handler) Register(r chi.Router) {
	r.Route("/admin", func(r chi.Router) {
		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, "/admin/products", http.StatusFound)
		})

		r.Get("/products", h.listProducts)
		r.Get("/products/new", h.newProduct)
		r.Post("/products", h.createProduct)
		r.Get("/products/{id}/edit", h.editProduct)
		r.Post("/products/{id}", h.updateProduct)
		r.Post("/products/{id}/delete", h.deleteProduct)

		r.Get("/categories", h.listCategories)
		r.Post("/categories", h.createCategory)

		r.Get("/members", h.listMembers)
		r.Post("/members/{id}/charge", h.chargeMember)
	})
}

type view struct {
	Title  string
	Errors []string
	Data   any
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, page string, v view) {
	var buf bytes.Buffer
	if err := h.pages[page].ExecuteTemplate(&buf, "layout", v); err != nil {
		h.logger.Error("render admin page", "page", page, "path", r.URL.Path, "err", err)
		http.Error(w, "Internal Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// fail answers errors that cannot be shown next to a form.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		h.logger.Error("admin request failed", "method", r.Method, "path", r.URL.Path, "err", err)
		http.Error(w, "Internal Error", status)
		return
	}
	http.Error(w, err.Error(), status)
}

func statusFor(err error) int {
	switch {
	case validation.IsError(err):
		return http.StatusBadRequest
	case isNotFound(err):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func messages(err error) []string {
	var verr *validation.Error
	if errors.As(err, &verr) {
		return verr.Messages
	}
	return []string{err.Error()}
}

func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, validation.New("Invalid id.")
	}
	return id, nil
}

func seeOther(w http.ResponseWriter, r *http.Request, path string) {
	http.Redirect(w, r, path, http.StatusSeeOther)
}
