package http

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"finweb/internal/api"
	"finweb/internal/core"
	"finweb/internal/log"
	"finweb/internal/services"
)

// MsgLoadCategoriesFailed is shown with a Retry control when the list fetch fails.
const MsgLoadCategoriesFailed = "Failed to load categories"

type categoriesPage struct {
	User  string
	Types []core.CategoryType
	Form  core.Category
}

type categoryList struct {
	Categories []core.Category
	Error      string
}

type statusMessage struct {
	Success string
	Error   string
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet, http.MethodHead:
		s.handleCategoriesPage(w, r)
	case http.MethodPost:
		s.handleSaveCategory(w, r)
	default:
		MethodNotAllowedError("GET, POST").Write(w)
	}
}

// handleCategoriesPage renders the manager. ?edit=ID prefills the form with
// that category.
func (s *Server) handleCategoriesPage(w http.ResponseWriter, r *http.Request) {
	data := categoriesPage{
		User:  sessionFrom(r).User.Email,
		Types: core.CategoryTypes(),
		Form:  core.Category{Type: core.Mandatory, Color: core.FallbackColor, Active: true},
	}

	if v := r.URL.Query().Get("edit"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err == nil {
			cats, err := s.gateway.ListCategories(r.Context())
			if err != nil {
				s.logBackendError(r.Context(), log.ComponentCategory, "Failed to load category for edit", err)
			}
			for _, c := range cats {
				if c.ID == id {
					data.Form = c
					break
				}
			}
		}
	}

	s.render(w, r, http.StatusOK, "categories_page", data)
}

func (s *Server) handleCategoryList(w http.ResponseWriter, r *http.Request) {
	if fail := RequireGET(r); fail != nil {
		fail.Write(w)
		return
	}
	cats, err := s.gateway.ListCategories(r.Context())
	if err != nil {
		s.logBackendError(r.Context(), log.ComponentCategory, "Failed to load categories", err)
		s.render(w, r, http.StatusOK, "category_list", categoryList{Error: api.UserMessage(err, MsgLoadCategoriesFailed)})
		return
	}
	s.render(w, r, http.StatusOK, "category_list", categoryList{Categories: cats})
}

func (s *Server) handleSaveCategory(w http.ResponseWriter, r *http.Request) {
	p, fail := ParseBodyOrFail(r)
	if fail != nil {
		fail.Write(w)
		return
	}

	c := core.Category{
		Name:   p.Get("name"),
		Type:   core.CategoryType(strings.ToUpper(p.Get("type"))),
		Color:  strings.ToLower(p.Get("color")),
		Active: p.Bool("active"),
	}
	if v := p.Get("id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil || id <= 0 {
			s.render(w, r, http.StatusUnprocessableEntity, "status_message", statusMessage{Error: "Invalid category id"})
			return
		}
		c.ID = id
	}
	if err := s.validate.Struct(c); err != nil {
		s.render(w, r, http.StatusUnprocessableEntity, "status_message", statusMessage{Error: categoryValidationMessage(err)})
		return
	}

	if err := s.expenses.SaveCategory(r.Context(), sessionFrom(r).User.Email, c); err != nil {
		s.logBackendError(r.Context(), log.ComponentCategory, "Failed to save category", err)
		s.render(w, r, http.StatusBadGateway, "status_message",
			statusMessage{Error: api.UserMessage(err, services.MsgCategorySaveFailed)})
		return
	}

	msg := "Category created"
	if c.ID != 0 {
		msg = "Category updated"
	}
	s.write(w, r, NewHTMXResponse().
		TriggerCategoriesRefresh().
		TriggerFormReset().
		Render(s.templates, "status_message", statusMessage{Success: msg}))
}

// handleDeleteCategory deletes by id. A 2xx reply carrying an error field is
// shown to the user and the list is left as it is.
func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	if fail := RequireDeleteOrPOST(r); fail != nil {
		fail.Write(w)
		return
	}
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		s.render(w, r, http.StatusBadRequest, "status_message", statusMessage{Error: "Invalid category id"})
		return
	}

	if err := s.expenses.DeleteCategory(r.Context(), sessionFrom(r).User.Email, id); err != nil {
		s.logBackendError(r.Context(), log.ComponentCategory, "Failed to delete category", err)
		status := http.StatusBadGateway
		if api.IsKind(err, api.KindApplication) {
			status = http.StatusConflict
		}
		s.render(w, r, status, "status_message",
			statusMessage{Error: api.UserMessage(err, services.MsgCategoryDeleteError)})
		return
	}

	s.write(w, r, NewHTMXResponse().
		TriggerCategoriesRefresh().
		Render(s.templates, "status_message", statusMessage{Success: "Category deleted"}))
}

func categoryValidationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "Invalid category"
	}
	fe := verrs[0]
	switch fe.Field() {
	case "Name":
		if fe.Tag() == "required" {
			return "Category name is required"
		}
		return "Category name must be at most 100 characters"
	case "Type":
		return "Category type must be MANDATORY, LEISURE or INVESTMENTS"
	case "Color":
		return "Color must be a hex value like #ff8800"
	default:
		return "Invalid category"
	}
}
