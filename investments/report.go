package investments

import (
	"errors"
	"net/http"

	"github.com/sri-akshat/wealth-manager"
	"github.com/sri-akshat/wealth-manager/api"
	"github.com/sri-akshat/wealth-manager/auth"
	"github.com/sri-akshat/wealth-manager/renderer"
)

func (s *Service) report(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format != "" && format != "markdown" && format != "html" {
		api.WriteError(w, api.Invalid("query", &wealth.FieldError{Field: "format", Err: errors.New("input should be markdown or html")}))
		return
	}
	p, _ := auth.FromContext(r.Context())
	investments, err := s.store.Investments.ByUser(r.Context(), p.UserID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	md := renderer.RenderReport(renderer.NewReport(p.Email, s.now(), investments))

	if format == "html" {
		page, err := renderer.HTML("Portfolio Report", md)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(page))
		return
	}
	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(md))
}
