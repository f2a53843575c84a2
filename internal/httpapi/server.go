package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/lmcgowan/pricelab/internal/feedback"
	"github.com/lmcgowan/pricelab/internal/profile"
	"github.com/lmcgowan/pricelab/internal/report"
)

// PDFRenderer is how report PDF export reaches headless Chromium. It is
// an interface so tests can run without a browser.
type PDFRenderer interface {
	Render(ctx context.Context, markdown string) ([]byte, error)
}

type Server struct {
	store     profile.Store
	simulator *feedback.Simulator
	pdf       PDFRenderer
}

func NewServer(store profile.Store, simulator *feedback.Simulator, pdf PDFRenderer) http.Handler {
	s := &Server{store: store, simulator: simulator, pdf: pdf}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/v1/health", s.handleHealth)

	r.Post("/v1/price", s.handlePrice)
	r.Post("/v1/simulate", s.handleSimulate)

	r.Get("/v1/profiles", s.handleListProfiles)
	r.Post("/v1/profiles", s.handleSaveProfile)
	r.Get("/v1/profiles/{name}", s.handleGetProfile)
	r.Delete("/v1/profiles/{name}", s.handleDeleteProfile)
	r.Get("/v1/profiles/{name}/export", s.handleExportProfile)
	r.Post("/v1/profiles/import", s.handleImportProfile)

	r.Get("/v1/runs", s.handleListRuns)
	r.Get("/v1/runs/{id}", s.handleGetRun)
	r.Get("/v1/runs/{id}/report", s.handleRunReport)
	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

// handlePrice computes the quote for a profile without calling out to the
// completion service.
func (s *Server) handlePrice(w http.ResponseWriter, r *http.Request) {
	var p profile.PricingProfile
	if err := decodeBody(r, &p); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	price, costs, rec, err := feedback.Quote(p)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":             true,
		"price":          price,
		"costs":          costs,
		"recommendation": rec,
	})
}

// handleSimulate runs one generate action. Validation problems come back
// as 400 before anything is computed or called; a run that reached the
// completion service and failed comes back as 502 with the run attached
// so the client can show the raw response.
func (s *Server) handleSimulate(w http.ResponseWriter, r *http.Request) {
	var p profile.PricingProfile
	if err := decodeBody(r, &p); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	run, err := s.simulator.Simulate(r.Context(), p)
	if err != nil {
		var ve *feedback.ValidationError
		if errors.As(err, &ve) {
			writeError(w, http.StatusBadRequest, ve.Msg)
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if run.Status == profile.RunFailed {
		writeJSON(w, http.StatusBadGateway, map[string]any{"ok": false, "run": run})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "run": run})
}

func (s *Server) handleListProfiles(w http.ResponseWriter, r *http.Request) {
	profiles, err := s.store.ListProfiles()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "profiles": profiles})
}

func (s *Server) handleSaveProfile(w http.ResponseWriter, r *http.Request) {
	var p profile.PricingProfile
	if err := decodeBody(r, &p); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.store.SaveProfile(p); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "name": p.Name})
}

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	p, ok, err := s.store.GetProfile(name)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Sprintf("profile %q not found", name))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "profile": p})
}

func (s *Server) handleDeleteProfile(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteProfile(chi.URLParam(r, "name")); err != nil {
		if errors.Is(err, profile.ErrNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

// handleExportProfile downloads the profile as a standalone JSON
// document that can be re-imported later or on another machine.
func (s *Server) handleExportProfile(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	p, ok, err := s.store.GetProfile(name)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Sprintf("profile %q not found", name))
		return
	}
	blob, err := p.ExportJSON()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", safeFilename(name)+".json"))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(blob)
}

func (s *Server) handleImportProfile(w http.ResponseWriter, r *http.Request) {
	blob, err := readBody(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	p, err := profile.ImportJSON(blob)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.store.SaveProfile(p); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "profile": p})
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	runs, err := s.store.ListRuns()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "runs": runs})
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	run, ok, err := s.fetchRun(w, r)
	if err != nil || !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "run": run})
}

func (s *Server) handleRunReport(w http.ResponseWriter, r *http.Request) {
	run, ok, err := s.fetchRun(w, r)
	if err != nil || !ok {
		return
	}
	md := report.BuildMarkdown(run)

	switch format := r.URL.Query().Get("format"); format {
	case "", "md":
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
		_, _ = w.Write([]byte(md))
	case "html":
		doc, err := report.RenderHTML(md)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(doc))
	case "pdf":
		if s.pdf == nil {
			writeError(w, http.StatusNotImplemented, "pdf rendering not configured")
			return
		}
		pdf, err := s.pdf.Render(r.Context(), md)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", safeFilename(run.ProfileName)+".pdf"))
		_, _ = w.Write(pdf)
	default:
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown format %q", format))
	}
}

// fetchRun resolves {id}, writing the error response itself. The bool is
// false when the response is already written.
func (s *Server) fetchRun(w http.ResponseWriter, r *http.Request) (profile.Run, bool, error) {
	id := chi.URLParam(r, "id")
	run, ok, err := s.store.GetRun(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return profile.Run{}, false, err
	}
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Sprintf("run %q not found", id))
		return profile.Run{}, false, nil
	}
	return run, true, nil
}
