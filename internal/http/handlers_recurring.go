package http

import (
	"errors"
	"net/http"

	"golang.org/x/sync/errgroup"

	"finweb/internal/api"
	"finweb/internal/core"
	"finweb/internal/log"
	"finweb/internal/services"
)

const (
	// MsgLoadRecurringFailed is shown with a Retry control when the list fetch fails.
	MsgLoadRecurringFailed = "Failed to load recurring expenses"

	// BannerDismissMs is how long generation banners stay visible.
	BannerDismissMs = 5000
)

type recurringPage struct {
	User string
}

type recurringRow struct {
	Template core.RecurringTemplate
	Category string
	Status   core.GenerationStatus
}

type recurringList struct {
	Rows  []recurringRow
	Busy  string
	Error string
}

// Disabled reports whether generate controls are disabled: any generation in
// flight for the session disables all of them.
func (l recurringList) Disabled() bool { return l.Busy != "" }

// BulkDisabled also disables the bulk control when there is nothing to generate.
func (l recurringList) BulkDisabled() bool { return l.Disabled() || len(l.Rows) == 0 }

// BusyAll reports whether the bulk generation is the one in flight.
func (l recurringList) BusyAll() bool { return l.Busy == services.GenerateAllID }

type generationBanner struct {
	Success   bool
	Message   string
	DismissMs int
}

func (s *Server) handleRecurringPage(w http.ResponseWriter, r *http.Request) {
	if fail := RequireGET(r); fail != nil {
		fail.Write(w)
		return
	}
	s.render(w, r, http.StatusOK, "recurring_page", recurringPage{User: sessionFrom(r).User.Email})
}

func (s *Server) handleRecurringList(w http.ResponseWriter, r *http.Request) {
	if fail := RequireGET(r); fail != nil {
		fail.Write(w)
		return
	}

	var (
		templates []core.RecurringTemplate
		cats      []core.Category
	)
	g, gctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		var err error
		templates, err = s.gateway.ListRecurring(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		if cats, err = s.gateway.ListCategories(gctx); err != nil {
			s.logBackendError(r.Context(), log.ComponentCategory, "Failed to load category names", err)
		}
		return nil
	})

	data := recurringList{Busy: s.expenses.Guard().Busy(sessionFrom(r).ID)}
	if err := g.Wait(); err != nil {
		s.logBackendError(r.Context(), log.ComponentRecurring, "Failed to load recurring expenses", err)
		data.Error = api.UserMessage(err, MsgLoadRecurringFailed)
		s.render(w, r, http.StatusOK, "recurring_list", data)
		return
	}

	names := core.CategoryNames(cats)
	now := s.now()
	for _, t := range templates {
		name, ok := names[t.CategoryID]
		if !ok {
			name = "Unknown"
		}
		data.Rows = append(data.Rows, recurringRow{
			Template: t,
			Category: name,
			Status:   core.ClassifyGeneration(t.LastGeneratedDate, now),
		})
	}
	s.render(w, r, http.StatusOK, "recurring_list", data)
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	s.generate(w, r, r.PathValue("id"))
}

func (s *Server) handleGenerateAll(w http.ResponseWriter, r *http.Request) {
	s.generate(w, r, services.GenerateAllID)
}

// generate triggers backend generation and answers with a banner. The list is
// refetched after every call that reached the backend.
func (s *Server) generate(w http.ResponseWriter, r *http.Request, id string) {
	if fail := RequirePOST(r); fail != nil {
		fail.Write(w)
		return
	}

	sess := sessionFrom(r)
	out, err := s.expenses.Generate(r.Context(), sess.ID, sess.User.Email, id)
	banner := generationBanner{Success: out.Success, Message: out.Message, DismissMs: BannerDismissMs}

	if errors.Is(err, services.ErrGenerationBusy) {
		s.render(w, r, http.StatusConflict, "generation_banner", banner)
		return
	}

	b := NewHTMXResponse().TriggerRecurringRefresh()
	if err != nil {
		s.logBackendError(r.Context(), log.ComponentRecurring, "Generation failed", err)
		b.Status(http.StatusBadGateway)
	} else if out.Success {
		s.appMetrics.generations.Add(1)
	}
	s.write(w, r, b.Render(s.templates, "generation_banner", banner))
}
