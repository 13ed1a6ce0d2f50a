package http

import (
	"bytes"
	"context"
	"fmt"
	"net/http"

	"golang.org/x/sync/errgroup"

	"finweb/internal/core"
	"finweb/internal/export"
	"finweb/internal/log"
)

// loadMonth fetches a month's expenses and the category names used to label them.
func (s *Server) loadMonth(ctx context.Context, month core.Month) ([]core.Expense, map[int64]string, error) {
	var (
		expenses []core.Expense
		cats     []core.Category
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		expenses, err = s.gateway.ListExpenses(gctx, month)
		return err
	})
	g.Go(func() error {
		var err error
		cats, err = s.gateway.ListCategories(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return expenses, core.CategoryNames(cats), nil
}

// handleExportCSV downloads the month as CSV.
func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	if fail := RequireGET(r); fail != nil {
		fail.Write(w)
		return
	}

	month := ParseMonthParam(r.URL.Query(), s.now())
	expenses, names, err := s.loadMonth(r.Context(), month)
	if err != nil {
		s.logBackendError(r.Context(), log.ComponentExport, "Failed to load expenses for export", err)
		http.Error(w, MsgLoadExpensesFailed, http.StatusBadGateway)
		return
	}

	var buf bytes.Buffer
	if err := export.WriteCSV(&buf, expenses, names); err != nil {
		log.FromContext(r.Context()).WithComponent(log.ComponentExport).ErrorContext(r.Context(), "CSV export failed",
			log.FieldError, err.Error())
		http.Error(w, "Export failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, export.CSVFilename(month)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// handleExportSheets appends the month to the configured Google Sheet.
func (s *Server) handleExportSheets(w http.ResponseWriter, r *http.Request) {
	if fail := RequirePOST(r); fail != nil {
		fail.Write(w)
		return
	}
	if s.exporter == nil {
		s.render(w, r, http.StatusNotFound, "status_message", statusMessage{Error: "Google Sheets export is not configured"})
		return
	}

	month := ParseMonthParam(r.URL.Query(), s.now())
	expenses, names, err := s.loadMonth(r.Context(), month)
	if err != nil {
		s.logBackendError(r.Context(), log.ComponentExport, "Failed to load expenses for export", err)
		s.render(w, r, http.StatusBadGateway, "status_message", statusMessage{Error: MsgLoadExpensesFailed})
		return
	}

	n, err := s.exporter.Export(r.Context(), month, expenses, names)
	if err != nil {
		log.FromContext(r.Context()).WithComponent(log.ComponentExport).ErrorContext(r.Context(), "Sheets export failed",
			log.FieldError, err.Error(), log.FieldMonth, month.String())
		s.render(w, r, http.StatusBadGateway, "status_message", statusMessage{Error: "Export to Google Sheets failed"})
		return
	}

	msg := fmt.Sprintf("Exported %d expense(s) for %s to Google Sheets", n, month.DisplayName())
	s.write(w, r, NewHTMXResponse().
		TriggerSuccessNotification(msg).
		Render(s.templates, "status_message", statusMessage{Success: msg}))
}
