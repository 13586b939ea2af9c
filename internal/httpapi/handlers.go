package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"attendance-bot/internal/upstream"
	"attendance-bot/pkg/attendance"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// attendanceProxy отдает отчет API посещаемости как есть
func (s *Server) attendanceProxy(w http.ResponseWriter, r *http.Request) {
	token := sessionToken(r)
	if token == "" {
		s.writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "No session token found"})
		return
	}

	report, err := s.attendanceService.Report(r.Context(), token)
	if err != nil {
		s.writeUpstreamError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, report)
}

// summary отдает дерево год/месяц/день
func (s *Server) summary(w http.ResponseWriter, r *http.Request) {
	token := sessionToken(r)
	if token == "" {
		s.writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "No session token found"})
		return
	}

	summary, err := s.attendanceService.Summary(r.Context(), token)
	if err != nil {
		s.writeUpstreamError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, summary)
}

// dashboard - текстовый обзор по месяцам; доступен только с cookie сессии
func (s *Server) dashboard(w http.ResponseWriter, r *http.Request) {
	summary, err := s.attendanceService.Summary(r.Context(), sessionToken(r))
	if err != nil {
		s.writeUpstreamError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)

	if summary.Login != "" {
		fmt.Fprintf(w, "Attendance of %s\n\n", summary.Login)
	}
	if summary.IsEmpty() {
		fmt.Fprintln(w, "No attendance data.")
		return
	}

	goals := s.attendanceService.Goals()
	rows := make([][]string, 0)
	for _, year := range summary.Years {
		for _, point := range attendance.YearChartData(year) {
			month := year.FindMonth(point.MonthKey)
			rows = append(rows, []string{
				point.Month,
				attendance.FormatDuration(point.Hours),
				attendance.FormatDuration(point.RawHours),
				fmt.Sprintf("%.0f%%", goals.ForMonth(month).Percent),
			})
		}
	}

	table := tablewriter.NewWriter(w)
	table.Header([]string{"Month", "Merged", "Raw", "Goal"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})
	if err := table.Bulk(rows); err != nil {
		s.logger.WithError(err).Error("Failed to fill dashboard table")
		return
	}
	if err := table.Render(); err != nil {
		s.logger.WithError(err).Error("Failed to render dashboard table")
	}
}

func (s *Server) landing(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "Campus attendance tracker.")
	fmt.Fprintf(w, "Set the %s cookie to your dashboard session and open /dashboard.\n", SessionCookie)
}

// writeUpstreamError: отклоненный токен - 401, остальные ошибки API - 502
func (s *Server) writeUpstreamError(w http.ResponseWriter, err error) {
	var malformed *attendance.MalformedEntryError

	switch {
	case errors.Is(err, upstream.ErrUnauthorized), errors.Is(err, upstream.ErrNoToken):
		s.writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "Session token rejected"})
	case errors.As(err, &malformed):
		s.logger.WithError(err).Warn("Malformed attendance report")
		s.writeJSON(w, http.StatusBadGateway, errorResponse{Error: malformed.Error()})
	default:
		s.logger.WithError(err).Error("Failed to fetch attendance")
		s.writeJSON(w, http.StatusBadGateway, errorResponse{Error: "Failed to fetch attendance"})
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.WithError(err).Error("Failed to encode response")
	}
}
