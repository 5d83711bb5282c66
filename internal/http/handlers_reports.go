package http

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"glance/internal/core"
	applog "glance/internal/log"
)

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	ref, err := ParseRefDate(r.URL.Query(), s.now())
	if err != nil {
		s.fail(w, r, applog.OpRead, err)
		return
	}

	d, err := s.reports.Dashboard(r.Context(), ref)
	if err != nil {
		s.fail(w, r, applog.OpRead, err)
		return
	}
	NewResponse().JSON(d).Write(w)
}

func (s *Server) handleCalendar(w http.ResponseWriter, r *http.Request) {
	params := ParseMonthParams(r.URL.Query(), s.now())

	c, err := s.reports.Calendar(r.Context(), params.Year, params.Month)
	if err != nil {
		s.fail(w, r, applog.OpRead, err)
		return
	}
	NewResponse().JSON(c).Write(w)
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	ref, err := ParseRefDate(q, s.now())
	if err != nil {
		s.fail(w, r, applog.OpRead, err)
		return
	}
	window, err := ParseWindowParams(q, s.trendMonths)
	if err != nil {
		s.fail(w, r, applog.OpRead, err)
		return
	}

	rep, err := s.reports.Report(r.Context(), ref, window)
	if err != nil {
		s.fail(w, r, applog.OpRead, err)
		return
	}
	NewResponse().JSON(rep).Write(w)
}

func (s *Server) handleTrend(w http.ResponseWriter, r *http.Request) {
	year := s.now().Year()
	if v := strings.TrimSpace(r.URL.Query().Get("year")); v != "" {
		y, err := strconv.Atoi(v)
		if err != nil || y < 1 || y > 9999 {
			s.fail(w, r, applog.OpRead, fmt.Errorf("%w: invalid year %q", core.ErrInvalidArgument, v))
			return
		}
		year = y
	}

	trend, err := s.reports.Trend(r.Context(), year)
	if err != nil {
		s.fail(w, r, applog.OpRead, err)
		return
	}
	NewResponse().JSON(trend).Write(w)
}
