package web

import (
	"context"
	"net/http"
	"time"

	"github.com/robfig/cron/v3"

	"recurcal/internal/caldate"
	"recurcal/internal/grid"
	appLog "recurcal/internal/log"
)

type calendarResponse struct {
	Year      int              `json:"year"`
	Month     int              `json:"month"`
	Title     string           `json:"title"`
	WeekStart string           `json:"week_start"`
	Today     caldate.Date     `json:"today"`
	Weeks     [][]caldate.Date `json:"weeks"`
}

type monthCache struct {
	resp      calendarResponse
	updatedAt time.Time
}

func (s *Server) buildCalendar(year int, month time.Month, weekStart time.Weekday) calendarResponse {
	dates := grid.Month(year, month, weekStart)
	first := caldate.New(year, month, 1)
	return calendarResponse{
		Year:      first.Year,
		Month:     int(first.Month),
		Title:     first.Time().Format("January 2006"),
		WeekStart: weekStart.String(),
		Today:     s.today(),
		Weeks:     grid.Weeks(dates),
	}
}

// refreshMonth rebuilds the cached grid for the current month.
func (s *Server) refreshMonth() calendarResponse {
	today := s.today()
	resp := s.buildCalendar(today.Year, today.Month, grid.ParseWeekStart(s.cfg.WeekStart))

	s.monthMu.Lock()
	s.monthCache = &monthCache{resp: resp, updatedAt: s.now()}
	s.monthMu.Unlock()

	appLog.Debug("calendar cache refreshed", "year", resp.Year, "month", resp.Month)
	return resp
}

// currentMonth returns the cached grid, rebuilding it if it is missing or
// belongs to another month or day.
func (s *Server) currentMonth() calendarResponse {
	today := s.today()

	s.monthMu.RLock()
	mc := s.monthCache
	s.monthMu.RUnlock()
	if mc != nil && mc.resp.Today.Equal(today) {
		return mc.resp
	}
	return s.refreshMonth()
}

// handleCalendar serves a month grid. With no query parameters it returns
// the cached current month; year and month (1-12) select another one and
// week_start (sunday|monday) overrides the configured first column.
func (s *Server) handleCalendar(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}

	q := r.URL.Query()
	if q.Get("year") == "" && q.Get("month") == "" && q.Get("week_start") == "" {
		writeJSON(w, http.StatusOK, s.currentMonth())
		return
	}

	today := s.today()
	year, err := queryInt(q.Get("year"), today.Year)
	if err != nil {
		writeError(w, http.StatusBadRequest, "year must be a number")
		return
	}
	month, err := queryInt(q.Get("month"), int(today.Month))
	if err != nil {
		writeError(w, http.StatusBadRequest, "month must be a number")
		return
	}
	if month < 1 || month > 12 {
		writeError(w, http.StatusBadRequest, "month must be between 1 and 12")
		return
	}
	if year < 1 || year > 9999 {
		writeError(w, http.StatusBadRequest, "year must be between 1 and 9999")
		return
	}

	weekStart := s.cfg.WeekStart
	if ws := q.Get("week_start"); ws != "" {
		if ws != "sunday" && ws != "monday" {
			writeError(w, http.StatusBadRequest, "week_start must be sunday or monday")
			return
		}
		weekStart = ws
	}

	writeJSON(w, http.StatusOK, s.buildCalendar(year, time.Month(month), grid.ParseWeekStart(weekStart)))
}

// StartRefresh rebuilds the month cache now and then on cfg.RefreshCron
// until ctx is canceled.
func (s *Server) StartRefresh(ctx context.Context) error {
	c := cron.New()
	if _, err := c.AddFunc(s.cfg.RefreshCron, func() { s.refreshMonth() }); err != nil {
		return err
	}

	s.refreshMonth()
	c.Start()
	appLog.Info("calendar refresh scheduled", "refresh", s.cfg.RefreshCron)

	go func() {
		<-ctx.Done()
		<-c.Stop().Done()
		appLog.Debug("calendar refresh stopped")
	}()
	return nil
}
