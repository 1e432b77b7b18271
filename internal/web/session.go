package web

import (
	"errors"
	"net/http"
	"time"

	"recurcal/internal/caldate"
	"recurcal/internal/grid"
	appLog "recurcal/internal/log"
	"recurcal/internal/picker"
	"recurcal/internal/recurrence"
)

// sessionOp is one draft edit posted to /api/picker/session. Only the fields
// the op needs are read.
type sessionOp struct {
	Op          string        `json:"op"`
	Date        *caldate.Date `json:"date,omitempty"`
	Type        string        `json:"type,omitempty"`
	Interval    int           `json:"interval,omitempty"`
	Weekday     *int          `json:"weekday,omitempty"`
	MonthlyType string        `json:"monthly_type,omitempty"`
	Delta       int           `json:"delta,omitempty"`
}

type cellDTO struct {
	Date       caldate.Date `json:"date"`
	OtherMonth bool         `json:"other_month"`
	Start      bool         `json:"start"`
	Recurring  bool         `json:"recurring"`
}

type sessionResponse struct {
	Start       caldate.Date        `json:"start"`
	Pattern     patternDTO          `json:"pattern"`
	Description string              `json:"description"`
	HasEndDate  bool                `json:"has_end_date"`
	Preview     []caldate.Date      `json:"preview"`
	Title       string              `json:"title"`
	Cells       []cellDTO           `json:"cells"`
	Picker      pickerStateResponse `json:"picker"`
}

func (s *Server) newSessionResponse() sessionResponse {
	view := s.session.CalendarView()
	cells := make([]cellDTO, 0, len(view))
	for _, c := range view {
		cells = append(cells, cellDTO{Date: c.Date, OtherMonth: c.OtherMonth, Start: c.Start, Recurring: c.Recurring})
	}
	p := s.session.Pattern()
	return sessionResponse{
		Start:       s.session.Start(),
		Pattern:     newPatternDTO(p),
		Description: recurrence.Describe(p),
		HasEndDate:  s.session.HasEndDate(),
		Preview:     s.session.Preview(),
		Title:       s.session.Title(),
		Cells:       cells,
		Picker:      newPickerStateResponse(s.store.State()),
	}
}

// draft returns the shared draft session, creating it from the store on first
// use. Callers hold sessionMu.
func (s *Server) draft() *picker.Session {
	if s.session == nil {
		s.session = picker.NewSession(s.store)
		s.session.WeekStart = grid.ParseWeekStart(s.cfg.WeekStart)
		s.session.CommitCount = s.cfg.CommitCount
	}
	return s.session
}

var (
	errNotVisible = errors.New("date is not in the visible month")
	errBadWeekday = errors.New("weekday must be between 0 and 6")
)

// applyOp runs op against the draft. Callers hold sessionMu.
func (s *Server) applyOp(op sessionOp) error {
	sess := s.draft()

	switch op.Op {
	case "open":
		sess.Open(s.store)
	case "set_start", "select", "set_end_date":
		if op.Date == nil {
			return errMissingDate
		}
		switch op.Op {
		case "set_start":
			sess.SetStart(*op.Date)
		case "set_end_date":
			sess.SetEndDate(*op.Date)
		default:
			if !sess.Select(*op.Date) {
				return errNotVisible
			}
		}
	case "change_type":
		t := recurrence.Type(op.Type)
		if !t.Known() {
			return errors.New("unknown type " + op.Type)
		}
		sess.ChangeType(t)
	case "set_interval":
		sess.SetInterval(op.Interval)
	case "toggle_weekday":
		if op.Weekday == nil || *op.Weekday < 0 || *op.Weekday > 6 {
			return errBadWeekday
		}
		sess.ToggleWeekday(time.Weekday(*op.Weekday))
	case "toggle_end_date":
		sess.ToggleEndDate()
	case "set_monthly_type":
		mt := recurrence.MonthlyType(op.MonthlyType)
		if mt != recurrence.MonthlyByDate && mt != recurrence.MonthlyByWeekday {
			return errors.New("monthly_type must be date or weekday")
		}
		sess.SetMonthlyType(mt)
	case "navigate":
		sess.NavigateMonth(op.Delta)
	case "apply":
		sel, err := sess.Apply(s.store)
		if err != nil {
			return err
		}
		appLog.Info("picker applied", "start", sel.Start, "description", sel.Description(), "count", sel.Len())
	case "cancel":
		sess.Cancel(s.store)
	case "reset":
		sess.Reset(s.store, s.today())
	default:
		return errors.New("unknown op " + op.Op)
	}
	return nil
}

// handlePickerSession serves the shared draft. GET returns the draft view and
// POST applies one op and returns the updated view.
func (s *Server) handlePickerSession(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.sessionMu.Lock()
		s.draft()
		resp := s.newSessionResponse()
		s.sessionMu.Unlock()

		writeJSON(w, http.StatusOK, resp)
	case http.MethodPost:
		var op sessionOp
		if err := decodeJSON(w, r, &op); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		s.sessionMu.Lock()
		err := s.applyOp(op)
		resp := s.newSessionResponse()
		s.sessionMu.Unlock()

		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		appLog.Debug("picker session", "op", op.Op, "start", resp.Start, "type", resp.Pattern.Type)
		writeJSON(w, http.StatusOK, resp)
	default:
		w.Header().Set("Allow", http.MethodGet+", "+http.MethodPost)
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}
