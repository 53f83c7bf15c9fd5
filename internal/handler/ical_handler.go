package handler

import (
	"net/http"
	"time"

	"counsel-scheduling-api/internal/ical"
	"counsel-scheduling-api/internal/middleware"
	"counsel-scheduling-api/internal/model"
	"counsel-scheduling-api/internal/timeslot"
)

// serveICS renders the caller's calendar day: their team meets plus,
// for counselors, their follow-ups.
func (h *Handler) serveICS(w http.ResponseWriter, r *http.Request, date time.Time) {
	uid := middleware.UserID(r.Context())
	from, to := timeslot.DayBounds(date)

	meets, err := h.store.TeamMeetsForUserOn(r.Context(), uid, from, to)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	var followUps []model.FollowUp
	leadNames := make(map[string]string)
	if middleware.Role(r.Context()) == string(model.RoleCounselor) {
		c, err := h.store.CounselorByUser(r.Context(), uid)
		if err == nil {
			followUps, err = h.store.FollowUpsForCounselorBetween(r.Context(), c.ID, from, to)
			if err != nil {
				writeDomainError(w, err)
				return
			}
			for i := range followUps {
				id := followUps[i].LeadID
				if _, ok := leadNames[id]; ok {
					continue
				}
				if l, lerr := h.store.LeadByID(r.Context(), id); lerr == nil {
					leadNames[id] = l.Name
				}
			}
		}
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="schedule.ics"`)
	w.Write([]byte(ical.Feed(followUps, meets, leadNames)))
}
