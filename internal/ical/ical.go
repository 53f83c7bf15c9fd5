// Package ical renders one person's appointments as an ICS feed.
// Export only; nothing is read back from external calendars.
package ical

import (
	"time"

	ics "github.com/arran4/golang-ical"

	"counsel-scheduling-api/internal/model"
	"counsel-scheduling-api/internal/timeslot"
)

// Feed serializes the given follow-ups and team meets into a calendar.
// Lead names for follow-up summaries come from leadNames keyed by lead
// id; missing entries fall back to the id.
func Feed(followUps []model.FollowUp, meets []model.TeamMeet, leadNames map[string]string) string {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//counsel-scheduling-api//EN")

	for i := range followUps {
		fu := &followUps[i]
		ev := cal.AddEvent("followup-" + fu.ID)
		name := leadNames[fu.LeadID]
		if name == "" {
			name = fu.LeadID
		}
		ev.SetSummary("Follow-up with " + name)
		if fu.Notes != "" {
			ev.SetDescription(fu.Notes)
		}
		setSlot(ev, fu.Date, fu.StartTime, fu.Duration)
		if fu.MeetingLink != "" {
			ev.SetLocation(fu.MeetingLink)
		}
	}

	for i := range meets {
		m := &meets[i]
		if m.Status == model.TeamMeetRejected || m.Status == model.TeamMeetCancelled {
			continue // freed slots stay off the feed
		}
		ev := cal.AddEvent("teammeet-" + m.ID)
		ev.SetSummary(m.Subject)
		if m.Description != "" {
			ev.SetDescription(m.Description)
		}
		setSlot(ev, m.Date, m.StartTime, m.Duration)
		if m.MeetingLink != "" {
			ev.SetLocation(m.MeetingLink)
		}
	}

	return cal.Serialize()
}

func setSlot(ev *ics.VEvent, date time.Time, startTime string, duration int) {
	start := timeslot.StartAt(date, startTime)
	ev.SetStartAt(start)
	ev.SetEndAt(start.Add(time.Duration(duration) * time.Minute))
	ev.SetDtStampTime(time.Now())
}
