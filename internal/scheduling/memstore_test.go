package scheduling_test

import (
	"context"
	"sort"
	"sync"
	"time"

	"counsel-scheduling-api/internal/model"
	"counsel-scheduling-api/internal/scheduling"
)

// memStore is an in-memory Store. Each method locks only for its own
// duration, like a real database under read committed: it provides no
// serialization across a check-then-insert sequence, so the service's
// own locking is what the concurrency tests exercise.
type memStore struct {
	mu         sync.Mutex
	users      map[string]*model.User
	counselors map[string]*model.Counselor
	leads      map[string]*model.Lead
	followUps  map[string]*model.FollowUp
	teamMeets  map[string]*model.TeamMeet
}

func newMemStore() *memStore {
	return &memStore{
		users:      make(map[string]*model.User),
		counselors: make(map[string]*model.Counselor),
		leads:      make(map[string]*model.Lead),
		followUps:  make(map[string]*model.FollowUp),
		teamMeets:  make(map[string]*model.TeamMeet),
	}
}

func (m *memStore) UserByID(_ context.Context, id string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, scheduling.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memStore) CounselorByID(_ context.Context, id string) (*model.Counselor, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.counselors[id]
	if !ok {
		return nil, scheduling.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (m *memStore) CounselorByUser(_ context.Context, userID string) (*model.Counselor, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.counselors {
		if c.UserID == userID {
			cp := *c
			return &cp, nil
		}
	}
	return nil, scheduling.ErrNotFound
}

func (m *memStore) LeadByID(_ context.Context, id string) (*model.Lead, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.leads[id]
	if !ok {
		return nil, scheduling.ErrNotFound
	}
	cp := *l
	return &cp, nil
}

func (m *memStore) CreateFollowUp(_ context.Context, fu *model.FollowUp) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *fu
	m.followUps[fu.ID] = &cp
	return nil
}

func (m *memStore) FollowUpByID(_ context.Context, id string) (*model.FollowUp, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	fu, ok := m.followUps[id]
	if !ok {
		return nil, scheduling.ErrNotFound
	}
	cp := *fu
	return &cp, nil
}

func (m *memStore) FollowUpsByLead(_ context.Context, leadID string) ([]model.FollowUp, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.FollowUp
	for _, fu := range m.followUps {
		if fu.LeadID == leadID {
			out = append(out, *fu)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Sequence < out[j].Sequence })
	return out, nil
}

func (m *memStore) CountFollowUps(_ context.Context, leadID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, fu := range m.followUps {
		if fu.LeadID == leadID {
			n++
		}
	}
	return n, nil
}

func (m *memStore) FollowUpsForCounselorBetween(_ context.Context, counselorID string, from, to time.Time) ([]model.FollowUp, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.FollowUp
	for _, fu := range m.followUps {
		if fu.CounselorID == counselorID && !fu.Date.Before(from) && !fu.Date.After(to) {
			out = append(out, *fu)
		}
	}
	return out, nil
}

func (m *memStore) SaveFollowUpUpdate(_ context.Context, fu *model.FollowUp, next *model.FollowUp, stage *model.LeadStage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *fu
	m.followUps[fu.ID] = &cp
	if next != nil {
		ncp := *next
		m.followUps[next.ID] = &ncp
	}
	if stage != nil {
		if l, ok := m.leads[fu.LeadID]; ok {
			l.Stage = *stage
		}
	}
	return nil
}

func (m *memStore) CreateTeamMeet(_ context.Context, tm *model.TeamMeet) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *tm
	m.teamMeets[tm.ID] = &cp
	return nil
}

func (m *memStore) TeamMeetByID(_ context.Context, id string) (*model.TeamMeet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	tm, ok := m.teamMeets[id]
	if !ok {
		return nil, scheduling.ErrNotFound
	}
	cp := *tm
	return &cp, nil
}

func (m *memStore) UpdateTeamMeet(_ context.Context, tm *model.TeamMeet) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *tm
	m.teamMeets[tm.ID] = &cp
	return nil
}

func (m *memStore) TeamMeetsForUserBetween(_ context.Context, userID string, from, to time.Time, statuses []model.TeamMeetStatus) ([]model.TeamMeet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	allowed := make(map[model.TeamMeetStatus]bool, len(statuses))
	for _, st := range statuses {
		allowed[st] = true
	}
	var out []model.TeamMeet
	for _, tm := range m.teamMeets {
		if tm.RequesterID != userID && tm.RecipientID != userID {
			continue
		}
		if tm.Date.Before(from) || tm.Date.After(to) {
			continue
		}
		if !allowed[tm.Status] {
			continue
		}
		out = append(out, *tm)
	}
	return out, nil
}
