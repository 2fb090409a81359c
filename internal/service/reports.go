package service

import (
	"github.com/cissero/platform/internal/domain"
	"github.com/cissero/platform/internal/lifecycle"
	"github.com/cissero/platform/internal/repository"
)

// ReportService builds admin console reports from the in-memory store.
type ReportService struct {
	store  *repository.Store
	engine *lifecycle.Engine
}

// NewReportService creates a ReportService.
func NewReportService(store *repository.Store, engine *lifecycle.Engine) *ReportService {
	return &ReportService{store: store, engine: engine}
}

// Dashboard is the admin overview.
type Dashboard struct {
	EventsByStatus      map[domain.EventStatus]int      `json:"eventsByStatus"`
	TotalEvents         int                             `json:"totalEvents"`
	TotalUsers          int                             `json:"totalUsers"`
	PointsInCirculation int64                           `json:"pointsInCirculation"`
	PredictionsByStatus map[domain.PredictionStatus]int `json:"predictionsByStatus"`
	ActiveStake         int64                           `json:"activeStake"`
	TotalStaked         int64                           `json:"totalStaked"`
	JournalEntries      int                             `json:"journalEntries"`
	JournalCap          int                             `json:"journalCap"`
	OpenThreads         int                             `json:"openThreads"`
}

// Dashboard tallies events, users, points and predictions.
func (s *ReportService) Dashboard() Dashboard {
	d := Dashboard{
		EventsByStatus:      make(map[domain.EventStatus]int),
		PredictionsByStatus: make(map[domain.PredictionStatus]int),
	}
	for _, st := range domain.AllStatuses() {
		d.EventsByStatus[st] = 0
	}
	for st, n := range s.store.Events.CountByStatus() {
		d.EventsByStatus[st] = n
		d.TotalEvents += n
	}

	d.TotalUsers = len(s.store.Users.List())
	d.PointsInCirculation = s.store.Users.TotalBalance()

	for _, p := range s.store.Predictions.List() {
		d.PredictionsByStatus[p.Status]++
		d.TotalStaked += p.Amount
		if p.Status == domain.PredictionActive {
			d.ActiveStake += p.Amount
		}
	}

	d.JournalEntries, d.JournalCap = s.engine.JournalSize()
	d.OpenThreads = len(s.store.Messages.Threads())
	return d
}
