package service

import (
	"context"
	"testing"

	"github.com/rs/zerolog"

	"github.com/Zadjehi/satisf-exercice/internal/models"
)

func TestStatsDashboard(t *testing.T) {
	stats := &fakeStatsStore{overall: models.SatisfactionStats{Total: 10, Satisfied: 7, Dissatisfied: 3, SatisfactionRate: 70}}
	svc := NewStatsService(stats, nil, zerolog.Nop())

	dash, err := svc.Dashboard(context.Background())
	if err != nil {
		t.Fatalf("dashboard: %v", err)
	}
	if dash.Overall.Total != 10 {
		t.Errorf("overall total = %d", dash.Overall.Total)
	}
	if len(dash.Departments) != 1 || len(dash.Reasons) != 1 || len(dash.Monthly) != 1 {
		t.Errorf("dashboard sections = %d/%d/%d", len(dash.Departments), len(dash.Reasons), len(dash.Monthly))
	}
	if dash.GeneratedAt.IsZero() {
		t.Error("generatedAt not set")
	}
}

func TestStatsLiveWithoutCache(t *testing.T) {
	stats := &fakeStatsStore{overall: models.SatisfactionStats{Total: 4, Satisfied: 2, Dissatisfied: 2, SatisfactionRate: 50}}
	svc := NewStatsService(stats, nil, zerolog.Nop())

	live, err := svc.Live(context.Background())
	if err != nil {
		t.Fatalf("live: %v", err)
	}
	if live.Total != 4 {
		t.Errorf("total = %d", live.Total)
	}
}

func TestStatsMonthlyClampsRange(t *testing.T) {
	stats := &fakeStatsStore{}
	svc := NewStatsService(stats, nil, zerolog.Nop())

	for _, months := range []int{-1, 0, 100} {
		if _, err := svc.Monthly(context.Background(), months); err != nil {
			t.Errorf("monthly(%d): %v", months, err)
		}
	}
}
