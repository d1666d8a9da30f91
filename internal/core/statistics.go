package core

import (
	"context"

	"orchidlab/internal/reports"
)

// Dataset snapshots every record the reports are computed from.
func (s *Service) Dataset(ctx context.Context) (reports.Dataset, error) {
	var ds reports.Dataset
	err := s.store.View(ctx, func(view TransactionView) error {
		ds = reports.Dataset{
			Plants:       view.ListPlants(),
			Users:        view.ListUsers(),
			Pollinations: view.ListPollinations(),
			SeedSources:  view.ListSeedSources(),
			Germinations: view.ListGerminations(),
		}
		return nil
	})
	return ds, err
}

// PollinationStatistics aggregates every stored pollination.
func (s *Service) PollinationStatistics(ctx context.Context) (reports.PollinationReport, error) {
	ds, err := s.Dataset(ctx)
	if err != nil {
		return reports.PollinationReport{}, err
	}
	return reports.BuildPollinationReport(ds), nil
}

// GerminationStatistics aggregates every stored germination batch.
func (s *Service) GerminationStatistics(ctx context.Context) (reports.GerminationReport, error) {
	ds, err := s.Dataset(ctx)
	if err != nil {
		return reports.GerminationReport{}, err
	}
	return reports.BuildGerminationReport(ds), nil
}
