// Package roster loads month snapshots from the upstream API. There is no
// caching: every load re-fetches both aggregates in full, and either failure
// fails the whole load so the grid never renders from partial data.
package roster

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/girrex/roster-web/internal/girrex"
	"github.com/girrex/roster-web/internal/models"
)

type Store struct {
	Client girrex.Client
	Logger zerolog.Logger
}

func (s *Store) Load(ctx context.Context, centreID int64, year, month int) (models.MonthSnapshot, error) {
	var (
		wg           sync.WaitGroup
		planning     girrex.PlanningPayload
		positions    []models.DutyPosition
		planningErr  error
		positionsErr error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		planning, planningErr = s.Client.FetchPlanning(ctx, centreID, year, month)
	}()
	go func() {
		defer wg.Done()
		positions, positionsErr = s.Client.FetchPositions(ctx, centreID)
	}()
	wg.Wait()

	if planningErr != nil {
		s.Logger.Error().Err(planningErr).Int64("centre_id", centreID).Msg("planning fetch failed")
		return models.MonthSnapshot{}, planningErr
	}
	if positionsErr != nil {
		s.Logger.Error().Err(positionsErr).Int64("centre_id", centreID).Msg("positions fetch failed")
		return models.MonthSnapshot{}, positionsErr
	}

	return models.MonthSnapshot{
		CentreID:  centreID,
		Year:      year,
		Month:     month,
		Agents:    planning.Agents,
		Days:      planning.Days,
		Tours:     planning.Tours,
		Positions: positions,
	}, nil
}

// ReloadPositions refreshes only the position aggregate, for mutations that
// invalidate positions but not the roster.
func (s *Store) ReloadPositions(ctx context.Context, centreID int64) ([]models.DutyPosition, error) {
	positions, err := s.Client.FetchPositions(ctx, centreID)
	if err != nil {
		s.Logger.Error().Err(err).Int64("centre_id", centreID).Msg("positions reload failed")
		return nil, err
	}
	return positions, nil
}
