package chart

import (
	"context"
	"strings"

	"birthchart-server/internal/shared/errors"
)

func (s *Service) savedStore() (SavedChartStore, error) {
	if s.store == nil {
		return nil, errors.Unavailable("saved charts require a database")
	}
	return s.store, nil
}

// Save validates the request by computing it once, then stores the inputs.
func (s *Service) Save(ctx context.Context, userID int, label string, req Request) (*SavedChart, *Result, error) {
	store, err := s.savedStore()
	if err != nil {
		return nil, nil, err
	}

	label = strings.TrimSpace(label)
	if label == "" {
		return nil, nil, errors.Validation("label is required")
	}

	result, err := s.Compute(ctx, req)
	if err != nil {
		return nil, nil, err
	}

	sc := &SavedChart{
		UserID:      userID,
		Label:       label,
		Moment:      req.Moment,
		City:        req.City,
		HouseSystem: result.Chart.HouseSystem,
	}
	if err := store.Create(ctx, sc); err != nil {
		return nil, nil, errors.WrapInternal("failed to save chart", err)
	}

	return sc, result, nil
}

func (s *Service) ListSaved(ctx context.Context, userID int) ([]SavedChart, error) {
	store, err := s.savedStore()
	if err != nil {
		return nil, err
	}
	charts, err := store.ListByUser(ctx, userID)
	if err != nil {
		return nil, errors.WrapInternal("failed to list saved charts", err)
	}
	return charts, nil
}

// GetSaved loads a stored chart and recomputes it.
func (s *Service) GetSaved(ctx context.Context, userID, id int) (*SavedChart, *Result, error) {
	store, err := s.savedStore()
	if err != nil {
		return nil, nil, err
	}

	sc, err := store.Get(ctx, userID, id)
	if err != nil {
		if errors.GetType(err) == errors.ErrorTypeNotFound {
			return nil, nil, err
		}
		return nil, nil, errors.WrapInternal("failed to load saved chart", err)
	}

	system := sc.HouseSystem
	result, err := s.Compute(ctx, Request{Moment: sc.Moment, City: sc.City, HouseSystem: &system})
	if err != nil {
		return nil, nil, err
	}

	return sc, result, nil
}

func (s *Service) DeleteSaved(ctx context.Context, userID, id int) error {
	store, err := s.savedStore()
	if err != nil {
		return err
	}
	if err := store.Delete(ctx, userID, id); err != nil {
		if errors.GetType(err) == errors.ErrorTypeNotFound {
			return err
		}
		return errors.WrapInternal("failed to delete saved chart", err)
	}
	return nil
}
