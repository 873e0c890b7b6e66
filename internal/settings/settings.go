// Package settings owns the single row of parish identity and contact details.
package settings

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/Oxyrus/parish/internal/apperr"
	"github.com/Oxyrus/parish/internal/storage"
)

// Defaults is the row written by EnsureDefaults when none exists yet.
func Defaults() storage.Settings {
	facebook := "https://www.facebook.com/rccgsignsandwonders.jonkoping"
	instagram := "https://instagram.com/rccgsaw"
	youtube := "https://youtube.com"

	return storage.Settings{
		ChurchName:   "RCCG Signs & Wonders",
		Address:      "Västra storgatan 12",
		City:         "Jönköping, Sweden",
		Phone:        "+46 72 767 7358, +46 73 978 1777",
		Email:        "rccgsignsandwondersjonkoping@yahoo.com",
		AboutUs:      "The Redeemed Christian Church of God (RCCG) Signs and Wonders Parish is a vibrant Christian community located in Jönköping, Sweden. We are part of the global RCCG family, a Pentecostal denomination with millions of members worldwide.",
		Vision:       "Our vision is to make heaven and take as many people with us. To have a member of RCCG in every family of all nations.",
		Mission:      "To make heaven. To take as many people with us. To have a member of RCCG in every family of all nations. To accomplish No. 1 above, holiness will be our lifestyle.",
		FacebookURL:  &facebook,
		InstagramURL: &instagram,
		YoutubeURL:   &youtube,
	}
}

type Service struct {
	logger *slog.Logger
	repo   storage.SettingsRepository
}

func NewService(logger *slog.Logger, repo storage.SettingsRepository) *Service {
	return &Service{
		logger: logger,
		repo:   repo,
	}
}

// EnsureDefaults creates the row from Defaults if it is missing. It must run
// before the service takes traffic; Get never creates the row itself.
func (s *Service) EnsureDefaults(ctx context.Context) error {
	created, err := s.repo.Insert(ctx, Defaults())
	if err != nil {
		return err
	}
	if created {
		s.logger.Info("settings initialised with defaults")
	}
	return nil
}

func (s *Service) Get(ctx context.Context) (storage.Settings, error) {
	current, err := s.repo.Get(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return storage.Settings{}, apperr.NotFound("settings have not been initialised")
		}
		s.logger.Error("failed to load settings", "error", err)
		return storage.Settings{}, apperr.From(err, "failed to load settings")
	}
	return current, nil
}

// Upsert replaces every field. Empty social links are stored as null.
func (s *Service) Upsert(ctx context.Context, next storage.Settings) (storage.Settings, error) {
	if strings.TrimSpace(next.ChurchName) == "" {
		return storage.Settings{}, apperr.BadRequest("churchName is required")
	}

	next.FacebookURL = blankToNil(next.FacebookURL)
	next.InstagramURL = blankToNil(next.InstagramURL)
	next.YoutubeURL = blankToNil(next.YoutubeURL)

	saved, err := s.repo.Upsert(ctx, next)
	if err != nil {
		s.logger.Error("failed to save settings", "error", err)
		return storage.Settings{}, apperr.From(err, "failed to save settings")
	}

	s.logger.Info("settings replaced")
	return saved, nil
}

// Update merges the supplied fields into the existing row.
func (s *Service) Update(ctx context.Context, input storage.SettingsUpdate) (storage.Settings, error) {
	if input.ChurchName != nil && strings.TrimSpace(*input.ChurchName) == "" {
		return storage.Settings{}, apperr.BadRequest("churchName must not be empty")
	}

	input.FacebookURL = blankOptional(input.FacebookURL)
	input.InstagramURL = blankOptional(input.InstagramURL)
	input.YoutubeURL = blankOptional(input.YoutubeURL)

	saved, err := s.repo.Update(ctx, input)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return storage.Settings{}, apperr.NotFound("settings have not been initialised")
		}
		s.logger.Error("failed to update settings", "error", err)
		return storage.Settings{}, apperr.From(err, "failed to update settings")
	}

	s.logger.Info("settings updated")
	return saved, nil
}

func blankToNil(v *string) *string {
	if v == nil || strings.TrimSpace(*v) == "" {
		return nil
	}
	trimmed := strings.TrimSpace(*v)
	return &trimmed
}

func blankOptional(o storage.Optional[string]) storage.Optional[string] {
	if o.Set {
		o.Value = blankToNil(o.Value)
	}
	return o
}
