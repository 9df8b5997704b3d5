package usecase

import (
	"fmt"
	"log/slog"

	"github.com/skillsync/skillsync/internal/domain"
	"github.com/skillsync/skillsync/internal/observability"
)

// ProfileService serves user profiles and the developer directory. Public
// developer profiles are cache-backed; cache trouble degrades to the database.
type ProfileService struct {
	Users domain.UserRepository
	Cache domain.ProfileCache
}

// NewProfileService constructs a ProfileService with its dependencies.
func NewProfileService(users domain.UserRepository, cache domain.ProfileCache) ProfileService {
	return ProfileService{Users: users, Cache: cache}
}

// Get returns a user's public profile, through the cache when possible.
func (s ProfileService) Get(ctx domain.Context, id string) (domain.User, error) {
	if s.Cache != nil {
		if u, ok, err := s.Cache.Get(ctx, id); err != nil {
			observability.LoggerFromContext(ctx).Warn("profile cache read failed",
				slog.String("user_id", id), slog.Any("error", err))
		} else if ok {
			return u, nil
		}
	}
	u, err := s.Users.Get(ctx, id)
	if err != nil {
		return domain.User{}, err
	}
	if s.Cache != nil {
		if err := s.Cache.Set(ctx, u); err != nil {
			observability.LoggerFromContext(ctx).Warn("profile cache write failed",
				slog.String("user_id", id), slog.Any("error", err))
		}
	}
	return u, nil
}

// UpdateOwn edits the caller's profile fields and invalidates the cache entry.
// Attachment references (avatar, resume) are stored as-is; the bytes live with
// the external storage collaborator.
func (s ProfileService) UpdateOwn(ctx domain.Context, p domain.Principal, in domain.User) (domain.User, error) {
	if in.FirstName == "" || in.LastName == "" {
		return domain.User{}, fmt.Errorf("%w: first and last name required", domain.ErrInvalidArgument)
	}
	if in.HourlyRate < 0 {
		return domain.User{}, fmt.Errorf("%w: hourly rate must be non-negative", domain.ErrInvalidArgument)
	}
	in.ID = p.ID
	if err := s.Users.UpdateProfile(ctx, in); err != nil {
		return domain.User{}, err
	}
	if s.Cache != nil {
		if err := s.Cache.Invalidate(ctx, p.ID); err != nil {
			observability.LoggerFromContext(ctx).Warn("profile cache invalidate failed",
				slog.String("user_id", p.ID), slog.Any("error", err))
		}
	}
	return s.Users.Get(ctx, p.ID)
}

// ListDevelopers returns the developer directory page.
func (s ProfileService) ListDevelopers(ctx domain.Context, f domain.DeveloperFilter) (domain.Page[domain.User], error) {
	return s.Users.ListDevelopers(ctx, f)
}
