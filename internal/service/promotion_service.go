package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/sacm-dev/sacm-api/internal/dto"
	"github.com/sacm-dev/sacm-api/internal/models"
	"github.com/sacm-dev/sacm-api/internal/repository"
)

// ErrLevelNotFound indicates a promotion referenced an unknown level.
var ErrLevelNotFound = errors.New("level not found")

// PromotionService runs bulk student promotion batches.
type PromotionService interface {
	Promote(ctx context.Context, req dto.PromotionRequest, actor AuditActor, meta RequestMeta) (dto.PromotionResult, error)
}

type promotionService struct {
	users     repository.UserRepository
	lookup    repository.LookupRepository
	validator *validator.Validate
	audit     AuditRecorder
	logger    zerolog.Logger
}

// NewPromotionService constructs the promotion service.
func NewPromotionService(users repository.UserRepository, lookup repository.LookupRepository, validator *validator.Validate, audit AuditRecorder, logger zerolog.Logger) PromotionService {
	return &promotionService{
		users:     users,
		lookup:    lookup,
		validator: validator,
		audit:     audit,
		logger:    logger.With().Str("component", "promotion_service").Logger(),
	}
}

// Promote moves all active students at the source level (optionally limited
// to one major) in a single bulk update. When the source level is the
// terminal level the students are graduated instead: status becomes
// graduated and the level reference is cleared. The submitted target level
// is ignored in that branch. Exactly one audit entry is written per batch.
func (s *promotionService) Promote(ctx context.Context, req dto.PromotionRequest, actor AuditActor, meta RequestMeta) (dto.PromotionResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.PromotionResult{}, err
	}

	fromLevel, err := s.lookup.GetLevel(ctx, req.FromLevelID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.PromotionResult{}, fmt.Errorf("%w: source level %d", ErrLevelNotFound, req.FromLevelID)
		}
		return dto.PromotionResult{}, err
	}

	majorName := "all"
	if req.MajorID != nil {
		majorName = fmt.Sprintf("major %d", *req.MajorID)
	}

	if fromLevel.LevelNumber == models.GraduationLevelNumber {
		affected, err := s.users.Graduate(ctx, fromLevel.ID, req.MajorID)
		if err != nil {
			return dto.PromotionResult{}, err
		}

		s.audit.Record(ctx, AuditEntry{
			Actor:     actor,
			Action:    "promote",
			ModelName: "User",
			Changes: map[string]interface{}{
				"action":     dto.PromotionActionGraduated,
				"from_level": fromLevel.LevelName,
				"new_status": models.AccountStatusGraduated,
				"major":      majorName,
				"count":      affected,
			},
			Meta: meta,
		})

		s.logger.Info().Int64("affected", affected).Str("from_level", fromLevel.LevelName).Msg("students graduated")

		return dto.PromotionResult{
			Action:    dto.PromotionActionGraduated,
			Affected:  affected,
			FromLevel: fromLevel.LevelName,
		}, nil
	}

	toLevel, err := s.lookup.GetLevel(ctx, req.ToLevelID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.PromotionResult{}, fmt.Errorf("%w: target level %d", ErrLevelNotFound, req.ToLevelID)
		}
		return dto.PromotionResult{}, err
	}

	affected, err := s.users.PromoteLevel(ctx, fromLevel.ID, toLevel.ID, req.MajorID)
	if err != nil {
		return dto.PromotionResult{}, err
	}

	s.audit.Record(ctx, AuditEntry{
		Actor:     actor,
		Action:    "promote",
		ModelName: "User",
		Changes: map[string]interface{}{
			"action":     dto.PromotionActionPromoted,
			"from_level": fromLevel.LevelName,
			"to_level":   toLevel.LevelName,
			"major":      majorName,
			"count":      affected,
		},
		Meta: meta,
	})

	s.logger.Info().
		Int64("affected", affected).
		Str("from_level", fromLevel.LevelName).
		Str("to_level", toLevel.LevelName).
		Msg("students promoted")

	return dto.PromotionResult{
		Action:    dto.PromotionActionPromoted,
		Affected:  affected,
		FromLevel: fromLevel.LevelName,
		ToLevel:   toLevel.LevelName,
	}, nil
}
