package service

import (
	"context"
	"strings"

	"github.com/rs/zerolog"
	"gorm.io/datatypes"

	"github.com/sacm-dev/sacm-api/internal/dto"
	"github.com/sacm-dev/sacm-api/internal/models"
	"github.com/sacm-dev/sacm-api/internal/repository"
)

// AuditActor represents the authenticated actor performing a mutating action.
type AuditActor struct {
	ID   uint
	Role string
}

// RequestMeta carries request metadata stamped onto audit entries.
type RequestMeta struct {
	IPAddress     string
	CorrelationID string
}

// AuditEntry captures the details required to persist an audit record.
type AuditEntry struct {
	Actor      AuditActor
	Action     string
	ModelName  string
	ObjectID   *uint
	ObjectRepr string
	Changes    map[string]interface{}
	Meta       RequestMeta
}

// AuditRecorder records audit entries. Writes are fire-and-forget: failures
// are logged and never propagate to the mutating flow.
type AuditRecorder interface {
	Record(ctx context.Context, entry AuditEntry)
}

// AuditService exposes methods to persist and query the audit trail.
type AuditService interface {
	AuditRecorder
	List(ctx context.Context, req dto.AuditListRequest) (dto.AuditListResponse, error)
}

type auditService struct {
	repo   repository.AuditLogRepository
	logger zerolog.Logger
}

// NewAuditService constructs the audit service.
func NewAuditService(repo repository.AuditLogRepository, logger zerolog.Logger) AuditService {
	return &auditService{
		repo:   repo,
		logger: logger.With().Str("component", "audit_service").Logger(),
	}
}

func (s *auditService) Record(ctx context.Context, entry AuditEntry) {
	action := strings.ToLower(strings.TrimSpace(entry.Action))
	modelName := strings.TrimSpace(entry.ModelName)
	if action == "" || modelName == "" {
		s.logger.Warn().Str("action", entry.Action).Str("model", entry.ModelName).Msg("dropping audit entry with missing action or model")
		return
	}

	model := models.AuditLog{
		ActorID:       entry.Actor.ID,
		ActorRole:     strings.ToLower(strings.TrimSpace(entry.Actor.Role)),
		Action:        action,
		ModelName:     modelName,
		ObjectID:      entry.ObjectID,
		ObjectRepr:    entry.ObjectRepr,
		Changes:       datatypes.JSONMap(entry.Changes),
		IPAddress:     entry.Meta.IPAddress,
		CorrelationID: entry.Meta.CorrelationID,
	}

	if err := s.repo.Create(ctx, &model); err != nil {
		s.logger.Error().Err(err).Str("action", action).Str("model", modelName).Msg("failed to persist audit entry")
	}
}

func (s *auditService) List(ctx context.Context, req dto.AuditListRequest) (dto.AuditListResponse, error) {
	filter := repository.AuditLogFilter{
		Action:    strings.TrimSpace(req.Action),
		ModelName: strings.TrimSpace(req.ModelName),
		Page:      req.Page,
		PageSize:  req.PageSize,
	}
	if req.ActorID > 0 {
		filter.ActorID = &req.ActorID
	}

	entries, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return dto.AuditListResponse{}, err
	}

	responses := make([]dto.AuditEntryResponse, 0, len(entries))
	for _, entry := range entries {
		responses = append(responses, dto.NewAuditEntryResponse(entry))
	}

	return dto.AuditListResponse{
		Items:      responses,
		Pagination: paginationMeta(req.Page, req.PageSize, total),
	}, nil
}
