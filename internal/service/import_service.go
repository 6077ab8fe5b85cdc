package service

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"

	"github.com/sacm-dev/sacm-api/internal/dto"
	"github.com/sacm-dev/sacm-api/internal/models"
	"github.com/sacm-dev/sacm-api/internal/repository"
)

const (
	importBatchSize    = 100
	importErrorPreview = 5
)

// ImportLookups carries the reference caches a bulk import resolves rows
// against. They are built once per import call and passed in explicitly so
// the import itself runs without touching the store for lookups.
type ImportLookups struct {
	// Roles is keyed by code, lowercased code and display name.
	Roles map[string]models.Role
	// Majors and Levels are keyed by their exact names.
	Majors map[string]models.Major
	Levels map[string]models.Level
	// Existing unique keys already present in the store. The import adds
	// accepted values to these sets as it goes, so duplicates within the
	// same upload are caught before hitting storage.
	AcademicIDs   map[string]struct{}
	IDCardNumbers map[string]struct{}
}

// ImportService performs bulk user creation from an uploaded CSV.
type ImportService interface {
	BuildLookups(ctx context.Context) (ImportLookups, error)
	Import(ctx context.Context, file io.Reader, lookups ImportLookups, actor AuditActor, meta RequestMeta) (dto.ImportSummary, error)
}

type importService struct {
	users  repository.UserRepository
	roles  repository.RoleRepository
	lookup repository.LookupRepository
	audit  AuditRecorder
	logger zerolog.Logger
}

// NewImportService constructs the bulk import service.
func NewImportService(users repository.UserRepository, roles repository.RoleRepository, lookup repository.LookupRepository, audit AuditRecorder, logger zerolog.Logger) ImportService {
	return &importService{
		users:  users,
		roles:  roles,
		lookup: lookup,
		audit:  audit,
		logger: logger.With().Str("component", "import_service").Logger(),
	}
}

// BuildLookups loads the reference caches for one import call. They are
// request-local and rebuilt from scratch on every import.
func (s *importService) BuildLookups(ctx context.Context) (ImportLookups, error) {
	lookups := ImportLookups{
		Roles:  make(map[string]models.Role),
		Majors: make(map[string]models.Major),
		Levels: make(map[string]models.Level),
	}

	roles, err := s.roles.List(ctx)
	if err != nil {
		return ImportLookups{}, fmt.Errorf("failed to load roles: %w", err)
	}
	for _, role := range roles {
		lookups.Roles[role.Code] = role.Role
		lookups.Roles[strings.ToLower(role.Code)] = role.Role
		lookups.Roles[role.DisplayName] = role.Role
	}

	majors, err := s.lookup.ListMajors(ctx, false)
	if err != nil {
		return ImportLookups{}, fmt.Errorf("failed to load majors: %w", err)
	}
	for _, major := range majors {
		lookups.Majors[major.MajorName] = major
	}

	levels, err := s.lookup.ListLevels(ctx)
	if err != nil {
		return ImportLookups{}, fmt.Errorf("failed to load levels: %w", err)
	}
	for _, level := range levels {
		lookups.Levels[level.LevelName] = level
	}

	lookups.AcademicIDs, err = s.users.AcademicIDs(ctx)
	if err != nil {
		return ImportLookups{}, fmt.Errorf("failed to load academic ids: %w", err)
	}
	lookups.IDCardNumbers, err = s.users.IDCardNumbers(ctx)
	if err != nil {
		return ImportLookups{}, fmt.Errorf("failed to load id card numbers: %w", err)
	}

	return lookups, nil
}

// Import processes the CSV row by row. Invalid rows are recorded as errors
// and skipped; rows whose academic id already exists are counted as skipped.
// Accepted rows are buffered and persisted in conflict-tolerant batches of
// 100, so a duplicate surfacing only at insert time is dropped silently
// rather than aborting the batch. New users always start inactive.
func (s *importService) Import(ctx context.Context, file io.Reader, lookups ImportLookups, actor AuditActor, meta RequestMeta) (dto.ImportSummary, error) {
	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return dto.ImportSummary{}, fmt.Errorf("failed to read csv header: %w", err)
	}
	columns := columnIndex(header)
	if _, ok := columns["academic_id"]; !ok {
		return dto.ImportSummary{}, fmt.Errorf("csv header is missing the academic_id column")
	}

	var (
		toCreate []models.User
		rowErrs  []string
		skipped  int
	)

	// Data starts on line 2, after the header.
	for rowNum := 2; ; rowNum++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			rowErrs = append(rowErrs, fmt.Sprintf("row %d: %v", rowNum, err))
			continue
		}

		field := func(name string) string {
			idx, ok := columns[name]
			if !ok || idx >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[idx])
		}

		academicID := field("academic_id")
		idCardNumber := field("id_card_number")

		if academicID == "" || idCardNumber == "" {
			rowErrs = append(rowErrs, fmt.Sprintf("row %d: academic id or id card number is empty", rowNum))
			continue
		}

		// Pre-existing sets are checked before anything else, so a row that
		// duplicates an earlier in-file row counts as skipped, not an error.
		if _, exists := lookups.AcademicIDs[academicID]; exists {
			skipped++
			continue
		}
		if _, exists := lookups.IDCardNumbers[idCardNumber]; exists {
			rowErrs = append(rowErrs, fmt.Sprintf("row %d: id card number %s already exists", rowNum, idCardNumber))
			continue
		}

		roleName := field("role")
		if roleName == "" {
			roleName = models.RoleStudent
		}
		role, ok := lookups.Roles[roleName]
		if !ok {
			role, ok = lookups.Roles[strings.ToLower(roleName)]
		}
		if !ok {
			rowErrs = append(rowErrs, fmt.Sprintf("row %d: role %q does not exist (available: student, instructor, admin)", rowNum, roleName))
			continue
		}

		var majorID *uint
		if name := field("major"); name != "" {
			major, ok := lookups.Majors[name]
			if !ok {
				rowErrs = append(rowErrs, fmt.Sprintf("row %d: major %q does not exist", rowNum, name))
				continue
			}
			id := major.ID
			majorID = &id
		}

		var levelID *uint
		if name := field("level"); name != "" {
			level, ok := lookups.Levels[name]
			if !ok {
				rowErrs = append(rowErrs, fmt.Sprintf("row %d: level %q does not exist", rowNum, name))
				continue
			}
			id := level.ID
			levelID = &id
		}

		toCreate = append(toCreate, models.User{
			AcademicID:    academicID,
			IDCardNumber:  idCardNumber,
			FullName:      field("full_name"),
			Email:         field("email"),
			RoleID:        role.ID,
			MajorID:       majorID,
			LevelID:       levelID,
			AccountStatus: models.AccountStatusInactive,
		})

		lookups.AcademicIDs[academicID] = struct{}{}
		lookups.IDCardNumbers[idCardNumber] = struct{}{}
	}

	created := 0
	if len(toCreate) > 0 {
		if err := s.users.BulkCreate(ctx, toCreate, importBatchSize); err != nil {
			return dto.ImportSummary{}, fmt.Errorf("bulk insert failed: %w", err)
		}
		created = len(toCreate)
	}

	s.audit.Record(ctx, AuditEntry{
		Actor:     actor,
		Action:    "import",
		ModelName: "User",
		Changes: map[string]interface{}{
			"created": created,
			"skipped": skipped,
			"errors":  len(rowErrs),
		},
		Meta: meta,
	})

	s.logger.Info().
		Int("created", created).
		Int("skipped", skipped).
		Int("errors", len(rowErrs)).
		Msg("bulk user import completed")

	summary := dto.ImportSummary{
		Created:    created,
		Skipped:    skipped,
		ErrorCount: len(rowErrs),
	}
	if len(rowErrs) > importErrorPreview {
		summary.Errors = rowErrs[:importErrorPreview]
		summary.MoreErrors = len(rowErrs) - importErrorPreview
	} else {
		summary.Errors = rowErrs
	}

	return summary, nil
}

func columnIndex(header []string) map[string]int {
	columns := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		if name != "" {
			columns[name] = i
		}
	}
	return columns
}
