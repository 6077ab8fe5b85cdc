package dto

// ImportSummary aggregates the outcome of a bulk user import. Only the first
// few row errors are surfaced; MoreErrors carries the count of the rest.
type ImportSummary struct {
	Created    int      `json:"created"`
	Skipped    int      `json:"skipped"`
	ErrorCount int      `json:"error_count"`
	Errors     []string `json:"errors"`
	MoreErrors int      `json:"more_errors"`
}

// PromotionRequest selects the student cohort to promote.
type PromotionRequest struct {
	FromLevelID uint  `json:"from_level_id" validate:"required"`
	ToLevelID   uint  `json:"to_level_id" validate:"required"`
	MajorID     *uint `json:"major_id"`
}

// Promotion batch outcomes.
const (
	PromotionActionPromoted  = "promotion"
	PromotionActionGraduated = "graduation"
)

// PromotionResult reports what a promotion batch did.
type PromotionResult struct {
	Action    string `json:"action"`
	Affected  int64  `json:"affected"`
	FromLevel string `json:"from_level"`
	ToLevel   string `json:"to_level,omitempty"`
	Major     string `json:"major,omitempty"`
}
