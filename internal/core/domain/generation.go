package domain

// SkipReason explains why a due template produced no transaction.
// Skips are expected outcomes, not errors.
type SkipReason string

const (
	SkipInactive            SkipReason = "inactive"
	SkipBeforeStartDate     SkipReason = "before_start_date"
	SkipAlreadyGenerated    SkipReason = "already_generated"
	SkipTombstoned          SkipReason = "tombstoned"
	SkipEnded               SkipReason = "ended"
	SkipOccurrenceLimit     SkipReason = "occurrence_limit"
	SkipMissingCategory     SkipReason = "missing_category"
	SkipBeforeContractStart SkipReason = "before_contract_start"
)

// GenerationReport accumulates the outcome of one or more generation passes.
type GenerationReport struct {
	Created []Transaction
	Skipped map[SkipReason]int
	Failed  int
}

// NewGenerationReport returns an empty report.
func NewGenerationReport() *GenerationReport {
	return &GenerationReport{
		Created: []Transaction{},
		Skipped: make(map[SkipReason]int),
	}
}

// Skip counts one skipped template.
func (r *GenerationReport) Skip(reason SkipReason) {
	if r.Skipped == nil {
		r.Skipped = make(map[SkipReason]int)
	}
	r.Skipped[reason]++
}

// SkippedTotal is the number of skipped templates across all reasons.
func (r *GenerationReport) SkippedTotal() int {
	total := 0
	for _, n := range r.Skipped {
		total += n
	}
	return total
}
