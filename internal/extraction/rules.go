package extraction

// Default rule labels.
const (
	LabelManualProcess     = "manual_process"
	LabelCurrentlyManual   = "currently_manual"
	LabelHumanIntervention = "human_intervention"
	LabelRepetitiveTask    = "repetitive_task"
)

// DefaultRules returns the built-in cue phrase table. Each capture runs up
// to the next period or newline.
func DefaultRules() []Rule {
	return []Rule{
		{
			Label:   LabelManualProcess,
			Pattern: `(?i)manual(?:ly)?\s+(?:process|task|step|procedure)[:\s]*([^.\n]+)`,
		},
		{
			Label:   LabelCurrentlyManual,
			Pattern: `(?i)currently\s+(?:done|performed)\s+manual(?:ly)?[:\s]*([^.\n]+)`,
		},
		{
			Label:   LabelHumanIntervention,
			Pattern: `(?i)human\s+(?:intervention|input|action)[:\s]*([^.\n]+)`,
		},
		{
			Label:   LabelRepetitiveTask,
			Pattern: `(?i)repetitive\s+task[:\s]*([^.\n]+)`,
		},
	}
}
