package model

// CalculationStage is a coarse, user-visible phase of one simulation run.
// Stages appear in declaration order; Plots is optional.
type CalculationStage int

const (
	StageStart CalculationStage = iota
	StagePoints
	StagePlots
	StageEnd
)

var stageLabels = map[CalculationStage]string{
	StageStart:  "Just started calculation",
	StagePoints: "Generating points",
	StagePlots:  "Generating plots",
	StageEnd:    "Ended calculations",
}

var stageNames = map[CalculationStage]string{
	StageStart:  "start",
	StagePoints: "points",
	StagePlots:  "plots",
	StageEnd:    "end",
}

// Name returns a short machine-friendly identifier, suitable as a metric
// label or log field.
func (s CalculationStage) Name() string {
	if name, ok := stageNames[s]; ok {
		return name
	}
	return "unknown"
}

// String returns the human-readable label shown to the user.
func (s CalculationStage) String() string {
	if label, ok := stageLabels[s]; ok {
		return label
	}
	return "Unknown stage"
}

// Valid reports whether s is one of the declared stages.
func (s CalculationStage) Valid() bool {
	_, ok := stageLabels[s]
	return ok
}

// CanAdvanceTo reports whether a run currently in stage s may move to next.
// End is the resting state, so it may only be followed by Start (a new run).
// Within a run, stages only move forward; Plots may be skipped.
func (s CalculationStage) CanAdvanceTo(next CalculationStage) bool {
	if !s.Valid() || !next.Valid() {
		return false
	}
	switch s {
	case StageEnd:
		return next == StageStart
	case StageStart:
		return next == StagePoints
	case StagePoints:
		return next == StagePlots || next == StageEnd
	case StagePlots:
		return next == StageEnd
	}
	return false
}
