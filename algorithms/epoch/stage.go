package epoch

import "math"

// Sleep stage code tables. The standard table matches the scoring
// export convention of the recording system; the alternative table
// covers datasets where Wake is coded 0 and depth increases with the
// code (with 4 occasionally used for N2).

// SleepStageMap is the standard numeric-code to stage-name table.
var SleepStageMap = map[int]string{
	2: "N3",
	3: "N2",
	4: "N1",
	5: "REM",
	6: "Wake",
}

// SleepStageMapAlt is the alternative coding used by some datasets.
var SleepStageMapAlt = map[int]string{
	0: "Wake",
	1: "N1",
	2: "N2",
	3: "N3",
	4: "N2",
	5: "REM",
	6: "Wake",
}

// MapSleepStage translates a numeric stage code to its name. A nil
// mapping selects the standard table. The second return is false for
// codes absent from the table.
func MapSleepStage(stage int, mapping map[int]string) (string, bool) {
	if mapping == nil {
		mapping = SleepStageMap
	}
	name, ok := mapping[stage]
	return name, ok
}

// IsNREMStage reports whether the code maps to NREM sleep (N2 or N3).
func IsNREMStage(stage int, mapping map[int]string) bool {
	name, ok := MapSleepStage(stage, mapping)
	return ok && (name == "N2" || name == "N3")
}

// IsREMStage reports whether the code maps to REM sleep.
func IsREMStage(stage int, mapping map[int]string) bool {
	name, ok := MapSleepStage(stage, mapping)
	return ok && name == "REM"
}

// IsWakeStage reports whether the code maps to wake.
func IsWakeStage(stage int, mapping map[int]string) bool {
	name, ok := MapSleepStage(stage, mapping)
	return ok && name == "Wake"
}

// StageLabelsFromCodes converts numeric stage codes to named labels
// using the given table (nil selects the standard one). NaN and codes
// outside the table become missing labels.
func StageLabelsFromCodes(codes []float64, mapping map[int]string) []Label {
	labels := make([]Label, len(codes))
	for i, code := range codes {
		if math.IsNaN(code) {
			labels[i] = MissingLabel()
			continue
		}
		name, ok := MapSleepStage(int(code), mapping)
		if !ok {
			labels[i] = MissingLabel()
			continue
		}
		labels[i] = StringLabel(name)
	}
	return labels
}
