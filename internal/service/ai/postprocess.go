package ai

import (
	"peoplecounter/internal/dto"
)

const (
	// boxFields is the number of leading entries (cx, cy, w, h, objectness) before the class scores.
	boxFields = 5
)

// Filter turns raw YOLO output rows into candidates of a single class.
type Filter struct {
	Classes   ClassList
	Target    string
	Threshold float64
}

// Candidate decodes one output row. The row is kept only when its best class
// score is above the threshold and that class is the target.
func (f Filter) Candidate(row []float32, width, height int) (dto.DetectionResult, bool) {
	if len(row) <= boxFields {
		return dto.DetectionResult{}, false
	}

	classID, score := argmax(row[boxFields:])
	if float64(score) <= f.Threshold {
		return dto.DetectionResult{}, false
	}
	if name, ok := f.Classes.Name(classID); !ok || name != f.Target {
		return dto.DetectionResult{}, false
	}

	centerX := int(row[0] * float32(width))
	centerY := int(row[1] * float32(height))
	w := int(row[2] * float32(width))
	h := int(row[3] * float32(height))

	return dto.DetectionResult{
		Label:      f.Target,
		Confidence: float64(score),
		X:          centerX - w/2,
		Y:          centerY - h/2,
		Width:      w,
		Height:     h,
	}, true
}

// Collect applies Candidate to every row of every output.
func (f Filter) Collect(outputs [][][]float32, width, height int) []dto.DetectionResult {
	var candidates []dto.DetectionResult
	for _, output := range outputs {
		for _, row := range output {
			if candidate, ok := f.Candidate(row, width, height); ok {
				candidates = append(candidates, candidate)
			}
		}
	}
	return candidates
}

// argmax returns the first index holding the largest score.
func argmax(scores []float32) (int, float32) {
	best := 0
	for i := 1; i < len(scores); i++ {
		if scores[i] > scores[best] {
			best = i
		}
	}
	return best, scores[best]
}
