package dto

// FrameResult holds what DetectPeople found on a single frame.
type FrameResult struct {
	PeopleCount int
	Candidates  int // Liczba kandydatów przed NMS
	Detections  []DetectionResult
}
