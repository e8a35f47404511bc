package eyemetrics

// Scheme names the positional indices of the landmarks used for gaze and
// blink detection. Eye contours are ordered outer corner, two upper-lid
// points, inner corner, two lower-lid points.
type Scheme struct {
	LeftPupil  int
	RightPupil int
	LeftEye    [EyeContourPoints]int
	RightEye   [EyeContourPoints]int
}

// MediaPipe is the 478-point face mesh with iris refinement.
var MediaPipe = Scheme{
	LeftPupil:  468,
	RightPupil: 473,
	LeftEye:    [EyeContourPoints]int{362, 385, 387, 263, 373, 380},
	RightEye:   [EyeContourPoints]int{33, 160, 158, 133, 153, 144},
}

// Required returns the minimum landmark count a frame must carry.
func (s Scheme) Required() int {
	highest := max(s.LeftPupil, s.RightPupil)
	for i := 0; i < EyeContourPoints; i++ {
		highest = max(highest, s.LeftEye[i], s.RightEye[i])
	}
	return highest + 1
}
