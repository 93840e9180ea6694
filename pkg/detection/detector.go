// Package detection provides object detection over camera frames.
// Inference is delegated to OpenCV's DNN module; this package only
// shapes frames in and detections out.
package detection

// Detection represents a detected object
type Detection struct {
	X, Y       float64 // Top-left position (0-1 normalized)
	W, H       float64 // Width and height (0-1 normalized)
	Confidence float64 // Detection confidence (0-1)
	ClassID    int     // COCO class ID
	Label      string  // Human-readable class name
}

// Center returns the center point of the detection
func (d Detection) Center() (x, y float64) {
	return d.X + d.W/2, d.Y + d.H/2
}

// Area returns the area of the bounding box
func (d Detection) Area() float64 {
	return d.W * d.H
}

// Detector is the interface for detection backends
type Detector interface {
	// Detect finds objects in the JPEG image
	Detect(jpeg []byte) ([]Detection, error)

	// Close releases resources
	Close() error
}

// Config holds detector configuration
type Config struct {
	ModelPath        string  // Path to ONNX model
	ConfidenceThresh float64 // Minimum confidence (default 0.5)
	InputWidth       int     // Model input width
	InputHeight      int     // Model input height
}

// DefaultConfig returns production defaults for SSD-MobileNet
func DefaultConfig() Config {
	return Config{
		ModelPath:        "models/ssd_mobilenet_v2_coco.onnx",
		ConfidenceThresh: 0.5,
		InputWidth:       300,
		InputHeight:      300,
	}
}

// SelectBest picks the most trackable detection, optionally filtered
// by class. Priority: confidence * 0.7 + relative area * 0.3 - big
// confident boxes make better follow targets than tiny sharp ones.
func SelectBest(dets []Detection, classID int) *Detection {
	var candidates []Detection
	for _, d := range dets {
		if classID < 0 || d.ClassID == classID {
			candidates = append(candidates, d)
		}
	}
	if len(candidates) == 0 {
		return nil
	}
	if len(candidates) == 1 {
		return &candidates[0]
	}

	maxArea := 0.0
	for _, d := range candidates {
		if d.Area() > maxArea {
			maxArea = d.Area()
		}
	}

	bestScore := -1.0
	var best *Detection
	for i := range candidates {
		score := candidates[i].Confidence*0.7 + (candidates[i].Area()/maxArea)*0.3
		if score > bestScore {
			bestScore = score
			best = &candidates[i]
		}
	}
	return best
}
