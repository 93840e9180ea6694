package detection

import (
	"fmt"
	"image"
	"os"
	"sync"

	"gocv.io/x/gocv"
)

// SSDDetector runs an SSD-MobileNet COCO model, the same family the
// JetBot object-following demo ships with.
type SSDDetector struct {
	net       gocv.Net
	config    Config
	mu        sync.Mutex
	inputSize image.Point
}

// NewSSD creates a new SSD object detector
func NewSSD(cfg Config) (*SSDDetector, error) {
	if _, err := os.Stat(cfg.ModelPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("model file not found: %s", cfg.ModelPath)
	}

	net := gocv.ReadNetFromONNX(cfg.ModelPath)
	if net.Empty() {
		return nil, fmt.Errorf("failed to load SSD model from %s", cfg.ModelPath)
	}

	net.SetPreferableBackend(gocv.NetBackendDefault)
	net.SetPreferableTarget(gocv.NetTargetCPU)

	return &SSDDetector{
		net:       net,
		config:    cfg,
		inputSize: image.Pt(cfg.InputWidth, cfg.InputHeight),
	}, nil
}

// Detect finds objects in the JPEG image
func (d *SSDDetector) Detect(jpeg []byte) ([]Detection, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	img, err := gocv.IMDecode(jpeg, gocv.IMReadColor)
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	defer img.Close()

	if img.Empty() {
		return nil, fmt.Errorf("empty image")
	}

	blob := gocv.BlobFromImage(img, 1.0/127.5, d.inputSize,
		gocv.NewScalar(127.5, 127.5, 127.5, 0), true, false)
	defer blob.Close()

	d.net.SetInput(blob, "")

	output := d.net.Forward("")
	defer output.Close()

	return d.parseSSDOutput(output), nil
}

// parseSSDOutput parses the SSD output tensor.
// Output shape: [1, 1, N, 7] - each row is
// [batch, class_id, confidence, x1, y1, x2, y2] with corners already
// normalized to 0-1.
func (d *SSDDetector) parseSSDOutput(output gocv.Mat) []Detection {
	var detections []Detection

	flat := output.Reshape(1, output.Total()/7)
	defer flat.Close()

	for row := 0; row < flat.Rows(); row++ {
		confidence := float64(flat.GetFloatAt(row, 2))
		if confidence < d.config.ConfidenceThresh {
			continue
		}

		classID := int(flat.GetFloatAt(row, 1))
		x1 := float64(flat.GetFloatAt(row, 3))
		y1 := float64(flat.GetFloatAt(row, 4))
		x2 := float64(flat.GetFloatAt(row, 5))
		y2 := float64(flat.GetFloatAt(row, 6))

		detections = append(detections, Detection{
			X:          clamp01(x1),
			Y:          clamp01(y1),
			W:          clamp01(x2 - x1),
			H:          clamp01(y2 - y1),
			Confidence: confidence,
			ClassID:    classID,
			Label:      cocoLabel(classID),
		})
	}

	return detections
}

// Close releases the network
func (d *SSDDetector) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.net.Close()
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
