package onnx

import "sort"

// modelSpec describes how to run one supported segmentation model: the
// weights file under the model directory, the square input side the network
// expects, the per-channel normalization, and whether the raw output is a
// logit that still needs a sigmoid.
type modelSpec struct {
	file      string
	inputSize int
	mean      [3]float32
	std       [3]float32
	sigmoid   bool
}

var imagenetMean = [3]float32{0.485, 0.456, 0.406}
var imagenetStd = [3]float32{0.229, 0.224, 0.225}

// registry holds the fixed, enumerable set of supported models. The trade-off
// axis runs from u2netp (small, fast, rougher edges) through u2net (the
// general-purpose default) and isnet-general-use (better edge handling) to
// birefnet-general (best quality, slow, large).
var registry = map[string]modelSpec{
	"u2net": {
		file:      "u2net.onnx",
		inputSize: 320,
		mean:      imagenetMean,
		std:       imagenetStd,
	},
	"u2netp": {
		file:      "u2netp.onnx",
		inputSize: 320,
		mean:      imagenetMean,
		std:       imagenetStd,
	},
	"isnet-general-use": {
		file:      "isnet-general-use.onnx",
		inputSize: 1024,
		mean:      [3]float32{0.5, 0.5, 0.5},
		std:       [3]float32{1, 1, 1},
	},
	"birefnet-general": {
		file:      "birefnet-general.onnx",
		inputSize: 1024,
		mean:      imagenetMean,
		std:       imagenetStd,
		sigmoid:   true,
	},
}

// DefaultModel is used when the caller does not pick one.
const DefaultModel = "u2net"

// Models returns the supported model names in stable order.
func Models() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
