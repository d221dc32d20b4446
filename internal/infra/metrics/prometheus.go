package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	VideosProcessedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "videomatte_videos_processed_total",
		Help: "Total number of videos run through the pipeline, by outcome",
	}, []string{"outcome"})

	StageDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "videomatte_stage_duration_seconds",
		Help:    "Duration of each pipeline stage",
		Buckets: []float64{1, 5, 10, 30, 60, 120, 300, 600, 1800},
	}, []string{"stage"})

	FramesSegmentedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "videomatte_frames_segmented_total",
		Help: "Total number of frames run through the segmentation model",
	})

	ActivePipelines = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "videomatte_active_pipelines",
		Help: "Number of pipeline runs currently in flight",
	})
)
