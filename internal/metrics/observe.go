package metrics

import "time"

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

// ObserveCodec records one codec operation that processed elements
// samples and started at start.
func ObserveCodec(component, operation string, elements int, start time.Time, err error) {
	CodecOperationsTotal.WithLabelValues(component, operation, status(err)).Inc()
	CodecOperationDuration.WithLabelValues(component, operation).Observe(time.Since(start).Seconds())
	if err == nil && elements > 0 {
		CodecElementsProcessed.WithLabelValues(component).Add(float64(elements))
	}
}

// ObserveImage records one in-process image operation.
func ObserveImage(operation, backend string, start time.Time, err error) {
	ImageOperationsTotal.WithLabelValues(operation, backend, status(err)).Inc()
	ImageOperationDuration.WithLabelValues(operation, backend).Observe(time.Since(start).Seconds())
}

// ObserveTranscode records one ffmpeg or ffprobe run.
func ObserveTranscode(operation string, start time.Time, err error) {
	TranscoderJobsTotal.WithLabelValues(operation, status(err)).Inc()
	TranscoderJobDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

// ObserveQuery records one database query.
func ObserveQuery(operation string, start time.Time, err error) {
	DBQueryTotal.WithLabelValues(operation, status(err)).Inc()
	DBQueryDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}
