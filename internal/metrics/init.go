package metrics

// Label values shared by the instrumented packages.
var (
	CodecComponents = map[string][]string{
		"colorspace": {"rgb_to_yuv", "yuv_to_rgb"},
		"scan":       {"serpentine"},
		"rle":        {"encode", "decode"},
		"transform":  {"dct_encode", "dct_decode", "dwt"},
	}

	TranscoderOperations = []string{
		"probe", "tracks", "resize", "grayscale", "compress", "chroma",
		"convert", "trim", "export_audio", "package", "motion_vectors", "yuv_histogram",
	}

	ImageOperations = []string{"resize", "grayscale", "compress", "yuv_stats"}

	DownloadResults = []string{"complete", "client_gone", "timeout", "error"}

	DBOperations = []string{"initialize_schema", "record_job", "list_jobs", "purge_jobs", "count_jobs"}
)

// InitializeMetrics pre-populates all expected label combinations so that
// every metric is exported from the first Prometheus scrape.
// Call this once at startup after metric registration.
func InitializeMetrics() {
	for component, ops := range CodecComponents {
		for _, op := range ops {
			CodecOperationsTotal.WithLabelValues(component, op, "success")
			CodecOperationsTotal.WithLabelValues(component, op, "error")
			CodecOperationDuration.WithLabelValues(component, op)
		}
		CodecElementsProcessed.WithLabelValues(component)
	}

	for _, op := range TranscoderOperations {
		TranscoderJobsTotal.WithLabelValues(op, "success")
		TranscoderJobsTotal.WithLabelValues(op, "error")
		TranscoderJobDuration.WithLabelValues(op)
	}

	for _, op := range ImageOperations {
		for _, backend := range []string{"vips", "imaging"} {
			ImageOperationsTotal.WithLabelValues(op, backend, "success")
			ImageOperationsTotal.WithLabelValues(op, backend, "error")
			ImageOperationDuration.WithLabelValues(op, backend)
		}
	}

	for _, kind := range []string{"image", "video", "audio", "other"} {
		UploadsTotal.WithLabelValues(kind)
	}

	for _, result := range DownloadResults {
		DownloadsTotal.WithLabelValues(result)
	}

	for _, op := range DBOperations {
		DBQueryTotal.WithLabelValues(op, "success")
		DBQueryTotal.WithLabelValues(op, "error")
		DBQueryDuration.WithLabelValues(op)
	}

	for _, file := range []string{"main", "wal", "shm"} {
		DBSizeBytes.WithLabelValues(file)
	}
}
