package monitor

// Metric names a derived series that can be exported.
type Metric string

const (
	MetricCPUPercent  Metric = "cpu_usage_percent"
	MetricMemPercent  Metric = "memory_used_percent"
	MetricSwapPercent Metric = "swap_used_percent"
	MetricNetRx       Metric = "network_receive_bytes_per_second"
	MetricNetTx       Metric = "network_transmit_bytes_per_second"
	MetricDiskRead    Metric = "disk_read_bytes_per_second"
	MetricDiskWrite   Metric = "disk_write_bytes_per_second"
	MetricProcRead    Metric = "process_read_bytes_per_second"
	MetricProcWrite   Metric = "process_write_bytes_per_second"
	MetricGPUPercent  Metric = "gpu_utilization_percent"
)

// Metrics lists every Metric.
var Metrics = []Metric{
	MetricCPUPercent, MetricMemPercent, MetricSwapPercent,
	MetricNetRx, MetricNetTx,
	MetricDiskRead, MetricDiskWrite,
	MetricProcRead, MetricProcWrite,
	MetricGPUPercent,
}

// Recorder receives derived values as panels compute them. entity is the
// interface, device, PID or GPU index, or "" for host-wide values.
type Recorder interface {
	Record(m Metric, entity string, value float64)
	// Forget drops an entity that disappeared.
	Forget(m Metric, entity string)
}

// NopRecorder discards everything.
type NopRecorder struct{}

func (NopRecorder) Record(Metric, string, float64) {}
func (NopRecorder) Forget(Metric, string)          {}
