package render

// Severity is the display bucket a value falls into.
type Severity int

const (
	Normal Severity = iota
	Warning
	Critical
)

func (s Severity) String() string {
	switch s {
	case Warning:
		return "WARNING"
	case Critical:
		return "CRITICAL"
	default:
		return "NORMAL"
	}
}

// MarshalText lets views serialize severities by name.
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Worse returns the more severe of s and o.
func (s Severity) Worse(o Severity) Severity {
	if o > s {
		return o
	}
	return s
}

// Classify buckets v against a warn/critical pair. Both bounds are inclusive.
func Classify(v, warn, crit float64) Severity {
	switch {
	case v >= crit:
		return Critical
	case v >= warn:
		return Warning
	default:
		return Normal
	}
}

// Threshold is a named warn/critical pair.
type Threshold struct {
	Name  string
	Warn  float64
	Error float64
}

// Classify buckets v against the pair.
func (t Threshold) Classify(v float64) Severity {
	return Classify(v, t.Warn, t.Error)
}

// Thresholds used by the renderer.
var (
	CPUUsage    = Threshold{Name: "cpu_usage", Warn: 70, Error: 90}
	CPUTemp     = Threshold{Name: "cpu_temp", Warn: 60, Error: 80}
	GPUUsage    = Threshold{Name: "gpu_usage", Warn: 70, Error: 90}
	GPUTemp     = Threshold{Name: "gpu_temp", Warn: 60, Error: 80}
	RTT         = Threshold{Name: "rtt_ms", Warn: 50, Error: 100}
	DiskUsage   = Threshold{Name: "disk_usage", Warn: 70, Error: 90}
	MemoryUsage = Threshold{Name: "memory_usage", Warn: 70, Error: 90}
	VehicleAge  = Threshold{Name: "vehicle_age", Warn: 1, Error: 3}
)

// Battery voltage policy. Lower is worse, so it does not fit Threshold.
const (
	BatteryCritical = 20.0
	BatteryWarning  = 22.0
)

// ClassifyBattery buckets a battery voltage.
func ClassifyBattery(volts float64) Severity {
	switch {
	case volts < BatteryCritical:
		return Critical
	case volts < BatteryWarning:
		return Warning
	default:
		return Normal
	}
}

// Indicator maps a boolean to a label pair whose severity follows the value.
type Indicator struct {
	On, Off                 string
	OnSeverity, OffSeverity Severity
}

// Indicators for the status fields the snapshot carries.
var (
	UpDown           = Indicator{On: "UP", Off: "DOWN", OffSeverity: Critical}
	ConnectedOffline = Indicator{On: "CONNECTED", Off: "OFFLINE", OffSeverity: Critical}
	ActiveClear      = Indicator{On: "ACTIVE", Off: "CLEAR", OnSeverity: Critical}
	OnOff            = Indicator{On: "ON", Off: "OFF"}
	EnabledDisabled  = Indicator{On: "ENABLED", Off: "DISABLED", OffSeverity: Warning}
)

// Apply returns the label and severity for b.
func (i Indicator) Apply(b bool) (string, Severity) {
	if b {
		return i.On, i.OnSeverity
	}
	return i.Off, i.OffSeverity
}
