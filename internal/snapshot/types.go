package snapshot

import "time"

// Top-level keys of a state frame. Each one is decoded independently so a bad
// subtree only faults its own key.
const (
	KeyMux              = "mux"
	KeyTwist            = "twist"
	KeyNetwork          = "network"
	KeyHunter           = "hunter"
	KeyEStop            = "estop"
	KeyResources        = "resources"
	KeyGPUs             = "gpu_list"
	KeyDisks            = "disk_partitions"
	KeyInterfaces       = "net_interfaces"
	KeyControl          = "control"
	KeyAlerts           = "alerts"
	KeyRemoteEnabled    = "remote_enabled"
	KeyStationConnected = "station_connected"
	KeyVehicleAge       = "vehicle_age"
	KeyServerTime       = "server_time"
)

// Snapshot is one point-in-time state record pushed over the state feed.
// Every field is optional: nil means the backend did not send it, or sent
// something that could not be decoded (see Fault).
type Snapshot struct {
	Mux        *Mux
	Twist      *Twist
	Network    *Network
	Hunter     *Hunter
	EStop      *EStop
	Resources  *Resources
	GPUs       []*GPU
	Disks      []*DiskPartition
	Interfaces []*NetInterface
	Control    *Control
	Alerts     []*Alert

	RemoteEnabled    *bool
	StationConnected *bool
	VehicleAge       *float64 // seconds since last vehicle packet, -1 if never
	ServerTime       *float64 // unix seconds

	// ReceivedAt is when the frame was parsed locally.
	ReceivedAt time.Time

	faults map[string]error
}

// Mux is the mode-arbitration state.
type Mux struct {
	RequestedMode *int  `json:"requested_mode"`
	ActiveSource  *int  `json:"active_source"`
	RemoteEnabled *bool `json:"remote_enabled"`
	NavActive     *bool `json:"nav_active"`
	TeleopActive  *bool `json:"teleop_active"`
	FinalActive   *bool `json:"final_active"`
}

// Twist holds the velocity commands seen at each stage of the mux.
type Twist struct {
	NavLX    *float64 `json:"nav_lx"`
	NavAZ    *float64 `json:"nav_az"`
	TeleopLX *float64 `json:"teleop_lx"`
	TeleopAZ *float64 `json:"teleop_az"`
	FinalLX  *float64 `json:"final_lx"`
	FinalAZ  *float64 `json:"final_az"`
}

// Network is the vehicle link health.
type Network struct {
	Connected     *bool    `json:"connected"`
	StatusCode    *int     `json:"status_code"`
	RTTMs         *float64 `json:"rtt_ms"`
	BandwidthMbps *float64 `json:"bandwidth_mbps"`
	CameraMbps    *float64 `json:"bw_camera_mbps"`
	TelemetryMbps *float64 `json:"bw_telemetry_mbps"`
}

// Hunter is the vehicle drive state.
type Hunter struct {
	LinearVel      *float64 `json:"linear_vel"`
	SteeringAngle  *float64 `json:"steering_angle"` // radians
	VehicleState   *int     `json:"vehicle_state"`
	ControlMode    *int     `json:"control_mode"`
	ErrorCode      *int     `json:"error_code"`
	BatteryVoltage *float64 `json:"battery_voltage"`
}

// EStop is the emergency-stop state reported by the vehicle.
type EStop struct {
	IsEStop    *bool `json:"is_estop"`
	BridgeFlag *int  `json:"bridge_flag"`
	MuxFlag    *int  `json:"mux_flag"`
}

// Resources is the vehicle host resource usage.
type Resources struct {
	CPUPhys         *int     `json:"cpu_phys"`
	CPULogic        *int     `json:"cpu_logic"`
	CPUUsage        *float64 `json:"cpu_usage"`
	CPUTemp         *float64 `json:"cpu_temp"`
	CPULoad         *float64 `json:"cpu_load"`
	RAMTotal        *float64 `json:"ram_total"` // bytes
	RAMUsed         *float64 `json:"ram_used"`  // bytes
	NetTotalIfaces  *int     `json:"net_total_ifaces"`
	NetActiveIfaces *int     `json:"net_active_ifaces"`
	NetDownIfaces   *int     `json:"net_down_ifaces"`
}

// GPU is one accelerator device.
type GPU struct {
	Name     *string  `json:"name"`
	Usage    *float64 `json:"gpu_usage"`
	MemUsed  *float64 `json:"gpu_mem_used"`  // MiB
	MemTotal *float64 `json:"gpu_mem_total"` // MiB
	Temp     *float64 `json:"gpu_temp"`
	Power    *float64 `json:"gpu_power"` // watts
}

// DiskPartition is one mounted filesystem.
type DiskPartition struct {
	Mountpoint *string  `json:"mountpoint"`
	TotalBytes *float64 `json:"total_bytes"`
	UsedBytes  *float64 `json:"used_bytes"`
	Percent    *float64 `json:"percent"`
	Accessible *bool    `json:"accessible"`
}

// NetInterface is one network interface on the vehicle host.
type NetInterface struct {
	Name      *string  `json:"name"`
	IsUp      *bool    `json:"is_up"`
	SpeedMbps *float64 `json:"speed_mbps"`
	InBps     *float64 `json:"in_bps"`
	OutBps    *float64 `json:"out_bps"`
}

// Control is the operator-side control state as the backend last recorded it.
type Control struct {
	Mode              *int     `json:"mode"`
	EStop             *bool    `json:"estop"`
	LinearX           *float64 `json:"linear_x"`
	AngularZ          *float64 `json:"angular_z"`
	RawSpeed          *float64 `json:"raw_speed"`
	RawSteer          *float64 `json:"raw_steer"`
	JoystickConnected *bool    `json:"joystick_connected"`
}

// Alert is a backend validation message.
type Alert struct {
	Level   *string `json:"level"`
	Message *string `json:"message"`
}

// Fault returns the decode error recorded for a top-level key, or nil.
func (s *Snapshot) Fault(key string) error {
	if s == nil {
		return nil
	}
	return s.faults[key]
}

// Faults returns the keys that failed to decode.
func (s *Snapshot) Faults() map[string]error {
	out := make(map[string]error, len(s.faults))
	for k, v := range s.faults {
		out[k] = v
	}
	return out
}
