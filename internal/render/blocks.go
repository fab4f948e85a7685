package render

import (
	"fmt"
	"strings"

	"github.com/rileyhilliard/nevconsole/internal/snapshot"
)

// Block names, in display order.
const (
	BlockMode         = "mode"
	BlockDrive        = "drive"
	BlockTwist        = "twist"
	BlockControl      = "control"
	BlockEStop        = "estop"
	BlockNetwork      = "network"
	BlockLink         = "link"
	BlockResources    = "resources"
	BlockAccelerators = "accelerators"
	BlockDisks        = "disks"
	BlockInterfaces   = "interfaces"
	BlockAlerts       = "alerts"
)

type blockSpec struct {
	name  string
	title string
	keys  []string // a fault on any of these blanks the block
	build func(*snapshot.Snapshot) ([]Row, error)
}

var blockSet = []blockSpec{
	{BlockMode, "Mode", []string{snapshot.KeyMux}, modeRows},
	{BlockDrive, "Drive", []string{snapshot.KeyHunter}, driveRows},
	{BlockTwist, "Twist", []string{snapshot.KeyTwist}, twistRows},
	{BlockControl, "Control", []string{snapshot.KeyControl}, controlRows},
	{BlockEStop, "E-Stop", []string{snapshot.KeyEStop}, estopRows},
	{BlockNetwork, "Network", []string{snapshot.KeyNetwork}, networkRows},
	{BlockLink, "Link", nil, linkRows},
	{BlockResources, "Resources", []string{snapshot.KeyResources}, resourceRows},
	{BlockAccelerators, "Accelerators", []string{snapshot.KeyGPUs}, acceleratorRows},
	{BlockDisks, "Disks", []string{snapshot.KeyDisks}, diskRows},
	{BlockInterfaces, "Interfaces", []string{snapshot.KeyInterfaces}, interfaceRows},
	{BlockAlerts, "Alerts", []string{snapshot.KeyAlerts}, alertRows},
}

// BlockNames returns the block names in display order.
func BlockNames() []string {
	names := make([]string, len(blockSet))
	for i, b := range blockSet {
		names[i] = b.name
	}
	return names
}

var (
	errAbsent = errNoData{reason: "not reported"}
	errEmpty  = errNoData{reason: "none reported"}
)

func modeRows(s *snapshot.Snapshot) ([]Row, error) {
	m := s.Mux
	if m == nil {
		return nil, errAbsent
	}
	return []Row{
		codeRow("Requested", m.RequestedMode, ModeNames, nil),
		codeRow("Source", m.ActiveSource, SourceNames, nil),
		statusRow("Remote", m.RemoteEnabled, EnabledDisabled),
		statusRow("Nav", m.NavActive, OnOff),
		statusRow("Teleop", m.TeleopActive, OnOff),
		statusRow("Output", m.FinalActive, OnOff),
	}, nil
}

func driveRows(s *snapshot.Snapshot) ([]Row, error) {
	h := s.Hunter
	if h == nil {
		return nil, errAbsent
	}
	rows := []Row{
		valueRow("Speed", h.LinearVel, func(v float64) string { return Sgn(v) + " m/s" }),
		valueRow("Steering", h.SteeringAngle, func(v float64) string { return Degrees(v) + "°" }),
		intRow("State", h.VehicleState),
		intRow("Ctrl mode", h.ControlMode),
	}

	errRow := Row{Label: "Error", Value: Missing}
	if h.ErrorCode != nil {
		if *h.ErrorCode == 0 {
			errRow.Value = "none"
		} else {
			errRow.Value = fmt.Sprintf("0x%04X", *h.ErrorCode)
			errRow.Severity = Critical
		}
	}
	rows = append(rows, errRow)

	battery := Row{Label: "Battery", Value: Missing}
	if h.BatteryVoltage != nil {
		battery.Value = Fixed(*h.BatteryVoltage, 1) + " V"
		battery.Severity = ClassifyBattery(*h.BatteryVoltage)
	}
	return append(rows, battery), nil
}

func twistRows(s *snapshot.Snapshot) ([]Row, error) {
	t := s.Twist
	if t == nil {
		return nil, errAbsent
	}
	return []Row{
		pairRow("Nav", t.NavLX, t.NavAZ),
		pairRow("Teleop", t.TeleopLX, t.TeleopAZ),
		pairRow("Final", t.FinalLX, t.FinalAZ),
	}, nil
}

func controlRows(s *snapshot.Snapshot) ([]Row, error) {
	c := s.Control
	if c == nil {
		return nil, errAbsent
	}
	whole := func(v float64) string { return Fixed(v, 0) }
	return []Row{
		codeRow("Mode", c.Mode, ModeNames, nil),
		statusRow("E-stop", c.EStop, ActiveClear),
		valueRow("Linear", c.LinearX, Sgn),
		valueRow("Angular", c.AngularZ, Sgn),
		valueRow("Raw speed", c.RawSpeed, whole),
		valueRow("Raw steer", c.RawSteer, whole),
		statusRow("Joystick", c.JoystickConnected, ConnectedOffline),
	}, nil
}

func estopRows(s *snapshot.Snapshot) ([]Row, error) {
	e := s.EStop
	if e == nil {
		return nil, errAbsent
	}
	nonZero := func(sev Severity) func(int) Severity {
		return func(code int) Severity {
			if code == 0 {
				return Normal
			}
			return sev
		}
	}
	return []Row{
		statusRow("Vehicle", e.IsEStop, ActiveClear),
		codeRow("Bridge", e.BridgeFlag, BridgeFlagNames, nonZero(Critical)),
		codeRow("Mux", e.MuxFlag, MuxFlagNames, nonZero(Warning)),
	}, nil
}

func networkRows(s *snapshot.Snapshot) ([]Row, error) {
	n := s.Network
	if n == nil {
		return nil, errAbsent
	}
	mbps := func(v float64) string { return Fixed(v, 2) + " Mbps" }

	rtt := Row{Label: "RTT", Value: Missing}
	if n.RTTMs != nil {
		rtt.Value = Fixed(*n.RTTMs, 1) + " ms"
		rtt.Severity = RTT.Classify(*n.RTTMs)
	}

	return []Row{
		statusRow("Vehicle", n.Connected, ConnectedOffline),
		codeRow("Status", n.StatusCode, NetworkStatusNames, networkStatusSeverity),
		rtt,
		valueRow("Bandwidth", n.BandwidthMbps, mbps),
		valueRow("Camera", n.CameraMbps, mbps),
		valueRow("Telemetry", n.TelemetryMbps, mbps),
	}, nil
}

func linkRows(s *snapshot.Snapshot) ([]Row, error) {
	if s.StationConnected == nil && s.RemoteEnabled == nil && s.VehicleAge == nil {
		return nil, errAbsent
	}
	var rows []Row
	if s.Fault(snapshot.KeyStationConnected) == nil {
		rows = append(rows, statusRow("Station", s.StationConnected, ConnectedOffline))
	}
	if s.Fault(snapshot.KeyRemoteEnabled) == nil {
		rows = append(rows, statusRow("Remote", s.RemoteEnabled, EnabledDisabled))
	}
	if s.Fault(snapshot.KeyVehicleAge) == nil {
		age := Row{Label: "Vehicle age", Value: Missing}
		if s.VehicleAge != nil {
			switch v := *s.VehicleAge; {
			case v < 0:
				age.Value = "never"
				age.Severity = Critical
			default:
				age.Value = Fixed(v, 1) + " s"
				age.Severity = VehicleAge.Classify(v)
			}
		}
		rows = append(rows, age)
	}
	return rows, nil
}

func resourceRows(s *snapshot.Snapshot) ([]Row, error) {
	r := s.Resources
	if r == nil {
		return nil, errAbsent
	}

	rows := []Row{metricRow("CPU", r.CPUUsage, CPUUsage)}

	temp := Row{Label: "CPU temp", Value: Missing}
	if r.CPUTemp != nil {
		temp.Value = Fixed(*r.CPUTemp, 0) + "°C"
		temp.Severity = CPUTemp.Classify(*r.CPUTemp)
	}
	rows = append(rows,
		temp,
		valueRow("Load", r.CPULoad, func(v float64) string { return Fixed(v, 2) }),
		Row{Label: "Cores", Value: ratio(r.CPUPhys, r.CPULogic, "phys/logic")},
	)

	mem := Row{Label: "Memory", Value: Missing, Kind: KindMetric}
	if r.RAMUsed != nil && r.RAMTotal != nil && *r.RAMTotal > 0 {
		pct := *r.RAMUsed / *r.RAMTotal * 100
		mem.Value = fmt.Sprintf("%s/%s GB", GB(*r.RAMUsed), GB(*r.RAMTotal))
		mem.Gauge = pct
		mem.Severity = MemoryUsage.Classify(pct)
	}
	rows = append(rows, mem)

	ifaces := Row{Label: "Ifaces", Value: ratio(r.NetActiveIfaces, r.NetTotalIfaces, "up")}
	if r.NetDownIfaces != nil && *r.NetDownIfaces > 0 {
		ifaces.Value += fmt.Sprintf(", %d down", *r.NetDownIfaces)
		ifaces.Severity = Warning
	}
	return append(rows, ifaces), nil
}

func acceleratorRows(s *snapshot.Snapshot) ([]Row, error) {
	if s.GPUs == nil {
		return nil, errAbsent
	}
	var rows []Row
	for i, g := range s.GPUs {
		if g == nil {
			continue
		}
		// The backend never sends a name, so unnamed devices keep their index.
		name := fmt.Sprintf("gpu%d", i)
		if g.Name != nil && *g.Name != "" {
			name = *g.Name
		}
		rows = append(rows, metricRow(name, g.Usage, GPUUsage))

		detail := Row{Label: name + " mem", Value: Missing}
		if g.MemUsed != nil && g.MemTotal != nil {
			detail.Value = fmt.Sprintf("%s/%s MiB", Fixed(*g.MemUsed, 0), Fixed(*g.MemTotal, 0))
		}
		rows = append(rows, detail)

		if g.Temp != nil {
			rows = append(rows, Row{
				Label:    name + " temp",
				Value:    Fixed(*g.Temp, 0) + "°C",
				Severity: GPUTemp.Classify(*g.Temp),
			})
		}
		if g.Power != nil {
			rows = append(rows, Row{Label: name + " power", Value: Fixed(*g.Power, 0) + " W"})
		}
	}
	if len(rows) == 0 {
		return nil, errEmpty
	}
	return rows, nil
}

func diskRows(s *snapshot.Snapshot) ([]Row, error) {
	if s.Disks == nil {
		return nil, errAbsent
	}
	var rows []Row
	for _, d := range s.Disks {
		if d == nil || d.Mountpoint == nil || *d.Mountpoint == "" {
			continue
		}
		row := Row{Label: *d.Mountpoint, Value: Missing, Kind: KindMetric}
		if d.Accessible != nil && !*d.Accessible {
			row.Kind = KindValue
			row.Value = "inaccessible"
			row.Severity = Warning
			rows = append(rows, row)
			continue
		}
		if d.UsedBytes != nil && d.TotalBytes != nil {
			row.Value = fmt.Sprintf("%s/%s GB", GB(*d.UsedBytes), GB(*d.TotalBytes))
		}
		pct := d.Percent
		if pct == nil && d.UsedBytes != nil && d.TotalBytes != nil && *d.TotalBytes > 0 {
			p := *d.UsedBytes / *d.TotalBytes * 100
			pct = &p
		}
		if pct != nil {
			row.Gauge = *pct
			row.Severity = DiskUsage.Classify(*pct)
		}
		rows = append(rows, row)
	}
	if len(rows) == 0 {
		return nil, errEmpty
	}
	return rows, nil
}

func interfaceRows(s *snapshot.Snapshot) ([]Row, error) {
	if s.Interfaces == nil {
		return nil, errAbsent
	}
	var rows []Row
	for _, n := range s.Interfaces {
		if n == nil || n.Name == nil || *n.Name == "" {
			continue
		}
		row := statusRow(*n.Name, n.IsUp, UpDown)
		var parts []string
		if row.Value != Missing {
			parts = append(parts, row.Value)
		}
		if n.SpeedMbps != nil && *n.SpeedMbps > 0 {
			parts = append(parts, Fixed(*n.SpeedMbps, 0)+"Mb")
		}
		if n.InBps != nil {
			parts = append(parts, "rx "+Rate(*n.InBps))
		}
		if n.OutBps != nil {
			parts = append(parts, "tx "+Rate(*n.OutBps))
		}
		if len(parts) > 0 {
			row.Value = strings.Join(parts, " ")
		}
		rows = append(rows, row)
	}
	if len(rows) == 0 {
		return nil, errEmpty
	}
	return rows, nil
}

func alertRows(s *snapshot.Snapshot) ([]Row, error) {
	if s.Alerts == nil {
		return nil, errAbsent
	}
	var rows []Row
	for _, a := range s.Alerts {
		if a == nil || a.Message == nil || *a.Message == "" {
			continue
		}
		level := "ok"
		if a.Level != nil {
			level = strings.ToLower(*a.Level)
		}
		rows = append(rows, Row{
			Label:    strings.ToUpper(level),
			Value:    *a.Message,
			Severity: alertSeverity(level),
		})
	}
	if len(rows) == 0 {
		rows = []Row{{Label: "OK", Value: "no active alerts"}}
	}
	return rows, nil
}

func valueRow(label string, v *float64, format func(float64) string) Row {
	if v == nil {
		return Row{Label: label, Value: Missing}
	}
	return Row{Label: label, Value: format(*v)}
}

func intRow(label string, v *int) Row {
	if v == nil {
		return Row{Label: label, Value: Missing}
	}
	return Row{Label: label, Value: fmt.Sprintf("%d", *v)}
}

func codeRow(label string, v *int, table map[int]string, grade func(int) Severity) Row {
	if v == nil {
		return Row{Label: label, Value: Missing}
	}
	row := Row{Label: label, Value: Code(table, *v)}
	if grade != nil {
		row.Severity = grade(*v)
	}
	return row
}

func statusRow(label string, b *bool, ind Indicator) Row {
	if b == nil {
		return Row{Label: label, Value: Missing, Kind: KindStatus}
	}
	value, sev := ind.Apply(*b)
	return Row{Label: label, Value: value, Severity: sev, Kind: KindStatus, Active: *b}
}

func metricRow(label string, v *float64, t Threshold) Row {
	if v == nil {
		return Row{Label: label, Value: Missing, Kind: KindMetric}
	}
	return Row{
		Label:    label,
		Value:    Percent(*v),
		Severity: t.Classify(*v),
		Kind:     KindMetric,
		Gauge:    *v,
	}
}

func pairRow(label string, lx, az *float64) Row {
	lin, ang := Missing, Missing
	if lx != nil {
		lin = Sgn(*lx)
	}
	if az != nil {
		ang = Sgn(*az)
	}
	return Row{Label: label, Value: fmt.Sprintf("lx %s  az %s", lin, ang)}
}

func ratio(a, b *int, suffix string) string {
	if a == nil || b == nil {
		return Missing
	}
	return fmt.Sprintf("%d/%d %s", *a, *b, suffix)
}
