package delonghi

import (
	"encoding/json"
	"fmt"
)

// The device reports state as integer codes. Each code set is closed:
// decoding a value outside the table is an error, never a default.

// Status is the appliance power state.
type Status int

const (
	StatusOn  Status = 1
	StatusOff Status = 2
)

var statusNames = map[Status]string{
	StatusOn:  "ON",
	StatusOff: "OFF",
}

// Mode is the operation mode.
type Mode int

const (
	ModeDehumidify Mode = 1
	ModeDryClothes Mode = 2
	ModePurifier   Mode = 3
	ModeRealFeel   Mode = 100
)

var modeNames = map[Mode]string{
	ModeDehumidify: "DEHUMIDIFY",
	ModeDryClothes: "DRY_CLOTHES",
	ModePurifier:   "PURIFIER",
	ModeRealFeel:   "REAL_FEEL",
}

// OffOnStatus is the state of toggle features such as swing and eco.
type OffOnStatus int

const (
	Off OffOnStatus = 0
	On  OffOnStatus = 1
)

var offOnNames = map[OffOnStatus]string{
	Off: "OFF",
	On:  "ON",
}

// FilterStatus is the air-filter condition.
type FilterStatus int

const (
	FilterGood             FilterStatus = 1
	FilterNeedsReplacement FilterStatus = 2
)

var filterStatusNames = map[FilterStatus]string{
	FilterGood:             "GOOD",
	FilterNeedsReplacement: "NEEDS_REPLACEMENT",
}

func (s Status) String() string       { return statusNames[s] }
func (m Mode) String() string         { return modeNames[m] }
func (s OffOnStatus) String() string  { return offOnNames[s] }
func (f FilterStatus) String() string { return filterStatusNames[f] }

func (s Status) Value() int       { return int(s) }
func (m Mode) Value() int         { return int(m) }
func (s OffOnStatus) Value() int  { return int(s) }
func (f FilterStatus) Value() int { return int(f) }

func StatusFromValue(value int) (Status, error) {
	status := Status(value)
	if _, ok := statusNames[status]; !ok {
		return 0, fmt.Errorf("unknown status code %d", value)
	}
	return status, nil
}

func ModeFromValue(value int) (Mode, error) {
	mode := Mode(value)
	if _, ok := modeNames[mode]; !ok {
		return 0, fmt.Errorf("unknown mode code %d", value)
	}
	return mode, nil
}

func OffOnFromValue(value int) (OffOnStatus, error) {
	status := OffOnStatus(value)
	if _, ok := offOnNames[status]; !ok {
		return 0, fmt.Errorf("unknown off/on code %d", value)
	}
	return status, nil
}

func FilterStatusFromValue(value int) (FilterStatus, error) {
	status := FilterStatus(value)
	if _, ok := filterStatusNames[status]; !ok {
		return 0, fmt.Errorf("unknown filter status code %d", value)
	}
	return status, nil
}

func StatusFromName(name string) (Status, error) {
	for status, n := range statusNames {
		if n == name {
			return status, nil
		}
	}
	return 0, fmt.Errorf("unknown status %q", name)
}

func ModeFromName(name string) (Mode, error) {
	for mode, n := range modeNames {
		if n == name {
			return mode, nil
		}
	}
	return 0, fmt.Errorf("unknown mode %q", name)
}

func OffOnFromName(name string) (OffOnStatus, error) {
	for status, n := range offOnNames {
		if n == name {
			return status, nil
		}
	}
	return 0, fmt.Errorf("unknown off/on value %q", name)
}

// Property is one entry of the device property list, flattened out of
// the API's nested "property" wrapper.
type Property struct {
	Name        string `json:"name"`
	Value       any    `json:"value"`
	BaseType    string `json:"base_type"`
	ProductName string `json:"product_name"`
}

// DeviceInfo is the static identity of the managed appliance.
type DeviceInfo struct {
	DSN             string `json:"dsn"`
	ProductName     string `json:"product_name"`
	ApplianceModel  string `json:"appliance_model"`
	FirmwareVersion string `json:"firmware_version"`
	HardwareVersion string `json:"hardware_version"`
}

// State is a typed snapshot of the appliance's live readings.
type State struct {
	Status            Status      `json:"status"`
	Mode              Mode        `json:"mode"`
	CurrentHumidity   int         `json:"current_humidity"`
	HumiditySetpoint  int         `json:"humidity_setpoint"`
	CurrentSpeed      int         `json:"current_speed"`
	RotationSpeed     int         `json:"rotation_speed"`
	RoomTemp          int         `json:"room_temp"`
	HeatExchangerTemp int         `json:"heat_exchanger_temp"`
	FilterLife        int         `json:"filter_life"`
	FilterStatus      FilterStatus `json:"filter_status"`
	FilterChangeAlarm OffOnStatus `json:"filter_change_alarm"`
	Swing             OffOnStatus `json:"swing"`
	Eco               OffOnStatus `json:"eco"`
}

// MarshalJSON renders enum fields by name so API and MQTT consumers see
// symbolic values rather than wire codes.
func (s State) MarshalJSON() ([]byte, error) {
	type wire struct {
		Status            string `json:"status"`
		Mode              string `json:"mode"`
		CurrentHumidity   int    `json:"current_humidity"`
		HumiditySetpoint  int    `json:"humidity_setpoint"`
		CurrentSpeed      int    `json:"current_speed"`
		RotationSpeed     int    `json:"rotation_speed"`
		RoomTemp          int    `json:"room_temp"`
		HeatExchangerTemp int    `json:"heat_exchanger_temp"`
		FilterLife        int    `json:"filter_life"`
		FilterStatus      string `json:"filter_status"`
		FilterChangeAlarm string `json:"filter_change_alarm"`
		Swing             string `json:"swing"`
		Eco               string `json:"eco"`
	}
	return json.Marshal(wire{
		Status:            s.Status.String(),
		Mode:              s.Mode.String(),
		CurrentHumidity:   s.CurrentHumidity,
		HumiditySetpoint:  s.HumiditySetpoint,
		CurrentSpeed:      s.CurrentSpeed,
		RotationSpeed:     s.RotationSpeed,
		RoomTemp:          s.RoomTemp,
		HeatExchangerTemp: s.HeatExchangerTemp,
		FilterLife:        s.FilterLife,
		FilterStatus:      s.FilterStatus.String(),
		FilterChangeAlarm: s.FilterChangeAlarm.String(),
		Swing:             s.Swing.String(),
		Eco:               s.Eco.String(),
	})
}
