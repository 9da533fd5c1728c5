package telegram

import (
	"fmt"
	"strconv"

	"github.com/juju/errors"
)

// Command is the 16-bit protocol command code.
type Command uint16

const (
	CommandExternalSensor       Command = 0x0002
	CommandZoneName             Command = 0x0004
	CommandControllerHeatDemand Command = 0x0008 // CH / DHW / boiler (F9/FA/FC)
	CommandZoneInfo             Command = 0x000A
	CommandDeviceInfo           Command = 0x0418
	CommandBatteryInfo          Command = 0x1060
	CommandDHWSettings          Command = 0x10A0
	CommandSysInfo              Command = 0x10E0
	CommandDHWTemp              Command = 0x1260
	CommandZoneWindow           Command = 0x12B0
	CommandSync                 Command = 0x1F09
	CommandDHWState             Command = 0x1F41
	CommandBinding              Command = 0x1FC9
	CommandOpenThermSetpoint    Command = 0x22D9
	CommandSetPoint             Command = 0x2309
	CommandSetpointOverride     Command = 0x2349
	CommandControllerMode       Command = 0x2E04
	CommandZoneTemp             Command = 0x30C9
	CommandZoneHeatDemand       Command = 0x3150
	CommandOpenThermBridge      Command = 0x3220
	CommandActuatorCheck        Command = 0x3B00
	CommandActuatorState        Command = 0x3EF0

	CommandUnknown Command = 0xFFFF
)

type decodeFunc func(hex string) (Payload, error)

type commandInfo struct {
	name   string
	decode decodeFunc // nil: payload not supported
}

// commandTable is the only list of known commands, resolver and payload dispatch both read it.
var commandTable = map[Command]commandInfo{
	CommandExternalSensor:       {"external_sensor", nil},
	CommandZoneName:             {"zone_name", nil},
	CommandControllerHeatDemand: {"controller_heat_demand", nil},
	CommandZoneInfo:             {"zone_info", nil},
	CommandDeviceInfo:           {"device_info", nil},
	CommandBatteryInfo:          {"battery_info", nil},
	CommandDHWSettings:          {"dhw_settings", nil},
	CommandSysInfo:              {"sys_info", nil},
	CommandDHWTemp:              {"dhw_temp", nil},
	CommandZoneWindow:           {"zone_window", nil},
	CommandSync:                 {"sync", nil},
	CommandDHWState:             {"dhw_state", nil},
	CommandBinding:              {"binding", nil},
	CommandOpenThermSetpoint:    {"opentherm_setpoint", nil},
	CommandSetPoint:             {"setpoint", nil},
	CommandSetpointOverride:     {"setpoint_override", nil},
	CommandControllerMode:       {"controller_mode", nil},
	CommandZoneTemp:             {"zone_temp", decodeZoneTempsPayload},
	CommandZoneHeatDemand:       {"zone_heat_demand", nil},
	CommandOpenThermBridge:      {"opentherm_bridge", nil},
	CommandActuatorCheck:        {"actuator_check", nil},
	CommandActuatorState:        {"actuator_state", nil},
}

func (self Command) Known() bool {
	_, ok := commandTable[self]
	return ok
}

func (self Command) String() string {
	if info, ok := commandTable[self]; ok {
		return info.name
	}
	return fmt.Sprintf("unknown(%04X)", uint16(self))
}

// ResolveCommand parses 4 hex digits and maps them to a known Command.
func ResolveCommand(code string) (Command, error) {
	x, err := strconv.ParseUint(code, 16, 16)
	if err != nil {
		return CommandUnknown, errors.Wrapf(err, ErrInvalidCommandCode, "code='%s'", code)
	}
	cmd := Command(x)
	if !cmd.Known() {
		return CommandUnknown, errors.Annotatef(ErrUnknownCommand, "code=%04X", x)
	}
	return cmd, nil
}
