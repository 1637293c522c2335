package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/delonghi-comfort/comfortd/plugins/delonghi"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	_ = godotenv.Load()

	args := os.Args[1:]
	out := outputMode{}
	if args[0] == "-json" {
		out.json = true
		args = args[1:]
		if len(args) == 0 {
			usage()
			os.Exit(2)
		}
	}

	cfg, err := delonghi.LoadConfigFromEnv()
	if err != nil {
		fatal("config", err)
	}
	client, err := delonghi.NewClient(cfg)
	if err != nil {
		fatal("client", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	switch args[0] {
	case "login":
		loginCmd(ctx, client)
	case "info":
		infoCmd(ctx, client, out)
	case "state":
		stateCmd(ctx, client, out)
	case "properties":
		propertiesCmd(ctx, client, out)
	case "set":
		setCmd(ctx, client, args[1:])
	default:
		usage()
		os.Exit(2)
	}
}

func loginCmd(ctx context.Context, client *delonghi.Client) {
	ok, err := client.Authenticate(ctx)
	if err != nil {
		fatal("login", err)
	}
	if !ok {
		fatal("login", fmt.Errorf("no token issued"))
	}
	fmt.Println("ok")
}

func infoCmd(ctx context.Context, client *delonghi.Client, out outputMode) {
	info, err := client.DeviceInfo(ctx)
	if err != nil {
		fatal("info", err)
	}
	if out.json {
		out.printJSON(info)
		return
	}
	out.table([][]string{
		{"dsn", info.DSN},
		{"name", info.ProductName},
		{"model", info.ApplianceModel},
		{"firmware", info.FirmwareVersion},
		{"hardware", info.HardwareVersion},
	})
}

func stateCmd(ctx context.Context, client *delonghi.Client, out outputMode) {
	state, err := client.State(ctx)
	if err != nil {
		fatal("state", err)
	}
	if out.json {
		out.printJSON(state)
		return
	}
	out.table([][]string{
		{"status", state.Status.String()},
		{"mode", state.Mode.String()},
		{"humidity", strconv.Itoa(state.CurrentHumidity)},
		{"setpoint", strconv.Itoa(state.HumiditySetpoint)},
		{"speed", strconv.Itoa(state.CurrentSpeed)},
		{"rotation_speed", strconv.Itoa(state.RotationSpeed)},
		{"room_temp", strconv.Itoa(state.RoomTemp)},
		{"heat_exchanger_temp", strconv.Itoa(state.HeatExchangerTemp)},
		{"filter_life", strconv.Itoa(state.FilterLife)},
		{"filter_status", state.FilterStatus.String()},
		{"filter_change_alarm", state.FilterChangeAlarm.String()},
		{"swing", state.Swing.String()},
		{"eco", state.Eco.String()},
	})
}

func propertiesCmd(ctx context.Context, client *delonghi.Client, out outputMode) {
	properties, err := client.Properties(ctx)
	if err != nil {
		fatal("properties", err)
	}
	if out.json {
		out.printJSON(properties)
		return
	}
	rows := make([][]string, 0, len(properties))
	for _, property := range properties {
		rows = append(rows, []string{property.Name, fmt.Sprintf("%v", property.Value)})
	}
	out.table(rows)
}

func setCmd(ctx context.Context, client *delonghi.Client, args []string) {
	if len(args) != 2 {
		fatal("set", fmt.Errorf("usage: set status|humidity|mode|swing|eco <value>"))
	}
	what, value := args[0], args[1]

	var err error
	switch what {
	case "status":
		var status delonghi.Status
		if status, err = delonghi.StatusFromName(value); err == nil {
			_, err = client.SetStatus(ctx, status)
		}
	case "humidity":
		var setpoint int
		if setpoint, err = strconv.Atoi(value); err == nil {
			_, err = client.SetHumidity(ctx, setpoint)
		}
	case "mode":
		var mode delonghi.Mode
		if mode, err = delonghi.ModeFromName(value); err == nil {
			_, err = client.SetMode(ctx, mode)
		}
	case "swing":
		var state delonghi.OffOnStatus
		if state, err = delonghi.OffOnFromName(value); err == nil {
			_, err = client.SetSwing(ctx, state)
		}
	case "eco":
		var state delonghi.OffOnStatus
		if state, err = delonghi.OffOnFromName(value); err == nil {
			_, err = client.SetEco(ctx, state)
		}
	default:
		fatal("set", fmt.Errorf("unknown target %q", what))
	}
	if err != nil {
		fatal("set "+what, err)
	}
	fmt.Println("ok")
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: comfort-cli [-json] <command>

commands:
  login                  verify the account credentials
  info                   show device identity
  state                  show the live appliance state
  properties             dump the raw property list
  set status ON|OFF
  set humidity <percent>
  set mode DEHUMIDIFY|DRY_CLOTHES|PURIFIER|REAL_FEEL
  set swing ON|OFF
  set eco ON|OFF

credentials come from COMFORTD_EMAIL, COMFORTD_PASSWORD and
COMFORTD_LANGUAGE (or a .env file).`)
}

func fatal(what string, err error) {
	fmt.Fprintf(os.Stderr, "%s: %v\n", what, err)
	os.Exit(1)
}
