/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type Config struct {
	bind           string
	port           int
	companionPort  int
	profile        bool
	verbose        bool
	version        bool
	keyboard       bool
	tick           time.Duration
	connTimeout    time.Duration
	window         int
	sampleInterval time.Duration
	startThreshold float64
	stopThreshold  float64
	sensor         string
	axis           string
	i2cBus         string
	i2cAddr        int
	serialPort     string
	serialBaud     int
	ssid           string
	passphrase     string
	orientation    string
	brightness     int
	seed           uint64
}

func (c *Config) validate() error {
	if c.port < 1 || c.port > 65535 {
		return fmt.Errorf("invalid port (must be between 1-65535 inclusive): %d", c.port)
	}
	if c.companionPort < 0 || c.companionPort > 65535 {
		return fmt.Errorf("invalid companion port (must be between 0-65535 inclusive): %d", c.companionPort)
	}
	if c.companionPort != 0 && c.companionPort == c.port {
		return errors.New("--port and --companion-port must differ")
	}
	if c.tick <= 0 {
		return fmt.Errorf("invalid tick (must be positive): %s", c.tick)
	}
	if c.connTimeout <= 0 {
		return fmt.Errorf("invalid connection timeout (must be positive): %s", c.connTimeout)
	}
	if c.window < 1 {
		return fmt.Errorf("invalid smoothing window (must be at least 1): %d", c.window)
	}
	if c.sampleInterval < 0 {
		return fmt.Errorf("invalid sample interval (must not be negative): %s", c.sampleInterval)
	}
	if c.stopThreshold < 0 || c.startThreshold <= c.stopThreshold {
		return fmt.Errorf("invalid thresholds (need 0 <= stop < start): start %g, stop %g", c.startThreshold, c.stopThreshold)
	}
	switch c.sensor {
	case sensorSim, sensorMPU6886, sensorADXL345, sensorSerial:
	default:
		return fmt.Errorf("invalid sensor (must be one of sim, mpu6886, adxl345, serial): %q", c.sensor)
	}
	if _, err := parseAxis(c.axis); err != nil {
		return err
	}
	if c.i2cAddr < 0 || c.i2cAddr > 0x7f {
		return fmt.Errorf("invalid i2c address (must be between 0x00-0x7f inclusive): %#x", c.i2cAddr)
	}
	if c.sensor == sensorSerial && c.serialPort == "" {
		return errors.New("--serial-port is required with --sensor=serial")
	}
	if c.ssid == "" {
		return errors.New("--ssid must not be empty")
	}
	if n := len(c.passphrase); n != 0 && (n < 8 || n > 63) {
		return fmt.Errorf("invalid passphrase (must be empty or 8-63 characters): %d characters", n)
	}
	if _, err := parseOrientation(c.orientation); err != nil {
		return err
	}
	if c.brightness < minBright || c.brightness > maxBright {
		return fmt.Errorf("invalid brightness (must be between %d-%d inclusive): %d", minBright, maxBright, c.brightness)
	}
	return nil
}

func parseAxis(s string) (Axis, error) {
	switch strings.ToLower(s) {
	case "x":
		return AxisX, nil
	case "y":
		return AxisY, nil
	default:
		return 0, fmt.Errorf("invalid axis (must be x or y): %q", s)
	}
}

func (c *Config) machineConfig() MachineConfig {
	m := defaultMachineConfig()
	m.StartThreshold = c.startThreshold
	m.StopThreshold = c.stopThreshold
	return m
}

func newCmd(cfg *Config) *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("DICEBOX")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:           "dicebox",
		Short:         "Shake-to-roll electronic dice, with a tiny web page showing the last roll.",
		Args:          cobra.ExactArgs(0),
		SilenceErrors: true,
		Version:       releaseVersion,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.validate(); err != nil {
				return err
			}
			return ServeDevice(cmd.Context(), cfg, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}

	fs := cmd.Flags()

	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	fs.StringVarP(&cfg.bind, "bind", "b", "0.0.0.0", "address to bind to (env: DICEBOX_BIND)")
	fs.IntVarP(&cfg.port, "port", "p", 8080, "port the dice page is served on (env: DICEBOX_PORT)")
	fs.IntVar(&cfg.companionPort, "companion-port", 8081, "port for the companion control server, 0 to disable (env: DICEBOX_COMPANION_PORT)")
	fs.BoolVar(&cfg.profile, "profile", false, "register net/http/pprof handlers on the companion server (env: DICEBOX_PROFILE)")
	fs.BoolVarP(&cfg.verbose, "verbose", "v", false, "display additional output (env: DICEBOX_VERBOSE)")
	fs.BoolVarP(&cfg.version, "version", "V", false, "display version and exit (env: DICEBOX_VERSION)")
	fs.BoolVar(&cfg.keyboard, "keyboard", true, "read button presses from stdin (env: DICEBOX_KEYBOARD)")
	fs.DurationVar(&cfg.tick, "tick", 20*time.Millisecond, "period of the control loop (env: DICEBOX_TICK)")
	fs.DurationVar(&cfg.connTimeout, "conn-timeout", defaultConnTimeout, "time before a web client is disconnected (env: DICEBOX_CONN_TIMEOUT)")
	fs.IntVar(&cfg.window, "window", defaultShakeWindow, "number of samples in the shake moving average (env: DICEBOX_WINDOW)")
	fs.DurationVar(&cfg.sampleInterval, "sample-interval", defaultSampleInterval, "time between the two readings of one shake sample (env: DICEBOX_SAMPLE_INTERVAL)")
	fs.Float64Var(&cfg.startThreshold, "start-threshold", 3.0, "shake level that starts rolling (env: DICEBOX_START_THRESHOLD)")
	fs.Float64Var(&cfg.stopThreshold, "stop-threshold", 1.0, "shake level that stops rolling (env: DICEBOX_STOP_THRESHOLD)")
	fs.StringVar(&cfg.sensor, "sensor", sensorSim, "accelerometer: sim, mpu6886, adxl345 or serial (env: DICEBOX_SENSOR)")
	fs.StringVar(&cfg.axis, "axis", "x", "accelerometer axis treated as horizontal (env: DICEBOX_AXIS)")
	fs.StringVar(&cfg.i2cBus, "i2c-bus", "/dev/i2c-1", "i2c-dev bus of the accelerometer (env: DICEBOX_I2C_BUS)")
	fs.IntVar(&cfg.i2cAddr, "i2c-addr", 0, "i2c address of the accelerometer, 0 for the driver default (env: DICEBOX_I2C_ADDR)")
	fs.StringVar(&cfg.serialPort, "serial-port", "", "serial device of an IMU bridge (env: DICEBOX_SERIAL_PORT)")
	fs.IntVar(&cfg.serialBaud, "serial-baud", 115200, "baud rate of the IMU bridge (env: DICEBOX_SERIAL_BAUD)")
	fs.StringVar(&cfg.ssid, "ssid", "M5StickC-plus", "name of the device network, for the join QR code (env: DICEBOX_SSID)")
	fs.StringVar(&cfg.passphrase, "passphrase", "1234567890", "passphrase of the device network (env: DICEBOX_PASSPHRASE)")
	fs.StringVar(&cfg.orientation, "orientation", "right", "screen orientation at boot: right or left (env: DICEBOX_ORIENTATION)")
	fs.IntVar(&cfg.brightness, "brightness", 10, "screen brightness, 7-15 (env: DICEBOX_BRIGHTNESS)")
	fs.Uint64Var(&cfg.seed, "seed", 0, "seed for the dice, 0 for a random seed (env: DICEBOX_SEED)")

	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})
	cmd.SetVersionTemplate("dicebox v{{.Version}}\n")

	cmd.SilenceErrors = true
	cmd.SilenceUsage = true

	return cmd
}
