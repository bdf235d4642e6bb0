package orrery

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/soniakeys/meeus/v3/julian"
	"github.com/spf13/viper"
)

var (
	cfgLoaded = false
	config    = _orreryconfig{}
)

// _orreryconfig is a "hidden" struct, just use `orreryConfig`
type _orreryconfig struct {
	outputDir string
}

// orreryConfig returns the runtime configuration. Without an ORRERY_CONFIG
// environment variable every export lands in the working directory.
func orreryConfig() _orreryconfig {
	if cfgLoaded {
		return config
	}
	confPath := os.Getenv("ORRERY_CONFIG")
	if confPath == "" {
		cfgLoaded = true
		config = _orreryconfig{outputDir: "."}
		return config
	}
	v := viper.New()
	v.SetConfigName("conf")
	v.AddConfigPath(confPath)
	if err := v.ReadInConfig(); err != nil {
		panic(fmt.Errorf("%s/conf.toml not found", confPath))
	}
	outputDir := v.GetString("general.output_path")
	if outputDir == "" {
		outputDir = "."
	}
	cfgLoaded = true
	config = _orreryconfig{outputDir: outputDir}
	return config
}

// ParseSimulationMode converts a scenario string into a dispatch mode.
func ParseSimulationMode(mode string) (SimulationMode, error) {
	switch strings.ToLower(mode) {
	case "", "keplerian":
		return Keplerian, nil
	case "n-body", "nbody":
		return NBody, nil
	}
	return Keplerian, fmt.Errorf("could not understand simulation mode `%s`", mode)
}

// scenarioEpoch reads a time key which may hold either a Julian date or a
// timestamp. An absent key means J2000.
func scenarioEpoch(v *viper.Viper, key string) time.Time {
	jde := v.GetFloat64(key)
	if jde == 0 {
		if dt := v.GetTime(key); !dt.IsZero() {
			return dt
		}
		return julian.JDToTime(J2000)
	}
	return julian.JDToTime(jde)
}

// LoadScenario builds a system from a TOML scenario file: the clock epoch
// and time scale, the dispatch mode and relativity toggle, the central body,
// then each bodies.N entry either by catalog name or with explicit elements.
func LoadScenario(path string) (*System, error) {
	v := viper.New()
	dir, base := filepath.Split(strings.TrimSuffix(path, ".toml"))
	if dir == "" {
		dir = "."
	}
	v.AddConfigPath(dir)
	v.SetConfigName(base)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("%s: %s", path, err)
	}

	clock := NewClock(scenarioEpoch(v, "time.start"))
	if v.IsSet("time.scale") {
		clock.SetTimeScale(v.GetFloat64("time.scale"))
	}
	sys := NewSystem(clock)

	if name := v.GetString("simulation.central"); name != "" {
		body, err := BodyFromString(name)
		if err != nil {
			return nil, err
		}
		if err := sys.RegisterCentral(body); err != nil {
			return nil, err
		}
	}

	for n := 0; v.IsSet(fmt.Sprintf("bodies.%d", n)); n++ {
		key := fmt.Sprintf("bodies.%d", n)
		if name := v.GetString(key + ".catalog"); name != "" {
			body, err := BodyFromString(name)
			if err != nil {
				return nil, fmt.Errorf("bodies.%d: %s", n, err)
			}
			els, found := ElementsFromSecular(body.Name)
			if !found {
				return nil, fmt.Errorf("bodies.%d: no secular row for catalog body %s", n, body.Name)
			}
			if err := sys.RegisterKeplerian(body, els); err != nil {
				return nil, fmt.Errorf("bodies.%d: %s", n, err)
			}
			continue
		}
		body := CelestialBody{
			Name:           v.GetString(key + ".name"),
			Radius:         v.GetFloat64(key + ".radius"),
			Mass:           v.GetFloat64(key + ".mass"),
			Tilt:           v.GetFloat64(key + ".tilt"),
			RotationPeriod: v.GetFloat64(key + ".rotation"),
			SOI:            v.GetFloat64(key + ".soi"),
		}
		els, err := NewOrbitalElements(v.GetFloat64(key+".sma"), v.GetFloat64(key+".ecc"),
			v.GetFloat64(key+".inc"), v.GetFloat64(key+".node"), v.GetFloat64(key+".argPeri"),
			Deg2rad(v.GetFloat64(key+".anomaly")), v.GetFloat64(key+".period"))
		if err != nil {
			return nil, fmt.Errorf("bodies.%d: %s", n, err)
		}
		if err := sys.RegisterKeplerian(body, els); err != nil {
			return nil, fmt.Errorf("bodies.%d: %s", n, err)
		}
	}

	mode, err := ParseSimulationMode(v.GetString("simulation.mode"))
	if err != nil {
		return nil, err
	}
	sys.SetMode(mode)
	sys.SetRelativistic(v.GetBool("simulation.relativistic"))
	return sys, nil
}
