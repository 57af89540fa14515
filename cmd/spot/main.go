package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/yegors/spotten/internal/briefing"
	"github.com/yegors/spotten/internal/config"
	"github.com/yegors/spotten/internal/dropzone"
	"github.com/yegors/spotten/pkg/logger"
)

func main() {
	form := briefing.DefaultFormInput()

	configPath := flag.String("config", "", "Path to configuration file (optional - built-in defaults are used when none is found)")
	logLevel := flag.String("log-level", "warn", "Log level")
	asJSON := flag.Bool("json", false, "Print the full result as JSON instead of the briefing")
	flag.StringVar(&form.DropzoneID, "dz", "", "Dropzone id or name (defaults to the first configured dropzone)")
	windFlag("fl100", "Wind at FL100 as direction/speed, e.g. 270/25", &form.WindFL100)
	windFlag("fl50", "Wind at FL50 as direction/speed", &form.WindFL50)
	windFlag("w2000", "Wind at 2000 ft as direction/speed", &form.Wind2000ft)
	windFlag("ground", "Ground wind as direction/speed", &form.WindGround)
	floatFlag("lof", "Fixed line of flight in degrees", &form.FixedLineOfFlightDeg)
	floatFlag("offtrack", "Fixed off track distance in NM, negative is left", &form.FixedOffTrackNM)
	floatFlag("greenlight", "Fixed green light distance in NM, negative is before the DZ", &form.FixedGreenLightNM)
	flag.Parse()

	log, err := logger.New(logger.Config{Level: *logLevel, Format: "console"})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	cfg, err := loadConfig(*configPath, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	catalog := dropzone.FromConfig(cfg.Dropzones)
	form.DropzoneID = resolveDropzoneID(catalog, form.DropzoneID)

	service := briefing.NewService(catalog, cfg.Calculator.Overrides(), log)
	result, err := service.Compute(form)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	fmt.Printf("%s\n\n%s", result.Dropzone.Name, result.Briefing.Text())
}

// loadConfig loads the calculator and dropzone configuration. Without a config file a single
// dropzone with default settings is used.
func loadConfig(path string, log *logger.Logger) (*config.Config, error) {
	cfg, err := config.LoadWithFallback(path)
	if err != nil {
		if path != "" {
			return nil, err
		}
		log.Debug("No configuration file found, using defaults", logger.Error(err))
		cfg = &config.Config{
			Dropzones: []config.DropzoneConfig{{ID: "default", Name: "Default dropzone"}},
		}
	}

	if err := cfg.ValidateCalculator(); err != nil {
		return nil, err
	}
	if err := cfg.ValidateDropzones(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// resolveDropzoneID accepts a dropzone id or name. Anything else is passed on unchanged so the
// default dropzone applies.
func resolveDropzoneID(catalog *dropzone.Catalog, s string) string {
	if s == "" {
		return s
	}
	if _, err := catalog.Get(s); err == nil {
		return s
	}
	if dz, err := catalog.FindByName(s); err == nil {
		return dz.ID
	}
	fmt.Fprintf(os.Stderr, "Unknown dropzone %q, using the default\n", s)
	return s
}

func windFlag(name, usage string, target *briefing.WindInput) {
	flag.Func(name, usage, func(s string) error {
		w, err := briefing.ParseWind(s)
		if err != nil {
			return err
		}
		*target = w
		return nil
	})
}

func floatFlag(name, usage string, target **float64) {
	flag.Func(name, usage, func(s string) error {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return err
		}
		*target = &v
		return nil
	})
}
