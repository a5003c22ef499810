package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/cocosip/go-dicom-reader/format"
	"github.com/cocosip/go-dicom-reader/progress"
	"github.com/cocosip/go-dicom-reader/reader"
)

// cliConfig is the optional YAML configuration file.
type cliConfig struct {
	// Progress toggles the stdout progress indicator during series discovery
	Progress *bool `yaml:"progress"`

	// DcmdjpegDirs lists extra directories probed for the dcmdjpeg tool
	DcmdjpegDirs []string `yaml:"dcmdjpegDirs"`
}

func loadConfig(path string) (*cliConfig, error) {
	cfg := &cliConfig{}
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}

func main() {
	input := flag.String("input", "", "DICOM file or directory to read")
	modeStr := flag.String("mode", "i", "access mode: i (single image), I (multi image), v (single volume), V (multi volume)")
	index := flag.Int("index", 0, "item index to inspect")
	configPath := flag.String("config", "", "optional YAML configuration file")
	verbose := flag.Bool("verbose", false, "enable debug logging")
	flag.Parse()

	if *input == "" {
		flag.Usage()
		os.Exit(1)
	}

	level := zerolog.InfoLevel
	if *verbose {
		level = zerolog.DebugLevel
	}
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().Logger()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	mode, err := reader.ParseMode(*modeStr)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid mode")
	}

	f, err := format.Detect(*input)
	if err != nil {
		log.Fatal().Str("path", *input).Msg("not recognized by any registered format")
	}
	log.Debug().Str("format", f.Name()).Msg("format detected")

	progressCfg := progress.Default()
	if cfg.Progress != nil && !*cfg.Progress {
		progressCfg = progress.Off()
	}

	r, err := reader.Open(*input, mode,
		reader.WithProgress(progressCfg),
		reader.WithLogger(log),
		reader.WithToolDirs(cfg.DcmdjpegDirs...),
	)
	if err != nil {
		log.Fatal().Err(err).Msg("open failed")
	}
	defer r.Close()

	n, err := r.Len()
	if err != nil {
		log.Fatal().Err(err).Msg("length query failed")
	}
	fmt.Printf("%s: %d item(s) in %s mode\n", *input, n, mode)

	buf, meta, err := r.Data(*index)
	if err != nil {
		log.Fatal().Err(err).Int("index", *index).Msg("data query failed")
	}

	fmt.Printf("item %d:\n", *index)
	if buf.NDim() == 3 {
		fmt.Printf("  shape: %d x %d x %d\n", buf.NumSlices(), buf.Rows(), buf.Cols())
	} else {
		fmt.Printf("  shape: %d x %d\n", buf.Rows(), buf.Cols())
	}
	stats := buf.Stats()
	fmt.Printf("  samples: min=%.0f max=%.0f mean=%.2f stddev=%.2f\n",
		stats.Min, stats.Max, stats.Mean, stats.StdDev)

	for _, key := range []string{"PatientName", "Modality", "StudyDescription", "SeriesDescription", "SeriesInstanceUID", "InstanceNumber"} {
		if v := meta.GetString(key); v != "" {
			fmt.Printf("  %s: %s\n", key, v)
		}
	}
}
