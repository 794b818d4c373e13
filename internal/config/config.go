package config

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config holds all application configuration values.
type Config struct {
	// Serial link to the TIC
	SerialPort string
	BaudRate   int
	Emulate    bool

	// Gauges
	Gauges       []int
	Memory       int     // samples kept per gauge
	SmoothWeight float64 // old-value weight for emulated-reading damping
	TrendWindow  int     // samples used for the trend fit

	// Timing
	SampleInterval int // milliseconds

	// MQTT
	MQTTBroker          string
	MQTTClientIDMonitor string
	MQTTClientIDConsole string
	MQTTClientIDWeb     string
	MQTTClientIDDisplay string
	TopicPrefix         string

	// Logging
	LogDir string

	// Web server
	WebListenAddr string

	// Display
	DisplayI2CAddr        uint16
	DisplayUpdateInterval int // milliseconds
	DisplayGauges         []int
}

// Load reads the configuration file and returns a Config struct.
func Load(configPath string) (*Config, error) {
	file, err := os.Open(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	cfg := defaults()
	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// Parse KEY=VALUE
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid config line %d: %q", lineNum, line)
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		if err := cfg.setValue(key, value); err != nil {
			return nil, fmt.Errorf("config line %d: %w", lineNum, err)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	// Validate required fields
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func defaults() *Config {
	return &Config{
		BaudRate:              9600,
		Gauges:                []int{1, 2},
		Memory:                200,
		SmoothWeight:          20,
		TrendWindow:           10,
		SampleInterval:        500,
		MQTTClientIDMonitor:   "gaugemonitor-producer",
		MQTTClientIDConsole:   "gaugemonitor-console",
		MQTTClientIDWeb:       "gaugemonitor-web",
		MQTTClientIDDisplay:   "gaugemonitor-display",
		TopicPrefix:           "vacuum/gauge",
		LogDir:                "logs",
		WebListenAddr:         ":8080",
		DisplayI2CAddr:        0x3C,
		DisplayUpdateInterval: 1000,
	}
}

// setValue sets a config value based on the key.
func (c *Config) setValue(key, value string) error {
	switch key {
	// Serial link
	case "SERIAL_PORT":
		c.SerialPort = value
	case "BAUD_RATE":
		rate, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid BAUD_RATE %q: %w", value, err)
		}
		c.BaudRate = rate
	case "EMULATE":
		enabled, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid EMULATE %q: %w", value, err)
		}
		c.Emulate = enabled

	// Gauges
	case "GAUGES":
		ids, err := parseGaugeList(value)
		if err != nil {
			return fmt.Errorf("invalid GAUGES %q: %w", value, err)
		}
		c.Gauges = ids
	case "MEMORY":
		mem, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid MEMORY %q: %w", value, err)
		}
		if mem < 2 {
			return fmt.Errorf("MEMORY must be at least 2, got %d", mem)
		}
		c.Memory = mem
	case "SMOOTH_WEIGHT":
		weight, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid SMOOTH_WEIGHT %q: %w", value, err)
		}
		if weight < 0 {
			return fmt.Errorf("SMOOTH_WEIGHT must be >= 0, got %g", weight)
		}
		c.SmoothWeight = weight
	case "TREND_WINDOW":
		window, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid TREND_WINDOW %q: %w", value, err)
		}
		if window < 2 {
			return fmt.Errorf("TREND_WINDOW must be at least 2, got %d", window)
		}
		c.TrendWindow = window

	// Timing
	case "SAMPLE_INTERVAL":
		interval, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid SAMPLE_INTERVAL %q: %w", value, err)
		}
		c.SampleInterval = interval

	// MQTT
	case "MQTT_BROKER":
		c.MQTTBroker = value
	case "MQTT_CLIENT_ID_MONITOR":
		c.MQTTClientIDMonitor = value
	case "MQTT_CLIENT_ID_CONSOLE":
		c.MQTTClientIDConsole = value
	case "MQTT_CLIENT_ID_WEB":
		c.MQTTClientIDWeb = value
	case "MQTT_CLIENT_ID_DISPLAY":
		c.MQTTClientIDDisplay = value
	case "TOPIC_PREFIX":
		c.TopicPrefix = strings.TrimSuffix(value, "/")

	// Logging
	case "LOG_DIR":
		c.LogDir = value

	// Web server
	case "WEB_LISTEN_ADDR":
		c.WebListenAddr = value

	// Display
	case "DISPLAY_I2C_ADDR":
		addr, err := strconv.ParseUint(value, 0, 16)
		if err != nil {
			return fmt.Errorf("invalid DISPLAY_I2C_ADDR %q: %w", value, err)
		}
		c.DisplayI2CAddr = uint16(addr)
	case "DISPLAY_UPDATE_INTERVAL":
		interval, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid DISPLAY_UPDATE_INTERVAL %q: %w", value, err)
		}
		c.DisplayUpdateInterval = interval
	case "DISPLAY_GAUGES":
		ids, err := parseGaugeList(value)
		if err != nil {
			return fmt.Errorf("invalid DISPLAY_GAUGES %q: %w", value, err)
		}
		c.DisplayGauges = ids

	default:
		return fmt.Errorf("unknown config key: %q", key)
	}

	return nil
}

// validate checks that all required fields are set and consistent.
func (c *Config) validate() error {
	if !c.Emulate && c.SerialPort == "" {
		return fmt.Errorf("SERIAL_PORT is required unless EMULATE=true")
	}
	if c.BaudRate <= 0 {
		return fmt.Errorf("BAUD_RATE must be positive")
	}
	if len(c.Gauges) == 0 {
		return fmt.Errorf("GAUGES must name at least one gauge")
	}
	if c.MQTTBroker == "" {
		return fmt.Errorf("MQTT_BROKER is required")
	}
	if c.SampleInterval <= 0 {
		return fmt.Errorf("SAMPLE_INTERVAL must be positive")
	}
	if c.TrendWindow > c.Memory {
		return fmt.Errorf("TREND_WINDOW (%d) cannot exceed MEMORY (%d)", c.TrendWindow, c.Memory)
	}
	seen := make(map[int]bool, len(c.Gauges))
	for _, id := range c.Gauges {
		if id < 1 || id > 6 {
			return fmt.Errorf("gauge numbers must be 1-6, got %d", id)
		}
		if seen[id] {
			return fmt.Errorf("duplicate gauge number %d", id)
		}
		seen[id] = true
	}
	for _, id := range c.DisplayGauges {
		if !seen[id] {
			return fmt.Errorf("DISPLAY_GAUGES names gauge %d which is not in GAUGES", id)
		}
	}
	return nil
}

// Topic returns the MQTT topic carrying readings for one gauge.
func (c *Config) Topic(gauge int) string {
	return fmt.Sprintf("%s/%d", c.TopicPrefix, gauge)
}

// TopicFilter returns the subscription filter matching all gauge topics.
func (c *Config) TopicFilter() string {
	return c.TopicPrefix + "/+"
}

func parseGaugeList(value string) ([]int, error) {
	var ids []int
	for _, field := range strings.Split(value, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		id, err := strconv.Atoi(field)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
