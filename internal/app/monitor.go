package app

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/tronsgaard/gaugemonitor/internal/config"
	"github.com/tronsgaard/gaugemonitor/internal/gauge"
	"github.com/tronsgaard/gaugemonitor/internal/logfile"
	"github.com/tronsgaard/gaugemonitor/internal/monitor"
	"github.com/tronsgaard/gaugemonitor/internal/reading"
	"github.com/tronsgaard/gaugemonitor/internal/tic"
)

// RunMonitor wires the reading source, the per-gauge series, the log
// files and the MQTT publisher together and polls until ctx is done.
func RunMonitor(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	// ---- 1) Reading source: real controller or emulator ----
	var source tic.Source
	if cfg.Emulate {
		logger.Info("using emulated reading source")
		source = tic.NewEmulator(time.Now().UnixNano())
	} else {
		controller, err := tic.Open(cfg.SerialPort, uint(cfg.BaudRate), logger.With("component", "tic"))
		if err != nil {
			return err
		}
		defer controller.Close()
		source = controller
	}

	// ---- 2) Connect to MQTT broker ----
	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(cfg.MQTTClientIDMonitor)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return fmt.Errorf("MQTT connect: %w", token.Error())
	}
	defer client.Disconnect(250)
	logger.Info("connected to MQTT broker", "broker", cfg.MQTTBroker)

	// ---- 3) Sinks ----
	logWriter, err := logfile.NewWriter(cfg.LogDir, cfg.Gauges, time.Now(), logger.With("component", "logfile"))
	if err != nil {
		return err
	}
	defer logWriter.Close()

	publisher := &mqttSink{client: client, cfg: cfg, logger: logger.With("component", "mqtt")}

	// ---- 4) Polling loop ----
	store := gauge.NewStore(cfg.Gauges, cfg.Memory)
	monitorOpts := monitor.Options{
		Interval:    time.Duration(cfg.SampleInterval) * time.Millisecond,
		TrendWindow: cfg.TrendWindow,
	}
	if cfg.Emulate {
		// White noise from the emulator needs the damping the real
		// gauges get from their own integration time.
		monitorOpts.SmoothWeight = cfg.SmoothWeight
	}

	m := monitor.New(source, store, []monitor.Sink{logWriter, publisher}, monitorOpts, logger.With("component", "monitor"))
	return m.Run(ctx)
}

// mqttSink publishes each processed reading as JSON to the gauge topic.
type mqttSink struct {
	client mqtt.Client
	cfg    *config.Config
	logger *slog.Logger
}

func (s *mqttSink) UpdateSeries(gaugeID int, t time.Time, pressure, trend float64) {
	r := reading.New(gaugeID, t, pressure, trend, !isNaN(trend))

	payload, err := json.Marshal(r)
	if err != nil {
		s.logger.Error("reading marshal failed", "gauge", gaugeID, "err", err)
		return
	}

	token := s.client.Publish(s.cfg.Topic(gaugeID), 0, true, payload)
	token.Wait()
	if token.Error() != nil {
		s.logger.Error("publish failed", "gauge", gaugeID, "err", token.Error())
	}
}

func isNaN(v float64) bool { return v != v }
