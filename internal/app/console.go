package app

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/tronsgaard/gaugemonitor/internal/config"
	"github.com/tronsgaard/gaugemonitor/internal/reading"
)

// RunConsole subscribes to the gauge topics and prints each reading,
// one line per sample, until interrupted.
func RunConsole(cfg *config.Config, logger *slog.Logger) error {
	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(cfg.MQTTClientIDConsole)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return fmt.Errorf("MQTT connect: %w", token.Error())
	}
	logger.Info("connected to MQTT broker", "broker", cfg.MQTTBroker)

	token := client.Subscribe(cfg.TopicFilter(), 0, func(_ mqtt.Client, msg mqtt.Message) {
		var r reading.Reading
		if err := json.Unmarshal(msg.Payload(), &r); err != nil {
			logger.Error("reading unmarshal failed", "topic", msg.Topic(), "err", err)
			return
		}

		pressure := "---"
		if r.Pressure != nil {
			pressure = fmt.Sprintf("%.3e mbar", *r.Pressure)
		}
		trend := ""
		if r.Trend != nil {
			trend = fmt.Sprintf("  (%+.2e mbar/s)", *r.Trend)
		}
		fmt.Printf("%d - %s - %s%s\n", r.Gauge, r.Date, pressure, trend)
	})
	token.Wait()
	if token.Error() != nil {
		return fmt.Errorf("MQTT subscribe: %w", token.Error())
	}
	logger.Info("subscribed", "filter", cfg.TopicFilter())

	// Wait for Ctrl+C
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	logger.Info("console shutting down")
	client.Disconnect(250)
	return nil
}
