package app

import (
	"encoding/json"
	"fmt"
	"image"
	"log/slog"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/devices/v3/ssd1306"
	"periph.io/x/devices/v3/ssd1306/image1bit"
	"periph.io/x/host/v3"

	"github.com/tronsgaard/gaugemonitor/internal/config"
	"github.com/tronsgaard/gaugemonitor/internal/reading"
)

// displayRows is how many gauge lines fit on the 128x64 panel with the
// 7x13 face, leaving room for the header.
const displayRows = 3

// RunDisplay drives an SSD1306 OLED next to the rig, showing the latest
// pressure and trend for the configured gauges.
func RunDisplay(cfg *config.Config, logger *slog.Logger) error {
	gauges := cfg.DisplayGauges
	if len(gauges) == 0 {
		gauges = cfg.Gauges
	}
	if len(gauges) > displayRows {
		gauges = gauges[:displayRows]
	}

	// Initialize periph
	if _, err := host.Init(); err != nil {
		return fmt.Errorf("failed to initialize periph: %w", err)
	}

	// Open I2C bus
	bus, err := i2creg.Open("")
	if err != nil {
		return fmt.Errorf("failed to open I2C bus: %w", err)
	}
	defer bus.Close()

	dev, err := ssd1306.NewI2C(bus, &ssd1306.DefaultOpts)
	if err != nil {
		return fmt.Errorf("failed to initialize display: %w", err)
	}
	logger.Info("display initialized", "addr", fmt.Sprintf("0x%02X", cfg.DisplayI2CAddr))

	if err := showSplash(dev); err != nil {
		logger.Error("splash draw failed", "err", err)
	}

	var (
		mu     sync.RWMutex
		latest = make(map[int]reading.Reading)
	)

	// Connect to MQTT
	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(cfg.MQTTClientIDDisplay)

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
		mu.Lock()
		latest[r.Gauge] = r
		mu.Unlock()
	})
	token.Wait()
	if token.Error() != nil {
		return fmt.Errorf("MQTT subscribe: %w", token.Error())
	}
	logger.Info("subscribed", "filter", cfg.TopicFilter())

	// Display update loop
	ticker := time.NewTicker(time.Duration(cfg.DisplayUpdateInterval) * time.Millisecond)
	defer ticker.Stop()

	logger.Info("starting display update loop")

	for range ticker.C {
		mu.RLock()
		snapshot := make(map[int]reading.Reading, len(latest))
		for id, r := range latest {
			snapshot[id] = r
		}
		mu.RUnlock()

		if err := drawReadings(dev, gauges, snapshot); err != nil {
			logger.Error("display update failed", "err", err)
		}
	}

	return nil
}

func drawReadings(dev *ssd1306.Dev, gauges []int, latest map[int]reading.Reading) error {
	img := image1bit.NewVerticalLSB(image.Rect(0, 0, 128, 64))

	// Blank image
	for i := 0; i < 1024; i++ {
		img.Pix[i] = 0
	}

	drawer := &font.Drawer{
		Dst:  img,
		Src:  &image.Uniform{image1bit.On},
		Face: basicfont.Face7x13,
	}

	drawer.Dot = fixed.P(0, 13)
	drawer.DrawBytes([]byte("Vacuum (mbar)"))

	for row, id := range gauges {
		y := 26 + 13*row
		r, ok := latest[id]
		switch {
		case !ok:
			drawer.Dot = fixed.P(0, y)
			drawer.DrawBytes([]byte(fmt.Sprintf("G%d waiting...", id)))
		case r.Pressure == nil:
			drawer.Dot = fixed.P(0, y)
			drawer.DrawBytes([]byte(fmt.Sprintf("G%d ---", id)))
		default:
			line := fmt.Sprintf("G%d %8.2e", id, *r.Pressure)
			if r.Trend != nil {
				line += trendArrow(*r.Trend)
			}
			drawer.Dot = fixed.P(0, y)
			drawer.DrawBytes([]byte(line))
		}
	}

	return dev.Draw(dev.Bounds(), img, image.Point{})
}

// trendArrow compresses the trend into a glyph: rising, falling, steady.
func trendArrow(slope float64) string {
	switch {
	case slope > 0.1:
		return " ^"
	case slope < -0.1:
		return " v"
	default:
		return " -"
	}
}

func showSplash(dev *ssd1306.Dev) error {
	img := image1bit.NewVerticalLSB(image.Rect(0, 0, 128, 64))

	// Blank image
	for i := 0; i < 1024; i++ {
		img.Pix[i] = 0
	}

	drawer := &font.Drawer{
		Dst:  img,
		Src:  &image.Uniform{image1bit.On},
		Face: basicfont.Face7x13,
	}

	drawer.Dot = fixed.P(10, 26)
	drawer.DrawBytes([]byte("gaugemonitor"))

	drawer.Dot = fixed.P(5, 43)
	drawer.DrawBytes([]byte("waiting for"))

	drawer.Dot = fixed.P(25, 56)
	drawer.DrawBytes([]byte("readings"))

	return dev.Draw(dev.Bounds(), img, image.Point{})
}
