package tic

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"math"

	serial "github.com/jacobsa/go-serial/serial"
)

// Controller is a Source backed by a real TIC on a serial port.
// Queries are strictly sequential; the polling loop is the only caller.
type Controller struct {
	port   io.ReadWriteCloser
	reader *bufio.Reader
	logger *slog.Logger
}

// Open connects to the controller on the given port. The TIC front
// panel link runs 8N1 with no flow control.
func Open(portName string, baudRate uint, logger *slog.Logger) (*Controller, error) {
	opts := serial.OpenOptions{
		PortName:        portName,
		BaudRate:        baudRate,
		DataBits:        8,
		StopBits:        1,
		MinimumReadSize: 1,
		ParityMode:      serial.PARITY_NONE,
	}

	port, err := serial.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open serial port %s: %w", portName, err)
	}
	logger.Info("serial port opened", "port", portName, "baud", baudRate)

	return &Controller{
		port:   port,
		reader: bufio.NewReader(port),
		logger: logger,
	}, nil
}

// ReadPressure queries one gauge channel and returns its pressure in
// mbar, or NaN when the gauge currently has no valid reading.
func (c *Controller) ReadPressure(gauge int) (float64, error) {
	if _, err := io.WriteString(c.port, queryFrame(gauge)); err != nil {
		return 0, fmt.Errorf("write gauge %d query: %w", gauge, err)
	}

	line, err := c.reader.ReadString('\r')
	if err != nil {
		return 0, fmt.Errorf("read gauge %d reply: %w", gauge, err)
	}

	pressure, ok, err := parseReply(gauge, line)
	if err != nil {
		return 0, err
	}
	if !ok {
		return math.NaN(), nil
	}
	return pressure, nil
}

// Close releases the serial port.
func (c *Controller) Close() error {
	return c.port.Close()
}
