package tic

import (
	"fmt"
	"strconv"
	"strings"
)

// The TIC exposes gauge pressures as numbered value objects: gauge 1 is
// object 913, gauge 2 is 914, and so on. A query is "?V<obj>\r" and the
// controller answers "=V<obj> <value>;<unit>;<state>\r", or
// "*V<obj> <code>\r" on a protocol error.
const gaugeObjectBase = 912

// Unit codes used by the controller.
const unitPascal = 59

// Gauge state codes. Anything other than stateGaugeOn means the channel
// has no usable reading right now.
const (
	stateGaugeOff      = 0
	stateGaugeStriking = 1
	stateGaugeOn       = 11
)

// queryFrame builds the request line for a gauge channel.
func queryFrame(gauge int) string {
	return fmt.Sprintf("?V%d\r", gaugeObjectBase+gauge)
}

// parseReply decodes a controller reply for the given gauge. The
// returned pressure is in mbar; ok is false when the gauge has no valid
// reading (a normal condition). Malformed or error replies return an error.
func parseReply(gauge int, line string) (pressure float64, ok bool, err error) {
	line = strings.TrimRight(line, "\r\n")
	wantObj := fmt.Sprintf("V%d", gaugeObjectBase+gauge)

	if rest, found := strings.CutPrefix(line, "*"+wantObj+" "); found {
		return 0, false, fmt.Errorf("controller error reply for gauge %d: code %s", gauge, rest)
	}

	rest, found := strings.CutPrefix(line, "="+wantObj+" ")
	if !found {
		return 0, false, fmt.Errorf("unexpected reply %q for gauge %d", line, gauge)
	}

	fields := strings.Split(rest, ";")
	if len(fields) < 3 {
		return 0, false, fmt.Errorf("short reply %q for gauge %d", line, gauge)
	}

	state, err := strconv.Atoi(fields[2])
	if err != nil {
		return 0, false, fmt.Errorf("bad state field in %q: %w", line, err)
	}
	if state != stateGaugeOn {
		return 0, false, nil
	}

	value, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return 0, false, fmt.Errorf("bad value field in %q: %w", line, err)
	}

	unit, err := strconv.Atoi(fields[1])
	if err != nil {
		return 0, false, fmt.Errorf("bad unit field in %q: %w", line, err)
	}
	if unit != unitPascal {
		return 0, false, fmt.Errorf("unexpected unit code %d in %q", unit, line)
	}

	// Controller reports Pa; the rest of the pipeline works in mbar.
	return value * 1e-2, true, nil
}
