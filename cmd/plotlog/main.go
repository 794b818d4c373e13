package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/tronsgaard/gaugemonitor/internal/plot"
)

func main() {
	out := flag.String("o", "pressure.png", "output PNG file")
	width := flag.Int("width", 1280, "chart width in pixels")
	height := flag.Int("height", 720, "chart height in pixels")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	if flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "usage: plotlog [-o out.png] logfile [logfile...]")
		os.Exit(2)
	}

	series, err := plot.ParseFiles(flag.Args())
	if err != nil {
		logger.Error("failed to parse log files", "err", err)
		os.Exit(1)
	}

	img, err := plot.Render(series, *width, *height)
	if err != nil {
		logger.Error("failed to render chart", "err", err)
		os.Exit(1)
	}

	f, err := os.Create(*out)
	if err != nil {
		logger.Error("failed to create output file", "file", *out, "err", err)
		os.Exit(1)
	}
	defer f.Close()

	if err := plot.WritePNG(f, img); err != nil {
		logger.Error("failed to encode PNG", "err", err)
		os.Exit(1)
	}

	logger.Info("chart written", "file", *out, "files", flag.NArg())
}
