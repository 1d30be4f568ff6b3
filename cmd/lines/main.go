package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/wasmvis/linedesc/linedescriptor"
	"github.com/wasmvis/linedesc/native"
)

func main() {
	var (
		moduleFile = flag.String("module", "", "Path to the OpenCV glue wasm module")
		imageFile  = flag.String("image", "", "Path to a raw 8-bit grayscale image dump")
		width      = flag.Int("width", 0, "Image width in pixels")
		height     = flag.Int("height", 0, "Image height in pixels")
		scale      = flag.Int("scale", 2, "Pyramid downscale factor between octaves")
		octaves    = flag.Int("octaves", 1, "Number of pyramid octaves")
		describe   = flag.Bool("describe", false, "Also compute binary descriptors for the detected lines")
		verbose    = flag.Bool("v", false, "Verbose logging")
	)
	flag.Parse()

	if *moduleFile == "" || *imageFile == "" || *width <= 0 || *height <= 0 {
		fmt.Fprintln(os.Stderr, "Usage: lines -module <glue.wasm> -image <gray.raw> -width N -height N [-scale N] [-octaves N] [-describe]")
		os.Exit(1)
	}

	if *verbose {
		log, err := zap.NewDevelopment()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer log.Sync()
		native.SetLogger(log.Named("native"))
		linedescriptor.SetLogger(log.Named("linedescriptor"))
	}

	if err := run(*moduleFile, *imageFile, *width, *height, *scale, *octaves, *describe); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(moduleFile, imageFile string, width, height, scale, octaves int, describe bool) error {
	ctx := context.Background()

	wasmBytes, err := os.ReadFile(moduleFile)
	if err != nil {
		return fmt.Errorf("read module: %w", err)
	}
	pixels, err := os.ReadFile(imageFile)
	if err != nil {
		return fmt.Errorf("read image: %w", err)
	}
	if len(pixels) != width*height {
		return fmt.Errorf("image is %d bytes, want width*height = %d", len(pixels), width*height)
	}

	engine, err := native.NewEngine(ctx, nil)
	if err != nil {
		return fmt.Errorf("engine: %w", err)
	}
	defer engine.Close(ctx)

	module, err := engine.Load(ctx, wasmBytes)
	if err != nil {
		return fmt.Errorf("load module: %w", err)
	}

	inst, err := module.Instantiate(ctx)
	if err != nil {
		return fmt.Errorf("instantiate: %w", err)
	}
	defer inst.Close(ctx)

	image, err := linedescriptor.NewMatFromBytes(ctx, inst,
		int32(height), int32(width), linedescriptor.CV8U, pixels)
	if err != nil {
		return fmt.Errorf("image matrix: %w", err)
	}
	defer image.Close(ctx)

	detector, err := linedescriptor.NewLSDDetector(ctx, inst)
	if err != nil {
		return fmt.Errorf("detector: %w", err)
	}
	defer detector.Close(ctx)

	lines, err := detector.Detect(ctx, image, int32(scale), int32(octaves), nil)
	if err != nil {
		return fmt.Errorf("detect: %w", err)
	}

	fmt.Printf("%d lines\n", len(lines))
	for _, l := range lines {
		s, e := l.StartPoint(), l.EndPoint()
		fmt.Printf("  #%-4d octave %d  (%.1f,%.1f) -> (%.1f,%.1f)  length %.1f  angle %.3f\n",
			l.ClassID, l.Octave, s.X, s.Y, e.X, e.Y, l.LineLength, l.Angle)
	}

	if !describe || len(lines) == 0 {
		return nil
	}

	bd, err := linedescriptor.CreateBinaryDescriptor(ctx, inst)
	if err != nil {
		return fmt.Errorf("binary descriptor: %w", err)
	}
	defer bd.Close(ctx)

	kept, descriptors, err := bd.Compute(ctx, image, lines, false)
	if err != nil {
		return fmt.Errorf("compute: %w", err)
	}
	defer descriptors.Close(ctx)

	size, err := bd.DescriptorSize(ctx)
	if err != nil {
		return fmt.Errorf("descriptor size: %w", err)
	}
	fmt.Printf("%d descriptors of %d bytes\n", len(kept), size)
	return nil
}
