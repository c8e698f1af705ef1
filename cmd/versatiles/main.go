package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/alecthomas/kong"
	"github.com/dustin/go-humanize"

	"github.com/versatiles-org/go-versatiles/versatiles"
	"github.com/versatiles-org/go-versatiles/versatiles/pipeline"
)

// cli is the kong command tree. The teacher's main.go drives its
// subcommands with stdlib flag.FlagSet switches; kong is a direct
// dependency of the teacher's own go.mod that its main.go never actually
// imports, so this wires it up the way it was clearly meant to be used.
var cli struct {
	Show struct {
		Path string `arg:"" help:"Path to a .versatiles container."`
	} `cmd:"" help:"Print a container's header and block index summary."`

	Serve struct {
		Path string `arg:"" help:"Path to a .versatiles container."`
		Addr string `help:"Listen address." default:":8080"`
	} `cmd:"" help:"Serve a container over HTTP."`

	Pipeline struct {
		Config string `arg:"" help:"Pipe-delimited pipeline definition, e.g. 'from_mock name=x | vectortiles_update_properties ...'."`
		Serve  bool   `help:"Serve the built pipeline over HTTP instead of just validating it."`
		Addr   string `help:"Listen address, when --serve is set." default:":8080"`
	} `cmd:"" help:"Build a tile-transform pipeline from a text definition."`
}

func main() {
	logger := log.New(os.Stdout, "", log.Ldate|log.Ltime)

	ctx := kong.Parse(&cli,
		kong.Name("versatiles"),
		kong.Description("Read, serve and transform versatiles tile containers."),
	)

	var err error
	switch ctx.Command() {
	case "show <path>":
		err = runShow(logger, cli.Show.Path)
	case "serve <path>":
		err = runServe(logger, cli.Serve.Path, cli.Serve.Addr)
	case "pipeline <config>":
		err = runPipeline(logger, cli.Pipeline.Config, cli.Pipeline.Serve, cli.Pipeline.Addr)
	default:
		err = fmt.Errorf("unknown command %q", ctx.Command())
	}

	if err != nil {
		logger.Fatalf("%v", err)
	}
}

func openReader(ctx context.Context, path string, logger *log.Logger) (*versatiles.VersaTilesReader, error) {
	source, err := versatiles.OpenFileDataReader(path)
	if err != nil {
		return nil, err
	}
	return versatiles.OpenVersaTilesReader(ctx, source, logger)
}

func runShow(logger *log.Logger, path string) error {
	ctx := context.Background()
	reader, err := openReader(ctx, path, logger)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}

	params := reader.GetParameters()
	zMin, hasMin := params.BboxPyramid.ZoomMin()
	zMax, hasMax := params.BboxPyramid.ZoomMax()

	fmt.Printf("container:    %s\n", path)
	fmt.Printf("tile format:  %s\n", params.TileFormat)
	fmt.Printf("compression:  %s\n", params.TileCompression)
	if hasMin && hasMax {
		fmt.Printf("zoom range:   %d - %d\n", zMin, zMax)
	} else {
		fmt.Printf("zoom range:   (empty)\n")
	}

	if meta := reader.GetMeta(); meta != nil {
		fmt.Printf("meta:         %s (%s)\n", humanize.Bytes(uint64(meta.Len())), meta.AsString())
	} else {
		fmt.Printf("meta:         (none)\n")
	}

	return nil
}

func runServe(logger *log.Logger, path, addr string) error {
	ctx := context.Background()
	reader, err := openReader(ctx, path, logger)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}

	root := pipeline.NewReaderOperation(reader)
	server := NewServer(root, logger)
	return server.Start(ctx, addr)
}

func runPipeline(logger *log.Logger, config string, serve bool, addr string) error {
	ctx := context.Background()
	factory := pipeline.NewPipelineFactory(".", logger)

	root, err := factory.BuildFromText(config)
	if err != nil {
		return fmt.Errorf("building pipeline: %w", err)
	}

	params := root.GetParameters()
	logger.Printf("pipeline built: format=%s compression=%s", params.TileFormat, params.TileCompression)

	if !serve {
		return nil
	}

	server := NewServer(root, logger)
	return server.Start(ctx, addr)
}
