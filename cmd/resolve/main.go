package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/MDWio/ohif-viewer/api"
	"github.com/MDWio/ohif-viewer/api/clients"
	"github.com/MDWio/ohif-viewer/cmd/flags"
	"github.com/MDWio/ohif-viewer/common"
	"github.com/urfave/cli/v2"
)

var flagServerAddr = &cli.StringFlag{
	Name:  "server-addr",
	Usage: "loader server to call; when empty the request is resolved in-process",
}
var flagOutput = &cli.StringFlag{
	Name:    "output",
	Aliases: []string{"o"},
	Value:   "instance.dcm",
	Usage:   "file to write the instance bytes to",
}
var flagName = &cli.StringFlag{
	Name:  "name",
	Usage: "file name to register, defaults to the base name of the input",
}

func main() {
	app := &cli.App{
		Name:    "resolve",
		Usage:   "Resolve DICOM datasets into instance bytes",
		Version: common.Version,
		Flags:   append(append([]cli.Flag{flagServerAddr}, flags.LogFlags...), flags.LoaderFlags...),
		Commands: []*cli.Command{
			{
				Name:      "dataset",
				Usage:     "resolve the request in a JSON file ({\"dataset\": ..., \"studies\": [...]})",
				ArgsUsage: "<request.json>",
				Flags:     []cli.Flag{flagOutput},
				Action:    resolveDataset,
			},
			{
				Name:      "add-file",
				Usage:     "register a DICOM file with a loader server and print its handle",
				ArgsUsage: "<file.dcm>",
				Flags:     []cli.Flag{flagName},
				Action:    addFile,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func resolveDataset(cCtx *cli.Context) error {
	logger := flags.SetupLogger(cCtx)

	if cCtx.NArg() != 1 {
		return cli.Exit("expected exactly one request file", 2)
	}

	raw, err := os.ReadFile(cCtx.Args().First())
	if err != nil {
		return err
	}
	var req api.ResolveRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return fmt.Errorf("invalid request file: %w", err)
	}

	ctx := context.Background()
	if timeout := cCtx.Duration(flags.RequestTimeoutFlag.Name); timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	var data []byte
	var strategy string

	if addr := cCtx.String(flagServerAddr.Name); addr != "" {
		client := &clients.LoaderClient{ServerAddr: addr}
		data, strategy, err = client.Resolve(ctx, req)
		if err != nil {
			return err
		}
	} else {
		stack, err := flags.SetupLoader(cCtx, logger)
		if err != nil {
			return err
		}
		pending, err := stack.Resolver.Resolve(ctx, req.Dataset, req.Studies)
		if err != nil {
			return err
		}
		strategy = pending.Strategy().String()
		data, err = pending.Wait(ctx)
		if err != nil {
			return err
		}
	}

	output := cCtx.String(flagOutput.Name)
	if err := os.WriteFile(output, data, 0644); err != nil {
		return err
	}

	logger.Info("Resolved dataset",
		"strategy", strategy,
		"size", len(data),
		"output", output)
	return nil
}

func addFile(cCtx *cli.Context) error {
	if cCtx.NArg() != 1 {
		return cli.Exit("expected exactly one file", 2)
	}
	addr := cCtx.String(flagServerAddr.Name)
	if addr == "" {
		return cli.Exit("--server-addr is required to register files", 2)
	}

	path := cCtx.Args().First()
	blob, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	name := cCtx.String(flagName.Name)
	if name == "" {
		name = filepath.Base(path)
	}

	client := &clients.LoaderClient{ServerAddr: addr}
	handle, err := client.AddFile(context.Background(), blob, name)
	if err != nil {
		return err
	}

	fmt.Println(handle)
	return nil
}
