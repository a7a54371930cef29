package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/shapestone/shape-httpreq/internal/config"
	httpreq "github.com/shapestone/shape-httpreq/pkg/http"
)

// Output formats of the simplify command.
const (
	formatJSON = "json"
	formatNode = "node"
)

func runSimplify(ctx context.Context, cfg config.Config, args []string, stdin io.Reader, stdout io.Writer) error {
	fs := flag.NewFlagSet("simplify", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	in := fs.String("in", "", "file of wire-format requests (default stdin)")
	remote := fs.String("remote", "", "peer address reported for every request, ip:port")
	format := fs.String("format", formatJSON, "output format: json or node")
	pretty := fs.Bool("pretty", cfg.Server.Pretty, "indent output")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *format != formatJSON && *format != formatNode {
		return fmt.Errorf("unknown format %q", *format)
	}

	r := stdin
	if *in != "" {
		f, err := os.Open(*in)
		if err != nil {
			return err
		}
		defer f.Close()
		r = f
	}

	dec := httpreq.NewDecoder(r)
	if *remote != "" {
		dec.SetConnInfo(httpreq.ParseConnInfo(*remote))
	}
	collector := httpreq.NewCollector(cfg.CollectorOptions()...)

	for {
		raw, err := dec.DecodeRequest()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		req, err := collector.CreateFrom(ctx, raw)
		if err != nil {
			return err
		}

		out, err := render(req, *format, *pretty)
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(stdout, "%s\n", out); err != nil {
			return err
		}
	}
}

// render encodes req in the given output format.
func render(req *httpreq.SimplifiedRequest, format string, pretty bool) ([]byte, error) {
	var v interface{} = req
	if format == formatNode {
		v = httpreq.NodeToInterface(httpreq.ToNode(req))
	}
	if pretty {
		return json.MarshalIndent(v, "", "  ")
	}
	return json.Marshal(v)
}
