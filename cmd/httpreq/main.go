// Command httpreq turns HTTP requests into simplified request records.
//
//	httpreq simplify [-in file] [-remote ip:port] [-format json|node] [-pretty]
//	httpreq serve [-config file]
//
// simplify decodes wire-format requests from a file or stdin and prints one
// record per request. serve answers every request with its own record.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/chainguard-dev/clog"
	"github.com/joho/godotenv"

	"github.com/shapestone/shape-httpreq/internal/config"
	"github.com/shapestone/shape-httpreq/internal/logging"
)

const usage = `usage:
  httpreq simplify [-in file] [-remote ip:port] [-format json|node] [-pretty]
  httpreq serve [-config file]
`

func main() {
	_ = godotenv.Load(".env")

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	os.Exit(run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// run executes the command line args and returns the exit code.
func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		fmt.Fprint(stderr, usage)
		return 2
	}

	var err error
	switch args[0] {
	case "simplify":
		cfg, cerr := loadConfig("")
		if cerr != nil {
			fmt.Fprintln(stderr, cerr)
			return 1
		}
		ctx = withLogger(ctx, cfg, stderr)
		err = runSimplify(ctx, cfg, args[1:], stdin, stdout)
	case "serve":
		err = runServe(ctx, args[1:], stderr)
	case "-h", "-help", "--help", "help":
		fmt.Fprint(stdout, usage)
		return 0
	default:
		fmt.Fprintf(stderr, "httpreq: unknown command %q\n%s", args[0], usage)
		return 2
	}

	if err != nil {
		clog.FromContext(ctx).Errorf("%s: %v", args[0], err)
		fmt.Fprintf(stderr, "httpreq %s: %v\n", args[0], err)
		return 1
	}
	return 0
}

// loadConfig reads the optional file at path and applies the environment.
func loadConfig(path string) (config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return cfg, err
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

func withLogger(ctx context.Context, cfg config.Config, w io.Writer) context.Context {
	return clog.WithLogger(ctx, clog.New(logging.NewHandler(cfg.Log.Format, cfg.Log.Level, w)))
}
