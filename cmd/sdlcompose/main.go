package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"

	"github.com/hanpama/sdlcompose/internal/eventbus"
	"github.com/hanpama/sdlcompose/internal/otel"
	"github.com/hanpama/sdlcompose/internal/project"
	"github.com/hanpama/sdlcompose/internal/schema"
	"github.com/hanpama/sdlcompose/internal/server"
	"github.com/hanpama/sdlcompose/internal/source"
)

const rootUsage = `sdlcompose - compose GraphQL SDL with inline resolver markers

USAGE:
  sdlcompose <command> [flags]

COMMANDS:
  compose          Strip resolver markers and write the composed SDL
  check            Compose, validate and check every resolver binding
  serve            Run the HTTP compose endpoint
  help             Show help for any command
`

const composeUsage = `compose FLAGS:
  -graphql.root <dir>      GraphQL project root (default: .)
  -out <file>              Write composed SDL to file (default: stdout)
  -bindings <file>         Write the resolver map as JSON to file
  -validate                Build the schema and check every binding
  -render                  Write the canonical SDL of the built schema (implies -validate)
  -otel.endpoint <addr>    OTLP collector endpoint
  -otel.service <name>     OpenTelemetry service name (default: sdlcompose)
`

const checkUsage = `check FLAGS:
  -graphql.root <dir>      GraphQL project root (default: .)
  (Exits non-zero and lists every problem on failure)
`

const serveUsage = `serve FLAGS:
  -server.addr <addr>             HTTP listen address (default: :8080)
  -server.pretty                  Pretty-print JSON responses
  -server.max-body-bytes N        Request body limit in bytes (default: 1048576)
  -server.cors <origin>           Allowed CORS origin. Repeatable; * allows any
  -server.validate                Validate posted sources
  -otel.endpoint <addr>           OTLP collector endpoint
  -otel.service <name>            OpenTelemetry service name (default: sdlcompose)
`

func main() {
	if err := run(os.Args[1:]); err != nil {
		log.Fatal(err)
	}
}

func run(args []string) error {
	global := flag.NewFlagSet("sdlcompose", flag.ContinueOnError)
	global.SetOutput(new(bytes.Buffer))
	if err := global.Parse(args); err != nil {
		fmt.Fprint(os.Stderr, rootUsage)
		return err
	}
	remaining := global.Args()
	if len(remaining) == 0 {
		fmt.Fprint(os.Stderr, rootUsage)
		return fmt.Errorf("missing command")
	}

	cmd := remaining[0]
	cmdArgs := remaining[1:]
	switch cmd {
	case "compose":
		return cmdCompose(cmdArgs)
	case "check":
		return cmdCheck(cmdArgs)
	case "serve":
		return cmdServe(cmdArgs)
	case "help":
		return cmdHelp(cmdArgs)
	default:
		fmt.Fprint(os.Stderr, rootUsage)
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func cmdHelp(args []string) error {
	if len(args) == 0 {
		fmt.Print(rootUsage)
		return nil
	}
	switch args[0] {
	case "compose":
		fmt.Print(composeUsage)
	case "check":
		fmt.Print(checkUsage)
	case "serve":
		fmt.Print(serveUsage)
	default:
		return fmt.Errorf("unknown help topic %q", args[0])
	}
	return nil
}

type stringListFlag []string

func (s *stringListFlag) String() string { return strings.Join(*s, ",") }

func (s *stringListFlag) Set(v string) error {
	*s = append(*s, v)
	return nil
}

func setupTelemetry(endpoint, service string) (func(context.Context) error, error) {
	if endpoint == "" {
		return func(context.Context) error { return nil }, nil
	}
	eventbus.Use(eventbus.New())
	shutdown, err := otel.Setup(endpoint, service)
	if err != nil {
		return nil, fmt.Errorf("otel setup: %w", err)
	}
	return shutdown, nil
}

func loadProject(ctx context.Context, rootDir string, opts ...project.Option) (*project.Project, error) {
	disc, err := source.NewFileSystemDiscovery(ctx, rootDir)
	if err != nil {
		return nil, err
	}
	return project.Load(ctx, disc, opts...)
}

func cmdCompose(args []string) error {
	rootDir := "."
	outFile := ""
	bindingsFile := ""
	validate := false
	render := false
	otelEndpoint := ""
	otelService := "sdlcompose"

	fs := flag.NewFlagSet("compose", flag.ContinueOnError)
	fs.SetOutput(new(bytes.Buffer))
	fs.StringVar(&rootDir, "graphql.root", rootDir, "GraphQL project root")
	fs.StringVar(&outFile, "out", outFile, "Write composed SDL to file")
	fs.StringVar(&bindingsFile, "bindings", bindingsFile, "Write the resolver map as JSON to file")
	fs.BoolVar(&validate, "validate", validate, "Build the schema and check every binding")
	fs.BoolVar(&render, "render", render, "Write the canonical SDL of the built schema")
	fs.StringVar(&otelEndpoint, "otel.endpoint", otelEndpoint, "OTLP collector endpoint")
	fs.StringVar(&otelService, "otel.service", otelService, "OpenTelemetry service name")
	if err := fs.Parse(args); err != nil {
		fmt.Fprint(os.Stderr, composeUsage)
		return err
	}

	shutdown, err := setupTelemetry(otelEndpoint, otelService)
	if err != nil {
		return err
	}
	defer func() { _ = shutdown(context.Background()) }()

	var opts []project.Option
	if validate || render {
		opts = append(opts, project.WithValidation())
	}
	proj, err := loadProject(context.Background(), rootDir, opts...)
	if err != nil {
		return fmt.Errorf("compose: %w", err)
	}

	sdl := proj.TypeDefs
	if render {
		sdl = schema.Render(proj.Schema)
	}
	if bindingsFile != "" {
		data, err := json.MarshalIndent(proj.Bindings(), "", "  ")
		if err != nil {
			return err
		}
		if err := os.WriteFile(bindingsFile, append(data, '\n'), 0644); err != nil {
			return err
		}
	}
	if outFile == "" {
		fmt.Print(sdl)
		return nil
	}
	return os.WriteFile(outFile, []byte(sdl), 0644)
}

func cmdCheck(args []string) error {
	rootDir := "."
	fs := flag.NewFlagSet("check", flag.ContinueOnError)
	fs.SetOutput(new(bytes.Buffer))
	fs.StringVar(&rootDir, "graphql.root", rootDir, "GraphQL project root")
	if err := fs.Parse(args); err != nil {
		fmt.Fprint(os.Stderr, checkUsage)
		return err
	}

	proj, err := loadProject(context.Background(), rootDir, project.WithValidation())
	if err != nil {
		var violations schema.ValidationError
		if errors.As(err, &violations) {
			for _, v := range violations {
				fmt.Fprintln(os.Stderr, v)
			}
			return fmt.Errorf("check failed with %d problem(s)", len(violations))
		}
		return fmt.Errorf("check: %w", err)
	}
	fmt.Printf("ok: %d file(s), %d type(s), %d binding(s)\n",
		len(proj.Files), len(proj.Schema.Types), proj.Resolvers.Len())
	return nil
}

func cmdServe(args []string) error {
	addr := ":8080"
	pretty := false
	maxBody := int64(1 << 20)
	validate := false
	otelEndpoint := ""
	otelService := "sdlcompose"
	var origins stringListFlag

	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.SetOutput(new(bytes.Buffer))
	fs.StringVar(&addr, "server.addr", addr, "HTTP listen address")
	fs.BoolVar(&pretty, "server.pretty", pretty, "Pretty-print JSON responses")
	fs.Int64Var(&maxBody, "server.max-body-bytes", maxBody, "Request body limit in bytes")
	fs.Var(&origins, "server.cors", "Allowed CORS origin")
	fs.BoolVar(&validate, "server.validate", validate, "Validate posted sources")
	fs.StringVar(&otelEndpoint, "otel.endpoint", otelEndpoint, "OTLP collector endpoint")
	fs.StringVar(&otelService, "otel.service", otelService, "OpenTelemetry service name")
	if err := fs.Parse(args); err != nil {
		fmt.Fprint(os.Stderr, serveUsage)
		return err
	}

	shutdown, err := setupTelemetry(otelEndpoint, otelService)
	if err != nil {
		return err
	}
	defer func() { _ = shutdown(context.Background()) }()

	sopts := []server.Option{server.WithMaxBodyBytes(maxBody)}
	if pretty {
		sopts = append(sopts, server.WithPretty())
	}
	if validate {
		sopts = append(sopts, server.WithValidation())
	}
	if len(origins) > 0 {
		sopts = append(sopts, server.WithCORS(origins...))
	}

	mux := http.NewServeMux()
	mux.Handle("/compose", server.New(sopts...))

	log.Printf("sdlcompose server listening on %s", addr)
	return http.ListenAndServe(addr, mux)
}
