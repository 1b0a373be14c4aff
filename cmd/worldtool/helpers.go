// Shared helpers for worldtool CLI commands.
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/OnlyWorlds/worldtool/internal/api"
	"github.com/OnlyWorlds/worldtool/internal/localstore"
	"github.com/OnlyWorlds/worldtool/internal/resolve"
	"github.com/OnlyWorlds/worldtool/internal/schema"
	"github.com/OnlyWorlds/worldtool/internal/wire"
	"github.com/OnlyWorlds/worldtool/pkg/record"
)

// validTypesStr is a comma-separated list of record types for error output.
var validTypesStr = strings.Join(record.Types(), ", ")

// toolkit bundles the engine stack every remote command needs. The
// schema engine is shared so kinds learned from fetched records inform
// later writes in the same invocation.
type toolkit struct {
	engine   *schema.Engine
	codec    *wire.Codec
	client   *api.Client
	resolver *resolve.Resolver
}

// newToolkit builds the API client with the shared schema engine and
// wire codec, using config.yaml values overlaid with global flags.
func newToolkit() *toolkit {
	engine := schema.NewEngine()
	codec := wire.New(engine)
	client := api.NewClient(api.Config{
		BaseURL: configBaseURL,
		APIKey:  configAPIKey,
		APIPin:  configAPIPin,
		WorldID: resolveWorldID(),
	}, codec)

	return &toolkit{
		engine:   engine,
		codec:    codec,
		client:   client,
		resolver: resolve.New(engine, client),
	}
}

// openStore resolves the data directory and opens the local cache
// store. The caller must defer store.Close().
func openStore() (*localstore.Store, error) {
	dataDir, err := resolveDataDir()
	if err != nil {
		return nil, fmt.Errorf("resolve data dir: %w", err)
	}

	store, err := localstore.Open(dataDir)
	if err != nil {
		return nil, fmt.Errorf("open local store: %w", err)
	}

	return store, nil
}

// checkType validates a record type argument, exiting with a user
// error when it names no known type.
func checkType(recordType string) {
	if !record.IsValidType(recordType) {
		fmt.Fprintf(os.Stderr, "unknown record type %q (valid: %s)\n", recordType, validTypesStr)
		os.Exit(exitUserError)
	}
}

// parseFieldArgs parses field=value pairs into a map. Values are kept
// as raw strings; coercion to schema kinds happens in the edit session.
func parseFieldArgs(args []string) (map[string]string, error) {
	fields := make(map[string]string, len(args))
	for _, arg := range args {
		name, value, ok := strings.Cut(arg, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("expected field=value, got %q", arg)
		}
		fields[name] = value
	}
	return fields, nil
}

// printRecord writes one record to stdout: indented JSON under --json,
// otherwise sorted field: value lines.
func printRecord(r record.Record) {
	if flagJSON {
		printJSON(r)
		return
	}

	names := make([]string, 0, len(r))
	for name := range r {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		fmt.Printf("%s: %v\n", name, r[name])
	}
}

// printJSON writes any value to stdout as indented JSON.
func printJSON(v any) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Fprintln(os.Stderr, "marshal JSON:", err)
		os.Exit(exitSysError)
	}
	fmt.Println(string(out))
}

// cacheLocally mirrors a fetched record into the local store. Cache
// failures are not fatal; the remote copy is authoritative.
func cacheLocally(store *localstore.Store, recordType string, r record.Record) {
	if store == nil {
		return
	}
	if err := store.PutRecord(recordType, r); err != nil {
		fmt.Fprintln(os.Stderr, "warning: local cache:", err)
	}
}

// exitCode maps an error to the CLI exit code: validation and lookup
// failures are user errors, everything else is a system error.
func exitCode(err error) int {
	switch {
	case err == nil:
		return exitSuccess
	case errors.Is(err, record.ErrNotFound),
		errors.Is(err, record.ErrValidation),
		errors.Is(err, record.ErrInvalidID),
		errors.Is(err, record.ErrInvalidType),
		errors.Is(err, record.ErrWorldUnknown),
		errors.Is(err, record.ErrWorldMismatch):
		return exitUserError
	default:
		return exitSysError
	}
}

// fail prints a prefixed error and exits with the mapped code.
func fail(prefix string, err error) {
	fmt.Fprintf(os.Stderr, "%s: %s\n", prefix, err)
	os.Exit(exitCode(err))
}
