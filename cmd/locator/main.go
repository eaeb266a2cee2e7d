/*
This command runs a standalone locator: it builds a consistent-hash
continuum from a weighted group file and serves keyed and keyless lookups
over HTTP, reloading the continuum whenever the group file changes.

For the list of command line options, run:

	locator -help
*/
package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/maniacs-ops/cocaine-core/config"
	"github.com/maniacs-ops/cocaine-core/locator"
	"github.com/maniacs-ops/cocaine-core/metrics"
)

const (
	defaultAddress      = ":9191"
	defaultPollInterval = 5 * time.Second

	addressUsage      = "network address the locator should listen on"
	groupFileUsage    = "path to the YAML file holding the weighted routing group"
	memberUsage       = "inline weighted group as member=weight pairs, e.g. alpha=3,beta=1; overrides -group-file"
	pollIntervalUsage = "how often the group file is polled for changes"
	logLevelUsage     = "application log level (debug, info, warn, error)"
)

var (
	address      string
	groupFile    string
	member       config.GroupFlag
	pollInterval time.Duration
	logLevel     string
)

func init() {
	flag.StringVar(&address, "address", defaultAddress, addressUsage)
	flag.StringVar(&groupFile, "group-file", "", groupFileUsage)
	flag.Var(&member, "member", memberUsage)
	flag.DurationVar(&pollInterval, "poll-interval", defaultPollInterval, pollIntervalUsage)
	flag.StringVar(&logLevel, "log-level", "info", logLevelUsage)
}

func main() {
	flag.Parse()

	var source locator.GroupSource
	var sourceName string
	switch {
	case member.Group != nil:
		source = locator.StaticSource(member.Group)
		sourceName = "inline"
	case groupFile != "":
		source = locator.FileSource{Path: groupFile}
		sourceName = groupFile
	default:
		fmt.Fprintln(os.Stderr, "locator: one of -group-file or -member is required")
		os.Exit(2)
	}

	level, err := log.ParseLevel(logLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "locator: invalid -log-level %q: %v\n", logLevel, err)
		os.Exit(2)
	}
	log.SetLevel(level)
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})

	m := metrics.New()
	l, err := locator.New(locator.Options{
		Source:       source,
		SourceName:   sourceName,
		PollInterval: pollInterval,
		Metrics:      m,
	})
	if err != nil {
		log.Fatalf("failed to start locator: %v", err)
	}
	defer l.Close()

	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	mux.HandleFunc("/lookup", func(w http.ResponseWriter, r *http.Request) {
		key := r.URL.Query().Get("key")
		var value string
		if key == "" {
			value = l.LookupRandom()
		} else {
			value = l.Lookup(key)
		}
		fmt.Fprintln(w, value)
	})
	mux.HandleFunc("/members", func(w http.ResponseWriter, r *http.Request) {
		seen := map[string]bool{}
		for _, e := range l.All() {
			if !seen[e.Value] {
				seen[e.Value] = true
				fmt.Fprintln(w, e.Value)
			}
		}
	})

	log.Infof("locator listening on %s, source %s, poll interval %s", address, sourceName, pollInterval)
	log.Fatal(http.ListenAndServe(address, mux))
}
