package main

import (
	"os"
	"strings"

	"github.com/juju/errors"
	log "github.com/sirupsen/logrus"
	kingpin "gopkg.in/alecthomas/kingpin.v2"

	"github.com/9seconds/ipstack/ipstack"
)

const version = "0.1.0"

var (
	app = kingpin.New(
		"ipstack",
		"Command line client for ipstack geolocation API")

	debug = app.Flag("debug", "Run in debug mode.").
		Short('d').
		Envar("IPSTACK_DEBUG").
		Bool()
	configPath = app.Flag("config", "Path to the config. Files with .toml extension are TOML, HJSON otherwise.").
			Short('c').
			Envar("IPSTACK_CONFIG").
			String()
	accessKey = app.Flag("access-key", "Access key of ipstack.").
			Short('k').
			Envar("IPSTACK_ACCESS_KEY").
			String()
	baseURL = app.Flag("base-url", "Base URL of ipstack API.").
		Envar("IPSTACK_BASE_URL").
		String()
	fields = app.Flag("fields", "Fields to return. Could be given many times.").
		Strings()
	language = app.Flag("language", "Language of response (2-letter code).").
			String()
	hostname = app.Flag("hostname", "Lookup hostname.").
			Bool()
	security = app.Flag("security", "Return security module (paid plans only).").
			Bool()
	timeout = app.Flag("timeout", "HTTP timeout.").
		Duration()
	workers = app.Flag("workers", "Size of worker pool for many command.").
		Uint()
	cacheSize = app.Flag("cache-size", "Cache size for single lookups. 0 disables cache.").
			Uint()
	cacheTTL = app.Flag("cache-ttl", "TTL of cached lookups.").
			Duration()

	lookupCommand = app.Command("lookup", "Resolve a single IP address or hostname.")
	lookupAddress = lookupCommand.Arg("address", "IP address or hostname.").
			Required().
			String()

	bulkCommand   = app.Command("bulk", "Resolve many addresses with a single request (paid plans only).")
	bulkAddresses = bulkCommand.Arg("addresses", "IP addresses or hostnames.").
			Required().
			Strings()

	checkCommand = app.Command("check", "Resolve IP address of this machine.")

	manyCommand   = app.Command("many", "Resolve many addresses with parallel single requests.")
	manyAddresses = manyCommand.Arg("addresses", "IP addresses or hostnames.").
			Required().
			Strings()
)

func init() {
	app.Version(version)
	log.SetFormatter(&log.TextFormatter{})
	log.SetLevel(log.WarnLevel)
}

func main() {
	command := kingpin.MustParse(app.Parse(os.Args[1:]))

	if *debug {
		log.SetLevel(log.DebugLevel)
	}

	if err := run(command); err != nil {
		log.Debug(errors.ErrorStack(err))
		log.Fatal(err.Error())
	}
}

func run(command string) error {
	conf, err := loadConfig(*configPath)
	if err != nil {
		return err
	}

	log.WithFields(log.Fields{
		"base_url": conf.GetBaseURL(),
		"timeout":  conf.GetHTTPTimeout(),
		"cache":    conf.Cache.Enabled(),
	}).Debug("Configuration is ready")

	client, err := makeClient(conf, newLogger(os.Stderr))
	if err != nil {
		return err
	}

	defer client.Close()

	lookuper, closeLookuper, err := makeLookuper(conf, client)
	if err != nil {
		return err
	}

	defer closeLookuper()

	ctx, cancel := makeRootContext()
	defer cancel()

	params := makeParams(conf)

	var result interface{}

	switch command {
	case lookupCommand.FullCommand():
		result, err = lookuper.Lookup(ctx, *lookupAddress, params)
	case bulkCommand.FullCommand():
		result, err = lookuper.BulkLookup(ctx, *bulkAddresses, params)
	case checkCommand.FullCommand():
		result, err = client.Check(ctx, params)
	case manyCommand.FullCommand():
		var results []ipstack.LookupResult

		results, err = ipstack.LookupMany(ctx, lookuper, *manyAddresses, params, conf.GetWorkerPoolSize())
		result = makeManyResults(results)
	default:
		err = errors.Errorf("unknown command %s", command)
	}

	if err != nil {
		return errors.Annotatef(err, "%s has failed", command)
	}

	return errors.Trace(printJSON(os.Stdout, result))
}

// loadConfig reads config file and overrides it with flags. Result is
// validated after all overrides.
func loadConfig(path string) (*config, error) {
	conf, err := parseConfig(path)
	if err != nil {
		return nil, errors.Annotate(err, "cannot parse config")
	}

	applyFlags(conf)

	if err := validateConfig(conf); err != nil {
		return nil, errors.Annotate(err, "invalid configuration")
	}

	return conf, nil
}

func applyFlags(conf *config) {
	if *accessKey != "" {
		conf.AccessKey = *accessKey
	}

	if *baseURL != "" {
		conf.BaseURL = *baseURL
	}

	if *timeout != 0 {
		conf.HTTPTimeout.Duration = *timeout
	}

	if *workers != 0 {
		conf.WorkerPoolSize = *workers
	}

	if *cacheSize != 0 {
		conf.Cache.Size = *cacheSize
	}

	if *cacheTTL != 0 {
		conf.Cache.TTL.Duration = *cacheTTL
	}

	if conf.Params == nil {
		conf.Params = map[string]string{}
	}

	if len(*fields) > 0 {
		conf.Params["fields"] = strings.Join(*fields, ",")
	}

	if *language != "" {
		conf.Params["language"] = *language
	}

	if *hostname {
		conf.Params["hostname"] = "1"
	}

	if *security {
		conf.Params["security"] = "1"
	}
}
