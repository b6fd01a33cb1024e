package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/alecthomas/kong"

	"github.com/olehluchkiv/goenrich/internal/dataio"
	"github.com/olehluchkiv/goenrich/internal/geneontology"
	"github.com/olehluchkiv/goenrich/internal/logging"
)

var version = "dev"

const defaultConfigFile = "~/.config/goenrich/config.json"

// Globals are the flags shared by every command.
type Globals struct {
	Config      kong.ConfigFlag `help:"JSON configuration file." type:"path"`
	Organism    int             `help:"NCBI taxonomy id." default:"${organism}"`
	LogFile     string          `name:"log-file" help:"Also write logs to this file." type:"path"`
	LogLevel    string          `name:"log-level" help:"Log level (debug, info, warn, error)." default:"info" enum:"debug,info,warn,warning,error"`
	CacheDir    string          `name:"cache-dir" help:"Download cache directory (default ~/.cache/goenrich)." type:"path"`
	CacheMaxAge time.Duration   `name:"cache-max-age" help:"Re-download cached files older than this; 0 keeps them forever." default:"${cache_max_age}"`
	OBOURL      string          `name:"obo-url" help:"GO ontology (OBO format)." default:"${obo_url}"`
	GOAURL      string          `name:"goa-url" help:"Base URL of the per-organism GOA files." default:"${goa_url}"`
	GAFURL      string          `name:"gaf-url" help:"GAF file to use instead of the organism's GOA file."`
	UniProtURL  string          `name:"uniprot-url" help:"UniProt REST stream endpoint." default:"${uniprot_url}"`
	Timeout     time.Duration   `help:"Timeout of a single download." default:"${timeout}"`
	RateLimit   float64         `name:"rate-limit" help:"Maximum requests per second; 0 disables the limit." default:"${rate_limit}"`
}

// DataConfig maps the flags onto the data client configuration.
func (g *Globals) DataConfig() dataio.Config {
	cfg := dataio.DefaultConfig()
	cfg.OBOURL = g.OBOURL
	cfg.GOABaseURL = g.GOAURL
	cfg.GAFURL = g.GAFURL
	cfg.UniProtURL = g.UniProtURL
	cfg.CacheDir = g.CacheDir
	cfg.CacheMaxAge = g.CacheMaxAge
	cfg.Timeout = g.Timeout
	cfg.RateLimit = g.RateLimit
	cfg.UserAgent = "goenrich/" + version
	return cfg
}

// CLI is the command tree.
type CLI struct {
	Globals

	Annotate AnnotateCmd `cmd:"" help:"Attach GO annotations to the nodes of a gene graph."`
	Enrich   EnrichCmd   `cmd:"" help:"Test GO terms for over-representation in a gene set."`
	Lookup   LookupCmd   `cmd:"" help:"Look up GO terms, names and gene annotations."`
	Version  VersionCmd  `cmd:"" help:"Print version information."`
}

// session carries what the commands need at run time.
type session struct {
	ctx      context.Context
	logger   *slog.Logger
	out      io.Writer
	progress io.Writer
	organism int
	source   func() (geneontology.Source, error)
}

func parserOptions(configPaths ...string) []kong.Option {
	def := dataio.DefaultConfig()
	return []kong.Option{
		kong.Name("goenrich"),
		kong.Description("Gene Ontology annotation and term enrichment for UniProt gene sets."),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.DefaultEnvars("GOENRICH"),
		kong.Configuration(kong.JSON, configPaths...),
		kong.Vars{
			"organism":      strconv.Itoa(geneontology.DefaultOrganism),
			"cache_max_age": def.CacheMaxAge.String(),
			"obo_url":       def.OBOURL,
			"goa_url":       def.GOABaseURL,
			"uniprot_url":   def.UniProtURL,
			"timeout":       def.Timeout.String(),
			"rate_limit":    strconv.FormatFloat(def.RateLimit, 'g', -1, 64),
		},
	}
}

func main() {
	var cli CLI
	kctx := kong.Parse(&cli, parserOptions(defaultConfigFile)...)

	level, err := logging.ParseLevel(cli.LogLevel)
	kctx.FatalIfErrorf(err)

	logger, logCleanup, err := logging.Setup(cli.LogFile, level)
	kctx.FatalIfErrorf(err)

	// Setup signal handling with context cancellation
	ctx, cancel := context.WithCancel(context.Background())
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received signal, shutting down", "signal", sig)
		cancel()
	}()

	s := &session{
		ctx:      ctx,
		logger:   logger,
		out:      os.Stdout,
		progress: os.Stderr,
		organism: cli.Organism,
		source: func() (geneontology.Source, error) {
			c, err := dataio.NewClient(cli.DataConfig(), logger)
			if err != nil {
				return nil, err
			}
			return c, nil
		},
	}

	err = kctx.Run(s)
	if err != nil {
		logger.Error("command failed", "command", kctx.Command(), "error", err)
	}
	cancel()
	logCleanup()
	kctx.FatalIfErrorf(err)
}
