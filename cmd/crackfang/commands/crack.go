package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/crackfang/pkg/candidate"
	"github.com/Sumatoshi-tech/crackfang/pkg/config"
	"github.com/Sumatoshi-tech/crackfang/pkg/digest"
	"github.com/Sumatoshi-tech/crackfang/pkg/engine"
	"github.com/Sumatoshi-tech/crackfang/pkg/hashfile"
	"github.com/Sumatoshi-tech/crackfang/pkg/observability"
	"github.com/Sumatoshi-tech/crackfang/pkg/profiling"
	"github.com/Sumatoshi-tech/crackfang/pkg/report"
	"github.com/Sumatoshi-tech/crackfang/pkg/runner"
)

// Crack flag names.
const (
	flagMaxLength    = "max-length"
	flagCharset      = "charset"
	flagStartAt      = "start-at"
	flagCores        = "cores"
	flagGPU          = "gpu"
	flagFileEncoding = "file-encoding"
	flagPartition    = "partition"
	flagBatchSize    = "batch-size"
	flagStopOnError  = "stop-on-error"
	flagFormat       = "format"
	flagNoColor      = "no-color"
	flagMetricsAddr  = "metrics-addr"
	flagCPUProfile   = "cpuprofile"
	flagHeapProfile  = "heapprofile"
)

// CrackCommand holds the crack command flags.
type CrackCommand struct {
	charset     string
	startAt     string
	encoding    string
	partition   string
	format      string
	metricsAddr string
	cpuprofile  string
	heapprofile string
	maxLength   int
	cores       int
	batchSize   int
	gpu         bool
	stopOnError bool
	noColor     bool
}

// searchSetup is the resolved search configuration of one run.
type searchSetup struct {
	charset   candidate.Charset
	encoding  digest.Encoding
	partition engine.PartitionMode
	format    report.Format
}

// NewCrackCommand creates the crack command.
func NewCrackCommand() *cobra.Command {
	cc := &CrackCommand{}

	cmd := &cobra.Command{
		Use:   "crack <hash-file>",
		Short: "Recover the passwords of every MD5 hash in a file",
		Long: `Recover the passwords of every MD5 hash in a file, one hash per line.

Candidates are tried shortest first over the selected charset:
  a  lowercase letters
  A  uppercase letters
  1  digits
  s  special characters

With --cores 1 a single goroutine scans the domain in order, starting at
--start-at. With more cores the domain is split into contiguous blocks,
one per worker. --gpu batches candidates for a vectorized device.`,
		Args: cobra.ExactArgs(1),
		RunE: cc.run,
	}

	flags := cmd.Flags()
	flags.IntVarP(&cc.maxLength, flagMaxLength, "m", config.DefaultMaxLength, "maximum candidate length")
	flags.StringVarP(&cc.charset, flagCharset, "c", config.DefaultCharset, "charset flags: a, A, 1, s")
	flags.StringVarP(&cc.startAt, flagStartAt, "s", config.DefaultStartAt, "first candidate to try (single core only)")
	flags.IntVarP(&cc.cores, flagCores, "n", config.DefaultWorkers, "number of workers")
	flags.BoolVarP(&cc.gpu, flagGPU, "g", config.DefaultGPU, "use the batched accelerator engine")
	flags.StringVarP(&cc.encoding, flagFileEncoding, "e", config.DefaultEncoding, "text encoding of the hash file and of candidates")
	flags.StringVar(&cc.partition, flagPartition, config.DefaultPartition, "partition mode for --cores > 1: bijective, fixed")
	flags.IntVar(&cc.batchSize, flagBatchSize, config.DefaultBatchSize, "candidates per accelerator batch")
	flags.BoolVar(&cc.stopOnError, flagStopOnError, config.DefaultStopOnError, "abort the run on the first failed hash")
	flags.StringVar(&cc.format, flagFormat, config.DefaultFormat, "summary format: text, json, yaml")
	flags.BoolVar(&cc.noColor, flagNoColor, config.DefaultNoColor, "disable colored output")
	flags.StringVar(&cc.metricsAddr, flagMetricsAddr, config.DefaultMetricsAddr, "serve Prometheus /metrics on this address while running")
	flags.StringVar(&cc.cpuprofile, flagCPUProfile, "", "write CPU profile to file")
	flags.StringVar(&cc.heapprofile, flagHeapProfile, "", "write heap profile to file")

	return cmd
}

func (cc *CrackCommand) run(cmd *cobra.Command, args []string) error {
	cfg, err := loadSettings(cmd)
	if err != nil {
		return err
	}

	cc.applyFlags(cmd, cfg)

	validateErr := cfg.Validate()
	if validateErr != nil {
		return fmt.Errorf("invalid flags: %w", validateErr)
	}

	setup, err := resolveSearch(cfg)
	if err != nil {
		return err
	}

	obsCfg, err := observabilityConfig(cfg, observability.ModeCLI)
	if err != nil {
		return err
	}

	obsCfg.Prometheus = cfg.Output.MetricsAddr != ""

	providers, err := observability.Init(obsCfg)
	if err != nil {
		return fmt.Errorf("init observability: %w", err)
	}

	defer func() {
		shutdownErr := providers.Shutdown(context.Background())
		if shutdownErr != nil {
			providers.Logger.Warn("observability shutdown failed", "error", shutdownErr)
		}
	}()

	stopProfile, err := profiling.MaybeStartCPUProfile(cc.cpuprofile)
	if err != nil {
		return err
	}
	defer stopProfile()

	runErr := cc.crack(cmd, args[0], cfg, setup, providers)

	heapErr := profiling.MaybeWriteHeapProfile(cc.heapprofile)
	if heapErr != nil {
		providers.Logger.Warn("heap profile failed", "error", heapErr)
	}

	return runErr
}

func (cc *CrackCommand) crack(
	cmd *cobra.Command,
	path string,
	cfg *config.Config,
	setup searchSetup,
	providers observability.Providers,
) error {
	ctx := cmd.Context()
	logger := providers.Logger

	hashes, err := hashfile.ReadFile(path, setup.encoding)
	if err != nil {
		return err
	}

	warnMalformed(ctx, logger, hashes)

	eng, err := engine.New(engine.Options{
		Charset:    setup.charset,
		Encoding:   setup.encoding,
		Logger:     logger,
		StartAt:    cfg.Search.StartAt,
		Partition:  setup.partition,
		MaxLength:  cfg.Search.MaxLength,
		Workers:    cfg.Search.Workers,
		BatchSize:  cfg.Search.BatchSize,
		Accelerate: cfg.Search.GPU,
	})
	if err != nil {
		return err
	}

	searchMetrics, err := observability.NewSearchMetrics(providers.Meter)
	if err != nil {
		return err
	}

	if providers.MetricsHandler != nil {
		stopServer, serverErr := serveMetrics(cfg.Output.MetricsAddr, providers)
		if serverErr != nil {
			return serverErr
		}
		defer stopServer()
	}

	printer := report.NewPrinter(cmd.OutOrStdout(), setup.format, cfg.Output.NoColor)
	printer.Banner(eng.Name())

	run, err := runner.New(runner.Config{
		Engine:      eng,
		Logger:      logger,
		Tracer:      providers.Tracer,
		Metrics:     searchMetrics,
		OnStart:     printer.Cracking,
		OnResult:    printer.Result,
		StopOnError: cfg.Search.StopOnError,
	})
	if err != nil {
		return err
	}

	outcome, runErr := run.Run(ctx, hashes)

	summaryErr := printer.Summary(report.NewSummary(searchMeta(cfg, setup), outcome))

	return errors.Join(runErr, summaryErr)
}

// applyFlags overrides config values with the flags that were set explicitly.
func (cc *CrackCommand) applyFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()

	overrides := []struct {
		flag  string
		apply func()
	}{
		{flagMaxLength, func() { cfg.Search.MaxLength = cc.maxLength }},
		{flagCharset, func() { cfg.Search.Charset = cc.charset }},
		{flagStartAt, func() { cfg.Search.StartAt = cc.startAt }},
		{flagCores, func() { cfg.Search.Workers = cc.cores }},
		{flagGPU, func() { cfg.Search.GPU = cc.gpu }},
		{flagFileEncoding, func() { cfg.Search.Encoding = cc.encoding }},
		{flagPartition, func() { cfg.Search.Partition = cc.partition }},
		{flagBatchSize, func() { cfg.Search.BatchSize = cc.batchSize }},
		{flagStopOnError, func() { cfg.Search.StopOnError = cc.stopOnError }},
		{flagFormat, func() { cfg.Output.Format = cc.format }},
		{flagNoColor, func() { cfg.Output.NoColor = cc.noColor }},
		{flagMetricsAddr, func() { cfg.Output.MetricsAddr = cc.metricsAddr }},
	}

	for _, o := range overrides {
		if flags.Changed(o.flag) {
			o.apply()
		}
	}
}

func resolveSearch(cfg *config.Config) (searchSetup, error) {
	cs, err := candidate.FromFlags(cfg.Search.Charset)
	if err != nil {
		return searchSetup{}, err
	}

	enc, err := digest.LookupEncoding(cfg.Search.Encoding)
	if err != nil {
		return searchSetup{}, err
	}

	partition, err := engine.ParsePartitionMode(cfg.Search.Partition)
	if err != nil {
		return searchSetup{}, err
	}

	format, err := report.ParseFormat(cfg.Output.Format)
	if err != nil {
		return searchSetup{}, err
	}

	return searchSetup{charset: cs, encoding: enc, partition: partition, format: format}, nil
}

// searchMeta describes the domain actually searched: the partition mode
// only applies to the partitioned engine.
func searchMeta(cfg *config.Config, setup searchSetup) report.Meta {
	mode := engine.PartitionBijective
	if cfg.Search.Workers > 1 && !cfg.Search.GPU {
		mode = setup.partition
	}

	var domain uint64

	plan, err := engine.NewPlan(setup.charset.Size(), cfg.Search.MaxLength, 1, mode)
	if err == nil {
		domain = plan.Total
	}

	return report.Meta{
		Charset:    setup.charset.String(),
		Encoding:   setup.encoding.Name(),
		Partition:  string(mode),
		DomainSize: domain,
		MaxLength:  cfg.Search.MaxLength,
		Workers:    cfg.Search.Workers,
	}
}

func serveMetrics(addr string, providers observability.Providers) (func(), error) {
	red, err := observability.NewREDMetrics(providers.Meter)
	if err != nil {
		return nil, err
	}

	ms, err := startMetricsServer(addr, providers.MetricsHandler, providers.Tracer, red, providers.Logger)
	if err != nil {
		return nil, err
	}

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), readHeaderTimeout)
		defer cancel()

		shutdownErr := ms.Shutdown(ctx)
		if shutdownErr != nil {
			providers.Logger.Warn("metrics server shutdown failed", "error", shutdownErr)
		}
	}, nil
}

func warnMalformed(ctx context.Context, logger *slog.Logger, hashes []string) {
	for i, hash := range hashes {
		if hashfile.IsMD5Hex(hash) {
			continue
		}

		logger.WarnContext(ctx, "line is not an MD5 hex digest and will not match", "line", i+1, "value", hash)
	}
}
