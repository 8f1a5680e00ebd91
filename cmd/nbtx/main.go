package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	flag "github.com/spf13/pflag"

	"github.com/OCharnyshevich/nbt-explorer/internal/config"
	"github.com/OCharnyshevich/nbt-explorer/internal/explorer"
)

// version is set at build time via -ldflags; defaults to dev.
var version = "dev"

type options struct {
	configPath  string
	output      string
	target      string
	fetchDir    string
	verbose     int
	showVersion bool
}

func main() {
	cfg := config.DefaultConfig()
	var o options

	flag.StringVar(&o.configPath, "config", "", "JSON config file; explicit flags win over its values")
	flag.StringVar(&cfg.Format, "format", cfg.Format, "input format: auto, java or bedrock")
	flag.StringVar(&cfg.ByteOrder, "byte-order", cfg.ByteOrder, "override byte order: big or little")
	flag.StringVar(&cfg.Strings, "strings", cfg.Strings, "override string encoding: mutf8 or utf8")
	flag.StringVar(&cfg.Compression, "compression", cfg.Compression, "compression: auto, none, gzip or zlib")
	flag.IntVar(&cfg.MaxDepth, "max-depth", cfg.MaxDepth, "maximum nesting depth accepted")
	flag.BoolVar(&cfg.StrictLength, "strict-length", cfg.StrictLength, "fail on Bedrock length mismatches")
	flag.BoolVar(&cfg.RejectDupKeys, "reject-duplicates", cfg.RejectDupKeys, "fail on duplicate compound keys")
	flag.Int32Var(&cfg.BedrockVersion, "bedrock-version", cfg.BedrockVersion, "envelope version written by convert --to bedrock")
	flag.IntVar(&cfg.Workers, "workers", cfg.Workers, "files decoded in parallel when loading a folder")
	flag.StringSliceVar(&cfg.Extensions, "ext", cfg.Extensions, "file extensions picked up in folders")
	flag.StringVar(&cfg.Color, "color", cfg.Color, "colored output: auto, always or never")
	flag.StringVarP(&o.output, "output", "o", "", "output path for convert and config")
	flag.StringVar(&o.target, "to", "", "convert target format: java or bedrock")
	flag.StringVar(&o.fetchDir, "fetch-dir", "", "download directory for remote sources (default: a temp dir)")
	flag.CountVarP(&o.verbose, "verbose", "v", "increase verbosity; repeat for more detail")
	flag.BoolVar(&o.showVersion, "version", false, "print version and exit")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: nbtx [options] <command> <path>...\n\n")
		fmt.Fprintf(os.Stderr, "Commands:\n")
		fmt.Fprintf(os.Stderr, "  dump     print files as an indented tag tree\n")
		fmt.Fprintf(os.Stderr, "  snbt     print files as stringified NBT\n")
		fmt.Fprintf(os.Stderr, "  check    verify that files re-encode to identical bytes\n")
		fmt.Fprintf(os.Stderr, "  convert  rewrite a file in another format (--to, -o)\n")
		fmt.Fprintf(os.Stderr, "  config   print or save (-o) the effective configuration\n\n")
		fmt.Fprintf(os.Stderr, "Paths may be files, folders or go-getter addresses.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
	}

	flag.Parse()

	if o.showVersion {
		fmt.Println(version)
		return
	}
	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(2)
	}

	level := slog.LevelInfo
	if o.verbose > 0 {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	if o.configPath != "" {
		explicit := make(map[string]bool)
		flag.Visit(func(f *flag.Flag) { explicit[f.Name] = true })

		fromFile := config.DefaultConfig()
		if err := explorer.LoadConfig(o.configPath, fromFile, log); err != nil {
			log.Error("load config", "error", err)
			os.Exit(1)
		}
		config.Merge(cfg, fromFile, explicit)
	}

	switch cfg.Color {
	case "always":
		color.NoColor = false
	case "never":
		color.NoColor = true
	default:
		color.NoColor = !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd())
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cmd, args := flag.Arg(0), flag.Args()[1:]
	if err := run(ctx, cmd, args, cfg, o, log); err != nil {
		log.Error(cmd+" failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cmd string, args []string, cfg *config.Config, o options, log *slog.Logger) error {
	if cmd == "config" {
		return runConfig(cfg, o)
	}

	e, err := explorer.New(cfg, log)
	if err != nil {
		return err
	}
	if len(args) == 0 {
		return fmt.Errorf("%s: no paths given", cmd)
	}

	a := &app{cfg: cfg, opts: o, explorer: e, log: log, out: os.Stdout}
	switch cmd {
	case "dump":
		return a.dump(ctx, args)
	case "snbt":
		return a.snbt(ctx, args)
	case "check":
		return a.check(ctx, args)
	case "convert":
		return a.convert(ctx, args)
	}
	flag.Usage()
	return fmt.Errorf("unknown command %q", cmd)
}
