package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"instagen/internal/client"
	"instagen/internal/config"
	"instagen/internal/form"
	"instagen/internal/model"
	"instagen/internal/service"
	"instagen/pkg/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// options 命令行参数
type options struct {
	topic    string
	postType string
	posts    int
	slides   int
	seconds  int
	export   bool
	outDir   string
	local    bool
	server   string
	verbose  bool
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	return buildRootCmd(&options{})
}

func buildRootCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "postgen",
		Short: "Generate Instagram post ideas",
		Long: `Generates headline copy, hashtags and captions for Instagram posts.
Post, Carousel, Reel and Mixed types are supported. Results can be exported
to generated_posts.xlsx.`,
		Example: `  postgen --topic coffee --type Carousel --posts 3 --slides 5
  postgen --topic fitness --type Reel --seconds 30 --export --local`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, opts)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.topic, "topic", "t", "", "post topic (required)")
	f.StringVar(&opts.postType, "type", model.PostTypePost.String(), "Post, Carousel, Reel or Mixed")
	f.IntVarP(&opts.posts, "posts", "n", model.MinPostCount, "number of posts (1-30)")
	f.IntVar(&opts.slides, "slides", 0, "slides per post (1-15, Carousel/Mixed)")
	f.IntVar(&opts.seconds, "seconds", 0, "reel length in seconds (5-90, Reel/Mixed)")
	f.BoolVarP(&opts.export, "export", "e", false, "export results to xlsx")
	f.StringVarP(&opts.outDir, "out", "o", "", "export directory (default EXPORT_DIR)")
	f.BoolVar(&opts.local, "local", false, "generate in-process instead of calling the API")
	f.StringVar(&opts.server, "server", "", "API base url (default API_BASE_URL)")
	f.BoolVarP(&opts.verbose, "verbose", "v", false, "debug logging")

	return cmd
}

func run(cmd *cobra.Command, opts *options) error {
	cfg, err := config.LoadClient()
	if err != nil {
		return err
	}
	if opts.server != "" {
		cfg.APIBaseURL = opts.server
	}
	if opts.outDir != "" {
		cfg.ExportDir = opts.outDir
	}

	zl := zap.NewNop()
	if opts.verbose {
		if zl, err = logger.New("debug", "development"); err != nil {
			return err
		}
		defer func() { _ = zl.Sync() }()
	}

	gen, exp, err := backends(cfg, opts.local, zl)
	if err != nil {
		return err
	}
	ctl := form.NewController(gen, exp,
		form.WithTimeout(cfg.Timeout),
		form.WithSink(form.FileSink{Dir: cfg.ExportDir}),
		form.WithNotifier(newTermNotifier(cmd.ErrOrStderr())),
	)

	if err := applyFlags(cmd, ctl, opts); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	snap := ctl.Snapshot()
	zl.Debug("generating",
		zap.String("topic", snap.Topic),
		zap.Stringer("post_type", snap.PostType),
		zap.Int("posts", snap.PostCount),
		zap.Int("slides", snap.SlideCount),
		zap.Int("seconds", snap.DurationSeconds),
		zap.Bool("local", opts.local))

	if err := ctl.Generate(ctx); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), renderRecords(ctl.Snapshot().Records))

	if opts.export {
		if _, err := ctl.Export(ctx); err != nil {
			return err
		}
	}
	return nil
}

// backends 本地模式直接使用服务层，否则走 HTTP
func backends(cfg *config.ClientConfig, local bool, zl *zap.Logger) (form.Generator, form.Exporter, error) {
	if local {
		zl.Debug("using in-process fabricator")
		stats := service.NewStats()
		fabricator, err := service.NewFabricatorService(service.WithStats(stats))
		if err != nil {
			return nil, nil, err
		}
		return fabricator, service.NewExportService(stats), nil
	}

	zl.Debug("using api", zap.String("base_url", cfg.APIBaseURL))
	api := client.NewAPIClient(cfg.APIBaseURL, cfg.Timeout)
	return api, api, nil
}

// applyFlags 按表单规则写入参数，仅处理用户显式指定的页数/时长
func applyFlags(cmd *cobra.Command, ctl *form.Controller, opts *options) error {
	postType, err := model.ParsePostType(opts.postType)
	if err != nil {
		return err
	}

	ctl.SetTopic(opts.topic)
	if err := ctl.SetPostType(postType); err != nil {
		return err
	}
	if err := ctl.SetPostCount(opts.posts); err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("slides") {
		if err := ctl.SetSlideCount(opts.slides); err != nil {
			return err
		}
	}
	if flags.Changed("seconds") {
		if err := ctl.SetDuration(opts.seconds); err != nil {
			return err
		}
	}
	return nil
}
