package cli

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/seqgraph/pkg/server"
)

// serveOpts holds the flags of the serve command.
type serveOpts struct {
	addr         string
	names        []string
	timeout      time.Duration
	readTimeout  time.Duration
	writeTimeout time.Duration
}

func (c *CLI) serveCommand() *cobra.Command {
	var opts serveOpts

	cmd := &cobra.Command{
		Use:   "serve <graph>",
		Short: "Serve a graph over a read-only HTTP JSON API",
		Long: `Load a graph and answer node, coordinate and variant queries over HTTP
until interrupted.

Routes:
  GET /healthz
  GET /info
  GET /nodes/{id}
  GET /nodes/{id}/edges
  GET /reference/{offset}
  GET /chromosomes/{chrom}/offsets/{offset}
  GET /resolve?pos=&ref=&alt=&chrom=`,
		Example: `  seqgraph serve genome.sg --names chr1,chr2 --addr :9000
  curl 'localhost:9000/resolve?chrom=chr2&pos=1201&ref=C&alt=T'`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := c.config.Serve
			flags := cmd.Flags()
			if !flags.Changed("addr") {
				opts.addr = cfg.Addr
			}
			if !flags.Changed("read-timeout") {
				opts.readTimeout = cfg.ReadTimeout.Duration
			}
			if !flags.Changed("write-timeout") {
				opts.writeTimeout = cfg.WriteTimeout.Duration
			}
			return c.runServe(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", ":8080", "listen address")
	cmd.Flags().StringSliceVar(&opts.names, "names", nil, "chromosome names in graph order, for /chromosomes/{name} and /resolve")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", server.DefaultTimeout, "per-request timeout")
	cmd.Flags().DurationVar(&opts.readTimeout, "read-timeout", 10*time.Second, "HTTP read timeout")
	cmd.Flags().DurationVar(&opts.writeTimeout, "write-timeout", 30*time.Second, "HTTP write timeout")
	return cmd
}

func (c *CLI) runServe(ctx context.Context, input string, opts serveOpts) error {
	p := newProgress(c.Logger)
	g, err := loadGraph(input)
	if err != nil {
		return err
	}
	p.done("loaded graph", "path", input, "nodes", g.NodeCount())
	if len(opts.names) > 0 && len(opts.names) != g.ChromosomeCount() {
		c.Logger.Warn("chromosome names do not match the graph", "names", len(opts.names), "chromosomes", g.ChromosomeCount())
	}

	srv := server.New(g, server.Options{
		Chromosomes: opts.names,
		Logger:      c.Logger,
		Timeout:     opts.timeout,
	})
	printInfo(c.out, "Serving %s on %s", input, opts.addr)
	return srv.ListenAndServe(ctx, opts.addr, opts.readTimeout, opts.writeTimeout)
}
