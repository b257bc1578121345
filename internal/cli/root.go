// Package cli implements pbxctl, a terminal client over the console store.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/iamarketings/Operator/internal/apiclient"
	"github.com/iamarketings/Operator/internal/sample"
	"github.com/iamarketings/Operator/internal/simulator"
	"github.com/iamarketings/Operator/internal/store"
)

type app struct {
	v      *viper.Viper
	logger *slog.Logger
	store  *store.Store
}

// NewRootCommand builds the pbxctl command tree. Settings are read from the
// --config file, PBX_* environment variables and flags, in increasing priority.
func NewRootCommand() *cobra.Command {
	a := &app{v: viper.New()}

	root := &cobra.Command{
		Use:   "pbxctl",
		Short: "PBX operator console client",
		Long: `PBX operator console client

Lists and edits extensions, trunks and queues through the PBX backend.
When the backend is unreachable, changes are applied to a local copy
seeded with sample data and reported as local.`,
		SilenceUsage: true,
	}

	flags := root.PersistentFlags()
	flags.String("config", "", "config file (yaml)")
	flags.String("api", "http://127.0.0.1:8080", "backend base URL")
	flags.String("api-key", "", "backend API key")
	flags.Duration("timeout", 5*time.Second, "backend request timeout (0 disables)")
	flags.Int64("seed", 0, "sample data seed (0 uses the clock)")
	flags.Bool("verbose", false, "log backend failures")

	_ = a.v.BindPFlag("console.api_base_url", flags.Lookup("api"))
	_ = a.v.BindPFlag("console.api_key", flags.Lookup("api-key"))
	_ = a.v.BindPFlag("console.request_timeout", flags.Lookup("timeout"))
	_ = a.v.BindPFlag("console.sample_seed", flags.Lookup("seed"))
	a.v.SetEnvPrefix("PBX")
	a.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	a.v.AutomaticEnv()

	a.v.SetDefault("console.sample_sizes.extensions", sample.DefaultSizes.Extensions)
	a.v.SetDefault("console.sample_sizes.trunks", sample.DefaultSizes.Trunks)
	a.v.SetDefault("console.sample_sizes.queues", sample.DefaultSizes.Queues)
	a.v.SetDefault("console.sample_sizes.cdr", sample.DefaultSizes.CDRs)
	a.v.SetDefault("console.simulator.interval", simulator.DefaultParams.Interval)
	a.v.SetDefault("console.simulator.max_calls", simulator.DefaultParams.MaxCalls)

	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if path, _ := cmd.Flags().GetString("config"); path != "" {
			a.v.SetConfigFile(path)
			if err := a.v.ReadInConfig(); err != nil {
				return fmt.Errorf("read config: %w", err)
			}
		}

		level := slog.LevelError
		if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
			level = slog.LevelWarn
		}
		a.logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
		return nil
	}

	root.AddCommand(
		a.extensionsCommand(),
		a.trunksCommand(),
		a.queuesCommand(),
		a.cdrCommand(),
		a.callsCommand(),
	)
	return root
}

func (a *app) seed() int64 {
	if s := a.v.GetInt64("console.sample_seed"); s != 0 {
		return s
	}
	return time.Now().UnixNano()
}

// openStore builds the store and loads it from the backend. Collections the
// backend could not serve keep their sample data and are reported on stderr.
func (a *app) openStore(ctx context.Context, cmd *cobra.Command) *store.Store {
	if a.store != nil {
		return a.store
	}

	client := apiclient.New(a.v.GetString("console.api_base_url"), a.v.GetDuration("console.request_timeout"))
	if key := a.v.GetString("console.api_key"); key != "" {
		client.Headers = map[string]string{"X-API-Key": key}
	}

	sizes := sample.Sizes{
		Extensions: a.v.GetInt("console.sample_sizes.extensions"),
		Trunks:     a.v.GetInt("console.sample_sizes.trunks"),
		Queues:     a.v.GetInt("console.sample_sizes.queues"),
		CDRs:       a.v.GetInt("console.sample_sizes.cdr"),
	}
	ds := sample.New(a.seed()).Dataset(sizes, time.Now())

	a.store = store.New(client, ds, store.WithLogger(a.logger))
	report := a.store.Load(ctx)
	warnLoad(cmd.ErrOrStderr(), report)
	return a.store
}

func warnLoad(w io.Writer, r store.LoadReport) {
	failed := []struct {
		name string
		err  error
	}{
		{apiclient.Extensions, r.Extensions},
		{apiclient.Trunks, r.Trunks},
		{apiclient.Queues, r.Queues},
		{apiclient.CDR, r.CDRs},
	}
	for _, f := range failed {
		if f.err != nil {
			color.New(color.FgYellow).Fprintf(w, "! %s: backend unavailable, showing sample data\n", f.name)
		}
	}
}
