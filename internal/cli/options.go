package cli

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"workspace-graph/internal/app"
)

// loadOptions are the flags shared by every command that loads a workspace.
type loadOptions struct {
	Path           string
	DisableSandbox bool
	MaxWorkers     int
	Keep           []string
}

func bindLoadFlags(cmd *cobra.Command, opts *loadOptions) {
	cmd.Flags().StringVar(&opts.Path, "path", ".", "Workspace root directory")
	cmd.Flags().BoolVar(&opts.DisableSandbox, "disable-sandbox", false, "Disable sandboxing while loading manifests")
	cmd.Flags().IntVar(&opts.MaxWorkers, "max-workers", 0, "Maximum concurrent project conversions (0 = GOMAXPROCS)")
	cmd.Flags().StringSliceVar(&opts.Keep, "keep", nil, "External targets to keep when pruning (name, prefix*, or package:name)")
	_ = viper.BindPFlag("path", cmd.Flags().Lookup("path"))
	_ = viper.BindPFlag("disable_sandbox", cmd.Flags().Lookup("disable-sandbox"))
	_ = viper.BindPFlag("max_workers", cmd.Flags().Lookup("max-workers"))
	_ = viper.BindPFlag("prune_keep", cmd.Flags().Lookup("keep"))
}

func (o loadOptions) request(cmd *cobra.Command) app.LoadRequest {
	return app.LoadRequest{
		Path:           resolveString(cmd, o.Path, "path", "path"),
		DisableSandbox: resolveBool(cmd, o.DisableSandbox, "disable_sandbox", "disable-sandbox"),
		MaxWorkers:     resolveInt(cmd, o.MaxWorkers, "max_workers", "max-workers"),
	}
}

func (o loadOptions) service(cmd *cobra.Command) (app.Service, error) {
	return newAppService(
		resolveStrings(cmd, o.Keep, "prune_keep", "keep"),
		resolveInt(cmd, o.MaxWorkers, "max_workers", "max-workers"),
	)
}

func resolveString(cmd *cobra.Command, value string, key string, flagName string) string {
	if cmd == nil {
		if value != "" {
			return value
		}
		return viper.GetString(key)
	}
	if flagChanged(cmd, flagName) {
		return value
	}
	if configured := viper.GetString(key); configured != "" {
		return configured
	}
	return value
}

func resolveStrings(cmd *cobra.Command, values []string, key string, flagName string) []string {
	if cmd == nil {
		if len(values) > 0 {
			return values
		}
		return viper.GetStringSlice(key)
	}
	if flagChanged(cmd, flagName) {
		return values
	}
	return viper.GetStringSlice(key)
}

func resolveBool(cmd *cobra.Command, value bool, key string, flagName string) bool {
	if cmd == nil {
		return value
	}
	if flagChanged(cmd, flagName) {
		return value
	}
	return viper.GetBool(key)
}

func resolveInt(cmd *cobra.Command, value int, key string, flagName string) int {
	if cmd == nil {
		return value
	}
	if flagChanged(cmd, flagName) {
		return value
	}
	return viper.GetInt(key)
}

func flagChanged(cmd *cobra.Command, name string) bool {
	if cmd == nil || strings.TrimSpace(name) == "" {
		return false
	}
	if flag := cmd.Flags().Lookup(name); flag != nil {
		return flag.Changed
	}
	if flag := cmd.PersistentFlags().Lookup(name); flag != nil {
		return flag.Changed
	}
	return false
}
