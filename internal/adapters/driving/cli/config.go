package cli

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View and change configuration",
	Long: `Reads and writes config.toml. Keys use dot notation, for example
search.default_limit, ranking.semantic or sources.scraper.url.`,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the configuration file location",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := requireConfig()
		if err != nil {
			return err
		}
		cmd.Println(a.Config.Path())
		return nil
	},
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Print one value",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigGet,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set and save one value",
	Long: `Sets a value and saves the file. Values that parse as booleans,
integers or floats are stored with that type.`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

var configListCmd = &cobra.Command{
	Use:   "list [prefix]",
	Short: "List keys and values",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runConfigList,
}

func init() {
	configCmd.AddCommand(configPathCmd)
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configListCmd)
	rootCmd.AddCommand(configCmd)
}

func requireConfig() (*App, error) {
	if app == nil || app.Config == nil {
		return nil, ErrNotConfigured
	}
	return app, nil
}

func runConfigGet(cmd *cobra.Command, args []string) error {
	a, err := requireConfig()
	if err != nil {
		return err
	}
	v, ok := a.Config.Get(args[0])
	if !ok {
		return fmt.Errorf("%s is not set", args[0])
	}
	cmd.Println(formatValue(v))
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	a, err := requireConfig()
	if err != nil {
		return err
	}
	key := strings.TrimSpace(args[0])
	if key == "" {
		return errors.New("empty key")
	}
	if err := a.Config.Set(key, parseValue(args[1])); err != nil {
		return fmt.Errorf("config set: %w", err)
	}
	if err := a.Config.Save(); err != nil {
		return fmt.Errorf("config save: %w", err)
	}
	cmd.Printf("%s = %s\n", key, formatValue(parseValue(args[1])))
	return nil
}

func runConfigList(cmd *cobra.Command, args []string) error {
	a, err := requireConfig()
	if err != nil {
		return err
	}
	prefix := ""
	if len(args) == 1 {
		prefix = args[0]
	}
	for _, key := range a.Config.Keys(prefix) {
		v, _ := a.Config.Get(key)
		cmd.Printf("%s = %s\n", key, formatValue(v))
	}
	return nil
}

// parseValue types a command-line value: bool, then int64, then float64, else string.
func parseValue(s string) any {
	if b, err := strconv.ParseBool(s); err == nil {
		return b
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return s
}

func formatValue(v any) string {
	switch x := v.(type) {
	case string:
		return strconv.Quote(x)
	case []any:
		parts := make([]string, len(x))
		for i, e := range x {
			parts[i] = formatValue(e)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	default:
		return fmt.Sprint(x)
	}
}
