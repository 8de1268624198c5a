package commands

import (
	"fmt"
	"os"

	"github.com/AlecAivazis/survey/v2"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/wpschema/wpschema/internal/cli/config"
)

// initAnswers are the interactive choices of wpschema init
type initAnswers struct {
	SiteURL string `survey:"site_url"`
	Driver  string `survey:"driver"`
	Source  string `survey:"source"`
	Cache   string `survey:"cache"`
	Mode    string `survey:"mode"`
}

// NewInitCommand creates the init command
func NewInitCommand(opts *rootOptions) *cobra.Command {
	var (
		output  string
		force   bool
		yes     bool
		answers initAnswers
	)
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a starter " + config.FileName,
		Long: `Asks for the site URL, the content source, the cache backend and the
output mode, then writes a config file. With --yes the flags are used
without prompting.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := os.Stat(output); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", output)
			}

			if !yes {
				if err := survey.Ask(initQuestions(answers), &answers); err != nil {
					return err
				}
			}

			starter, err := buildStarter(answers)
			if err != nil {
				return err
			}
			data, err := yaml.Marshal(starter)
			if err != nil {
				return fmt.Errorf("failed to encode config: %w", err)
			}
			if err := os.WriteFile(output, data, 0o600); err != nil {
				return fmt.Errorf("failed to write %s: %w", output, err)
			}

			color.New(color.FgGreen, color.Bold).Fprintf(cmd.OutOrStdout(), "✓ Wrote %s\n", output)
			fmt.Fprintln(cmd.OutOrStdout(), "  Next: wpschema validate --config", output)
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&output, "output", "o", config.FileName, "file to write")
	flags.BoolVar(&force, "force", false, "overwrite an existing file")
	flags.BoolVarP(&yes, "yes", "y", false, "use flag values without prompting")
	flags.StringVar(&answers.SiteURL, "site-url", "https://example.com", "site URL")
	flags.StringVar(&answers.Driver, "driver", config.DriverYAML, "content driver: yaml, mysql, sqlite, postgres")
	flags.StringVar(&answers.Source, "source", "content.yaml", "fixtures file for yaml, DSN otherwise")
	flags.StringVar(&answers.Cache, "cache", config.CacheMemory, "cache driver: memory, redis, none")
	flags.StringVar(&answers.Mode, "mode", "separate", "output mode: separate or graph")
	return cmd
}

func initQuestions(defaults initAnswers) []*survey.Question {
	return []*survey.Question{
		{
			Name:     "site_url",
			Prompt:   &survey.Input{Message: "Site URL:", Default: defaults.SiteURL},
			Validate: survey.Required,
		},
		{
			Name: "driver",
			Prompt: &survey.Select{
				Message: "Content source:",
				Options: []string{config.DriverYAML, config.DriverMySQL, config.DriverSQLite, config.DriverPostgres},
				Default: defaults.Driver,
			},
		},
		{
			Name:     "source",
			Prompt:   &survey.Input{Message: "Fixtures file or database DSN:", Default: defaults.Source},
			Validate: survey.Required,
		},
		{
			Name: "cache",
			Prompt: &survey.Select{
				Message: "Provider cache:",
				Options: []string{config.CacheMemory, config.CacheRedis, config.CacheNone},
				Default: defaults.Cache,
			},
		},
		{
			Name: "mode",
			Prompt: &survey.Select{
				Message: "Output mode:",
				Options: []string{"separate", "graph"},
				Default: defaults.Mode,
			},
		},
	}
}

// starterConfig is the subset of the config init writes. Everything
// else keeps its default.
type starterConfig struct {
	Site struct {
		URL string `yaml:"url"`
	} `yaml:"site"`
	Content config.ContentConfig `yaml:"content"`
	Cache   struct {
		Driver string `yaml:"driver"`
	} `yaml:"cache"`
	Output config.OutputConfig `yaml:"output"`
}

// buildStarter validates the answers against the defaults the same way
// Load would and returns the file content
func buildStarter(a initAnswers) (*starterConfig, error) {
	cfg := config.Default()
	cfg.Site.URL = a.SiteURL
	cfg.Content.Driver = a.Driver
	if a.Driver == config.DriverYAML {
		cfg.Content.Fixtures = a.Source
	} else {
		cfg.Content.Fixtures = ""
		cfg.Content.DSN = a.Source
	}
	cfg.Cache.Driver = a.Cache
	cfg.Output.Mode = a.Mode

	if err := config.Validate(cfg); err != nil {
		return nil, err
	}

	starter := &starterConfig{Content: cfg.Content, Output: cfg.Output}
	starter.Site.URL = cfg.Site.URL
	starter.Cache.Driver = cfg.Cache.Driver
	return starter, nil
}
