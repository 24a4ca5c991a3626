package main

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/charmbracelet/log"
	"github.com/davecgh/go-spew/spew"
	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/senpro-it/quicksight-provisioner/tools"
)

func loadAWSConfig(ctx context.Context, region string) (aws.Config, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return aws.Config{}, oops.In("loadAWSConfig").Code(CodeAWS).With("region", region).Wrap(err)
	}
	return cfg, nil
}

func newRootCmd() *cobra.Command {
	v := newViper()
	config := &Config{}

	root := &cobra.Command{
		Use:           "qs-provisioner",
		Short:         "Export QuickSight templates and provision dashboards from them",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := loadDotEnv(); err != nil {
				return err
			}
			if err := readConfigFile(v); err != nil {
				return err
			}
			loaded, err := loadConfig(v)
			if err != nil {
				return err
			}
			*config = loaded
			if config.Verbose {
				logger.SetLevel(log.DebugLevel)
			}
			logger.Debug(spew.Sdump(v.AllKeys()))
			logger.Info("Configuration loaded!")
			return nil
		},
	}
	registerFlags(root.PersistentFlags())
	if err := v.BindPFlags(root.PersistentFlags()); err != nil {
		logger.Fatal("Could not bind flags", "err", err)
	}

	root.AddCommand(
		exportTemplateCmd(config),
		saveTemplateCmd(config),
		createDashboardCmd(config),
		replicateDashboardCmd(config),
		listGroupsCmd(config),
	)
	return root
}

// sourceClient validates config before any AWS client is built.
func sourceClient(ctx context.Context, config *Config, required []string) (aws.Config, *QuickSightClient, error) {
	if err := config.Require(required...); err != nil {
		return aws.Config{}, nil, err
	}
	cfg, err := loadAWSConfig(ctx, config.Region)
	if err != nil {
		return aws.Config{}, nil, err
	}
	return cfg, MakeQuickSightClient(cfg), nil
}

func exportTemplateCmd(config *Config) *cobra.Command {
	return &cobra.Command{
		Use:   "export-template",
		Short: "Create a template from an analysis and print it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			_, qs, err := sourceClient(ctx, config, exportTemplateRequired)
			if err != nil {
				return err
			}
			template, err := ExportTemplate(ctx, qs, *config)
			if err != nil {
				return oops.In("export-template").Wrapf(err, "failed to create template")
			}
			printJSON("Template", template)
			return nil
		},
	}
}

func saveTemplateCmd(config *Config) *cobra.Command {
	return &cobra.Command{
		Use:   "save-template",
		Short: "Save a template version's definition to a JSON file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			_, qs, err := sourceClient(ctx, config, saveTemplateRequired)
			if err != nil {
				return err
			}
			path, err := SaveTemplate(ctx, qs, *config)
			if err != nil {
				return err
			}
			NewNotifier(config.Mail).TemplateSaved(config.TemplateID, path)
			return nil
		},
	}
}

func createDashboardCmd(config *Config) *cobra.Command {
	return &cobra.Command{
		Use:   "create-dashboard",
		Short: "Create a dashboard from a template in the same account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			_, qs, err := sourceClient(ctx, config, createDashboardRequired)
			if err != nil {
				return err
			}
			dashboard, err := CreateDashboard(ctx, qs, *config)
			if err != nil {
				return err
			}
			NewNotifier(config.Mail).DashboardCreated(dashboard)
			return nil
		},
	}
}

func replicateDashboardCmd(config *Config) *cobra.Command {
	return &cobra.Command{
		Use:   "replicate-dashboard",
		Short: "Create a dashboard from a source-account template in a target account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			base, qs, err := sourceClient(ctx, config, replicateRequired)
			if err != nil {
				return err
			}
			replicator := Replicator{
				Source:    qs,
				STS:       sts.NewFromConfig(base),
				Base:      base,
				NewClient: MakeQuickSightClient,
			}
			dashboard, err := replicator.Run(ctx, *config)
			if err != nil {
				return err
			}
			NewNotifier(config.Mail).DashboardCreated(dashboard)
			return nil
		},
	}
}

func listGroupsCmd(config *Config) *cobra.Command {
	return &cobra.Command{
		Use:   "list-groups",
		Short: "List the groups of the default namespace",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			_, qs, err := sourceClient(ctx, config, []string{EnvAccountID})
			if err != nil {
				return err
			}
			groups, err := qs.ListGroups(ctx, config.AccountID, tools.DefaultNamespace)
			if err != nil {
				return err
			}
			printJSON("Available QuickSight Groups", groups)
			return nil
		},
	}
}
