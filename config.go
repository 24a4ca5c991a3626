package main

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/samber/oops"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Environment variable names read without the QSP_ prefix.
const (
	EnvAccountID       = "AWS_ACCOUNT_ID"
	EnvRegion          = "AWS_REGION"
	EnvTemplateID      = "TEMPLATE_ID"
	EnvDataSetID       = "DATASET_ID"
	EnvAnalysisID      = "ANALYSIS_ID"
	EnvTargetAccountID = "TARGET_ACCOUNT_ID"
	EnvTargetDataSetID = "TARGET_DATASET_ID"
	EnvTargetRoleArn   = "TARGET_ROLE_ARN"
	EnvTargetRegion    = "TARGET_REGION"
)

const (
	DefaultRegion        = "us-east-1"
	DefaultOutput        = "template.json"
	DefaultDashboardName = "New Dashboard"
)

var legacyEnv = map[string]string{
	"account-id":        EnvAccountID,
	"region":            EnvRegion,
	"template-id":       EnvTemplateID,
	"dataset-id":        EnvDataSetID,
	"analysis-id":       EnvAnalysisID,
	"target.account-id": EnvTargetAccountID,
	"target.dataset-id": EnvTargetDataSetID,
	"target.role-arn":   EnvTargetRoleArn,
	"target.region":     EnvTargetRegion,
}

type TargetConfig struct {
	AccountID string
	DataSetID string
	RoleArn   string
	Region    string
}

type VerifyConfig struct {
	Attempts int
	Interval time.Duration
}

type MailConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	To       string
}

type Config struct {
	AccountID       string
	Region          string
	TemplateID      string
	TemplateVersion int64
	DataSetID       string
	AnalysisID      string
	OutputPath      string
	DashboardName   string
	UniqueIDs       bool
	Verbose         bool
	Target          TargetConfig
	VerifyGrant     VerifyConfig
	Mail            MailConfig
}

// TargetRegion is the region used in the target account, falling back to the
// source region.
func (c Config) TargetRegion() string {
	if c.Target.Region != "" {
		return c.Target.Region
	}
	return c.Region
}

// Require reports every listed environment variable whose value is empty as
// one configuration error.
func (c Config) Require(envNames ...string) error {
	values := map[string]string{
		EnvAccountID:       c.AccountID,
		EnvRegion:          c.Region,
		EnvTemplateID:      c.TemplateID,
		EnvDataSetID:       c.DataSetID,
		EnvAnalysisID:      c.AnalysisID,
		EnvTargetAccountID: c.Target.AccountID,
		EnvTargetDataSetID: c.Target.DataSetID,
		EnvTargetRoleArn:   c.Target.RoleArn,
		EnvTargetRegion:    c.Target.Region,
	}
	var missing []string
	for _, name := range envNames {
		if strings.TrimSpace(values[name]) == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	return oops.
		In("config").
		Code(CodeConfig).
		With("missing", missing).
		Hint("set them in the environment, a .env file, quicksight.yaml or as flags").
		Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
}

func newViper() *viper.Viper {
	v := viper.NewWithOptions(viper.WithLogger(slogger))

	v.SetConfigName("quicksight")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.SetEnvPrefix("qsp")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	for key, env := range legacyEnv {
		// BindEnv only fails without a key.
		_ = v.BindEnv(key, env)
	}

	v.SetDefault("region", DefaultRegion)
	v.SetDefault("template-version", 1)
	v.SetDefault("output", DefaultOutput)
	v.SetDefault("dashboard-name", DefaultDashboardName)
	v.SetDefault("verify.attempts", 0)
	v.SetDefault("verify.interval", 2*time.Second)
	v.SetDefault("mail.port", 465)
	return v
}

func registerFlags(flags *pflag.FlagSet) {
	flags.String("account-id", "", "Source AWS account id ($"+EnvAccountID+")")
	flags.String("region", DefaultRegion, "Source region ($"+EnvRegion+")")
	flags.String("template-id", "", "Template id ($"+EnvTemplateID+")")
	flags.Int64("template-version", 1, "Template version to save")
	flags.String("dataset-id", "", "Dataset bound to every template placeholder ($"+EnvDataSetID+")")
	flags.String("analysis-id", "", "Analysis to export a template from ($"+EnvAnalysisID+")")
	flags.String("output", DefaultOutput, "File the template definition is saved to")
	flags.String("dashboard-name", DefaultDashboardName, "Display name of a dashboard created in the source account")
	flags.Bool("unique-ids", false, "Append a random suffix to generated dashboard ids")
	flags.String("target.account-id", "", "Target AWS account id ($"+EnvTargetAccountID+")")
	flags.String("target.dataset-id", "", "Dataset in the target account ($"+EnvTargetDataSetID+")")
	flags.String("target.role-arn", "", "Role assumed in the target account ($"+EnvTargetRoleArn+")")
	flags.String("target.region", "", "Target region, defaults to the source region ($"+EnvTargetRegion+")")
	flags.Int("verify.attempts", 0, "Poll the target account this many times until the template grant is visible (0 disables)")
	flags.Duration("verify.interval", 2*time.Second, "Wait between grant verification attempts")
	flags.String("mail.host", "", "SMTP host for notifications")
	flags.Int("mail.port", 465, "SMTP port")
	flags.String("mail.user", "", "SMTP username")
	flags.String("mail.pass", "", "SMTP password")
	flags.String("mail.from", "", "Notification sender address")
	flags.String("mail.to", "", "Notification recipient; notifications are off when empty")
	flags.Bool("verbose", false, "Enable debug logs")
}

// loadDotEnv reads .env into the process environment without overriding
// variables that are already set. A missing file is fine.
func loadDotEnv(filenames ...string) error {
	if err := godotenv.Load(filenames...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return oops.In("config").Code(CodeConfig).Wrapf(err, "reading .env")
	}
	return nil
}

func readConfigFile(v *viper.Viper) error {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			logger.Debug("No config file found; using just ENV and flags.")
			return nil
		}
		return oops.In("config").Code(CodeConfig).Wrap(err)
	}
	logger.Debug("Config file loaded", "file", v.ConfigFileUsed())
	return nil
}

func loadConfig(v *viper.Viper) (Config, error) {
	config := Config{
		AccountID:       strings.TrimSpace(v.GetString("account-id")),
		Region:          strings.TrimSpace(v.GetString("region")),
		TemplateID:      strings.TrimSpace(v.GetString("template-id")),
		TemplateVersion: v.GetInt64("template-version"),
		DataSetID:       strings.TrimSpace(v.GetString("dataset-id")),
		AnalysisID:      strings.TrimSpace(v.GetString("analysis-id")),
		OutputPath:      v.GetString("output"),
		DashboardName:   v.GetString("dashboard-name"),
		UniqueIDs:       v.GetBool("unique-ids"),
		Verbose:         v.GetBool("verbose"),
		Target: TargetConfig{
			AccountID: strings.TrimSpace(v.GetString("target.account-id")),
			DataSetID: strings.TrimSpace(v.GetString("target.dataset-id")),
			RoleArn:   strings.TrimSpace(v.GetString("target.role-arn")),
			Region:    strings.TrimSpace(v.GetString("target.region")),
		},
		VerifyGrant: VerifyConfig{
			Attempts: v.GetInt("verify.attempts"),
			Interval: v.GetDuration("verify.interval"),
		},
		Mail: MailConfig{
			Host:     v.GetString("mail.host"),
			Port:     v.GetInt("mail.port"),
			Username: v.GetString("mail.user"),
			Password: v.GetString("mail.pass"),
			From:     v.GetString("mail.from"),
			To:       v.GetString("mail.to"),
		},
	}
	if config.Region == "" {
		config.Region = DefaultRegion
	}
	if config.OutputPath == "" {
		config.OutputPath = DefaultOutput
	}

	oopsBuilder := oops.In("config").Code(CodeConfig)
	if config.TemplateVersion < 1 {
		return config, oopsBuilder.
			With("template-version", config.TemplateVersion).
			Errorf("template version must be at least 1")
	}
	if config.VerifyGrant.Attempts < 0 {
		return config, oopsBuilder.
			With("verify.attempts", config.VerifyGrant.Attempts).
			Errorf("verify attempts must not be negative")
	}
	return config, nil
}
