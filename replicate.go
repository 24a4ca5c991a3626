package main

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	qstypes "github.com/aws/aws-sdk-go-v2/service/quicksight/types"
	"github.com/charmbracelet/log"
	"github.com/samber/oops"

	"github.com/senpro-it/quicksight-provisioner/models"
	"github.com/senpro-it/quicksight-provisioner/tools"
)

var replicateRequired = []string{
	EnvAccountID,
	EnvTemplateID,
	EnvTargetAccountID,
	EnvTargetDataSetID,
	EnvTargetRoleArn,
}

// Replicator copies a dashboard built from a source-account template into
// another account. Nothing is rolled back when a later step fails; the
// template grant stays in place.
type Replicator struct {
	Source    *QuickSightClient
	STS       STSAPI
	Base      aws.Config
	NewClient func(aws.Config) *QuickSightClient
}

func (r Replicator) Run(ctx context.Context, config Config) (*models.Dashboard, error) {
	if err := config.Require(replicateRequired...); err != nil {
		return nil, err
	}
	logger := logger.WithPrefix("replicate").With("templateID", config.TemplateID)

	logger.Info("Updating template permissions", "targetAccountID", config.Target.AccountID)
	if _, err := r.Source.GrantTemplateAccess(ctx, config.AccountID, config.TemplateID, config.Target.AccountID); err != nil {
		return nil, err
	}
	logger.Info("Template permissions updated successfully")

	targetRegion := config.TargetRegion()
	targetAWS, err := AssumeRole(ctx, r.STS, r.Base, config.Target.RoleArn, targetRegion)
	if err != nil {
		return nil, err
	}
	target := r.NewClient(targetAWS)

	if config.VerifyGrant.Attempts > 0 {
		if err := waitForGrant(ctx, target, config); err != nil {
			return nil, err
		}
	}

	details, err := r.Source.DescribeTemplate(ctx, config.AccountID, config.TemplateID, nil)
	if err != nil {
		return nil, err
	}
	printJSON("Template Details", details)
	logDataSetConfigurations(logger, details.Template)

	name := "Imported Dashboard " + now().Format(timestampLayout)
	return CreateDashboardFromTemplate(ctx, target, details.Template, name, models.Target{
		AccountID: config.Target.AccountID,
		Region:    targetRegion,
		DataSetID: config.Target.DataSetID,
	}, config.UniqueIDs)
}

// waitForGrant describes the source template with the target account's
// credentials until the call succeeds.
func waitForGrant(ctx context.Context, target *QuickSightClient, config Config) error {
	attempts := config.VerifyGrant.Attempts
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		_, lastErr = target.DescribeTemplate(ctx, config.AccountID, config.TemplateID, nil)
		if lastErr == nil {
			logger.Info("Template grant is visible in the target account", "attempt", attempt)
			return nil
		}
		if attempt == attempts {
			break
		}
		logger.Warn("Template grant not visible yet", "attempt", attempt, "of", attempts)
		select {
		case <-ctx.Done():
			return oops.In("waitForGrant").Wrap(ctx.Err())
		case <-time.After(config.VerifyGrant.Interval):
		}
	}
	return oops.
		In("waitForGrant").
		Code(CodeAWS).
		With("attempts", attempts).
		Wrapf(lastErr, "template grant not visible in account %s", config.Target.AccountID)
}

func logDataSetConfigurations(logger *log.Logger, template *qstypes.Template) {
	if template == nil || template.Version == nil {
		return
	}
	for _, dsConfig := range template.Version.DataSetConfigurations {
		columns := 0
		if dsConfig.DataSetSchema != nil {
			columns = len(dsConfig.DataSetSchema.ColumnSchemaList)
		}
		logger.Info("Template dataset configuration",
			"placeholder", tools.ValueOf(dsConfig.Placeholder),
			"columns", columns,
			"columnGroups", len(dsConfig.ColumnGroupSchemaList),
		)
	}
}
