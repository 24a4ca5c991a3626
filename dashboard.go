package main

import (
	"context"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/quicksight"
	qstypes "github.com/aws/aws-sdk-go-v2/service/quicksight/types"
	"github.com/google/uuid"
	"github.com/samber/oops"

	"github.com/senpro-it/quicksight-provisioner/models"
	"github.com/senpro-it/quicksight-provisioner/tools"
)

const timestampLayout = "20060102150405"

var createDashboardRequired = []string{EnvAccountID, EnvTemplateID, EnvDataSetID}

// now is swapped in tests.
var now = time.Now

// dashboardID is "dashboard-" plus the local time to the second. Two calls
// within the same second collide unless unique is set.
func dashboardID(t time.Time, unique bool) string {
	id := "dashboard-" + t.Format(timestampLayout)
	if unique {
		id += "-" + strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	}
	return id
}

// BuildDataSetReferences maps every dataset placeholder of template to the
// target's dataset. A template without placeholders is an error.
func BuildDataSetReferences(template *qstypes.Template, target models.Target) ([]qstypes.DataSetReference, error) {
	oopsBuilder := oops.In("BuildDataSetReferences").Code(CodeTemplate)
	if template != nil {
		oopsBuilder = oopsBuilder.With("templateArn", tools.ValueOf(template.Arn))
	}

	arn := tools.DataSetArn(target.Region, target.AccountID, target.DataSetID)
	var refs []qstypes.DataSetReference
	if template != nil && template.Version != nil {
		seen := map[string]bool{}
		for _, dsConfig := range template.Version.DataSetConfigurations {
			placeholder := tools.ValueOf(dsConfig.Placeholder)
			if placeholder == "" || seen[placeholder] {
				continue
			}
			seen[placeholder] = true
			refs = append(refs, qstypes.DataSetReference{
				DataSetPlaceholder: aws.String(placeholder),
				DataSetArn:         aws.String(arn),
			})
		}
	}
	if len(refs) == 0 {
		return nil, oopsBuilder.
			Hint("the template version carries no DataSetConfigurations").
			Errorf("no dataset references found in template")
	}
	return refs, nil
}

func newCreateDashboardInput(id string, name string, templateArn string, target models.Target, refs []qstypes.DataSetReference) *quicksight.CreateDashboardInput {
	return &quicksight.CreateDashboardInput{
		AwsAccountId: aws.String(target.AccountID),
		DashboardId:  aws.String(id),
		Name:         aws.String(name),
		Permissions: []qstypes.ResourcePermission{
			{
				Principal: aws.String(tools.NamespaceArn(target.Region, target.AccountID, tools.DefaultNamespace)),
				Actions: []string{
					"quicksight:DescribeDashboard",
					"quicksight:QueryDashboard",
					"quicksight:ListDashboardVersions",
				},
			},
		},
		SourceEntity: &qstypes.DashboardSourceEntity{
			SourceTemplate: &qstypes.DashboardSourceTemplate{
				Arn:               aws.String(templateArn),
				DataSetReferences: refs,
			},
		},
		DashboardPublishOptions: &qstypes.DashboardPublishOptions{
			AdHocFilteringOption: &qstypes.AdHocFilteringOption{
				AvailabilityStatus: qstypes.DashboardBehaviorEnabled,
			},
			ExportToCSVOption: &qstypes.ExportToCSVOption{
				AvailabilityStatus: qstypes.DashboardBehaviorEnabled,
			},
			SheetControlsOption: &qstypes.SheetControlsOption{
				VisibilityState: qstypes.DashboardUIStateExpanded,
			},
		},
		VersionDescription: aws.String("Initial version"),
	}
}

// CreateDashboardFromTemplate instantiates template in the target account,
// binding all of its placeholders to the target dataset.
func CreateDashboardFromTemplate(ctx context.Context, qs *QuickSightClient, template *qstypes.Template, name string, target models.Target, uniqueIDs bool) (*models.Dashboard, error) {
	refs, err := BuildDataSetReferences(template, target)
	if err != nil {
		return nil, err
	}

	id := dashboardID(now(), uniqueIDs)
	logger := logger.With("dashboardID", id).With("accountID", target.AccountID).With("region", qs.Region())
	for _, ref := range refs {
		logger.Info("Mapping dataset placeholder", "placeholder", *ref.DataSetPlaceholder, "dataSetArn", *ref.DataSetArn)
	}
	logger.Info("Creating dashboard", "name", name)

	out, err := qs.CreateDashboard(ctx, newCreateDashboardInput(id, name, tools.ValueOf(template.Arn), target, refs))
	if err != nil {
		return nil, err
	}

	dashboard := &models.Dashboard{
		ID:             id,
		Name:           name,
		Arn:            tools.ValueOf(out.Arn),
		VersionArn:     tools.ValueOf(out.VersionArn),
		CreationStatus: string(out.CreationStatus),
		URL:            tools.DashboardURL(target.Region, id),
		Target:         target,
	}
	logger.Info("Dashboard created successfully!", "url", dashboard.URL)
	printJSON("Dashboard Creation Response", out)
	return dashboard, nil
}

// listGroups prints the groups of the default namespace. Failures are only
// logged.
func listGroups(ctx context.Context, qs *QuickSightClient, accountID string) {
	out, err := qs.ListGroups(ctx, accountID, tools.DefaultNamespace)
	if err != nil {
		logger.Warn("Could not list QuickSight groups", "err", err)
		return
	}
	printJSON("Available QuickSight Groups", out)
}

// CreateDashboard builds a dashboard from the configured template in the
// source account, bound to the configured dataset.
func CreateDashboard(ctx context.Context, qs *QuickSightClient, config Config) (*models.Dashboard, error) {
	if err := config.Require(createDashboardRequired...); err != nil {
		return nil, err
	}

	listGroups(ctx, qs, config.AccountID)

	details, err := qs.DescribeTemplate(ctx, config.AccountID, config.TemplateID, nil)
	if err != nil {
		return nil, err
	}
	printJSON("Template Details", details)

	return CreateDashboardFromTemplate(ctx, qs, details.Template, config.DashboardName, models.Target{
		AccountID: config.AccountID,
		Region:    config.Region,
		DataSetID: config.DataSetID,
	}, config.UniqueIDs)
}
