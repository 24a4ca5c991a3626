package main

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/quicksight"
	qstypes "github.com/aws/aws-sdk-go-v2/service/quicksight/types"
	"github.com/davecgh/go-spew/spew"
	"github.com/samber/oops"

	"github.com/senpro-it/quicksight-provisioner/tools"
)

// QuickSightAPI is the part of the QuickSight SDK client this tool calls.
type QuickSightAPI interface {
	DescribeAnalysis(ctx context.Context, params *quicksight.DescribeAnalysisInput, optFns ...func(*quicksight.Options)) (*quicksight.DescribeAnalysisOutput, error)
	CreateTemplate(ctx context.Context, params *quicksight.CreateTemplateInput, optFns ...func(*quicksight.Options)) (*quicksight.CreateTemplateOutput, error)
	DescribeTemplate(ctx context.Context, params *quicksight.DescribeTemplateInput, optFns ...func(*quicksight.Options)) (*quicksight.DescribeTemplateOutput, error)
	CreateDashboard(ctx context.Context, params *quicksight.CreateDashboardInput, optFns ...func(*quicksight.Options)) (*quicksight.CreateDashboardOutput, error)
	UpdateTemplatePermissions(ctx context.Context, params *quicksight.UpdateTemplatePermissionsInput, optFns ...func(*quicksight.Options)) (*quicksight.UpdateTemplatePermissionsOutput, error)
	ListGroups(ctx context.Context, params *quicksight.ListGroupsInput, optFns ...func(*quicksight.Options)) (*quicksight.ListGroupsOutput, error)
}

var _ QuickSightAPI = (*quicksight.Client)(nil)

type QuickSightClient struct {
	api    QuickSightAPI
	region string
}

func MakeQuickSightClient(cfg aws.Config) *QuickSightClient {
	return &QuickSightClient{
		api:    quicksight.NewFromConfig(cfg),
		region: cfg.Region,
	}
}

func (c *QuickSightClient) Region() string {
	return c.region
}

func (c *QuickSightClient) DescribeAnalysis(ctx context.Context, accountID string, analysisID string) (*qstypes.Analysis, error) {
	oopsBuilder := oops.In("DescribeAnalysis").With("accountID", accountID).With("analysisID", analysisID)
	out, err := c.api.DescribeAnalysis(ctx, &quicksight.DescribeAnalysisInput{
		AwsAccountId: aws.String(accountID),
		AnalysisId:   aws.String(analysisID),
	})
	if err != nil {
		return nil, wrapAWS(oopsBuilder, "describing analysis", err)
	}
	if out.Analysis == nil {
		return nil, oopsBuilder.Code(CodeAWS).Errorf("analysis description is empty")
	}
	logger.Debug(spew.Sdump(out.Analysis))
	return out.Analysis, nil
}

func (c *QuickSightClient) CreateTemplateFromAnalysis(ctx context.Context, accountID string, templateID string, analysisArn string, refs []qstypes.DataSetReference) (*quicksight.CreateTemplateOutput, error) {
	oopsBuilder := oops.In("CreateTemplateFromAnalysis").With("accountID", accountID).With("templateID", templateID)
	out, err := c.api.CreateTemplate(ctx, &quicksight.CreateTemplateInput{
		AwsAccountId: aws.String(accountID),
		TemplateId:   aws.String(templateID),
		Name:         aws.String(templateID),
		SourceEntity: &qstypes.TemplateSourceEntity{
			SourceAnalysis: &qstypes.TemplateSourceAnalysis{
				Arn:               aws.String(analysisArn),
				DataSetReferences: refs,
			},
		},
		VersionDescription: aws.String("Created from analysis"),
	})
	if err != nil {
		return nil, wrapAWS(oopsBuilder, "creating template", err)
	}
	return out, nil
}

// DescribeTemplate reads a template; a nil version means the latest one.
func (c *QuickSightClient) DescribeTemplate(ctx context.Context, accountID string, templateID string, version *int64) (*quicksight.DescribeTemplateOutput, error) {
	oopsBuilder := oops.In("DescribeTemplate").With("accountID", accountID).With("templateID", templateID)
	if version != nil {
		oopsBuilder = oopsBuilder.With("version", *version)
	}
	out, err := c.api.DescribeTemplate(ctx, &quicksight.DescribeTemplateInput{
		AwsAccountId:  aws.String(accountID),
		TemplateId:    aws.String(templateID),
		VersionNumber: version,
	})
	if err != nil {
		return nil, wrapAWS(oopsBuilder, "getting template details", err)
	}
	if out.Template == nil {
		return nil, oopsBuilder.Code(CodeAWS).Errorf("template description is empty")
	}
	return out, nil
}

func (c *QuickSightClient) CreateDashboard(ctx context.Context, input *quicksight.CreateDashboardInput) (*quicksight.CreateDashboardOutput, error) {
	oopsBuilder := oops.
		In("CreateDashboard").
		With("accountID", tools.ValueOf(input.AwsAccountId)).
		With("dashboardID", tools.ValueOf(input.DashboardId))
	out, err := c.api.CreateDashboard(ctx, input)
	if err != nil {
		return nil, wrapAWS(oopsBuilder, "creating dashboard", err)
	}
	return out, nil
}

// GrantTemplateAccess lets the root principal of another account read the
// template and manage its permissions.
func (c *QuickSightClient) GrantTemplateAccess(ctx context.Context, accountID string, templateID string, targetAccountID string) (*quicksight.UpdateTemplatePermissionsOutput, error) {
	oopsBuilder := oops.
		In("GrantTemplateAccess").
		With("accountID", accountID).
		With("templateID", templateID).
		With("targetAccountID", targetAccountID)
	out, err := c.api.UpdateTemplatePermissions(ctx, &quicksight.UpdateTemplatePermissionsInput{
		AwsAccountId: aws.String(accountID),
		TemplateId:   aws.String(templateID),
		GrantPermissions: []qstypes.ResourcePermission{
			{
				Principal: aws.String(tools.AccountRootArn(targetAccountID)),
				Actions: []string{
					"quicksight:DescribeTemplate",
					"quicksight:ListTemplateVersions",
					"quicksight:UpdateTemplatePermissions",
				},
			},
		},
	})
	if err != nil {
		return nil, wrapAWS(oopsBuilder, "updating template permissions", err)
	}
	return out, nil
}

func (c *QuickSightClient) ListGroups(ctx context.Context, accountID string, namespace string) (*quicksight.ListGroupsOutput, error) {
	oopsBuilder := oops.In("ListGroups").With("accountID", accountID).With("namespace", namespace)
	out, err := c.api.ListGroups(ctx, &quicksight.ListGroupsInput{
		AwsAccountId: aws.String(accountID),
		Namespace:    aws.String(namespace),
	})
	if err != nil {
		return nil, wrapAWS(oopsBuilder, "listing groups", err)
	}
	return out, nil
}
