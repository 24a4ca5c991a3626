package main

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	qstypes "github.com/aws/aws-sdk-go-v2/service/quicksight/types"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/senpro-it/quicksight-provisioner/models"
)

func sameAccountConfig() Config {
	return Config{
		AccountID:     "111111111111",
		Region:        "us-east-1",
		TemplateID:    "t1",
		DataSetID:     "d1",
		DashboardName: DefaultDashboardName,
	}
}

func TestDashboardID(t *testing.T) {
	at := time.Date(2024, 3, 5, 7, 8, 9, 500, time.Local)
	assert.Equal(t, "dashboard-20240305070809", dashboardID(at, false))

	unique := dashboardID(at, true)
	assert.Regexp(t, regexp.MustCompile(`^dashboard-20240305070809-[0-9a-f]{8}$`), unique)
	assert.NotEqual(t, unique, dashboardID(at, true))
}

func TestBuildDataSetReferences(t *testing.T) {
	target := models.Target{AccountID: "111111111111", Region: "us-east-1", DataSetID: "d1"}

	t.Run("one per placeholder", func(t *testing.T) {
		refs, err := BuildDataSetReferences(templateWithPlaceholders("sales", "costs", "stock"), target)
		require.NoError(t, err)
		require.Len(t, refs, 3)
		for i, name := range []string{"sales", "costs", "stock"} {
			assert.Equal(t, name, aws.ToString(refs[i].DataSetPlaceholder))
			assert.Equal(t, "arn:aws:quicksight:us-east-1:111111111111:dataset/d1", aws.ToString(refs[i].DataSetArn))
		}
	})

	t.Run("duplicate placeholders appear once", func(t *testing.T) {
		refs, err := BuildDataSetReferences(templateWithPlaceholders("sales", "sales"), target)
		require.NoError(t, err)
		assert.Len(t, refs, 1)
	})

	t.Run("no configurations", func(t *testing.T) {
		for name, tmpl := range map[string]*qstypes.Template{
			"nil template":  nil,
			"no version":    {Arn: aws.String("arn")},
			"empty version": templateWithPlaceholders(),
		} {
			_, err := BuildDataSetReferences(tmpl, target)
			assert.Error(t, err, name)
			assert.Equal(t, ExitShape, exitCodeOf(err), name)
		}
	})
}

func TestCreateDashboard(t *testing.T) {
	fixedNow(t, time.Date(2024, 1, 2, 3, 4, 5, 0, time.Local))
	out := captureStdout(t)
	fake := &fakeQuickSight{template: templateWithPlaceholders("sales")}

	dashboard, err := CreateDashboard(context.Background(), newFakeClient(fake, "us-east-1"), sameAccountConfig())
	require.NoError(t, err)

	assert.Equal(t, []string{"ListGroups", "DescribeTemplate", "CreateDashboard"}, fake.calls)
	assert.Nil(t, fake.describeIn[0].VersionNumber)

	in := fake.createDashIn
	require.NotNil(t, in)
	assert.Equal(t, "111111111111", aws.ToString(in.AwsAccountId))
	assert.Equal(t, "dashboard-20240102030405", aws.ToString(in.DashboardId))
	assert.Equal(t, "New Dashboard", aws.ToString(in.Name))
	assert.Equal(t, "Initial version", aws.ToString(in.VersionDescription))

	require.Len(t, in.Permissions, 1)
	assert.Equal(t, "arn:aws:quicksight:us-east-1:111111111111:namespace/default", aws.ToString(in.Permissions[0].Principal))
	assert.ElementsMatch(t, []string{
		"quicksight:DescribeDashboard",
		"quicksight:QueryDashboard",
		"quicksight:ListDashboardVersions",
	}, in.Permissions[0].Actions)

	source := in.SourceEntity.SourceTemplate
	assert.Equal(t, "arn:aws:quicksight:us-east-1:111111111111:template/t1", aws.ToString(source.Arn))
	assert.Equal(t, []qstypes.DataSetReference{{
		DataSetPlaceholder: aws.String("sales"),
		DataSetArn:         aws.String("arn:aws:quicksight:us-east-1:111111111111:dataset/d1"),
	}}, source.DataSetReferences)

	opts := in.DashboardPublishOptions
	assert.Equal(t, qstypes.DashboardBehaviorEnabled, opts.AdHocFilteringOption.AvailabilityStatus)
	assert.Equal(t, qstypes.DashboardBehaviorEnabled, opts.ExportToCSVOption.AvailabilityStatus)
	assert.Equal(t, qstypes.DashboardUIStateExpanded, opts.SheetControlsOption.VisibilityState)

	assert.Equal(t, "https://us-east-1.quicksight.aws.amazon.com/sn/dashboards/dashboard-20240102030405", dashboard.URL)
	assert.Equal(t, string(qstypes.ResourceStatusCreationInProgress), dashboard.CreationStatus)
	assert.Contains(t, out.String(), "Dashboard Creation Response:")
	assert.Contains(t, out.String(), "Template Details:")
}

func TestCreateDashboardWithoutPlaceholdersNeverCreates(t *testing.T) {
	captureStdout(t)
	fake := &fakeQuickSight{template: templateWithPlaceholders()}

	_, err := CreateDashboard(context.Background(), newFakeClient(fake, "us-east-1"), sameAccountConfig())
	require.Error(t, err)
	assert.Equal(t, ExitShape, exitCodeOf(err))
	assert.NotContains(t, fake.calls, "CreateDashboard")
	assert.Nil(t, fake.createDashIn)
}

func TestCreateDashboardIgnoresGroupFailure(t *testing.T) {
	captureStdout(t)
	fake := &fakeQuickSight{
		template:  templateWithPlaceholders("sales"),
		groupsErr: &smithy.GenericAPIError{Code: "AccessDeniedException", Message: "no"},
	}
	_, err := CreateDashboard(context.Background(), newFakeClient(fake, "us-east-1"), sameAccountConfig())
	assert.NoError(t, err)
	assert.Contains(t, fake.calls, "CreateDashboard")
}

func TestCreateDashboardPropagatesServiceErrors(t *testing.T) {
	captureStdout(t)
	fake := &fakeQuickSight{
		template:      templateWithPlaceholders("sales"),
		createDashErr: &qstypes.ResourceExistsException{Message: aws.String("exists")},
	}
	_, err := CreateDashboard(context.Background(), newFakeClient(fake, "us-east-1"), sameAccountConfig())
	require.Error(t, err)
	assert.Equal(t, ExitAWS, exitCodeOf(err))

	var exists *qstypes.ResourceExistsException
	assert.ErrorAs(t, err, &exists)
}

func TestCreateDashboardRequiresConfig(t *testing.T) {
	fake := &fakeQuickSight{template: templateWithPlaceholders("sales")}
	config := sameAccountConfig()
	config.DataSetID = ""

	_, err := CreateDashboard(context.Background(), newFakeClient(fake, "us-east-1"), config)
	require.Error(t, err)
	assert.Equal(t, ExitConfig, exitCodeOf(err))
	assert.Contains(t, err.Error(), EnvDataSetID)
	assert.Empty(t, fake.calls)
}
