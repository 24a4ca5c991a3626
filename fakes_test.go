package main

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/quicksight"
	qstypes "github.com/aws/aws-sdk-go-v2/service/quicksight/types"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	ststypes "github.com/aws/aws-sdk-go-v2/service/sts/types"
)

// fakeQuickSight records every call and answers from its fields. Methods that
// are not overridden panic through the nil embedded interface.
type fakeQuickSight struct {
	QuickSightAPI

	calls []string

	analysis     *qstypes.Analysis
	analysisErr  error
	createTplIn  *quicksight.CreateTemplateInput
	createTplErr error

	template       *qstypes.Template
	describeIn     []*quicksight.DescribeTemplateInput
	describeErrs   []error // consumed one per call; nil entries succeed
	createDashIn   *quicksight.CreateDashboardInput
	createDashErr  error
	permissionsIn  *quicksight.UpdateTemplatePermissionsInput
	permissionsErr error
	groupsErr      error
}

func (f *fakeQuickSight) DescribeAnalysis(_ context.Context, in *quicksight.DescribeAnalysisInput, _ ...func(*quicksight.Options)) (*quicksight.DescribeAnalysisOutput, error) {
	f.calls = append(f.calls, "DescribeAnalysis")
	if f.analysisErr != nil {
		return nil, f.analysisErr
	}
	return &quicksight.DescribeAnalysisOutput{Analysis: f.analysis}, nil
}

func (f *fakeQuickSight) CreateTemplate(_ context.Context, in *quicksight.CreateTemplateInput, _ ...func(*quicksight.Options)) (*quicksight.CreateTemplateOutput, error) {
	f.calls = append(f.calls, "CreateTemplate")
	f.createTplIn = in
	if f.createTplErr != nil {
		return nil, f.createTplErr
	}
	return &quicksight.CreateTemplateOutput{
		Arn:            aws.String("arn:aws:quicksight:us-east-1:111111111111:template/" + aws.ToString(in.TemplateId)),
		TemplateId:     in.TemplateId,
		CreationStatus: qstypes.ResourceStatusCreationInProgress,
	}, nil
}

func (f *fakeQuickSight) DescribeTemplate(_ context.Context, in *quicksight.DescribeTemplateInput, _ ...func(*quicksight.Options)) (*quicksight.DescribeTemplateOutput, error) {
	f.calls = append(f.calls, "DescribeTemplate")
	f.describeIn = append(f.describeIn, in)
	if len(f.describeErrs) > 0 {
		err := f.describeErrs[0]
		f.describeErrs = f.describeErrs[1:]
		if err != nil {
			return nil, err
		}
	}
	return &quicksight.DescribeTemplateOutput{Template: f.template, Status: 200}, nil
}

func (f *fakeQuickSight) CreateDashboard(_ context.Context, in *quicksight.CreateDashboardInput, _ ...func(*quicksight.Options)) (*quicksight.CreateDashboardOutput, error) {
	f.calls = append(f.calls, "CreateDashboard")
	f.createDashIn = in
	if f.createDashErr != nil {
		return nil, f.createDashErr
	}
	return &quicksight.CreateDashboardOutput{
		Arn:            aws.String("arn:aws:quicksight:region:account:dashboard/" + aws.ToString(in.DashboardId)),
		DashboardId:    in.DashboardId,
		VersionArn:     aws.String("arn:aws:quicksight:region:account:dashboard/" + aws.ToString(in.DashboardId) + "/version/1"),
		CreationStatus: qstypes.ResourceStatusCreationInProgress,
		Status:         202,
	}, nil
}

func (f *fakeQuickSight) UpdateTemplatePermissions(_ context.Context, in *quicksight.UpdateTemplatePermissionsInput, _ ...func(*quicksight.Options)) (*quicksight.UpdateTemplatePermissionsOutput, error) {
	f.calls = append(f.calls, "UpdateTemplatePermissions")
	f.permissionsIn = in
	if f.permissionsErr != nil {
		return nil, f.permissionsErr
	}
	return &quicksight.UpdateTemplatePermissionsOutput{TemplateId: in.TemplateId}, nil
}

func (f *fakeQuickSight) ListGroups(_ context.Context, in *quicksight.ListGroupsInput, _ ...func(*quicksight.Options)) (*quicksight.ListGroupsOutput, error) {
	f.calls = append(f.calls, "ListGroups")
	if f.groupsErr != nil {
		return nil, f.groupsErr
	}
	return &quicksight.ListGroupsOutput{
		GroupList: []qstypes.Group{{GroupName: aws.String("analysts")}},
	}, nil
}

type fakeSTS struct {
	in  *sts.AssumeRoleInput
	err error
}

func (f *fakeSTS) AssumeRole(_ context.Context, in *sts.AssumeRoleInput, _ ...func(*sts.Options)) (*sts.AssumeRoleOutput, error) {
	f.in = in
	if f.err != nil {
		return nil, f.err
	}
	return &sts.AssumeRoleOutput{
		Credentials: &ststypes.Credentials{
			AccessKeyId:     aws.String("AKIATARGET"),
			SecretAccessKey: aws.String("secret"),
			SessionToken:    aws.String("token"),
			Expiration:      aws.Time(time.Now().Add(time.Hour)),
		},
	}, nil
}

func newFakeClient(fake *fakeQuickSight, region string) *QuickSightClient {
	return &QuickSightClient{api: fake, region: region}
}

func templateWithPlaceholders(placeholders ...string) *qstypes.Template {
	var configs []qstypes.DataSetConfiguration
	for _, p := range placeholders {
		configs = append(configs, qstypes.DataSetConfiguration{Placeholder: aws.String(p)})
	}
	return &qstypes.Template{
		Arn:        aws.String("arn:aws:quicksight:us-east-1:111111111111:template/t1"),
		TemplateId: aws.String("t1"),
		Name:       aws.String("t1"),
		Version: &qstypes.TemplateVersion{
			VersionNumber:         aws.Int64(1),
			DataSetConfigurations: configs,
		},
	}
}

// fixedNow pins the clock used for dashboard ids for the duration of a test.
func fixedNow(t *testing.T, at time.Time) {
	t.Helper()
	previous := now
	now = func() time.Time { return at }
	t.Cleanup(func() { now = previous })
}

// captureStdout collects JSON dumps for the duration of a test.
func captureStdout(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	previous := stdout
	stdout = &buf
	t.Cleanup(func() { stdout = previous })
	return &buf
}
