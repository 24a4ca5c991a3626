package main

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/samber/oops"
)

const roleSessionName = "QuickSightSession"

type STSAPI interface {
	AssumeRole(ctx context.Context, params *sts.AssumeRoleInput, optFns ...func(*sts.Options)) (*sts.AssumeRoleOutput, error)
}

var _ STSAPI = (*sts.Client)(nil)

// AssumeRole returns a copy of base that acts as roleArn in region, using the
// temporary credentials of a fresh role session.
func AssumeRole(ctx context.Context, api STSAPI, base aws.Config, roleArn string, region string) (aws.Config, error) {
	oopsBuilder := oops.In("AssumeRole").With("roleArn", roleArn).With("region", region)
	out, err := api.AssumeRole(ctx, &sts.AssumeRoleInput{
		RoleArn:         aws.String(roleArn),
		RoleSessionName: aws.String(roleSessionName),
	})
	if err != nil {
		return aws.Config{}, wrapAWS(oopsBuilder, "assuming role", err)
	}
	creds := out.Credentials
	if creds == nil || creds.AccessKeyId == nil || creds.SecretAccessKey == nil {
		return aws.Config{}, oopsBuilder.Code(CodeAWS).Errorf("assume role returned no credentials")
	}

	logger.Info("Successfully assumed role in target account", "roleArn", roleArn)

	target := base.Copy()
	target.Region = region
	target.Credentials = aws.NewCredentialsCache(credentials.NewStaticCredentialsProvider(
		aws.ToString(creds.AccessKeyId),
		aws.ToString(creds.SecretAccessKey),
		aws.ToString(creds.SessionToken),
	))
	return target, nil
}
