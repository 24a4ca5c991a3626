package main

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/quicksight"
	qstypes "github.com/aws/aws-sdk-go-v2/service/quicksight/types"

	"github.com/senpro-it/quicksight-provisioner/tools"
)

var (
	exportTemplateRequired = []string{EnvAccountID, EnvAnalysisID}
	saveTemplateRequired   = []string{EnvAccountID, EnvTemplateID}
)

// analysisDataSetReferences keeps every dataset of an analysis under a
// placeholder named after the dataset id.
func analysisDataSetReferences(analysis *qstypes.Analysis) []qstypes.DataSetReference {
	refs := make([]qstypes.DataSetReference, 0, len(analysis.DataSetArns))
	for _, arn := range analysis.DataSetArns {
		refs = append(refs, qstypes.DataSetReference{
			DataSetPlaceholder: aws.String(tools.LastSegment(arn)),
			DataSetArn:         aws.String(arn),
		})
	}
	return refs
}

// ExportTemplate creates a template named after the configured analysis and
// returns its description as read back from the service.
func ExportTemplate(ctx context.Context, qs *QuickSightClient, config Config) (*quicksight.DescribeTemplateOutput, error) {
	if err := config.Require(exportTemplateRequired...); err != nil {
		return nil, err
	}
	logger := logger.With("analysisID", config.AnalysisID).With("region", config.Region)

	notFound := func(err error) error {
		if isNotFound(err) {
			logger.Error(fmt.Sprintf("Analysis with ID %s does not exist in region %s", config.AnalysisID, config.Region))
		}
		return err
	}

	analysis, err := qs.DescribeAnalysis(ctx, config.AccountID, config.AnalysisID)
	if err != nil {
		return nil, notFound(err)
	}
	refs := analysisDataSetReferences(analysis)
	logger.Info("Creating template from analysis", "datasets", len(refs))

	created, err := qs.CreateTemplateFromAnalysis(
		ctx,
		config.AccountID,
		config.AnalysisID,
		tools.AnalysisArn(config.Region, config.AccountID, config.AnalysisID),
		refs,
	)
	if err != nil {
		return nil, notFound(err)
	}
	logger.Info("Template created", "arn", tools.ValueOf(created.Arn), "status", created.CreationStatus)

	return qs.DescribeTemplate(ctx, config.AccountID, config.AnalysisID, nil)
}

// SaveTemplate writes the Template object of the configured template version
// to the output file and returns the file's path.
func SaveTemplate(ctx context.Context, qs *QuickSightClient, config Config) (string, error) {
	if err := config.Require(saveTemplateRequired...); err != nil {
		return "", err
	}

	out, err := qs.DescribeTemplate(ctx, config.AccountID, config.TemplateID, tools.PtrOf(config.TemplateVersion))
	if err != nil {
		return "", err
	}
	if err := writeJSONFile(config.OutputPath, out.Template); err != nil {
		return "", err
	}
	logger.Info("Template saved", "templateID", config.TemplateID, "version", config.TemplateVersion, "path", config.OutputPath)
	return config.OutputPath, nil
}
