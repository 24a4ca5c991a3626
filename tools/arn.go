package tools

import (
	"fmt"
	"strings"
)

const (
	DefaultNamespace = "default"
	consoleDomain    = "quicksight.aws.amazon.com"
)

func quicksightArn(region, accountID, resource string) string {
	return fmt.Sprintf("arn:aws:quicksight:%s:%s:%s", region, accountID, resource)
}

func DataSetArn(region, accountID, dataSetID string) string {
	return quicksightArn(region, accountID, "dataset/"+dataSetID)
}

func AnalysisArn(region, accountID, analysisID string) string {
	return quicksightArn(region, accountID, "analysis/"+analysisID)
}

func NamespaceArn(region, accountID, namespace string) string {
	return quicksightArn(region, accountID, "namespace/"+namespace)
}

// AccountRootArn is the IAM principal standing for a whole account.
func AccountRootArn(accountID string) string {
	return fmt.Sprintf("arn:aws:iam::%s:root", accountID)
}

// DashboardURL is the console link a viewer opens for a dashboard.
func DashboardURL(region, dashboardID string) string {
	return fmt.Sprintf("https://%s.%s/sn/dashboards/%s", region, consoleDomain, dashboardID)
}

// LastSegment returns everything after the final '/' of an ARN, or the ARN
// itself when it has no path.
func LastSegment(arn string) string {
	if i := strings.LastIndexByte(arn, '/'); i >= 0 {
		return arn[i+1:]
	}
	return arn
}
