package models

// Target is the account, region and dataset a dashboard gets bound to.
type Target struct {
	AccountID string
	Region    string
	DataSetID string
}

type Dashboard struct {
	ID             string
	Name           string
	Arn            string
	VersionArn     string
	CreationStatus string
	URL            string
	Target         Target
}
