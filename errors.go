package main

import (
	"errors"

	qstypes "github.com/aws/aws-sdk-go-v2/service/quicksight/types"
	"github.com/aws/smithy-go"
	"github.com/samber/oops"
)

// Error codes attached through oops.Code. The deepest code in a chain wins.
const (
	CodeConfig   = "config"
	CodeTemplate = "template"
	CodeAWS      = "aws"
	CodeIO       = "io"
)

const (
	ExitOK      = 0
	ExitFailure = 1
	ExitConfig  = 2
	ExitShape   = 3
	ExitAWS     = 4
)

func exitCodeOf(err error) int {
	if err == nil {
		return ExitOK
	}
	oopsErr, ok := oops.AsOops(err)
	if !ok {
		return ExitFailure
	}
	switch oopsErr.Code() {
	case CodeConfig:
		return ExitConfig
	case CodeTemplate:
		return ExitShape
	case CodeAWS:
		return ExitAWS
	default:
		return ExitFailure
	}
}

// awsErrorDetails pulls the service error code and message out of an SDK
// error. Non-API errors (transport, credentials) report their text as message.
func awsErrorDetails(err error) (code string, message string) {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return apiErr.ErrorCode(), apiErr.ErrorMessage()
	}
	return "", err.Error()
}

func isNotFound(err error) bool {
	var nf *qstypes.ResourceNotFoundException
	return errors.As(err, &nf)
}

// wrapAWS logs a failed service call and wraps it with the aws code.
func wrapAWS(builder oops.OopsErrorBuilder, what string, err error) error {
	code, message := awsErrorDetails(err)
	logger.Error("Error "+what, "awsCode", code, "awsMessage", message)
	return builder.
		Code(CodeAWS).
		With("awsCode", code).
		With("awsMessage", message).
		Wrapf(err, "%s", what)
}
