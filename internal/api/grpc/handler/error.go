package handler

import (
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/dtroode/identity-server/internal/model"
)

func codeOf(kind model.ErrorKind) codes.Code {
	switch kind {
	case model.KindDuplicateEmail:
		return codes.AlreadyExists
	case model.KindInvalidInput:
		return codes.InvalidArgument
	case model.KindInvalidCredentials, model.KindInvalidRefresh, model.KindUnauthenticated:
		return codes.Unauthenticated
	case model.KindStoreUnavailable:
		return codes.Unavailable
	default:
		return codes.Internal
	}
}

func handleError(err error) error {
	return status.Error(codeOf(model.KindOf(err)), model.MessageOf(err))
}
