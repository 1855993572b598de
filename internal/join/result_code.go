package join

import (
	stderrors "errors"

	"github.com/paveg/tablejoin/internal/common"
	"github.com/paveg/tablejoin/internal/errors"
)

// ResultCode is the outcome of a join, usable as a process exit status.
type ResultCode int

const (
	CodeSuccess ResultCode = iota
	CodeLeftWidthInvalid
	CodeRightWidthInvalid
	CodeLeftKeyNonUnique
	CodeRightKeyNonUnique
	// CodeFailure covers every other failure: I/O, invalid requests, cancellation
	CodeFailure
)

var resultCodeNames = common.EnumStringMap{
	int(CodeSuccess):           "success",
	int(CodeLeftWidthInvalid):  "left width invalid",
	int(CodeRightWidthInvalid): "right width invalid",
	int(CodeLeftKeyNonUnique):  "left key non-unique",
	int(CodeRightKeyNonUnique): "right key non-unique",
	int(CodeFailure):           "failure",
}

// String returns a readable name for the code.
func (c ResultCode) String() string {
	return common.FormatEnum(int(c), resultCodeNames)
}

// CodeFor classifies err.
func CodeFor(err error) ResultCode {
	if err == nil {
		return CodeSuccess
	}

	var je *errors.JoinError
	if !stderrors.As(err, &je) {
		return CodeFailure
	}

	switch {
	case je.Kind == errors.KindWidthInconsistent && je.Side == errors.SideLeft:
		return CodeLeftWidthInvalid
	case je.Kind == errors.KindWidthInconsistent && je.Side == errors.SideRight:
		return CodeRightWidthInvalid
	case je.Kind == errors.KindNonUniqueKey && je.Side == errors.SideLeft:
		return CodeLeftKeyNonUnique
	case je.Kind == errors.KindNonUniqueKey && je.Side == errors.SideRight:
		return CodeRightKeyNonUnique
	default:
		return CodeFailure
	}
}
