package util

type CondorCmdError = int

// general
const (
	ErrorSuccess    CondorCmdError = 0
	ErrorGeneric    CondorCmdError = 1
	ErrorCmdArg     CondorCmdError = 2
	ErrorNetwork    CondorCmdError = 3
	ErrorRemoteExec CondorCmdError = 4
	ErrorConfig     CondorCmdError = 5
	ErrorAckParse   CondorCmdError = 6
)

// csubmit
const (
	ErrorCsubmitJobFile CondorCmdError = 300
)

// cqstat
const (
	ErrorCqstatQueryParsing CondorCmdError = 500
)

// CondorError carries the process exit code alongside the message so that
// leaf commands can return it from RunE and have the wrapper translate it.
type CondorError struct {
	Code    CondorCmdError
	Message string
}

func (e *CondorError) Error() string {
	return e.Message
}
