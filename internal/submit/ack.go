package submit

import (
	"fmt"
	"regexp"
	"strconv"

	"CondorFrontEnd/internal/util"
)

var ackInteger = regexp.MustCompile(`\b\d+`)

// ParseAcknowledgement extracts the cluster ID from condor_submit's
// acknowledgement text. The expected shape is exactly two lines with the
// second of the form "1 job(s) submitted to cluster <ID>.". Anything
// else means the scheduler no longer behaves as assumed, which is a
// contract violation rather than a recoverable condition.
func ParseAcknowledgement(lines []string) (int64, error) {
	if len(lines) != 2 {
		return FailureSentinel, &util.CondorError{
			Code:    util.ErrorAckParse,
			Message: fmt.Sprintf("unparsable acknowledgement: expected 2 lines, got %d", len(lines)),
		}
	}

	integers := ackInteger.FindAllString(lines[1], -1)
	if len(integers) != 2 {
		return FailureSentinel, &util.CondorError{
			Code:    util.ErrorAckParse,
			Message: fmt.Sprintf("unparsable acknowledgement: expected 2 integers in %q, got %d", lines[1], len(integers)),
		}
	}

	count, err := strconv.ParseInt(integers[0], 10, 64)
	if err != nil {
		return FailureSentinel, &util.CondorError{
			Code:    util.ErrorAckParse,
			Message: fmt.Sprintf("unparsable acknowledgement: bad job count in %q: %v", lines[1], err),
		}
	}
	if count != 1 {
		return FailureSentinel, &util.CondorError{
			Code:    util.ErrorAckParse,
			Message: fmt.Sprintf("unparsable acknowledgement: expected 1 submitted job, got %d", count),
		}
	}

	cluster, err := strconv.ParseInt(integers[1], 10, 64)
	if err != nil {
		return FailureSentinel, &util.CondorError{
			Code:    util.ErrorAckParse,
			Message: fmt.Sprintf("unparsable acknowledgement: bad cluster ID in %q: %v", lines[1], err),
		}
	}

	return cluster, nil
}
