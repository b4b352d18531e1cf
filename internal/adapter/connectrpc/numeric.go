package connectrpc

import (
	"fmt"
	"math"

	"connectrpc.com/connect"
)

func safeInt32(name string, value int64) (int32, error) {
	if value > math.MaxInt32 || value < math.MinInt32 {
		return 0, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("%s out of int32 range: %d", name, value))
	}
	return int32(value), nil
}
