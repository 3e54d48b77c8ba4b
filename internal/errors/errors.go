package errors

import stdErrors "errors"

func stdAs(err error, target **KVError) bool {
	return stdErrors.As(err, target)
}

// GetCode extracts the Code from err if it is, or wraps, a *KVError, and
// returns CodeStringError otherwise.
func GetCode(err error) Code {
	var e *KVError
	if stdAs(err, &e) {
		return e.Code()
	}
	return CodeStringError
}
