package internal

import (
	"fmt"
	"io"

	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"
)

// CloseWithErrLogf is making sure we log every error, even those from best effort tiny closers.
func CloseWithErrLogf(logger log.Logger, closer io.Closer, format string, a ...interface{}) {
	err := closer.Close()
	if err == nil {
		return
	}

	if logger == nil {
		logger = log.NewNopLogger()
	}

	level.Warn(logger).Log("msg", "detected close error", "err", fmt.Errorf(format+", %w", append(a, err)...))
}

// CloseWithErrCapturef runs function and on error return error by argument including the given error.
func CloseWithErrCapturef(err *error, closer io.Closer, format string, a ...interface{}) {
	cerr := closer.Close()
	if cerr == nil {
		return
	}

	cerr = fmt.Errorf(format+", %w", append(a, cerr)...)
	if *err == nil {
		*err = cerr

		return
	}

	*err = fmt.Errorf("%w, also %v", *err, cerr)
}
