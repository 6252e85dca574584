package assert

import "github.com/oomph-ac/fakeentity/oerror"

// IsTrue panics with an *oerror.OomphError built from message and args if ok is false. It is used for
// precondition violations, which are programming errors rather than recoverable failures.
func IsTrue(ok bool, message string, args ...interface{}) {
	if !ok {
		panic(oerror.New(message, args...))
	}
}

// NotNil panics if v is nil.
func NotNil(v any, name string) {
	IsTrue(v != nil, "%s must not be nil", name)
}
