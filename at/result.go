package at

// Result is the outcome domain shared by the action controller and the
// completion parsers. The numeric values follow the original device fault
// convention: anything at or above ResultSuccess is terminal, anything at
// or above ResultError is the error domain, and device-reported fault codes
// (decoded from the extended preamble) are carried verbatim.
type Result uint16

const (
	// ResultPending means no determination has been made yet; keep polling.
	ResultPending Result = 0

	// ResultSuccess is the lowest terminal value.
	ResultSuccess Result = 200

	// ResultBadRequest flags an invalid argument to a command builder.
	ResultBadRequest Result = 400

	// ResultTimeout is returned when a command's timeout budget elapses
	// with no terminal token seen.
	ResultTimeout Result = 408

	// ResultConflict is returned when the command channel could not be
	// acquired (bounded retries exhausted).
	ResultConflict Result = 409

	// ResultError is the generic protocol error (ERROR / FAIL / NO CARRIER)
	// and the floor of the error domain.
	ResultError Result = 500
)

// Terminal reports whether the result concludes the in-flight command.
func (r Result) Terminal() bool { return r >= ResultSuccess }

// Errored reports whether the result is terminal but not success. The range
// at or above ResultError subsumes generic protocol errors and
// device-reported fault codes.
func (r Result) Errored() bool { return r >= ResultBadRequest }

// CompletionParser examines the entire accumulated response text for the
// in-flight command and decides whether it is complete. Implementations are
// pure functions: ResultPending keeps the command open, anything terminal
// closes it.
type CompletionParser func(response string) Result
