package generator

import "errors"

var (
	// ErrInvalidWorkingDirectory is returned when an operation's working
	// directory is not absolute.
	ErrInvalidWorkingDirectory = errors.New("working directory must be absolute")

	// ErrDuplicateCommand is returned when the same working directory,
	// executable and arguments were already declared.
	ErrDuplicateCommand = errors.New("duplicate command")

	// ErrDuplicateOutput is returned when a file or directory is already the
	// declared output of another operation.
	ErrDuplicateOutput = errors.New("duplicate output")

	// ErrCircularDependency is returned when a new operation ends up
	// depending on itself. It aborts the whole generation pass.
	ErrCircularDependency = errors.New("circular dependency")

	// ErrGenerationAborted is returned by every call made after a pass was
	// aborted.
	ErrGenerationAborted = errors.New("generation pass aborted")

	// ErrFinalized is returned by every call made after FinalizeGraph
	// handed the graph over.
	ErrFinalized = errors.New("graph already finalized")
)
