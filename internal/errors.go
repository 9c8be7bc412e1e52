package internal

import (
	"errors"
	"fmt"
)

var (
	// ErrArenaExhausted is returned when a node cannot be allocated.
	ErrArenaExhausted = errors.New("dataflow: node arena exhausted")

	// ErrEngineRunning is returned by Start when the calling goroutine already owns an engine.
	ErrEngineRunning = errors.New("dataflow: engine already running on this goroutine")
)

// ContractCode categorizes contract violations.
type ContractCode string

const (
	CodeNoEngine           ContractCode = "NO_ENGINE"
	CodeForeignGoroutine   ContractCode = "FOREIGN_GOROUTINE"
	CodeReentrantPump      ContractCode = "REENTRANT_PUMP"
	CodeAssignWhilePumping ContractCode = "ASSIGN_WHILE_PUMPING"
	CodeRunawayPump        ContractCode = "RUNAWAY_PUMP"
	CodeWrongArity         ContractCode = "WRONG_ARITY"
	CodeWrongType          ContractCode = "WRONG_TYPE"
	CodeBadBranch          ContractCode = "BAD_BRANCH"
	CodeBadFlags           ContractCode = "BAD_FLAGS"
	CodeDeadNode           ContractCode = "DEAD_NODE"
	CodeDoubleRelease      ContractCode = "DOUBLE_RELEASE"
	CodeDoubleActivation   ContractCode = "DOUBLE_ACTIVATION"
	CodeDoubleDeactivation ContractCode = "DOUBLE_DEACTIVATION"
	CodeNotReset           ContractCode = "NOT_RESET"
	CodeStaleTick          ContractCode = "STALE_TICK"
)

// ContractError is the panic value raised when a caller breaks a
// precondition of the engine. There is no recovery path: the engine state
// is not guaranteed to be usable afterwards.
type ContractError struct {
	Code    ContractCode
	Message string
}

func (e *ContractError) Error() string {
	return fmt.Sprintf("dataflow: %s: %s", e.Code, e.Message)
}

// IsContractError reports whether err (or v recovered from a panic) is a
// contract violation with the given code.
func IsContractError(v any, code ContractCode) bool {
	err, ok := v.(error)
	if !ok {
		return false
	}

	var ce *ContractError
	if errors.As(err, &ce) {
		return ce.Code == code
	}
	return false
}

func violation(code ContractCode, format string, args ...any) *ContractError {
	return &ContractError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// ensure panics with a ContractError when checks are compiled in and cond
// does not hold.
func ensure(cond bool, code ContractCode, format string, args ...any) {
	if checksEnabled && !cond {
		panic(violation(code, format, args...))
	}
}
