// Package jsruntime evaluates small JavaScript expressions, such as computed field
// templates, in an isolated goja runtime.
package jsruntime

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dop251/goja"

	"github.com/nautobot/nautobot-sub011/internal/common/apperrors"
)

// DefaultTimeout bounds a single evaluation when Options.Timeout is zero.
const DefaultTimeout = 500 * time.Millisecond

// Expression is a compiled JavaScript expression. It is safe for concurrent use.
type Expression struct {
	code    string
	program *goja.Program
}

// Options for controlling execution
type Options struct {
	Timeout time.Duration // max execution time
}

// Compile parses code as a single JavaScript expression.
func Compile(code string) (*Expression, apperrors.Error) {
	program, err := goja.Compile("expression", fmt.Sprintf("(%s\n)", code), true)
	if err != nil {
		return nil, ErrInvalidExpression.Err(err)
	}
	return &Expression{code: code, program: program}, nil
}

func (e *Expression) String() string {
	return e.code
}

// Evaluate runs the expression with vars bound as globals and returns the exported result.
// undefined and null yield nil. Each evaluation uses a fresh runtime.
func (e *Expression) Evaluate(ctx context.Context, vars map[string]any, opts Options) (any, apperrors.Error) {
	vm := goja.New()
	bindConsole(ctx, vm)
	for name, v := range vars {
		if err := vm.Set(name, v); err != nil {
			return nil, ErrJSExecutionError.Err(err)
		}
	}

	if opts.Timeout == 0 {
		opts.Timeout = DefaultTimeout
	}
	timer := time.AfterFunc(opts.Timeout, func() {
		vm.Interrupt(ErrJSRuntimeTimeout)
	})
	defer timer.Stop()
	stop := context.AfterFunc(ctx, func() {
		vm.Interrupt(ctx.Err())
	})
	defer stop()

	result, err := e.run(vm)
	if err != nil {
		var interrupted *goja.InterruptedError
		if errors.As(err, &interrupted) {
			if ctxErr, ok := interrupted.Value().(error); ok && !errors.Is(ctxErr, ErrJSRuntimeTimeout) {
				return nil, ErrJSExecutionError.Err(ctxErr)
			}
			return nil, ErrJSRuntimeTimeout
		}
		var jsErr *goja.Exception
		if errors.As(err, &jsErr) {
			return nil, ErrJSRuntimeError.Msg(jsErr.Value().String())
		}
		return nil, ErrJSExecutionError.Err(err)
	}
	if result == nil || goja.IsUndefined(result) || goja.IsNull(result) {
		return nil, nil
	}
	return result.Export(), nil
}

func (e *Expression) run(vm *goja.Runtime) (v goja.Value, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return vm.RunProgram(e.program)
}
