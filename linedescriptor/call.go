package linedescriptor

import (
	"context"

	"go.uber.org/zap"
)

// callValue invokes an infallible entry point with one return value. The
// stack slot convention writes the result over the first argument slot.
func callValue(ctx context.Context, rt Runtime, symbol string, args ...uint64) (uint64, error) {
	n := len(args)
	if n == 0 {
		n = 1
	}
	stack := make([]uint64, n)
	copy(stack, args)
	if err := rt.Call(ctx, symbol, stack); err != nil {
		return 0, err
	}
	return stack[0], nil
}

// callNoValue invokes an infallible entry point without a return value.
func callNoValue(ctx context.Context, rt Runtime, symbol string, args ...uint64) error {
	stack := make([]uint64, len(args))
	copy(stack, args)
	return rt.Call(ctx, symbol, stack)
}

// releaseVia builds a handle release func around a destructor symbol.
// Destructor failures have no caller to report to, so they go to the
// package logger.
func releaseVia(rt Runtime, symbol string) func(ctx context.Context, ptr uint32) {
	return func(ctx context.Context, ptr uint32) {
		if err := callNoValue(ctx, rt, symbol, uint64(ptr)); err != nil {
			Logger().Warn("destructor failed",
				zap.String("symbol", symbol),
				zap.Uint32("ptr", ptr),
				zap.Error(err))
		}
	}
}
