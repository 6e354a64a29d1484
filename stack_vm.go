// stack_vm.go - the tiny stack-based bytecode interpreter modules use to
// read their "input wire" programs against the state vector (spec §4.2).
//
// Grounded on the teacher's register-constant style for opcode tables
// (audio_chip.go) and on synth-engine's per-module input_expr evaluator
// in original_source/synth-designer/src/input_expr.rs for the operand
// order of Lerp/Logistic.

package synth

import (
	"errors"
	"math"
)

// ExecError is returned by Run when a program is malformed. Per spec §7
// the realtime caller never sees this: Eval swallows it and returns 0.
type ExecError struct {
	Kind  ExecErrorKind
	Index int
}

// ExecErrorKind enumerates the ways a stack program can fail to execute.
type ExecErrorKind int

const (
	ErrNone ExecErrorKind = iota
	ErrStackOverflow
	ErrStackUnderflow
	ErrStateOutOfBounds
)

func (e *ExecError) Error() string {
	switch e.Kind {
	case ErrStackOverflow:
		return "stack vm: stack overflow"
	case ErrStackUnderflow:
		return "stack vm: stack underflow"
	case ErrStateOutOfBounds:
		return "stack vm: state index out of bounds"
	default:
		return "stack vm: unknown error"
	}
}

var errUnknownOp = errors.New("stack vm: unknown opcode")

// Fn enumerates the transcendental/helper functions Call can invoke.
type Fn uint8

const (
	FnSin Fn = iota
	FnCos
	FnTan
	FnTanh
	FnLn
	FnExp
	FnAbs
	FnMin
	FnMax
	FnLerp
	FnLogistic
)

// Op enumerates the stack-program opcode set.
type Op uint8

const (
	OpAdd Op = iota
	OpSubtract
	OpMultiply
	OpDivide
	OpNegate
	OpCall
	OpConst
	OpLoadState
)

// Instruction is one stack-program opcode plus its immediate operand
// (Fn for Call, the literal for Const, the slot index for LoadState).
type Instruction struct {
	Op    Op
	Fn    Fn
	Const float32
	Index int
}

// Program is an immutable, pre-validated sequence of instructions over
// the state vector, with a precomputed maximum stack depth. Programs
// are built by an external, out-of-scope compiler (spec §3) and are
// read-only at runtime.
type Program struct {
	Instructions []Instruction
	StackSize    int
}

func arity(fn Fn) int {
	switch fn {
	case FnSin, FnCos, FnTan, FnTanh, FnLn, FnExp, FnAbs:
		return 1
	case FnMin, FnMax:
		return 2
	case FnLerp:
		return 3
	case FnLogistic:
		return 4
	default:
		return 0
	}
}

// Run executes prog against state s using scratch as its stack, and
// returns the top-of-stack result. scratch must have capacity >=
// prog.StackSize; it is reused across calls and left in an undefined
// state afterward.
func Run(prog *Program, s *State, scratch []float32) (float32, *ExecError) {
	sp := 0
	push := func(v float32) *ExecError {
		if sp >= len(scratch) {
			return &ExecError{Kind: ErrStackOverflow}
		}
		scratch[sp] = v
		sp++
		return nil
	}
	pop := func() (float32, *ExecError) {
		if sp <= 0 {
			return 0, &ExecError{Kind: ErrStackUnderflow}
		}
		sp--
		return scratch[sp], nil
	}

	for _, ins := range prog.Instructions {
		switch ins.Op {
		case OpConst:
			if err := push(ins.Const); err != nil {
				return 0, err
			}
		case OpLoadState:
			if ins.Index < 0 || ins.Index >= s.Len() {
				return 0, &ExecError{Kind: ErrStateOutOfBounds, Index: ins.Index}
			}
			if err := push(s.Get(ins.Index)); err != nil {
				return 0, err
			}
		case OpNegate:
			a, err := pop()
			if err != nil {
				return 0, err
			}
			if err := push(-a); err != nil {
				return 0, err
			}
		case OpAdd, OpSubtract, OpMultiply, OpDivide:
			b, err := pop()
			if err != nil {
				return 0, err
			}
			a, err := pop()
			if err != nil {
				return 0, err
			}
			var r float32
			switch ins.Op {
			case OpAdd:
				r = a + b
			case OpSubtract:
				r = a - b
			case OpMultiply:
				r = a * b
			case OpDivide:
				if absf32(b) < Epsilon {
					r = 0
				} else {
					r = a / b
				}
			}
			if err := push(r); err != nil {
				return 0, err
			}
		case OpCall:
			n := arity(ins.Fn)
			operands := make([]float32, n)
			for k := n - 1; k >= 0; k-- {
				v, err := pop()
				if err != nil {
					return 0, err
				}
				operands[k] = v
			}
			r, err := callFn(ins.Fn, operands)
			if err != nil {
				return 0, err
			}
			if err := push(r); err != nil {
				return 0, err
			}
		}
	}
	if sp != 1 {
		return 0, &ExecError{Kind: ErrStackUnderflow}
	}
	return scratch[0], nil
}

func callFn(fn Fn, args []float32) (float32, *ExecError) {
	switch fn {
	case FnSin:
		return float32(math.Sin(float64(args[0]))), nil
	case FnCos:
		return float32(math.Cos(float64(args[0]))), nil
	case FnTan:
		return float32(math.Tan(float64(args[0]))), nil
	case FnTanh:
		return float32(math.Tanh(float64(args[0]))), nil
	case FnLn:
		return float32(math.Log(float64(args[0]))), nil
	case FnExp:
		return float32(math.Exp(float64(args[0]))), nil
	case FnAbs:
		return absf32(args[0]), nil
	case FnMin:
		if args[0] < args[1] {
			return args[0], nil
		}
		return args[1], nil
	case FnMax:
		if args[0] > args[1] {
			return args[0], nil
		}
		return args[1], nil
	case FnLerp:
		// operands (x, lo, hi) -> lo + clamp(x,0,1)*(hi-lo)
		return lerp32(args[0], args[1], args[2]), nil
	case FnLogistic:
		// operands (x, l, k, x0). Deliberately NOT the textbook logistic
		// function: l/exp(1-k*(x-x0)) rather than l/(1+exp(-k*(x-x0))).
		// Preserved from the source patches per spec §9/DESIGN.md.
		x, l, k, x0 := args[0], args[1], args[2], args[3]
		return l / float32(math.Exp(float64(1-k*(x-x0)))), nil
	default:
		return 0, &ExecError{Kind: ErrStackUnderflow}
	}
}

func absf32(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}

// ConstProgram builds the trivial one-instruction program that always
// evaluates to v, for wiring an input the external builder wants fixed.
func ConstProgram(v float32) *Program {
	return &Program{Instructions: []Instruction{{Op: OpConst, Const: v}}, StackSize: 1}
}

// StateProgram builds the trivial one-instruction program that reads
// state slot i, for wiring one module's output directly into another's
// input.
func StateProgram(i int) *Program {
	return &Program{Instructions: []Instruction{{Op: OpLoadState, Index: i}}, StackSize: 1}
}

// Eval is the realtime-safe entry point every module should use to read
// an input wire: it runs prog and swallows any execution error as 0.0,
// per the deliberate robustness rule in spec §7.
func Eval(prog *Program, s *State, scratch []float32) float32 {
	if prog == nil {
		return 0
	}
	v, err := Run(prog, s, scratch)
	if err != nil {
		return 0
	}
	return v
}
