package classfile

import (
	"encoding/binary"
)

type Opcode uint8

const (
	OpIload          Opcode = 0x15
	OpLload          Opcode = 0x16
	OpFload          Opcode = 0x17
	OpDload          Opcode = 0x18
	OpAload          Opcode = 0x19
	OpIstore         Opcode = 0x36
	OpLstore         Opcode = 0x37
	OpFstore         Opcode = 0x38
	OpDstore         Opcode = 0x39
	OpAstore         Opcode = 0x3a
	OpIinc           Opcode = 0x84
	OpIfeq           Opcode = 0x99
	OpIfAcmpne       Opcode = 0xa6
	OpGoto           Opcode = 0xa7
	OpJsr            Opcode = 0xa8
	OpRet            Opcode = 0xa9
	OpTableswitch    Opcode = 0xaa
	OpLookupswitch   Opcode = 0xab
	OpIreturn        Opcode = 0xac
	OpReturn         Opcode = 0xb1
	OpAthrow         Opcode = 0xbf
	OpWide           Opcode = 0xc4
	OpIfnull         Opcode = 0xc6
	OpIfnonnull      Opcode = 0xc7
	OpGotoW          Opcode = 0xc8
	OpJsrW           Opcode = 0xc9
	maxDefinedOpcode        = OpJsrW
)

var opcodeNames = [...]string{"nop", "aconst_null", "iconst_m1", "iconst_0", "iconst_1", "iconst_2", "iconst_3", "iconst_4", "iconst_5", "lconst_0", "lconst_1", "fconst_0", "fconst_1", "fconst_2", "dconst_0", "dconst_1", "bipush", "sipush", "ldc", "ldc_w", "ldc2_w", "iload", "lload", "fload", "dload", "aload", "iload_0", "iload_1", "iload_2", "iload_3", "lload_0", "lload_1", "lload_2", "lload_3", "fload_0", "fload_1", "fload_2", "fload_3", "dload_0", "dload_1", "dload_2", "dload_3", "aload_0", "aload_1", "aload_2", "aload_3", "iaload", "laload", "faload", "daload", "aaload", "baload", "caload", "saload", "istore", "lstore", "fstore", "dstore", "astore", "istore_0", "istore_1", "istore_2", "istore_3", "lstore_0", "lstore_1", "lstore_2", "lstore_3", "fstore_0", "fstore_1", "fstore_2", "fstore_3", "dstore_0", "dstore_1", "dstore_2", "dstore_3", "astore_0", "astore_1", "astore_2", "astore_3", "iastore", "lastore", "fastore", "dastore", "aastore", "bastore", "castore", "sastore", "pop", "pop2", "dup", "dup_x1", "dup_x2", "dup2", "dup2_x1", "dup2_x2", "swap", "iadd", "ladd", "fadd", "dadd", "isub", "lsub", "fsub", "dsub", "imul", "lmul", "fmul", "dmul", "idiv", "ldiv", "fdiv", "ddiv", "irem", "lrem", "frem", "drem", "ineg", "lneg", "fneg", "dneg", "ishl", "lshl", "ishr", "lshr", "iushr", "lushr", "iand", "land", "ior", "lor", "ixor", "lxor", "iinc", "i2l", "i2f", "i2d", "l2i", "l2f", "l2d", "f2i", "f2l", "f2d", "d2i", "d2l", "d2f", "i2b", "i2c", "i2s", "lcmp", "fcmpl", "fcmpg", "dcmpl", "dcmpg", "ifeq", "ifne", "iflt", "ifge", "ifgt", "ifle", "if_icmpeq", "if_icmpne", "if_icmplt", "if_icmpge", "if_icmpgt", "if_icmple", "if_acmpeq", "if_acmpne", "goto", "jsr", "ret", "tableswitch", "lookupswitch", "ireturn", "lreturn", "freturn", "dreturn", "areturn", "return", "getstatic", "putstatic", "getfield", "putfield", "invokevirtual", "invokespecial", "invokestatic", "invokeinterface", "invokedynamic", "new", "newarray", "anewarray", "arraylength", "athrow", "checkcast", "instanceof", "monitorenter", "monitorexit", "wide", "multianewarray", "ifnull", "ifnonnull", "goto_w", "jsr_w"}

// variableLength marks opcodes whose operand size depends on the code.
const variableLength = -1

// operandSizes is the number of operand bytes following each opcode.
var operandSizes [maxDefinedOpcode + 1]int8

func init() {
	set := func(from, to Opcode, n int8) {
		for op := int(from); op <= int(to); op++ {
			operandSizes[op] = n
		}
	}
	set(0x10, 0x10, 1) // bipush
	set(0x11, 0x11, 2) // sipush
	set(0x12, 0x12, 1) // ldc
	set(0x13, 0x14, 2) // ldc_w, ldc2_w
	set(OpIload, OpAload, 1)
	set(OpIstore, OpAstore, 1)
	set(OpIinc, OpIinc, 2)
	set(OpIfeq, OpJsr, 2)
	set(OpRet, OpRet, 1)
	set(OpTableswitch, OpLookupswitch, variableLength)
	set(0xb2, 0xb8, 2) // field access, invokevirtual/special/static
	set(0xb9, 0xba, 4) // invokeinterface, invokedynamic
	set(0xbb, 0xbb, 2) // new
	set(0xbc, 0xbc, 1) // newarray
	set(0xbd, 0xbd, 2) // anewarray
	set(0xc0, 0xc1, 2) // checkcast, instanceof
	set(OpWide, OpWide, variableLength)
	set(0xc5, 0xc5, 3) // multianewarray
	set(OpIfnull, OpIfnonnull, 2)
	set(OpGotoW, OpJsrW, 4)
}

func (op Opcode) String() string {
	if op <= maxDefinedOpcode {
		return opcodeNames[op]
	}
	return "invalid"
}

// Instruction is one decoded byte-code instruction. Operands holds the
// bytes after the opcode, including switch padding.
type Instruction struct {
	Offset   int
	Opcode   Opcode
	Operands []byte
}

func (in *Instruction) Mnemonic() string { return in.Opcode.String() }
func (in *Instruction) Length() int      { return 1 + len(in.Operands) }

// U1, U2 and S2/S4 read operands relative to the start of Operands.
func (in *Instruction) U1(at int) uint8  { return in.Operands[at] }
func (in *Instruction) U2(at int) uint16 { return binary.BigEndian.Uint16(in.Operands[at:]) }
func (in *Instruction) S2(at int) int16  { return int16(in.U2(at)) }
func (in *Instruction) S4(at int) int32  { return int32(binary.BigEndian.Uint32(in.Operands[at:])) }

func (in *Instruction) isConditional() bool {
	return (in.Opcode >= OpIfeq && in.Opcode <= OpIfAcmpne) || in.Opcode == OpIfnull || in.Opcode == OpIfnonnull
}

// FallsThrough reports whether control can continue to the next
// instruction.
func (in *Instruction) FallsThrough() bool {
	switch in.Opcode {
	case OpGoto, OpGotoW, OpRet, OpTableswitch, OpLookupswitch, OpAthrow:
		return false
	}
	if in.Opcode >= OpIreturn && in.Opcode <= OpReturn {
		return false
	}
	if in.Opcode == OpWide && len(in.Operands) > 0 && Opcode(in.Operands[0]) == OpRet {
		return false
	}
	return true
}

// BranchTargets returns the absolute code offsets this instruction may
// jump to. ret has none since its target lives in a local variable.
func (in *Instruction) BranchTargets() []int {
	switch {
	case in.isConditional() || in.Opcode == OpGoto || in.Opcode == OpJsr:
		return []int{in.Offset + int(in.S2(0))}
	case in.Opcode == OpGotoW || in.Opcode == OpJsrW:
		return []int{in.Offset + int(in.S4(0))}
	case in.Opcode == OpTableswitch:
		pad := switchPadding(in.Offset)
		low, high := in.S4(pad+4), in.S4(pad+8)
		targets := []int{in.Offset + int(in.S4(pad))}
		for i := 0; i <= int(high-low); i++ {
			targets = append(targets, in.Offset+int(in.S4(pad+12+4*i)))
		}
		return targets
	case in.Opcode == OpLookupswitch:
		pad := switchPadding(in.Offset)
		npairs := int(in.S4(pad + 4))
		targets := []int{in.Offset + int(in.S4(pad))}
		for i := 0; i < npairs; i++ {
			targets = append(targets, in.Offset+int(in.S4(pad+8+8*i+4)))
		}
		return targets
	}
	return nil
}

// switchPadding is the number of bytes between a switch opcode at pc and
// its first 4-byte aligned operand.
func switchPadding(pc int) int {
	return (4 - (pc+1)%4) % 4
}

// DecodeInstructions decodes code into one slot per byte offset. The slot
// of an instruction's opcode holds the instruction; the slots of its
// operand bytes are nil.
func DecodeInstructions(code []byte) ([]*Instruction, error) {
	slots := make([]*Instruction, len(code))
	for pc := 0; pc < len(code); {
		n, err := instructionLength(code, pc)
		if err != nil {
			return nil, err
		}
		slots[pc] = &Instruction{
			Offset:   pc,
			Opcode:   Opcode(code[pc]),
			Operands: code[pc+1 : pc+n],
		}
		pc += n
	}
	return slots, nil
}

func instructionLength(code []byte, pc int) (int, error) {
	op := Opcode(code[pc])
	if op > maxDefinedOpcode {
		return 0, corruptf("invalid opcode 0x%02x at %d", uint8(op), pc)
	}
	n := 1 + int(operandSizes[op])
	switch op {
	case OpTableswitch:
		base := pc + 1 + switchPadding(pc)
		if base+12 > len(code) {
			return 0, corruptf("truncated tableswitch at %d", pc)
		}
		low := int32(binary.BigEndian.Uint32(code[base+4:]))
		high := int32(binary.BigEndian.Uint32(code[base+8:]))
		if low > high {
			return 0, corruptf("tableswitch at %d has low %d > high %d", pc, low, high)
		}
		n = base - pc + 12 + 4*(int(high)-int(low)+1)
	case OpLookupswitch:
		base := pc + 1 + switchPadding(pc)
		if base+8 > len(code) {
			return 0, corruptf("truncated lookupswitch at %d", pc)
		}
		npairs := int32(binary.BigEndian.Uint32(code[base+4:]))
		if npairs < 0 {
			return 0, corruptf("lookupswitch at %d has negative npairs %d", pc, npairs)
		}
		n = base - pc + 8 + 8*int(npairs)
	case OpWide:
		if pc+1 >= len(code) {
			return 0, corruptf("truncated wide at %d", pc)
		}
		switch inner := Opcode(code[pc+1]); {
		case inner == OpIinc:
			n = 6
		case inner >= OpIload && inner <= OpAload, inner >= OpIstore && inner <= OpAstore, inner == OpRet:
			n = 4
		default:
			return 0, corruptf("wide applied to %s at %d", inner, pc)
		}
	}
	if pc+n > len(code) {
		return 0, corruptf("truncated %s at %d", op, pc)
	}
	return n, nil
}
