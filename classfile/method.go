package classfile

import (
	"fmt"
	"strconv"
	"sync"
)

// UndefinedValue marks a runtime slot that was never supplied. It is
// distinct from nil, which is a legitimate reference value.
type UndefinedValue struct{}

func (UndefinedValue) String() string { return "undefined" }

var Undefined = UndefinedValue{}

func IsUndefined(v any) bool {
	_, ok := v.(UndefinedValue)
	return ok
}

type MethodInfo struct {
	Member

	parsed *MethodDescriptor
	major  uint16

	instrMu      sync.Mutex
	instructions []*Instruction

	cfgOnce sync.Once
	cfg     *ControlFlowGraph
	cfgErr  error

	paramNames func() []string

	// Runtime slots attached by an interpreter. They are indexed by
	// parameter index, not local variable index.
	slotsMu         sync.RWMutex
	predefined      []any
	variables       []any
	generators      []any
	arrayGenerators []any
}

func (m *MethodInfo) IsSynchronized() bool { return m.AccessFlags.IsSynchronized() }
func (m *MethodInfo) IsBridge() bool       { return m.AccessFlags.IsBridge() }
func (m *MethodInfo) IsVarargs() bool      { return m.AccessFlags.IsVarargs() }
func (m *MethodInfo) IsNative() bool       { return m.AccessFlags.IsNative() }
func (m *MethodInfo) IsAbstract() bool     { return m.AccessFlags.IsAbstract() }
func (m *MethodInfo) IsStrict() bool       { return m.AccessFlags.IsStrict() }

func (m *MethodInfo) IsConstructor() bool {
	return m.name == InitName
}

// IsStaticInitializer reports a class initializer. From class file
// version 51 on the JVM only treats <clinit> as one when it is static.
func (m *MethodInfo) IsStaticInitializer() bool {
	return isClassInitializer(m.name, m.AccessFlags, m.major)
}

func isClassInitializer(name string, flags AccessFlags, major uint16) bool {
	return name == ClinitName && (major < MajorJava7 || flags.IsStatic())
}

func (m *MethodInfo) MethodDescriptor() *MethodDescriptor { return m.parsed }
func (m *MethodInfo) ParameterCount() int                 { return len(m.parsed.Parameters) }
func (m *MethodInfo) ParameterTypes() []Type              { return m.parsed.Parameters }
func (m *MethodInfo) ReturnType() Type                    { return m.parsed.Return }
func (m *MethodInfo) ReturnTypeName() string              { return m.parsed.Return.String() }

// ParameterTypeNames renders each parameter type; a varargs method shows
// its last parameter with "...".
func (m *MethodInfo) ParameterTypeNames() []string {
	return m.parsed.ParameterNames(m.IsVarargs())
}

// LocalSlot returns the local variable slot holding parameter param on
// entry, or -1.
func (m *MethodInfo) LocalSlot(param int) int {
	return m.parsed.LocalSlot(param, m.IsStatic())
}

// ParameterIndex maps a local variable slot back to its parameter.
func (m *MethodInfo) ParameterIndex(slot int) (int, bool) {
	return m.parsed.ParameterIndex(slot, m.IsStatic())
}

// Code returns the method's Code attribute, or nil for abstract and
// native methods.
func (m *MethodInfo) Code() *CodeAttribute {
	return m.GetAttribute("Code").AsCode()
}

func (m *MethodInfo) CodeLength() int {
	if c := m.Code(); c != nil {
		return len(c.Code)
	}
	return 0
}

func (m *MethodInfo) MaxStack() int {
	if c := m.Code(); c != nil {
		return int(c.MaxStack)
	}
	return 0
}

func (m *MethodInfo) MaxLocals() int {
	if c := m.Code(); c != nil {
		return int(c.MaxLocals)
	}
	return 0
}

// Instructions decodes the method body into one slot per code offset,
// nil for bytes that are operands of an earlier instruction. The result
// is cached until UnloadInstructions.
func (m *MethodInfo) Instructions() ([]*Instruction, error) {
	m.instrMu.Lock()
	defer m.instrMu.Unlock()
	if m.instructions != nil {
		return m.instructions, nil
	}
	code := m.Code()
	if code == nil {
		return nil, ErrNoCode
	}
	instrs, err := DecodeInstructions(code.Code)
	if err != nil {
		return nil, fmt.Errorf("method %s: %w", m.name, err)
	}
	m.instructions = instrs
	return instrs, nil
}

// UnloadInstructions drops the decoded instructions. The Code attribute
// stays resident so the next Instructions call decodes again.
func (m *MethodInfo) UnloadInstructions() {
	m.instrMu.Lock()
	m.instructions = nil
	m.instrMu.Unlock()
}

// InstructionAt returns the instruction starting at pc, or nil.
func (m *MethodInfo) InstructionAt(pc int) (*Instruction, error) {
	instrs, err := m.Instructions()
	if err != nil {
		return nil, err
	}
	if pc < 0 || pc >= len(instrs) {
		return nil, nil
	}
	return instrs[pc], nil
}

// ControlFlowGraph builds the graph on first use. Concurrent callers
// share one build and the result never changes afterwards.
func (m *MethodInfo) ControlFlowGraph() (*ControlFlowGraph, error) {
	m.cfgOnce.Do(func() {
		code := m.Code()
		if code == nil {
			m.cfgErr = ErrNoCode
			return
		}
		instrs, err := DecodeInstructions(code.Code)
		if err != nil {
			m.cfgErr = fmt.Errorf("method %s: %w", m.name, err)
			return
		}
		m.cfg, m.cfgErr = buildControlFlowGraph(instrs, code.ExceptionTable)
	})
	return m.cfg, m.cfgErr
}

// ParameterNames returns a name per parameter, taken from the
// MethodParameters attribute, else the LocalVariableTable, else argN.
func (m *MethodInfo) ParameterNames() []string {
	if m.paramNames == nil {
		return m.resolveParameterNames()
	}
	return m.paramNames()
}

func (m *MethodInfo) resolveParameterNames() []string {
	names := make([]string, m.ParameterCount())
	if mp := attributeAs[*MethodParametersAttribute](m.GetAttribute("MethodParameters")); mp != nil {
		for i := range names {
			if i < len(mp.Parameters) {
				names[i] = m.pool.GetUtf8(mp.Parameters[i].NameIndex)
			}
		}
	} else if code := m.Code(); code != nil {
		if lvt := code.GetAttribute("LocalVariableTable").AsLocalVariableTable(); lvt != nil {
			for _, e := range lvt.LocalVariableTable {
				if e.StartPC != 0 {
					continue
				}
				if p, ok := m.ParameterIndex(int(e.Index)); ok {
					names[p] = m.pool.GetUtf8(e.NameIndex)
				}
			}
		}
	}
	for i, n := range names {
		if n == "" {
			names[i] = "arg" + strconv.Itoa(i)
		}
	}
	return names
}

// ExceptionTypes returns the internal names listed in the Exceptions
// attribute.
func (m *MethodInfo) ExceptionTypes() []string {
	ex := m.GetAttribute("Exceptions").AsExceptions()
	if ex == nil {
		return nil
	}
	names := make([]string, len(ex.ExceptionIndexTable))
	for i, idx := range ex.ExceptionIndexTable {
		names[i] = m.pool.GetClassName(idx)
	}
	return names
}

// HandlerTypes returns the distinct exception classes caught by the
// method's handlers, in table order. A catch-all handler is reported as
// "java/lang/Throwable".
func (m *MethodInfo) HandlerTypes() []string {
	code := m.Code()
	if code == nil {
		return nil
	}
	seen := make(map[string]bool)
	var names []string
	for _, e := range code.ExceptionTable {
		name := "java/lang/Throwable"
		if e.CatchType != 0 {
			name = m.pool.GetClassName(e.CatchType)
		}
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	return names
}

func (m *MethodInfo) checkParam(index int) error {
	if index < 0 || index >= m.ParameterCount() {
		return fmt.Errorf("method %s: parameter index %d out of range [0, %d)", m.name, index, m.ParameterCount())
	}
	return nil
}

// PredefinedParameter returns the value supplied for parameter index, or
// Undefined.
func (m *MethodInfo) PredefinedParameter(index int) (any, error) {
	if err := m.checkParam(index); err != nil {
		return nil, err
	}
	m.slotsMu.RLock()
	defer m.slotsMu.RUnlock()
	return m.predefined[index], nil
}

func (m *MethodInfo) SetPredefinedParameter(index int, v any) error {
	if err := m.checkParam(index); err != nil {
		return err
	}
	m.slotsMu.Lock()
	m.predefined[index] = v
	m.slotsMu.Unlock()
	return nil
}

// Variable returns the symbolic variable bound to parameter index, or
// nil when none has been bound.
func (m *MethodInfo) Variable(index int) (any, error) {
	if err := m.checkParam(index); err != nil {
		return nil, err
	}
	m.slotsMu.RLock()
	defer m.slotsMu.RUnlock()
	if m.variables == nil {
		return nil, nil
	}
	return m.variables[index], nil
}

func (m *MethodInfo) SetVariable(index int, v any) error {
	if err := m.checkParam(index); err != nil {
		return err
	}
	m.slotsMu.Lock()
	defer m.slotsMu.Unlock()
	if m.variables == nil {
		m.variables = make([]any, m.ParameterCount())
	}
	m.variables[index] = v
	return nil
}

func (m *MethodInfo) Generator(index int) (any, error) {
	if err := m.checkParam(index); err != nil {
		return nil, err
	}
	m.slotsMu.RLock()
	defer m.slotsMu.RUnlock()
	return m.generators[index], nil
}

func (m *MethodInfo) SetGenerator(index int, g any) error {
	if err := m.checkParam(index); err != nil {
		return err
	}
	m.slotsMu.Lock()
	m.generators[index] = g
	m.slotsMu.Unlock()
	return nil
}

func (m *MethodInfo) ArrayElementGenerator(index int) (any, error) {
	if err := m.checkParam(index); err != nil {
		return nil, err
	}
	m.slotsMu.RLock()
	defer m.slotsMu.RUnlock()
	return m.arrayGenerators[index], nil
}

func (m *MethodInfo) SetArrayElementGenerator(index int, g any) error {
	if err := m.checkParam(index); err != nil {
		return err
	}
	m.slotsMu.Lock()
	m.arrayGenerators[index] = g
	m.slotsMu.Unlock()
	return nil
}

// ResetRuntimeSlots clears everything an interpreter attached.
func (m *MethodInfo) ResetRuntimeSlots() {
	m.slotsMu.Lock()
	defer m.slotsMu.Unlock()
	m.initSlots()
}

func (m *MethodInfo) initSlots() {
	n := m.ParameterCount()
	m.predefined = make([]any, n)
	for i := range m.predefined {
		m.predefined[i] = Undefined
	}
	m.variables = nil
	m.generators = make([]any, n)
	m.arrayGenerators = make([]any, n)
}

func readMethodInfo(r *reader, cf *ClassFile) (*MethodInfo, error) {
	mem, err := readMember(r, cf, "method", contextMethod)
	if err != nil {
		return nil, err
	}
	m := &MethodInfo{Member: mem, major: cf.MajorVersion}
	location := m.location("method")

	if unknown := m.AccessFlags.Unknown(MethodFlagsMask); unknown != 0 {
		cf.Diagnostics.add(SeverityWarning, location, "reserved access flag bits 0x%04X set", uint16(unknown))
	}
	if !isClassInitializer(m.name, m.AccessFlags, m.major) {
		if reason := checkMethodFlags(m.AccessFlags, m.name, cf.AccessFlags.IsInterface(), m.major); reason != "" {
			return nil, &AccessFlagError{Kind: "method", Name: m.name, Flags: m.AccessFlags, Reason: reason}
		}
	}

	m.parsed = ParseMethodDescriptor(m.descriptor)
	if m.parsed.Malformed {
		cf.Diagnostics.add(SeverityWarning, location, "malformed method descriptor %q", m.descriptor)
	}
	if m.IsAbstract() || m.IsNative() {
		if m.Code() != nil {
			cf.Diagnostics.add(SeverityWarning, location, "abstract or native method has a Code attribute")
		}
	}
	m.initSlots()
	m.paramNames = sync.OnceValue(m.resolveParameterNames)
	return m, nil
}

// checkMethodFlags applies JVMS 4.6 to a method's flags and returns the
// first violated rule, or "". Class initializers are not checked.
func checkMethodFlags(flags AccessFlags, name string, ownerIsInterface bool, major uint16) string {
	if visibilityCount(flags) > 1 {
		return "at most one of public, private and protected may be set"
	}
	if flags.IsAbstract() {
		const excluded = AccFinal | AccNative | AccPrivate | AccStatic | AccStrict | AccSynchronized
		if flags&excluded != 0 {
			return "an abstract method cannot be " + flags.Intersect(excluded).MethodString()
		}
	}
	if ownerIsInterface {
		if major < MajorJava8 {
			if !flags.IsPublic() || !flags.IsAbstract() || flags.IsPrivate() {
				return "interface methods before class file version 52 must be public and abstract"
			}
		} else if flags.IsPublic() == flags.IsPrivate() {
			return "interface methods must be exactly one of public and private"
		}
		const excluded = AccNative | AccSynchronized | AccFinal | AccProtected
		if flags&excluded != 0 {
			return "interface methods cannot be " + flags.Intersect(excluded).MethodString()
		}
	}
	if name == InitName {
		const excluded = AccAbstract | AccNative | AccBridge | AccSynchronized | AccFinal | AccStatic
		if flags&excluded != 0 {
			return "instance initializers cannot be " + flags.Intersect(excluded).MethodString()
		}
	}
	return ""
}
