package classfile

import (
	"bytes"
	"fmt"
	"io"
	"os"
)

type options struct {
	writeAccess bool
}

type Option func(*options)

// WithWriteAccess allows WriteToClassFile on the parsed result.
func WithWriteAccess() Option {
	return func(o *options) { o.writeAccess = true }
}

func ParseFile(path string, opts ...Option) (*ClassFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open class file: %w", err)
	}
	defer f.Close()
	return Parse(f, opts...)
}

func ParseBytes(b []byte, opts ...Option) (*ClassFile, error) {
	return Parse(bytes.NewReader(b), opts...)
}

// Parse reads one class file. Any structural error, illegal flag
// combination or I/O failure aborts the whole load; non-fatal findings
// are collected in the result's Diagnostics.
func Parse(rd io.Reader, opts ...Option) (*ClassFile, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	r := &reader{r: rd}

	magic := r.readU4()
	if r.err != nil {
		return nil, r.failure("magic")
	}
	if magic != Magic {
		return nil, corruptf("invalid magic number 0x%X (expected 0xCAFEBABE)", magic)
	}

	cf := &ClassFile{
		Magic:        magic,
		MinorVersion: r.readU2(),
		MajorVersion: r.readU2(),
		writable:     o.writeAccess,
	}
	if r.err != nil {
		return nil, r.failure("version")
	}

	pool, err := readConstantPool(r)
	if err != nil {
		return nil, err
	}
	cf.ConstantPool = pool

	cf.AccessFlags = AccessFlags(r.readU2())
	cf.ThisClass = r.readU2()
	cf.SuperClass = r.readU2()
	cf.Interfaces = r.readU2s()
	if r.err != nil {
		return nil, r.failure("class info")
	}
	if err := cf.validateHeader(); err != nil {
		return nil, err
	}

	fieldsCount := r.readU2()
	if r.err != nil {
		return nil, r.failure("fields count")
	}
	cf.Fields = make([]*FieldInfo, 0, fieldsCount)
	for i := uint16(0); i < fieldsCount; i++ {
		field, err := readFieldInfo(r, cf)
		if err != nil {
			return nil, fmt.Errorf("field %d: %w", i, err)
		}
		cf.Fields = append(cf.Fields, field)
	}

	methodsCount := r.readU2()
	if r.err != nil {
		return nil, r.failure("methods count")
	}
	cf.Methods = make([]*MethodInfo, 0, methodsCount)
	for i := uint16(0); i < methodsCount; i++ {
		method, err := readMethodInfo(r, cf)
		if err != nil {
			return nil, fmt.Errorf("method %d: %w", i, err)
		}
		cf.Methods = append(cf.Methods, method)
	}

	cf.Attributes, err = readAttributes(r, cf, contextClass, "class "+cf.ClassName())
	if err != nil {
		return nil, fmt.Errorf("class attributes: %w", err)
	}

	var extra [1]byte
	if n, _ := rd.Read(extra[:]); n > 0 {
		cf.Diagnostics.add(SeverityWarning, "", "trailing bytes after class file")
	}
	return cf, nil
}

func readConstantPool(r *reader) (ConstantPool, error) {
	count := r.readU2()
	if r.err != nil {
		return nil, r.failure("constant pool count")
	}
	if count == 0 {
		return nil, corruptf("constant_pool_count is 0")
	}

	cp := make(ConstantPool, count-1)
	for i := uint16(1); i < count; i++ {
		entry, err := readConstantPoolEntry(r)
		if err != nil {
			return nil, fmt.Errorf("constant pool entry %d: %w", i, err)
		}
		cp[i-1] = entry
		if tag := entry.Tag(); tag == ConstantLong || tag == ConstantDouble {
			if i+1 >= count {
				return nil, corruptf("constant pool entry %d: %s in the last slot", i, tag)
			}
			// The following slot is unusable and stays nil.
			i++
		}
	}
	if err := cp.validate(); err != nil {
		return nil, err
	}
	return cp, nil
}

func readConstantPoolEntry(r *reader) (ConstantPoolEntry, error) {
	tag := ConstantTag(r.readU1())
	if r.err != nil {
		return nil, r.failure("tag")
	}

	var entry ConstantPoolEntry
	switch tag {
	case ConstantUtf8:
		raw := r.readBytes(int(r.readU2()))
		entry = &ConstantUtf8Info{Raw: raw, Value: decodeModifiedUtf8(raw)}
	case ConstantInteger:
		entry = &ConstantIntegerInfo{Bits: r.readU4()}
	case ConstantFloat:
		entry = &ConstantFloatInfo{Bits: r.readU4()}
	case ConstantLong:
		high, low := r.readU4(), r.readU4()
		entry = &ConstantLongInfo{Bits: uint64(high)<<32 | uint64(low)}
	case ConstantDouble:
		high, low := r.readU4(), r.readU4()
		entry = &ConstantDoubleInfo{Bits: uint64(high)<<32 | uint64(low)}
	case ConstantClass:
		entry = &ConstantClassInfo{NameIndex: r.readU2()}
	case ConstantString:
		entry = &ConstantStringInfo{StringIndex: r.readU2()}
	case ConstantFieldref, ConstantMethodref, ConstantInterfaceMethodref:
		entry = &ConstantRefInfo{RefTag: tag, ClassIndex: r.readU2(), NameAndTypeIndex: r.readU2()}
	case ConstantNameAndType:
		entry = &ConstantNameAndTypeInfo{NameIndex: r.readU2(), DescriptorIndex: r.readU2()}
	case ConstantMethodHandle:
		entry = &ConstantMethodHandleInfo{ReferenceKind: MethodHandleKind(r.readU1()), ReferenceIndex: r.readU2()}
	case ConstantMethodType:
		entry = &ConstantMethodTypeInfo{DescriptorIndex: r.readU2()}
	case ConstantDynamic, ConstantInvokeDynamic:
		entry = &ConstantDynamicInfo{DynTag: tag, BootstrapMethodAttrIndex: r.readU2(), NameAndTypeIndex: r.readU2()}
	case ConstantModule, ConstantPackage:
		entry = &ConstantNamedInfo{NamedTag: tag, NameIndex: r.readU2()}
	default:
		return nil, corruptf("unknown constant pool tag %d", uint8(tag))
	}
	if r.err != nil {
		return nil, r.failure(tag.String())
	}
	return entry, nil
}
