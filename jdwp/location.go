package jdwp

import "fmt"

// Location identifies a point in Java bytecode: a class, a method within
// it, and a bytecode offset (dex_pc in the original, kept as a generic
// name here since this core has no Dalvik-specific notion of its own).
type Location struct {
	ClassID        int64
	MethodID       int64
	BytecodeOffset uint64
}

// Equal reports whether two locations name the same instruction.
func (l Location) Equal(other Location) bool {
	return l == other
}

func (l Location) String() string {
	return fmt.Sprintf("classID=%#x methodID=%#x offset=%#x", l.ClassID, l.MethodID, l.BytecodeOffset)
}
