package chip8

// Stack is the return address stack. The stack pointer addresses the slot of the
// most recent return address, slot 0 is never written and marks the empty stack.
type Stack struct {
	entries [StackSize]uint16
	sp      uint8
}

// push increments the stack pointer and stores the return address in the new slot.
func (s *Stack) push(address uint16) error {
	if int(s.sp) >= StackSize-1 {
		return ErrStackOverflow
	}
	s.sp++
	s.entries[s.sp] = address
	return nil
}

// pop returns the address in the current slot and decrements the stack pointer.
func (s *Stack) pop() (uint16, error) {
	if s.sp == 0 {
		return 0, ErrStackUnderflow
	}
	address := s.entries[s.sp]
	s.sp--
	return address, nil
}

// Pointer returns the current stack pointer.
func (s *Stack) Pointer() uint8 {
	return s.sp
}

// Entries returns a copy of all stack slots.
func (s *Stack) Entries() [StackSize]uint16 {
	return s.entries
}
