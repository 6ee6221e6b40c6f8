package vim

import (
	"sync"
	"unicode"
)

// RegisterType categorizes registers by rotation/overwrite behavior.
type RegisterType uint8

const (
	RegisterNamed RegisterType = iota
	RegisterNumbered
	RegisterUnnamed
	RegisterSmallDelete
	RegisterBlackHole
	RegisterLastYank
)

// Register is a single named storage slot holding typed text.
type Register struct {
	Name      rune
	Type      RegisterType
	Content   string
	Linewise  bool
	Blockwise bool
}

// RegisterStore owns every register for one buffer. In linewise mode
// (internal/pipeline) each worker constructs its own RegisterStore, so
// registers never leak across lines; see §5 of SPEC_FULL.md.
type RegisterStore struct {
	mu                sync.RWMutex
	registers         map[rune]*Register
	numberedRegisters [9]*Register // 1-9, rotating delete history
}

// NewRegisterStore creates a store with all registers initialized empty.
func NewRegisterStore() *RegisterStore {
	rs := &RegisterStore{registers: make(map[rune]*Register)}
	rs.initializeRegisters()
	return rs
}

func (rs *RegisterStore) initializeRegisters() {
	rs.registers['"'] = &Register{Name: '"', Type: RegisterUnnamed}

	for r := 'a'; r <= 'z'; r++ {
		rs.registers[r] = &Register{Name: r, Type: RegisterNamed}
	}

	rs.registers['0'] = &Register{Name: '0', Type: RegisterLastYank}
	for i := 1; i <= 9; i++ {
		r := rune('0' + i)
		rs.registers[r] = &Register{Name: r, Type: RegisterNumbered}
		rs.numberedRegisters[i-1] = rs.registers[r]
	}

	rs.registers['-'] = &Register{Name: '-', Type: RegisterSmallDelete}
	rs.registers['_'] = &Register{Name: '_', Type: RegisterBlackHole}
}

// Get returns a register's content, linewise flag, and blockwise flag.
// Uppercase named registers read the same content as their lowercase form.
func (rs *RegisterStore) Get(name rune) (content string, linewise, blockwise bool) {
	if unicode.IsUpper(name) {
		name = unicode.ToLower(name)
	}
	rs.mu.RLock()
	defer rs.mu.RUnlock()
	reg, ok := rs.registers[name]
	if !ok {
		return "", false, false
	}
	return reg.Content, reg.Linewise, reg.Blockwise
}

// Set stores content in a named register directly, honoring uppercase
// append-mode and discarding writes to the black-hole register.
func (rs *RegisterStore) Set(name rune, content string, linewise, blockwise bool) {
	if name == '_' {
		return
	}
	rs.mu.Lock()
	defer rs.mu.Unlock()

	appendMode := false
	if unicode.IsUpper(name) {
		name = unicode.ToLower(name)
		appendMode = true
	}

	reg, ok := rs.registers[name]
	if !ok {
		return
	}

	if appendMode && reg.Type == RegisterNamed {
		if reg.Linewise {
			reg.Content += "\n" + content
		} else {
			reg.Content += content
		}
		reg.Linewise = reg.Linewise || linewise
		reg.Blockwise = blockwise
		return
	}

	reg.Content = content
	reg.Linewise = linewise
	reg.Blockwise = blockwise
}

// SetYank records a yank: register 0 and the unnamed register both
// receive the content. The Interpreter skips it for the black-hole
// register, and for a named target also calls Set for that name.
func (rs *RegisterStore) SetYank(content string, linewise, blockwise bool) {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	if reg, ok := rs.registers['0']; ok {
		reg.Content, reg.Linewise, reg.Blockwise = content, linewise, blockwise
	}
	if reg, ok := rs.registers['"']; ok {
		reg.Content, reg.Linewise, reg.Blockwise = content, linewise, blockwise
	}
}

// SetDelete records a delete, rotating the 1-9 ring for deletes spanning
// at least one full line, or routing sub-line deletes to "-" instead.
func (rs *RegisterStore) SetDelete(content string, linewise, blockwise, small bool) {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	if small {
		if reg, ok := rs.registers['-']; ok {
			reg.Content, reg.Linewise, reg.Blockwise = content, linewise, blockwise
		}
		if reg, ok := rs.registers['"']; ok {
			reg.Content, reg.Linewise, reg.Blockwise = content, linewise, blockwise
		}
		return
	}

	for i := 8; i > 0; i-- {
		rs.numberedRegisters[i].Content = rs.numberedRegisters[i-1].Content
		rs.numberedRegisters[i].Linewise = rs.numberedRegisters[i-1].Linewise
		rs.numberedRegisters[i].Blockwise = rs.numberedRegisters[i-1].Blockwise
	}
	rs.numberedRegisters[0].Content = content
	rs.numberedRegisters[0].Linewise = linewise
	rs.numberedRegisters[0].Blockwise = blockwise

	if reg, ok := rs.registers['"']; ok {
		reg.Content, reg.Linewise, reg.Blockwise = content, linewise, blockwise
	}
}

// GetRegisterType classifies a register name.
func GetRegisterType(name rune) RegisterType {
	switch {
	case name == '"':
		return RegisterUnnamed
	case name >= 'a' && name <= 'z', name >= 'A' && name <= 'Z':
		return RegisterNamed
	case name == '0':
		return RegisterLastYank
	case name >= '1' && name <= '9':
		return RegisterNumbered
	case name == '-':
		return RegisterSmallDelete
	case name == '_':
		return RegisterBlackHole
	default:
		return RegisterUnnamed
	}
}

// IsValidRegister reports whether name identifies a register vicut supports.
func IsValidRegister(name rune) bool {
	switch {
	case name == '"':
		return true
	case name >= 'a' && name <= 'z', name >= 'A' && name <= 'Z':
		return true
	case name >= '0' && name <= '9':
		return true
	case name == '-', name == '_':
		return true
	default:
		return false
	}
}
