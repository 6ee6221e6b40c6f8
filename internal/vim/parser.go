package vim

// ParseStatus indicates the result of feeding one token to the Parser.
type ParseStatus uint8

const (
	StatusPending ParseStatus = iota
	StatusComplete
	StatusInvalid
	StatusPassthrough
)

// String implements fmt.Stringer.
func (s ParseStatus) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusComplete:
		return "complete"
	case StatusInvalid:
		return "invalid"
	case StatusPassthrough:
		return "passthrough"
	default:
		return "unknown"
	}
}

// ParseState is the Parser's current position in the Normal-mode grammar.
type ParseState uint8

const (
	StateInitial ParseState = iota
	StateCount
	StateRegister
	StateOperator
	StateOperatorCount
	StateGPrefix
	StateTextObjectPrefix
	StateCharSearch
	StatePattern
)

// String implements fmt.Stringer.
func (s ParseState) String() string {
	switch s {
	case StateInitial:
		return "initial"
	case StateCount:
		return "count"
	case StateRegister:
		return "register"
	case StateOperator:
		return "operator"
	case StateOperatorCount:
		return "operatorCount"
	case StateGPrefix:
		return "gPrefix"
	case StateTextObjectPrefix:
		return "textObjectPrefix"
	case StateCharSearch:
		return "charSearch"
	case StatePattern:
		return "pattern"
	default:
		return "unknown"
	}
}

// Command is one fully parsed Normal-mode command: a count, an optional
// register, and either a bare motion, an operator+motion, an
// operator+text-object, a bare text object (a Visual-mode selection), or
// a line-wise operator (dd/yy/cc).
type Command struct {
	Count            int
	Register         rune
	Operator         *Operator
	Motion           *Motion
	TextObject       *TextObject
	TextObjectPrefix TextObjectPrefix
	CharArg          rune
	Pattern          string
	SearchForward    bool
	Linewise         bool
	Action           string
}

// NewCommand creates an empty command.
func NewCommand() *Command { return &Command{} }

// GetCount returns the effective count (1 if none was specified).
func (c *Command) GetCount() int {
	if c.Count <= 0 {
		return 1
	}
	return c.Count
}

// ParseResult is the outcome of feeding one token to the Parser.
type ParseResult struct {
	Status         ParseStatus
	Command        *Command
	PendingDisplay string
}

// Parser turns a token stream (produced by Tokenize) into a sequence of
// Commands, one rune at a time, mirroring the teacher's key-event-driven
// state machine but with no terminal underneath it.
type Parser struct {
	state ParseState

	count1        CountState
	count2        CountState
	register      rune
	operator      *Operator
	textObjPrefix TextObjectPrefix
	charSearch    rune
	searchMotion  *Motion
	patternBuf    []rune

	pendingKeys []rune

	// VisualActive is set by the Interpreter while a Visual submode is
	// active. It disambiguates 'i'/'a': outside Visual mode they are the
	// insert/append mode-entry commands; inside Visual mode (and, via
	// parseOperator, after any operator) they are the text-object prefix.
	VisualActive bool
}

// NewParser creates a parser in the initial state.
func NewParser() *Parser {
	return &Parser{state: StateInitial, pendingKeys: make([]rune, 0, 8)}
}

// Reset clears all accumulated parser state.
func (p *Parser) Reset() {
	p.state = StateInitial
	p.count1.Reset()
	p.count2.Reset()
	p.register = 0
	p.operator = nil
	p.textObjPrefix = PrefixNone
	p.charSearch = 0
	p.searchMotion = nil
	p.patternBuf = p.patternBuf[:0]
	p.pendingKeys = p.pendingKeys[:0]
}

// State returns the parser's current state.
func (p *Parser) State() ParseState { return p.state }

// PendingKeys returns the keys accumulated toward the in-progress command.
func (p *Parser) PendingKeys() string { return string(p.pendingKeys) }

// Parse feeds one token (a grapheme rune, or a Tokenize sentinel) to the
// state machine.
func (p *Parser) Parse(r rune) ParseResult {
	p.pendingKeys = append(p.pendingKeys, r)

	switch p.state {
	case StateInitial:
		return p.parseInitial(r)
	case StateCount:
		return p.parseCount(r)
	case StateRegister:
		return p.parseRegister(r)
	case StateOperator:
		return p.parseOperator(r)
	case StateOperatorCount:
		return p.parseOperatorCount(r)
	case StateGPrefix:
		return p.parseGPrefix(r)
	case StateTextObjectPrefix:
		return p.parseTextObjectPrefix(r)
	case StateCharSearch:
		return p.parseCharSearch(r)
	case StatePattern:
		return p.parsePattern(r)
	default:
		p.Reset()
		return ParseResult{Status: StatusInvalid}
	}
}

func (p *Parser) pending() ParseResult {
	return ParseResult{Status: StatusPending, PendingDisplay: p.PendingKeys()}
}

func (p *Parser) parseInitial(r rune) ParseResult {
	if IsCountStart(r) {
		p.state = StateCount
		p.count1.AccumulateDigit(r)
		return p.pending()
	}
	if r == '"' {
		p.state = StateRegister
		return p.pending()
	}
	if r == 'g' {
		p.state = StateGPrefix
		return p.pending()
	}
	if op := GetOperator(r); op != nil {
		p.operator = op
		p.state = StateOperator
		return p.pending()
	}
	if p.VisualActive && IsTextObjectPrefix(r) {
		p.textObjPrefix = GetTextObjectPrefix(r)
		p.state = StateTextObjectPrefix
		return p.pending()
	}
	if IsCharSearchMotion(r) {
		p.charSearch = r
		p.state = StateCharSearch
		return p.pending()
	}
	if IsSearchMotion(r) {
		p.searchMotion = GetMotion(r)
		p.state = StatePattern
		return p.pending()
	}
	if m := GetMotion(r); m != nil {
		return p.completeMotion(m)
	}
	p.Reset()
	return ParseResult{Status: StatusPassthrough}
}

func (p *Parser) parseCount(r rune) ParseResult {
	if IsCountDigit(r) {
		p.count1.AccumulateDigit(r)
		return p.pending()
	}
	if r == '"' {
		p.state = StateRegister
		return p.pending()
	}
	if r == 'g' {
		p.state = StateGPrefix
		return p.pending()
	}
	if op := GetOperator(r); op != nil {
		p.operator = op
		p.state = StateOperator
		return p.pending()
	}
	if p.VisualActive && IsTextObjectPrefix(r) {
		p.textObjPrefix = GetTextObjectPrefix(r)
		p.state = StateTextObjectPrefix
		return p.pending()
	}
	if IsCharSearchMotion(r) {
		p.charSearch = r
		p.state = StateCharSearch
		return p.pending()
	}
	if IsSearchMotion(r) {
		p.searchMotion = GetMotion(r)
		p.state = StatePattern
		return p.pending()
	}
	if m := GetMotion(r); m != nil {
		return p.completeMotion(m)
	}
	p.Reset()
	return ParseResult{Status: StatusInvalid}
}

func (p *Parser) parseRegister(r rune) ParseResult {
	if !IsValidRegister(r) {
		p.Reset()
		return ParseResult{Status: StatusInvalid}
	}
	p.register = r
	p.state = StateInitial
	return p.pending()
}

func (p *Parser) parseOperator(r rune) ParseResult {
	if IsCountStart(r) {
		p.state = StateOperatorCount
		p.count2.AccumulateDigit(r)
		return p.pending()
	}
	if p.operator.Key == r {
		return p.completeLinewise()
	}
	if r == 'g' {
		p.state = StateGPrefix
		return p.pending()
	}
	if IsTextObjectPrefix(r) {
		p.textObjPrefix = GetTextObjectPrefix(r)
		p.state = StateTextObjectPrefix
		return p.pending()
	}
	if IsCharSearchMotion(r) {
		p.charSearch = r
		p.state = StateCharSearch
		return p.pending()
	}
	if IsSearchMotion(r) {
		p.searchMotion = GetMotion(r)
		p.state = StatePattern
		return p.pending()
	}
	if m := GetMotion(r); m != nil {
		return p.completeOperatorMotion(m)
	}
	p.Reset()
	return ParseResult{Status: StatusInvalid}
}

func (p *Parser) parseOperatorCount(r rune) ParseResult {
	if IsCountDigit(r) {
		p.count2.AccumulateDigit(r)
		return p.pending()
	}
	if r == 'g' {
		p.state = StateGPrefix
		return p.pending()
	}
	if IsTextObjectPrefix(r) {
		p.textObjPrefix = GetTextObjectPrefix(r)
		p.state = StateTextObjectPrefix
		return p.pending()
	}
	if IsCharSearchMotion(r) {
		p.charSearch = r
		p.state = StateCharSearch
		return p.pending()
	}
	if IsSearchMotion(r) {
		p.searchMotion = GetMotion(r)
		p.state = StatePattern
		return p.pending()
	}
	if m := GetMotion(r); m != nil {
		return p.completeOperatorMotion(m)
	}
	p.Reset()
	return ParseResult{Status: StatusInvalid}
}

func (p *Parser) parseGPrefix(r rune) ParseResult {
	if m := GetGMotion(r); m != nil {
		if p.operator != nil {
			return p.completeOperatorMotion(m)
		}
		return p.completeMotion(m)
	}
	if op := GetGOperator(r); op != nil {
		if p.operator != nil {
			p.Reset()
			return ParseResult{Status: StatusInvalid}
		}
		p.operator = op
		p.state = StateOperator
		return p.pending()
	}
	p.Reset()
	return ParseResult{Status: StatusInvalid}
}

func (p *Parser) parseTextObjectPrefix(r rune) ParseResult {
	textObj := GetTextObject(r)
	if textObj == nil {
		p.Reset()
		return ParseResult{Status: StatusInvalid}
	}
	return p.completeTextObject(textObj)
}

func (p *Parser) parseCharSearch(r rune) ParseResult {
	motion := GetMotion(p.charSearch)
	if motion == nil {
		p.Reset()
		return ParseResult{Status: StatusInvalid}
	}

	cmd := p.buildBaseCommand()
	cmd.Motion = motion
	cmd.CharArg = r

	if p.operator != nil {
		cmd.Operator = p.operator
		cmd.Action = p.operator.Action
	} else {
		cmd.Action = motion.Action
	}

	p.Reset()
	return ParseResult{Status: StatusComplete, Command: cmd}
}

// parsePattern accumulates a search pattern's runes until a TokenCR
// terminates it ("/" and "?" take a <cr>-terminated argument the way
// f/F/t/T take a one-grapheme argument).
func (p *Parser) parsePattern(r rune) ParseResult {
	if r != TokenCR {
		p.patternBuf = append(p.patternBuf, r)
		return p.pending()
	}

	motion := p.searchMotion
	cmd := p.buildBaseCommand()
	cmd.Motion = motion
	cmd.Pattern = string(p.patternBuf)
	cmd.SearchForward = motion.Keys == "/"

	if p.operator != nil {
		cmd.Operator = p.operator
		cmd.Action = p.operator.Action
	} else {
		cmd.Action = motion.Action
	}

	p.Reset()
	return ParseResult{Status: StatusComplete, Command: cmd}
}

func (p *Parser) completeMotion(m *Motion) ParseResult {
	cmd := p.buildBaseCommand()
	cmd.Motion = m
	cmd.Action = m.Action
	p.Reset()
	return ParseResult{Status: StatusComplete, Command: cmd}
}

func (p *Parser) completeOperatorMotion(m *Motion) ParseResult {
	cmd := p.buildBaseCommand()
	cmd.Operator = p.operator
	cmd.Motion = m
	cmd.Action = p.operator.Action
	p.Reset()
	return ParseResult{Status: StatusComplete, Command: cmd}
}

// completeTextObject builds a complete operator+text-object command. A
// text object with no pending operator is a bare selection — the
// interpreter treats this as Visual-mode behavior (teacher's own parser
// comment: "Text object without operator (in visual mode, selects the
// text)"), which is why its Action falls back to the inner/around select
// action instead of an operator action.
func (p *Parser) completeTextObject(textObj *TextObject) ParseResult {
	cmd := p.buildBaseCommand()
	cmd.Operator = p.operator
	cmd.TextObject = textObj
	cmd.TextObjectPrefix = p.textObjPrefix

	if p.operator != nil {
		cmd.Action = p.operator.Action
	} else if p.textObjPrefix == PrefixInner {
		cmd.Action = textObj.InnerAction
	} else {
		cmd.Action = textObj.AroundAction
	}

	p.Reset()
	return ParseResult{Status: StatusComplete, Command: cmd}
}

// PendingOperator returns the operator accumulated so far (StateOperator or
// StateOperatorCount), or nil. The Interpreter uses this to detect an
// operator key applied directly to an active Visual selection, which in
// Visual mode takes effect immediately rather than waiting for a motion.
func (p *Parser) PendingOperator() *Operator {
	if p.state == StateOperator || p.state == StateOperatorCount {
		return p.operator
	}
	return nil
}

// CompleteOperatorOnly finishes the in-progress command using only the
// pending operator and count/register, with no motion or text object. It is
// the Visual-mode counterpart of completeOperatorMotion, where the operator
// applies to the caller-supplied selection instead of a motion's span.
func (p *Parser) CompleteOperatorOnly() *Command {
	op := p.operator
	if op == nil {
		return nil
	}
	cmd := p.buildBaseCommand()
	cmd.Operator = op
	cmd.Action = op.Action
	p.Reset()
	return cmd
}

func (p *Parser) completeLinewise() ParseResult {
	cmd := p.buildBaseCommand()
	cmd.Operator = p.operator
	cmd.Linewise = true
	cmd.Action = p.operator.LinewiseAction
	p.Reset()
	return ParseResult{Status: StatusComplete, Command: cmd}
}

// buildBaseCommand combines the pre- and post-operator counts and carries
// the selected register into the command under construction.
func (p *Parser) buildBaseCommand() *Command {
	cmd := NewCommand()
	cmd.Count = CombineCounts(p.count1.Get(), p.count2.Get())
	if cmd.Count == 1 && !p.count1.Active && !p.count2.Active {
		cmd.Count = 0
	}
	cmd.Register = p.register
	return cmd
}
