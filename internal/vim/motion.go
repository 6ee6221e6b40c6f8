package vim

// MotionType categorizes a motion's span behavior.
type MotionType uint8

const (
	// MotionCharwise moves character by character.
	MotionCharwise MotionType = iota
	// MotionLinewise operates on whole lines.
	MotionLinewise
)

// Motion represents a Vim motion command. Motions define how the cursor
// moves and what span an operator consumes.
type Motion struct {
	// Name is the motion identifier (e.g., "wordForward", "wordEnd", "lineEnd").
	Name string

	// Keys is the key sequence that triggers this motion.
	Keys string

	// Action is the action name dispatched by the interpreter.
	Action string

	// Type indicates the motion's span type (charwise or linewise).
	Type MotionType

	// Inclusive indicates if the motion includes the grapheme under cursor.
	// e.g. 'e' is inclusive, 'w' is exclusive.
	Inclusive bool

	// Repeatable indicates if this motion can be prefixed with a count.
	Repeatable bool

	// NeedsChar indicates the motion consumes one following grapheme
	// argument (f/F/t/T).
	NeedsChar bool

	// NeedsPattern indicates the motion consumes a <cr>-terminated search
	// pattern argument (/ and ?).
	NeedsPattern bool
}

// Standard motions.
var (
	MotionLeft = Motion{Name: "left", Keys: "h", Action: "cursor.left", Type: MotionCharwise, Repeatable: true}
	MotionRight = Motion{Name: "right", Keys: "l", Action: "cursor.right", Type: MotionCharwise, Repeatable: true}
	MotionUp   = Motion{Name: "up", Keys: "k", Action: "cursor.up", Type: MotionLinewise, Repeatable: true}
	MotionDown = Motion{Name: "down", Keys: "j", Action: "cursor.down", Type: MotionLinewise, Repeatable: true}

	MotionWordForward  = Motion{Name: "wordForward", Keys: "w", Action: "cursor.wordForward", Type: MotionCharwise, Repeatable: true}
	MotionWordBackward = Motion{Name: "wordBackward", Keys: "b", Action: "cursor.wordBackward", Type: MotionCharwise, Repeatable: true}
	MotionWordEnd      = Motion{Name: "wordEnd", Keys: "e", Action: "cursor.wordEnd", Type: MotionCharwise, Inclusive: true, Repeatable: true}
	MotionWordEndBack  = Motion{Name: "wordEndBack", Keys: "ge", Action: "cursor.wordEndBack", Type: MotionCharwise, Inclusive: true, Repeatable: true}

	MotionWORDForward  = Motion{Name: "WORDForward", Keys: "W", Action: "cursor.WORDForward", Type: MotionCharwise, Repeatable: true}
	MotionWORDBackward = Motion{Name: "WORDBackward", Keys: "B", Action: "cursor.WORDBackward", Type: MotionCharwise, Repeatable: true}
	MotionWORDEnd      = Motion{Name: "WORDEnd", Keys: "E", Action: "cursor.WORDEnd", Type: MotionCharwise, Inclusive: true, Repeatable: true}
	MotionWORDEndBack  = Motion{Name: "WORDEndBack", Keys: "gE", Action: "cursor.WORDEndBack", Type: MotionCharwise, Inclusive: true, Repeatable: true}

	MotionLineStart     = Motion{Name: "lineStart", Keys: "0", Action: "cursor.lineStart", Type: MotionCharwise}
	MotionFirstNonBlank = Motion{Name: "firstNonBlank", Keys: "^", Action: "cursor.firstNonBlank", Type: MotionCharwise}
	MotionLineEnd       = Motion{Name: "lineEnd", Keys: "$", Action: "cursor.lineEnd", Type: MotionCharwise, Inclusive: true}
	MotionGotoColumn    = Motion{Name: "gotoColumn", Keys: "|", Action: "cursor.gotoColumn", Type: MotionCharwise, Repeatable: true}

	MotionDocumentStart = Motion{Name: "documentStart", Keys: "gg", Action: "cursor.documentStart", Type: MotionLinewise, Repeatable: true}
	MotionDocumentEnd   = Motion{Name: "documentEnd", Keys: "G", Action: "cursor.documentEnd", Type: MotionLinewise, Inclusive: true, Repeatable: true}

	MotionFindChar     = Motion{Name: "findChar", Keys: "f", Action: "cursor.findChar", Type: MotionCharwise, Inclusive: true, Repeatable: true, NeedsChar: true}
	MotionFindCharBack = Motion{Name: "findCharBack", Keys: "F", Action: "cursor.findCharBack", Type: MotionCharwise, Inclusive: true, Repeatable: true, NeedsChar: true}
	MotionTillChar     = Motion{Name: "tillChar", Keys: "t", Action: "cursor.tillChar", Type: MotionCharwise, Repeatable: true, NeedsChar: true}
	MotionTillCharBack = Motion{Name: "tillCharBack", Keys: "T", Action: "cursor.tillCharBack", Type: MotionCharwise, Repeatable: true, NeedsChar: true}
	MotionRepeatFind      = Motion{Name: "repeatFind", Keys: ";", Action: "cursor.repeatFind", Type: MotionCharwise, Inclusive: true, Repeatable: true}
	MotionRepeatFindBack  = Motion{Name: "repeatFindBack", Keys: ",", Action: "cursor.repeatFindBack", Type: MotionCharwise, Inclusive: true, Repeatable: true}

	MotionParagraphForward  = Motion{Name: "paragraphForward", Keys: "}", Action: "cursor.paragraphForward", Type: MotionCharwise, Repeatable: true}
	MotionParagraphBackward = Motion{Name: "paragraphBackward", Keys: "{", Action: "cursor.paragraphBackward", Type: MotionCharwise, Repeatable: true}
	MotionSentenceForward   = Motion{Name: "sentenceForward", Keys: ")", Action: "cursor.sentenceForward", Type: MotionCharwise, Repeatable: true}
	MotionSentenceBackward  = Motion{Name: "sentenceBackward", Keys: "(", Action: "cursor.sentenceBackward", Type: MotionCharwise, Repeatable: true}

	MotionMatchPair = Motion{Name: "matchPair", Keys: "%", Action: "cursor.matchPair", Type: MotionCharwise, Inclusive: true}

	MotionSearchForward = Motion{Name: "searchForward", Keys: "/", Action: "cursor.searchForward", Type: MotionCharwise, NeedsPattern: true}
	MotionSearchBackward = Motion{Name: "searchBackward", Keys: "?", Action: "cursor.searchBackward", Type: MotionCharwise, NeedsPattern: true}
	MotionSearchNext     = Motion{Name: "searchNext", Keys: "n", Action: "cursor.searchNext", Type: MotionCharwise, Repeatable: true}
	MotionSearchPrev     = Motion{Name: "searchPrev", Keys: "N", Action: "cursor.searchPrev", Type: MotionCharwise, Repeatable: true}
	MotionWordSearchForward = Motion{Name: "wordSearchForward", Keys: "*", Action: "cursor.wordSearchForward", Type: MotionCharwise, Repeatable: true}
	MotionWordSearchBackward = Motion{Name: "wordSearchBackward", Keys: "#", Action: "cursor.wordSearchBackward", Type: MotionCharwise, Repeatable: true}

	// Direct edits: single keys that are neither true motions nor
	// operator+motion pairs but complete an edit by themselves (x X D C S
	// J p P) or after one character argument (r). Registered in the same
	// motions table as the rest of the grammar since the parser consumes
	// them identically; the Interpreter recognizes their "edit." action
	// prefix and performs the edit directly instead of just moving.
	MotionDeleteCharForward  = Motion{Name: "deleteCharForward", Keys: "x", Action: "edit.deleteCharForward", Type: MotionCharwise, Repeatable: true}
	MotionDeleteCharBackward = Motion{Name: "deleteCharBackward", Keys: "X", Action: "edit.deleteCharBackward", Type: MotionCharwise, Repeatable: true}
	MotionDeleteToEOL        = Motion{Name: "deleteToEOL", Keys: "D", Action: "edit.deleteToEOL", Type: MotionCharwise}
	MotionChangeToEOL        = Motion{Name: "changeToEOL", Keys: "C", Action: "edit.changeToEOL", Type: MotionCharwise}
	MotionChangeLine         = Motion{Name: "changeLine", Keys: "S", Action: "edit.changeLine", Type: MotionLinewise}
	MotionJoinLines          = Motion{Name: "joinLines", Keys: "J", Action: "edit.joinLines", Type: MotionLinewise, Repeatable: true}
	MotionReplaceChar        = Motion{Name: "replaceChar", Keys: "r", Action: "edit.replaceChar", Type: MotionCharwise, NeedsChar: true}
	MotionPasteAfter         = Motion{Name: "pasteAfter", Keys: "p", Action: "edit.pasteAfter", Type: MotionCharwise, Repeatable: true}
	MotionPasteBefore        = Motion{Name: "pasteBefore", Keys: "P", Action: "edit.pasteBefore", Type: MotionCharwise, Repeatable: true}
	MotionToggleCaseChar     = Motion{Name: "toggleCaseChar", Keys: "~", Action: "edit.toggleCaseChar", Type: MotionCharwise, Repeatable: true}
	MotionSubstituteChar     = Motion{Name: "substituteChar", Keys: "s", Action: "edit.substituteChar", Type: MotionCharwise, Repeatable: true}

	// Mode-entry commands. Like the direct edits above, these are plain
	// table entries the parser treats as bare motions; the Interpreter's
	// "mode." action prefix switches it into Insert and begins capturing
	// literal text until <esc>.
	MotionInsert       = Motion{Name: "insert", Keys: "i", Action: "mode.insert"}
	MotionAppend       = Motion{Name: "append", Keys: "a", Action: "mode.append"}
	MotionInsertStart  = Motion{Name: "insertStart", Keys: "I", Action: "mode.insertStart"}
	MotionAppendEnd    = Motion{Name: "appendEnd", Keys: "A", Action: "mode.appendEnd"}
	MotionOpenBelow    = Motion{Name: "openBelow", Keys: "o", Action: "mode.openBelow"}
	MotionOpenAbove    = Motion{Name: "openAbove", Keys: "O", Action: "mode.openAbove"}
	MotionVisualChar   = Motion{Name: "visualChar", Keys: "v", Action: "mode.visualChar"}
	MotionVisualLine   = Motion{Name: "visualLine", Keys: "V", Action: "mode.visualLine"}
)

// motions maps single-key motion keys to their definitions.
var motions = map[rune]*Motion{
	'h': &MotionLeft,
	'l': &MotionRight,
	'k': &MotionUp,
	'j': &MotionDown,
	'w': &MotionWordForward,
	'b': &MotionWordBackward,
	'e': &MotionWordEnd,
	'W': &MotionWORDForward,
	'B': &MotionWORDBackward,
	'E': &MotionWORDEnd,
	'0': &MotionLineStart,
	'^': &MotionFirstNonBlank,
	'$': &MotionLineEnd,
	'|': &MotionGotoColumn,
	'G': &MotionDocumentEnd,
	'f': &MotionFindChar,
	'F': &MotionFindCharBack,
	't': &MotionTillChar,
	'T': &MotionTillCharBack,
	';': &MotionRepeatFind,
	',': &MotionRepeatFindBack,
	'}': &MotionParagraphForward,
	'{': &MotionParagraphBackward,
	')': &MotionSentenceForward,
	'(': &MotionSentenceBackward,
	'%': &MotionMatchPair,
	'/': &MotionSearchForward,
	'?': &MotionSearchBackward,
	'n': &MotionSearchNext,
	'N': &MotionSearchPrev,
	'*': &MotionWordSearchForward,
	'#': &MotionWordSearchBackward,

	'x': &MotionDeleteCharForward,
	'X': &MotionDeleteCharBackward,
	'D': &MotionDeleteToEOL,
	'C': &MotionChangeToEOL,
	'S': &MotionChangeLine,
	'J': &MotionJoinLines,
	'r': &MotionReplaceChar,
	'p': &MotionPasteAfter,
	'P': &MotionPasteBefore,
	'~': &MotionToggleCaseChar,
	's': &MotionSubstituteChar,

	'i': &MotionInsert,
	'a': &MotionAppend,
	'I': &MotionInsertStart,
	'A': &MotionAppendEnd,
	'o': &MotionOpenBelow,
	'O': &MotionOpenAbove,
	'v': &MotionVisualChar,
	'V': &MotionVisualLine,
}

// gMotions maps g-prefixed motion keys to their definitions.
var gMotions = map[rune]*Motion{
	'g': &MotionDocumentStart, // gg
	'e': &MotionWordEndBack,
	'E': &MotionWORDEndBack,
}

// charSearchMotions are motions that consume a following grapheme argument.
var charSearchMotions = map[rune]bool{'f': true, 'F': true, 't': true, 'T': true, 'r': true}

// GetMotion returns the motion bound to key, or nil.
func GetMotion(key rune) *Motion { return motions[key] }

// GetGMotion returns the g-prefixed motion bound to key, or nil.
func GetGMotion(key rune) *Motion { return gMotions[key] }

// IsMotion reports whether key is a bound motion.
func IsMotion(key rune) bool { _, ok := motions[key]; return ok }

// IsGMotion reports whether key is a bound g-prefixed motion.
func IsGMotion(key rune) bool { _, ok := gMotions[key]; return ok }

// IsCharSearchMotion reports whether key consumes a char argument.
func IsCharSearchMotion(key rune) bool { return charSearchMotions[key] }

// IsSearchMotion reports whether key consumes a <cr>-terminated pattern.
func IsSearchMotion(key rune) bool { return key == '/' || key == '?' }
