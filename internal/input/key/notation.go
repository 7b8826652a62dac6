package key

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// Parse errors
var (
	ErrEmptySpec   = errors.New("empty key notation")
	ErrInvalidSpec = errors.New("invalid key notation")
	ErrUnknownKey  = errors.New("unknown key name")
)

// Notation is the canonical textual form of one logical key press,
// e.g. "a", "A", "<C-S-A>", "<Esc>", "<Space>".
type Notation string

// LeaderName is the special key name matched against the configured leader.
const LeaderName = "leader"

// Leader is the notation of the leader placeholder.
const Leader Notation = "<leader>"

// inherentlyShifted lists characters only reachable with Shift on the
// reference layout. Shift is redundant for them and is dropped.
const inherentlyShifted = "~!@#$%^&*()_+{}|:\"<>?"

// charAliases are the spellings used for characters that would otherwise
// make a <...> token ambiguous. They only appear inside a modifier bracket.
var charAliases = map[rune]string{
	'<':  "lt",
	'|':  "Bar",
	'\\': "Bslash",
}

// aliasChars maps lowercase alias spellings back to characters.
var aliasChars = map[string]rune{
	"lt":     '<',
	"gt":     '>',
	"bar":    '|',
	"bslash": '\\',
}

// keyPress is one decoded key press.
type keyPress struct {
	char    rune
	special string
	mods    Modifier
}

// Normalize converts an authored single-key notation to its canonical
// form. It never fails: input that cannot be decoded is returned unchanged.
func Normalize(s string) Notation {
	kp, err := decode(s)
	if err != nil {
		return Notation(s)
	}
	return kp.canonical()
}

// ToNotation converts a host key event to its canonical notation. Events
// that name no key (a lone modifier press) produce an empty notation.
func ToNotation(ev Event, opts LayoutOptions) Notation {
	kp := keyPress{mods: ev.Modifiers}
	switch ev.Key {
	case KeyNone:
		return ""
	case KeyRune:
		if ev.Rune == 0 {
			return ""
		}
		kp.char = composeRune(ev.Rune)
		if translated, ok := opts.translate(ev); ok {
			if r, ok := singleRune(translated); ok {
				kp.char = r
			}
		}
	default:
		name, ok := keyNotationNames[ev.Key]
		if !ok {
			return ""
		}
		kp.special = name
	}
	return kp.canonical()
}

// Parsed is the structured form of a single notation. Key keeps the
// character as written; special keys use their canonical "<Name>" form.
type Parsed struct {
	Key   string
	Ctrl  bool
	Alt   bool
	Meta  bool
	Shift bool
}

// Parse decodes a single notation without applying shift or case
// canonicalization, e.g. "<S-h>" yields Key "h" with Shift set.
func Parse(s string) (Parsed, error) {
	kp, err := decode(s)
	if err != nil {
		return Parsed{}, err
	}
	p := Parsed{
		Ctrl:  kp.mods.HasCtrl(),
		Alt:   kp.mods.HasAlt(),
		Meta:  kp.mods.HasMeta(),
		Shift: kp.mods.HasShift(),
	}
	switch {
	case kp.special != "":
		p.Key = "<" + kp.special + ">"
	case kp.char == ' ':
		p.Key = "<Space>"
	default:
		p.Key = string(kp.char)
	}
	return p, nil
}

// ParseSequence splits an authored sequence and canonicalizes each key,
// reporting the first token that does not decode.
func ParseSequence(s string) (Sequence, error) {
	tokens := Split(s)
	if len(tokens) == 0 {
		return nil, ErrEmptySpec
	}
	seq := make(Sequence, 0, len(tokens))
	for _, tok := range tokens {
		kp, err := decode(string(tok))
		if err != nil {
			return nil, fmt.Errorf("key %q in %q: %w", tok, s, err)
		}
		seq = append(seq, kp.canonical())
	}
	return seq, nil
}

// NormalizeSequence splits an authored sequence and normalizes each key.
// Like Normalize, it never fails.
func NormalizeSequence(s string) Sequence {
	tokens := Split(s)
	for i, tok := range tokens {
		tokens[i] = Normalize(string(tok))
	}
	return tokens
}

// Modifiers returns the canonical modifiers of the notation.
func (n Notation) Modifiers() Modifier {
	kp, err := decode(string(n))
	if err != nil {
		return ModNone
	}
	return kp.normalized().mods
}

// IsLeader reports whether the notation is the bare leader placeholder.
func (n Notation) IsLeader() bool {
	return n == Leader
}

// Char returns the text the key produces, ignoring modifiers. Space,
// CR and Tab produce their whitespace characters; other special keys
// produce nothing.
func (n Notation) Char() (string, bool) {
	kp, err := decode(string(n))
	if err != nil {
		return "", false
	}
	kp = kp.normalized()
	switch kp.special {
	case "":
		return string(kp.char), true
	case "Space":
		return " ", true
	case "CR":
		return "\n", true
	case "Tab":
		return "\t", true
	}
	return "", false
}

// Literal returns the text the key inserts into an editable surface when
// it is not consumed by a mapping. Keys that still carry a modifier in
// canonical form are never literal.
func (n Notation) Literal() (string, bool) {
	if n.Modifiers() != ModNone {
		return "", false
	}
	return n.Char()
}

// decode parses one notation into its components.
func decode(s string) (keyPress, error) {
	if s == "" {
		return keyPress{}, ErrEmptySpec
	}
	if s == " " {
		return keyPress{special: "Space"}, nil
	}
	if len(s) > 2 && s[0] == '<' && s[len(s)-1] == '>' {
		return decodeBracket(s[1 : len(s)-1])
	}
	if r, ok := singleRune(s); ok {
		return keyPress{char: r}, nil
	}
	return keyPress{}, fmt.Errorf("%w: %q", ErrInvalidSpec, s)
}

// decodeBracket parses the inside of a <...> token.
func decodeBracket(inner string) (keyPress, error) {
	var kp keyPress
	for len(inner) > 2 && inner[1] == '-' {
		mod := modifierFromLetter(inner[0])
		if mod == ModNone {
			break
		}
		kp.mods = kp.mods.With(mod)
		inner = inner[2:]
	}

	lower := strings.ToLower(inner)
	if lower == LeaderName {
		kp.special = LeaderName
		return kp, nil
	}
	if r, ok := aliasChars[lower]; ok {
		kp.char = r
		return kp, nil
	}
	if k := KeyFromName(lower); k != KeyNone {
		kp.special = keyNotationNames[k]
		return kp, nil
	}
	if r, ok := singleRune(inner); ok {
		kp.char = r
		return kp, nil
	}
	return keyPress{}, fmt.Errorf("%w: %q", ErrUnknownKey, inner)
}

// normalized applies shift elision and letter case rules.
func (kp keyPress) normalized() keyPress {
	if kp.special != "" {
		return kp
	}
	if kp.char == ' ' {
		kp.special = "Space"
		return kp
	}

	r := kp.char
	mods := kp.mods
	if mods.HasShift() && strings.ContainsRune(inherentlyShifted, r) {
		mods = mods.Without(ModShift)
	}
	if mods.HasShift() && unicode.IsLower(r) {
		r = composeRune(unicode.ToUpper(r))
	}
	if unicode.IsUpper(r) {
		// An upper-case letter carries Shift only when another modifier
		// is present; alone, the glyph already encodes it.
		if mods.Without(ModShift) != ModNone {
			mods = mods.With(ModShift)
		} else {
			mods = ModNone
		}
	}

	kp.char = r
	kp.mods = mods
	return kp
}

// canonical renders the key press in canonical notation.
func (kp keyPress) canonical() Notation {
	kp = kp.normalized()
	if kp.special != "" {
		return Notation("<" + kp.mods.Prefix() + kp.special + ">")
	}
	if kp.mods == ModNone {
		return Notation(string(kp.char))
	}
	name := string(kp.char)
	if alias, ok := charAliases[kp.char]; ok {
		name = alias
	}
	return Notation("<" + kp.mods.Prefix() + name + ">")
}

// singleRune reports the rune of a string holding exactly one character
// once composed to NFC.
func singleRune(s string) (rune, bool) {
	s = norm.NFC.String(s)
	if utf8.RuneCountInString(s) != 1 {
		return 0, false
	}
	r, _ := utf8.DecodeRuneInString(s)
	return r, true
}

// composeRune returns the NFC form of r when it stays a single rune.
func composeRune(r rune) rune {
	if c, ok := singleRune(string(r)); ok {
		return c
	}
	return r
}
