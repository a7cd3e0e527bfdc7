package bindjson

// Kind classifies the next token of the input.
type Kind int

const (
	KindInvalid Kind = iota
	KindBeginObject
	KindEndObject
	KindBeginArray
	KindEndArray
	KindString
	KindNumber
	KindBool
	KindNull
	KindComma
	KindColon
)

var kindNames = [...]string{
	KindInvalid:     "invalid",
	KindBeginObject: "'{'",
	KindEndObject:   "'}'",
	KindBeginArray:  "'['",
	KindEndArray:    "']'",
	KindString:      "string",
	KindNumber:      "number",
	KindBool:        "boolean",
	KindNull:        "null",
	KindComma:       "','",
	KindColon:       "':'",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "invalid"
	}
	return kindNames[k]
}

// kindOf classifies a token by its first byte.
func kindOf(c byte) Kind {
	switch c {
	case '{':
		return KindBeginObject
	case '}':
		return KindEndObject
	case '[':
		return KindBeginArray
	case ']':
		return KindEndArray
	case '"':
		return KindString
	case 't', 'f':
		return KindBool
	case 'n':
		return KindNull
	case ',':
		return KindComma
	case ':':
		return KindColon
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		return KindNumber
	}
	return KindInvalid
}

func isSpace(c byte) bool { return c == ' ' || c == '\t' || c == '\n' || c == '\r' }
