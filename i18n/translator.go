package i18n

// Translator retrieves localized messages for Issue codes.
// data provides optional metadata to embed in the message (for example,
// "expected" or "key").
type Translator interface {
	Message(code string, data map[string]string) string
}

// dictTranslator is the built-in dictionary-based Translator.
type dictTranslator struct{ lang string }

func (t dictTranslator) Message(code string, data map[string]string) string {
	switch t.lang {
	case "ja":
		switch code {
		case "parse_error":
			return "解析エラー"
		case "truncated":
			return "入力が途中で終了しました"
		case "overflow":
			return "数値が範囲外です"
		case "invalid_escape":
			return "不正なエスケープシーケンスです"
		case "invalid_type":
			return "型が不正です"
		case "invalid_format":
			return "形式が不正です"
		case "not_nullable":
			return "null は許可されていません"
		case "unknown_key":
			return "未知のキーです"
		case "required":
			return "必須プロパティが不足しています"
		case "construction_failed":
			return "値の構築に失敗しました"
		case "discriminator_missing":
			return "型識別子がありません"
		case "discriminator_unknown":
			return "未知の型識別子です"
		case "unresolved_converter":
			return "コンバーターが見つかりません"
		case "construction_ambiguity":
			return "コンストラクターを特定できません"
		case "too_many_mandatory":
			return "必須属性が多すぎます"
		case "invalid_binding":
			return "バインディング定義が不正です"
		}
	default: // "en"
		switch code {
		case "parse_error":
			return "parse error"
		case "truncated":
			return "unexpected end of input"
		case "overflow":
			return "number out of range"
		case "invalid_escape":
			return "invalid escape sequence"
		case "invalid_type":
			return "invalid type"
		case "invalid_format":
			return "invalid format"
		case "not_nullable":
			return "null not allowed"
		case "unknown_key":
			return "unknown key"
		case "required":
			return "required property missing"
		case "construction_failed":
			return "construction failed"
		case "discriminator_missing":
			return "type discriminator missing"
		case "discriminator_unknown":
			return "unknown type discriminator"
		case "unresolved_converter":
			return "no converter for type"
		case "construction_ambiguity":
			return "ambiguous construction"
		case "too_many_mandatory":
			return "too many mandatory attributes"
		case "invalid_binding":
			return "invalid binding"
		}
	}
	return code
}

var currentTranslator Translator = dictTranslator{lang: "en"}

// SetLanguage switches the built-in Translator language ("en"/"ja").
func SetLanguage(lang string) {
	if lang != "ja" {
		lang = "en"
	}
	currentTranslator = dictTranslator{lang: lang}
}

// SetTranslator replaces the Translator implementation (not limited to the
// dictionary version).
func SetTranslator(tr Translator) {
	if tr == nil {
		currentTranslator = dictTranslator{lang: "en"}
		return
	}
	currentTranslator = tr
}

// T fetches a message for the given code using the current Translator.
func T(code string, data map[string]string) string { return currentTranslator.Message(code, data) }
