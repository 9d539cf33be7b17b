package idl

import "testing"

func TestLexerTokens(t *testing.T) {
	tests := []struct {
		name    string
		source  string
		wantTok TokenType
		wantAtt string
	}{
		{"identifier", "Monster", TokIdent, "Monster"},
		{"reserved table", "table", TokReserved, "table"},
		{"reserved root_type", "root_type", TokReserved, "root_type"},
		{"primitive int", "int", TokPrimitive, "int"},
		{"primitive alias short", "int16", TokPrimitive, "int16"},
		{"punctuation brace", "{", TokChar, "{"},
		{"integer", "42", TokIntConstant, "42"},
		{"negative integer", "-7", TokIntConstant, "-7"},
		{"float", "3.14", TokFloatConstant, "3.14"},
		{"float exponent", "1e10", TokFloatConstant, "1e10"},
		{"true as int", "true", TokIntConstant, "1"},
		{"false as int", "false", TokIntConstant, "0"},
		{"string", `"hello"`, TokStringConstant, "hello"},
		{"string escapes", `"a\nb\tc"`, TokStringConstant, "a\nb\tc"},
		{"eof", "", TokEOF, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := NewLexer(tt.source)
			if l.Err() != nil {
				t.Fatalf("unexpected lex error: %v", l.Err())
			}
			if l.Token != tt.wantTok {
				t.Fatalf("token = %v, want %v", l.Token, tt.wantTok)
			}
			if l.Attribute != tt.wantAtt {
				t.Fatalf("attribute = %q, want %q", l.Attribute, tt.wantAtt)
			}
		})
	}
}

func TestLexerLineComments(t *testing.T) {
	l := NewLexer("// a comment\nfoo")
	if l.Token != TokIdent || l.Attribute != "foo" {
		t.Fatalf("got %v %q, want ident foo", l.Token, l.Attribute)
	}
}

func TestLexerDocComment(t *testing.T) {
	l := NewLexer("/// documents foo\nfoo")
	if l.DocComment != "documents foo" {
		t.Fatalf("doc comment = %q", l.DocComment)
	}
	if l.Token != TokIdent || l.Attribute != "foo" {
		t.Fatalf("got %v %q", l.Token, l.Attribute)
	}
}

func TestLexerDocCommentMustStartOwnLine(t *testing.T) {
	l := NewLexer("foo /// bad\nbar")
	_ = l.Attribute
	l.Advance()
	if l.Err() == nil {
		t.Fatalf("expected error for /// not on its own line")
	}
}

func TestLexerLeadingDotFloatRejected(t *testing.T) {
	l := NewLexer(".5")
	if l.Err() == nil {
		t.Fatalf("expected error for leading '.' float")
	}
}

func TestLexerIllegalCharacter(t *testing.T) {
	l := NewLexer("#")
	if l.Err() == nil {
		t.Fatalf("expected error for illegal character")
	}
}

func TestLexerUnterminatedString(t *testing.T) {
	l := NewLexer(`"abc`)
	if l.Err() == nil {
		t.Fatalf("expected error for unterminated string")
	}
}

func TestLexerSequence(t *testing.T) {
	l := NewLexer("table Monster { hp: short = 100; }")
	var got []string
	for l.Token != TokEOF {
		got = append(got, l.Attribute)
		l.Advance()
	}
	if l.Err() != nil {
		t.Fatalf("unexpected lex error: %v", l.Err())
	}
	want := []string{"table", "Monster", "{", "hp", ":", "short", "=", "100", ";", "}"}
	if len(got) != len(want) {
		t.Fatalf("token count = %d, want %d (%v)", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("token %d = %q, want %q", i, got[i], want[i])
		}
	}
}
