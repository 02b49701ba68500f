package token_test

import (
	"testing"

	"github.com/quill-lang/quillc/internal/token"
)

func TestPositionInvalid(t *testing.T) {
	if !token.NoPosition.Invalid() {
		t.Fatalf("NoPosition should be invalid")
	}
	if (token.Position{Line: 1, Column: 1}).Invalid() {
		t.Fatalf("1:1 should be valid")
	}
}

func TestTokenLineColumn(t *testing.T) {
	tok := token.Token{Type: token.IDENT, Lexeme: "x", Position: token.Position{Line: 3, Column: 7}}
	if tok.Line() != 3 || tok.Column() != 7 {
		t.Fatalf("got line=%d col=%d, want 3,7", tok.Line(), tok.Column())
	}
}
