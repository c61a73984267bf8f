package verification

import (
	"strings"
	"testing"
)

func TestHashPhoneRoundTrip(t *testing.T) {
	encoded, err := HashPhone("+33 6 12 34 56 78")
	if err != nil {
		t.Fatalf("HashPhone: %v", err)
	}
	if !strings.HasPrefix(encoded, "$argon2id$v=19$") {
		t.Errorf("неожиданный формат хеша: %q", encoded)
	}

	ok, err := VerifyPhone("+33612345678", encoded)
	if err != nil {
		t.Fatalf("VerifyPhone: %v", err)
	}
	if !ok {
		t.Error("нормализованное написание номера должно совпадать с хешем")
	}

	ok, err = VerifyPhone("+33612345679", encoded)
	if err != nil {
		t.Fatalf("VerifyPhone: %v", err)
	}
	if ok {
		t.Error("чужой номер не должен проходить проверку")
	}
}

func TestHashPhoneSaltsDiffer(t *testing.T) {
	a, err := HashPhone("+33612345678")
	if err != nil {
		t.Fatalf("HashPhone: %v", err)
	}
	b, err := HashPhone("+33612345678")
	if err != nil {
		t.Fatalf("HashPhone: %v", err)
	}
	if a == b {
		t.Error("два хеша одного номера должны отличаться солью")
	}
}

func TestVerifyPhoneBadFormat(t *testing.T) {
	if _, err := VerifyPhone("+33612345678", "not-a-hash"); err == nil {
		t.Error("мусор вместо хеша должен давать ошибку")
	}
	if _, err := VerifyPhone("+33612345678", "$md5$v=19$m=1,t=1,p=1$abc$def"); err == nil {
		t.Error("чужой алгоритм должен давать ошибку")
	}
}

func TestNormalizePhone(t *testing.T) {
	tests := []struct{ in, want string }{
		{"+33 6 12 34 56 78", "+33612345678"},
		{"(06) 12-34-56-78", "0612345678"},
		{"  +33612345678  ", "+33612345678"},
	}
	for _, tt := range tests {
		if got := normalizePhone(tt.in); got != tt.want {
			t.Errorf("normalizePhone(%q) = %q, ожидали %q", tt.in, got, tt.want)
		}
	}
}
