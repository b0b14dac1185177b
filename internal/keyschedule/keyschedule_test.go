package keyschedule

import (
	"bytes"
	"testing"
)

func TestDeriveProducesDistinctKeys(t *testing.T) {
	salt, err := GenerateSalt()
	if err != nil {
		t.Fatal(err)
	}

	keys, err := Derive([]byte("correct horse battery staple"), salt)
	if err != nil {
		t.Fatal(err)
	}
	defer keys.Close()

	if bytes.Equal(keys.FileKey.Bytes(), keys.MetaKey.Bytes()) {
		t.Error("file_key and meta_key must differ")
	}
}

func TestDeriveIsDeterministicForSameInputs(t *testing.T) {
	salt := bytes.Repeat([]byte{0x11}, SaltSize)
	password := []byte("same password")

	k1, err := Derive(password, salt)
	if err != nil {
		t.Fatal(err)
	}
	defer k1.Close()

	k2, err := Derive(password, salt)
	if err != nil {
		t.Fatal(err)
	}
	defer k2.Close()

	if !bytes.Equal(k1.FileKey.Bytes(), k2.FileKey.Bytes()) {
		t.Error("expected identical file_key for identical inputs")
	}
	if !bytes.Equal(k1.MetaKey.Bytes(), k2.MetaKey.Bytes()) {
		t.Error("expected identical meta_key for identical inputs")
	}
}

func TestDeriveRejectsEmptyPassword(t *testing.T) {
	salt, _ := GenerateSalt()
	if _, err := Derive(nil, salt); err == nil {
		t.Fatal("expected error for empty password")
	}
}

func TestGenerateSaltIsRandom(t *testing.T) {
	s1, err := GenerateSalt()
	if err != nil {
		t.Fatal(err)
	}
	s2, err := GenerateSalt()
	if err != nil {
		t.Fatal(err)
	}
	if bytes.Equal(s1, s2) {
		t.Error("two generated salts should not be equal")
	}
	if len(s1) != SaltSize {
		t.Errorf("salt length = %d, want %d", len(s1), SaltSize)
	}
}

func TestKeysCloseZeroesBytes(t *testing.T) {
	salt, _ := GenerateSalt()
	keys, err := Derive([]byte("password"), salt)
	if err != nil {
		t.Fatal(err)
	}
	fk := keys.FileKey.Bytes()
	keys.Close()
	for i, b := range fk {
		if b != 0 {
			t.Fatalf("byte %d not zeroed after Close", i)
		}
	}
}
