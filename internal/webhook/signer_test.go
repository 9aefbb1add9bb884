package webhook

import "testing"

func TestSign(t *testing.T) {
	// Known vector: HMAC-SHA256("secret", "hello")
	got := Sign([]byte("hello"), "secret")
	want := "88aab3ede8d3adf94d26ab90d3bafd4a2083070c3bcce9c014ee04a443847c0b"
	if got != want {
		t.Fatalf("Sign = %q, want %q", got, want)
	}
}

func TestVerifySignature(t *testing.T) {
	body := []byte(`{"event":"message_sent"}`)
	sig := Sign(body, "s3cret")

	if !VerifySignature(body, "s3cret", sig) {
		t.Fatalf("valid signature rejected")
	}
	if VerifySignature(body, "wrong", sig) {
		t.Fatalf("wrong secret accepted")
	}
	if VerifySignature([]byte("tampered"), "s3cret", sig) {
		t.Fatalf("tampered body accepted")
	}
}
