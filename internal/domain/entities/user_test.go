package entities

import "testing"

func TestUserPassword(t *testing.T) {
	u := &User{UserID: "uno"}
	if u.VerifyPassword("anything") {
		t.Fatal("user without a password hash must not verify")
	}

	if err := u.SetPassword("asdf1234"); err != nil {
		t.Fatalf("SetPassword() error = %v", err)
	}
	if *u.PasswordHash == "asdf1234" {
		t.Fatal("password stored in plain text")
	}
	if !u.VerifyPassword("asdf1234") {
		t.Error("VerifyPassword() rejected the correct password")
	}
	if u.VerifyPassword("wrong") {
		t.Error("VerifyPassword() accepted a wrong password")
	}
}

func TestUserDisplayName(t *testing.T) {
	if got := (&User{UserID: "uno", Nickname: "Uno"}).DisplayName(); got != "Uno" {
		t.Errorf("DisplayName() = %q, want Uno", got)
	}
	if got := (&User{UserID: "uno"}).DisplayName(); got != "uno" {
		t.Errorf("DisplayName() = %q, want uno", got)
	}
}

func TestArticleSlug(t *testing.T) {
	tests := []struct {
		title string
		want  string
	}{
		{"Hello, World!", "hello-world"},
		{"  Go   generics  ", "go-generics"},
		{"!!!", "article"},
	}
	for _, tt := range tests {
		a := &Article{Title: tt.title}
		if got := a.Slug(); got != tt.want {
			t.Errorf("Slug(%q) = %q, want %q", tt.title, got, tt.want)
		}
	}
}
