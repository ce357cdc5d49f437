package summarize

import (
	"errors"
	"testing"
)

func TestParseSOAP(t *testing.T) {
	tests := []struct {
		name    string
		reply   string
		want    string
		wantErr bool
	}{
		{
			name:  "bare object",
			reply: `{"subjective":"s","objective":"o","assessment":"a","plan":"p"}`,
			want:  "s",
		},
		{
			name:  "json fence",
			reply: "```json\n{\"subjective\":\" 목이 아파요 \",\"objective\":\"o\",\"assessment\":\"a\",\"plan\":\"1. rest\"}\n```",
			want:  "목이 아파요",
		},
		{
			name:  "surrounding prose",
			reply: "Here is the note:\n{\"subjective\":\"s\",\"objective\":\"o\",\"assessment\":\"a\",\"plan\":\"p\"}\nThanks.",
			want:  "s",
		},
		{name: "no object", reply: "I cannot help with that.", wantErr: true},
		{name: "invalid json", reply: `{"subjective": }`, wantErr: true},
		{name: "missing section", reply: `{"subjective":"s","objective":"o","assessment":"a"}`, wantErr: true},
		{name: "blank section", reply: `{"subjective":"s","objective":"  ","assessment":"a","plan":"p"}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseSOAP(tt.reply)
			if tt.wantErr {
				if !errors.Is(err, ErrMalformedNote) {
					t.Errorf("err = %v, want ErrMalformedNote", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseSOAP: %v", err)
			}
			if got.Subjective != tt.want {
				t.Errorf("Subjective = %q, want %q", got.Subjective, tt.want)
			}
		})
	}
}

func TestParseSOAPNamesMissingSections(t *testing.T) {
	_, err := ParseSOAP(`{"subjective":"s"}`)
	if err == nil {
		t.Fatal("expected error")
	}
	want := "malformed SOAP note: missing objective, assessment, plan"
	if err.Error() != want {
		t.Errorf("err = %q, want %q", err.Error(), want)
	}
}

func TestIsRateLimited(t *testing.T) {
	tests := []struct {
		msg  string
		want bool
	}{
		{"Error 429, Message: too many requests", true},
		{"quota exceeded for project", true},
		{"RESOURCE_EXHAUSTED", true},
		{"invalid argument", false},
	}
	for _, tt := range tests {
		if got := isRateLimited(errors.New(tt.msg)); got != tt.want {
			t.Errorf("isRateLimited(%q) = %v, want %v", tt.msg, got, tt.want)
		}
	}
}

func TestRotateKeyOncePerFailure(t *testing.T) {
	g := &implGemini{apiKeys: []string{"a", "b", "c"}}

	idx, key := g.key()
	if idx != 0 || key != "a" {
		t.Fatalf("key() = %d %q, want 0 a", idx, key)
	}
	g.rotateKey(0)
	g.rotateKey(0) // a second caller that also saw key 0
	if _, key := g.key(); key != "b" {
		t.Errorf("key after rotation = %q, want b", key)
	}
	g.rotateKey(1)
	g.rotateKey(2)
	if _, key := g.key(); key != "a" {
		t.Errorf("key after wrap = %q, want a", key)
	}
}
