package main

import (
	"strings"
	"testing"

	"ctea-newsroom/types"
)

func TestValidateTeaContent(t *testing.T) {
	cases := []struct {
		name    string
		content string
		ok      bool
	}{
		{"normal tea", "Heard the exchange is quietly delisting three tokens next week", true},
		{"empty", "", false},
		{"whitespace only", "   \n\t ", false},
		{"too long", strings.Repeat("a", types.MaxContentLength+1), false},
		{"at limit", strings.Repeat("a", types.MaxContentLength), true},
		{"too many urls", "http://a http://b http://c http://d", false},
		{"spam repetition", "moon moon moon moon moon moon wow", false},
	}

	for _, c := range cases {
		err := ValidateTeaContent(c.content, types.MaxContentLength)
		if c.ok && err != nil {
			t.Fatalf("%s: expected ok, got %v", c.name, err)
		}
		if !c.ok && err == nil {
			t.Fatalf("%s: expected error, got nil", c.name)
		}
	}
}

func TestValidateCategory(t *testing.T) {
	got, err := ValidateCategory("")
	if err != nil || got != types.CategoryGossip {
		t.Fatalf("empty category should default to gossip, got %q err %v", got, err)
	}

	for _, raw := range []string{"gossip", "drama", "rumors", "exposed", "memes"} {
		if _, err := ValidateCategory(raw); err != nil {
			t.Fatalf("%s should be valid: %v", raw, err)
		}
	}

	if _, err := ValidateCategory("finance"); err == nil {
		t.Fatalf("unknown category should error")
	}
}

func TestRedactSensitiveContent(t *testing.T) {
	cm := NewContentModerator("")

	cases := []struct {
		name string
		in   string
		want string
	}{
		{
			"email",
			"dm me at whale@example.com for proof",
			"dm me at [EMAIL_REDACTED] for proof",
		},
		{
			"phone",
			"his number is 555-123-4567 lol",
			"his number is [PHONE_REDACTED] lol",
		},
		{
			"eth wallet",
			"the dev wallet 0x1234567890abcdef1234567890abcdef12345678 dumped everything",
			"the dev wallet [WALLET_REDACTED] dumped everything",
		},
		{
			"clean gossip untouched",
			"two founders were seen arguing at the conference afterparty",
			"two founders were seen arguing at the conference afterparty",
		},
	}

	for _, c := range cases {
		got, redacted := cm.redactSensitiveContent(c.in)
		if got != c.want {
			t.Fatalf("%s: got %q, want %q", c.name, got, c.want)
		}
		if redacted != (c.in != c.want) {
			t.Fatalf("%s: redacted flag %v inconsistent", c.name, redacted)
		}
	}
}

func TestModerateTeaWithoutAPIKey(t *testing.T) {
	cm := NewContentModerator("")

	res, err := cm.ModerateTea("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Status != types.StatusRejected {
		t.Fatalf("empty content should be rejected, got %s", res.Status)
	}

	res, err = cm.ModerateTea("spicy but harmless gossip")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Status != types.StatusApproved || res.ModeratedText != "spicy but harmless gossip" {
		t.Fatalf("clean content should pass unchanged, got %+v", res)
	}

	res, err = cm.ModerateTea("contact leaker@example.com tonight")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Status != types.StatusApproved {
		t.Fatalf("redacted content still publishes, got %s", res.Status)
	}
	if strings.Contains(res.ModeratedText, "leaker@example.com") {
		t.Fatalf("PII survived redaction: %q", res.ModeratedText)
	}
}
