package vault

import (
	"testing"
)

func TestParseRef(t *testing.T) {
	path, key, err := ParseRef("vault:kv/formdesk/prod#jwt_secret")
	if err != nil {
		t.Fatalf("ParseRef: %v", err)
	}
	if path != "kv/formdesk/prod" || key != "jwt_secret" {
		t.Fatalf("got (%q, %q)", path, key)
	}

	for _, bad := range []string{"kv/x#y", "vault:kv/x", "vault:#key", "vault:kv/x#"} {
		if _, _, err := ParseRef(bad); err == nil {
			t.Errorf("ParseRef(%q): expected error", bad)
		}
	}
}

func TestSplitMount(t *testing.T) {
	mount, rel := splitMount("kv/formdesk/prod")
	if mount != "kv" || rel != "formdesk/prod" {
		t.Fatalf("got (%q, %q)", mount, rel)
	}
}
