package sanitize

import "testing"

func TestStripHTML(t *testing.T) {
	cases := map[string]string{
		"plain text":                          "plain text",
		"<b>bold</b> note":                    "bold note",
		"<script>alert('x')</script>hello":    "alert('x')hello",
		"&lt;img src=x onerror=alert(1)&gt;":  "",
		"a &amp; b":                           "a & b",
		"  <p>padded</p>  ":                   "padded",
	}
	for in, want := range cases {
		if got := StripHTML(in); got != want {
			t.Fatalf("StripHTML(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestTextPtr(t *testing.T) {
	if TextPtr(nil) != nil {
		t.Fatalf("TextPtr(nil) should be nil")
	}

	in := "<i>note</i>"
	got := TextPtr(&in)
	if got == nil || *got != "note" {
		t.Fatalf("TextPtr = %v", got)
	}
}
