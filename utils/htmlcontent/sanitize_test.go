package htmlcontent

import (
	"strings"
	"testing"
)

func TestSanitizeKeepsFormatting(t *testing.T) {
	in := `<h1>Lesson 3</h1><p>Fill <strong>the</strong> gaps.</p><ul><li>one</li></ul>`
	out, err := Sanitize(in)
	if err != nil {
		t.Fatalf("Sanitize: %v", err)
	}
	for _, want := range []string{"<h1>", "<strong>", "<ul>", "<li>"} {
		if !strings.Contains(out, want) {
			t.Errorf("output lost %s: %q", want, out)
		}
	}
}

func TestSanitizeDropsScript(t *testing.T) {
	in := `<p>hello</p><script>alert("x")</script>`
	out, err := Sanitize(in)
	if err != nil {
		t.Fatalf("Sanitize: %v", err)
	}
	if strings.Contains(out, "script") || strings.Contains(out, "alert") {
		t.Errorf("script survived: %q", out)
	}
	if !strings.Contains(out, "hello") {
		t.Errorf("content lost: %q", out)
	}
}

func TestSanitizeDropsEventHandlers(t *testing.T) {
	in := `<img src="x.png" onerror="alert(1)"><p onclick="boom()">text</p>`
	out, err := Sanitize(in)
	if err != nil {
		t.Fatalf("Sanitize: %v", err)
	}
	if strings.Contains(out, "onerror") || strings.Contains(out, "onclick") {
		t.Errorf("event handler survived: %q", out)
	}
}

func TestSanitizeDropsJavascriptURLs(t *testing.T) {
	in := `<a href="javascript:alert(1)">click</a>`
	out, err := Sanitize(in)
	if err != nil {
		t.Fatalf("Sanitize: %v", err)
	}
	if strings.Contains(out, "javascript:") {
		t.Errorf("javascript URL survived: %q", out)
	}
	if !strings.Contains(out, "click") {
		t.Errorf("link text lost: %q", out)
	}
}

func TestSanitizeDropsIframe(t *testing.T) {
	in := `<p>before</p><iframe src="https://evil.example"></iframe><p>after</p>`
	out, err := Sanitize(in)
	if err != nil {
		t.Fatalf("Sanitize: %v", err)
	}
	if strings.Contains(out, "iframe") {
		t.Errorf("iframe survived: %q", out)
	}
	if !strings.Contains(out, "before") || !strings.Contains(out, "after") {
		t.Errorf("surrounding content lost: %q", out)
	}
}
