package security

import "testing"

func TestNewDisplaySanitizer_ImplementsInterface(t *testing.T) {
	var _ DisplaySanitizerService = NewDisplaySanitizer()
}

func TestSanitizeTitle_StripsAllMarkup(t *testing.T) {
	s := NewDisplaySanitizer()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"プレーンテキストはそのまま", "Recipe", "Recipe"},
		{"空文字列は空のまま", "", ""},
		{"タグを除去しテキストを残す", "<b>Recipe</b>", "Recipe"},
		{"scriptタグを除去", `<script>alert(1)</script>Recipe`, "Recipe"},
		{"imgタグを除去", `Recipe<img src="https://example.com/x.png">`, "Recipe"},
		{"前後の空白をトリム", "  Recipe  ", "Recipe"},
		{"日本語タイトル", "今日のレシピ", "今日のレシピ"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := s.SanitizeTitle(tt.in); got != tt.want {
				t.Errorf("SanitizeTitle(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestSanitizeTitle_Idempotent(t *testing.T) {
	s := NewDisplaySanitizer()

	in := `<a href="javascript:x">Link</a> title`
	once := s.SanitizeTitle(in)
	twice := s.SanitizeTitle(once)
	if once != twice {
		t.Errorf("冪等であるべき: once=%q twice=%q", once, twice)
	}
}

func TestSanitizeHref_AllowsHTTPAndHTTPS(t *testing.T) {
	s := NewDisplaySanitizer()

	if got := s.SanitizeHref("http://x", "#"); got != "http://x" {
		t.Errorf("SanitizeHref(http://x) = %q, want http://x", got)
	}
	if got := s.SanitizeHref("https://example.com/page", "#"); got != "https://example.com/page" {
		t.Errorf("httpsのURLは通過すべき: %q", got)
	}
}

func TestSanitizeHref_RejectsUnsafeSchemes(t *testing.T) {
	s := NewDisplaySanitizer()

	unsafe := []string{
		"javascript:alert(1)",
		"data:text/html;base64,PHNjcmlwdD4=",
		"ftp://example.com/file",
		"/relative/path",
		"not a url at all\x7f://",
		"",
	}
	for _, u := range unsafe {
		if got := s.SanitizeHref(u, "#"); got != "#" {
			t.Errorf("SanitizeHref(%q) = %q, want フォールバック #", u, got)
		}
	}
}

func TestSanitizeHref_FallbackPassesThrough(t *testing.T) {
	s := NewDisplaySanitizer()

	// プレースホルダー "#" 自体はそのまま返る
	if got := s.SanitizeHref("#", "#"); got != "#" {
		t.Errorf("SanitizeHref(#) = %q, want #", got)
	}
}
