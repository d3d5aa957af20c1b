package ocr

import "testing"

func TestCleanOCRText(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{
			name: "line-break hyphenation repaired",
			text: "The pro-\nduct ships with a charger.",
			want: "The product ships with a charger.",
		},
		{
			name: "trailing spaces before newline",
			text: "line one   \nline two",
			want: "line one\nline two",
		},
		{
			name: "blank line runs collapsed",
			text: "para one\n\n\n\n\npara two",
			want: "para one\n\npara two",
		},
		{
			name: "space runs collapsed",
			text: "too    many \t spaces",
			want: "too many spaces",
		},
		{
			name: "surrounding whitespace trimmed",
			text: "  \n body \n ",
			want: "body",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CleanOCRText(tt.text); got != tt.want {
				t.Errorf("CleanOCRText() = %q, want %q", got, tt.want)
			}
		})
	}
}
