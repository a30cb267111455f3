package langdetect

import "testing"

func TestDetect(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		wantCode string
	}{
		{
			name:     "english",
			text:     "The quick brown fox jumps over the lazy dog near the river bank.",
			wantCode: "en",
		},
		{
			name:     "german",
			text:     "Der schnelle braune Fuchs springt über den faulen Hund am Flussufer.",
			wantCode: "de",
		},
		{
			name:     "too short",
			text:     "ok",
			wantCode: "",
		},
		{
			name:     "whitespace",
			text:     "   \n\t  ",
			wantCode: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, name := Detect(tt.text)
			if code != tt.wantCode {
				t.Errorf("Detect(%q) code = %q, want %q", tt.text, code, tt.wantCode)
			}
			if (code == "") != (name == "") {
				t.Errorf("Detect(%q) = (%q, %q), code and name disagree", tt.text, code, name)
			}
		})
	}
}
